package core

import (
	"errors"
)

var (
	// ErrSurfaceStale indicates that the presentable image chain no longer
	// matches the surface (resize, minimize, timeout). Recoverable by
	// recreating the swapchain.
	ErrSurfaceStale = errors.New("output surface is stale")
	// ErrSurfaceLost indicates the surface could not be recovered after
	// recreation. Fatal.
	ErrSurfaceLost = errors.New("output surface permanently lost")
	// ErrDeviceLost indicates a driver reset or device disconnection. Fatal.
	ErrDeviceLost = errors.New("device lost")
)
