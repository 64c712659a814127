package renderer

import (
	"github.com/glint3d/glint/engine/core"
	"github.com/glint3d/glint/engine/scene"
)

// Fence gates CPU access to per-slot GPU resources. The Vulkan backend hands
// out its own fences through this; tests substitute fakes.
type Fence = core.Fence

// FrameBackend is the GPU-facing half of the renderer. The Vulkan backend
// implements it; tests drive the orchestrator with fakes. Slot indices run
// in [0, SlotCount()); image indices are owned by the backend's swapchain.
type FrameBackend interface {
	Initialize(appName string, width, height uint32) error
	Shutdown() error

	// SlotCount is the number of frames that may be in flight at once.
	SlotCount() int
	// SlotFence returns the fence that signals when the GPU finished the
	// work last submitted from the given slot.
	SlotFence(slot int) Fence

	// AcquireImage obtains the next presentable image, signaling the slot's
	// image-available semaphore. Returns core.ErrSurfaceStale when the
	// surface no longer matches the swapchain.
	AcquireImage(slot int) (imageIndex uint32, err error)

	// WriteUniforms uploads the packet's uniform data into the slot's
	// buffers. Only called once the slot's fence has signaled.
	WriteUniforms(slot int, packet *scene.FramePacket) error

	// Record re-records the slot's command buffer against the given image.
	Record(slot int, imageIndex uint32, packet *scene.FramePacket) error

	// Submit hands the slot's command buffer to the GPU queue, fencing on
	// the slot's fence and chaining the slot's semaphores.
	Submit(slot int, imageIndex uint32) error

	// Present queues the image for display. Returns core.ErrSurfaceStale
	// when the swapchain needs rebuilding.
	Present(slot int, imageIndex uint32) error

	// Recreate rebuilds the swapchain and everything derived from it for
	// the given surface size. Safe to call back to back.
	Recreate(width, height uint32) error

	// RebuildPipelines drops and recreates the graphics pipelines, picking
	// up freshly compiled shader binaries. The GPU must be idle.
	RebuildPipelines() error

	// WaitIdle blocks until the GPU has drained all submitted work.
	WaitIdle() error
}
