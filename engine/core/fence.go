package core

// Fence gates CPU access to per-slot GPU resources. Wait blocks until the
// GPU signals the fence or the timeout (nanoseconds) expires.
type Fence interface {
	Wait(timeoutNs uint64) error
	Reset() error
}
