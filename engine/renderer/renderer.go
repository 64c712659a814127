package renderer

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/glint3d/glint/engine/core"
	"github.com/glint3d/glint/engine/platform"
	"github.com/glint3d/glint/engine/renderer/vulkan"
	"github.com/glint3d/glint/engine/scene"
)

// fenceWaitTimeout bounds the only blocking wait in the frame loop. A GPU
// that holds a fence this long is considered lost.
const fenceWaitTimeout = uint64(5 * time.Second)

// Renderer drives the per-frame pipeline on top of a FrameBackend. It owns
// the slot rotation, the image-to-fence bookkeeping and the surface
// staleness policy; the backend owns the GPU objects.
type Renderer struct {
	backend FrameBackend

	currentSlot    int
	imagesInFlight map[uint32]Fence

	framebufferWidth  uint32
	framebufferHeight uint32
	// sizeGeneration is bumped by OnResize; frames are skipped and the
	// swapchain rebuilt when it runs ahead of lastSizeGeneration.
	sizeGeneration     uint64
	lastSizeGeneration uint64

	// reloadGeneration is bumped by ReloadShaders, which the asset watcher
	// calls from its own goroutine. Atomic because only DrawFrame, on the
	// frame loop, may touch the pipelines.
	reloadGeneration     atomic.Uint64
	lastReloadGeneration uint64

	// consecutiveFailures counts back-to-back frames that could not present.
	// A single stale surface recovers via recreation; two in a row mean the
	// surface is gone for good.
	consecutiveFailures int
}

// New wires the orchestrator to a backend. The backend must already be
// initialized.
func New(backend FrameBackend) *Renderer {
	return &Renderer{
		backend:        backend,
		imagesInFlight: make(map[uint32]Fence),
	}
}

var initRenderer sync.Once
var renderer *Renderer

// Initialize creates the Vulkan backend for the platform window and the
// orchestrator above it. framesInFlight is how many frames the CPU may
// record ahead of the GPU.
func Initialize(appName string, width, height uint32, framesInFlight int, p *platform.Platform) error {
	var err error
	initRenderer.Do(func() {
		backend := vulkan.New(p, framesInFlight)
		if err = backend.Initialize(appName, width, height); err != nil {
			return
		}
		renderer = New(backend)
		renderer.framebufferWidth = width
		renderer.framebufferHeight = height
	})
	return err
}

func Shutdown() error {
	if renderer == nil {
		return nil
	}
	return renderer.Shutdown()
}

func OnResize(width, height uint32) {
	if renderer == nil {
		return
	}
	renderer.OnResize(width, height)
}

func DrawFrame(packet *scene.FramePacket) error {
	return renderer.DrawFrame(packet)
}

// ReloadShaders schedules a pipeline rebuild from the shader binaries on
// disk. Called when the asset watcher reports a recompiled shader.
func ReloadShaders() {
	if renderer == nil {
		return
	}
	renderer.ReloadShaders()
}

// ReloadShaders marks the pipelines stale. The rebuild itself runs at the
// top of the next DrawFrame, on the frame loop, so the caller (the watcher
// goroutine) never races recording or submission. A burst of shader writes
// coalesces into one rebuild.
func (r *Renderer) ReloadShaders() {
	r.reloadGeneration.Add(1)
}

// rebuildPipelines drains the GPU and swaps the pipelines in place.
// In-flight frames finish on the old pipelines before the rebuild starts.
func (r *Renderer) rebuildPipelines() error {
	if err := r.backend.WaitIdle(); err != nil {
		return fmt.Errorf("wait idle before pipeline rebuild: %w", err)
	}
	if err := r.backend.RebuildPipelines(); err != nil {
		return fmt.Errorf("rebuild pipelines: %w", err)
	}
	core.LogInfo("pipelines rebuilt from reloaded shaders")
	return nil
}

// OnResize records the new surface size. The swapchain is not touched here;
// the next DrawFrame notices the generation bump and rebuilds before it
// acquires anything.
func (r *Renderer) OnResize(width, height uint32) {
	r.framebufferWidth = width
	r.framebufferHeight = height
	r.sizeGeneration++
	core.LogDebug("resize to %dx%d (generation %d)", width, height, r.sizeGeneration)
}

// Shutdown drains the GPU before tearing the backend down so no in-flight
// frame is destroyed under the device.
func (r *Renderer) Shutdown() error {
	if err := r.backend.WaitIdle(); err != nil {
		core.LogWarn("wait idle on shutdown: %s", err)
	}
	return r.backend.Shutdown()
}

// DrawFrame runs one full frame: fence wait, acquire, uniform upload,
// record, submit, present, slot rotation. A nil error means the frame was
// either presented or legitimately skipped (zero-sized or mid-resize
// surface). core.ErrSurfaceLost means the surface cannot be recovered and
// the application must shut down.
func (r *Renderer) DrawFrame(packet *scene.FramePacket) error {
	if r.framebufferWidth == 0 || r.framebufferHeight == 0 {
		// Minimized. Nothing to present; not an error.
		return nil
	}
	if r.sizeGeneration != r.lastSizeGeneration {
		if err := r.recreate(); err != nil {
			return r.fail(err)
		}
		// The rebuilt swapchain is used starting next frame so a burst of
		// resize events cannot trigger cascading rebuilds mid-frame.
		return nil
	}
	if gen := r.reloadGeneration.Load(); gen != r.lastReloadGeneration {
		if err := r.rebuildPipelines(); err != nil {
			return r.fail(err)
		}
		r.lastReloadGeneration = gen
	}

	slot := r.currentSlot
	fence := r.backend.SlotFence(slot)

	// The sole stall of the loop: wait until the GPU has finished the frame
	// that last used this slot. Uniform buffers and the command buffer of
	// the slot are untouchable before this point.
	if err := fence.Wait(fenceWaitTimeout); err != nil {
		return r.fail(fmt.Errorf("slot %d fence wait: %w", slot, err))
	}

	imageIndex, err := r.backend.AcquireImage(slot)
	if errors.Is(err, core.ErrSurfaceStale) {
		// Stale at acquire: rebuild once and retry within the same frame.
		if err = r.recreate(); err != nil {
			return r.fail(err)
		}
		imageIndex, err = r.backend.AcquireImage(slot)
	}
	if err != nil {
		return r.fail(fmt.Errorf("acquire image: %w", err))
	}

	// The acquired image may still be referenced by an older frame running
	// on a different slot. Wait that frame out before reusing the image.
	if prev, ok := r.imagesInFlight[imageIndex]; ok && prev != fence {
		if err := prev.Wait(fenceWaitTimeout); err != nil {
			return r.fail(fmt.Errorf("image %d fence wait: %w", imageIndex, err))
		}
	}
	r.imagesInFlight[imageIndex] = fence

	if err := r.backend.WriteUniforms(slot, packet); err != nil {
		return r.fail(fmt.Errorf("write uniforms: %w", err))
	}
	if err := r.backend.Record(slot, imageIndex, packet); err != nil {
		return r.fail(fmt.Errorf("record commands: %w", err))
	}

	// Reset only once new work is definitely being submitted, otherwise an
	// early-out frame would deadlock the next wait on this slot.
	if err := fence.Reset(); err != nil {
		return r.fail(fmt.Errorf("fence reset: %w", err))
	}
	if err := r.backend.Submit(slot, imageIndex); err != nil {
		return r.fail(fmt.Errorf("submit: %w", err))
	}

	err = r.backend.Present(slot, imageIndex)
	r.currentSlot = (slot + 1) % r.backend.SlotCount()
	if errors.Is(err, core.ErrSurfaceStale) {
		// Stale at present: the frame's work is done, only the display
		// missed out. Rebuild for the next frame and carry on.
		if err := r.recreate(); err != nil {
			return r.fail(err)
		}
		r.consecutiveFailures = 0
		return nil
	}
	if err != nil {
		return r.fail(fmt.Errorf("present: %w", err))
	}

	r.consecutiveFailures = 0
	return nil
}

// recreate drains the GPU and rebuilds the swapchain at the current surface
// size. Image fences are dropped because the images they guarded no longer
// exist.
func (r *Renderer) recreate() error {
	if err := r.backend.WaitIdle(); err != nil {
		return fmt.Errorf("wait idle before recreate: %w", err)
	}
	if err := r.backend.Recreate(r.framebufferWidth, r.framebufferHeight); err != nil {
		return fmt.Errorf("recreate swapchain: %w", err)
	}
	r.imagesInFlight = make(map[uint32]Fence)
	r.lastSizeGeneration = r.sizeGeneration
	return nil
}

// fail records one failed frame. The first failure is reported but
// recoverable; a second consecutive one escalates to a lost surface.
func (r *Renderer) fail(err error) error {
	r.consecutiveFailures++
	if r.consecutiveFailures >= 2 {
		core.LogError("frame failed twice in a row, giving up: %s", err)
		return core.ErrSurfaceLost
	}
	core.LogWarn("frame failed, will retry: %s", err)
	return err
}
