package renderer

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glint3d/glint/engine/core"
	"github.com/glint3d/glint/engine/scene"
)

// fakeFence records wait/reset traffic into the shared call log. A fence
// with a gate blocks Wait until the gate closes, standing in for a GPU that
// has not finished the slot's work yet.
type fakeFence struct {
	name    string
	log     *[]string
	waitErr error
	gate    chan struct{}
}

func (f *fakeFence) Wait(timeoutNs uint64) error {
	*f.log = append(*f.log, "wait:"+f.name)
	if f.gate != nil {
		<-f.gate
	}
	return f.waitErr
}

func (f *fakeFence) Reset() error {
	*f.log = append(*f.log, "reset:"+f.name)
	return nil
}

// fakeBackend scripts acquire/present outcomes and records every call so
// tests can assert ordering.
type fakeBackend struct {
	log    []string
	slots  int
	fences []*fakeFence

	acquireResults []acquireResult
	presentErrs    []error

	imageFences map[uint32]Fence

	// Swapchain shape, re-reported on every recreation so tests can assert
	// a rebuild at the same surface keeps it stable.
	imageCount  int
	format      string
	recreations []chainShape
}

type chainShape struct {
	imageCount int
	format     string
}

type acquireResult struct {
	image uint32
	err   error
}

func newFakeBackend(slots int) *fakeBackend {
	b := &fakeBackend{
		slots:       slots,
		imageFences: map[uint32]Fence{},
		imageCount:  3,
		format:      "BGRA8_SRGB",
	}
	for i := 0; i < slots; i++ {
		b.fences = append(b.fences, &fakeFence{name: fmt.Sprintf("slot%d", i), log: &b.log})
	}
	return b
}

func (b *fakeBackend) Initialize(appName string, width, height uint32) error { return nil }
func (b *fakeBackend) Shutdown() error                                       { return nil }
func (b *fakeBackend) SlotCount() int                                        { return b.slots }
func (b *fakeBackend) SlotFence(slot int) Fence                              { return b.fences[slot] }

func (b *fakeBackend) AcquireImage(slot int) (uint32, error) {
	b.log = append(b.log, fmt.Sprintf("acquire:slot%d", slot))
	if len(b.acquireResults) == 0 {
		return uint32(slot), nil
	}
	r := b.acquireResults[0]
	b.acquireResults = b.acquireResults[1:]
	return r.image, r.err
}

func (b *fakeBackend) WriteUniforms(slot int, packet *scene.FramePacket) error {
	b.log = append(b.log, fmt.Sprintf("uniforms:slot%d", slot))
	return nil
}

func (b *fakeBackend) Record(slot int, imageIndex uint32, packet *scene.FramePacket) error {
	b.log = append(b.log, fmt.Sprintf("record:slot%d:image%d", slot, imageIndex))
	return nil
}

func (b *fakeBackend) Submit(slot int, imageIndex uint32) error {
	b.log = append(b.log, fmt.Sprintf("submit:slot%d", slot))
	return nil
}

func (b *fakeBackend) Present(slot int, imageIndex uint32) error {
	b.log = append(b.log, fmt.Sprintf("present:image%d", imageIndex))
	if len(b.presentErrs) == 0 {
		return nil
	}
	err := b.presentErrs[0]
	b.presentErrs = b.presentErrs[1:]
	return err
}

func (b *fakeBackend) Recreate(width, height uint32) error {
	b.log = append(b.log, fmt.Sprintf("recreate:%dx%d", width, height))
	b.recreations = append(b.recreations, chainShape{b.imageCount, b.format})
	return nil
}

func (b *fakeBackend) RebuildPipelines() error {
	b.log = append(b.log, "rebuildpipelines")
	return nil
}

func (b *fakeBackend) WaitIdle() error {
	b.log = append(b.log, "waitidle")
	return nil
}

func newTestRenderer(b *fakeBackend) *Renderer {
	r := New(b)
	r.framebufferWidth = 800
	r.framebufferHeight = 600
	return r
}

func assertLog(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("call log length %d, want %d\ngot:  %v\nwant: %v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d: got %q, want %q\nfull log: %v", i, got[i], want[i], got)
		}
	}
}

func TestDrawFrameOrdering(t *testing.T) {
	b := newFakeBackend(2)
	r := newTestRenderer(b)

	if err := r.DrawFrame(&scene.FramePacket{}); err != nil {
		t.Fatal(err)
	}
	// Uniform writes happen strictly after the slot fence wait and before
	// submission; the fence resets only right before submit.
	assertLog(t, b.log, []string{
		"wait:slot0",
		"acquire:slot0",
		"uniforms:slot0",
		"record:slot0:image0",
		"reset:slot0",
		"submit:slot0",
		"present:image0",
	})
}

func TestDrawFrameRotatesSlots(t *testing.T) {
	b := newFakeBackend(2)
	r := newTestRenderer(b)

	for i := 0; i < 4; i++ {
		if err := r.DrawFrame(&scene.FramePacket{}); err != nil {
			t.Fatal(err)
		}
	}
	var waits []string
	for _, entry := range b.log {
		if entry == "wait:slot0" || entry == "wait:slot1" {
			waits = append(waits, entry)
		}
	}
	assertLog(t, waits, []string{"wait:slot0", "wait:slot1", "wait:slot0", "wait:slot1"})
}

func TestStaleAcquireRecreatesAndRetries(t *testing.T) {
	b := newFakeBackend(2)
	b.acquireResults = []acquireResult{
		{0, core.ErrSurfaceStale},
		{0, nil},
	}
	r := newTestRenderer(b)

	if err := r.DrawFrame(&scene.FramePacket{}); err != nil {
		t.Fatal(err)
	}
	assertLog(t, b.log, []string{
		"wait:slot0",
		"acquire:slot0",
		"waitidle",
		"recreate:800x600",
		"acquire:slot0",
		"uniforms:slot0",
		"record:slot0:image0",
		"reset:slot0",
		"submit:slot0",
		"present:image0",
	})
}

func TestStalePresentRecreatesWithoutError(t *testing.T) {
	b := newFakeBackend(2)
	b.presentErrs = []error{core.ErrSurfaceStale}
	r := newTestRenderer(b)

	if err := r.DrawFrame(&scene.FramePacket{}); err != nil {
		t.Fatalf("stale present must not surface as an error, got %v", err)
	}
	last := b.log[len(b.log)-1]
	if last != "recreate:800x600" {
		t.Errorf("expected a recreate after stale present, log ends with %q", last)
	}
	// Recovery resets the failure streak.
	if err := r.DrawFrame(&scene.FramePacket{}); err != nil {
		t.Fatal(err)
	}
}

func TestTwoConsecutiveFailuresAreFatal(t *testing.T) {
	b := newFakeBackend(2)
	b.acquireResults = []acquireResult{
		{0, core.ErrSurfaceStale},
		{0, core.ErrSurfaceStale}, // retry after recreate also stale
		{0, core.ErrSurfaceStale},
		{0, core.ErrSurfaceStale},
	}
	r := newTestRenderer(b)

	err := r.DrawFrame(&scene.FramePacket{})
	if err == nil || errors.Is(err, core.ErrSurfaceLost) {
		t.Fatalf("first failure should be recoverable, got %v", err)
	}
	err = r.DrawFrame(&scene.FramePacket{})
	if !errors.Is(err, core.ErrSurfaceLost) {
		t.Fatalf("second consecutive failure should be fatal, got %v", err)
	}
}

func TestSuccessResetsFailureStreak(t *testing.T) {
	b := newFakeBackend(2)
	b.acquireResults = []acquireResult{
		{0, core.ErrSurfaceStale},
		{0, core.ErrSurfaceStale},
		{0, nil}, // frame 2 recovers
		{1, core.ErrSurfaceStale},
		{1, core.ErrSurfaceStale},
	}
	r := newTestRenderer(b)

	if err := r.DrawFrame(&scene.FramePacket{}); err == nil {
		t.Fatal("expected a recoverable failure")
	}
	if err := r.DrawFrame(&scene.FramePacket{}); err != nil {
		t.Fatalf("recovery frame: %v", err)
	}
	// The next failure starts a fresh streak instead of being fatal.
	err := r.DrawFrame(&scene.FramePacket{})
	if err == nil || errors.Is(err, core.ErrSurfaceLost) {
		t.Fatalf("streak should have reset, got %v", err)
	}
}

func TestImageInFlightWaitsOtherSlotFence(t *testing.T) {
	b := newFakeBackend(2)
	// Both frames acquire image 0: the second frame runs on slot 1 but must
	// wait out slot 0's fence which still guards the image.
	b.acquireResults = []acquireResult{{0, nil}, {0, nil}}
	r := newTestRenderer(b)

	if err := r.DrawFrame(&scene.FramePacket{}); err != nil {
		t.Fatal(err)
	}
	if err := r.DrawFrame(&scene.FramePacket{}); err != nil {
		t.Fatal(err)
	}
	// Second frame: wait slot1 fence, acquire, then wait slot0 fence for
	// the contested image before touching any slot resources.
	want := []string{
		"wait:slot1",
		"acquire:slot1",
		"wait:slot0",
		"uniforms:slot1",
	}
	start := -1
	for i, entry := range b.log {
		if entry == "wait:slot1" {
			start = i
			break
		}
	}
	if start < 0 || start+len(want) > len(b.log) {
		t.Fatalf("second frame not found in log: %v", b.log)
	}
	assertLog(t, b.log[start:start+len(want)], want)
}

func TestResizeSkipsFrameAndRecreatesOnce(t *testing.T) {
	b := newFakeBackend(2)
	r := newTestRenderer(b)

	// A burst of resize events coalesces into a single rebuild.
	r.OnResize(1024, 768)
	r.OnResize(1920, 1080)

	if err := r.DrawFrame(&scene.FramePacket{}); err != nil {
		t.Fatal(err)
	}
	assertLog(t, b.log, []string{"waitidle", "recreate:1920x1080"})

	b.log = nil
	if err := r.DrawFrame(&scene.FramePacket{}); err != nil {
		t.Fatal(err)
	}
	for _, entry := range b.log {
		if entry == "recreate:1920x1080" {
			t.Fatal("second frame must not recreate again")
		}
	}
}

func TestShaderReloadAppliesAtFrameBoundary(t *testing.T) {
	b := newFakeBackend(2)
	r := newTestRenderer(b)

	// The request arrives from the watcher goroutine while a frame may be
	// mid-flight; it must not touch the backend by itself. Two requests in
	// a burst coalesce into one rebuild.
	r.ReloadShaders()
	r.ReloadShaders()
	if len(b.log) != 0 {
		t.Fatalf("reload request must not touch the backend: %v", b.log)
	}

	if err := r.DrawFrame(&scene.FramePacket{}); err != nil {
		t.Fatal(err)
	}
	// The drain and rebuild run before this frame waits on anything.
	assertLog(t, b.log[:3], []string{"waitidle", "rebuildpipelines", "wait:slot0"})
	for _, entry := range b.log[3:] {
		if entry == "rebuildpipelines" {
			t.Fatal("burst of requests must rebuild once")
		}
	}

	b.log = nil
	if err := r.DrawFrame(&scene.FramePacket{}); err != nil {
		t.Fatal(err)
	}
	for _, entry := range b.log {
		if entry == "rebuildpipelines" {
			t.Fatal("rebuild must not repeat without a new request")
		}
	}
}

func TestThirdFrameBlocksUntilFenceSignals(t *testing.T) {
	b := newFakeBackend(2)
	r := newTestRenderer(b)

	// Two frames run ahead of the GPU.
	if err := r.DrawFrame(&scene.FramePacket{}); err != nil {
		t.Fatal(err)
	}
	if err := r.DrawFrame(&scene.FramePacket{}); err != nil {
		t.Fatal(err)
	}

	// Frame 3 reuses slot 0, whose work the GPU has not finished.
	gate := make(chan struct{})
	b.fences[0].gate = gate

	done := make(chan error, 1)
	go func() {
		done <- r.DrawFrame(&scene.FramePacket{})
	}()

	select {
	case err := <-done:
		t.Fatalf("third frame finished before the slot fence signaled (err=%v)", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestRecreateKeepsChainShape(t *testing.T) {
	b := newFakeBackend(2)
	r := newTestRenderer(b)

	// Two back-to-back rebuilds at the same surface size.
	r.OnResize(1024, 768)
	if err := r.DrawFrame(&scene.FramePacket{}); err != nil {
		t.Fatal(err)
	}
	r.OnResize(1024, 768)
	if err := r.DrawFrame(&scene.FramePacket{}); err != nil {
		t.Fatal(err)
	}

	if len(b.recreations) != 2 {
		t.Fatalf("recreations = %d, want 2", len(b.recreations))
	}
	if b.recreations[0] != b.recreations[1] {
		t.Errorf("chain shape changed across recreations: %+v then %+v",
			b.recreations[0], b.recreations[1])
	}
}

func TestZeroSizedSurfaceSkipsFrame(t *testing.T) {
	b := newFakeBackend(2)
	r := newTestRenderer(b)
	r.OnResize(0, 0)

	if err := r.DrawFrame(&scene.FramePacket{}); err != nil {
		t.Fatal(err)
	}
	if len(b.log) != 0 {
		t.Fatalf("minimized frame must not touch the backend: %v", b.log)
	}
}
