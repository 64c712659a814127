package core

import "testing"

func TestMouseMoveKeepsSignedCoordinates(t *testing.T) {
	if err := InputInitialize(); err != nil {
		t.Fatal(err)
	}
	EventSystemInitialize()
	defer InputShutdown()

	var got *MouseEvent
	EventRegister(EVENT_CODE_MOUSE_MOVED, func(ctx EventContext) {
		got, _ = ctx.Data.(*MouseEvent)
	})

	// A captured drag can leave the window: negative on the left edge, past
	// 65535 on a large high-DPI desktop.
	if err := InputProcessMouseMove(-24, 70000); err != nil {
		t.Fatal(err)
	}

	if got == nil {
		t.Fatal("no mouse-moved event fired")
	}
	if got.PosX != -24 || got.PosY != 70000 {
		t.Errorf("event position = (%d, %d), want (-24, 70000)", got.PosX, got.PosY)
	}
	x, y := InputGetMousePosition()
	if x != -24 || y != 70000 {
		t.Errorf("tracked position = (%d, %d), want (-24, 70000)", x, y)
	}
}
