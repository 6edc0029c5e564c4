package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func keyEvent(typ uint32, code sdl.Scancode, repeat uint8) *sdl.KeyboardEvent {
	return &sdl.KeyboardEvent{Type: typ, Repeat: repeat, Keysym: sdl.Keysym{Scancode: code}}
}

func TestKeyPressAndHold(t *testing.T) {
	in := New()

	in.reset()
	in.handle(keyEvent(sdl.KEYDOWN, sdl.SCANCODE_SPACE, 0))
	if !in.IsKeyPressed(sdl.SCANCODE_SPACE) {
		t.Error("space should be pressed this frame")
	}
	if !in.IsKeyHeld(sdl.SCANCODE_SPACE) {
		t.Error("space should be held")
	}

	// Auto-repeat keeps the key held but is not a new press.
	in.reset()
	in.handle(keyEvent(sdl.KEYDOWN, sdl.SCANCODE_SPACE, 1))
	if in.IsKeyPressed(sdl.SCANCODE_SPACE) {
		t.Error("repeat should not count as a press")
	}
	if !in.IsKeyHeld(sdl.SCANCODE_SPACE) {
		t.Error("space should still be held")
	}

	in.reset()
	in.handle(keyEvent(sdl.KEYUP, sdl.SCANCODE_SPACE, 0))
	if in.IsKeyHeld(sdl.SCANCODE_SPACE) {
		t.Error("space should be released")
	}
}

func TestDragOnlyWhileButtonDown(t *testing.T) {
	in := New()

	in.reset()
	in.handle(&sdl.MouseMotionEvent{XRel: 5, YRel: 3})
	if dx, dy := in.Drag(); dx != 0 || dy != 0 {
		t.Errorf("drag without button = (%d, %d), want (0, 0)", dx, dy)
	}

	in.handle(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_LEFT})
	in.handle(&sdl.MouseMotionEvent{XRel: 5, YRel: 3})
	in.handle(&sdl.MouseMotionEvent{XRel: -2, YRel: 1})
	if dx, dy := in.Drag(); dx != 3 || dy != 4 {
		t.Errorf("drag = (%d, %d), want (3, 4)", dx, dy)
	}

	in.reset()
	if dx, dy := in.Drag(); dx != 0 || dy != 0 {
		t.Errorf("drag after reset = (%d, %d), want (0, 0)", dx, dy)
	}

	in.handle(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, Button: sdl.BUTTON_LEFT})
	in.handle(&sdl.MouseMotionEvent{XRel: 7, YRel: 7})
	if dx, dy := in.Drag(); dx != 0 || dy != 0 {
		t.Errorf("drag after release = (%d, %d), want (0, 0)", dx, dy)
	}
}

func TestWheelAndResize(t *testing.T) {
	in := New()
	in.reset()
	in.handle(&sdl.MouseWheelEvent{Y: 2})
	in.handle(&sdl.MouseWheelEvent{Y: -1})
	in.handle(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESIZED, Data1: 800, Data2: 600})

	if in.Wheel() != 1 {
		t.Errorf("Wheel() = %d, want 1", in.Wheel())
	}

	var resized bool
	for _, e := range in.Events() {
		if e.Type == EventWindowResize {
			resized = true
			if e.Width != 800 || e.Height != 600 {
				t.Errorf("resize = %dx%d, want 800x600", e.Width, e.Height)
			}
		}
	}
	if !resized {
		t.Error("expected a resize event")
	}
}

func TestQuit(t *testing.T) {
	in := New()
	in.reset()
	in.handle(&sdl.QuitEvent{})
	if !in.quit {
		t.Error("quit event should request exit")
	}
}
