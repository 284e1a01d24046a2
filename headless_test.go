package canopy

import "testing"

func TestHeadlessPlatformDefaultModes(t *testing.T) {
	p := NewHeadlessPlatform()
	modes := p.FullscreenModes()
	if len(modes) != 1 || modes[0].Width != 1920 || modes[0].Height != 1080 {
		t.Errorf("modes = %v, want [1920x1080]", modes)
	}
}

func TestHeadlessOpenWindowRejectsEmptySize(t *testing.T) {
	p := NewHeadlessPlatform()
	if _, err := p.OpenWindow(WindowConfig{Width: 0, Height: 10}); err == nil {
		t.Error("expected error for zero width")
	}
	if p.Last() != nil {
		t.Error("failed open should not be recorded")
	}
}

func TestHeadlessWindowEventQueue(t *testing.T) {
	p := NewHeadlessPlatform()
	win, err := p.OpenWindow(DefaultWindowConfig())
	if err != nil {
		t.Fatal(err)
	}
	w := win.(*HeadlessWindow)

	if _, ok := w.PollEvent(); ok {
		t.Fatal("new window should have no events")
	}
	w.Inject(Event{Type: EventFocusLost})
	w.InjectClose()

	ev, ok := w.PollEvent()
	if !ok || ev.Type != EventFocusLost {
		t.Errorf("first event = %v, %v; want focus_lost", ev, ok)
	}
	ev, ok = w.PollEvent()
	if !ok || ev.Type != EventClosed {
		t.Errorf("second event = %v, %v; want closed", ev, ok)
	}

	w.Inject(Event{Type: EventFocusGained})
	w.Close()
	if w.IsOpen() {
		t.Error("window should be closed")
	}
	if _, ok := w.PollEvent(); ok {
		t.Error("Close should drop pending events")
	}
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		typ  EventType
		want string
	}{
		{EventClosed, "closed"},
		{EventResized, "resized"},
		{EventFocusLost, "focus_lost"},
		{EventFocusGained, "focus_gained"},
		{EventType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("EventType(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}
