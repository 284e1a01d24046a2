package canopy

import "image"

// EventType identifies a platform window event.
type EventType uint8

const (
	EventClosed       EventType = iota // the user asked to close the window
	EventResized                       // the window's outside size changed
	EventFocusLost                     // the window lost input focus
	EventFocusGained                   // the window gained input focus
)

// String returns the event name, used in log output and test scripts.
func (t EventType) String() string {
	switch t {
	case EventClosed:
		return "closed"
	case EventResized:
		return "resized"
	case EventFocusLost:
		return "focus_lost"
	case EventFocusGained:
		return "focus_gained"
	default:
		return "unknown"
	}
}

// Event is a platform window event. Width and Height are set for
// EventResized.
type Event struct {
	Type          EventType
	Width, Height int
}

// Window is the native surface a RenderLoop draws into. Its Target methods
// expose the back buffer the frame is drawn on.
type Window interface {
	Target
	// IsOpen reports whether the native surface still exists.
	IsOpen() bool
	// Clear fills the back buffer with c.
	Clear(c Color)
	// Display presents the back buffer. It may block to honor the frame
	// rate cap or vsync.
	Display()
	// PollEvent pops the oldest pending event.
	PollEvent() (Event, bool)
	// Close destroys the native surface. Further calls are no-ops.
	Close()
	// SetCursorVisible shows or hides the mouse cursor over the window.
	SetCursorVisible(visible bool)
}

// Platform creates windows. It is the seam between the render loop and the
// windowing backend: EbitenPlatform for real windows, HeadlessPlatform for
// tests and off-screen rendering.
type Platform interface {
	// FullscreenModes lists the supported full-screen modes, largest first.
	FullscreenModes() []VideoMode
	// OpenWindow creates a window with the given configuration.
	OpenWindow(cfg WindowConfig) (Window, error)
}

// EventInjector is implemented by windows that accept synthetic events.
type EventInjector interface {
	Inject(ev Event)
}

// ScreenCapturer is implemented by windows that can read back their last
// presented frame. Screenshots queued on other windows are dropped.
type ScreenCapturer interface {
	CaptureScreen() (image.Image, error)
}
