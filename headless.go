package canopy

import (
	"errors"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// HeadlessPlatform opens off-screen windows backed by plain images. It is used
// by tests and for rendering without a display. Windows it opens accept
// injected events, so a test can simulate the user closing the window.
type HeadlessPlatform struct {
	// Modes is returned by FullscreenModes.
	Modes []VideoMode
	// OpenErr, when set, makes OpenWindow fail with it.
	OpenErr error

	mu     sync.Mutex
	opened []*HeadlessWindow
}

// NewHeadlessPlatform creates a headless platform reporting the given
// full-screen modes. With no modes, 1920x1080 at 32 bits per pixel is used.
func NewHeadlessPlatform(modes ...VideoMode) *HeadlessPlatform {
	if len(modes) == 0 {
		modes = []VideoMode{{Width: 1920, Height: 1080, BitsPerPixel: 32}}
	}
	return &HeadlessPlatform{Modes: modes}
}

// FullscreenModes returns p.Modes.
func (p *HeadlessPlatform) FullscreenModes() []VideoMode {
	return p.Modes
}

// OpenWindow creates a HeadlessWindow with a cfg.Width x cfg.Height back buffer.
func (p *HeadlessPlatform) OpenWindow(cfg WindowConfig) (Window, error) {
	if p.OpenErr != nil {
		return nil, p.OpenErr
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("headless: window size must be positive")
	}
	w := &HeadlessWindow{
		ImageTarget:   NewImageTarget(ebiten.NewImage(cfg.Width, cfg.Height)),
		config:        cfg,
		open:          true,
		cursorVisible: true,
	}
	p.mu.Lock()
	p.opened = append(p.opened, w)
	p.mu.Unlock()
	return w, nil
}

// Opened returns every window opened so far, oldest first.
func (p *HeadlessPlatform) Opened() []*HeadlessWindow {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*HeadlessWindow(nil), p.opened...)
}

// Last returns the most recently opened window, or nil.
func (p *HeadlessPlatform) Last() *HeadlessWindow {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.opened) == 0 {
		return nil
	}
	return p.opened[len(p.opened)-1]
}

// HeadlessWindow is an off-screen Window. Display only counts presents.
type HeadlessWindow struct {
	*ImageTarget

	config WindowConfig

	mu            sync.Mutex
	open          bool
	events        []Event
	presented     int
	cursorVisible bool
}

// Config returns the configuration the window was opened with.
func (w *HeadlessWindow) Config() WindowConfig { return w.config }

// IsOpen reports whether the window has not been closed or killed.
func (w *HeadlessWindow) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// Clear fills the back buffer with c.
func (w *HeadlessWindow) Clear(c Color) {
	w.Image().Fill(c.toRGBA())
}

// Display counts a present.
func (w *HeadlessWindow) Display() {
	w.mu.Lock()
	w.presented++
	w.mu.Unlock()
}

// Presented returns the number of Display calls.
func (w *HeadlessWindow) Presented() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.presented
}

// PollEvent pops the oldest injected event.
func (w *HeadlessWindow) PollEvent() (Event, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.events) == 0 {
		return Event{}, false
	}
	ev := w.events[0]
	w.events[0] = Event{}
	w.events = w.events[1:]
	return ev, true
}

// Inject queues ev for the next PollEvent. Safe for concurrent use.
func (w *HeadlessWindow) Inject(ev Event) {
	w.mu.Lock()
	w.events = append(w.events, ev)
	w.mu.Unlock()
}

// InjectClose queues a close request, as if the user clicked the close button.
func (w *HeadlessWindow) InjectClose() {
	w.Inject(Event{Type: EventClosed})
}

// Kill makes the window vanish without a close request, as when the native
// surface is destroyed behind the loop's back.
func (w *HeadlessWindow) Kill() {
	w.mu.Lock()
	w.open = false
	w.mu.Unlock()
}

// Close marks the window closed and drops pending events. The back buffer is
// kept so tests can inspect the last frame.
func (w *HeadlessWindow) Close() {
	w.mu.Lock()
	w.open = false
	w.events = nil
	w.mu.Unlock()
}

// SetCursorVisible records the cursor visibility.
func (w *HeadlessWindow) SetCursorVisible(visible bool) {
	w.mu.Lock()
	w.cursorVisible = visible
	w.mu.Unlock()
}

// CursorVisible reports the last value passed to SetCursorVisible.
func (w *HeadlessWindow) CursorVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cursorVisible
}
