package canopy

import (
	"fmt"
	"sync/atomic"
	"time"
)

// windowHandle boxes a Window so it can live in an atomic.Pointer.
type windowHandle struct {
	w   Window
	cfg WindowConfig
}

// RenderLoop owns the window and the top-level stack and drives frames.
//
// States: Stopped (no window) and Running (window open). While Running, the
// loop is either Idle or InFrame. Update runs one frame at a time; a second
// Update while a frame is in flight, including one made from the close
// handler, returns immediately. Stop never destroys the window under an
// in-flight frame: it is a silent no-op until the frame completes.
//
// The frame runs entirely on the goroutine calling Update. Other goroutines
// are never blocked by it, except that Stop and Update observe the in-frame
// flag and skip. Binding or removing nodes while a frame is in flight is the
// caller's responsibility to avoid.
type RenderLoop struct {
	platform Platform
	settings Settings

	window  atomic.Pointer[windowHandle]
	inFrame atomic.Bool
	stack   Stack

	onClose    func() bool
	onEvent    func(Event)
	clearColor Color
	debug      bool
	frames     atomic.Uint64

	// ScreenshotDir is the directory Screenshot writes PNG files into.
	ScreenshotDir string

	screenshotQueue []string
	testRunner      *TestRunner
}

// NewRenderLoop creates a stopped render loop. settings may be nil, in which
// case windows use DefaultWindowConfig clamped to the platform's modes.
func NewRenderLoop(platform Platform, settings Settings) *RenderLoop {
	if platform == nil {
		panic("canopy: render loop needs a platform")
	}
	return &RenderLoop{
		platform:      platform,
		settings:      settings,
		clearColor:    ColorBlack,
		ScreenshotDir: "screenshots",
	}
}

// --- Lifecycle ---

// Start opens the window. No-op when already running. Settings are read here
// and only here.
func (l *RenderLoop) Start() error {
	if l.window.Load() != nil {
		return nil
	}
	cfg := LoadWindowConfig(l.settings, l.platform.FullscreenModes())
	w, err := l.platform.OpenWindow(cfg)
	if err != nil {
		return fmt.Errorf("canopy: failed to open window: %w", err)
	}
	w.SetCursorVisible(false)
	if !l.window.CompareAndSwap(nil, &windowHandle{w: w, cfg: cfg}) {
		// A concurrent Start won.
		w.Close()
		return nil
	}
	Logger().Info("canopy: window opened",
		"title", cfg.Title, "width", cfg.Width, "height", cfg.Height,
		"frame_rate", cfg.FrameRate, "vsync", cfg.Vsync)
	return nil
}

// Stop closes the window. No-op when stopped, and when a frame is in flight.
func (l *RenderLoop) Stop() error {
	if l.window.Load() == nil {
		return nil
	}
	// Claim the frame flag so no Update can start drawing on the window
	// while it is being closed.
	if !l.inFrame.CompareAndSwap(false, true) {
		Logger().Debug("canopy: stop ignored during frame update")
		return nil
	}
	defer l.inFrame.Store(false)
	l.closeWindow("stopped")
	return nil
}

// closeWindow destroys the window and moves the loop to Stopped.
func (l *RenderLoop) closeWindow(reason string) {
	h := l.window.Swap(nil)
	if h == nil {
		return
	}
	h.w.Close()
	Logger().Info("canopy: window closed", "reason", reason)
}

// Running reports whether the loop has a window.
func (l *RenderLoop) Running() bool {
	return l.window.Load() != nil
}

// InFrame reports whether a frame update, or a Stop, is executing.
func (l *RenderLoop) InFrame() bool {
	return l.inFrame.Load()
}

// Window returns the current window, or nil when stopped.
func (l *RenderLoop) Window() Window {
	if h := l.window.Load(); h != nil {
		return h.w
	}
	return nil
}

// Config returns the configuration the current window was opened with.
// ok is false when stopped.
func (l *RenderLoop) Config() (cfg WindowConfig, ok bool) {
	if h := l.window.Load(); h != nil {
		return h.cfg, true
	}
	return WindowConfig{}, false
}

// Frames returns the number of frames completed since the loop was created.
func (l *RenderLoop) Frames() uint64 {
	return l.frames.Load()
}

// --- Top-level stack ---

// Stack returns the top-level stack. It persists across Start/Stop cycles.
func (l *RenderLoop) Stack() *Stack {
	return &l.stack
}

// Bind appends n to the top-level stack.
func (l *RenderLoop) Bind(n *Node) {
	l.stack.Bind(n)
}

// --- Handlers ---

// SetCloseHandler registers fn to decide what happens when the user closes
// the window. fn runs once per frame that captured a close request; returning
// false vetoes the close. A nil fn restores the default of always closing.
func (l *RenderLoop) SetCloseHandler(fn func() bool) {
	l.onClose = fn
}

// SetEventHandler registers fn to receive window events other than the close
// request. Events are delivered in order during the frame's event poll.
func (l *RenderLoop) SetEventHandler(fn func(Event)) {
	l.onEvent = fn
}

// SetClearColor sets the color the window is cleared to each frame.
func (l *RenderLoop) SetClearColor(c Color) {
	l.clearColor = c
}

// SetDebugMode enables or disables per-frame stats, logged at debug level.
func (l *RenderLoop) SetDebugMode(enabled bool) {
	l.debug = enabled
}

// --- Frame ---

// Update runs one frame: clear, draw the top-level stack, present, poll
// events, then settle any close request.
//
// It returns ErrNotStarted when stopped, nil without doing anything when a
// frame or a Stop is already in flight, ErrWindowClosedUnexpectedly when the
// window vanished without a close request, and ErrWindowClosedByUser when a
// close request was not vetoed. The last two leave the loop stopped.
func (l *RenderLoop) Update() error {
	if l.window.Load() == nil {
		return ErrNotStarted
	}
	if !l.inFrame.CompareAndSwap(false, true) {
		return nil
	}
	defer l.inFrame.Store(false)

	// Stop may have won the race between the check above and the flag.
	h := l.window.Load()
	if h == nil {
		return ErrNotStarted
	}

	closeRequested, err := l.frame(h.w)
	if err != nil {
		return err
	}
	if !closeRequested {
		return nil
	}
	return l.settleClose()
}

// frame executes one clear-draw-present-poll cycle on w.
func (l *RenderLoop) frame(w Window) (closeRequested bool, err error) {
	if !w.IsOpen() {
		l.closeWindow("window lost")
		return false, ErrWindowClosedUnexpectedly
	}
	if l.testRunner != nil {
		l.testRunner.step(l)
	}

	var stats frameStats
	var t0 time.Time
	if l.debug {
		t0 = time.Now()
	}

	w.Clear(l.clearColor)
	stats.viewResets = drawStack(w, &l.stack, w.DefaultView())

	if l.debug {
		stats.drawTime = time.Since(t0)
		stats.nodeCount = countNodes(&l.stack)
		t0 = time.Now()
	}

	w.Display()

	if l.debug {
		stats.presentTime = time.Since(t0)
	}

	l.flushScreenshots(w)
	closeRequested, stats.events = l.pollEvents(w)
	l.frames.Add(1)

	if l.debug {
		l.debugLog(stats)
	}
	return closeRequested, nil
}

// pollEvents drains w's event queue. The first close request is captured and
// every event after it in the same poll is discarded, so exactly one close
// decision is made per frame. A captured request is consumed: a vetoed close
// does not fire again on the next frame.
func (l *RenderLoop) pollEvents(w Window) (closeRequested bool, n int) {
	for {
		ev, ok := w.PollEvent()
		if !ok {
			return closeRequested, n
		}
		n++
		if closeRequested {
			continue
		}
		if ev.Type == EventClosed {
			closeRequested = true
			continue
		}
		if l.onEvent != nil {
			l.onEvent(ev)
		}
	}
}

// settleClose runs the close handler and closes the window unless vetoed.
// The in-frame flag is still set, so Update and Stop calls made by the
// handler are no-ops.
func (l *RenderLoop) settleClose() error {
	if fn := l.onClose; fn != nil && !fn() {
		Logger().Warn("canopy: window close vetoed by close handler")
		return nil
	}
	l.closeWindow("closed by user")
	return ErrWindowClosedByUser
}
