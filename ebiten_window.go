package canopy

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrSingleWindow is returned by EbitenPlatform.OpenWindow once a window has
// already been opened. Ebitengine drives one window per process.
var ErrSingleWindow = errors.New("canopy: ebiten platform supports a single window per process")

// EbitenPlatform opens a desktop window driven by Ebitengine.
//
// Ebitengine owns the main goroutine and calls back into the game, while
// RenderLoop is driven by its caller. Run bridges the two: the caller's frame
// loop runs on its own goroutine and each Window.Display hands the finished
// frame to Ebitengine's Draw and waits until it has been shown.
type EbitenPlatform struct {
	mu     sync.Mutex
	win    *EbitenWindow
	opened chan struct{}
}

// NewEbitenPlatform creates the platform. Call Run from the main goroutine.
func NewEbitenPlatform() *EbitenPlatform {
	return &EbitenPlatform{opened: make(chan struct{})}
}

// FullscreenModes reports the primary monitor size as the only mode.
func (p *EbitenPlatform) FullscreenModes() []VideoMode {
	m := ebiten.Monitor()
	if m == nil {
		return nil
	}
	w, h := m.Size()
	if w <= 0 || h <= 0 {
		return nil
	}
	return []VideoMode{{Width: w, Height: h, BitsPerPixel: DefaultBPP}}
}

// OpenWindow configures the Ebitengine window. The native window appears
// once Run hands control to Ebitengine.
func (p *EbitenPlatform) OpenWindow(cfg WindowConfig) (Window, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.win != nil {
		return nil, ErrSingleWindow
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetTPS(cfg.FrameRate)
	ebiten.SetVsyncEnabled(cfg.Vsync)

	p.win = &EbitenWindow{
		ImageTarget:   NewImageTarget(ebiten.NewImage(cfg.Width, cfg.Height)),
		front:         ebiten.NewImage(cfg.Width, cfg.Height),
		config:        cfg,
		presented:     make(chan struct{}, 1),
		done:          make(chan struct{}),
		cursorVisible: true,
		focused:       true,
	}
	close(p.opened)
	return p.win, nil
}

// Run starts logic on a new goroutine and, once logic has opened a window,
// runs Ebitengine on the calling goroutine until the window goes away. It
// returns logic's error, joined with any error Ebitengine stopped with. If
// logic returns without opening a window, Run returns immediately.
//
// Run must be called from the main goroutine.
func (p *EbitenPlatform) Run(logic func() error) error {
	errc := make(chan error, 1)
	go func() {
		errc <- logic()
	}()

	select {
	case <-p.opened:
	case err := <-errc:
		return err
	}

	p.mu.Lock()
	win := p.win
	p.mu.Unlock()

	runErr := ebiten.RunGame(win)
	win.markLost()
	Logger().Debug("canopy: ebiten run loop ended", "err", runErr)

	logicErr := <-errc
	if runErr != nil && !errors.Is(runErr, ebiten.Termination) {
		return errors.Join(logicErr, fmt.Errorf("canopy: ebiten: %w", runErr))
	}
	return logicErr
}

// EbitenWindow is the Window opened by EbitenPlatform. Frames are drawn into
// a back buffer by the render loop's goroutine; Display copies it to the
// front buffer that Ebitengine's Draw shows.
type EbitenWindow struct {
	*ImageTarget

	config WindowConfig

	mu            sync.Mutex
	front         *ebiten.Image
	pending       bool
	events        []Event
	cursorVisible bool
	cursorApplied bool
	focused       bool
	outsideW      int
	outsideH      int

	presented chan struct{}
	done      chan struct{}
	doneOnce  sync.Once
	closed    atomic.Bool
	lost      atomic.Bool
}

// Config returns the configuration the window was opened with.
func (w *EbitenWindow) Config() WindowConfig { return w.config }

// IsOpen reports whether the window was neither closed nor lost.
func (w *EbitenWindow) IsOpen() bool {
	return !w.closed.Load() && !w.lost.Load()
}

// Clear fills the back buffer with c.
func (w *EbitenWindow) Clear(c Color) {
	w.Image().Fill(c.toRGBA())
}

// Display publishes the back buffer and blocks until Ebitengine has drawn it,
// which paces the caller to the frame rate and vsync setting.
func (w *EbitenWindow) Display() {
	if !w.IsOpen() {
		return
	}
	w.mu.Lock()
	w.front.Clear()
	w.front.DrawImage(w.Image(), nil)
	w.pending = true
	w.mu.Unlock()

	select {
	case <-w.presented:
	case <-w.done:
	}
}

// CaptureScreen reads back the last presented frame. Like Display it must be
// called from the goroutine driving the loop; w.mu is not held because Draw
// takes it while Ebitengine waits on the read.
func (w *EbitenWindow) CaptureScreen() (image.Image, error) {
	if !w.IsOpen() {
		return nil, errors.New("canopy: capture on a closed window")
	}
	return captureImage(w.front), nil
}

// PollEvent pops the oldest pending event.
func (w *EbitenWindow) PollEvent() (Event, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.events) == 0 {
		return Event{}, false
	}
	ev := w.events[0]
	w.events = w.events[1:]
	return ev, true
}

// Inject queues a synthetic event.
func (w *EbitenWindow) Inject(ev Event) {
	w.mu.Lock()
	w.events = append(w.events, ev)
	w.mu.Unlock()
}

// Close ends the Ebitengine run loop. Further calls are no-ops.
func (w *EbitenWindow) Close() {
	if w.closed.Swap(true) {
		return
	}
	w.doneOnce.Do(func() { close(w.done) })
}

// SetCursorVisible shows or hides the cursor over the window. Applied on the
// next Ebitengine tick.
func (w *EbitenWindow) SetCursorVisible(visible bool) {
	w.mu.Lock()
	w.cursorVisible = visible
	w.cursorApplied = false
	w.mu.Unlock()
}

// markLost records that Ebitengine stopped and unblocks any waiting Display.
func (w *EbitenWindow) markLost() {
	w.lost.Store(true)
	w.doneOnce.Do(func() { close(w.done) })
}

// --- ebiten.Game ---

// Update implements ebiten.Game. It turns window state changes into events.
func (w *EbitenWindow) Update() error {
	if w.closed.Load() {
		return ebiten.Termination
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if ebiten.IsWindowBeingClosed() {
		w.events = append(w.events, Event{Type: EventClosed})
	}
	if f := ebiten.IsFocused(); f != w.focused {
		w.focused = f
		if f {
			w.events = append(w.events, Event{Type: EventFocusGained})
		} else {
			w.events = append(w.events, Event{Type: EventFocusLost})
		}
	}
	if !w.cursorApplied {
		if w.cursorVisible {
			ebiten.SetCursorMode(ebiten.CursorModeVisible)
		} else {
			ebiten.SetCursorMode(ebiten.CursorModeHidden)
		}
		w.cursorApplied = true
	}
	return nil
}

// Draw implements ebiten.Game. It shows the last published frame and wakes
// the Display waiting on it.
func (w *EbitenWindow) Draw(screen *ebiten.Image) {
	w.mu.Lock()
	screen.DrawImage(w.front, nil)
	wasPending := w.pending
	w.pending = false
	w.mu.Unlock()

	if wasPending {
		select {
		case w.presented <- struct{}{}:
		default:
		}
	}
}

// Layout implements ebiten.Game. The logical screen keeps the configured
// size; outside size changes are reported as EventResized.
func (w *EbitenWindow) Layout(outsideWidth, outsideHeight int) (int, int) {
	w.mu.Lock()
	if w.outsideW != 0 && (w.outsideW != outsideWidth || w.outsideH != outsideHeight) {
		w.events = append(w.events, Event{Type: EventResized, Width: outsideWidth, Height: outsideHeight})
	}
	w.outsideW, w.outsideH = outsideWidth, outsideHeight
	w.mu.Unlock()
	return w.config.Width, w.config.Height
}
