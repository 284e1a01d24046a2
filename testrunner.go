package canopy

import (
	"encoding/json"
	"errors"
	"fmt"
)

// testStep is a single action in a test script.
type testStep struct {
	Action string `json:"action"`
	Label  string `json:"label,omitempty"`
	Frames int    `json:"frames,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// Test script actions.
const (
	actionScreenshot = "screenshot"
	actionWait       = "wait"
	actionClose      = "close"
	actionResize     = "resize"
	actionFocusLost  = "focus_lost"
	actionFocusGain  = "focus_gained"
)

// TestRunner sequences synthetic window events and screenshots across frames
// for automated visual testing. Attach to a RenderLoop via SetTestRunner.
//
// A script looks like:
//
//	{"steps": [
//	  {"action": "screenshot", "label": "start"},
//	  {"action": "wait", "frames": 10},
//	  {"action": "resize", "width": 800, "height": 600},
//	  {"action": "close"}
//	]}
//
// Event actions need a window implementing EventInjector; on other windows
// they are skipped with a warning.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached to a RenderLoop via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("parse test script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case actionScreenshot, actionWait, actionClose, actionResize, actionFocusLost, actionFocusGain:
		default:
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the loop. The runner advances one
// step at the start of each frame, before drawing.
func (l *RenderLoop) SetTestRunner(runner *TestRunner) {
	l.testRunner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the test runner by one frame.
func (r *TestRunner) step(l *RenderLoop) {
	if r.done {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case actionScreenshot:
		l.Screenshot(st.Label)
	case actionWait:
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case actionClose:
		r.inject(l, Event{Type: EventClosed})
	case actionResize:
		r.inject(l, Event{Type: EventResized, Width: st.Width, Height: st.Height})
	case actionFocusLost:
		r.inject(l, Event{Type: EventFocusLost})
	case actionFocusGain:
		r.inject(l, Event{Type: EventFocusGained})
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
}

func (r *TestRunner) inject(l *RenderLoop, ev Event) {
	inj, ok := l.Window().(EventInjector)
	if !ok {
		Logger().Warn("canopy: test runner cannot inject events into this window", "event", ev.Type.String())
		return
	}
	inj.Inject(ev)
}
