package canopy

import "errors"

var (
	// ErrNotStarted is returned by RenderLoop.Update when the loop has no
	// window. Call Start first.
	ErrNotStarted = errors.New("canopy: render loop is not started, window closed thus no graphics operation allowed")

	// ErrWindowClosedByUser is returned by RenderLoop.Update when the window
	// received a close request that the close handler did not veto. The loop
	// is stopped when this is returned.
	ErrWindowClosedByUser = errors.New("canopy: window has been closed by user")

	// ErrWindowClosedUnexpectedly is returned by RenderLoop.Update when the
	// native window reports it is no longer open without a close request.
	// The loop is stopped when this is returned.
	ErrWindowClosedUnexpectedly = errors.New("canopy: window was closed during update by an unknown cause")
)
