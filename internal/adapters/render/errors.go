package render

import "errors"

// Sentinel errors for rendering.
var (
	// ErrNothingToRender reports degenerate geometry: no rows to draw or a
	// non-positive viewport. Callers draw nothing and move on.
	ErrNothingToRender = errors.New("nothing to render")
	ErrUnknownChart    = errors.New("unknown chart")
)
