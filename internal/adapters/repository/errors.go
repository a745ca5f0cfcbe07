package repository

import "errors"

// Sentinel kinds for dataset store errors.
var (
	ErrSuperseded = errors.New("reload superseded by a newer generation")
	ErrNoSnapshot = errors.New("no dataset committed yet")
)
