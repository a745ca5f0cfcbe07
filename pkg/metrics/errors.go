package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrCollectorRunning = errors.New("system collector already running")
)
