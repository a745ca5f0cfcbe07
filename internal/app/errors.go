package service

import "errors"

// Sentinel error kinds for this package.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrUnknownSession  = errors.New("unknown session")
	ErrTooManySessions = errors.New("too many sessions")
	ErrInvalidEvent    = errors.New("invalid ui event")
)
