package relations

import "errors"

// Sentinel error kinds for this package.
var (
	ErrDecode      = errors.New("decode relationships failed")
	ErrUnknownType = errors.New("unknown relationship type")
	ErrInvalid     = errors.New("invalid relationship")
)
