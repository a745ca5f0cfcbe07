package dataset

import "errors"

// Sentinel errors for dataset loading.
var (
	ErrFetch         = errors.New("fetch dataset failed")
	ErrMissingColumn = errors.New("required column missing")
	ErrMalformed     = errors.New("malformed row")
	ErrNotFound      = errors.New("dataset file not found")
)
