package apperror

import "errors"

// Sentinel domain errors. Services wrap these with context, the fiber error
// handler maps them to HTTP status codes.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrBadRequest = errors.New("bad request")
)
