package core

import "errors"

// Error taxonomy surfaced to API callers. Storage failures that don't map to
// one of these are persistence errors and bubble up unwrapped.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)
