package checkout

import "errors"

// Request failures. Every error returned by this package either wraps one of
// these or is an internal failure.
var (
	ErrMissingField        = errors.New("missing field")
	ErrItemNotFound        = errors.New("item not found")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// MissingFieldError names the absent request or catalog field.
type MissingFieldError struct {
	Field string // e.g. "buyer address"
}

func (e *MissingFieldError) Error() string { return "missing " + e.Field }

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }
