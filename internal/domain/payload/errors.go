package payload

import (
	"errors"
	"fmt"
)

var (
	ErrMissingInput       = errors.New("missing required input")
	ErrUnknownContentType = errors.New("unknown content type")
	ErrUnknownPlatform    = errors.New("unknown social platform")
)

// ValidationError is returned when fields cannot be turned into a payload.
// Err is one of the sentinels above, so errors.Is works through it.
type ValidationError struct {
	Type ContentType
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Type == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(t ContentType, err error) error {
	return &ValidationError{Type: t, Err: err}
}
