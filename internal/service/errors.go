package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrModerated    = fmt.Errorf("%w: moderated", ErrInvalidInput)
	ErrUpstream     = errors.New("upstream failure")
)

// ValidationError carries the single reason shown to the caller.
type ValidationError struct {
	Reason string
	kind   error
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error {
	if e.kind == nil {
		return ErrInvalidInput
	}
	return e.kind
}

func invalid(reason string) error {
	return &ValidationError{Reason: reason, kind: ErrInvalidInput}
}
