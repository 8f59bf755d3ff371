package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidMood = errors.New("invalid mood")
	ErrValidation  = errors.New("validation failed")
	// ErrGeneration wraps generator failures that have no fallback path.
	ErrGeneration = errors.New("generation failed")

	// ErrDuplicate is returned by a store when a label or mood name is already taken.
	ErrDuplicate = errors.New("duplicate name")

	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
