package profile

import (
	"errors"
	"fmt"
)

// Sentinel errors for document parsing and inheritance resolution.
var (
	// ErrInvalidDocument indicates the input is not a JSON object.
	ErrInvalidDocument = errors.New("invalid profile document")

	// ErrInvalidCategory indicates an unknown profile category.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrUnknownBaseProfile indicates an "inherits" reference that does not
	// exist in the bundled base profile index.
	ErrUnknownBaseProfile = errors.New("unknown base profile")

	// ErrInheritanceCycle indicates the inheritance chain exceeded the
	// resolution depth bound.
	ErrInheritanceCycle = errors.New("inheritance cycle")
)

// ResolutionError wraps a resolution failure with the category and base
// profile name involved.
type ResolutionError struct {
	// Category is the category being resolved.
	Category Category

	// Base is the base profile name that failed to resolve.
	Base string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s profile: %q: %v", e.Category, e.Base, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// IsUnknownBaseProfile returns true if the error indicates a missing base profile.
func IsUnknownBaseProfile(err error) bool {
	return errors.Is(err, ErrUnknownBaseProfile)
}

// IsInheritanceCycle returns true if the error indicates a cyclic inheritance chain.
func IsInheritanceCycle(err error) bool {
	return errors.Is(err, ErrInheritanceCycle)
}
