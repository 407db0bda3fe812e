package scheduler

import (
	"errors"
	"fmt"
)

// Sentinel errors for slice submission.
var (
	// ErrBusy indicates a slice job is already in flight. There is no
	// queue: callers retry later.
	ErrBusy = errors.New("slicer is busy")

	// ErrSliceFailed indicates the engine ran and rejected the input.
	ErrSliceFailed = errors.New("slicing failed")

	// ErrInvalidModel indicates an unusable model file name.
	ErrInvalidModel = errors.New("invalid model file")
)

// SliceError carries the engine's diagnostic output for a failed run, so a
// caller can triage without server-side log access.
type SliceError struct {
	// ExitCode is the engine's exit code.
	ExitCode int

	// Stdout and Stderr are the engine's captured output streams.
	Stdout string
	Stderr string
}

// Error implements the error interface.
func (e *SliceError) Error() string {
	return fmt.Sprintf("slicing failed: no G-code output produced (exit code %d)", e.ExitCode)
}

// Unwrap returns ErrSliceFailed for errors.Is support.
func (e *SliceError) Unwrap() error {
	return ErrSliceFailed
}

// IsBusy returns true if the error indicates the scheduler slot is taken.
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}

// IsSliceFailed returns true if the error indicates the engine rejected the input.
func IsSliceFailed(err error) bool {
	return errors.Is(err, ErrSliceFailed)
}
