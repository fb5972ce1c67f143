// Package errors defines the error kinds shared by every SimpleGit component.
//
// Callers classify failures with errors.Is against the sentinels below;
// copy failures during commit, merge and restore are collected into a
// PartialCopyError instead of aborting the operation.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors that can be used with errors.Is() for error type checking
var (
	// ErrNotInitialized indicates the control directory or its config is missing
	ErrNotInitialized = errors.New("not a simplegit repository")

	// ErrNotFound indicates a branch, tag or commit ID does not resolve
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a duplicate branch, tag or repository
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidOperation indicates a request that can never succeed, such as merging a branch into itself
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrNoCommits indicates the operation needs at least one commit on a branch that has none
	ErrNoCommits = errors.New("no commits")

	// ErrPartialCopy indicates one or more entries failed to copy
	ErrPartialCopy = errors.New("partial copy failure")

	// ErrNoChanges indicates the working tree matches the latest commit
	ErrNoChanges = errors.New("no changes since the last commit")

	// ErrDeclined indicates the user refused a destructive operation
	ErrDeclined = errors.New("operation declined")
)

// Refinements of the kinds above. They match their parent with errors.Is.
var (
	ErrAmbiguous   = fmt.Errorf("ambiguous commit id: %w", ErrInvalidOperation)
	ErrInvalidName = fmt.Errorf("invalid name: %w", ErrInvalidOperation)
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with a message for better context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted message for better context.
func Wrapf(err error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether target is in err's chain.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// CopyFailure records a single entry that could not be copied.
type CopyFailure struct {
	Path string
	Err  error
}

func (f CopyFailure) Error() string {
	return fmt.Sprintf("copy %s: %v", f.Path, f.Err)
}

func (f CopyFailure) Unwrap() error {
	return f.Err
}

// PartialCopyError aggregates the per-entry failures of a best-effort copy.
// The operation it describes still completed for every other entry.
type PartialCopyError struct {
	Op       string
	Failures []CopyFailure
}

// Error implements the error interface with one clause per failed entry.
func (e *PartialCopyError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("%s: %d entries failed: %s", e.Op, len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes ErrPartialCopy and every underlying failure.
func (e *PartialCopyError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures)+1)
	errs = append(errs, ErrPartialCopy)
	for _, f := range e.Failures {
		errs = append(errs, f)
	}
	return errs
}

// NewPartialCopyError returns nil when there are no failures so callers can
// return the result directly.
func NewPartialCopyError(op string, failures []CopyFailure) error {
	if len(failures) == 0 {
		return nil
	}
	return &PartialCopyError{Op: op, Failures: failures}
}
