package service

import (
	"errors"
	"fmt"

	"github.com/site-generator-api/internal/generator"
)

var (
	// ErrNotFound means no such artifact or version exists.
	ErrNotFound = errors.New("artifact not found")

	// ErrAccessDenied covers both ownership violations on mutations and
	// visibility violations on reads. For reads the API layer renders it
	// identically to ErrNotFound so private artifacts cannot be probed.
	ErrAccessDenied = errors.New("access denied")

	// ErrConflict is reserved for optimistic concurrency. Current edit
	// semantics are last-writer-wins, so nothing returns it yet.
	ErrConflict = errors.New("conflict")
)

// ValidationError rejects malformed input before any store mutation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// UpstreamError wraps a Content Generator failure. The in-progress operation
// was aborted with nothing persisted, so retryable failures are safe to
// repeat with the same instruction.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream generation error: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may retry the operation.
func (e *UpstreamError) Retryable() bool {
	return generator.IsRetryable(e.Err)
}

// wrapGeneration converts generator failures into the service taxonomy;
// anything else (cancellation, programming errors) passes through.
func wrapGeneration(err error) error {
	var genErr *generator.Error
	if errors.As(err, &genErr) {
		return &UpstreamError{Err: genErr}
	}
	return err
}
