// Package generator wraps the external text-generation engine behind a narrow
// interface so the rest of the service never sees provider-specific types or
// error shapes.
package generator

import (
	"context"
	"errors"
	"fmt"
)

// Generator turns an instruction plus a content-type hint into generated
// markup. Implementations must honor context cancellation; calls are the only
// operations in the service expected to block on a network round trip.
type Generator interface {
	Generate(ctx context.Context, instruction, contentType string) (string, error)
}

// ErrorKind classifies upstream generation failures.
type ErrorKind int

const (
	// KindUnavailable covers timeouts, 5xx responses, and transport errors.
	KindUnavailable ErrorKind = iota
	// KindRateLimited means the upstream engine rejected the call for quota
	// reasons; safe to retry later with the same instruction.
	KindRateLimited
	// KindSafetyBlocked means the engine refused the instruction; retrying
	// the same instruction will not help.
	KindSafetyBlocked
	// KindInvalidResponse means the engine answered but with empty or
	// unusable output.
	KindInvalidResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindSafetyBlocked:
		return "safety_blocked"
	case KindInvalidResponse:
		return "invalid_response"
	default:
		return "unavailable"
	}
}

// Error wraps a generation failure with its classification.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed (%s): %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("generation failed (%s): %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same call may succeed if repeated. Retries are
// the caller's decision; nothing is persisted until generation succeeds.
func (e *Error) Retryable() bool {
	return e.Kind == KindUnavailable || e.Kind == KindRateLimited
}

// IsRetryable reports whether err is a retryable generation error.
func IsRetryable(err error) bool {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Retryable()
	}
	return false
}
