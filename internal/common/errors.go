package common

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks invalid chunking, batching or retry settings
	ErrConfiguration = errors.New("configuration error")
	// ErrEmbeddingFailed marks an embedding that exhausted its retry budget
	ErrEmbeddingFailed = errors.New("embedding failed")
	// ErrGenerationFailed marks a generation that exhausted its retry budget or hit a terminal fault
	ErrGenerationFailed = errors.New("generation failed")
	// ErrTenantViolation marks a request touching data owned by another owner
	ErrTenantViolation = errors.New("tenant violation")
	// ErrNotFound marks a missing document or chat
	ErrNotFound = errors.New("not found")
	// ErrMissingOwner is returned when no owner identity is attached to the context
	ErrMissingOwner = errors.New("missing owner identity")
	// ErrNoContent is returned when an upload yields no extractable text
	ErrNoContent = errors.New("no extractable text")
	// ErrInvalidRequest marks malformed or unsupported input
	ErrInvalidRequest = errors.New("invalid request")
)

// ConfigurationError describes a rejected configuration value
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// EmbeddingFailedError carries the last provider error after the retry budget is spent
type EmbeddingFailedError struct {
	Attempts int
	Err      error
}

func (e *EmbeddingFailedError) Error() string {
	return fmt.Sprintf("embedding failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *EmbeddingFailedError) Unwrap() error {
	return e.Err
}

func (e *EmbeddingFailedError) Is(target error) bool {
	return target == ErrEmbeddingFailed
}

// GenerationFailedError carries the provider error that ended the attempt loop.
// Terminal is true when the fault was not retryable.
type GenerationFailedError struct {
	Attempts int
	Terminal bool
	Err      error
}

func (e *GenerationFailedError) Error() string {
	kind := "retry budget exhausted"
	if e.Terminal {
		kind = "terminal fault"
	}
	return fmt.Sprintf("generation failed (%s) after %d attempt(s): %v", kind, e.Attempts, e.Err)
}

func (e *GenerationFailedError) Unwrap() error {
	return e.Err
}

func (e *GenerationFailedError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// UserMessage maps an error to the short generic text shown to end users.
// Provider detail stays in the logs.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTenantViolation):
		return "You do not have access to that resource."
	case errors.Is(err, ErrNotFound):
		return "The requested item was not found."
	case errors.Is(err, ErrMissingOwner):
		return "An owner identity is required."
	case errors.Is(err, ErrGenerationFailed):
		return "Sorry, the answer could not be generated. Please try again."
	case errors.Is(err, ErrEmbeddingFailed):
		return "The document could not be processed. Please try again later."
	case errors.Is(err, ErrNoContent):
		return "No text could be extracted from the file."
	case errors.Is(err, ErrInvalidRequest):
		return "The request is invalid."
	case errors.Is(err, ErrConfiguration):
		return "The service is misconfigured."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The request was cancelled or timed out."
	default:
		return "Something went wrong. Please try again."
	}
}
