package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrInvalidRepeatMode = errors.New("invalid repeat mode")
	ErrInvalidVolume     = errors.New("volume out of range")
	ErrIndexOutOfRange   = errors.New("queue index out of range")
	ErrInvalidTrack      = errors.New("invalid track")
	ErrEmptyQueue        = errors.New("queue is empty")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrTrackNotFound     = errors.New("track not found")
	ErrRateLimited       = errors.New("rate limited")
	ErrNetworkError      = errors.New("network error")
	ErrTimeout           = errors.New("request timeout")
	ErrConfigNotFound    = errors.New("config file not found")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// CadenceError wraps an error with a user-friendly suggestion.
type CadenceError struct {
	Err        error
	Suggestion string
}

func (e *CadenceError) Error() string {
	return e.Err.Error()
}

func (e *CadenceError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &CadenceError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// Network wraps a transport failure so it matches ErrNetworkError.
// Deadline overruns are reported as ErrTimeout instead.
func Network(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrNetworkError, err)
}

// IsRecoverable reports whether err is one the session can shrug off:
// validation failures and transient remote failures. Everything this module
// produces is recoverable; the check exists for errors from collaborators.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}
	for _, target := range []error{
		ErrInvalidRepeatMode, ErrInvalidVolume, ErrIndexOutOfRange, ErrInvalidTrack,
		ErrEmptyQueue, ErrRateLimited, ErrNetworkError, ErrTimeout, ErrTrackNotFound,
		context.DeadlineExceeded, context.Canceled,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var cadenceErr *CadenceError
	if errors.As(err, &cadenceErr) && cadenceErr.Suggestion != "" {
		return cadenceErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrNotAuthenticated) || strings.Contains(errStr, "not authenticated") ||
		strings.Contains(errStr, "401") {
		return "Run 'cadence auth login' to store an API token"
	}

	if errors.Is(err, ErrInvalidRepeatMode) {
		return "Repeat mode must be one of: none, one, all"
	}

	if errors.Is(err, ErrInvalidVolume) {
		return "Volume must be between 0 and 100"
	}

	if errors.Is(err, ErrIndexOutOfRange) || errors.Is(err, ErrEmptyQueue) {
		return "Run 'cadence queue' to see valid positions"
	}

	if errors.Is(err, ErrRateLimited) || strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") {
		return "Too many requests. Wait a moment and try again"
	}

	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrTimeout) ||
		strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") {
		return "Check your connection and try again; your change was not saved"
	}

	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) {
		return "Run 'cadence config init' to create a configuration file"
	}

	if strings.Contains(errStr, "500") || strings.Contains(errStr, "server error") {
		return "The music server is having issues. Try again in a moment"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// Err joins the collected errors, or returns nil.
func (p *PartialResult[T]) Err() error {
	return errors.Join(p.Errors...)
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
