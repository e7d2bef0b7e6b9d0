package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestGetSuggestion(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"explicit", WithSuggestion(errors.New("boom"), "do the thing"), "do the thing"},
		{"repeat", fmt.Errorf("set repeat: %w", ErrInvalidRepeatMode), "Repeat mode must be one of: none, one, all"},
		{"network", Network(errors.New("dial tcp: refused")), "Check your connection and try again; your change was not saved"},
		{"timeout", Network(context.DeadlineExceeded), "Check your connection and try again; your change was not saved"},
		{"auth", ErrNotAuthenticated, "Run 'cadence auth login' to store an API token"},
		{"unknown", errors.New("something odd"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetSuggestion(tt.err); got != tt.want {
				t.Errorf("GetSuggestion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNetwork(t *testing.T) {
	if Network(nil) != nil {
		t.Error("Network(nil) should be nil")
	}

	err := Network(context.DeadlineExceeded)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Network(deadline) = %v, want ErrTimeout", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("Network(deadline) should keep the cause")
	}

	err = Network(errors.New("reset by peer"))
	if !errors.Is(err, ErrNetworkError) {
		t.Errorf("Network() = %v, want ErrNetworkError", err)
	}

	// Already classified errors are not wrapped twice.
	if again := Network(err); again != err {
		t.Errorf("Network(classified) = %v, want unchanged", again)
	}
}

func TestIsRecoverable(t *testing.T) {
	if !IsRecoverable(nil) {
		t.Error("IsRecoverable(nil) = false, want true")
	}
	if !IsRecoverable(fmt.Errorf("x: %w", ErrIndexOutOfRange)) {
		t.Error("validation errors should be recoverable")
	}
	if !IsRecoverable(Network(errors.New("offline"))) {
		t.Error("network errors should be recoverable")
	}
	if IsRecoverable(errors.New("disk on fire")) {
		t.Error("unclassified errors should not be reported recoverable")
	}
}

func TestFormat(t *testing.T) {
	got := Format(ErrInvalidVolume)
	if !strings.Contains(got, "Suggestion: Volume must be between 0 and 100") {
		t.Errorf("Format() = %q, missing suggestion", got)
	}
	if Format(nil) != "" {
		t.Error("Format(nil) should be empty")
	}
}

func TestPartialResult(t *testing.T) {
	var p PartialResult[[]string]
	if p.HasErrors() || p.Err() != nil || p.ErrorSummary() != "" {
		t.Error("empty PartialResult should report no errors")
	}

	p.AddError(nil)
	p.AddError(errors.New("first"))
	if p.ErrorSummary() != "first" {
		t.Errorf("ErrorSummary() = %q, want %q", p.ErrorSummary(), "first")
	}

	p.AddError(errors.New("second"))
	if !strings.HasPrefix(p.ErrorSummary(), "2 errors occurred") {
		t.Errorf("ErrorSummary() = %q", p.ErrorSummary())
	}
	if p.Err() == nil {
		t.Error("Err() = nil, want joined error")
	}
}
