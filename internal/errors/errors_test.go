package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestProviderUnavailableError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ProviderUnavailableError
		expected string
	}{
		{"empty", NewProviderUnavailableError("", ""), "completion provider unavailable"},
		{"provider only", NewProviderUnavailableError("gemini", ""), `completion provider "gemini" unavailable`},
		{"message only", NewProviderUnavailableError("", "not configured"), "completion provider unavailable: not configured"},
		{"both", NewProviderUnavailableError("gemini", "GEMINI_API_KEY not set"), `completion provider "gemini" unavailable: GEMINI_API_KEY not set`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Error() = %s, want %s", tt.err.Error(), tt.expected)
			}
			if !errors.Is(tt.err, ErrProviderUnavailable) {
				t.Error("expected errors.Is(err, ErrProviderUnavailable)")
			}
		})
	}
}

func TestCompletionError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewCompletionError("openai", cause)

	expected := "completion failed (openai): connection reset"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, cause) {
		t.Error("expected CompletionError to unwrap to its cause")
	}
	if !errors.Is(err, ErrCompletion) {
		t.Error("expected errors.Is(err, ErrCompletion)")
	}

	noProvider := NewCompletionError("", cause)
	if noProvider.Error() != "completion failed: connection reset" {
		t.Errorf("Error() = %s", noProvider.Error())
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("no output for 90s")

	expected := "request timed out: no output for 90s"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if NewTimeoutError("").Error() != "request timed out" {
		t.Error("expected default timeout message")
	}

	if !errors.Is(err, ErrTimeout) {
		t.Error("expected errors.Is(err, ErrTimeout)")
	}
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("provider", `unknown provider "foo"`)
	expected := `invalid configuration for provider: unknown provider "foo"`
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if NewConfigError("", "bad").Error() != "invalid configuration: bad" {
		t.Error("expected message without field")
	}
}

func TestHelpersSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", NewTimeoutError(""))

	if !IsTimeout(wrapped) {
		t.Error("IsTimeout should match wrapped TimeoutError")
	}
	if IsUnavailable(wrapped) || IsCompletion(wrapped) || IsConfig(wrapped) {
		t.Error("helpers should not match other error kinds")
	}

	if !IsUnavailable(fmt.Errorf("x: %w", NewProviderUnavailableError("", ""))) {
		t.Error("IsUnavailable should match wrapped error")
	}
	if !IsCompletion(fmt.Errorf("x: %w", NewCompletionError("", errors.New("boom")))) {
		t.Error("IsCompletion should match wrapped error")
	}
	if !IsConfig(fmt.Errorf("x: %w", NewConfigError("", ""))) {
		t.Error("IsConfig should match wrapped error")
	}
}

func TestHint(t *testing.T) {
	if Hint(nil) != "" {
		t.Error("expected no hint for nil")
	}
	if Hint(errors.New("plain")) != "" {
		t.Error("expected no hint for plain error")
	}

	for _, err := range []error{
		NewProviderUnavailableError("", ""),
		NewTimeoutError(""),
		NewCompletionError("", errors.New("x")),
		NewConfigError("", "x"),
	} {
		if Hint(err) == "" {
			t.Errorf("expected a hint for %T", err)
		}
	}
}
