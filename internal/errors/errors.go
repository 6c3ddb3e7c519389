// Package errors provides the error types surfaced by the game master.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrProviderUnavailable = errors.New("completion provider unavailable")
	ErrCompletion          = errors.New("completion failed")
	ErrTimeout             = errors.New("completion stalled")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

// ProviderUnavailableError means no completion provider could be used
type ProviderUnavailableError struct {
	Provider string
	Message  string
}

func (e *ProviderUnavailableError) Error() string {
	switch {
	case e.Provider != "" && e.Message != "":
		return fmt.Sprintf("completion provider %q unavailable: %s", e.Provider, e.Message)
	case e.Provider != "":
		return fmt.Sprintf("completion provider %q unavailable", e.Provider)
	case e.Message != "":
		return fmt.Sprintf("completion provider unavailable: %s", e.Message)
	default:
		return "completion provider unavailable"
	}
}

// Is allows comparison with sentinel errors
func (e *ProviderUnavailableError) Is(target error) bool {
	if target == ErrProviderUnavailable {
		return true
	}
	_, ok := target.(*ProviderUnavailableError)
	return ok
}

// NewProviderUnavailableError creates a new ProviderUnavailableError
func NewProviderUnavailableError(provider, message string) *ProviderUnavailableError {
	return &ProviderUnavailableError{Provider: provider, Message: message}
}

// CompletionError is an error reported by the provider while completing
type CompletionError struct {
	Provider string
	Err      error
}

func (e *CompletionError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("completion failed: %v", e.Err)
	}
	return fmt.Sprintf("completion failed (%s): %v", e.Provider, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *CompletionError) Is(target error) bool {
	if target == ErrCompletion {
		return true
	}
	_, ok := target.(*CompletionError)
	return ok
}

// NewCompletionError wraps err as a CompletionError
func NewCompletionError(provider string, err error) *CompletionError {
	return &CompletionError{Provider: provider, Err: err}
}

// TimeoutError represents a request that stopped producing output
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *TimeoutError) Is(target error) bool {
	if target == ErrTimeout {
		return true
	}
	_, ok := target.(*TimeoutError)
	return ok
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(message string) *TimeoutError {
	return &TimeoutError{Message: message}
}

// ConfigError represents an invalid configuration value
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Message)
	}
	return fmt.Sprintf("invalid configuration for %s: %s", e.Field, e.Message)
}

// Is allows comparison with sentinel errors
func (e *ConfigError) Is(target error) bool {
	if target == ErrInvalidConfig {
		return true
	}
	_, ok := target.(*ConfigError)
	return ok
}

// NewConfigError creates a new ConfigError
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// IsUnavailable reports whether err means no provider could be reached
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable)
}

// IsCompletion reports whether err came from the provider
func IsCompletion(err error) bool {
	return errors.Is(err, ErrCompletion)
}

// IsTimeout reports whether err is a stalled request
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsConfig reports whether err is a configuration problem
func IsConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// Hint returns a short suggestion for the user, or "" when there is none
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case IsUnavailable(err):
		return "Configure a provider API key (GEMINI_API_KEY, ANTHROPIC_API_KEY or OPENAI_API_KEY) or run with --demo"
	case IsTimeout(err):
		return "The game master went quiet. Send your action again"
	case IsCompletion(err):
		return "The request failed. Try again"
	case IsConfig(err):
		return "Check ~/.gamemaster/config.json"
	default:
		return ""
	}
}
