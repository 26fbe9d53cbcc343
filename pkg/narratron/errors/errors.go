package errors

import (
	"errors"
	"fmt"
)

// Common error types shared across generation strategies
var (
	// ErrUpstreamUnavailable indicates a model backend could not serve the request
	ErrUpstreamUnavailable = errors.New("upstream generator unavailable")

	// ErrUpstreamTimeout indicates a model call exceeded its deadline
	ErrUpstreamTimeout = errors.New("upstream call timed out")

	// ErrAuthRejected indicates the hosted API rejected the credentials
	ErrAuthRejected = errors.New("API credentials rejected")

	// ErrQuotaExceeded indicates the hosted API quota or rate limit was hit
	ErrQuotaExceeded = errors.New("API quota exceeded")

	// ErrModelNotLoaded indicates the local model runtime has no model loaded
	ErrModelNotLoaded = errors.New("local model not loaded")

	// ErrModelOutOfMemory indicates the local runtime ran out of memory
	ErrModelOutOfMemory = errors.New("local model out of memory")
)

// UpstreamError wraps a failure from a model backend. It always matches
// ErrUpstreamUnavailable so the selector can treat any backend failure as
// a fallback trigger rather than a fatal error.
type UpstreamError struct {
	Strategy string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("strategy %s failed: %v", e.Strategy, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// NewUpstreamError creates an upstream error for the named strategy
func NewUpstreamError(strategy string, err error) *UpstreamError {
	return &UpstreamError{Strategy: strategy, Err: err}
}

// ValidationError represents a structural check failure on generated text
type ValidationError struct {
	Strategy string
	Field    string
	Message  string
}

func (e *ValidationError) Error() string {
	if e.Strategy != "" {
		return fmt.Sprintf("validation failed for %s output, %s: %s", e.Strategy, e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed, %s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error
func NewValidationError(strategy, field, message string) *ValidationError {
	return &ValidationError{Strategy: strategy, Field: field, Message: message}
}

// ConfigurationError represents missing or broken configuration, such as an
// empty template pool. It is fatal at startup or first use and must never be
// silently swallowed.
type ConfigurationError struct {
	Component string
	Message   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(component, message string) *ConfigurationError {
	return &ConfigurationError{Component: component, Message: message}
}

// IsUpstream checks if an error came from a model backend
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}

// IsValidation checks if an error is a structural validation failure
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConfiguration checks if an error is a configuration error
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
