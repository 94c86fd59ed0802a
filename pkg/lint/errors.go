package lint

import (
	"errors"
	"fmt"
)

// Error codes for engine-level failures. Rule violations never surface as
// errors; these cover the cases where analysis itself cannot proceed.
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeMissingRegistration = "MISSING_REGISTRATION"
	ErrCodeProfileUnresolved   = "PROFILE_UNRESOLVED"
	ErrCodeCapability          = "CAPABILITY_ERROR"
	ErrCodeConfig              = "CONFIG_ERROR"
)

// AnalysisError is the structured error type for engine operations.
type AnalysisError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Plugin  string         `json:"plugin,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *AnalysisError) Error() string {
	if e.Plugin != "" {
		return fmt.Sprintf("[%s] plugin %s: %s", e.Code, e.Plugin, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// NewError creates a new AnalysisError.
func NewError(code, message string) *AnalysisError {
	return &AnalysisError{Code: code, Message: message}
}

// NewErrorf creates a new AnalysisError with a formatted message.
func NewErrorf(code, format string, args ...any) *AnalysisError {
	return &AnalysisError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithPlugin attaches the plugin name to the error.
func (e *AnalysisError) WithPlugin(name string) *AnalysisError {
	e.Plugin = name
	return e
}

// WithCause attaches an underlying cause.
func (e *AnalysisError) WithCause(err error) *AnalysisError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *AnalysisError) WithDetails(details map[string]any) *AnalysisError {
	e.Details = details
	return e
}

// MissingRegistration builds the distinguished fatal-per-plugin error raised
// when a plugin has no entry in the registration manifest. It is the only
// condition that aborts a plugin's analysis early.
func MissingRegistration(pluginName string) *AnalysisError {
	return NewErrorf(ErrCodeMissingRegistration,
		"no definition type registered; bundle cannot be analyzed").WithPlugin(pluginName)
}

// IsMissingRegistration reports whether err is a missing-registration error.
func IsMissingRegistration(err error) bool {
	var ae *AnalysisError
	return errors.As(err, &ae) && ae.Code == ErrCodeMissingRegistration
}
