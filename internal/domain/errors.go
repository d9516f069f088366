package domain

import "errors"

// Common errors used throughout the application.
var (
	ErrNotFound              = errors.New("not found")
	ErrAlreadyExists         = errors.New("already exists")
	ErrInvalidInput          = errors.New("invalid input")
	ErrIncompleteSelection   = errors.New("selection is incomplete")
	ErrIncompatibleSelection = errors.New("selection is incompatible")
	ErrGenerationInProgress  = errors.New("generation already in progress")
	ErrNoResult              = errors.New("no generated files")
	ErrMissingCredential     = errors.New("missing credential")
	ErrMalformedResponse     = errors.New("malformed response from generator")
	ErrGenerationFailed      = errors.New("generation failed")
	ErrArchiveDisabled       = errors.New("archive export not configured")
)

// Error codes for standardized API error responses.
const (
	ErrCodeResourceNotFound   = "RESOURCE_NOT_FOUND"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeValidationError    = "VALIDATION_ERROR"
	ErrCodeInProgress         = "IN_PROGRESS"
	ErrCodeNoResult           = "NO_RESULT"
	ErrCodeConfiguration      = "CONFIGURATION_ERROR"
	ErrCodeGenerationFailed   = "GENERATION_FAILED"
	ErrCodeArchiveDisabled    = "ARCHIVE_DISABLED"
	ErrCodePreconditionFailed = "PRECONDITION_FAILED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// StandardError represents a standardized error response from the API.
type StandardError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// StandardErrorResponse wraps a StandardError for JSON responses.
type StandardErrorResponse struct {
	Error StandardError `json:"error"`
}

// ConfigError reports a missing or placeholder credential. It is detected
// before any network attempt and is not retryable.
type ConfigError struct {
	Variable string
	Hint     string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := "missing API key: " + e.Variable
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

// Unwrap lets errors.Is match ErrMissingCredential.
func (e *ConfigError) Unwrap() error {
	return ErrMissingCredential
}

// ProviderError wraps a failure reported by the external generation service.
// Message carries the provider's own text so it can be shown to the user.
type ProviderError struct {
	Provider string
	Op       string
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return e.Provider + " " + e.Op + ": " + e.Message
}

// Unwrap returns ErrGenerationFailed so callers can classify the failure,
// and the underlying cause when one exists.
func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrGenerationFailed}
	}
	return []error{ErrGenerationFailed, e.Err}
}
