package validation

import "fmt"

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`

	// kind is the sentinel the error classifies under.
	kind error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap returns the sentinel error this failure is classified as.
func (e *ValidationError) Unwrap() error {
	return e.kind
}

// NewValidationError creates a new ValidationError classified as kind.
func NewValidationError(kind error, field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
		kind:    kind,
	}
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e[0].Error(), len(e)-1)
}

// Unwrap exposes every contained error to errors.Is and errors.As.
func (e ValidationErrors) Unwrap() []error {
	out := make([]error, len(e))
	for i, v := range e {
		out[i] = v
	}
	return out
}

// Add adds a validation error to the collection.
func (e *ValidationErrors) Add(kind error, field, value, message string) {
	*e = append(*e, NewValidationError(kind, field, value, message))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// OrNil returns nil when the collection is empty so callers can return it as
// a plain error.
func (e ValidationErrors) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}
