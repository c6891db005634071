// Package apperrors provides the structured application error used
// for input and configuration failures. Planning outcomes (no
// feasible vehicle, efficiency gate rejection) are never errors -
// they are logged and handled in place, never returned as AppError.
package apperrors

import "fmt"

// AppError is a structured, loggable application error.
type AppError struct {
	Code    string
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a bare AppError.
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message, Details: make(map[string]interface{})}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err, Details: make(map[string]interface{})}
}

// WithDetail adds a detail to the error and returns it.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	e.Details[key] = value
	return e
}

// ValidationError reports a malformed input record.
func ValidationError(message, field string, value interface{}) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Details: map[string]interface{}{"field": field, "value": value},
	}
}

// NotFoundError reports a missing required resource (an input file,
// a referenced booking ID).
func NotFoundError(resourceType, identifier string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resourceType),
		Details: map[string]interface{}{"resource_type": resourceType, "identifier": identifier},
	}
}

// InvalidStateError reports a vehicle or booking found in a state an
// operation did not expect.
func InvalidStateError(currentState, requiredState string) *AppError {
	return &AppError{
		Code:    "INVALID_STATE",
		Message: fmt.Sprintf("invalid state: expected %s, got %s", requiredState, currentState),
		Details: map[string]interface{}{"current_state": currentState, "required_state": requiredState},
	}
}
