// Package errors defines the typed service errors shared by every layer.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies the category of a service error.
type ErrorCode string

const (
	CodeAuthentication ErrorCode = "AUTHENTICATION"
	CodeBadRequest     ErrorCode = "BAD_REQUEST"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeNameDuplicated ErrorCode = "NAME_DUPLICATED"
	CodeTypeMismatch   ErrorCode = "TYPE_MISMATCH"
	CodeConstraint     ErrorCode = "CONSTRAINT"
	CodeServiceError   ErrorCode = "SERVICE_ERROR"
	CodeInternal       ErrorCode = "INTERNAL"
)

// ServiceError carries an error category, a caller-facing message and the
// HTTP status the handlers map it to. Details hold optional structured data.
type ServiceError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Details    map[string]any
	cause      error
}

func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.cause }

// WithDetails attaches a key/value pair to the error and returns it.
func (e *ServiceError) WithDetails(key string, value any) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Unauthorized reports a missing or unusable credential.
func Unauthorized(message string) *ServiceError {
	if message == "" {
		message = "Authentication error. Request a new Access Token."
	}
	return &ServiceError{Code: CodeAuthentication, Message: message, HTTPStatus: http.StatusUnauthorized}
}

// InvalidToken reports a token that failed structural or signature validation.
func InvalidToken(cause error) *ServiceError {
	return &ServiceError{
		Code:       CodeAuthentication,
		Message:    "Invalid access token.",
		HTTPStatus: http.StatusUnauthorized,
		cause:      cause,
	}
}

// BadRequest reports an unparseable request payload.
func BadRequest(message string, cause error) *ServiceError {
	if message == "" {
		message = "Malformed request payload."
	}
	return &ServiceError{
		Code:       CodeBadRequest,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		cause:      cause,
	}
}

// NotFound reports an absent resource, or one not visible to the tenant.
func NotFound(resource string) *ServiceError {
	return &ServiceError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("Resource not found with the specified parameters: %s.", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NameDuplicated reports a unique-constraint violation on a name within scope.
func NameDuplicated(name string, cause error) *ServiceError {
	return &ServiceError{
		Code:       CodeNameDuplicated,
		Message:    "The name must be unique for this scope.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"name": name},
		cause:      cause,
	}
}

// TypeMismatch reports a payload whose variant disagrees with the stored one,
// or a data-function reference resolving to a non-data variant.
func TypeMismatch(message string) *ServiceError {
	return &ServiceError{
		Code:       CodeTypeMismatch,
		Message:    message,
		HTTPStatus: http.StatusNotAcceptable,
	}
}

// Constraint reports a delete blocked by existing references.
func Constraint(message string, cause error) *ServiceError {
	return &ServiceError{
		Code:       CodeConstraint,
		Message:    message,
		HTTPStatus: http.StatusPreconditionFailed,
		cause:      cause,
	}
}

// ServiceUnavailable reports a transient infrastructure failure.
func ServiceUnavailable(message string, cause error) *ServiceError {
	if message == "" {
		message = "Service temporarily unavailable."
	}
	return &ServiceError{
		Code:       CodeServiceError,
		Message:    message,
		HTTPStatus: http.StatusServiceUnavailable,
		cause:      cause,
	}
}

// Internal reports an unmapped failure. The cause is logged, never exposed.
func Internal(message string, cause error) *ServiceError {
	if message == "" {
		message = "Internal service error."
	}
	return &ServiceError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		cause:      cause,
	}
}

// GetServiceError returns the *ServiceError in err's chain, or nil.
func GetServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	svcErr := GetServiceError(err)
	return svcErr != nil && svcErr.Code == code
}
