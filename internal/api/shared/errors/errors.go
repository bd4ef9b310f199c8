package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/feral-file/ff-registry/internal/domain"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeBadRequest        ErrorCode = "bad_request"
	ErrCodeNotFound          ErrorCode = "not_found"
	ErrCodeValidationFailed  ErrorCode = "validation_failed"
	ErrCodeUnauthorized      ErrorCode = "unauthorized"
	ErrCodeForbidden         ErrorCode = "forbidden"
	ErrCodeConflict          ErrorCode = "conflict"
	ErrCodeChallengeRequired ErrorCode = "challenge_required"
	ErrCodeRateLimited       ErrorCode = "rate_limited"

	// Server errors (5xx)
	ErrCodeInternalError ErrorCode = "internal_error"
	ErrCodeStorageError  ErrorCode = "storage_error"
)

// APIError represents a structured API error that carries error code and details
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	jsonErr, _ := json.Marshal(e)
	return string(jsonErr)
}

// Error constructors for common error types
func NewBadRequestError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewNotFoundError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewValidationError(details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: "Validation failed",
		Details: strings.Join(details, ", "),
	}
}

func NewUnauthorizedError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewForbiddenError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeForbidden,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewConflictError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeConflict,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewChallengeRequiredError() *APIError {
	return &APIError{
		Code:    ErrCodeChallengeRequired,
		Message: "Sign the challenge and resubmit with signature and challengeId",
	}
}

func NewRateLimitedError(details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeRateLimited,
		Message: "Too many requests",
		Details: strings.Join(details, ", "),
	}
}

func NewInternalError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeInternalError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewStorageError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeStorageError,
		Message: message,
	}
}

// FromDomainError maps a registry or authenticator error to an HTTP status and API error.
// Storage failures keep their details out of the response.
func FromDomainError(err error, message string) (int, *APIError) {
	switch {
	case errors.Is(err, domain.ErrEntryExists):
		return http.StatusConflict, NewConflictError(message, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, NewNotFoundError(message, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, NewBadRequestError(message, err.Error())
	case errors.Is(err, domain.ErrNotAuthorized):
		return http.StatusUnauthorized, NewUnauthorizedError(message, err.Error())
	case errors.Is(err, domain.ErrStorageFailure):
		return http.StatusInternalServerError, NewStorageError(message)
	default:
		return http.StatusInternalServerError, NewInternalError(message)
	}
}
