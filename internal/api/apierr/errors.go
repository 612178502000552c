package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/arise-roster/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidation         = "VALIDATION_ERROR"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeSessionExpired     = "SESSION_EXPIRED"
	CodeAccountDisabled    = "ACCOUNT_DISABLED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return &httpError{http.StatusBadRequest, APIError{CodeValidation, ve.Error()}}
	}
	var fe *model.ForbiddenError
	if errors.As(err, &fe) {
		return &httpError{http.StatusForbidden, APIError{CodeForbidden, fe.Message}}
	}

	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Player not found"}}
	case errors.Is(err, model.ErrAccountNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Account not found"}}
	case errors.Is(err, model.ErrUsernameExists):
		return &httpError{http.StatusBadRequest, APIError{CodeUsernameExists, "Username already exists"}}

	// Session and credential errors
	case errors.Is(err, model.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, model.ErrSessionExpired):
		return &httpError{http.StatusUnauthorized, APIError{CodeSessionExpired, "Session expired, please log in again"}}
	case errors.Is(err, model.ErrAccountDisabled):
		return &httpError{http.StatusUnauthorized, APIError{CodeAccountDisabled, "Account is disabled"}}
	case errors.Is(err, model.ErrAuthenticationRequired), errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewPayloadTooLargeError creates a request-too-large error
func NewPayloadTooLargeError(message string) error {
	return &httpError{http.StatusRequestEntityTooLarge, APIError{CodePayloadTooLarge, message}}
}

// NewRateLimitedError creates a too-many-requests error
func NewRateLimitedError() error {
	return &httpError{http.StatusTooManyRequests, APIError{CodeRateLimited, "Too many login attempts, please try again later"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
