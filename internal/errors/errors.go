package errors

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"tokenauth/internal/auth"
	"tokenauth/internal/credential"
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// Echo converts the error into an echo.HTTPError whose body is an
// ErrorResponse.
func (e *HTTPError) Echo() *echo.HTTPError {
	return echo.NewHTTPError(e.StatusCode, e.ToErrorResponse())
}

// Respond builds an echo error carrying an ErrorResponse body.
func Respond(statusCode int, message, code string) *echo.HTTPError {
	return NewHTTPError(statusCode, message, code).Echo()
}

// MapErrorToHTTP maps domain errors to HTTP errors. Infrastructure details are
// never echoed back to the client.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return NewHTTPError(http.StatusUnauthorized, "token has expired", "TOKEN_EXPIRED")
	case errors.Is(err, auth.ErrTokenInvalid):
		return NewHTTPError(http.StatusUnauthorized, "invalid or missing token", "TOKEN_INVALID")
	case errors.Is(err, credential.ErrStoreUnavailable):
		return NewHTTPError(http.StatusServiceUnavailable, "credential store unavailable", "STORE_UNAVAILABLE")
	case errors.Is(err, credential.ErrRoleNotProvisioned):
		return NewHTTPError(http.StatusInternalServerError, "role is not provisioned", "ROLE_NOT_PROVISIONED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
