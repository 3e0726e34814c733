package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"tokenauth/internal/errors"
	"tokenauth/internal/logging"
	"tokenauth/internal/service"
)

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.Respond(http.StatusBadRequest, "invalid request body", "INVALID_REQUEST")
	}
	if err := c.Validate(req); err != nil {
		return errors.Respond(http.StatusBadRequest, err.Error(), "VALIDATION_FAILED")
	}
	return nil
}

var outcomeStatus = map[service.Outcome]int{
	service.OutcomeDuplicateAccount:   http.StatusConflict,
	service.OutcomeRejected:           http.StatusUnprocessableEntity,
	service.OutcomeUnknownAccount:     http.StatusNotFound,
	service.OutcomeInvalidCredentials: http.StatusUnauthorized,
	service.OutcomeUnknownRole:        http.StatusBadRequest,
	service.OutcomeForbidden:          http.StatusForbidden,
}

func outcomeCode(o service.Outcome) string {
	switch o {
	case service.OutcomeDuplicateAccount:
		return "DUPLICATE_ACCOUNT"
	case service.OutcomeRejected:
		return "REGISTRATION_REJECTED"
	case service.OutcomeUnknownAccount:
		return "UNKNOWN_ACCOUNT"
	case service.OutcomeInvalidCredentials:
		return "INVALID_CREDENTIALS"
	case service.OutcomeUnknownRole:
		return "UNKNOWN_ROLE"
	case service.OutcomeForbidden:
		return "FORBIDDEN"
	default:
		return "INTERNAL_ERROR"
	}
}

func outcomeError(o service.Outcome, message string) *echo.HTTPError {
	status, ok := outcomeStatus[o]
	if !ok {
		status = http.StatusInternalServerError
	}
	return errors.Respond(status, message, outcomeCode(o))
}

// failure logs an infrastructure error and hides its details from the client.
func failure(c echo.Context, err error) *echo.HTTPError {
	he := errors.MapErrorToHTTP(err)
	c.Logger().Errorj(map[string]interface{}{
		"message":    "request failed",
		"error":      err.Error(),
		"code":       he.Code,
		"path":       c.Path(),
		"request_id": logging.RequestIDFrom(c.Request().Context()),
	})
	return he.Echo()
}
