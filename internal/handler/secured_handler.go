package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"tokenauth/internal/auth"
	"tokenauth/internal/errors"
	"tokenauth/internal/middleware"
)

// SecuredMessage is returned by the sample protected resource.
const SecuredMessage = "This Secured Data is available only for Authenticated Users."

// SecuredHandler serves resources that only need a valid bearer token.
type SecuredHandler struct{}

// NewSecuredHandler creates a new secured handler.
func NewSecuredHandler() *SecuredHandler {
	return &SecuredHandler{}
}

// ClaimsResponse is the verified content of the caller's token.
type ClaimsResponse struct {
	Subject   string              `json:"sub"`
	TokenID   string              `json:"jti"`
	Email     string              `json:"email"`
	UserID    string              `json:"uid"`
	Roles     []string            `json:"roles"`
	Custom    map[string][]string `json:"custom,omitempty"`
	IssuedAt  time.Time           `json:"issued_at"`
	ExpiresAt time.Time           `json:"expires_at"`
}

// Secured godoc
// @Summary Sample protected resource
// @Tags secured
// @Produce plain
// @Security BearerAuth
// @Success 200 {string} string
// @Failure 401 {object} errors.ErrorResponse
// @Router /secured [get]
func (h *SecuredHandler) Secured(c echo.Context) error {
	return c.String(http.StatusOK, SecuredMessage)
}

// Me godoc
// @Summary Claims of the current token
// @Tags secured
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ClaimsResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /me [get]
func (h *SecuredHandler) Me(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return errors.MapErrorToHTTP(auth.ErrTokenInvalid).Echo()
	}
	roles := claims.Roles
	if roles == nil {
		roles = []string{}
	}
	return c.JSON(http.StatusOK, ClaimsResponse{
		Subject:   claims.Subject,
		TokenID:   claims.ID,
		Email:     claims.Email,
		UserID:    claims.UserID,
		Roles:     roles,
		Custom:    claims.Custom,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	})
}
