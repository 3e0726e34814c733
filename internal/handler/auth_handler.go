package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"tokenauth/internal/errors"
	"tokenauth/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,max=255"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	FirstName string `json:"first_name" validate:"max=255"`
	LastName  string `json:"last_name" validate:"max=255"`
}

// TokenRequest represents a token issuance request.
type TokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GrantRoleRequest asks for a role on an account whose credentials the caller
// knows.
type GrantRoleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// UserResponse is the public view of a registered account.
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// RegisterResponse represents a successful registration.
type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// TokenResponse represents an authentication response.
type TokenResponse struct {
	Message         string    `json:"message"`
	IsAuthenticated bool      `json:"is_authenticated"`
	UserID          string    `json:"user_id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Roles           []string  `json:"roles"`
	Token           string    `json:"token"`
	TokenID         string    `json:"token_id"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// GrantRoleResponse represents a successful role grant.
type GrantRoleResponse struct {
	Message string `json:"message"`
	Role    string `json:"role"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Register(c.Request().Context(), service.RegisterRequest{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return failure(c, err)
	}
	if result.Outcome != service.OutcomeSuccess {
		return outcomeError(result.Outcome, result.Message)
	}

	return c.JSON(http.StatusCreated, RegisterResponse{
		Message: result.Message,
		User: UserResponse{
			ID:        result.User.ID.String(),
			Username:  result.User.Username,
			Email:     result.User.Email,
			FirstName: result.User.FirstName,
			LastName:  result.User.LastName,
		},
	})
}

// Token godoc
// @Summary Issue an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body TokenRequest true "Login credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /auth/token [post]
func (h *AuthHandler) Token(c echo.Context) error {
	var req TokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), service.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return failure(c, err)
	}
	if !result.Authenticated {
		return credentialError(result.Outcome, result.Message)
	}

	roles := result.Roles
	if roles == nil {
		roles = []string{}
	}
	return c.JSON(http.StatusOK, TokenResponse{
		Message:         result.Message,
		IsAuthenticated: true,
		UserID:          result.UserID,
		Username:        result.Username,
		Email:           result.Email,
		Roles:           roles,
		Token:           result.Token,
		TokenID:         result.TokenID,
		ExpiresAt:       result.ExpiresAt,
	})
}

// GrantRole godoc
// @Summary Add a role to an account using that account's credentials
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GrantRoleRequest true "Account credentials and role"
// @Success 200 {object} GrantRoleResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /auth/roles [post]
func (h *AuthHandler) GrantRole(c echo.Context) error {
	var req GrantRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.GrantRole(c.Request().Context(), service.GrantRequest{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return failure(c, err)
	}
	if result.Outcome != service.OutcomeSuccess {
		return credentialError(result.Outcome, result.Message)
	}
	return grantResponse(c, result)
}

func grantResponse(c echo.Context, result *service.GrantResult) error {
	if result.Outcome != service.OutcomeSuccess {
		return outcomeError(result.Outcome, result.Message)
	}
	return c.JSON(http.StatusOK, GrantRoleResponse{
		Message: result.Message,
		Role:    string(result.Role),
	})
}

// credentialError answers a failed credential check. An unknown email and a
// wrong password share one status and code; only the message differs.
func credentialError(o service.Outcome, message string) *echo.HTTPError {
	if o == service.OutcomeUnknownAccount || o == service.OutcomeInvalidCredentials {
		return errors.Respond(http.StatusUnauthorized, message, outcomeCode(service.OutcomeInvalidCredentials))
	}
	return outcomeError(o, message)
}
