package handler

import (
	"github.com/labstack/echo/v4"

	"tokenauth/internal/middleware"
	"tokenauth/internal/service"
)

// AdminHandler handles endpoints reserved for administrators.
type AdminHandler struct {
	authService service.AuthService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(authService service.AuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

// AssignRoleRequest names the account and the role to add.
type AssignRoleRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

// AssignRole godoc
// @Summary Add a role to any account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AssignRoleRequest true "Target account and role"
// @Success 200 {object} GrantRoleResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /admin/roles [post]
func (h *AdminHandler) AssignRole(c echo.Context) error {
	var req AssignRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.AssignRole(c.Request().Context(), middleware.ClaimsFrom(c), service.AssignRequest{
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		return failure(c, err)
	}
	return grantResponse(c, result)
}
