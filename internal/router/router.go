package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"tokenauth/docs"
	"tokenauth/internal/config"
	"tokenauth/internal/handler"
	"tokenauth/internal/middleware"
	"tokenauth/internal/role"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Auth    *handler.AuthHandler
	Admin   *handler.AdminHandler
	Secured *handler.SecuredHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, verifier middleware.Verifier, h Handlers) {
	e.Use(middleware.RequestID())
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	e.Validator = NewValidator()

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/token", h.Auth.Token)
	api.POST("/auth/login", h.Auth.Token)
	api.POST("/auth/roles", h.Auth.GrantRole)

	// Secured routes (require a bearer token)
	secured := api.Group("", middleware.BearerAuth(verifier))
	secured.GET("/secured", h.Secured.Secured)
	secured.GET("/me", h.Secured.Me)

	admin := secured.Group("/admin", middleware.RequireRole(role.Administrator))
	admin.POST("/roles", h.Admin.AssignRole)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the validator installed on the echo instance.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
