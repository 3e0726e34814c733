// Package middleware holds the access gate and request-scoped echo middleware.
package middleware

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"tokenauth/internal/auth"
	apperrors "tokenauth/internal/errors"
	"tokenauth/internal/role"
)

// ClaimsKey is the echo context key holding the verified *auth.Claims.
const ClaimsKey = "claims"

// Verifier verifies a raw bearer token.
type Verifier interface {
	Verify(token string) (*auth.Claims, error)
}

// BearerAuth rejects requests without a valid bearer token issued by
// verifier. On success the verified claims are stored under ClaimsKey.
func BearerAuth(verifier Verifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:  ClaimsKey,
		ParseTokenFunc: func(_ echo.Context, token string) (interface{}, error) {
			return verifier.Verify(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.Is(err, auth.ErrTokenExpired) {
				return apperrors.MapErrorToHTTP(auth.ErrTokenExpired).Echo()
			}
			return apperrors.MapErrorToHTTP(auth.ErrTokenInvalid).Echo()
		},
	})
}

// ClaimsFrom returns the claims stored by BearerAuth, or nil when the request
// did not pass through it.
func ClaimsFrom(c echo.Context) *auth.Claims {
	claims, _ := c.Get(ClaimsKey).(*auth.Claims)
	return claims
}

// RequireRole enforces that the verified token carries at least one of roles.
// It must run after BearerAuth.
func RequireRole(roles ...role.Name) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFrom(c)
			if claims == nil {
				return apperrors.MapErrorToHTTP(auth.ErrTokenInvalid).Echo()
			}
			for _, r := range roles {
				if claims.HasRole(r) {
					return next(c)
				}
			}
			return apperrors.Respond(http.StatusForbidden, "insufficient role", "FORBIDDEN")
		}
	}
}
