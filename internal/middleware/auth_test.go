package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenauth/internal/auth"
	apperrors "tokenauth/internal/errors"
	"tokenauth/internal/logging"
	"tokenauth/internal/role"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func setup(t *testing.T) (*echo.Echo, *auth.TokenSigner, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	signer, err := auth.NewTokenSigner(auth.SigningConfig{
		Secret:   []byte("middleware-test-secret-middleware-test"),
		Issuer:   "tokenauth-test",
		Audience: "tokenauth-test-clients",
		Duration: 10 * time.Minute,
	}, auth.WithClock(clock.Now))
	require.NoError(t, err)

	e := echo.New()
	secured := e.Group("/api", BearerAuth(signer))
	secured.GET("/secured", func(c echo.Context) error {
		return c.String(http.StatusOK, ClaimsFrom(c).Subject)
	})
	secured.GET("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RequireRole(role.Administrator))
	return e, signer, clock
}

func issue(t *testing.T, signer *auth.TokenSigner, roles ...string) string {
	t.Helper()
	token, err := signer.Sign(auth.BuildClaimSet("alice", "alice@example.com", "uid-1", nil, roles))
	require.NoError(t, err)
	return token.Value
}

func do(e *echo.Echo, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestBearerAuth(t *testing.T) {
	e, signer, _ := setup(t)
	valid := issue(t, signer, "User")

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
		wantCode      string
	}{
		{name: "valid token", authorization: "Bearer " + valid, wantStatus: http.StatusOK},
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantCode: "TOKEN_INVALID"},
		{name: "wrong scheme", authorization: "Basic " + valid, wantStatus: http.StatusUnauthorized, wantCode: "TOKEN_INVALID"},
		{name: "garbage", authorization: "Bearer not.a.token", wantStatus: http.StatusUnauthorized, wantCode: "TOKEN_INVALID"},
		{name: "tampered", authorization: "Bearer " + valid + "x", wantStatus: http.StatusUnauthorized, wantCode: "TOKEN_INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, "/api/secured", tt.authorization)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, rec))
			} else {
				assert.Equal(t, "alice", rec.Body.String())
			}
		})
	}
}

func TestBearerAuth_ExpiredToken(t *testing.T) {
	e, signer, clock := setup(t)
	token := issue(t, signer, "User")

	clock.now = clock.now.Add(10*time.Minute - time.Second)
	assert.Equal(t, http.StatusOK, do(e, "/api/secured", "Bearer "+token).Code)

	clock.now = clock.now.Add(2 * time.Second)
	rec := do(e, "/api/secured", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_EXPIRED", errorCode(t, rec))
}

func TestRequireRole(t *testing.T) {
	e, signer, _ := setup(t)

	rec := do(e, "/api/admin", "Bearer "+issue(t, signer, "User"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))

	rec = do(e, "/api/admin", "Bearer "+issue(t, signer, "User", "Administrator"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_WithoutBearerAuth(t *testing.T) {
	e := echo.New()
	e.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RequireRole(role.Administrator))

	rec := do(e, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestID_PropagatesToContext(t *testing.T) {
	e := echo.New()
	var got string
	e.Use(RequestID())
	e.GET("/ping", func(c echo.Context) error {
		got = logging.RequestIDFrom(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-42")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", got)
	assert.Equal(t, "req-42", rec.Header().Get(echo.HeaderXRequestID))
}
