package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/ledgerhub/internal/logging"
	"github.com/sudo-init-do/ledgerhub/internal/utils"
)

func newEcho(tokens *utils.JWT, requireAdmin bool) *echo.Echo {
	e := echo.New()
	whoami := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"user_id": UserID(c), "role": Role(c)})
	}
	e.GET("/me", whoami, JWTMiddleware(tokens))
	e.GET("/admin", whoami, AdminOnly(tokens, requireAdmin)...)
	return e
}

func do(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTMiddleware(t *testing.T) {
	tokens := utils.NewJWT("secret", time.Hour)
	e := newEcho(tokens, true)

	rec := do(e, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, "/me", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")

	token, err := tokens.Issue("u1", false)
	require.NoError(t, err)
	rec = do(e, "/me", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":"u1","role":"user"}`, rec.Body.String())
}

func TestAdminOnly(t *testing.T) {
	tokens := utils.NewJWT("secret", time.Hour)
	userToken, err := tokens.Issue("u1", false)
	require.NoError(t, err)
	adminToken, err := tokens.Issue("a1", true)
	require.NoError(t, err)

	guarded := newEcho(tokens, true)
	assert.Equal(t, http.StatusUnauthorized, do(guarded, "/admin", "").Code)
	assert.Equal(t, http.StatusForbidden, do(guarded, "/admin", userToken).Code)
	assert.Equal(t, http.StatusOK, do(guarded, "/admin", adminToken).Code)

	open := newEcho(tokens, false)
	assert.Equal(t, http.StatusOK, do(open, "/admin", "").Code)
}

func TestAdminGuard_Roles(t *testing.T) {
	e := echo.New()
	withRole := func(role string) echo.MiddlewareFunc {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				if role != "" {
					c.Set("role", role)
				}
				return next(c)
			}
		}
	}
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/none", ok, withRole(""), AdminGuard)
	e.GET("/user", ok, withRole(RoleUser), AdminGuard)
	e.GET("/admin", ok, withRole(RoleAdmin), AdminGuard)

	rec := do(e, "/none", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"role missing"}`, rec.Body.String())

	rec = do(e, "/user", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"admin access only"}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, do(e, "/admin", "").Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(logging.New(&buf, "info")))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	rec := do(e, "/ok", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	out := buf.String()
	assert.True(t, strings.Contains(out, `"uri":"/ok"`), out)
	assert.Contains(t, out, `"status":204`)
}
