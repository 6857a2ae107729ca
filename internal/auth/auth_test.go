package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sudo-init-do/ledgerhub/internal/httpx"
	"github.com/sudo-init-do/ledgerhub/internal/ledger"
	"github.com/sudo-init-do/ledgerhub/internal/ledger/memory"
	"github.com/sudo-init-do/ledgerhub/internal/logging"
	"github.com/sudo-init-do/ledgerhub/internal/middleware"
	"github.com/sudo-init-do/ledgerhub/internal/utils"
)

type env struct {
	e      *echo.Echo
	svc    *ledger.Service
	tokens *utils.JWT
}

func newEnv(t *testing.T) *env {
	t.Helper()
	tokens := utils.NewJWT("test-secret", time.Hour)
	svc := ledger.NewService(ledger.Options{
		Store:      memory.NewStore(),
		Tokens:     tokens,
		Logger:     logging.Discard(),
		BcryptCost: bcrypt.MinCost,
	})
	h := NewHandler(svc, logging.Discard())

	e := httpx.New(logging.Discard())
	e.POST("/api/register", h.Register)
	e.POST("/api/login", h.Login)
	e.GET("/api/me", h.Me, middleware.JWTMiddleware(tokens))
	return &env{e: e, svc: svc, tokens: tokens}
}

func (v *env) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	return rec
}

func TestRegister(t *testing.T) {
	v := newEnv(t)

	rec := v.post("/api/register", `{"email":"a@x.com","username":"A","password":"pw"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"Registration successful. Please login."}`, rec.Body.String())

	rec = v.post("/api/register", `{"email":"a@x.com","username":"B","password":"pw2"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"Email already exists"}`, rec.Body.String())
}

func TestRegister_MissingFields(t *testing.T) {
	v := newEnv(t)

	for _, body := range []string{
		`{"email":"a@x.com","username":"A"}`,
		`{"username":"A","password":"pw"}`,
		`{"email":"  ","username":"A","password":"pw"}`,
		`{}`,
	} {
		rec := v.post("/api/register", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"All fields required"}`, rec.Body.String(), body)
	}
}

func TestRegister_PasswordTooLong(t *testing.T) {
	v := newEnv(t)

	body := `{"email":"a@x.com","username":"A","password":"` + strings.Repeat("p", 80) + `"}`
	rec := v.post("/api/register", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Password too long"}`, rec.Body.String())

	users, err := v.svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestLogin(t *testing.T) {
	v := newEnv(t)
	require.Equal(t, http.StatusCreated, v.post("/api/register", `{"email":"a@x.com","username":"A","password":"pw"}`).Code)

	rec := v.post("/api/login", `{"email":"A@x.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Contains(t, string(raw["user"]), `"isActive":false`)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID       string          `json:"id"`
			Email    string          `json:"email"`
			Username string          `json:"username"`
			Balance  decimal.Decimal `json:"balance"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "a@x.com", resp.User.Email)
	assert.Equal(t, "A", resp.User.Username)
	assert.True(t, resp.User.Balance.IsZero())

	claims, err := v.tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.False(t, claims.Admin)
}

func TestLogin_UniformFailure(t *testing.T) {
	v := newEnv(t)
	require.Equal(t, http.StatusCreated, v.post("/api/register", `{"email":"a@x.com","username":"A","password":"pw"}`).Code)

	wrong := v.post("/api/login", `{"email":"a@x.com","password":"nope"}`)
	unknown := v.post("/api/login", `{"email":"ghost@x.com","password":"pw"}`)

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, wrong.Body.String())
}

func TestMe(t *testing.T) {
	v := newEnv(t)
	u, err := v.svc.Register(context.Background(), "me@x.com", "me", "pw")
	require.NoError(t, err)
	token, err := v.tokens.Issue(u.ID, false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"me@x.com"`)

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec = httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ghost, err := v.tokens.Issue("ghost", false)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+ghost)
	rec = httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	v := newEnv(t)

	require.NoError(t, BootstrapAdmin(ctx, v.svc, logging.Discard(), "admin@platform.com", ""))
	_, err := v.svc.Authenticate(ctx, "admin@platform.com", "secret")
	assert.ErrorIs(t, err, ledger.ErrInvalidCredentials)

	require.NoError(t, BootstrapAdmin(ctx, v.svc, logging.Discard(), "admin@platform.com", "secret"))
	require.NoError(t, BootstrapAdmin(ctx, v.svc, logging.Discard(), "admin@platform.com", "secret"))

	session, err := v.svc.Authenticate(ctx, "admin@platform.com", "secret")
	require.NoError(t, err)
	assert.True(t, session.User.IsAdmin)
	assert.True(t, session.User.IsActive)
	assert.True(t, session.User.Balance.Equal(AdminSeedBalance))

	users, err := v.svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
