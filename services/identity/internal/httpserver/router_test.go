package httpserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/classroom/pkg/db/dbtest"
	"github.com/Skotchmaster/classroom/pkg/events/eventstest"
	"github.com/Skotchmaster/classroom/pkg/keys"
	"github.com/Skotchmaster/classroom/pkg/keys/keystest"
	"github.com/Skotchmaster/classroom/pkg/principal"
	"github.com/Skotchmaster/classroom/pkg/tokens"
	"github.com/Skotchmaster/classroom/services/identity/internal/models"
	"github.com/Skotchmaster/classroom/services/identity/internal/repo"
	"github.com/Skotchmaster/classroom/services/identity/internal/service"
	"github.com/Skotchmaster/classroom/services/identity/internal/transport"
)

const password = "Str0ng!Passw0rd"

type server struct {
	e    *echo.Echo
	keys *keys.Pair
}

func newServer(t *testing.T) *server {
	t.Helper()

	gdb := dbtest.Open(t, &models.User{})
	r := repo.New(gdb)
	rec := &eventstest.Recorder{}
	pair := keys.NewPair(keystest.Key(t))

	e := echo.New()
	Register(e, &Deps{
		AuthHandler: &AuthHTTP{
			Svc: &service.AuthService{
				Repo:       r,
				Keys:       pair,
				Events:     rec,
				AccessTTL:  15 * time.Minute,
				RefreshTTL: 7 * 24 * time.Hour,
			},
			CookieSecure: true,
		},
		UsersHandler: &UsersHTTP{Svc: &service.UserService{Repo: r, Events: rec}},
		DB:           gdb,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &server{e: e, keys: pair}
}

func (s *server) do(t *testing.T, method, path, body string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func registerBody(email, role string) string {
	b, _ := json.Marshal(map[string]string{
		"firstname":       "Ada",
		"lastname":        "Lovelace",
		"email":           email,
		"password":        password,
		"confirmPassword": password,
		"role":            role,
	})
	return string(b)
}

func loginBody(email, pw string) string {
	b, _ := json.Marshal(map[string]string{"email": email, "password": pw})
	return string(b)
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == RefreshCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", RefreshCookieName)
	return nil
}

func asPrincipal(p principal.Principal) func(*http.Request) {
	return func(r *http.Request) { p.Apply(r.Header) }
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/auth/register", registerBody("ada@example.com", "TEACHER"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/auth/login", loginBody("ada@example.com", password), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(900), resp.ExpiresIn)

	claims, err := tokens.Decode(resp.AccessToken, s.keys.Public())
	require.NoError(t, err)
	assert.Equal(t, tokens.TokenTypeAccess, claims.TokenType)
	assert.Equal(t, principal.RoleTeacher, claims.Role)

	ck := refreshCookie(t, rec)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.Equal(t, "/", ck.Path)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), ck.MaxAge)
	assert.NotContains(t, rec.Body.String(), ck.Value)
}

func TestRegister_Errors(t *testing.T) {
	t.Parallel()
	s := newServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/auth/register", registerBody("taken@example.com", "STUDENT"), nil).Code)

	mismatch, _ := json.Marshal(map[string]string{
		"firstname":       "Ada",
		"lastname":        "Lovelace",
		"email":           "mm@example.com",
		"password":        password,
		"confirmPassword": password + "x",
		"role":            "STUDENT",
	})

	tests := []struct {
		name string
		body string
		code string
	}{
		{"duplicate email", registerBody("taken@example.com", "STUDENT"), "EMAIL_ALREADY_EXISTS"},
		{"duplicate email other case", registerBody("TAKEN@example.com", "STUDENT"), "EMAIL_ALREADY_EXISTS"},
		{"unknown role", registerBody("role@example.com", "JANITOR"), "INVALID_ROLE"},
		{"password mismatch", string(mismatch), "PASSWORD_MISMATCH"},
		{"bad email", registerBody("not-an-email", "STUDENT"), "VALIDATION_FAILED"},
		{"malformed json", "{", "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/auth/register", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	t.Parallel()
	s := newServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/auth/register", registerBody("bob@example.com", "STUDENT"), nil).Code)

	for _, body := range []string{
		loginBody("bob@example.com", "Wr0ng!Password"),
		loginBody("nobody@example.com", password),
	} {
		rec := s.do(t, http.MethodPost, "/auth/login", body, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "BAD_CREDENTIALS", errorCode(t, rec))
		assert.Empty(t, rec.Result().Cookies())
	}
}

func TestRefresh(t *testing.T) {
	t.Parallel()
	s := newServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/auth/register", registerBody("cy@example.com", "STUDENT"), nil).Code)
	login := s.do(t, http.MethodPost, "/auth/login", loginBody("cy@example.com", password), nil)
	require.Equal(t, http.StatusOK, login.Code)
	ck := refreshCookie(t, login)

	var access transport.TokenResponse
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &access))

	t.Run("cookie", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/auth/refresh", "", func(r *http.Request) { r.AddCookie(ck) })
		require.Equal(t, http.StatusOK, rec.Code)

		var resp transport.TokenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		claims, err := tokens.Decode(resp.AccessToken, s.keys.Public())
		require.NoError(t, err)
		assert.Equal(t, "cy@example.com", claims.Email)
	})

	t.Run("body fallback", func(t *testing.T) {
		body := `{"refresh_token":"` + ck.Value + `"}`
		rec := s.do(t, http.MethodPost, "/auth/refresh", body, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/auth/refresh", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "INVALID_TOKEN", errorCode(t, rec))
	})

	t.Run("access token", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/auth/refresh", "", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: access.AccessToken})
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "INVALID_TOKEN_TYPE", errorCode(t, rec))
	})

	t.Run("garbage", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/auth/refresh", "", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: "a.b.c"})
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "INVALID_TOKEN", errorCode(t, rec))
	})
}

func TestLogout_ClearsCookie(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	ck := refreshCookie(t, rec)
	assert.Empty(t, ck.Value)
	assert.Less(t, ck.MaxAge, 0)
	assert.True(t, ck.HttpOnly)
}

func TestUsers_RequirePrincipal(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	rec := s.do(t, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))
}

func TestUsers_MeAndRoleChange(t *testing.T) {
	t.Parallel()
	s := newServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/auth/register", registerBody("dee@example.com", "STUDENT"), nil).Code)
	login := s.do(t, http.MethodPost, "/auth/login", loginBody("dee@example.com", password), nil)
	require.Equal(t, http.StatusOK, login.Code)

	var tok transport.TokenResponse
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &tok))
	claims, err := tokens.Decode(tok.AccessToken, s.keys.Public())
	require.NoError(t, err)
	me := claims.Principal()

	rec := s.do(t, http.MethodGet, "/users/me", "", asPrincipal(me))
	require.Equal(t, http.StatusOK, rec.Code)
	var user transport.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "dee@example.com", user.Email)
	assert.Equal(t, "STUDENT", user.Role)
	assert.True(t, user.Active)

	path := "/users/" + me.UserID + "/role"
	rec = s.do(t, http.MethodPatch, path, `{"role":"TEACHER"}`, asPrincipal(me))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := principal.Principal{UserID: "admin-1", Email: "root@example.com", Role: principal.RoleAdmin}
	rec = s.do(t, http.MethodPatch, path, `{"role":"TEACHER"}`, asPrincipal(admin))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "TEACHER", user.Role)

	rec = s.do(t, http.MethodGet, "/users/missing-id", "", asPrincipal(admin))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "USER_NOT_FOUND", errorCode(t, rec))
}

func TestHealth(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/ready", "", nil).Code)
}
