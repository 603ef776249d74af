package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/classroom/pkg/db/dbtest"
	"github.com/Skotchmaster/classroom/pkg/events/eventstest"
	"github.com/Skotchmaster/classroom/pkg/keys"
	"github.com/Skotchmaster/classroom/pkg/keys/keystest"
	"github.com/Skotchmaster/classroom/pkg/principal"
	"github.com/Skotchmaster/classroom/pkg/tokens"
	"github.com/Skotchmaster/classroom/services/identity/internal/models"
	"github.com/Skotchmaster/classroom/services/identity/internal/ratelimit"
	"github.com/Skotchmaster/classroom/services/identity/internal/repo"
)

const testPassword = "Str0ng!Passw0rd"

type testEnv struct {
	auth   *AuthService
	users  *UserService
	repo   *repo.GormRepo
	events *eventstest.Recorder
	clock  *time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := repo.New(dbtest.Open(t, &models.User{}))
	rec := &eventstest.Recorder{}
	now := time.Now().Truncate(time.Second)
	env := &testEnv{repo: r, events: rec, clock: &now}

	env.auth = &AuthService{
		Repo:       r,
		Keys:       keys.NewPair(keystest.Key(t)),
		Events:     rec,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		Now:        func() time.Time { return *env.clock },
	}
	env.users = &UserService{Repo: r, Events: rec}
	return env
}

func (e *testEnv) register(t *testing.T, email string, role principal.Role) *models.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), RegisterInput{
		Firstname:       "Ada",
		Lastname:        "Lovelace",
		Email:           email,
		Password:        testPassword,
		ConfirmPassword: testPassword,
		Role:            string(role),
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) pub() *keys.Pair { return e.auth.Keys }

func TestLogin_EnabledTeacher(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	u := env.register(t, "teacher@example.com", principal.RoleTeacher)

	res, err := env.auth.Login(context.Background(), "Teacher@Example.com", testPassword)
	require.NoError(t, err)

	access, err := tokens.Decode(res.AccessToken, env.pub().Public())
	require.NoError(t, err)
	assert.Equal(t, tokens.TokenTypeAccess, access.TokenType)
	assert.Equal(t, principal.RoleTeacher, access.Role)
	assert.Equal(t, u.ID, access.UserID)
	assert.Equal(t, "teacher@example.com", access.Email)
	assert.Equal(t, "teacher@example.com", access.Subject)
	assert.Equal(t, "Ada", access.Firstname)
	assert.WithinDuration(t, env.clock.Add(15*time.Minute), access.ExpiresAt.Time, time.Second)

	refresh, err := tokens.Decode(res.RefreshToken, env.pub().Public())
	require.NoError(t, err)
	assert.Equal(t, tokens.TokenTypeRefresh, refresh.TokenType)
	assert.Empty(t, refresh.Role)
	assert.Empty(t, refresh.UserID)
	assert.Equal(t, "teacher@example.com", refresh.Subject)
	assert.WithinDuration(t, env.clock.Add(7*24*time.Hour), res.RefreshExp, time.Second)

	assert.Contains(t, env.events.Types(), "user_logged_in")
}

func TestLogin_Failures(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	u := env.register(t, "student@example.com", principal.RoleStudent)
	require.NoError(t, env.repo.SetEnabled(context.Background(), u.ID, false))

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{name: "unknown email", email: "ghost@example.com", password: testPassword, want: ErrBadCredentials},
		{name: "wrong password", email: "student@example.com", password: "Wr0ng!Passw0rd", want: ErrBadCredentials},
		{name: "disabled", email: "student@example.com", password: testPassword, want: ErrAccountDisabled},
		{name: "empty", email: "", password: "", want: ErrValidation},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			res, err := env.auth.Login(context.Background(), tt.email, tt.password)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, res)
		})
	}
}

func TestRefresh_WithAccessTokenIsInvalidType(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.register(t, "s@example.com", principal.RoleStudent)
	login, err := env.auth.Login(context.Background(), "s@example.com", testPassword)
	require.NoError(t, err)

	res, err := env.auth.Refresh(context.Background(), login.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
	assert.Nil(t, res)
}

func TestRefresh_PicksUpRoleChange(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "promote@example.com", principal.RoleStudent)

	login, err := env.auth.Login(ctx, "promote@example.com", testPassword)
	require.NoError(t, err)

	admin := principal.Principal{UserID: "admin-1", Role: principal.RoleAdmin}
	_, err = env.users.ChangeRole(ctx, admin, u.ID, "TEACHER")
	require.NoError(t, err)

	*env.clock = env.clock.Add(time.Minute)
	res, err := env.auth.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)

	claims, err := tokens.Decode(res.AccessToken, env.pub().Public())
	require.NoError(t, err)
	assert.Equal(t, principal.RoleTeacher, claims.Role)
	assert.Equal(t, u.ID, claims.UserID)
	assert.WithinDuration(t, env.clock.Add(15*time.Minute), res.AccessExp, time.Second)
}

func TestRefresh_Failures(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "r@example.com", principal.RoleStudent)

	sign := func(c tokens.Claims) string {
		tok, err := tokens.Encode(c, env.pub().Private())
		require.NoError(t, err)
		return tok
	}
	refreshFor := func(sub string, exp time.Time) string {
		return sign(tokens.Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: sub, ExpiresAt: jwt.NewNumericDate(exp)},
			TokenType:        tokens.TokenTypeRefresh,
		})
	}

	foreign, err := tokens.Encode(tokens.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "r@example.com", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		TokenType:        tokens.TokenTypeRefresh,
	}, keystest.NewKey(t))
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		_, err := env.auth.Refresh(ctx, refreshFor("r@example.com", time.Now().Add(-time.Minute)))
		assert.ErrorIs(t, err, ErrRefreshExpired)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := env.auth.Refresh(ctx, "garbage")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("foreign signature", func(t *testing.T) {
		_, err := env.auth.Refresh(ctx, foreign)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("unknown subject", func(t *testing.T) {
		_, err := env.auth.Refresh(ctx, refreshFor("gone@example.com", time.Now().Add(time.Hour)))
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
	t.Run("disabled user", func(t *testing.T) {
		tok := refreshFor("r@example.com", time.Now().Add(time.Hour))
		require.NoError(t, env.repo.SetEnabled(ctx, u.ID, false))
		_, err := env.auth.Refresh(ctx, tok)
		assert.ErrorIs(t, err, ErrAccountDisabled)
	})
}

func TestRegister(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "taken@example.com", principal.RoleStudent)

	base := RegisterInput{
		Firstname:       "Alan",
		Lastname:        "Turing",
		Email:           "new@example.com",
		Password:        testPassword,
		ConfirmPassword: testPassword,
		Role:            "STUDENT",
	}

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		want   error
	}{
		{name: "duplicate email", mutate: func(in *RegisterInput) { in.Email = "TAKEN@example.com" }, want: ErrEmailAlreadyExists},
		{name: "password mismatch", mutate: func(in *RegisterInput) { in.ConfirmPassword = "Other!Passw0rd" }, want: ErrPasswordMismatch},
		{name: "admin rejected", mutate: func(in *RegisterInput) { in.Role = "ADMIN" }, want: ErrInvalidRole},
		{name: "unknown role", mutate: func(in *RegisterInput) { in.Role = "PRINCIPAL" }, want: ErrInvalidRole},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			u, err := env.auth.Register(ctx, in)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, u)
		})
	}

	var n int64
	require.NoError(t, env.repo.DB.Model(&models.User{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	u, err := env.auth.Register(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, principal.RoleStudent, u.Role)
	assert.True(t, u.Enabled)
	assert.NotEqual(t, testPassword, u.PasswordHash)
	assert.Contains(t, env.events.Types(), "user_registered")
}

func TestLogout_PublishesForValidRefreshToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.register(t, "bye@example.com", principal.RoleStudent)
	login, err := env.auth.Login(context.Background(), "bye@example.com", testPassword)
	require.NoError(t, err)

	env.auth.Logout(context.Background(), "not-a-token")
	assert.NotContains(t, env.events.Types(), "user_logged_out")

	env.auth.Logout(context.Background(), login.RefreshToken)
	assert.Contains(t, env.events.Types(), "user_logged_out")
}

type stubLimiter struct {
	locked   bool
	failures int
	resets   int
}

func (s *stubLimiter) Check(context.Context, string) error {
	if s.locked {
		return ratelimit.ErrRateLimited
	}
	return nil
}
func (s *stubLimiter) Fail(context.Context, string) error  { s.failures++; return nil }
func (s *stubLimiter) Reset(context.Context, string) error { s.resets++; return nil }

func TestLogin_Limiter(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.register(t, "lim@example.com", principal.RoleStudent)
	lim := &stubLimiter{}
	env.auth.Limiter = lim

	_, err := env.auth.Login(context.Background(), "lim@example.com", "Wr0ng!Passw0rd")
	assert.ErrorIs(t, err, ErrBadCredentials)
	assert.Equal(t, 1, lim.failures)

	_, err = env.auth.Login(context.Background(), "lim@example.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, 1, lim.resets)

	lim.locked = true
	_, err = env.auth.Login(context.Background(), "lim@example.com", testPassword)
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}
