package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/classroom/pkg/events"
	pkg_hash "github.com/Skotchmaster/classroom/pkg/hash"
	"github.com/Skotchmaster/classroom/pkg/keys"
	"github.com/Skotchmaster/classroom/pkg/logging"
	"github.com/Skotchmaster/classroom/pkg/principal"
	"github.com/Skotchmaster/classroom/pkg/tokens"
	"github.com/Skotchmaster/classroom/services/identity/internal/models"
	"github.com/Skotchmaster/classroom/services/identity/internal/ratelimit"
	"github.com/Skotchmaster/classroom/services/identity/internal/repo"
)

// AuthService issues tokens. It is the only holder of the private key.
type AuthService struct {
	Repo    *repo.GormRepo
	Keys    *keys.Pair
	Limiter ratelimit.LoginLimiter
	Events  events.Publisher

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	UserTopic  string

	// Now defaults to time.Now.
	Now func() time.Time
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	User         *models.User
}

type RefreshResult struct {
	AccessToken string
	AccessExp   time.Time
}

type RegisterInput struct {
	Firstname       string
	Lastname        string
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) limiter() ratelimit.LoginLimiter {
	if s.Limiter == nil {
		return ratelimit.Noop{}
	}
	return s.Limiter
}

func (s *AuthService) CreateAccessToken(u *models.User, now time.Time) (string, time.Time, error) {
	exp := now.Add(s.AccessTTL)
	tok, err := tokens.Encode(tokens.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		TokenType: tokens.TokenTypeAccess,
	}, s.Keys.Private())
	return tok, exp, err
}

// CreateRefreshToken carries no role: the role is re-read from the store on
// every refresh so role changes take effect without a new login.
func (s *AuthService) CreateRefreshToken(u *models.User, now time.Time) (string, time.Time, error) {
	exp := now.Add(s.RefreshTTL)
	tok, err := tokens.Encode(tokens.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		TokenType: tokens.TokenTypeRefresh,
	}, s.Keys.Private())
	return tok, exp, err
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = models.NormalizeEmail(email)
	l := logging.FromContext(ctx).With("svc", "auth.login")
	if email == "" || password == "" {
		return nil, ErrValidation
	}

	if err := s.limiter().Check(ctx, email); err != nil {
		if errors.Is(err, ratelimit.ErrRateLimited) {
			l.Warn("login_failed", "status", 429, "reason", "too many attempts")
			return nil, ErrTooManyAttempts
		}
		l.Error("limiter_unavailable", "error", err)
	}

	user, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.recordFailure(ctx, email)
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		s.recordFailure(ctx, email)
		l.Warn("login_failed", "status", 401, "reason", "password mismatch", "user_id", user.ID)
		return nil, ErrBadCredentials
	}

	if !user.Enabled {
		l.Warn("login_failed", "status", 401, "reason", "account disabled", "user_id", user.ID)
		return nil, ErrAccountDisabled
	}

	if err := s.limiter().Reset(ctx, email); err != nil {
		l.Error("limiter_unavailable", "error", err)
	}

	now := s.now()
	accessToken, accessExp, err := s.CreateAccessToken(user, now)
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}
	refreshToken, refreshExp, err := s.CreateRefreshToken(user, now)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	s.publish(ctx, user.ID, "user_logged_in", map[string]string{"user_id": user.ID, "email": user.Email})
	l.Info("login_successful", "user_id", user.ID)

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		User:         user,
	}, nil
}

// Refresh mints a new access token from a refresh token. The refresh token
// itself is returned to nobody and never rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.Decode(refreshToken, s.Keys.Public())
	if err != nil && !errors.Is(err, tokens.ErrTokenExpired) {
		l.Warn("refresh_failed", "status", 401, "reason", err.Error())
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.TokenType != tokens.TokenTypeRefresh {
		l.Warn("refresh_failed", "status", 401, "reason", "not a refresh token")
		return nil, ErrInvalidTokenType
	}
	if err != nil {
		l.Info("refresh_failed", "status", 401, "reason", "expired")
		return nil, ErrRefreshExpired
	}

	user, err := s.Repo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "subject not found")
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.Enabled {
		l.Warn("refresh_failed", "status", 401, "reason", "account disabled", "user_id", user.ID)
		return nil, ErrAccountDisabled
	}

	accessToken, accessExp, err := s.CreateAccessToken(user, s.now())
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}
	l.Info("refresh_successful", "user_id", user.ID)

	return &RefreshResult{AccessToken: accessToken, AccessExp: accessExp}, nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")
	email := models.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, ErrValidation
	}

	exists, err := s.Repo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("email lookup: %w", err)
	}
	if exists {
		l.Warn("register_error", "status", 400, "reason", "email already exists")
		return nil, ErrEmailAlreadyExists
	}

	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	role, ok := principal.ParseRole(in.Role)
	if !ok || role == principal.RoleAdmin {
		l.Warn("register_error", "status", 400, "reason", "invalid role", "role", in.Role)
		return nil, ErrInvalidRole
	}

	pwHash, err := pkg_hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Firstname:    in.Firstname,
		Lastname:     in.Lastname,
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
		Enabled:      true,
		Active:       true,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrEmailAlreadyUsed) {
			l.Warn("register_error", "status", 400, "reason", "email already exists")
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.publish(ctx, user.ID, "user_registered", map[string]string{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
	})
	l.Info("register_successful", "user_id", user.ID)
	return user, nil
}

// Logout has no server-side state to clear. Access tokens already issued
// stay valid until they expire. The refresh token is only read to attribute
// the event and may be empty or invalid.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	l := logging.FromContext(ctx).With("svc", "auth.logout")
	if refreshToken != "" {
		claims, err := tokens.Decode(refreshToken, s.Keys.Public())
		if err == nil && claims.TokenType == tokens.TokenTypeRefresh {
			s.publish(ctx, claims.Subject, "user_logged_out", map[string]string{"email": claims.Subject})
		}
	}
	l.Info("successful_logout")
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if err := s.limiter().Fail(ctx, email); err != nil {
		logging.FromContext(ctx).Error("limiter_unavailable", "error", err)
	}
}

func (s *AuthService) publish(ctx context.Context, key, typ string, payload any) {
	if s.Events == nil {
		return
	}
	topic := s.UserTopic
	if topic == "" {
		topic = events.TopicUserEvents
	}
	if err := s.Events.Publish(ctx, topic, key, events.Event{Type: typ, OccurredAt: s.now().UTC(), Payload: payload}); err != nil {
		logging.FromContext(ctx).Error("publish_failed", "event", typ, "error", err)
	}
}
