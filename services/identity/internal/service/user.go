package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/classroom/pkg/events"
	pkg_hash "github.com/Skotchmaster/classroom/pkg/hash"
	"github.com/Skotchmaster/classroom/pkg/logging"
	"github.com/Skotchmaster/classroom/pkg/principal"
	"github.com/Skotchmaster/classroom/services/identity/internal/models"
	"github.com/Skotchmaster/classroom/services/identity/internal/repo"
)

// UserService serves profile reads and writes for the calling principal.
// The principal is always passed in by the handler.
type UserService struct {
	Repo      *repo.GormRepo
	Events    events.Publisher
	UserTopic string
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) Profile(ctx context.Context, p principal.Principal) (*models.User, error) {
	return s.Get(ctx, p.UserID)
}

func (s *UserService) UpdateProfile(ctx context.Context, p principal.Principal, firstname, lastname string) (*models.User, error) {
	if err := s.Repo.UpdateNames(ctx, p.UserID, firstname, lastname); err != nil {
		return nil, s.mapErr(err)
	}
	logging.FromContext(ctx).Info("profile_updated", "user_id", p.UserID)
	return s.Get(ctx, p.UserID)
}

func (s *UserService) ChangePassword(ctx context.Context, p principal.Principal, current, next, confirm string) error {
	l := logging.FromContext(ctx).With("svc", "user.change_password")
	if next != confirm {
		return ErrPasswordMismatch
	}

	u, err := s.Get(ctx, p.UserID)
	if err != nil {
		return err
	}
	if !pkg_hash.CheckPassword(u.PasswordHash, current) {
		l.Warn("change_password_failed", "status", 400, "reason", "current password mismatch")
		return ErrInvalidCurrentPassword
	}

	h, err := pkg_hash.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Repo.UpdatePassword(ctx, u.ID, h); err != nil {
		return s.mapErr(err)
	}
	l.Info("password_changed", "user_id", u.ID)
	return nil
}

// Deactivate disables login and refresh. Access tokens already issued keep
// working until they expire.
func (s *UserService) Deactivate(ctx context.Context, p principal.Principal) error {
	u, err := s.Get(ctx, p.UserID)
	if err != nil {
		return err
	}
	if !u.Enabled {
		return ErrAlreadyDeactivated
	}
	if err := s.setEnabled(ctx, u.ID, false); err != nil {
		return err
	}
	s.publish(ctx, u.ID, "user_deactivated")
	return nil
}

func (s *UserService) Reactivate(ctx context.Context, p principal.Principal) error {
	u, err := s.Get(ctx, p.UserID)
	if err != nil {
		return err
	}
	if u.Enabled {
		return ErrAlreadyActivated
	}
	if err := s.setEnabled(ctx, u.ID, true); err != nil {
		return err
	}
	s.publish(ctx, u.ID, "user_reactivated")
	return nil
}

// ChangeRole is an administrative operation; the route is guarded for ADMIN.
// The new role shows up in the user's next refreshed access token.
func (s *UserService) ChangeRole(ctx context.Context, actor principal.Principal, userID, role string) (*models.User, error) {
	r, ok := principal.ParseRole(role)
	if !ok {
		return nil, ErrInvalidRole
	}
	if err := s.Repo.SetRole(ctx, userID, string(r)); err != nil {
		return nil, s.mapErr(err)
	}
	logging.FromContext(ctx).Info("role_changed", "user_id", userID, "role", string(r), "by", actor.UserID)
	s.publish(ctx, userID, "user_role_changed")
	return s.Get(ctx, userID)
}

func (s *UserService) setEnabled(ctx context.Context, id string, enabled bool) error {
	return s.mapErr(s.Repo.SetEnabled(ctx, id, enabled))
}

func (s *UserService) mapErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *UserService) publish(ctx context.Context, userID, typ string) {
	if s.Events == nil {
		return
	}
	topic := s.UserTopic
	if topic == "" {
		topic = events.TopicUserEvents
	}
	if err := s.Events.Publish(ctx, topic, userID, events.Event{Type: typ, Payload: map[string]string{"user_id": userID}}); err != nil {
		logging.FromContext(ctx).Error("publish_failed", "event", typ, "error", err)
	}
}
