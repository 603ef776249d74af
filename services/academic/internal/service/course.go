package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/classroom/pkg/events"
	"github.com/Skotchmaster/classroom/pkg/logging"
	"github.com/Skotchmaster/classroom/pkg/principal"
	"github.com/Skotchmaster/classroom/services/academic/internal/models"
	"github.com/Skotchmaster/classroom/services/academic/internal/repo"
	"github.com/Skotchmaster/classroom/services/academic/internal/search"
)

// CourseService never reads identity from anywhere but the principal
// argument. Role checks happen in the router; ownership checks happen here.
type CourseService struct {
	Repo        *repo.GormRepo
	Index       search.Index
	Events      events.Publisher
	CourseTopic string
}

type CreateInput struct {
	Name        string
	Description string
}

type UpdateInput struct {
	Name        *string
	Description *string
}

func (s *CourseService) index() search.Index {
	if s.Index == nil {
		return search.DBIndex{Repo: s.Repo}
	}
	return s.Index
}

func (s *CourseService) Create(ctx context.Context, p principal.Principal, in CreateInput) (*models.Course, error) {
	l := logging.FromContext(ctx).With("svc", "course.create")

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrValidation
	}
	exists, err := s.Repo.NameExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("name lookup: %w", err)
	}
	if exists {
		l.Warn("create_course_failed", "status", 400, "reason", "name taken", "name", name)
		return nil, ErrCourseExists
	}

	c := &models.Course{
		Name:             name,
		Description:      strings.TrimSpace(in.Description),
		TeacherID:        p.UserID,
		TeacherFirstname: p.Firstname,
		TeacherLastname:  p.Lastname,
		Members:          []models.Member{memberFrom(p)},
	}
	if err := s.Repo.CreateCourse(ctx, c); err != nil {
		if errors.Is(err, repo.ErrNameConflict) {
			return nil, ErrCourseExists
		}
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.reindex(ctx, c)
	s.publish(ctx, c.ID, "course_created", map[string]string{
		"course_id":  c.ID,
		"name":       c.Name,
		"teacher_id": c.TeacherID,
	})
	l.Info("create_course_success", "course_id", c.ID)
	return c, nil
}

func (s *CourseService) ListMine(ctx context.Context, p principal.Principal) ([]models.Course, error) {
	return s.Repo.ListByMember(ctx, p.UserID)
}

// Get returns the course with its members. Only members may see it.
func (s *CourseService) Get(ctx context.Context, p principal.Principal, id string) (*models.Course, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.HasMember(p.UserID) {
		logging.FromContext(ctx).Warn("get_course_failed", "status", 403, "reason", "not a member", "course_id", id)
		return nil, ErrNotMember
	}
	return c, nil
}

func (s *CourseService) Update(ctx context.Context, p principal.Principal, id string, in UpdateInput) (*models.Course, error) {
	c, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrValidation
		}
		if !strings.EqualFold(name, c.Name) {
			exists, err := s.Repo.NameExists(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("name lookup: %w", err)
			}
			if exists {
				return nil, ErrCourseExists
			}
		}
		fields["name"] = name
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if len(fields) == 0 {
		return c, nil
	}

	if err := s.Repo.UpdateCourse(ctx, id, fields); err != nil {
		return nil, s.mapErr(err)
	}
	c, err = s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, c)
	s.publish(ctx, c.ID, "course_updated", map[string]string{"course_id": c.ID, "name": c.Name})
	return c, nil
}

// Join adds the caller to the course behind an invite code. Joining a
// course twice is not an error.
func (s *CourseService) Join(ctx context.Context, p principal.Principal, code string) (*models.Course, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrValidation
	}
	c, err := s.Repo.FindByInviteCode(ctx, code)
	if err != nil {
		return nil, s.mapErr(err)
	}
	if err := s.Repo.AddMember(ctx, c, memberFrom(p)); err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	s.publish(ctx, c.ID, "course_member_joined", map[string]string{"course_id": c.ID, "member_id": p.UserID})
	logging.FromContext(ctx).Info("join_course_success", "course_id", c.ID)
	return c, nil
}

func (s *CourseService) Leave(ctx context.Context, p principal.Principal, id string) error {
	c, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if c.TeacherID == p.UserID {
		return ErrOwnerCannotLeave
	}
	return s.removeMember(ctx, c, p.UserID, "course_member_left")
}

func (s *CourseService) RemoveMember(ctx context.Context, p principal.Principal, id, memberID string) error {
	c, err := s.owned(ctx, p, id)
	if err != nil {
		return err
	}
	if memberID == c.TeacherID {
		return ErrOwnerCannotLeave
	}
	return s.removeMember(ctx, c, memberID, "course_member_removed")
}

func (s *CourseService) Delete(ctx context.Context, p principal.Principal, id string) error {
	if _, err := s.owned(ctx, p, id); err != nil {
		return err
	}
	if err := s.Repo.DeleteCourse(ctx, id); err != nil {
		return s.mapErr(err)
	}
	if err := s.index().Delete(ctx, id); err != nil {
		logging.FromContext(ctx).Error("index_delete_failed", "course_id", id, "error", err)
	}
	s.publish(ctx, id, "course_deleted", map[string]string{"course_id": id})
	return nil
}

func (s *CourseService) Search(ctx context.Context, q string, offset, limit int) (int64, []search.Doc, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, ErrValidation
	}
	return s.index().Search(ctx, q, offset, limit)
}

func (s *CourseService) removeMember(ctx context.Context, c *models.Course, memberID, event string) error {
	removed, err := s.Repo.RemoveMember(ctx, c.ID, memberID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if !removed {
		return ErrNotMember
	}
	s.publish(ctx, c.ID, event, map[string]string{"course_id": c.ID, "member_id": memberID})
	return nil
}

func (s *CourseService) find(ctx context.Context, id string) (*models.Course, error) {
	c, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapErr(err)
	}
	return c, nil
}

func (s *CourseService) owned(ctx context.Context, p principal.Principal, id string) (*models.Course, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.TeacherID != p.UserID {
		logging.FromContext(ctx).Warn("course_access_denied", "status", 403, "reason", "not owner", "course_id", id)
		return nil, ErrNotOwner
	}
	return c, nil
}

func (s *CourseService) reindex(ctx context.Context, c *models.Course) {
	if err := s.index().Put(ctx, search.DocFrom(c)); err != nil {
		logging.FromContext(ctx).Error("index_put_failed", "course_id", c.ID, "error", err)
	}
}

func (s *CourseService) mapErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return ErrCourseNotFound
	case errors.Is(err, repo.ErrNameConflict):
		return ErrCourseExists
	}
	return err
}

func (s *CourseService) publish(ctx context.Context, key, typ string, payload any) {
	if s.Events == nil {
		return
	}
	topic := s.CourseTopic
	if topic == "" {
		topic = events.TopicCourseEvents
	}
	if err := s.Events.Publish(ctx, topic, key, events.Event{Type: typ, OccurredAt: time.Now().UTC(), Payload: payload}); err != nil {
		logging.FromContext(ctx).Error("publish_failed", "event", typ, "error", err)
	}
}

func memberFrom(p principal.Principal) models.Member {
	return models.Member{ID: p.UserID, Firstname: p.Firstname, Lastname: p.Lastname}
}
