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
	"github.com/Skotchmaster/classroom/services/grading/internal/courses"
	"github.com/Skotchmaster/classroom/services/grading/internal/models"
	"github.com/Skotchmaster/classroom/services/grading/internal/repo"
)

// AssignmentService trusts the principal it is handed. Roles are checked by
// the router; course ownership and membership are checked here against the
// academic service.
type AssignmentService struct {
	Repo            *repo.GormRepo
	Courses         courses.Directory
	Events          events.Publisher
	AssignmentTopic string

	// Now is overridden in tests.
	Now func() time.Time
}

type CreateInput struct {
	CourseID    string
	Title       string
	Description string
	DueAt       time.Time
}

type UpdateInput struct {
	Title       *string
	Description *string
	DueAt       *time.Time
}

// View is an assignment as shown to one caller: its owner sees every
// submission, a student only their own.
type View struct {
	Assignment   *models.Assignment
	Submissions  []models.Submission
	MySubmission *models.Submission
}

func (s *AssignmentService) Create(ctx context.Context, p principal.Principal, in CreateInput) (*models.Assignment, error) {
	l := logging.FromContext(ctx).With("svc", "assignment.create")

	title := strings.TrimSpace(in.Title)
	if title == "" || in.CourseID == "" || in.DueAt.IsZero() {
		return nil, ErrValidation
	}

	c, err := s.lookup(ctx, p, in.CourseID)
	if err != nil {
		return nil, err
	}
	if c.TeacherID != p.UserID {
		l.Warn("create_assignment_failed", "status", 403, "reason", "not owner", "course_id", in.CourseID)
		return nil, ErrNotOwner
	}

	exists, err := s.Repo.TitleExists(ctx, in.CourseID, title)
	if err != nil {
		return nil, fmt.Errorf("title lookup: %w", err)
	}
	if exists {
		return nil, ErrAssignmentExists
	}

	a := &models.Assignment{
		CourseID:    in.CourseID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		DueAt:       in.DueAt.UTC(),
		TeacherID:   p.UserID,
	}
	if err := s.Repo.CreateAssignment(ctx, a); err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	s.publish(ctx, a.ID, "assignment_created", map[string]string{
		"assignment_id": a.ID,
		"course_id":     a.CourseID,
		"title":         a.Title,
	})
	l.Info("create_assignment_success", "assignment_id", a.ID)
	return a, nil
}

// ListByCourse is open to course members only.
func (s *AssignmentService) ListByCourse(ctx context.Context, p principal.Principal, courseID string) ([]models.Assignment, error) {
	if strings.TrimSpace(courseID) == "" {
		return nil, ErrValidation
	}
	if _, err := s.lookup(ctx, p, courseID); err != nil {
		return nil, err
	}
	return s.Repo.ListByCourse(ctx, courseID)
}

func (s *AssignmentService) Get(ctx context.Context, p principal.Principal, id string) (*View, error) {
	a, err := s.visible(ctx, p, id)
	if err != nil {
		return nil, err
	}

	v := &View{Assignment: a}
	if a.TeacherID == p.UserID {
		if v.Submissions, err = s.Repo.ListSubmissions(ctx, id); err != nil {
			return nil, fmt.Errorf("list submissions: %w", err)
		}
		return v, nil
	}

	mine, err := s.Repo.FindStudentSubmission(ctx, id, p.UserID)
	switch {
	case err == nil:
		v.MySubmission = mine
	case !errors.Is(err, repo.ErrSubmissionNotFound):
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return v, nil
}

func (s *AssignmentService) Update(ctx context.Context, p principal.Principal, id string, in UpdateInput) (*models.Assignment, error) {
	a, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrValidation
		}
		if !strings.EqualFold(title, a.Title) {
			exists, err := s.Repo.TitleExists(ctx, a.CourseID, title)
			if err != nil {
				return nil, fmt.Errorf("title lookup: %w", err)
			}
			if exists {
				return nil, ErrAssignmentExists
			}
		}
		fields["title"] = title
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.DueAt != nil {
		if in.DueAt.IsZero() {
			return nil, ErrValidation
		}
		fields["due_at"] = in.DueAt.UTC()
	}
	if len(fields) == 0 {
		return a, nil
	}

	if err := s.Repo.UpdateAssignment(ctx, id, fields); err != nil {
		return nil, mapErr(err)
	}
	s.publish(ctx, id, "assignment_updated", map[string]string{"assignment_id": id, "course_id": a.CourseID})
	return s.find(ctx, id)
}

func (s *AssignmentService) Delete(ctx context.Context, p principal.Principal, id string) error {
	a, err := s.owned(ctx, p, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteAssignment(ctx, id); err != nil {
		return mapErr(err)
	}
	s.publish(ctx, id, "assignment_deleted", map[string]string{"assignment_id": id, "course_id": a.CourseID})
	return nil
}

func (s *AssignmentService) find(ctx context.Context, id string) (*models.Assignment, error) {
	a, err := s.Repo.FindAssignment(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

// visible returns the assignment when p belongs to its course.
func (s *AssignmentService) visible(ctx context.Context, p principal.Principal, id string) (*models.Assignment, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.TeacherID == p.UserID {
		return a, nil
	}
	if _, err := s.lookup(ctx, p, a.CourseID); err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *AssignmentService) owned(ctx context.Context, p principal.Principal, id string) (*models.Assignment, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.TeacherID != p.UserID {
		logging.FromContext(ctx).Warn("assignment_access_denied", "status", 403, "reason", "not owner", "assignment_id", id)
		return nil, ErrNotOwner
	}
	return a, nil
}

func (s *AssignmentService) lookup(ctx context.Context, p principal.Principal, courseID string) (courses.Course, error) {
	c, err := s.Courses.Lookup(ctx, p, courseID)
	switch {
	case err == nil:
		return c, nil
	case errors.Is(err, courses.ErrNotFound):
		return c, ErrCourseNotFound
	case errors.Is(err, courses.ErrNotMember):
		logging.FromContext(ctx).Warn("course_access_denied", "status", 403, "reason", "not a member", "course_id", courseID)
		return c, ErrNotMember
	case errors.Is(err, courses.ErrUnavailable):
		logging.FromContext(ctx).Error("course_lookup_failed", "course_id", courseID, "error", err)
		return c, ErrCourseDirectoryDown
	}
	return c, err
}

func (s *AssignmentService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AssignmentService) publish(ctx context.Context, key, typ string, payload any) {
	if s.Events == nil {
		return
	}
	topic := s.AssignmentTopic
	if topic == "" {
		topic = events.TopicAssignmentEvents
	}
	if err := s.Events.Publish(ctx, topic, key, events.Event{Type: typ, OccurredAt: s.now(), Payload: payload}); err != nil {
		logging.FromContext(ctx).Error("publish_failed", "event", typ, "error", err)
	}
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrAssignmentNotFound):
		return ErrAssignmentNotFound
	case errors.Is(err, repo.ErrSubmissionNotFound):
		return ErrSubmissionNotFound
	}
	return err
}
