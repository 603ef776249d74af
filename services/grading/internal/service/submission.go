package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/classroom/pkg/logging"
	"github.com/Skotchmaster/classroom/pkg/principal"
	"github.com/Skotchmaster/classroom/services/grading/internal/models"
)

const MaxGrade = 100

// Submit records p's answer. Submitting again replaces the previous answer
// and clears its grade; anything after the due date is marked LATE.
func (s *AssignmentService) Submit(ctx context.Context, p principal.Principal, assignmentID, content string) (*models.Submission, error) {
	l := logging.FromContext(ctx).With("svc", "submission.submit")

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrValidation
	}
	a, err := s.visible(ctx, p, assignmentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sub := &models.Submission{
		AssignmentID: a.ID,
		StudentID:    p.UserID,
		Firstname:    p.Firstname,
		Lastname:     p.Lastname,
		Content:      content,
		Status:       a.StatusAt(now),
		SubmittedAt:  now,
	}
	created, err := s.Repo.SaveSubmission(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("save submission: %w", err)
	}

	typ := "submission_updated"
	if created {
		typ = "submission_created"
	}
	if sub.Status == models.StatusLate {
		l.Warn("late_submission", "assignment_id", a.ID)
	}
	s.publish(ctx, a.ID, typ, map[string]string{
		"assignment_id": a.ID,
		"submission_id": sub.ID,
		"student_id":    p.UserID,
		"status":        sub.Status,
	})
	l.Info("submit_success", "assignment_id", a.ID, "submission_id", sub.ID)
	return sub, nil
}

func (s *AssignmentService) ListSubmissions(ctx context.Context, p principal.Principal, assignmentID string) ([]models.Submission, error) {
	if _, err := s.owned(ctx, p, assignmentID); err != nil {
		return nil, err
	}
	return s.Repo.ListSubmissions(ctx, assignmentID)
}

func (s *AssignmentService) Grade(ctx context.Context, p principal.Principal, assignmentID, submissionID string, grade float64, feedback string) (*models.Submission, error) {
	if grade < 0 || grade > MaxGrade {
		return nil, ErrValidation
	}
	if _, err := s.owned(ctx, p, assignmentID); err != nil {
		return nil, err
	}
	if err := s.Repo.GradeSubmission(ctx, assignmentID, submissionID, grade, strings.TrimSpace(feedback)); err != nil {
		return nil, mapErr(err)
	}
	sub, err := s.Repo.FindSubmission(ctx, assignmentID, submissionID)
	if err != nil {
		return nil, mapErr(err)
	}
	s.publish(ctx, assignmentID, "submission_graded", map[string]any{
		"assignment_id": assignmentID,
		"submission_id": submissionID,
		"student_id":    sub.StudentID,
		"grade":         grade,
	})
	return sub, nil
}

// DeleteSubmission lets a student withdraw their own submission and the
// assignment owner remove any.
func (s *AssignmentService) DeleteSubmission(ctx context.Context, p principal.Principal, assignmentID, submissionID string) error {
	a, err := s.find(ctx, assignmentID)
	if err != nil {
		return err
	}
	sub, err := s.Repo.FindSubmission(ctx, assignmentID, submissionID)
	if err != nil {
		return mapErr(err)
	}
	if a.TeacherID != p.UserID && sub.StudentID != p.UserID {
		logging.FromContext(ctx).Warn("submission_access_denied", "status", 403, "submission_id", submissionID)
		return ErrSubmissionForbidden
	}
	if err := s.Repo.DeleteSubmission(ctx, assignmentID, submissionID); err != nil {
		return mapErr(err)
	}
	s.publish(ctx, assignmentID, "submission_deleted", map[string]string{
		"assignment_id": assignmentID,
		"submission_id": submissionID,
	})
	return nil
}
