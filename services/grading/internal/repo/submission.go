package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/classroom/services/grading/internal/models"
)

// SaveSubmission inserts the student's first submission or replaces the
// content of the existing one. A replaced submission loses its grade.
func (r *GormRepo) SaveSubmission(ctx context.Context, s *models.Submission) (created bool, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Submission
		err := tx.Where("assignment_id = ? AND student_id = ?", s.AssignmentID, s.StudentID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			return tx.Create(s).Error
		}
		if err != nil {
			return err
		}

		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
		s.Grade = nil
		s.Feedback = ""
		return tx.Model(&existing).
			Select("firstname", "lastname", "content", "status", "grade", "feedback", "submitted_at").
			Updates(s).Error
	})
	return created, err
}

func (r *GormRepo) FindSubmission(ctx context.Context, assignmentID, id string) (*models.Submission, error) {
	var s models.Submission
	err := r.DB.WithContext(ctx).First(&s, "id = ? AND assignment_id = ?", id, assignmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) FindStudentSubmission(ctx context.Context, assignmentID, studentID string) (*models.Submission, error) {
	var s models.Submission
	err := r.DB.WithContext(ctx).First(&s, "assignment_id = ? AND student_id = ?", assignmentID, studentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) ListSubmissions(ctx context.Context, assignmentID string) ([]models.Submission, error) {
	items := make([]models.Submission, 0)
	err := r.DB.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("submitted_at ASC").
		Find(&items).Error
	return items, err
}

func (r *GormRepo) GradeSubmission(ctx context.Context, assignmentID, id string, grade float64, feedback string) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ? AND assignment_id = ?", id, assignmentID).
		Updates(map[string]any{"grade": grade, "feedback": feedback})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

func (r *GormRepo) DeleteSubmission(ctx context.Context, assignmentID, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.Submission{}, "id = ? AND assignment_id = ?", id, assignmentID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}
