package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/classroom/services/grading/internal/models"
)

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)

// TitleExists compares titles case-insensitively within one course.
func (r *GormRepo) TitleExists(ctx context.Context, courseID, title string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("course_id = ? AND LOWER(title) = ?", courseID, strings.ToLower(strings.TrimSpace(title))).
		Count(&count).Error
	return count > 0, err
}

func (r *GormRepo) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *GormRepo) FindAssignment(ctx context.Context, id string) (*models.Assignment, error) {
	var a models.Assignment
	if err := r.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *GormRepo) ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error) {
	items := make([]models.Assignment, 0)
	err := r.DB.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("due_at ASC, created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *GormRepo) UpdateAssignment(ctx context.Context, id string, fields map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&models.Assignment{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// DeleteAssignment removes the assignment together with its submissions.
func (r *GormRepo) DeleteAssignment(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Assignment{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAssignmentNotFound
		}
		return nil
	})
}
