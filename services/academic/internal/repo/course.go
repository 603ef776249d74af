package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/classroom/services/academic/internal/models"
)

var (
	ErrNotFound     = errors.New("course not found")
	ErrNameConflict = errors.New("course name already used")
)

func (r *GormRepo) NameExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&models.Course{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error
	return count > 0, err
}

const inviteCodeAttempts = 5

// CreateCourse inserts the course and its initial members in one transaction.
// An invite code collision is retried with a fresh code; a name collision is
// reported as ErrNameConflict.
func (r *GormRepo) CreateCourse(ctx context.Context, c *models.Course) error {
	var err error
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		err = r.DB.WithContext(ctx).Create(c).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		taken, lookupErr := r.NameExists(ctx, c.Name)
		if lookupErr != nil {
			return lookupErr
		}
		if taken {
			return ErrNameConflict
		}
		c.InviteCode = models.NewInviteCode()
	}
	return fmt.Errorf("invite code: %w", err)
}

func (r *GormRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	var c models.Course
	if err := r.DB.WithContext(ctx).Preload("Members").First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) FindByInviteCode(ctx context.Context, code string) (*models.Course, error) {
	var c models.Course
	if err := r.DB.WithContext(ctx).First(&c, "invite_code = ?", strings.ToUpper(strings.TrimSpace(code))).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) ListByMember(ctx context.Context, memberID string) ([]models.Course, error) {
	items := make([]models.Course, 0)
	err := r.DB.WithContext(ctx).
		Joins("JOIN course_members ON course_members.course_id = courses.id").
		Where("course_members.member_id = ?", memberID).
		Order("courses.created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *GormRepo) UpdateCourse(ctx context.Context, id string, fields map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrNameConflict
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMember is idempotent: joining twice leaves one membership row.
func (r *GormRepo) AddMember(ctx context.Context, c *models.Course, m models.Member) error {
	return r.DB.WithContext(ctx).Model(c).Association("Members").Append(&m)
}

// RemoveMember reports whether a membership row was deleted.
func (r *GormRepo) RemoveMember(ctx context.Context, courseID, memberID string) (bool, error) {
	res := r.DB.WithContext(ctx).Exec(
		"DELETE FROM course_members WHERE course_id = ? AND member_id = ?", courseID, memberID)
	return res.RowsAffected > 0, res.Error
}

func (r *GormRepo) DeleteCourse(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM course_members WHERE course_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Course{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SearchLike is the fallback search used when no Elasticsearch cluster is
// configured.
func (r *GormRepo) SearchLike(ctx context.Context, q string, offset, limit int) (int64, []models.Course, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	where := "LOWER(name) LIKE ? OR LOWER(description) LIKE ?"

	var total int64
	if err := r.DB.WithContext(ctx).
		Model(&models.Course{}).
		Where(where, pattern, pattern).
		Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Course, 0, limit)
	if err := r.DB.WithContext(ctx).
		Model(&models.Course{}).
		Where(where, pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
