package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/classroom/services/identity/internal/models"
)

var (
	ErrNotFound         = errors.New("user not found")
	ErrEmailAlreadyUsed = errors.New("email already used")
)

func (r *GormRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", models.NormalizeEmail(email)).
		Count(&n).Error
	return n > 0, err
}

// Create relies on the unique index on email; two concurrent registrations
// for the same address cannot both succeed.
func (r *GormRepo) Create(ctx context.Context, u *models.User) error {
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailAlreadyUsed
		}
		return err
	}
	return nil
}

func (r *GormRepo) UpdateNames(ctx context.Context, id, firstname, lastname string) error {
	return r.update(ctx, id, map[string]any{"firstname": firstname, "lastname": lastname})
}

func (r *GormRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.update(ctx, id, map[string]any{"password_hash": hash})
}

// SetEnabled switches login ability and the public active flag together.
func (r *GormRepo) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return r.update(ctx, id, map[string]any{"enabled": enabled, "active": enabled})
}

func (r *GormRepo) SetRole(ctx context.Context, id string, role string) error {
	return r.update(ctx, id, map[string]any{"role": role})
}

func (r *GormRepo) update(ctx context.Context, id string, fields map[string]any) error {
	tx := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
