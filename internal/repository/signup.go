package repository

import (
	"context"
	"errors"

	"pantryshift/internal/models"

	"gorm.io/gorm"
)

// SignupRepository defines persistence operations for shift signups.
type SignupRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Signup, error)
	ListByRole(ctx context.Context, roleID uint) ([]models.Signup, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Signup, error)
}

type signupRepository struct {
	db *gorm.DB
}

// NewSignupRepository returns a new SignupRepository implementation.
func NewSignupRepository(db *gorm.DB) SignupRepository {
	return &signupRepository{db: db}
}

func (r *signupRepository) GetByID(ctx context.Context, id uint) (*models.Signup, error) {
	var signup models.Signup
	if err := r.db.WithContext(ctx).Preload("User").First(&signup, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Signup", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &signup, nil
}

func (r *signupRepository) ListByRole(ctx context.Context, roleID uint) ([]models.Signup, error) {
	var signups []models.Signup
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("shift_role_id = ?", roleID).
		Order("created_at ASC, id ASC").
		Find(&signups).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return signups, nil
}

func (r *signupRepository) ListByUser(ctx context.Context, userID uint) ([]models.Signup, error) {
	var signups []models.Signup
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&signups).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return signups, nil
}
