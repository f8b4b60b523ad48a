package repository

import (
	"context"
	"errors"

	"pantryshift/internal/models"

	"gorm.io/gorm"
)

// RoleRepository defines persistence operations for the shared role table.
type RoleRepository interface {
	List(ctx context.Context) ([]models.Role, error)
	GetByID(ctx context.Context, id uint) (*models.Role, error)
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository returns a new RoleRepository implementation.
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) List(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return roles, nil
}

func (r *roleRepository) GetByID(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Role", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &role, nil
}
