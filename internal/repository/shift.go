package repository

import (
	"context"
	"errors"

	"pantryshift/internal/models"

	"gorm.io/gorm"
)

// ShiftRepository defines persistence operations for shifts and shift roles.
// Cascading deletes run inside a single transaction so no orphaned role or
// signup row is ever observable.
type ShiftRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Shift, error)
	ListByPantry(ctx context.Context, pantryID uint) ([]models.Shift, error)
	ListOpenByPantry(ctx context.Context, pantryID uint) ([]models.Shift, error)
	Create(ctx context.Context, shift *models.Shift) error
	Save(ctx context.Context, shift *models.Shift) error
	DeleteCascade(ctx context.Context, shiftID uint) error

	GetRole(ctx context.Context, id uint) (*models.ShiftRole, error)
	ListRoles(ctx context.Context, shiftID uint) ([]models.ShiftRole, error)
	CreateRole(ctx context.Context, role *models.ShiftRole) error
	DeleteRoleCascade(ctx context.Context, roleID uint) error
}

type shiftRepository struct {
	db *gorm.DB
}

// NewShiftRepository returns a new ShiftRepository implementation.
func NewShiftRepository(db *gorm.DB) ShiftRepository {
	return &shiftRepository{db: db}
}

func (r *shiftRepository) GetByID(ctx context.Context, id uint) (*models.Shift, error) {
	var shift models.Shift
	if err := r.db.WithContext(ctx).
		Preload("Roles", func(db *gorm.DB) *gorm.DB { return db.Order("shift_roles.id ASC") }).
		First(&shift, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Shift", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &shift, nil
}

func (r *shiftRepository) ListByPantry(ctx context.Context, pantryID uint) ([]models.Shift, error) {
	var shifts []models.Shift
	if err := r.db.WithContext(ctx).
		Preload("Roles", func(db *gorm.DB) *gorm.DB { return db.Order("shift_roles.id ASC") }).
		Where("pantry_id = ?", pantryID).
		Order("start_time ASC, id ASC").
		Find(&shifts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return shifts, nil
}

// ListOpenByPantry excludes cancelled shifts; it backs the public board.
func (r *shiftRepository) ListOpenByPantry(ctx context.Context, pantryID uint) ([]models.Shift, error) {
	var shifts []models.Shift
	if err := r.db.WithContext(ctx).
		Preload("Roles", func(db *gorm.DB) *gorm.DB { return db.Order("shift_roles.id ASC") }).
		Where("pantry_id = ? AND status <> ?", pantryID, models.ShiftStatusCancelled).
		Order("start_time ASC, id ASC").
		Find(&shifts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return shifts, nil
}

func (r *shiftRepository) Create(ctx context.Context, shift *models.Shift) error {
	if err := r.db.WithContext(ctx).Create(shift).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *shiftRepository) Save(ctx context.Context, shift *models.Shift) error {
	if err := r.db.WithContext(ctx).Save(shift).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteCascade removes a shift with all of its roles and their signups in
// one transaction.
func (r *shiftRepository) DeleteCascade(ctx context.Context, shiftID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var roleIDs []uint
		if err := tx.Model(&models.ShiftRole{}).
			Where("shift_id = ?", shiftID).
			Pluck("id", &roleIDs).Error; err != nil {
			return err
		}
		if len(roleIDs) > 0 {
			if err := tx.Where("shift_role_id IN ?", roleIDs).Delete(&models.Signup{}).Error; err != nil {
				return err
			}
			if err := tx.Where("shift_id = ?", shiftID).Delete(&models.ShiftRole{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Shift{}, shiftID).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *shiftRepository) GetRole(ctx context.Context, id uint) (*models.ShiftRole, error) {
	var role models.ShiftRole
	if err := r.db.WithContext(ctx).First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Shift role", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &role, nil
}

func (r *shiftRepository) ListRoles(ctx context.Context, shiftID uint) ([]models.ShiftRole, error) {
	var roles []models.ShiftRole
	if err := r.db.WithContext(ctx).
		Where("shift_id = ?", shiftID).
		Order("id ASC").
		Find(&roles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return roles, nil
}

func (r *shiftRepository) CreateRole(ctx context.Context, role *models.ShiftRole) error {
	if err := r.db.WithContext(ctx).Create(role).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteRoleCascade removes a shift role and its signups in one transaction.
func (r *shiftRepository) DeleteRoleCascade(ctx context.Context, roleID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shift_role_id = ?", roleID).Delete(&models.Signup{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ShiftRole{}, roleID).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
