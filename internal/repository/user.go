// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"pantryshift/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users and their roles.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context, roleFilter models.RoleName) ([]models.User, error)
	RoleNames(ctx context.Context, userID uint) ([]models.RoleName, error)
	HasRole(ctx context.Context, userID uint, name models.RoleName) (bool, error)
	GrantRole(ctx context.Context, userID, roleID uint) error
	RevokeRole(ctx context.Context, userID, roleID uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Roles").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A user with this email already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// sqlite reports "UNIQUE constraint failed: <table>.<column>"
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}

func (r *userRepository) List(ctx context.Context, roleFilter models.RoleName) ([]models.User, error) {
	var users []models.User
	q := r.db.WithContext(ctx).Preload("Roles").Order("users.id ASC")
	if roleFilter != "" {
		q = q.
			Joins("JOIN user_roles ON user_roles.user_id = users.id").
			Joins("JOIN roles ON roles.id = user_roles.role_id").
			Where("roles.name = ?", roleFilter)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// RoleNames returns the effective role names for a user. An unknown user is
// not an error; it simply has no roles.
func (r *userRepository) RoleNames(ctx context.Context, userID uint) ([]models.RoleName, error) {
	var names []models.RoleName
	if err := r.db.WithContext(ctx).
		Model(&models.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.id ASC").
		Pluck("roles.name", &names).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return names, nil
}

func (r *userRepository) HasRole(ctx context.Context, userID uint, name models.RoleName) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ? AND roles.name = ?", userID, name).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *userRepository) GrantRole(ctx context.Context, userID, roleID uint) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Count(&count).Error; err != nil {
		return models.NewInternalError(err)
	}
	if count > 0 {
		return models.NewConflictError("User already holds this role")
	}
	if err := r.db.WithContext(ctx).Create(&models.UserRole{UserID: userID, RoleID: roleID}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// RevokeRole is idempotent; revoking an absent role succeeds.
func (r *userRepository) RevokeRole(ctx context.Context, userID, roleID uint) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&models.UserRole{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
