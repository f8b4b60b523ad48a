package service

import (
	"pantryshift/internal/models"

	"gorm.io/gorm"
)

// reconcileShiftRole recomputes a role's filled count and status from its
// live signup rows inside the caller's transaction. The count is the single
// source of truth: filled_count is never incremented in place, so it cannot
// drift, and it cannot go below zero.
func reconcileShiftRole(tx *gorm.DB, roleID uint) (*models.ShiftRole, error) {
	var role models.ShiftRole
	if err := tx.First(&role, roleID).Error; err != nil {
		return nil, err
	}

	var count int64
	if err := tx.Model(&models.Signup{}).
		Where("shift_role_id = ?", roleID).
		Count(&count).Error; err != nil {
		return nil, err
	}

	role.FilledCount = int(count)
	if role.FilledCount >= role.RequiredCount {
		role.Status = models.ShiftRoleStatusFull
	} else {
		role.Status = models.ShiftRoleStatusOpen
	}

	if err := tx.Save(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}
