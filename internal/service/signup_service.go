package service

import (
	"context"
	"errors"
	"sync"

	"pantryshift/internal/models"
	"pantryshift/internal/repository"

	"gorm.io/gorm"
)

// SignupService handles volunteer signups against shift-role capacity. All
// capacity transitions run inside a transaction under the shared mutex, so a
// role can never be filled past its required count and the filled count is
// always the live signup count.
type SignupService struct {
	db      *gorm.DB
	signups repository.SignupRepository
	shifts  repository.ShiftRepository
	users   repository.UserRepository
	policy  *Policy
	mu      *sync.Mutex
}

// NewSignupService returns a new SignupService.
func NewSignupService(db *gorm.DB, signups repository.SignupRepository, shifts repository.ShiftRepository, users repository.UserRepository, policy *Policy, mu *sync.Mutex) *SignupService {
	return &SignupService{db: db, signups: signups, shifts: shifts, users: users, policy: policy, mu: mu}
}

// CreateSignupInput is the payload for claiming a shift-role slot. UserID is
// optional; when zero the acting user signs up for themselves.
type CreateSignupInput struct {
	UserID uint                `json:"user_id"`
	Status models.SignupStatus `json:"status"`
}

// Create claims one capacity slot on a shift role for the target user.
func (s *SignupService) Create(ctx context.Context, actorID, roleID uint, input CreateSignupInput) (*models.Signup, *models.ShiftRole, error) {
	if _, err := s.shifts.GetRole(ctx, roleID); err != nil {
		return nil, nil, err
	}

	targetID := input.UserID
	if targetID == 0 {
		targetID = actorID
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	volunteer, err := s.policy.IsVolunteer(ctx, target.ID)
	if err != nil {
		return nil, nil, err
	}
	if !volunteer {
		return nil, nil, models.NewForbiddenError("User does not hold the VOLUNTEER role")
	}

	status := input.Status
	if status == "" {
		status = models.SignupStatusConfirmed
	}
	if !models.ValidSignupStatus(status) {
		return nil, nil, models.NewValidationError("status must be one of CONFIRMED, NO_SHOW")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		signup *models.Signup
		role   *models.ShiftRole
	)
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dup int64
		if err := tx.Model(&models.Signup{}).
			Where("shift_role_id = ? AND user_id = ?", roleID, targetID).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return models.NewConflictError("User is already signed up for this shift role")
		}

		var current models.ShiftRole
		if err := tx.First(&current, roleID).Error; err != nil {
			return err
		}
		var live int64
		if err := tx.Model(&models.Signup{}).
			Where("shift_role_id = ?", roleID).
			Count(&live).Error; err != nil {
			return err
		}
		if live >= int64(current.RequiredCount) {
			return models.NewCapacityError(roleID)
		}

		signup = &models.Signup{ShiftRoleID: roleID, UserID: targetID, Status: status}
		if err := tx.Create(signup).Error; err != nil {
			return err
		}

		role, err = reconcileShiftRole(tx, roleID)
		return err
	})
	if txErr != nil {
		var appErr *models.AppError
		if errors.As(txErr, &appErr) {
			return nil, nil, appErr
		}
		return nil, nil, models.NewInternalError(txErr)
	}

	signup.User = target
	return signup, role, nil
}

// Cancel deletes a signup and frees its capacity slot. Owner or admin.
func (s *SignupService) Cancel(ctx context.Context, actorID, signupID uint) (*models.ShiftRole, error) {
	signup, err := s.signups.GetByID(ctx, signupID)
	if err != nil {
		return nil, err
	}
	if signup.UserID != actorID {
		admin, err := s.policy.IsAdmin(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, models.NewForbiddenError("You may only cancel your own signups")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var role *models.ShiftRole
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Signup{}, signupID).Error; err != nil {
			return err
		}
		var err error
		role, err = reconcileShiftRole(tx, signup.ShiftRoleID)
		return err
	})
	if txErr != nil {
		return nil, models.NewInternalError(txErr)
	}
	return role, nil
}

// UpdateStatus marks a signup, typically CONFIRMED to NO_SHOW. Admin only.
// A NO_SHOW signup keeps its capacity slot; only cancellation frees it, so
// the role's filled count is deliberately left alone here.
func (s *SignupService) UpdateStatus(ctx context.Context, actorID, signupID uint, status models.SignupStatus) (*models.Signup, error) {
	admin, err := s.policy.IsAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, models.NewForbiddenError("Administrator access required")
	}
	if !models.ValidSignupStatus(status) {
		return nil, models.NewValidationError("status must be one of CONFIRMED, NO_SHOW")
	}
	signup, err := s.signups.GetByID(ctx, signupID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.WithContext(ctx).Model(&models.Signup{}).
		Where("id = ?", signupID).
		Update("status", status).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	signup.Status = status
	return signup, nil
}

// ListByRole returns a role's signups with volunteer profiles, in signup
// order. Open to any actor; volunteers rely on it to see whether they already
// hold a slot.
func (s *SignupService) ListByRole(ctx context.Context, roleID uint) ([]models.Signup, error) {
	if _, err := s.shifts.GetRole(ctx, roleID); err != nil {
		return nil, err
	}
	return s.signups.ListByRole(ctx, roleID)
}

// ListForUser returns a user's signups. Owner or admin.
func (s *SignupService) ListForUser(ctx context.Context, actorID, userID uint) ([]models.Signup, error) {
	if actorID != userID {
		admin, err := s.policy.IsAdmin(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, models.NewForbiddenError("You may only view your own signups")
		}
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.signups.ListByUser(ctx, userID)
}
