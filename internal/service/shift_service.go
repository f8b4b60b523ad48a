package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"pantryshift/internal/models"
	"pantryshift/internal/repository"

	"gorm.io/gorm"
)

// ShiftService handles the shift and shift-role lifecycle for pantry
// management views.
type ShiftService struct {
	db       *gorm.DB
	shifts   repository.ShiftRepository
	pantries repository.PantryRepository
	policy   *Policy
	mu       *sync.Mutex
}

// NewShiftService returns a new ShiftService.
func NewShiftService(db *gorm.DB, shifts repository.ShiftRepository, pantries repository.PantryRepository, policy *Policy, mu *sync.Mutex) *ShiftService {
	return &ShiftService{db: db, shifts: shifts, pantries: pantries, policy: policy, mu: mu}
}

// ListForPantry returns all shifts of a pantry, cancelled ones included, with
// their roles. Lead-of-pantry or admin.
func (s *ShiftService) ListForPantry(ctx context.Context, actorID, pantryID uint) ([]models.Shift, error) {
	if _, err := s.pantries.GetByID(ctx, pantryID); err != nil {
		return nil, err
	}
	if err := s.requirePantryAccess(ctx, actorID, pantryID); err != nil {
		return nil, err
	}
	return s.shifts.ListByPantry(ctx, pantryID)
}

// Get returns one shift with its roles. Lead-of-pantry or admin.
func (s *ShiftService) Get(ctx context.Context, actorID, shiftID uint) (*models.Shift, error) {
	shift, err := s.shifts.GetByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePantryAccess(ctx, actorID, shift.PantryID); err != nil {
		return nil, err
	}
	return shift, nil
}

// CreateShiftInput is the payload for creating a shift.
type CreateShiftInput struct {
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Create creates an OPEN shift under a pantry. Lead-of-pantry or admin.
func (s *ShiftService) Create(ctx context.Context, actorID, pantryID uint, input CreateShiftInput) (*models.Shift, error) {
	if _, err := s.pantries.GetByID(ctx, pantryID); err != nil {
		return nil, err
	}
	if err := s.requirePantryAccess(ctx, actorID, pantryID); err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	var missing []string
	if input.Name == "" {
		missing = append(missing, "name")
	}
	if input.StartTime.IsZero() {
		missing = append(missing, "start_time")
	}
	if input.EndTime.IsZero() {
		missing = append(missing, "end_time")
	}
	if len(missing) > 0 {
		return nil, models.NewValidationError("Missing fields: " + strings.Join(missing, ", "))
	}
	if !input.EndTime.After(input.StartTime) {
		return nil, models.NewValidationError("end_time must be after start_time")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shift := &models.Shift{
		PantryID:        pantryID,
		Name:            input.Name,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		Status:          models.ShiftStatusOpen,
		CreatedByUserID: actorID,
	}
	if err := s.shifts.Create(ctx, shift); err != nil {
		return nil, err
	}
	return shift, nil
}

// UpdateShiftInput carries the optional fields of a shift patch.
type UpdateShiftInput struct {
	Name      *string             `json:"name"`
	StartTime *time.Time          `json:"start_time"`
	EndTime   *time.Time          `json:"end_time"`
	Status    *models.ShiftStatus `json:"status"`
}

// Update applies a partial update to a shift. Lead-of-pantry or admin.
func (s *ShiftService) Update(ctx context.Context, actorID, shiftID uint, input UpdateShiftInput) (*models.Shift, error) {
	shift, err := s.shifts.GetByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePantryAccess(ctx, actorID, shift.PantryID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, models.NewValidationError("name must not be empty")
		}
		shift.Name = name
	}
	if input.StartTime != nil {
		shift.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		shift.EndTime = *input.EndTime
	}
	if !shift.EndTime.After(shift.StartTime) {
		return nil, models.NewValidationError("end_time must be after start_time")
	}
	if input.Status != nil {
		if !models.ValidShiftStatus(*input.Status) {
			return nil, models.NewValidationError("status must be one of OPEN, CANCELLED")
		}
		shift.Status = *input.Status
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.shifts.Save(ctx, shift); err != nil {
		return nil, err
	}
	return s.shifts.GetByID(ctx, shiftID)
}

// Delete removes a shift together with its roles and all of their signups.
// Lead-of-pantry or admin.
func (s *ShiftService) Delete(ctx context.Context, actorID, shiftID uint) error {
	shift, err := s.shifts.GetByID(ctx, shiftID)
	if err != nil {
		return err
	}
	if err := s.requirePantryAccess(ctx, actorID, shift.PantryID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.shifts.DeleteCascade(ctx, shiftID)
}

// ListRoles returns the roles of a shift. Lead-of-pantry or admin.
func (s *ShiftService) ListRoles(ctx context.Context, actorID, shiftID uint) ([]models.ShiftRole, error) {
	shift, err := s.shifts.GetByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePantryAccess(ctx, actorID, shift.PantryID); err != nil {
		return nil, err
	}
	return s.shifts.ListRoles(ctx, shiftID)
}

// CreateShiftRoleInput is the payload for adding a role to a shift.
type CreateShiftRoleInput struct {
	Title         string `json:"title"`
	RequiredCount int    `json:"required_count"`
}

// CreateRole adds a role with capacity to a shift. Lead-of-pantry or admin.
func (s *ShiftService) CreateRole(ctx context.Context, actorID, shiftID uint, input CreateShiftRoleInput) (*models.ShiftRole, error) {
	shift, err := s.shifts.GetByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePantryAccess(ctx, actorID, shift.PantryID); err != nil {
		return nil, err
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, models.NewValidationError("Missing fields: title")
	}
	if input.RequiredCount < 1 {
		return nil, models.NewValidationError("required_count must be an integer greater than or equal to 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	role := &models.ShiftRole{
		ShiftID:       shiftID,
		Title:         input.Title,
		RequiredCount: input.RequiredCount,
		FilledCount:   0,
		Status:        models.ShiftRoleStatusOpen,
	}
	if err := s.shifts.CreateRole(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// UpdateShiftRoleInput carries the optional fields of a shift-role patch.
type UpdateShiftRoleInput struct {
	Title         *string                 `json:"title"`
	RequiredCount *int                    `json:"required_count"`
	Status        *models.ShiftRoleStatus `json:"status"`
}

// UpdateRole applies a partial update to a shift role. Lead-of-pantry or
// admin; the status field is an administrator override and is reconciled
// against capacity on the next signup event in any case.
func (s *ShiftService) UpdateRole(ctx context.Context, actorID, roleID uint, input UpdateShiftRoleInput) (*models.ShiftRole, error) {
	role, err := s.shifts.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	shift, err := s.shifts.GetByID(ctx, role.ShiftID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePantryAccess(ctx, actorID, shift.PantryID); err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, models.NewValidationError("title must not be empty")
		}
		role.Title = title
	}
	if input.RequiredCount != nil {
		if *input.RequiredCount < 1 {
			return nil, models.NewValidationError("required_count must be an integer greater than or equal to 1")
		}
		role.RequiredCount = *input.RequiredCount
	}
	if input.Status != nil {
		if !models.ValidShiftRoleStatus(*input.Status) {
			return nil, models.NewValidationError("status must be one of OPEN, FULL")
		}
		admin, err := s.policy.IsAdmin(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, models.NewForbiddenError("Only administrators may override shift role status")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated *models.ShiftRole
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(role).Error; err != nil {
			return err
		}
		if input.Status != nil {
			// Explicit override wins until the next signup event.
			if err := tx.Model(&models.ShiftRole{}).
				Where("id = ?", roleID).
				Update("status", *input.Status).Error; err != nil {
				return err
			}
			var fresh models.ShiftRole
			if err := tx.First(&fresh, roleID).Error; err != nil {
				return err
			}
			updated = &fresh
			return nil
		}
		var err error
		updated, err = reconcileShiftRole(tx, roleID)
		return err
	})
	if txErr != nil {
		return nil, models.NewInternalError(txErr)
	}
	return updated, nil
}

// DeleteRole removes a shift role and all of its signups. Lead-of-pantry or
// admin.
func (s *ShiftService) DeleteRole(ctx context.Context, actorID, roleID uint) error {
	role, err := s.shifts.GetRole(ctx, roleID)
	if err != nil {
		return err
	}
	shift, err := s.shifts.GetByID(ctx, role.ShiftID)
	if err != nil {
		return err
	}
	if err := s.requirePantryAccess(ctx, actorID, shift.PantryID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.shifts.DeleteRoleCascade(ctx, roleID)
}

func (s *ShiftService) requirePantryAccess(ctx context.Context, actorID, pantryID uint) error {
	ok, err := s.policy.CanActOnPantry(ctx, actorID, pantryID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewForbiddenError("You do not manage this pantry")
	}
	return nil
}
