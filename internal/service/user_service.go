package service

import (
	"context"
	"strings"
	"sync"

	"pantryshift/internal/models"
	"pantryshift/internal/repository"
)

// UserService handles user directory and role membership operations.
type UserService struct {
	users  repository.UserRepository
	roles  repository.RoleRepository
	policy *Policy
	mu     *sync.Mutex
}

// NewUserService returns a new UserService. The mutex is shared by every
// service that mutates the dataset.
func NewUserService(users repository.UserRepository, roles repository.RoleRepository, policy *Policy, mu *sync.Mutex) *UserService {
	return &UserService{users: users, roles: roles, policy: policy, mu: mu}
}

// GetUser returns the user with roles preloaded.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// CreateUserInput is the payload for creating a user.
type CreateUserInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	RoleIDs []uint `json:"role_ids"`
}

// CreateUser creates a user with an optional initial set of roles. Admin only.
func (s *UserService) CreateUser(ctx context.Context, actorID uint, input CreateUserInput) (*models.User, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	var missing []string
	if input.Name == "" {
		missing = append(missing, "name")
	}
	if input.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return nil, models.NewValidationError("Missing fields: " + strings.Join(missing, ", "))
	}

	// Validate role IDs up front so a bad ID never leaves a half-created user.
	for _, roleID := range input.RoleIDs {
		if _, err := s.roles.GetByID(ctx, roleID); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email is already in use")
	}

	user := &models.User{Name: input.Name, Email: input.Email, Active: true}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	for _, roleID := range input.RoleIDs {
		if err := s.users.GrantRole(ctx, user.ID, roleID); err != nil {
			return nil, err
		}
	}
	return s.users.GetByID(ctx, user.ID)
}

// ListUsers returns all users, optionally filtered by role name. Admin only.
// A filter that matches no role yields an empty list, not an error.
func (s *UserService) ListUsers(ctx context.Context, actorID uint, roleFilter models.RoleName) ([]models.User, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return s.users.List(ctx, roleFilter)
}

// ListRoles returns the role catalog. Admin only.
func (s *UserService) ListRoles(ctx context.Context, actorID uint) ([]models.Role, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return s.roles.List(ctx)
}

// GrantRole assigns a role to a user. Admin only; duplicate grants conflict.
func (s *UserService) GrantRole(ctx context.Context, actorID, userID, roleID uint) (*models.User, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.users.GrantRole(ctx, userID, roleID); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// RevokeRole removes a role from a user. Admin only; removing a role the user
// does not hold succeeds.
func (s *UserService) RevokeRole(ctx context.Context, actorID, userID, roleID uint) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.users.RevokeRole(ctx, userID, roleID)
}

func (s *UserService) requireAdmin(ctx context.Context, actorID uint) error {
	admin, err := s.policy.IsAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewForbiddenError("Administrator access required")
	}
	return nil
}
