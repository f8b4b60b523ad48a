package service

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"pantryshift/internal/models"
	"pantryshift/internal/repository"
)

// PantryService handles pantry CRUD and lead assignment.
type PantryService struct {
	pantries repository.PantryRepository
	users    repository.UserRepository
	policy   *Policy
	mu       *sync.Mutex
}

// NewPantryService returns a new PantryService.
func NewPantryService(pantries repository.PantryRepository, users repository.UserRepository, policy *Policy, mu *sync.Mutex) *PantryService {
	return &PantryService{pantries: pantries, users: users, policy: policy, mu: mu}
}

// List returns the pantries visible to the actor: all for admins, assigned
// ones for leads, an empty list for everyone else.
func (s *PantryService) List(ctx context.Context, actorID uint) ([]models.Pantry, error) {
	return s.policy.VisiblePantries(ctx, actorID)
}

// Get returns one pantry. Existence is checked before access so an unknown id
// is a 404 for everyone, not a 403.
func (s *PantryService) Get(ctx context.Context, actorID, pantryID uint) (*models.Pantry, error) {
	pantry, err := s.pantries.GetByID(ctx, pantryID)
	if err != nil {
		return nil, err
	}
	ok, err := s.policy.CanActOnPantry(ctx, actorID, pantryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewForbiddenError("You do not manage this pantry")
	}
	return pantry, nil
}

// GetBySlug returns a pantry by its public slug.
func (s *PantryService) GetBySlug(ctx context.Context, slug string) (*models.Pantry, error) {
	pantry, err := s.pantries.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if pantry == nil {
		return nil, models.NewNotFoundError("Pantry", slug)
	}
	return pantry, nil
}

// CreatePantryInput is the payload for creating a pantry.
type CreatePantryInput struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Address string `json:"address"`
}

// Create creates a pantry. Admin only. A blank slug is derived from the name.
func (s *PantryService) Create(ctx context.Context, actorID uint, input CreatePantryInput) (*models.Pantry, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Slug = strings.TrimSpace(input.Slug)
	if input.Name == "" {
		return nil, models.NewValidationError("Missing fields: name")
	}
	if input.Slug == "" {
		input.Slug = Slugify(input.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pantry := &models.Pantry{Name: input.Name, Slug: input.Slug, Address: input.Address}
	if err := s.pantries.Create(ctx, pantry); err != nil {
		return nil, err
	}
	return pantry, nil
}

// AddLead assigns a user as a lead of a pantry. Admin only. The user must
// already hold the PANTRY_LEAD role; the assignment tuple is what grants
// access to this particular pantry.
func (s *PantryService) AddLead(ctx context.Context, actorID, pantryID, userID uint) (*models.PantryLead, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if _, err := s.pantries.GetByID(ctx, pantryID); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	isLead, err := s.users.HasRole(ctx, userID, models.RolePantryLead)
	if err != nil {
		return nil, err
	}
	if !isLead {
		return nil, models.NewValidationError("User does not hold the PANTRY_LEAD role")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lead := &models.PantryLead{PantryID: pantryID, UserID: userID}
	if err := s.pantries.AddLead(ctx, lead); err != nil {
		return nil, err
	}
	lead.User = user
	return lead, nil
}

// RemoveLead unassigns a lead from a pantry. Admin only; removing an absent
// assignment succeeds.
func (s *PantryService) RemoveLead(ctx context.Context, actorID, pantryID, userID uint) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	if _, err := s.pantries.GetByID(ctx, pantryID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pantries.RemoveLead(ctx, pantryID, userID)
}

// ListLeads returns a pantry's leads in assignment order.
func (s *PantryService) ListLeads(ctx context.Context, actorID, pantryID uint) ([]models.User, error) {
	if _, err := s.pantries.GetByID(ctx, pantryID); err != nil {
		return nil, err
	}
	ok, err := s.policy.CanActOnPantry(ctx, actorID, pantryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewForbiddenError("You do not manage this pantry")
	}
	return s.pantries.ListLeads(ctx, pantryID)
}

func (s *PantryService) requireAdmin(ctx context.Context, actorID uint) error {
	admin, err := s.policy.IsAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewForbiddenError("Administrator access required")
	}
	return nil
}

// Slugify lowercases a name and collapses runs of non-alphanumerics to
// single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
