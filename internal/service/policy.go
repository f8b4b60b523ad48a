// Package service implements the business logic layer of the application.
package service

import (
	"context"

	"pantryshift/internal/models"
	"pantryshift/internal/repository"
)

// Policy answers authorization questions from the current role and lead
// assignment tables. Every answer is derived fresh per call; nothing is
// cached across requests, so a revoked assignment takes effect on the very
// next request.
type Policy struct {
	users    repository.UserRepository
	pantries repository.PantryRepository
}

// NewPolicy returns a new Policy over the given repositories.
func NewPolicy(users repository.UserRepository, pantries repository.PantryRepository) *Policy {
	return &Policy{users: users, pantries: pantries}
}

// EffectiveRoles returns the set of role names held by the user. An unknown
// user has no roles and therefore no access anywhere.
func (p *Policy) EffectiveRoles(ctx context.Context, userID uint) (map[models.RoleName]bool, error) {
	names, err := p.users.RoleNames(ctx, userID)
	if err != nil {
		return nil, err
	}
	roles := make(map[models.RoleName]bool, len(names))
	for _, n := range names {
		roles[n] = true
	}
	return roles, nil
}

// IsAdmin reports whether the user holds the ADMIN role.
func (p *Policy) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	roles, err := p.EffectiveRoles(ctx, userID)
	if err != nil {
		return false, err
	}
	return roles[models.RoleAdmin], nil
}

// IsVolunteer reports whether the user holds the VOLUNTEER role.
func (p *Policy) IsVolunteer(ctx context.Context, userID uint) (bool, error) {
	roles, err := p.EffectiveRoles(ctx, userID)
	if err != nil {
		return false, err
	}
	return roles[models.RoleVolunteer], nil
}

// VisiblePantries returns the pantries the user may see in management views:
// all of them for admins, assigned ones for leads, none for anyone else.
func (p *Policy) VisiblePantries(ctx context.Context, userID uint) ([]models.Pantry, error) {
	admin, err := p.IsAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	if admin {
		return p.pantries.List(ctx)
	}
	return p.pantries.ListByLead(ctx, userID)
}

// CanActOnPantry reports whether the user may view or manage the pantry:
// admins always, leads only when a live assignment tuple exists. Holding the
// PANTRY_LEAD role grants nothing by itself.
func (p *Policy) CanActOnPantry(ctx context.Context, userID, pantryID uint) (bool, error) {
	admin, err := p.IsAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	if admin {
		return true, nil
	}
	return p.pantries.LeadExists(ctx, pantryID, userID)
}
