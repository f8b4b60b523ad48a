package service

import (
	"context"
	"testing"

	"pantryshift/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_AdminSeesEveryPantry(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.createUser(t, "admin", models.RoleAdmin)
	env.createPantry(t, "North", "north")
	env.createPantry(t, "South", "south")
	env.createPantry(t, "East", "east")

	visible, err := env.policy.VisiblePantries(ctx, admin.ID)
	require.NoError(t, err)
	assert.Len(t, visible, 3)

	ok, err := env.policy.CanActOnPantry(ctx, admin.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok, "admin can act on any pantry without an assignment")
}

func TestPolicy_LeadVisibilityFollowsAssignment(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	lead := env.createUser(t, "lead", models.RolePantryLead)
	mine := env.createPantry(t, "Mine", "mine")
	other := env.createPantry(t, "Other", "other")
	env.assignLead(t, mine.ID, lead.ID)

	visible, err := env.policy.VisiblePantries(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, mine.ID, visible[0].ID)

	ok, err := env.policy.CanActOnPantry(ctx, lead.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, ok, "holding PANTRY_LEAD grants nothing without the assignment tuple")
}

func TestPolicy_ReassignmentTakesEffectImmediately(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	lead := env.createUser(t, "lead", models.RolePantryLead)
	pantry := env.createPantry(t, "Rotating", "rotating")
	env.assignLead(t, pantry.ID, lead.ID)

	ok, err := env.policy.CanActOnPantry(ctx, lead.ID, pantry.ID)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, env.db.
		Where("pantry_id = ? AND user_id = ?", pantry.ID, lead.ID).
		Delete(&models.PantryLead{}).Error)

	ok, err = env.policy.CanActOnPantry(ctx, lead.ID, pantry.ID)
	require.NoError(t, err)
	assert.False(t, ok, "revoked assignment must be invisible on the very next check")
}

func TestPolicy_UnknownUserHasNoAccess(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	env.createPantry(t, "Somewhere", "somewhere")

	roles, err := env.policy.EffectiveRoles(ctx, 9999)
	require.NoError(t, err, "unknown user is not an error")
	assert.Empty(t, roles)

	visible, err := env.policy.VisiblePantries(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, visible)

	admin, err := env.policy.IsAdmin(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, admin)
}

func TestPolicy_MultipleLeadsAndMultiplePantries(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	leadA := env.createUser(t, "leada", models.RolePantryLead)
	leadB := env.createUser(t, "leadb", models.RolePantryLead)
	p1 := env.createPantry(t, "One", "one")
	p2 := env.createPantry(t, "Two", "two")
	env.assignLead(t, p1.ID, leadA.ID)
	env.assignLead(t, p2.ID, leadA.ID)
	env.assignLead(t, p1.ID, leadB.ID)

	visible, err := env.policy.VisiblePantries(ctx, leadA.ID)
	require.NoError(t, err)
	assert.Len(t, visible, 2, "a lead may manage several pantries")

	visible, err = env.policy.VisiblePantries(ctx, leadB.ID)
	require.NoError(t, err)
	assert.Len(t, visible, 1, "a pantry may have several leads")
}
