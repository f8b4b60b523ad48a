package service

import (
	"context"
	"testing"

	"pantryshift/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPantryService_GetChecksExistenceBeforeAccess(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	vol := env.createUser(t, "vol", models.RoleVolunteer)
	pantry := env.createPantry(t, "North", "north")

	_, err := env.pantry.Get(ctx, vol.ID, 9999)
	requireAppError(t, err, "NOT_FOUND")

	_, err = env.pantry.Get(ctx, vol.ID, pantry.ID)
	requireAppError(t, err, "FORBIDDEN")
}

func TestPantryService_CreateRequiresAdmin(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.createUser(t, "admin", models.RoleAdmin)
	lead := env.createUser(t, "lead", models.RolePantryLead)

	_, err := env.pantry.Create(ctx, lead.ID, CreatePantryInput{Name: "Nope"})
	requireAppError(t, err, "FORBIDDEN")

	_, err = env.pantry.Create(ctx, admin.ID, CreatePantryInput{})
	requireAppError(t, err, "VALIDATION_ERROR")

	created, err := env.pantry.Create(ctx, admin.ID, CreatePantryInput{Name: "Licking County Pantry"})
	require.NoError(t, err)
	assert.Equal(t, "licking-county-pantry", created.Slug, "slug derives from the name when omitted")

	_, err = env.pantry.Create(ctx, admin.ID, CreatePantryInput{Name: "Other", Slug: "licking-county-pantry"})
	requireAppError(t, err, "CONFLICT")
}

func TestPantryService_AddLeadRules(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.createUser(t, "admin", models.RoleAdmin)
	lead := env.createUser(t, "lead", models.RolePantryLead)
	vol := env.createUser(t, "vol", models.RoleVolunteer)
	pantry := env.createPantry(t, "North", "north")

	// Only admins assign leads.
	_, err := env.pantry.AddLead(ctx, lead.ID, pantry.ID, lead.ID)
	requireAppError(t, err, "FORBIDDEN")

	// The user must exist and must hold PANTRY_LEAD.
	_, err = env.pantry.AddLead(ctx, admin.ID, pantry.ID, 9999)
	requireAppError(t, err, "NOT_FOUND")
	_, err = env.pantry.AddLead(ctx, admin.ID, pantry.ID, vol.ID)
	requireAppError(t, err, "VALIDATION_ERROR")

	assigned, err := env.pantry.AddLead(ctx, admin.ID, pantry.ID, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, lead.ID, assigned.UserID)
	require.NotNil(t, assigned.User)

	// Duplicate tuples conflict; removal is idempotent.
	_, err = env.pantry.AddLead(ctx, admin.ID, pantry.ID, lead.ID)
	requireAppError(t, err, "CONFLICT")

	require.NoError(t, env.pantry.RemoveLead(ctx, admin.ID, pantry.ID, lead.ID))
	require.NoError(t, env.pantry.RemoveLead(ctx, admin.ID, pantry.ID, lead.ID))
}

func TestPantryService_ListLeadsOrderAndAccess(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.createUser(t, "admin", models.RoleAdmin)
	first := env.createUser(t, "first", models.RolePantryLead)
	second := env.createUser(t, "second", models.RolePantryLead)
	outsider := env.createUser(t, "outsider", models.RolePantryLead)
	pantry := env.createPantry(t, "North", "north")

	_, err := env.pantry.AddLead(ctx, admin.ID, pantry.ID, first.ID)
	require.NoError(t, err)
	_, err = env.pantry.AddLead(ctx, admin.ID, pantry.ID, second.ID)
	require.NoError(t, err)

	leads, err := env.pantry.ListLeads(ctx, first.ID, pantry.ID)
	require.NoError(t, err, "an assigned lead may view the pantry's leads")
	require.Len(t, leads, 2)
	assert.Equal(t, first.ID, leads[0].ID, "leads list in assignment order")
	assert.Equal(t, second.ID, leads[1].ID)

	_, err = env.pantry.ListLeads(ctx, outsider.ID, pantry.ID)
	requireAppError(t, err, "FORBIDDEN")
}
