package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"pantryshift/internal/models"
	"pantryshift/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv bundles the services under test over one in-memory database.
type testEnv struct {
	db      *gorm.DB
	policy  *Policy
	users   *UserService
	pantry  *PantryService
	shifts  *ShiftService
	signups *SignupService
	public  *PublicService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "open sqlite")

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.UserRole{},
		&models.Pantry{},
		&models.PantryLead{},
		&models.Shift{},
		&models.ShiftRole{},
		&models.Signup{},
	), "migrate sqlite")

	roles := []models.Role{
		{Name: models.RoleAdmin},
		{Name: models.RolePantryLead},
		{Name: models.RoleVolunteer},
	}
	require.NoError(t, db.Create(&roles).Error, "seed roles")

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	pantryRepo := repository.NewPantryRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	signupRepo := repository.NewSignupRepository(db)

	var mu sync.Mutex
	policy := NewPolicy(userRepo, pantryRepo)
	return &testEnv{
		db:      db,
		policy:  policy,
		users:   NewUserService(userRepo, roleRepo, policy, &mu),
		pantry:  NewPantryService(pantryRepo, userRepo, policy, &mu),
		shifts:  NewShiftService(db, shiftRepo, pantryRepo, policy, &mu),
		signups: NewSignupService(db, signupRepo, shiftRepo, userRepo, policy, &mu),
		public:  NewPublicService(pantryRepo, shiftRepo),
	}
}

func (e *testEnv) createUser(t *testing.T, name string, roleNames ...models.RoleName) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: fmt.Sprintf("%s@example.org", name), Active: true}
	require.NoError(t, e.db.Create(user).Error, "create user %s", name)
	for _, rn := range roleNames {
		var role models.Role
		require.NoError(t, e.db.Where("name = ?", rn).First(&role).Error)
		require.NoError(t, e.db.Create(&models.UserRole{UserID: user.ID, RoleID: role.ID}).Error)
	}
	return user
}

func (e *testEnv) createPantry(t *testing.T, name, slug string) *models.Pantry {
	t.Helper()
	pantry := &models.Pantry{Name: name, Slug: slug}
	require.NoError(t, e.db.Create(pantry).Error, "create pantry %s", slug)
	return pantry
}

func (e *testEnv) assignLead(t *testing.T, pantryID, userID uint) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.PantryLead{PantryID: pantryID, UserID: userID}).Error)
}

func (e *testEnv) createShift(t *testing.T, pantryID, createdBy uint) *models.Shift {
	t.Helper()
	start := time.Date(2026, 9, 12, 9, 0, 0, 0, time.UTC)
	shift := &models.Shift{
		PantryID:        pantryID,
		Name:            "Morning Distribution",
		StartTime:       start,
		EndTime:         start.Add(3 * time.Hour),
		Status:          models.ShiftStatusOpen,
		CreatedByUserID: createdBy,
	}
	require.NoError(t, e.db.Create(shift).Error, "create shift")
	return shift
}

func (e *testEnv) createShiftRole(t *testing.T, shiftID uint, required int) *models.ShiftRole {
	t.Helper()
	role := &models.ShiftRole{
		ShiftID:       shiftID,
		Title:         "Stocker",
		RequiredCount: required,
		Status:        models.ShiftRoleStatusOpen,
	}
	require.NoError(t, e.db.Create(role).Error, "create shift role")
	return role
}

func (e *testEnv) reloadRole(t *testing.T, id uint) *models.ShiftRole {
	t.Helper()
	var role models.ShiftRole
	require.NoError(t, e.db.First(&role, id).Error, "reload role")
	return &role
}

func requireAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code)
}
