package seed

import (
	"fmt"
	"time"

	"pantryshift/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by demo seeding and tests.
type Factory struct {
	db *gorm.DB
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db}
}

// CreateUser constructs and persists a sample user holding the given roles.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(roleNames []models.RoleName, overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Name:   gofakeit.Name(),
		Email:  fmt.Sprintf("%s.%d@example.org", gofakeit.Username(), gofakeit.Number(100, 999)),
		Active: true,
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	for _, name := range roleNames {
		var role models.Role
		if err := f.db.Where("name = ?", name).First(&role).Error; err != nil {
			return nil, fmt.Errorf("role %s not seeded: %w", name, err)
		}
		if err := f.db.Create(&models.UserRole{UserID: user.ID, RoleID: role.ID}).Error; err != nil {
			return nil, err
		}
	}
	return user, nil
}

// CreatePantry constructs and persists a sample pantry.
func (f *Factory) CreatePantry(overrides ...func(*models.Pantry)) (*models.Pantry, error) {
	name := fmt.Sprintf("%s %s Pantry", gofakeit.City(), gofakeit.StreetName())
	pantry := &models.Pantry{
		Name:    name,
		Slug:    fmt.Sprintf("pantry-%d", gofakeit.Number(10000, 99999)),
		Address: gofakeit.Address().Address,
	}
	for _, override := range overrides {
		override(pantry)
	}
	if err := f.db.Create(pantry).Error; err != nil {
		return nil, err
	}
	return pantry, nil
}

// CreateShift constructs and persists an upcoming shift for a pantry.
func (f *Factory) CreateShift(pantryID, createdBy uint, overrides ...func(*models.Shift)) (*models.Shift, error) {
	start := time.Now().Add(time.Duration(gofakeit.Number(1, 14)) * 24 * time.Hour).Truncate(time.Hour)
	shift := &models.Shift{
		PantryID:        pantryID,
		Name:            fmt.Sprintf("%s Distribution", gofakeit.RandomString([]string{"Morning", "Midday", "Evening", "Weekend"})),
		StartTime:       start,
		EndTime:         start.Add(3 * time.Hour),
		Status:          models.ShiftStatusOpen,
		CreatedByUserID: createdBy,
	}
	for _, override := range overrides {
		override(shift)
	}
	if err := f.db.Create(shift).Error; err != nil {
		return nil, err
	}
	return shift, nil
}

// CreateShiftRole constructs and persists a role under a shift.
func (f *Factory) CreateShiftRole(shiftID uint, overrides ...func(*models.ShiftRole)) (*models.ShiftRole, error) {
	role := &models.ShiftRole{
		ShiftID:       shiftID,
		Title:         gofakeit.RandomString([]string{"Greeter", "Stocker", "Driver", "Packer", "Registration"}),
		RequiredCount: gofakeit.Number(1, 5),
		Status:        models.ShiftRoleStatusOpen,
	}
	for _, override := range overrides {
		override(role)
	}
	if err := f.db.Create(role).Error; err != nil {
		return nil, err
	}
	return role, nil
}
