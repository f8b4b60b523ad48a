// Package seed loads fixture data into the database and provides helpers to
// create demo data for development and testing.
package seed

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"pantryshift/internal/models"

	"gorm.io/gorm"
)

// Fixture is the on-disk dataset format: one JSON document with a top-level
// array per table. IDs are explicit so references between arrays stay stable;
// new rows created at runtime continue from the highest loaded id.
type Fixture struct {
	Users       []models.User       `json:"users"`
	Roles       []models.Role       `json:"roles"`
	UserRoles   []models.UserRole   `json:"user_roles"`
	Pantries    []models.Pantry     `json:"pantries"`
	PantryLeads []models.PantryLead `json:"pantry_leads"`
	Shifts      []models.Shift      `json:"shifts"`
	ShiftRoles  []models.ShiftRole  `json:"shift_roles"`
	Signups     []models.Signup     `json:"shift_signups"`
}

// LoadFile reads a fixture document and applies it to the database.
func LoadFile(db *gorm.DB, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixture: %w", err)
	}
	var fixture Fixture
	if err := json.Unmarshal(raw, &fixture); err != nil {
		return fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return Apply(db, &fixture)
}

// Apply inserts a fixture in dependency order inside one transaction, then
// reconciles every shift role's filled count against its signup rows so the
// dataset starts consistent even if the fixture's counters are stale.
func Apply(db *gorm.DB, fixture *Fixture) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if len(fixture.Roles) > 0 {
			if err := tx.Create(&fixture.Roles).Error; err != nil {
				return fmt.Errorf("roles: %w", err)
			}
		}
		if len(fixture.Users) > 0 {
			if err := tx.Create(&fixture.Users).Error; err != nil {
				return fmt.Errorf("users: %w", err)
			}
		}
		if len(fixture.UserRoles) > 0 {
			if err := tx.Create(&fixture.UserRoles).Error; err != nil {
				return fmt.Errorf("user_roles: %w", err)
			}
		}
		if len(fixture.Pantries) > 0 {
			if err := tx.Create(&fixture.Pantries).Error; err != nil {
				return fmt.Errorf("pantries: %w", err)
			}
		}
		if len(fixture.PantryLeads) > 0 {
			if err := tx.Create(&fixture.PantryLeads).Error; err != nil {
				return fmt.Errorf("pantry_leads: %w", err)
			}
		}
		if len(fixture.Shifts) > 0 {
			if err := tx.Create(&fixture.Shifts).Error; err != nil {
				return fmt.Errorf("shifts: %w", err)
			}
		}
		if len(fixture.ShiftRoles) > 0 {
			if err := tx.Create(&fixture.ShiftRoles).Error; err != nil {
				return fmt.Errorf("shift_roles: %w", err)
			}
		}
		if len(fixture.Signups) > 0 {
			if err := tx.Create(&fixture.Signups).Error; err != nil {
				return fmt.Errorf("shift_signups: %w", err)
			}
		}

		return reconcileAllRoles(tx)
	})
	if err != nil {
		return err
	}

	log.Printf("fixture applied: %d users, %d pantries, %d shifts, %d signups",
		len(fixture.Users), len(fixture.Pantries), len(fixture.Shifts), len(fixture.Signups))
	return nil
}

// EnsureRoles inserts the three well-known roles if the role table is empty.
// Tests and fresh databases call this instead of loading a full fixture.
func EnsureRoles(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Role{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	roles := []models.Role{
		{Name: models.RoleAdmin},
		{Name: models.RolePantryLead},
		{Name: models.RoleVolunteer},
	}
	return db.Create(&roles).Error
}

// Clear removes all rows in reverse dependency order.
func Clear(db *gorm.DB) error {
	tables := []any{
		&models.Signup{},
		&models.ShiftRole{},
		&models.Shift{},
		&models.PantryLead{},
		&models.Pantry{},
		&models.UserRole{},
		&models.Role{},
		&models.User{},
	}
	for _, table := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}

func reconcileAllRoles(tx *gorm.DB) error {
	var roles []models.ShiftRole
	if err := tx.Find(&roles).Error; err != nil {
		return err
	}
	for i := range roles {
		var count int64
		if err := tx.Model(&models.Signup{}).
			Where("shift_role_id = ?", roles[i].ID).
			Count(&count).Error; err != nil {
			return err
		}
		roles[i].FilledCount = int(count)
		if roles[i].FilledCount >= roles[i].RequiredCount {
			roles[i].Status = models.ShiftRoleStatusFull
		} else {
			roles[i].Status = models.ShiftRoleStatusOpen
		}
		if err := tx.Save(&roles[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
