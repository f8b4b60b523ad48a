// Command seed writes a demo fixture for local development. It builds the
// dataset in a scratch in-memory database using the factories, then dumps it
// as the JSON fixture the server loads at boot.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"pantryshift/internal/config"
	"pantryshift/internal/database"
	"pantryshift/internal/models"
	"pantryshift/internal/seed"

	"gorm.io/gorm"
)

func main() {
	out := flag.String("out", "data/db.json", "path to write the fixture")
	volunteers := flag.Int("volunteers", 6, "number of extra demo volunteers")
	flag.Parse()

	cfg := &config.Config{DBPath: "file::memory:?cache=private", DefaultActorID: 1}
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("connect scratch db: %v", err)
	}
	if err := seed.EnsureRoles(db); err != nil {
		log.Fatalf("seed roles: %v", err)
	}

	f := seed.NewFactory(db)

	admin, err := f.CreateUser([]models.RoleName{models.RoleAdmin}, func(u *models.User) {
		u.Name = "Alex Admin"
		u.Email = "admin@example.org"
	})
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}

	lead, err := f.CreateUser([]models.RoleName{models.RolePantryLead, models.RoleVolunteer}, func(u *models.User) {
		u.Name = "Courtney Lead"
		u.Email = "courtney@example.org"
	})
	if err != nil {
		log.Fatalf("create lead: %v", err)
	}

	for i := 0; i < *volunteers; i++ {
		if _, err := f.CreateUser([]models.RoleName{models.RoleVolunteer}); err != nil {
			log.Fatalf("create volunteer: %v", err)
		}
	}

	pantry, err := f.CreatePantry(func(p *models.Pantry) {
		p.Name = "Licking County Pantry"
		p.Slug = "licking-county-pantry"
	})
	if err != nil {
		log.Fatalf("create pantry: %v", err)
	}
	if err := db.Create(&models.PantryLead{PantryID: pantry.ID, UserID: lead.ID}).Error; err != nil {
		log.Fatalf("assign lead: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := f.CreatePantry(); err != nil {
			log.Fatalf("create pantry: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		shift, err := f.CreateShift(pantry.ID, admin.ID)
		if err != nil {
			log.Fatalf("create shift: %v", err)
		}
		for j := 0; j < 2; j++ {
			if _, err := f.CreateShiftRole(shift.ID); err != nil {
				log.Fatalf("create shift role: %v", err)
			}
		}
	}

	fixture, err := dump(db)
	if err != nil {
		log.Fatalf("dump fixture: %v", err)
	}

	raw, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		log.Fatalf("encode fixture: %v", err)
	}
	if err := os.WriteFile(*out, raw, 0o644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	log.Printf("fixture written to %s", *out)
}

// dump reads every table back out so the fixture mirrors exactly what the
// factories produced, explicit IDs included.
func dump(db *gorm.DB) (*seed.Fixture, error) {
	var fixture seed.Fixture
	steps := []struct {
		dest  any
		order string
	}{
		{&fixture.Roles, "id ASC"},
		{&fixture.Users, "id ASC"},
		{&fixture.UserRoles, "user_id ASC, role_id ASC"},
		{&fixture.Pantries, "id ASC"},
		{&fixture.PantryLeads, "pantry_id ASC, user_id ASC"},
		{&fixture.Shifts, "id ASC"},
		{&fixture.ShiftRoles, "id ASC"},
		{&fixture.Signups, "id ASC"},
	}
	for _, step := range steps {
		if err := db.Order(step.order).Find(step.dest).Error; err != nil {
			return nil, err
		}
	}
	return &fixture, nil
}
