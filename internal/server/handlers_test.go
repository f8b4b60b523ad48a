package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pantryshift/internal/config"
	"pantryshift/internal/middleware"
	"pantryshift/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testFixtureIDs: user 1 admin, user 2 lead of pantry 1, user 3 volunteer.
const (
	adminID = 1
	leadID  = 2
	volID   = 3
)

func setupHandlerTest(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Role{}, &models.UserRole{},
		&models.Pantry{}, &models.PantryLead{},
		&models.Shift{}, &models.ShiftRole{}, &models.Signup{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	roles := []models.Role{
		{Name: models.RoleAdmin},
		{Name: models.RolePantryLead},
		{Name: models.RoleVolunteer},
	}
	if err := db.Create(&roles).Error; err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	users := []models.User{
		{Name: "Alex Admin", Email: "admin@example.org", Active: true},
		{Name: "Courtney Lead", Email: "courtney@example.org", Active: true},
		{Name: "Morgan Volunteer", Email: "morgan@example.org", Active: true},
	}
	if err := db.Create(&users).Error; err != nil {
		t.Fatalf("seed users: %v", err)
	}
	grants := []models.UserRole{
		{UserID: adminID, RoleID: roles[0].ID},
		{UserID: leadID, RoleID: roles[1].ID},
		{UserID: volID, RoleID: roles[2].ID},
	}
	if err := db.Create(&grants).Error; err != nil {
		t.Fatalf("seed user roles: %v", err)
	}
	pantry := models.Pantry{Name: "Licking County Pantry", Slug: "licking-county-pantry"}
	if err := db.Create(&pantry).Error; err != nil {
		t.Fatalf("seed pantry: %v", err)
	}
	if err := db.Create(&models.PantryLead{PantryID: pantry.ID, UserID: leadID}).Error; err != nil {
		t.Fatalf("seed pantry lead: %v", err)
	}

	cfg := &config.Config{Port: "0", DefaultActorID: volID}
	srv := &Server{config: cfg, db: db, actorResolver: middleware.QueryActorResolver{DefaultID: cfg.DefaultActorID}}
	srv.wire()

	app := fiber.New()
	app.Use(middleware.ResolveActor(srv.actorResolver))
	srv.SetupRoutes(app)
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any) (int, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test %s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, raw
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	var envelope models.ErrorResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("parse error envelope: %v (%s)", err, raw)
	}
	return envelope.Code
}

func TestDefaultActorFallback(t *testing.T) {
	t.Parallel()
	app, _ := setupHandlerTest(t)

	// No user_id parameter: the configured default identity acts.
	status, raw := doJSON(t, app, http.MethodGet, "/api/me", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, raw)
	}
	var me UserDTO
	if err := json.Unmarshal(raw, &me); err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if me.ID != volID {
		t.Fatalf("expected default actor %d, got %d", volID, me.ID)
	}

	// user_id=0 is not a positive integer and also falls back.
	status, raw = doJSON(t, app, http.MethodGet, "/api/me?user_id=0", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, raw)
	}
	if err := json.Unmarshal(raw, &me); err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if me.ID != volID {
		t.Fatalf("expected default actor %d, got %d", volID, me.ID)
	}
}

func TestMeUnknownActorUnauthorized(t *testing.T) {
	t.Parallel()
	app, _ := setupHandlerTest(t)

	status, raw := doJSON(t, app, http.MethodGet, "/api/me?user_id=999", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (%s)", status, raw)
	}
	if code := errorCode(t, raw); code != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED code, got %s", code)
	}
}

func TestRoleSignupListingOpenToVolunteers(t *testing.T) {
	t.Parallel()
	app, db := setupHandlerTest(t)

	shift := models.Shift{PantryID: 1, Name: "Sorting", Status: models.ShiftStatusOpen, CreatedByUserID: adminID}
	if err := db.Create(&shift).Error; err != nil {
		t.Fatalf("seed shift: %v", err)
	}
	role := models.ShiftRole{ShiftID: shift.ID, Title: "Sorter", RequiredCount: 2, Status: models.ShiftRoleStatusOpen}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("seed role: %v", err)
	}

	status, raw := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/shift-roles/%d/signup?user_id=3", role.ID), nil)
	if status != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d (%s)", status, raw)
	}

	// The volunteer, who leads nothing, can read the listing to see their
	// own slot.
	status, raw = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/shift-roles/%d/signups?user_id=3", role.ID), nil)
	if status != http.StatusOK {
		t.Fatalf("list signups: expected 200, got %d (%s)", status, raw)
	}
	var signups []SignupDTO
	if err := json.Unmarshal(raw, &signups); err != nil {
		t.Fatalf("parse signups: %v", err)
	}
	if len(signups) != 1 || signups[0].UserID != volID {
		t.Fatalf("expected the volunteer's signup, got %+v", signups)
	}

	// The only failure mode is an unknown role.
	status, raw = doJSON(t, app, http.MethodGet, "/api/shift-roles/999/signups?user_id=3", nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (%s)", status, raw)
	}
}

func TestPantryAccessStatusCodes(t *testing.T) {
	t.Parallel()
	app, _ := setupHandlerTest(t)

	// Unknown pantry is 404 for everyone, checked before authorization.
	status, raw := doJSON(t, app, http.MethodGet, "/api/pantries/999?user_id=3", nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (%s)", status, raw)
	}

	// A volunteer may not view pantry management detail.
	status, raw = doJSON(t, app, http.MethodGet, "/api/pantries/1?user_id=3", nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d (%s)", status, raw)
	}
	if code := errorCode(t, raw); code != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN code, got %s", code)
	}

	// The assigned lead and the admin both may.
	for _, actor := range []int{leadID, adminID} {
		status, raw = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/pantries/1?user_id=%d", actor), nil)
		if status != http.StatusOK {
			t.Fatalf("actor %d: expected 200, got %d (%s)", actor, status, raw)
		}
	}

	// Malformed ids are 400 with a validation envelope.
	status, raw = doJSON(t, app, http.MethodGet, "/api/pantries/abc?user_id=1", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", status, raw)
	}
	if code := errorCode(t, raw); code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR code, got %s", code)
	}
}

func TestShiftLifecycleOverHTTP(t *testing.T) {
	t.Parallel()
	app, db := setupHandlerTest(t)

	// Lead creates a shift under their pantry.
	status, raw := doJSON(t, app, http.MethodPost, "/api/pantries/1/shifts?user_id=2", fiber.Map{
		"name":       "Saturday Morning Distribution",
		"start_time": "2026-09-05T09:00:00Z",
		"end_time":   "2026-09-05T12:00:00Z",
	})
	if status != http.StatusCreated {
		t.Fatalf("create shift: expected 201, got %d (%s)", status, raw)
	}
	var shift ShiftDTO
	if err := json.Unmarshal(raw, &shift); err != nil {
		t.Fatalf("parse shift: %v", err)
	}
	if shift.Status != models.ShiftStatusOpen {
		t.Fatalf("expected OPEN shift, got %s", shift.Status)
	}

	// Adding a role with a bad capacity fails.
	status, raw = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/shifts/%d/roles?user_id=2", shift.ID), fiber.Map{
		"title":          "Greeter",
		"required_count": 0,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", status, raw)
	}

	status, raw = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/shifts/%d/roles?user_id=2", shift.ID), fiber.Map{
		"title":          "Greeter",
		"required_count": 1,
	})
	if status != http.StatusCreated {
		t.Fatalf("create role: expected 201, got %d (%s)", status, raw)
	}
	var role ShiftRoleDTO
	if err := json.Unmarshal(raw, &role); err != nil {
		t.Fatalf("parse role: %v", err)
	}

	// Volunteer signs up; the response carries the refreshed role.
	status, raw = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/shift-roles/%d/signup?user_id=3", role.ID), nil)
	if status != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d (%s)", status, raw)
	}
	var signup SignupDTO
	if err := json.Unmarshal(raw, &signup); err != nil {
		t.Fatalf("parse signup: %v", err)
	}
	if signup.Role == nil || signup.Role.Status != models.ShiftRoleStatusFull {
		t.Fatalf("expected FULL role in signup response, got %+v", signup.Role)
	}

	// Second signup by the same volunteer conflicts.
	status, raw = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/shift-roles/%d/signup?user_id=3", role.ID), nil)
	if status != http.StatusBadRequest {
		t.Fatalf("duplicate signup: expected 400, got %d (%s)", status, raw)
	}
	if code := errorCode(t, raw); code != "CONFLICT" {
		t.Fatalf("expected CONFLICT code, got %s", code)
	}

	// Only admins may mark no-shows.
	status, raw = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/signups/%d?user_id=2", signup.ID), fiber.Map{"status": "NO_SHOW"})
	if status != http.StatusForbidden {
		t.Fatalf("lead no-show: expected 403, got %d (%s)", status, raw)
	}
	status, raw = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/signups/%d?user_id=1", signup.ID), fiber.Map{"status": "NO_SHOW"})
	if status != http.StatusOK {
		t.Fatalf("admin no-show: expected 200, got %d (%s)", status, raw)
	}

	// Cancelling frees the slot.
	status, raw = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/signups/%d?user_id=3", signup.ID), nil)
	if status != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d (%s)", status, raw)
	}
	var reloaded models.ShiftRole
	if err := db.First(&reloaded, role.ID).Error; err != nil {
		t.Fatalf("reload role: %v", err)
	}
	if reloaded.FilledCount != 0 || reloaded.Status != models.ShiftRoleStatusOpen {
		t.Fatalf("expected reopened role, got filled=%d status=%s", reloaded.FilledCount, reloaded.Status)
	}

	// Deleting the shift removes its roles.
	status, raw = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/shifts/%d?user_id=2", shift.ID), nil)
	if status != http.StatusOK {
		t.Fatalf("delete shift: expected 200, got %d (%s)", status, raw)
	}
	var roleCount int64
	if err := db.Model(&models.ShiftRole{}).Count(&roleCount).Error; err != nil {
		t.Fatalf("count roles: %v", err)
	}
	if roleCount != 0 {
		t.Fatalf("expected no roles after cascade, got %d", roleCount)
	}
}

func TestSequentialIDsContinueFromFixture(t *testing.T) {
	t.Parallel()
	app, _ := setupHandlerTest(t)

	var ids []uint
	for i := 0; i < 3; i++ {
		status, raw := doJSON(t, app, http.MethodPost, "/api/pantries?user_id=1", fiber.Map{
			"name": fmt.Sprintf("Pantry %d", i),
			"slug": fmt.Sprintf("pantry-%d", i),
		})
		if status != http.StatusCreated {
			t.Fatalf("create pantry: expected 201, got %d (%s)", status, raw)
		}
		var dto PantryDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			t.Fatalf("parse pantry: %v", err)
		}
		ids = append(ids, dto.ID)
	}

	// The seeded pantry holds id 1, so new ids continue 2, 3, 4.
	for i, id := range ids {
		if want := uint(i + 2); id != want {
			t.Fatalf("expected id %d, got %d", want, id)
		}
	}
}

func TestPublicBoard(t *testing.T) {
	t.Parallel()
	app, db := setupHandlerTest(t)

	shift := models.Shift{PantryID: 1, Name: "Open Shift", Status: models.ShiftStatusOpen}
	if err := db.Create(&shift).Error; err != nil {
		t.Fatalf("seed shift: %v", err)
	}
	cancelled := models.Shift{PantryID: 1, Name: "Cancelled Shift", Status: models.ShiftStatusCancelled}
	if err := db.Create(&cancelled).Error; err != nil {
		t.Fatalf("seed cancelled shift: %v", err)
	}

	status, raw := doJSON(t, app, http.MethodGet, "/api/public/pantries/licking-county-pantry/shifts", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, raw)
	}
	var board []ShiftDTO
	if err := json.Unmarshal(raw, &board); err != nil {
		t.Fatalf("parse board: %v", err)
	}
	if len(board) != 1 || board[0].Name != "Open Shift" {
		t.Fatalf("expected only the open shift, got %+v", board)
	}

	// Unknown slug renders an empty board, not an error.
	status, raw = doJSON(t, app, http.MethodGet, "/api/public/pantries/nowhere/shifts", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, raw)
	}
	if err := json.Unmarshal(raw, &board); err != nil {
		t.Fatalf("parse board: %v", err)
	}
	if len(board) != 0 {
		t.Fatalf("expected empty board, got %+v", board)
	}
}

func TestLeadManagementEndpoints(t *testing.T) {
	t.Parallel()
	app, db := setupHandlerTest(t)

	newLead := models.User{Name: "Devon Castillo", Email: "devon@example.org", Active: true}
	if err := db.Create(&newLead).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	var leadRole models.Role
	if err := db.Where("name = ?", models.RolePantryLead).First(&leadRole).Error; err != nil {
		t.Fatalf("find role: %v", err)
	}
	if err := db.Create(&models.UserRole{UserID: newLead.ID, RoleID: leadRole.ID}).Error; err != nil {
		t.Fatalf("grant role: %v", err)
	}

	status, raw := doJSON(t, app, http.MethodPost, "/api/pantries/1/leads?user_id=1", fiber.Map{"user_id": newLead.ID})
	if status != http.StatusCreated {
		t.Fatalf("assign lead: expected 201, got %d (%s)", status, raw)
	}

	status, raw = doJSON(t, app, http.MethodPost, "/api/pantries/1/leads?user_id=1", fiber.Map{"user_id": newLead.ID})
	if status != http.StatusBadRequest {
		t.Fatalf("duplicate assignment: expected 400, got %d (%s)", status, raw)
	}
	if code := errorCode(t, raw); code != "CONFLICT" {
		t.Fatalf("expected CONFLICT code, got %s", code)
	}

	// Non-admins may not manage leads.
	status, raw = doJSON(t, app, http.MethodPost, "/api/pantries/1/leads?user_id=2", fiber.Map{"user_id": newLead.ID})
	if status != http.StatusForbidden {
		t.Fatalf("lead assigning lead: expected 403, got %d (%s)", status, raw)
	}

	status, raw = doJSON(t, app, http.MethodGet, "/api/pantries/1/leads?user_id=2", nil)
	if status != http.StatusOK {
		t.Fatalf("list leads: expected 200, got %d (%s)", status, raw)
	}
	var leads []UserDTO
	if err := json.Unmarshal(raw, &leads); err != nil {
		t.Fatalf("parse leads: %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(leads))
	}

	// Removal is idempotent.
	for i := 0; i < 2; i++ {
		status, raw = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/pantries/1/leads/%d?user_id=1", newLead.ID), nil)
		if status != http.StatusOK {
			t.Fatalf("remove lead (attempt %d): expected 200, got %d (%s)", i+1, status, raw)
		}
	}
}
