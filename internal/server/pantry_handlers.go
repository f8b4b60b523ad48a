package server

import (
	"strings"

	"pantryshift/internal/middleware"
	"pantryshift/internal/models"
	"pantryshift/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPantries handles GET /api/pantries. Admins see every pantry; leads see
// the pantries they are assigned to; everyone else sees an empty list.
func (s *Server) GetPantries(c *fiber.Ctx) error {
	ctx := c.UserContext()

	pantries, err := s.pantryService.List(ctx, middleware.Actor(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	resp := make([]PantryDTO, 0, len(pantries))
	for _, p := range pantries {
		resp = append(resp, toPantryDTO(p))
	}
	return c.JSON(resp)
}

// GetPantry handles GET /api/pantries/:id. Lead-of-pantry or admin.
func (s *Server) GetPantry(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	pantry, err := s.pantryService.Get(ctx, middleware.Actor(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(toPantryDTO(*pantry))
}

// GetPantryBySlug handles GET /api/pantries/slug/:slug.
func (s *Server) GetPantryBySlug(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slug := strings.TrimSpace(c.Params("slug"))
	if slug == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("slug is required"))
	}

	pantry, err := s.pantryService.GetBySlug(ctx, slug)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(toPantryDTO(*pantry))
}

// CreatePantry handles POST /api/pantries. Admin only.
func (s *Server) CreatePantry(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var input service.CreatePantryInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	pantry, err := s.pantryService.Create(ctx, middleware.Actor(c), input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPantryDTO(*pantry))
}

// GetPantryLeads handles GET /api/pantries/:id/leads. Lead-of-pantry or admin.
func (s *Server) GetPantryLeads(c *fiber.Ctx) error {
	ctx := c.UserContext()
	pantryID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	leads, err := s.pantryService.ListLeads(ctx, middleware.Actor(c), pantryID)
	if err != nil {
		return respondServiceError(c, err)
	}

	resp := make([]UserDTO, 0, len(leads))
	for _, u := range leads {
		resp = append(resp, toUserDTO(u))
	}
	return c.JSON(resp)
}

// AddPantryLead handles POST /api/pantries/:id/leads. Admin only. The user
// must already hold the PANTRY_LEAD role.
func (s *Server) AddPantryLead(c *fiber.Ctx) error {
	ctx := c.UserContext()
	pantryID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id must be an integer"))
	}

	lead, err := s.pantryService.AddLead(ctx, middleware.Actor(c), pantryID, req.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPantryLeadDTO(*lead))
}

// RemovePantryLead handles DELETE /api/pantries/:id/leads/:userId. Admin
// only; removing an assignment that does not exist still succeeds.
func (s *Server) RemovePantryLead(c *fiber.Ctx) error {
	ctx := c.UserContext()
	pantryID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.pantryService.RemoveLead(ctx, middleware.Actor(c), pantryID, userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Lead removed"})
}
