package server

import (
	"pantryshift/internal/middleware"
	"pantryshift/internal/models"
	"pantryshift/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPantryShifts handles GET /api/pantries/:id/shifts. Lead-of-pantry or
// admin; includes cancelled shifts, unlike the public board.
func (s *Server) GetPantryShifts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	pantryID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	shifts, err := s.shiftService.ListForPantry(ctx, middleware.Actor(c), pantryID)
	if err != nil {
		return respondServiceError(c, err)
	}

	resp := make([]ShiftDTO, 0, len(shifts))
	for _, sh := range shifts {
		resp = append(resp, toShiftDTO(sh))
	}
	return c.JSON(resp)
}

// CreateShift handles POST /api/pantries/:id/shifts. Lead-of-pantry or admin.
func (s *Server) CreateShift(c *fiber.Ctx) error {
	ctx := c.UserContext()
	pantryID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var input service.CreateShiftInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	shift, err := s.shiftService.Create(ctx, middleware.Actor(c), pantryID, input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toShiftDTO(*shift))
}

// GetShift handles GET /api/shifts/:id. Lead-of-pantry or admin.
func (s *Server) GetShift(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	shift, err := s.shiftService.Get(ctx, middleware.Actor(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(toShiftDTO(*shift))
}

// UpdateShift handles PATCH /api/shifts/:id. Lead-of-pantry or admin.
func (s *Server) UpdateShift(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var input service.UpdateShiftInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	shift, err := s.shiftService.Update(ctx, middleware.Actor(c), id, input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(toShiftDTO(*shift))
}

// DeleteShift handles DELETE /api/shifts/:id. Lead-of-pantry or admin.
// Removes the shift's roles and all of their signups with it.
func (s *Server) DeleteShift(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.shiftService.Delete(ctx, middleware.Actor(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Shift deleted"})
}

// GetShiftRoles handles GET /api/shifts/:id/roles. Lead-of-pantry or admin.
func (s *Server) GetShiftRoles(c *fiber.Ctx) error {
	ctx := c.UserContext()
	shiftID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	roles, err := s.shiftService.ListRoles(ctx, middleware.Actor(c), shiftID)
	if err != nil {
		return respondServiceError(c, err)
	}

	resp := make([]ShiftRoleDTO, 0, len(roles))
	for _, r := range roles {
		resp = append(resp, toShiftRoleDTO(r))
	}
	return c.JSON(resp)
}

// CreateShiftRole handles POST /api/shifts/:id/roles. Lead-of-pantry or admin.
func (s *Server) CreateShiftRole(c *fiber.Ctx) error {
	ctx := c.UserContext()
	shiftID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var input service.CreateShiftRoleInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	role, err := s.shiftService.CreateRole(ctx, middleware.Actor(c), shiftID, input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toShiftRoleDTO(*role))
}

// UpdateShiftRole handles PATCH /api/shift-roles/:id. Lead-of-pantry or
// admin; setting status directly is an administrator override.
func (s *Server) UpdateShiftRole(c *fiber.Ctx) error {
	ctx := c.UserContext()
	roleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var input service.UpdateShiftRoleInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	role, err := s.shiftService.UpdateRole(ctx, middleware.Actor(c), roleID, input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(toShiftRoleDTO(*role))
}

// DeleteShiftRole handles DELETE /api/shift-roles/:id. Lead-of-pantry or
// admin. Removes the role's signups with it.
func (s *Server) DeleteShiftRole(c *fiber.Ctx) error {
	ctx := c.UserContext()
	roleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.shiftService.DeleteRole(ctx, middleware.Actor(c), roleID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Shift role deleted"})
}
