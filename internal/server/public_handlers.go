package server

import (
	"strings"

	"pantryshift/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetPublicShifts handles GET /api/public/pantries/:slug/shifts. No
// authorization: this backs the volunteer-facing board. Cancelled shifts are
// excluded and an unknown slug yields an empty list.
func (s *Server) GetPublicShifts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slug := strings.TrimSpace(c.Params("slug"))
	if slug == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("slug is required"))
	}

	shifts, err := s.publicService.Shifts(ctx, slug)
	if err != nil {
		return respondServiceError(c, err)
	}

	resp := make([]ShiftDTO, 0, len(shifts))
	for _, sh := range shifts {
		resp = append(resp, toShiftDTO(sh))
	}
	return c.JSON(resp)
}
