package server

import (
	"errors"

	"pantryshift/internal/middleware"
	"pantryshift/internal/models"
	"pantryshift/internal/service"

	"github.com/gofiber/fiber/v2"
)

// signupOutcome maps a failed signup attempt to its metrics label.
func signupOutcome(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "CONFLICT":
			return "conflict"
		case "CAPACITY_FULL":
			return "capacity_full"
		}
	}
	return "rejected"
}

// CreateSignup handles POST /api/shift-roles/:id/signup. The body may name a
// user_id to sign up on someone's behalf; by default the acting user claims
// the slot for themselves.
func (s *Server) CreateSignup(c *fiber.Ctx) error {
	ctx := c.UserContext()
	roleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var input service.CreateSignupInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	signup, role, err := s.signupService.Create(ctx, middleware.Actor(c), roleID, input)
	if err != nil {
		middleware.SignupOutcomes.WithLabelValues(signupOutcome(err)).Inc()
		return respondServiceError(c, err)
	}
	middleware.SignupOutcomes.WithLabelValues("created").Inc()
	return c.Status(fiber.StatusCreated).JSON(toSignupDTO(*signup, role))
}

// GetShiftRoleSignups handles GET /api/shift-roles/:id/signups. Open to any
// actor; returns signups with volunteer profiles in signup order.
func (s *Server) GetShiftRoleSignups(c *fiber.Ctx) error {
	ctx := c.UserContext()
	roleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	signups, err := s.signupService.ListByRole(ctx, roleID)
	if err != nil {
		return respondServiceError(c, err)
	}

	resp := make([]SignupDTO, 0, len(signups))
	for _, su := range signups {
		resp = append(resp, toSignupDTO(su, nil))
	}
	return c.JSON(resp)
}

// UpdateSignupStatus handles PATCH /api/signups/:id. Admin only. Marking a
// signup NO_SHOW keeps its capacity slot; only cancellation frees it.
func (s *Server) UpdateSignupStatus(c *fiber.Ctx) error {
	ctx := c.UserContext()
	signupID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status models.SignupStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	signup, err := s.signupService.UpdateStatus(ctx, middleware.Actor(c), signupID, req.Status)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(toSignupDTO(*signup, nil))
}

// CancelSignup handles DELETE /api/signups/:id. Owner or admin; frees the
// capacity slot and reports the refreshed shift role.
func (s *Server) CancelSignup(c *fiber.Ctx) error {
	ctx := c.UserContext()
	signupID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	role, err := s.signupService.Cancel(ctx, middleware.Actor(c), signupID)
	if err != nil {
		return respondServiceError(c, err)
	}
	middleware.SignupOutcomes.WithLabelValues("cancelled").Inc()
	return c.JSON(fiber.Map{
		"message":    "Signup cancelled",
		"shift_role": toShiftRoleDTO(*role),
	})
}
