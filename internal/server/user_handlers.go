package server

import (
	"errors"

	"pantryshift/internal/middleware"
	"pantryshift/internal/models"
	"pantryshift/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMe handles GET /api/me. It returns the acting user's profile with roles
// so clients can decide which views to render. An actor id that resolves to
// no user is an identity failure, not a missing resource, so it reports 401.
func (s *Server) GetMe(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := s.userService.GetUser(ctx, middleware.Actor(c))
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Acting user does not exist"))
		}
		return respondServiceError(c, err)
	}
	return c.JSON(toUserDTO(*user))
}

// GetUsers handles GET /api/users with an optional ?role= filter. Admin only.
func (s *Server) GetUsers(c *fiber.Ctx) error {
	ctx := c.UserContext()
	roleFilter := models.RoleName(c.Query("role"))

	users, err := s.userService.ListUsers(ctx, middleware.Actor(c), roleFilter)
	if err != nil {
		return respondServiceError(c, err)
	}

	resp := make([]UserDTO, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserDTO(u))
	}
	return c.JSON(resp)
}

// GetUser handles GET /api/users/:id.
func (s *Server) GetUser(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUser(ctx, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(toUserDTO(*user))
}

// CreateUser handles POST /api/users. Admin only.
func (s *Server) CreateUser(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var input service.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.CreateUser(ctx, middleware.Actor(c), input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toUserDTO(*user))
}

// GetRoles handles GET /api/roles. Admin only.
func (s *Server) GetRoles(c *fiber.Ctx) error {
	ctx := c.UserContext()

	roles, err := s.userService.ListRoles(ctx, middleware.Actor(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	resp := make([]RoleDTO, 0, len(roles))
	for _, r := range roles {
		resp = append(resp, toRoleDTO(r))
	}
	return c.JSON(resp)
}

// GrantUserRole handles POST /api/users/:id/roles. Admin only.
func (s *Server) GrantUserRole(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		RoleID uint `json:"role_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.RoleID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("role_id must be an integer"))
	}

	user, err := s.userService.GrantRole(ctx, middleware.Actor(c), userID, req.RoleID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toUserDTO(*user))
}

// RevokeUserRole handles DELETE /api/users/:id/roles/:roleId. Admin only;
// revoking a role the user does not hold still succeeds.
func (s *Server) RevokeUserRole(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	roleID, err := s.parseID(c, "roleId")
	if err != nil {
		return nil
	}

	if err := s.userService.RevokeRole(ctx, middleware.Actor(c), userID, roleID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Role removed"})
}

// GetUserSignups handles GET /api/users/:id/signups. Owner or admin.
func (s *Server) GetUserSignups(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	signups, err := s.signupService.ListForUser(ctx, middleware.Actor(c), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	resp := make([]SignupDTO, 0, len(signups))
	for _, su := range signups {
		resp = append(resp, toSignupDTO(su, nil))
	}
	return c.JSON(resp)
}
