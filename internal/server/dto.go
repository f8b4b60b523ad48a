package server

import (
	"time"

	"pantryshift/internal/models"
)

const apiTimeFormat = "2006-01-02T15:04:05.999999999Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(apiTimeFormat)
}

// RoleDTO is the API response model for roles.
type RoleDTO struct {
	ID   uint            `json:"id"`
	Name models.RoleName `json:"name"`
}

// UserDTO is the API response model for users.
type UserDTO struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	Roles     []RoleDTO `json:"roles"`
	CreatedAt string    `json:"created_at"`
}

// PantryDTO is the API response model for pantries.
type PantryDTO struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// PantryLeadDTO is the API response model for lead assignments.
type PantryLeadDTO struct {
	PantryID  uint     `json:"pantry_id"`
	UserID    uint     `json:"user_id"`
	CreatedAt string   `json:"created_at"`
	User      *UserDTO `json:"user,omitempty"`
}

// ShiftRoleDTO is the API response model for shift roles.
type ShiftRoleDTO struct {
	ID            uint                   `json:"id"`
	ShiftID       uint                   `json:"shift_id"`
	Title         string                 `json:"title"`
	RequiredCount int                    `json:"required_count"`
	FilledCount   int                    `json:"filled_count"`
	Status        models.ShiftRoleStatus `json:"status"`
}

// ShiftDTO is the API response model for shifts.
type ShiftDTO struct {
	ID              uint               `json:"id"`
	PantryID        uint               `json:"pantry_id"`
	Name            string             `json:"name"`
	StartTime       string             `json:"start_time"`
	EndTime         string             `json:"end_time"`
	Status          models.ShiftStatus `json:"status"`
	CreatedByUserID uint               `json:"created_by_user_id"`
	CreatedAt       string             `json:"created_at"`
	UpdatedAt       string             `json:"updated_at"`
	Roles           []ShiftRoleDTO     `json:"roles"`
}

// SignupDTO is the API response model for signups. Role is present on
// responses to mutations so clients can refresh capacity without a second
// request.
type SignupDTO struct {
	ID          uint                `json:"id"`
	ShiftRoleID uint                `json:"shift_role_id"`
	UserID      uint                `json:"user_id"`
	Status      models.SignupStatus `json:"status"`
	CreatedAt   string              `json:"created_at"`
	User        *UserDTO            `json:"user,omitempty"`
	Role        *ShiftRoleDTO       `json:"shift_role,omitempty"`
}

func toRoleDTO(r models.Role) RoleDTO {
	return RoleDTO{ID: r.ID, Name: r.Name}
}

func toUserDTO(u models.User) UserDTO {
	roles := make([]RoleDTO, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, toRoleDTO(r))
	}
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Active:    u.Active,
		Roles:     roles,
		CreatedAt: formatTime(u.CreatedAt),
	}
}

func toPantryDTO(p models.Pantry) PantryDTO {
	return PantryDTO{
		ID:        p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Address:   p.Address,
		CreatedAt: formatTime(p.CreatedAt),
		UpdatedAt: formatTime(p.UpdatedAt),
	}
}

func toPantryLeadDTO(l models.PantryLead) PantryLeadDTO {
	dto := PantryLeadDTO{
		PantryID:  l.PantryID,
		UserID:    l.UserID,
		CreatedAt: formatTime(l.CreatedAt),
	}
	if l.User != nil {
		user := toUserDTO(*l.User)
		dto.User = &user
	}
	return dto
}

func toShiftRoleDTO(r models.ShiftRole) ShiftRoleDTO {
	return ShiftRoleDTO{
		ID:            r.ID,
		ShiftID:       r.ShiftID,
		Title:         r.Title,
		RequiredCount: r.RequiredCount,
		FilledCount:   r.FilledCount,
		Status:        r.Status,
	}
}

func toShiftDTO(s models.Shift) ShiftDTO {
	roles := make([]ShiftRoleDTO, 0, len(s.Roles))
	for _, r := range s.Roles {
		roles = append(roles, toShiftRoleDTO(r))
	}
	return ShiftDTO{
		ID:              s.ID,
		PantryID:        s.PantryID,
		Name:            s.Name,
		StartTime:       formatTime(s.StartTime),
		EndTime:         formatTime(s.EndTime),
		Status:          s.Status,
		CreatedByUserID: s.CreatedByUserID,
		CreatedAt:       formatTime(s.CreatedAt),
		UpdatedAt:       formatTime(s.UpdatedAt),
		Roles:           roles,
	}
}

func toSignupDTO(su models.Signup, role *models.ShiftRole) SignupDTO {
	dto := SignupDTO{
		ID:          su.ID,
		ShiftRoleID: su.ShiftRoleID,
		UserID:      su.UserID,
		Status:      su.Status,
		CreatedAt:   formatTime(su.CreatedAt),
	}
	if su.User != nil {
		user := toUserDTO(*su.User)
		dto.User = &user
	}
	if role != nil {
		r := toShiftRoleDTO(*role)
		dto.Role = &r
	}
	return dto
}
