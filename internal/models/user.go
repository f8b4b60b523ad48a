// Package models contains data structures for the application's domain models.
package models

import "time"

// RoleName identifies a well-known role. The roles table is open to extension,
// but these three are seeded reference data the policy layer understands.
type RoleName string

const (
	// RoleAdmin may manage users, pantries, and lead assignments.
	RoleAdmin RoleName = "ADMIN"
	// RolePantryLead may manage shifts for pantries it is assigned to.
	RolePantryLead RoleName = "PANTRY_LEAD"
	// RoleVolunteer may sign up for shift roles.
	RoleVolunteer RoleName = "VOLUNTEER"
)

// User represents a person known to the scheduler: an administrator, a pantry
// lead, a volunteer, or any combination of the three via user_roles.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Roles     []Role    `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

// Role is shared reference data; it is never owned by a user.
type Role struct {
	ID   uint     `gorm:"primaryKey" json:"id"`
	Name RoleName `gorm:"type:varchar(40);unique;not null" json:"name"`
}

// TableName specifies the table name for GORM.
func (Role) TableName() string {
	return "roles"
}

// UserRole maps users to roles. A user may hold several roles at once.
type UserRole struct {
	UserID uint `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	RoleID uint `gorm:"primaryKey;autoIncrement:false" json:"role_id"`
}

// TableName specifies the table name for GORM.
func (UserRole) TableName() string {
	return "user_roles"
}

// HasRole reports whether the user's preloaded Roles contain the given name.
func (u *User) HasRole(name RoleName) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
