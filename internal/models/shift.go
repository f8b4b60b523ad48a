package models

import "time"

// ShiftStatus defines the lifecycle state of a shift.
type ShiftStatus string

const (
	// ShiftStatusOpen indicates a shift accepting signups.
	ShiftStatusOpen ShiftStatus = "OPEN"
	// ShiftStatusCancelled indicates a cancelled shift. Terminal.
	ShiftStatusCancelled ShiftStatus = "CANCELLED"
)

// ValidShiftStatus reports whether s is a known shift status.
func ValidShiftStatus(s ShiftStatus) bool {
	return s == ShiftStatusOpen || s == ShiftStatusCancelled
}

// Shift is a scheduled block of volunteer activity at a pantry. Deleting a
// shift cascades to its roles and their signups.
type Shift struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	PantryID        uint        `gorm:"not null;index" json:"pantry_id"`
	Name            string      `gorm:"size:120;not null" json:"name"`
	StartTime       time.Time   `gorm:"not null" json:"start_time"`
	EndTime         time.Time   `gorm:"not null" json:"end_time"`
	Status          ShiftStatus `gorm:"type:varchar(20);not null;default:'OPEN'" json:"status"`
	CreatedByUserID uint        `json:"created_by_user_id"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	Roles []ShiftRole `gorm:"foreignKey:ShiftID" json:"roles,omitempty"`
}

// TableName specifies the table name for GORM.
func (Shift) TableName() string {
	return "shifts"
}

// ShiftRoleStatus is derived from capacity: FULL iff filled >= required.
type ShiftRoleStatus string

const (
	// ShiftRoleStatusOpen indicates remaining capacity.
	ShiftRoleStatusOpen ShiftRoleStatus = "OPEN"
	// ShiftRoleStatusFull indicates capacity is reached.
	ShiftRoleStatusFull ShiftRoleStatus = "FULL"
)

// ValidShiftRoleStatus reports whether s is a known shift-role status.
func ValidShiftRoleStatus(s ShiftRoleStatus) bool {
	return s == ShiftRoleStatusOpen || s == ShiftRoleStatusFull
}

// ShiftRole is a named position with a capacity within a shift. FilledCount
// and Status are bookkeeping derived from signups; they are recomputed on
// every signup and cancellation, never trusted from the client.
type ShiftRole struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ShiftID       uint            `gorm:"not null;index" json:"shift_id"`
	Title         string          `gorm:"size:120;not null" json:"title"`
	RequiredCount int             `gorm:"not null" json:"required_count"`
	FilledCount   int             `gorm:"not null;default:0" json:"filled_count"`
	Status        ShiftRoleStatus `gorm:"type:varchar(20);not null;default:'OPEN'" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Signups []Signup `gorm:"foreignKey:ShiftRoleID" json:"signups,omitempty"`
}

// TableName specifies the table name for GORM.
func (ShiftRole) TableName() string {
	return "shift_roles"
}
