package models

import "time"

// SignupStatus defines the state of a volunteer's claim on a shift role slot.
// A NO_SHOW signup still occupies its capacity slot: "didn't attend" is not
// "freed the slot". Freeing the slot is deletion (cancellation).
type SignupStatus string

const (
	// SignupStatusConfirmed is the initial state of a signup.
	SignupStatusConfirmed SignupStatus = "CONFIRMED"
	// SignupStatusNoShow marks a volunteer who did not attend.
	SignupStatusNoShow SignupStatus = "NO_SHOW"
)

// ValidSignupStatus reports whether s is a known signup status.
func ValidSignupStatus(s SignupStatus) bool {
	return s == SignupStatusConfirmed || s == SignupStatusNoShow
}

// Signup is a volunteer's claim on one unit of a ShiftRole's capacity.
// At most one signup exists per (shift_role_id, user_id) pair.
type Signup struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	ShiftRoleID uint         `gorm:"not null;uniqueIndex:idx_signup_role_user" json:"shift_role_id"`
	UserID      uint         `gorm:"not null;uniqueIndex:idx_signup_role_user" json:"user_id"`
	Status      SignupStatus `gorm:"type:varchar(20);not null;default:'CONFIRMED'" json:"status"`
	CreatedAt   time.Time    `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for GORM.
func (Signup) TableName() string {
	return "shift_signups"
}
