package models

import "time"

// Pantry represents a food pantry site. Pantries are created by admins and are
// never deleted; leadership is many-to-many via PantryLead.
type Pantry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Slug      string    `gorm:"size:120;not null;uniqueIndex" json:"slug"`
	Address   string    `gorm:"type:text" json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Pantry) TableName() string {
	return "pantries"
}

// PantryLead maps pantries to the users who manage them. A lead may lead
// multiple pantries and a pantry may have multiple leads. The tuple is unique;
// CreatedAt preserves insertion order for lead listings.
type PantryLead struct {
	PantryID  uint      `gorm:"primaryKey;autoIncrement:false" json:"pantry_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Pantry *Pantry `gorm:"foreignKey:PantryID" json:"pantry,omitempty"`
	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for GORM.
func (PantryLead) TableName() string {
	return "pantry_leads"
}
