package models

import (
	"time"

	"gorm.io/gorm"
)

// Location is a physical site. Owned by account administration; this
// service only reads it and hangs capacity rules off it.
type Location struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name     string `gorm:"size:255" json:"name"`
	Timezone string `gorm:"size:64;default:'UTC'" json:"timezone"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CapacityRules []CapacityRule `gorm:"foreignKey:LocationID" json:"capacity_rules,omitempty"`
}
