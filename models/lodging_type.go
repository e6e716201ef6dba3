package models

import (
	"time"

	"gorm.io/gorm"
)

// LodgingType is reference data (kennel, run, suite...). Reservations may
// carry one as a tag; this service never assigns a physical unit.
type LodgingType struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string `gorm:"size:100" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
