package models

import (
	"time"

	"gorm.io/gorm"
)

// Service types a rule (or reservation) can apply to.
const (
	ServiceBoarding = "boarding"
	ServiceDaycare  = "daycare"
	ServiceGrooming = "grooming"
)

func ValidServiceType(s string) bool {
	switch s {
	case ServiceBoarding, ServiceDaycare, ServiceGrooming:
		return true
	}
	return false
}

// CapacityRule caps concurrently active reservations per
// (location, service type). WaitlistLimit is optional; nil means the
// waitlist itself is uncapped. Absence of a rule means unlimited capacity.
type CapacityRule struct {
	ID uint `gorm:"primaryKey" json:"id"`

	LocationID    uint   `gorm:"column:location_id;uniqueIndex:uniq_location_service" json:"location_id"`
	ServiceType   string `gorm:"column:service_type;size:32;uniqueIndex:uniq_location_service" json:"service_type"`
	MaxActive     int    `gorm:"column:max_active" json:"max_active"`
	WaitlistLimit *int   `gorm:"column:waitlist_limit" json:"waitlist_limit,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Location Location `gorm:"foreignKey:LocationID;references:ID" json:"location,omitempty"`
}
