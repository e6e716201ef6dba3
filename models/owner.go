package models

import "gorm.io/gorm"

// Owner is the customer record, consumed read-only (account management
// lives elsewhere). Email/phone are the default offer destinations.
type Owner struct {
	gorm.Model

	FullName string `gorm:"size:255" json:"full_name"`
	Email    string `gorm:"size:150;index" json:"email"`
	Phone    string `gorm:"size:50" json:"phone"`

	Pets []Pet `gorm:"foreignKey:OwnerID" json:"pets,omitempty"`
}
