package models

import "gorm.io/gorm"

type Pet struct {
	gorm.Model

	OwnerID uint   `gorm:"index;column:owner_id" json:"owner_id"`
	Name    string `gorm:"size:255" json:"name"`
	Breed   string `gorm:"size:100" json:"breed,omitempty"`

	Owner Owner `gorm:"foreignKey:OwnerID;references:ID" json:"owner,omitempty"`
}
