package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleManager      = "manager"
	RoleReceptionist = "receptionist"
)

type Staff struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FullName string `gorm:"size:255" json:"full_name"`
	Username string `gorm:"size:150;uniqueIndex" json:"username"`
	Password string `gorm:"size:255" json:"-"`
	Role     string `gorm:"size:50;default:'receptionist'" json:"role"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Staff) IsManager() bool {
	return s.Role == RoleManager
}
