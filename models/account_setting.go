package models

import "time"

// AccountSetting is a single-row table of account-level knobs consumed by
// the offer/promotion paths. Owned by account administration.
type AccountSetting struct {
	ID uint `gorm:"primaryKey" json:"id"`

	DefaultHoldMinutes int    `gorm:"column:default_hold_minutes;default:240" json:"default_hold_minutes"`
	ReminderLeadHours  int    `gorm:"column:reminder_lead_hours;default:2" json:"reminder_lead_hours"`
	PromotionStatus    string `gorm:"column:promotion_status;size:64;default:'confirmed'" json:"promotion_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
