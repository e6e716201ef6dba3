package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification send bookkeeping on a token row.
const (
	SendPending = "PENDING"
	SendSent    = "SENT"
	SendFailed  = "FAILED"
)

// ConfirmationToken is the single-use credential bound to one offer.
// Consuming it is the only owner-facing way to convert an offer.
type ConfirmationToken struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Token   string `gorm:"column:token;size:128;uniqueIndex" json:"-"`
	OfferID string `gorm:"column:offer_id;size:64;index" json:"offer_id"`
	EntryID uint   `gorm:"column:entry_id;index" json:"entry_id"`

	ExpiresAt  time.Time  `gorm:"column:expires_at" json:"expires_at"`
	ConsumedAt *time.Time `gorm:"column:consumed_at" json:"consumed_at,omitempty"`

	// Where the offer notification went, if anywhere.
	SentVia    string `gorm:"column:sent_via;size:32" json:"sent_via,omitempty"`
	SentTo     string `gorm:"column:sent_to;size:255" json:"sent_to,omitempty"`
	SendStatus string `gorm:"column:send_status;size:32;default:'PENDING'" json:"send_status"`
	SendError  string `gorm:"column:send_error;type:text" json:"-"`
}

func (t *ConfirmationToken) Consumed() bool {
	return t.ConsumedAt != nil
}

func (t *ConfirmationToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
