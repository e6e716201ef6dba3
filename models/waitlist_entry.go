package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type WaitlistStatus string

const (
	WaitlistOpen      WaitlistStatus = "open"
	WaitlistOffered   WaitlistStatus = "offered"
	WaitlistConverted WaitlistStatus = "converted"
	WaitlistCanceled  WaitlistStatus = "canceled"
	WaitlistExpired   WaitlistStatus = "expired"
)

func (s WaitlistStatus) Valid() bool {
	switch s {
	case WaitlistOpen, WaitlistOffered, WaitlistConverted, WaitlistCanceled, WaitlistExpired:
		return true
	}
	return false
}

func (s WaitlistStatus) Terminal() bool {
	return s == WaitlistConverted || s == WaitlistCanceled || s == WaitlistExpired
}

// WaitlistEntry is deferred demand: one owner, one or more pets, one
// service type, one location, one desired date span.
//
// One-open-entry uniqueness lives in the database: config adds a stored
// generated column open_uniq holding the (owner, service, span) tuple only
// while status='open', with a unique index over it.
type WaitlistEntry struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `gorm:"index:idx_waitlist_serving,priority:3" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OwnerID     uint           `gorm:"index;column:owner_id" json:"owner_id"`
	LocationID  uint           `gorm:"index;column:location_id" json:"location_id"`
	ServiceType string         `gorm:"column:service_type;size:32;index" json:"service_type"`
	Status      WaitlistStatus `gorm:"column:status;size:32;index:idx_waitlist_serving,priority:1" json:"status"`
	Priority    int            `gorm:"column:priority;default:0;index:idx_waitlist_serving,priority:2,sort:desc" json:"priority"`

	StartDate time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate   time.Time `gorm:"column:end_date" json:"end_date"`

	// Pet membership, stored as a JSON array of pet ids.
	PetIDs datatypes.JSON `gorm:"column:pet_ids" json:"pet_ids"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	OfferedAt *time.Time `gorm:"column:offered_at" json:"offered_at,omitempty"`
	ExpiresAt *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`

	// Reservations minted by the most recent offer, and the final set the
	// entry converted into. JSON arrays of reservation ids.
	OfferedReservationIDs   datatypes.JSON `gorm:"column:offered_reservation_ids" json:"offered_reservation_ids,omitempty"`
	ConvertedReservationIDs datatypes.JSON `gorm:"column:converted_reservation_ids" json:"converted_reservation_ids,omitempty"`

	Owner    Owner    `gorm:"foreignKey:OwnerID;references:ID" json:"owner,omitempty"`
	Location Location `gorm:"foreignKey:LocationID;references:ID" json:"location,omitempty"`
}

func (e *WaitlistEntry) BeforeSave(tx *gorm.DB) error {
	if !e.Status.Valid() {
		return fmt.Errorf("unrecognized waitlist status %q", e.Status)
	}
	if e.EndDate.Before(e.StartDate) {
		return fmt.Errorf("waitlist range invalid: start %s after end %s",
			e.StartDate.Format("2006-01-02"), e.EndDate.Format("2006-01-02"))
	}
	return nil
}

// Pets decodes the membership list.
func (e *WaitlistEntry) Pets() ([]uint, error) {
	if len(e.PetIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	if err := json.Unmarshal(e.PetIDs, &ids); err != nil {
		return nil, fmt.Errorf("decode pet_ids for entry %d: %w", e.ID, err)
	}
	return ids, nil
}

// EncodeIDs marshals an id list for the JSON columns.
func EncodeIDs(ids []uint) datatypes.JSON {
	if ids == nil {
		ids = []uint{}
	}
	raw, _ := json.Marshal(ids)
	return datatypes.JSON(raw)
}

// DecodeIDs is the inverse of EncodeIDs; nil input decodes to nil.
func DecodeIDs(raw datatypes.JSON) ([]uint, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
