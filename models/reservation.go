package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ReservationStatus is a closed set. Persisting a value outside the set
// fails in BeforeSave; new states require a migration, not an append.
type ReservationStatus string

const (
	StatusRequested           ReservationStatus = "requested"
	StatusAccepted            ReservationStatus = "accepted"
	StatusConfirmed           ReservationStatus = "confirmed"
	StatusCheckedIn           ReservationStatus = "checked_in"
	StatusCheckedOut          ReservationStatus = "checked_out"
	StatusCanceled            ReservationStatus = "canceled"
	StatusPendingConfirmation ReservationStatus = "pending_confirmation"
	StatusOfferedFromWaitlist ReservationStatus = "offered_from_waitlist"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusRequested, StatusAccepted, StatusConfirmed, StatusCheckedIn,
		StatusCheckedOut, StatusCanceled, StatusPendingConfirmation,
		StatusOfferedFromWaitlist:
		return true
	}
	return false
}

// Active statuses count against capacity.
func (s ReservationStatus) Active() bool {
	switch s {
	case StatusCheckedOut, StatusCanceled:
		return false
	}
	return s.Valid()
}

// Provisional statuses are owned by an offer until confirmed or canceled.
func (s ReservationStatus) Provisional() bool {
	return s == StatusPendingConfirmation || s == StatusOfferedFromWaitlist
}

func (s ReservationStatus) Terminal() bool {
	return s == StatusCheckedOut || s == StatusCanceled
}

// ActiveReservationStatuses is the set used in capacity-counting queries.
var ActiveReservationStatuses = []ReservationStatus{
	StatusRequested,
	StatusAccepted,
	StatusConfirmed,
	StatusCheckedIn,
	StatusPendingConfirmation,
	StatusOfferedFromWaitlist,
}

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	StatusRequested:           {StatusAccepted, StatusConfirmed, StatusCanceled},
	StatusAccepted:            {StatusConfirmed, StatusCanceled},
	StatusConfirmed:           {StatusCheckedIn, StatusCanceled},
	StatusCheckedIn:           {StatusCheckedOut},
	StatusPendingConfirmation: {StatusConfirmed, StatusCanceled},
	StatusOfferedFromWaitlist: {StatusConfirmed, StatusCanceled},
	StatusCheckedOut:          {},
	StatusCanceled:            {},
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to ReservationStatus) bool {
	for _, next := range reservationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Reservation is one pet's booking of a service over [StartAt, EndAt).
type Reservation struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	LocationID  uint              `gorm:"index;column:location_id" json:"location_id"`
	PetID       uint              `gorm:"index;column:pet_id" json:"pet_id"`
	ServiceType string            `gorm:"column:service_type;size:32;index" json:"service_type"`
	Status      ReservationStatus `gorm:"column:status;size:64;index" json:"status"`

	StartAt time.Time `gorm:"column:start_at;index" json:"start_at"`
	EndAt   time.Time `gorm:"column:end_at;index" json:"end_at"`

	// Set when the reservation was minted by an offer or promotion.
	OfferID       string `gorm:"column:offer_id;size:64;index" json:"offer_id,omitempty"`
	EntryID       *uint  `gorm:"column:entry_id;index" json:"entry_id,omitempty"`
	LodgingTypeID *uint  `gorm:"column:lodging_type_id" json:"lodging_type_id,omitempty"`

	Location    Location     `gorm:"foreignKey:LocationID;references:ID" json:"location,omitempty"`
	Pet         Pet          `gorm:"foreignKey:PetID;references:ID" json:"pet,omitempty"`
	LodgingType *LodgingType `gorm:"foreignKey:LodgingTypeID;references:ID" json:"lodging_type,omitempty"`
}

// Overlaps reports half-open interval overlap with [start, end).
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartAt.Before(end) && r.EndAt.After(start)
}

func (r *Reservation) BeforeSave(tx *gorm.DB) error {
	if !r.Status.Valid() {
		return fmt.Errorf("unrecognized reservation status %q", r.Status)
	}
	if !r.StartAt.Before(r.EndAt) {
		return fmt.Errorf("reservation range invalid: start %s not before end %s",
			r.StartAt.Format(time.RFC3339), r.EndAt.Format(time.RFC3339))
	}
	return nil
}
