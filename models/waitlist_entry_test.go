package models

import (
	"testing"
	"time"

	"gorm.io/datatypes"
)

func TestWaitlistStatus(t *testing.T) {
	for _, s := range []WaitlistStatus{WaitlistOpen, WaitlistOffered, WaitlistConverted, WaitlistCanceled, WaitlistExpired} {
		if !s.Valid() {
			t.Errorf("%s must be valid", s)
		}
	}
	if WaitlistStatus("paused").Valid() {
		t.Error("unknown waitlist status must not be valid")
	}

	if WaitlistOpen.Terminal() || WaitlistOffered.Terminal() {
		t.Error("open/offered are not terminal")
	}
	for _, s := range []WaitlistStatus{WaitlistConverted, WaitlistCanceled, WaitlistExpired} {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
}

func TestWaitlistEntryBeforeSave(t *testing.T) {
	day := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)

	entry := WaitlistEntry{Status: WaitlistOpen, StartDate: day, EndDate: day}
	if err := entry.BeforeSave(nil); err != nil {
		t.Errorf("single-day span must be accepted: %v", err)
	}

	entry.EndDate = day.Add(-24 * time.Hour)
	if err := entry.BeforeSave(nil); err == nil {
		t.Error("start after end must fail")
	}

	entry.EndDate = day
	entry.Status = WaitlistStatus("snoozed")
	if err := entry.BeforeSave(nil); err == nil {
		t.Error("unknown status must fail loudly")
	}
}

func TestWaitlistEntryPets(t *testing.T) {
	entry := WaitlistEntry{ID: 7, PetIDs: EncodeIDs([]uint{3, 5, 9})}
	pets, err := entry.Pets()
	if err != nil {
		t.Fatalf("Pets() error: %v", err)
	}
	if len(pets) != 3 || pets[0] != 3 || pets[2] != 9 {
		t.Errorf("Pets() = %v, want [3 5 9]", pets)
	}

	entry.PetIDs = nil
	if pets, err := entry.Pets(); err != nil || pets != nil {
		t.Errorf("empty membership should decode to nil, got %v, %v", pets, err)
	}

	entry.PetIDs = datatypes.JSON([]byte(`{"oops":`))
	if _, err := entry.Pets(); err == nil {
		t.Error("malformed membership JSON must error")
	}
}

func TestEncodeDecodeIDs(t *testing.T) {
	ids, err := DecodeIDs(EncodeIDs([]uint{11, 12}))
	if err != nil {
		t.Fatalf("DecodeIDs error: %v", err)
	}
	if len(ids) != 2 || ids[1] != 12 {
		t.Errorf("DecodeIDs = %v, want [11 12]", ids)
	}

	// nil encodes to an empty array, decodes back to empty
	ids, err = DecodeIDs(EncodeIDs(nil))
	if err != nil || len(ids) != 0 {
		t.Errorf("round-tripping nil should give empty list, got %v, %v", ids, err)
	}

	if ids, err := DecodeIDs(nil); err != nil || ids != nil {
		t.Errorf("nil column should decode to nil, got %v, %v", ids, err)
	}
}
