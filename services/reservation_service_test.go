// services/reservation_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kennel-backend/models"
)

func TestAdmissionStopsAtMaxActiveAndFreesOnCancel(t *testing.T) {
	db := newTestDB(t)
	w := seedWorld(t, db, 2)
	seedRule(t, db, w.loc.ID, models.ServiceBoarding, 1)

	capSvc := NewCapacityService(db)
	resSvc := NewReservationService(db, capSvc)
	wlSvc := NewWaitlistService(db, capSvc, NewSettingsService(db))

	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	input := CreateEntryInput{
		OwnerID:     w.owner.ID,
		LocationID:  w.loc.ID,
		ServiceType: models.ServiceBoarding,
		PetIDs:      []uint{w.pets[1].ID},
		StartDate:   day,
		EndDate:     day,
	}

	// While capacity is free the waitlist refuses the entry.
	_, err := wlSvc.Create(input)
	assert.ErrorIs(t, err, ErrWaitlistNotEligible)

	first, err := resSvc.Create(w.loc.ID, w.pets[0].ID, models.ServiceBoarding, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.StatusRequested, first.Status)

	// The slot is taken for the overlapping window.
	_, err = resSvc.Create(w.loc.ID, w.pets[1].ID, models.ServiceBoarding, day, day.Add(24*time.Hour))
	assert.ErrorIs(t, err, ErrCapacityUnavailable)

	// Half-open intervals: the adjacent day does not overlap.
	adjacent, err := resSvc.Create(w.loc.ID, w.pets[1].ID, models.ServiceBoarding, day.Add(24*time.Hour), day.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.StatusRequested, adjacent.Status)

	// Now the window is genuinely full, so the entry is accepted.
	entry, err := wlSvc.Create(input)
	require.NoError(t, err)
	assert.Equal(t, models.WaitlistOpen, entry.Status)

	// Canceling frees the slot for the same window again.
	_, err = resSvc.Cancel(first.ID)
	require.NoError(t, err)

	second, err := resSvc.Create(w.loc.ID, w.pets[1].ID, models.ServiceBoarding, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.StatusRequested, second.Status)
}
