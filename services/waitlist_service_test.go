// services/waitlist_service_test.go
package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kennel-backend/models"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	dup := &mysqldrv.MySQLError{Number: 1062, Message: "Duplicate entry '3:boarding:2026-07-01:2026-07-04' for key 'uniq_open_entry'"}
	assert.True(t, isDuplicateKeyErr(dup))
	assert.True(t, isDuplicateKeyErr(fmt.Errorf("create failed: %w", dup)))

	deadlock := &mysqldrv.MySQLError{Number: 1213, Message: "Deadlock found"}
	assert.False(t, isDuplicateKeyErr(deadlock))

	// non-mysql errors fall back to substring matching
	assert.True(t, isDuplicateKeyErr(errors.New("UNIQUE constraint failed: waitlist_entries.open_uniq")))
	assert.False(t, isDuplicateKeyErr(errors.New("connection refused")))
}

func TestErrorTaxonomyWrapping(t *testing.T) {
	// controllers rely on errors.Is surviving the %w wrapping convention
	err := fmt.Errorf("%w: boarding at location 1 is full", ErrCapacityUnavailable)
	assert.True(t, errors.Is(err, ErrCapacityUnavailable))
	assert.False(t, errors.Is(err, ErrWaitlistNotEligible))

	err = fmt.Errorf("%w: owner 3 already has an open entry for this span", ErrDuplicateOpenEntry)
	assert.True(t, errors.Is(err, ErrDuplicateOpenEntry))
}

func TestPromoteAllOrNothing(t *testing.T) {
	db := newTestDB(t)
	w := seedWorld(t, db, 2)
	seedRule(t, db, w.loc.ID, models.ServiceBoarding, 1)

	start := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	entry := seedOpenEntry(t, w, start, start)
	svc := NewWaitlistService(db, NewCapacityService(db), NewSettingsService(db))

	// Two pets against one slot: the second gate check sees the first
	// pet's row, so the whole promotion rolls back.
	_, err := svc.Promote(entry.ID, nil)
	assert.ErrorIs(t, err, ErrCapacityUnavailable)

	var count int64
	require.NoError(t, db.Model(&models.Reservation{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	var reloaded models.WaitlistEntry
	require.NoError(t, db.First(&reloaded, entry.ID).Error)
	assert.Equal(t, models.WaitlistOpen, reloaded.Status)
}

func TestPromoteConvertsWholeEntry(t *testing.T) {
	db := newTestDB(t)
	w := seedWorld(t, db, 2)
	seedRule(t, db, w.loc.ID, models.ServiceBoarding, 2)

	start := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	entry := seedOpenEntry(t, w, start, start)
	svc := NewWaitlistService(db, NewCapacityService(db), NewSettingsService(db))

	created, err := svc.Promote(entry.ID, nil)
	require.NoError(t, err)
	require.Len(t, created, 2)
	for _, r := range created {
		assert.Equal(t, models.StatusConfirmed, r.Status)
		assert.Equal(t, created[0].OfferID, r.OfferID)
	}

	var reloaded models.WaitlistEntry
	require.NoError(t, db.First(&reloaded, entry.ID).Error)
	assert.Equal(t, models.WaitlistConverted, reloaded.Status)
	ids, err := models.DecodeIDs(reloaded.ConvertedReservationIDs)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	_, err = svc.Promote(entry.ID, nil)
	assert.ErrorIs(t, err, ErrEntryNotOpen)
}

func TestLogNotifierNeverFails(t *testing.T) {
	err := LogNotifier{}.NotifyOffer(OfferNotification{
		Method:      "email",
		Destination: "owner@example.com",
		ServiceType: "boarding",
		StartDate:   "2026-07-01",
		EndDate:     "2026-07-04",
		HoldMinutes: 240,
	})
	assert.NoError(t, err)
}
