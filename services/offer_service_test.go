// services/offer_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kennel-backend/models"
)

func newOfferHarness(t *testing.T, petCount, maxActive int) (*OfferService, testWorld, models.WaitlistEntry) {
	t.Helper()
	db := newTestDB(t)
	w := seedWorld(t, db, petCount)
	seedRule(t, db, w.loc.ID, models.ServiceBoarding, maxActive)

	start := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	entry := seedOpenEntry(t, w, start, start.AddDate(0, 0, 2))

	return NewOfferService(db, NewSettingsService(db), LogNotifier{}), w, entry
}

func TestOfferHoldsEverySibling(t *testing.T) {
	svc, w, entry := newOfferHarness(t, 2, 5)

	res, err := svc.Offer(entry.ID, 60, "email", "")
	require.NoError(t, err)

	require.Len(t, res.Reservations, 2)
	for _, r := range res.Reservations {
		assert.Equal(t, models.StatusPendingConfirmation, r.Status)
		assert.Equal(t, res.Reservations[0].OfferID, r.OfferID)
	}
	assert.Len(t, res.Token, 64)
	assert.Equal(t, models.SendSent, res.NotifyDispatch)

	var reloaded models.WaitlistEntry
	require.NoError(t, w.db.First(&reloaded, entry.ID).Error)
	assert.Equal(t, models.WaitlistOffered, reloaded.Status)
	require.NotNil(t, reloaded.ExpiresAt)

	offered, err := models.DecodeIDs(reloaded.OfferedReservationIDs)
	require.NoError(t, err)
	assert.Len(t, offered, 2)

	var tokens int64
	require.NoError(t, w.db.Model(&models.ConfirmationToken{}).Where("entry_id = ?", entry.ID).Count(&tokens).Error)
	assert.EqualValues(t, 1, tokens)

	// A second offer finds nothing open to hold.
	_, err = svc.Offer(entry.ID, 60, "email", "")
	assert.ErrorIs(t, err, ErrEntryNotOpen)
}

func TestConfirmIsGroupAtomicAndIdempotent(t *testing.T) {
	svc, w, entry := newOfferHarness(t, 2, 5)

	res, err := svc.Offer(entry.ID, 60, "email", "")
	require.NoError(t, err)

	first, err := svc.Confirm(res.Reservations[0].ID, res.Token)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, first.Status)

	// Confirming one sibling confirms the whole group.
	var siblings []models.Reservation
	require.NoError(t, w.db.Where("offer_id = ?", first.OfferID).Find(&siblings).Error)
	require.Len(t, siblings, 2)
	for _, r := range siblings {
		assert.Equal(t, models.StatusConfirmed, r.Status)
	}

	var reloaded models.WaitlistEntry
	require.NoError(t, w.db.First(&reloaded, entry.ID).Error)
	assert.Equal(t, models.WaitlistConverted, reloaded.Status)
	converted, err := models.DecodeIDs(reloaded.ConvertedReservationIDs)
	require.NoError(t, err)
	assert.Len(t, converted, 2)

	var token models.ConfirmationToken
	require.NoError(t, w.db.Where("entry_id = ?", entry.ID).First(&token).Error)
	assert.True(t, token.Consumed())

	// Replaying the same link is a success, not an error.
	again, err := svc.Confirm(res.Reservations[0].ID, res.Token)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, again.Status)

	// So is the sibling's link with the consumed token.
	other, err := svc.Confirm(res.Reservations[1].ID, res.Token)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, other.Status)

	_, err = svc.Confirm(res.Reservations[0].ID, "deadbeef")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSweepReleasesLapsedOffers(t *testing.T) {
	svc, w, entry := newOfferHarness(t, 2, 5)

	res, err := svc.Offer(entry.ID, 60, "email", "")
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, w.db.Model(&models.WaitlistEntry{}).Where("id = ?", entry.ID).Update("expires_at", past).Error)
	require.NoError(t, w.db.Model(&models.ConfirmationToken{}).Where("entry_id = ?", entry.ID).Update("expires_at", past).Error)

	count, err := svc.ExpireOffers(time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var reloaded models.WaitlistEntry
	require.NoError(t, w.db.First(&reloaded, entry.ID).Error)
	assert.Equal(t, models.WaitlistExpired, reloaded.Status)

	var siblings []models.Reservation
	require.NoError(t, w.db.Where("entry_id = ?", entry.ID).Find(&siblings).Error)
	require.Len(t, siblings, 2)
	for _, r := range siblings {
		assert.Equal(t, models.StatusCanceled, r.Status)
	}

	// A late click on the stale link is rejected, not re-confirmed.
	_, err = svc.Confirm(res.Reservations[0].ID, res.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	count, err = svc.ExpireOffers(time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
