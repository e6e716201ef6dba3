// services/offer_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"kennel-backend/models"
	"kennel-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OfferService runs the offer/confirm protocol and the expiry sweep.
//
// An offer turns an open entry into provisional reservations (one per pet)
// plus a single time-boxed token. Confirming any sibling with the token
// confirms them all; letting the hold lapse hands the slots back via the
// sweep. Offer creation skips the capacity gate: the caller invokes it
// only once capacity has genuinely freed.
type OfferService struct {
	DB       *gorm.DB
	Settings *SettingsService
	Notifier Notifier
}

func NewOfferService(db *gorm.DB, settings *SettingsService, notifier Notifier) *OfferService {
	return &OfferService{DB: db, Settings: settings, Notifier: notifier}
}

// OfferResult is what the controller needs to build the confirmation link.
type OfferResult struct {
	Entry          *models.WaitlistEntry
	Reservations   []models.Reservation
	Token          string
	ExpiresAt      time.Time
	NotifyDispatch string // SENT / FAILED / PENDING
}

// Offer holds capacity for an open entry. holdMinutes <= 0 falls back to
// the account default. The notification goes out after commit and never
// rolls the offer back.
func (s *OfferService) Offer(entryID uint, holdMinutes int, method, destination string) (*OfferResult, error) {
	if holdMinutes <= 0 {
		setting, err := s.Settings.Get()
		if err != nil {
			return nil, err
		}
		holdMinutes = setting.DefaultHoldMinutes
	}
	if method == "" {
		method = "email"
	}

	now := time.Now().UTC()
	expiresAt := now.Add(time.Duration(holdMinutes) * time.Minute)

	var (
		result  OfferResult
		tokenID uint
	)
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var entry models.WaitlistEntry
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Owner").Preload("Location").
			First(&entry, entryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: waitlist entry %d", ErrNotFound, entryID)
			}
			return err
		}
		if entry.Status != models.WaitlistOpen {
			return fmt.Errorf("%w: entry %d is %s", ErrEntryNotOpen, entry.ID, entry.Status)
		}

		petIDs, err := entry.Pets()
		if err != nil {
			return err
		}
		if len(petIDs) == 0 {
			return fmt.Errorf("validation: entry %d has no pets", entry.ID)
		}

		if destination == "" {
			destination = entry.Owner.Email
		}

		offerID := uuid.NewString()
		start, end := entry.StartDate, entry.EndDate.Add(24*time.Hour)

		reservations := make([]models.Reservation, 0, len(petIDs))
		for _, petID := range petIDs {
			r := models.Reservation{
				LocationID:  entry.LocationID,
				PetID:       petID,
				ServiceType: entry.ServiceType,
				Status:      models.StatusPendingConfirmation,
				StartAt:     start,
				EndAt:       end,
				OfferID:     offerID,
				EntryID:     &entry.ID,
			}
			if err := tx.Create(&r).Error; err != nil {
				return fmt.Errorf("failed to create offered reservation: %w", err)
			}
			reservations = append(reservations, r)
		}

		// Mint the token with retries on the (unlikely) unique collision.
		var token models.ConfirmationToken
		var createErr error
		for attempt := 0; attempt < 5; attempt++ {
			value, gErr := utils.GenerateSecureToken(32)
			if gErr != nil {
				return fmt.Errorf("failed to generate token: %w", gErr)
			}
			token = models.ConfirmationToken{
				Token:      value,
				OfferID:    offerID,
				EntryID:    entry.ID,
				ExpiresAt:  expiresAt,
				SentVia:    method,
				SentTo:     destination,
				SendStatus: models.SendPending,
			}
			createErr = tx.Create(&token).Error
			if createErr == nil {
				break
			}
			lc := strings.ToLower(createErr.Error())
			if strings.Contains(lc, "duplicate") || strings.Contains(lc, "unique") {
				log.Printf("confirmation token collision (attempt %d) - retrying", attempt+1)
				continue
			}
			return fmt.Errorf("failed to create confirmation token: %w", createErr)
		}
		if createErr != nil {
			return fmt.Errorf("failed to create confirmation token after retries: %w", createErr)
		}

		ids := make([]uint, 0, len(reservations))
		for _, r := range reservations {
			ids = append(ids, r.ID)
		}
		entry.Status = models.WaitlistOffered
		entry.OfferedAt = &now
		entry.ExpiresAt = &expiresAt
		entry.OfferedReservationIDs = models.EncodeIDs(ids)
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("failed to mark entry offered: %w", err)
		}

		tokenID = token.ID
		result = OfferResult{
			Entry:        &entry,
			Reservations: reservations,
			Token:        token.Token,
			ExpiresAt:    expiresAt,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Best-effort dispatch, strictly after commit so a slow channel never
	// holds row locks. The token stays valid either way.
	result.NotifyDispatch = s.dispatch(&result, holdMinutes, method, destination, tokenID)
	return &result, nil
}

func (s *OfferService) dispatch(result *OfferResult, holdMinutes int, method, destination string, tokenID uint) string {
	entry := result.Entry
	link := utils.BuildConfirmLink(
		utils.EnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
		result.Reservations[0].ID,
		result.Token,
	)

	notifyErr := s.Notifier.NotifyOffer(OfferNotification{
		OwnerName:    entry.Owner.FullName,
		Destination:  destination,
		Method:       method,
		ServiceType:  entry.ServiceType,
		LocationName: entry.Location.Name,
		StartDate:    entry.StartDate.Format("2006-01-02"),
		EndDate:      entry.EndDate.Format("2006-01-02"),
		ConfirmLink:  link,
		HoldMinutes:  holdMinutes,
	})

	status := models.SendSent
	updates := map[string]interface{}{"send_status": models.SendSent}
	if notifyErr != nil {
		log.Printf("offer notification failed for entry %d: %v", entry.ID, notifyErr)
		status = models.SendFailed
		updates = map[string]interface{}{"send_status": models.SendFailed, "send_error": notifyErr.Error()}
	}
	if err := s.DB.Model(&models.ConfirmationToken{}).Where("id = ?", tokenID).Updates(updates).Error; err != nil {
		log.Printf("failed to record send status for token %d: %v", tokenID, err)
	}
	return status
}

// Confirm consumes a token against one of its reservations and confirms
// every sibling in the offer atomically. Re-confirming with the same token
// is idempotent.
func (s *OfferService) Confirm(reservationID uint, tokenValue string) (*models.Reservation, error) {
	if strings.TrimSpace(tokenValue) == "" {
		return nil, fmt.Errorf("%w: empty token", ErrTokenInvalid)
	}

	var result models.Reservation
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var token models.ConfirmationToken
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token = ?", tokenValue).
			First(&token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: unknown token", ErrTokenInvalid)
			}
			return err
		}

		// Entry first, then reservations: same lock order as the sweep.
		var entry models.WaitlistEntry
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&entry, token.EntryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: waitlist entry %d", ErrNotFound, token.EntryID)
			}
			return err
		}

		var r models.Reservation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&r, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
			}
			return err
		}
		if r.OfferID == "" || r.OfferID != token.OfferID {
			return fmt.Errorf("%w: reservation %d does not belong to this offer", ErrTokenInvalid, reservationID)
		}

		now := time.Now().UTC()

		// Idempotent path: the same token already confirmed this offer.
		if token.Consumed() {
			if r.Status == models.StatusConfirmed {
				result = r
				return nil
			}
			return fmt.Errorf("%w: token already used", ErrTokenConsumed)
		}

		if token.Expired(now) {
			return fmt.Errorf("%w: hold lapsed at %s", ErrTokenExpired, token.ExpiresAt.Format(time.RFC3339))
		}

		// Group-atomic confirm of every still-provisional sibling.
		var siblings []models.Reservation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("offer_id = ?", token.OfferID).
			Find(&siblings).Error; err != nil {
			return fmt.Errorf("failed to load offer siblings: %w", err)
		}

		confirmedIDs := make([]uint, 0, len(siblings))
		for i := range siblings {
			sib := &siblings[i]
			if sib.Status.Provisional() {
				sib.Status = models.StatusConfirmed
				if err := tx.Save(sib).Error; err != nil {
					return fmt.Errorf("failed to confirm reservation %d: %w", sib.ID, err)
				}
			}
			if sib.Status == models.StatusConfirmed {
				confirmedIDs = append(confirmedIDs, sib.ID)
			}
			if sib.ID == r.ID {
				r = *sib
			}
		}
		if len(confirmedIDs) == 0 {
			return fmt.Errorf("%w: no confirmable reservations left in offer", ErrTokenInvalid)
		}

		token.ConsumedAt = &now
		if err := tx.Save(&token).Error; err != nil {
			return fmt.Errorf("failed to consume token: %w", err)
		}

		entry.Status = models.WaitlistConverted
		entry.ConvertedReservationIDs = models.EncodeIDs(confirmedIDs)
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("failed to convert entry %d: %w", entry.ID, err)
		}

		result = r
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &result, nil
}

// ExpireOffers releases every offer whose hold has lapsed at now: its
// still-provisional reservations are canceled and the entry marked
// expired. Entries are processed independently so one failure cannot
// block the sweep; the return value counts entries actually expired.
// Safe to run concurrently with itself and with Confirm.
func (s *OfferService) ExpireOffers(now time.Time) (int, error) {
	var ids []uint
	if err := s.DB.Model(&models.WaitlistEntry{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", models.WaitlistOffered, now).
		Order("expires_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("failed to select expired offers: %w", err)
	}

	expired := 0
	for _, id := range ids {
		if err := s.expireOne(id, now); err != nil {
			log.Printf("sweep: skipping entry %d: %v", id, err)
			continue
		}
		expired++
	}
	return expired, nil
}

func (s *OfferService) expireOne(entryID uint, now time.Time) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var entry models.WaitlistEntry
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&entry, entryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		// A confirm (or cancel) may have landed between select and lock.
		if entry.Status != models.WaitlistOffered || entry.ExpiresAt == nil || entry.ExpiresAt.After(now) {
			return nil
		}

		if err := tx.Model(&models.Reservation{}).
			Where("entry_id = ? AND status IN ?", entry.ID,
				[]models.ReservationStatus{models.StatusPendingConfirmation, models.StatusOfferedFromWaitlist}).
			Update("status", models.StatusCanceled).Error; err != nil {
			return fmt.Errorf("failed to cancel offered reservations: %w", err)
		}

		entry.Status = models.WaitlistExpired
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("failed to expire entry: %w", err)
		}
		return nil
	})
}
