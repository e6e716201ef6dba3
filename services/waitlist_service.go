// services/waitlist_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"kennel-backend/models"
	"kennel-backend/utils"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WaitlistService owns the waitlist entry lifecycle and the manager
// promotion shortcut. Entry creation is only legal when the gate reports
// the requested window genuinely full.
type WaitlistService struct {
	DB       *gorm.DB
	Capacity *CapacityService
	Settings *SettingsService
}

func NewWaitlistService(db *gorm.DB, capacity *CapacityService, settings *SettingsService) *WaitlistService {
	return &WaitlistService{DB: db, Capacity: capacity, Settings: settings}
}

// CreateEntryInput is the create payload after controller validation.
type CreateEntryInput struct {
	OwnerID     uint
	LocationID  uint
	ServiceType string
	PetIDs      []uint
	StartDate   time.Time
	EndDate     time.Time
	Priority    int
	Notes       string
}

// EntryPatch carries the manager-editable fields. Nil means "leave as is".
type EntryPatch struct {
	Priority *int
	Notes    *string
	Status   *models.WaitlistStatus
	PetIDs   []uint
}

// EntryFilter narrows List.
type EntryFilter struct {
	LocationID  uint
	ServiceType string
	Status      models.WaitlistStatus
	From        *time.Time
	To          *time.Time
}

func isDuplicateKeyErr(err error) bool {
	var myErr *mysqldrv.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	lc := strings.ToLower(err.Error())
	return strings.Contains(lc, "duplicate") || strings.Contains(lc, "unique")
}

// Create registers deferred demand. Fails with ErrWaitlistNotEligible when
// the gate still admits the requested window, ErrWaitlistFull when the
// rule caps open entries, and ErrDuplicateOpenEntry when an open entry for
// the same (owner, service, span) already exists.
func (s *WaitlistService) Create(in CreateEntryInput) (*models.WaitlistEntry, error) {
	if !models.ValidServiceType(in.ServiceType) {
		return nil, fmt.Errorf("validation: unknown service type %q", in.ServiceType)
	}
	if len(in.PetIDs) == 0 {
		return nil, fmt.Errorf("validation: at least one pet required")
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, fmt.Errorf("validation: start_date after end_date")
	}

	var owner models.Owner
	if err := s.DB.First(&owner, in.OwnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: owner %d", ErrNotFound, in.OwnerID)
		}
		return nil, fmt.Errorf("db error checking owner: %w", err)
	}
	var petCount int64
	if err := s.DB.Model(&models.Pet{}).
		Where("id IN ? AND owner_id = ?", in.PetIDs, in.OwnerID).
		Count(&petCount).Error; err != nil {
		return nil, fmt.Errorf("db error checking pets: %w", err)
	}
	if petCount != int64(len(in.PetIDs)) {
		return nil, fmt.Errorf("%w: one or more pets not found for owner %d", ErrNotFound, in.OwnerID)
	}

	// The waitlist is only for genuinely oversubscribed windows.
	ok, err := s.Capacity.CanAdmit(in.LocationID, in.ServiceType, in.StartDate, in.EndDate.Add(24*time.Hour), nil)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, fmt.Errorf("%w: capacity is still available for the requested range", ErrWaitlistNotEligible)
	}

	// Optional cap on the list itself.
	rule, err := s.Capacity.Rule(in.LocationID, in.ServiceType)
	if err != nil {
		return nil, err
	}
	if rule != nil && rule.WaitlistLimit != nil {
		var openCount int64
		if err := s.DB.Model(&models.WaitlistEntry{}).
			Where("location_id = ? AND service_type = ? AND status = ?", in.LocationID, in.ServiceType, models.WaitlistOpen).
			Count(&openCount).Error; err != nil {
			return nil, fmt.Errorf("failed to count open entries: %w", err)
		}
		if openCount >= int64(*rule.WaitlistLimit) {
			return nil, fmt.Errorf("%w: open entries at limit (%d)", ErrWaitlistFull, *rule.WaitlistLimit)
		}
	}

	entry := models.WaitlistEntry{
		OwnerID:     in.OwnerID,
		LocationID:  in.LocationID,
		ServiceType: in.ServiceType,
		Status:      models.WaitlistOpen,
		Priority:    in.Priority,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		PetIDs:      models.EncodeIDs(in.PetIDs),
		Notes:       in.Notes,
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		// uniq_open_entry: one open entry per (owner, service, span)
		if isDuplicateKeyErr(err) {
			return nil, fmt.Errorf("%w: owner %d already has an open entry for this span", ErrDuplicateOpenEntry, in.OwnerID)
		}
		return nil, fmt.Errorf("failed to create waitlist entry: %w", err)
	}
	return &entry, nil
}

// Get loads one entry with its owner and location.
func (s *WaitlistService) Get(id uint) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	if err := s.DB.Preload("Owner").Preload("Location").First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: waitlist entry %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load waitlist entry: %w", err)
	}
	return &entry, nil
}

// List pages entries in serving order (priority desc, then FIFO) behind an
// opaque keyset cursor, so pages stay stable under concurrent inserts.
func (s *WaitlistService) List(f EntryFilter, cursor string, limit int) ([]models.WaitlistEntry, string, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	q := s.DB.Model(&models.WaitlistEntry{}).
		Order("priority DESC").Order("created_at ASC").Order("id ASC").
		Limit(limit + 1)

	if f.LocationID != 0 {
		q = q.Where("location_id = ?", f.LocationID)
	}
	if f.ServiceType != "" {
		q = q.Where("service_type = ?", f.ServiceType)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil && f.To != nil {
		q = q.Where("start_date <= ? AND end_date >= ?", *f.To, *f.From)
	}

	if cursor != "" {
		pos, err := utils.DecodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("validation: bad cursor: %w", err)
		}
		q = q.Where(
			"(priority < ?) OR (priority = ? AND created_at > ?) OR (priority = ? AND created_at = ? AND id > ?)",
			pos.Priority, pos.Priority, pos.CreatedAt, pos.Priority, pos.CreatedAt, pos.ID,
		)
	}

	var entries []models.WaitlistEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, "", fmt.Errorf("failed to list waitlist entries: %w", err)
	}

	next := ""
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		next = utils.EncodeCursor(utils.CursorPos{
			Priority:  last.Priority,
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return entries, next, nil
}

// Update applies a manager patch. Membership is editable only while the
// entry is still open; the only status change allowed here is a manual
// cancel of a non-terminal entry.
func (s *WaitlistService) Update(id uint, patch EntryPatch) (*models.WaitlistEntry, error) {
	var result models.WaitlistEntry
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var entry models.WaitlistEntry
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&entry, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: waitlist entry %d", ErrNotFound, id)
			}
			return err
		}

		if patch.PetIDs != nil {
			if entry.Status != models.WaitlistOpen {
				return fmt.Errorf("%w: entry %d is %s", ErrMembershipLocked, entry.ID, entry.Status)
			}
			if len(patch.PetIDs) == 0 {
				return fmt.Errorf("validation: membership cannot be emptied")
			}
			entry.PetIDs = models.EncodeIDs(patch.PetIDs)
		}
		if patch.Priority != nil {
			entry.Priority = *patch.Priority
		}
		if patch.Notes != nil {
			entry.Notes = *patch.Notes
		}
		if patch.Status != nil {
			if *patch.Status != models.WaitlistCanceled {
				return fmt.Errorf("%w: only cancellation is allowed via update", ErrInvalidTransition)
			}
			if entry.Status.Terminal() {
				return fmt.Errorf("%w: entry %d already %s", ErrInvalidTransition, entry.ID, entry.Status)
			}
			if err := s.cancelEntryTx(tx, &entry); err != nil {
				return err
			}
		}

		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("failed to update waitlist entry: %w", err)
		}
		result = entry
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &result, nil
}

// cancelEntryTx cancels the entry plus any provisional reservations and
// token left from an in-flight offer.
func (s *WaitlistService) cancelEntryTx(tx *gorm.DB, entry *models.WaitlistEntry) error {
	hadOffer := entry.Status == models.WaitlistOffered
	entry.Status = models.WaitlistCanceled

	if hadOffer {
		if err := tx.Model(&models.Reservation{}).
			Where("entry_id = ? AND status IN ?", entry.ID,
				[]models.ReservationStatus{models.StatusPendingConfirmation, models.StatusOfferedFromWaitlist}).
			Update("status", models.StatusCanceled).Error; err != nil {
			return fmt.Errorf("failed to cancel offered reservations: %w", err)
		}
		now := time.Now().UTC()
		if err := tx.Model(&models.ConfirmationToken{}).
			Where("entry_id = ? AND consumed_at IS NULL", entry.ID).
			Update("expires_at", now).Error; err != nil {
			return fmt.Errorf("failed to invalidate token: %w", err)
		}
	}
	return nil
}

// Promote converts an open entry straight to reservations, skipping the
// offer/hold round-trip. Each pet's slot re-checks the gate inside one
// transaction; any miss rolls back the whole promotion.
func (s *WaitlistService) Promote(id uint, lodgingTypeID *uint) ([]models.Reservation, error) {
	targetStatus := models.StatusConfirmed
	if setting, err := s.Settings.Get(); err == nil {
		if st := models.ReservationStatus(setting.PromotionStatus); st == models.StatusAccepted || st == models.StatusConfirmed {
			targetStatus = st
		}
	}

	if lodgingTypeID != nil {
		var lt models.LodgingType
		if err := s.DB.First(&lt, *lodgingTypeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: lodging type %d", ErrNotFound, *lodgingTypeID)
			}
			return nil, fmt.Errorf("db error checking lodging type: %w", err)
		}
	}

	var created []models.Reservation
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var entry models.WaitlistEntry
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&entry, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: waitlist entry %d", ErrNotFound, id)
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

		start, end := entry.StartDate, entry.EndDate.Add(24*time.Hour)
		offerID := uuid.NewString()

		created = created[:0]
		for _, petID := range petIDs {
			// Rows created earlier in this loop are visible to the count,
			// so a k-pet promotion needs k free slots, not one.
			ok, gateErr := s.Capacity.canAdmitTx(tx, entry.LocationID, entry.ServiceType, start, end, nil)
			if gateErr != nil {
				return gateErr
			}
			if !ok {
				return fmt.Errorf("%w: no free slot for pet %d", ErrCapacityUnavailable, petID)
			}

			r := models.Reservation{
				LocationID:    entry.LocationID,
				PetID:         petID,
				ServiceType:   entry.ServiceType,
				Status:        targetStatus,
				StartAt:       start,
				EndAt:         end,
				OfferID:       offerID,
				EntryID:       &entry.ID,
				LodgingTypeID: lodgingTypeID,
			}
			if err := tx.Create(&r).Error; err != nil {
				return fmt.Errorf("failed to create promoted reservation: %w", err)
			}
			created = append(created, r)
		}

		ids := make([]uint, 0, len(created))
		for _, r := range created {
			ids = append(ids, r.ID)
		}
		entry.Status = models.WaitlistConverted
		entry.ConvertedReservationIDs = models.EncodeIDs(ids)
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("failed to convert entry %d: %w", entry.ID, err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return created, nil
}
