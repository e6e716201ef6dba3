// services/reservation_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"kennel-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReservationService owns the reservation state machine. Creation and any
// transition into an active status consult the capacity gate; the
// offer/promotion paths write reservations themselves because they reserve
// the slot atomically inside their own transactions.
type ReservationService struct {
	DB       *gorm.DB
	Capacity *CapacityService
}

func NewReservationService(db *gorm.DB, capacity *CapacityService) *ReservationService {
	return &ReservationService{DB: db, Capacity: capacity}
}

// ReservationFilter narrows List.
type ReservationFilter struct {
	LocationID  uint
	ServiceType string
	Status      models.ReservationStatus
	From        *time.Time
	To          *time.Time
}

// Create books one pet directly (owner/staff request path). The new row
// starts in requested status; admission goes through the gate inside the
// same transaction so concurrent requests cannot both squeeze in.
func (s *ReservationService) Create(locationID, petID uint, serviceType string, start, end time.Time) (*models.Reservation, error) {
	if !models.ValidServiceType(serviceType) {
		return nil, fmt.Errorf("validation: unknown service type %q", serviceType)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("validation: start must be before end")
	}

	var pet models.Pet
	if err := s.DB.First(&pet, petID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: pet %d", ErrNotFound, petID)
		}
		return nil, fmt.Errorf("db error checking pet %d: %w", petID, err)
	}

	var created models.Reservation
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		ok, err := s.Capacity.canAdmitTx(tx, locationID, serviceType, start, end, nil)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s at location %d is full for the requested range", ErrCapacityUnavailable, serviceType, locationID)
		}

		created = models.Reservation{
			LocationID:  locationID,
			PetID:       petID,
			ServiceType: serviceType,
			Status:      models.StatusRequested,
			StartAt:     start,
			EndAt:       end,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &created, nil
}

// Get loads one reservation with its references.
func (s *ReservationService) Get(id uint) (*models.Reservation, error) {
	var r models.Reservation
	if err := s.DB.Preload("Pet").Preload("Location").First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: reservation %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}
	return &r, nil
}

// List returns reservations matching the filter, newest first.
func (s *ReservationService) List(f ReservationFilter) ([]models.Reservation, error) {
	q := s.DB.Model(&models.Reservation{}).Order("created_at DESC")
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
		q = q.Where("start_at < ? AND end_at > ?", *f.To, *f.From)
	}

	var list []models.Reservation
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return list, nil
}

// Transition moves a reservation to the target status, enforcing the
// transition table. Canceling a provisional reservation reflects back onto
// its waitlist entry.
func (s *ReservationService) Transition(id uint, to models.ReservationStatus) (*models.Reservation, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unrecognized status %q", ErrInvalidTransition, to)
	}

	var result models.Reservation
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var r models.Reservation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&r, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: reservation %d", ErrNotFound, id)
			}
			return err
		}

		if !models.CanTransition(r.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, to)
		}
		// Provisional rows confirm only through the token path.
		if to == models.StatusConfirmed && r.Status.Provisional() {
			return fmt.Errorf("%w: %s requires token confirmation", ErrInvalidTransition, r.Status)
		}

		wasProvisional := r.Status.Provisional()

		r.Status = to
		if err := tx.Save(&r).Error; err != nil {
			return fmt.Errorf("failed to update reservation status: %w", err)
		}

		if to == models.StatusCanceled && wasProvisional && r.EntryID != nil {
			if err := s.reflectCancelOnEntry(tx, &r); err != nil {
				return err
			}
		}

		result = r
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &result, nil
}

func (s *ReservationService) Accept(id uint) (*models.Reservation, error) {
	return s.Transition(id, models.StatusAccepted)
}

func (s *ReservationService) Confirm(id uint) (*models.Reservation, error) {
	return s.Transition(id, models.StatusConfirmed)
}

func (s *ReservationService) CheckIn(id uint) (*models.Reservation, error) {
	return s.Transition(id, models.StatusCheckedIn)
}

func (s *ReservationService) CheckOut(id uint) (*models.Reservation, error) {
	return s.Transition(id, models.StatusCheckedOut)
}

func (s *ReservationService) Cancel(id uint) (*models.Reservation, error) {
	return s.Transition(id, models.StatusCanceled)
}

// reflectCancelOnEntry handles direct cancellation of an offered
// reservation: once every sibling in the offer is canceled, the entry
// becomes canceled (not expired) and its token stops verifying.
func (s *ReservationService) reflectCancelOnEntry(tx *gorm.DB, r *models.Reservation) error {
	var remaining int64
	if err := tx.Model(&models.Reservation{}).
		Where("offer_id = ? AND status <> ?", r.OfferID, models.StatusCanceled).
		Count(&remaining).Error; err != nil {
		return fmt.Errorf("failed to count offer siblings: %w", err)
	}
	if remaining > 0 {
		return nil
	}

	var entry models.WaitlistEntry
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&entry, *r.EntryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if entry.Status.Terminal() {
		return nil
	}

	entry.Status = models.WaitlistCanceled
	if err := tx.Save(&entry).Error; err != nil {
		return fmt.Errorf("failed to cancel entry %d: %w", entry.ID, err)
	}

	// Invalidate the token immediately rather than deleting it.
	now := time.Now().UTC()
	if err := tx.Model(&models.ConfirmationToken{}).
		Where("offer_id = ? AND consumed_at IS NULL", r.OfferID).
		Update("expires_at", now).Error; err != nil {
		return fmt.Errorf("failed to invalidate token for offer %s: %w", r.OfferID, err)
	}
	return nil
}
