// services/capacity_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"kennel-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CapacityService is the single admission authority: every path that
// creates or promotes a reservation into an active status asks it first.
type CapacityService struct {
	DB *gorm.DB
}

func NewCapacityService(db *gorm.DB) *CapacityService {
	return &CapacityService{DB: db}
}

// Rule returns the capacity rule for (location, serviceType), or nil when
// none is configured (meaning: unlimited).
func (s *CapacityService) Rule(locationID uint, serviceType string) (*models.CapacityRule, error) {
	return s.ruleTx(s.DB, locationID, serviceType)
}

func (s *CapacityService) ruleTx(tx *gorm.DB, locationID uint, serviceType string) (*models.CapacityRule, error) {
	var rule models.CapacityRule
	err := tx.Where("location_id = ? AND service_type = ?", locationID, serviceType).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load capacity rule: %w", err)
	}
	return &rule, nil
}

// ListRules returns all configured rules, optionally scoped to a location.
func (s *CapacityService) ListRules(locationID uint) ([]models.CapacityRule, error) {
	var rules []models.CapacityRule
	q := s.DB.Order("location_id, service_type")
	if locationID != 0 {
		q = q.Where("location_id = ?", locationID)
	}
	if err := q.Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to list capacity rules: %w", err)
	}
	return rules, nil
}

// UpsertRule creates or updates the rule for (location, serviceType).
// Staff configuration path; the gate itself never writes rules.
func (s *CapacityService) UpsertRule(locationID uint, serviceType string, maxActive int, waitlistLimit *int) (*models.CapacityRule, error) {
	if !models.ValidServiceType(serviceType) {
		return nil, fmt.Errorf("%w: unknown service type %q", ErrNotFound, serviceType)
	}
	if maxActive < 0 {
		return nil, fmt.Errorf("validation: max_active must be >= 0")
	}

	var rule models.CapacityRule
	err := s.DB.Where("location_id = ? AND service_type = ?", locationID, serviceType).First(&rule).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rule = models.CapacityRule{
			LocationID:    locationID,
			ServiceType:   serviceType,
			MaxActive:     maxActive,
			WaitlistLimit: waitlistLimit,
		}
		if cErr := s.DB.Create(&rule).Error; cErr != nil {
			return nil, fmt.Errorf("failed to create capacity rule: %w", cErr)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to load capacity rule: %w", err)
	default:
		rule.MaxActive = maxActive
		rule.WaitlistLimit = waitlistLimit
		if uErr := s.DB.Save(&rule).Error; uErr != nil {
			return nil, fmt.Errorf("failed to update capacity rule: %w", uErr)
		}
	}
	return &rule, nil
}

// ActiveCount counts reservations at (location, serviceType) in an active
// status whose [start_at, end_at) interval overlaps [start, end),
// excluding the given reservation ids.
func (s *CapacityService) ActiveCount(locationID uint, serviceType string, start, end time.Time, excluding []uint) (int64, error) {
	return s.activeCountTx(s.DB, locationID, serviceType, start, end, excluding)
}

func (s *CapacityService) activeCountTx(tx *gorm.DB, locationID uint, serviceType string, start, end time.Time, excluding []uint) (int64, error) {
	var count int64
	q := tx.Model(&models.Reservation{}).
		Where("location_id = ? AND service_type = ?", locationID, serviceType).
		Where("status IN ?", models.ActiveReservationStatuses).
		Where("start_at < ? AND end_at > ?", end, start)
	if len(excluding) > 0 {
		q = q.Where("id NOT IN ?", excluding)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count active reservations: %w", err)
	}
	return count, nil
}

// CanAdmit reports whether one more reservation over [start, end) fits
// under the configured max_active. No rule means unlimited.
func (s *CapacityService) CanAdmit(locationID uint, serviceType string, start, end time.Time, excluding []uint) (bool, error) {
	return s.canAdmitTx(s.DB, locationID, serviceType, start, end, excluding)
}

// canAdmitTx is the in-transaction variant so callers holding row locks
// count uncommitted rows they created themselves. The rule row is locked
// FOR UPDATE first: it is the serialization point for its (location,
// service) pool, so two count-then-insert transactions racing for the last
// slot queue up behind each other instead of both admitting.
func (s *CapacityService) canAdmitTx(tx *gorm.DB, locationID uint, serviceType string, start, end time.Time, excluding []uint) (bool, error) {
	if !start.Before(end) {
		return false, fmt.Errorf("validation: start must be before end")
	}

	var rule models.CapacityRule
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("location_id = ? AND service_type = ?", locationID, serviceType).
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No rule means unlimited; nothing to serialize on.
			return true, nil
		}
		return false, fmt.Errorf("failed to load capacity rule: %w", err)
	}

	count, err := s.activeCountTx(tx, locationID, serviceType, start, end, excluding)
	if err != nil {
		return false, err
	}
	return count < int64(rule.MaxActive), nil
}
