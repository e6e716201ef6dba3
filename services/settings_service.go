// services/settings_service.go
package services

import (
	"errors"
	"fmt"

	"kennel-backend/models"

	"gorm.io/gorm"
)

// SettingsService reads the single account settings row. The offer and
// promotion paths consume it; account administration owns it.
type SettingsService struct {
	DB *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{DB: db}
}

func (s *SettingsService) Get() (*models.AccountSetting, error) {
	var setting models.AccountSetting
	if err := s.DB.Order("id ASC").First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No row yet: fall back to defaults rather than failing reads.
			return &models.AccountSetting{
				DefaultHoldMinutes: 240,
				ReminderLeadHours:  2,
				PromotionStatus:    string(models.StatusConfirmed),
			}, nil
		}
		return nil, fmt.Errorf("failed to load account settings: %w", err)
	}
	return &setting, nil
}

func (s *SettingsService) Update(defaultHoldMinutes, reminderLeadHours int, promotionStatus string) (*models.AccountSetting, error) {
	if defaultHoldMinutes <= 0 {
		return nil, fmt.Errorf("validation: default_hold_minutes must be positive")
	}
	if reminderLeadHours < 0 {
		return nil, fmt.Errorf("validation: reminder_lead_hours must be >= 0")
	}
	if st := models.ReservationStatus(promotionStatus); st != models.StatusAccepted && st != models.StatusConfirmed {
		return nil, fmt.Errorf("validation: promotion_status must be accepted or confirmed")
	}

	var setting models.AccountSetting
	err := s.DB.Order("id ASC").First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = models.AccountSetting{}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load account settings: %w", err)
	}

	setting.DefaultHoldMinutes = defaultHoldMinutes
	setting.ReminderLeadHours = reminderLeadHours
	setting.PromotionStatus = promotionStatus
	if err := s.DB.Save(&setting).Error; err != nil {
		return nil, fmt.Errorf("failed to save account settings: %w", err)
	}
	return &setting, nil
}
