// controllers/settings_controller.go
package controllers

import (
	"net/http"

	"kennel-backend/services"

	"github.com/gin-gonic/gin"
)

type UpdateSettingsRequest struct {
	DefaultHoldMinutes int    `json:"default_hold_minutes" binding:"required"`
	ReminderLeadHours  int    `json:"reminder_lead_hours"`
	PromotionStatus    string `json:"promotion_status" binding:"required"`
}

type SettingsController struct {
	SettingsSvc *services.SettingsService
}

func NewSettingsController(svc *services.SettingsService) *SettingsController {
	return &SettingsController{SettingsSvc: svc}
}

func (ctrl *SettingsController) GetAccountSettings(c *gin.Context) {
	setting, err := ctrl.SettingsSvc.Get()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": setting})
}

func (ctrl *SettingsController) UpdateAccountSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "error.invalidPayload", "default_hold_minutes and promotion_status are required")
		return
	}

	setting, err := ctrl.SettingsSvc.Update(req.DefaultHoldMinutes, req.ReminderLeadHours, req.PromotionStatus)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": setting})
}
