// controllers/capacity_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"kennel-backend/services"

	"github.com/gin-gonic/gin"
)

type UpsertCapacityRuleRequest struct {
	LocationID    uint   `json:"location_id" binding:"required"`
	ServiceType   string `json:"service_type" binding:"required"`
	MaxActive     *int   `json:"max_active" binding:"required"`
	WaitlistLimit *int   `json:"waitlist_limit"`
}

type CapacityController struct {
	CapacitySvc *services.CapacityService
}

func NewCapacityController(svc *services.CapacityService) *CapacityController {
	return &CapacityController{CapacitySvc: svc}
}

func (ctrl *CapacityController) GetCapacityRules(c *gin.Context) {
	var locationID uint
	if raw := c.Query("location_id"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 64); err == nil {
			locationID = uint(v)
		}
	}

	rules, err := ctrl.CapacitySvc.ListRules(locationID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": rules})
}

// UpsertCapacityRule is the staff configuration path (manager only).
func (ctrl *CapacityController) UpsertCapacityRule(c *gin.Context) {
	var req UpsertCapacityRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "error.invalidPayload", "location_id, service_type and max_active are required")
		return
	}

	rule, err := ctrl.CapacitySvc.UpsertRule(req.LocationID, req.ServiceType, *req.MaxActive, req.WaitlistLimit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": rule})
}

// CheckCapacity answers "would one more booking fit" for a window, useful
// for the booking form to decide between book and waitlist.
func (ctrl *CapacityController) CheckCapacity(c *gin.Context) {
	locationID, err := strconv.ParseUint(c.Query("location_id"), 10, 64)
	if err != nil || locationID == 0 {
		apiError(c, http.StatusBadRequest, "error.invalidPayload", "location_id is required")
		return
	}
	serviceType := c.Query("service_type")
	if serviceType == "" {
		apiError(c, http.StatusBadRequest, "error.invalidPayload", "service_type is required")
		return
	}
	start, okStart := parseWhen(c.Query("start"))
	end, okEnd := parseWhen(c.Query("end"))
	if !okStart || !okEnd {
		apiError(c, http.StatusBadRequest, "error.invalidPayload", "start/end must be YYYY-MM-DD or RFC3339")
		return
	}

	ok, err := ctrl.CapacitySvc.CanAdmit(uint(locationID), serviceType, start, end, nil)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	count, err := ctrl.CapacitySvc.ActiveCount(uint(locationID), serviceType, start, end, nil)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"can_admit":    ok,
			"active_count": count,
		},
	})
}
