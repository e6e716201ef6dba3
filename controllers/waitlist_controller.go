// controllers/waitlist_controller.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"kennel-backend/models"
	"kennel-backend/services"
	"kennel-backend/utils"

	"github.com/gin-gonic/gin"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type CreateWaitlistRequest struct {
	OwnerID     uint   `json:"owner_id" binding:"required"`
	LocationID  uint   `json:"location_id" binding:"required"`
	ServiceType string `json:"service_type" binding:"required"`
	PetIDs      []uint `json:"pet_ids" binding:"required"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	Priority    int    `json:"priority"`
	Notes       string `json:"notes"`
}

type UpdateWaitlistRequest struct {
	Priority *int    `json:"priority"`
	Notes    *string `json:"notes"`
	Status   *string `json:"status"`
	PetIDs   []uint  `json:"pet_ids"`
}

type OfferWaitlistRequest struct {
	HoldMinutes int    `json:"hold_minutes"`
	Method      string `json:"method"`
	Destination string `json:"destination"`
}

type PromoteWaitlistRequest struct {
	LodgingTypeID *uint `json:"lodging_type_id"`
}

// ---------------------------
// Controller
// ---------------------------

type WaitlistController struct {
	WaitlistSvc *services.WaitlistService
	OfferSvc    *services.OfferService
}

func NewWaitlistController(wsvc *services.WaitlistService, osvc *services.OfferService) *WaitlistController {
	return &WaitlistController{WaitlistSvc: wsvc, OfferSvc: osvc}
}

// CreateWaitlistEntry registers deferred demand; 400 when capacity is not
// actually exhausted, 409 on a duplicate open entry.
func (ctrl *WaitlistController) CreateWaitlistEntry(c *gin.Context) {
	var req CreateWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "error.invalidPayload", "owner_id, location_id, service_type, pet_ids, start_date and end_date are required")
		return
	}

	start, ok := parseWhen(req.StartDate)
	if !ok {
		apiError(c, http.StatusBadRequest, "error.invalidPayload", "start_date must be YYYY-MM-DD")
		return
	}
	end, ok := parseWhen(req.EndDate)
	if !ok {
		apiError(c, http.StatusBadRequest, "error.invalidPayload", "end_date must be YYYY-MM-DD")
		return
	}

	entry, err := ctrl.WaitlistSvc.Create(services.CreateEntryInput{
		OwnerID:     req.OwnerID,
		LocationID:  req.LocationID,
		ServiceType: req.ServiceType,
		PetIDs:      req.PetIDs,
		StartDate:   start,
		EndDate:     end,
		Priority:    req.Priority,
		Notes:       req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": entry})
}

func (ctrl *WaitlistController) GetWaitlistEntry(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	entry, err := ctrl.WaitlistSvc.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": entry})
}

// GetWaitlistEntries lists in serving order behind an opaque cursor.
func (ctrl *WaitlistController) GetWaitlistEntries(c *gin.Context) {
	var f services.EntryFilter

	if raw := c.Query("location_id"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 64); err == nil {
			f.LocationID = uint(v)
		}
	}
	f.ServiceType = c.Query("service_type")
	f.Status = models.WaitlistStatus(c.Query("status"))
	if f.Status != "" && !f.Status.Valid() {
		apiError(c, http.StatusBadRequest, "error.invalidPayload", "unknown status filter")
		return
	}
	if fromRaw, toRaw := c.Query("from"), c.Query("to"); fromRaw != "" && toRaw != "" {
		from, okFrom := parseWhen(fromRaw)
		to, okTo := parseWhen(toRaw)
		if !okFrom || !okTo {
			apiError(c, http.StatusBadRequest, "error.invalidPayload", "from/to must be YYYY-MM-DD")
			return
		}
		f.From, f.To = &from, &to
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	entries, next, err := ctrl.WaitlistSvc.List(f, c.Query("cursor"), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"data":        entries,
		"next_cursor": next,
	})
}

// UpdateWaitlistEntry is the manager patch: notes, priority, manual cancel;
// membership only while the entry is still open.
func (ctrl *WaitlistController) UpdateWaitlistEntry(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "error.invalidPayload", "invalid patch body")
		return
	}

	patch := services.EntryPatch{
		Priority: req.Priority,
		Notes:    req.Notes,
		PetIDs:   req.PetIDs,
	}
	if req.Status != nil {
		st := models.WaitlistStatus(*req.Status)
		if !st.Valid() {
			apiError(c, http.StatusBadRequest, "error.invalidPayload", "unknown status")
			return
		}
		patch.Status = &st
	}

	entry, err := ctrl.WaitlistSvc.Update(id, patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": entry})
}

// OfferWaitlistEntry holds capacity for the entry and returns the token so
// the caller can build the confirmation link.
func (ctrl *WaitlistController) OfferWaitlistEntry(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req OfferWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "error.invalidPayload", "invalid offer body")
		return
	}

	result, err := ctrl.OfferSvc.Offer(id, req.HoldMinutes, req.Method, req.Destination)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	ids := make([]uint, 0, len(result.Reservations))
	for _, r := range result.Reservations {
		ids = append(ids, r.ID)
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data": gin.H{
			"entry_id":        result.Entry.ID,
			"reservation_ids": ids,
			"token":           result.Token,
			"expires_at":      result.ExpiresAt,
			"confirm_link": utils.BuildConfirmLink(
				utils.EnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
				ids[0],
				result.Token,
			),
			"notification": result.NotifyDispatch,
		},
	})
}

// PromoteWaitlistEntry converts the entry straight to reservations.
func (ctrl *WaitlistController) PromoteWaitlistEntry(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req PromoteWaitlistRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apiError(c, http.StatusBadRequest, "error.invalidPayload", "invalid promote body")
			return
		}
	}

	reservations, err := ctrl.WaitlistSvc.Promote(id, req.LodgingTypeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": reservations})
}

// SweepWaitlist expires lapsed offers on demand and reports the count.
func (ctrl *WaitlistController) SweepWaitlist(c *gin.Context) {
	count, err := ctrl.OfferSvc.ExpireOffers(time.Now().UTC())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"expired": count}})
}
