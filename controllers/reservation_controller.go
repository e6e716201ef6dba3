// controllers/reservation_controller.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"kennel-backend/models"
	"kennel-backend/services"

	"github.com/gin-gonic/gin"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type CreateReservationRequest struct {
	LocationID  uint   `json:"location_id" binding:"required"`
	PetID       uint   `json:"pet_id" binding:"required"`
	ServiceType string `json:"service_type" binding:"required"`
	StartAt     string `json:"start_at" binding:"required"`
	EndAt       string `json:"end_at" binding:"required"`
}

// ---------------------------
// Controller
// ---------------------------

type ReservationController struct {
	ReservationSvc *services.ReservationService
	OfferSvc       *services.OfferService
}

func NewReservationController(rsvc *services.ReservationService, osvc *services.OfferService) *ReservationController {
	return &ReservationController{ReservationSvc: rsvc, OfferSvc: osvc}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		apiError(c, http.StatusBadRequest, "error.invalidId", "id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// parseWhen accepts date-only or RFC3339 stamps, like the booking forms send.
func parseWhen(raw string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// CreateReservation books one pet directly; 409 when the gate refuses.
func (ctrl *ReservationController) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "error.invalidPayload", "location_id, pet_id, service_type, start_at and end_at are required")
		return
	}

	start, ok := parseWhen(req.StartAt)
	if !ok {
		apiError(c, http.StatusBadRequest, "error.invalidPayload", "start_at must be YYYY-MM-DD or RFC3339")
		return
	}
	end, ok := parseWhen(req.EndAt)
	if !ok {
		apiError(c, http.StatusBadRequest, "error.invalidPayload", "end_at must be YYYY-MM-DD or RFC3339")
		return
	}

	reservation, err := ctrl.ReservationSvc.Create(req.LocationID, req.PetID, req.ServiceType, start, end)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": reservation})
}

func (ctrl *ReservationController) GetReservation(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	reservation, err := ctrl.ReservationSvc.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": reservation})
}

func (ctrl *ReservationController) GetReservations(c *gin.Context) {
	var f services.ReservationFilter

	if raw := c.Query("location_id"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 64); err == nil {
			f.LocationID = uint(v)
		}
	}
	f.ServiceType = c.Query("service_type")
	f.Status = models.ReservationStatus(c.Query("status"))
	if f.Status != "" && !f.Status.Valid() {
		apiError(c, http.StatusBadRequest, "error.invalidPayload", "unknown status filter")
		return
	}
	if fromRaw, toRaw := c.Query("from"), c.Query("to"); fromRaw != "" && toRaw != "" {
		from, okFrom := parseWhen(fromRaw)
		to, okTo := parseWhen(toRaw)
		if !okFrom || !okTo {
			apiError(c, http.StatusBadRequest, "error.invalidPayload", "from/to must be YYYY-MM-DD or RFC3339")
			return
		}
		f.From, f.To = &from, &to
	}

	list, err := ctrl.ReservationSvc.List(f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": list})
}

// transition endpoints

func (ctrl *ReservationController) AcceptReservation(c *gin.Context) {
	ctrl.transition(c, ctrl.ReservationSvc.Accept)
}

func (ctrl *ReservationController) CheckInReservation(c *gin.Context) {
	ctrl.transition(c, ctrl.ReservationSvc.CheckIn)
}

func (ctrl *ReservationController) CheckOutReservation(c *gin.Context) {
	ctrl.transition(c, ctrl.ReservationSvc.CheckOut)
}

func (ctrl *ReservationController) CancelReservation(c *gin.Context) {
	ctrl.transition(c, ctrl.ReservationSvc.Cancel)
}

func (ctrl *ReservationController) transition(c *gin.Context, op func(uint) (*models.Reservation, error)) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	reservation, err := op(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": reservation})
}

// ConfirmReservation is the public, owner-facing confirm. Token comes from
// the query string; repeat calls with the same valid token succeed.
func (ctrl *ReservationController) ConfirmReservation(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	token := c.Query("token")
	if token == "" {
		apiError(c, http.StatusBadRequest, "error.invalidPayload", "token query parameter required")
		return
	}

	reservation, err := ctrl.OfferSvc.Confirm(id, token)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": reservation})
}
