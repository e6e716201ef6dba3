// controllers/respond.go
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"kennel-backend/services"

	"github.com/gin-gonic/gin"
)

// apiError writes the structured error envelope used across the API.
func apiError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Everything in the taxonomy is an expected 4xx; anything unknown is a 500.
func respondServiceError(c *gin.Context, err error) {
	msg := err.Error()

	switch {
	case errors.Is(err, services.ErrNotFound):
		apiError(c, http.StatusNotFound, "error.notFound", msg)
	case errors.Is(err, services.ErrCapacityUnavailable):
		apiError(c, http.StatusConflict, "error.capacityUnavailable", msg)
	case errors.Is(err, services.ErrWaitlistNotEligible):
		apiError(c, http.StatusBadRequest, "error.waitlistNotEligible", msg)
	case errors.Is(err, services.ErrWaitlistFull):
		apiError(c, http.StatusConflict, "error.waitlistFull", msg)
	case errors.Is(err, services.ErrDuplicateOpenEntry):
		apiError(c, http.StatusConflict, "error.duplicateOpenEntry", msg)
	case errors.Is(err, services.ErrInvalidTransition):
		apiError(c, http.StatusConflict, "error.invalidTransition", msg)
	case errors.Is(err, services.ErrEntryNotOpen):
		apiError(c, http.StatusConflict, "error.entryNotOpen", msg)
	case errors.Is(err, services.ErrMembershipLocked):
		apiError(c, http.StatusConflict, "error.membershipLocked", msg)
	case errors.Is(err, services.ErrTokenInvalid):
		apiError(c, http.StatusUnauthorized, "error.tokenInvalid", msg)
	case errors.Is(err, services.ErrTokenExpired):
		apiError(c, http.StatusGone, "error.tokenExpired", msg)
	case errors.Is(err, services.ErrTokenConsumed):
		apiError(c, http.StatusConflict, "error.tokenConsumed", msg)
	case strings.HasPrefix(msg, "validation:"):
		apiError(c, http.StatusBadRequest, "error.validation", msg)
	default:
		apiError(c, http.StatusInternalServerError, "error.internal", msg)
	}
}
