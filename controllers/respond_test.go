// controllers/respond_test.go
package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"kennel-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondServiceErrorMapping(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{fmt.Errorf("%w: reservation 9", services.ErrNotFound), http.StatusNotFound, "error.notFound"},
		{fmt.Errorf("%w: boarding full", services.ErrCapacityUnavailable), http.StatusConflict, "error.capacityUnavailable"},
		{fmt.Errorf("%w: room available", services.ErrWaitlistNotEligible), http.StatusBadRequest, "error.waitlistNotEligible"},
		{fmt.Errorf("%w: cap 50", services.ErrWaitlistFull), http.StatusConflict, "error.waitlistFull"},
		{fmt.Errorf("%w: owner 3", services.ErrDuplicateOpenEntry), http.StatusConflict, "error.duplicateOpenEntry"},
		{fmt.Errorf("%w: checked_in -> requested", services.ErrInvalidTransition), http.StatusConflict, "error.invalidTransition"},
		{fmt.Errorf("%w: entry 4 is offered", services.ErrEntryNotOpen), http.StatusConflict, "error.entryNotOpen"},
		{fmt.Errorf("%w: entry 4", services.ErrMembershipLocked), http.StatusConflict, "error.membershipLocked"},
		{fmt.Errorf("%w: unknown token", services.ErrTokenInvalid), http.StatusUnauthorized, "error.tokenInvalid"},
		{fmt.Errorf("%w: lapsed", services.ErrTokenExpired), http.StatusGone, "error.tokenExpired"},
		{fmt.Errorf("%w: already used", services.ErrTokenConsumed), http.StatusConflict, "error.tokenConsumed"},
		{fmt.Errorf("validation: start after end"), http.StatusBadRequest, "error.validation"},
		{fmt.Errorf("driver: bad connection"), http.StatusInternalServerError, "error.internal"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondServiceError(c, tc.err)

		assert.Equal(t, tc.wantStatus, w.Code, "status for %v", tc.err)

		var body struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.wantCode, body.Error.Code, "code for %v", tc.err)
		assert.NotEmpty(t, body.Error.Message)
	}
}

func TestParseWhen(t *testing.T) {
	got, ok := parseWhen("2026-09-01")
	require.True(t, ok)
	assert.Equal(t, 2026, got.Year())
	assert.Equal(t, 9, int(got.Month()))

	got, ok = parseWhen("2026-09-01T08:30:00Z")
	require.True(t, ok)
	assert.Equal(t, 8, got.Hour())

	_, ok = parseWhen("September 1st")
	assert.False(t, ok)
}
