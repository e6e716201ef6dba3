package models

import (
	"testing"
	"time"
)

func TestConfirmationTokenExpiry(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	token := ConfirmationToken{ExpiresAt: now.Add(5 * time.Minute)}

	if token.Expired(now) {
		t.Error("token must be live before expires_at")
	}
	// boundary: expires_at itself is already expired
	if !token.Expired(now.Add(5 * time.Minute)) {
		t.Error("token must be expired at expires_at")
	}
	if !token.Expired(now.Add(10 * time.Minute)) {
		t.Error("token must be expired after expires_at")
	}

	if token.Consumed() {
		t.Error("fresh token must not be consumed")
	}
	token.ConsumedAt = &now
	if !token.Consumed() {
		t.Error("token with consumed_at set must report consumed")
	}
}
