package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
)

//
// ===========================================================
//  ENV UTILITIES
// ===========================================================
//

// EnvOrDefault returns ENV value or fallback default.
func EnvOrDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

//
// ===========================================================
//  TOKEN GENERATOR
// ===========================================================
//

// GenerateSecureToken returns a hex token (length = bytes of entropy).
func GenerateSecureToken(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("invalid token length")
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// BuildConfirmLink builds the owner-facing confirmation URL for an offer.
func BuildConfirmLink(frontendURL string, reservationID uint, token string) string {
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}
	frontendURL = strings.TrimRight(frontendURL, "/")
	return fmt.Sprintf("%s/confirm?reservation=%d&token=%s", frontendURL, reservationID, token)
}

//
// ===========================================================
//  EMAIL MASKING
// ===========================================================
//

// MaskEmail returns masked email for safe display in logs and responses.
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}
	local := parts[0]
	domain := parts[1]

	maskedLocal := local
	if len(local) > 2 {
		maskedLocal = local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:]
	} else if len(local) == 2 {
		maskedLocal = local[:1] + "*"
	}

	domainParts := strings.Split(domain, ".")
	if len(domainParts) >= 2 {
		if len(domainParts[0]) > 1 {
			domainParts[0] = domainParts[0][:1] + strings.Repeat("*", len(domainParts[0])-1)
		}
	}

	return maskedLocal + "@" + strings.Join(domainParts, ".")
}
