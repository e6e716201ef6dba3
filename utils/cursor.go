package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// CursorPos is the keyset position of the last row on a page, in serving
// order (priority desc, created_at asc, id asc).
type CursorPos struct {
	Priority  int
	CreatedAt time.Time
	ID        uint
}

// EncodeCursor packs a position into an opaque URL-safe string.
func EncodeCursor(pos CursorPos) string {
	raw := fmt.Sprintf("%d|%d|%d", pos.Priority, pos.CreatedAt.UTC().UnixNano(), pos.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor is the inverse of EncodeCursor.
func DecodeCursor(cursor string) (CursorPos, error) {
	var pos CursorPos

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return pos, errors.New("cursor is not valid base64")
	}

	var nanos int64
	if _, err := fmt.Sscanf(string(raw), "%d|%d|%d", &pos.Priority, &nanos, &pos.ID); err != nil {
		return pos, errors.New("cursor is malformed")
	}
	pos.CreatedAt = time.Unix(0, nanos).UTC()
	return pos, nil
}
