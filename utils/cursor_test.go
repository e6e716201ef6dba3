package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	pos := CursorPos{
		Priority:  -3,
		CreatedAt: time.Date(2026, 8, 15, 9, 30, 0, 123456789, time.UTC),
		ID:        4211,
	}

	cursor := EncodeCursor(pos)
	require.NotEmpty(t, cursor)

	decoded, err := DecodeCursor(cursor)
	require.NoError(t, err)
	assert.Equal(t, pos.Priority, decoded.Priority)
	assert.Equal(t, pos.ID, decoded.ID)
	assert.True(t, pos.CreatedAt.Equal(decoded.CreatedAt))
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("not base64 at all!!!")
	assert.Error(t, err)

	// valid base64, wrong shape
	_, err = DecodeCursor("aGVsbG8gd29ybGQ")
	assert.Error(t, err)
}
