package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-4))
	assert.Equal(t, 10, NormalizeLimit(10))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
}

func TestCursorRoundTrip(t *testing.T) {
	want := Cursor{
		CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 123, time.FixedZone("BRT", -3*3600)),
		ID:        uuid.New(),
	}
	got, err := ParseCursor(EncodeCursor(want))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, want.ID, got.ID)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	got, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseCursor("!!!")
	assert.Error(t, err)

	_, err = ParseCursor(base64.RawURLEncoding.EncodeToString([]byte("no-separator")))
	assert.ErrorIs(t, err, errCursorFormat)

	_, err = ParseCursor(base64.RawURLEncoding.EncodeToString([]byte("yesterday|" + uuid.NewString())))
	assert.Error(t, err)
}
