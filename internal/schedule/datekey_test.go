package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateToKey(t *testing.T) {
	// 2025-10-01T23:30Z is already Oct 2 in Kyiv (UTC+3) and still Oct 1 in UTC.
	instant := time.Date(2025, 10, 1, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		timezone string
		want     string
	}{
		{"utc", "UTC", "2025-10-01"},
		{"east of utc rolls forward", "Europe/Kyiv", "2025-10-02"},
		{"west of utc stays", "America/New_York", "2025-10-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := DateToKey(instant, tt.timezone)
			require.NoError(t, err)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestDateToKeyInvalidTimezone(t *testing.T) {
	_, err := DateToKey(time.Now(), "Not/AZone")
	require.ErrorIs(t, err, ErrInvalidTimezone)
}

func TestKeyToInstantAnchorsLocalMidnight(t *testing.T) {
	instant, err := KeyToInstant("2025-10-01", "Europe/Kyiv")
	require.NoError(t, err)

	loc, err := time.LoadLocation("Europe/Kyiv")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, loc), instant)
}

func TestKeyToInstantInvalidInput(t *testing.T) {
	_, err := KeyToInstant("2025-10-01", "Nope/Nope")
	assert.ErrorIs(t, err, ErrInvalidTimezone)

	_, err = KeyToInstant("01.10.2025", "UTC")
	assert.ErrorIs(t, err, ErrInvalidDateKey)
}

func TestDateKeyRoundTrip(t *testing.T) {
	zones := []string{"UTC", "Europe/Kyiv", "America/New_York", "Asia/Tokyo", "Pacific/Auckland"}
	// Includes DST transition dates for the US and EU zones.
	keys := []string{"2025-01-01", "2025-03-09", "2025-03-30", "2025-10-26", "2025-11-02", "2025-12-31"}

	for _, tz := range zones {
		for _, key := range keys {
			instant, err := KeyToInstant(key, tz)
			require.NoError(t, err)
			got, err := DateToKey(instant, tz)
			require.NoError(t, err)
			assert.Equal(t, key, got, "round trip %s in %s", key, tz)
		}
	}
}
