package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeRangeExplicit(t *testing.T) {
	start, end, err := ParseTimeRange("2026-03-01T00:00:00Z", "2026-03-02T00:00:00Z", 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), end)
}

func TestParseTimeRangeDefaults(t *testing.T) {
	start, end, err := ParseTimeRange("", "", 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
	assert.WithinDuration(t, time.Now().UTC(), end, time.Minute)
}

func TestParseTimeRangeInvalid(t *testing.T) {
	_, _, err := ParseTimeRange("yesterday", "", time.Hour)
	assert.Error(t, err)

	_, _, err = ParseTimeRange("", "tomorrow", time.Hour)
	assert.Error(t, err)

	// start must precede end
	_, _, err = ParseTimeRange("2026-03-02T00:00:00Z", "2026-03-01T00:00:00Z", time.Hour)
	assert.Error(t, err)
}

func TestNewSessionIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewSessionID()
		require.NotEmpty(t, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
