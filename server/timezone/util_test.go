package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimezone(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		loc, err := ParseTimezone("")
		require.NoError(t, err)
		assert.Equal(t, UTC, loc)
	})

	t.Run("Valid", func(t *testing.T) {
		loc, err := ParseTimezone("Asia/Shanghai")
		require.NoError(t, err)
		assert.Equal(t, "Asia/Shanghai", loc.String())
	})

	t.Run("Invalid", func(t *testing.T) {
		loc, err := ParseTimezone("Not/AZone")
		assert.Error(t, err)
		assert.Equal(t, UTC, loc)
	})
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2025, 6, 15, 18, 42, 7, 0, time.UTC)

	t.Run("UTC", func(t *testing.T) {
		got := StartOfDay(ts, UTC)
		assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("CrossesDateLine", func(t *testing.T) {
		tokyo := MustParseTimezone("Asia/Tokyo")
		got := StartOfDay(ts, tokyo)
		// 18:42 UTC is already June 16 in Tokyo.
		assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, tokyo), got)
	})

	t.Run("NilLocationDefaultsToUTC", func(t *testing.T) {
		got := StartOfDay(ts, nil)
		assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), got)
	})
}

func TestDaysAgo(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	got := DaysAgo(ts, 2, UTC)
	assert.Equal(t, time.Date(2025, 2, 27, 0, 0, 0, 0, time.UTC), got)
}

func TestSameDate(t *testing.T) {
	a := time.Date(2025, 6, 15, 1, 0, 0, 0, time.UTC)
	b := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)
	assert.True(t, SameDate(a, b, UTC))
	assert.False(t, SameDate(a, b.AddDate(0, 0, 1), UTC))
}
