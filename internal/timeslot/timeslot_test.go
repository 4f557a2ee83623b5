package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid(t *testing.T) {
	slots := Grid(7, 24)
	require.Len(t, slots, 17)
	assert.Equal(t, "07:00-08:00", slots[0])
	assert.Equal(t, "23:00-00:00", slots[16])

	assert.Equal(t, []string{"09:00-10:00", "10:00-11:00"}, Grid(9, 11))
	assert.Nil(t, Grid(10, 10))
	assert.Nil(t, Grid(12, 7))
}

func TestStartTime(t *testing.T) {
	date := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)

	start, err := StartTime(date, "18:00-19:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 20, 18, 0, 0, 0, time.UTC), start)

	_, err = StartTime(date, "garbage")
	assert.Error(t, err)
}

func TestEndTimeWrapsAtMidnight(t *testing.T) {
	date := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)

	end, err := EndTime(date, "23:00-00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 21, 0, 0, 0, 0, time.UTC), end)

	end, err = EndTime(date, "18:00-19:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 20, 19, 0, 0, 0, time.UTC), end)
}

func TestStartsAfter(t *testing.T) {
	date := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		slot string
		now  time.Time
		want bool
	}{
		{"before start", "18:00-19:00", time.Date(2025, 10, 20, 17, 59, 0, 0, time.UTC), true},
		{"exactly at start", "18:00-19:00", time.Date(2025, 10, 20, 18, 0, 0, 0, time.UTC), false},
		{"after start", "18:00-19:00", time.Date(2025, 10, 20, 18, 1, 0, 0, time.UTC), false},
		{"previous day", "07:00-08:00", time.Date(2025, 10, 19, 23, 0, 0, 0, time.UTC), true},
		{"next day", "07:00-08:00", time.Date(2025, 10, 21, 1, 0, 0, 0, time.UTC), false},
		{"bad label", "oops", time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StartsAfter(date, tt.slot, tt.now))
		})
	}
}

func TestActive(t *testing.T) {
	date := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)

	// Still running counts as active.
	assert.True(t, Active(date, "18:00-19:00", time.Date(2025, 10, 20, 18, 30, 0, 0, time.UTC)))
	// Finished is not.
	assert.False(t, Active(date, "18:00-19:00", time.Date(2025, 10, 20, 19, 0, 0, 0, time.UTC)))
	// Midnight slot is active right up to midnight of the next day.
	assert.True(t, Active(date, "23:00-00:00", time.Date(2025, 10, 20, 23, 59, 0, 0, time.UTC)))
	assert.False(t, Active(date, "23:00-00:00", time.Date(2025, 10, 21, 0, 0, 0, 0, time.UTC)))
}

func TestEligibilityAcrossZones(t *testing.T) {
	// Booking dates come back from storage as UTC midnights while the
	// process clock runs in the stadium's zone.
	tashkent := time.FixedZone("UZT", 5*3600)
	date := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)

	now := time.Date(2025, 10, 20, 20, 0, 0, 0, tashkent)
	assert.False(t, StartsAfter(date, "18:00-19:00", now), "18:00 local started two hours ago")
	assert.True(t, StartsAfter(date, "21:00-22:00", now))

	assert.False(t, Active(date, "18:00-19:00", time.Date(2025, 10, 20, 19, 1, 0, 0, tashkent)))
	assert.True(t, Active(date, "18:00-19:00", time.Date(2025, 10, 20, 18, 30, 0, 0, tashkent)))
}

func TestDayBefore(t *testing.T) {
	tashkent := time.FixedZone("UZT", 5*3600)
	utcMid := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)
	localSame := time.Date(2025, 10, 20, 1, 0, 0, 0, tashkent) // earlier instant than utcMid

	// Same calendar day in either frame is never "before".
	assert.False(t, DayBefore(utcMid, localSame))
	assert.False(t, DayBefore(localSame, utcMid))

	assert.True(t, DayBefore(utcMid, time.Date(2025, 10, 21, 0, 0, 0, 0, tashkent)))
	assert.False(t, DayBefore(utcMid, time.Date(2025, 10, 19, 23, 59, 0, 0, tashkent)))
	// Year boundary.
	assert.True(t, DayBefore(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 0, 0, 0, 0, tashkent)))
}

func TestStartTimeInLocation(t *testing.T) {
	tashkent := time.FixedZone("UZT", 5*3600)
	date := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)

	start, err := StartTimeIn(date, "18:00-19:00", tashkent)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 20, 18, 0, 0, 0, tashkent), start)

	end, err := EndTimeIn(date, "23:00-00:00", tashkent)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 21, 0, 0, 0, 0, tashkent), end)
}

func TestMidnightAndSameDay(t *testing.T) {
	now := time.Date(2025, 10, 20, 15, 42, 11, 99, time.UTC)
	assert.Equal(t, time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC), Midnight(now))

	assert.True(t, SameDay(now, Midnight(now)))
	assert.False(t, SameDay(now, now.AddDate(0, 0, 1)))
}
