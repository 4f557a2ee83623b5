package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stadion-bot/internal/models"
)

func booking(y int, m time.Month, d int) models.Booking {
	return models.Booking{
		Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Slot: "18:00-19:00",
	}
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestCanCancel(t *testing.T) {
	p := CancelPolicy{DeadlineHour: 12}

	tests := []struct {
		name    string
		booking models.Booking
		now     time.Time
		want    bool
	}{
		{"tomorrow, day before at 11:59", booking(2025, 10, 21), at(2025, 10, 20, 11, 59), true},
		{"tomorrow, day before at 12:00", booking(2025, 10, 21), at(2025, 10, 20, 12, 0), false},
		{"tomorrow, day before at 12:01", booking(2025, 10, 21), at(2025, 10, 20, 12, 1), false},
		{"today before deadline", booking(2025, 10, 20), at(2025, 10, 20, 11, 59), true},
		{"today at deadline", booking(2025, 10, 20), at(2025, 10, 20, 12, 0), false},
		{"today evening slot after deadline", booking(2025, 10, 20), at(2025, 10, 20, 17, 30), false},
		{"yesterday", booking(2025, 10, 19), at(2025, 10, 20, 9, 0), false},
		{"far future, early", booking(2025, 11, 5), at(2025, 10, 20, 23, 0), true},
		{"far future, day before after deadline", booking(2025, 11, 5), at(2025, 11, 4, 13, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := p.CanCancel(tt.booking, tt.now)
			assert.Equal(t, tt.want, ok)
			if !tt.want {
				assert.NotEmpty(t, reason)
			} else {
				assert.Empty(t, reason)
			}
		})
	}
}

func TestCanCancelWithLocalClock(t *testing.T) {
	p := CancelPolicy{DeadlineHour: 12}
	tashkent := time.FixedZone("UZT", 5*3600)

	// The booking date is a UTC midnight from storage; the deadline
	// must still be read off the stadium's wall clock.
	today := booking(2025, 10, 20)

	ok, reason := p.CanCancel(today, time.Date(2025, 10, 20, 11, 59, 0, 0, tashkent))
	assert.True(t, ok)
	assert.Empty(t, reason)

	ok, _ = p.CanCancel(today, time.Date(2025, 10, 20, 12, 0, 0, 0, tashkent))
	assert.False(t, ok)

	// Tomorrow's booking, judged against the local day-before deadline.
	tomorrow := booking(2025, 10, 21)
	ok, _ = p.CanCancel(tomorrow, time.Date(2025, 10, 20, 11, 59, 0, 0, tashkent))
	assert.True(t, ok)
	ok, _ = p.CanCancel(tomorrow, time.Date(2025, 10, 20, 12, 0, 0, 0, tashkent))
	assert.False(t, ok)
}
