package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stadion-bot/internal/ledger"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAvailableSlotsFutureDate(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	now := time.Date(2025, 10, 15, 22, 0, 0, 0, time.UTC)
	day := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)

	for _, slot := range []string{"07:00-08:00", "12:00-13:00", "23:00-00:00"} {
		_, err := store.CreateBooking(ctx, 1, day, "1-stadion", slot)
		require.NoError(t, err)
	}

	r := NewResolver(store, 7, 24).WithClock(fixedClock(now))

	free, err := r.AvailableSlots(ctx, day, "1-stadion")
	require.NoError(t, err)

	// 17 grid slots minus the 3 booked, in chronological order.
	require.Len(t, free, 14)
	assert.Equal(t, "08:00-09:00", free[0])
	assert.Equal(t, "22:00-23:00", free[len(free)-1])
	assert.NotContains(t, free, "07:00-08:00")
	assert.NotContains(t, free, "12:00-13:00")
	assert.NotContains(t, free, "23:00-00:00")

	// Another field on the same day is untouched.
	other, err := r.AvailableSlots(ctx, day, "2-stadion")
	require.NoError(t, err)
	assert.Len(t, other, 17)
}

func TestAvailableSlotsTodayFiltersPastStarts(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	now := time.Date(2025, 10, 20, 18, 0, 0, 0, time.UTC)
	day := now

	r := NewResolver(store, 7, 24).WithClock(fixedClock(now))

	free, err := r.AvailableSlots(ctx, day, "1-stadion")
	require.NoError(t, err)

	// 18:00-19:00 starts exactly now, so the first offerable slot is 19:00.
	require.NotEmpty(t, free)
	assert.Equal(t, "19:00-20:00", free[0])
	assert.Equal(t, "23:00-00:00", free[len(free)-1])
	assert.Len(t, free, 5)
}

func TestAvailableSlotsNeverOffersBooked(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	now := time.Date(2025, 10, 20, 8, 30, 0, 0, time.UTC)

	_, err := store.CreateBooking(ctx, 1, now, "1-stadion", "20:00-21:00")
	require.NoError(t, err)

	r := NewResolver(store, 7, 24).WithClock(fixedClock(now))
	free, err := r.AvailableSlots(ctx, now, "1-stadion")
	require.NoError(t, err)

	assert.NotContains(t, free, "20:00-21:00")
	for _, slot := range free {
		assert.True(t, slot >= "09:00-10:00", "offered past slot %s", slot)
	}
}

func TestAvailableSlotsWithLocalClock(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	tashkent := time.FixedZone("UZT", 5*3600)

	// The booking date round-trips through storage as a UTC midnight
	// while the clock runs in the stadium's zone.
	day := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 10, 20, 20, 0, 0, 0, tashkent)

	r := NewResolver(store, 7, 24).WithClock(fixedClock(now))
	free, err := r.AvailableSlots(ctx, day, "1-stadion")
	require.NoError(t, err)

	// 20:00 local has passed; only 21:00, 22:00 and 23:00 remain.
	assert.Equal(t, []string{"21:00-22:00", "22:00-23:00", "23:00-00:00"}, free)

	// Yesterday's UTC date is a past day on the local clock too.
	free, err = r.AvailableSlots(ctx, day.AddDate(0, 0, -1), "1-stadion")
	require.NoError(t, err)
	assert.Empty(t, free)
}

func TestAvailableSlotsPastDateEmpty(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	now := time.Date(2025, 10, 20, 8, 0, 0, 0, time.UTC)

	r := NewResolver(store, 7, 24).WithClock(fixedClock(now))
	free, err := r.AvailableSlots(ctx, now.AddDate(0, 0, -1), "1-stadion")
	require.NoError(t, err)
	assert.Empty(t, free)
}
