package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stadion-bot/internal/ledger"
)

func TestOwnedBooking(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	b := &Bot{store: store}

	owner, err := store.RegisterUser(ctx, 42, "Alisher", "Usmonov", "+998901234567")
	require.NoError(t, err)
	date := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)
	bookingID, err := store.CreateBooking(ctx, owner.ID, date, "1-stadion", "18:00-19:00")
	require.NoError(t, err)

	booking, user, alert := b.ownedBooking(ctx, bookingID, 42)
	require.Empty(t, alert)
	assert.Equal(t, bookingID, booking.ID)
	assert.Equal(t, owner.ID, user.ID)

	// Unknown booking and foreign booking both come back as an alert,
	// never as a card.
	booking, _, alert = b.ownedBooking(ctx, 9999, 42)
	assert.Nil(t, booking)
	assert.Equal(t, "❌ O'yin topilmadi.", alert)

	booking, _, alert = b.ownedBooking(ctx, bookingID, 777)
	assert.Nil(t, booking)
	assert.Equal(t, "❌ Bu o'yin sizniki emas.", alert)
}
