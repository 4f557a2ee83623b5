package export

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"stadion-bot/internal/ledger"
	"stadion-bot/pkg/logger"
)

var testPrices = map[string]int64{
	"1-stadion": 270000,
	"2-stadion": 210000,
}

func TestRebuildWritesSortedRows(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()

	user, err := store.RegisterUser(ctx, 42, "Alisher", "Usmonov", "+998901234567")
	require.NoError(t, err)

	later := time.Date(2025, 10, 22, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)
	_, err = store.CreateBooking(ctx, user.ID, later, "2-stadion", "09:00-10:00")
	require.NoError(t, err)
	_, err = store.CreateBooking(ctx, user.ID, earlier, "1-stadion", "18:00-19:00")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "bookings.xlsx")
	mirror := NewMirror(store, testPrices, path, logger.NewNop())
	require.NoError(t, mirror.Rebuild(ctx))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Butun tarix", rows[0][0])
	assert.Equal(t, []string{"№", "FISH", "Sana", "Vaqt", "Maydon", "Pul"}, rows[1])

	// Oldest booking first, numbered from 1.
	assert.Equal(t, []string{"1", "Alisher Usmonov", "20.10.2025", "18:00-19:00", "1-stadion", "270000"}, rows[2])
	assert.Equal(t, []string{"2", "Alisher Usmonov", "22.10.2025", "09:00-10:00", "2-stadion", "210000"}, rows[3])
}

func TestFileRebuildsWhenMissing(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()

	path := filepath.Join(t.TempDir(), "bookings.xlsx")
	mirror := NewMirror(store, testPrices, path, logger.NewNop())

	data, err := mirror.File(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRunConsumesEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := ledger.NewMemoryStore()
	user, err := store.RegisterUser(ctx, 7, "Jasur", "Karimov", "+998935550011")
	require.NoError(t, err)

	day := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)
	id, err := store.CreateBooking(ctx, user.ID, day, "1-stadion", "18:00-19:00")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "bookings.xlsx")
	mirror := NewMirror(store, testPrices, path, logger.NewNop())

	done := make(chan struct{})
	go func() {
		mirror.Run(ctx)
		close(done)
	}()

	mirror.Publish(BookingCreated, id)

	require.Eventually(t, func() bool {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return false
		}
		defer f.Close()
		rows, err := f.GetRows("Sheet1")
		return err == nil && len(rows) == 3
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	<-done
}

func TestPublishNeverBlocks(t *testing.T) {
	store := ledger.NewMemoryStore()
	path := filepath.Join(t.TempDir(), "bookings.xlsx")
	mirror := NewMirror(store, testPrices, path, logger.NewNop())

	// No worker running; overflow the queue and make sure we return.
	for i := 0; i < 200; i++ {
		mirror.Publish(BookingCreated, int64(i))
	}
}
