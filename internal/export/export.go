// Package export mirrors the booking ledger into a spreadsheet. It is
// a best-effort side channel: events are published after the ledger
// commit and consumed asynchronously, so a broken spreadsheet never
// blocks or rolls back a reservation.
package export

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"stadion-bot/internal/ledger"
	"stadion-bot/internal/models"
	"stadion-bot/pkg/logger"
)

type EventType string

const (
	BookingCreated EventType = "booking_created"
	BookingDeleted EventType = "booking_deleted"
)

// Event describes a ledger mutation the mirror should reflect.
type Event struct {
	ID        uuid.UUID
	Type      EventType
	BookingID int64
}

const sheetName = "Sheet1"

var columnWidths = map[string]float64{
	"A": 5,  // №
	"B": 25, // full name
	"C": 12, // date
	"D": 15, // slot
	"E": 15, // field
	"F": 15, // price
}

// Mirror consumes booking events and rewrites the spreadsheet from
// the ledger. Rebuilding on every event keeps the file equal to the
// ledger regardless of the order failures arrive in.
type Mirror struct {
	store  ledger.Store
	prices map[string]int64
	path   string
	logger *logger.Logger
	events chan Event
}

func NewMirror(store ledger.Store, prices map[string]int64, path string, logger *logger.Logger) *Mirror {
	return &Mirror{
		store:  store,
		prices: prices,
		path:   path,
		logger: logger,
		events: make(chan Event, 64),
	}
}

// Publish hands an event to the mirror worker without blocking the
// booking flow. A full queue drops the event with a log line; the
// next successful rebuild repairs the file.
func (m *Mirror) Publish(t EventType, bookingID int64) {
	evt := Event{ID: uuid.New(), Type: t, BookingID: bookingID}
	select {
	case m.events <- evt:
	default:
		m.logger.Warn("Export queue full, dropping event",
			"event_id", evt.ID, "type", evt.Type, "booking_id", bookingID)
	}
}

// Run consumes events until ctx is cancelled.
func (m *Mirror) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-m.events:
			if err := m.Rebuild(ctx); err != nil {
				m.logger.Error("Failed to update export file",
					"error", err, "event_id", evt.ID, "type", evt.Type, "booking_id", evt.BookingID)
				continue
			}
			m.logger.Info("Export file updated",
				"event_id", evt.ID, "type", evt.Type, "booking_id", evt.BookingID)
		}
	}
}

// Rebuild regenerates the spreadsheet from the current ledger state.
func (m *Mirror) Rebuild(ctx context.Context) error {
	bookings, err := m.store.AllBookings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load bookings: %w", err)
	}

	// Oldest first in the file.
	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].Date.Equal(bookings[j].Date) {
			return bookings[i].Date.Before(bookings[j].Date)
		}
		return bookings[i].Slot < bookings[j].Slot
	})

	f := excelize.NewFile()
	defer f.Close()

	if err := m.writeSheet(ctx, f, bookings); err != nil {
		return err
	}

	if err := f.SaveAs(m.path); err != nil {
		return fmt.Errorf("failed to save export file: %w", err)
	}
	return nil
}

func (m *Mirror) writeSheet(ctx context.Context, f *excelize.File, bookings []models.Booking) error {
	if err := f.SetCellValue(sheetName, "A1", "Butun tarix"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.MergeCell(sheetName, "A1", "F1"); err != nil {
		return fmt.Errorf("failed to merge header: %w", err)
	}
	header := []interface{}{"№", "FISH", "Sana", "Vaqt", "Maydon", "Pul"}
	if err := f.SetSheetRow(sheetName, "A2", &header); err != nil {
		return fmt.Errorf("failed to write column header: %w", err)
	}

	for i, b := range bookings {
		fullName := "N/A"
		user, err := m.store.UserByID(ctx, b.UserID)
		if err == nil {
			fullName = user.FullName()
		} else {
			m.logger.Warn("Export row without user", "booking_id", b.ID, "user_id", b.UserID)
		}

		row := []interface{}{
			i + 1,
			fullName,
			b.Date.Format("02.01.2006"),
			b.Slot,
			b.Field,
			m.prices[b.Field],
		}
		cell := fmt.Sprintf("A%d", i+3)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+3, err)
		}
	}

	for col, width := range columnWidths {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	return m.applyStyles(f, len(bookings)+2)
}

func (m *Mirror) applyStyles(f *excelize.File, lastRow int) error {
	border := []excelize.Border{
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
	}

	bodyStyle, err := f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	headStyle, err := f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Font:      &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetCellStyle(sheetName, "A1", "F2", headStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if lastRow > 2 {
		last := fmt.Sprintf("F%d", lastRow+1)
		if err := f.SetCellStyle(sheetName, "A3", last, bodyStyle); err != nil {
			return fmt.Errorf("failed to style body: %w", err)
		}
	}
	return nil
}

// File returns the spreadsheet bytes for the admin download,
// rebuilding first when the file does not exist yet.
func (m *Mirror) File(ctx context.Context) ([]byte, error) {
	if _, err := os.Stat(m.path); os.IsNotExist(err) {
		if err := m.Rebuild(ctx); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export file: %w", err)
	}
	return data, nil
}

// FileName is the name presented to Telegram when sending the export.
func (m *Mirror) FileName() string {
	return fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02"))
}
