// Package ledger is the durable store of users and bookings. It owns
// the uniqueness guarantees: one registration per Telegram identity,
// and at most one live booking per (date, field, slot) triple.
package ledger

import (
	"context"
	"errors"
	"time"

	"stadion-bot/internal/models"
)

var (
	// ErrDuplicateUser is returned when the Telegram identity is
	// already registered.
	ErrDuplicateUser = errors.New("user already registered")

	// ErrSlotTaken is returned when the (date, field, slot) triple is
	// already booked. Admission races lose with this error, never with
	// a generic fault.
	ErrSlotTaken = errors.New("slot already booked")

	// ErrNotFound is returned by lookups for absent users or bookings.
	ErrNotFound = errors.New("not found")
)

// Store is the ledger contract consumed by the dialog layer, the
// availability resolver, the reminder scheduler and the export mirror.
type Store interface {
	// RegisterUser inserts a new user. The insert itself detects the
	// duplicate identity; there is no check-then-insert window.
	RegisterUser(ctx context.Context, telegramID int64, name, surname, phone string) (*models.User, error)
	UserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	UserByID(ctx context.Context, id int64) (*models.User, error)

	// CreateBooking atomically admits the booking. Two concurrent
	// calls for the same triple cannot both succeed: the loser gets
	// ErrSlotTaken.
	CreateBooking(ctx context.Context, userID int64, date time.Time, field, slot string) (int64, error)
	// CancelBooking deletes the booking if present. A repeat call on
	// an absent id returns false without error.
	CancelBooking(ctx context.Context, id int64) (bool, error)
	BookingByID(ctx context.Context, id int64) (*models.Booking, error)

	// UserBookings lists a user's bookings ordered by (date, slot) asc.
	UserBookings(ctx context.Context, userID int64) ([]models.Booking, error)
	// AllBookings lists every booking ordered by date desc, slot asc.
	AllBookings(ctx context.Context) ([]models.Booking, error)
	// BookedSlots lists slot labels already taken for (date, field).
	BookedSlots(ctx context.Context, date time.Time, field string) ([]string, error)
	// BookingsOn lists all bookings for a single calendar date.
	BookingsOn(ctx context.Context, date time.Time) ([]models.Booking, error)
	// BookingsBetween lists bookings with from <= date < to.
	BookingsBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error)

	// FieldCountsOn groups the date's bookings by field.
	FieldCountsOn(ctx context.Context, date time.Time) ([]models.FieldCount, error)
	// CountFrom counts bookings with date >= from.
	CountFrom(ctx context.Context, from time.Time) (int, error)
}
