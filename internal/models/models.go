// internal/models/models.go
package models

import (
	"time"
)

// User is a registered client. Identity is the Telegram user id; the
// profile is immutable after registration.
type User struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Name       string    `json:"name"`
	Surname    string    `json:"surname"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `json:"created_at"`
}

// FullName returns "Name Surname" for display and export rows.
func (u *User) FullName() string {
	return u.Name + " " + u.Surname
}

// Booking reserves one (date, field, slot) triple. The triple is
// unique across all live bookings; the ledger enforces that.
type Booking struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Date      time.Time `json:"date"`
	Field     string    `json:"field"`
	Slot      string    `json:"slot"`
	CreatedAt time.Time `json:"created_at"`
}

// FieldCount is a per-field aggregate row.
type FieldCount struct {
	Field string `json:"field"`
	Count int    `json:"count"`
}
