// Package policy decides whether a booking may still be cancelled by
// its owner. Administrative deletion never consults this package.
package policy

import (
	"fmt"
	"time"

	"stadion-bot/internal/models"
	"stadion-bot/internal/timeslot"
)

// CancelPolicy allows self-service cancellation only until a fixed
// daily deadline hour: for today's bookings the deadline is today at
// DeadlineHour, for future bookings it is DeadlineHour on the day
// before the booking date, and past bookings are never cancellable.
type CancelPolicy struct {
	DeadlineHour int
}

// CanCancel returns whether the booking may be cancelled at now, and
// a user-facing reason when it may not. Day matching goes by calendar
// day and deadline instants are built in now's location, so a booking
// date stored as a UTC midnight compares correctly against a local
// clock.
func (p CancelPolicy) CanCancel(b models.Booking, now time.Time) (bool, string) {
	switch {
	case timeslot.SameDay(b.Date, now):
		deadline := timeslot.Midnight(now).Add(time.Duration(p.DeadlineHour) * time.Hour)
		if !now.Before(deadline) {
			return false, fmt.Sprintf("⚠️ Bugungi o'yinlarni soat %d:00 dan keyin bekor qilolmaysiz!", p.DeadlineHour)
		}
	case timeslot.DayBefore(now, b.Date):
		deadline := time.Date(b.Date.Year(), b.Date.Month(), b.Date.Day(),
			p.DeadlineHour, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
		if !now.Before(deadline) {
			return false, fmt.Sprintf("⚠️ O'yin kunidan oldingi kun soat %d:00 gacha bekor qilish mumkin edi!", p.DeadlineHour)
		}
	default:
		return false, "⚠️ O'tgan o'yinni bekor qilolmaysiz!"
	}

	return true, ""
}
