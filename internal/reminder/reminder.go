// Package reminder notifies booking owners ahead of tomorrow's slots.
// Firing is detected by proximity to the target instant within one
// polling window; there is no persisted sent marker, so delivery is
// approximately-once by design.
package reminder

import (
	"context"
	"fmt"
	"time"

	"stadion-bot/internal/ledger"
	"stadion-bot/internal/timeslot"
	"stadion-bot/pkg/logger"
)

// Notifier delivers a reminder text to a Telegram identity. Failures
// are logged and never retried.
type Notifier interface {
	Notify(telegramID int64, text string) error
}

type Scheduler struct {
	store     ledger.Store
	notifier  Notifier
	logger    *logger.Logger
	lead      time.Duration
	poll      time.Duration
	tolerance time.Duration
	now       func() time.Time
}

func NewScheduler(store ledger.Store, notifier Notifier, logger *logger.Logger, lead, poll, tolerance time.Duration) *Scheduler {
	return &Scheduler{
		store:     store,
		notifier:  notifier,
		logger:    logger,
		lead:      lead,
		poll:      poll,
		tolerance: tolerance,
		now:       time.Now,
	}
}

// WithClock overrides the time source; tests use it.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Run polls until ctx is cancelled. A failed cycle is logged and the
// next tick proceeds normally.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Reminder scheduler started", "poll", s.poll, "lead", s.lead)

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Reminder scheduler stopped")
			return
		case <-ticker.C:
			if err := s.Cycle(ctx); err != nil {
				s.logger.Error("Reminder cycle failed", "error", err)
			}
		}
	}
}

// Cycle scans tomorrow's bookings and dispatches reminders whose fire
// instant (slot start minus lead) falls within the tolerance window
// around now.
func (s *Scheduler) Cycle(ctx context.Context) error {
	now := s.now()
	tomorrow := timeslot.Midnight(now).AddDate(0, 0, 1)

	bookings, err := s.store.BookingsOn(ctx, tomorrow)
	if err != nil {
		return fmt.Errorf("failed to load tomorrow's bookings: %w", err)
	}

	for _, b := range bookings {
		start, err := timeslot.StartTimeIn(b.Date, b.Slot, now.Location())
		if err != nil {
			s.logger.Warn("Skipping booking with bad slot label", "booking_id", b.ID, "slot", b.Slot)
			continue
		}

		fireAt := start.Add(-s.lead)
		diff := now.Sub(fireAt)
		if diff < 0 {
			diff = -diff
		}
		if diff >= s.tolerance {
			continue
		}

		user, err := s.store.UserByID(ctx, b.UserID)
		if err != nil {
			s.logger.Warn("Reminder owner not found", "booking_id", b.ID, "user_id", b.UserID)
			continue
		}

		text := fmt.Sprintf(
			"⏰ Eslatma!\n\nErtaga sizning o'yiningiz bor:\n\n"+
				"📅 Sana: %s\n🕐 Vaqt: %s\n⚽ Maydon: %s\n\nVaqtida keling! 👍",
			b.Date.Format("2006-01-02"), b.Slot, b.Field,
		)
		if err := s.notifier.Notify(user.TelegramID, text); err != nil {
			s.logger.Error("Failed to send reminder",
				"error", err, "booking_id", b.ID, "telegram_id", user.TelegramID)
			continue
		}
		s.logger.Info("Reminder sent", "booking_id", b.ID, "telegram_id", user.TelegramID)
	}

	return nil
}
