// Package availability computes the offerable slot set for a
// (date, field) pair. The result is a display snapshot: the final
// admission check happens inside the ledger's CreateBooking.
package availability

import (
	"context"
	"fmt"
	"time"

	"stadion-bot/internal/timeslot"
)

// SlotSource is the slice of the ledger the resolver needs.
type SlotSource interface {
	BookedSlots(ctx context.Context, date time.Time, field string) ([]string, error)
}

type Resolver struct {
	source   SlotSource
	openHour int
	closHour int
	now      func() time.Time
}

func NewResolver(source SlotSource, openHour, closeHour int) *Resolver {
	return &Resolver{
		source:   source,
		openHour: openHour,
		closHour: closeHour,
		now:      time.Now,
	}
}

// WithClock overrides the time source; tests use it.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// AvailableSlots returns the free, still-reachable slots for the date
// and field in chronological order. Slots on today's date whose start
// has passed are excluded; future dates keep the whole free grid.
func (r *Resolver) AvailableSlots(ctx context.Context, date time.Time, field string) ([]string, error) {
	booked, err := r.source.BookedSlots(ctx, date, field)
	if err != nil {
		return nil, fmt.Errorf("failed to load booked slots: %w", err)
	}

	taken := make(map[string]struct{}, len(booked))
	for _, slot := range booked {
		taken[slot] = struct{}{}
	}

	now := r.now()
	if timeslot.DayBefore(date, now) {
		// Past dates offer nothing.
		return nil, nil
	}
	today := timeslot.SameDay(date, now)

	var free []string
	for _, slot := range timeslot.Grid(r.openHour, r.closHour) {
		if _, ok := taken[slot]; ok {
			continue
		}
		if today && !timeslot.StartsAfter(date, slot, now) {
			continue
		}
		free = append(free, slot)
	}
	return free, nil
}
