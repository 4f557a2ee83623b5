// Package timeslot computes the fixed one-hour slot grid of the
// stadium's operating day and answers time-eligibility questions
// about individual slots. Everything here is pure.
package timeslot

import (
	"fmt"
	"time"
)

// Grid returns the ordered slot labels for an operating window of
// [openHour, closeHour) full hours. closeHour may be 24, in which
// case the last slot ends at "00:00" (midnight of the next day):
//
//	Grid(7, 24) -> ["07:00-08:00", ..., "23:00-00:00"]
func Grid(openHour, closeHour int) []string {
	if closeHour <= openHour {
		return nil
	}
	slots := make([]string, 0, closeHour-openHour)
	for hour := openHour; hour < closeHour; hour++ {
		end := (hour + 1) % 24
		slots = append(slots, fmt.Sprintf("%02d:00-%02d:00", hour, end))
	}
	return slots
}

// parseClock parses "HH:MM" into hour and minute.
func parseClock(s string) (int, int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, 0, fmt.Errorf("bad clock value %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("bad clock value %q", s)
	}
	return h, m, nil
}

// bounds splits a slot label into its start and end clock values.
func bounds(label string) (string, string, error) {
	var start, end string
	if _, err := fmt.Sscanf(label, "%5s-%5s", &start, &end); err != nil {
		return "", "", fmt.Errorf("bad slot label %q: %w", label, err)
	}
	return start, end, nil
}

// StartTimeIn returns the instant the labelled slot begins on date's
// calendar day, materialized in loc. Booking dates carry only a
// calendar day; the location the slot is evaluated in must come from
// the caller's clock, not from the date value.
func StartTimeIn(date time.Time, label string, loc *time.Location) (time.Time, error) {
	start, _, err := bounds(label)
	if err != nil {
		return time.Time{}, err
	}
	h, m, err := parseClock(start)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, loc), nil
}

// StartTime is StartTimeIn in the date's own location.
func StartTime(date time.Time, label string) (time.Time, error) {
	return StartTimeIn(date, label, date.Location())
}

// EndTimeIn returns the instant the labelled slot ends on date's
// calendar day, materialized in loc. An end clock at or before the
// start clock wraps to the following day, so "23:00-00:00" ends at
// midnight after date.
func EndTimeIn(date time.Time, label string, loc *time.Location) (time.Time, error) {
	startClock, endClock, err := bounds(label)
	if err != nil {
		return time.Time{}, err
	}
	sh, sm, err := parseClock(startClock)
	if err != nil {
		return time.Time{}, err
	}
	eh, em, err := parseClock(endClock)
	if err != nil {
		return time.Time{}, err
	}
	end := time.Date(date.Year(), date.Month(), date.Day(), eh, em, 0, 0, loc)
	if eh < sh || (eh == sh && em <= sm) {
		end = end.AddDate(0, 0, 1)
	}
	return end, nil
}

// EndTime is EndTimeIn in the date's own location.
func EndTime(date time.Time, label string) (time.Time, error) {
	return EndTimeIn(date, label, date.Location())
}

// StartsAfter reports whether the slot's start on date's calendar day
// is strictly in the future relative to now. The start instant is
// built in now's location, so a date stored as a UTC midnight still
// compares correctly against a local clock. Unparseable labels are
// never eligible.
func StartsAfter(date time.Time, label string, now time.Time) bool {
	start, err := StartTimeIn(date, label, now.Location())
	if err != nil {
		return false
	}
	return start.After(now)
}

// Active reports whether the slot on date's calendar day has not
// finished yet, evaluated in now's location.
func Active(date time.Time, label string, now time.Time) bool {
	end, err := EndTimeIn(date, label, now.Location())
	if err != nil {
		return false
	}
	return end.After(now)
}

// Midnight truncates t to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day, each
// read in its own location.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// DayBefore reports whether a's calendar day falls strictly before
// b's, each read in its own location. Day ordering never compares
// instants directly: a UTC midnight and a local midnight of the same
// calendar day are different instants but the same day.
func DayBefore(a, b time.Time) bool {
	if a.Year() != b.Year() {
		return a.Year() < b.Year()
	}
	return a.YearDay() < b.YearDay()
}
