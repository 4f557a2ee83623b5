// Package stats builds the admin reports: the text summary, the
// fixed-width bar charts and the PNG charts. Everything is a read
// projection over the ledger computed at query time.
package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stadion-bot/internal/ledger"
	"stadion-bot/internal/timeslot"
)

var weekdayNames = []string{
	"Dushanba", "Seshanba", "Chorshanba", "Payshanba", "Juma", "Shanba", "Yakshanba",
}

var monthNames = []string{
	"Yanvar", "Fevral", "Mart", "Aprel", "May", "Iyun",
	"Iyul", "Avgust", "Sentabr", "Oktabr", "Noyabr", "Dekabr",
}

// labelValue is one bar of a report series.
type labelValue struct {
	Label string
	Value int
}

type Reporter struct {
	store     ledger.Store
	prices    map[string]int64
	fields    []string
	gridSlots int
	now       func() time.Time
}

func NewReporter(store ledger.Store, prices map[string]int64, fields []string, openHour, closeHour int) *Reporter {
	return &Reporter{
		store:     store,
		prices:    prices,
		fields:    fields,
		gridSlots: len(timeslot.Grid(openHour, closeHour)),
		now:       time.Now,
	}
}

// WithClock overrides the time source; tests use it.
func (r *Reporter) WithClock(now func() time.Time) *Reporter {
	r.now = now
	return r
}

// Summary renders the plain statistics block of the admin menu.
func (r *Reporter) Summary(ctx context.Context) (string, error) {
	now := r.now()
	today := timeslot.Midnight(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	fieldCounts, err := r.store.FieldCountsOn(ctx, today)
	if err != nil {
		return "", fmt.Errorf("failed to load today's counts: %w", err)
	}
	monthCount, err := r.store.CountFrom(ctx, monthStart)
	if err != nil {
		return "", fmt.Errorf("failed to count month bookings: %w", err)
	}
	todayRevenue, err := r.revenueOn(ctx, today)
	if err != nil {
		return "", err
	}
	monthRevenue, err := r.revenueFrom(ctx, monthStart)
	if err != nil {
		return "", err
	}

	totalSlots := r.gridSlots * len(r.fields)
	bookedToday := 0
	for _, fc := range fieldCounts {
		bookedToday += fc.Count
	}

	text := fmt.Sprintf("📊 Statistika\n%s\n\n", repeat("=", 35))
	text += fmt.Sprintf("📅 Bugun (%s):\n", today.Format("2006-01-02"))
	text += fmt.Sprintf("Band: %d/%d slot", bookedToday, totalSlots)
	if totalSlots > 0 {
		text += fmt.Sprintf(" (%.1f%%)\n", float64(bookedToday)/float64(totalSlots)*100)
	} else {
		text += "\n"
	}

	if len(fieldCounts) > 0 {
		text += "\n📋 Maydonlar bo'yicha:\n"
		for _, fc := range fieldCounts {
			percent := float64(fc.Count) / float64(r.gridSlots) * 100
			text += fmt.Sprintf("⚽ %s: %d/%d (%.0f%%)\n", fc.Field, fc.Count, r.gridSlots, percent)
		}
	} else {
		text += "\n⚠️ Bugun hali o'yinlar yo'q\n"
	}

	text += fmt.Sprintf("\n📆 Oylik (%s %d):\n", monthNames[now.Month()-1], now.Year())
	text += fmt.Sprintf("Jami o'yinlar: %d ta\n", monthCount)
	text += fmt.Sprintf("💰 Oylik daromad: %s so'm\n", groupDigits(monthRevenue))
	text += fmt.Sprintf("💵 Bugungi daromad: %s so'm", groupDigits(todayRevenue))

	return text, nil
}

func (r *Reporter) revenueOn(ctx context.Context, date time.Time) (int64, error) {
	bookings, err := r.store.BookingsOn(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("failed to load day's bookings: %w", err)
	}
	var revenue int64
	for _, b := range bookings {
		revenue += r.prices[b.Field]
	}
	return revenue, nil
}

func (r *Reporter) revenueFrom(ctx context.Context, from time.Time) (int64, error) {
	bookings, err := r.store.AllBookings(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load bookings: %w", err)
	}
	var revenue int64
	for _, b := range bookings {
		if !timeslot.DayBefore(b.Date, from) {
			revenue += r.prices[b.Field]
		}
	}
	return revenue, nil
}

// weekdayCounts buckets the last 30 days of bookings by weekday.
func (r *Reporter) weekdayCounts(ctx context.Context) ([]labelValue, error) {
	now := r.now()
	bookings, err := r.store.BookingsBetween(ctx, now.AddDate(0, 0, -30), now.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	counts := make([]int, 7)
	for _, b := range bookings {
		// Monday-based index.
		idx := (int(b.Date.Weekday()) + 6) % 7
		counts[idx]++
	}

	out := make([]labelValue, 7)
	for i := range counts {
		out[i] = labelValue{Label: weekdayNames[i], Value: counts[i]}
	}
	return out, nil
}

// slotPopularity ranks the busiest slots of the last 30 days.
func (r *Reporter) slotPopularity(ctx context.Context, topN int) ([]labelValue, error) {
	now := r.now()
	bookings, err := r.store.BookingsBetween(ctx, now.AddDate(0, 0, -30), now.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	counts := make(map[string]int)
	for _, b := range bookings {
		counts[b.Slot]++
	}

	out := make([]labelValue, 0, len(counts))
	for slot, n := range counts {
		out = append(out, labelValue{Label: slot, Value: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

// fieldPopularity ranks fields by bookings over the last 30 days.
func (r *Reporter) fieldPopularity(ctx context.Context) ([]labelValue, error) {
	now := r.now()
	bookings, err := r.store.BookingsBetween(ctx, now.AddDate(0, 0, -30), now.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	counts := make(map[string]int)
	for _, b := range bookings {
		counts[b.Field]++
	}

	out := make([]labelValue, 0, len(counts))
	for field, n := range counts {
		out = append(out, labelValue{Label: field, Value: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	return out, nil
}

// weeklyRevenue sums revenue per week over the last 4 weeks, reported
// in thousands.
func (r *Reporter) weeklyRevenue(ctx context.Context) ([]labelValue, error) {
	now := r.now()
	today := timeslot.Midnight(now)

	var out []labelValue
	for week := 3; week >= 0; week-- {
		start := today.AddDate(0, 0, -(week*7 + 6))
		end := today.AddDate(0, 0, -(week * 7)).AddDate(0, 0, 1)

		bookings, err := r.store.BookingsBetween(ctx, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to load bookings: %w", err)
		}
		var revenue int64
		for _, b := range bookings {
			revenue += r.prices[b.Field]
		}
		out = append(out, labelValue{
			Label: fmt.Sprintf("W%d", 4-week),
			Value: int(revenue / 1000),
		})
	}
	return out, nil
}

// monthlyTrend counts bookings per calendar month for the last seven
// months, oldest first.
func (r *Reporter) monthlyTrend(ctx context.Context) ([]labelValue, error) {
	now := r.now()

	var out []labelValue
	for i := 6; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)

		bookings, err := r.store.BookingsBetween(ctx, monthStart, monthEnd)
		if err != nil {
			return nil, fmt.Errorf("failed to load bookings: %w", err)
		}
		out = append(out, labelValue{
			Label: monthNames[monthStart.Month()-1],
			Value: len(bookings),
		})
	}
	return out, nil
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}

// groupDigits formats 1234567 as "1,234,567".
func groupDigits(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
