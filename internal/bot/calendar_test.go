package bot

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCalendarBlanksPastDays(t *testing.T) {
	today := time.Date(2025, 10, 20, 15, 0, 0, 0, time.UTC)
	markup := buildCalendar(2025, time.October, today)

	var pastData, futureData string
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			switch btn.Text {
			case "19":
				pastData = *btn.CallbackData
			case "21":
				futureData = *btn.CallbackData
			}
		}
	}

	// The 19th is in the past and must not be rendered as a pickable day.
	assert.Empty(t, pastData)
	assert.Equal(t, callbackCalendarDay+"2025-10-21", futureData)
}

func TestBuildCalendarTodayIsPickable(t *testing.T) {
	today := time.Date(2025, 10, 20, 23, 0, 0, 0, time.UTC)
	markup := buildCalendar(2025, time.October, today)

	found := false
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil && *btn.CallbackData == callbackCalendarDay+"2025-10-20" {
				found = true
			}
		}
	}
	assert.True(t, found, "today must stay selectable")
}

func TestBuildCalendarNavRow(t *testing.T) {
	today := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)
	markup := buildCalendar(2025, time.October, today)

	nav := markup.InlineKeyboard[len(markup.InlineKeyboard)-1]
	require.Len(t, nav, 3)
	assert.Equal(t, callbackCalendarNav+"2025-09", *nav[0].CallbackData)
	assert.Equal(t, callbackCalendarCancel, *nav[1].CallbackData)
	assert.Equal(t, callbackCalendarNav+"2025-11", *nav[2].CallbackData)
}

func TestBuildCalendarRowsAreFullWeeks(t *testing.T) {
	today := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	markup := buildCalendar(2025, time.October, today)

	// Rows between the weekday header and the nav row hold exactly 7 cells.
	for i := 2; i < len(markup.InlineKeyboard)-1; i++ {
		assert.Len(t, markup.InlineKeyboard[i], 7, "row %d", i)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"+998901234567", "+998901234567", true},
		{"998901234567", "+998901234567", true},
		{"+99890123456", "", false},    // too short
		{"+79161234567", "", false},    // wrong country
		{"hello", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := normalizePhone(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, "input %q", tt.in)
		}
	}
}

func TestGroupDigitsFormatting(t *testing.T) {
	assert.Equal(t, "270,000", groupDigits(270000))
	assert.Equal(t, "1,234,567", groupDigits(1234567))
	assert.Equal(t, "7", groupDigits(7))
}

func TestParseCallbackID(t *testing.T) {
	id, ok := parseCallbackID(fmt.Sprintf("%s42", callbackViewBooking), callbackViewBooking)
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = parseCallbackID(callbackViewBooking+"abc", callbackViewBooking)
	assert.False(t, ok)
}
