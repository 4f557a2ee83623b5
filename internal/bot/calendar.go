package bot

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"stadion-bot/internal/dialog"
	"stadion-bot/internal/timeslot"
)

// Inline callback payloads.
const (
	callbackIgnore            = "ignore"
	callbackCalendarCancel    = "calendar_cancel"
	callbackCalendarNav       = "calendar_nav_"
	callbackCalendarDay       = "calendar_day_"
	callbackViewBooking       = "view_booking_"
	callbackCancelBooking     = "cancel_booking_"
	callbackBackToBookings    = "back_to_bookings"
	callbackAdminDelete       = "admin_delete_"
	callbackAdminCancelDelete = "admin_cancel_delete"
)

var uzMonths = [...]string{
	"Yanvar", "Fevral", "Mart", "Aprel", "May", "Iyun",
	"Iyul", "Avgust", "Sentabr", "Oktabr", "Noyabr", "Dekabr",
}

var uzWeekdays = [...]string{"Du", "Se", "Ch", "Pa", "Ju", "Sh", "Ya"}

// buildCalendar renders one month as an inline keyboard. Days before
// today are blanked so they cannot be picked.
func buildCalendar(year int, month time.Month, today time.Time) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%s %d", uzMonths[month-1], year), callbackIgnore),
	})

	var header []tgbotapi.InlineKeyboardButton
	for _, wd := range uzWeekdays {
		header = append(header, tgbotapi.NewInlineKeyboardButtonData(wd, callbackIgnore))
	}
	rows = append(rows, header)

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	// Monday-based column of the 1st.
	offset := (int(first.Weekday()) + 6) % 7

	blank := tgbotapi.NewInlineKeyboardButtonData(" ", callbackIgnore)
	row := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for i := 0; i < offset; i++ {
		row = append(row, blank)
	}

	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
		if timeslot.DayBefore(date, today) {
			row = append(row, blank)
		} else {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%d", day),
				fmt.Sprintf("%s%s", callbackCalendarDay, date.Format("2006-01-02"))))
		}
		if len(row) == 7 {
			rows = append(rows, row)
			row = make([]tgbotapi.InlineKeyboardButton, 0, 7)
		}
	}
	if len(row) > 0 {
		for len(row) < 7 {
			row = append(row, blank)
		}
		rows = append(rows, row)
	}

	prev := first.AddDate(0, -1, 0)
	next := first.AddDate(0, 1, 0)
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("◀️",
			fmt.Sprintf("%s%s", callbackCalendarNav, prev.Format("2006-01"))),
		tgbotapi.NewInlineKeyboardButtonData("❌ Bekor", callbackCalendarCancel),
		tgbotapi.NewInlineKeyboardButtonData("▶️",
			fmt.Sprintf("%s%s", callbackCalendarNav, next.Format("2006-01"))),
	})

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) handleCalendarNav(cb *tgbotapi.CallbackQuery) {
	if b.states.Get(cb.From.ID).Step != dialog.StepSelectingDate {
		b.alertCallback(cb.ID, "❌ Bu kalendar eskirgan. Qaytadan band qilishni boshlang.")
		return
	}
	b.answerCallback(cb.ID, "")

	raw := strings.TrimPrefix(cb.Data, callbackCalendarNav)
	target, err := time.Parse("2006-01", raw)
	if err != nil {
		b.logger.Warn("Bad calendar nav payload", "data", cb.Data)
		return
	}

	markup := buildCalendar(target.Year(), target.Month(), time.Now())
	edit := tgbotapi.NewEditMessageReplyMarkup(
		cb.Message.Chat.ID, cb.Message.MessageID, markup)
	b.send(edit)
}

func (b *Bot) handleCalendarDay(cb *tgbotapi.CallbackQuery) {
	raw := strings.TrimPrefix(cb.Data, callbackCalendarDay)
	// The payload is a calendar day; anchor it in the stadium's zone so
	// slot eligibility and the cancellation deadline read the same wall
	// clock the users do.
	date, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		b.answerCallback(cb.ID, "")
		b.logger.Warn("Bad calendar day payload", "data", cb.Data)
		return
	}

	if timeslot.DayBefore(date, time.Now()) {
		b.alertCallback(cb.ID, "❌ O'tgan sanani tanlab bo'lmaydi!")
		return
	}

	userID := cb.From.ID
	if !b.states.SetDate(userID, date) {
		b.alertCallback(cb.ID, "❌ Bu kalendar eskirgan. Qaytadan band qilishni boshlang.")
		return
	}
	b.answerCallback(cb.ID, "")

	b.send(tgbotapi.NewDeleteMessage(cb.Message.Chat.ID, cb.Message.MessageID))
	b.replyWithMarkup(cb.Message.Chat.ID,
		fmt.Sprintf("📅 Tanlangan sana: %s\n\n⚽ Maydonni tanlang:", date.Format("2006-01-02")),
		fieldMenu(b.cfg.Fields()))
}

func (b *Bot) handleCalendarCancel(cb *tgbotapi.CallbackQuery) {
	b.answerCallback(cb.ID, "")
	b.states.Reset(cb.From.ID)

	b.send(tgbotapi.NewDeleteMessage(cb.Message.Chat.ID, cb.Message.MessageID))
	b.replyWithMarkup(cb.Message.Chat.ID, "❌ Band qilish bekor qilindi.", mainMenu())
}
