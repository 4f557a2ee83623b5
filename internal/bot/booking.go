package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"stadion-bot/internal/dialog"
	"stadion-bot/internal/export"
	"stadion-bot/internal/ledger"
	"stadion-bot/internal/models"
	"stadion-bot/internal/timeslot"
)

func (b *Bot) startBooking(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	userID := message.From.ID

	if _, err := b.store.UserByTelegramID(ctx, userID); err != nil {
		b.reply(chatID, "❌ Avval ro'yxatdan o'ting: /start")
		return
	}

	b.states.BeginBooking(userID)
	b.sendCalendar(chatID, time.Now())
}

func (b *Bot) sendCalendar(chatID int64, month time.Time) {
	msg := tgbotapi.NewMessage(chatID, "📅 O'yin sanasini tanlang:")
	msg.ReplyMarkup = buildCalendar(month.Year(), month.Month(), time.Now())
	b.send(msg)
}

func (b *Bot) handleFieldSelection(ctx context.Context, message *tgbotapi.Message, state dialog.State) {
	chatID := message.Chat.ID
	userID := message.From.ID
	text := strings.TrimSpace(message.Text)

	if isBackCommand(text) {
		b.states.Back(userID)
		b.sendCalendar(chatID, time.Now())
		return
	}

	var field string
	for _, f := range b.cfg.Fields() {
		if strings.EqualFold(f, text) {
			field = f
			break
		}
	}
	if field == "" {
		b.replyWithMarkup(chatID, "❌ Bunday maydon yo'q. Ro'yxatdan tanlang:", fieldMenu(b.cfg.Fields()))
		return
	}

	slots, err := b.resolver.AvailableSlots(ctx, state.Date, field)
	if err != nil {
		b.logger.Error("Failed to resolve available slots", "error", err, "field", field)
		b.reply(chatID, "❌ Xatolik yuz berdi. Keyinroq qayta urinib ko'ring.")
		return
	}
	if len(slots) == 0 {
		b.replyWithMarkup(chatID,
			fmt.Sprintf("😔 %s uchun %s kuni bo'sh vaqt qolmagan.\n\nBoshqa maydonni tanlang:",
				field, state.Date.Format("2006-01-02")),
			fieldMenu(b.cfg.Fields()))
		return
	}

	b.states.SetField(userID, field)
	b.replyWithMarkup(chatID,
		fmt.Sprintf("⚽ Maydon: %s\n💰 Narx: %s so'm/soat\n\n🕐 Vaqtni tanlang:",
			field, groupDigits(b.cfg.PriceOf(field))),
		slotMenu(slots))
}

func (b *Bot) handleSlotSelection(ctx context.Context, message *tgbotapi.Message, state dialog.State) {
	chatID := message.Chat.ID
	userID := message.From.ID
	text := strings.TrimSpace(message.Text)

	if isBackCommand(text) {
		b.states.Back(userID)
		b.replyWithMarkup(chatID, "⚽ Maydonni tanlang:", fieldMenu(b.cfg.Fields()))
		return
	}

	slots, err := b.resolver.AvailableSlots(ctx, state.Date, state.Field)
	if err != nil {
		b.logger.Error("Failed to resolve available slots", "error", err, "field", state.Field)
		b.reply(chatID, "❌ Xatolik yuz berdi. Keyinroq qayta urinib ko'ring.")
		return
	}

	valid := false
	for _, s := range slots {
		if s == text {
			valid = true
			break
		}
	}
	if !valid {
		b.replyWithMarkup(chatID, "❌ Bunday vaqt mavjud emas. Ro'yxatdan tanlang:", slotMenu(slots))
		return
	}

	user, err := b.store.UserByTelegramID(ctx, userID)
	if err != nil {
		b.reply(chatID, "❌ Avval ro'yxatdan o'ting: /start")
		return
	}

	bookingID, err := b.store.CreateBooking(ctx, user.ID, state.Date, state.Field, text)
	if err != nil {
		if errors.Is(err, ledger.ErrSlotTaken) {
			// Lost the admission race; refresh the offer.
			fresh, ferr := b.resolver.AvailableSlots(ctx, state.Date, state.Field)
			if ferr != nil || len(fresh) == 0 {
				b.states.Reset(userID)
				b.replyWithMarkup(chatID, "❌ Bu vaqt hozirgina band qilindi! Boshqa vaqt qolmadi.", mainMenu())
				return
			}
			b.replyWithMarkup(chatID, "❌ Bu vaqt hozirgina band qilindi! Boshqa vaqtni tanlang:", slotMenu(fresh))
			return
		}
		b.logger.Error("Failed to create booking", "error", err, "user_id", user.ID)
		b.reply(chatID, "❌ Xatolik yuz berdi. Keyinroq qayta urinib ko'ring.")
		return
	}

	b.states.Reset(userID)
	b.mirror.Publish(export.BookingCreated, bookingID)
	b.logger.Info("Booking created",
		"booking_id", bookingID, "user_id", user.ID, "date", state.Date.Format("2006-01-02"),
		"field", state.Field, "slot", text)

	b.replyWithMarkup(chatID,
		fmt.Sprintf(
			"✅ Band qilindi!\n\n📅 Sana: %s\n🕐 Vaqt: %s\n⚽ Maydon: %s\n💰 Narx: %s so'm\n\n"+
				"💵 To'lov naqd pulda, joyida amalga oshiriladi.",
			state.Date.Format("2006-01-02"), text, state.Field, groupDigits(b.cfg.PriceOf(state.Field))),
		mainMenu())
}

func (b *Bot) showMyBookings(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	user, err := b.store.UserByTelegramID(ctx, message.From.ID)
	if err != nil {
		b.reply(chatID, "❌ Avval ro'yxatdan o'ting: /start")
		return
	}

	bookings, err := b.store.UserBookings(ctx, user.ID)
	if err != nil {
		b.logger.Error("Failed to load user bookings", "error", err, "user_id", user.ID)
		b.reply(chatID, "❌ Xatolik yuz berdi. Keyinroq qayta urinib ko'ring.")
		return
	}

	now := time.Now()
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, bk := range bookings {
		if !timeslot.Active(bk.Date, bk.Slot, now) {
			continue
		}
		label := fmt.Sprintf("%s | %s | %s", bk.Date.Format("2006-01-02"), bk.Slot, bk.Field)
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(label,
				fmt.Sprintf("%s%d", callbackViewBooking, bk.ID)),
		})
	}

	if len(rows) == 0 {
		b.reply(chatID, "📭 Sizda faol o'yinlar yo'q.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, "📋 Sizning o'yinlaringiz:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(msg)
}

// ownedBooking loads a booking and checks the Telegram user owns it,
// returning a user-facing alert text when it does not check out.
func (b *Bot) ownedBooking(ctx context.Context, bookingID, telegramID int64) (*models.Booking, *models.User, string) {
	booking, err := b.store.BookingByID(ctx, bookingID)
	if err != nil {
		return nil, nil, "❌ O'yin topilmadi."
	}
	user, err := b.store.UserByID(ctx, booking.UserID)
	if err != nil || user.TelegramID != telegramID {
		return nil, nil, "❌ Bu o'yin sizniki emas."
	}
	return booking, user, ""
}

func (b *Bot) handleViewBooking(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	id, ok := parseCallbackID(cb.Data, callbackViewBooking)
	if !ok {
		b.answerCallback(cb.ID, "")
		return
	}

	booking, user, alert := b.ownedBooking(ctx, id, cb.From.ID)
	if alert != "" {
		// A callback is answered exactly once; the plain answer only
		// goes out when no alert will.
		b.alertCallback(cb.ID, alert)
		return
	}
	b.answerCallback(cb.ID, "")

	markup := tgbotapi.NewInlineKeyboardMarkup(
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("❌ Bekor qilish",
				fmt.Sprintf("%s%d", callbackCancelBooking, booking.ID)),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(btnBack, callbackBackToBookings),
		},
	)

	edit := tgbotapi.NewEditMessageTextAndMarkup(
		cb.Message.Chat.ID, cb.Message.MessageID,
		formatBookingInfo(booking, user, b.cfg.PriceOf(booking.Field)), markup)
	b.send(edit)
}

func (b *Bot) handleCancelBooking(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	id, ok := parseCallbackID(cb.Data, callbackCancelBooking)
	if !ok {
		b.answerCallback(cb.ID, "")
		return
	}

	booking, user, alert := b.ownedBooking(ctx, id, cb.From.ID)
	if alert != "" {
		b.alertCallback(cb.ID, alert)
		return
	}

	if allowed, reason := b.cancel.CanCancel(*booking, time.Now()); !allowed {
		b.alertCallback(cb.ID, reason)
		return
	}

	deleted, err := b.store.CancelBooking(ctx, booking.ID)
	if err != nil {
		b.logger.Error("Failed to cancel booking", "error", err, "booking_id", booking.ID)
		b.alertCallback(cb.ID, "❌ Xatolik yuz berdi.")
		return
	}
	if deleted {
		b.mirror.Publish(export.BookingDeleted, booking.ID)
		b.logger.Info("Booking cancelled by owner", "booking_id", booking.ID, "user_id", user.ID)
	}

	b.answerCallback(cb.ID, "✅ Bekor qilindi")
	edit := tgbotapi.NewEditMessageText(
		cb.Message.Chat.ID, cb.Message.MessageID,
		fmt.Sprintf("✅ O'yin bekor qilindi:\n\n📅 %s | 🕐 %s | ⚽ %s",
			booking.Date.Format("2006-01-02"), booking.Slot, booking.Field))
	b.send(edit)
}

func (b *Bot) handleBackToBookings(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	b.answerCallback(cb.ID, "")
	b.send(tgbotapi.NewDeleteMessage(cb.Message.Chat.ID, cb.Message.MessageID))

	// Re-render the list as a fresh message.
	fake := &tgbotapi.Message{Chat: cb.Message.Chat, From: cb.From}
	b.showMyBookings(ctx, fake)
}

// isBackCommand accepts the back button and its typed variants.
func isBackCommand(text string) bool {
	switch strings.ToLower(text) {
	case strings.ToLower(btnBack), "orqaga", "back":
		return true
	}
	return false
}

func parseCallbackID(data, prefix string) (int64, bool) {
	var id int64
	if _, err := fmt.Sscanf(strings.TrimPrefix(data, prefix), "%d", &id); err != nil {
		return 0, false
	}
	return id, true
}
