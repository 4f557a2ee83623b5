package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"stadion-bot/internal/export"
)

// Telegram rejects messages beyond 4096 characters; chunk below that.
const messageChunkLimit = 4000

func (b *Bot) startAdminLogin(message *tgbotapi.Message) {
	b.states.BeginAdminLogin(message.From.ID)
	b.reply(message.Chat.ID, "🔑 Admin parolini kiriting:")
}

func (b *Bot) handleAdminPassword(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	userID := message.From.ID

	if message.Text != b.cfg.Admin.Password {
		b.states.Reset(userID)
		b.replyWithMarkup(chatID, "❌ Noto'g'ri parol!", mainMenu())
		return
	}

	b.states.GrantAdmin(userID)
	b.logger.Info("Admin authenticated", "telegram_id", userID)
	b.replyWithMarkup(chatID, "✅ Admin panelga xush kelibsiz!", adminMenu())
}

// handleAdminMenu dispatches the admin keyboard. It reports whether
// the message was one of the admin buttons.
func (b *Bot) handleAdminMenu(ctx context.Context, message *tgbotapi.Message) bool {
	switch message.Text {
	case btnAllBookings:
		b.sendAllBookings(ctx, message.Chat.ID)
	case btnStats:
		b.sendStats(ctx, message.Chat.ID)
	case btnChartStats:
		b.sendChartStats(ctx, message.Chat.ID)
	case btnExcel:
		b.sendExcel(ctx, message.Chat.ID)
	case btnDeleteBooking:
		b.states.BeginAdminDelete(message.From.ID)
		b.reply(message.Chat.ID, "🗑 O'chiriladigan o'yin ID raqamini kiriting:")
	default:
		return false
	}
	return true
}

func (b *Bot) sendAllBookings(ctx context.Context, chatID int64) {
	bookings, err := b.store.AllBookings(ctx)
	if err != nil {
		b.logger.Error("Failed to load bookings", "error", err)
		b.reply(chatID, "❌ Xatolik yuz berdi.")
		return
	}
	if len(bookings) == 0 {
		b.reply(chatID, "📭 Hali o'yinlar yo'q.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 Barcha o'yinlar (%d ta):\n\n", len(bookings)))
	for _, bk := range bookings {
		owner := "N/A"
		phone := "-"
		if user, err := b.store.UserByID(ctx, bk.UserID); err == nil {
			owner = user.FullName()
			phone = user.Phone
		}
		line := fmt.Sprintf("🆔 %d | 📅 %s | 🕐 %s | ⚽ %s\n👤 %s | 📞 %s\n\n",
			bk.ID, bk.Date.Format("2006-01-02"), bk.Slot, bk.Field, owner, phone)

		if sb.Len()+len(line) > messageChunkLimit {
			b.reply(chatID, sb.String())
			sb.Reset()
		}
		sb.WriteString(line)
	}
	if sb.Len() > 0 {
		b.reply(chatID, sb.String())
	}
}

func (b *Bot) sendStats(ctx context.Context, chatID int64) {
	summary, err := b.reporter.Summary(ctx)
	if err != nil {
		b.logger.Error("Failed to build summary", "error", err)
		b.reply(chatID, "❌ Statistika tayyorlashda xatolik.")
		return
	}
	b.reply(chatID, summary)

	report, err := b.reporter.TextReport(ctx)
	if err != nil {
		b.logger.Error("Failed to build text report", "error", err)
		return
	}
	b.reply(chatID, report)
}

func (b *Bot) sendChartStats(ctx context.Context, chatID int64) {
	images, err := b.reporter.Charts(ctx)
	if err != nil {
		b.logger.Error("Failed to render charts", "error", err)
		b.reply(chatID, "❌ Grafik tayyorlashda xatolik.")
		return
	}
	if len(images) == 0 {
		b.reply(chatID, "📭 Grafik uchun ma'lumot yetarli emas.")
		return
	}

	for _, img := range images {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
			Name:  "chart.png",
			Bytes: img.PNG,
		})
		photo.Caption = img.Title
		b.send(photo)
	}
}

func (b *Bot) sendExcel(ctx context.Context, chatID int64) {
	data, err := b.mirror.File(ctx)
	if err != nil {
		b.logger.Error("Failed to read export file", "error", err)
		b.reply(chatID, "❌ Excel faylni tayyorlashda xatolik.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  b.mirror.FileName(),
		Bytes: data,
	})
	doc.Caption = "📥 Barcha o'yinlar tarixi"
	b.send(doc)
}

func (b *Bot) handleAdminDeleteInput(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	userID := message.From.ID

	id, err := strconv.ParseInt(strings.TrimSpace(message.Text), 10, 64)
	if err != nil {
		b.reply(chatID, "❌ Raqam kiriting, masalan: 42")
		return
	}

	booking, err := b.store.BookingByID(ctx, id)
	if err != nil {
		b.states.FinishAdminStep(userID)
		b.replyWithMarkup(chatID, "❌ Bunday ID bilan o'yin topilmadi.", adminMenu())
		return
	}

	owner := "N/A"
	if user, uerr := b.store.UserByID(ctx, booking.UserID); uerr == nil {
		owner = user.FullName()
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("✅ Ha, o'chirish",
				fmt.Sprintf("%s%d", callbackAdminDelete, booking.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Yo'q", callbackAdminCancelDelete),
		},
	)

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"Quyidagi o'yin o'chirilsinmi?\n\n🆔 %d\n📅 %s | 🕐 %s | ⚽ %s\n👤 %s",
		booking.ID, booking.Date.Format("2006-01-02"), booking.Slot, booking.Field, owner))
	msg.ReplyMarkup = markup
	b.send(msg)
}

// handleAdminDeleteConfirm removes the booking unconditionally; the
// owner-facing cancellation deadline does not bind administrators.
func (b *Bot) handleAdminDeleteConfirm(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	userID := cb.From.ID
	if !b.states.Get(userID).Admin {
		b.alertCallback(cb.ID, "❌ Ruxsat yo'q.")
		return
	}

	id, ok := parseCallbackID(cb.Data, callbackAdminDelete)
	if !ok {
		b.answerCallback(cb.ID, "")
		return
	}

	deleted, err := b.store.CancelBooking(ctx, id)
	if err != nil {
		b.logger.Error("Failed to delete booking", "error", err, "booking_id", id)
		b.alertCallback(cb.ID, "❌ Xatolik yuz berdi.")
		return
	}

	b.states.FinishAdminStep(userID)
	b.answerCallback(cb.ID, "")

	if !deleted {
		b.send(tgbotapi.NewEditMessageText(
			cb.Message.Chat.ID, cb.Message.MessageID, "❌ O'yin allaqachon o'chirilgan."))
		return
	}

	b.mirror.Publish(export.BookingDeleted, id)
	b.logger.Info("Booking deleted by admin", "booking_id", id, "telegram_id", userID)
	b.send(tgbotapi.NewEditMessageText(
		cb.Message.Chat.ID, cb.Message.MessageID,
		fmt.Sprintf("✅ O'yin (ID %d) o'chirildi.", id)))
}

func (b *Bot) handleAdminDeleteAbort(cb *tgbotapi.CallbackQuery) {
	b.states.FinishAdminStep(cb.From.ID)
	b.answerCallback(cb.ID, "")
	b.send(tgbotapi.NewEditMessageText(
		cb.Message.Chat.ID, cb.Message.MessageID, "❌ O'chirish bekor qilindi."))
}
