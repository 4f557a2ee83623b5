package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nyaruka/phonenumbers"

	"stadion-bot/internal/ledger"
)

func (b *Bot) handleName(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	name := strings.TrimSpace(message.Text)

	if err := b.validate.Var(name, "required,min=2"); err != nil {
		b.reply(chatID, "❌ Ism juda qisqa. Iltimos, qaytadan kiriting:")
		return
	}

	b.states.SetName(message.From.ID, name)
	b.reply(chatID, "👤 Endi familiyangizni kiriting:")
}

func (b *Bot) handleSurname(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	surname := strings.TrimSpace(message.Text)

	if err := b.validate.Var(surname, "required,min=2"); err != nil {
		b.reply(chatID, "❌ Familiya juda qisqa. Iltimos, qaytadan kiriting:")
		return
	}

	b.states.SetSurname(message.From.ID, surname)
	b.replyWithMarkup(chatID,
		"📱 Telefon raqamingizni ulashing yoki +998XXXXXXXXX ko'rinishida yozing:",
		contactRequestMenu())
}

func (b *Bot) handlePhone(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	userID := message.From.ID

	var raw string
	if message.Contact != nil {
		raw = message.Contact.PhoneNumber
	} else {
		raw = strings.TrimSpace(message.Text)
	}

	phone, ok := normalizePhone(raw)
	if !ok {
		b.reply(chatID, "❌ Telefon raqam noto'g'ri. +998XXXXXXXXX ko'rinishida kiriting:")
		return
	}

	state := b.states.Get(userID)
	user, err := b.store.RegisterUser(ctx, userID, state.Name, state.Surname, phone)
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateUser) {
			b.states.Reset(userID)
			b.replyWithMarkup(chatID, "✅ Siz allaqachon ro'yxatdan o'tgansiz!", mainMenu())
			return
		}
		b.logger.Error("Failed to register user", "error", err, "telegram_id", userID)
		b.reply(chatID, "❌ Xatolik yuz berdi. Keyinroq qayta urinib ko'ring.")
		return
	}

	b.states.Reset(userID)
	b.logger.Info("User registered", "user_id", user.ID, "telegram_id", userID)
	b.replyWithMarkup(chatID,
		fmt.Sprintf("✅ Ro'yxatdan o'tdingiz, %s!\n\nEndi maydon band qilishingiz mumkin.", user.Name),
		mainMenu())
}

// normalizePhone accepts an Uzbek mobile number with or without the
// leading plus and returns it in +998XXXXXXXXX form.
func normalizePhone(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !strings.HasPrefix(raw, "+") {
		raw = "+" + raw
	}

	num, err := phonenumbers.Parse(raw, "UZ")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", false
	}
	if num.GetCountryCode() != 998 {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}
