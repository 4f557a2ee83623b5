package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"stadion-bot/config"
	"stadion-bot/internal/availability"
	"stadion-bot/internal/dialog"
	"stadion-bot/internal/export"
	"stadion-bot/internal/ledger"
	"stadion-bot/internal/policy"
	"stadion-bot/internal/stats"
	"stadion-bot/pkg/logger"
)

// Main menu buttons.
const (
	btnBook       = "⚽ Band qilish"
	btnMyBookings = "📋 Mening o'yinlarim"
	btnAdminPanel = "🔐 Admin panel"
)

// Admin menu buttons.
const (
	btnAllBookings   = "📋 Barcha o'yinlar"
	btnStats         = "📊 Statistika"
	btnChartStats    = "📈 Grafik statistika"
	btnExcel         = "📥 Excel yuklash"
	btnDeleteBooking = "🗑 O'yinni o'chirish"
	btnMainMenu      = "🏠 Asosiy menyu"
)

const btnBack = "🔙 Orqaga"

type Bot struct {
	api      *tgbotapi.BotAPI
	store    ledger.Store
	states   *dialog.Manager
	resolver *availability.Resolver
	cancel   policy.CancelPolicy
	reporter *stats.Reporter
	mirror   *export.Mirror
	cfg      *config.Config
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBot(cfg *config.Config, store ledger.Store, resolver *availability.Resolver, reporter *stats.Reporter, mirror *export.Mirror, logger *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	logger.Info("Authorized on Telegram", "username", api.Self.UserName)

	return &Bot{
		api:      api,
		store:    store,
		states:   dialog.NewManager(),
		resolver: resolver,
		cancel:   policy.CancelPolicy{DeadlineHour: cfg.Stadium.CancelDeadlineHour},
		reporter: reporter,
		mirror:   mirror,
		cfg:      cfg,
		validate: validator.New(),
		logger:   logger,
	}, nil
}

// Start begins receiving updates from Telegram via polling
func (b *Bot) Start(ctx context.Context) error {
	_, err := b.api.Request(tgbotapi.DeleteWebhookConfig{
		DropPendingUpdates: true,
	})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("Started receiving Telegram updates")

	go b.handleUpdates(ctx, updates)

	return nil
}

// handleUpdates processes incoming updates from Telegram
func (b *Bot) handleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		go func(update tgbotapi.Update) {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("Recovered from panic while processing update", "error", r)
				}
			}()

			switch {
			case update.Message != nil:
				if update.Message.IsCommand() {
					b.handleCommand(ctx, update.Message)
				} else {
					b.handleMessage(ctx, update.Message)
				}
			case update.CallbackQuery != nil:
				b.handleCallback(ctx, update.CallbackQuery)
			}
		}(update)
	}
}

// Stop gracefully shuts down the bot
func (b *Bot) Stop(ctx context.Context) error {
	b.api.StopReceivingUpdates()

	// Allow time for in-flight handlers to complete
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(500 * time.Millisecond):
		return nil
	}
}

// Notify implements reminder.Notifier: best-effort delivery to a
// Telegram identity.
func (b *Bot) Notify(telegramID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(telegramID, text))
	return err
}

// send delivers a message and logs delivery failures; transport
// faults never bubble into the dialog flow.
func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Error("Failed to send message", "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) replyWithMarkup(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	b.send(msg)
}

// handleCommand processes bot commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()
	chatID := message.Chat.ID
	userID := message.From.ID

	b.logger.Info("Handling command", "command", command, "user_id", userID)

	switch command {
	case "start":
		user, err := b.store.UserByTelegramID(ctx, userID)
		if err == nil {
			b.states.Reset(userID)
			b.replyWithMarkup(chatID,
				fmt.Sprintf("👋 Xush kelibsiz, %s!\n\nQuyidagi menyudan tanlang:", user.Name),
				mainMenu())
			return
		}
		b.states.BeginRegistration(userID)
		b.reply(chatID,
			"👋 Assalomu alaykum!\n\n"+
				"Botdan foydalanish uchun ro'yxatdan o'ting.\n\n"+
				"Iltimos, ismingizni kiriting:")

	case "register":
		if _, err := b.store.UserByTelegramID(ctx, userID); err == nil {
			b.replyWithMarkup(chatID, "✅ Siz allaqachon ro'yxatdan o'tgansiz!", mainMenu())
			return
		}
		b.states.BeginRegistration(userID)
		b.reply(chatID, "👤 Ismingizni kiriting:")

	case "help":
		b.reply(chatID, "Men stadion band qilish botiman. Boshlash uchun /start dan foydalaning.")

	default:
		b.reply(chatID, "Noma'lum buyruq. Boshlash uchun /start dan foydalaning.")
	}
}

// handleMessage routes non-command messages: first the menu buttons,
// then whatever step the user's dialog is at.
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	state := b.states.Get(userID)

	switch message.Text {
	case btnBook:
		b.startBooking(ctx, message)
		return
	case btnMyBookings:
		b.showMyBookings(ctx, message)
		return
	case btnAdminPanel:
		b.startAdminLogin(message)
		return
	case btnMainMenu:
		b.states.DropAdmin(userID)
		b.replyWithMarkup(message.Chat.ID, "🏠 Asosiy menyu:", mainMenu())
		return
	}

	if state.Admin && state.Step == dialog.StepIdle {
		if b.handleAdminMenu(ctx, message) {
			return
		}
	}

	switch state.Step {
	case dialog.StepAwaitingName:
		b.handleName(message)
	case dialog.StepAwaitingSurname:
		b.handleSurname(message)
	case dialog.StepAwaitingPhone:
		b.handlePhone(ctx, message)
	case dialog.StepSelectingDate:
		b.reply(message.Chat.ID, "📅 Iltimos, sanani kalendardan tanlang.")
	case dialog.StepSelectingField:
		b.handleFieldSelection(ctx, message, state)
	case dialog.StepSelectingSlot:
		b.handleSlotSelection(ctx, message, state)
	case dialog.StepAdminPassword:
		b.handleAdminPassword(message)
	case dialog.StepAdminDelete:
		b.handleAdminDeleteInput(ctx, message)
	default:
		b.reply(message.Chat.ID, "Boshlash uchun /start dan foydalaning.")
	}
}

// handleCallback routes inline keyboard presses.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data

	switch {
	case data == callbackIgnore:
		b.answerCallback(cb.ID, "")
	case data == callbackCalendarCancel:
		b.handleCalendarCancel(cb)
	case strings.HasPrefix(data, callbackCalendarNav):
		b.handleCalendarNav(cb)
	case strings.HasPrefix(data, callbackCalendarDay):
		b.handleCalendarDay(cb)
	case strings.HasPrefix(data, callbackViewBooking):
		b.handleViewBooking(ctx, cb)
	case strings.HasPrefix(data, callbackCancelBooking):
		b.handleCancelBooking(ctx, cb)
	case data == callbackBackToBookings:
		b.handleBackToBookings(ctx, cb)
	case strings.HasPrefix(data, callbackAdminDelete):
		b.handleAdminDeleteConfirm(ctx, cb)
	case data == callbackAdminCancelDelete:
		b.handleAdminDeleteAbort(cb)
	default:
		b.answerCallback(cb.ID, "")
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.logger.Error("Failed to answer callback", "error", err)
	}
}

func (b *Bot) alertCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallbackWithAlert(id, text)); err != nil {
		b.logger.Error("Failed to answer callback", "error", err)
	}
}
