// cmd/bot/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stadion-bot/config"
	"stadion-bot/internal/availability"
	"stadion-bot/internal/bot"
	"stadion-bot/internal/export"
	"stadion-bot/internal/ledger"
	"stadion-bot/internal/reminder"
	"stadion-bot/internal/server"
	"stadion-bot/internal/stats"
	"stadion-bot/pkg/logger"
)

func main() {
	// Initialize logger
	l := logger.New()
	l.Info("Starting Stadion Booking Bot...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l.Fatal("Failed to load config", err)
	}

	// Validate critical configuration
	if cfg.Telegram.Token == "" {
		l.Fatal("Telegram token is not configured")
	}
	if cfg.Admin.Password == "" {
		l.Fatal("Admin password is not configured")
	}
	if len(cfg.Stadium.Prices) == 0 {
		l.Fatal("No stadium fields configured")
	}

	// Initialize database connection with retry
	var store *ledger.PostgresStore
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		store, err = ledger.NewPostgresStore(ledger.PostgresConfig{
			Host:         cfg.DB.Host,
			Port:         cfg.DB.Port,
			User:         cfg.DB.User,
			Password:     cfg.DB.Password,
			DBName:       cfg.DB.DBName,
			SSLMode:      cfg.DB.SSLMode,
			MaxOpenConns: cfg.DB.MaxOpenConns,
			MaxIdleConns: cfg.DB.MaxIdleConns,
			ConnLifetime: cfg.DB.ConnLifetime,
		})
		if err == nil {
			break
		}
		l.Error("Failed to connect to database, retrying...", "error", err, "attempt", i+1)
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	if store == nil {
		l.Fatal("Failed to connect to database after multiple attempts", err)
	}
	defer store.Close()

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.InitSchema(initCtx); err != nil {
		initCancel()
		l.Fatal("Failed to initialize database schema", err)
	}
	initCancel()

	resolver := availability.NewResolver(store, cfg.Stadium.OpenHour, cfg.Stadium.CloseHour)
	reporter := stats.NewReporter(store, cfg.Stadium.Prices, cfg.Fields(),
		cfg.Stadium.OpenHour, cfg.Stadium.CloseHour)
	mirror := export.NewMirror(store, cfg.Stadium.Prices, cfg.Export.File, l.Named("export"))

	telegramBot, err := bot.NewBot(cfg, store, resolver, reporter, mirror, l.Named("bot"))
	if err != nil {
		l.Fatal("Failed to create Telegram bot", err)
	}

	runCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	go mirror.Run(runCtx)

	scheduler := reminder.NewScheduler(store, telegramBot, l.Named("reminder"),
		cfg.Reminder.Lead, cfg.Reminder.Poll, cfg.Reminder.Tolerance)
	go scheduler.Run(runCtx)

	l.Info("Starting Telegram bot...")
	if err := telegramBot.Start(runCtx); err != nil {
		l.Fatal("Failed to start Telegram bot", err)
	}
	l.Info("Telegram bot started successfully")

	// Start health endpoint server
	httpServer := server.NewServer(cfg.Server.Port, l.Named("http"))
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("Failed to start HTTP server", err)
		}
	}()

	// Wait for termination signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("Shutting down bot...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Stop HTTP server first
	if err := httpServer.Stop(ctx); err != nil {
		l.Error("Error during HTTP server shutdown", "error", err)
	}

	// Stop background workers, then the bot
	stopWorkers()
	if err := telegramBot.Stop(ctx); err != nil {
		l.Error("Error during bot shutdown", "error", err)
	}

	l.Info("Bot stopped successfully")
}
