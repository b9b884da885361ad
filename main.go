package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "taskdesk/app/configs"
	"taskdesk/app/core/bot"
	"taskdesk/app/core/dialog"
	"taskdesk/app/core/interaction/telegram"
	"taskdesk/app/core/scheduler"
	"taskdesk/app/core/store"
	"taskdesk/app/pkg/logger"
	"taskdesk/app/pkg/types"
)

func main() {
	if err := logger.Init("output/logs"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.Info("TaskDesk Bot Starting...")

	cfgManager, err := config.NewManager(config.DefaultPath())
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		os.Exit(1)
	}
	cfg := cfgManager.Get()
	if cfg.Telegram.BotToken == "" {
		logger.Error("telegram.bot_token is required (or set TELEGRAM_BOT_TOKEN)")
		os.Exit(1)
	}
	if cfg.Supabase.URL == "" || cfg.Supabase.AnonKey == "" {
		logger.Error("supabase.url and supabase.anon_key are required")
		os.Exit(1)
	}

	records := store.NewClient(cfg.Supabase.URL, cfg.Supabase.AnonKey)

	channel := telegram.NewChannel(telegram.Config{
		BotToken:       cfg.Telegram.BotToken,
		PollInterval:   time.Duration(cfg.Telegram.PollIntervalSec) * time.Second,
		TimeoutSeconds: cfg.Telegram.TimeoutSec,
	})

	desk := bot.New(records, dialog.NewMemoryStore(), channel, bot.Config{
		AdminID:     cfg.Bot.AdminTelegramID,
		BotUsername: cfg.Bot.BotUsername,
		Location:    cfg.Location(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobScheduler := scheduler.New()
	if err := jobScheduler.Register(scheduler.JobSpec{
		Name:     "reminder-sweep",
		Interval: time.Duration(cfg.Bot.ReminderPeriodMin) * time.Minute,
		Timeout:  2 * time.Minute,
		Run:      desk.SweepReminders,
	}); err != nil {
		logger.Error("Failed to register reminder job: %v", err)
		os.Exit(1)
	}
	if err := jobScheduler.Start(ctx); err != nil {
		logger.Error("Failed to start scheduler: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := jobScheduler.Stop(3 * time.Second); err != nil {
			logger.Error("Scheduler shutdown timeout: %v", err)
		}
	}()

	go func() {
		if err := channel.Start(ctx, func(u types.Update) {
			desk.Handle(ctx, u)
		}); err != nil {
			logger.Error("Telegram channel crashed: %v", err)
			os.Exit(1)
		}
	}()

	logger.Info("TaskDesk is ready to serve.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received signal: %v. TaskDesk Shutting Down...", sig)
	cancel()
}
