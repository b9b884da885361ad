package configs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}

	applyDefaults(&cfg)

	if cfg.Telegram.PollIntervalSec != 2 {
		t.Fatalf("unexpected poll interval: %d", cfg.Telegram.PollIntervalSec)
	}
	if cfg.Telegram.TimeoutSec != 20 {
		t.Fatalf("unexpected timeout: %d", cfg.Telegram.TimeoutSec)
	}
	if cfg.Bot.Timezone != "Asia/Irkutsk" {
		t.Fatalf("unexpected timezone: %s", cfg.Bot.Timezone)
	}
	if cfg.Bot.ReminderPeriodMin != 60 {
		t.Fatalf("unexpected reminder period: %d", cfg.Bot.ReminderPeriodMin)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Telegram: TelegramConfig{PollIntervalSec: 5, TimeoutSec: 30},
		Bot:      BotConfig{Timezone: "Europe/Moscow", ReminderPeriodMin: 15},
	}

	applyDefaults(&cfg)

	if cfg.Telegram.PollIntervalSec != 5 || cfg.Telegram.TimeoutSec != 30 {
		t.Fatalf("telegram values overwritten: %+v", cfg.Telegram)
	}
	if cfg.Bot.Timezone != "Europe/Moscow" || cfg.Bot.ReminderPeriodMin != 15 {
		t.Fatalf("bot values overwritten: %+v", cfg.Bot)
	}
}

func TestManagerCreatesAndReloadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("new manager failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if _, err := mgr.Update(func(c *Config) {
		c.Bot.BotUsername = "taskdesk_bot"
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	reloaded, err := NewManager(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := reloaded.Get().Bot.BotUsername; got != "taskdesk_bot" {
		t.Fatalf("updated value lost on reload: %q", got)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("ADMIN_TELEGRAM_ID", "42")

	mgr, err := NewManager(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("new manager failed: %v", err)
	}
	cfg := mgr.Get()
	if cfg.Telegram.BotToken != "env-token" {
		t.Fatalf("token not overridden: %q", cfg.Telegram.BotToken)
	}
	if cfg.Bot.AdminTelegramID != "42" {
		t.Fatalf("admin id not overridden: %q", cfg.Bot.AdminTelegramID)
	}
}

func TestLocationFallsBackToLocal(t *testing.T) {
	cfg := Config{Bot: BotConfig{Timezone: "Not/AZone"}}
	if cfg.Location() == nil {
		t.Fatal("expected a location")
	}
	cfg.Bot.Timezone = "UTC"
	if cfg.Location().String() != "UTC" {
		t.Fatalf("unexpected location: %s", cfg.Location())
	}
}
