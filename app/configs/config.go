package configs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Supabase SupabaseConfig `json:"supabase"`
	Bot      BotConfig      `json:"bot"`
}

type TelegramConfig struct {
	BotToken        string `json:"bot_token"`
	PollIntervalSec int    `json:"poll_interval_sec"`
	TimeoutSec      int    `json:"timeout_sec"`
}

type SupabaseConfig struct {
	URL     string `json:"url"`
	AnonKey string `json:"anon_key"`
}

type BotConfig struct {
	AdminTelegramID   string `json:"admin_telegram_id"`
	BotUsername       string `json:"bot_username"`
	Timezone          string `json:"timezone"`
	ReminderPeriodMin int    `json:"reminder_period_min"`
}

type Manager struct {
	path string
	mu   sync.RWMutex
	cfg  Config
}

func DefaultPath() string {
	return filepath.Join("config", "config.json")
}

func NewManager(path string) (*Manager, error) {
	mgr := &Manager{
		path: path,
		cfg:  defaultConfig(),
	}
	if err := mgr.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	mgr.applyEnv()
	if err := mgr.save(); err != nil {
		return nil, err
	}
	return mgr, nil
}

func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Update(apply func(*Config)) (Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apply(&m.cfg)
	applyDefaults(&m.cfg)
	if err := m.saveLocked(); err != nil {
		return Config{}, err
	}
	return m.cfg, nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return err
	}
	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return err
	}
	m.cfg = fileCfg
	applyDefaults(&m.cfg)
	return nil
}

// applyEnv lets deployment secrets override whatever the file carries.
func (m *Manager) applyEnv() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")); v != "" {
		m.cfg.Telegram.BotToken = v
	}
	if v := strings.TrimSpace(os.Getenv("SUPABASE_URL")); v != "" {
		m.cfg.Supabase.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("SUPABASE_ANON_KEY")); v != "" {
		m.cfg.Supabase.AnonKey = v
	}
	if v := strings.TrimSpace(os.Getenv("ADMIN_TELEGRAM_ID")); v != "" {
		m.cfg.Bot.AdminTelegramID = v
	}
	if v := strings.TrimSpace(os.Getenv("TIMEZONE")); v != "" {
		m.cfg.Bot.Timezone = v
	}
}

func (m *Manager) save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m.cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0644)
}

// Location resolves the configured timezone, falling back to local time.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Bot.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func defaultConfig() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Telegram.PollIntervalSec <= 0 {
		cfg.Telegram.PollIntervalSec = 2
	}
	if cfg.Telegram.TimeoutSec <= 0 {
		cfg.Telegram.TimeoutSec = 20
	}
	if strings.TrimSpace(cfg.Bot.Timezone) == "" {
		cfg.Bot.Timezone = "Asia/Irkutsk"
	}
	if cfg.Bot.ReminderPeriodMin <= 0 {
		cfg.Bot.ReminderPeriodMin = 60
	}
}
