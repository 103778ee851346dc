package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config ilovaning konfiguratsiyasi
type Config struct {
	Port             string `env:"PORT" envDefault:"3000"`
	TelegramToken    string `env:"TELEGRAM_BOT_TOKEN"`
	AdminID          int64  `env:"ADMIN_ID"`
	BroadcastChannel string `env:"BROADCAST_CHANNEL"`
	OwnerName        string `env:"OWNER_NAME" envDefault:"Abdurahmon"`
	TimeZone         string `env:"TIME_ZONE" envDefault:"Local"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`

	KeepAliveURL      string        `env:"KEEP_ALIVE_URL"`
	KeepAliveInterval time.Duration `env:"KEEP_ALIVE_INTERVAL" envDefault:"49s"`

	DebounceWindow  time.Duration `env:"DEBOUNCE_WINDOW" envDefault:"1s"`
	RateLimitTTL    time.Duration `env:"RATE_LIMIT_TTL" envDefault:"1h"`
	RateLimitSweep  time.Duration `env:"RATE_LIMIT_SWEEP_INTERVAL" envDefault:"10m"`
	AckRetries      int           `env:"ACK_RETRY_ATTEMPTS" envDefault:"1"`
	AckRetryDelay   time.Duration `env:"ACK_RETRY_DELAY" envDefault:"2s"`
	ConflictBackoff time.Duration `env:"POLL_CONFLICT_BACKOFF" envDefault:"5s"`
	PollTimeout     int           `env:"POLL_TIMEOUT" envDefault:"60"`

	WorkerCount   int           `env:"WORKER_COUNT" envDefault:"0"`
	// RESTART_BUDGET=0 restartni cheklamaydi
	RestartBudget int           `env:"RESTART_BUDGET" envDefault:"10"`
	RestartWindow time.Duration `env:"RESTART_WINDOW" envDefault:"1m"`

	ContactsDBPath string `env:"CONTACTS_DB_PATH"`
}

// Load konfiguratsiyani yuklash. envFile bo'sh bo'lsa joriy papkadagi .env o'qiladi.
func Load(envFile string) (*Config, error) {
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}
	return parse(env.Options{})
}

func loadDotEnv(envFile string) error {
	if envFile == "" {
		// .env faylini yuklash (mavjud bo'lsa)
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("env faylini o'qib bo'lmadi (%s): %w", envFile, err)
	}
	return nil
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("konfiguratsiya noto'g'ri: %w", err)
	}

	cfg.BroadcastChannel = strings.TrimSpace(cfg.BroadcastChannel)
	cfg.KeepAliveURL = strings.TrimSpace(cfg.KeepAliveURL)

	if cfg.Port == "" {
		return nil, errors.New("PORT bo'sh bo'lmasligi kerak")
	}
	if cfg.DebounceWindow <= 0 {
		return nil, fmt.Errorf("DEBOUNCE_WINDOW musbat bo'lishi kerak: %s", cfg.DebounceWindow)
	}
	if cfg.RateLimitTTL < cfg.DebounceWindow {
		cfg.RateLimitTTL = cfg.DebounceWindow
	}
	if cfg.KeepAliveInterval <= 0 {
		return nil, fmt.Errorf("KEEP_ALIVE_INTERVAL musbat bo'lishi kerak: %s", cfg.KeepAliveInterval)
	}
	if cfg.AckRetries < 0 {
		return nil, fmt.Errorf("ACK_RETRY_ATTEMPTS manfiy bo'lmasligi kerak: %d", cfg.AckRetries)
	}
	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("WORKER_COUNT manfiy bo'lmasligi kerak: %d", cfg.WorkerCount)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("TIME_ZONE noto'g'ri: %w", err)
	}

	return cfg, nil
}

// ValidateBot koordinator jarayoni uchun majburiy maydonlarni tekshirish
func (c *Config) ValidateBot() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable bo'sh")
	}
	if c.AdminID == 0 {
		return fmt.Errorf("ADMIN_ID environment variable bo'sh")
	}
	if c.BroadcastChannel == "" {
		return fmt.Errorf("BROADCAST_CHANNEL environment variable bo'sh")
	}
	return nil
}

// Location TIME_ZONE qiymatidan vaqt zonasini olish
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || strings.EqualFold(c.TimeZone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.TimeZone)
}

// Addr HTTP tinglash manzili
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
