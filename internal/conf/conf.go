package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/biz/usecase"
)

const (
	TransportTelegram = "telegram"
	TransportFeishu   = "feishu"
)

// Config represents application configuration
type Config struct {
	// Messaging transport: telegram or feishu
	Transport string `envconfig:"TRANSPORT" default:"telegram"`

	// Telegram configuration
	TelegramToken         string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramAPIURL        string `envconfig:"TELEGRAM_API_URL" default:"https://api.telegram.org"`
	TelegramWebhookURL    string `envconfig:"TELEGRAM_WEBHOOK_URL"` // empty: long polling
	TelegramWebhookSecret string `envconfig:"TELEGRAM_WEBHOOK_SECRET"`

	// Feishu configuration
	FeishuAppID     string `envconfig:"FEISHU_APP_ID"`
	FeishuAppSecret string `envconfig:"FEISHU_APP_SECRET"`

	// Storage
	DBPath string `envconfig:"DB_PATH"`

	// Schedule, local wall-clock times in Timezone
	Timezone  string `envconfig:"TIMEZONE" default:"Europe/Amsterdam"`
	MorningAt string `envconfig:"MORNING_AT" default:"10:00"`
	DayAt     string `envconfig:"DAY_AT" default:"15:00"`
	EveningAt string `envconfig:"EVENING_AT" default:"21:00"`

	// HTTP front end (trigger, webhook, metrics)
	HTTPAddr      string `envconfig:"HTTP_ADDR" default:":8080"`
	TriggerSecret string `envconfig:"TRIGGER_SECRET"`

	// Survey catalog YAML; empty uses the built-in catalog
	CatalogPath string `envconfig:"CATALOG_PATH"`

	// Spreadsheet mirror (optional)
	SheetsSpreadsheetID   string `envconfig:"SHEETS_SPREADSHEET_ID"`
	SheetsCredentialsFile string `envconfig:"SHEETS_CREDENTIALS_FILE"`
	SheetsRange           string `envconfig:"SHEETS_RANGE" default:"entries!A:E"`

	BroadcastWorkers  int           `envconfig:"BROADCAST_WORKERS" default:"8"`
	MirrorMaxAttempts int           `envconfig:"MIRROR_MAX_ATTEMPTS" default:"3"`
	MirrorTimeout     time.Duration `envconfig:"MIRROR_TIMEOUT" default:"20s"`

	// Debug mode
	Debug bool `envconfig:"DEBUG" default:"false"`
}

// Load reads .env (if present) and the environment
func Load() (*Config, error) {
	// A missing .env is normal in production
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if cfg.DBPath == "" {
		homeDir, _ := os.UserHomeDir()
		cfg.DBPath = filepath.Join(homeDir, ".survey-bot", "data.db")
	}
	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportTelegram:
		if c.TelegramToken == "" {
			return &ConfigError{Field: "TELEGRAM_BOT_TOKEN", Message: "required for telegram transport"}
		}
	case TransportFeishu:
		if c.FeishuAppID == "" || c.FeishuAppSecret == "" {
			return &ConfigError{Field: "FEISHU_APP_ID/FEISHU_APP_SECRET", Message: "required for feishu transport"}
		}
	default:
		return &ConfigError{Field: "TRANSPORT", Message: fmt.Sprintf("unsupported transport %q", c.Transport)}
	}
	return c.ValidateCore()
}

// ValidateCore checks the settings every binary needs, transport aside
func (c *Config) ValidateCore() error {
	if _, err := c.Location(); err != nil {
		return &ConfigError{Field: "TIMEZONE", Message: err.Error()}
	}
	for name, v := range map[string]string{"MORNING_AT": c.MorningAt, "DAY_AT": c.DayAt, "EVENING_AT": c.EveningAt} {
		if _, err := ParseClock(v); err != nil {
			return &ConfigError{Field: name, Message: err.Error()}
		}
	}
	if c.BroadcastWorkers <= 0 {
		return &ConfigError{Field: "BROADCAST_WORKERS", Message: "must be positive"}
	}
	if c.MirrorMaxAttempts <= 0 {
		return &ConfigError{Field: "MIRROR_MAX_ATTEMPTS", Message: "must be positive"}
	}
	if c.SheetsSpreadsheetID != "" && c.SheetsRange == "" {
		return &ConfigError{Field: "SHEETS_RANGE", Message: "required when SHEETS_SPREADSHEET_ID is set"}
	}
	return nil
}

// Location loads the configured time zone
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// BroadcastTimes returns the local time of day of each scheduled survey
func (c *Config) BroadcastTimes() (map[domain.SurveyKind]time.Duration, error) {
	times := make(map[domain.SurveyKind]time.Duration, len(domain.Kinds))
	for kind, v := range map[domain.SurveyKind]string{
		domain.KindMorning: c.MorningAt,
		domain.KindDay:     c.DayAt,
		domain.KindEvening: c.EveningAt,
	} {
		d, err := ParseClock(v)
		if err != nil {
			return nil, fmt.Errorf("%s time: %w", kind, err)
		}
		times[kind] = d
	}
	return times, nil
}

// ToMirrorConfig converts to the entry sink retry settings
func (c *Config) ToMirrorConfig() usecase.MirrorConfig {
	cfg := usecase.DefaultMirrorConfig()
	cfg.MaxAttempts = c.MirrorMaxAttempts
	if c.MirrorTimeout > 0 {
		cfg.Timeout = c.MirrorTimeout
	}
	return cfg
}

// ParseClock parses HH:MM into an offset from local midnight
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q, want HH:MM", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
