package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

var (
	ErrMissingCredential     = errors.New("api key is not configured")
	ErrPlaceholderCredential = errors.New("api key is still the placeholder value")
)

type StoreBackend string

const (
	StoreFile     StoreBackend = "file"
	StorePostgres StoreBackend = "postgres"
	StoreRedis    StoreBackend = "redis"
)

type Config struct {
	// Core
	APIKey       string  `env:"OPENROUTER_API_KEY"`
	BaseURL      string  `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	Model        string  `env:"CHAT_MODEL" envDefault:"google/gemini-2.0-flash-001"`
	Temperature  float64 `env:"CHAT_TEMPERATURE" envDefault:"0.7"`
	SystemPrompt string  `env:"CHAT_SYSTEM_PROMPT"`

	// Persistence
	DataDir     string       `env:"CHAT_DATA_DIR" envDefault:"data"`
	Store       StoreBackend `env:"CHAT_STORE" envDefault:"file"`
	DatabaseURL string       `env:"DATABASE_URL"`
	RedisURL    string       `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	// Output
	LogFile  string `env:"CHAT_LOG_FILE" envDefault:"chat.log"`
	ShowCost bool   `env:"CHAT_SHOW_COST" envDefault:"false"`

	// Telegram notifications
	TelegramBotToken      string `env:"LOG_TELEGRAM_BOT_TOKEN"`
	LogTelegramChatID     int64  `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError         int    `env:"LOG_TOPIC_ERROR"`
	LogTopicFeedback      int    `env:"LOG_TOPIC_FEEDBACK"`
	LogTopicSessionClosed int    `env:"LOG_TOPIC_SESSION_CLOSED"`
}

// Load reads configuration from the process environment, overlaid with the
// values found in envFile when that file exists.
func Load(envFile string) (*Config, error) {
	environ := env.ToMap(os.Environ())
	if envFile != "" {
		fileVars, err := ReadEnvFile(envFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read env file: %w", err)
		}
		for k, v := range fileVars {
			if _, set := environ[k]; !set {
				environ[k] = v
			}
		}
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	return cfg, nil
}

// Validate fails fast on settings the session cannot start without.
func (c *Config) Validate() error {
	if err := ValidateAPIKey(c.APIKey); err != nil {
		return err
	}
	switch c.Store {
	case StoreFile, StoreRedis:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("store %q requires DATABASE_URL", c.Store)
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %.2f is outside 0-2", c.Temperature)
	}
	return nil
}

func ValidateAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrMissingCredential
	}
	if key == PlaceholderAPIKey {
		return ErrPlaceholderCredential
	}
	return nil
}

// APIKeyLooksSuspicious reports keys that are unlikely to be real. It never
// blocks startup; the backend has the final word.
func APIKeyLooksSuspicious(key string) bool {
	return !strings.HasPrefix(key, "sk-") && len(key) < 20
}

func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.LogTelegramChatID != 0
}
