package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ilinovom/linkvault-bot/internal/service"
)

// Config holds runtime configuration loaded from the environment.
type Config struct {
	TelegramToken string
	AdminUserID   int64
	BotUsername   string
	PollTimeout   time.Duration

	DBConnString string
	DBTimeout    time.Duration

	Port     string
	LogLevel string

	SessionTTL             time.Duration
	ItemDelay              time.Duration
	BroadcastDelay         time.Duration
	BroadcastProgressEvery int
	UsageWindow            time.Duration

	ChannelButtonName string
	ChannelButtonURL  string
}

// FromEnv loads configuration from environment variables. A .env file in the
// working directory is read first when present. BOT_TOKEN (or TELEGRAM_TOKEN)
// and DATABASE_URL are required.
func FromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c := &Config{
		TelegramToken:     os.Getenv("BOT_TOKEN"),
		BotUsername:       strings.TrimPrefix(os.Getenv("BOT_USERNAME"), "@"),
		DBConnString:      os.Getenv("DATABASE_URL"),
		Port:              os.Getenv("PORT"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		ChannelButtonName: os.Getenv("CHANNEL_BTN_NAME"),
		ChannelButtonURL:  os.Getenv("CHANNEL_BTN_URL"),
	}
	if c.TelegramToken == "" {
		c.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	}
	if c.TelegramToken == "" {
		return nil, errors.New("BOT_TOKEN is not set")
	}
	if c.DBConnString == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ChannelButtonName == "" {
		c.ChannelButtonName = "Join our channel"
	}
	if c.ChannelButtonURL == "" {
		c.ChannelButtonURL = "https://t.me/"
	}

	var err error
	if c.AdminUserID, err = envInt64("ADMIN_USER_ID", 0); err != nil {
		return nil, err
	}
	if c.BroadcastProgressEvery, err = envInt("BROADCAST_PROGRESS_EVERY", service.DefaultProgressEvery); err != nil {
		return nil, err
	}
	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"DB_TIMEOUT", 5 * time.Second, &c.DBTimeout},
		{"POLL_TIMEOUT", 10 * time.Second, &c.PollTimeout},
		{"SESSION_TTL", 30 * time.Minute, &c.SessionTTL},
		{"ITEM_DELAY", service.DefaultItemDelay, &c.ItemDelay},
		{"BROADCAST_DELAY", service.DefaultBroadcastDelay, &c.BroadcastDelay},
		{"USAGE_WINDOW", service.DefaultUsageWindow, &c.UsageWindow},
	}
	for _, d := range durations {
		if *d.dst, err = envDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// IsAdmin reports whether userID is the configured operator. An unset
// operator id matches nobody.
func (c *Config) IsAdmin(userID int64) bool {
	return c.AdminUserID != 0 && userID == c.AdminUserID
}

func envInt64(key string, def int64) (int64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envInt(key string, def int) (int, error) {
	n, err := envInt64(key, int64(def))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return int(n), nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}
