package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	// ErrMissingSpreadsheetID is returned when no spreadsheet is configured
	ErrMissingSpreadsheetID = errors.New("sheets.spreadsheet_id is not configured")

	// ErrMissingAPIKey is returned when no API key is configured
	ErrMissingAPIKey = errors.New("sheets.api_key is not configured")
)

// NATSConfig holds connection settings for the NATS backbone.
type NATSConfig struct {
	URLs           []string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// SheetsConfig holds the remote spreadsheet settings.
type SheetsConfig struct {
	BaseURL       string
	SpreadsheetID string
	APIKey        string
	Timeout       time.Duration
}

// Config is the process configuration, read once at startup.
type Config struct {
	AppName       string
	NATS          NATSConfig
	Sheets        SheetsConfig
	CacheDuration time.Duration
	Recipients    []string
}

// Load reads the YAML config file and environment overrides. Missing
// required credentials are fatal; everything else has a default.
func Load(logger *zap.Logger) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("BOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("app.name", "campus-bot")
	viper.SetDefault("nats.urls", []string{"nats://127.0.0.1:4222"})
	viper.SetDefault("nats.max_reconnects", 10)
	viper.SetDefault("nats.reconnect_wait", 2*time.Second)
	viper.SetDefault("nats.connect_timeout", 5*time.Second)
	viper.SetDefault("sheets.base_url", "https://sheets.googleapis.com")
	viper.SetDefault("sheets.timeout", 15*time.Second)
	viper.SetDefault("cache.duration", 300*time.Second)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		logger.Warn("No config file found, using defaults and environment")
	}

	cfg := &Config{
		AppName: viper.GetString("app.name"),
		NATS: NATSConfig{
			URLs:           viper.GetStringSlice("nats.urls"),
			MaxReconnects:  viper.GetInt("nats.max_reconnects"),
			ReconnectWait:  viper.GetDuration("nats.reconnect_wait"),
			ConnectTimeout: viper.GetDuration("nats.connect_timeout"),
		},
		Sheets: SheetsConfig{
			BaseURL:       viper.GetString("sheets.base_url"),
			SpreadsheetID: viper.GetString("sheets.spreadsheet_id"),
			APIKey:        viper.GetString("sheets.api_key"),
			Timeout:       viper.GetDuration("sheets.timeout"),
		},
		CacheDuration: viper.GetDuration("cache.duration"),
		Recipients:    ParseRecipients(viper.GetString("reminders.recipient_ids"), logger),
	}

	if cfg.Sheets.SpreadsheetID == "" {
		return nil, ErrMissingSpreadsheetID
	}
	if cfg.Sheets.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	return cfg, nil
}

// ParseRecipients parses the comma-delimited recipient list into an
// ordered set. Invalid entries are skipped with a warning; duplicates
// keep their first position.
func ParseRecipients(raw string, logger *zap.Logger) []string {
	var recipients []string
	seen := make(map[string]bool)

	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			logger.Warn("Skipping invalid recipient id", zap.String("id", id))
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		recipients = append(recipients, id)
	}

	return recipients
}
