package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings for the bot API.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL" envDefault:"info"`

	BotName    string `env:"BOT_NAME" envDefault:"RingoBot"`
	RedisURL   string `env:"REDIS_URL" envDefault:"localhost:6379"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"./ringobot.db"`
	DataDir    string `env:"DATA_DIR" envDefault:"./data"`
	PrizesFile string `env:"PRIZES_FILE" envDefault:"./data/prizes.csv"`

	LogLevel slog.Level `env:"-"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)

	if cfg.Port == "" {
		return nil, fmt.Errorf("PORT must not be empty")
	}
	if cfg.SQLitePath == "" {
		return nil, fmt.Errorf("SQLITE_PATH must not be empty")
	}
	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
