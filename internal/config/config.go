// Package config reads process configuration from the environment,
// optionally seeded from a .env file in the working directory.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration.
type Config struct {
	BindAddr       string        // e.g. ":8080"
	SettingsFile   string        // "" means ~/.homedash/settings.env
	LogLevel       slog.Level    // e.g. info
	LogFile        string        // e.g. "homedash.log"
	TickInterval   time.Duration // synthetic update period
	RetryDelay     time.Duration // live reconnect delay
	KeepaliveEvery time.Duration // served stream heartbeat
}

// LoadDotEnv loads .env into the environment without overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// FromEnv reads Config from HOMEDASH_* variables, falling back to defaults.
func FromEnv() Config {
	bind := os.Getenv("HOMEDASH_BIND_ADDR")
	if bind == "" {
		bind = ":8080"
	}
	logFile := os.Getenv("HOMEDASH_LOG_FILE")
	if logFile == "" {
		logFile = "homedash.log"
	}
	return Config{
		BindAddr:       bind,
		SettingsFile:   os.Getenv("HOMEDASH_SETTINGS_FILE"),
		LogLevel:       parseLevel(os.Getenv("HOMEDASH_LOG_LEVEL")),
		LogFile:        logFile,
		TickInterval:   duration("HOMEDASH_TICK_INTERVAL", 3*time.Second),
		RetryDelay:     duration("HOMEDASH_RETRY_DELAY", 5*time.Second),
		KeepaliveEvery: duration("HOMEDASH_KEEPALIVE", 15*time.Second),
	}
}

func duration(key string, def time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}
