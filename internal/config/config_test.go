package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"HOMEDASH_BIND_ADDR", "HOMEDASH_SETTINGS_FILE", "HOMEDASH_LOG_LEVEL",
		"HOMEDASH_LOG_FILE", "HOMEDASH_TICK_INTERVAL", "HOMEDASH_RETRY_DELAY", "HOMEDASH_KEEPALIVE"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	if cfg.BindAddr != ":8080" || cfg.LogFile != "homedash.log" || cfg.SettingsFile != "" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.TickInterval != 3*time.Second || cfg.RetryDelay != 5*time.Second || cfg.KeepaliveEvery != 15*time.Second {
		t.Errorf("unexpected durations: %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("log level: got %v", cfg.LogLevel)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HOMEDASH_BIND_ADDR", ":9090")
	t.Setenv("HOMEDASH_LOG_LEVEL", "debug")
	t.Setenv("HOMEDASH_TICK_INTERVAL", "500ms")
	t.Setenv("HOMEDASH_RETRY_DELAY", "-1s")
	t.Setenv("HOMEDASH_KEEPALIVE", "soon")

	cfg := FromEnv()
	if cfg.BindAddr != ":9090" {
		t.Errorf("bind: got %q", cfg.BindAddr)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("log level: got %v", cfg.LogLevel)
	}
	if cfg.TickInterval != 500*time.Millisecond {
		t.Errorf("tick: got %v", cfg.TickInterval)
	}
	if cfg.RetryDelay != 5*time.Second || cfg.KeepaliveEvery != 15*time.Second {
		t.Errorf("invalid durations should fall back: %+v", cfg)
	}
}
