package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "homedash.log")
	l, err := New(slog.LevelInfo, path, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("hidden_event")
	l.Info("stream_connected", "url", "http://pi.local:8000")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "msg=stream_connected") || !strings.Contains(out, "url=http://pi.local:8000") {
		t.Errorf("missing info line: %q", out)
	}
	if strings.Contains(out, "hidden_event") {
		t.Errorf("debug line written at info level: %q", out)
	}
}
