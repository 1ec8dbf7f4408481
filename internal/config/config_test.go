package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
listen:
  address: "127.0.0.1"
  port: 9090
order_api:
  url: "http://orders:8000"
  timeout_sec: 5
database:
  path: "/tmp/menu.db"
model:
  provider: openai
  name: gpt-4o-mini
conversation:
  max_tool_rounds: 3
log_level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Listen.Port != 9090 {
		t.Errorf("got port %d, want 9090", cfg.Listen.Port)
	}
	if cfg.OrderAPI.URL != "http://orders:8000" {
		t.Errorf("got order API URL %q", cfg.OrderAPI.URL)
	}
	if cfg.OrderAPI.Timeout() != 5*time.Second {
		t.Errorf("got timeout %v, want 5s", cfg.OrderAPI.Timeout())
	}
	if cfg.Model.Provider != "openai" {
		t.Errorf("got provider %q", cfg.Model.Provider)
	}
	if cfg.Conversation.MaxToolRounds != 3 {
		t.Errorf("got max_tool_rounds %d, want 3", cfg.Conversation.MaxToolRounds)
	}
	// Unset fields keep their defaults.
	if cfg.Conversation.HistoryExchanges != 10 {
		t.Errorf("got history_exchanges %d, want default 10", cfg.Conversation.HistoryExchanges)
	}
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_ORDER_URL", "http://env-orders:8000")
	path := writeConfig(t, `
order_api:
  url: "${TEST_ORDER_URL}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OrderAPI.URL != "http://env-orders:8000" {
		t.Errorf("got %q, want env expansion", cfg.OrderAPI.URL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFindConfigExplicit(t *testing.T) {
	path := writeConfig(t, "log_level: info\n")

	got, err := FindConfig(path)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if got != path {
		t.Errorf("got %q, want %q", got, path)
	}

	if _, err := FindConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit path")
	}
}

func TestDefaultTimeout(t *testing.T) {
	tests := []struct {
		sec  int
		want time.Duration
	}{
		{0, 30 * time.Second},
		{-1, 30 * time.Second},
		{10, 10 * time.Second},
	}
	for _, tt := range tests {
		c := OrderAPIConfig{TimeoutSec: tt.sec}
		if got := c.Timeout(); got != tt.want {
			t.Errorf("Timeout() with %d = %v, want %v", tt.sec, got, tt.want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{" warn ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
