package cmd

import (
	"strings"
	"testing"

	"github.com/nextlevelbuilder/kitedash/internal/config"
)

func TestRedactConfig(t *testing.T) {
	cfg := config.Default()
	cfg.HTTP.Token = "abcd1234efgh5678"
	cfg.Database.PostgresDSN = "postgres://u:secret@db/kitedash"
	cfg.Tailscale.AuthKey = "short"
	cfg.Telemetry.Headers = map[string]string{"authorization": "Bearer xyz"}

	raw := redactConfig(cfg)

	http := raw["http"].(map[string]any)
	if got := http["token"]; got != "abcd****5678" {
		t.Errorf("expected masked token, got %v", got)
	}
	db := raw["database"].(map[string]any)
	if dsn := db["postgresDsn"].(string); strings.Contains(dsn, "secret") {
		t.Errorf("expected dsn redacted, got %s", dsn)
	}
	ts := raw["tailscale"].(map[string]any)
	if got := ts["authKey"]; got != "****" {
		t.Errorf("expected short key fully masked, got %v", got)
	}
	tel := raw["telemetry"].(map[string]any)
	headers := tel["headers"].(map[string]any)
	if got := headers["authorization"]; got != "****" {
		t.Errorf("expected header masked, got %v", got)
	}
	server := raw["server"].(map[string]any)
	if got := server["url"]; got != config.DefaultServerURL {
		t.Errorf("expected url untouched, got %v", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"WARN":    "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"":        "INFO",
		"bogus":   "INFO",
	}
	for in, want := range tests {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
