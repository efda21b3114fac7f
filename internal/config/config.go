// Package config loads kitedash settings from a JSON5 or YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = "kitedash.json5"
	DefaultListen     = "127.0.0.1:8501"
	DefaultServerURL  = "http://localhost:8080/mcp"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	HTTP      HTTPConfig      `json:"http" yaml:"http"`
	Sessions  SessionsConfig  `json:"sessions" yaml:"sessions"`
	Orders    OrdersConfig    `json:"orders" yaml:"orders"`
	Watch     WatchConfig     `json:"watch" yaml:"watch"`
	Database  DatabaseConfig  `json:"database" yaml:"database"`
	Log       LogConfig       `json:"log" yaml:"log"`
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`
	Tailscale TailscaleConfig `json:"tailscale" yaml:"tailscale"`
}

// ServerConfig points at the remote tool server.
type ServerConfig struct {
	URL        string `json:"url" yaml:"url"`
	TimeoutSec int    `json:"timeoutSec" yaml:"timeoutSec"`
}

// HTTPConfig controls the dashboard API listener.
type HTTPConfig struct {
	Listen         string   `json:"listen" yaml:"listen"`
	Token          string   `json:"token,omitempty" yaml:"token,omitempty"`
	RateLimitRPM   int      `json:"rateLimitRpm" yaml:"rateLimitRpm"`
	RateLimitBurst int      `json:"rateLimitBurst" yaml:"rateLimitBurst"`
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`
}

// SessionsConfig bounds the in-memory session table.
type SessionsConfig struct {
	MaxSessions int `json:"maxSessions" yaml:"maxSessions"`
	TTLMinutes  int `json:"ttlMinutes" yaml:"ttlMinutes"`
}

// OrdersConfig throttles order placement per session.
type OrdersConfig struct {
	MaxPerHour int `json:"maxPerHour" yaml:"maxPerHour"`
}

// WatchConfig sets the live-price polling interval.
type WatchConfig struct {
	IntervalSec int `json:"intervalSec" yaml:"intervalSec"`
}

// DatabaseConfig selects the order journal backend: Postgres when
// PostgresDSN is set, SQLite otherwise.
type DatabaseConfig struct {
	SQLitePath  string `json:"sqlitePath" yaml:"sqlitePath"`
	PostgresDSN string `json:"postgresDsn,omitempty" yaml:"postgresDsn,omitempty"`
}

// LogConfig configures the slog default handler.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // text or json
}

// TelemetryConfig configures OTLP trace export (binary built with -tags otel).
type TelemetryConfig struct {
	Enabled     bool              `json:"enabled" yaml:"enabled"`
	Endpoint    string            `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Protocol    string            `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	Insecure    bool              `json:"insecure,omitempty" yaml:"insecure,omitempty"`
	ServiceName string            `json:"serviceName,omitempty" yaml:"serviceName,omitempty"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// TailscaleConfig exposes the API on a tailnet (binary built with -tags tsnet).
type TailscaleConfig struct {
	Hostname  string `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	AuthKey   string `json:"authKey,omitempty" yaml:"authKey,omitempty"`
	StateDir  string `json:"stateDir,omitempty" yaml:"stateDir,omitempty"`
	Ephemeral bool   `json:"ephemeral,omitempty" yaml:"ephemeral,omitempty"`
	EnableTLS bool   `json:"enableTls,omitempty" yaml:"enableTls,omitempty"`
}

// Default returns a config with every default applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{URL: DefaultServerURL, TimeoutSec: 30},
		HTTP: HTTPConfig{
			Listen:         DefaultListen,
			RateLimitRPM:   120,
			RateLimitBurst: 20,
		},
		Sessions: SessionsConfig{MaxSessions: 256, TTLMinutes: 12 * 60},
		Orders:   OrdersConfig{MaxPerHour: 30},
		Watch:    WatchConfig{IntervalSec: 30},
		Database: DatabaseConfig{SQLitePath: "~/.kitedash/journal.db"},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the config at path over the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.Server.URL = NormalizeEndpoint(cfg.Server.URL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json5.Unmarshal(data, cfg)
	}
}

func (c *Config) applyEnv() {
	envStr("MCP_SERVER_URL", &c.Server.URL)
	envStr("KITEDASH_LISTEN", &c.HTTP.Listen)
	envStr("KITEDASH_TOKEN", &c.HTTP.Token)
	envStr("KITEDASH_POSTGRES_DSN", &c.Database.PostgresDSN)
	envStr("KITEDASH_SQLITE_PATH", &c.Database.SQLitePath)
	envStr("KITEDASH_LOG_LEVEL", &c.Log.Level)
	envStr("KITEDASH_TSNET_HOSTNAME", &c.Tailscale.Hostname)
	envStr("KITEDASH_TSNET_AUTH_KEY", &c.Tailscale.AuthKey)
}

func envStr(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return errors.New("server.url is required")
	}
	if c.Server.TimeoutSec < 0 {
		return fmt.Errorf("server.timeoutSec must be >= 0, got %d", c.Server.TimeoutSec)
	}
	if c.HTTP.Listen == "" {
		return errors.New("http.listen is required")
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	switch c.Telemetry.Protocol {
	case "", "grpc", "http":
	default:
		return fmt.Errorf("telemetry.protocol must be grpc or http, got %q", c.Telemetry.Protocol)
	}
	return nil
}

// ResolvePath picks the config path: explicit flag, then KITEDASH_CONFIG,
// then ./kitedash.json5.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("KITEDASH_CONFIG"); v != "" {
		return v
	}
	return DefaultConfigFile
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
