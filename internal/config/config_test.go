package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
server:
  addr: ":9000"
  auth_token: abc
  allow_query_token: true
upstream:
  base_url: https://pro-api.coingecko.com/api/v3
  api_key_header: x-cg-pro-api-key
refresh:
  interval: 2m
  page_delay: 500ms
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9000")
	}
	if !cfg.Server.AllowQueryToken {
		t.Error("Server.AllowQueryToken = false, want true")
	}
	if cfg.Upstream.APIKeyHeader != "x-cg-pro-api-key" {
		t.Errorf("Upstream.APIKeyHeader = %q", cfg.Upstream.APIKeyHeader)
	}
	if cfg.Refresh.Interval != 2*time.Minute {
		t.Errorf("Refresh.Interval = %v, want 2m", cfg.Refresh.Interval)
	}
	if cfg.Refresh.PageDelay != 500*time.Millisecond {
		t.Errorf("Refresh.PageDelay = %v, want 500ms", cfg.Refresh.PageDelay)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_COINSTREAM_TOKEN", "secret123")
	t.Setenv("TEST_CG_KEY", "cg-key")

	yaml := `
server:
  auth_token: ${TEST_COINSTREAM_TOKEN}
upstream:
  api_key: ${TEST_CG_KEY}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.AuthToken != "secret123" {
		t.Errorf("Server.AuthToken = %q, want %q", cfg.Server.AuthToken, "secret123")
	}
	if cfg.Upstream.APIKey != "cg-key" {
		t.Errorf("Upstream.APIKey = %q, want %q", cfg.Upstream.APIKey, "cg-key")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "server:\n  auth_token: abc\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Upstream.BaseURL != DefaultBaseURL {
		t.Errorf("Upstream.BaseURL = %q, want %q", cfg.Upstream.BaseURL, DefaultBaseURL)
	}
	if cfg.Upstream.APIKeyHeader != DefaultAPIKeyHeader {
		t.Errorf("Upstream.APIKeyHeader = %q, want %q", cfg.Upstream.APIKeyHeader, DefaultAPIKeyHeader)
	}
	if cfg.Refresh.Interval != DefaultRefreshInterval {
		t.Errorf("Refresh.Interval = %v, want %v", cfg.Refresh.Interval, DefaultRefreshInterval)
	}
	if cfg.Refresh.PageSize != DefaultPageSize || cfg.Refresh.MaxPages != DefaultMaxPages {
		t.Errorf("Refresh = %+v, want %d x %d", cfg.Refresh, DefaultMaxPages, DefaultPageSize)
	}
	if cfg.Snapshot.Path != DefaultSnapshotPath {
		t.Errorf("Snapshot.Path = %q, want %q", cfg.Snapshot.Path, DefaultSnapshotPath)
	}
	if cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, DefaultMetricsPath)
	}
	if cfg.Server.AllowQueryToken {
		t.Error("Server.AllowQueryToken should default to false")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadAndValidate(t *testing.T) {
	if _, err := LoadAndValidate(writeTempFile(t, "refresh:\n  max_pages: 2\n")); err == nil {
		t.Fatal("expected validation error without an auth token")
	} else if !strings.HasPrefix(err.Error(), "validate config:") {
		t.Errorf("error = %q, want validate config prefix", err)
	}

	if _, err := LoadAndValidate(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	if _, err := LoadAndValidate(writeTempFile(t, "server: [unterminated")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Config{Server: ServerConfig{AuthToken: "abc"}}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "missing auth token",
			mutate:  func(c *Config) { c.Server.AuthToken = "" },
			wantErr: "server.auth_token or server.auth_token_file is required",
		},
		{
			name: "token file is enough",
			mutate: func(c *Config) {
				c.Server.AuthToken = ""
				c.Server.AuthTokenFile = "/run/secrets/token"
			},
		},
		{
			name:    "pong timeout too short",
			mutate:  func(c *Config) { c.Server.PongTimeout = 10 * time.Second },
			wantErr: "server.pong_timeout (10s) must exceed server.ping_interval (30s)",
		},
		{
			name:    "bad base url",
			mutate:  func(c *Config) { c.Upstream.BaseURL = "not a url" },
			wantErr: `upstream.base_url is not a valid URL: "not a url"`,
		},
		{
			name:    "page size above upstream limit",
			mutate:  func(c *Config) { c.Refresh.PageSize = 500 },
			wantErr: "refresh.page_size must be between 1 and 250, got 500",
		},
		{
			name:    "negative page delay",
			mutate:  func(c *Config) { c.Refresh.PageDelay = -time.Second },
			wantErr: "refresh.page_delay must be >= 0",
		},
		{
			name:    "metrics path",
			mutate:  func(c *Config) { c.Metrics.Path = "metrics" },
			wantErr: `metrics.path must start with /, got "metrics"`,
		},
		{
			name:    "log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: `log.format must be text or json, got "xml"`,
		},
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("TEST_DOTENV_VALUE=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TEST_DOTENV_VALUE", "")
	os.Unsetenv("TEST_DOTENV_VALUE")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("TEST_DOTENV_VALUE"); got != "from-file" {
		t.Errorf("TEST_DOTENV_VALUE = %q, want from-file", got)
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
