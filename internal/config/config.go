package config

import "time"

// Config is the root configuration for a coinstream instance.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds subscriber-facing HTTP and WebSocket settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	AuthToken       string        `yaml:"auth_token"`        // Shared bearer secret
	AuthTokenFile   string        `yaml:"auth_token_file"`   // Read when auth_token is empty
	AllowQueryToken bool          `yaml:"allow_query_token"` // Accept ?token= for clients that cannot set headers
	DeferGreeting   bool          `yaml:"defer_greeting"`    // Greet only after {"action":"subscribe"}
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	PingInterval    time.Duration `yaml:"ping_interval"`
	PongTimeout     time.Duration `yaml:"pong_timeout"`
	MaxMessageBytes int64         `yaml:"max_message_bytes"`
	SendQueueSize   int           `yaml:"send_queue_size"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// UpstreamConfig holds market data API settings.
type UpstreamConfig struct {
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	APIKeyHeader string        `yaml:"api_key_header"`
	VsCurrency   string        `yaml:"vs_currency"`
	Timeout      time.Duration `yaml:"timeout"`
}

// RefreshConfig holds the refresh page loop and schedule.
type RefreshConfig struct {
	Interval  time.Duration `yaml:"interval"`
	PageSize  int           `yaml:"page_size"`
	MaxPages  int           `yaml:"max_pages"`
	PageDelay time.Duration `yaml:"page_delay"`
}

// SnapshotConfig holds local persistence settings.
type SnapshotConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Disabled bool   `yaml:"disabled"`
	Path     string `yaml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}
