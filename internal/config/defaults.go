package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAddr            = ":8080"
	DefaultWriteTimeout    = 10 * time.Second
	DefaultPingInterval    = 30 * time.Second
	DefaultPongTimeout     = 60 * time.Second
	DefaultMaxMessageBytes = 64 * 1024
	DefaultSendQueueSize   = 256
	DefaultShutdownTimeout = 10 * time.Second
	DefaultBaseURL         = "https://api.coingecko.com/api/v3"
	DefaultAPIKeyHeader    = "x-cg-demo-api-key"
	DefaultVsCurrency      = "usd"
	DefaultUpstreamTimeout = 30 * time.Second
	DefaultRefreshInterval = 5 * time.Minute
	DefaultPageSize        = 250
	DefaultMaxPages        = 4
	DefaultPageDelay       = 1 * time.Second
	DefaultSnapshotPath    = "./cache/coinCache.json"
	DefaultMetricsPath     = "/metrics"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.PingInterval == 0 {
		c.Server.PingInterval = DefaultPingInterval
	}
	if c.Server.PongTimeout == 0 {
		c.Server.PongTimeout = DefaultPongTimeout
	}
	if c.Server.MaxMessageBytes == 0 {
		c.Server.MaxMessageBytes = DefaultMaxMessageBytes
	}
	if c.Server.SendQueueSize == 0 {
		c.Server.SendQueueSize = DefaultSendQueueSize
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Upstream defaults
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = DefaultBaseURL
	}
	if c.Upstream.APIKeyHeader == "" {
		c.Upstream.APIKeyHeader = DefaultAPIKeyHeader
	}
	if c.Upstream.VsCurrency == "" {
		c.Upstream.VsCurrency = DefaultVsCurrency
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = DefaultUpstreamTimeout
	}

	// Refresh defaults
	if c.Refresh.Interval == 0 {
		c.Refresh.Interval = DefaultRefreshInterval
	}
	if c.Refresh.PageSize == 0 {
		c.Refresh.PageSize = DefaultPageSize
	}
	if c.Refresh.MaxPages == 0 {
		c.Refresh.MaxPages = DefaultMaxPages
	}
	if c.Refresh.PageDelay == 0 {
		c.Refresh.PageDelay = DefaultPageDelay
	}

	// Snapshot defaults
	if c.Snapshot.Path == "" {
		c.Snapshot.Path = DefaultSnapshotPath
	}

	// Metrics defaults
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
