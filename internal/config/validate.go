package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// maxPageSize is the largest page the upstream markets endpoint serves.
const maxPageSize = 250

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.AuthToken == "" && c.Server.AuthTokenFile == "" {
		return errors.New("server.auth_token or server.auth_token_file is required")
	}
	if c.Server.PingInterval < 0 {
		return errors.New("server.ping_interval must be >= 0")
	}
	if c.Server.PingInterval > 0 && c.Server.PongTimeout <= c.Server.PingInterval {
		return fmt.Errorf("server.pong_timeout (%s) must exceed server.ping_interval (%s)",
			c.Server.PongTimeout, c.Server.PingInterval)
	}
	if c.Server.MaxMessageBytes < 1 {
		return errors.New("server.max_message_bytes must be >= 1")
	}
	if c.Server.SendQueueSize < 1 {
		return errors.New("server.send_queue_size must be >= 1")
	}

	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream.base_url is not a valid URL: %q", c.Upstream.BaseURL)
	}
	if c.Upstream.Timeout < 0 {
		return errors.New("upstream.timeout must be >= 0")
	}

	if c.Refresh.Interval <= 0 {
		return errors.New("refresh.interval must be > 0")
	}
	if c.Refresh.PageSize < 1 || c.Refresh.PageSize > maxPageSize {
		return fmt.Errorf("refresh.page_size must be between 1 and %d, got %d", maxPageSize, c.Refresh.PageSize)
	}
	if c.Refresh.MaxPages < 1 {
		return errors.New("refresh.max_pages must be >= 1")
	}
	if c.Refresh.PageDelay < 0 {
		return errors.New("refresh.page_delay must be >= 0")
	}

	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

// ParseLevel converts a log.level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
