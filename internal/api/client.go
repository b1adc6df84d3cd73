package api

import (
	"log/slog"
	"net/http"
	"time"
)

// DefaultAPIKeyHeader is the header used for demo-plan API keys.
const DefaultAPIKeyHeader = "x-cg-demo-api-key"

// Client provides access to the upstream REST API.
type Client struct {
	baseURL      string
	apiKey       string
	apiKeyHeader string
	vsCurrency   string
	httpClient   *http.Client
	logger       *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		apiKeyHeader: DefaultAPIKeyHeader,
		vsCurrency:   "usd",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithAPIKeyHeader sets the header name carrying the API key.
func WithAPIKeyHeader(name string) ClientOption {
	return func(c *Client) {
		if name != "" {
			c.apiKeyHeader = name
		}
	}
}

// WithVsCurrency sets the quote currency for market data.
func WithVsCurrency(currency string) ClientOption {
	return func(c *Client) {
		if currency != "" {
			c.vsCurrency = currency
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}
