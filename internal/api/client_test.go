package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

// TestNewClient tests client construction with various options.
func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("https://api.example.com", "test-key")

		if c.baseURL != "https://api.example.com" {
			t.Errorf("baseURL = %q, want %q", c.baseURL, "https://api.example.com")
		}
		if c.apiKey != "test-key" {
			t.Errorf("apiKey = %q, want %q", c.apiKey, "test-key")
		}
		if c.apiKeyHeader != DefaultAPIKeyHeader {
			t.Errorf("apiKeyHeader = %q, want %q", c.apiKeyHeader, DefaultAPIKeyHeader)
		}
		if c.vsCurrency != "usd" {
			t.Errorf("vsCurrency = %q, want %q", c.vsCurrency, "usd")
		}
		if c.httpClient.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 30*time.Second)
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with options", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		hc := &http.Client{Timeout: 10 * time.Second}
		c := NewClient("https://api.example.com", "key",
			WithHTTPClient(hc),
			WithTimeout(15*time.Second),
			WithAPIKeyHeader("x-cg-pro-api-key"),
			WithVsCurrency("eur"),
			WithLogger(logger),
		)
		if c.httpClient != hc {
			t.Error("custom HTTP client not set")
		}
		if c.httpClient.Timeout != 15*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 15*time.Second)
		}
		if c.apiKeyHeader != "x-cg-pro-api-key" {
			t.Errorf("apiKeyHeader = %q, want %q", c.apiKeyHeader, "x-cg-pro-api-key")
		}
		if c.vsCurrency != "eur" {
			t.Errorf("vsCurrency = %q, want %q", c.vsCurrency, "eur")
		}
		if c.logger != logger {
			t.Error("logger not set correctly")
		}
	})

	t.Run("empty header and currency keep defaults", func(t *testing.T) {
		c := NewClient("https://api.example.com", "", WithAPIKeyHeader(""), WithVsCurrency(""))
		if c.apiKeyHeader != DefaultAPIKeyHeader {
			t.Errorf("apiKeyHeader = %q, want default", c.apiKeyHeader)
		}
		if c.vsCurrency != "usd" {
			t.Errorf("vsCurrency = %q, want usd", c.vsCurrency)
		}
	})
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 429, Message: "Too Many Requests"}
	if err.Error() != "upstream api error 429: Too Many Requests" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !err.IsRateLimited() {
		t.Error("429 should be rate limited")
	}
	if (&APIError{StatusCode: 500}).IsRateLimited() {
		t.Error("500 should not be rate limited")
	}
}

func TestDoRequest(t *testing.T) {
	t.Run("sends api key header", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Accept") != "application/json" {
				t.Errorf("Accept header = %q, want %q", r.Header.Get("Accept"), "application/json")
			}
			if r.Header.Get(DefaultAPIKeyHeader) != "test-key" {
				t.Errorf("%s = %q, want %q", DefaultAPIKeyHeader, r.Header.Get(DefaultAPIKeyHeader), "test-key")
			}
			w.Write([]byte(`{"status": "ok"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, "test-key")
		body, err := c.doRequest(context.Background(), http.MethodGet, "/test", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != `{"status": "ok"}` {
			t.Errorf("body = %q", string(body))
		}
	})

	t.Run("no api key header when key empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(DefaultAPIKeyHeader) != "" {
				t.Errorf("api key header should be empty, got %q", r.Header.Get(DefaultAPIKeyHeader))
			}
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, "")
		if _, err := c.doRequest(context.Background(), http.MethodGet, "/test", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("non-2xx returns APIError without retry", func(t *testing.T) {
		var attempts int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"status":{"error_code":429}}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, "key")
		_, err := c.doRequest(context.Background(), http.MethodGet, "/test", nil)

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %T (%v)", err, err)
		}
		if apiErr.StatusCode != 429 {
			t.Errorf("StatusCode = %d, want 429", apiErr.StatusCode)
		}
		if !strings.Contains(string(apiErr.Body), "error_code") {
			t.Errorf("Body = %q", apiErr.Body)
		}
		if attempts != 1 {
			t.Errorf("attempts = %d, want 1", attempts)
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer server.Close()

		c := NewClient(server.URL, "key")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.doRequest(ctx, http.MethodGet, "/test", nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestFetchPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/markets" {
			t.Errorf("path = %q, want /coins/markets", r.URL.Path)
		}
		q := r.URL.Query()
		checks := map[string]string{
			"vs_currency":             "usd",
			"order":                   "market_cap_desc",
			"per_page":                "250",
			"page":                    "2",
			"price_change_percentage": "24h",
		}
		for k, want := range checks {
			if got := q.Get(k); got != want {
				t.Errorf("query %s = %q, want %q", k, got, want)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"bitcoin","symbol":"btc","name":"Bitcoin","image":"b.png","current_price":67000,"market_cap":1.3e12,"market_cap_rank":1,"total_volume":2.5e10,"price_change_percentage_24h":1.5},
			{"id":"obscure","symbol":"obs","name":"Obscure","image":"","current_price":null,"market_cap":null,"market_cap_rank":null,"total_volume":null,"price_change_percentage_24h":null},
			{"id":"","symbol":"x","name":"No Id"}
		]`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	assets, err := c.FetchPage(context.Background(), 2, 250)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	if len(assets) != 2 {
		t.Fatalf("len(assets) = %d, want 2", len(assets))
	}
	if assets[0].ID != "bitcoin" || assets[0].MarketCapRank != 1 || assets[0].PriceChangePercentage24h != 1.5 {
		t.Errorf("assets[0] = %+v", assets[0])
	}
	if assets[1].MarketCap != 0 || assets[1].MarketCapRank != 0 {
		t.Errorf("null fields should be zero: %+v", assets[1])
	}
}

func TestFetchPage_ClampsPerPage(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("per_page")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	if _, err := c.FetchPage(context.Background(), 1, 1000); err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if got != "250" {
		t.Errorf("per_page = %q, want 250", got)
	}
}

func TestFetchPage_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	_, err := c.FetchPage(context.Background(), 3, 250)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "page 3") {
		t.Errorf("error should name the page, got %v", err)
	}
}

func TestSearchRemote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		if r.URL.Query().Get("query") != "pepe" {
			t.Errorf("query = %q, want pepe", r.URL.Query().Get("query"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"coins": []map[string]any{
				{"id": "pepe", "name": "Pepe", "symbol": "PEPE", "market_cap_rank": 30, "large": "l.png", "thumb": "t.png"},
				{"id": "pepe-2", "name": "Pepe 2.0", "symbol": "PEPE2", "thumb": "t2.png"},
			},
			"exchanges": []any{},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	got, err := c.SearchRemote(context.Background(), "pepe")
	if err != nil {
		t.Fatalf("SearchRemote: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Symbol != "pepe" || got[0].Image != "l.png" || got[0].MarketCapRank != 30 {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Image != "t2.png" || got[1].MarketCapRank != 0 {
		t.Errorf("got[1] = %+v", got[1])
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"gecko_says":"(V3) To the Moon!"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	resp, err := c.Ping(context.Background())
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if resp.GeckoSays == "" {
		t.Error("GeckoSays should not be empty")
	}
}
