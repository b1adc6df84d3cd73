package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/rickgao/coinstream/internal/auth"
	"github.com/rickgao/coinstream/internal/freshness"
	"github.com/rickgao/coinstream/internal/hub"
	"github.com/rickgao/coinstream/internal/metrics"
	"github.com/rickgao/coinstream/internal/protocol"
	"github.com/rickgao/coinstream/internal/search"
	"github.com/rickgao/coinstream/internal/store"
)

// Refresher is the refresh orchestrator as seen by the transport.
type Refresher interface {
	Greeting(authMethod string) []protocol.Event
	Trigger()
	InFlight() bool
	NextUpdate() time.Time
	Freshness() freshness.State
}

// Searcher answers search requests.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) (search.Result, error)
}

// Config holds transport settings.
type Config struct {
	Addr            string
	DeferGreeting   bool // Greet only after {"action":"subscribe"}
	WriteTimeout    time.Duration
	PingInterval    time.Duration
	PongTimeout     time.Duration
	MaxMessageBytes int64
	SendQueueSize   int
	MetricsEnabled  bool
	MetricsPath     string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		WriteTimeout:    10 * time.Second,
		PingInterval:    30 * time.Second,
		PongTimeout:     60 * time.Second,
		MaxMessageBytes: 64 * 1024,
		SendQueueSize:   256,
		MetricsEnabled:  true,
		MetricsPath:     "/metrics",
	}
}

// Server is the HTTP and WebSocket front end.
type Server struct {
	cfg      Config
	hub      *hub.Hub
	refresh  Refresher
	search   Searcher
	store    store.Reader
	verifier *auth.Verifier
	logger   *slog.Logger
	now      func() time.Time

	upgrader   websocket.Upgrader
	httpServer *http.Server
}

// New creates a Server.
func New(cfg Config, h *hub.Hub, refresher Refresher, searcher Searcher, st store.Reader, verifier *auth.Verifier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		hub:      h,
		refresh:  refresher,
		search:   searcher,
		store:    st,
		verifier: verifier,
		logger:   logger,
		now:      time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Subscribers authenticate with a bearer token, not cookies.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/ws", s.handleSocket).Methods(http.MethodGet)
	r.Handle("/search", metrics.InstrumentHandler("/search", http.HandlerFunc(s.handleSearch))).Methods(http.MethodGet)
	r.Handle("/refresh", metrics.InstrumentHandler("/refresh", http.HandlerFunc(s.handleRefresh))).Methods(http.MethodPost)
	r.Handle("/health", metrics.InstrumentHandler("/health", http.HandlerFunc(s.handleHealth))).Methods(http.MethodGet)
	if s.cfg.MetricsEnabled && s.cfg.MetricsPath != "" {
		r.Handle(s.cfg.MetricsPath, metrics.Handler()).Methods(http.MethodGet)
	}
	r.HandleFunc("/", s.handleSocket).Methods(http.MethodGet)

	return r
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("http server listening", "addr", s.cfg.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown closes every subscriber and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) hubConfig() hub.Config {
	return hub.Config{
		WriteTimeout:  s.cfg.WriteTimeout,
		PingInterval:  s.cfg.PingInterval,
		SendQueueSize: s.cfg.SendQueueSize,
	}
}
