package hub

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const initialQueueCapacity = 16

// Subscriber is one connected client. Frames are written by a single writer
// goroutine in enqueue order.
type Subscriber struct {
	id         string
	authMethod string
	conn       Conn
	cfg        Config
	logger     *slog.Logger

	queue *queue[[]byte]
	done  chan struct{}

	mu          sync.Mutex
	closeCode   int
	closeReason string
	closeOnce   sync.Once
}

// NewSubscriber wraps conn and starts its writer.
func NewSubscriber(conn Conn, authMethod string, cfg Config, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.SendQueueSize <= 0 {
		cfg.SendQueueSize = def.SendQueueSize
	}

	id := uuid.NewString()
	s := &Subscriber{
		id:         id,
		authMethod: authMethod,
		conn:       conn,
		cfg:        cfg,
		logger:     logger.With("subscriber", id),
		queue:      newQueue[[]byte](initialQueueCapacity, cfg.SendQueueSize),
		done:       make(chan struct{}),
		closeCode:  websocket.CloseNormalClosure,
	}

	go s.writeLoop()
	if cfg.PingInterval > 0 {
		go s.heartbeatLoop()
	}
	return s
}

// ID returns the subscriber id.
func (s *Subscriber) ID() string {
	return s.id
}

// AuthMethod returns how the subscriber authenticated.
func (s *Subscriber) AuthMethod() string {
	return s.authMethod
}

// Done is closed once the writer has exited and the connection is closed.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// Enqueue queues a frame for writing.
func (s *Subscriber) Enqueue(data []byte) error {
	return s.queue.Send(data)
}

// Shutdown stops accepting frames, flushes what is queued, then sends a close
// frame with code and reason.
func (s *Subscriber) Shutdown(code int, reason string) {
	s.mu.Lock()
	s.closeCode = code
	s.closeReason = reason
	s.mu.Unlock()

	s.queue.Close()
}

// Close drops queued frames and closes the connection immediately.
func (s *Subscriber) Close() {
	s.queue.Close()
	if n := s.queue.Discard(); n > 0 {
		s.logger.Debug("dropped queued frames on close", "frames", n)
	}
	s.finish()
}

func (s *Subscriber) writeLoop() {
	defer s.finish()

	for {
		data, ok := s.queue.Receive()
		if !ok {
			s.mu.Lock()
			code, reason := s.closeCode, s.closeReason
			s.mu.Unlock()

			deadline := time.Now().Add(s.cfg.WriteTimeout)
			msg := websocket.FormatCloseMessage(code, reason)
			if err := s.conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
				s.logger.Debug("failed to send close frame", "error", err)
			}
			return
		}

		s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
		if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.Debug("write failed", "error", err)
			s.queue.Close()
			s.queue.Discard()
			return
		}
	}
}

// heartbeatLoop keeps the connection alive with periodic pings.
func (s *Subscriber) heartbeatLoop() {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(s.cfg.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				s.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

func (s *Subscriber) finish() {
	s.closeOnce.Do(func() {
		s.conn.Close()
		close(s.done)
	})
}
