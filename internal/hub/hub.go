package hub

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rickgao/coinstream/internal/metrics"
	"github.com/rickgao/coinstream/internal/protocol"
)

// Hub is the set of greeted subscribers.
type Hub struct {
	logger  *slog.Logger
	metrics metrics.Recorder

	mu     sync.Mutex
	subs   map[*Subscriber]struct{}
	closed bool
}

// New creates an empty Hub.
func New(logger *slog.Logger, rec metrics.Recorder) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Hub{
		logger:  logger,
		metrics: rec,
		subs:    make(map[*Subscriber]struct{}),
	}
}

// Join registers sub and enqueues greeting ahead of any later broadcast.
// Joining twice only enqueues the greeting again.
func (h *Hub) Join(sub *Subscriber, greeting ...protocol.Event) error {
	return h.JoinFunc(sub, func() []protocol.Event { return greeting })
}

// JoinFunc is Join with the greeting built under the hub lock, so it reflects
// every broadcast the subscriber will not receive.
func (h *Hub) JoinFunc(sub *Subscriber, greeting func() []protocol.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}

	var events []protocol.Event
	if greeting != nil {
		events = greeting()
	}
	for _, ev := range events {
		data, err := ev.Encode()
		if err != nil {
			return err
		}
		if err := sub.Enqueue(data); err != nil {
			h.dropLocked(sub, err)
			return err
		}
	}

	h.subs[sub] = struct{}{}
	h.metrics.SubscribersChanged(len(h.subs))
	h.logger.Info("subscriber joined",
		"subscriber", sub.ID(),
		"auth_method", sub.AuthMethod(),
		"subscribers", len(h.subs),
	)
	return nil
}

// BroadcastAll encodes ev once and enqueues it to every subscriber.
// Subscribers that cannot take the frame are closed and removed.
func (h *Hub) BroadcastAll(ev protocol.Event) {
	data, err := ev.Encode()
	if err != nil {
		h.logger.Error("failed to encode event", "event", ev.Kind, "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		if err := sub.Enqueue(data); err != nil {
			h.dropLocked(sub, err)
		}
	}
	h.metrics.Broadcast(string(ev.Kind))
}

// SendTo enqueues ev to a single subscriber, joined or not.
func (h *Hub) SendTo(sub *Subscriber, ev protocol.Event) error {
	data, err := ev.Encode()
	if err != nil {
		return err
	}
	if err := sub.Enqueue(data); err != nil {
		h.mu.Lock()
		h.dropLocked(sub, err)
		h.mu.Unlock()
		return err
	}
	return nil
}

// Remove unregisters sub and closes it.
func (h *Hub) Remove(sub *Subscriber) {
	h.mu.Lock()
	_, ok := h.subs[sub]
	delete(h.subs, sub)
	n := len(h.subs)
	h.mu.Unlock()

	sub.Close()
	if ok {
		h.metrics.SubscribersChanged(n)
		h.logger.Info("subscriber left", "subscriber", sub.ID(), "subscribers", n)
	}
}

// Len returns the number of joined subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close flushes and closes every subscriber with a normal-closure frame.
// Later joins fail with ErrClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := make([]*Subscriber, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	clear(h.subs)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Shutdown(websocket.CloseNormalClosure, "server shutting down")
	}
	h.metrics.SubscribersChanged(0)
	h.logger.Info("hub closed", "subscribers", len(subs))
}

// dropLocked removes and closes a failing subscriber. Must be called with lock held.
func (h *Hub) dropLocked(sub *Subscriber, cause error) {
	delete(h.subs, sub)
	sub.Close()
	h.metrics.SendFailed()
	h.metrics.SubscribersChanged(len(h.subs))
	h.logger.Warn("dropping subscriber",
		"subscriber", sub.ID(),
		"err", cause,
	)
}
