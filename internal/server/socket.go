package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/coinstream/internal/hub"
	"github.com/rickgao/coinstream/internal/protocol"
)

// handleSocket upgrades the connection and runs its read loop. Authentication
// failures are reported over the socket before it is closed.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	method, ok := s.verifier.Authenticate(r)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	sub := hub.NewSubscriber(conn, method, s.hubConfig(), s.logger)

	if !ok {
		s.logger.Warn("subscriber authentication failed", "remote", r.RemoteAddr)
		s.hub.SendTo(sub, protocol.NewError(protocol.CodeAuthenticationFailed, "").Event(s.now()))
		sub.Shutdown(websocket.ClosePolicyViolation, "authentication failed")
		<-sub.Done()
		return
	}

	conn.SetReadLimit(s.cfg.MaxMessageBytes)
	if s.cfg.PingInterval > 0 {
		conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
		})
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()
	defer s.hub.Remove(sub)

	c := &session{server: s, sub: sub, ctx: ctx}
	if !s.cfg.DeferGreeting {
		c.greet()
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("subscriber read failed", "subscriber", sub.ID(), "err", err)
			}
			return
		}
		c.handle(data)
	}
}

// session is the per-connection request state. It is used only from the
// connection's read loop, except for spawned searches.
type session struct {
	server  *Server
	sub     *hub.Subscriber
	ctx     context.Context
	greeted bool
}

func (c *session) greet() {
	if c.greeted {
		return
	}
	c.greeted = true

	err := c.server.hub.JoinFunc(c.sub, func() []protocol.Event {
		return c.server.refresh.Greeting(c.sub.AuthMethod())
	})
	if err != nil {
		c.server.logger.Warn("failed to greet subscriber", "subscriber", c.sub.ID(), "err", err)
	}
}

// handle processes one inbound frame. A panic is reported to the subscriber
// and does not end the connection.
func (c *session) handle(raw []byte) {
	defer c.recoverTo("")

	req, perr := protocol.ParseRequest(raw)
	if perr != nil {
		c.server.logger.Debug("invalid request",
			"subscriber", c.sub.ID(),
			"code", perr.Code,
		)
		c.send(perr.Event(c.server.now()))
		return
	}

	switch req.Kind {
	case protocol.RequestSubscribe:
		c.greet()
	case protocol.RequestSearch:
		go c.answerSearch(req.Search)
	}
}

func (c *session) answerSearch(req protocol.SearchRequest) {
	defer c.recoverTo(req.RequestID)

	res, err := c.server.search.Search(c.ctx, req.Query, req.MaxResults)
	if err != nil {
		if c.ctx.Err() != nil {
			return
		}
		c.send(protocol.NewError(protocol.CodeSearchFailed, req.RequestID).Event(c.server.now()))
		return
	}
	c.send(protocol.NewSearchResult(req.RequestID, res.Source, res.Assets))
}

func (c *session) send(ev protocol.Event) {
	if err := c.server.hub.SendTo(c.sub, ev); err != nil {
		c.server.logger.Debug("send to subscriber failed", "subscriber", c.sub.ID(), "err", err)
	}
}

func (c *session) recoverTo(requestID string) {
	if r := recover(); r != nil {
		c.server.logger.Error("panic handling subscriber message",
			"subscriber", c.sub.ID(),
			"panic", r,
		)
		c.send(protocol.NewError(protocol.CodeUnexpectedServerError, requestID).Event(c.server.now()))
	}
}
