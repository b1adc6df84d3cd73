package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rickgao/coinstream/internal/freshness"
	"github.com/rickgao/coinstream/internal/model"
	"github.com/rickgao/coinstream/internal/protocol"
	"github.com/rickgao/coinstream/internal/version"
)

type searchResponse struct {
	Status string              `json:"status"`
	Source string              `json:"source"`
	Data   []model.AssetRecord `json:"data"`
}

// errorResponse keeps error as the human-readable message; the coded fields
// sit alongside it.
type errorResponse struct {
	Error     string            `json:"error"`
	Code      protocol.Code     `json:"code"`
	Kind      string            `json:"kind"`
	Severity  protocol.Severity `json:"severity"`
	Action    string            `json:"action"`
	Timestamp time.Time         `json:"timestamp"`
}

type healthResponse struct {
	Status      string          `json:"status"`
	Freshness   freshness.State `json:"freshness"`
	IsLoading   bool            `json:"isLoading"`
	LastUpdated *time.Time      `json:"lastUpdated"`
	NextUpdate  time.Time       `json:"nextUpdate"`
	Assets      int             `json:"assets"`
	Subscribers int             `json:"subscribers"`
	Version     version.Info    `json:"version"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.verifier.Authenticate(r); !ok {
		s.writeError(w, http.StatusUnauthorized, protocol.NewError(protocol.CodeAuthenticationFailed, ""))
		return
	}

	q := r.URL.Query()
	req, perr := protocol.ParseSearchParams(q.Get("query"), q.Get("maxResults"))
	if perr != nil {
		s.writeError(w, http.StatusBadRequest, perr)
		return
	}

	res, err := s.search.Search(r.Context(), req.Query, req.MaxResults)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, protocol.NewError(protocol.CodeSearchFailed, ""))
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Status: protocol.StatusSuccess,
		Source: res.Source,
		Data:   res.Assets,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.verifier.Authenticate(r); !ok {
		s.writeError(w, http.StatusUnauthorized, protocol.NewError(protocol.CodeAuthenticationFailed, ""))
		return
	}

	s.refresh.Trigger()
	s.logger.Info("refresh requested", "remote", r.RemoteAddr)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":    "ACCEPTED",
		"isLoading": true,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state := s.refresh.Freshness()

	health := healthResponse{
		Status:      "healthy",
		Freshness:   state,
		IsLoading:   s.refresh.InFlight(),
		LastUpdated: s.store.LastUpdated(),
		NextUpdate:  s.refresh.NextUpdate(),
		Assets:      s.store.Current().Len(),
		Subscribers: s.hub.Len(),
		Version:     version.Get(),
	}
	switch state {
	case freshness.Stale, freshness.Missing:
		health.Status = "degraded"
	}

	writeJSON(w, http.StatusOK, health)
}

func (s *Server) writeError(w http.ResponseWriter, status int, e *protocol.Error) {
	p := e.Payload(s.now())
	writeJSON(w, status, errorResponse{
		Error:     p.Message,
		Code:      p.Code,
		Kind:      p.Kind,
		Severity:  p.Severity,
		Action:    p.Action,
		Timestamp: p.Timestamp,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
