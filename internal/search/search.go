package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rickgao/coinstream/internal/metrics"
	"github.com/rickgao/coinstream/internal/model"
	"github.com/rickgao/coinstream/internal/protocol"
	"github.com/rickgao/coinstream/internal/store"
)

// ErrSearchFailed is returned when the remote fallback fails.
var ErrSearchFailed = errors.New("search failed")

// Answer sources.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// RemoteSearcher queries the upstream search endpoint.
type RemoteSearcher interface {
	SearchRemote(ctx context.Context, query string) ([]model.AssetRecord, error)
}

// Result is the answer to one search.
type Result struct {
	Assets []model.AssetRecord
	Source string
}

// Local returns up to maxResults assets whose id, name or symbol contains
// query, case-insensitively, in store order. A non-positive maxResults means
// the default.
func Local(assets []model.AssetRecord, query string, maxResults int) []model.AssetRecord {
	if maxResults <= 0 {
		maxResults = protocol.DefaultMaxResults
	}
	if maxResults > protocol.MaxMaxResults {
		maxResults = protocol.MaxMaxResults
	}

	q := strings.ToLower(query)
	if q == "" {
		return []model.AssetRecord{}
	}

	out := make([]model.AssetRecord, 0, min(maxResults, len(assets)))
	for _, a := range assets {
		if len(out) == maxResults {
			break
		}
		if matches(a, q) {
			out = append(out, a)
		}
	}
	return out
}

func matches(a model.AssetRecord, q string) bool {
	return strings.Contains(strings.ToLower(a.ID), q) ||
		strings.Contains(strings.ToLower(a.Name), q) ||
		strings.Contains(strings.ToLower(a.Symbol), q)
}

// Engine searches the store, then the remote searcher on a local miss.
type Engine struct {
	store   store.Reader
	remote  RemoteSearcher
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewEngine creates an Engine. remote may be nil to disable the fallback.
func NewEngine(st store.Reader, remote RemoteSearcher, logger *slog.Logger, rec metrics.Recorder) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Engine{
		store:   st,
		remote:  remote,
		logger:  logger,
		metrics: rec,
	}
}

// Search answers query. Remote results are returned as the upstream ranks
// them, without truncation.
func (e *Engine) Search(ctx context.Context, query string, maxResults int) (Result, error) {
	snap := e.store.Current()
	if hits := Local(snap.Assets, query, maxResults); len(hits) > 0 {
		e.metrics.Searched(SourceLocal)
		return Result{Assets: hits, Source: SourceLocal}, nil
	}

	if e.remote == nil {
		e.metrics.Searched(SourceLocal)
		return Result{Assets: []model.AssetRecord{}, Source: SourceLocal}, nil
	}

	assets, err := e.remote.SearchRemote(ctx, query)
	if err != nil {
		e.logger.Warn("remote search failed", "query", query, "err", err)
		return Result{}, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	if assets == nil {
		assets = []model.AssetRecord{}
	}

	e.metrics.Searched(SourceRemote)
	e.logger.Debug("remote search", "query", query, "results", len(assets))
	return Result{Assets: assets, Source: SourceRemote}, nil
}
