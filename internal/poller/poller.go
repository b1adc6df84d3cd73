package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/coinstream/internal/freshness"
	"github.com/rickgao/coinstream/internal/refresh"
	"github.com/rickgao/coinstream/internal/store"
)

// Refresher runs one refresh attempt.
type Refresher interface {
	Refresh(ctx context.Context) (refresh.Result, error)
}

// Config holds scheduler configuration.
type Config struct {
	Interval time.Duration // Refresh interval (default: 5m)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 5 * time.Minute,
	}
}

// Poller periodically refreshes the asset snapshot.
type Poller struct {
	cfg       Config
	refresher Refresher
	store     store.Reader
	logger    *slog.Logger
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, refresher Refresher, st store.Reader, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	return &Poller{
		cfg:       cfg,
		refresher: refresher,
		store:     st,
		logger:    logger,
		now:       time.Now,
	}
}

// Start begins the refresh loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	first := p.initialDelay()

	p.wg.Add(1)
	go p.run(first)

	p.logger.Info("refresh scheduler started",
		"interval", p.cfg.Interval,
		"first_run_in", first,
	)

	return nil
}

// Stop gracefully shuts down the scheduler. A refresh already running
// completes in the background.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("refresh scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// initialDelay returns how long to wait before the first refresh.
func (p *Poller) initialDelay() time.Duration {
	last := p.store.LastUpdated()
	now := p.now()

	state := freshness.Classify(last, now)
	if freshness.NeedsRefresh(state) {
		p.logger.Info("snapshot needs refresh", "freshness", state)
		return 0
	}

	d := freshness.NextUpdate(last, now, p.cfg.Interval).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// run is the main scheduling loop.
func (p *Poller) run(first time.Duration) {
	defer p.wg.Done()

	timer := time.NewTimer(first)
	defer timer.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-timer.C:
			p.refreshOnce()
			timer.Reset(p.cfg.Interval)
		}
	}
}

func (p *Poller) refreshOnce() {
	start := time.Now()

	res, err := p.refresher.Refresh(p.ctx)
	if err != nil {
		if p.ctx.Err() != nil {
			return
		}
		p.logger.Warn("scheduled refresh failed",
			"err", err,
			"duration", time.Since(start),
		)
		return
	}

	p.logger.Info("refresh cycle complete",
		"assets", res.Assets,
		"pages", res.Pages,
		"duration", time.Since(start),
	)
}
