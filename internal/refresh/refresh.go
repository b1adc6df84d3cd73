package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rickgao/coinstream/internal/freshness"
	"github.com/rickgao/coinstream/internal/metrics"
	"github.com/rickgao/coinstream/internal/model"
	"github.com/rickgao/coinstream/internal/protocol"
	"github.com/rickgao/coinstream/internal/store"
	"github.com/rickgao/coinstream/internal/watchlist"
)

// ErrNoData is returned when an attempt collects no records at all.
var ErrNoData = errors.New("refresh collected no records")

// PageFetcher fetches one page of the upstream asset list.
type PageFetcher interface {
	FetchPage(ctx context.Context, page, perPage int) ([]model.AssetRecord, error)
}

// Saver persists an installed snapshot.
type Saver interface {
	Save(ctx context.Context, s model.Snapshot) error
}

// Publisher delivers an event to every subscriber.
type Publisher interface {
	BroadcastAll(ev protocol.Event)
}

// Config controls the page loop.
type Config struct {
	PageSize  int
	MaxPages  int
	PageDelay time.Duration // Pause after each successful page except the last
	Interval  time.Duration // Scheduled refresh period, used for nextUpdate
}

// DefaultConfig returns the standard page loop settings.
func DefaultConfig() Config {
	return Config{
		PageSize:  250,
		MaxPages:  4,
		PageDelay: time.Second,
		Interval:  5 * time.Minute,
	}
}

// Result describes one completed attempt.
type Result struct {
	Assets         int
	Pages          int   // Pages fetched successfully
	Duplicates     int   // Records dropped because their id was already seen
	PartialFailure error // Page error that ended the loop early, if any
	CompletedAt    time.Time
}

// Orchestrator owns the refresh page loop.
type Orchestrator struct {
	fetcher PageFetcher
	store   *store.Store
	saver   Saver
	pub     Publisher
	cfg     Config
	logger  *slog.Logger
	metrics metrics.Recorder

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	group    singleflight.Group
	inFlight atomic.Bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithSleep sets the function used for the inter-page delay.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) {
		o.sleep = sleep
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(rec metrics.Recorder) Option {
	return func(o *Orchestrator) {
		if rec != nil {
			o.metrics = rec
		}
	}
}

// New creates an Orchestrator. saver may be nil to disable persistence.
func New(fetcher PageFetcher, st *store.Store, saver Saver, pub Publisher, cfg Config, opts ...Option) *Orchestrator {
	def := DefaultConfig()
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = def.MaxPages
	}
	if cfg.PageDelay < 0 {
		cfg.PageDelay = 0
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}

	o := &Orchestrator{
		fetcher: fetcher,
		store:   st,
		saver:   saver,
		pub:     pub,
		cfg:     cfg,
		logger:  slog.Default(),
		metrics: metrics.Nop{},
		now:     time.Now,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Refresh runs one attempt, or joins the attempt already in flight.
// Cancelling ctx stops the wait, not the attempt.
func (o *Orchestrator) Refresh(ctx context.Context) (Result, error) {
	ch := o.group.DoChan("refresh", func() (any, error) {
		return o.run(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		r, _ := res.Val.(Result)
		return r, res.Err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Trigger starts an attempt in the background if none is running.
func (o *Orchestrator) Trigger() {
	go func() {
		_, _ = o.Refresh(context.Background())
	}()
}

// InFlight reports whether a page loop is running.
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

// Interval returns the scheduled refresh period.
func (o *Orchestrator) Interval() time.Duration {
	return o.cfg.Interval
}

// NextUpdate returns when the next scheduled refresh is due.
func (o *Orchestrator) NextUpdate() time.Time {
	return freshness.NextUpdate(o.store.LastUpdated(), o.now(), o.cfg.Interval)
}

// Freshness classifies the current snapshot.
func (o *Orchestrator) Freshness() freshness.State {
	return freshness.Classify(o.store.LastUpdated(), o.now())
}

// stateEvents describes snap: status, cache_update and one watchlist_update
// per view.
func (o *Orchestrator) stateEvents(snap *model.Snapshot, next time.Time) []protocol.Event {
	events := make([]protocol.Event, 0, 2+len(watchlist.Variants))
	events = append(events, protocol.NewStatus(snap.LastUpdated, next, o.InFlight()))
	return append(events, snapshotEvents(snap, next)...)
}

// Greeting returns the full sequence sent to a new subscriber.
func (o *Orchestrator) Greeting(authMethod string) []protocol.Event {
	snap := o.store.Current()
	now := o.now()
	next := freshness.NextUpdate(snap.LastUpdated, now, o.cfg.Interval)

	events := make([]protocol.Event, 0, 3+len(watchlist.Variants))
	events = append(events, protocol.NewConnectionEstablished(now, snap.LastUpdated, next, authMethod))
	return append(events, o.stateEvents(snap, next)...)
}

func (o *Orchestrator) run(ctx context.Context) (Result, error) {
	start := o.now()
	o.inFlight.Store(true)

	prev := o.store.LastUpdated()
	o.publish(protocol.NewStatus(prev, freshness.NextUpdate(prev, start, o.cfg.Interval), true))

	o.logger.Info("refresh started",
		"page_size", o.cfg.PageSize,
		"max_pages", o.cfg.MaxPages,
	)

	assets, res := o.fetchAll(ctx)
	o.inFlight.Store(false)

	if len(assets) == 0 {
		err := ErrNoData
		if res.PartialFailure != nil {
			err = fmt.Errorf("%w: %w", ErrNoData, res.PartialFailure)
		}
		o.metrics.RefreshCompleted("failure", o.now().Sub(start))
		o.logger.Error("refresh failed", "err", err)

		now := o.now()
		o.publish(protocol.NewStatus(prev, freshness.NextUpdate(prev, now, o.cfg.Interval), false))
		o.publish(protocol.NewError(protocol.CodeFetchFailed, "").Event(now))
		return res, err
	}

	completed := o.now()
	snap := o.store.Install(assets, completed)
	res.Assets = snap.Len()
	res.CompletedAt = completed
	o.metrics.SnapshotInstalled(res.Assets, completed)

	if o.saver != nil {
		if err := o.saver.Save(ctx, *snap); err != nil {
			o.metrics.SnapshotPersistFailed()
			o.logger.Error("persist snapshot", "err", err)
		}
	}

	o.metrics.RefreshCompleted("success", completed.Sub(start))
	o.logger.Info("refresh completed",
		"assets", res.Assets,
		"pages", res.Pages,
		"duplicates", res.Duplicates,
		"partial", res.PartialFailure != nil,
		"duration", completed.Sub(start),
	)

	next := freshness.NextUpdate(snap.LastUpdated, completed, o.cfg.Interval)
	o.publish(protocol.NewStatus(snap.LastUpdated, next, false))
	for _, ev := range snapshotEvents(snap, next) {
		o.publish(ev)
	}
	return res, nil
}

// fetchAll walks pages 1..MaxPages in order. Only a failing page ends the
// loop early and everything collected before it is kept.
func (o *Orchestrator) fetchAll(ctx context.Context) ([]model.AssetRecord, Result) {
	var res Result
	seen := make(map[string]struct{}, o.cfg.PageSize*o.cfg.MaxPages)
	assets := make([]model.AssetRecord, 0, o.cfg.PageSize*o.cfg.MaxPages)

	for page := 1; page <= o.cfg.MaxPages; page++ {
		records, err := o.fetcher.FetchPage(ctx, page, o.cfg.PageSize)
		if err != nil {
			o.metrics.PageFetched("error")
			res.PartialFailure = fmt.Errorf("page %d: %w", page, err)
			o.logger.Warn("page fetch failed",
				"page", page,
				"collected", len(assets),
				"err", err,
			)
			break
		}
		o.metrics.PageFetched("ok")
		res.Pages++

		for _, r := range records {
			if _, dup := seen[r.ID]; dup {
				res.Duplicates++
				continue
			}
			seen[r.ID] = struct{}{}
			assets = append(assets, r)
		}

		o.logger.Debug("page fetched", "page", page, "records", len(records))

		// Page length says nothing about the end of the listing: records
		// without an id are already dropped by the fetcher.
		if page == o.cfg.MaxPages {
			break
		}
		if err := o.sleep(ctx, o.cfg.PageDelay); err != nil {
			res.PartialFailure = err
			break
		}
	}
	return assets, res
}

func (o *Orchestrator) publish(ev protocol.Event) {
	if o.pub != nil {
		o.pub.BroadcastAll(ev)
	}
}

func snapshotEvents(snap *model.Snapshot, next time.Time) []protocol.Event {
	events := make([]protocol.Event, 0, 1+len(watchlist.Variants))
	events = append(events, protocol.NewCacheUpdate(snap, next))
	for _, view := range watchlist.BuildAll(snap.Assets) {
		events = append(events, protocol.NewWatchlistUpdate(view.ID, view.Name, view.Coins))
	}
	return events
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
