package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rickgao/coinstream/internal/model"
	"github.com/rickgao/coinstream/internal/refresh"
	"github.com/rickgao/coinstream/internal/store"
)

// mockRefresher counts calls and optionally fails.
type mockRefresher struct {
	calls atomic.Int32
	err   error
	ran   chan struct{}
}

func newMockRefresher() *mockRefresher {
	return &mockRefresher{ran: make(chan struct{}, 100)}
}

func (m *mockRefresher) Refresh(ctx context.Context) (refresh.Result, error) {
	m.calls.Add(1)
	m.ran <- struct{}{}
	return refresh.Result{Assets: 1, Pages: 1}, m.err
}

func TestPoller_InitialDelay(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		last *time.Time
		want time.Duration
	}{
		{"missing", nil, 0},
		{"fresh", ptr(now.Add(-4 * time.Minute)), time.Minute},
		{"outdated", ptr(now.Add(-10 * time.Minute)), 0},
		{"stale", ptr(now.Add(-time.Hour)), 0},
		{"future", ptr(now.Add(time.Minute)), 6 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.New()
			if tt.last != nil {
				st.Install([]model.AssetRecord{{ID: "a"}}, *tt.last)
			}

			p := New(Config{Interval: 5 * time.Minute}, newMockRefresher(), st, nil)
			p.now = func() time.Time { return now }

			if got := p.initialDelay(); got != tt.want {
				t.Errorf("initialDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPoller_StartStop(t *testing.T) {
	r := newMockRefresher()
	p := New(Config{Interval: 20 * time.Millisecond}, r, store.New(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Missing snapshot runs immediately, then again after the interval.
	for i := 0; i < 2; i++ {
		select {
		case <-r.ran:
		case <-time.After(2 * time.Second):
			t.Fatalf("refresh %d did not run", i+1)
		}
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	after := r.calls.Load()
	time.Sleep(60 * time.Millisecond)
	if got := r.calls.Load(); got != after {
		t.Errorf("refresh ran %d times after Stop", got-after)
	}
}

func TestPoller_FailureKeepsScheduling(t *testing.T) {
	r := newMockRefresher()
	r.err = errors.New("upstream down")
	p := New(Config{Interval: 10 * time.Millisecond}, r, store.New(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	for i := 0; i < 3; i++ {
		select {
		case <-r.ran:
		case <-time.After(2 * time.Second):
			t.Fatalf("refresh %d did not run after failures", i+1)
		}
	}

	p.Stop(context.Background())
}

func TestPoller_FreshSnapshotWaits(t *testing.T) {
	st := store.New()
	st.Install([]model.AssetRecord{{ID: "a"}}, time.Now())

	r := newMockRefresher()
	p := New(Config{Interval: time.Hour}, r, st, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	if got := r.calls.Load(); got != 0 {
		t.Errorf("refresh ran %d times for a fresh snapshot, want 0", got)
	}

	p.Stop(context.Background())
}

func ptr(t time.Time) *time.Time { return &t }
