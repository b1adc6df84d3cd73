package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "coinstream"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	refreshRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "runs_total",
			Help:      "Total number of refresh attempts by result.",
		},
		[]string{"result"},
	)

	refreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "duration_seconds",
			Help:      "Duration of refresh attempts.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8), // 250ms to ~32s
		},
	)

	refreshPages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "pages_total",
			Help:      "Total number of upstream pages fetched by outcome.",
		},
		[]string{"outcome"},
	)

	storeAssets = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "assets",
			Help:      "Number of assets in the current snapshot.",
		},
	)

	storeLastUpdated = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "last_updated_timestamp_seconds",
			Help:      "Unix time of the last successful refresh.",
		},
	)

	hubSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "subscribers",
			Help:      "Current number of connected subscribers.",
		},
	)

	hubSendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "send_failures_total",
			Help:      "Total number of subscriber sends that failed.",
		},
	)

	hubBroadcasts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "broadcasts_total",
			Help:      "Total number of events broadcast to all subscribers.",
		},
		[]string{"event"},
	)

	searchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total number of search requests by answer source.",
		},
		[]string{"source"},
	)

	snapshotPersistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "persist_failures_total",
			Help:      "Total number of failed snapshot writes.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)
)

func init() {
	Registry.MustRegister(
		refreshRuns,
		refreshDuration,
		refreshPages,
		storeAssets,
		storeLastUpdated,
		hubSubscribers,
		hubSendFailures,
		hubBroadcasts,
		searchRequests,
		snapshotPersistFailures,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Recorder is the sink components report to. The zero value of Prom is
// usable; tests inject Nop.
type Recorder interface {
	RefreshCompleted(result string, d time.Duration)
	PageFetched(outcome string)
	SnapshotInstalled(assets int, at time.Time)
	SnapshotPersistFailed()
	SubscribersChanged(n int)
	SendFailed()
	Broadcast(event string)
	Searched(source string)
}

// Prom records to the package registry.
type Prom struct{}

var _ Recorder = Prom{}

func (Prom) RefreshCompleted(result string, d time.Duration) {
	refreshRuns.WithLabelValues(result).Inc()
	refreshDuration.Observe(d.Seconds())
}

func (Prom) PageFetched(outcome string) { refreshPages.WithLabelValues(outcome).Inc() }

func (Prom) SnapshotInstalled(assets int, at time.Time) {
	storeAssets.Set(float64(assets))
	storeLastUpdated.Set(float64(at.Unix()))
}

func (Prom) SnapshotPersistFailed() { snapshotPersistFailures.Inc() }

func (Prom) SubscribersChanged(n int) { hubSubscribers.Set(float64(n)) }

func (Prom) SendFailed() { hubSendFailures.Inc() }

func (Prom) Broadcast(event string) { hubBroadcasts.WithLabelValues(event).Inc() }

func (Prom) Searched(source string) { searchRequests.WithLabelValues(source).Inc() }

// Nop discards everything.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) RefreshCompleted(string, time.Duration) {}
func (Nop) PageFetched(string)                     {}
func (Nop) SnapshotInstalled(int, time.Time)       {}
func (Nop) SnapshotPersistFailed()                 {}
func (Nop) SubscribersChanged(int)                 {}
func (Nop) SendFailed()                            {}
func (Nop) Broadcast(string)                       {}
func (Nop) Searched(string)                        {}

// InstrumentHandler wraps next with request count and latency collection
// under the given route label.
func InstrumentHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
