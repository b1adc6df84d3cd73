// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Refresh runs, durations and page outcomes
//   - Store size and snapshot age
//   - Subscriber count, broadcasts and send failures
//   - Search requests by answer source
//   - Snapshot persistence failures
//   - HTTP request counts and latencies
package metrics
