// Package hub fans events out to connected subscribers.
//
// Every subscriber owns a bounded FIFO queue drained by a single writer
// goroutine, so frames reach a connection in the order they were enqueued.
// Broadcasts encode an event once and enqueue the same bytes everywhere.
//
// Join registers a subscriber and enqueues its greeting under the hub lock,
// so no broadcast can land ahead of the greeting. A subscriber whose queue
// overflows or whose connection fails is closed and removed; the rest of the
// fan-out continues.
package hub
