// Package server exposes coinstream over HTTP and WebSocket.
//
// Routes:
//
//	GET  /ws, GET /   WebSocket subscription (bearer token required)
//	GET  /search      one-shot search, ?query=&maxResults=
//	POST /refresh     request an immediate refresh (202, coalesced)
//	GET  /health      freshness and subscriber summary
//	GET  /metrics     Prometheus metrics
package server
