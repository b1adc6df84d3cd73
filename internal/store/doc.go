// Package store holds the single shared asset snapshot.
//
// The snapshot is swapped atomically: readers always observe either the
// previous complete snapshot or the new one, never a partial install.
// Install is the only write path after startup and is called by the refresh
// orchestrator when a refresh succeeds.
package store
