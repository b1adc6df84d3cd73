// Package snapshot persists the asset store as a single JSON blob.
//
// Layout:
//
//	{ "data": [AssetRecord...], "lastUpdated": "2025-01-15T12:00:00Z" | null }
//
// The blob is read once at startup and overwritten atomically after every
// successful refresh.
package snapshot
