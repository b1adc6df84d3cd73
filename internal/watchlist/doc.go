// Package watchlist builds the four ranked views served alongside the full
// snapshot: top market cap, top gainers, top losers and top volume.
//
// Each view is the first Size asset ids of a stable sort over a copy of the
// snapshot, so ties keep upstream order and the snapshot is never reordered.
package watchlist
