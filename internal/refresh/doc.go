// Package refresh runs the paged upstream fetch that replaces the asset
// snapshot, and announces each attempt to subscribers.
//
// At most one page loop runs at a time. Concurrent callers of Refresh join the
// attempt already in flight and receive its result. Once started, an attempt
// runs to completion even if every caller goes away.
//
// Event sequence for one attempt:
//
//	status{isLoading:true}
//	success: status{isLoading:false}, cache_update, 4x watchlist_update
//	failure: status{isLoading:false}, error{FETCH_FAILED}
package refresh
