// Package poller implements the refresh scheduler.
//
// The scheduler:
//   - Runs the first refresh at the snapshot's next due time, or immediately
//     when the snapshot is missing or no longer fresh
//   - Waits one interval after each completed refresh before the next
//   - Calls refresh synchronously, so scheduled runs never overlap
package poller
