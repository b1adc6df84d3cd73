package freshness

import "time"

// State is an age-based freshness classification.
type State string

const (
	Missing  State = "missing"
	OK       State = "ok"
	Outdated State = "outdated"
	Stale    State = "stale"
)

// Age thresholds.
const (
	OKWindow       = 5 * time.Minute
	OutdatedWindow = 15 * time.Minute
)

// Classify returns the state of a snapshot last refreshed at last, as seen at now.
// A timestamp in the future is treated as age zero.
func Classify(last *time.Time, now time.Time) State {
	if last == nil {
		return Missing
	}

	age := now.Sub(*last)
	switch {
	case age < OKWindow:
		return OK
	case age < OutdatedWindow:
		return Outdated
	default:
		return Stale
	}
}

// NextUpdate returns when the next scheduled refresh is due.
// It returns now when no refresh has ever completed.
func NextUpdate(last *time.Time, now time.Time, interval time.Duration) time.Time {
	if last == nil {
		return now
	}
	return last.Add(interval)
}

// NeedsRefresh reports whether a snapshot in state s should be refreshed immediately.
func NeedsRefresh(s State) bool {
	return s != OK
}
