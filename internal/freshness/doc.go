// Package freshness classifies how old the served snapshot is.
//
// States:
//   - missing: no refresh has ever completed
//   - ok: age < 5 minutes
//   - outdated: 5 minutes <= age < 15 minutes
//   - stale: age >= 15 minutes
//
// Loading is tracked separately by the refresh orchestrator and failed is an
// emitted signal, neither is derived from age.
package freshness
