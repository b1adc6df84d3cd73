// Package model defines shared data types used across coinstream.
//
// Conventions:
//   - Asset JSON field names mirror the upstream /coins/markets payload.
//   - Prices and volumes are float64 quote-currency amounts (USD by default).
//   - Timestamps are time.Time in UTC; a nil *time.Time means "never refreshed".
package model
