// Package api provides the CoinGecko-compatible REST client used as the
// upstream market data source.
//
// Endpoints:
//   - GET /coins/markets: paginated market data (max 250 per page)
//   - GET /search: free-text asset search (remote fallback)
//   - GET /ping: liveness
//
// Base URLs:
//   - Public/demo: https://api.coingecko.com/api/v3 (header x-cg-demo-api-key)
//   - Pro: https://pro-api.coingecko.com/api/v3 (header x-cg-pro-api-key)
package api
