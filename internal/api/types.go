package api

// CoinMarket is one entry of GET /coins/markets.
// Numeric fields are nullable upstream for thinly traded assets.
type CoinMarket struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image"`
	CurrentPrice             *float64 `json:"current_price"`
	MarketCap                *float64 `json:"market_cap"`
	MarketCapRank            *int     `json:"market_cap_rank"`
	TotalVolume              *float64 `json:"total_volume"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	LastUpdated              string   `json:"last_updated"`
}

// MarketsOptions selects a page of GET /coins/markets.
type MarketsOptions struct {
	Page    int    // 1-based page number
	PerPage int    // Page size (max 250)
	Order   string // Sort order (default: market_cap_desc)
}

// SearchResponse from GET /search.
type SearchResponse struct {
	Coins []SearchCoin `json:"coins"`
}

// SearchCoin is one coin hit of GET /search.
type SearchCoin struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	APISymbol     string `json:"api_symbol"`
	Symbol        string `json:"symbol"`
	MarketCapRank *int   `json:"market_cap_rank"`
	Thumb         string `json:"thumb"`
	Large         string `json:"large"`
}

// PingResponse from GET /ping.
type PingResponse struct {
	GeckoSays string `json:"gecko_says"`
}
