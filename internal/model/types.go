package model

import "time"

// AssetRecord is one tradable asset as served to subscribers.
// Records are immutable once fetched and are replaced wholesale on refresh.
type AssetRecord struct {
	ID                       string  `json:"id"`     // Unique asset id (e.g., "bitcoin")
	Symbol                   string  `json:"symbol"` // Ticker symbol (e.g., "btc")
	Name                     string  `json:"name"`   // Display name
	Image                    string  `json:"image"`  // Image URL
	CurrentPrice             float64 `json:"current_price"`
	MarketCap                float64 `json:"market_cap"`
	MarketCapRank            int     `json:"market_cap_rank"`
	TotalVolume              float64 `json:"total_volume"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
}

// Snapshot is a complete, immutable view of the asset set.
type Snapshot struct {
	Assets      []AssetRecord // Upstream page order, unique by ID
	LastUpdated *time.Time    // Fetch completion time, nil if never refreshed
}

// Len returns the number of assets in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Assets)
}

// CopyAssets returns a copy of the asset slice that callers may reorder.
func (s *Snapshot) CopyAssets() []AssetRecord {
	if s == nil || len(s.Assets) == 0 {
		return nil
	}
	out := make([]AssetRecord, len(s.Assets))
	copy(out, s.Assets)
	return out
}

// IDs returns the asset ids in snapshot order.
func IDs(assets []AssetRecord) []string {
	ids := make([]string, len(assets))
	for i, a := range assets {
		ids[i] = a.ID
	}
	return ids
}
