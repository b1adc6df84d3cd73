package api

import (
	"strings"

	"github.com/rickgao/coinstream/internal/model"
)

// ToModel converts an upstream market entry to an AssetRecord.
// Null numeric fields become zero.
func (m CoinMarket) ToModel() model.AssetRecord {
	return model.AssetRecord{
		ID:                       m.ID,
		Symbol:                   m.Symbol,
		Name:                     m.Name,
		Image:                    m.Image,
		CurrentPrice:             derefFloat(m.CurrentPrice),
		MarketCap:                derefFloat(m.MarketCap),
		MarketCapRank:            derefInt(m.MarketCapRank),
		TotalVolume:              derefFloat(m.TotalVolume),
		PriceChangePercentage24h: derefFloat(m.PriceChangePercentage24h),
	}
}

// ToModel converts a search hit to an AssetRecord. Search hits carry no
// price data, so only identity fields and rank are set.
func (s SearchCoin) ToModel() model.AssetRecord {
	image := s.Large
	if image == "" {
		image = s.Thumb
	}
	return model.AssetRecord{
		ID:            s.ID,
		Symbol:        strings.ToLower(s.Symbol),
		Name:          s.Name,
		Image:         image,
		MarketCapRank: derefInt(s.MarketCapRank),
	}
}

// MarketsToModel converts a page of upstream entries, dropping entries without an id.
func MarketsToModel(markets []CoinMarket) []model.AssetRecord {
	out := make([]model.AssetRecord, 0, len(markets))
	for _, m := range markets {
		if m.ID == "" {
			continue
		}
		out = append(out, m.ToModel())
	}
	return out
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
