package watchlist

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"github.com/rickgao/coinstream/internal/model"
)

// Size is the number of ids in every view.
const Size = 25

// Namespace seeds the deterministic view ids.
var Namespace = uuid.MustParse("6f1c1e52-3b0a-4f0e-9a57-2c8d2f5b7e41")

// Variant names a ranked view.
type Variant string

const (
	TopMarketCap Variant = "top_marketcap"
	TopGainers   Variant = "top_gainers"
	TopLosers    Variant = "top_losers"
	TopVolume    Variant = "top_volume"
)

// Variants lists every view in broadcast order.
var Variants = []Variant{TopMarketCap, TopGainers, TopLosers, TopVolume}

// DisplayName returns the human-readable name of the view.
func (v Variant) DisplayName() string {
	switch v {
	case TopMarketCap:
		return "Top Market Cap"
	case TopGainers:
		return "Top Gainers"
	case TopLosers:
		return "Top Losers"
	case TopVolume:
		return "Top Volume"
	default:
		return string(v)
	}
}

// ID returns the stable UUIDv5 of the view.
func (v Variant) ID() string {
	return uuid.NewSHA1(Namespace, []byte(v)).String()
}

// View is one ranked list of asset ids.
type View struct {
	Variant Variant
	ID      string
	Name    string
	Coins   []string
}

// Build ranks assets for variant and returns the top Size ids.
// An unknown variant yields an empty view.
func Build(variant Variant, assets []model.AssetRecord) View {
	view := View{
		Variant: variant,
		ID:      variant.ID(),
		Name:    variant.DisplayName(),
		Coins:   []string{},
	}

	less := compareFor(variant)
	if less == nil {
		return view
	}

	sorted := slices.Clone(assets)
	slices.SortStableFunc(sorted, less)
	if len(sorted) > Size {
		sorted = sorted[:Size]
	}
	view.Coins = model.IDs(sorted)
	return view
}

// BuildAll builds every view in Variants order.
func BuildAll(assets []model.AssetRecord) []View {
	views := make([]View, 0, len(Variants))
	for _, v := range Variants {
		views = append(views, Build(v, assets))
	}
	return views
}

func compareFor(v Variant) func(a, b model.AssetRecord) int {
	switch v {
	case TopMarketCap:
		return func(a, b model.AssetRecord) int { return cmp.Compare(b.MarketCap, a.MarketCap) }
	case TopGainers:
		return func(a, b model.AssetRecord) int {
			return cmp.Compare(b.PriceChangePercentage24h, a.PriceChangePercentage24h)
		}
	case TopLosers:
		return func(a, b model.AssetRecord) int {
			return cmp.Compare(a.PriceChangePercentage24h, b.PriceChangePercentage24h)
		}
	case TopVolume:
		return func(a, b model.AssetRecord) int { return cmp.Compare(b.TotalVolume, a.TotalVolume) }
	default:
		return nil
	}
}
