package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rickgao/coinstream/internal/model"
)

// MaxPerPage is the largest page size upstream accepts.
const MaxPerPage = 250

// GetCoinsMarkets fetches one page of market data.
func (c *Client) GetCoinsMarkets(ctx context.Context, opts MarketsOptions) ([]CoinMarket, error) {
	query := url.Values{}
	query.Set("vs_currency", c.vsCurrency)

	order := opts.Order
	if order == "" {
		order = "market_cap_desc"
	}
	query.Set("order", order)

	if opts.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(min(opts.PerPage, MaxPerPage)))
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	query.Set("price_change_percentage", "24h")

	var resp []CoinMarket
	if err := c.get(ctx, "/coins/markets", query, &resp); err != nil {
		return nil, fmt.Errorf("get coins markets page %d: %w", opts.Page, err)
	}

	return resp, nil
}

// FetchPage fetches one page of assets in upstream order.
func (c *Client) FetchPage(ctx context.Context, page, perPage int) ([]model.AssetRecord, error) {
	markets, err := c.GetCoinsMarkets(ctx, MarketsOptions{Page: page, PerPage: perPage})
	if err != nil {
		return nil, err
	}
	return MarketsToModel(markets), nil
}

// Ping checks upstream liveness.
func (c *Client) Ping(ctx context.Context) (*PingResponse, error) {
	var resp PingResponse
	if err := c.get(ctx, "/ping", nil, &resp); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &resp, nil
}
