package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rickgao/coinstream/internal/model"
)

// Search queries the upstream search endpoint.
func (c *Client) Search(ctx context.Context, query string) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("query", query)

	var resp SearchResponse
	if err := c.get(ctx, "/search", q, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return &resp, nil
}

// SearchRemote returns upstream search hits as asset records, in upstream order.
func (c *Client) SearchRemote(ctx context.Context, query string) ([]model.AssetRecord, error) {
	resp, err := c.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	out := make([]model.AssetRecord, 0, len(resp.Coins))
	for _, coin := range resp.Coins {
		out = append(out, coin.ToModel())
	}

	c.logger.Debug("remote search complete", "query", query, "results", len(out))
	return out, nil
}
