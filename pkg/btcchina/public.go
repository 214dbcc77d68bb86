package btcchina

import (
	"context"

	"btcchina/pkg/core"
)

// Public market-data methods.
const (
	MethodTicker      = "ticker"
	MethodOrderBook   = "orderbook"
	MethodHistoryData = "historydata"
	MethodTrades      = tradesMethod
)

// GetTicker returns the ticker for market, e.g. "btccny" or "all".
func (c *Client) GetTicker(ctx context.Context, market string) (*Response, error) {
	return c.PublicRequest(ctx, MethodTicker, core.Params{"market": market})
}

// GetOrderBook returns the order book for market. limit is only sent when positive.
func (c *Client) GetOrderBook(ctx context.Context, market string, limit int) (*Response, error) {
	params := core.Params{"market": market}
	if limit > 0 {
		params["limit"] = limit
	}
	return c.PublicRequest(ctx, MethodOrderBook, params)
}

// GetHistoryData returns historical trades filtered by params (market, limit, since, sincetype).
func (c *Client) GetHistoryData(ctx context.Context, params core.Params) (*Response, error) {
	if params == nil {
		params = core.Params{}
	}
	return c.PublicRequest(ctx, MethodHistoryData, params)
}

// GetTrades returns trades for market since a point in time. It defaults sincetype to
// "time"; keys in params override the defaults.
func (c *Client) GetTrades(ctx context.Context, market string, params core.Params) (*Response, error) {
	merged := core.Params{"market": market, "sincetype": "time"}.Merge(params)
	return c.PublicRequest(ctx, MethodHistoryData, merged)
}
