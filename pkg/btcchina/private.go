package btcchina

import (
	"context"

	"github.com/cockroachdb/apd/v3"

	"btcchina/pkg/core"
)

// Private JSON-RPC methods.
const (
	MethodBuyOrder2         = "buyOrder2"
	MethodSellOrder2        = "sellOrder2"
	MethodCancelOrder       = "cancelOrder"
	MethodGetOrders         = "getOrders"
	MethodGetOrder          = "getOrder"
	MethodGetTransactions   = "getTransactions"
	MethodGetMarketDepth2   = "getMarketDepth2"
	MethodGetDeposits       = "getDeposits"
	MethodGetWithdrawal     = "getWithdrawal"
	MethodGetWithdrawals    = "getWithdrawals"
	MethodRequestWithdrawal = "requestWithdrawal"
	MethodGetAccountInfo    = "getAccountInfo"
)

// Order sides accepted by CreateOrder2.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Optional fields in the request types below are positional: the server reads them in
// declaration order, so a field is only sent when every field before it is set.

// OrderRequest places a limit order. A nil Price places a market order.
type OrderRequest struct {
	Price  *apd.Decimal
	Amount *apd.Decimal
	Market *string
}

func (r OrderRequest) params() []any {
	var price any = r.Price
	if r.Price == nil {
		price = Null
	}
	return paramArray(3, price, r.Amount, r.Market)
}

// BuyOrder2 places a buy order.
func (c *Client) BuyOrder2(ctx context.Context, req OrderRequest) (*Response, error) {
	return c.PrivateRequest(ctx, MethodBuyOrder2, req.params())
}

// SellOrder2 places a sell order.
func (c *Client) SellOrder2(ctx context.Context, req OrderRequest) (*Response, error) {
	return c.PrivateRequest(ctx, MethodSellOrder2, req.params())
}

// CreateOrder2 places a buy or sell order depending on side.
func (c *Client) CreateOrder2(ctx context.Context, side string, req OrderRequest) (*Response, error) {
	switch side {
	case SideBuy:
		return c.BuyOrder2(ctx, req)
	case SideSell:
		return c.SellOrder2(ctx, req)
	default:
		return nil, core.NewValidationError("order side %q needs to be either %q or %q", side, SideBuy, SideSell)
	}
}

type CancelOrderRequest struct {
	ID     *int64
	Market *string
}

// CancelOrder cancels an open order.
func (c *Client) CancelOrder(ctx context.Context, req CancelOrderRequest) (*Response, error) {
	return c.PrivateRequest(ctx, MethodCancelOrder, paramArray(2, req.ID, req.Market))
}

type GetOrdersRequest struct {
	OpenOnly   *bool
	Market     *string
	Limit      *int
	Offset     *int
	Since      *int64
	WithDetail *bool
}

// GetOrders lists orders.
func (c *Client) GetOrders(ctx context.Context, req GetOrdersRequest) (*Response, error) {
	return c.PrivateRequest(ctx, MethodGetOrders,
		paramArray(6, req.OpenOnly, req.Market, req.Limit, req.Offset, req.Since, req.WithDetail))
}

type GetOrderRequest struct {
	ID         *int64
	Market     *string
	WithDetail *bool
}

// GetOrder returns one order.
func (c *Client) GetOrder(ctx context.Context, req GetOrderRequest) (*Response, error) {
	return c.PrivateRequest(ctx, MethodGetOrder, paramArray(3, req.ID, req.Market, req.WithDetail))
}

type GetTransactionsRequest struct {
	// Type is one of all, fundbtc, withdrawbtc, fundmoney, withdrawmoney, refundmoney,
	// buybtc, sellbtc, refundbtc, tradefee, rebate, fundltc, refundltc, withdrawltc.
	Type      *string
	Limit     *int
	Offset    *int
	Since     *int64
	SinceType *string
}

// GetTransactions lists account transactions.
func (c *Client) GetTransactions(ctx context.Context, req GetTransactionsRequest) (*Response, error) {
	return c.PrivateRequest(ctx, MethodGetTransactions,
		paramArray(5, req.Type, req.Limit, req.Offset, req.Since, req.SinceType))
}

type GetMarketDepth2Request struct {
	Limit  *int
	Market *string
}

// GetMarketDepth2 returns the authenticated order book view.
func (c *Client) GetMarketDepth2(ctx context.Context, req GetMarketDepth2Request) (*Response, error) {
	return c.PrivateRequest(ctx, MethodGetMarketDepth2, paramArray(2, req.Limit, req.Market))
}

type GetDepositsRequest struct {
	Currency    *string
	PendingOnly *bool
}

func (c *Client) GetDeposits(ctx context.Context, req GetDepositsRequest) (*Response, error) {
	return c.PrivateRequest(ctx, MethodGetDeposits, paramArray(2, req.Currency, req.PendingOnly))
}

type GetWithdrawalRequest struct {
	ID       *int64
	Currency *string
}

func (c *Client) GetWithdrawal(ctx context.Context, req GetWithdrawalRequest) (*Response, error) {
	return c.PrivateRequest(ctx, MethodGetWithdrawal, paramArray(2, req.ID, req.Currency))
}

type GetWithdrawalsRequest struct {
	Currency    *string
	PendingOnly *bool
}

func (c *Client) GetWithdrawals(ctx context.Context, req GetWithdrawalsRequest) (*Response, error) {
	return c.PrivateRequest(ctx, MethodGetWithdrawals, paramArray(2, req.Currency, req.PendingOnly))
}

type RequestWithdrawalRequest struct {
	Currency *string
	Amount   *apd.Decimal
}

// RequestWithdrawal requests a withdrawal to the account's registered address.
func (c *Client) RequestWithdrawal(ctx context.Context, req RequestWithdrawalRequest) (*Response, error) {
	return c.PrivateRequest(ctx, MethodRequestWithdrawal, paramArray(2, req.Currency, req.Amount))
}

type GetAccountInfoRequest struct {
	// Type is one of all, balance, frozen, loan, profile.
	Type *string
}

// GetAccountInfo returns balances and profile data.
func (c *Client) GetAccountInfo(ctx context.Context, req GetAccountInfoRequest) (*Response, error) {
	return c.PrivateRequest(ctx, MethodGetAccountInfo, paramArray(1, req.Type))
}
