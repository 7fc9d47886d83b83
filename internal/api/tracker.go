package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
)

func pageQuery(page, limit int) url.Values {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

// TrackWallet starts mirroring a wallet. Tracking an existing inactive
// wallet again resumes it.
func (c *Client) TrackWallet(ctx context.Context, coin amount.Coin, req TrackedWalletCreate) (*TrackedWallet, error) {
	var wallet TrackedWallet
	if err := c.authedDo(ctx, http.MethodPost, "/copy-trading/track/"+string(coin), nil, req, &wallet); err != nil {
		return nil, err
	}
	return &wallet, nil
}

// UntrackWallet stops mirroring a wallet
func (c *Client) UntrackWallet(ctx context.Context, coin amount.Coin, walletAddress string) (*MessageResponse, error) {
	var resp MessageResponse
	path := "/copy-trading/track/" + string(coin) + "/" + url.PathEscape(walletAddress)
	if err := c.authedDo(ctx, http.MethodDelete, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TrackedWallets lists mirrored wallets one page at a time
func (c *Client) TrackedWallets(ctx context.Context, coin amount.Coin, page, limit int) (*WalletPage, error) {
	var out WalletPage
	if err := c.authedDo(ctx, http.MethodGet, "/copy-trading/wallets/"+string(coin), pageQuery(page, limit), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logs lists copy-trading events one page at a time
func (c *Client) Logs(ctx context.Context, coin amount.Coin, page, limit int) (*LogPage, error) {
	var out LogPage
	if err := c.authedDo(ctx, http.MethodGet, "/copy-trading/wallets/logs/"+string(coin), pageQuery(page, limit), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns aggregate and per-wallet copy-trading statistics
func (c *Client) Stats(ctx context.Context, coin amount.Coin) (*CopyTradingStats, error) {
	var out CopyTradingStats
	if err := c.authedDo(ctx, http.MethodGet, "/copy-trading/stats/"+string(coin), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTradeAmount sets the per-trade size used when mirroring
func (c *Client) UpdateTradeAmount(ctx context.Context, coin amount.Coin, tradeAmount float64) (*MessageResponse, error) {
	var out MessageResponse
	req := TradeAmountRequest{TradeAmount: tradeAmount}
	if err := c.authedDo(ctx, http.MethodPut, "/copy-trading/trade-amount/"+string(coin), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Withdraw moves native coin from the custodial wallet to destination
func (c *Client) Withdraw(ctx context.Context, coin amount.Coin, req WithdrawRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.authedDo(ctx, http.MethodPost, "/wallet/withdraw/"+string(coin), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CustomBuy places a manual buy
func (c *Client) CustomBuy(ctx context.Context, coin amount.Coin, req CustomTradeRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.authedDo(ctx, http.MethodPost, "/copy-trading/custom/buy/"+string(coin), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CustomSell places a manual sell
func (c *Client) CustomSell(ctx context.Context, coin amount.Coin, req CustomTradeRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.authedDo(ctx, http.MethodPost, "/copy-trading/custom/sell/"+string(coin), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
