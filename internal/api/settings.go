package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
)

// settingsPath returns the global settings endpoint when walletAddress is
// empty, otherwise the endpoint of that mirror.
func settingsPath(coin amount.Coin, walletAddress string) (string, url.Values) {
	if walletAddress == "" {
		q := url.Values{}
		q.Set("coin", string(coin))
		return "/copy-trading/wallet-settings", q
	}
	return "/copy-trading/tracked-wallet/" + string(coin) + "/" + url.PathEscape(walletAddress) + "/settings", nil
}

// WalletSettings decodes the stored settings into into. Fields the backend
// omits keep whatever into already held.
func (c *Client) WalletSettings(ctx context.Context, coin amount.Coin, walletAddress string, into *WalletSettings) error {
	path, q := settingsPath(coin, walletAddress)
	return c.authedDo(ctx, http.MethodGet, path, q, nil, into)
}

// UpdateWalletSettings stores settings and returns the backend's message
func (c *Client) UpdateWalletSettings(ctx context.Context, coin amount.Coin, walletAddress string, settings *WalletSettings) (*MessageResponse, error) {
	path, q := settingsPath(coin, walletAddress)
	var out MessageResponse
	if err := c.authedDo(ctx, http.MethodPut, path, q, settings, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
