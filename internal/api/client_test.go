package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
)

func TestClientSendsBearerAndRequestID(t *testing.T) {
	tokens := &memTokens{tokens: Tokens{AccessToken: "acc", RefreshToken: "ref"}}

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer acc", r.Header.Get("Authorization"))
		_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
		assert.NoError(t, err)
		assert.Equal(t, "/copy-trading/stats/sol", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"total_tracked_wallets":3,"active_wallets":2,"wallet_stats":[{"wallet_address":"w1","success_rate":50}]}`)
	}), tokens)

	stats, err := client.Stats(context.Background(), amount.CoinSOL)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalTrackedWallets)
	require.Len(t, stats.WalletStats, 1)
	assert.Equal(t, 50.0, stats.WalletStats[0].SuccessRate)
}

func TestClientErrorDetail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "string detail", status: http.StatusBadRequest, body: `{"detail":"Wallet already tracked"}`, want: "Wallet already tracked"},
		{name: "validation detail", status: http.StatusUnprocessableEntity, body: `{"detail":[{"msg":"field required"},{"msg":"value too large"}]}`, want: "field required; value too large"},
		{name: "no detail", status: http.StatusInternalServerError, body: `{}`, want: "HTTP error! status: 500"},
		{name: "not json", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, want: "HTTP error! status: 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &memTokens{tokens: Tokens{AccessToken: "acc"}}
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}), tokens)

			_, err := client.TrackWallet(context.Background(), amount.CoinSOL, TrackedWalletCreate{WalletAddress: "w"})
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestDetail(t *testing.T) {
	assert.Equal(t, "", Detail(nil, "fallback"))
	assert.Equal(t, "Nope", Detail(&Error{Status: 400, Detail: "Nope"}, "fallback"))
	assert.Equal(t, "fallback", Detail(&Error{Status: 500}, "fallback"))
	assert.Equal(t, ErrSessionExpired.Error(), Detail(ErrSessionExpired, "fallback"))
}

type flakyTransport struct {
	failures int32
	calls    atomic.Int32
	next     http.RoundTripper
}

func (f *flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, errors.New("connection reset by peer")
	}
	return f.next.RoundTrip(r)
}

func TestClientRetriesGetTransportErrors(t *testing.T) {
	tokens := &memTokens{tokens: Tokens{AccessToken: "acc"}}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"logs":[],"total_count":0,"page":1,"limit":10,"total_pages":1}`)
	}), tokens)

	transport := &flakyTransport{failures: 2, next: http.DefaultTransport}
	client.httpClient = &http.Client{Transport: transport, Timeout: 5 * time.Second}
	client.retries = 3

	page, err := client.Logs(context.Background(), amount.CoinSOL, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, int32(3), transport.calls.Load())
}

func TestClientDoesNotRetryWrites(t *testing.T) {
	tokens := &memTokens{tokens: Tokens{AccessToken: "acc"}}
	client, _ := newTestClient(t, http.NotFoundHandler(), tokens)

	transport := &flakyTransport{failures: 1, next: http.DefaultTransport}
	client.httpClient = &http.Client{Transport: transport}
	client.retries = 3

	_, err := client.CustomSell(context.Background(), amount.CoinSOL, CustomTradeRequest{TokenAddress: "t", Amount: 1, Slippage: 5})
	require.Error(t, err)
	assert.Equal(t, int32(1), transport.calls.Load())
}

func TestClientDoesNotRetryHTTPErrors(t *testing.T) {
	var hits atomic.Int32
	tokens := &memTokens{tokens: Tokens{AccessToken: "acc"}}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusServiceUnavailable, `{"detail":"maintenance"}`)
	}), tokens)
	client.retries = 3

	_, err := client.Stats(context.Background(), amount.CoinBNB)
	assert.EqualError(t, err, "maintenance")
	assert.Equal(t, int32(1), hits.Load())
}

func TestWalletSettingsEndpoints(t *testing.T) {
	tokens := &memTokens{tokens: Tokens{AccessToken: "acc"}}

	var mu sync.Mutex
	var gotPaths []string
	var gotBody map[string]interface{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPaths = append(gotPaths, r.Method+" "+r.URL.RequestURI())
		if r.Method == http.MethodPut {
			data, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(data, &gotBody))
			writeJSON(w, http.StatusOK, `{"message":"Settings updated"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"swap_strategy":"fixed_buys","slippage":3}`)
	}), tokens)

	ctx := context.Background()
	into := WalletSettings{BuyDipPercentage: 10}
	require.NoError(t, client.WalletSettings(ctx, amount.CoinSOL, "", &into))
	assert.Equal(t, "fixed_buys", into.SwapStrategy)
	assert.Equal(t, 10.0, into.BuyDipPercentage)
	require.NotNil(t, into.Slippage)
	assert.Equal(t, 3.0, *into.Slippage)

	require.NoError(t, client.WalletSettings(ctx, amount.CoinBNB, "0xabc", &into))

	hour := 2
	slippage := 0.0
	resp, err := client.UpdateWalletSettings(ctx, amount.CoinSOL, "", &WalletSettings{
		Slippage:                &slippage,
		MaxBuysPerMirrorPerHour: &hour,
		TakeProfitLevels:        []TakeProfitLevel{{}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Settings updated", resp.Message)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"GET /copy-trading/wallet-settings?coin=sol",
		"GET /copy-trading/tracked-wallet/bnb/0xabc/settings",
		"PUT /copy-trading/wallet-settings?coin=sol",
	}, gotPaths)

	assert.Equal(t, 0.0, gotBody["slippage"])
	assert.Equal(t, 2.0, gotBody["max_buys_per_mirror_per_hour"])
	assert.NotContains(t, gotBody, "max_buys_per_mirror_per_day")
	assert.NotContains(t, gotBody, "max_buys_per_token_per_day")
	assert.Len(t, gotBody["take_profit_levels"], 1)
}

func TestLoginStoresSession(t *testing.T) {
	tokens := &memTokens{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"access_token":"a1","refresh_token":"r1","wallet":{"id":"w1","user_id":"u1","solana_public_key":"pk","solana_balance":"0"}}`)
	}), tokens)

	pair, err := client.Login(context.Background(), LoginRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "a1", pair.AccessToken)

	stored, _ := tokens.snapshot()
	assert.Equal(t, Tokens{AccessToken: "a1", RefreshToken: "r1"}, stored)
	require.NotNil(t, tokens.user)
	assert.Equal(t, "alice", tokens.user.Username)
	assert.Equal(t, "u1", tokens.user.ID)
	require.NotNil(t, tokens.wallet)
	assert.Equal(t, "pk", tokens.wallet.SolanaPublicKey)
}

func TestLogoutClearsEvenWhenBackendFails(t *testing.T) {
	tokens := &memTokens{tokens: Tokens{AccessToken: "a1", RefreshToken: "r1"}}
	var hits atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "Bearer a1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusInternalServerError, `{}`)
	}), tokens)

	require.NoError(t, client.Logout(context.Background()))
	stored, cleared := tokens.snapshot()
	assert.Empty(t, stored.AccessToken)
	assert.Equal(t, 1, cleared)
	assert.Equal(t, int32(1), hits.Load())
}

func TestLogoutWithoutSessionSkipsBackend(t *testing.T) {
	tokens := &memTokens{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	}), tokens)

	assert.NoError(t, client.Logout(context.Background()))
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(nil, &memTokens{}, zap.NewNop())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
	assert.Equal(t, DefaultRetryInterval, c.retryInterval)
}

type recordingObserver struct {
	mu       sync.Mutex
	statuses []int
}

func (o *recordingObserver) ObserveRequest(_ string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, status)
}

func TestClientReportsEachExchange(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			writeJSON(w, http.StatusServiceUnavailable, `{}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"total_tracked_wallets":1}`)
	}))
	t.Cleanup(srv.Close)

	obs := &recordingObserver{}
	client := NewClient(&Config{BaseURL: srv.URL, Observer: obs}, &memTokens{tokens: Tokens{AccessToken: "acc"}}, zap.NewNop())

	_, err := client.Stats(context.Background(), amount.CoinSOL)
	require.Error(t, err)
	_, err = client.Stats(context.Background(), amount.CoinSOL)
	require.NoError(t, err)

	assert.Equal(t, []int{http.StatusServiceUnavailable, http.StatusOK}, obs.statuses)
}
