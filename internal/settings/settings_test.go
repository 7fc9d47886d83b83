package settings

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
	"github.com/rovshanmuradov/prometheus-client/internal/api"
	"github.com/rovshanmuradov/prometheus-client/internal/ladder"
)

type fakeBackend struct {
	stored   string
	loadErr  error
	saveErr  error
	saveResp *api.MessageResponse

	gotCoin   amount.Coin
	gotWallet string
	saved     *api.WalletSettings
}

func (f *fakeBackend) WalletSettings(_ context.Context, coin amount.Coin, wallet string, into *api.WalletSettings) error {
	f.gotCoin, f.gotWallet = coin, wallet
	if f.loadErr != nil {
		return f.loadErr
	}
	return json.Unmarshal([]byte(f.stored), into)
}

func (f *fakeBackend) UpdateWalletSettings(_ context.Context, coin amount.Coin, wallet string, s *api.WalletSettings) (*api.MessageResponse, error) {
	f.gotCoin, f.gotWallet = coin, wallet
	f.saved = s
	return f.saveResp, f.saveErr
}

func TestLoadSeedsEmptyLadders(t *testing.T) {
	backend := &fakeBackend{stored: `{"swap_strategy":"fixed_buys","buy_the_dip":true}`}
	c := NewController(backend, zap.NewNop())

	st, err := c.Load(context.Background(), Target{Coin: amount.CoinSOL})
	require.NoError(t, err)

	assert.Equal(t, []ladder.Level{{}}, st.TakeProfit.Levels)
	assert.Equal(t, []ladder.Level{{}}, st.StopLoss.Levels)
	assert.True(t, st.TPSLIsActive, "absent tp_sl_is_active defaults to true")
	assert.Equal(t, "fixed_buys", st.SwapStrategy)
	assert.True(t, st.BuyTheDip)
	assert.Equal(t, 10.0, st.BuyDipPercentage)
	assert.Equal(t, 600.0, st.DipRecoveryTimeout)
	assert.Equal(t, "1", st.Slippage)
	assert.Nil(t, st.MaxBuysPerMirrorPerHour)
}

func TestLoadKeepsStoredLadders(t *testing.T) {
	backend := &fakeBackend{stored: `{
		"take_profit_levels":[{"profit_percentage":50,"sell_percentage":60},{"profit_percentage":100,"sell_percentage":60}],
		"stop_loss_levels":[{"loss_percentage":20,"sell_percentage":100}],
		"tp_sl_is_active":false,
		"slippage":2.5,
		"max_buys_per_token_per_day":0
	}`}
	c := NewController(backend, zap.NewNop())

	target := Target{Coin: amount.CoinBNB, WalletAddress: "0xabc"}
	st, err := c.Load(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, "0xabc", backend.gotWallet)
	assert.Equal(t, amount.CoinBNB, backend.gotCoin)
	assert.Len(t, st.TakeProfit.Levels, 2)
	assert.Equal(t, ladder.MsgExceeds, st.TakeProfit.Message)
	assert.Equal(t, ladder.Level{Trigger: 20, Sell: 100}, st.StopLoss.Levels[0])
	assert.False(t, st.TPSLIsActive)
	assert.Equal(t, "2.5", st.Slippage)
	require.NotNil(t, st.MaxBuysPerTokenPerDay)
	assert.Equal(t, 0, *st.MaxBuysPerTokenPerDay)
	assert.Len(t, st.LadderWarnings(), 1)
}

func TestLoadError(t *testing.T) {
	backend := &fakeBackend{loadErr: api.ErrSessionExpired}
	_, err := NewController(backend, zap.NewNop()).Load(context.Background(), Target{Coin: amount.CoinSOL})
	assert.ErrorIs(t, err, api.ErrSessionExpired)
}

func TestNormalize(t *testing.T) {
	hour := 3
	st := FromDocument(Target{Coin: amount.CoinSOL}, Defaults())
	st.Slippage = ""
	st.MaxBuysPerMirrorPerHour = &hour
	st.TakeProfit = st.TakeProfit.Add()

	doc := Normalize(st)
	require.NotNil(t, doc.Slippage)
	assert.Equal(t, 0.0, *doc.Slippage)
	assert.Equal(t, &hour, doc.MaxBuysPerMirrorPerHour)
	assert.Nil(t, doc.MaxBuysPerMirrorPerDay)
	assert.Nil(t, doc.MaxBuysPerTokenPerDay)
	assert.Equal(t, []api.TakeProfitLevel{{}, {}}, doc.TakeProfitLevels, "placeholder rows are sent verbatim")
	assert.Equal(t, []api.StopLossLevel{{}}, doc.StopLossLevels)
	require.NotNil(t, doc.TPSLIsActive)
	assert.True(t, *doc.TPSLIsActive)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "max_buys_per_mirror_per_day")
	assert.Contains(t, string(data), `"slippage":0`)
}

func TestSaveSucceedsWithWarnings(t *testing.T) {
	backend := &fakeBackend{saveResp: &api.MessageResponse{Message: "Wallet settings updated"}}
	c := NewController(backend, zap.NewNop())

	st := FromDocument(Target{Coin: amount.CoinSOL}, Defaults())
	var err error
	st.TakeProfit, err = st.TakeProfit.Update(0, ladder.Sell, "40")
	require.NoError(t, err)
	require.NotEmpty(t, st.LadderWarnings())

	msg, err := c.Save(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, "Wallet settings updated", msg)
	require.NotNil(t, backend.saved)
	assert.Equal(t, 40.0, backend.saved.TakeProfitLevels[0].SellPercentage)
}

func TestSaveMessages(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		resp    *api.MessageResponse
		err     error
		wantMsg string
		wantErr string
	}{
		{name: "backend message", target: Target{Coin: amount.CoinSOL}, resp: &api.MessageResponse{Message: "Saved!"}, wantMsg: "Saved!"},
		{name: "global fallback", target: Target{Coin: amount.CoinSOL}, resp: &api.MessageResponse{}, wantMsg: msgSaved},
		{name: "mirror fallback", target: Target{Coin: amount.CoinSOL, WalletAddress: "w"}, wantMsg: msgMirrorSaved},
		{name: "detail", target: Target{Coin: amount.CoinSOL}, err: &api.Error{Status: 400, Detail: "Invalid slippage"}, wantErr: "Invalid slippage"},
		{name: "no detail global", target: Target{Coin: amount.CoinSOL}, err: &api.Error{Status: 500}, wantErr: msgSaveFailed},
		{name: "no detail mirror", target: Target{Coin: amount.CoinSOL, WalletAddress: "w"}, err: &api.Error{Status: 500}, wantErr: msgMirrorSaveFailed},
		{name: "transport", target: Target{Coin: amount.CoinSOL}, err: errors.New("request failed: connection refused"), wantErr: "request failed: connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{saveResp: tt.resp, saveErr: tt.err}
			st := FromDocument(tt.target, Defaults())

			msg, err := NewController(backend, zap.NewNop()).Save(context.Background(), st)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestSaveSessionExpiredPassesThrough(t *testing.T) {
	backend := &fakeBackend{saveErr: api.ErrSessionExpired}
	st := FromDocument(Target{Coin: amount.CoinSOL}, Defaults())

	_, err := NewController(backend, zap.NewNop()).Save(context.Background(), st)
	assert.Equal(t, api.ErrSessionExpired, err)
}

func TestCoercionPolicies(t *testing.T) {
	assert.Equal(t, 0.0, FloatOrZero(""))
	assert.Equal(t, 0.0, FloatOrZero("abc"))
	assert.Equal(t, 12.5, FloatOrZero("12.5"))
	assert.Equal(t, 12.0, FloatOrZero("12abc"))
	assert.Equal(t, 0.5, FloatOrZero(".5"))
	assert.Equal(t, 0.0, FloatOrZero("NaN"))

	assert.Equal(t, 0, IntOrZero(""))
	assert.Equal(t, 3, IntOrZero("3.9"))
	assert.Equal(t, 300, IntOrZero(" 300s"))

	assert.Nil(t, OptionalInt(""))
	assert.Nil(t, OptionalInt("abc"))
	require.NotNil(t, OptionalInt("0"))
	assert.Equal(t, 0, *OptionalInt("0"))
	assert.Equal(t, 7, *OptionalInt("7 per hour"))

	assert.Equal(t, "", FormatOptionalInt(nil))
	assert.Equal(t, "5", FormatOptionalInt(OptionalInt("5")))
	assert.Equal(t, "2.5", FormatFloat(2.5))
	assert.Equal(t, "300", FormatFloat(300))
}

func TestValidateSlippage(t *testing.T) {
	v, err := ValidateSlippage("5")
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)

	for _, raw := range []string{"", "0", "0.5", "101", "abc"} {
		_, err := ValidateSlippage(raw)
		assert.EqualError(t, err, "Slippage must be between 1 and 100 percent", raw)
	}

	_, err = ValidateSlippage("100")
	assert.NoError(t, err)
}
