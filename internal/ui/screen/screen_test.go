package screen

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
	"github.com/rovshanmuradov/prometheus-client/internal/api"
	"github.com/rovshanmuradov/prometheus-client/internal/export"
	"github.com/rovshanmuradov/prometheus-client/internal/logger"
	"github.com/rovshanmuradov/prometheus-client/internal/metrics"
	"github.com/rovshanmuradov/prometheus-client/internal/settings"
	"github.com/rovshanmuradov/prometheus-client/internal/tracker"
	"github.com/rovshanmuradov/prometheus-client/internal/ui"
)

const solWallet = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

type fakeBackend struct {
	mu sync.Mutex

	wallets   []api.TrackedWallet
	logs      []api.CopyTradingLog
	walletErr error
	stored    string
	saveResp  *api.MessageResponse
	saveErr   error

	untracked []string
	tracked   []api.TrackedWalletCreate
	amounts   []float64
	saved     *api.WalletSettings
}

func (f *fakeBackend) Profile(context.Context, amount.Coin) (*api.UserProfile, error) {
	return &api.UserProfile{Username: "alice", SolBalance: "1500000000"}, nil
}

func (f *fakeBackend) Stats(context.Context, amount.Coin) (*api.CopyTradingStats, error) {
	return &api.CopyTradingStats{}, nil
}

func (f *fakeBackend) TrackedWallets(_ context.Context, _ amount.Coin, page, _ int) (*api.WalletPage, error) {
	if f.walletErr != nil {
		return nil, f.walletErr
	}
	return &api.WalletPage{Wallets: f.wallets, Total: len(f.wallets), Page: page, TotalPages: 1}, nil
}

func (f *fakeBackend) Logs(_ context.Context, _ amount.Coin, page, limit int) (*api.LogPage, error) {
	return &api.LogPage{Logs: f.logs, TotalCount: len(f.logs), Page: page, Limit: limit, TotalPages: 1}, nil
}

func (f *fakeBackend) TrackWallet(_ context.Context, _ amount.Coin, req api.TrackedWalletCreate) (*api.TrackedWallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracked = append(f.tracked, req)
	return &api.TrackedWallet{WalletAddress: req.WalletAddress, IsActive: true}, nil
}

func (f *fakeBackend) UntrackWallet(_ context.Context, _ amount.Coin, walletAddress string) (*api.MessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.untracked = append(f.untracked, walletAddress)
	return &api.MessageResponse{}, nil
}

func (f *fakeBackend) UpdateTradeAmount(_ context.Context, _ amount.Coin, tradeAmount float64) (*api.MessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.amounts = append(f.amounts, tradeAmount)
	return &api.MessageResponse{Message: "Trade amount updated"}, nil
}

func (f *fakeBackend) Withdraw(context.Context, amount.Coin, api.WithdrawRequest) (*api.MessageResponse, error) {
	return &api.MessageResponse{}, nil
}

func (f *fakeBackend) CustomBuy(context.Context, amount.Coin, api.CustomTradeRequest) (*api.MessageResponse, error) {
	return &api.MessageResponse{Message: "Bought"}, nil
}

func (f *fakeBackend) CustomSell(context.Context, amount.Coin, api.CustomTradeRequest) (*api.MessageResponse, error) {
	return &api.MessageResponse{Message: "Sold"}, nil
}

func (f *fakeBackend) WalletSettings(_ context.Context, _ amount.Coin, _ string, into *api.WalletSettings) error {
	if f.stored == "" {
		*into = settings.Defaults()
		return nil
	}
	return json.Unmarshal([]byte(f.stored), into)
}

func (f *fakeBackend) UpdateWalletSettings(_ context.Context, _ amount.Coin, _ string, s *api.WalletSettings) (*api.MessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = s
	return f.saveResp, f.saveErr
}

type fakeAuth struct {
	loginErr error
}

func (a *fakeAuth) Login(context.Context, api.LoginRequest) (*api.TokenPair, error) {
	return &api.TokenPair{}, a.loginErr
}

func (a *fakeAuth) Signup(context.Context, api.SignupRequest) (*api.TokenPair, error) {
	return &api.TokenPair{}, nil
}

func (a *fakeAuth) Logout(context.Context) error { return nil }

type fakeSession struct{}

func (fakeSession) Authenticated(context.Context) bool { return true }

func (fakeSession) User(context.Context) (*api.User, error) {
	return &api.User{Username: "alice"}, nil
}

func newServices(t *testing.T, backend *fakeBackend, auth *fakeAuth) *ui.Services {
	t.Helper()
	log := zap.NewNop()
	trackerSvc := tracker.NewService(backend, tracker.Options{
		PageSize:       10,
		MinTradeAmount: decimal.RequireFromString("0.1"),
	}, log)
	return ui.NewServices(
		context.Background(),
		auth,
		fakeSession{},
		settings.NewController(backend, log),
		trackerSvc,
		export.NewLogExporter(log),
		logger.NewRecentBuffer(10),
		t.TempDir(),
		amount.CoinSOL,
		log,
	)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNoticeIgnoresStaleTimer(t *testing.T) {
	var n notice
	require.NotNil(t, n.success("first"))
	stale := clearNoticeMsg{seq: n.seq}
	n.success("second")

	n.clear(stale)
	assert.Contains(t, n.view(), "second")

	n.clear(clearNoticeMsg{seq: n.seq})
	assert.Empty(t, n.view())
}

func TestErrorNoticeStaysUntilDismissed(t *testing.T) {
	var n notice
	assert.Nil(t, n.fail("Failed to update settings"), "errors arm no clear timer")

	n.clear(clearNoticeMsg{seq: n.seq})
	assert.Contains(t, n.view(), "Failed to update settings")

	keys := ui.DefaultKeyMap()
	assert.False(t, n.dismiss(keyMsg("x"), keys.Dismiss))
	assert.True(t, n.dismiss(keyMsg("ctrl+x"), keys.Dismiss))
	assert.Empty(t, n.view())

	n.success("Settings updated successfully")
	assert.False(t, n.dismiss(keyMsg("ctrl+x"), keys.Dismiss), "confirmations clear on their own")
}

func TestSettingsSaveErrorPersists(t *testing.T) {
	backend := &fakeBackend{saveErr: &api.Error{Status: 500}}
	s := NewSettingsScreen(newServices(t, backend, &fakeAuth{}), settings.Target{Coin: amount.CoinSOL})
	loadSettings(t, s)

	_, cmd := s.Update(keyMsg("ctrl+s"))
	require.NotNil(t, cmd)
	_, cmd = s.Update(cmd())
	assert.Nil(t, cmd)
	assert.Contains(t, s.View(), "Failed to update settings")

	s.Update(keyMsg("ctrl+x"))
	assert.NotContains(t, s.View(), "Failed to update settings")
}

func TestReport(t *testing.T) {
	text, cmd := report(api.ErrSessionExpired, "ignored")
	assert.Empty(t, text)
	require.NotNil(t, cmd)
	assert.IsType(t, ui.SessionExpiredMsg{}, cmd())

	text, cmd = report(&api.Error{Status: 500}, "Failed to fetch tracker logs")
	assert.Nil(t, cmd)
	assert.Equal(t, "Failed to fetch tracker logs", text)

	text, _ = report(&tracker.ActionError{Message: "Wallet already tracked", Err: &api.Error{Status: 409}}, "fallback")
	assert.Equal(t, "Wallet already tracked", text)

	text, _ = report(&settings.SaveError{Message: "Invalid slippage"}, "fallback")
	assert.Equal(t, "Invalid slippage", text)
}

func TestLoginToggleAddsEmail(t *testing.T) {
	s := NewLoginScreen(newServices(t, &fakeBackend{}, &fakeAuth{}), "")
	_, hasEmail := s.form.GetValues()["email"]
	assert.False(t, hasEmail)

	s.Update(keyMsg("ctrl+t"))
	_, hasEmail = s.form.GetValues()["email"]
	assert.True(t, hasEmail)
	assert.Contains(t, s.View(), "Claim your Fire")
}

func TestLoginUnauthorizedIsBadCredentials(t *testing.T) {
	auth := &fakeAuth{loginErr: &api.Error{Status: 401, Detail: "Invalid username or password"}}
	s := NewLoginScreen(newServices(t, &fakeBackend{}, auth), "")
	s.form.SetFieldValue("username", "alice").SetFieldValue("password", "secret")

	_, cmd := s.Update(keyMsg("ctrl+s"))
	require.NotNil(t, cmd)
	result := cmd()
	require.IsType(t, authResultMsg{}, result)

	_, cmd = s.Update(result)
	assert.Nil(t, cmd, "the error stays on screen")
	assert.Contains(t, s.View(), "Invalid username or password")
	assert.False(t, s.succeeded)
}

func TestLoginSuccessRedirects(t *testing.T) {
	s := NewLoginScreen(newServices(t, &fakeBackend{}, &fakeAuth{}), "Session expired. Please login again.")
	s.form.SetFieldValue("username", "alice").SetFieldValue("password", "secret")

	_, cmd := s.Update(keyMsg("ctrl+s"))
	_, _ = s.Update(cmd())
	assert.True(t, s.succeeded)
	assert.Contains(t, s.View(), "Login successful! Redirecting...")
	assert.NotContains(t, s.View(), "Session expired")

	_, cmd = s.Update(redirectMsg{username: "alice"})
	require.NotNil(t, cmd)
	assert.Equal(t, ui.LoggedInMsg{Username: "alice"}, cmd())
}

func loadSettings(t *testing.T, s *SettingsScreen) {
	t.Helper()
	cmd := s.Init()
	require.NotNil(t, cmd)
	s.Update(cmd())
	require.NotNil(t, s.state)
}

func TestSettingsCollect(t *testing.T) {
	backend := &fakeBackend{}
	s := NewSettingsScreen(newServices(t, backend, &fakeAuth{}), settings.Target{Coin: amount.CoinSOL})
	loadSettings(t, s)

	s.form.SetFieldValue(fieldSlippage, " 2.5 ").
		SetFieldValue(fieldMirrorPerHour, "3 per hour").
		SetFieldValue(fieldBuyDipTimeout, "90.7").
		SetFieldValue(fieldMaxDipPct, "abc")

	st := s.collect()
	assert.Equal(t, "2.5", st.Slippage)
	require.NotNil(t, st.MaxBuysPerMirrorPerHour)
	assert.Equal(t, 3, *st.MaxBuysPerMirrorPerHour)
	assert.Nil(t, st.MaxBuysPerTokenPerDay)
	assert.Equal(t, 90.0, st.BuyDipTimeout)
	assert.Equal(t, 0.0, st.MaxDipPercentage)
	assert.Nil(t, st.AllowBuys, "global settings have no allow-buys toggle")
}

func TestMirrorSettingsSave(t *testing.T) {
	backend := &fakeBackend{saveResp: &api.MessageResponse{Message: "Wallet settings updated"}}
	s := NewSettingsScreen(newServices(t, backend, &fakeAuth{}), settings.Target{Coin: amount.CoinSOL, WalletAddress: solWallet})
	loadSettings(t, s)

	_, cmd := s.Update(keyMsg("ctrl+s"))
	require.NotNil(t, cmd)
	assert.True(t, s.CapturesEsc(), "esc is held while saving")

	s.Update(cmd())
	assert.False(t, s.CapturesEsc())
	assert.Contains(t, s.View(), "Wallet settings updated")

	require.NotNil(t, backend.saved)
	require.NotNil(t, backend.saved.AllowBuys)
	assert.True(t, *backend.saved.AllowBuys)
}

func TestSettingsSectionFocus(t *testing.T) {
	s := NewSettingsScreen(newServices(t, &fakeBackend{}, &fakeAuth{}), settings.Target{Coin: amount.CoinSOL})
	loadSettings(t, s)
	assert.Equal(t, sectionForm, s.section)

	s.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, sectionTakeProfit, s.section)
	assert.True(t, s.takeProfit.Focused())

	s.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	s.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	assert.Equal(t, sectionStopLoss, s.section)
}

func loadWallets(t *testing.T, s *WalletsScreen) {
	t.Helper()
	cmd := s.Init()
	require.NotNil(t, cmd)
	s.Update(cmd())
}

func TestWalletsUntrackAndResume(t *testing.T) {
	backend := &fakeBackend{wallets: []api.TrackedWallet{
		{WalletAddress: solWallet, IsActive: true},
		{WalletAddress: "11111111111111111111111111111111", IsActive: false},
	}}
	s := NewWalletsScreen(newServices(t, backend, &fakeAuth{}))
	loadWallets(t, s)
	require.Equal(t, 2, s.table.RowCount())

	assert.Nil(t, handle(s, "s"), "an active wallet cannot be resumed")

	cmd := handle(s, "d")
	require.NotNil(t, cmd)
	res := cmd()
	assert.Equal(t, walletActionMsg{message: "Wallet tracking stopped successfully!"}, res)
	assert.Equal(t, []string{solWallet}, backend.untracked)

	s.Update(res)
	s.Update(keyMsg("j"))
	cmd = handle(s, "s")
	require.NotNil(t, cmd)
	cmd()
	require.Len(t, backend.tracked, 1)
	assert.Equal(t, "11111111111111111111111111111111", backend.tracked[0].WalletAddress)
}

func handle(s *WalletsScreen, k string) tea.Cmd {
	_, cmd := s.Update(keyMsg(k))
	return cmd
}

func TestWalletsEnterOpensMirrorSettings(t *testing.T) {
	backend := &fakeBackend{wallets: []api.TrackedWallet{{WalletAddress: solWallet, IsActive: true}}}
	s := NewWalletsScreen(newServices(t, backend, &fakeAuth{}))
	loadWallets(t, s)

	cmd := handle(s, "enter")
	require.NotNil(t, cmd)
	assert.Equal(t, ui.RouterMsg{To: ui.RouteMirrorSettings, Wallet: solWallet}, cmd())
}

func TestWalletsAddInvalidAddress(t *testing.T) {
	s := NewWalletsScreen(newServices(t, &fakeBackend{}, &fakeAuth{}))
	loadWallets(t, s)

	handle(s, "a")
	assert.True(t, s.CapturesEsc())
	s.input.SetValue("0xnotsolana")

	cmd := handle(s, "enter")
	require.NotNil(t, cmd)
	s.Update(cmd())
	assert.False(t, s.CapturesEsc())
	assert.Contains(t, s.View(), "invalid SOL address")
}

func TestWalletsSessionExpired(t *testing.T) {
	s := NewWalletsScreen(newServices(t, &fakeBackend{walletErr: api.ErrSessionExpired}, &fakeAuth{}))
	cmd := s.Init()
	_, cmd = s.Update(cmd())
	require.NotNil(t, cmd)
	assert.IsType(t, ui.SessionExpiredMsg{}, cmd())
}

func TestTradeAmountBelowMinimum(t *testing.T) {
	backend := &fakeBackend{}
	s := NewTradeScreen(newServices(t, backend, &fakeAuth{}), ui.RouteTradeAmount)
	assert.Contains(t, s.View(), "Minimum 0.1 SOL")

	s.form.SetFieldValue(fieldAmount, "0.01")
	_, cmd := s.Update(keyMsg("ctrl+s"))
	require.NotNil(t, cmd)
	s.Update(cmd())

	assert.Contains(t, s.View(), "Trade amount must be at least 0.1 SOL")
	assert.Empty(t, backend.amounts)

	s.form.SetFieldValue(fieldAmount, "0.25")
	_, cmd = s.Update(keyMsg("ctrl+s"))
	s.Update(cmd())
	assert.Equal(t, []float64{0.25}, backend.amounts)
	assert.Contains(t, s.View(), "Trade amount updated")
}

func TestCustomBuyRequiresFields(t *testing.T) {
	s := NewTradeScreen(newServices(t, &fakeBackend{}, &fakeAuth{}), ui.RouteCustomBuy)
	_, cmd := s.Update(keyMsg("ctrl+s"))
	assert.Nil(t, cmd, "form validation stops empty submissions")
	assert.Contains(t, s.View(), "This field is required")

	s.form.SetFieldValue(fieldToken, solWallet).SetFieldValue(fieldAmount, "0.5")
	_, cmd = s.Update(keyMsg("ctrl+s"))
	require.NotNil(t, cmd)
	s.Update(cmd())
	assert.Contains(t, s.View(), "Bought")
	assert.Equal(t, "1", s.form.GetValue(fieldSlippage), "slippage resets to its default")
}

func TestLogsExport(t *testing.T) {
	status := "success"
	backend := &fakeBackend{logs: []api.CopyTradingLog{
		{ID: 1, EventType: tracker.EventUserSell, Status: &status, CreatedAt: "2026-01-02T10:00:00"},
		{ID: 2, EventType: tracker.EventUserPurchase, CreatedAt: "2026-01-02T09:00:00"},
	}}
	svc := newServices(t, backend, &fakeAuth{})
	s := NewLogsScreen(svc)
	s.Update(s.Init()())
	assert.Equal(t, 2, s.table.RowCount())
	assert.Contains(t, s.View(), "USER SELL")

	_, cmd := s.Update(keyMsg("x"))
	require.NotNil(t, cmd)
	res := cmd()
	done, ok := res.(exportDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.True(t, strings.HasPrefix(done.path, svc.ExportDir))
	assert.True(t, strings.HasSuffix(done.path, ".csv"))

	s.Update(res)
	assert.Contains(t, s.View(), "Exported 2 logs to")
}

func TestMainMenuLogout(t *testing.T) {
	svc := newServices(t, &fakeBackend{}, &fakeAuth{})
	m := NewMainMenuScreen(svc, "alice")
	m.Update(m.load()())
	_, ok := svc.Cache.Get(amount.CoinSOL)
	require.True(t, ok)

	_, cmd := m.Update(keyMsg("ctrl+o"))
	require.NotNil(t, cmd)
	_, cmd = m.Update(cmd())
	require.NotNil(t, cmd)
	assert.Equal(t, ui.LoggedOutMsg{}, cmd())

	_, ok = svc.Cache.Get(amount.CoinSOL)
	assert.False(t, ok)
}

func TestMainMenuShowsDashboardAndAPITotals(t *testing.T) {
	svc := newServices(t, &fakeBackend{}, &fakeAuth{})
	svc.Metrics = metrics.New()
	svc.Metrics.ObserveRequest("GET", 200, 0)
	svc.Metrics.ObserveRequest("GET", 500, 0)

	m := NewMainMenuScreen(svc, "alice")
	m.SetSize(140, 50)
	m.Update(m.load()())

	view := m.View()
	assert.Contains(t, view, "1.5 SOL")
	assert.Contains(t, view, "API 2 requests · 1 failed")
}
