package main

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
	"github.com/rovshanmuradov/prometheus-client/internal/api"
	"github.com/rovshanmuradov/prometheus-client/internal/logger"
	"github.com/rovshanmuradov/prometheus-client/internal/ui"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/screen"
)

type stubSession struct {
	authenticated bool
}

func (s stubSession) Authenticated(context.Context) bool { return s.authenticated }

func (s stubSession) User(context.Context) (*api.User, error) {
	return &api.User{Username: "alice"}, nil
}

func newTestApp(t *testing.T, authenticated bool) *AppModel {
	t.Helper()
	svc := ui.NewServices(context.Background(), nil, stubSession{authenticated: authenticated},
		nil, nil, nil, logger.NewRecentBuffer(10), t.TempDir(), amount.CoinSOL, zap.NewNop())
	m := NewAppModel(svc)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func TestStartsOnLoginWithoutSession(t *testing.T) {
	m := newTestApp(t, false)
	assert.IsType(t, &screen.LoginScreen{}, m.router.Current())

	_, cmd := m.Update(ui.RouterMsg{To: ui.RouteWallets})
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.router.Depth(), "navigation needs a session")
}

func TestStartsOnMainMenuWithSession(t *testing.T) {
	m := newTestApp(t, true)
	assert.IsType(t, &screen.MainMenuScreen{}, m.router.Current())
}

func TestLoginThenNavigate(t *testing.T) {
	m := newTestApp(t, false)

	m.Update(ui.LoggedInMsg{Username: "alice"})
	require.IsType(t, &screen.MainMenuScreen{}, m.router.Current())

	m.Update(ui.RouterMsg{To: ui.RouteWallets})
	assert.Equal(t, 2, m.router.Depth())
	assert.IsType(t, &screen.WalletsScreen{}, m.router.Current())

	m.Update(ui.RouterMsg{To: ui.RouteMirrorSettings, Wallet: "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"})
	assert.Equal(t, 3, m.router.Depth())
	assert.IsType(t, &screen.SettingsScreen{}, m.router.Current())

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 2, m.router.Depth())
}

func TestSessionExpiredFromBus(t *testing.T) {
	m := newTestApp(t, true)
	m.Update(ui.RouterMsg{To: ui.RouteLogs})
	require.Equal(t, 2, m.router.Depth())

	_, cmd := m.Update(ui.BusMsg{Msg: ui.SessionExpiredMsg{}})
	assert.NotNil(t, cmd, "the bus is listened to again")
	assert.Equal(t, 1, m.router.Depth())
	assert.IsType(t, &screen.LoginScreen{}, m.router.Current())
	assert.Contains(t, m.View(), sessionExpiredBanner)

	// a second expiry while already on login keeps the screen
	login := m.router.Current()
	m.Update(ui.SessionExpiredMsg{})
	assert.Same(t, login, m.router.Current())
}

func TestLogoutReturnsToLogin(t *testing.T) {
	m := newTestApp(t, true)
	m.Update(ui.LoggedOutMsg{})
	assert.IsType(t, &screen.LoginScreen{}, m.router.Current())
	assert.NotContains(t, m.View(), sessionExpiredBanner)
}

func TestGlobalNotice(t *testing.T) {
	m := newTestApp(t, true)

	_, cmd := m.Update(ui.ErrorMsg{Err: errors.New("boom"), Title: "Refresh failed"})
	assert.Nil(t, cmd, "errors are not put on a timer")
	assert.Contains(t, m.View(), "Refresh failed: boom")

	stale := clearAppNoticeMsg{seq: m.noticeSeq}
	m.Update(ui.SuccessMsg{Message: "Saved"})
	m.Update(stale)
	assert.Contains(t, m.View(), "Saved")

	m.Update(clearAppNoticeMsg{seq: m.noticeSeq})
	assert.NotContains(t, m.View(), "Saved")
}

func TestGlobalErrorDismissedByKey(t *testing.T) {
	m := newTestApp(t, true)
	m.Update(ui.ErrorMsg{Title: "Refresh failed"})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	assert.Nil(t, cmd)
	assert.NotContains(t, m.View(), "Refresh failed")
}

func TestCtrlCQuits(t *testing.T) {
	m := newTestApp(t, true)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
