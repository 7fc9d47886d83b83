package main

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/prometheus-client/internal/settings"
	"github.com/rovshanmuradov/prometheus-client/internal/ui"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/router"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/screen"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/style"
)

const (
	sessionExpiredBanner = "Session expired. Please login again."
	appNoticeTTL         = 5 * time.Second
)

type clearAppNoticeMsg struct {
	seq int
}

// AppModel represents the main TUI application model
type AppModel struct {
	svc    *ui.Services
	router *router.Router
	width  int
	height int

	onLogin   bool
	notice    string
	noticeErr bool
	noticeSeq int
}

// NewAppModel creates the application model. It opens on the main menu
// when a stored session exists and on the login screen otherwise.
func NewAppModel(svc *ui.Services) *AppModel {
	m := &AppModel{svc: svc}

	if svc.Session.Authenticated(svc.Ctx) {
		username := ""
		if user, err := svc.Session.User(svc.Ctx); err == nil && user != nil {
			username = user.Username
		}
		m.router = router.New(screen.NewMainMenuScreen(svc, username))
	} else {
		m.router = router.New(screen.NewLoginScreen(svc, ""))
		m.onLogin = true
	}
	return m
}

// Init initializes the application
func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.router.Init(),
		ui.ListenBus(),
	)
}

// Update handles application-level updates
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.router.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.noticeErr && m.notice != "" && key.Matches(msg, ui.DefaultKeyMap().Dismiss) {
			m.notice = ""
			m.noticeSeq++
			return m, nil
		}

	case ui.BusMsg:
		next, cmd := m.Update(msg.Msg)
		return next, tea.Batch(cmd, ui.ListenBus())

	case ui.RouterMsg:
		return m, m.handleNavigation(msg)

	case ui.SessionExpiredMsg:
		if m.onLogin {
			return m, nil
		}
		m.svc.Logger.Info("Session expired, returning to login")
		m.svc.Cache.Clear()
		return m, m.showLogin(sessionExpiredBanner)

	case ui.LoggedInMsg:
		m.onLogin = false
		return m, m.router.Reset(screen.NewMainMenuScreen(m.svc, msg.Username))

	case ui.LoggedOutMsg:
		return m, m.showLogin("")

	case ui.ErrorMsg:
		text := msg.Title
		if msg.Err != nil {
			text = msg.Title + ": " + msg.Err.Error()
		}
		return m, m.setNotice(text, true)

	case ui.SuccessMsg:
		return m, m.setNotice(msg.Message, false)

	case clearAppNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.router, cmd = m.router.Update(msg)
	return m, cmd
}

func (m *AppModel) showLogin(banner string) tea.Cmd {
	m.onLogin = true
	return m.router.Reset(screen.NewLoginScreen(m.svc, banner))
}

func (m *AppModel) setNotice(text string, isError bool) tea.Cmd {
	m.notice = text
	m.noticeErr = isError
	m.noticeSeq++
	if isError {
		return nil
	}
	seq := m.noticeSeq
	return tea.Tick(appNoticeTTL, func(time.Time) tea.Msg {
		return clearAppNoticeMsg{seq: seq}
	})
}

// handleNavigation pushes the screen for a route. Routes that need a
// signed-in user are ignored on the login screen.
func (m *AppModel) handleNavigation(msg ui.RouterMsg) tea.Cmd {
	if m.onLogin {
		return nil
	}

	var next router.Screen
	switch msg.To {
	case ui.RouteSettings:
		next = screen.NewSettingsScreen(m.svc, settings.Target{Coin: m.svc.Coin()})
	case ui.RouteMirrorSettings:
		next = screen.NewSettingsScreen(m.svc, settings.Target{Coin: m.svc.Coin(), WalletAddress: msg.Wallet})
	case ui.RouteWallets:
		next = screen.NewWalletsScreen(m.svc)
	case ui.RouteLogs:
		next = screen.NewLogsScreen(m.svc)
	case ui.RouteCustomBuy, ui.RouteCustomSell, ui.RouteWithdraw, ui.RouteTradeAmount:
		next = screen.NewTradeScreen(m.svc, msg.To)
	default:
		m.svc.Logger.Debug("Ignoring navigation", zap.Stringer("route", msg.To))
		return nil
	}

	return m.router.Push(next)
}

// View renders the application
func (m *AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	view := m.router.View()
	if m.notice == "" {
		return view
	}
	if m.noticeErr {
		return view + "\n" + style.ErrorStyle.Render("✗ "+m.notice)
	}
	return view + "\n" + style.SuccessStyle.Render("✓ "+m.notice)
}
