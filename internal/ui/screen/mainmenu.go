package screen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/prometheus-client/internal/address"
	"github.com/rovshanmuradov/prometheus-client/internal/amount"
	"github.com/rovshanmuradov/prometheus-client/internal/settings"
	"github.com/rovshanmuradov/prometheus-client/internal/tracker"
	"github.com/rovshanmuradov/prometheus-client/internal/ui"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/component"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/router"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/style"
)

// MenuItem represents a menu item
type MenuItem struct {
	Label       string
	Description string
	Route       ui.Route
}

var menuItems = []MenuItem{
	{Label: "⚙ Copy-Trading Settings", Description: "Strategy, dip buying, caps and TP/SL ladders", Route: ui.RouteSettings},
	{Label: "◎ Tracked Wallets", Description: "Mirror, pause and tune lead wallets", Route: ui.RouteWallets},
	{Label: "☰ Activity Logs", Description: "Copy-trading history with CSV/JSON export", Route: ui.RouteLogs},
	{Label: "▲ Custom Buy", Description: "Buy a token manually", Route: ui.RouteCustomBuy},
	{Label: "▼ Custom Sell", Description: "Sell a token manually", Route: ui.RouteCustomSell},
	{Label: "⇄ Trade Amount", Description: "Size of each mirrored buy", Route: ui.RouteTradeAmount},
	{Label: "↗ Withdraw", Description: "Send native coin to another wallet", Route: ui.RouteWithdraw},
}

// dashboardMsg carries a freshly loaded dashboard
type dashboardMsg struct {
	dashboard *tracker.Dashboard
	err       error
}

// loggedOutMsg is internal; the app sees ui.LoggedOutMsg
type loggedOutMsg struct{}

// MainMenuScreen is the signed-in home: account overview, copy-trading
// statistics and the menu of actions for the active coin.
type MainMenuScreen struct {
	svc    *ui.Services
	width  int
	height int
	keyMap ui.KeyMap

	header  *component.StatusHeader
	logs    *component.CompactLogViewer
	helpBar *component.HelpBar

	selectedIndex int
	dashboard     *tracker.Dashboard
	fetchedAt     time.Time
	loading       bool
	notice        notice
}

// NewMainMenuScreen creates the main menu
func NewMainMenuScreen(svc *ui.Services, username string) *MainMenuScreen {
	keyMap := ui.DefaultKeyMap()
	header := component.NewStatusHeader()
	header.SetUser(username)
	header.SetCoin(svc.Coin())

	return &MainMenuScreen{
		svc:     svc,
		keyMap:  keyMap,
		header:  header,
		logs:    component.NewCompactLogViewer(svc.Recent),
		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteMainMenu)),
	}
}

// Init shows the cached dashboard, if any, and refreshes it
func (m *MainMenuScreen) Init() tea.Cmd {
	m.applyCached()
	return m.load()
}

func (m *MainMenuScreen) applyCached() {
	if snap, ok := m.svc.Cache.Get(m.svc.Coin()); ok {
		m.setDashboard(snap.Dashboard, snap.UpdatedAt)
		return
	}
	m.dashboard = nil
	m.header.SetBalance("")
}

func (m *MainMenuScreen) load() tea.Cmd {
	m.loading = true
	svc := m.svc
	coin := svc.Coin()
	return func() tea.Msg {
		d, err := svc.Tracker.Dashboard(svc.Ctx, coin)
		return dashboardMsg{dashboard: d, err: err}
	}
}

func (m *MainMenuScreen) setDashboard(d *tracker.Dashboard, at time.Time) {
	m.dashboard = d
	m.fetchedAt = at
	m.header.SetCoin(d.Coin)
	if d.Profile != nil {
		if d.Profile.Username != "" {
			m.header.SetUser(d.Profile.Username)
		}
		m.header.SetBalance(nativeBalance(d))
	}
}

func nativeBalance(d *tracker.Dashboard) string {
	if d.Profile == nil {
		return ""
	}
	if d.Coin == amount.CoinBNB {
		return d.Profile.BnbBalance
	}
	return d.Profile.SolBalance
}

// Update handles screen updates
func (m *MainMenuScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.notice.dismiss(msg, m.keyMap.Dismiss) {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keyMap.Up):
			if m.selectedIndex > 0 {
				m.selectedIndex--
			}

		case key.Matches(msg, m.keyMap.Down):
			if m.selectedIndex < len(menuItems)-1 {
				m.selectedIndex++
			}

		case key.Matches(msg, m.keyMap.Enter):
			return m, ui.Navigate(menuItems[m.selectedIndex].Route)

		case key.Matches(msg, m.keyMap.SwitchCoin):
			coin := m.svc.SwitchCoin()
			m.svc.Logger.Info("Switched coin", zap.String("coin", string(coin)))
			m.applyCached()
			m.header.SetCoin(coin)
			return m, tea.Batch(m.load(), func() tea.Msg { return ui.CoinChangedMsg{Coin: coin} })

		case key.Matches(msg, m.keyMap.Refresh):
			return m, m.load()

		case key.Matches(msg, m.keyMap.Logout):
			return m, m.logout()
		}

	case dashboardMsg:
		m.loading = false
		if msg.err != nil {
			text, cmd := report(msg.err, "Failed to load dashboard")
			if cmd != nil {
				return m, cmd
			}
			return m, m.notice.fail(text)
		}
		m.svc.Cache.Put(msg.dashboard)
		// a reply for the coin we just switched away from is only cached
		if msg.dashboard.Coin == m.svc.Coin() {
			m.setDashboard(msg.dashboard, time.Now())
		}

	case loggedOutMsg:
		m.svc.Cache.Clear()
		return m, func() tea.Msg { return ui.LoggedOutMsg{} }

	case clearNoticeMsg:
		m.notice.clear(msg)

	default:
		return m, m.logs.Update(msg)
	}

	return m, nil
}

func (m *MainMenuScreen) logout() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(svc.Ctx, 10*time.Second)
		defer cancel()
		if err := svc.Auth.Logout(ctx); err != nil {
			svc.Logger.Warn("Logout failed", zap.Error(err))
		}
		return loggedOutMsg{}
	}
}

// View renders the main menu
func (m *MainMenuScreen) View() string {
	m.header.SetWidth(m.width)

	panelWidth := style.AdaptiveWidth(m.width, 50) - 4
	if panelWidth < 36 {
		panelWidth = 36
	}
	account := style.PanelStyle.Width(panelWidth).Render(m.renderAccount())
	stats := style.PanelStyle.Width(panelWidth).Render(m.renderStats())
	menu := style.ActivePanelStyle.Width(panelWidth).Render(m.renderMenu())

	left := lipgloss.JoinVertical(lipgloss.Left, account, stats)
	columns := style.AdaptiveJoinHorizontal(m.width, left, menu)

	var b strings.Builder
	b.WriteString(m.header.View())
	b.WriteString("\n")
	if n := m.notice.view(); n != "" {
		b.WriteString(n)
		b.WriteString("\n")
	}
	b.WriteString(columns)
	b.WriteString("\n")
	b.WriteString(m.logs.View())
	b.WriteString("\n")
	b.WriteString(m.helpBar.SetWidth(m.width).View())
	return b.String()
}

func (m *MainMenuScreen) renderAccount() string {
	var b strings.Builder
	b.WriteString(style.SubHeaderStyle.Render("Account"))
	b.WriteString("\n")

	if m.dashboard == nil || m.dashboard.Profile == nil {
		if m.loading {
			b.WriteString(loadingLine("profile"))
		} else {
			b.WriteString(style.MutedStyle.Render(amount.NotAvailable))
		}
		return b.String()
	}

	p := m.dashboard.Profile
	coin := m.dashboard.Coin
	rows := [][2]string{
		{"User", p.Username},
		{"Email", p.Email},
		{"Wallet", address.Short(p.PublicAddress)},
		{"SOL", amount.FormatNative(p.SolBalance, amount.CoinSOL)},
		{"BNB", amount.FormatNative(p.BnbBalance, amount.CoinBNB)},
		{"Trade amount", settings.FormatFloat(p.TradeAmount) + " " + coin.Symbol()},
	}
	if p.PortfolioValue != "" {
		rows = append(rows, [2]string{"Portfolio", amount.FormatNative(p.PortfolioValue, coin) + " " + coin.Symbol()})
	}
	writeRows(&b, rows)

	if !m.fetchedAt.IsZero() {
		age := "updated " + m.fetchedAt.Format("15:04:05")
		if m.loading {
			age += " · refreshing"
		}
		b.WriteString(style.MutedStyle.Render(age))
	}
	return b.String()
}

func (m *MainMenuScreen) renderStats() string {
	var b strings.Builder
	b.WriteString(style.SubHeaderStyle.Render("Copy Trading"))
	b.WriteString("\n")

	if m.dashboard == nil || m.dashboard.Stats == nil {
		b.WriteString(style.MutedStyle.Render(amount.NotAvailable))
		return b.String()
	}

	st := m.dashboard.Stats
	coin := m.dashboard.Coin
	writeRows(&b, [][2]string{
		{"Tracked wallets", fmt.Sprintf("%d (%d active)", st.TotalTrackedWallets, st.ActiveWallets)},
		{"Matches", fmt.Sprintf("%d", st.TotalMatches)},
		{"Successful", fmt.Sprintf("%d", st.SuccessfulTrades)},
		{"Failed", fmt.Sprintf("%d", st.FailedTrades)},
		{"Success rate", fmt.Sprintf("%.1f%%", st.SuccessRate)},
		{"Volume", settings.FormatFloat(st.TotalVolumeTraded) + " " + coin.Symbol()},
	})
	if m.svc.Metrics != nil {
		sum := m.svc.Metrics.Summary()
		b.WriteString(style.MutedStyle.Render(fmt.Sprintf("API %d requests · %d failed", sum.Requests, sum.Failed)))
	}
	return b.String()
}

func (m *MainMenuScreen) renderMenu() string {
	var b strings.Builder
	b.WriteString(style.SubHeaderStyle.Render("Actions"))
	b.WriteString("\n")

	selected := lipgloss.NewStyle().
		Foreground(style.DefaultPalette().Background).
		Background(style.DefaultPalette().Primary).
		Bold(true).
		Padding(0, 1)
	normal := lipgloss.NewStyle().Padding(0, 1)

	for i, item := range menuItems {
		if i == m.selectedIndex {
			b.WriteString(selected.Render(item.Label))
			b.WriteString("\n")
			b.WriteString(style.MutedStyle.Italic(true).PaddingLeft(3).Render(item.Description))
		} else {
			b.WriteString(normal.Render(item.Label))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeRows(b *strings.Builder, rows [][2]string) {
	for _, r := range rows {
		b.WriteString(style.LabelStyle.Width(16).Render(r[0]))
		b.WriteString(style.ValueStyle.Render(r[1]))
		b.WriteString("\n")
	}
}

// SetSize sets the screen dimensions
func (m *MainMenuScreen) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.header.SetWidth(width)
	m.helpBar.SetWidth(width)

	logHeight := height / 4
	if logHeight < 5 {
		logHeight = 5
	}
	m.logs.SetSize(width, logHeight)
}
