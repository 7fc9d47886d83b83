package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/prometheus-client/internal/address"
	"github.com/rovshanmuradov/prometheus-client/internal/amount"
	"github.com/rovshanmuradov/prometheus-client/internal/api"
	"github.com/rovshanmuradov/prometheus-client/internal/settings"
	"github.com/rovshanmuradov/prometheus-client/internal/tracker"
	"github.com/rovshanmuradov/prometheus-client/internal/ui"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/component"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/router"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/style"
)

type walletsLoadedMsg struct {
	page *api.WalletPage
	err  error
}

type walletActionMsg struct {
	message string
	err     error
}

// WalletsScreen lists the mirrored wallets of the active coin and lets the
// user add, pause and resume them.
type WalletsScreen struct {
	svc    *ui.Services
	coin   amount.Coin
	width  int
	height int
	keyMap ui.KeyMap

	table   *component.Table
	helpBar *component.HelpBar
	input   textinput.Model
	adding  bool

	wallets []api.TrackedWallet
	pager   tracker.Pager
	loading bool
	busy    bool
	notice  notice
}

// NewWalletsScreen creates the tracked wallets screen
func NewWalletsScreen(svc *ui.Services) *WalletsScreen {
	keyMap := ui.DefaultKeyMap()

	input := textinput.New()
	input.Placeholder = "Wallet address to mirror"
	input.Width = 50

	table := component.NewTable().
		AddColumn("Wallet", 13, lipgloss.Left).
		AddColumn("Status", 8, lipgloss.Left).
		AddColumn("Matches", 7, lipgloss.Right).
		AddColumn("Success", 7, lipgloss.Right).
		AddColumn("Failed", 6, lipgloss.Right).
		AddColumn("Rate", 6, lipgloss.Right).
		AddColumn("Volume", 10, lipgloss.Right).
		AddColumn("Strategy", 0, lipgloss.Left).
		SetEmptyText("No wallets tracked yet. Press a to add one.")

	return &WalletsScreen{
		svc:     svc,
		coin:    svc.Coin(),
		keyMap:  keyMap,
		table:   table,
		input:   input,
		pager:   tracker.NewPager(1, 1, 0),
		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteWallets)),
	}
}

// Init loads the current page
func (s *WalletsScreen) Init() tea.Cmd {
	return s.load(s.pager.Page)
}

func (s *WalletsScreen) load(page int) tea.Cmd {
	s.loading = true
	svc, coin := s.svc, s.coin

	var stats *api.CopyTradingStats
	if snap, ok := svc.Cache.Get(coin); ok {
		stats = snap.Dashboard.Stats
	}

	return func() tea.Msg {
		wp, err := svc.Tracker.Wallets(svc.Ctx, coin, page, stats)
		return walletsLoadedMsg{page: wp, err: err}
	}
}

// CapturesEsc lets esc close the add-wallet input instead of the screen
func (s *WalletsScreen) CapturesEsc() bool {
	return s.adding
}

// Update handles screen updates
func (s *WalletsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case walletsLoadedMsg:
		s.loading = false
		if msg.err != nil {
			text, cmd := report(msg.err, "Failed to fetch tracked wallets")
			if cmd != nil {
				return s, cmd
			}
			return s, s.notice.fail(text)
		}
		s.wallets = msg.page.Wallets
		s.pager = tracker.NewPager(msg.page.Page, msg.page.TotalPages, msg.page.Total)
		s.refreshTable()
		return s, nil

	case walletActionMsg:
		s.busy = false
		if msg.err != nil {
			text, cmd := report(msg.err, "Wallet action failed")
			if cmd != nil {
				return s, cmd
			}
			return s, s.notice.fail(text)
		}
		s.svc.Cache.Invalidate(s.coin)
		return s, tea.Batch(s.notice.success(msg.message), s.load(s.pager.Page))

	case clearNoticeMsg:
		s.notice.clear(msg)
		return s, nil

	case tea.KeyMsg:
		if s.notice.dismiss(msg, s.keyMap.Dismiss) {
			return s, nil
		}
		if s.adding {
			return s, s.updateInput(msg)
		}
		if s.busy {
			return s, nil
		}
		return s, s.handleKey(msg)
	}

	if s.adding {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *WalletsScreen) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.adding = false
		s.input.Blur()
		s.input.SetValue("")
		return nil
	case "enter":
		raw := strings.TrimSpace(s.input.Value())
		if raw == "" {
			return s.notice.fail("Please enter a wallet address")
		}
		s.adding = false
		s.input.Blur()
		s.input.SetValue("")
		return s.act(func(svc *ui.Services, coin amount.Coin) (string, error) {
			return svc.Tracker.Track(svc.Ctx, coin, raw)
		})
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

func (s *WalletsScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, s.keyMap.Up):
		s.table.MoveUp()

	case key.Matches(msg, s.keyMap.Down):
		s.table.MoveDown()

	case key.Matches(msg, s.keyMap.NextPage):
		if s.pager.HasNext() && !s.loading {
			return s.load(s.pager.Next())
		}

	case key.Matches(msg, s.keyMap.PrevPage):
		if s.pager.HasPrev() && !s.loading {
			return s.load(s.pager.Prev())
		}

	case key.Matches(msg, s.keyMap.Refresh):
		return s.load(s.pager.Page)

	case key.Matches(msg, s.keyMap.Track):
		s.adding = true
		return s.input.Focus()

	case key.Matches(msg, s.keyMap.Untrack):
		if w, ok := s.selected(); ok && w.IsActive {
			addr := w.WalletAddress
			return s.act(func(svc *ui.Services, coin amount.Coin) (string, error) {
				return svc.Tracker.Untrack(svc.Ctx, coin, addr)
			})
		}

	case key.Matches(msg, s.keyMap.Resume):
		if w, ok := s.selected(); ok && !w.IsActive {
			addr := w.WalletAddress
			return s.act(func(svc *ui.Services, coin amount.Coin) (string, error) {
				return svc.Tracker.Resume(svc.Ctx, coin, addr)
			})
		}

	case key.Matches(msg, s.keyMap.Enter):
		if w, ok := s.selected(); ok {
			wallet := w.WalletAddress
			return func() tea.Msg {
				return ui.RouterMsg{To: ui.RouteMirrorSettings, Wallet: wallet}
			}
		}
	}
	return nil
}

func (s *WalletsScreen) act(fn func(svc *ui.Services, coin amount.Coin) (string, error)) tea.Cmd {
	s.busy = true
	svc, coin := s.svc, s.coin
	return func() tea.Msg {
		message, err := fn(svc, coin)
		return walletActionMsg{message: message, err: err}
	}
}

func (s *WalletsScreen) selected() (api.TrackedWallet, bool) {
	i := s.table.SelectedRow()
	if i < 0 || i >= len(s.wallets) {
		return api.TrackedWallet{}, false
	}
	return s.wallets[i], true
}

func (s *WalletsScreen) refreshTable() {
	palette := style.DefaultPalette()
	stopped := lipgloss.NewStyle().Foreground(palette.TextMuted).Padding(0, 1)

	rows := make([]component.TableRow, 0, len(s.wallets))
	for _, w := range s.wallets {
		row := component.TableRow{Data: walletRow(w, s.coin)}
		if !w.IsActive {
			row.Style = &stopped
		}
		rows = append(rows, row)
	}
	s.table.SetRows(rows)
}

func walletRow(w api.TrackedWallet, coin amount.Coin) []string {
	status := "Active"
	if !w.IsActive {
		status = "Stopped"
	}
	rate := amount.NotAvailable
	if w.SuccessRate != nil {
		rate = fmt.Sprintf("%.1f%%", *w.SuccessRate)
	}
	strategy := w.SwapStrategy
	if strategy == "" {
		strategy = "default"
	}
	return []string{
		address.Short(w.WalletAddress),
		status,
		fmt.Sprintf("%d", w.TotalMatches),
		fmt.Sprintf("%d", w.SuccessfulTrades),
		fmt.Sprintf("%d", w.FailedTrades),
		rate,
		settings.FormatFloat(w.TotalVolumeTraded) + " " + coin.Symbol(),
		strategy,
	}
}

// View renders the wallets screen
func (s *WalletsScreen) View() string {
	var b strings.Builder

	switch {
	case s.loading && len(s.wallets) == 0:
		b.WriteString(loadingLine("tracked wallets"))
	default:
		b.WriteString(s.table.SetWidth(s.width - 2).View())
	}
	b.WriteString("\n")
	b.WriteString(style.MutedStyle.Render(s.pager.String()))
	b.WriteString("\n")

	if s.adding {
		b.WriteString(style.LabelStyle.Render("Track wallet: "))
		b.WriteString(s.input.View())
		b.WriteString("\n")
		b.WriteString(style.MutedStyle.Render("enter to track · esc to cancel"))
		b.WriteString("\n")
	}
	if s.busy {
		b.WriteString(style.MutedStyle.Render("Working..."))
		b.WriteString("\n")
	}
	if n := s.notice.view(); n != "" {
		b.WriteString(n)
		b.WriteString("\n")
	}

	title := "Tracked Wallets · " + s.coin.Symbol()
	return frame(s.width, title, b.String(), s.helpBar.SetWidth(s.width).View())
}

// SetSize sets the screen dimensions
func (s *WalletsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.helpBar.SetWidth(width)
}
