package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/prometheus-client/internal/address"
	"github.com/rovshanmuradov/prometheus-client/internal/amount"
	"github.com/rovshanmuradov/prometheus-client/internal/api"
	"github.com/rovshanmuradov/prometheus-client/internal/export"
	"github.com/rovshanmuradov/prometheus-client/internal/tracker"
	"github.com/rovshanmuradov/prometheus-client/internal/ui"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/component"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/router"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/style"
)

// maxExportPages bounds how much history one export pulls
const maxExportPages = 50

type logsLoadedMsg struct {
	page *api.LogPage
	err  error
}

type exportDoneMsg struct {
	path  string
	count int
	err   error
}

// LogsScreen pages through copy-trading events and exports them
type LogsScreen struct {
	svc    *ui.Services
	coin   amount.Coin
	width  int
	height int
	keyMap ui.KeyMap

	table   *component.Table
	helpBar *component.HelpBar

	logs      []api.CopyTradingLog
	pager     tracker.Pager
	loading   bool
	exporting bool
	notice    notice
}

// NewLogsScreen creates the logs screen
func NewLogsScreen(svc *ui.Services) *LogsScreen {
	keyMap := ui.DefaultKeyMap()

	table := component.NewTable().
		AddColumn("Time", 14, lipgloss.Left).
		AddColumn("Event", 23, lipgloss.Left).
		AddColumn("Status", 7, lipgloss.Left).
		AddColumn("Sent", 0, lipgloss.Right).
		AddColumn("Received", 0, lipgloss.Right).
		AddColumn("Fee", 14, lipgloss.Right).
		AddColumn("Wallet", 11, lipgloss.Left).
		SetEmptyText("No copy-trading activity yet.")

	return &LogsScreen{
		svc:     svc,
		coin:    svc.Coin(),
		keyMap:  keyMap,
		table:   table,
		pager:   tracker.NewPager(1, 1, 0),
		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteLogs)),
	}
}

// Init loads the first page
func (s *LogsScreen) Init() tea.Cmd {
	return s.load(s.pager.Page)
}

func (s *LogsScreen) load(page int) tea.Cmd {
	s.loading = true
	svc, coin := s.svc, s.coin
	return func() tea.Msg {
		lp, err := svc.Tracker.Logs(svc.Ctx, coin, page)
		return logsLoadedMsg{page: lp, err: err}
	}
}

// Update handles screen updates
func (s *LogsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case logsLoadedMsg:
		s.loading = false
		if msg.err != nil {
			text, cmd := report(msg.err, "Failed to fetch tracker logs")
			if cmd != nil {
				return s, cmd
			}
			return s, s.notice.fail(text)
		}
		s.logs = msg.page.Logs
		s.pager = tracker.NewPager(msg.page.Page, msg.page.TotalPages, msg.page.TotalCount)
		s.refreshTable()

	case exportDoneMsg:
		s.exporting = false
		if msg.err != nil {
			text, cmd := report(msg.err, "Export failed")
			if cmd != nil {
				return s, cmd
			}
			return s, s.notice.fail(text)
		}
		return s, s.notice.success(fmt.Sprintf("Exported %d logs to %s", msg.count, msg.path))

	case clearNoticeMsg:
		s.notice.clear(msg)

	case tea.KeyMsg:
		if s.notice.dismiss(msg, s.keyMap.Dismiss) {
			return s, nil
		}
		switch {
		case key.Matches(msg, s.keyMap.Up):
			s.table.MoveUp()
		case key.Matches(msg, s.keyMap.Down):
			s.table.MoveDown()
		case key.Matches(msg, s.keyMap.NextPage):
			if s.pager.HasNext() && !s.loading {
				return s, s.load(s.pager.Next())
			}
		case key.Matches(msg, s.keyMap.PrevPage):
			if s.pager.HasPrev() && !s.loading {
				return s, s.load(s.pager.Prev())
			}
		case key.Matches(msg, s.keyMap.Refresh):
			return s, s.load(s.pager.Page)
		case key.Matches(msg, s.keyMap.ExportCSV):
			return s, s.export(export.FormatCSV)
		case key.Matches(msg, s.keyMap.ExportJSON):
			return s, s.export(export.FormatJSON)
		}
	}
	return s, nil
}

func (s *LogsScreen) export(format export.Format) tea.Cmd {
	if s.exporting {
		return nil
	}
	s.exporting = true
	svc, coin := s.svc, s.coin
	return func() tea.Msg {
		logs, err := svc.Tracker.AllLogs(svc.Ctx, coin, maxExportPages)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		path, err := svc.Exporter.Export(logs, export.Options{
			Format:    format,
			Coin:      coin,
			OutputDir: svc.ExportDir,
		})
		if err != nil {
			svc.Logger.Warn("Export failed", zap.String("format", string(format)), zap.Error(err))
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path, count: len(logs)}
	}
}

func (s *LogsScreen) refreshTable() {
	rows := make([]component.TableRow, 0, len(s.logs))
	for _, l := range s.logs {
		eventStyle := lipgloss.NewStyle().Foreground(style.EventColor(l.EventType)).Padding(0, 1)
		rows = append(rows, component.TableRow{Data: logRow(l, s.coin), Style: &eventStyle})
	}
	s.table.SetRows(rows)
}

func logRow(l api.CopyTradingLog, coin amount.Coin) []string {
	when := l.CreatedAt
	if ts, ok := export.Timestamp(l); ok {
		when = ts.Local().Format("01-02 15:04:05")
	}
	return []string{
		when,
		tracker.EventLabel(l.EventType),
		tracker.Status(l),
		tracker.Sent(l, coin),
		tracker.Received(l, coin),
		tracker.Fee(l, coin),
		address.Short(tracker.Wallet(l)),
	}
}

func (s *LogsScreen) renderDetail() string {
	i := s.table.SelectedRow()
	if i < 0 || i >= len(s.logs) {
		return ""
	}
	l := s.logs[i]

	var parts []string
	if tok := tracker.Token(l); tok != "" {
		parts = append(parts, "token "+tok)
	}
	if l.TransactionSignature != nil && *l.TransactionSignature != "" {
		parts = append(parts, "tx "+*l.TransactionSignature)
	}
	if l.PnL != nil {
		parts = append(parts, fmt.Sprintf("pnl %.4f", *l.PnL))
	}
	detail := style.MutedStyle.Render(strings.Join(parts, " · "))

	if l.ErrorMessage != nil && *l.ErrorMessage != "" {
		errLine := lipgloss.NewStyle().Foreground(style.StatusColor(tracker.StatusFailed)).Render("error: " + *l.ErrorMessage)
		return detail + "\n" + errLine
	}
	return detail
}

// View renders the logs screen
func (s *LogsScreen) View() string {
	var b strings.Builder

	if s.loading && len(s.logs) == 0 {
		b.WriteString(loadingLine("logs"))
	} else {
		b.WriteString(s.table.SetWidth(s.width - 2).View())
	}
	b.WriteString("\n")
	b.WriteString(style.MutedStyle.Render(s.pager.String()))
	b.WriteString("\n")

	if d := s.renderDetail(); d != "" {
		b.WriteString(d)
		b.WriteString("\n")
	}
	if s.exporting {
		b.WriteString(style.MutedStyle.Render("Exporting..."))
		b.WriteString("\n")
	}
	if n := s.notice.view(); n != "" {
		b.WriteString(n)
		b.WriteString("\n")
	}

	title := "Copy-Trading Logs · " + s.coin.Symbol()
	return frame(s.width, title, b.String(), s.helpBar.SetWidth(s.width).View())
}

// SetSize sets the screen dimensions
func (s *LogsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.helpBar.SetWidth(width)
}
