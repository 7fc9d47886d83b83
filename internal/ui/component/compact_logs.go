package component

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/prometheus-client/internal/logger"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/style"
)

const iso8601 = "2006-01-02T15:04:05.000Z0700"

// CompactLogViewer shows the tail of the application log inside the TUI
type CompactLogViewer struct {
	buffer    *logger.RecentBuffer
	viewport  viewport.Model
	showDebug bool
	style     CompactLogStyle
	height    int
	visible   bool
	title     string
}

// CompactLogStyle contains all styling for the log viewer
type CompactLogStyle struct {
	container lipgloss.Style
	title     lipgloss.Style
	timestamp lipgloss.Style
	error     lipgloss.Style
	warning   lipgloss.Style
	info      lipgloss.Style
	debug     lipgloss.Style
}

// NewCompactLogViewer creates a new compact log viewer
func NewCompactLogViewer(buffer *logger.RecentBuffer) *CompactLogViewer {
	palette := style.DefaultPalette()

	return &CompactLogViewer{
		buffer:  buffer,
		visible: true,
		title:   "Activity",
		style: CompactLogStyle{
			container: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.TextMuted).
				Padding(0, 1),

			title: lipgloss.NewStyle().
				Foreground(palette.Secondary).
				Bold(true),

			timestamp: lipgloss.NewStyle().
				Foreground(palette.TextMuted),

			error: lipgloss.NewStyle().
				Foreground(palette.Error).
				Bold(true),

			warning: lipgloss.NewStyle().
				Foreground(palette.Warning),

			info: lipgloss.NewStyle().
				Foreground(palette.TextSecondary),

			debug: lipgloss.NewStyle().
				Foreground(palette.TextMuted),
		},
		viewport: viewport.New(50, 4),
	}
}

// SetSize sets the component dimensions
func (clv *CompactLogViewer) SetSize(width, height int) {
	clv.height = height

	viewportHeight := height - 3 // Border + title
	if viewportHeight < 2 {
		viewportHeight = 2
	}
	clv.viewport.Width = width - 4
	clv.viewport.Height = viewportHeight
}

// SetVisible toggles the visibility of the log viewer
func (clv *CompactLogViewer) SetVisible(visible bool) {
	clv.visible = visible
}

// IsVisible returns whether the log viewer is visible
func (clv *CompactLogViewer) IsVisible() bool {
	return clv.visible
}

// SetShowDebug includes or hides debug entries
func (clv *CompactLogViewer) SetShowDebug(show bool) {
	clv.showDebug = show
}

// Update handles viewport scrolling
func (clv *CompactLogViewer) Update(msg tea.Msg) tea.Cmd {
	if !clv.visible {
		return nil
	}
	var cmd tea.Cmd
	clv.viewport, cmd = clv.viewport.Update(msg)
	return cmd
}

// View renders the compact log viewer
func (clv *CompactLogViewer) View() string {
	if !clv.visible {
		return ""
	}

	clv.refresh()

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		clv.style.title.Render(clv.title),
		clv.viewport.View(),
	)
	return clv.style.container.Render(content)
}

func (clv *CompactLogViewer) refresh() {
	if clv.buffer == nil {
		clv.viewport.SetContent("No log buffer available")
		return
	}

	var lines []string
	for _, entry := range clv.buffer.Recent(50) {
		if !clv.showDebug && strings.EqualFold(entry.Level, "debug") {
			continue
		}
		lines = append(lines, clv.formatLogEntry(entry))
	}

	if len(lines) == 0 {
		clv.viewport.SetContent("Nothing logged yet")
		return
	}

	clv.viewport.SetContent(strings.Join(lines, "\n"))
	clv.viewport.GotoBottom()
}

func (clv *CompactLogViewer) formatLogEntry(entry logger.LogEntry) string {
	stamp := entry.Timestamp
	if ts, err := time.Parse(iso8601, entry.Timestamp); err == nil {
		stamp = ts.Format("15:04:05")
	}

	var msg string
	switch strings.ToLower(entry.Level) {
	case "error", "dpanic", "panic", "fatal":
		msg = clv.style.error.Render(entry.Message)
	case "warn", "warning":
		msg = clv.style.warning.Render(entry.Message)
	case "debug":
		msg = clv.style.debug.Render(entry.Message)
	default:
		msg = clv.style.info.Render(entry.Message)
	}

	return fmt.Sprintf("%s %s", clv.style.timestamp.Render(stamp), msg)
}

// GetHeight returns the component height for layout calculations
func (clv *CompactLogViewer) GetHeight() int {
	if !clv.visible {
		return 0
	}
	return clv.height
}
