package screen

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/prometheus-client/internal/api"
	"github.com/rovshanmuradov/prometheus-client/internal/settings"
	"github.com/rovshanmuradov/prometheus-client/internal/tracker"
	"github.com/rovshanmuradov/prometheus-client/internal/ui"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/style"
)

// noticeTTL is how long a confirmation stays visible. Errors stay until
// the next action replaces them or the user dismisses them.
const noticeTTL = settings.SuccessTTL

// report turns an operation error into the inline text a screen shows,
// using fallback when the backend sent no detail. An expired session yields
// no text and a command that sends the user back to login instead.
func report(err error, fallback string) (string, tea.Cmd) {
	msg := ui.Fail(err, fallback)
	if _, ok := msg.(ui.SessionExpiredMsg); ok {
		return "", func() tea.Msg { return msg }
	}
	var actionErr *tracker.ActionError
	if errors.As(err, &actionErr) {
		return actionErr.Message, nil
	}
	var saveErr *settings.SaveError
	if errors.As(err, &saveErr) {
		return saveErr.Message, nil
	}
	return api.Detail(err, fallback), nil
}

// clearNoticeMsg expires the notice with the matching sequence number
type clearNoticeMsg struct {
	seq int
}

// notice is the inline status line. Confirmations clear themselves; every
// set bumps the sequence so a timer armed for an older message never clears
// a newer one.
type notice struct {
	text    string
	isError bool
	seq     int
}

func (n *notice) set(text string, isError bool) tea.Cmd {
	n.text = text
	n.isError = isError
	n.seq++
	if text == "" || isError {
		return nil
	}
	seq := n.seq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

func (n *notice) success(text string) tea.Cmd { return n.set(text, false) }

func (n *notice) fail(text string) tea.Cmd { return n.set(text, true) }

func (n *notice) clear(msg clearNoticeMsg) {
	if msg.seq == n.seq {
		n.text = ""
	}
}

// dismiss hides a visible error when msg matches binding
func (n *notice) dismiss(msg tea.KeyMsg, binding key.Binding) bool {
	if !n.isError || n.text == "" || !key.Matches(msg, binding) {
		return false
	}
	n.text = ""
	n.seq++
	return true
}

func (n *notice) view() string {
	switch {
	case n.text == "":
		return ""
	case n.isError:
		return style.ErrorStyle.Render("✗ "+n.text) + style.MutedStyle.Render("  ctrl+x dismiss")
	default:
		return style.SuccessStyle.Render("✓ " + n.text)
	}
}

// frame lays a screen out as title, body and help line
func frame(width int, title, body, help string) string {
	parts := []string{style.TitleStyle.Render(title), body}
	if help != "" {
		parts = append(parts, help)
	}
	out := lipgloss.JoinVertical(lipgloss.Left, parts...)
	if width > 0 {
		return lipgloss.NewStyle().MaxWidth(width).Render(out)
	}
	return out
}

func loadingLine(what string) string {
	return style.MutedStyle.Render("Loading " + what + "...")
}
