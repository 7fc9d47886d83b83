package component

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/prometheus-client/internal/ladder"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/style"
)

// LadderEditor renders a take-profit or stop-loss ladder as a grid of
// inputs, two per level. The ladder value is the source of truth; the
// inputs only hold what the user is typing.
type LadderEditor struct {
	ladder  ladder.Ladder
	inputs  [][2]textinput.Model
	row     int
	col     ladder.Field
	focused bool

	titleStyle   lipgloss.Style
	labelStyle   lipgloss.Style
	cellStyle    lipgloss.Style
	activeStyle  lipgloss.Style
	warningStyle lipgloss.Style
	mutedStyle   lipgloss.Style
}

// NewLadderEditor wraps l in an editor
func NewLadderEditor(l ladder.Ladder) *LadderEditor {
	palette := style.DefaultPalette()
	e := &LadderEditor{
		titleStyle: lipgloss.NewStyle().Foreground(palette.Primary).Bold(true),
		labelStyle: lipgloss.NewStyle().Foreground(palette.TextMuted),
		cellStyle: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(palette.TextMuted),
		activeStyle: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(palette.Primary),
		warningStyle: lipgloss.NewStyle().Foreground(palette.Warning),
		mutedStyle:   lipgloss.NewStyle().Foreground(palette.TextMuted).Italic(true),
	}
	e.SetLadder(l)
	return e
}

// Ladder returns the edited ladder
func (e *LadderEditor) Ladder() ladder.Ladder {
	return e.ladder
}

// SetLadder replaces the ladder and rebuilds the inputs from its values
func (e *LadderEditor) SetLadder(l ladder.Ladder) {
	e.ladder = l
	e.inputs = make([][2]textinput.Model, len(l.Levels))
	for i, lvl := range l.Levels {
		e.inputs[i][ladder.Trigger] = newCell(lvl.Trigger)
		e.inputs[i][ladder.Sell] = newCell(lvl.Sell)
	}
	if e.row >= len(l.Visible()) {
		e.row = len(l.Visible()) - 1
	}
	e.applyFocus()
}

func newCell(v float64) textinput.Model {
	ti := textinput.New()
	ti.Width = 8
	ti.Placeholder = "0"
	ti.CharLimit = 8
	ti.SetValue(formatPercent(v))
	return ti
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SetFocused moves keyboard focus into or out of the editor
func (e *LadderEditor) SetFocused(focused bool) {
	e.focused = focused
	e.applyFocus()
}

// Focused reports whether the editor holds keyboard focus
func (e *LadderEditor) Focused() bool {
	return e.focused
}

// AtEnd reports whether the cursor is on the last visible cell
func (e *LadderEditor) AtEnd() bool {
	return e.row == len(e.ladder.Visible())-1 && e.col == ladder.Sell
}

// AtStart reports whether the cursor is on the first cell
func (e *LadderEditor) AtStart() bool {
	return e.row == 0 && e.col == ladder.Trigger
}

// Update handles editing keys. Structural changes go through the ladder
// package; typed text is parsed into the level on every keystroke.
func (e *LadderEditor) Update(msg tea.Msg) (*LadderEditor, tea.Cmd) {
	if !e.focused {
		return e, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+a":
			e.row = len(e.ladder.Levels)
			e.col = ladder.Trigger
			e.SetLadder(e.ladder.Add())
			return e, nil
		case "ctrl+d":
			if next, err := e.ladder.Remove(e.row); err == nil {
				e.SetLadder(next)
			}
			return e, nil
		case "ctrl+v":
			e.SetLadder(e.ladder.ToggleViewAll())
			return e, nil
		case "tab", "right":
			e.move(1)
			return e, nil
		case "shift+tab", "left":
			e.move(-1)
			return e, nil
		case "down":
			if e.row < len(e.ladder.Visible())-1 {
				e.row++
				e.applyFocus()
			}
			return e, nil
		case "up":
			if e.row > 0 {
				e.row--
				e.applyFocus()
			}
			return e, nil
		}
	}

	if e.row >= len(e.inputs) {
		return e, nil
	}

	var cmd tea.Cmd
	cell := &e.inputs[e.row][e.col]
	before := cell.Value()
	*cell, cmd = cell.Update(msg)
	if cell.Value() != before {
		if next, err := e.ladder.Update(e.row, e.col, cell.Value()); err == nil {
			e.ladder = next
		}
	}
	return e, cmd
}

func (e *LadderEditor) move(step int) {
	pos := e.row*2 + int(e.col) + step
	last := len(e.ladder.Visible())*2 - 1
	if pos < 0 {
		pos = last
	} else if pos > last {
		pos = 0
	}
	e.row = pos / 2
	e.col = ladder.Field(pos % 2)
	e.applyFocus()
}

func (e *LadderEditor) applyFocus() {
	for i := range e.inputs {
		for c := range e.inputs[i] {
			if e.focused && i == e.row && ladder.Field(c) == e.col {
				e.inputs[i][c].Focus()
			} else {
				e.inputs[i][c].Blur()
			}
		}
	}
}

// View renders the ladder, its running total and any advisory message
func (e *LadderEditor) View() string {
	var b strings.Builder

	title := e.ladder.Kind.String() + " Levels"
	b.WriteString(e.titleStyle.Render(title))
	b.WriteString("\n")

	for i := range e.ladder.Visible() {
		trigger := e.renderCell(i, ladder.Trigger)
		sell := e.renderCell(i, ladder.Sell)
		row := lipgloss.JoinHorizontal(lipgloss.Bottom,
			e.labelStyle.Render(fmt.Sprintf("Level %d  %s ", i+1, e.ladder.Kind.TriggerLabel())),
			trigger,
			e.labelStyle.Render("  Sell % "),
			sell,
		)
		b.WriteString(row)
		b.WriteString("\n")
	}

	hidden := len(e.ladder.Levels) - len(e.ladder.Visible())
	switch {
	case hidden > 0:
		b.WriteString(e.mutedStyle.Render(fmt.Sprintf("+%d more level(s), ctrl+v to view all", hidden)))
		b.WriteString("\n")
	case e.ladder.ViewAll && len(e.ladder.Levels) > 1:
		b.WriteString(e.mutedStyle.Render("ctrl+v to collapse"))
		b.WriteString("\n")
	}

	b.WriteString(e.labelStyle.Render(fmt.Sprintf("Total sell: %s%%", formatPercent(e.ladder.Sum()))))
	b.WriteString("\n")

	if e.ladder.Message != "" {
		b.WriteString(e.warningStyle.Render("⚠ " + e.ladder.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (e *LadderEditor) renderCell(row int, col ladder.Field) string {
	cell := e.inputs[row][col].View()
	if e.focused && row == e.row && col == e.col {
		return e.activeStyle.Render(cell)
	}
	return e.cellStyle.Render(cell)
}
