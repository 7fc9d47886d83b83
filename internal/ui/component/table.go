package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/prometheus-client/internal/ui/style"
)

// TableColumn represents a column configuration
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// TableRow represents a row of data. A zero Style falls back to the table's
// row style.
type TableRow struct {
	Data  []string
	Style *lipgloss.Style
}

// Table represents a data table component
type Table struct {
	columns     []TableColumn
	rows        []TableRow
	width       int
	selectedRow int
	emptyText   string

	headerStyle      lipgloss.Style
	rowStyle         lipgloss.Style
	selectedRowStyle lipgloss.Style
	borderStyle      lipgloss.Style
	mutedStyle       lipgloss.Style

	showBorder bool
	selectable bool
	zebra      bool
}

// NewTable creates a new table component
func NewTable() *Table {
	palette := style.DefaultPalette()

	return &Table{
		emptyText: "No data",

		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),

		selectedRowStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 1),

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		mutedStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Italic(true).
			Padding(0, 1),

		showBorder: true,
		selectable: true,
	}
}

// AddColumn adds a column to the table. A zero width shares the space left
// by fixed columns.
func (t *Table) AddColumn(header string, width int, align lipgloss.Position) *Table {
	t.columns = append(t.columns, TableColumn{
		Header: header,
		Width:  width,
		Align:  align,
	})
	return t
}

// SetRows replaces the table rows, keeping the selection in range
func (t *Table) SetRows(rows []TableRow) *Table {
	t.rows = rows
	if t.selectedRow >= len(rows) {
		t.selectedRow = len(rows) - 1
	}
	if t.selectedRow < 0 {
		t.selectedRow = 0
	}
	return t
}

// SetEmptyText sets the line shown when there are no rows
func (t *Table) SetEmptyText(text string) *Table {
	t.emptyText = text
	return t
}

// SetWidth sets the table width
func (t *Table) SetWidth(width int) *Table {
	t.width = width
	return t
}

// SelectedRow returns the currently selected row index, or -1 when empty
func (t *Table) SelectedRow() int {
	if len(t.rows) == 0 {
		return -1
	}
	return t.selectedRow
}

// MoveUp moves selection up
func (t *Table) MoveUp() *Table {
	if t.selectable && t.selectedRow > 0 {
		t.selectedRow--
	}
	return t
}

// MoveDown moves selection down
func (t *Table) MoveDown() *Table {
	if t.selectable && t.selectedRow < len(t.rows)-1 {
		t.selectedRow++
	}
	return t
}

// SetSelectable enables/disables row selection
func (t *Table) SetSelectable(selectable bool) *Table {
	t.selectable = selectable
	return t
}

// SetZebra enables/disables alternating row colors
func (t *Table) SetZebra(zebra bool) *Table {
	t.zebra = zebra
	return t
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.rows)
}

// View renders the table
func (t *Table) View() string {
	if len(t.columns) == 0 {
		return ""
	}

	widths := t.columnWidths()
	var content strings.Builder

	for i, col := range t.columns {
		content.WriteString(renderCell(col.Header, widths[i], col.Align, t.headerStyle))
		if i < len(t.columns)-1 {
			content.WriteString("│")
		}
	}
	content.WriteString("\n")
	for i := range t.columns {
		content.WriteString(strings.Repeat("─", widths[i]+2))
		if i < len(t.columns)-1 {
			content.WriteString("┼")
		}
	}

	if len(t.rows) == 0 {
		content.WriteString("\n")
		content.WriteString(t.mutedStyle.Render(t.emptyText))
	}

	palette := style.DefaultPalette()
	for rowIndex, row := range t.rows {
		content.WriteString("\n")

		rowStyle := t.rowStyle
		if row.Style != nil {
			rowStyle = *row.Style
		}
		if t.selectable && rowIndex == t.selectedRow {
			rowStyle = t.selectedRowStyle
		} else if t.zebra && rowIndex%2 == 1 {
			rowStyle = rowStyle.Background(palette.BackgroundAlt)
		}

		for i, col := range t.columns {
			cellData := ""
			if i < len(row.Data) {
				cellData = row.Data[i]
			}
			content.WriteString(renderCell(cellData, widths[i], col.Align, rowStyle))
			if i < len(t.columns)-1 {
				content.WriteString("│")
			}
		}
	}

	if t.showBorder {
		return t.borderStyle.Render(content.String())
	}
	return content.String()
}

// renderCell truncates content to width runes and pads it. The style's
// horizontal padding is added outside width.
func renderCell(content string, width int, align lipgloss.Position, cellStyle lipgloss.Style) string {
	runes := []rune(content)
	if len(runes) > width {
		if width > 3 {
			content = string(runes[:width-3]) + "..."
		} else {
			content = string(runes[:width])
		}
	}
	return cellStyle.Width(width + 2).Align(align).Render(content)
}

func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.columns))
	fixed, auto := 0, 0
	for i, col := range t.columns {
		widths[i] = col.Width
		if col.Width > 0 {
			fixed += col.Width + 3
		} else {
			auto++
		}
	}
	if auto == 0 {
		return widths
	}

	share := 12
	if t.width > 0 {
		if avail := (t.width-fixed-4)/auto - 3; avail > share {
			share = avail
		}
	}
	for i := range widths {
		if widths[i] <= 0 {
			widths[i] = share
		}
	}
	return widths
}
