package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/prometheus-client/internal/ui/style"
)

// FieldType represents the type of form field
type FieldType int

const (
	FieldTypeText FieldType = iota
	FieldTypeNumber
	FieldTypePassword
	FieldTypeSelect
	FieldTypeCheckbox
)

// FormField represents a single form field
type FormField struct {
	Name        string
	Label       string
	Type        FieldType
	Value       string
	Options     []string // For select fields
	Placeholder string
	Required    bool
	Validation  func(string) error
	Error       string
	Hint        string

	textInput   textinput.Model
	selectedIdx int
}

func (f *FormField) isText() bool {
	return f.Type == FieldTypeText || f.Type == FieldTypeNumber || f.Type == FieldTypePassword
}

// Form represents a form component with multiple fields
type Form struct {
	fields     []FormField
	focusIndex int
	focused    bool
	width      int
	height     int

	labelStyle    lipgloss.Style
	inputStyle    lipgloss.Style
	focusedStyle  lipgloss.Style
	errorStyle    lipgloss.Style
	hintStyle     lipgloss.Style
	checkboxStyle lipgloss.Style
}

// NewForm creates a new form component
func NewForm() *Form {
	palette := style.DefaultPalette()

	return &Form{
		fields:  make([]FormField, 0),
		focused: true,

		labelStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true).
			MarginRight(1),

		inputStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		focusedStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary),

		errorStyle: lipgloss.NewStyle().
			Foreground(palette.Error),

		hintStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Italic(true),

		checkboxStyle: lipgloss.NewStyle().
			Foreground(palette.Primary),
	}
}

// AddField adds a field to the form
func (f *Form) AddField(name string, fieldType FieldType, label string, required bool, placeholder string) *Form {
	ti := textinput.New()
	ti.Width = 40
	ti.Placeholder = placeholder

	switch fieldType {
	case FieldTypePassword:
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	case FieldTypeNumber:
		if placeholder == "" {
			ti.Placeholder = "0"
		}
	}

	f.fields = append(f.fields, FormField{
		Name:        name,
		Label:       label,
		Type:        fieldType,
		Placeholder: placeholder,
		Required:    required,
		textInput:   ti,
	})

	if len(f.fields) == 1 {
		f.applyFocus()
	}

	return f
}

func (f *Form) field(name string) *FormField {
	for i := range f.fields {
		if f.fields[i].Name == name {
			return &f.fields[i]
		}
	}
	return nil
}

// SetFieldValue sets the value of a field. Select fields move to the
// matching option; checkbox fields take "true" or "false".
func (f *Form) SetFieldValue(name, value string) *Form {
	field := f.field(name)
	if field == nil {
		return f
	}

	switch field.Type {
	case FieldTypeSelect:
		for i, opt := range field.Options {
			if opt == value {
				field.selectedIdx = i
				field.Value = value
			}
		}
	default:
		field.Value = value
		field.textInput.SetValue(value)
	}
	return f
}

// SetChecked sets a checkbox field
func (f *Form) SetChecked(name string, checked bool) *Form {
	if checked {
		return f.SetFieldValue(name, "true")
	}
	return f.SetFieldValue(name, "false")
}

// Checked reports whether a checkbox field is ticked
func (f *Form) Checked(name string) bool {
	return f.GetValue(name) == "true"
}

// SetFieldOptions sets options for select fields
func (f *Form) SetFieldOptions(name string, options []string) *Form {
	field := f.field(name)
	if field == nil || field.Type != FieldTypeSelect {
		return f
	}
	field.Options = options
	field.selectedIdx = 0
	if len(options) > 0 {
		field.Value = options[0]
	}
	return f
}

// SetFieldHint shows a muted line under the field
func (f *Form) SetFieldHint(name, hint string) *Form {
	if field := f.field(name); field != nil {
		field.Hint = hint
	}
	return f
}

// SetFieldError marks a field invalid
func (f *Form) SetFieldError(name, msg string) *Form {
	if field := f.field(name); field != nil {
		field.Error = msg
	}
	return f
}

// SetFieldValidation sets a validation function for a field
func (f *Form) SetFieldValidation(name string, validation func(string) error) *Form {
	if field := f.field(name); field != nil {
		field.Validation = validation
	}
	return f
}

// SetFocused moves keyboard focus into or out of the form
func (f *Form) SetFocused(focused bool) *Form {
	f.focused = focused
	f.applyFocus()
	return f
}

// FocusedField returns the name of the field with the cursor
func (f *Form) FocusedField() string {
	if len(f.fields) == 0 {
		return ""
	}
	return f.fields[f.focusIndex].Name
}

// AtLastField reports whether tab would wrap around
func (f *Form) AtLastField() bool {
	return f.focusIndex == len(f.fields)-1
}

// AtFirstField reports whether shift+tab would wrap around
func (f *Form) AtFirstField() bool {
	return f.focusIndex == 0
}

// Init initializes the form (for compatibility with tea.Model interface)
func (f *Form) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles form input and updates
func (f *Form) Update(msg tea.Msg) (*Form, tea.Cmd) {
	if len(f.fields) == 0 || !f.focused {
		return f, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		field := &f.fields[f.focusIndex]
		switch msg.String() {
		case "tab", "down":
			f.nextField()
			return f, nil
		case "shift+tab", "up":
			f.prevField()
			return f, nil
		case "enter":
			if field.Type == FieldTypeSelect {
				f.cycleSelect(1)
			} else if field.Type == FieldTypeCheckbox {
				f.toggleCheckbox()
			} else {
				f.nextField()
			}
			return f, nil
		case "left":
			if field.Type == FieldTypeSelect {
				f.cycleSelect(-1)
				return f, nil
			}
		case "right":
			if field.Type == FieldTypeSelect {
				f.cycleSelect(1)
				return f, nil
			}
		case " ":
			if field.Type == FieldTypeCheckbox {
				f.toggleCheckbox()
				return f, nil
			}
		}
	}

	field := &f.fields[f.focusIndex]
	if !field.isText() {
		return f, nil
	}

	var cmd tea.Cmd
	field.textInput, cmd = field.textInput.Update(msg)
	if v := field.textInput.Value(); v != field.Value {
		field.Value = v
		field.Error = ""
	}
	return f, cmd
}

// View renders the form
func (f *Form) View() string {
	if len(f.fields) == 0 {
		return "No fields defined"
	}

	var content strings.Builder

	for i := range f.fields {
		field := &f.fields[i]
		active := f.focused && i == f.focusIndex

		fieldStyle := f.inputStyle
		if active {
			fieldStyle = f.focusedStyle
		}

		switch field.Type {
		case FieldTypeCheckbox:
			box := "☐"
			if field.Value == "true" {
				box = "☑"
			}
			text := box + " " + field.Label
			if active {
				content.WriteString(f.focusedStyle.Render(text))
			} else {
				content.WriteString(f.checkboxStyle.Render(text))
			}

		case FieldTypeSelect:
			label := field.Label
			content.WriteString(f.labelStyle.Render(label))
			content.WriteString("\n")
			text := field.Value
			if active {
				text = "◂ " + text + " ▸"
			}
			content.WriteString(fieldStyle.Render(text))

		default:
			label := field.Label
			if field.Required {
				label += " *"
			}
			content.WriteString(f.labelStyle.Render(label))
			content.WriteString("\n")
			content.WriteString(fieldStyle.Render(field.textInput.View()))
		}
		content.WriteString("\n")

		if field.Hint != "" {
			content.WriteString(f.hintStyle.Render(field.Hint))
			content.WriteString("\n")
		}
		if field.Error != "" {
			content.WriteString(f.errorStyle.Render("⚠ " + field.Error))
			content.WriteString("\n")
		}
	}

	return content.String()
}

func (f *Form) applyFocus() {
	for i := range f.fields {
		if f.focused && i == f.focusIndex && f.fields[i].isText() {
			f.fields[i].textInput.Focus()
		} else {
			f.fields[i].textInput.Blur()
		}
	}
}

func (f *Form) nextField() {
	f.focusIndex = (f.focusIndex + 1) % len(f.fields)
	f.applyFocus()
}

func (f *Form) prevField() {
	f.focusIndex--
	if f.focusIndex < 0 {
		f.focusIndex = len(f.fields) - 1
	}
	f.applyFocus()
}

func (f *Form) cycleSelect(step int) {
	field := &f.fields[f.focusIndex]
	if len(field.Options) == 0 {
		return
	}
	field.selectedIdx = (field.selectedIdx + step + len(field.Options)) % len(field.Options)
	field.Value = field.Options[field.selectedIdx]
}

func (f *Form) toggleCheckbox() {
	field := &f.fields[f.focusIndex]
	if field.Value == "true" {
		field.Value = "false"
	} else {
		field.Value = "true"
	}
}

// Validate checks required fields and custom validators
func (f *Form) Validate() bool {
	valid := true

	for i := range f.fields {
		field := &f.fields[i]
		field.Error = ""

		if field.Required && strings.TrimSpace(field.Value) == "" {
			field.Error = "This field is required"
			valid = false
			continue
		}

		if field.Validation != nil {
			if err := field.Validation(field.Value); err != nil {
				field.Error = err.Error()
				valid = false
			}
		}
	}

	return valid
}

// GetValues returns all form field values as a map
func (f *Form) GetValues() map[string]string {
	values := make(map[string]string)
	for _, field := range f.fields {
		values[field.Name] = field.Value
	}
	return values
}

// GetValue returns the value of a specific field
func (f *Form) GetValue(name string) string {
	if field := f.field(name); field != nil {
		return field.Value
	}
	return ""
}

// Reset clears all form fields
func (f *Form) Reset() *Form {
	for i := range f.fields {
		f.fields[i].Value = ""
		f.fields[i].Error = ""
		f.fields[i].textInput.SetValue("")
		f.fields[i].selectedIdx = 0
		if len(f.fields[i].Options) > 0 {
			f.fields[i].Value = f.fields[i].Options[0]
		}
	}

	f.focusIndex = 0
	f.applyFocus()
	return f
}

// SetSize sets the form dimensions
func (f *Form) SetSize(width, height int) *Form {
	f.width = width
	f.height = height

	inputWidth := width - 6
	if inputWidth > 60 {
		inputWidth = 60
	}
	if inputWidth > 10 {
		for i := range f.fields {
			f.fields[i].textInput.Width = inputWidth
		}
	}

	return f
}
