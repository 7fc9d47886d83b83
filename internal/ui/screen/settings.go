package screen

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/prometheus-client/internal/address"
	"github.com/rovshanmuradov/prometheus-client/internal/settings"
	"github.com/rovshanmuradov/prometheus-client/internal/ui"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/component"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/router"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/style"
)

// Form field names
const (
	fieldSwapStrategy    = "swap_strategy"
	fieldAllowBuys       = "allow_buys"
	fieldBuyTheDip       = "buy_the_dip"
	fieldBuyDipPct       = "buy_dip_percentage"
	fieldMaxDipPct       = "max_dip_percentage"
	fieldBuyDipTimeout   = "buy_dip_timeout"
	fieldDipRecovery     = "dip_recovery"
	fieldDipRecoveryPct  = "dip_recovery_percentage"
	fieldDipRecoveryWait = "dip_recovery_timeout"
	fieldSlippage        = "slippage"
	fieldMirrorPerHour   = "max_buys_per_mirror_per_hour"
	fieldMirrorPerDay    = "max_buys_per_mirror_per_day"
	fieldTokenPerDay     = "max_buys_per_token_per_day"
	fieldTPSLActive      = "tp_sl_is_active"
)

// Focus sections, in tab order
const (
	sectionForm = iota
	sectionTakeProfit
	sectionStopLoss
	sectionCount
)

type settingsLoadedMsg struct {
	state *settings.State
	err   error
}

type settingsSavedMsg struct {
	message string
	err     error
}

// SettingsScreen edits the copy-trading settings of a coin, or of one
// mirrored wallet when the target carries a wallet address.
type SettingsScreen struct {
	svc    *ui.Services
	target settings.Target
	width  int
	height int
	keyMap ui.KeyMap

	form       *component.Form
	takeProfit *component.LadderEditor
	stopLoss   *component.LadderEditor
	helpBar    *component.HelpBar

	state   *settings.State
	section int
	loading bool
	saving  bool
	notice  notice
}

// NewSettingsScreen creates a settings editor for target
func NewSettingsScreen(svc *ui.Services, target settings.Target) *SettingsScreen {
	keyMap := ui.DefaultKeyMap()
	route := ui.RouteSettings
	if target.IsMirror() {
		route = ui.RouteMirrorSettings
	}
	return &SettingsScreen{
		svc:     svc,
		target:  target,
		keyMap:  keyMap,
		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(route)),
	}
}

// Init loads the stored settings
func (s *SettingsScreen) Init() tea.Cmd {
	s.loading = true
	svc, target := s.svc, s.target
	return func() tea.Msg {
		st, err := svc.Settings.Load(svc.Ctx, target)
		return settingsLoadedMsg{state: st, err: err}
	}
}

// CapturesEsc keeps esc from leaving while a save is in flight
func (s *SettingsScreen) CapturesEsc() bool {
	return s.saving
}

// Update handles screen updates
func (s *SettingsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsLoadedMsg:
		s.loading = false
		if msg.err != nil {
			fallback := "Failed to load settings"
			if s.target.IsMirror() {
				fallback = "Failed to load wallet settings"
			}
			text, cmd := report(msg.err, fallback)
			if cmd != nil {
				return s, cmd
			}
			return s, s.notice.fail(text)
		}
		s.setState(msg.state)
		return s, s.form.Init()

	case settingsSavedMsg:
		s.saving = false
		if msg.err != nil {
			text, cmd := report(msg.err, "Failed to update settings")
			if cmd != nil {
				return s, cmd
			}
			return s, s.notice.fail(text)
		}
		return s, s.notice.success(msg.message)

	case clearNoticeMsg:
		s.notice.clear(msg)
		return s, nil

	case tea.KeyMsg:
		if s.notice.dismiss(msg, s.keyMap.Dismiss) {
			return s, nil
		}
		if s.state == nil || s.saving {
			return s, nil
		}
		switch {
		case key.Matches(msg, s.keyMap.Save):
			return s, s.save()
		case msg.String() == "tab" && s.atSectionEnd():
			s.focusSection((s.section + 1) % sectionCount)
			return s, nil
		case msg.String() == "shift+tab" && s.atSectionStart():
			s.focusSection((s.section + sectionCount - 1) % sectionCount)
			return s, nil
		case msg.String() == "pgdown":
			s.focusSection((s.section + 1) % sectionCount)
			return s, nil
		case msg.String() == "pgup":
			s.focusSection((s.section + sectionCount - 1) % sectionCount)
			return s, nil
		}
		return s, s.updateSection(msg)
	}

	if s.state == nil {
		return s, nil
	}
	return s, s.updateSection(msg)
}

func (s *SettingsScreen) updateSection(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch s.section {
	case sectionForm:
		s.form, cmd = s.form.Update(msg)
	case sectionTakeProfit:
		s.takeProfit, cmd = s.takeProfit.Update(msg)
	case sectionStopLoss:
		s.stopLoss, cmd = s.stopLoss.Update(msg)
	}
	return cmd
}

func (s *SettingsScreen) atSectionEnd() bool {
	switch s.section {
	case sectionForm:
		return s.form.AtLastField()
	case sectionTakeProfit:
		return s.takeProfit.AtEnd()
	default:
		return s.stopLoss.AtEnd()
	}
}

func (s *SettingsScreen) atSectionStart() bool {
	switch s.section {
	case sectionForm:
		return s.form.AtFirstField()
	case sectionTakeProfit:
		return s.takeProfit.AtStart()
	default:
		return s.stopLoss.AtStart()
	}
}

func (s *SettingsScreen) focusSection(section int) {
	s.section = section
	s.form.SetFocused(section == sectionForm)
	s.takeProfit.SetFocused(section == sectionTakeProfit)
	s.stopLoss.SetFocused(section == sectionStopLoss)
}

func strategyLabels() []string {
	labels := make([]string, len(settings.SwapStrategies))
	for i, o := range settings.SwapStrategies {
		labels[i] = o.Label
	}
	return labels
}

func strategyLabel(value string) string {
	for _, o := range settings.SwapStrategies {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

func strategyValue(label string) string {
	for _, o := range settings.SwapStrategies {
		if o.Label == label {
			return o.Value
		}
	}
	return label
}

// showsAllowBuys reports whether the allow-buys toggle belongs on the form
func (s *SettingsScreen) showsAllowBuys(st *settings.State) bool {
	return s.target.IsMirror() || st.AllowBuys != nil
}

func (s *SettingsScreen) setState(st *settings.State) {
	s.state = st

	f := component.NewForm().
		AddField(fieldSwapStrategy, component.FieldTypeSelect, "Swap Strategy", false, "")
	f.SetFieldOptions(fieldSwapStrategy, strategyLabels())
	if s.showsAllowBuys(st) {
		f.AddField(fieldAllowBuys, component.FieldTypeCheckbox, "Allow buys", false, "")
	}
	f.AddField(fieldBuyTheDip, component.FieldTypeCheckbox, "Buy the dip", false, "").
		AddField(fieldBuyDipPct, component.FieldTypeNumber, "Buy dip %", false, "").
		AddField(fieldMaxDipPct, component.FieldTypeNumber, "Max dip %", false, "").
		AddField(fieldBuyDipTimeout, component.FieldTypeNumber, "Buy dip timeout (s)", false, "").
		AddField(fieldDipRecovery, component.FieldTypeCheckbox, "Dip recovery", false, "").
		AddField(fieldDipRecoveryPct, component.FieldTypeNumber, "Dip recovery %", false, "").
		AddField(fieldDipRecoveryWait, component.FieldTypeNumber, "Dip recovery timeout (s)", false, "").
		AddField(fieldSlippage, component.FieldTypeNumber, "Slippage %", false, "").
		AddField(fieldMirrorPerHour, component.FieldTypeNumber, "Max buys per mirror per hour", false, "no limit").
		AddField(fieldMirrorPerDay, component.FieldTypeNumber, "Max buys per mirror per day", false, "no limit").
		AddField(fieldTokenPerDay, component.FieldTypeNumber, "Max buys per token per day", false, "no limit").
		AddField(fieldTPSLActive, component.FieldTypeCheckbox, "Take profit / stop loss active", false, "")

	f.SetFieldValue(fieldSwapStrategy, strategyLabel(st.SwapStrategy))
	if st.AllowBuys != nil {
		f.SetChecked(fieldAllowBuys, *st.AllowBuys)
	} else {
		f.SetChecked(fieldAllowBuys, true)
	}
	f.SetChecked(fieldBuyTheDip, st.BuyTheDip)
	f.SetFieldValue(fieldBuyDipPct, settings.FormatFloat(st.BuyDipPercentage))
	f.SetFieldValue(fieldMaxDipPct, settings.FormatFloat(st.MaxDipPercentage))
	f.SetFieldValue(fieldBuyDipTimeout, settings.FormatFloat(st.BuyDipTimeout))
	f.SetChecked(fieldDipRecovery, st.DipRecovery)
	f.SetFieldValue(fieldDipRecoveryPct, settings.FormatFloat(st.DipRecoveryPercentage))
	f.SetFieldValue(fieldDipRecoveryWait, settings.FormatFloat(st.DipRecoveryTimeout))
	f.SetFieldValue(fieldSlippage, st.Slippage)
	f.SetFieldValue(fieldMirrorPerHour, settings.FormatOptionalInt(st.MaxBuysPerMirrorPerHour))
	f.SetFieldValue(fieldMirrorPerDay, settings.FormatOptionalInt(st.MaxBuysPerMirrorPerDay))
	f.SetFieldValue(fieldTokenPerDay, settings.FormatOptionalInt(st.MaxBuysPerTokenPerDay))
	f.SetChecked(fieldTPSLActive, st.TPSLIsActive)
	f.SetFieldHint(fieldSlippage, "Leave empty to send 0")

	s.form = f
	s.takeProfit = component.NewLadderEditor(st.TakeProfit)
	s.stopLoss = component.NewLadderEditor(st.StopLoss)
	s.resize()
	s.focusSection(sectionForm)
}

// collect copies the form and both ladders back into the state
func (s *SettingsScreen) collect() *settings.State {
	st := *s.state
	v := s.form.GetValues()

	st.SwapStrategy = strategyValue(v[fieldSwapStrategy])
	if s.showsAllowBuys(s.state) {
		allow := s.form.Checked(fieldAllowBuys)
		st.AllowBuys = &allow
	}
	st.BuyTheDip = s.form.Checked(fieldBuyTheDip)
	st.BuyDipPercentage = settings.FloatOrZero(v[fieldBuyDipPct])
	st.MaxDipPercentage = settings.FloatOrZero(v[fieldMaxDipPct])
	st.BuyDipTimeout = float64(settings.IntOrZero(v[fieldBuyDipTimeout]))
	st.DipRecovery = s.form.Checked(fieldDipRecovery)
	st.DipRecoveryPercentage = settings.FloatOrZero(v[fieldDipRecoveryPct])
	st.DipRecoveryTimeout = float64(settings.IntOrZero(v[fieldDipRecoveryWait]))
	st.Slippage = strings.TrimSpace(v[fieldSlippage])
	st.MaxBuysPerMirrorPerHour = settings.OptionalInt(v[fieldMirrorPerHour])
	st.MaxBuysPerMirrorPerDay = settings.OptionalInt(v[fieldMirrorPerDay])
	st.MaxBuysPerTokenPerDay = settings.OptionalInt(v[fieldTokenPerDay])
	st.TPSLIsActive = s.form.Checked(fieldTPSLActive)
	st.TakeProfit = s.takeProfit.Ladder()
	st.StopLoss = s.stopLoss.Ladder()
	return &st
}

func (s *SettingsScreen) save() tea.Cmd {
	st := s.collect()
	s.state = st
	s.saving = true
	s.notice.set("", false)

	svc := s.svc
	return func() tea.Msg {
		message, err := svc.Settings.Save(svc.Ctx, st)
		return settingsSavedMsg{message: message, err: err}
	}
}

func (s *SettingsScreen) title() string {
	coin := strings.ToUpper(string(s.target.Coin))
	if s.target.IsMirror() {
		return "Wallet Settings · " + address.Short(s.target.WalletAddress) + " · " + coin
	}
	return "Copy-Trading Settings · " + coin
}

// View renders the settings screen
func (s *SettingsScreen) View() string {
	if s.state == nil {
		body := loadingLine("settings")
		if !s.loading {
			body = s.notice.view()
		}
		return frame(s.width, s.title(), body, s.helpBar.SetWidth(s.width).View())
	}

	formPanel := s.panel(sectionForm, s.form.View())
	ladders := lipgloss.JoinVertical(lipgloss.Left,
		s.panel(sectionTakeProfit, s.takeProfit.View()),
		s.panel(sectionStopLoss, s.stopLoss.View()),
	)

	var b strings.Builder
	b.WriteString(style.AdaptiveJoinHorizontal(s.width, formPanel, ladders))
	b.WriteString("\n")
	if s.saving {
		b.WriteString(style.MutedStyle.Render("Saving..."))
		b.WriteString("\n")
	}
	if n := s.notice.view(); n != "" {
		b.WriteString(n)
		b.WriteString("\n")
	}
	b.WriteString(style.MutedStyle.Render("pgup/pgdn switch section"))

	return frame(s.width, s.title(), b.String(), s.helpBar.SetWidth(s.width).View())
}

func (s *SettingsScreen) panel(section int, content string) string {
	width := style.AdaptiveWidth(s.width, 50) - 6
	if width < 40 {
		width = 40
	}
	if section == s.section {
		return style.ActivePanelStyle.Width(width).Render(content)
	}
	return style.PanelStyle.Width(width).Render(content)
}

func (s *SettingsScreen) resize() {
	if s.form != nil {
		s.form.SetSize(style.AdaptiveWidth(s.width, 50)-10, s.height)
	}
}

// SetSize sets the screen dimensions
func (s *SettingsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.helpBar.SetWidth(width)
	s.resize()
}
