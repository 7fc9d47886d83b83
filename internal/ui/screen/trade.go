package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
	"github.com/rovshanmuradov/prometheus-client/internal/ui"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/component"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/router"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/style"
)

const (
	fieldToken       = "token"
	fieldAmount      = "amount"
	fieldDestination = "destination"
)

type tradeResultMsg struct {
	message string
	err     error
}

// TradeScreen hosts the single-form wallet actions: manual buy and sell,
// withdrawal and the default trade amount.
type TradeScreen struct {
	svc    *ui.Services
	route  ui.Route
	coin   amount.Coin
	width  int
	height int
	keyMap ui.KeyMap

	form    *component.Form
	helpBar *component.HelpBar

	submitting bool
	notice     notice
}

// NewTradeScreen creates the form for route, which must be one of
// RouteCustomBuy, RouteCustomSell, RouteWithdraw or RouteTradeAmount.
func NewTradeScreen(svc *ui.Services, route ui.Route) *TradeScreen {
	keyMap := ui.DefaultKeyMap()
	s := &TradeScreen{
		svc:     svc,
		route:   route,
		coin:    svc.Coin(),
		keyMap:  keyMap,
		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(route)),
	}
	s.form = s.buildForm()
	return s
}

func (s *TradeScreen) buildForm() *component.Form {
	sym := s.coin.Symbol()
	f := component.NewForm()

	switch s.route {
	case ui.RouteCustomBuy, ui.RouteCustomSell:
		f.AddField(fieldToken, component.FieldTypeText, "Token Address", true, "Token mint or contract").
			AddField(fieldAmount, component.FieldTypeNumber, amountLabel(s.route, sym), true, "0.0").
			AddField(fieldSlippage, component.FieldTypeNumber, "Slippage (%)", true, "1-100")
		f.SetFieldValue(fieldSlippage, "1")
	case ui.RouteWithdraw:
		f.AddField(fieldDestination, component.FieldTypeText, "Destination Address", true, sym+" address").
			AddField(fieldAmount, component.FieldTypeNumber, "Amount ("+sym+")", true, "0.0")
	default:
		minimum := s.svc.Tracker.MinTradeAmount()
		f.AddField(fieldAmount, component.FieldTypeNumber, "Trade Amount ("+sym+")", true, minimum.String()).
			SetFieldHint(fieldAmount, fmt.Sprintf("Minimum %s %s per copied trade", minimum.String(), sym))
	}
	return f
}

func amountLabel(route ui.Route, sym string) string {
	if route == ui.RouteCustomSell {
		return "Amount (tokens)"
	}
	return "Amount (" + sym + ")"
}

func (s *TradeScreen) title() string {
	sym := s.coin.Symbol()
	switch s.route {
	case ui.RouteCustomBuy:
		return "Custom Buy · " + sym
	case ui.RouteCustomSell:
		return "Custom Sell · " + sym
	case ui.RouteWithdraw:
		return "Withdraw · " + sym
	default:
		return "Trade Amount · " + sym
	}
}

// Init initializes the screen
func (s *TradeScreen) Init() tea.Cmd {
	return s.form.Init()
}

// CapturesEsc keeps the screen open while a request is in flight
func (s *TradeScreen) CapturesEsc() bool {
	return s.submitting
}

// Update handles screen updates
func (s *TradeScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s.notice.dismiss(msg, s.keyMap.Dismiss) {
			return s, nil
		}
		if s.submitting {
			return s, nil
		}
		if key.Matches(msg, s.keyMap.Save) ||
			(key.Matches(msg, s.keyMap.Enter) && s.form.AtLastField()) {
			return s, s.submit()
		}
		var cmd tea.Cmd
		s.form, cmd = s.form.Update(msg)
		return s, cmd

	case tradeResultMsg:
		s.submitting = false
		if msg.err != nil {
			text, cmd := report(msg.err, "Request failed")
			if cmd != nil {
				return s, cmd
			}
			return s, s.notice.fail(text)
		}
		s.svc.Cache.Invalidate(s.coin)
		if s.route != ui.RouteTradeAmount {
			s.form.Reset()
			if s.route == ui.RouteCustomBuy || s.route == ui.RouteCustomSell {
				s.form.SetFieldValue(fieldSlippage, "1")
			}
		}
		return s, s.notice.success(msg.message)

	case clearNoticeMsg:
		s.notice.clear(msg)
	}
	return s, nil
}

func (s *TradeScreen) submit() tea.Cmd {
	if !s.form.Validate() {
		return nil
	}
	s.submitting = true

	values := s.form.GetValues()
	token := strings.TrimSpace(values[fieldToken])
	raw := strings.TrimSpace(values[fieldAmount])
	slippage := strings.TrimSpace(values[fieldSlippage])
	dest := strings.TrimSpace(values[fieldDestination])

	svc, coin, route := s.svc, s.coin, s.route
	return func() tea.Msg {
		var (
			message string
			err     error
		)
		switch route {
		case ui.RouteCustomBuy:
			message, err = svc.Tracker.CustomBuy(svc.Ctx, coin, token, raw, slippage)
		case ui.RouteCustomSell:
			message, err = svc.Tracker.CustomSell(svc.Ctx, coin, token, raw, slippage)
		case ui.RouteWithdraw:
			message, err = svc.Tracker.Withdraw(svc.Ctx, coin, dest, raw)
		default:
			message, err = svc.Tracker.UpdateTradeAmount(svc.Ctx, coin, raw)
		}
		if err != nil {
			svc.Logger.Warn("Wallet action failed", zap.Stringer("route", route), zap.Error(err))
		}
		return tradeResultMsg{message: message, err: err}
	}
}

// View renders the form
func (s *TradeScreen) View() string {
	var b strings.Builder
	b.WriteString(s.form.View())

	if s.submitting {
		b.WriteString(style.MutedStyle.Render("Submitting..."))
		b.WriteString("\n")
	}
	if n := s.notice.view(); n != "" {
		b.WriteString(n)
		b.WriteString("\n")
	}

	panel := style.ActivePanelStyle.Render(b.String())
	return frame(s.width, s.title(), panel, s.helpBar.SetWidth(s.width).View())
}

// SetSize sets the screen dimensions
func (s *TradeScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.form.SetSize(width-4, height)
	s.helpBar.SetWidth(width)
}
