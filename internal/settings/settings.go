// Package settings is the copy-trading settings form controller. It loads
// the stored settings into an editable State, and normalizes and saves them.
package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
	"github.com/rovshanmuradov/prometheus-client/internal/api"
	"github.com/rovshanmuradov/prometheus-client/internal/ladder"
)

// SuccessTTL is how long a save confirmation stays on screen
const SuccessTTL = 5 * time.Second

const (
	SwapStrategyNone      = "none"
	SwapStrategyFixedBuys = "fixed_buys"
	BuyStrategyConstant   = "constant_size"

	msgSaveFailed       = "Failed to update settings"
	msgMirrorSaveFailed = "Failed to update wallet settings"
	msgSaved            = "Settings updated successfully"
	msgMirrorSaved      = "Wallet settings updated successfully!"
)

// Option is a selectable value with its label
type Option struct {
	Value string
	Label string
}

// SwapStrategies lists the swap strategies the backend understands
var SwapStrategies = []Option{
	{Value: SwapStrategyNone, Label: "None"},
	{Value: SwapStrategyFixedBuys, Label: "Fixed Buys"},
}

// Target selects whose settings are edited: the account-wide settings of a
// coin when WalletAddress is empty, otherwise one mirrored wallet's.
type Target struct {
	Coin          amount.Coin
	WalletAddress string
}

// IsMirror reports whether the target is a single mirrored wallet
func (t Target) IsMirror() bool {
	return t.WalletAddress != ""
}

func (t Target) String() string {
	if t.IsMirror() {
		return fmt.Sprintf("%s/%s", t.Coin, t.WalletAddress)
	}
	return string(t.Coin)
}

// State is the editable form
type State struct {
	Target Target

	SwapStrategy string
	BuyStrategy  string
	AllowBuys    *bool

	BuyTheDip             bool
	BuyDipPercentage      float64
	MaxDipPercentage      float64
	BuyDipTimeout         float64
	DipRecovery           bool
	DipRecoveryPercentage float64
	DipRecoveryTimeout    float64

	// Slippage keeps the raw text so an empty field survives editing
	Slippage string

	MaxBuysPerMirrorPerHour *int
	MaxBuysPerMirrorPerDay  *int
	MaxBuysPerTokenPerDay   *int

	TakeProfit   ladder.Ladder
	StopLoss     ladder.Ladder
	TPSLIsActive bool
}

// LadderWarnings returns the advisory messages of both ladders
func (s *State) LadderWarnings() []string {
	var out []string
	if s.TakeProfit.Message != "" {
		out = append(out, s.TakeProfit.Kind.String()+": "+s.TakeProfit.Message)
	}
	if s.StopLoss.Message != "" {
		out = append(out, s.StopLoss.Kind.String()+": "+s.StopLoss.Message)
	}
	return out
}

// Defaults returns the document the form starts from before the backend
// answers. Fields the backend omits keep these values.
func Defaults() api.WalletSettings {
	slippage := 1.0
	return api.WalletSettings{
		SwapStrategy:          SwapStrategyNone,
		BuyStrategy:           BuyStrategyConstant,
		BuyDipPercentage:      10,
		MaxDipPercentage:      50,
		BuyDipTimeout:         300,
		DipRecoveryPercentage: 5,
		DipRecoveryTimeout:    600,
		Slippage:              &slippage,
	}
}

// FromDocument converts a stored settings document into form state
func FromDocument(target Target, doc api.WalletSettings) *State {
	st := &State{
		Target:                  target,
		SwapStrategy:            doc.SwapStrategy,
		BuyStrategy:             doc.BuyStrategy,
		AllowBuys:               doc.AllowBuys,
		BuyTheDip:               doc.BuyTheDip,
		BuyDipPercentage:        doc.BuyDipPercentage,
		MaxDipPercentage:        doc.MaxDipPercentage,
		BuyDipTimeout:           doc.BuyDipTimeout,
		DipRecovery:             doc.DipRecovery,
		DipRecoveryPercentage:   doc.DipRecoveryPercentage,
		DipRecoveryTimeout:      doc.DipRecoveryTimeout,
		MaxBuysPerMirrorPerHour: doc.MaxBuysPerMirrorPerHour,
		MaxBuysPerMirrorPerDay:  doc.MaxBuysPerMirrorPerDay,
		MaxBuysPerTokenPerDay:   doc.MaxBuysPerTokenPerDay,
		TPSLIsActive:            true,
	}

	if st.SwapStrategy == "" {
		st.SwapStrategy = SwapStrategyNone
	}
	if doc.Slippage != nil {
		st.Slippage = FormatFloat(*doc.Slippage)
	}
	if doc.TPSLIsActive != nil {
		st.TPSLIsActive = *doc.TPSLIsActive
	}

	tp := make([]ladder.Level, 0, len(doc.TakeProfitLevels))
	for _, l := range doc.TakeProfitLevels {
		tp = append(tp, ladder.Level{Trigger: l.ProfitPercentage, Sell: l.SellPercentage})
	}
	sl := make([]ladder.Level, 0, len(doc.StopLossLevels))
	for _, l := range doc.StopLossLevels {
		sl = append(sl, ladder.Level{Trigger: l.LossPercentage, Sell: l.SellPercentage})
	}
	st.TakeProfit = ladder.FromLevels(ladder.TakeProfit, tp)
	st.StopLoss = ladder.FromLevels(ladder.StopLoss, sl)

	return st
}

// Normalize converts form state into the payload sent to the backend. Empty
// slippage becomes 0, unset caps stay absent, and ladders are sent as they
// are, placeholder rows included.
func Normalize(st *State) api.WalletSettings {
	slippage := 0.0
	if st.Slippage != "" {
		slippage = FloatOrZero(st.Slippage)
	}
	active := st.TPSLIsActive

	doc := api.WalletSettings{
		SwapStrategy:            st.SwapStrategy,
		BuyStrategy:             st.BuyStrategy,
		AllowBuys:               st.AllowBuys,
		BuyTheDip:               st.BuyTheDip,
		BuyDipPercentage:        st.BuyDipPercentage,
		MaxDipPercentage:        st.MaxDipPercentage,
		BuyDipTimeout:           st.BuyDipTimeout,
		DipRecovery:             st.DipRecovery,
		DipRecoveryPercentage:   st.DipRecoveryPercentage,
		DipRecoveryTimeout:      st.DipRecoveryTimeout,
		Slippage:                &slippage,
		MaxBuysPerMirrorPerHour: st.MaxBuysPerMirrorPerHour,
		MaxBuysPerMirrorPerDay:  st.MaxBuysPerMirrorPerDay,
		MaxBuysPerTokenPerDay:   st.MaxBuysPerTokenPerDay,
		TakeProfitLevels:        make([]api.TakeProfitLevel, 0, len(st.TakeProfit.Levels)),
		StopLossLevels:          make([]api.StopLossLevel, 0, len(st.StopLoss.Levels)),
		TPSLIsActive:            &active,
	}
	for _, l := range st.TakeProfit.Levels {
		doc.TakeProfitLevels = append(doc.TakeProfitLevels, api.TakeProfitLevel{ProfitPercentage: l.Trigger, SellPercentage: l.Sell})
	}
	for _, l := range st.StopLoss.Levels {
		doc.StopLossLevels = append(doc.StopLossLevels, api.StopLossLevel{LossPercentage: l.Trigger, SellPercentage: l.Sell})
	}
	return doc
}

// Backend is the part of the API client the controller needs
type Backend interface {
	WalletSettings(ctx context.Context, coin amount.Coin, walletAddress string, into *api.WalletSettings) error
	UpdateWalletSettings(ctx context.Context, coin amount.Coin, walletAddress string, settings *api.WalletSettings) (*api.MessageResponse, error)
}

// SaveError carries the message shown when a save fails. It unwraps to the
// underlying error so session expiry stays detectable.
type SaveError struct {
	Message string
	Err     error
}

func (e *SaveError) Error() string { return e.Message }
func (e *SaveError) Unwrap() error { return e.Err }

// Controller loads and saves settings
type Controller struct {
	backend Backend
	logger  *zap.Logger
}

func NewController(backend Backend, logger *zap.Logger) *Controller {
	return &Controller{backend: backend, logger: logger.Named("settings")}
}

// Load fetches the settings of target. Ladders the backend has never stored
// come back as a single zero level; an absent tp_sl_is_active means active.
func (c *Controller) Load(ctx context.Context, target Target) (*State, error) {
	doc := Defaults()
	if err := c.backend.WalletSettings(ctx, target.Coin, target.WalletAddress, &doc); err != nil {
		c.logger.Warn("Failed to load settings", zap.Stringer("target", target), zap.Error(err))
		return nil, err
	}

	st := FromDocument(target, doc)
	c.logger.Debug("Settings loaded",
		zap.Stringer("target", target),
		zap.Int("take_profit_levels", len(st.TakeProfit.Levels)),
		zap.Int("stop_loss_levels", len(st.StopLoss.Levels)))
	return st, nil
}

// Save normalizes st and stores it. The returned string is the message to
// show on success. Ladder warnings are advisory and do not block saving.
func (c *Controller) Save(ctx context.Context, st *State) (string, error) {
	doc := Normalize(st)

	if warnings := st.LadderWarnings(); len(warnings) > 0 {
		c.logger.Info("Saving settings with ladder warnings", zap.Strings("warnings", warnings))
	}

	resp, err := c.backend.UpdateWalletSettings(ctx, st.Target.Coin, st.Target.WalletAddress, &doc)
	if err != nil {
		fallback := msgSaveFailed
		if st.Target.IsMirror() {
			fallback = msgMirrorSaveFailed
		}
		c.logger.Warn("Failed to save settings", zap.Stringer("target", st.Target), zap.Error(err))
		if errors.Is(err, api.ErrSessionExpired) {
			return "", err
		}
		return "", &SaveError{Message: api.Detail(err, fallback), Err: err}
	}

	c.logger.Info("Settings saved", zap.Stringer("target", st.Target))
	if resp != nil && resp.Message != "" {
		return resp.Message, nil
	}
	if st.Target.IsMirror() {
		return msgMirrorSaved, nil
	}
	return msgSaved, nil
}

// ValidateSlippage checks a manual-trade slippage entry
func ValidateSlippage(raw string) (float64, error) {
	v := FloatOrZero(raw)
	if v < 1 || v > 100 {
		return 0, errors.New("Slippage must be between 1 and 100 percent")
	}
	return v, nil
}
