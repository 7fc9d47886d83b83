// Package tracker covers the copy-trading dashboard: mirrored wallets,
// statistics, logs, and the manual wallet actions.
package tracker

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/prometheus-client/internal/address"
	"github.com/rovshanmuradov/prometheus-client/internal/amount"
	"github.com/rovshanmuradov/prometheus-client/internal/api"
	"github.com/rovshanmuradov/prometheus-client/internal/settings"
)

// Backend is the part of the API client the tracker uses
type Backend interface {
	Profile(ctx context.Context, coin amount.Coin) (*api.UserProfile, error)
	Stats(ctx context.Context, coin amount.Coin) (*api.CopyTradingStats, error)
	TrackedWallets(ctx context.Context, coin amount.Coin, page, limit int) (*api.WalletPage, error)
	Logs(ctx context.Context, coin amount.Coin, page, limit int) (*api.LogPage, error)
	TrackWallet(ctx context.Context, coin amount.Coin, req api.TrackedWalletCreate) (*api.TrackedWallet, error)
	UntrackWallet(ctx context.Context, coin amount.Coin, walletAddress string) (*api.MessageResponse, error)
	UpdateTradeAmount(ctx context.Context, coin amount.Coin, tradeAmount float64) (*api.MessageResponse, error)
	Withdraw(ctx context.Context, coin amount.Coin, req api.WithdrawRequest) (*api.MessageResponse, error)
	CustomBuy(ctx context.Context, coin amount.Coin, req api.CustomTradeRequest) (*api.MessageResponse, error)
	CustomSell(ctx context.Context, coin amount.Coin, req api.CustomTradeRequest) (*api.MessageResponse, error)
}

// ActionError carries the message shown for a failed action
type ActionError struct {
	Message string
	Err     error
}

func (e *ActionError) Error() string { return e.Message }
func (e *ActionError) Unwrap() error { return e.Err }

func actionError(err error, fallback string) error {
	if err == nil {
		return nil
	}
	return &ActionError{Message: api.Detail(err, fallback), Err: err}
}

// ErrFieldsRequired is returned when a manual trade form is incomplete
var ErrFieldsRequired = errors.New("All fields are required")

// IsSessionExpired reports whether err means the user must sign in again
func IsSessionExpired(err error) bool {
	return errors.Is(err, api.ErrSessionExpired) || api.IsUnauthorized(err)
}

// Options configures a Service
type Options struct {
	PageSize       int
	MinTradeAmount decimal.Decimal
}

// Service runs dashboard reads and wallet actions for the signed-in user
type Service struct {
	backend  Backend
	pageSize int
	minTrade decimal.Decimal
	logger   *zap.Logger
}

func NewService(backend Backend, opts Options, logger *zap.Logger) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	return &Service{
		backend:  backend,
		pageSize: opts.PageSize,
		minTrade: opts.MinTradeAmount,
		logger:   logger.Named("tracker"),
	}
}

// PageSize is the page length used for wallets and logs
func (s *Service) PageSize() int {
	return s.pageSize
}

// MinTradeAmount is the smallest accepted trade amount
func (s *Service) MinTradeAmount() decimal.Decimal {
	return s.minTrade
}

// Dashboard is everything the main screen shows for one coin
type Dashboard struct {
	Coin    amount.Coin
	Profile *api.UserProfile
	Stats   *api.CopyTradingStats
	Wallets *api.WalletPage
}

// Dashboard loads the profile, statistics and the first page of mirrored
// wallets concurrently, then overlays the statistics onto the wallets.
func (s *Service) Dashboard(ctx context.Context, coin amount.Coin) (*Dashboard, error) {
	out := &Dashboard{Coin: coin}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.backend.Profile(gctx, coin)
		out.Profile = p
		return err
	})
	g.Go(func() error {
		st, err := s.backend.Stats(gctx, coin)
		out.Stats = st
		return err
	})
	g.Go(func() error {
		w, err := s.backend.TrackedWallets(gctx, coin, 1, s.pageSize)
		out.Wallets = w
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("Failed to load dashboard", zap.String("coin", string(coin)), zap.Error(err))
		return nil, actionError(err, "Failed to load dashboard")
	}

	out.Wallets.Wallets = MergeStats(out.Wallets.Wallets, out.Stats)
	return out, nil
}

// Wallets loads one page of mirrored wallets, overlaying stats when given
func (s *Service) Wallets(ctx context.Context, coin amount.Coin, page int, stats *api.CopyTradingStats) (*api.WalletPage, error) {
	wp, err := s.backend.TrackedWallets(ctx, coin, page, s.pageSize)
	if err != nil {
		return nil, actionError(err, "Failed to fetch tracked wallets")
	}
	wp.Wallets = MergeStats(wp.Wallets, stats)
	return wp, nil
}

// Logs loads one page of copy-trading events
func (s *Service) Logs(ctx context.Context, coin amount.Coin, page int) (*api.LogPage, error) {
	lp, err := s.backend.Logs(ctx, coin, page, s.pageSize)
	if err != nil {
		return nil, actionError(err, "Failed to fetch tracker logs")
	}
	return lp, nil
}

// AllLogs walks every log page, stopping after maxPages when maxPages > 0
func (s *Service) AllLogs(ctx context.Context, coin amount.Coin, maxPages int) ([]api.CopyTradingLog, error) {
	var all []api.CopyTradingLog
	for page := 1; ; page++ {
		lp, err := s.Logs(ctx, coin, page)
		if err != nil {
			return nil, err
		}
		all = append(all, lp.Logs...)

		if page >= lp.TotalPages || len(lp.Logs) == 0 || (maxPages > 0 && page >= maxPages) {
			break
		}
	}
	s.logger.Debug("Fetched logs", zap.String("coin", string(coin)), zap.Int("count", len(all)))
	return all, nil
}

// Track starts mirroring walletAddress
func (s *Service) Track(ctx context.Context, coin amount.Coin, walletAddress string) (string, error) {
	addr, err := address.Validate(coin, walletAddress)
	if err != nil {
		return "", &ActionError{Message: err.Error(), Err: err}
	}
	if err := s.track(ctx, coin, addr); err != nil {
		return "", actionError(err, "Failed to add wallet to tracking")
	}
	s.logger.Info("Wallet tracked", zap.String("coin", string(coin)), zap.String("wallet", addr))
	return "Wallet added to tracking successfully!", nil
}

// Resume re-activates a paused mirror
func (s *Service) Resume(ctx context.Context, coin amount.Coin, walletAddress string) (string, error) {
	if err := s.track(ctx, coin, walletAddress); err != nil {
		return "", actionError(err, "Failed to resume wallet tracking")
	}
	s.logger.Info("Wallet tracking resumed", zap.String("coin", string(coin)), zap.String("wallet", walletAddress))
	return "Wallet tracking resumed successfully!", nil
}

func (s *Service) track(ctx context.Context, coin amount.Coin, walletAddress string) error {
	active := true
	_, err := s.backend.TrackWallet(ctx, coin, api.TrackedWalletCreate{WalletAddress: walletAddress, IsActive: &active})
	return err
}

// Untrack stops mirroring walletAddress
func (s *Service) Untrack(ctx context.Context, coin amount.Coin, walletAddress string) (string, error) {
	if _, err := s.backend.UntrackWallet(ctx, coin, walletAddress); err != nil {
		return "", actionError(err, "Failed to stop wallet tracking")
	}
	s.logger.Info("Wallet untracked", zap.String("coin", string(coin)), zap.String("wallet", walletAddress))
	return "Wallet tracking stopped successfully!", nil
}

// UpdateTradeAmount validates raw against the configured minimum and stores it
func (s *Service) UpdateTradeAmount(ctx context.Context, coin amount.Coin, raw string) (string, error) {
	value, err := amount.ParseMinimum(raw, s.minTrade, coin)
	if err != nil {
		return "", &ActionError{Message: err.Error(), Err: err}
	}

	resp, err := s.backend.UpdateTradeAmount(ctx, coin, value.InexactFloat64())
	if err != nil {
		return "", actionError(err, "Failed to update trade amount")
	}
	return messageOr(resp, "Trade amount updated successfully!"), nil
}

// Withdraw sends native coin from the custodial wallet to destination
func (s *Service) Withdraw(ctx context.Context, coin amount.Coin, destination, rawAmount string) (string, error) {
	if strings.TrimSpace(destination) == "" || strings.TrimSpace(rawAmount) == "" {
		return "", &ActionError{Message: ErrFieldsRequired.Error(), Err: ErrFieldsRequired}
	}

	dest, err := address.Validate(coin, destination)
	if err != nil {
		return "", &ActionError{Message: err.Error(), Err: err}
	}
	value, err := amount.ParsePositive(rawAmount)
	if err != nil {
		return "", &ActionError{Message: err.Error(), Err: err}
	}
	if _, err := amount.ToBaseUnits(value.String(), amount.NativeDecimals(coin)); err != nil {
		return "", &ActionError{Message: err.Error(), Err: err}
	}

	resp, err := s.backend.Withdraw(ctx, coin, api.WithdrawRequest{Destination: dest, Amount: value.InexactFloat64()})
	if err != nil {
		return "", actionError(err, "Withdraw failed")
	}
	s.logger.Info("Withdrawal requested", zap.String("coin", string(coin)), zap.String("destination", dest))
	return messageOr(resp, "Withdrawal submitted"), nil
}

// CustomBuy places a manual buy of tokenAddress
func (s *Service) CustomBuy(ctx context.Context, coin amount.Coin, tokenAddress, rawAmount, rawSlippage string) (string, error) {
	req, err := customTrade(coin, tokenAddress, rawAmount, rawSlippage)
	if err != nil {
		return "", err
	}
	resp, err := s.backend.CustomBuy(ctx, coin, req)
	if err != nil {
		return "", actionError(err, "Buy failed")
	}
	return messageOr(resp, "Buy order submitted"), nil
}

// CustomSell places a manual sell of tokenAddress
func (s *Service) CustomSell(ctx context.Context, coin amount.Coin, tokenAddress, rawAmount, rawSlippage string) (string, error) {
	req, err := customTrade(coin, tokenAddress, rawAmount, rawSlippage)
	if err != nil {
		return "", err
	}
	resp, err := s.backend.CustomSell(ctx, coin, req)
	if err != nil {
		return "", actionError(err, "Sell failed")
	}
	return messageOr(resp, "Sell order submitted"), nil
}

func customTrade(coin amount.Coin, tokenAddress, rawAmount, rawSlippage string) (api.CustomTradeRequest, error) {
	if strings.TrimSpace(tokenAddress) == "" || strings.TrimSpace(rawAmount) == "" || strings.TrimSpace(rawSlippage) == "" {
		return api.CustomTradeRequest{}, &ActionError{Message: ErrFieldsRequired.Error(), Err: ErrFieldsRequired}
	}

	slippage, err := settings.ValidateSlippage(rawSlippage)
	if err != nil {
		return api.CustomTradeRequest{}, &ActionError{Message: err.Error(), Err: err}
	}
	token, err := address.Validate(coin, tokenAddress)
	if err != nil {
		return api.CustomTradeRequest{}, &ActionError{Message: err.Error(), Err: err}
	}
	value, err := amount.ParsePositive(rawAmount)
	if err != nil {
		return api.CustomTradeRequest{}, &ActionError{Message: err.Error(), Err: err}
	}

	return api.CustomTradeRequest{
		TokenAddress: token,
		Amount:       value.InexactFloat64(),
		Slippage:     slippage,
	}, nil
}

func messageOr(resp *api.MessageResponse, fallback string) string {
	if resp != nil && resp.Message != "" {
		return resp.Message
	}
	return fallback
}
