package ui

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
	"github.com/rovshanmuradov/prometheus-client/internal/api"
	"github.com/rovshanmuradov/prometheus-client/internal/export"
	"github.com/rovshanmuradov/prometheus-client/internal/logger"
	"github.com/rovshanmuradov/prometheus-client/internal/metrics"
	"github.com/rovshanmuradov/prometheus-client/internal/settings"
	"github.com/rovshanmuradov/prometheus-client/internal/tracker"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/state"
)

// Authenticator starts and ends sessions
type Authenticator interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.TokenPair, error)
	Signup(ctx context.Context, req api.SignupRequest) (*api.TokenPair, error)
	Logout(ctx context.Context) error
}

// SessionReader exposes the persisted session to screens
type SessionReader interface {
	Authenticated(ctx context.Context) bool
	User(ctx context.Context) (*api.User, error)
}

// Services gives screens access to the client's collaborators
type Services struct {
	Ctx      context.Context
	Auth     Authenticator
	Session  SessionReader
	Settings *settings.Controller
	Tracker  *tracker.Service
	Exporter *export.LogExporter
	Recent   *logger.RecentBuffer
	Cache    *state.DashboardCache
	Logger   *zap.Logger
	// Metrics is optional; the dashboard shows API totals when set
	Metrics *metrics.Recorder

	ExportDir string

	mu   sync.RWMutex
	coin amount.Coin
}

// NewServices wires the default collaborators
func NewServices(
	ctx context.Context,
	auth Authenticator,
	session SessionReader,
	settingsCtl *settings.Controller,
	trackerSvc *tracker.Service,
	exporter *export.LogExporter,
	recent *logger.RecentBuffer,
	exportDir string,
	coin amount.Coin,
	logger *zap.Logger,
) *Services {
	return &Services{
		Ctx:       ctx,
		Auth:      auth,
		Session:   session,
		Settings:  settingsCtl,
		Tracker:   trackerSvc,
		Exporter:  exporter,
		Recent:    recent,
		Cache:     state.NewDashboardCache(logger),
		ExportDir: exportDir,
		coin:      coin,
		Logger:    logger.Named("ui"),
	}
}

// Coin returns the chain the dashboard currently shows
func (s *Services) Coin() amount.Coin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coin
}

// SwitchCoin toggles between SOL and BNB and returns the new coin
func (s *Services) SwitchCoin() amount.Coin {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coin = s.coin.Other()
	return s.coin
}
