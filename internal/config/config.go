// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
)

type Config struct {
	APIBaseURL       string `mapstructure:"api_base_url"`
	MinTradeAmount   string `mapstructure:"min_trade_amount"`
	DefaultCoin      string `mapstructure:"default_coin"`
	StoragePath      string `mapstructure:"storage_path"`
	LogFile          string `mapstructure:"log_file"`
	RequestTimeoutMs int    `mapstructure:"request_timeout_ms"`
	Retries          int    `mapstructure:"retries"`
	PageSize         int    `mapstructure:"page_size"`
	ExportDir        string `mapstructure:"export_dir"`
	DebugLogging     bool   `mapstructure:"debug_logging"`
}

const (
	EnvPrefix               = "PROMETHEUS"
	DefaultAPIBaseURL       = "http://localhost:8000"
	DefaultMinTradeAmount   = "0.1"
	DefaultRequestTimeoutMs = 30000
	DefaultRetries          = 3
	DefaultPageSize         = 10
	maxPageSize             = 100
)

// LoadConfig reads the optional config file at path, then applies
// PROMETHEUS_* environment overrides. An empty path means defaults plus env.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"api_base_url":       DefaultAPIBaseURL,
		"min_trade_amount":   DefaultMinTradeAmount,
		"default_coin":       string(amount.CoinSOL),
		"storage_path":       filepath.Join(dataDir(), "session.db"),
		"log_file":           filepath.Join(dataDir(), "logs", "prometheus.log"),
		"request_timeout_ms": DefaultRequestTimeoutMs,
		"retries":            DefaultRetries,
		"page_size":          DefaultPageSize,
		"export_dir":         "exports",
		"debug_logging":      false,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	return &cfg, validateConfig(&cfg)
}

// RequestTimeout returns the per-request HTTP timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// Coin returns the coin the dashboard opens with
func (c *Config) Coin() amount.Coin {
	coin, err := amount.ParseCoin(c.DefaultCoin)
	if err != nil {
		return amount.CoinSOL
	}
	return coin
}

// MinTrade returns the minimum trade amount as a decimal
func (c *Config) MinTrade() decimal.Decimal {
	d, err := decimal.NewFromString(c.MinTradeAmount)
	if err != nil {
		return decimal.RequireFromString(DefaultMinTradeAmount)
	}
	return d
}

func validateConfig(cfg *Config) error {
	if err := validateURLWithCache(cfg.APIBaseURL, "http"); err != nil {
		return fmt.Errorf("invalid api_base_url: %w", err)
	}
	if _, err := amount.ParseCoin(cfg.DefaultCoin); err != nil {
		return fmt.Errorf("invalid default_coin: %w", err)
	}
	if d, err := decimal.NewFromString(cfg.MinTradeAmount); err != nil || d.IsNegative() {
		return errors.New("invalid min_trade_amount")
	}
	if cfg.StoragePath == "" {
		return errors.New("storage_path is empty")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.RequestTimeoutMs <= 0 {
		return errors.New("invalid request_timeout_ms")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.PageSize <= 0 || cfg.PageSize > maxPageSize {
		return errors.New("invalid page_size")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func dataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "prometheus")
	}
	return ".prometheus"
}
