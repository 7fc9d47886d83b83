package api

import (
	"bytes"
	"encoding/json"
)

// Tokens is the access/refresh pair issued by the backend
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Wallet struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	SolanaPublicKey string `json:"solana_public_key"`
	// Present only in the login response; never persisted locally.
	SolanaPrivateKey string `json:"solana_private_key,omitempty"`
	SolanaBalance    string `json:"solana_balance"`
}

// TokenPair is the login/signup/refresh response
type TokenPair struct {
	Tokens
	Wallet *Wallet `json:"wallet,omitempty"`
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserProfile struct {
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	TradeAmount    float64 `json:"trade_amount"`
	PublicAddress  string  `json:"public_address"`
	PrivateKey     string  `json:"private_key"`
	SolBalance     string  `json:"sol_balance"`
	BnbBalance     string  `json:"bnb_balance"`
	TotalTrades    int     `json:"total_trades"`
	WinRate        float64 `json:"win_rate"`
	ActiveTrades   int     `json:"active_trades"`
	PortfolioValue string  `json:"portfolio_value"`
	ActiveMirrors  int     `json:"active_mirrors"`
	FailedTrades   *int    `json:"failed_trades,omitempty"`
}

type TrackedWallet struct {
	ID                int      `json:"id"`
	UserID            string   `json:"user_id"`
	WalletAddress     string   `json:"wallet_address"`
	IsActive          bool     `json:"is_active"`
	TotalMatches      int      `json:"total_matches"`
	SuccessfulTrades  int      `json:"successful_trades"`
	FailedTrades      int      `json:"failed_trades"`
	TotalVolumeTraded float64  `json:"total_volume_traded"`
	SuccessRate       *float64 `json:"success_rate,omitempty"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
	AllowBuys         *bool    `json:"allow_buys,omitempty"`
	SwapStrategy      string   `json:"swap_strategy,omitempty"`
	IsDefault         *bool    `json:"is_default,omitempty"`
	Slippage          *float64 `json:"slippage,omitempty"`
}

type TrackedWalletCreate struct {
	WalletAddress string `json:"wallet_address"`
	IsActive      *bool  `json:"is_active,omitempty"`
}

type CopyTradingLog struct {
	ID                   int      `json:"id"`
	UserID               *int     `json:"user_id"`
	EventType            string   `json:"event_type"`
	TransactionSignature *string  `json:"transaction_signature"`
	WalletAddress        *string  `json:"wallet_address"`
	TargetToken          *string  `json:"target_token"`
	TokenName            *string  `json:"token_name"`
	TokenDecimals        *int     `json:"token_decimals"`
	AmountIn             *string  `json:"amount_in"`
	AmountOut            *string  `json:"amount_out"`
	FeeAmount            *string  `json:"fee_amount"`
	Status               *string  `json:"status"`
	ErrorMessage         *string  `json:"error_message"`
	EventData            *string  `json:"event_data"`
	CreatedAt            string   `json:"created_at"`
	PnL                  *float64 `json:"pnl,omitempty"`
}

type WalletStats struct {
	WalletAddress     string  `json:"wallet_address"`
	IsActive          bool    `json:"is_active"`
	TotalMatches      int     `json:"total_matches"`
	SuccessfulTrades  int     `json:"successful_trades"`
	FailedTrades      int     `json:"failed_trades"`
	SuccessRate       float64 `json:"success_rate"`
	TotalVolumeTraded float64 `json:"total_volume_traded"`
}

type CopyTradingStats struct {
	TotalTrackedWallets int           `json:"total_tracked_wallets"`
	ActiveWallets       int           `json:"active_wallets"`
	TotalMatches        int           `json:"total_matches"`
	SuccessfulTrades    int           `json:"successful_trades"`
	FailedTrades        int           `json:"failed_trades"`
	SuccessRate         float64       `json:"success_rate"`
	TotalVolumeTraded   float64       `json:"total_volume_traded"`
	WalletStats         []WalletStats `json:"wallet_stats"`
}

type TakeProfitLevel struct {
	ProfitPercentage float64 `json:"profit_percentage"`
	SellPercentage   float64 `json:"sell_percentage"`
}

type StopLossLevel struct {
	LossPercentage float64 `json:"loss_percentage"`
	SellPercentage float64 `json:"sell_percentage"`
}

// WalletSettings is the copy-trading settings document, shared by the global
// endpoint and the per-mirror endpoint. Optional caps are pointers so an
// unset cap is omitted rather than sent as zero.
type WalletSettings struct {
	SwapStrategy            string            `json:"swap_strategy"`
	BuyStrategy             string            `json:"buy_strategy,omitempty"`
	AllowBuys               *bool             `json:"allow_buys,omitempty"`
	BuyTheDip               bool              `json:"buy_the_dip"`
	BuyDipPercentage        float64           `json:"buy_dip_percentage"`
	MaxDipPercentage        float64           `json:"max_dip_percentage"`
	BuyDipTimeout           float64           `json:"buy_dip_timeout"`
	DipRecovery             bool              `json:"dip_recovery"`
	DipRecoveryPercentage   float64           `json:"dip_recovery_percentage"`
	DipRecoveryTimeout      float64           `json:"dip_recovery_timeout"`
	Slippage                *float64          `json:"slippage,omitempty"`
	MaxBuysPerMirrorPerHour *int              `json:"max_buys_per_mirror_per_hour,omitempty"`
	MaxBuysPerMirrorPerDay  *int              `json:"max_buys_per_mirror_per_day,omitempty"`
	MaxBuysPerTokenPerDay   *int              `json:"max_buys_per_token_per_day,omitempty"`
	TakeProfitLevels        []TakeProfitLevel `json:"take_profit_levels"`
	StopLossLevels          []StopLossLevel   `json:"stop_loss_levels"`
	TPSLIsActive            *bool             `json:"tp_sl_is_active,omitempty"`
}

// MessageResponse is the generic {message} success body
type MessageResponse struct {
	Message string `json:"message"`
}

type TradeAmountRequest struct {
	TradeAmount float64 `json:"trade_amount"`
}

type WithdrawRequest struct {
	Destination string  `json:"destination"`
	Amount      float64 `json:"amount"`
}

// CustomTradeRequest is the body of a manual buy or sell
type CustomTradeRequest struct {
	TokenAddress string  `json:"token_address"`
	Amount       float64 `json:"amount"`
	Slippage     float64 `json:"slippage"`
}

// WalletPage is one page of tracked wallets. Older backends return a bare
// array; it is treated as a single complete page.
type WalletPage struct {
	Wallets    []TrackedWallet `json:"wallets"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
}

func (p *WalletPage) UnmarshalJSON(data []byte) error {
	if isArray(data) {
		var wallets []TrackedWallet
		if err := json.Unmarshal(data, &wallets); err != nil {
			return err
		}
		*p = WalletPage{Wallets: wallets, Total: len(wallets), Page: 1, TotalPages: 1}
		return nil
	}

	type plain WalletPage
	var out plain
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*p = WalletPage(out)
	p.normalize()
	return nil
}

func (p *WalletPage) normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}
	if p.Total < len(p.Wallets) {
		p.Total = len(p.Wallets)
	}
}

// LogPage is one page of copy-trading logs
type LogPage struct {
	Logs       []CopyTradingLog `json:"logs"`
	TotalCount int              `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

func (p *LogPage) UnmarshalJSON(data []byte) error {
	if isArray(data) {
		var logs []CopyTradingLog
		if err := json.Unmarshal(data, &logs); err != nil {
			return err
		}
		*p = LogPage{Logs: logs, TotalCount: len(logs), Page: 1, Limit: len(logs), TotalPages: 1}
		return nil
	}

	type plain LogPage
	var out plain
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*p = LogPage(out)
	if p.Page < 1 {
		p.Page = 1
	}
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}
	if p.TotalCount < len(p.Logs) {
		p.TotalCount = len(p.Logs)
	}
	return nil
}

func isArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}
