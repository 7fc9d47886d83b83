package tracker

import (
	"strings"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
	"github.com/rovshanmuradov/prometheus-client/internal/api"
)

// Known copy-trading event types
const (
	EventTrackedWalletPurchase = "tracked_wallet_purchase"
	EventUserPurchase          = "user_purchase"
	EventUserSell              = "user_sell"
	EventAdminFee              = "admin_fee"
)

// Log statuses
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusPending = "pending"
)

// IsBuy reports whether the event spent native coin to acquire a token
func IsBuy(log api.CopyTradingLog) bool {
	return log.EventType == EventTrackedWalletPurchase || log.EventType == EventUserPurchase
}

// EventLabel renders an event type for display: "user_sell" becomes "USER SELL"
func EventLabel(eventType string) string {
	if eventType == "" {
		return "UNKNOWN EVENT"
	}
	return strings.ToUpper(strings.ReplaceAll(eventType, "_", " "))
}

// Status returns the log status, treating a missing one as pending
func Status(log api.CopyTradingLog) string {
	if log.Status == nil || *log.Status == "" {
		return StatusPending
	}
	return *log.Status
}

// Sent formats amount_in with its unit. Buys send native coin, every other
// event sends the token.
func Sent(log api.CopyTradingLog, coin amount.Coin) string {
	return leg(log, log.AmountIn, coin, !IsBuy(log))
}

// Received formats amount_out with its unit
func Received(log api.CopyTradingLog, coin amount.Coin) string {
	return leg(log, log.AmountOut, coin, IsBuy(log))
}

// Fee formats the fee, always in native units
func Fee(log api.CopyTradingLog, coin amount.Coin) string {
	if log.FeeAmount == nil || *log.FeeAmount == "" {
		return amount.NotAvailable
	}
	return amount.FormatNative(*log.FeeAmount, coin) + " " + coin.Symbol()
}

func leg(log api.CopyTradingLog, raw *string, coin amount.Coin, isToken bool) string {
	if raw == nil || *raw == "" {
		return amount.NotAvailable
	}

	var decimals *int
	if isToken {
		decimals = log.TokenDecimals
	}
	out := amount.Format(*raw, coin, isToken, decimals)

	if isToken && log.TokenName != nil && *log.TokenName != "" {
		return out + " " + *log.TokenName
	}
	return out + " " + coin.Symbol()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Token returns the target token address of a log, or ""
func Token(log api.CopyTradingLog) string {
	return deref(log.TargetToken)
}

// Wallet returns the mirrored wallet address of a log, or ""
func Wallet(log api.CopyTradingLog) string {
	return deref(log.WalletAddress)
}
