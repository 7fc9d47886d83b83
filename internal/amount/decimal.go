// internal/amount/decimal.go
package amount

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyAmount is returned for blank user input
	ErrEmptyAmount = errors.New("amount is required")
	// ErrNegativeAmount is returned for amounts below zero
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrTooPrecise is returned when a display amount has more digits than the token scale
	ErrTooPrecise = errors.New("amount has more fractional digits than the token supports")
)

// ToBaseUnits expands a human-readable amount back into integer base units
func ToBaseUnits(display string, decimals int) (*big.Int, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return nil, fmt.Errorf("unsupported token decimals %d", decimals)
	}
	d, err := parseDecimal(display)
	if err != nil {
		return nil, err
	}

	scaled := d.Shift(int32(decimals))
	if !scaled.IsInteger() {
		return nil, ErrTooPrecise
	}
	return scaled.BigInt(), nil
}

// ParseMinimum parses a user-entered amount and checks it against a floor.
// The returned error message is meant for display.
func ParseMinimum(raw string, minimum decimal.Decimal, coin Coin) (decimal.Decimal, error) {
	d, err := parseDecimal(raw)
	if err != nil || d.LessThan(minimum) {
		return decimal.Zero, fmt.Errorf("Trade amount must be at least %s %s", minimum.String(), coin.Symbol())
	}
	return d, nil
}

// ParsePositive parses a user-entered amount that must be strictly positive
func ParsePositive(raw string) (decimal.Decimal, error) {
	d, err := parseDecimal(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be greater than zero")
	}
	return d, nil
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return d, nil
}
