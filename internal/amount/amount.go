// internal/amount/amount.go
package amount

import (
	"fmt"
	"math/big"
	"strings"
)

// Coin identifies the chain a balance or trade belongs to
type Coin string

const (
	CoinSOL Coin = "sol"
	CoinBNB Coin = "bnb"
)

// NotAvailable is rendered for missing amounts
const NotAvailable = "N/A"

// ParseCoin converts user input into a Coin
func ParseCoin(s string) (Coin, error) {
	switch Coin(strings.ToLower(strings.TrimSpace(s))) {
	case CoinSOL:
		return CoinSOL, nil
	case CoinBNB:
		return CoinBNB, nil
	default:
		return "", fmt.Errorf("unsupported coin %q", s)
	}
}

// Symbol returns the ticker shown next to native amounts
func (c Coin) Symbol() string {
	return strings.ToUpper(string(c))
}

// Other returns the coin the dashboard switches to
func (c Coin) Other() Coin {
	if c == CoinBNB {
		return CoinSOL
	}
	return CoinBNB
}

// NativeDecimals returns the base-unit scale of the coin itself.
// SOL uses lamports (9), BNB uses wei (18).
func NativeDecimals(c Coin) int {
	if c == CoinBNB {
		return 18
	}
	return 9
}

// DisplayPrecision caps the fractional digits shown for a given scale
func DisplayPrecision(decimals int) int {
	switch decimals {
	case 18:
		return 8
	case 9:
		return 6
	default:
		return 4
	}
}

// MaxDecimals is the largest token scale Format accepts. A uint256 has 78
// digits, so no real token goes beyond 77.
const MaxDecimals = 77

// Format renders an integer base-unit amount as a decimal string.
//
// The token's own decimals are used when isToken is set and tokenDecimals is
// known, otherwise the coin's native decimals. Trailing fractional zeros are
// stripped and the remaining fraction is truncated (not rounded) to
// DisplayPrecision digits. Anything that does not parse as a non-negative
// integer, or comes with decimals outside 0..MaxDecimals, is returned
// unchanged.
func Format(raw string, coin Coin, isToken bool, tokenDecimals *int) string {
	if raw == "" {
		return NotAvailable
	}

	value, ok := new(big.Int).SetString(raw, 10)
	if !ok || value.Sign() < 0 {
		return raw
	}

	decimals := NativeDecimals(coin)
	if isToken && tokenDecimals != nil {
		decimals = *tokenDecimals
	}
	if decimals < 0 || decimals > MaxDecimals {
		return raw
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(value, divisor, new(big.Int))

	fracStr := strings.TrimRight(leftPad(frac.String(), decimals), "0")
	if fracStr == "" {
		return whole.String()
	}

	if limit := DisplayPrecision(decimals); len(fracStr) > limit {
		fracStr = fracStr[:limit]
	}
	return whole.String() + "." + fracStr
}

// FormatOptional is Format for nullable API fields
func FormatOptional(raw *string, coin Coin, isToken bool, tokenDecimals *int) string {
	if raw == nil {
		return NotAvailable
	}
	return Format(*raw, coin, isToken, tokenDecimals)
}

// FormatNative formats an amount held in the coin's own base units
func FormatNative(raw string, coin Coin) string {
	return Format(raw, coin, false, nil)
}

func leftPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
