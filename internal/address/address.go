// Package address validates wallet and token addresses for the supported chains.
package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
)

// ErrEmpty is returned for blank addresses
var ErrEmpty = errors.New("address is required")

// Validate checks that addr is well formed for coin and returns it in
// canonical form: base58 for SOL, EIP-55 checksummed hex for BNB.
func Validate(coin amount.Coin, addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", ErrEmpty
	}

	switch coin {
	case amount.CoinSOL:
		pk, err := solana.PublicKeyFromBase58(addr)
		if err != nil {
			return "", fmt.Errorf("invalid SOL address %q: %w", addr, err)
		}
		return pk.String(), nil
	case amount.CoinBNB:
		if !common.IsHexAddress(addr) {
			return "", fmt.Errorf("invalid BNB address %q", addr)
		}
		return common.HexToAddress(addr).Hex(), nil
	default:
		return "", fmt.Errorf("unsupported coin %q", coin)
	}
}

// Short abbreviates an address for table cells: first and last four characters
func Short(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:4] + "..." + addr[len(addr)-4:]
}
