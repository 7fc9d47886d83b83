package tracker

import (
	"fmt"

	"github.com/rovshanmuradov/prometheus-client/internal/api"
)

// MergeStats overlays per-wallet statistics onto the matching wallets.
// Wallets without statistics are returned unchanged; the input is not modified.
func MergeStats(wallets []api.TrackedWallet, stats *api.CopyTradingStats) []api.TrackedWallet {
	if stats == nil || len(stats.WalletStats) == 0 {
		return wallets
	}

	byAddress := make(map[string]api.WalletStats, len(stats.WalletStats))
	for _, ws := range stats.WalletStats {
		byAddress[ws.WalletAddress] = ws
	}

	out := make([]api.TrackedWallet, len(wallets))
	for i, w := range wallets {
		if ws, ok := byAddress[w.WalletAddress]; ok {
			w.TotalMatches = ws.TotalMatches
			w.SuccessfulTrades = ws.SuccessfulTrades
			w.FailedTrades = ws.FailedTrades
			w.TotalVolumeTraded = ws.TotalVolumeTraded
			rate := ws.SuccessRate
			w.SuccessRate = &rate
		}
		out[i] = w
	}
	return out
}

// Pager tracks position in a paged listing
type Pager struct {
	Page       int
	TotalPages int
	Total      int
}

// NewPager clamps the reported page into range
func NewPager(page, totalPages, total int) Pager {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return Pager{Page: page, TotalPages: totalPages, Total: total}
}

func (p Pager) HasNext() bool { return p.Page < p.TotalPages }
func (p Pager) HasPrev() bool { return p.Page > 1 }

// Next returns the following page number, staying on the last page
func (p Pager) Next() int {
	if p.HasNext() {
		return p.Page + 1
	}
	return p.Page
}

// Prev returns the preceding page number, staying on the first page
func (p Pager) Prev() int {
	if p.HasPrev() {
		return p.Page - 1
	}
	return p.Page
}

func (p Pager) String() string {
	return fmt.Sprintf("Page %d of %d (%d total)", p.Page, p.TotalPages, p.Total)
}
