// Package state keeps the last dashboard seen for each coin so screens can
// render immediately while a refresh is in flight.
package state

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
	"github.com/rovshanmuradov/prometheus-client/internal/tracker"
)

// Snapshot is a cached dashboard and when it was fetched
type Snapshot struct {
	Dashboard *tracker.Dashboard
	UpdatedAt time.Time
}

// Age reports how old the snapshot is at now
func (s Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.UpdatedAt)
}

// DashboardCache provides thread-safe per-coin dashboard caching
type DashboardCache struct {
	dashboards map[amount.Coin]Snapshot
	mu         sync.RWMutex
	logger     *zap.Logger
	now        func() time.Time

	// Statistics (accessed atomically)
	reads  uint64
	writes uint64
}

// NewDashboardCache creates an empty cache
func NewDashboardCache(logger *zap.Logger) *DashboardCache {
	return &DashboardCache{
		dashboards: make(map[amount.Coin]Snapshot),
		logger:     logger,
		now:        time.Now,
	}
}

// Put stores the dashboard for its coin
func (c *DashboardCache) Put(d *tracker.Dashboard) {
	if d == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dashboards[d.Coin] = Snapshot{Dashboard: d, UpdatedAt: c.now()}
	atomic.AddUint64(&c.writes, 1)
}

// Get returns the cached snapshot for coin
func (c *DashboardCache) Get(coin amount.Coin) (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	atomic.AddUint64(&c.reads, 1)
	snap, ok := c.dashboards[coin]
	return snap, ok
}

// Invalidate drops the snapshot for coin, typically after a mutation
func (c *DashboardCache) Invalidate(coin amount.Coin) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.dashboards, coin)
	atomic.AddUint64(&c.writes, 1)
}

// Clear removes everything, used on logout
func (c *DashboardCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dashboards = make(map[amount.Coin]Snapshot)
	atomic.AddUint64(&c.writes, 1)
}

// GetStats returns cache statistics
func (c *DashboardCache) GetStats() (entries, reads, writes uint64) {
	c.mu.RLock()
	entries = uint64(len(c.dashboards))
	c.mu.RUnlock()

	reads = atomic.LoadUint64(&c.reads)
	writes = atomic.LoadUint64(&c.writes)
	return entries, reads, writes
}

// CleanupStale removes snapshots older than maxAge
func (c *DashboardCache) CleanupStale(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-maxAge)
	removed := 0
	for coin, snap := range c.dashboards {
		if snap.UpdatedAt.Before(cutoff) {
			delete(c.dashboards, coin)
			removed++
		}
	}

	if removed > 0 {
		c.logger.Debug("Dropped stale dashboards",
			zap.Int("removed", removed),
			zap.Int("remaining", len(c.dashboards)))
	}
	return removed
}
