package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// EventBus carries messages from request goroutines (token refresh,
// background loads) into the running program. Publishing never blocks: when
// the program falls behind, the message is dropped and counted.
type EventBus struct {
	ch     chan tea.Msg
	logger *zap.Logger

	mu      sync.Mutex
	sent    map[string]uint64
	dropped map[string]uint64
}

// BusStats counts published and dropped messages by kind
type BusStats struct {
	Sent    map[string]uint64
	Dropped map[string]uint64
}

// GlobalBus is the bus Publish* write to once InitBus has run
var GlobalBus *EventBus

// NewEventBus creates a bus that delivers into ch
func NewEventBus(ch chan tea.Msg, logger *zap.Logger) *EventBus {
	return &EventBus{
		ch:      ch,
		logger:  logger.Named("bus"),
		sent:    make(map[string]uint64),
		dropped: make(map[string]uint64),
	}
}

// InitBus installs the global bus
func InitBus(ch chan tea.Msg, logger *zap.Logger) {
	GlobalBus = NewEventBus(ch, logger)
}

// Publish hands msg to the program and reports whether it was queued
func (b *EventBus) Publish(msg tea.Msg) bool {
	kind := messageKind(msg)

	select {
	case b.ch <- msg:
		b.count(b.sent, kind)
		return true
	default:
		b.count(b.dropped, kind)
		b.logger.Warn("UI bus full, message dropped", zap.String("kind", kind))
		return false
	}
}

func (b *EventBus) count(m map[string]uint64, kind string) {
	b.mu.Lock()
	m[kind]++
	b.mu.Unlock()
}

// Stats returns a snapshot of the counters
func (b *EventBus) Stats() BusStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := BusStats{
		Sent:    make(map[string]uint64, len(b.sent)),
		Dropped: make(map[string]uint64, len(b.dropped)),
	}
	for k, v := range b.sent {
		stats.Sent[k] = v
	}
	for k, v := range b.dropped {
		stats.Dropped[k] = v
	}
	return stats
}

// Close logs the totals for the session. Nothing is published after it.
func (b *EventBus) Close() {
	stats := b.Stats()
	var sent, dropped uint64
	for _, v := range stats.Sent {
		sent += v
	}
	for _, v := range stats.Dropped {
		dropped += v
	}

	fields := []zap.Field{zap.Uint64("sent", sent), zap.Uint64("dropped", dropped)}
	if n := stats.Sent[kindSessionExpired]; n > 0 {
		fields = append(fields, zap.Uint64("session_expired", n))
	}
	if dropped > 0 {
		b.logger.Warn("UI bus closed with dropped messages", fields...)
		return
	}
	b.logger.Debug("UI bus closed", fields...)
}

const (
	kindSessionExpired = "session_expired"
	kindError          = "error"
	kindSuccess        = "success"
	kindOther          = "other"
)

func messageKind(msg tea.Msg) string {
	switch msg.(type) {
	case SessionExpiredMsg:
		return kindSessionExpired
	case ErrorMsg:
		return kindError
	case SuccessMsg:
		return kindSuccess
	default:
		return kindOther
	}
}
