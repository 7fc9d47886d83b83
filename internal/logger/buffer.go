package logger

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"
)

// LogEntry is one decoded log line kept for in-app display
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"msg"`
}

// RecentBuffer is a fixed-size ring of the latest log entries. It implements
// io.Writer so it can sit behind a zap JSON core.
type RecentBuffer struct {
	mu           sync.Mutex
	ring         []LogEntry
	currentIndex int
	wrapped      bool
}

// NewRecentBuffer creates a ring holding up to size entries
func NewRecentBuffer(size int) *RecentBuffer {
	if size <= 0 {
		size = 1
	}
	return &RecentBuffer{ring: make([]LogEntry, size)}
}

// Write decodes each JSON line in p and stores it. Undecodable lines are kept
// verbatim as the message.
func (rb *RecentBuffer) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(bytes.TrimSpace(p), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			entry = LogEntry{Timestamp: time.Now().Format(time.RFC3339), Message: string(line)}
		}
		rb.add(entry)
	}
	return len(p), nil
}

// Sync satisfies zapcore.WriteSyncer
func (rb *RecentBuffer) Sync() error { return nil }

func (rb *RecentBuffer) add(entry LogEntry) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.ring[rb.currentIndex] = entry
	rb.currentIndex = (rb.currentIndex + 1) % len(rb.ring)
	if rb.currentIndex == 0 {
		rb.wrapped = true
	}
}

// Recent returns up to limit entries, oldest first
func (rb *RecentBuffer) Recent(limit int) []LogEntry {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	count := rb.currentIndex
	start := 0
	if rb.wrapped {
		count = len(rb.ring)
		start = rb.currentIndex
	}

	skip := 0
	if limit > 0 && limit < count {
		skip = count - limit
	}

	out := make([]LogEntry, 0, count-skip)
	for i := skip; i < count; i++ {
		out = append(out, rb.ring[(start+i)%len(rb.ring)])
	}
	return out
}
