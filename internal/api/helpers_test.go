package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type memTokens struct {
	mu       sync.Mutex
	tokens   Tokens
	user     *User
	wallet   *Wallet
	cleared  int
	setCalls int
}

func (m *memTokens) Tokens(context.Context) (Tokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens, nil
}

func (m *memTokens) SetTokens(_ context.Context, t Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = t
	m.setCalls++
	return nil
}

func (m *memTokens) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = Tokens{}
	m.user = nil
	m.wallet = nil
	m.cleared++
	return nil
}

func (m *memTokens) SaveIdentity(_ context.Context, user User, wallet *Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = &user
	m.wallet = wallet
	return nil
}

func (m *memTokens) snapshot() (Tokens, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens, m.cleared
}

func newTestClient(t *testing.T, handler http.Handler, tokens *memTokens) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(&Config{
		BaseURL:       srv.URL,
		Timeout:       5 * time.Second,
		RetryInterval: time.Millisecond,
	}, tokens, zaptest.NewLogger(t))
	return client, srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
