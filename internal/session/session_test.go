package session

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/prometheus-client/internal/api"
	"github.com/rovshanmuradov/prometheus-client/internal/storage"
)

var (
	_ api.TokenStore    = (*Store)(nil)
	_ api.IdentityStore = (*Store)(nil)
)

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryStore(), zap.NewNop())

	tokens, err := s.Tokens(ctx)
	require.NoError(t, err)
	assert.Empty(t, tokens)
	assert.False(t, s.Authenticated(ctx))

	require.NoError(t, s.SetTokens(ctx, api.Tokens{AccessToken: "a1", RefreshToken: "r1"}))
	require.NoError(t, s.SaveIdentity(ctx, api.User{ID: "u1", Username: "alice"}, &api.Wallet{
		UserID:           "u1",
		SolanaPublicKey:  "pk",
		SolanaPrivateKey: "secret",
	}))
	assert.True(t, s.Authenticated(ctx))

	user, err := s.User(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)

	wallet, err := s.Wallet(ctx)
	require.NoError(t, err)
	require.NotNil(t, wallet)
	assert.Equal(t, "pk", wallet.SolanaPublicKey)
	assert.Empty(t, wallet.SolanaPrivateKey, "private key must not be persisted")

	require.NoError(t, s.SetTokens(ctx, api.Tokens{AccessToken: "a2", RefreshToken: "r2"}))
	tokens, err = s.Tokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, api.Tokens{AccessToken: "a2", RefreshToken: "r2"}, tokens)

	require.NoError(t, s.Clear(ctx))
	tokens, err = s.Tokens(ctx)
	require.NoError(t, err)
	assert.Empty(t, tokens)

	user, err = s.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestStoreSurvivesRestartOnSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	kv, err := storage.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, New(kv, zap.NewNop()).SetTokens(ctx, api.Tokens{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, kv.Close())

	kv, err = storage.NewSQLiteStore(path)
	require.NoError(t, err)
	defer kv.Close()

	tokens, err := New(kv, zap.NewNop()).Tokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", tokens.AccessToken)
}

func TestStoreConcurrentRotation(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryStore(), zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.SetTokens(ctx, api.Tokens{AccessToken: "same", RefreshToken: "same"})
		}()
		go func() {
			defer wg.Done()
			tokens, err := s.Tokens(ctx)
			assert.NoError(t, err)
			assert.Equal(t, tokens.AccessToken, tokens.RefreshToken)
		}()
	}
	wg.Wait()
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got, ok := Expiry(signedToken(t, exp))
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = Expiry("opaque-token")
	assert.False(t, ok)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, ok = Expiry(noExp)
	assert.False(t, ok)
}

func TestAuthenticatedRejectsExpiredRefreshToken(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryStore(), zap.NewNop())

	require.NoError(t, s.SetTokens(ctx, api.Tokens{AccessToken: "a1", RefreshToken: signedToken(t, time.Now().Add(-time.Minute))}))
	assert.False(t, s.Authenticated(ctx))

	require.NoError(t, s.SetTokens(ctx, api.Tokens{AccessToken: "a1", RefreshToken: signedToken(t, time.Now().Add(time.Hour))}))
	assert.True(t, s.Authenticated(ctx))
}
