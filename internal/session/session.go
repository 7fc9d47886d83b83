// Package session keeps the signed-in user's tokens and identity in local
// storage, the terminal counterpart of the browser's localStorage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/prometheus-client/internal/api"
	"github.com/rovshanmuradov/prometheus-client/internal/storage"
)

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUser         = "user"
	keyWallet       = "wallet"
)

// Store satisfies api.TokenStore and api.IdentityStore
type Store struct {
	mu     sync.RWMutex
	kv     storage.KV
	logger *zap.Logger
}

func New(kv storage.KV, logger *zap.Logger) *Store {
	return &Store{kv: kv, logger: logger.Named("session")}
}

func (s *Store) Tokens(ctx context.Context) (api.Tokens, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	access, err := s.get(ctx, keyAccessToken)
	if err != nil {
		return api.Tokens{}, err
	}
	refresh, err := s.get(ctx, keyRefreshToken)
	if err != nil {
		return api.Tokens{}, err
	}
	return api.Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

// SetTokens stores a rotated pair. Both tokens are written under one lock
// so readers never observe a mixed pair.
func (s *Store) SetTokens(ctx context.Context, tokens api.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(ctx, keyAccessToken, tokens.AccessToken); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, keyRefreshToken, tokens.RefreshToken); err != nil {
		return err
	}
	s.logger.Debug("Tokens stored")
	return nil
}

// SaveIdentity stores the user and wallet returned at sign-in. The wallet's
// private key is never written to disk.
func (s *Store) SaveIdentity(ctx context.Context, user api.User, wallet *api.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.setJSON(ctx, keyUser, user); err != nil {
		return err
	}
	if wallet == nil {
		return s.kv.Delete(ctx, keyWallet)
	}
	stored := *wallet
	stored.SolanaPrivateKey = ""
	return s.setJSON(ctx, keyWallet, stored)
}

// User returns the stored user, or nil when nobody is signed in
func (s *Store) User(ctx context.Context) (*api.User, error) {
	var user api.User
	ok, err := s.getJSON(ctx, keyUser, &user)
	if err != nil || !ok {
		return nil, err
	}
	return &user, nil
}

// Wallet returns the stored custodial wallet, if any
func (s *Store) Wallet(ctx context.Context) (*api.Wallet, error) {
	var wallet api.Wallet
	ok, err := s.getJSON(ctx, keyWallet, &wallet)
	if err != nil || !ok {
		return nil, err
	}
	return &wallet, nil
}

// Authenticated reports whether a usable session is stored: an access token
// is present and the refresh token, when it is a JWT, has not expired.
func (s *Store) Authenticated(ctx context.Context) bool {
	tokens, err := s.Tokens(ctx)
	if err != nil || tokens.AccessToken == "" {
		return false
	}
	if expired(tokens.RefreshToken, time.Now()) {
		s.logger.Info("Stored refresh token has expired")
		return false
	}
	return true
}

// Clear removes every session key
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, keyAccessToken, keyRefreshToken, keyUser, keyWallet); err != nil {
		return err
	}
	s.logger.Info("Session cleared")
	return nil
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	v, err := s.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (s *Store) setJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, string(data))
}

func (s *Store) getJSON(ctx context.Context, key string, into interface{}) (bool, error) {
	s.mu.RLock()
	raw, err := s.get(ctx, key)
	s.mu.RUnlock()
	if err != nil || raw == "" {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}
