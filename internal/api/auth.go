package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
)

// IdentityStore is implemented by token stores that also keep the signed-in
// user and wallet. Login and Signup use it when available.
type IdentityStore interface {
	SaveIdentity(ctx context.Context, user User, wallet *Wallet) error
}

// Signup registers a new account and starts a session
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*TokenPair, error) {
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/auth/signup", nil, "", req, &pair); err != nil {
		return nil, err
	}

	user := User{Username: req.Username, Email: req.Email}
	if err := c.startSession(ctx, &pair, user); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Login authenticates with username and password and starts a session
func (c *Client) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, "", req, &pair); err != nil {
		return nil, err
	}

	// the login response carries no user object
	if err := c.startSession(ctx, &pair, User{Username: req.Username}); err != nil {
		return nil, err
	}
	return &pair, nil
}

func (c *Client) startSession(ctx context.Context, pair *TokenPair, user User) error {
	if err := c.tokens.SetTokens(ctx, pair.Tokens); err != nil {
		return err
	}
	if ids, ok := c.tokens.(IdentityStore); ok {
		if pair.Wallet != nil {
			user.ID = pair.Wallet.UserID
		}
		if err := ids.SaveIdentity(ctx, user, pair.Wallet); err != nil {
			return err
		}
	}
	c.logger.Info("Session started", zap.String("username", user.Username))
	return nil
}

// Logout tells the backend the session is over, then drops it locally. The
// backend call is best effort.
func (c *Client) Logout(ctx context.Context) error {
	if token, err := c.accessToken(ctx); err == nil {
		if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, token, nil, nil); err != nil {
			c.logger.Warn("Logout request failed", zap.Error(err))
		}
	}
	return c.tokens.Clear(ctx)
}

// Profile fetches the account overview for coin
func (c *Client) Profile(ctx context.Context, coin amount.Coin) (*UserProfile, error) {
	var profile UserProfile
	if err := c.authedDo(ctx, http.MethodGet, "/auth/profile/coin/"+string(coin), nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
