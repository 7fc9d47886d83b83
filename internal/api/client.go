// Package api is the client for the copy-trading backend REST service.
//
// Every authenticated call carries a bearer token and goes through
// Client.authenticated, which handles a 401 by renewing the session once
// (through the shared Refresher) and replaying the call exactly once.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout is the HTTP request timeout
	DefaultTimeout = 30 * time.Second

	// DefaultRetryInterval is the first backoff step for GET retries
	DefaultRetryInterval = 500 * time.Millisecond
)

// TokenStore persists the session token pair
type TokenStore interface {
	Tokens(ctx context.Context) (Tokens, error)
	SetTokens(ctx context.Context, tokens Tokens) error
	Clear(ctx context.Context) error
}

// Observer receives one call per HTTP exchange. status is 0 when the
// request never produced a response.
type Observer interface {
	ObserveRequest(method string, status int, elapsed time.Duration)
}

// Config contains configuration for the API client
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	Retries       int // extra attempts for GETs that fail in transport
	RetryInterval time.Duration
	HTTPClient    *http.Client
	// OnSessionExpired runs after the stored session is dropped
	OnSessionExpired func()
	Observer         Observer
}

// Client is the backend API client
type Client struct {
	httpClient    *http.Client
	baseURL       string
	retries       int
	retryInterval time.Duration
	tokens        TokenStore
	refresher     *Refresher
	onExpired     func()
	expireMu      sync.Mutex
	observer      Observer
	logger        *zap.Logger
}

// NewClient creates a client. tokens is the session the client reads bearer
// tokens from and writes rotated tokens to.
func NewClient(cfg *Config, tokens TokenStore, logger *zap.Logger) *Client {
	if cfg == nil {
		cfg = &Config{}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	retryInterval := cfg.RetryInterval
	if retryInterval == 0 {
		retryInterval = DefaultRetryInterval
	}

	c := &Client{
		httpClient:    httpClient,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		retries:       cfg.Retries,
		retryInterval: retryInterval,
		tokens:        tokens,
		onExpired:     cfg.OnSessionExpired,
		observer:      cfg.Observer,
		logger:        logger.Named("api"),
	}
	c.refresher = NewRefresher(c.renewSession, c.logger).
		withTokenReader(c.accessToken).
		onRefreshFailure(c.expire)
	return c
}

// Refresher exposes the session refresh coordinator
func (c *Client) Refresher() *Refresher {
	return c.refresher
}

// authenticated runs call with the current access token. On a 401 the
// session is renewed once and call is replayed once; any further 401 ends
// the session.
func (c *Client) authenticated(ctx context.Context, call func(token string) error) error {
	token, err := c.accessToken(ctx)
	if err == nil {
		err = call(token)
	}
	if !IsUnauthorized(err) {
		return err
	}

	c.logger.Debug("Request unauthorized, renewing session", zap.Error(err))
	if err := c.refresher.Refresh(ctx, token); err != nil {
		return err
	}

	token, err = c.accessToken(ctx)
	if err == nil {
		err = call(token)
	}
	if IsUnauthorized(err) {
		c.expire(ctx, err)
		return ErrSessionExpired
	}
	return err
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	tokens, err := c.tokens.Tokens(ctx)
	if err != nil {
		return "", err
	}
	if tokens.AccessToken == "" {
		return "", ErrNoAccessToken
	}
	return tokens.AccessToken, nil
}

// renewSession is the Refresher's refresh function: it trades the stored
// refresh token for a new pair and persists it.
func (c *Client) renewSession(ctx context.Context) error {
	tokens, err := c.tokens.Tokens(ctx)
	if err != nil {
		return err
	}
	if tokens.RefreshToken == "" {
		return ErrNoRefreshToken
	}

	var pair TokenPair
	body := map[string]string{"refresh_token": tokens.RefreshToken}
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, "", body, &pair); err != nil {
		return err
	}
	if pair.AccessToken == "" {
		return errors.New("refresh response carried no access token")
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = tokens.RefreshToken
	}
	return c.tokens.SetTokens(ctx, pair.Tokens)
}

// expire drops the stored session after an irrecoverable 401. A session
// that is already gone is not expired again, so a late 401 from a request
// sent before the clear does not announce the expiry a second time.
func (c *Client) expire(ctx context.Context, cause error) {
	c.expireMu.Lock()
	defer c.expireMu.Unlock()

	ctx = context.WithoutCancel(ctx)
	if tokens, err := c.tokens.Tokens(ctx); err == nil && tokens == (Tokens{}) {
		c.logger.Debug("Session already cleared", zap.Error(cause))
		return
	}

	c.logger.Warn("Session expired", zap.Error(cause))
	if err := c.tokens.Clear(ctx); err != nil {
		c.logger.Error("Failed to clear session", zap.Error(err))
	}
	if c.onExpired != nil {
		c.onExpired()
	}
}

// do sends one request and decodes a 2xx JSON body into out. Transport
// failures of GET requests are retried with exponential backoff; HTTP status
// errors never are.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body, out interface{}) error {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	requestID := uuid.New().String()
	log := c.logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)

	op := func() (*http.Response, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if method != http.MethodGet || ctx.Err() != nil {
				return nil, backoff.Permanent(fmt.Errorf("request failed: %w", err))
			}
			return nil, fmt.Errorf("request failed: %w", err)
		}
		return resp, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval
	policy.MaxInterval = c.retryInterval * 10

	notify := func(err error, wait time.Duration) {
		log.Warn("Retrying request after transport error", zap.Error(err), zap.Duration("backoff", wait))
	}

	start := time.Now()
	resp, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.retries+1)),
		backoff.WithNotify(notify))
	if err != nil {
		log.Debug("Request failed", zap.Error(err))
		c.observe(method, 0, start)
		return err
	}
	defer resp.Body.Close()
	c.observe(method, resp.StatusCode, start)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	log.Debug("Request completed",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) observe(method string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(method, status, time.Since(start))
	}
}

// authedDo is do wrapped in the refresh-and-retry policy
func (c *Client) authedDo(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	return c.authenticated(ctx, func(token string) error {
		return c.do(ctx, method, path, query, token, body, out)
	})
}
