package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrSessionExpired is terminal: the caller must send the user back to login
	ErrSessionExpired = errors.New("Session expired. Please login again.")
	// ErrNoAccessToken is returned before any request is sent when no session exists.
	// It is handled like a 401.
	ErrNoAccessToken = errors.New("No access token found")
	// ErrNoRefreshToken means the session cannot be renewed
	ErrNoRefreshToken = errors.New("No refresh token found")
)

// Error is a non-2xx backend response
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// IsUnauthorized reports whether err should trigger a token refresh
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrNoAccessToken) {
		return true
	}
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Detail returns the backend's message for err, or fallback when the backend
// sent none. Errors that did not come from the backend keep their own text.
func Detail(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// parseError builds an *Error from a response body. FastAPI sends detail
// either as a string or as a list of validation errors.
func parseError(status int, body []byte) *Error {
	apiErr := &Error{Status: status}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return apiErr
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		apiErr.Detail = text
		return apiErr
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		apiErr.Detail = strings.Join(msgs, "; ")
	}
	return apiErr
}
