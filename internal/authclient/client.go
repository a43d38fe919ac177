// Package authclient talks to the external authentication service. It is
// the one place that knows the /users/login and /auth/me wire shapes.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/csplay/lobby/internal/session"
)

// ErrNotConfigured means the auth base URL is missing. Configuration
// problems surface at call time, not at startup.
var ErrNotConfigured = errors.New("authclient: base URL not configured")

// CredentialMode selects how the session check identifies itself:
// a bearer Authorization header, or a credential-carrying cookie jar.
type CredentialMode string

const (
	ModeBearer CredentialMode = "bearer"
	ModeCookie CredentialMode = "cookie"
)

// AuthError is the only failure surfaced to the user: bad credentials or
// a malformed server response. Message is display-ready.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth failed (status %d): %s", e.Status, e.Message)
}

// Generic display messages when the server gives us nothing usable.
const (
	msgAuthFailed  = "Error de autenticación"
	msgBadResponse = "Respuesta inválida del servidor"
)

type Config struct {
	BaseURL string
	Mode    CredentialMode
	Timeout time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Client {
	if cfg.Mode == "" {
		cfg.Mode = ModeBearer
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	hc := &http.Client{Timeout: cfg.Timeout}
	if cfg.Mode == ModeCookie {
		jar, _ := cookiejar.New(nil)
		hc.Jar = jar
	}
	return &Client{cfg: cfg, http: hc, log: log}
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}

func (c *Client) endpoint(path string) (string, error) {
	if c.cfg.BaseURL == "" {
		return "", ErrNotConfigured
	}
	return strings.TrimRight(c.cfg.BaseURL, "/") + path, nil
}

// Login posts credentials. Non-2xx responses and 2xx bodies missing
// token or user both come back as *AuthError; transport failures come
// back wrapped so the caller can tell them apart.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	url, err := c.endpoint("/users/login")
	if err != nil {
		return nil, err
	}

	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &AuthError{Status: res.StatusCode, Message: errorMessage(res.Body)}
	}

	var lr LoginResponse
	if err := json.NewDecoder(res.Body).Decode(&lr); err != nil || lr.Token == "" || lr.User.ID == "" {
		return nil, &AuthError{Status: res.StatusCode, Message: msgBadResponse}
	}
	return &lr, nil
}

// Me silently probes the current session. A nil profile with a nil error
// means "no session": 401/403, transport failure, or an unusable body.
// Other server errors are logged but still resolve to nil — the caller
// degrades to anonymous, never to a user-visible failure.
func (c *Client) Me(ctx context.Context, token string) (*session.User, error) {
	url, err := c.endpoint("/auth/me")
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.cfg.Mode == ModeBearer && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("session check failed", zap.Error(err))
		return nil, nil
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return nil, nil
	case res.StatusCode < 200 || res.StatusCode > 299:
		c.log.Warn("session check returned server error", zap.Int("status", res.StatusCode))
		return nil, nil
	}

	// The profile arrives either bare or wrapped as {user: profile}.
	var payload struct {
		session.User
		Wrapped *session.User `json:"user"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		c.log.Warn("session check body unreadable", zap.Error(err))
		return nil, nil
	}
	if payload.Wrapped != nil {
		return payload.Wrapped, nil
	}
	if payload.User == (session.User{}) {
		c.log.Warn("session check returned empty profile")
		return nil, nil
	}
	u := payload.User
	return &u, nil
}

// errorMessage pulls a display message out of an error response body:
// the JSON "message" field when present, raw text as a fallback, the
// generic message otherwise.
func errorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	if text := strings.TrimSpace(string(raw)); text != "" && !strings.HasPrefix(text, "{") {
		return text
	}
	return msgAuthFailed
}
