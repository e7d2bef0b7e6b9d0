// Package remote talks to the music API: the like endpoints the favorites
// synchronizer needs, and the catalog lookups that feed the queue.
package remote

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

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	cerrors "github.com/tessro/cadence/internal/errors"
	"github.com/tessro/cadence/internal/logging"
	"github.com/tessro/cadence/internal/remote/auth"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:5000"

	// Retry configuration for transient errors
	defaultMaxRetries = 3
	baseRetryWait     = 500 * time.Millisecond
)

// Client is an HTTP client for the music API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	storage    *auth.TokenStorage
	token      *auth.Token
	mu         sync.RWMutex
	limiter    *rate.Limiter
	maxRetries int
	retryWait  time.Duration
	log        *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithRetries sets how often transient failures are retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryWait sets the first backoff interval; later ones double.
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) {
		c.retryWait = d
	}
}

// WithTokenStorage loads and saves the API token through s.
func WithTokenStorage(s *auth.TokenStorage) Option {
	return func(c *Client) {
		c.storage = s
	}
}

// WithToken sets the token directly.
func WithToken(t *auth.Token) Option {
	return func(c *Client) {
		c.token = t
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRetries: defaultMaxRetries,
		retryWait:  baseRetryWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logging.With(c.log, "component", "remote")
	return c
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LoadToken loads the token from storage.
func (c *Client) LoadToken() error {
	if c.storage == nil {
		return nil
	}
	token, err := c.storage.Load()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return nil
}

// SetToken sets the current token and saves it when storage is configured.
func (c *Client) SetToken(token *auth.Token) error {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	if c.storage == nil {
		return nil
	}
	return c.storage.Save(token)
}

// IsAuthenticated returns true if there's a valid (non-expired) token.
func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token.Valid()
}

// authHeader returns the Authorization header, or "" when no token is
// set. An expired token is an error: the request would be rejected anyway.
func (c *Client) authHeader() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == nil || c.token.AccessToken == "" {
		return "", nil
	}
	if c.token.IsExpired() {
		return "", fmt.Errorf("%w: token expired", cerrors.ErrNotAuthenticated)
	}
	return c.token.Header(), nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.request(ctx, http.MethodGet, path, nil, result, true)
}

// post sends a request the server may act on more than once if repeated.
// Only rate-limit rejections are retried; a transport failure or server
// error may have reached the server, so it is returned as is.
func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	return c.request(ctx, http.MethodPost, path, body, result, false)
}

func (c *Client) request(ctx context.Context, method, path string, body any, result any, idempotent bool) error {
	authz, err := c.authHeader()
	if err != nil {
		return err
	}

	var jsonBody []byte
	if body != nil {
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	fullURL := c.baseURL + path
	requestID := uuid.New().String()
	l := c.log.With("method", method, "url", fullURL, "request_id", requestID)
	l.Debug("request")

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.retryWait * time.Duration(1<<(attempt-1))
			l.Debug("retrying", "attempt", attempt, "max", c.maxRetries, "wait", wait, "err", lastErr)
			select {
			case <-ctx.Done():
				return cerrors.Network(ctx.Err())
			case <-time.After(wait):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return cerrors.Network(err)
			}
		}

		var bodyReader io.Reader
		if jsonBody != nil {
			bodyReader = bytes.NewReader(jsonBody)
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		if jsonBody != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = cerrors.Network(err)
			l.Debug("network error", "err", err)
			if ctx.Err() != nil || !idempotent {
				return lastErr
			}
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = cerrors.Network(fmt.Errorf("failed to read response: %w", err))
			if !idempotent {
				return lastErr
			}
			continue
		}

		l.Debug("response", "status", resp.StatusCode)

		switch {
		case resp.StatusCode == http.StatusNoContent:
			return nil
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("%w: %w", cerrors.ErrRateLimited, parseAPIError(resp.StatusCode, respBody))
			continue
		case resp.StatusCode >= 500:
			lastErr = cerrors.Network(parseAPIError(resp.StatusCode, respBody))
			if !idempotent {
				return lastErr
			}
			l.Debug("server error, will retry", "err", lastErr)
			continue
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%w: %w", cerrors.ErrNotAuthenticated, parseAPIError(resp.StatusCode, respBody))
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: %w", cerrors.ErrTrackNotFound, parseAPIError(resp.StatusCode, respBody))
		case resp.StatusCode >= 400:
			return parseAPIError(resp.StatusCode, respBody)
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
		}
		return nil
	}

	return fmt.Errorf("request failed after %d retries: %w", c.maxRetries, lastErr)
}

// APIError is an error response from the API.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

// parseAPIError reads {"message": ...} or {"error": ...} bodies, falling
// back to the raw body.
func parseAPIError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			msg = payload.Message
		case payload.Error != "":
			msg = payload.Error
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// BuildURL builds a URL with query parameters.
func BuildURL(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}

	u, _ := url.Parse(path)
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
