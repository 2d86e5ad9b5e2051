// Package api is the HTTP transport to the SACE backend. Every request
// carries the session's bearer token; a 401 on any authenticated call drops
// the session and sends the user back to the login view.
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

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sace/internal/ctxdata"
	"sace/internal/errdefs"
	"sace/internal/logging"
	"sace/internal/retry"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRetryDelay = 200 * time.Millisecond
	maxErrorBody      = 64 << 10
)

// TokenSource yields the current bearer token, or "" when signed out.
type TokenSource interface {
	Token(ctx context.Context) string
}

// UnauthorizedFunc runs once for every 401 answer to an authenticated call.
type UnauthorizedFunc func(ctx context.Context)

type Client struct {
	baseURL      *url.URL
	httpClient   *http.Client
	tokens       TokenSource
	logger       *logging.Logger
	readAttempts int
	retryDelay   time.Duration

	mu             sync.RWMutex
	onUnauthorized UnauthorizedFunc
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithReadRetries sets how many times idempotent reads are attempted when
// the backend is unreachable. Mutations are never retried.
func WithReadRetries(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.readAttempts = attempts
		}
		c.retryDelay = delay
	}
}

func NewClient(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: invalid base url %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api: base url %q must be http or https", baseURL)
	}

	c := &Client{
		baseURL:      parsed,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		tokens:       tokens,
		logger:       logging.Nop(),
		readAttempts: 1,
		retryDelay:   defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// OnUnauthorized installs the hook run after a 401. It replaces any
// previous hook.
func (c *Client) OnUnauthorized(fn UnauthorizedFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	// credentialExchange marks login-style calls whose 401 means "wrong
	// credentials", not "session expired".
	credentialExchange bool
}

func jsonRequest(method, path string, payload any) (request, error) {
	req := request{method: method, path: path}
	if payload == nil {
		return req, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return req, fmt.Errorf("api: encode %s %s: %w", method, path, err)
	}
	req.body = bytes.NewReader(raw)
	req.contentType = "application/json"
	return req, nil
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	ctx, traceID := withTrace(ctx)
	target := c.baseURL.JoinPath(req.path)

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target.String(), req.body)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Trace-Id", traceID)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if token := c.tokens.Token(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Warn(ctx, "request failed",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %s %s: %v", errdefs.ErrTransport, req.method, req.path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug(ctx, "request completed",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode == http.StatusUnauthorized && !req.credentialExchange {
		c.unauthorized(ctx)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &errdefs.APIError{Status: resp.StatusCode, Message: errorMessage(body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: decode %s %s: %v", errdefs.ErrTransport, req.method, req.path, err)
	}
	return nil
}

func (c *Client) unauthorized(ctx context.Context) {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn == nil {
		return
	}
	c.logger.Info(ctx, "session rejected by backend, signing out")
	fn(ctx)
}

func withTrace(ctx context.Context) (context.Context, string) {
	if traceID, ok := ctxdata.GetTraceID(ctx); ok {
		return ctx, traceID
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ctxdata.WithTraceID(ctx, id.String()), id.String()
}

// errorMessage pulls the human readable text out of an error body. The
// backend uses "message"; "error" is accepted too.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

// get performs an idempotent read, retrying transport failures.
func get[T any](ctx context.Context, c *Client, path string) (T, error) {
	return retry.WithBackoff(ctx, c.readAttempts, c.retryDelay, func() (T, error) {
		var out T
		err := c.do(ctx, request{method: http.MethodGet, path: path}, &out)
		return out, err
	})
}

func send[T any](ctx context.Context, c *Client, method, path string, payload any) (*T, error) {
	req, err := jsonRequest(method, path, payload)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := c.do(ctx, req, out); err != nil {
		return nil, err
	}
	return out, nil
}
