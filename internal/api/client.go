// Package api talks to the signing backend. Every method performs exactly one
// request/response cycle; nothing here retries.
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
	"time"

	"ttd-cli/internal/apperr"
	"ttd-cli/internal/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://ttd.lombokutarakab.go.id/api/"

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL string
	http    Doer
	token   func() string
	log     *zap.Logger
	newID   func() string
}

type Option func(*Client)

// WithHTTPClient replaces the transport (tests pass httptest clients here).
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.http = d
		}
	}
}

// WithTimeout sets a whole-request timeout on the default transport. Zero
// leaves the transport's own behavior in place.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithToken supplies the bearer token for each request. It is read per request
// so a logout takes effect immediately.
func WithToken(fn func() string) Option {
	return func(c *Client) { c.token = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = logging.OrNop(l) }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: normalizeBaseURL(baseURL),
		http:    http.DefaultClient,
		log:     zap.NewNop(),
		newID:   func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

func normalizeBaseURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultBaseURL
	}
	if !strings.HasSuffix(s, "/") {
		s += "/"
	}
	return s
}

// call describes one endpoint invocation. Query and Body are mutually
// exclusive per endpoint; the backend distinguishes them.
type call struct {
	op       string
	method   string
	path     string
	query    url.Values
	body     any
	fallback string

	// statusOptional accepts bodies that carry no status flag (login).
	statusOptional bool
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := c.baseURL + strings.TrimPrefix(path, "/")
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, cl call) (*envelope, error) {
	var rd io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", cl.op, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, c.endpoint(cl.path, cl.query), rd)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := c.newID()
	req.Header.Set("X-Request-ID", reqID)
	if c.token != nil {
		if tok := strings.TrimSpace(c.token()); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			zap.String("op", cl.op),
			zap.String("method", cl.method),
			zap.String("path", cl.path),
			zap.String("request_id", reqID),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, &apperr.NetworkError{Op: cl.op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperr.NetworkError{Op: cl.op, Err: err}
	}
	c.log.Debug("request",
		zap.String("op", cl.op),
		zap.String("method", cl.method),
		zap.String("path", cl.path),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	env, decErr := decodeEnvelope(raw)
	if decErr != nil {
		msg := cl.fallback
		if ok {
			msg = "invalid response from server"
		}
		return nil, &apperr.APIError{Op: cl.op, StatusCode: resp.StatusCode, Message: msg}
	}
	if !ok || !env.succeeded(cl.statusOptional) {
		return env, &apperr.APIError{Op: cl.op, StatusCode: resp.StatusCode, Message: env.message(cl.fallback)}
	}
	return env, nil
}

// decodeData unmarshals the envelope's data payload into v. A missing or null
// payload leaves v untouched.
func decodeData(op string, env *envelope, v any) error {
	if env == nil || env.isNull() {
		return nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return &apperr.APIError{Op: op, StatusCode: http.StatusOK, Message: "invalid response from server"}
	}
	return nil
}

// IsCanceled reports whether err came from a canceled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
