// Package api is the REST gateway to the gestortareas service.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"tugestor-cli/internal/store"
)

// LoginPath is the only endpoint sent without an Authorization header.
const LoginPath = "/usuario/login"

// RequestIDHeader correlates a request with its diagnostic log lines.
const RequestIDHeader = "X-Request-Id"

var json = sonic.ConfigStd

// Client issues fire-once requests against BaseURL. There is no retry, no timeout and no caching;
// callers bound requests through their context.
type Client struct {
	BaseURL string
	Session store.SessionStore
	HTTP    *http.Client
	Log     *log.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.HTTP = h
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.Log = l
		}
	}
}

// New returns a client for baseURL (e.g. "http://localhost:8080/api"). session may be nil,
// in which case every request goes out unauthenticated.
func New(baseURL string, session store.SessionStore, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Session: session,
		HTTP:    &http.Client{},
		Log:     log.StandardLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// authorize returns the round tripper to dispatch req with: the bare base for login or
// when no token is held, otherwise an oauth2 transport carrying the bearer token.
func (c *Client) authorize(ctx context.Context, path string, base http.RoundTripper) http.RoundTripper {
	if strings.Contains(path, LoginPath) || c.Session == nil {
		return base
	}
	tok, ok, err := c.Session.Token(ctx)
	if err != nil {
		c.Log.WithError(err).Warn("session token unavailable; sending unauthenticated")
		return base
	}
	if !ok {
		return base
	}
	return &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}),
		Base:   base,
	}
}

// do sends method path with an optional JSON body and decodes a 2xx JSON response into out
// (when out is non-nil and the body is non-empty).
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return err
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)

	base := c.HTTP.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc := *c.HTTP
	hc.Transport = c.authorize(ctx, path, base)

	entry := c.Log.WithFields(log.Fields{"method": method, "path": path, "request_id": reqID})
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		entry.WithError(err).Debug("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	entry.WithFields(log.Fields{"status": resp.StatusCode, "elapsed": time.Since(start)}).Debug("request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
