// ABOUTME: HTTP client for the municipal panel backend
// ABOUTME: Owns the token store, transport, prober and per-call timeouts

package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gadibarra/panel-municipal/internal/config"
	"github.com/gadibarra/panel-municipal/internal/tokenstore"
)

// probeCacheTTL is how long a reachability answer is reused.
const probeCacheTTL = 5 * time.Second

var errRedirectPolicy = errors.New("redirect refused")

// Client is the API client for the municipal panel backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *tokenstore.Store
	cfg        *config.Config
	logger     *slog.Logger
	prober     *Prober
}

// Option configures a Client.
type Option func(*Client)

// WithStore injects the token store. Without it the client keeps a
// memory-only store of its own.
func WithStore(s *tokenstore.Store) Option {
	return func(c *Client) { c.store = s }
}

// WithConfig supplies timeouts, login paths and validation limits.
func WithConfig(cfg *config.Config) Option {
	return func(c *Client) { c.cfg = cfg }
}

// WithHTTPClient replaces the transport. Used by tests and custom TLS setups.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger for request and login diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new API client with the given base URL. An empty base URL
// falls back to the configured one.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.cfg == nil {
		c.cfg = config.Defaults()
	}
	if c.baseURL == "" {
		c.baseURL = c.cfg.APIURL
	}
	if c.store == nil {
		c.store = tokenstore.New(
			tokenstore.WithMargin(time.Duration(c.cfg.ExpiryMargin)),
			tokenstore.WithLogger(c.logger),
		)
	}
	if c.httpClient == nil {
		// Per-call deadlines come from contexts, so no client-wide Timeout.
		c.httpClient = &http.Client{CheckRedirect: checkRedirect}
	}

	c.prober = NewProber(c.baseURL, c.httpClient, time.Duration(c.cfg.ProbeTimeout), probeCacheTTL, c.logger)
	return c
}

// BaseURL returns the backend origin the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Store returns the token store backing the client.
func (c *Client) Store() *tokenstore.Store { return c.store }

// Config returns the effective configuration.
func (c *Client) Config() *config.Config { return c.cfg }

// Prober returns the connectivity prober bound to the base URL.
func (c *Client) Prober() *Prober { return c.prober }

// Reachable reports whether the backend answers at all. Any HTTP status
// counts; only transport failures do not.
func (c *Client) Reachable(ctx context.Context) bool { return c.prober.Reachable(ctx) }

// Recheck forgets the cached reachability answer and probes again.
func (c *Client) Recheck(ctx context.Context) bool { return c.prober.Recheck(ctx) }

// Headers returns the standard header set for an outgoing request. It only
// reads the token store.
func (c *Client) Headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	if tok, ok := c.store.Token(); ok {
		h.Set("Authorization", "Bearer "+tok)
	}
	return h
}

// checkRedirect refuses HTTPS to HTTP downgrades and long redirect chains.
func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return fmt.Errorf("%w: too many redirects", errRedirectPolicy)
	}
	if prev := via[len(via)-1]; prev.URL.Scheme == "https" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: https to %s downgrade", errRedirectPolicy, req.URL.Scheme)
	}
	return nil
}
