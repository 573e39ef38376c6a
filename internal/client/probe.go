// ABOUTME: Connectivity prober answering whether the backend is reachable at all
// ABOUTME: Tries HEAD, GET and OPTIONS on the root; any HTTP status counts as reachable

package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/gadibarra/panel-municipal/internal/cache"
)

var probeMethods = []string{http.MethodHead, http.MethodGet, http.MethodOptions}

// Prober checks reachability of one backend origin. Concurrent callers share
// a single probe and its answer is cached briefly.
type Prober struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger

	group   singleflight.Group
	results *cache.Cache[bool]
}

// NewProber builds a prober. timeout bounds each method attempt; ttl is how
// long an answer is reused.
func NewProber(baseURL string, hc *http.Client, timeout, ttl time.Duration, logger *slog.Logger) *Prober {
	if hc == nil {
		hc = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{
		baseURL:    baseURL,
		httpClient: hc,
		timeout:    timeout,
		logger:     logger,
		results:    cache.New[bool](ttl, 0),
	}
}

// Reachable reports whether any probe method got an HTTP response. It never
// returns an error. A caller whose ctx ends first gets false, but the shared
// probe keeps running on its own timeouts and only its answer is cached.
func (p *Prober) Reachable(ctx context.Context) bool {
	if ok, hit := p.results.Get(p.baseURL); hit {
		return ok
	}

	probeCtx := context.WithoutCancel(ctx)
	ch := p.group.DoChan(p.baseURL, func() (any, error) {
		if ok, hit := p.results.Get(p.baseURL); hit {
			return ok, nil
		}
		ok := p.probe(probeCtx)
		p.results.Set(p.baseURL, ok)
		return ok, nil
	})

	select {
	case r := <-ch:
		return r.Val.(bool)
	case <-ctx.Done():
		return false
	}
}

// Recheck drops the cached answer and probes again.
func (p *Prober) Recheck(ctx context.Context) bool {
	p.Invalidate()
	return p.Reachable(ctx)
}

// Invalidate drops the cached answer so the next call probes again.
func (p *Prober) Invalidate() {
	p.results.Clear(p.baseURL)
}

func (p *Prober) probe(ctx context.Context) bool {
	for _, method := range probeMethods {
		if p.try(ctx, method) {
			p.logger.Debug("Backend reachable", "url", p.baseURL, "method", method)
			return true
		}
	}
	p.logger.Warn("Backend unreachable", "url", p.baseURL)
	return false
}

func (p *Prober) try(ctx context.Context, method string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+"/", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Debug("Probe failed", "method", method, "error", err)
		return false
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
	return true
}
