// ABOUTME: Shared fixtures for client tests
// ABOUTME: Builds clients against httptest servers with short timeouts and a fixed clock

package client

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gadibarra/panel-municipal/internal/config"
	"github.com/gadibarra/panel-municipal/internal/logger"
	"github.com/gadibarra/panel-municipal/internal/tokenstore"
)

var testNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.RequestTimeout = config.Duration(2 * time.Second)
	cfg.LoginTimeout = config.Duration(2 * time.Second)
	cfg.ProbeTimeout = config.Duration(time.Second)
	return cfg
}

// newTestClient starts a server for handler and returns a client bound to it.
func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := tokenstore.New(
		tokenstore.WithClock(func() time.Time { return testNow }),
		tokenstore.WithLogger(logger.Discard()),
	)
	base := []Option{WithConfig(testConfig()), WithStore(store), WithLogger(logger.Discard())}
	return New(server.URL, append(base, opts...)...), server
}

// recorder counts requests per method and path.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, req.Method+" "+req.URL.Path)
}

func (r *recorder) count(prefix string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (r *recorder) list(prefix string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			out = append(out, c)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
