// ABOUTME: Bearer token store shared by the API client, CLI and TUI
// ABOUTME: Keeps the token in memory and mirrors it to ordered persistence tiers

package tokenstore

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// tierTimeout bounds every tier operation so a slow backend cannot stall a
// request that only needs the in-memory token.
const tierTimeout = 2 * time.Second

// Tier is a persistence layer the store mirrors the token into. Load returns
// an empty string when the tier holds nothing usable.
type Tier interface {
	Name() string
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// Store is the single source of truth for the current bearer token.
type Store struct {
	mu     sync.RWMutex
	token  string
	tiers  []Tier
	stale  []bool // tiers whose Delete failed; unreadable until the next successful Save
	now    func() time.Time
	margin time.Duration
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithTiers sets the persistence tiers. Order matters: reads fall back
// through them in order, so put the shortest-lived tier first.
func WithTiers(tiers ...Tier) Option {
	return func(s *Store) { s.tiers = append(s.tiers, tiers...) }
}

// WithClock replaces the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMargin treats tokens expiring within d as already expired.
func WithMargin(d time.Duration) Option {
	return func(s *Store) { s.margin = d }
}

// WithLogger sets the logger for tier failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a memory-only store unless tiers are supplied.
func New(opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.stale = make([]bool, len(s.tiers))
	return s
}

// Set stores token in memory and writes it through to every tier.
func (s *Store) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.eachTier(func(ctx context.Context, i int, t Tier) {
		if err := t.Save(ctx, token); err != nil {
			s.logger.Warn("Token tier write failed", "tier", t.Name(), "error", err)
			return
		}
		s.setStale(i, false)
	})
}

// Token returns the in-memory token, falling back through the tiers when
// memory is empty. A token recovered from a tier is promoted into memory.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	tok := s.token
	s.mu.RUnlock()
	if tok != "" {
		return tok, true
	}

	for i, t := range s.tiers {
		if s.isStale(i) {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), tierTimeout)
		loaded, err := t.Load(ctx)
		cancel()
		if err != nil {
			s.logger.Warn("Token tier read failed", "tier", t.Name(), "error", err)
			continue
		}
		if loaded == "" {
			continue
		}

		s.mu.Lock()
		if s.token == "" {
			s.token = loaded
		}
		tok = s.token
		s.mu.Unlock()
		s.logger.Debug("Token restored from tier", "tier", t.Name())
		return tok, true
	}
	return "", false
}

// Clear purges the token from memory and every tier. A tier that fails to
// delete is skipped by Token until a later Set rewrites it, so a cleared
// session cannot come back from it.
func (s *Store) Clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	s.eachTier(func(ctx context.Context, i int, t Tier) {
		if err := t.Delete(ctx); err != nil {
			s.logger.Warn("Token tier delete failed", "tier", t.Name(), "error", err)
			s.setStale(i, true)
			return
		}
		s.setStale(i, false)
	})
}

// IsExpired reports whether the current token is absent, malformed, or past
// its exp claim (less the configured margin).
func (s *Store) IsExpired() bool {
	tok, ok := s.Token()
	if !ok {
		return true
	}
	return Expired(tok, s.now().Add(s.margin))
}

// IsAuthenticated is true iff a token exists and has not expired. An expired
// token is cleared as a side effect.
func (s *Store) IsAuthenticated() bool {
	if _, ok := s.Token(); !ok {
		return false
	}
	if s.IsExpired() {
		s.logger.Info("Stored token expired, clearing session")
		s.Clear()
		return false
	}
	return true
}

// ExpiresAt returns the token's exp claim when it can be decoded.
func (s *Store) ExpiresAt() (time.Time, bool) {
	tok, ok := s.Token()
	if !ok {
		return time.Time{}, false
	}
	return ExpiresAt(tok)
}

func (s *Store) eachTier(fn func(ctx context.Context, i int, t Tier)) {
	for i, t := range s.tiers {
		ctx, cancel := context.WithTimeout(context.Background(), tierTimeout)
		fn(ctx, i, t)
		cancel()
	}
}

func (s *Store) isStale(i int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale[i]
}

func (s *Store) setStale(i int, v bool) {
	s.mu.Lock()
	s.stale[i] = v
	s.mu.Unlock()
}
