package tokenstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gadibarra/panel-municipal/internal/logger"
)

// memTier is an in-memory Tier with optional injected failures.
type memTier struct {
	name    string
	token   string
	loadErr   error
	saveErr   error
	deleteErr error
	loads     int
}

func (m *memTier) Name() string { return m.name }

func (m *memTier) Load(context.Context) (string, error) {
	m.loads++
	return m.token, m.loadErr
}

func (m *memTier) Save(_ context.Context, token string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
	return nil
}

func (m *memTier) Delete(context.Context) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.token = ""
	return nil
}

func newTestStore(opts ...Option) *Store {
	base := []Option{WithClock(func() time.Time { return fixedNow }), WithLogger(logger.Discard())}
	return New(append(base, opts...)...)
}

func TestStore_SetTokenClear(t *testing.T) {
	s := newTestStore()

	if _, ok := s.Token(); ok {
		t.Fatal("expected empty store")
	}

	s.Set("abc.def.ghi")
	tok, ok := s.Token()
	if !ok || tok != "abc.def.ghi" {
		t.Errorf("expected stored token, got %q %v", tok, ok)
	}

	s.Clear()
	if _, ok := s.Token(); ok {
		t.Error("expected token to be cleared")
	}
}

func TestStore_WritesThroughAndClearsAllTiers(t *testing.T) {
	session := &memTier{name: "session"}
	persistent := &memTier{name: "persistent"}
	s := newTestStore(WithTiers(session, persistent))

	s.Set("tok-123456789")
	if session.token != "tok-123456789" || persistent.token != "tok-123456789" {
		t.Errorf("expected write-through, got %q / %q", session.token, persistent.token)
	}

	s.Clear()
	if session.token != "" || persistent.token != "" {
		t.Error("expected every tier to be cleared")
	}
}

func TestStore_ReadPrefersFirstTier(t *testing.T) {
	session := &memTier{name: "session", token: "from-session"}
	persistent := &memTier{name: "persistent", token: "from-persistent"}
	s := newTestStore(WithTiers(session, persistent))

	tok, ok := s.Token()
	if !ok || tok != "from-session" {
		t.Errorf("expected session tier to win, got %q", tok)
	}
	if persistent.loads != 0 {
		t.Error("persistent tier should not be read when session tier answers")
	}

	// Promoted into memory: tiers are not consulted again.
	s.Token()
	if session.loads != 1 {
		t.Errorf("expected one session load, got %d", session.loads)
	}
}

func TestStore_FallsBackPastFailingTier(t *testing.T) {
	broken := &memTier{name: "session", loadErr: errors.New("disk on fire")}
	persistent := &memTier{name: "persistent", token: "from-persistent"}
	s := newTestStore(WithTiers(broken, persistent))

	tok, ok := s.Token()
	if !ok || tok != "from-persistent" {
		t.Errorf("expected fallback to persistent tier, got %q", tok)
	}
}

func TestStore_TierWriteFailureIsSwallowed(t *testing.T) {
	broken := &memTier{name: "session", saveErr: errors.New("read-only")}
	s := newTestStore(WithTiers(broken))

	s.Set("tok-123456789")
	if tok, _ := s.Token(); tok != "tok-123456789" {
		t.Errorf("expected memory token despite tier failure, got %q", tok)
	}
}

func TestStore_FailedTierDeleteDoesNotRestoreToken(t *testing.T) {
	stuck := &memTier{name: "persistent", deleteErr: errors.New("permission denied")}
	s := newTestStore(WithTiers(stuck))

	s.Set("tok-123456789")
	s.Clear()
	if stuck.token != "tok-123456789" {
		t.Fatalf("expected tier to still hold the old token, got %q", stuck.token)
	}

	loadsBefore := stuck.loads
	if tok, ok := s.Token(); ok {
		t.Errorf("expected cleared store to stay empty, got %q", tok)
	}
	if stuck.loads != loadsBefore {
		t.Error("expected tier that failed to delete to be skipped on read")
	}

	s.Set("tok-new")
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	if tok, ok := s.Token(); !ok || tok != "tok-new" {
		t.Errorf("expected tier readable again after Set, got %q %v", tok, ok)
	}
}

func TestStore_IsAuthenticated(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		s := newTestStore()
		s.Set(rawToken(`{"exp":` + itoa(fixedNow.Add(time.Hour).Unix()) + `}`))
		if !s.IsAuthenticated() {
			t.Error("expected authenticated")
		}
	})

	t.Run("expired token is cleared", func(t *testing.T) {
		tier := &memTier{name: "session"}
		s := newTestStore(WithTiers(tier))
		s.Set(rawToken(`{"exp":` + itoa(fixedNow.Add(-time.Minute).Unix()) + `}`))

		if s.IsAuthenticated() {
			t.Error("expected expired token to be rejected")
		}
		if _, ok := s.Token(); ok {
			t.Error("expected expired token to be cleared from memory")
		}
		if tier.token != "" {
			t.Error("expected expired token to be cleared from tiers")
		}
	})

	t.Run("no token", func(t *testing.T) {
		if newTestStore().IsAuthenticated() {
			t.Error("expected unauthenticated with no token")
		}
	})
}

func TestStore_ExpiryMargin(t *testing.T) {
	tok := rawToken(`{"exp":` + itoa(fixedNow.Add(3*time.Minute).Unix()) + `}`)

	exact := newTestStore()
	exact.Set(tok)
	if exact.IsExpired() {
		t.Error("expected token valid without margin")
	}

	margin := newTestStore(WithMargin(5 * time.Minute))
	margin.Set(tok)
	if !margin.IsExpired() {
		t.Error("expected token inside the 5m margin to count as expired")
	}
}
