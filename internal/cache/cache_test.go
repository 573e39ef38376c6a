package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestCache_SetAndGet(t *testing.T) {
	c := New[string](time.Second, 0)

	c.Set("key1", "value1")

	val, found := c.Get("key1")
	if !found {
		t.Error("Expected to find key1")
	}
	if val != "value1" {
		t.Errorf("Expected value1, got %v", val)
	}
}

func TestCache_Expiration(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	c := New[bool](100*time.Millisecond, 0).WithClock(clock.now)

	c.Set("reachable", true)

	if _, found := c.Get("reachable"); !found {
		t.Error("Expected to find key immediately")
	}

	clock.advance(100 * time.Millisecond)

	if _, found := c.Get("reachable"); found {
		t.Error("Expected key to be expired at its deadline")
	}
}

func TestCache_SetWithTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	c := New[int](time.Hour, 0).WithClock(clock.now)

	c.SetWithTTL("short", 1, time.Second)
	c.Set("long", 2)
	clock.advance(2 * time.Second)

	if _, found := c.Get("short"); found {
		t.Error("Expected custom TTL entry to be expired")
	}
	if v, found := c.Get("long"); !found || v != 2 {
		t.Errorf("Expected default TTL entry to survive, got %v %v", v, found)
	}
}

func TestCache_Clear(t *testing.T) {
	c := New[string](time.Second, 0)

	c.Set("key1", "value1")
	c.Clear("key1")

	_, found := c.Get("key1")
	if found {
		t.Error("Expected key1 to be cleared")
	}
}

func TestCache_SweepRemovesExpired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	c := New[string](time.Second, 0).WithClock(clock.now)

	c.Set("a", "x")
	clock.advance(time.Minute)
	c.sweep()

	if _, loaded := c.store.Load("a"); loaded {
		t.Error("Expected sweep to delete lapsed entry")
	}
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c := New[string](time.Second, 10*time.Millisecond)
	c.Close()
	c.Close()
}
