package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileTier_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	tier := PersistentTier(filepath.Join(t.TempDir(), "nested"))

	if tok, err := tier.Load(ctx); err != nil || tok != "" {
		t.Fatalf("expected empty load on missing file, got %q %v", tok, err)
	}

	if err := tier.Save(ctx, "tok-abcdefghijk"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(tier.Path())
	if err != nil {
		t.Fatalf("expected token file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected 0600 permissions, got %o", perm)
	}

	tok, err := tier.Load(ctx)
	if err != nil || tok != "tok-abcdefghijk" {
		t.Errorf("expected saved token, got %q %v", tok, err)
	}

	if err := tier.Delete(ctx); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := tier.Delete(ctx); err != nil {
		t.Errorf("Delete of missing file should succeed, got %v", err)
	}
}

func TestFileTier_SessionMaxAge(t *testing.T) {
	ctx := context.Background()
	now := fixedNow
	tier := SessionTier(t.TempDir(), time.Hour)
	tier.now = func() time.Time { return now }

	if err := tier.Save(ctx, "tok-abcdefghijk"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	now = now.Add(30 * time.Minute)
	if tok, _ := tier.Load(ctx); tok != "tok-abcdefghijk" {
		t.Errorf("expected token within max age, got %q", tok)
	}

	now = now.Add(time.Hour)
	if tok, _ := tier.Load(ctx); tok != "" {
		t.Errorf("expected stale session token to be dropped, got %q", tok)
	}
	if _, err := os.Stat(tier.Path()); !os.IsNotExist(err) {
		t.Error("expected stale token file to be removed")
	}
}

func TestFileTier_CorruptFile(t *testing.T) {
	tier := PersistentTier(t.TempDir())
	if err := os.WriteFile(tier.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := tier.Load(context.Background()); err == nil {
		t.Error("expected parse error for corrupt token file")
	}
}

func TestStore_WithFileTiersSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	first := newTestStore(WithTiers(PersistentTier(dir)))
	first.Set("tok-abcdefghijk")

	second := newTestStore(WithTiers(PersistentTier(dir)))
	if tok, ok := second.Token(); !ok || tok != "tok-abcdefghijk" {
		t.Errorf("expected token restored from disk, got %q %v", tok, ok)
	}
}
