package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/clinsight-ai/clinsight/pkg/models"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := New(filepath.Join(t.TempDir(), "cache.db"), ttl)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestKey(t *testing.T) {
	msgs := []models.ChatMessage{
		{Role: "user", Content: "how are prophylaxis rates trending?"},
	}

	k1 := Key("gpt-5-mini", msgs)
	k2 := Key("GPT-5-Mini", msgs)
	if k1 != k2 {
		t.Errorf("model casing should not change the key: %q vs %q", k1, k2)
	}

	k3 := Key("gpt-5-mini", []models.ChatMessage{
		{Role: "user", Content: "how are prophylaxis rates trending"},
	})
	if k1 == k3 {
		t.Error("different content produced the same key")
	}

	roleShift := Key("gpt-5-mini", []models.ChatMessage{
		{Role: "usera", Content: "bc"},
	})
	roleShift2 := Key("gpt-5-mini", []models.ChatMessage{
		{Role: "user", Content: "abc"},
	})
	if roleShift == roleShift2 {
		t.Error("role/content boundary is ambiguous")
	}
}

func TestGetMiss(t *testing.T) {
	c := newTestCache(t, time.Hour)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, Key("gpt-5-mini", nil))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected miss on empty cache")
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Misses != 1 || stats.Hits != 0 {
		t.Errorf("stats = %+v, want 1 miss", stats)
	}
}

func TestPutGet(t *testing.T) {
	c := newTestCache(t, time.Hour)
	ctx := context.Background()
	key := Key("gpt-5-mini", []models.ChatMessage{{Role: "user", Content: "hi"}})

	if err := c.Put(ctx, key, "gpt-5-mini", []byte(`{"id":"chatcmpl-1"}`), 0); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected hit")
	}
	if string(got) != `{"id":"chatcmpl-1"}` {
		t.Errorf("response = %q", got)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 1 || stats.Hits != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestPutReplaces(t *testing.T) {
	c := newTestCache(t, time.Hour)
	ctx := context.Background()
	key := Key("gpt-5-mini", []models.ChatMessage{{Role: "user", Content: "hi"}})

	if err := c.Put(ctx, key, "gpt-5-mini", []byte("old"), 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Put(ctx, key, "gpt-5-mini", []byte("new"), 0); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(got) != "new" {
		t.Errorf("response = %q, want new", got)
	}

	stats, _ := c.Stats(ctx)
	if stats.Entries != 1 {
		t.Errorf("entries = %d, want 1", stats.Entries)
	}
}

func TestExpiry(t *testing.T) {
	c := newTestCache(t, time.Hour)
	ctx := context.Background()
	key := Key("gpt-5-mini", []models.ChatMessage{{Role: "user", Content: "hi"}})

	if err := c.Put(ctx, key, "gpt-5-mini", []byte("stale"), time.Nanosecond); err != nil {
		t.Fatalf("Put: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	_, ok, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected expired entry to miss")
	}

	stats, _ := c.Stats(ctx)
	if stats.Entries != 0 {
		t.Errorf("entries = %d, want 0 after eviction", stats.Entries)
	}
}

func TestPurge(t *testing.T) {
	c := newTestCache(t, time.Hour)
	ctx := context.Background()

	if err := c.Put(ctx, "fresh", "gpt-5-mini", []byte("a"), time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Put(ctx, "stale", "gpt-5-mini", []byte("b"), time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}
	// Backdate one row past its TTL.
	_, err := c.db.Exec(
		`UPDATE response_cache SET created_at = ?, ttl_seconds = 1 WHERE prompt_hash = 'stale'`,
		time.Now().UTC().Add(-time.Hour),
	)
	if err != nil {
		t.Fatalf("backdate row: %v", err)
	}

	n, err := c.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 1 {
		t.Errorf("purged = %d, want 1", n)
	}

	stats, _ := c.Stats(ctx)
	if stats.Entries != 1 {
		t.Errorf("entries = %d, want 1", stats.Entries)
	}
}
