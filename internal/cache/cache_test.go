package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemorySetThenGet(t *testing.T) {
	c := NewMemory(time.Hour, nil)
	ctx := context.Background()

	c.Set(ctx, "https://example.com/job/1", "description text")

	got, ok := c.Get(ctx, "https://example.com/job/1")
	if !ok {
		t.Fatalf("Get after Set returned no entry")
	}
	if got != "description text" {
		t.Fatalf("Get = %q, want %q", got, "description text")
	}
}

func TestMemoryGetMissingKey(t *testing.T) {
	c := NewMemory(time.Hour, nil)
	if _, ok := c.Get(context.Background(), "https://example.com/nope"); ok {
		t.Fatalf("Get on empty cache reported a hit")
	}
}

func TestMemoryLazyExpiry(t *testing.T) {
	now := time.Now()
	c := NewMemory(24*time.Hour, func() time.Time { return now })
	ctx := context.Background()

	c.Set(ctx, "https://example.com/job/2", "text")

	// Advance past the TTL; the entry must report missing and be
	// purged by the access itself.
	now = now.Add(25 * time.Hour)
	if _, ok := c.Get(ctx, "https://example.com/job/2"); ok {
		t.Fatalf("Get returned an expired entry")
	}
	if got := c.Len(); got != 0 {
		t.Fatalf("expired entry not purged on access: Len = %d, want 0", got)
	}
}

func TestMemorySweep(t *testing.T) {
	now := time.Now()
	c := NewMemory(24*time.Hour, func() time.Time { return now })
	ctx := context.Background()

	c.Set(ctx, "https://example.com/old", "old")

	now = now.Add(25 * time.Hour)
	c.Set(ctx, "https://example.com/new", "new")

	if purged := c.Sweep(ctx); purged != 1 {
		t.Fatalf("Sweep purged %d entries, want 1", purged)
	}
	if _, ok := c.Get(ctx, "https://example.com/new"); !ok {
		t.Fatalf("Sweep removed an unexpired entry")
	}
}

func TestMemoryKeyIsTrimmedButNotNormalized(t *testing.T) {
	c := NewMemory(time.Hour, nil)
	ctx := context.Background()

	c.Set(ctx, "  https://example.com/job/3  ", "text")
	if _, ok := c.Get(ctx, "https://example.com/job/3"); !ok {
		t.Fatalf("whitespace-trimmed key did not match")
	}

	// Trailing slashes are a different key on purpose.
	if _, ok := c.Get(ctx, "https://example.com/job/3/"); ok {
		t.Fatalf("cache normalized trailing slash; keys must stay raw")
	}
}

func TestMemoryLastWriterWins(t *testing.T) {
	c := NewMemory(time.Hour, nil)
	ctx := context.Background()

	c.Set(ctx, "https://example.com/job/4", "first")
	c.Set(ctx, "https://example.com/job/4", "second")

	got, _ := c.Get(ctx, "https://example.com/job/4")
	if got != "second" {
		t.Fatalf("Get = %q, want last write %q", got, "second")
	}
}
