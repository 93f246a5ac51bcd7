package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/jatolabs/projecthub/internal/cache"
)

func TestMemoryRoundTrip(t *testing.T) {
	c := cache.NewMemory(time.Minute)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatalf("empty cache should miss")
	}

	c.Set(ctx, "k", []byte("v"))

	got, ok := c.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Fatalf("got %q ok=%v", got, ok)
	}

	c.Delete(ctx, "k")

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatalf("deleted key should miss")
	}
}

func TestMemoryExpiry(t *testing.T) {
	c := cache.NewMemory(10 * time.Millisecond)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"))
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatalf("expired entry should miss")
	}
}
