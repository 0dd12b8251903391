package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	type payload struct {
		Symbol string  `json:"symbol"`
		Close  float64 `json:"close"`
	}
	in := payload{Symbol: "600519", Close: 1820.5}
	if err := mc.Set(ctx, "k", in, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out payload
	if err := mc.Get(ctx, "k", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	var out string
	if err := mc.Get(ctx, "missing", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("missing key: got %v, want ErrCacheMiss", err)
	}

	mc.entries["stale"] = &memoryEntry{data: []byte(`"v"`), expireAt: time.Now().Add(-time.Second)}
	if err := mc.Get(ctx, "stale", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expired key: got %v, want ErrCacheMiss", err)
	}
	if _, ok := mc.entries["stale"]; ok {
		t.Fatal("expired entry should be dropped on read")
	}
}

func TestMemoryCacheEvictsLeastRecentlyTouched(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "a", 1, time.Minute); err != nil {
		t.Fatalf("set a: %v", err)
	}
	if err := mc.Set(ctx, "b", 2, time.Minute); err != nil {
		t.Fatalf("set b: %v", err)
	}

	// touch "a" so "b" becomes the eviction candidate
	mc.entries["a"].touched = time.Now()
	mc.entries["b"].touched = time.Now().Add(-time.Hour)

	if err := mc.Set(ctx, "c", 3, time.Minute); err != nil {
		t.Fatalf("set c: %v", err)
	}

	var out int
	if err := mc.Get(ctx, "b", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatal("least recently touched entry should be evicted")
	}
	if err := mc.Get(ctx, "a", &out); err != nil {
		t.Fatalf("recently touched entry should survive: %v", err)
	}
}

func TestMemoryCacheTryLock(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	ok, err := mc.TryLock(ctx, "lock:refresh:sh:600519", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first lock: ok=%v err=%v", ok, err)
	}
	ok, err = mc.TryLock(ctx, "lock:refresh:sh:600519", time.Minute)
	if err != nil || ok {
		t.Fatalf("held lock should not be acquired again: ok=%v err=%v", ok, err)
	}
	if err := mc.Unlock(ctx, "lock:refresh:sh:600519"); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	ok, err = mc.TryLock(ctx, "lock:refresh:sh:600519", time.Minute)
	if err != nil || !ok {
		t.Fatalf("released lock should be acquirable: ok=%v err=%v", ok, err)
	}
}
