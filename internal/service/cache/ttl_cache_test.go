package cache

import (
	"testing"
	"time"
)

func TestTTLCacheRoundTrip(t *testing.T) {
	c := NewTTLCache()
	if err := c.SetBytes("k", []byte("body"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	b, ok, err := c.GetBytes("k")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(b) != "body" {
		t.Fatalf("body = %q", b)
	}
}

func TestTTLCacheMiss(t *testing.T) {
	c := NewTTLCache()
	if _, ok, _ := c.GetBytes("missing"); ok {
		t.Fatal("missing key should not hit")
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache()
	c.entries["k"] = ttlEntry{body: []byte("old"), expireAt: time.Now().Add(-time.Second)}
	if _, ok, _ := c.GetBytes("k"); ok {
		t.Fatal("expired entry should not hit")
	}
	if _, present := c.entries["k"]; present {
		t.Fatal("expired entry should be dropped on read")
	}
}

func TestTTLCacheEvictsWhenFull(t *testing.T) {
	c := NewTTLCache()
	c.maxEntries = 2
	_ = c.SetBytes("a", []byte("1"), time.Minute)
	_ = c.SetBytes("b", []byte("2"), 2*time.Minute)
	_ = c.SetBytes("c", []byte("3"), 3*time.Minute)
	if len(c.entries) > 2 {
		t.Fatalf("entries = %d, want at most 2", len(c.entries))
	}
	// the soonest-expiring entry goes first
	if _, ok, _ := c.GetBytes("a"); ok {
		t.Fatal("soonest-expiring entry should have been evicted")
	}
	if _, ok, _ := c.GetBytes("c"); !ok {
		t.Fatal("latest entry should survive eviction")
	}
}
