package ratelimit

import (
	"testing"
	"time"
)

func TestAllowBurstThenDeny(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("client", 3, 0) {
			t.Fatalf("request %d within burst should pass", i+1)
		}
	}
	if l.Allow("client", 3, 0) {
		t.Fatal("request past the burst should be denied")
	}
}

func TestAllowRefills(t *testing.T) {
	l := New()
	if !l.Allow("client", 1, 100) {
		t.Fatal("first request should pass")
	}
	if l.Allow("client", 1, 100) {
		t.Fatal("bucket should be empty immediately after")
	}
	// backdate the bucket instead of sleeping
	l.buckets["client"].last = time.Now().Add(-time.Second)
	if !l.Allow("client", 1, 100) {
		t.Fatal("bucket should refill after idle time")
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0) {
		t.Fatal("first key should pass")
	}
	if !l.Allow("b", 1, 0) {
		t.Fatal("second key should have its own bucket")
	}
	if l.Allow("a", 1, 0) {
		t.Fatal("first key should be exhausted")
	}
}

func TestPruneEvictsIdleBuckets(t *testing.T) {
	l := New()
	l.buckets["idle"] = &bucket{tokens: 1, last: time.Now().Add(-idleEvictAfter - time.Minute)}
	l.buckets["warm"] = &bucket{tokens: 1, last: time.Now()}
	l.pruneLocked(time.Now())
	if _, ok := l.buckets["idle"]; ok {
		t.Fatal("idle bucket should be pruned")
	}
	if _, ok := l.buckets["warm"]; !ok {
		t.Fatal("warm bucket should survive")
	}
}
