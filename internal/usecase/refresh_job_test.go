package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"StockLens/internal/regime"
	"StockLens/internal/snapshot"
	"StockLens/pkg/cache"
)

func refreshFixture(store *fakeBarStore) (*AnalysisUseCase, *cache.MemoryCache) {
	c := cache.NewMemoryCache()
	uc := NewAnalysisUseCase(
		store,
		&fakeSnapStore{},
		snapshot.NewAggregator(nil),
		regime.NewAdaptiveOptimizer(nil),
		c,
		nopMetrics{},
		nil,
		WithLookback(70),
		WithCacheTTL(time.Minute),
	)
	return uc, c
}

func refreshPayload(t *testing.T) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(RefreshPayload{Symbol: "600519", Market: "sh"})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return b
}

func TestRefreshJobRecomputesPastCache(t *testing.T) {
	store := &fakeBarStore{bars: mkTestBars(70)}
	uc, c := refreshFixture(store)
	defer c.Close()

	if _, err := uc.Analyze(context.Background(), "600519", "sh"); err != nil {
		t.Fatalf("warmup analyze: %v", err)
	}

	job := NewSnapshotRefreshJob(uc, c, nil)
	if err := job.Handle(context.Background(), refreshPayload(t)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if store.calls != 2 {
		t.Fatalf("store reads = %d, want 2 (refresh must bypass the cached result)", store.calls)
	}
}

func TestRefreshJobSkipsWhenLockHeld(t *testing.T) {
	store := &fakeBarStore{bars: mkTestBars(70)}
	uc, c := refreshFixture(store)
	defer c.Close()

	ok, err := c.TryLock(context.Background(), cache.RefreshLockKey("sh", "600519"), time.Minute)
	if err != nil || !ok {
		t.Fatalf("pre-acquire lock: ok=%v err=%v", ok, err)
	}

	job := NewSnapshotRefreshJob(uc, c, nil)
	if err := job.Handle(context.Background(), refreshPayload(t)); err != nil {
		t.Fatalf("handle with held lock: %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("store reads = %d, want 0 when another worker holds the lock", store.calls)
	}
}

func TestRefreshJobSwallowsMissingSymbol(t *testing.T) {
	uc, c := refreshFixture(&fakeBarStore{})
	defer c.Close()

	job := NewSnapshotRefreshJob(uc, c, nil)
	if err := job.Handle(context.Background(), refreshPayload(t)); err != nil {
		t.Fatalf("a symbol with no bars must not trigger retries: %v", err)
	}
}

func TestRefreshJobRejectsEmptyPayload(t *testing.T) {
	uc, c := refreshFixture(&fakeBarStore{})
	defer c.Close()

	job := NewSnapshotRefreshJob(uc, c, nil)
	if err := job.Handle(context.Background(), json.RawMessage(`{}`)); err == nil {
		t.Fatal("payload without a symbol should error")
	}
}
