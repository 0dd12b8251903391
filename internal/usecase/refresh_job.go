package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	domrepo "StockLens/internal/domain/repository"
	"StockLens/pkg/cache"
	xhttp "StockLens/pkg/http"
	applogger "StockLens/pkg/logger"
	"StockLens/pkg/queue"
	"StockLens/pkg/util"
)

// RefreshMessageType routes refresh messages to SnapshotRefreshJob.
const RefreshMessageType = "analysis.refresh"

// RefreshPayload identifies one symbol to recompute.
type RefreshPayload struct {
	Symbol string `json:"symbol"`
	Market string `json:"market"`
}

// SnapshotRefreshJob recomputes a symbol's snapshot in the background so API
// reads stay warm past the cache TTL. A Redis lock keeps concurrent workers
// off the same symbol.
type SnapshotRefreshJob struct {
	analysis *AnalysisUseCase
	cache    cache.Service
	l        *applogger.Logger
	lockTTL  time.Duration
}

func NewSnapshotRefreshJob(analysis *AnalysisUseCase, c cache.Service, l *applogger.Logger) *SnapshotRefreshJob {
	return &SnapshotRefreshJob{
		analysis: analysis,
		cache:    c,
		l:        l,
		lockTTL:  30 * time.Second,
	}
}

func (j *SnapshotRefreshJob) Name() string { return "snapshot-refresh" }

func (j *SnapshotRefreshJob) Type() string { return RefreshMessageType }

func (j *SnapshotRefreshJob) Handle(ctx context.Context, payload json.RawMessage) error {
	p, err := queue.DecodePayload[RefreshPayload](payload)
	if err != nil {
		return err
	}
	if p.Symbol == "" {
		return fmt.Errorf("refresh payload missing symbol")
	}

	lockKey := cache.RefreshLockKey(p.Market, p.Symbol)
	acquired, err := j.cache.TryLock(ctx, lockKey, j.lockTTL)
	if err != nil {
		return fmt.Errorf("acquire refresh lock: %w", err)
	}
	if !acquired {
		// another worker holds the symbol
		return nil
	}
	defer func() {
		_ = j.cache.Unlock(context.Background(), lockKey)
	}()

	// drop the cached result so Analyze recomputes from the store
	if err := j.cache.Delete(ctx, cache.SnapshotKey(p.Market, p.Symbol)); err != nil && j.l != nil {
		j.l.Warn("refresh cache invalidation failed",
			applogger.String("symbol", p.Symbol),
			applogger.Error(err))
	}

	_, err = j.analysis.Analyze(ctx, p.Symbol, domrepo.Market(p.Market))
	if err != nil {
		var appErr *xhttp.AppError
		if errors.As(err, &appErr) && appErr.Status == http.StatusNotFound {
			// no bars yet, nothing to retry
			return nil
		}
		return err
	}

	if j.l != nil {
		j.l.Debug("snapshot refreshed",
			applogger.String("symbol", p.Symbol),
			applogger.String("market", p.Market))
	}
	return nil
}

// RefreshScheduler enqueues a refresh for every tracked symbol on a fixed
// interval. Symbols use the market:code form.
type RefreshScheduler struct {
	q        queue.Publisher
	symbols  []string
	interval time.Duration
	l        *applogger.Logger
}

func NewRefreshScheduler(q queue.Publisher, symbols []string, interval time.Duration, l *applogger.Logger) *RefreshScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &RefreshScheduler{q: q, symbols: symbols, interval: interval, l: l}
}

// Run blocks until ctx is cancelled.
func (s *RefreshScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.enqueueAll(ctx)
		}
	}
}

func (s *RefreshScheduler) enqueueAll(ctx context.Context) {
	for _, sym := range s.symbols {
		market, code, err := util.SplitSymbol(sym)
		if err != nil {
			continue
		}
		payload := RefreshPayload{Symbol: code, Market: market}
		if err := s.q.Enqueue(ctx, RefreshMessageType, payload); err != nil {
			if s.l != nil {
				s.l.Warn("refresh enqueue failed",
					applogger.String("symbol", sym),
					applogger.Error(err))
			}
			return
		}
	}
}
