package usecase

import (
	"context"
	"fmt"
	"time"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	"StockLens/internal/regime"
	"StockLens/internal/snapshot"
	"StockLens/pkg/cache"
	xhttp "StockLens/pkg/http"
	applogger "StockLens/pkg/logger"
)

// AnalysisUseCase computes indicator snapshots over stored bar series and
// feeds the regime optimizer. Snapshots are cached in Redis and persisted
// to the columnar store.
type AnalysisUseCase struct {
	bars     domrepo.BarStore
	snaps    domrepo.SnapshotStore
	agg      *snapshot.Aggregator
	opt      *regime.AdaptiveOptimizer
	cache    cache.Service
	metrics  domrepo.Metrics
	l        *applogger.Logger
	lookback int
	cacheTTL time.Duration
	timeout  time.Duration
}

type AnalysisOption func(*AnalysisUseCase)

// WithLookback sets how many bars back the snapshot computation reaches.
func WithLookback(n int) AnalysisOption {
	return func(uc *AnalysisUseCase) {
		if n > 0 {
			uc.lookback = n
		}
	}
}

// WithCacheTTL sets the snapshot cache lifetime.
func WithCacheTTL(ttl time.Duration) AnalysisOption {
	return func(uc *AnalysisUseCase) {
		if ttl > 0 {
			uc.cacheTTL = ttl
		}
	}
}

func NewAnalysisUseCase(
	bars domrepo.BarStore,
	snaps domrepo.SnapshotStore,
	agg *snapshot.Aggregator,
	opt *regime.AdaptiveOptimizer,
	c cache.Service,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	opts ...AnalysisOption,
) *AnalysisUseCase {
	uc := &AnalysisUseCase{
		bars:     bars,
		snaps:    snaps,
		agg:      agg,
		opt:      opt,
		cache:    c,
		metrics:  metrics,
		l:        l,
		lookback: 120,
		cacheTTL: 5 * time.Minute,
		timeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// AnalysisResult bundles one snapshot with the regime view derived from it.
type AnalysisResult struct {
	Symbol     string                   `json:"symbol"`
	Market     string                   `json:"market"`
	Date       time.Time                `json:"date"`
	Bars       int                      `json:"bars"`
	Snapshot   models.IndicatorSnapshot `json:"snapshot"`
	Regime     regime.Regime            `json:"regime"`
	Parameters regime.ParameterBundle   `json:"parameters"`
	Timestamp  time.Time                `json:"timestamp"`
}

func snapshotCacheKey(symbol string, market domrepo.Market) string {
	return cache.SnapshotKey(string(market), symbol)
}

// Analyze loads the bar history, computes the snapshot, updates the regime
// and returns the combined view. Cached results short-circuit the whole path.
func (uc *AnalysisUseCase) Analyze(ctx context.Context, symbol string, market domrepo.Market) (*AnalysisResult, error) {
	if symbol == "" {
		return nil, xhttp.BadRequestError("symbol required")
	}
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	key := snapshotCacheKey(symbol, market)
	if uc.cache != nil {
		var cached AnalysisResult
		if err := uc.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	start := time.Now()
	bars, err := uc.bars.GetLatestBars(ctx, symbol, market, uc.lookback)
	if err != nil {
		uc.metrics.RecordError("analysis_load")
		return nil, fmt.Errorf("load bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, xhttp.NotFoundErrorf("no bars for %s:%s", market, symbol)
	}

	snap := uc.agg.Aggregate(bars)
	current := uc.opt.Update(snap, models.Closes(bars))

	res := &AnalysisResult{
		Symbol:     symbol,
		Market:     string(market),
		Date:       bars[len(bars)-1].Date,
		Bars:       len(bars),
		Snapshot:   snap,
		Regime:     current,
		Parameters: uc.opt.GetParameters(current),
		Timestamp:  time.Now(),
	}

	uc.metrics.RecordSnapshotComputed(symbol)
	uc.metrics.RecordRegime(string(current))
	uc.metrics.RecordLatency("analysis", time.Since(start).Seconds())

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, res, uc.cacheTTL); err != nil && uc.l != nil {
			uc.l.Warn("snapshot cache set failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
	}
	if uc.snaps != nil && len(snap) > 0 {
		stored := &models.StoredSnapshot{
			Symbol:    symbol,
			Market:    string(market),
			Date:      res.Date,
			Snapshot:  snap,
			CreatedAt: res.Timestamp,
		}
		if err := uc.snaps.Save(ctx, stored); err != nil {
			uc.metrics.RecordError("snapshot_persist")
			if uc.l != nil {
				uc.l.Warn("snapshot persist failed",
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
		}
	}
	return res, nil
}

// RegimeStatus is the operator view of the optimizer state.
type RegimeStatus struct {
	Regime     regime.Regime          `json:"regime"`
	Parameters regime.ParameterBundle `json:"parameters"`
	History    []regime.Record        `json:"history,omitempty"`
}

// Regime returns the stored regime with its bundle, optionally with recent
// evaluation history.
func (uc *AnalysisUseCase) Regime(historyLimit int) *RegimeStatus {
	current := uc.opt.CurrentRegime()
	status := &RegimeStatus{
		Regime:     current,
		Parameters: uc.opt.GetParameters(current),
	}
	if historyLimit != 0 {
		status.History = uc.opt.GetStatusHistory(historyLimit)
	}
	return status
}

// Parameters resolves a bundle by regime name; empty selects the current one.
func (uc *AnalysisUseCase) Parameters(name string) regime.ParameterBundle {
	return uc.opt.GetParameters(regime.Regime(name))
}

// History returns the most recent regime evaluations.
func (uc *AnalysisUseCase) History(limit int) []regime.Record {
	return uc.opt.GetStatusHistory(limit)
}
