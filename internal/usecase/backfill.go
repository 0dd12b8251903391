package usecase

import (
	"context"
	"fmt"
	"time"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	domsvc "StockLens/internal/domain/service"
	applogger "StockLens/pkg/logger"
	"StockLens/pkg/util"
)

// BackfillUseCase seeds the bar store with history from the quote provider
// so snapshots are computable before the live stream has accumulated data.
type BackfillUseCase struct {
	fetcher domsvc.QuoteFetcher
	store   domrepo.BarStore
	metrics domrepo.Metrics
	l       *applogger.Logger
	depth   int
}

func NewBackfillUseCase(fetcher domsvc.QuoteFetcher, store domrepo.BarStore, metrics domrepo.Metrics, l *applogger.Logger, depth int) *BackfillUseCase {
	if depth <= 0 {
		depth = 250
	}
	return &BackfillUseCase{fetcher: fetcher, store: store, metrics: metrics, l: l, depth: depth}
}

// Run backfills every symbol, continuing past per-symbol failures.
// Symbols use the market:code form.
func (uc *BackfillUseCase) Run(ctx context.Context, symbols []string) error {
	var failed int
	for _, s := range symbols {
		market, code, err := util.SplitSymbol(s)
		if err != nil {
			failed++
			if uc.l != nil {
				uc.l.Warn("backfill symbol skipped", applogger.String("symbol", s), applogger.Error(err))
			}
			continue
		}
		if err := uc.backfillOne(ctx, code, market); err != nil {
			failed++
			uc.metrics.RecordError("backfill")
			if uc.l != nil {
				uc.l.Warn("backfill failed", applogger.String("symbol", s), applogger.Error(err))
			}
		}
	}
	if failed == len(symbols) && len(symbols) > 0 {
		return fmt.Errorf("backfill failed for all %d symbols", len(symbols))
	}
	return nil
}

func (uc *BackfillUseCase) backfillOne(ctx context.Context, symbol, market string) error {
	start := time.Now()
	bars, err := uc.fetcher.FetchDailyBars(ctx, symbol, market, uc.depth)
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return fmt.Errorf("provider returned no bars for %s.%s", market, symbol)
	}

	batch := make([]*models.Bar, 0, len(bars))
	for i := range bars {
		if bars[i].Valid() {
			batch = append(batch, &bars[i])
		}
	}
	if err := uc.store.StoreBatch(ctx, batch); err != nil {
		return fmt.Errorf("store backfill batch: %w", err)
	}
	uc.metrics.RecordLatency("backfill", time.Since(start).Seconds())
	if uc.l != nil {
		uc.l.Info("backfill complete",
			applogger.String("symbol", symbol),
			applogger.String("market", market),
			applogger.Int("bars", len(batch)),
		)
	}
	return nil
}
