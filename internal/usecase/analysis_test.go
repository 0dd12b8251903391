package usecase

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"
	"time"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	"StockLens/internal/regime"
	"StockLens/internal/snapshot"
	"StockLens/pkg/cache"
	xhttp "StockLens/pkg/http"
)

type fakeBarStore struct {
	bars   []models.Bar
	stored []*models.Bar
	calls  int
}

func (s *fakeBarStore) Init(ctx context.Context) error { return nil }
func (s *fakeBarStore) Store(ctx context.Context, b *models.Bar) error {
	s.stored = append(s.stored, b)
	return nil
}
func (s *fakeBarStore) StoreBatch(ctx context.Context, bars []*models.Bar) error {
	return nil
}
func (s *fakeBarStore) GetBars(ctx context.Context, symbol string, market domrepo.Market, from, to time.Time) ([]models.Bar, error) {
	return s.bars, nil
}
func (s *fakeBarStore) GetLatestBars(ctx context.Context, symbol string, market domrepo.Market, n int) ([]models.Bar, error) {
	s.calls++
	return s.bars, nil
}
func (s *fakeBarStore) Health(ctx context.Context) error { return nil }
func (s *fakeBarStore) Close() error                     { return nil }

type fakeSnapStore struct {
	saved []*models.StoredSnapshot
}

func (s *fakeSnapStore) Save(ctx context.Context, snap *models.StoredSnapshot) error {
	s.saved = append(s.saved, snap)
	return nil
}
func (s *fakeSnapStore) Get(ctx context.Context, symbol string, market domrepo.Market, date time.Time) (*models.StoredSnapshot, error) {
	return nil, nil
}
func (s *fakeSnapStore) GetRange(ctx context.Context, symbol string, market domrepo.Market, from, to time.Time) ([]models.StoredSnapshot, error) {
	return nil, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordBarStored(market, symbol string)        {}
func (nopMetrics) RecordSnapshotComputed(symbol string)         {}
func (nopMetrics) RecordRegime(regime string)                   {}
func (nopMetrics) RecordError(kind string)                      {}
func (nopMetrics) RecordLastClose(symbol string, price float64) {}
func (nopMetrics) RecordLatency(op string, seconds float64)     {}

func mkTestBars(n int) []models.Bar {
	bars := make([]models.Bar, n)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := 100 + math.Sin(float64(i)/3)*5 + float64(i)*0.2
		bars[i] = models.Bar{
			Symbol: "600519",
			Market: "sh",
			Date:   day.AddDate(0, 0, i),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1e6 + float64(i)*1e4,
			Amount: c * 1e6,
		}
	}
	return bars
}

func newTestAnalysis(store *fakeBarStore, snaps *fakeSnapStore) *AnalysisUseCase {
	return NewAnalysisUseCase(
		store,
		snaps,
		snapshot.NewAggregator(nil),
		regime.NewAdaptiveOptimizer(nil),
		cache.NewMemoryCache(),
		nopMetrics{},
		nil,
		WithLookback(70),
		WithCacheTTL(time.Minute),
	)
}

func TestAnalyzeComputesAndPersists(t *testing.T) {
	store := &fakeBarStore{bars: mkTestBars(70)}
	snaps := &fakeSnapStore{}
	uc := newTestAnalysis(store, snaps)

	res, err := uc.Analyze(context.Background(), "600519", domrepo.MarketSH)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Bars != 70 {
		t.Fatalf("bars = %d, want 70", res.Bars)
	}
	if res.Symbol != "600519" || res.Market != "sh" {
		t.Fatalf("unexpected identity: %s %s", res.Symbol, res.Market)
	}
	if len(res.Snapshot) == 0 {
		t.Fatal("snapshot should not be empty for 70 bars")
	}
	if res.Regime == "" {
		t.Fatal("regime should be set")
	}
	if len(snaps.saved) != 1 {
		t.Fatalf("persisted snapshots = %d, want 1", len(snaps.saved))
	}
	if !snaps.saved[0].Date.Equal(store.bars[69].Date) {
		t.Fatalf("persisted date = %v, want last bar date", snaps.saved[0].Date)
	}
}

func TestAnalyzeServesSecondCallFromCache(t *testing.T) {
	store := &fakeBarStore{bars: mkTestBars(70)}
	uc := newTestAnalysis(store, &fakeSnapStore{})

	if _, err := uc.Analyze(context.Background(), "600519", domrepo.MarketSH); err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	if _, err := uc.Analyze(context.Background(), "600519", domrepo.MarketSH); err != nil {
		t.Fatalf("second analyze: %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("store reads = %d, want 1 (second call should hit cache)", store.calls)
	}
}

func TestAnalyzeNoBars(t *testing.T) {
	uc := newTestAnalysis(&fakeBarStore{}, &fakeSnapStore{})

	_, err := uc.Analyze(context.Background(), "600519", domrepo.MarketSH)
	var appErr *xhttp.AppError
	if !errors.As(err, &appErr) || appErr.Status != http.StatusNotFound {
		t.Fatalf("empty store should return a 404, got %v", err)
	}
}

func TestAnalyzeEmptySymbol(t *testing.T) {
	uc := newTestAnalysis(&fakeBarStore{bars: mkTestBars(10)}, &fakeSnapStore{})

	_, err := uc.Analyze(context.Background(), "", domrepo.MarketSH)
	var appErr *xhttp.AppError
	if !errors.As(err, &appErr) || appErr.Status != http.StatusBadRequest {
		t.Fatalf("missing symbol should return a 400, got %v", err)
	}
}
