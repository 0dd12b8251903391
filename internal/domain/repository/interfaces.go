package repository

import (
	"context"
	"time"

	"StockLens/internal/domain/models"
)

type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Bar, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type Publisher interface {
	Publish(ctx context.Context, b *models.Bar) error
	PublishBatch(ctx context.Context, bars []*models.Bar) error
	Close() error
}

type BarStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, b *models.Bar) error
	StoreBatch(ctx context.Context, bars []*models.Bar) error
	GetBars(ctx context.Context, symbol string, market Market, from, to time.Time) ([]models.Bar, error)
	GetLatestBars(ctx context.Context, symbol string, market Market, n int) ([]models.Bar, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordBarStored(market, symbol string)
	RecordSnapshotComputed(symbol string)
	RecordRegime(regime string)
	RecordError(kind string)
	RecordLastClose(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
