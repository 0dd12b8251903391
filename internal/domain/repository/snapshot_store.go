package repository

import (
	"context"
	"time"

	"StockLens/internal/domain/models"
)

// SnapshotStore persists computed indicator snapshots keyed by
// (symbol, market, date).
type SnapshotStore interface {
	Save(ctx context.Context, s *models.StoredSnapshot) error
	Get(ctx context.Context, symbol string, market Market, date time.Time) (*models.StoredSnapshot, error)
	GetRange(ctx context.Context, symbol string, market Market, from, to time.Time) ([]models.StoredSnapshot, error)
}
