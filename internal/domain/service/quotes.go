package service

import (
	"context"

	"StockLens/internal/domain/models"
)

// QuoteFetcher pulls historical daily bars from an external quote provider.
type QuoteFetcher interface {
	FetchDailyBars(ctx context.Context, symbol, market string, limit int) ([]models.Bar, error)
}
