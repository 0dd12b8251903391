package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	pkgch "StockLens/pkg/clickhouse"
	applogger "StockLens/pkg/logger"
)

// CHSnapshotStore implements SnapshotStore backed by ClickHouse. Snapshots
// are stored as one JSON document per (symbol, market, date).
type CHSnapshotStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHSnapshotStore(ch *pkgch.Client, table string) *CHSnapshotStore {
	return &CHSnapshotStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHSnapshotStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHSnapshotStore) Save(ctx context.Context, snap *models.StoredSnapshot) error {
	start := time.Now()
	payload, err := json.Marshal(snap.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	q := fmt.Sprintf("INSERT INTO %s (date, symbol, market, snapshot, created_at) VALUES (?, ?, ?, ?, ?)", s.table)
	createdAt := snap.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if _, err := s.db.ExecContext(ctx, q, snap.Date, snap.Symbol, snap.Market, string(payload), createdAt); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse save_snapshot error",
				applogger.String("symbol", snap.Symbol),
				applogger.String("market", snap.Market),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("save snapshot: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse save_snapshot ok",
			applogger.String("symbol", snap.Symbol),
			applogger.String("market", snap.Market),
			applogger.Int("keys", len(snap.Snapshot)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHSnapshotStore) Get(ctx context.Context, symbol string, market domrepo.Market, date time.Time) (*models.StoredSnapshot, error) {
	q := fmt.Sprintf(`
        SELECT date, symbol, market, snapshot, created_at
        FROM %s
        WHERE symbol = ? AND market = ? AND date = ?
        ORDER BY created_at DESC
        LIMIT 1
    `, s.table)
	row := s.db.QueryRowContext(ctx, q, symbol, string(market), date)
	out, err := scanSnapshot(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if s.l != nil {
			s.l.Error("clickhouse get_snapshot error",
				applogger.String("symbol", symbol),
				applogger.String("market", string(market)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return out, nil
}

func (s *CHSnapshotStore) GetRange(ctx context.Context, symbol string, market domrepo.Market, from, to time.Time) ([]models.StoredSnapshot, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT date, symbol, market, snapshot, created_at
        FROM %s
        WHERE symbol = ? AND market = ? AND date >= ? AND date <= ?
        ORDER BY date ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, string(market), from, to)
	if err != nil {
		return nil, fmt.Errorf("get snapshot range: %w", err)
	}
	defer rows.Close()

	out := make([]models.StoredSnapshot, 0, 64)
	for rows.Next() {
		snap, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse snapshot_range ok",
			applogger.String("symbol", symbol),
			applogger.String("market", string(market)),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func scanSnapshot(scan func(dest ...any) error) (*models.StoredSnapshot, error) {
	var s models.StoredSnapshot
	var payload string
	if err := scan(&s.Date, &s.Symbol, &s.Market, &payload, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), &s.Snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &s, nil
}
