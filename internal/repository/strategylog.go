package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"momentum/internal/models"
)

type StrategyLogRepo struct {
	pool *pgxpool.Pool
}

func NewStrategyLogRepo(pool *pgxpool.Pool) *StrategyLogRepo {
	return &StrategyLogRepo{pool: pool}
}

// RecordPositions snapshots the post-trade portfolio for later reference.
func (r *StrategyLogRepo) RecordPositions(ctx context.Context, positions []models.PositionLog) error {
	if len(positions) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range positions {
		batch.Queue(
			`INSERT INTO strategy_log (symbol, qty, log_date, strategy)
			 VALUES ($1, $2, $3, $4)`,
			p.Symbol, p.Qty, p.Date, p.Strategy,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range positions {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert strategy log: %w", err)
		}
	}
	return nil
}

func (r *StrategyLogRepo) History(ctx context.Context, limit int) ([]models.PositionLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, symbol, qty, log_date, strategy FROM strategy_log
		 ORDER BY log_date DESC, symbol ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PositionLog
	for rows.Next() {
		var p models.PositionLog
		if err := rows.Scan(&p.ID, &p.Symbol, &p.Qty, &p.Date, &p.Strategy); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
