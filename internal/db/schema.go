package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS daily_quotes (
		id          BIGSERIAL PRIMARY KEY,
		symbol      TEXT NOT NULL,
		quote_date  DATE NOT NULL,
		open        DOUBLE PRECISION,
		high        DOUBLE PRECISION,
		low         DOUBLE PRECISION,
		close       DOUBLE PRECISION NOT NULL,
		volume      BIGINT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (symbol, quote_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_quotes_date ON daily_quotes (quote_date)`,
	`CREATE TABLE IF NOT EXISTS strategy_log (
		id          BIGSERIAL PRIMARY KEY,
		symbol      TEXT NOT NULL,
		qty         BIGINT NOT NULL,
		log_date    DATE NOT NULL,
		strategy    TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_strategy_log_date ON strategy_log (log_date)`,
}

// EnsureSchema creates the warehouse tables if they do not exist yet.
// Statements are idempotent so this is safe on every startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
