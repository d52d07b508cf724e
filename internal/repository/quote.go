package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"momentum/internal/models"
)

type QuoteRepo struct {
	pool *pgxpool.Pool
}

func NewQuoteRepo(pool *pgxpool.Pool) *QuoteRepo {
	return &QuoteRepo{pool: pool}
}

// InsertDailyQuotes appends quote rows, skipping any (symbol, quote_date)
// pair already present. Returns the number of rows actually inserted, so a
// re-run on the same day reports 0 instead of duplicating.
func (r *QuoteRepo) InsertDailyQuotes(ctx context.Context, quotes []models.DailyQuote) (int64, error) {
	if len(quotes) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, q := range quotes {
		batch.Queue(
			`INSERT INTO daily_quotes (symbol, quote_date, open, high, low, close, volume)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (symbol, quote_date) DO NOTHING`,
			q.Symbol, q.Date, q.Open, q.High, q.Low, q.Close, q.Volume,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range quotes {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("insert quote: %w", err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// CloseHistory returns (symbol, close, date) rows since the given date,
// oldest first, the momentum strategy input.
func (r *QuoteRepo) CloseHistory(ctx context.Context, since time.Time) ([]models.CloseBar, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT symbol, quote_date, close FROM daily_quotes
		 WHERE quote_date >= $1 ORDER BY quote_date ASC, symbol ASC`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CloseBar
	for rows.Next() {
		var b models.CloseBar
		if err := rows.Scan(&b.Symbol, &b.Date, &b.Close); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// LatestDate returns the most recent quote_date, or ok=false on an empty table.
func (r *QuoteRepo) LatestDate(ctx context.Context) (time.Time, bool, error) {
	var d *time.Time
	err := r.pool.QueryRow(ctx, `SELECT MAX(quote_date) FROM daily_quotes`).Scan(&d)
	if err != nil {
		return time.Time{}, false, err
	}
	if d == nil {
		return time.Time{}, false, nil
	}
	return *d, true, nil
}

func (r *QuoteRepo) QuotesByDay(ctx context.Context, day string, limit int) ([]models.DailyQuote, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, symbol, quote_date, open, high, low, close, volume
		 FROM daily_quotes WHERE quote_date = $1 ORDER BY symbol ASC LIMIT $2`,
		day, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuotes(rows)
}

func (r *QuoteRepo) SymbolHistory(ctx context.Context, symbol string, limit int) ([]models.DailyQuote, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, symbol, quote_date, open, high, low, close, volume
		 FROM daily_quotes WHERE symbol = $1 ORDER BY quote_date DESC LIMIT $2`,
		symbol, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuotes(rows)
}

func (r *QuoteRepo) AvailableDays(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT quote_date FROM daily_quotes ORDER BY quote_date DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		days = append(days, d.Format("2006-01-02"))
	}
	return days, rows.Err()
}

// --- scan helpers ---

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectQuotes(rows rowsIter) ([]models.DailyQuote, error) {
	var out []models.DailyQuote
	for rows.Next() {
		var q models.DailyQuote
		if err := rows.Scan(&q.ID, &q.Symbol, &q.Date, &q.Open, &q.High, &q.Low, &q.Close, &q.Volume); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
