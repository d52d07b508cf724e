package updater

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"momentum/internal/export"
	"momentum/internal/models"
)

// UniverseSource yields the symbol universe to quote.
type UniverseSource interface {
	Symbols(ctx context.Context) ([]string, error)
}

// QuoteFetcher returns the latest daily bar per symbol. Symbols without a
// usable bar are simply absent from the map.
type QuoteFetcher interface {
	DailyBars(ctx context.Context, symbols []string) (map[string]models.DailyQuote, error)
}

// QuoteStore appends quote rows to the warehouse.
type QuoteStore interface {
	InsertDailyQuotes(ctx context.Context, quotes []models.DailyQuote) (int64, error)
}

type Updater struct {
	universe  UniverseSource
	fetcher   QuoteFetcher
	store     QuoteStore
	chunkSize int

	// DebugOut, when set, receives the rows as CSV instead of the store.
	DebugOut io.Writer
}

func New(universe UniverseSource, fetcher QuoteFetcher, store QuoteStore, chunkSize int) *Updater {
	if chunkSize <= 0 {
		chunkSize = 200
	}
	return &Updater{
		universe:  universe,
		fetcher:   fetcher,
		store:     store,
		chunkSize: chunkSize,
	}
}

// Run fetches the day's quotes for the whole universe and loads them into
// the warehouse. A failed chunk is logged and skipped; the run only fails
// when the universe itself cannot be resolved or nothing at all was fetched.
func (u *Updater) Run(ctx context.Context) error {
	started := time.Now()

	symbols, err := u.universe.Symbols(ctx)
	if err != nil {
		return fmt.Errorf("resolve universe: %w", err)
	}
	if len(symbols) == 0 {
		return fmt.Errorf("empty symbol universe")
	}

	log.Info().Int("symbols", len(symbols)).Int("chunk_size", u.chunkSize).Msg("daily update started")

	var quotes []models.DailyQuote
	failed := 0
	for _, chunk := range Chunks(symbols, u.chunkSize) {
		bars, err := u.fetcher.DailyBars(ctx, chunk)
		if err != nil {
			failed++
			log.Warn().Err(err).Int("chunk_len", len(chunk)).Msg("chunk fetch failed, skipping")
			continue
		}
		for _, sym := range chunk {
			if q, ok := bars[sym]; ok && q.Close > 0 {
				quotes = append(quotes, q)
			}
		}
	}

	if len(quotes) == 0 {
		return fmt.Errorf("no quotes fetched (%d chunks failed)", failed)
	}

	if u.DebugOut != nil {
		log.Info().Int("rows", len(quotes)).Msg("debug mode, writing CSV instead of warehouse")
		return export.WriteQuotes(u.DebugOut, quotes)
	}

	inserted, err := u.store.InsertDailyQuotes(ctx, quotes)
	if err != nil {
		return fmt.Errorf("load warehouse: %w", err)
	}

	log.Info().
		Int("fetched", len(quotes)).
		Int64("inserted", inserted).
		Int("failed_chunks", failed).
		Dur("elapsed", time.Since(started)).
		Msg("daily update complete")

	return nil
}

// Chunks splits the list into slices of at most n items.
func Chunks(list []string, n int) [][]string {
	if n < 1 {
		n = 1
	}
	var out [][]string
	for i := 0; i < len(list); i += n {
		end := i + n
		if end > len(list) {
			end = len(list)
		}
		out = append(out, list[i:end])
	}
	return out
}
