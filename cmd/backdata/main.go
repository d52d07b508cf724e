package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"momentum/internal/export"
	"momentum/internal/external"
	"momentum/internal/logging"
	"momentum/internal/models"
)

const outputFile = "back_data.csv"

// Pause between per-symbol history fetches so a full-universe run does not
// hammer the provider.
const fetchThrottle = 500 * time.Millisecond

type symbolList []string

func (s *symbolList) String() string { return strings.Join(*s, ",") }

func (s *symbolList) Set(v string) error {
	sym := external.CleanSymbol(v)
	if sym == "" {
		return fmt.Errorf("empty symbol")
	}
	*s = append(*s, sym)
	return nil
}

func main() {
	var (
		path    string
		freq    string
		symbols symbolList
	)

	flag.StringVar(&path, "p", ".", "output directory for "+outputFile)
	flag.StringVar(&path, "path", ".", "output directory for "+outputFile)
	flag.StringVar(&freq, "f", "daily", "bar frequency: daily or weekly")
	flag.StringVar(&freq, "freq", "daily", "bar frequency: daily or weekly")
	flag.Var(&symbols, "s", "symbol to download (repeatable; default: full NYSE list)")
	flag.Var(&symbols, "symbol", "symbol to download (repeatable; default: full NYSE list)")
	flag.Usage = usage
	flag.Parse()

	logging.Setup(os.Getenv("LOG_LEVEL"))

	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}
	start, err := time.Parse("2006-01-02", flag.Arg(0))
	if err != nil {
		fatalf("invalid START date %q, expected YYYY-MM-DD", flag.Arg(0))
	}
	end, err := time.Parse("2006-01-02", flag.Arg(1))
	if err != nil {
		fatalf("invalid END date %q, expected YYYY-MM-DD", flag.Arg(1))
	}
	if end.Before(start) {
		fatalf("END %s is before START %s", flag.Arg(1), flag.Arg(0))
	}
	if freq != "daily" && freq != "weekly" {
		fatalf("invalid frequency %q, expected daily or weekly", freq)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(symbols) == 0 {
		log.Info().Msg("no symbols given, scraping the full NYSE list")
		list, err := external.NewEoddataClient().NYSESymbols(ctx)
		if err != nil {
			fatalf("scrape symbol list: %v", err)
		}
		symbols = list
	}

	log.Info().
		Int("symbols", len(symbols)).
		Str("start", start.Format("2006-01-02")).
		Str("end", end.Format("2006-01-02")).
		Str("freq", freq).
		Msg("downloading history")

	yahoo := external.NewYahooClient()
	var rows []models.DailyQuote
	failed := 0
	for i, sym := range symbols {
		if ctx.Err() != nil {
			log.Warn().Int("done", i).Msg("interrupted, writing what was fetched")
			break
		}

		history, err := yahoo.History(ctx, sym, start, end, freq)
		if err != nil {
			failed++
			log.Warn().Err(err).Str("symbol", sym).Msg("history fetch failed, skipping")
		} else {
			rows = append(rows, history...)
		}

		if i < len(symbols)-1 {
			time.Sleep(fetchThrottle)
		}
	}

	if len(rows) == 0 {
		fatalf("no history downloaded (%d symbols failed)", failed)
	}

	outPath := filepath.Join(path, outputFile)
	f, err := os.Create(outPath)
	if err != nil {
		fatalf("create %s: %v", outPath, err)
	}
	defer f.Close()

	if err := export.WriteQuotes(f, rows); err != nil {
		fatalf("write %s: %v", outPath, err)
	}

	log.Info().
		Int("rows", len(rows)).
		Int("failed_symbols", failed).
		Str("file", outPath).
		Msg("back data written")
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: backdata [options] START END

Downloads OHLCV history for NYSE symbols into %s.
START and END are inclusive dates in YYYY-MM-DD form.

Options:
  -p, --path DIR       output directory (default ".")
  -f, --freq FREQ      bar frequency, daily or weekly (default "daily")
  -s, --symbol SYM     download only this symbol; repeat for several
`, outputFile)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
