package external

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"momentum/internal/httputil"
)

const eoddataBaseURL = "http://eoddata.com/stocklist/NYSE"

var alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// EoddataClient scrapes the NYSE ticker universe from the eoddata stock
// list pages, one page per leading letter.
type EoddataClient struct {
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewEoddataClient() *EoddataClient {
	return &EoddataClient{
		baseURL:    eoddataBaseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Second,
		},
	}
}

// NYSESymbols fetches the full symbol universe. Symbols are cleaned and
// de-duplicated; the result is sorted for deterministic downstream runs.
func (c *EoddataClient) NYSESymbols(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})

	for _, letter := range alphabet {
		page, err := c.fetchPage(ctx, string(letter))
		if err != nil {
			return nil, fmt.Errorf("stock list page %c: %w", letter, err)
		}
		for _, raw := range page {
			sym := CleanSymbol(raw)
			if sym == "" {
				continue
			}
			seen[sym] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("no symbols scraped from %s", c.baseURL)
	}

	symbols := make([]string, 0, len(seen))
	for s := range seen {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	log.Info().Int("count", len(symbols)).Msg("NYSE universe scraped")
	return symbols, nil
}

func (c *EoddataClient) fetchPage(ctx context.Context, letter string) ([]string, error) {
	url := fmt.Sprintf("%s/%s.htm", c.baseURL, letter)

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var symbols []string
	doc.Find("table.quotes tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		cell := row.Find("td").First().Text()
		if cell != "" {
			symbols = append(symbols, cell)
		}
	})

	return symbols, nil
}

// CleanSymbol normalizes a scraped ticker: trailing whitespace dropped,
// class/series suffixes ("BRK.A", "BF-B") stripped down to the root symbol.
func CleanSymbol(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ".", "-")
	if i := strings.Index(s, "-"); i >= 0 {
		s = s[:i]
	}
	return strings.ToUpper(s)
}

// UniverseCache wraps a symbol source with a TTL cache so the scrape runs at
// most once per TTL even when several jobs ask for the universe.
type UniverseCache struct {
	fetch func(ctx context.Context) ([]string, error)
	ttl   time.Duration

	mu        sync.Mutex
	symbols   []string
	fetchedAt time.Time
}

func NewUniverseCache(client *EoddataClient, ttl time.Duration) *UniverseCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &UniverseCache{fetch: client.NYSESymbols, ttl: ttl}
}

func (u *UniverseCache) Symbols(ctx context.Context) ([]string, error) {
	u.mu.Lock()
	if u.symbols != nil && time.Since(u.fetchedAt) < u.ttl {
		cached := make([]string, len(u.symbols))
		copy(cached, u.symbols)
		u.mu.Unlock()
		log.Debug().Int("count", len(cached)).Msg("using cached symbol universe")
		return cached, nil
	}
	u.mu.Unlock()

	symbols, err := u.fetch(ctx)
	if err != nil {
		return nil, err
	}

	u.mu.Lock()
	u.symbols = symbols
	u.fetchedAt = time.Now()
	u.mu.Unlock()

	out := make([]string, len(symbols))
	copy(out, symbols)
	return out, nil
}
