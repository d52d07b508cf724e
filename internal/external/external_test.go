package external

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const stockListPage = `<html><body>
<table class="quotes">
<tr><th>Code</th><th>Name</th></tr>
<tr><td>%s</td><td>Some Company</td></tr>
<tr><td>%s2</td><td>Other Company</td></tr>
</table>
</body></html>`

func newEoddataTestClient(srvURL string) *EoddataClient {
	c := NewEoddataClient()
	c.baseURL = srvURL
	c.retry.BaseDelay = 10 * time.Millisecond
	c.retry.MaxDelay = 20 * time.Millisecond
	return c
}

func TestEoddataNYSESymbols(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Requests arrive as /A.htm .. /Z.htm; echo a ticker per page.
		letter := r.URL.Path[1:2]
		fmt.Fprintf(w, stockListPage, letter, letter)
	}))
	defer srv.Close()

	client := newEoddataTestClient(srv.URL)
	symbols, err := client.NYSESymbols(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 26 pages x 2 tickers each ("A", "A2", ...).
	if len(symbols) != 52 {
		t.Fatalf("expected 52 symbols, got %d", len(symbols))
	}
	if symbols[0] != "A" {
		t.Fatalf("expected sorted output starting with A, got %q", symbols[0])
	}
}

func TestEoddataNYSESymbols_EmptyPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><table class="quotes"><tr><th>Code</th></tr></table></body></html>`)
	}))
	defer srv.Close()

	client := newEoddataTestClient(srv.URL)
	if _, err := client.NYSESymbols(context.Background()); err == nil {
		t.Fatal("expected error when no symbols scraped")
	}
}

func TestCleanSymbol(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"IBM", "IBM"},
		{" ge \n", "GE"},
		{"BRK.A", "BRK"},
		{"BF-B", "BF"},
		{"AA.B.C", "AA"},
		{"", ""},
		{"  ", ""},
	}
	for _, tc := range cases {
		if got := CleanSymbol(tc.in); got != tc.want {
			t.Fatalf("CleanSymbol(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUniverseCache(t *testing.T) {
	var calls atomic.Int32
	cache := &UniverseCache{
		fetch: func(ctx context.Context) ([]string, error) {
			calls.Add(1)
			return []string{"AAA", "BBB"}, nil
		},
		ttl: time.Hour,
	}

	for i := 0; i < 3; i++ {
		symbols, err := cache.Symbols(context.Background())
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if len(symbols) != 2 {
			t.Fatalf("call %d: expected 2 symbols, got %d", i, len(symbols))
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", calls.Load())
	}
}

func TestUniverseCache_ExpiredTTLRefetches(t *testing.T) {
	var calls atomic.Int32
	cache := &UniverseCache{
		fetch: func(ctx context.Context) ([]string, error) {
			calls.Add(1)
			return []string{"AAA"}, nil
		},
		ttl: 1 * time.Nanosecond,
	}

	if _, err := cache.Symbols(context.Background()); err != nil {
		t.Fatalf("first call: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, err := cache.Symbols(context.Background()); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected a refetch after TTL, got %d calls", calls.Load())
	}
}

const chartJSON = `{
  "chart": {
    "result": [{
      "timestamp": [1741824000, 1741910400, 1741996800],
      "indicators": {
        "quote": [{
          "open":   [100.0, 101.5, null],
          "high":   [102.0, 103.0, null],
          "low":    [99.0, 100.5, null],
          "close":  [101.0, 102.5, null],
          "volume": [1000000, 1200000, null]
        }]
      }
    }],
    "error": null
  }
}`

func TestYahooHistory(t *testing.T) {
	var gotInterval string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotInterval = r.URL.Query().Get("interval")
		if ua := r.Header.Get("User-Agent"); ua == "" || ua == "Go-http-client/1.1" {
			t.Errorf("default Go user agent must be overridden, got %q", ua)
		}
		fmt.Fprint(w, chartJSON)
	}))
	defer srv.Close()

	client := NewYahooClient()
	client.baseURL = srv.URL

	start := time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	rows, err := client.History(context.Background(), "IBM", start, end, "daily")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotInterval != "1d" {
		t.Fatalf("interval = %q, want 1d", gotInterval)
	}

	// The null-close period is skipped.
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Symbol != "IBM" || rows[0].Close != 101.0 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Open == nil || *rows[1].Open != 101.5 {
		t.Fatalf("unexpected second row open: %+v", rows[1])
	}
}

func TestYahooHistory_WeeklyInterval(t *testing.T) {
	var gotInterval string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotInterval = r.URL.Query().Get("interval")
		fmt.Fprint(w, chartJSON)
	}))
	defer srv.Close()

	client := NewYahooClient()
	client.baseURL = srv.URL

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	if _, err := client.History(context.Background(), "GE", start, end, "weekly"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotInterval != "1wk" {
		t.Fatalf("interval = %q, want 1wk", gotInterval)
	}
}

func TestYahooHistory_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	}))
	defer srv.Close()

	client := NewYahooClient()
	client.baseURL = srv.URL

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	if _, err := client.History(context.Background(), "GONE", start, end, "daily"); err == nil {
		t.Fatal("expected error for a delisted symbol")
	}
}
