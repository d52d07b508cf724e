package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"momentum/internal/httputil"
	"momentum/internal/models"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// Yahoo rejects the default Go user agent.
const yahooUserAgent = "Mozilla/5.0 (compatible; momentum/1.0)"

// YahooClient fetches date-bounded OHLCV history from the Yahoo Finance
// chart API.
type YahooClient struct {
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewYahooClient() *YahooClient {
	return &YahooClient{
		baseURL:    yahooBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Second,
		},
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History returns one DailyQuote per period between start and end inclusive.
// freq is "daily" or "weekly". Periods with no close are skipped.
func (c *YahooClient) History(ctx context.Context, symbol string, start, end time.Time, freq string) ([]models.DailyQuote, error) {
	interval := "1d"
	if freq == "weekly" {
		interval = "1wk"
	}

	q := url.Values{}
	q.Set("period1", fmt.Sprintf("%d", start.Unix()))
	q.Set("period2", fmt.Sprintf("%d", end.AddDate(0, 0, 1).Unix()))
	q.Set("interval", interval)
	q.Set("events", "history")

	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), q.Encode())

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", yahooUserAgent)
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("chart fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart %s: status %d", symbol, resp.StatusCode)
	}

	var data chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode chart %s: %w", symbol, err)
	}

	if data.Chart.Error != nil {
		return nil, fmt.Errorf("chart %s: %s (%s)", symbol, data.Chart.Error.Description, data.Chart.Error.Code)
	}
	if len(data.Chart.Result) == 0 || len(data.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart %s: empty result", symbol)
	}

	result := data.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	var rows []models.DailyQuote
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		rows = append(rows, models.DailyQuote{
			Symbol: symbol,
			Date:   time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  *quote.Close[i],
			Volume: at(quote.Volume, i),
		})
	}

	return rows, nil
}

func at[T any](xs []*T, i int) *T {
	if i < len(xs) {
		return xs[i]
	}
	return nil
}
