package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"momentum/internal/models"
)

// DataClient wraps the Alpaca market data API for daily-bar snapshots.
type DataClient struct {
	client *marketdata.Client
}

func NewDataClient(apiKey, apiSecret string) *DataClient {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	return &DataClient{client: marketdata.NewClient(opts)}
}

// DailyBars fetches the latest daily bar for each symbol. Symbols without a
// bar (unknown, halted, delisted) are absent from the result. The caller is
// responsible for chunking: the provider caps symbols per request.
func (d *DataClient) DailyBars(ctx context.Context, symbols []string) (map[string]models.DailyQuote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	snapshots, err := d.client.GetSnapshots(symbols, marketdata.GetSnapshotRequest{})
	if err != nil {
		return nil, fmt.Errorf("fetch snapshots: %w", err)
	}

	out := make(map[string]models.DailyQuote, len(snapshots))
	for symbol, snap := range snapshots {
		if snap == nil || snap.DailyBar == nil {
			continue
		}
		bar := snap.DailyBar
		if bar.Close <= 0 {
			continue
		}
		open, high, low := bar.Open, bar.High, bar.Low
		volume := int64(bar.Volume)
		out[symbol] = models.DailyQuote{
			Symbol: symbol,
			Date:   bar.Timestamp.UTC().Truncate(24 * time.Hour),
			Open:   &open,
			High:   &high,
			Low:    &low,
			Close:  bar.Close,
			Volume: &volume,
		}
	}
	return out, nil
}
