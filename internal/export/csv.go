package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"momentum/internal/models"
)

var quoteHeader = []string{"symbol", "date", "open", "high", "low", "close", "volume"}

// WriteQuotes writes OHLCV rows as CSV, one row per symbol per period.
// Missing open/high/low/volume values become empty fields.
func WriteQuotes(w io.Writer, quotes []models.DailyQuote) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(quoteHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, q := range quotes {
		record := []string{
			q.Symbol,
			models.DateOnly(q.Date),
			floatField(q.Open),
			floatField(q.High),
			floatField(q.Low),
			strconv.FormatFloat(q.Close, 'f', -1, 64),
			intField(q.Volume),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s/%s: %w", q.Symbol, models.DateOnly(q.Date), err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func floatField(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func intField(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
