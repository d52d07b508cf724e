package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"momentum/internal/models"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int64) *int64     { return &v }

func TestWriteQuotes(t *testing.T) {
	quotes := []models.DailyQuote{
		{
			Symbol: "IBM",
			Date:   time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
			Open:   fptr(248.5),
			High:   fptr(251),
			Low:    fptr(247.25),
			Close:  250.75,
			Volume: iptr(4210000),
		},
		{
			Symbol: "GE",
			Date:   time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
			Close:  198.4,
		},
	}

	var buf bytes.Buffer
	if err := WriteQuotes(&buf, quotes); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "symbol,date,open,high,low,close,volume" {
		t.Fatalf("wrong header: %q", lines[0])
	}
	if lines[1] != "IBM,2025-03-14,248.5,251,247.25,250.75,4210000" {
		t.Fatalf("wrong full row: %q", lines[1])
	}
	// Missing OHLV fields stay empty rather than zero.
	if lines[2] != "GE,2025-03-14,,,,198.4," {
		t.Fatalf("wrong sparse row: %q", lines[2])
	}
}

func TestWriteQuotes_EmptyStillWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteQuotes(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "symbol,date,open,high,low,close,volume" {
		t.Fatalf("expected header only, got %q", buf.String())
	}
}
