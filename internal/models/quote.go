package models

import "time"

// DailyQuote is one OHLCV observation for a symbol on a trading day.
// Open/high/low/volume can be missing in vendor data; close is mandatory.
type DailyQuote struct {
	ID     int64     `json:"id,omitempty"`
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   *float64  `json:"open,omitempty"`
	High   *float64  `json:"high,omitempty"`
	Low    *float64  `json:"low,omitempty"`
	Close  float64   `json:"close"`
	Volume *int64    `json:"volume,omitempty"`
}

// CloseBar is the slim projection the momentum strategy works on.
type CloseBar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
}

// PositionLog is one row of the post-trade portfolio snapshot.
type PositionLog struct {
	ID       int64     `json:"id,omitempty"`
	Symbol   string    `json:"symbol"`
	Qty      int64     `json:"qty"`
	Date     time.Time `json:"date"`
	Strategy string    `json:"strategy"`
}

// DateOnly formats a time as the warehouse date string.
func DateOnly(t time.Time) string {
	return t.Format("2006-01-02")
}
