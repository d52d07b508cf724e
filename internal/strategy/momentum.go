package strategy

import (
	"fmt"
	"math"
	"sort"
	"time"

	"momentum/internal/models"
)

const tradingDaysPerYear = 252

type Params struct {
	Window        int // trailing observations per symbol
	MinPeriods    int // minimum observations required for a score
	PortfolioSize int // target number of names to hold
}

func (p Params) Validate() error {
	if p.Window < 2 {
		return fmt.Errorf("window must be at least 2")
	}
	if p.MinPeriods < 2 || p.MinPeriods > p.Window {
		return fmt.Errorf("min periods must be between 2 and window")
	}
	if p.PortfolioSize <= 0 {
		return fmt.Errorf("portfolio size must be positive")
	}
	return nil
}

// Candidate is a symbol with data through the latest trading day and a
// momentum score over its trailing window.
type Candidate struct {
	Symbol    string
	Momentum  float64
	Closes    []float64 // trailing window, oldest first
	LastClose float64
}

// MomentumScore fits a linear regression to the log closes and returns the
// annualized exponential slope weighted by the fit quality:
//
//	(exp(slope)^252 - 1) * 100 * r²
//
// A strong steady riser scores high; a volatile or flat series scores near
// zero. All closes must be positive.
func MomentumScore(closes []float64) (float64, error) {
	n := len(closes)
	if n < 2 {
		return 0, fmt.Errorf("need at least 2 closes, got %d", n)
	}

	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i, c := range closes {
		if c <= 0 {
			return 0, fmt.Errorf("non-positive close %.4f at index %d", c, i)
		}
		x := float64(i)
		y := math.Log(c)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
		sumYY += y * y
	}

	fn := float64(n)
	varX := sumXX - sumX*sumX/fn
	varY := sumYY - sumY*sumY/fn
	covXY := sumXY - sumX*sumY/fn

	slope := covXY / varX

	r2 := 0.0
	if varY > 0 {
		r2 = (covXY * covXY) / (varX * varY)
	}

	annualized := (math.Pow(math.Exp(slope), tradingDaysPerYear) - 1) * 100
	return annualized * r2, nil
}

// Rank scores every symbol with a bar on the latest available date and
// returns candidates sorted by momentum, best first. Symbols with too little
// history or unusable closes are excluded.
func Rank(bars []models.CloseBar, p Params) ([]Candidate, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no history to rank")
	}

	series := make(map[string][]models.CloseBar)
	var latest time.Time
	for _, b := range bars {
		series[b.Symbol] = append(series[b.Symbol], b)
		if b.Date.After(latest) {
			latest = b.Date
		}
	}

	var ranked []Candidate
	for symbol, ss := range series {
		sort.Slice(ss, func(i, j int) bool { return ss[i].Date.Before(ss[j].Date) })

		// Only symbols current through the latest data date participate.
		if !ss[len(ss)-1].Date.Equal(latest) {
			continue
		}
		if len(ss) < p.MinPeriods {
			continue
		}

		start := 0
		if len(ss) > p.Window {
			start = len(ss) - p.Window
		}
		closes := make([]float64, 0, len(ss)-start)
		for _, b := range ss[start:] {
			closes = append(closes, b.Close)
		}

		score, err := MomentumScore(closes)
		if err != nil {
			continue
		}

		ranked = append(ranked, Candidate{
			Symbol:    symbol,
			Momentum:  score,
			Closes:    closes,
			LastClose: closes[len(closes)-1],
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Momentum != ranked[j].Momentum {
			return ranked[i].Momentum > ranked[j].Momentum
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})

	return ranked, nil
}

// Top returns the best n candidates (fewer if the ranked list is short).
func Top(ranked []Candidate, n int) []Candidate {
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
