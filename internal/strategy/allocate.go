package strategy

import (
	"math"

	"github.com/shopspring/decimal"
)

// Target is a desired whole-share position after the rebalance.
type Target struct {
	Symbol string
	Qty    int64
	Price  float64
	Weight float64
}

// Allocate turns the top momentum candidates into whole-share targets for
// the given equity. Weights are inverse to the trailing daily volatility of
// each candidate, so steadier names get a larger slice. Remaining cash is
// spent greedily down the ranked list one share at a time. Candidates whose
// weight buys less than one share are dropped.
func Allocate(top []Candidate, equity decimal.Decimal) []Target {
	if len(top) == 0 || equity.Sign() <= 0 {
		return nil
	}

	vols := make([]float64, len(top))
	minVol := math.MaxFloat64
	for i, c := range top {
		vols[i] = dailyVolatility(c.Closes)
		if vols[i] > 0 && vols[i] < minVol {
			minVol = vols[i]
		}
	}
	if minVol == math.MaxFloat64 {
		minVol = 1 // every series flat: degenerate, equal-weight below
	}

	var invSum float64
	for i := range vols {
		if vols[i] <= 0 {
			vols[i] = minVol
		}
		invSum += 1 / vols[i]
	}

	var targets []Target
	spent := decimal.Zero
	for i, c := range top {
		weight := (1 / vols[i]) / invSum
		price := decimal.NewFromFloat(c.LastClose)
		if price.Sign() <= 0 {
			continue
		}

		alloc := equity.Mul(decimal.NewFromFloat(weight))
		qty := alloc.Div(price).IntPart()
		if qty <= 0 {
			continue
		}

		spent = spent.Add(price.Mul(decimal.NewFromInt(qty)))
		targets = append(targets, Target{
			Symbol: c.Symbol,
			Qty:    qty,
			Price:  c.LastClose,
			Weight: weight,
		})
	}

	// Greedy remainder pass: one extra share per name while cash allows.
	leftover := equity.Sub(spent)
	for i := range targets {
		price := decimal.NewFromFloat(targets[i].Price)
		if price.Sign() > 0 && leftover.GreaterThanOrEqual(price) {
			targets[i].Qty++
			leftover = leftover.Sub(price)
		}
	}

	return targets
}

// dailyVolatility is the population standard deviation of the log returns.
func dailyVolatility(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			return 0
		}
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance)
}
