package risk

import "fmt"

// Limits holds the per-run order constraints from config.
// A zero value for a field disables that check.
type Limits struct {
	MaxOrdersPerRun     int
	MaxOrderNotionalUSD float64
}

// Gate approves orders within a single rebalance run. It is not safe for
// concurrent use; each run gets a fresh gate.
type Gate struct {
	limits   Limits
	approved int
}

func NewGate(limits Limits) *Gate {
	return &Gate{limits: limits}
}

// Approve validates one order leg and counts it against the run budget.
// Returns nil if the order may be submitted, a descriptive error if blocked.
func (g *Gate) Approve(symbol string, qty int64, price float64) error {
	if qty <= 0 {
		return fmt.Errorf("order blocked: %s qty %d is not positive", symbol, qty)
	}

	if g.limits.MaxOrdersPerRun > 0 && g.approved >= g.limits.MaxOrdersPerRun {
		return fmt.Errorf("order blocked: run limit of %d orders reached", g.limits.MaxOrdersPerRun)
	}

	if g.limits.MaxOrderNotionalUSD > 0 && price > 0 {
		notional := price * float64(qty)
		if notional > g.limits.MaxOrderNotionalUSD {
			return fmt.Errorf("order blocked: %s notional $%.2f exceeds max $%.2f",
				symbol, notional, g.limits.MaxOrderNotionalUSD)
		}
	}

	g.approved++
	return nil
}

// Approved reports how many orders the gate has passed this run.
func (g *Gate) Approved() int {
	return g.approved
}
