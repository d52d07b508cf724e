package strategy

import "sort"

// Order is one leg of a rebalance. Qty is always positive; the side is
// implied by which list it comes back in.
type Order struct {
	Symbol string
	Qty    int64
	Price  float64
}

// Rebalance diffs the currently held whole-share positions against the
// target portfolio:
//
//   - names held but absent from the target are sold in full;
//   - names still held whose target shrank are sold down by the difference;
//   - names whose target grew (or are new) are bought up by the difference.
//
// Both lists come back sorted by symbol. Sells are intended to be submitted
// before buys so the freed cash funds the purchases.
func Rebalance(held map[string]int64, targets []Target) (sells, buys []Order) {
	targetQty := make(map[string]Target, len(targets))
	for _, t := range targets {
		targetQty[t.Symbol] = t
	}

	for symbol, qty := range held {
		if qty <= 0 {
			continue
		}
		t, ok := targetQty[symbol]
		if !ok {
			sells = append(sells, Order{Symbol: symbol, Qty: qty})
			continue
		}
		if diff := qty - t.Qty; diff > 0 {
			sells = append(sells, Order{Symbol: symbol, Qty: diff, Price: t.Price})
		}
	}

	for _, t := range targets {
		if diff := t.Qty - held[t.Symbol]; diff > 0 {
			buys = append(buys, Order{Symbol: t.Symbol, Qty: diff, Price: t.Price})
		}
	}

	sort.Slice(sells, func(i, j int) bool { return sells[i].Symbol < sells[j].Symbol })
	sort.Slice(buys, func(i, j int) bool { return buys[i].Symbol < buys[j].Symbol })

	return sells, buys
}
