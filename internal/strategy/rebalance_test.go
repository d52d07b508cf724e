package strategy

import "testing"

func TestRebalance_FullDiff(t *testing.T) {
	held := map[string]int64{
		"KEEP":   5,  // target unchanged
		"SHRINK": 10, // target smaller
		"EXIT":   3,  // not in target
	}
	targets := []Target{
		{Symbol: "KEEP", Qty: 5, Price: 50},
		{Symbol: "SHRINK", Qty: 4, Price: 20},
		{Symbol: "NEW", Qty: 7, Price: 10},
	}

	sells, buys := Rebalance(held, targets)

	if len(sells) != 2 {
		t.Fatalf("expected 2 sells, got %d: %+v", len(sells), sells)
	}
	if sells[0].Symbol != "EXIT" || sells[0].Qty != 3 {
		t.Fatalf("sell[0] = %+v, want EXIT x3", sells[0])
	}
	if sells[1].Symbol != "SHRINK" || sells[1].Qty != 6 {
		t.Fatalf("sell[1] = %+v, want SHRINK x6", sells[1])
	}

	if len(buys) != 1 {
		t.Fatalf("expected 1 buy, got %d: %+v", len(buys), buys)
	}
	if buys[0].Symbol != "NEW" || buys[0].Qty != 7 {
		t.Fatalf("buy[0] = %+v, want NEW x7", buys[0])
	}
}

func TestRebalance_FreshPortfolio(t *testing.T) {
	targets := []Target{
		{Symbol: "AAA", Qty: 2, Price: 100},
		{Symbol: "BBB", Qty: 1, Price: 200},
	}

	sells, buys := Rebalance(nil, targets)
	if len(sells) != 0 {
		t.Fatalf("expected no sells, got %+v", sells)
	}
	if len(buys) != 2 || buys[0].Symbol != "AAA" || buys[1].Symbol != "BBB" {
		t.Fatalf("unexpected buys: %+v", buys)
	}
}

func TestRebalance_AlreadyOnTarget(t *testing.T) {
	held := map[string]int64{"AAA": 2, "BBB": 1}
	targets := []Target{
		{Symbol: "AAA", Qty: 2},
		{Symbol: "BBB", Qty: 1},
	}

	sells, buys := Rebalance(held, targets)
	if len(sells) != 0 || len(buys) != 0 {
		t.Fatalf("expected no orders, got sells=%+v buys=%+v", sells, buys)
	}
}

func TestRebalance_GrowExisting(t *testing.T) {
	held := map[string]int64{"AAA": 2}
	targets := []Target{{Symbol: "AAA", Qty: 5, Price: 40}}

	sells, buys := Rebalance(held, targets)
	if len(sells) != 0 {
		t.Fatalf("expected no sells, got %+v", sells)
	}
	if len(buys) != 1 || buys[0].Qty != 3 {
		t.Fatalf("expected AAA x3 buy, got %+v", buys)
	}
}

func TestRebalance_IgnoresNonPositiveHoldings(t *testing.T) {
	held := map[string]int64{"SHORT": -4, "ZERO": 0}

	sells, buys := Rebalance(held, nil)
	if len(sells) != 0 || len(buys) != 0 {
		t.Fatalf("expected no orders, got sells=%+v buys=%+v", sells, buys)
	}
}
