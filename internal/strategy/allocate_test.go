package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
)

func flatCandidate(symbol string, price float64) Candidate {
	return Candidate{
		Symbol:    symbol,
		Closes:    []float64{price, price, price, price},
		LastClose: price,
	}
}

func TestAllocate_EqualVolSplitsEvenly(t *testing.T) {
	top := []Candidate{
		flatCandidate("AAA", 100),
		flatCandidate("BBB", 100),
	}

	targets := Allocate(top, decimal.NewFromInt(1000))
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
	for _, tgt := range targets {
		if tgt.Qty != 5 {
			t.Fatalf("%s qty = %d, want 5", tgt.Symbol, tgt.Qty)
		}
		if tgt.Weight != 0.5 {
			t.Fatalf("%s weight = %f, want 0.5", tgt.Symbol, tgt.Weight)
		}
	}
}

func TestAllocate_SteadyNameGetsMore(t *testing.T) {
	steady := Candidate{
		Symbol:    "CALM",
		Closes:    []float64{100, 101, 100.5, 101.5, 101, 102},
		LastClose: 100,
	}
	choppy := Candidate{
		Symbol:    "WILD",
		Closes:    []float64{100, 104, 99, 105, 98, 106},
		LastClose: 100,
	}

	targets := Allocate([]Candidate{steady, choppy}, decimal.NewFromInt(10000))
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}

	byName := map[string]Target{}
	for _, tgt := range targets {
		byName[tgt.Symbol] = tgt
	}
	if byName["CALM"].Weight <= byName["WILD"].Weight {
		t.Fatalf("steady name should outweigh choppy: %f vs %f",
			byName["CALM"].Weight, byName["WILD"].Weight)
	}
	if byName["CALM"].Qty <= byName["WILD"].Qty {
		t.Fatalf("steady name should hold more shares: %d vs %d",
			byName["CALM"].Qty, byName["WILD"].Qty)
	}
}

func TestAllocate_GreedyRemainderPass(t *testing.T) {
	top := []Candidate{
		flatCandidate("AAA", 300),
		flatCandidate("BBB", 300),
	}

	// 500 per name buys one share each, leaving 400: enough for one extra
	// share of the first-ranked name only.
	targets := Allocate(top, decimal.NewFromInt(1000))
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
	if targets[0].Symbol != "AAA" || targets[0].Qty != 2 {
		t.Fatalf("first target = %s qty %d, want AAA qty 2", targets[0].Symbol, targets[0].Qty)
	}
	if targets[1].Qty != 1 {
		t.Fatalf("second target qty = %d, want 1", targets[1].Qty)
	}
}

func TestAllocate_DropsUnaffordableNames(t *testing.T) {
	top := []Candidate{
		flatCandidate("PRICY", 2000),
		flatCandidate("CHEAP", 100),
	}

	targets := Allocate(top, decimal.NewFromInt(1000))
	if len(targets) != 1 || targets[0].Symbol != "CHEAP" {
		t.Fatalf("expected only CHEAP, got %+v", targets)
	}
	// 500 slice buys 5, the remainder pass adds one more.
	if targets[0].Qty != 6 {
		t.Fatalf("CHEAP qty = %d, want 6", targets[0].Qty)
	}
}

func TestAllocate_Degenerate(t *testing.T) {
	if got := Allocate(nil, decimal.NewFromInt(1000)); got != nil {
		t.Fatalf("expected nil for no candidates, got %+v", got)
	}
	if got := Allocate([]Candidate{flatCandidate("AAA", 100)}, decimal.Zero); got != nil {
		t.Fatalf("expected nil for zero equity, got %+v", got)
	}
}

func TestDailyVolatility(t *testing.T) {
	if v := dailyVolatility([]float64{100}); v != 0 {
		t.Fatalf("single close should have zero vol, got %f", v)
	}
	if v := dailyVolatility([]float64{100, 100, 100}); v != 0 {
		t.Fatalf("flat series should have zero vol, got %f", v)
	}
	if v := dailyVolatility([]float64{100, 110, 100, 110}); v <= 0 {
		t.Fatalf("choppy series should have positive vol, got %f", v)
	}
}
