package trader

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"momentum/internal/broker"
	"momentum/internal/models"
	"momentum/internal/notifications"
	"momentum/internal/risk"
	"momentum/internal/strategy"
)

// Broker is the slice of the brokerage client the trader needs.
type Broker interface {
	Account(ctx context.Context) (broker.Account, error)
	Positions(ctx context.Context) ([]broker.Position, error)
	PlaceOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderRef, error)
}

// HistorySource loads close history from the warehouse.
type HistorySource interface {
	CloseHistory(ctx context.Context, since time.Time) ([]models.CloseBar, error)
}

// PositionLogger snapshots the post-trade portfolio.
type PositionLogger interface {
	RecordPositions(ctx context.Context, positions []models.PositionLog) error
}

type Config struct {
	Params       strategy.Params
	LookbackDays int
	StrategyName string
	RiskLimits   risk.Limits
	DryRun       bool
}

type Trader struct {
	cfg     Config
	broker  Broker
	history HistorySource
	logRepo PositionLogger
	notify  *notifications.Sender
}

func New(cfg Config, b Broker, history HistorySource, logRepo PositionLogger, notify *notifications.Sender) *Trader {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 365
	}
	if cfg.StrategyName == "" {
		cfg.StrategyName = "momentum_strat_1"
	}
	return &Trader{cfg: cfg, broker: b, history: history, logRepo: logRepo, notify: notify}
}

// Run executes one full rebalance: score the warehouse history, build the
// target portfolio from account equity, diff against held positions and
// submit the orders (sells first). In dry-run mode orders are logged but
// never submitted and no portfolio snapshot is recorded.
func (t *Trader) Run(ctx context.Context) error {
	since := time.Now().UTC().AddDate(0, 0, -t.cfg.LookbackDays)
	bars, err := t.history.CloseHistory(ctx, since)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(bars) == 0 {
		return fmt.Errorf("no close history in the last %d days", t.cfg.LookbackDays)
	}

	ranked, err := strategy.Rank(bars, t.cfg.Params)
	if err != nil {
		return fmt.Errorf("rank: %w", err)
	}
	top := strategy.Top(ranked, t.cfg.Params.PortfolioSize)
	if len(top) == 0 {
		return fmt.Errorf("no scored candidates (thin history?)")
	}
	if len(top) < t.cfg.Params.PortfolioSize {
		log.Warn().Int("want", t.cfg.Params.PortfolioSize).Int("got", len(top)).Msg("fewer candidates than portfolio size")
	}

	acct, err := t.broker.Account(ctx)
	if err != nil {
		return fmt.Errorf("account: %w", err)
	}

	targets := strategy.Allocate(top, decimal.NewFromFloat(acct.Equity))
	if len(targets) == 0 {
		return fmt.Errorf("allocation produced no targets (equity $%.2f)", acct.Equity)
	}

	positions, err := t.broker.Positions(ctx)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}
	held := make(map[string]int64, len(positions))
	for _, p := range positions {
		held[p.Symbol] = p.Qty
	}

	sells, buys := strategy.Rebalance(held, targets)
	log.Info().
		Float64("equity", acct.Equity).
		Int("targets", len(targets)).
		Int("sells", len(sells)).
		Int("buys", len(buys)).
		Msg("rebalance computed")

	if len(sells) == 0 && len(buys) == 0 {
		log.Info().Msg("portfolio already on target, no orders")
		return nil
	}

	gate := risk.NewGate(t.cfg.RiskLimits)

	// Sells go first so the freed cash funds the buys.
	submitted := 0
	submitted += t.submit(ctx, gate, sells, broker.Sell)
	submitted += t.submit(ctx, gate, buys, broker.Buy)

	if t.cfg.DryRun {
		log.Info().Int("orders", len(sells)+len(buys)).Msg("dry run complete, nothing submitted")
		return nil
	}

	if t.notify != nil {
		t.notify.Send(fmt.Sprintf("rebalance complete: %d sell(s), %d buy(s), %d submitted",
			len(sells), len(buys), submitted))
	}

	return t.snapshotPositions(ctx)
}

func (t *Trader) submit(ctx context.Context, gate *risk.Gate, orders []strategy.Order, side broker.Side) int {
	submitted := 0
	for _, o := range orders {
		if err := gate.Approve(o.Symbol, o.Qty, o.Price); err != nil {
			log.Warn().Err(err).Str("symbol", o.Symbol).Msg("order rejected by risk gate")
			continue
		}

		if t.cfg.DryRun {
			log.Info().
				Str("side", string(side)).
				Str("symbol", o.Symbol).
				Int64("qty", o.Qty).
				Msg("dry run order")
			continue
		}

		if _, err := t.broker.PlaceOrder(ctx, broker.OrderRequest{
			Symbol: o.Symbol,
			Qty:    o.Qty,
			Side:   side,
		}); err != nil {
			// One failed leg should not abort the whole rebalance.
			log.Error().Err(err).Str("symbol", o.Symbol).Msg("order failed")
			continue
		}
		submitted++
	}
	return submitted
}

func (t *Trader) snapshotPositions(ctx context.Context) error {
	positions, err := t.broker.Positions(ctx)
	if err != nil {
		return fmt.Errorf("post-trade positions: %w", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	rows := make([]models.PositionLog, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, models.PositionLog{
			Symbol:   p.Symbol,
			Qty:      p.Qty,
			Date:     today,
			Strategy: t.cfg.StrategyName,
		})
	}

	if err := t.logRepo.RecordPositions(ctx, rows); err != nil {
		return fmt.Errorf("record positions: %w", err)
	}
	log.Info().Int("positions", len(rows)).Msg("portfolio snapshot logged")
	return nil
}
