package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

type OrderRequest struct {
	Symbol string
	Qty    int64
	Side   Side
}

type OrderRef struct {
	ID            string
	ClientOrderID string
	Status        string
}

type Position struct {
	Symbol   string
	Qty      int64
	AvgEntry float64
}

type Account struct {
	Equity      float64
	BuyingPower float64
}

type Clock struct {
	Timestamp time.Time
	IsOpen    bool
	NextOpen  time.Time
	NextClose time.Time
}

// Client wraps the Alpaca trading API. All orders are market orders with
// day time-in-force, matching the rebalance semantics.
type Client struct {
	client *alpaca.Client
}

func New(apiKey, apiSecret, baseURL string) *Client {
	opts := alpaca.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   baseURL,
	}
	return &Client{client: alpaca.NewClient(opts)}
}

func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (OrderRef, error) {
	if req.Qty <= 0 {
		return OrderRef{}, fmt.Errorf("invalid order qty %d for %s", req.Qty, req.Symbol)
	}

	qty := decimal.NewFromInt(req.Qty)
	order, err := c.client.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:      req.Symbol,
		Qty:         &qty,
		Side:        alpaca.Side(req.Side),
		Type:        alpaca.Market,
		TimeInForce: alpaca.Day,
	})
	if err != nil {
		log.Error().Err(err).Str("symbol", req.Symbol).Str("side", string(req.Side)).Int64("qty", req.Qty).Msg("place order failed")
		return OrderRef{}, err
	}

	log.Info().
		Str("order_id", order.ID).
		Str("symbol", req.Symbol).
		Str("side", string(req.Side)).
		Int64("qty", req.Qty).
		Str("status", string(order.Status)).
		Msg("order submitted")

	return OrderRef{
		ID:            order.ID,
		ClientOrderID: order.ClientOrderID,
		Status:        string(order.Status),
	}, nil
}

func (c *Client) Positions(ctx context.Context) ([]Position, error) {
	positions, err := c.client.GetPositions()
	if err != nil {
		return nil, fmt.Errorf("fetch positions: %w", err)
	}

	out := make([]Position, 0, len(positions))
	for _, p := range positions {
		avgEntry, _ := p.AvgEntryPrice.Float64()
		out = append(out, Position{
			Symbol:   p.Symbol,
			Qty:      p.Qty.IntPart(),
			AvgEntry: avgEntry,
		})
	}
	return out, nil
}

func (c *Client) Account(ctx context.Context) (Account, error) {
	acct, err := c.client.GetAccount()
	if err != nil {
		return Account{}, fmt.Errorf("fetch account: %w", err)
	}
	equity, _ := acct.Equity.Float64()
	buyingPower, _ := acct.BuyingPower.Float64()
	return Account{Equity: equity, BuyingPower: buyingPower}, nil
}

func (c *Client) Clock(ctx context.Context) (Clock, error) {
	clk, err := c.client.GetClock()
	if err != nil {
		return Clock{}, fmt.Errorf("fetch clock: %w", err)
	}
	return Clock{
		Timestamp: clk.Timestamp,
		IsOpen:    clk.IsOpen,
		NextOpen:  clk.NextOpen,
		NextClose: clk.NextClose,
	}, nil
}

// IsTradingDay reports whether the exchange calendar has a session on the
// given day. Weekends and holidays return false.
func (c *Client) IsTradingDay(ctx context.Context, day time.Time) (bool, error) {
	days, err := c.client.GetCalendar(alpaca.GetCalendarRequest{
		Start: day,
		End:   day,
	})
	if err != nil {
		return false, fmt.Errorf("fetch calendar: %w", err)
	}

	want := day.Format("2006-01-02")
	for _, d := range days {
		if d.Date == want {
			return true, nil
		}
	}
	return false, nil
}
