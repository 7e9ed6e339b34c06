// Package ledger executes orders against a price series and keeps the
// cash and position accounting of a single-asset backtest.
//
// A Ledger is owned by one simulation loop and is not safe for concurrent
// use.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/rustyeddy/barbt/market"
	"github.com/rustyeddy/barbt/pkg/id"
)

var (
	// ErrInvalidOrder is returned for an order without exactly one
	// non-negative size.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrInsufficientFunds is returned in strict mode when an order would
	// leave cash below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientUnits is returned in strict mode when a sell would
	// open a short position.
	ErrInsufficientUnits = errors.New("insufficient units")
)

// PriceSource looks up the bar an order fills on. *market.Series
// implements it.
type PriceSource interface {
	PriceAt(bar int) (market.Bar, error)
}

// Side is the kind of order that produced a Fill.
type Side string

const (
	SideBuy      Side = "buy"
	SideSell     Side = "sell"
	SideCloseOut Side = "close"
)

// Costs are the transaction frictions applied per order.
type Costs struct {
	Fixed        float64 // flat fee per trade
	Proportional float64 // fraction of notional, 0.001 = 10bp

	// ChargeCloseOut applies Fixed and Proportional to CloseOut as well.
	// When false, close-outs are free while buys and sells are not.
	ChargeCloseOut bool
}

// Options configure a new Ledger.
type Options struct {
	InitialCash float64
	Costs       Costs

	// Strict rejects orders that would leave negative cash or a short
	// position. Otherwise such orders execute and are logged.
	Strict bool

	Logger *slog.Logger
}

// Fill describes one executed order and the ledger state right after it.
type Fill struct {
	ID    string
	Side  Side
	Bar   int
	Time  time.Time
	Units int64   // units traded, always >= 0
	Price float64 // close of the bar
	Cost  float64 // transaction cost paid

	Cash      float64
	Position  int64
	NetWealth float64
}

// Date returns the fill date as YYYY-MM-DD.
func (f Fill) Date() string { return f.Time.Format(market.DateLayout) }

// Summary is the final performance of a run.
type Summary struct {
	InitialCash    float64
	FinalCash      float64
	PerformancePct float64
	Trades         int
}

// Ledger holds cash, units and the trade count. They change only through
// Buy, Sell and CloseOut.
type Ledger struct {
	prices PriceSource
	log    *slog.Logger

	initial float64
	cash    float64
	units   int64
	trades  int

	costs  Costs
	strict bool
}

// New returns a ledger funded with opts.InitialCash and no position.
func New(prices PriceSource, opts Options) *Ledger {
	lg := opts.Logger
	if lg == nil {
		lg = slog.Default()
	}
	return &Ledger{
		prices:  prices,
		log:     lg,
		initial: opts.InitialCash,
		cash:    opts.InitialCash,
		costs:   opts.Costs,
		strict:  opts.Strict,
	}
}

func (l *Ledger) Cash() float64        { return l.cash }
func (l *Ledger) Units() int64         { return l.units }
func (l *Ledger) InitialCash() float64 { return l.initial }
func (l *Ledger) Trades() int          { return l.trades }
func (l *Ledger) Costs() Costs         { return l.costs }
func (l *Ledger) Strict() bool         { return l.strict }

// Performance returns the return on initial cash in percent, counting cash
// only. It equals the final figure once the position is closed out.
func (l *Ledger) Performance() float64 {
	if l.initial == 0 {
		return 0
	}
	return (l.cash - l.initial) / l.initial * 100
}

// NetWealth marks the position to the close of bar and adds cash.
func (l *Ledger) NetWealth(bar int) (float64, error) {
	b, err := l.prices.PriceAt(bar)
	if err != nil {
		return 0, err
	}
	return l.netWealth(b.Close), nil
}

func (l *Ledger) netWealth(price float64) float64 {
	return float64(l.units)*price + l.cash
}

// Buy pays units*price*(1+proportional) + fixed and adds the units.
func (l *Ledger) Buy(bar int, size OrderSize) (Fill, error) {
	b, n, err := l.prepare(bar, size)
	if err != nil {
		return Fill{}, fmt.Errorf("buy: %w", err)
	}

	notional := float64(n) * b.Close
	debit := notional*(1+l.costs.Proportional) + l.costs.Fixed
	if l.cash-debit < 0 {
		if l.strict {
			return Fill{}, fmt.Errorf("buy %d at %.2f needs %.2f, have %.2f: %w",
				n, b.Close, debit, l.cash, ErrInsufficientFunds)
		}
		l.log.Warn("buy leaves negative cash", "bar", bar, "units", n, "price", b.Close, "cash", l.cash-debit)
	}

	l.cash -= debit
	l.units += n
	l.trades++
	return l.fill(SideBuy, bar, b, n, debit-notional), nil
}

// Sell receives units*price*(1-proportional) - fixed and removes the units.
func (l *Ledger) Sell(bar int, size OrderSize) (Fill, error) {
	b, n, err := l.prepare(bar, size)
	if err != nil {
		return Fill{}, fmt.Errorf("sell: %w", err)
	}

	notional := float64(n) * b.Close
	credit := notional*(1-l.costs.Proportional) - l.costs.Fixed
	if l.units-n < 0 {
		if l.strict {
			return Fill{}, fmt.Errorf("sell %d with %d held: %w", n, l.units, ErrInsufficientUnits)
		}
		l.log.Warn("sell opens short position", "bar", bar, "units", n, "held", l.units)
	}
	if l.cash+credit < 0 {
		if l.strict {
			return Fill{}, fmt.Errorf("sell %d at %.2f leaves %.2f: %w",
				n, b.Close, l.cash+credit, ErrInsufficientFunds)
		}
		l.log.Warn("sell leaves negative cash", "bar", bar, "units", n, "cash", l.cash+credit)
	}

	l.cash += credit
	l.units -= n
	l.trades++
	return l.fill(SideSell, bar, b, n, notional-credit), nil
}

// CloseOut liquidates the whole position, long or short, at the close of
// bar and returns the final performance. No costs are charged unless
// Costs.ChargeCloseOut is set. The ledger stays readable afterwards.
func (l *Ledger) CloseOut(bar int) (Fill, Summary, error) {
	b, err := l.prices.PriceAt(bar)
	if err != nil {
		return Fill{}, Summary{}, fmt.Errorf("close out: %w", err)
	}

	held := l.units
	value := float64(held) * b.Close
	var cost float64
	if l.costs.ChargeCloseOut {
		cost = math.Abs(value)*l.costs.Proportional + l.costs.Fixed
	}

	l.cash += value - cost
	l.units = 0
	l.trades++

	f := l.fill(SideCloseOut, bar, b, absUnits(held), cost)
	return f, l.Summary(), nil
}

// Summary reports the ledger's performance so far.
func (l *Ledger) Summary() Summary {
	return Summary{
		InitialCash:    l.initial,
		FinalCash:      l.cash,
		PerformancePct: l.Performance(),
		Trades:         l.trades,
	}
}

func (l *Ledger) prepare(bar int, size OrderSize) (market.Bar, int64, error) {
	if err := size.Validate(); err != nil {
		return market.Bar{}, 0, err
	}
	b, err := l.prices.PriceAt(bar)
	if err != nil {
		return market.Bar{}, 0, err
	}
	n, err := size.Resolve(b.Close)
	if err != nil {
		return market.Bar{}, 0, err
	}
	return b, n, nil
}

func (l *Ledger) fill(side Side, bar int, b market.Bar, n int64, cost float64) Fill {
	return Fill{
		ID:        id.New(),
		Side:      side,
		Bar:       bar,
		Time:      b.Time,
		Units:     n,
		Price:     b.Close,
		Cost:      cost,
		Cash:      l.cash,
		Position:  l.units,
		NetWealth: l.netWealth(b.Close),
	}
}

func absUnits(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
