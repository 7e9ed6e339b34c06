// Package backtest replays scripted orders against a price series, keeping
// the ledger, console report and journal in step.
package backtest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rustyeddy/barbt/journal"
	"github.com/rustyeddy/barbt/ledger"
	"github.com/rustyeddy/barbt/market"
	"github.com/rustyeddy/barbt/pkg/id"
	"github.com/rustyeddy/barbt/report"
)

// Options configure a Backtest.
type Options struct {
	Ledger ledger.Options
	Report report.Options

	// Out receives the console report; nil discards it.
	Out io.Writer

	// Journal receives every fill; nil means journal.Nop.
	Journal journal.Journal

	// CloseAtEnd makes Run close out on the last bar unless the script
	// already ended with a close.
	CloseAtEnd bool

	Logger *slog.Logger
}

// Order is one scripted order.
type Order struct {
	Bar  int
	Side ledger.Side
	Size ledger.OrderSize // ignored for SideCloseOut
}

// Result summarizes a run.
type Result struct {
	RunID   string
	Dataset string
	Start   time.Time // first bar
	End     time.Time // last bar

	InitialCash    float64
	FinalCash      float64
	PerformancePct float64
	Trades         int

	Position  int64
	ClosedOut bool
}

// Backtest owns one ledger over one series. It is not safe for concurrent
// use.
type Backtest struct {
	RunID   string
	Created time.Time

	series  *market.Series
	ledger  *ledger.Ledger
	rep     *report.Reporter
	journal journal.Journal
	log     *slog.Logger

	closeAtEnd bool
	flat       bool // last order was a close-out
	fills      []ledger.Fill
}

func New(series *market.Series, opts Options) *Backtest {
	lg := opts.Logger
	if lg == nil {
		lg = slog.Default()
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	j := opts.Journal
	if j == nil {
		j = journal.Nop{}
	}

	runID := id.New()
	lg = lg.With("run_id", id.Short(runID))

	lopts := opts.Ledger
	if lopts.Logger == nil {
		lopts.Logger = lg
	}

	return &Backtest{
		RunID:      runID,
		Created:    time.Now().UTC(),
		series:     series,
		ledger:     ledger.New(series, lopts),
		rep:        report.New(out, opts.Report),
		journal:    j,
		log:        lg,
		closeAtEnd: opts.CloseAtEnd,
	}
}

func (b *Backtest) Series() *market.Series { return b.series }

// Ledger exposes the ledger for reading. Orders must go through the
// Backtest so they are reported and journaled.
func (b *Backtest) Ledger() *ledger.Ledger { return b.ledger }

// Fills returns the fills executed so far.
func (b *Backtest) Fills() []ledger.Fill {
	out := make([]ledger.Fill, len(b.fills))
	copy(out, b.fills)
	return out
}

// Buy places a buy order on bar.
func (b *Backtest) Buy(bar int, size ledger.OrderSize) error {
	f, err := b.ledger.Buy(bar, size)
	if err != nil {
		return err
	}
	b.rep.Order(f)
	return b.record(f)
}

// Sell places a sell order on bar.
func (b *Backtest) Sell(bar int, size ledger.OrderSize) error {
	f, err := b.ledger.Sell(bar, size)
	if err != nil {
		return err
	}
	b.rep.Order(f)
	return b.record(f)
}

// CloseOut liquidates the position on bar, prints the summary and returns
// the run result.
func (b *Backtest) CloseOut(bar int) (Result, error) {
	f, sum, err := b.ledger.CloseOut(bar)
	if err != nil {
		return Result{}, err
	}
	b.rep.CloseOut(f, sum)
	if err := b.record(f); err != nil {
		return Result{}, err
	}
	b.flat = true
	return b.Result(), nil
}

// Run executes orders in sequence. Bars must not decrease. The first
// failing order aborts the run and its error is returned unchanged apart
// from the order position.
func (b *Backtest) Run(ctx context.Context, orders []Order) (Result, error) {
	b.log.Info("backtest started",
		"dataset", b.series.Name(),
		"bars", b.series.Len(),
		"from", b.series.First().Date(),
		"to", b.series.Last().Date(),
		"orders", len(orders))

	prev := 0
	for i, o := range orders {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if o.Bar < prev {
			return Result{}, fmt.Errorf("order %d: bar %d before bar %d: %w", i, o.Bar, prev, ledger.ErrInvalidOrder)
		}
		prev = o.Bar

		var err error
		switch o.Side {
		case ledger.SideBuy:
			err = b.Buy(o.Bar, o.Size)
		case ledger.SideSell:
			err = b.Sell(o.Bar, o.Size)
		case ledger.SideCloseOut:
			_, err = b.CloseOut(o.Bar)
		default:
			err = fmt.Errorf("unknown side %q: %w", o.Side, ledger.ErrInvalidOrder)
		}
		if err != nil {
			return Result{}, fmt.Errorf("order %d: %w", i, err)
		}
	}

	if b.closeAtEnd && !b.flat {
		if _, err := b.CloseOut(b.series.Len() - 1); err != nil {
			return Result{}, fmt.Errorf("close at end: %w", err)
		}
	}

	res := b.Result()
	if rr, ok := b.journal.(journal.RunRecorder); ok {
		if err := rr.RecordRun(b.RunRecord()); err != nil {
			return Result{}, fmt.Errorf("record run: %w", err)
		}
	}

	b.log.Info("backtest finished",
		"final_cash", report.Money(res.FinalCash),
		"performance_pct", report.Money(res.PerformancePct),
		"trades", res.Trades,
		"closed_out", res.ClosedOut)
	return res, nil
}

// Result reports the run so far.
func (b *Backtest) Result() Result {
	sum := b.ledger.Summary()
	return Result{
		RunID:          b.RunID,
		Dataset:        b.series.Name(),
		Start:          b.series.First().Time,
		End:            b.series.Last().Time,
		InitialCash:    sum.InitialCash,
		FinalCash:      sum.FinalCash,
		PerformancePct: sum.PerformancePct,
		Trades:         sum.Trades,
		Position:       b.ledger.Units(),
		ClosedOut:      b.flat,
	}
}

func (b *Backtest) record(f ledger.Fill) error {
	b.flat = false
	b.fills = append(b.fills, f)
	b.log.Debug("fill",
		"side", f.Side, "bar", f.Bar, "date", f.Date(),
		"units", f.Units, "price", f.Price, "cost", f.Cost,
		"cash", f.Cash, "position", f.Position)

	if err := b.journal.RecordOrder(b.orderRecord(f)); err != nil {
		return fmt.Errorf("journal order: %w", err)
	}
	if err := b.journal.RecordEquity(journal.EquitySnapshot{
		RunID:     b.RunID,
		Bar:       f.Bar,
		Time:      f.Time,
		Cash:      f.Cash,
		Position:  f.Position,
		NetWealth: f.NetWealth,
	}); err != nil {
		return fmt.Errorf("journal equity: %w", err)
	}
	return nil
}
