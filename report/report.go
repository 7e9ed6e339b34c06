// Package report renders backtest activity as plain text.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/rustyeddy/barbt/ledger"
	"github.com/rustyeddy/barbt/market"
	"github.com/shopspring/decimal"
)

// DefaultWidth is the width of the separator line.
const DefaultWidth = 55

// Options configure a Reporter.
type Options struct {
	// Verbose prints a block per order. The final summary is always printed.
	Verbose bool
	Width   int
}

// Reporter writes per-order lines and the closing summary.
type Reporter struct {
	w    io.Writer
	opts Options
}

func New(w io.Writer, opts Options) *Reporter {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	return &Reporter{w: w, opts: opts}
}

// Money formats v to two decimals. The exact binary value of v is rounded
// half to even, so 2.675 (stored as 2.67499...) gives "2.67" and the exact
// tie 0.125 gives "0.12".
func Money(v float64) string {
	return decimal.NewFromFloatWithExponent(v, exactExp).RoundBank(2).StringFixed(2)
}

// exactExp is below the smallest binary exponent of a float64, so
// NewFromFloatWithExponent keeps every digit.
const exactExp = -1100

// Separator writes a line of '=' of the configured width.
func (r *Reporter) Separator() {
	fmt.Fprintln(r.w, strings.Repeat("=", r.opts.Width))
}

// Order reports a buy or sell fill.
func (r *Reporter) Order(f ledger.Fill) {
	if !r.opts.Verbose {
		return
	}
	verb := "buying"
	if f.Side == ledger.SideSell {
		verb = "selling"
	}
	date := f.Date()
	fmt.Fprintf(r.w, "%s %s %d units at %s\n", date, verb, f.Units, Money(f.Price))
	fmt.Fprintf(r.w, "%s, current balance %s\n", date, Money(f.Cash))
	fmt.Fprintf(r.w, "%s, current net wealth %s\n", date, Money(f.NetWealth))
}

// CloseOut reports the liquidating fill and the final summary.
func (r *Reporter) CloseOut(f ledger.Fill, s ledger.Summary) {
	if r.opts.Verbose {
		fmt.Fprintf(r.w, "%s inventory %d units at %s\n", f.Date(), f.Position, Money(f.Price))
		r.Separator()
	}
	r.Summary(s)
}

// Summary writes the final balance block.
func (r *Reporter) Summary(s ledger.Summary) {
	fmt.Fprintf(r.w, "Final balance [$] %s\n", Money(s.FinalCash))
	fmt.Fprintf(r.w, "Net Performance [%%] %s\n", Money(s.PerformancePct))
	fmt.Fprintf(r.w, "Trades Executed [#] %d\n", s.Trades)
	r.Separator()
}

// Series describes a loaded series and prints its last tail bars.
func (r *Reporter) Series(s *market.Series, tail int) {
	first, last := s.First(), s.Last()
	fmt.Fprintf(r.w, "Source:  %s\n", s.Name())
	fmt.Fprintf(r.w, "Bars:    %d\n", s.Len())
	fmt.Fprintf(r.w, "Period:  %s .. %s\n", first.Date(), last.Date())

	lo, hi := first.Close, first.Close
	for _, c := range s.Closes() {
		lo = min(lo, c)
		hi = max(hi, c)
	}
	fmt.Fprintf(r.w, "Close:   min %s  max %s\n", Money(lo), Money(hi))

	if tail <= 0 {
		return
	}
	bars := s.Bars()
	if tail > len(bars) {
		tail = len(bars)
	}
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "%-19s %14s %12s\n", "time", "close", "return")
	for _, b := range bars[len(bars)-tail:] {
		fmt.Fprintf(r.w, "%-19s %14s %12.6f\n", b.Time.Format("2006-01-02 15:04:05"), Money(b.Close), b.Return)
	}
}
