// journal/journal.go
package journal

import "time"

// OrderRecord is one executed order with the ledger state after it.
type OrderRecord struct {
	RunID     string
	OrderID   string
	Bar       int
	Time      time.Time
	Side      string
	Units     int64
	Price     float64
	Cost      float64
	Cash      float64
	Position  int64
	NetWealth float64
}

// EquitySnapshot marks the ledger to market at a bar.
type EquitySnapshot struct {
	RunID     string
	Bar       int
	Time      time.Time
	Cash      float64
	Position  int64
	NetWealth float64
}

// RunRecord summarizes a finished backtest.
type RunRecord struct {
	RunID   string
	Created time.Time
	Dataset string

	Start time.Time
	End   time.Time

	FixedCost        float64
	ProportionalCost float64
	ChargeCloseOut   bool
	Strict           bool

	InitialCash    float64
	FinalCash      float64
	PerformancePct float64
	Trades         int
}

// NetPL is the cash gained or lost over the run.
func (r RunRecord) NetPL() float64 { return r.FinalCash - r.InitialCash }

type Journal interface {
	RecordOrder(OrderRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// RunRecorder is implemented by journals that keep run summaries.
type RunRecorder interface {
	RecordRun(RunRecord) error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordOrder(OrderRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
