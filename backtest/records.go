package backtest

import (
	"github.com/rustyeddy/barbt/journal"
	"github.com/rustyeddy/barbt/ledger"
)

// RunRecord returns the journal summary of the run.
func (b *Backtest) RunRecord() journal.RunRecord {
	res := b.Result()
	costs := b.ledger.Costs()
	return journal.RunRecord{
		RunID:            b.RunID,
		Created:          b.Created,
		Dataset:          res.Dataset,
		Start:            res.Start,
		End:              res.End,
		FixedCost:        costs.Fixed,
		ProportionalCost: costs.Proportional,
		ChargeCloseOut:   costs.ChargeCloseOut,
		Strict:           b.ledger.Strict(),
		InitialCash:      res.InitialCash,
		FinalCash:        res.FinalCash,
		PerformancePct:   res.PerformancePct,
		Trades:           res.Trades,
	}
}

// OrderRecords returns the journal form of every fill.
func (b *Backtest) OrderRecords() []journal.OrderRecord {
	out := make([]journal.OrderRecord, 0, len(b.fills))
	for _, f := range b.fills {
		out = append(out, b.orderRecord(f))
	}
	return out
}

func (b *Backtest) orderRecord(f ledger.Fill) journal.OrderRecord {
	return journal.OrderRecord{
		RunID:     b.RunID,
		OrderID:   f.ID,
		Bar:       f.Bar,
		Time:      f.Time,
		Side:      string(f.Side),
		Units:     f.Units,
		Price:     f.Price,
		Cost:      f.Cost,
		Cash:      f.Cash,
		Position:  f.Position,
		NetWealth: f.NetWealth,
	}
}
