package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordOrder(o OrderRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO orders
		(order_id, run_id, bar, time, side, units, price, cost, cash, position, net_wealth)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.OrderID, o.RunID, o.Bar, o.Time, o.Side, o.Units,
		o.Price, o.Cost, o.Cash, o.Position, o.NetWealth,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, bar, time, cash, position, net_wealth)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Bar, e.Time, e.Cash, e.Position, e.NetWealth,
	)
	return err
}

// RecordRun stores the run summary, replacing an earlier one with the same id.
func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO runs
		(run_id, created, dataset, start_time, end_time, fixed_cost, proportional_cost,
		 charge_close_out, strict, initial_cash, final_cash, performance_pct, trades)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Dataset, r.Start, r.End, r.FixedCost, r.ProportionalCost,
		r.ChargeCloseOut, r.Strict, r.InitialCash, r.FinalCash, r.PerformancePct, r.Trades,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
