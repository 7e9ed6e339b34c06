package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const runColumns = `run_id, created, dataset, start_time, end_time, fixed_cost, proportional_cost,
	charge_close_out, strict, initial_cash, final_cash, performance_pct, trades`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunRecord, error) {
	var r RunRecord
	err := s.Scan(
		&r.RunID, &r.Created, &r.Dataset, &r.Start, &r.End, &r.FixedCost, &r.ProportionalCost,
		&r.ChargeCloseOut, &r.Strict, &r.InitialCash, &r.FinalCash, &r.PerformancePct, &r.Trades,
	)
	return r, err
}

// GetRun returns the run summary with the given id.
func (j *SQLite) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return r, nil
}

// LatestRun returns the most recently created run.
func (j *SQLite) LatestRun(ctx context.Context) (RunRecord, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY run_id DESC LIMIT 1`)
	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("no runs recorded")
		}
		return RunRecord{}, err
	}
	return r, nil
}

// ListRuns returns all runs, oldest first.
func (j *SQLite) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY run_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListOrders returns the orders of a run in execution order.
func (j *SQLite) ListOrders(ctx context.Context, runID string) ([]OrderRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT order_id, run_id, bar, time, side, units, price, cost, cash, position, net_wealth
		FROM orders
		WHERE run_id = ?
		ORDER BY order_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderRecord
	for rows.Next() {
		var o OrderRecord
		if err := rows.Scan(
			&o.OrderID, &o.RunID, &o.Bar, &o.Time, &o.Side, &o.Units,
			&o.Price, &o.Cost, &o.Cash, &o.Position, &o.NetWealth,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListEquity returns the equity snapshots of a run by bar.
func (j *SQLite) ListEquity(ctx context.Context, runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, bar, time, cash, position, net_wealth
		FROM equity
		WHERE run_id = ?
		ORDER BY bar ASC, rowid ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.RunID, &e.Bar, &e.Time, &e.Cash, &e.Position, &e.NetWealth); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
