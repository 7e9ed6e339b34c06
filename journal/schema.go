// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	dataset TEXT NOT NULL,
	start_time DATETIME NOT NULL,
	end_time DATETIME NOT NULL,
	fixed_cost REAL NOT NULL,
	proportional_cost REAL NOT NULL,
	charge_close_out INTEGER NOT NULL,
	strict INTEGER NOT NULL,
	initial_cash REAL NOT NULL,
	final_cash REAL NOT NULL,
	performance_pct REAL NOT NULL,
	trades INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	order_id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	bar INTEGER NOT NULL,
	time DATETIME NOT NULL,
	side TEXT NOT NULL,
	units INTEGER NOT NULL,
	price REAL NOT NULL,
	cost REAL NOT NULL,
	cash REAL NOT NULL,
	position INTEGER NOT NULL,
	net_wealth REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	bar INTEGER NOT NULL,
	time DATETIME NOT NULL,
	cash REAL NOT NULL,
	position INTEGER NOT NULL,
	net_wealth REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_run ON orders(run_id, order_id);
CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, bar);
`
