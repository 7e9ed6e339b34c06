package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('runs','orders','equity')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["runs"])
	assert.True(t, found["orders"])
	assert.True(t, found["equity"])
}

func TestSQLiteOrders(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	recs := []OrderRecord{
		{RunID: "R1", OrderID: "O1", Bar: 0, Time: ts, Side: "buy", Units: 10, Price: 100, Cost: 11, Cash: 8989, Position: 10, NetWealth: 9989},
		{RunID: "R1", OrderID: "O2", Bar: 1, Time: ts.AddDate(0, 0, 1), Side: "close", Units: 10, Price: 110, Cash: 10089, NetWealth: 10089},
		{RunID: "R2", OrderID: "O3", Bar: 0, Time: ts, Side: "sell", Units: 1, Price: 100, Cash: 100, Position: -1},
	}
	for _, r := range recs {
		require.NoError(t, j.RecordOrder(r))
	}

	got, err := j.ListOrders(context.Background(), "R1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "O1", got[0].OrderID)
	assert.Equal(t, "buy", got[0].Side)
	assert.Equal(t, int64(10), got[0].Units)
	assert.InDelta(t, 8989.0, got[0].Cash, 1e-9)
	assert.True(t, ts.Equal(got[0].Time))
	assert.Equal(t, "close", got[1].Side)
	assert.Equal(t, int64(0), got[1].Position)

	none, err := j.ListOrders(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteEquity(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	ts := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordEquity(EquitySnapshot{RunID: "R1", Bar: 2, Time: ts.AddDate(0, 0, 2), Cash: 1, Position: 3, NetWealth: 31}))
	require.NoError(t, j.RecordEquity(EquitySnapshot{RunID: "R1", Bar: 0, Time: ts, Cash: 2, Position: 0, NetWealth: 2}))

	got, err := j.ListEquity(context.Background(), "R1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Bar)
	assert.Equal(t, 2, got[1].Bar)
	assert.Equal(t, int64(3), got[1].Position)
	assert.InDelta(t, 31.0, got[1].NetWealth, 1e-9)
}

func TestSQLiteRuns(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })
	ctx := context.Background()

	_, err := j.LatestRun(ctx)
	assert.Error(t, err)

	run := RunRecord{
		RunID:            "01A",
		Created:          time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Dataset:          "btc.csv",
		Start:            time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		End:              time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC),
		FixedCost:        1,
		ProportionalCost: 0.01,
		ChargeCloseOut:   true,
		InitialCash:      10000,
		FinalCash:        10089,
		PerformancePct:   0.89,
		Trades:           2,
	}
	require.NoError(t, j.RecordRun(run))
	require.NoError(t, j.RecordRun(RunRecord{RunID: "01B", Dataset: "eth.csv", InitialCash: 1, FinalCash: 1}))

	got, err := j.GetRun(ctx, "01A")
	require.NoError(t, err)
	assert.Equal(t, "btc.csv", got.Dataset)
	assert.True(t, run.Start.Equal(got.Start))
	assert.True(t, got.ChargeCloseOut)
	assert.False(t, got.Strict)
	assert.Equal(t, 2, got.Trades)
	assert.InDelta(t, 89.0, got.NetPL(), 1e-9)

	latest, err := j.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "01B", latest.RunID)

	all, err := j.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "01A", all[0].RunID)

	_, err = j.GetRun(ctx, "nope")
	assert.ErrorContains(t, err, "not found")
}
