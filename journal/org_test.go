package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRunOrg(t *testing.T) {
	t.Parallel()

	run := RunRecord{
		RunID:            "01HZX3ABCDEFGHJKMNPQRSTVWX",
		Created:          time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		Dataset:          "btc.csv",
		Start:            time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		FixedCost:        1,
		ProportionalCost: 0.01,
		InitialCash:      10000,
		FinalCash:        10089,
		PerformancePct:   0.89,
		Trades:           2,
	}
	orders := []OrderRecord{
		{Time: time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC), Side: "buy", Units: 10, Price: 100, Cost: 11, Cash: 8989, Position: 10, NetWealth: 9989},
		{Time: time.Date(2019, 1, 3, 0, 0, 0, 0, time.UTC), Side: "close", Units: 10, Price: 110, Cash: 10089, NetWealth: 10089},
	}

	out, err := FormatRunOrg(run, orders)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "* BACKTEST: btc.csv (01HZX3AB)\n"))
	assert.Contains(t, out, ":RUN_ID:      01HZX3ABCDEFGHJKMNPQRSTVWX")
	assert.Contains(t, out, ":START_DATE:  2019-01-01")
	assert.Contains(t, out, ":END_DATE:    (open)")
	assert.Contains(t, out, ":NET_PL:      89.00")
	assert.Contains(t, out, ":RETURN_PCT:  0.89")
	assert.Contains(t, out, ":CREATED:     [2024-03-15 Fri 10:30]")
	assert.Contains(t, out, "| Proportional       | 0.0100 |")
	assert.Contains(t, out, "| 2019-01-02 | buy | 10 | 100.00 | 11.00 | 8989.00 | 10 | 9989.00 |")
	assert.Contains(t, out, "| 2019-01-03 | close | 10 | 110.00 | 0.00 | 10089.00 | 0 | 10089.00 |")
}

func TestWriteRunOrg(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.org")
	require.NoError(t, WriteRunOrg(path, RunRecord{RunID: "R", Dataset: "d"}, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "* BACKTEST: d (R)")
}
