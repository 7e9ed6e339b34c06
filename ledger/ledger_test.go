package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/rustyeddy/barbt/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// closes is a PriceSource with one bar per day starting 2020-01-01.
type closes []float64

func (c closes) PriceAt(bar int) (market.Bar, error) {
	if bar < 0 || bar >= len(c) {
		return market.Bar{}, fmt.Errorf("bar %d: %w", bar, market.ErrIndexOutOfRange)
	}
	return market.Bar{
		Time:  time.Date(2020, 1, 1+bar, 0, 0, 0, 0, time.UTC),
		Close: c[bar],
	}, nil
}

func newLedger(prices closes, cash, ftc, ptc float64) *Ledger {
	return New(prices, Options{
		InitialCash: cash,
		Costs:       Costs{Fixed: ftc, Proportional: ptc},
	})
}

func TestBuyWithCosts(t *testing.T) {
	t.Parallel()

	l := newLedger(closes{100, 110}, 10000, 1, 0.01)

	f, err := l.Buy(0, Units(10))
	require.NoError(t, err)

	// 10000 - (10*100*1.01 + 1)
	assert.InDelta(t, 8989.0, l.Cash(), 1e-9)
	assert.Equal(t, int64(10), l.Units())
	assert.Equal(t, 1, l.Trades())

	assert.Equal(t, SideBuy, f.Side)
	assert.Equal(t, int64(10), f.Units)
	assert.Equal(t, 100.0, f.Price)
	assert.InDelta(t, 11.0, f.Cost, 1e-9)
	assert.Equal(t, l.Cash(), f.Cash)
	assert.Equal(t, int64(10), f.Position)
	assert.Equal(t, "2020-01-01", f.Date())
	assert.NotEmpty(t, f.ID)
}

func TestCloseOutAfterBuy(t *testing.T) {
	t.Parallel()

	l := newLedger(closes{100, 110}, 10000, 1, 0.01)
	_, err := l.Buy(0, Units(10))
	require.NoError(t, err)

	f, sum, err := l.CloseOut(1)
	require.NoError(t, err)

	// close-out is free: 8989 + 10*110
	assert.InDelta(t, 10089.0, l.Cash(), 1e-9)
	assert.Equal(t, int64(0), l.Units())
	assert.Equal(t, 2, l.Trades())

	assert.Equal(t, SideCloseOut, f.Side)
	assert.Equal(t, int64(10), f.Units)
	assert.Equal(t, 0.0, f.Cost)
	assert.Equal(t, int64(0), f.Position)

	assert.Equal(t, 10000.0, sum.InitialCash)
	assert.InDelta(t, 10089.0, sum.FinalCash, 1e-9)
	assert.InDelta(t, 0.89, sum.PerformancePct, 1e-9)
	assert.Equal(t, 2, sum.Trades)
}

func TestCloseOutLoss(t *testing.T) {
	t.Parallel()

	// cash is debited 1012 on the buy, so a close at 100 loses 0.12%
	l := newLedger(closes{100, 100}, 10000, 2, 0.01)
	_, err := l.Buy(0, Units(10))
	require.NoError(t, err)

	_, sum, err := l.CloseOut(1)
	require.NoError(t, err)
	assert.InDelta(t, 9988.0, sum.FinalCash, 1e-9)
	assert.InDelta(t, -0.12, sum.PerformancePct, 1e-9)
}

func TestCloseOutChargesCostsWhenConfigured(t *testing.T) {
	t.Parallel()

	l := New(closes{100, 110}, Options{
		InitialCash: 10000,
		Costs:       Costs{Fixed: 1, Proportional: 0.01, ChargeCloseOut: true},
	})
	_, err := l.Buy(0, Units(10))
	require.NoError(t, err)

	f, _, err := l.CloseOut(1)
	require.NoError(t, err)
	// 8989 + 1100*0.99 - 1
	assert.InDelta(t, 10077.0, l.Cash(), 1e-9)
	assert.InDelta(t, 12.0, f.Cost, 1e-9)
}

func TestCloseOutShort(t *testing.T) {
	t.Parallel()

	l := newLedger(closes{100, 90}, 1000, 0, 0)
	_, err := l.Sell(0, Units(5))
	require.NoError(t, err)
	assert.Equal(t, int64(-5), l.Units())
	assert.InDelta(t, 1500.0, l.Cash(), 1e-9)

	f, sum, err := l.CloseOut(1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), l.Units())
	assert.Equal(t, int64(5), f.Units)
	assert.InDelta(t, 1050.0, sum.FinalCash, 1e-9)
	assert.InDelta(t, 5.0, sum.PerformancePct, 1e-9)
}

func TestCloseOutFlatPosition(t *testing.T) {
	t.Parallel()

	l := newLedger(closes{100}, 1000, 5, 0.1)
	_, sum, err := l.CloseOut(0)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, l.Cash())
	assert.Equal(t, 1, sum.Trades)
	assert.Equal(t, 0.0, sum.PerformancePct)
}

func TestSellWithCosts(t *testing.T) {
	t.Parallel()

	l := newLedger(closes{50}, 0, 2, 0.02)
	f, err := l.Sell(0, Units(4))
	require.NoError(t, err)

	// 4*50*0.98 - 2
	assert.InDelta(t, 194.0, l.Cash(), 1e-9)
	assert.InDelta(t, 6.0, f.Cost, 1e-9)
	assert.Equal(t, int64(-4), l.Units())
}

func TestBuyByAmountFloorsUnits(t *testing.T) {
	t.Parallel()

	l := newLedger(closes{30}, 1000, 0, 0)
	f, err := l.Buy(0, Cash(100))
	require.NoError(t, err)
	assert.Equal(t, int64(3), f.Units)
	assert.InDelta(t, 910.0, l.Cash(), 1e-9)

	// an amount below one unit still counts as a trade and pays the fee
	l = newLedger(closes{30}, 1000, 1, 0)
	f, err = l.Buy(0, Cash(10))
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.Units)
	assert.Equal(t, 999.0, l.Cash())
	assert.Equal(t, 1, l.Trades())
}

func TestRoundTripRestoresCash(t *testing.T) {
	t.Parallel()

	for _, price := range []float64{1, 99.5, 7123.45, 0.0317} {
		l := newLedger(closes{price}, 10000, 0, 0)
		before := l.Cash()

		_, err := l.Buy(0, Units(37))
		require.NoError(t, err)
		_, err = l.Sell(0, Units(37))
		require.NoError(t, err)

		assert.InDelta(t, before, l.Cash(), 1e-9, "price %v", price)
		assert.Equal(t, int64(0), l.Units())
		assert.Equal(t, 2, l.Trades())
	}
}

func TestTradeCountMatchesOperations(t *testing.T) {
	t.Parallel()

	l := newLedger(closes{10, 11, 12, 13}, 1000, 0.5, 0.001)
	ops := []func() error{
		func() error { _, err := l.Buy(0, Units(3)); return err },
		func() error { _, err := l.Sell(1, Units(1)); return err },
		func() error { _, err := l.Buy(2, Cash(50)); return err },
		func() error { _, err := l.Sell(3, Cash(20)); return err },
		func() error { _, _, err := l.CloseOut(3); return err },
	}
	for i, op := range ops {
		require.NoError(t, op())
		assert.Equal(t, i+1, l.Trades())
	}
	assert.Equal(t, int64(0), l.Units())
}

func TestNetWealth(t *testing.T) {
	t.Parallel()

	prices := closes{100, 101.25, 97.5, 120}
	l := newLedger(prices, 5000, 1, 0.002)
	_, err := l.Buy(0, Units(12))
	require.NoError(t, err)
	_, err = l.Sell(1, Units(5))
	require.NoError(t, err)

	for bar, p := range prices {
		nw, err := l.NetWealth(bar)
		require.NoError(t, err)
		assert.Equal(t, float64(l.Units())*p+l.Cash(), nw)
	}

	trades := l.Trades()
	_, err = l.NetWealth(len(prices))
	assert.ErrorIs(t, err, market.ErrIndexOutOfRange)
	assert.Equal(t, trades, l.Trades())
}

func TestInvalidOrders(t *testing.T) {
	t.Parallel()

	l := newLedger(closes{10}, 100, 0, 0)

	_, err := l.Buy(0, OrderSize{})
	assert.ErrorIs(t, err, ErrInvalidOrder)
	_, err = l.Sell(0, Units(-1))
	assert.ErrorIs(t, err, ErrInvalidOrder)
	_, err = l.Buy(0, Cash(-5))
	assert.ErrorIs(t, err, ErrInvalidOrder)

	assert.Equal(t, 0, l.Trades())
	assert.Equal(t, 100.0, l.Cash())
}

func TestOrdersOutOfRange(t *testing.T) {
	t.Parallel()

	l := newLedger(closes{10}, 100, 0, 0)

	_, err := l.Buy(1, Units(1))
	assert.ErrorIs(t, err, market.ErrIndexOutOfRange)
	_, err = l.Sell(-1, Units(1))
	assert.ErrorIs(t, err, market.ErrIndexOutOfRange)
	_, _, err = l.CloseOut(5)
	assert.ErrorIs(t, err, market.ErrIndexOutOfRange)
	assert.Equal(t, 0, l.Trades())
}

func TestPermissiveAllowsNegativeCashAndShorts(t *testing.T) {
	t.Parallel()

	l := newLedger(closes{100}, 50, 0, 0)
	_, err := l.Buy(0, Units(2))
	require.NoError(t, err)
	assert.Equal(t, -150.0, l.Cash())

	_, err = l.Sell(0, Units(5))
	require.NoError(t, err)
	assert.Equal(t, int64(-3), l.Units())
}

func TestStrictRejectsWithoutMutating(t *testing.T) {
	t.Parallel()

	l := New(closes{100}, Options{InitialCash: 250, Strict: true, Costs: Costs{Fixed: 1}})

	_, err := l.Buy(0, Units(3))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = l.Buy(0, Units(2))
	require.NoError(t, err)
	assert.Equal(t, 49.0, l.Cash())

	_, err = l.Sell(0, Units(3))
	assert.ErrorIs(t, err, ErrInsufficientUnits)

	assert.Equal(t, 1, l.Trades())
	assert.Equal(t, int64(2), l.Units())
	assert.Equal(t, 49.0, l.Cash())
}

func TestStrictSellFeeExceedsProceeds(t *testing.T) {
	t.Parallel()

	l := New(closes{1}, Options{InitialCash: 0, Strict: true, Costs: Costs{Fixed: 5}})
	_, err := l.Sell(0, Units(0))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}
