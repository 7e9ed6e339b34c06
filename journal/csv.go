// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSV struct {
	orders *csv.Writer
	equity *csv.Writer
	of, ef *os.File
}

var (
	orderHeader  = []string{"run_id", "order_id", "bar", "time", "side", "units", "price", "cost", "cash", "position", "net_wealth"}
	equityHeader = []string{"run_id", "bar", "time", "cash", "position", "net_wealth"}
)

func NewCSV(ordersPath, equityPath string) (*CSV, error) {
	of, err := os.Create(ordersPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		_ = of.Close()
		return nil, err
	}

	j := &CSV{orders: csv.NewWriter(of), equity: csv.NewWriter(ef), of: of, ef: ef}
	if err := j.write(j.orders, orderHeader); err != nil {
		_ = j.Close()
		return nil, err
	}
	if err := j.write(j.equity, equityHeader); err != nil {
		_ = j.Close()
		return nil, err
	}
	return j, nil
}

func (j *CSV) RecordOrder(o OrderRecord) error {
	return j.write(j.orders, []string{
		o.RunID,
		o.OrderID,
		strconv.Itoa(o.Bar),
		o.Time.Format(time.RFC3339),
		o.Side,
		strconv.FormatInt(o.Units, 10),
		f(o.Price),
		f(o.Cost),
		f(o.Cash),
		strconv.FormatInt(o.Position, 10),
		f(o.NetWealth),
	})
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	return j.write(j.equity, []string{
		e.RunID,
		strconv.Itoa(e.Bar),
		e.Time.Format(time.RFC3339),
		f(e.Cash),
		strconv.FormatInt(e.Position, 10),
		f(e.NetWealth),
	})
}

func (j *CSV) write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSV) Close() error {
	j.orders.Flush()
	oerr := j.orders.Error()
	j.equity.Flush()
	eerr := j.equity.Error()

	for _, err := range []error{oerr, eerr, j.of.Close(), j.ef.Close()} {
		if err != nil {
			return err
		}
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
