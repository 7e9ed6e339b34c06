package ledger

import (
	"fmt"
	"math"
	"strconv"
)

type sizeKind int

const (
	sizeNone sizeKind = iota
	sizeUnits
	sizeCash
)

// OrderSize is either a unit count or a cash amount. The zero value is
// neither and is rejected by every order.
type OrderSize struct {
	kind  sizeKind
	units int64
	cash  float64
}

// Units sizes an order by unit count.
func Units(n int64) OrderSize {
	return OrderSize{kind: sizeUnits, units: n}
}

// Cash sizes an order by amount; it buys or sells as many whole units as
// the amount covers at the fill price.
func Cash(amount float64) OrderSize {
	return OrderSize{kind: sizeCash, cash: amount}
}

// SizeFrom builds an OrderSize from optional fields, as found in order
// scripts. Exactly one of units and amount must be set.
func SizeFrom(units *int64, amount *float64) (OrderSize, error) {
	switch {
	case units != nil && amount != nil:
		return OrderSize{}, fmt.Errorf("both units and amount given: %w", ErrInvalidOrder)
	case units != nil:
		return Units(*units), nil
	case amount != nil:
		return Cash(*amount), nil
	default:
		return OrderSize{}, fmt.Errorf("neither units nor amount given: %w", ErrInvalidOrder)
	}
}

// IsZero reports whether the size was never set.
func (s OrderSize) IsZero() bool { return s.kind == sizeNone }

// Validate checks the size independently of any price.
func (s OrderSize) Validate() error {
	switch s.kind {
	case sizeUnits:
		if s.units < 0 {
			return fmt.Errorf("negative units %d: %w", s.units, ErrInvalidOrder)
		}
	case sizeCash:
		if s.cash < 0 || math.IsNaN(s.cash) || math.IsInf(s.cash, 0) {
			return fmt.Errorf("bad amount %v: %w", s.cash, ErrInvalidOrder)
		}
	default:
		return fmt.Errorf("order size not set: %w", ErrInvalidOrder)
	}
	return nil
}

// Resolve converts the size to whole units at price.
func (s OrderSize) Resolve(price float64) (int64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if s.kind == sizeUnits {
		return s.units, nil
	}
	if price <= 0 {
		return 0, fmt.Errorf("cannot size %v by price %v: %w", s.cash, price, ErrInvalidOrder)
	}
	return int64(math.Floor(s.cash / price)), nil
}

func (s OrderSize) String() string {
	switch s.kind {
	case sizeUnits:
		return strconv.FormatInt(s.units, 10) + " units"
	case sizeCash:
		return "$" + strconv.FormatFloat(s.cash, 'f', 2, 64)
	default:
		return "unset"
	}
}
