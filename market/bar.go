package market

import (
	"errors"
	"time"
)

var (
	// ErrDataUnavailable is returned when a source cannot be read or no
	// usable rows fall in the requested date range.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrIndexOutOfRange is returned when a bar index falls outside the series.
	ErrIndexOutOfRange = errors.New("bar index out of range")
)

// DateLayout is how bar dates are rendered in reports and journals.
const DateLayout = "2006-01-02"

// Bar is one step of the replayed series.
type Bar struct {
	Time   time.Time
	Close  float64
	Return float64 // ln(Close / previous Close)
}

// Date returns the calendar date of the bar as YYYY-MM-DD.
func (b Bar) Date() string {
	return b.Time.Format(DateLayout)
}
