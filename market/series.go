package market

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Point is a raw (time, close) observation as read from a source, before
// range selection and return computation.
type Point struct {
	Time  time.Time
	Close float64
}

// Series is an immutable, chronologically ordered sequence of bars.
type Series struct {
	name string
	bars []Bar
}

// NewSeries builds a series from raw points. Points with a zero time or a
// NaN, infinite or non-positive close are dropped, the rest are sorted and
// restricted to r. Log returns are computed over the selected points and the
// first one, which has no return, is dropped.
//
// A duplicated timestamp, or fewer than two usable points in range, yields
// an error wrapping ErrDataUnavailable.
func NewSeries(name string, points []Point, r Range) (*Series, error) {
	clean := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Time.IsZero() || math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close <= 0 {
			continue
		}
		if !r.Contains(p.Time) {
			continue
		}
		clean = append(clean, p)
	}

	sort.SliceStable(clean, func(i, j int) bool {
		return clean[i].Time.Before(clean[j].Time)
	})
	for i := 1; i < len(clean); i++ {
		if !clean[i].Time.After(clean[i-1].Time) {
			return nil, fmt.Errorf("%s: duplicate timestamp %s: %w",
				name, clean[i].Time.Format(time.RFC3339), ErrDataUnavailable)
		}
	}

	if len(clean) < 2 {
		return nil, fmt.Errorf("%s: no bars in range %s: %w", name, r, ErrDataUnavailable)
	}

	bars := make([]Bar, 0, len(clean)-1)
	for i := 1; i < len(clean); i++ {
		bars = append(bars, Bar{
			Time:   clean[i].Time,
			Close:  clean[i].Close,
			Return: math.Log(clean[i].Close / clean[i-1].Close),
		})
	}

	return &Series{name: name, bars: bars}, nil
}

// Name identifies where the series came from, usually a file path.
func (s *Series) Name() string { return s.name }

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.bars) }

// PriceAt returns the bar at index i.
func (s *Series) PriceAt(i int) (Bar, error) {
	if i < 0 || i >= len(s.bars) {
		return Bar{}, fmt.Errorf("bar %d of %d: %w", i, len(s.bars), ErrIndexOutOfRange)
	}
	return s.bars[i], nil
}

// First returns the first bar. A Series always has at least one.
func (s *Series) First() Bar { return s.bars[0] }

// Last returns the last bar.
func (s *Series) Last() Bar { return s.bars[len(s.bars)-1] }

// Bars returns a copy of the bars.
func (s *Series) Bars() []Bar {
	out := make([]Bar, len(s.bars))
	copy(out, s.bars)
	return out
}

// Closes returns the close sub-series, for charting.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Close
	}
	return out
}
