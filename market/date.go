package market

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are accepted for range bounds. "2006-1-2" also matches the
// zero-padded form.
var dateLayouts = []string{
	"2006-1-2",
	time.RFC3339,
}

// timeLayouts are accepted for row timestamps, tried in order.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-1-2",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseDate parses a range bound such as "2010-1-1" or "2019-12-31" as
// midnight UTC. An empty string yields the zero time (unbounded).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad date %q", s)
}

// parseTimestamp accepts unix seconds or one of timeLayouts. Timestamps
// without a zone are taken as UTC.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if u, err := strconv.ParseInt(s, 10, 64); err == nil {
		// millisecond epochs are 13 digits
		if len(s) >= 13 {
			return time.UnixMilli(u).UTC(), nil
		}
		return time.Unix(u, 0).UTC(), nil
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", s)
}

// Range is a calendar date range. Both ends are inclusive: every bar on the
// End day is part of the range. A zero bound is open.
type Range struct {
	Start time.Time
	End   time.Time
}

// NewRange parses start and end dates.
func NewRange(start, end string) (Range, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Range{}, fmt.Errorf("start: %w", err)
	}
	e, err := ParseDate(end)
	if err != nil {
		return Range{}, fmt.Errorf("end: %w", err)
	}
	if !s.IsZero() && !e.IsZero() && e.Before(s) {
		return Range{}, fmt.Errorf("end %s is before start %s", end, start)
	}
	return Range{Start: s, End: e}, nil
}

// Contains reports whether t falls in the range. The whole calendar day
// of End is included, even when End carries a time of day.
func (r Range) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() {
		y, m, d := r.End.Date()
		next := time.Date(y, m, d+1, 0, 0, 0, 0, r.End.Location())
		if !t.Before(next) {
			return false
		}
	}
	return true
}

func (r Range) String() string {
	f := func(t time.Time) string {
		if t.IsZero() {
			return "*"
		}
		return t.Format(DateLayout)
	}
	return f(r.Start) + ".." + f(r.End)
}

func unixMilliUTC(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
