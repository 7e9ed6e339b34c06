package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CSVSource reads bars from a CSV file with a header row naming at least a
// timestamp column and a close column:
//
//	unix,date,symbol,open,high,low,close,volume
//
// Any lines before the header (exchange dumps often carry a banner) are
// skipped. A row is dropped when any of its header columns is empty or a
// missing-value marker such as NaN or NA, or when the timestamp or close
// does not parse.
type CSVSource struct {
	Path        string
	TimeColumn  string
	CloseColumn string
}

func (s *CSVSource) Load(r Range) (*Series, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", s.Path, err, ErrDataUnavailable)
	}
	defer f.Close()

	points, err := ReadCSVPoints(f, s.TimeColumn, s.CloseColumn)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return NewSeries(s.Path, points, r)
}

// ReadCSVPoints reads (time, close) points from CSV content. Empty column
// names fall back to DefaultTimeColumn and DefaultCloseColumn.
func ReadCSVPoints(rd io.Reader, timeCol, closeCol string) ([]Point, error) {
	if timeCol == "" {
		timeCol = DefaultTimeColumn
	}
	if closeCol == "" {
		closeCol = DefaultCloseColumn
	}

	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	ti, ci, width := -1, -1, 0
	for ti < 0 || ci < 0 {
		row, err := r.Read()
		if err == io.EOF {
			return nil, fmt.Errorf("no header with columns %q and %q: %w", timeCol, closeCol, ErrDataUnavailable)
		}
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, ErrDataUnavailable)
		}
		ti, ci = columnIndex(row, timeCol), columnIndex(row, closeCol)
		width = len(row)
	}

	var points []Point
	for {
		row, err := r.Read()
		if err == io.EOF {
			return points, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, ErrDataUnavailable)
		}

		if !complete(row, width) {
			continue
		}
		p, ok := parsePointRow(row, ti, ci)
		if !ok {
			continue
		}
		points = append(points, p)
	}
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// missingValues are the cell contents read as a missing value.
var missingValues = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true,
	"-1.#QNAN": true, "-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true,
	"<NA>": true, "N/A": true, "NA": true, "NULL": true, "NaN": true,
	"None": true, "n/a": true, "nan": true, "null": true,
}

// complete reports whether row has a present value in each of the first
// width columns.
func complete(row []string, width int) bool {
	if len(row) < width {
		return false
	}
	for _, cell := range row[:width] {
		if missingValues[strings.TrimSpace(cell)] {
			return false
		}
	}
	return true
}

func parsePointRow(row []string, ti, ci int) (Point, bool) {
	if ti >= len(row) || ci >= len(row) {
		return Point{}, false
	}
	t, err := parseTimestamp(row[ti])
	if err != nil {
		return Point{}, false
	}
	c, err := strconv.ParseFloat(strings.TrimSpace(row[ci]), 64)
	if err != nil {
		return Point{}, false
	}
	return Point{Time: t, Close: c}, true
}

// WriteCSV writes the series as date,close,return rows for plotting tools.
func WriteCSV(w io.Writer, s *Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "close", "return"}); err != nil {
		return err
	}
	for _, b := range s.bars {
		if err := cw.Write([]string{
			b.Time.Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Return, 'f', 8, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
