package market

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// CloseRecord is the Parquet schema for stored bars.
type CloseRecord struct {
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Close     float64 `parquet:"close"`
}

// ParquetSource reads bars from a Parquet file of CloseRecord rows.
type ParquetSource struct {
	Path string
}

func (s *ParquetSource) Load(r Range) (*Series, error) {
	records, err := parquet.ReadFile[CloseRecord](s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %v: %w", s.Path, err, ErrDataUnavailable)
	}

	points := make([]Point, 0, len(records))
	for _, rec := range records {
		points = append(points, Point{
			Time:  unixMilliUTC(rec.Timestamp),
			Close: rec.Close,
		})
	}
	return NewSeries(s.Path, points, r)
}

// WriteParquet stores points at path as CloseRecord rows, creating parent
// directories as needed.
func WriteParquet(path string, points []Point) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	records := make([]CloseRecord, 0, len(points))
	for _, p := range points {
		records = append(records, CloseRecord{
			Timestamp: p.Time.UnixMilli(),
			Close:     p.Close,
		})
	}
	return parquet.WriteFile(path, records)
}
