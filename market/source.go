package market

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Source loads a price series for a date range.
type Source interface {
	Load(r Range) (*Series, error)
}

// Column names used when a source does not specify its own.
const (
	DefaultTimeColumn  = "date"
	DefaultCloseColumn = "close"
)

// SourceConfig describes where bars come from.
type SourceConfig struct {
	Path        string
	Format      string // "csv" or "parquet"; inferred from the extension if empty
	TimeColumn  string
	CloseColumn string
}

// NewSource returns the Source for cfg.
func NewSource(cfg SourceConfig) (Source, error) {
	format := strings.ToLower(cfg.Format)
	if format == "" {
		format = FormatFromPath(cfg.Path)
	}
	switch format {
	case "csv":
		return &CSVSource{Path: cfg.Path, TimeColumn: cfg.TimeColumn, CloseColumn: cfg.CloseColumn}, nil
	case "parquet":
		return &ParquetSource{Path: cfg.Path}, nil
	default:
		return nil, fmt.Errorf("unsupported data format %q (supported: csv, parquet)", cfg.Format)
	}
}

// FormatFromPath guesses the data format from a file extension.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return "parquet"
	default:
		return "csv"
	}
}
