package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rustyeddy/barbt/ledger"
	"github.com/rustyeddy/barbt/market"
	"gopkg.in/yaml.v3"
)

// Config represents a complete backtest run
type Config struct {
	Data    DataConfig    `json:"data" yaml:"data"`
	Account AccountConfig `json:"account" yaml:"account"`
	Costs   CostsConfig   `json:"costs" yaml:"costs"`
	Ledger  LedgerConfig  `json:"ledger" yaml:"ledger"`
	Report  ReportConfig  `json:"report" yaml:"report"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Log     LogConfig     `json:"log" yaml:"log"`

	// CloseAtEnd closes out on the last bar if the orders did not.
	CloseAtEnd bool        `json:"close_at_end" yaml:"close_at_end"`
	Orders     []OrderSpec `json:"orders,omitempty" yaml:"orders,omitempty"`
}

// DataConfig selects the price file and date range
type DataConfig struct {
	Path        string `json:"path" yaml:"path"`
	Format      string `json:"format,omitempty" yaml:"format,omitempty"` // "csv" or "parquet"
	TimeColumn  string `json:"time_column,omitempty" yaml:"time_column,omitempty"`
	CloseColumn string `json:"close_column,omitempty" yaml:"close_column,omitempty"`
	Start       string `json:"start" yaml:"start"` // e.g. "2010-1-1"
	End         string `json:"end" yaml:"end"`
}

// Range parses Start and End.
func (d DataConfig) Range() (market.Range, error) {
	return market.NewRange(d.Start, d.End)
}

// Source returns the market.SourceConfig for this data section.
func (d DataConfig) Source() market.SourceConfig {
	return market.SourceConfig{
		Path:        d.Path,
		Format:      d.Format,
		TimeColumn:  d.TimeColumn,
		CloseColumn: d.CloseColumn,
	}
}

// AccountConfig contains account initialization parameters
type AccountConfig struct {
	InitialCash float64 `json:"initial_cash" yaml:"initial_cash"`
}

// CostsConfig contains transaction costs
type CostsConfig struct {
	Fixed          float64 `json:"fixed" yaml:"fixed"`
	Proportional   float64 `json:"proportional" yaml:"proportional"`
	ChargeCloseOut bool    `json:"charge_close_out" yaml:"charge_close_out"`
}

// LedgerConfig contains order validation settings
type LedgerConfig struct {
	Strict bool `json:"strict" yaml:"strict"`
}

// ReportConfig contains console report settings
type ReportConfig struct {
	Verbose bool `json:"verbose" yaml:"verbose"`
	Width   int  `json:"width,omitempty" yaml:"width,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	OrdersFile string `json:"orders_file,omitempty" yaml:"orders_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	OrgPath    string `json:"org_path,omitempty" yaml:"org_path,omitempty"`
}

// LogConfig contains logger settings
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"` // "text" or "json"
}

// OrderSpec is one scripted order. Exactly one of Units and Amount must be
// set for buy and sell; close takes neither.
type OrderSpec struct {
	Bar    int      `json:"bar" yaml:"bar"`
	Side   string   `json:"side" yaml:"side"` // "buy", "sell" or "close"
	Units  *int64   `json:"units,omitempty" yaml:"units,omitempty"`
	Amount *float64 `json:"amount,omitempty" yaml:"amount,omitempty"`
}

// Size returns the order size. Close orders have none.
func (o OrderSpec) Size() (ledger.OrderSize, error) {
	if o.side() == string(ledger.SideCloseOut) {
		if o.Units != nil || o.Amount != nil {
			return ledger.OrderSize{}, fmt.Errorf("close takes no units or amount: %w", ledger.ErrInvalidOrder)
		}
		return ledger.OrderSize{}, nil
	}
	s, err := ledger.SizeFrom(o.Units, o.Amount)
	if err != nil {
		return ledger.OrderSize{}, err
	}
	return s, s.Validate()
}

func (o OrderSpec) side() string {
	return strings.ToLower(strings.TrimSpace(o.Side))
}

// LoadFromFile loads configuration from a file (JSON or YAML)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return fmt.Errorf("data.path is required")
	}
	switch strings.ToLower(c.Data.Format) {
	case "", "csv", "parquet":
	default:
		return fmt.Errorf("data.format must be 'csv' or 'parquet'")
	}
	if _, err := c.Data.Range(); err != nil {
		return fmt.Errorf("data range: %w", err)
	}
	if c.Account.InitialCash <= 0 {
		return fmt.Errorf("account.initial_cash must be positive")
	}
	if c.Costs.Fixed < 0 {
		return fmt.Errorf("costs.fixed must not be negative")
	}
	if c.Costs.Proportional < 0 || c.Costs.Proportional >= 1 {
		return fmt.Errorf("costs.proportional must be between 0 and 1")
	}
	if c.Report.Width < 0 {
		return fmt.Errorf("report.width must not be negative")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.OrdersFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal orders_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}

	prev := 0
	for i, o := range c.Orders {
		switch o.side() {
		case "buy", "sell", "close":
		default:
			return fmt.Errorf("orders[%d]: side must be buy, sell or close", i)
		}
		if o.Bar < 0 {
			return fmt.Errorf("orders[%d]: bar must not be negative", i)
		}
		if o.Bar < prev {
			return fmt.Errorf("orders[%d]: bar %d is before bar %d", i, o.Bar, prev)
		}
		prev = o.Bar
		if _, err := o.Size(); err != nil {
			return fmt.Errorf("orders[%d]: %w", i, err)
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	units := int64(1)
	return &Config{
		Data: DataConfig{
			Path:  "./data/Bitstamp_BTCUSD_d.csv",
			Start: "2010-1-1",
			End:   "2019-12-31",
		},
		Account: AccountConfig{
			InitialCash: 10000,
		},
		Report: ReportConfig{
			Verbose: true,
			Width:   55,
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Log: LogConfig{
			Level: "info",
		},
		CloseAtEnd: true,
		Orders: []OrderSpec{
			{Bar: 0, Side: "buy", Units: &units},
		},
	}
}
