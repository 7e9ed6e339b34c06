package cmd

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/barbt/backtest"
	"github.com/rustyeddy/barbt/config"
	"github.com/rustyeddy/barbt/journal"
	"github.com/rustyeddy/barbt/ledger"
	"github.com/rustyeddy/barbt/market"
	"github.com/rustyeddy/barbt/report"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest from a configuration file",
	Long: `Run loads the configured price series, executes the scripted orders
bar by bar and prints each fill and the final summary.

Orders are listed in the configuration:

  orders:
    - {bar: 0,  side: buy,  amount: 5000}
    - {bar: 30, side: sell, units: 10}
    - {bar: 60, side: close}

Example:
  trader run -f backtest.yaml --strict`,
	Args: cobra.NoArgs,
	RunE: runBacktest,
}

var (
	runConfigPath string
	runQuiet      bool
	runStrict     bool
	runCloseEnd   bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "file", "f", "", "path to backtest config (required)")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "print only the final summary")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "reject orders that leave negative cash or short units")
	runCmd.Flags().BoolVar(&runCloseEnd, "close-end", false, "close out on the last bar if the orders did not")
	runCmd.MarkFlagRequired("file")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("log-level") && cfg.Log.Level != "" {
		newLogger(cfg.Log.Level, logJSON || cfg.Log.Format == "json")
	}
	if runQuiet {
		cfg.Report.Verbose = false
	}
	if runStrict {
		cfg.Ledger.Strict = true
	}
	if runCloseEnd {
		cfg.CloseAtEnd = true
	}

	series, err := loadSeries(cfg.Data)
	if err != nil {
		return err
	}

	orders, err := ordersFromConfig(cfg.Orders)
	if err != nil {
		return err
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	bt := backtest.New(series, backtest.Options{
		Ledger: ledger.Options{
			InitialCash: cfg.Account.InitialCash,
			Costs: ledger.Costs{
				Fixed:          cfg.Costs.Fixed,
				Proportional:   cfg.Costs.Proportional,
				ChargeCloseOut: cfg.Costs.ChargeCloseOut,
			},
			Strict: cfg.Ledger.Strict,
		},
		Report: report.Options{
			Verbose: cfg.Report.Verbose,
			Width:   cfg.Report.Width,
		},
		Out:        cmd.OutOrStdout(),
		Journal:    j,
		CloseAtEnd: cfg.CloseAtEnd,
		Logger:     logger,
	})

	res, err := bt.Run(cmd.Context(), orders)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	if !res.ClosedOut {
		// no close-out, so the report never printed its summary
		report.New(cmd.OutOrStdout(), report.Options{Width: cfg.Report.Width}).Summary(bt.Ledger().Summary())
		logger.Warn("run ended with an open position", "units", res.Position)
	}

	if cfg.Journal.OrgPath != "" {
		if err := journal.WriteRunOrg(cfg.Journal.OrgPath, bt.RunRecord(), bt.OrderRecords()); err != nil {
			return fmt.Errorf("write org report: %w", err)
		}
		logger.Info("org report written", "path", cfg.Journal.OrgPath)
	}
	return nil
}

func loadSeries(d config.DataConfig) (*market.Series, error) {
	r, err := d.Range()
	if err != nil {
		return nil, err
	}
	src, err := market.NewSource(d.Source())
	if err != nil {
		return nil, err
	}
	s, err := src.Load(r)
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	logger.Debug("series loaded", "path", d.Path, "range", r.String(), "bars", s.Len())
	return s, nil
}

func ordersFromConfig(specs []config.OrderSpec) ([]backtest.Order, error) {
	orders := make([]backtest.Order, 0, len(specs))
	for i, spec := range specs {
		size, err := spec.Size()
		if err != nil {
			return nil, fmt.Errorf("orders[%d]: %w", i, err)
		}
		orders = append(orders, backtest.Order{
			Bar:  spec.Bar,
			Side: ledger.Side(strings.ToLower(strings.TrimSpace(spec.Side))),
			Size: size,
		})
	}
	return orders, nil
}

func openJournal(c config.JournalConfig) (journal.Journal, error) {
	switch c.Type {
	case "csv":
		return journal.NewCSV(c.OrdersFile, c.EquityFile)
	case "sqlite":
		return journal.NewSQLite(c.DBPath)
	case "", "none":
		return journal.Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", c.Type)
	}
}
