package cmd

import (
	"log/slog"
	"os"

	"github.com/rustyeddy/barbt/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trader",
	Short: "An event-driven bar backtester",
	Long: `Trader replays a historical close-price series bar by bar and simulates
the cash and position effects of buy, sell and close-out orders, including
fixed and proportional transaction costs.

It provides tools for:
  - Running scripted order lists against CSV or Parquet price data
  - Generating and validating run configurations
  - Inspecting, converting and exporting price data
  - Journaling orders and equity to CSV or SQLite`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogger,
}

var (
	logLevel string
	logJSON  bool

	logger = slog.Default()
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
}

func setupLogger(cmd *cobra.Command, args []string) error {
	newLogger(logLevel, logJSON)
	return nil
}

func newLogger(level string, asJSON bool) {
	if asJSON {
		logger = logging.NewJSON(level, os.Stderr)
	} else {
		logger = logging.New(level, os.Stderr)
	}
	slog.SetDefault(logger)
}
