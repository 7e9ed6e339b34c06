package cmd

import (
	"fmt"
	"os"

	"github.com/rustyeddy/barbt/config"
	"github.com/rustyeddy/barbt/market"
	"github.com/rustyeddy/barbt/report"
	"github.com/spf13/cobra"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Inspect, convert and export price data",
	Long: `Work with the price files a backtest reads.

Subcommands:
  info    - Summarize a price file and show its last bars
  convert - Convert a CSV price file to Parquet
  export  - Write date,close,return CSV for charting tools

Examples:
  trader data info -i data/btcusd.csv --start 2019-1-1 --end 2019-12-31
  trader data convert -i data/btcusd.csv -o data/btcusd.parquet
  trader data export -i data/btcusd.parquet -o close.csv`,
}

var dataInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Summarize a price file",
	Args:  cobra.NoArgs,
	RunE:  runDataInfo,
}

var dataConvertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a CSV price file to Parquet",
	Args:  cobra.NoArgs,
	RunE:  runDataConvert,
}

var dataExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the close series as CSV",
	Args:  cobra.NoArgs,
	RunE:  runDataExport,
}

var (
	dataInput       string
	dataOutput      string
	dataFormat      string
	dataTimeColumn  string
	dataCloseColumn string
	dataStart       string
	dataEnd         string
	dataTail        int
)

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataInfoCmd)
	dataCmd.AddCommand(dataConvertCmd)
	dataCmd.AddCommand(dataExportCmd)

	pf := dataCmd.PersistentFlags()
	pf.StringVarP(&dataInput, "input", "i", "", "price file (required)")
	pf.StringVar(&dataFormat, "format", "", "input format: csv or parquet (default from extension)")
	pf.StringVar(&dataTimeColumn, "time-column", market.DefaultTimeColumn, "CSV timestamp column")
	pf.StringVar(&dataCloseColumn, "close-column", market.DefaultCloseColumn, "CSV close column")
	pf.StringVar(&dataStart, "start", "", "first date to include (e.g. 2010-1-1)")
	pf.StringVar(&dataEnd, "end", "", "last date to include")
	dataCmd.MarkPersistentFlagRequired("input")

	dataInfoCmd.Flags().IntVarP(&dataTail, "tail", "n", 5, "number of trailing bars to show")
	dataConvertCmd.Flags().StringVarP(&dataOutput, "output", "o", "", "Parquet output path (required)")
	dataConvertCmd.MarkFlagRequired("output")
	dataExportCmd.Flags().StringVarP(&dataOutput, "output", "o", "", "CSV output path (default stdout)")
}

func dataConfig() config.DataConfig {
	return config.DataConfig{
		Path:        dataInput,
		Format:      dataFormat,
		TimeColumn:  dataTimeColumn,
		CloseColumn: dataCloseColumn,
		Start:       dataStart,
		End:         dataEnd,
	}
}

func runDataInfo(cmd *cobra.Command, args []string) error {
	s, err := loadSeries(dataConfig())
	if err != nil {
		return err
	}
	report.New(cmd.OutOrStdout(), report.Options{}).Series(s, dataTail)
	return nil
}

// runDataConvert keeps the raw in-range rows, so loading the Parquet file
// over the same range gives the same series as the CSV.
func runDataConvert(cmd *cobra.Command, args []string) error {
	format := dataFormat
	if format == "" {
		format = market.FormatFromPath(dataInput)
	}
	if format != "csv" {
		return fmt.Errorf("convert expects a CSV input, got %s", format)
	}
	r, err := dataConfig().Range()
	if err != nil {
		return err
	}

	f, err := os.Open(dataInput)
	if err != nil {
		return err
	}
	defer f.Close()

	points, err := market.ReadCSVPoints(f, dataTimeColumn, dataCloseColumn)
	if err != nil {
		return fmt.Errorf("read %s: %w", dataInput, err)
	}

	kept := points[:0]
	for _, p := range points {
		if r.Contains(p.Time) {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return fmt.Errorf("no rows in range %s: %w", r, market.ErrDataUnavailable)
	}

	if err := market.WriteParquet(dataOutput, kept); err != nil {
		return fmt.Errorf("write %s: %w", dataOutput, err)
	}
	logger.Info("converted", "input", dataInput, "output", dataOutput, "rows", len(kept))
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d rows to %s\n", len(kept), dataOutput)
	return nil
}

func runDataExport(cmd *cobra.Command, args []string) error {
	s, err := loadSeries(dataConfig())
	if err != nil {
		return err
	}

	if dataOutput == "" {
		return market.WriteCSV(cmd.OutOrStdout(), s)
	}

	f, err := os.Create(dataOutput)
	if err != nil {
		return err
	}
	if err := market.WriteCSV(f, s); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
