package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/rustyeddy/barbt/journal"
	"github.com/rustyeddy/barbt/pkg/id"
	"github.com/rustyeddy/barbt/report"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query backtest journal data",
	Long: `Query and display backtest runs recorded in a SQLite journal.

Subcommands:
  runs - List recorded runs
  show - Show one run and its orders as an Org-mode entry

Examples:
  trader journal runs
  trader journal show            # latest run
  trader journal show 01HZX3AB...`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show a run and its orders",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJournalShow,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalShowCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./backtest.sqlite", "path to SQLite journal DB")
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runs, err := j.ListRuns(cmd.Context())
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tDATASET\tTRADES\tFINAL\tRETURN %")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			id.Short(r.RunID),
			r.Created.Format("2006-01-02 15:04"),
			r.Dataset,
			r.Trades,
			report.Money(r.FinalCash),
			report.Money(r.PerformancePct))
	}
	return tw.Flush()
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	var run journal.RunRecord
	if len(args) == 1 {
		run, err = j.GetRun(ctx, args[0])
	} else {
		run, err = j.LatestRun(ctx)
	}
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	orders, err := j.ListOrders(ctx, run.RunID)
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}

	org, err := journal.FormatRunOrg(run, orders)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), org)
	return nil
}
