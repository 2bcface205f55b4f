package cmd

import (
	"context"

	"gridsync/feature/tables"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	pushSource  desiredFlags
	pushAugment bool
	pushDryRun  bool
	pushYes     bool
)

// pushCmd reconciles a worksheet with a desired table.
var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Reconcile a worksheet with a table from a file or the database",
	Long: `Reconcile the worksheet with a desired table.

The desired table comes from a JSON table document (--file) or a SQL table (--table).
The update is planned first and the report is printed. Changes to existing cells or rows
require confirmation unless --yes is given; --augment only fills empty cells and appends rows.

Examples:
  # Push a SQL table, keyed by its primary key
  gridsync push --table products

  # Fill gaps only, non-interactive
  gridsync push --table products --augment --yes

  # Push a JSON document to another worksheet
  gridsync push --file stock.json -w Stock`,
	RunE: runPush,
}

func init() {
	addSourceFlags(pushCmd, &pushSource)
	pushCmd.Flags().BoolVar(&pushAugment, "augment", false, "Only fill empty cells and append missing rows")
	pushCmd.Flags().BoolVar(&pushDryRun, "dry-run", false, "Print the plan without writing")
	pushCmd.Flags().BoolVar(&pushYes, "yes", false, "Auto-confirm changes (non-interactive)")

	RootCmd.AddCommand(pushCmd)
}

func addSourceFlags(cmd *cobra.Command, f *desiredFlags) {
	cmd.Flags().StringVar(&f.file, "file", "", "JSON table document (- for stdin)")
	cmd.Flags().StringVar(&f.table, "table", "", "SQL table to load")
	cmd.Flags().StringVar(&f.index, "index", "", "Index column of the SQL table (defaults to the primary key)")
	cmd.Flags().StringSliceVar(&f.columns, "columns", nil, "Columns to sync")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Maximum number of SQL rows")
}

func runPush(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := setup(ctx, pushSource.dbMode())
	if err != nil {
		return err
	}
	defer a.close()

	desired, err := pushSource.load(ctx, a)
	if err != nil {
		return err
	}

	req := tables.UpdateRequest{Augment: pushAugment, DryRun: true}
	if pushSource.file != "" {
		req.Columns = pushSource.columns
	}

	// Step 1: Plan (always runs)
	a.log.Info("Planning update...")
	planned, err := a.service.Update(ctx, "", desired, req)
	if err != nil {
		return err
	}
	printUpdateReport(a.log, planned)

	if !hasChanges(planned.Summary) {
		a.log.Info("Worksheet is already up to date")
		return nil
	}
	if pushDryRun {
		a.log.Info("Dry-run mode: No changes were made.")
		return nil
	}

	// Step 2: Apply (if confirmed)
	if destructive(planned) && !confirmDestructiveAction(pushYes) {
		a.log.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	req.DryRun = false
	result, err := a.service.Update(ctx, "", desired, req)
	if err != nil {
		return err
	}
	a.log.Info("Update applied",
		zap.String("worksheet", result.Worksheet),
		zap.String("mode", result.Mode),
		zap.Int("executed", result.Executed),
		zap.String("snapshot", result.Snapshot))
	return nil
}
