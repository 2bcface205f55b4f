package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	restoreDryRun bool
	restoreYes    bool
)

// snapshotsCmd is the parent command for snapshot archive operations.
var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List or restore archived worksheet snapshots",
	Long: `Snapshots are taken before every overwriting update when storage.enabled is set.
They are zstd compressed JSON tables kept in the configured bucket.`,
}

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots of the worksheet, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := setup(ctx, dbOptional)
		if err != nil {
			return err
		}
		defer a.close()

		snaps, err := a.service.Snapshots(ctx, "")
		if err != nil {
			return err
		}
		for _, s := range snaps {
			fmt.Printf("%s\t%s\t%d bytes\n", s.Created.Format("2006-01-02 15:04:05"), s.Key, s.Size)
		}
		return nil
	},
}

var snapshotsRestoreCmd = &cobra.Command{
	Use:   "restore [KEY]",
	Short: "Reconcile the worksheet with a snapshot (default: the newest)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := setup(ctx, dbOptional)
		if err != nil {
			return err
		}
		defer a.close()

		key := ""
		if len(args) == 1 {
			key = args[0]
		}

		planned, err := a.service.Restore(ctx, "", key, true)
		if err != nil {
			return err
		}
		printUpdateReport(a.log, planned)
		if !hasChanges(planned.Summary) {
			a.log.Info("Worksheet already matches the snapshot")
			return nil
		}
		if restoreDryRun {
			a.log.Info("Dry-run mode: No changes were made.")
			return nil
		}
		if !confirmDestructiveAction(restoreYes) {
			a.log.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}

		result, err := a.service.Restore(ctx, "", key, false)
		if err != nil {
			return err
		}
		a.log.Info("Snapshot restored",
			zap.String("worksheet", result.Worksheet),
			zap.Int("executed", result.Executed),
			zap.String("snapshot", result.Snapshot))
		return nil
	},
}

func init() {
	snapshotsRestoreCmd.Flags().BoolVar(&restoreDryRun, "dry-run", false, "Print the plan without writing")
	snapshotsRestoreCmd.Flags().BoolVar(&restoreYes, "yes", false, "Auto-confirm changes (non-interactive)")

	snapshotsCmd.AddCommand(snapshotsListCmd)
	snapshotsCmd.AddCommand(snapshotsRestoreCmd)
	RootCmd.AddCommand(snapshotsCmd)
}
