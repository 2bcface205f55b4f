package cmd

import (
	"context"

	"gridsync/feature/tables"

	"github.com/spf13/cobra"
)

var (
	planSource  desiredFlags
	planAugment bool
)

// planCmd prints the mutation plan of an update without applying it.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the actions an update would perform",
	Long: `Read the worksheet, diff it against the desired table and print the planned actions
as JSON. Nothing is written.`,
	RunE: runPlan,
}

func init() {
	addSourceFlags(planCmd, &planSource)
	planCmd.Flags().BoolVar(&planAugment, "augment", false, "Plan an augment instead of an overwrite")

	RootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := setup(ctx, planSource.dbMode())
	if err != nil {
		return err
	}
	defer a.close()

	desired, err := planSource.load(ctx, a)
	if err != nil {
		return err
	}

	req := tables.UpdateRequest{Augment: planAugment, DryRun: true}
	if planSource.file != "" {
		req.Columns = planSource.columns
	}
	result, err := a.service.Update(ctx, "", desired, req)
	if err != nil {
		return err
	}
	return printJSON(result)
}
