package cmd

import (
	"context"

	"gridsync/core/reconcile"

	"github.com/spf13/cobra"
)

var (
	readIndex   string
	readColumns []string
)

// readCmd prints the table stored in a worksheet.
var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Print the table stored in a worksheet as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := setup(ctx, dbOptional)
		if err != nil {
			return err
		}
		defer a.close()

		t, err := a.service.Read(ctx, "", reconcile.ReadOptions{IndexColumn: readIndex, Columns: readColumns})
		if err != nil {
			return err
		}
		return printJSON(t)
	},
}

func init() {
	readCmd.Flags().StringVar(&readIndex, "index", "", "Index column (defaults to sheets.index_column or auto-detection)")
	readCmd.Flags().StringSliceVar(&readColumns, "columns", nil, "Columns to read")

	RootCmd.AddCommand(readCmd)
}
