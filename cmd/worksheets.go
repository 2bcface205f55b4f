package cmd

import (
	"context"
	"fmt"

	"gridsync/core/sheets"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	worksheetRows int
	worksheetCols int
)

// worksheetsCmd is the parent command for worksheet structure operations.
var worksheetsCmd = &cobra.Command{
	Use:   "worksheets",
	Short: "List or create worksheets",
}

var worksheetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List worksheet names in display order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := setup(ctx, dbOptional)
		if err != nil {
			return err
		}
		defer a.close()

		names, err := a.service.ListWorksheets(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var worksheetsCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a worksheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := setup(ctx, dbOptional)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.service.CreateWorksheet(ctx, args[0], worksheetRows, worksheetCols); err != nil {
			return err
		}
		a.log.Info("Worksheet created", zap.String("worksheet", args[0]))
		return nil
	},
}

func init() {
	worksheetsCreateCmd.Flags().IntVar(&worksheetRows, "rows", sheets.DefaultRows, "Number of rows")
	worksheetsCreateCmd.Flags().IntVar(&worksheetCols, "cols", sheets.DefaultCols, "Number of columns")

	worksheetsCmd.AddCommand(worksheetsListCmd)
	worksheetsCmd.AddCommand(worksheetsCreateCmd)
	RootCmd.AddCommand(worksheetsCmd)
}
