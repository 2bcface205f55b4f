package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	writeFile    string
	writeComment string
)

// writeCmd writes a table into an empty region of a worksheet.
var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Write a table into an empty worksheet region",
	Long: `Write header and rows of a JSON table document into the worksheet. Every target cell
must be empty; use push to change an existing table. A comment is written into row 1 and needs
sheets.header to be 2 or more.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := setup(ctx, dbOptional)
		if err != nil {
			return err
		}
		defer a.close()

		t, err := readTableFile(writeFile)
		if err != nil {
			return err
		}
		if err := a.service.Write(ctx, "", t, writeComment); err != nil {
			return err
		}
		a.log.Info("Table written", zap.Int("rows", t.Len()), zap.Int("columns", len(t.Columns())))
		return nil
	},
}

func init() {
	writeCmd.Flags().StringVar(&writeFile, "file", "", "JSON table document (- for stdin)")
	writeCmd.Flags().StringVar(&writeComment, "comment", "", "Comment written above the header")
	_ = writeCmd.MarkFlagRequired("file")

	RootCmd.AddCommand(writeCmd)
}
