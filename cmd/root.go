package cmd

import (
	"fmt"
	"os"

	"gridsync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// configDir is where .env and gridsync.toml are looked up.
	configDir string
	// worksheetFlag overrides sheets.worksheet.
	worksheetFlag string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "gridsync",
	Short: "Keyed table sync for spreadsheets",
	Long: `gridsync keeps a keyed table in a spreadsheet worksheet in sync with a desired table.
It reads, writes and reconciles tables with a minimal number of batched requests, and serves the
same operations over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format at debug level prints ISO8601 timestamps for CLI users.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory holding .env and gridsync.toml")
	RootCmd.PersistentFlags().StringVarP(&worksheetFlag, "worksheet", "w", "", "Worksheet name (defaults to sheets.worksheet, then the first worksheet)")
}
