package cmd

import (
	"fmt"
	"path/filepath"

	"gridsync/core/config"

	"github.com/spf13/cobra"
)

var configForce bool

// configCmd is the parent command for configuration helpers.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a gridsync.toml with default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(configDir, config.FileName)
		if err := config.WriteTemplate(path, configForce); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	RootCmd.AddCommand(configCmd)
}
