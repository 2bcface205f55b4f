// Package config provides configuration management for gridsync.
//
// It utilizes Viper for loading configuration from environment variables, an optional
// gridsync.toml file and a .env overlay. Defaults come from the `default` struct tags of
// each section.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, read cache TTL)
//   - Sheets: spreadsheet, worksheet and table layout (header row, indent, NA values, types)
//   - Database: MySQL or SQLite connection details for the table source
//   - Storage: S3/MinIO credentials and the snapshot bucket
//   - Log: Logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sheets.SpreadsheetID)
package config
