package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gridsync/core/config"
	"gridsync/core/database"
	"gridsync/core/grid"
	"gridsync/core/logger"
	"gridsync/core/reconcile"
	"gridsync/core/sheets"
	"gridsync/core/storage"
	"gridsync/core/table"
	"gridsync/feature/archive"
	"gridsync/feature/dbsource"
	"gridsync/feature/tables"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// dbMode selects how a command treats the database connection.
type dbMode int

const (
	dbOptional dbMode = iota
	dbRequired
)

// app bundles the collaborators a command works with.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	workbook  grid.Workbook
	db        *gorm.DB
	archive   *archive.Archive
	tablesCfg tables.Config
	service   *tables.Service
}

// setup loads configuration and connects the spreadsheet, the optional archive and the database.
func setup(ctx context.Context, mode dbMode) (*app, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if worksheetFlag != "" {
		cfg.Sheets.Worksheet = worksheetFlag
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	layout, err := cfg.Sheets.Options()
	if err != nil {
		return nil, fmt.Errorf("invalid sheets configuration: %w", err)
	}

	a := &app{cfg: cfg, log: l}

	wb, err := sheets.Open(ctx, cfg.Sheets, l)
	if err != nil {
		return nil, err
	}
	a.workbook = wb

	if cfg.Storage.Enabled {
		client, err := storage.Open(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot storage: %w", err)
		}
		if a.archive, err = archive.New(client, cfg.Storage.Bucket, cfg.Storage.Keep, l); err != nil {
			return nil, err
		}
	}

	svcCfg := tables.Config{
		Worksheet: cfg.Sheets.Worksheet,
		Layout:    layout,
		CacheTTL:  time.Duration(cfg.Server.CacheTTLSeconds) * time.Second,
		Archive:   a.archive,
	}

	db, err := database.Connect(cfg.Database)
	switch {
	case err != nil && mode == dbRequired:
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	case err != nil:
		l.Warn("Optional database connection failed", zap.Error(err))
	default:
		a.db = db
		journal := dbsource.NewJournal(db)
		if err := journal.Migrate(ctx); err != nil {
			return nil, err
		}
		svcCfg.Source = dbsource.NewSource(db, l)
		svcCfg.Journal = journal
		l.Info("Connected to database", zap.String("driver", cfg.Database.Driver))
	}

	a.tablesCfg = svcCfg
	a.service = tables.NewService(wb, svcCfg, l)
	return a, nil
}

// close flushes the logger.
func (a *app) close() {
	_ = a.log.Sync()
}

// desiredFlags selects where a command loads the desired table from.
type desiredFlags struct {
	file    string
	table   string
	index   string
	columns []string
	limit   int
}

// load returns the desired table from a JSON file or a SQL table.
func (f desiredFlags) load(ctx context.Context, a *app) (*table.Table, error) {
	switch {
	case f.file != "" && f.table != "":
		return nil, fmt.Errorf("--file and --table are mutually exclusive")
	case f.file != "":
		return readTableFile(f.file)
	case f.table != "":
		if a.db == nil {
			return nil, tables.ErrSourceDisabled
		}
		return dbsource.NewSource(a.db, a.log).Load(ctx, dbsource.Query{
			Table:   f.table,
			Index:   f.index,
			Columns: f.columns,
			Limit:   f.limit,
		})
	default:
		return nil, fmt.Errorf("one of --file or --table is required")
	}
}

func (f desiredFlags) dbMode() dbMode {
	if f.table != "" {
		return dbRequired
	}
	return dbOptional
}

// readTableFile reads a table document from path. "-" reads stdin.
func readTableFile(path string) (*table.Table, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var t table.Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &t, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printUpdateReport logs a plan summary and a sample of its actions.
func printUpdateReport(l *zap.Logger, result *tables.UpdateResult) {
	s := result.Summary
	l.Info("Update report",
		zap.String("worksheet", result.Worksheet),
		zap.String("mode", result.Mode),
		zap.Int("observed_rows", s.ObservedRows),
		zap.Int("desired_rows", s.DesiredRows),
		zap.Int("cell_updates", s.CellUpdates),
		zap.Int("swaps", s.Swaps),
		zap.Int("deletes", s.Deletes),
		zap.Int("adds", s.Adds),
	)

	maxShow := min(5, len(result.Actions))
	for _, action := range result.Actions[:maxShow] {
		l.Info("Sample action",
			zap.String("type", string(action.Type)),
			zap.String("key", action.Key.String()),
			zap.String("column", action.Column),
			zap.Int("rows", max(len(action.Keys), len(action.Rows))),
		)
	}
	if len(result.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(result.Actions)-maxShow))
	}
}

// destructive reports whether a planned update changes or removes existing data.
func destructive(result *tables.UpdateResult) bool {
	s := result.Summary
	return s.CellUpdates+s.Swaps+s.Deletes > 0 && result.Mode != tables.ModeAugment
}

// hasChanges reports whether a planned update writes anything.
func hasChanges(s reconcile.PlanSummary) bool {
	return s.CellUpdates+s.Swaps+s.Deletes+s.Adds > 0
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction(yes bool) bool {
	if yes {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm changes to the worksheet: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
