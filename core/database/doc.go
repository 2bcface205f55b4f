// Package database handles database connections and schema inspection.
//
// It wraps GORM to open MySQL or SQLite connections from the application's configuration.
// The database is optional: it backs the SQL table source that feeds desired state into a
// synchronization and the journal of synchronization runs.
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns in declaration order, including which ones form the
// primary key. The SQL table source uses it to decide the column order and the index column of
// the table it loads.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "products")
package database
