package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo matches the output of SHOW COLUMNS.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string // Pointer because NULL default is possible
	Extra   string
}

// IsPrimary reports whether the column is part of the primary key.
func (c ColumnInfo) IsPrimary() bool {
	return c.Key == "PRI"
}

// GetTableColumns retrieves the column definitions for a given table in declaration order.
// Column names keep their case; types are lowercased.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	if db.Dialector.Name() == "sqlite" {
		// SQLite uses PRAGMA table_info
		type SQLiteColumn struct {
			Cid        int
			Name       string
			Type       string
			Notnull    int
			DefaultVal *string `gorm:"column:dflt_value"`
			Pk         int
		}
		var sqliteCols []SQLiteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", strings.ReplaceAll(tableName, "'", "''"))).Scan(&sqliteCols).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range sqliteCols {
			info := ColumnInfo{
				Field:   col.Name,
				Type:    strings.ToLower(col.Type),
				Null:    "YES",
				Default: col.DefaultVal,
			}
			if col.Notnull != 0 {
				info.Null = "NO"
			}
			if col.Pk > 0 {
				info.Key = "PRI"
			}
			columns = append(columns, info)
		}
		return columns, nil
	}

	err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", strings.ReplaceAll(tableName, "`", "``"))).Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
	}
	return columns, nil
}
