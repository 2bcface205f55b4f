package dbsource

import (
	"context"
	"fmt"

	"gridsync/core/cell"
	"gridsync/core/database"
	"gridsync/core/syncerr"
	"gridsync/core/table"
	"gridsync/core/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Query selects the rows of a SQL table to load.
type Query struct {
	// Table is the SQL table name.
	Table string
	// Index is the key column. Empty uses the primary key, or the first column without one.
	Index string
	// Columns limits the loaded data columns. Empty loads every column.
	Columns []string
	// Limit caps the number of rows. Zero loads all rows.
	Limit int
}

// Source loads SQL tables as keyed tables.
type Source struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSource creates a source over db.
func NewSource(db *gorm.DB, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{db: db, logger: logger}
}

// Columns returns the column definitions of a SQL table.
func (s *Source) Columns(name string) ([]database.ColumnInfo, error) {
	cols, err := database.GetTableColumns(s.db, name)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s not found", name)
	}
	return cols, nil
}

// Load reads the selected rows ordered by the index column.
func (s *Source) Load(ctx context.Context, q Query) (*table.Table, error) {
	cols, err := s.Columns(q.Table)
	if err != nil {
		return nil, err
	}
	index, columns, err := resolveColumns(cols, q)
	if err != nil {
		return nil, err
	}

	selected := make([]clause.Column, 0, len(columns)+1)
	for _, name := range append([]string{index}, columns...) {
		selected = append(selected, clause.Column{Name: name})
	}
	stmt := s.db.WithContext(ctx).
		Table(q.Table).
		Clauses(clause.Select{Columns: selected}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: index}})
	if q.Limit > 0 {
		stmt = stmt.Limit(q.Limit)
	}

	rows, err := stmt.Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", q.Table, err)
	}
	defer rows.Close()

	t, err := table.New(index, columns...)
	if err != nil {
		return nil, err
	}
	raw := make([]any, len(columns)+1)
	ptrs := make([]any, len(raw))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan table %s: %w", q.Table, err)
		}
		values := make([]cell.Value, len(columns))
		for i := range columns {
			values[i] = toCell(raw[i+1])
		}
		if err := t.Append(toCell(raw[0]), values...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", q.Table, err)
	}

	s.logger.Debug("Loaded table",
		zap.String("table", q.Table),
		zap.String("index", index),
		zap.Int("rows", t.Len()))
	return t, nil
}

// resolveColumns picks the index column and the data columns for q.
func resolveColumns(cols []database.ColumnInfo, q Query) (string, []string, error) {
	known := make(map[string]bool, len(cols))
	for _, c := range cols {
		known[c.Field] = true
	}

	index := q.Index
	if index == "" {
		index = cols[0].Field
		for _, c := range cols {
			if c.IsPrimary() {
				index = c.Field
				break
			}
		}
	}
	if !known[index] {
		return "", nil, syncerr.Schema("index column %q not found in table %s", index, q.Table)
	}

	var columns []string
	if len(q.Columns) == 0 {
		for _, c := range cols {
			if c.Field != index {
				columns = append(columns, c.Field)
			}
		}
		return index, columns, nil
	}
	for _, name := range q.Columns {
		if !known[name] {
			return "", nil, syncerr.Schema("column %q not found in table %s", name, q.Table)
		}
		if name != index {
			columns = append(columns, name)
		}
	}
	return index, columns, nil
}

// toCell converts a SQL driver value into a cell value.
func toCell(v any) cell.Value {
	if s, ok := utils.FormatTime(v); ok {
		if s == "" {
			return cell.Null()
		}
		return cell.String(s)
	}
	return cell.Of(v)
}
