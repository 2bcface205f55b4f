// Package table holds the logical keyed-row view the synchronization engine operates on.
//
// A Table has an index column name, an ordered list of data columns and an ordered list of rows.
// Each row is identified by its key (the value of the index column). Keys are normalized so that 1
// and 1.0 identify the same row. Duplicate keys are accepted on construction; CheckUnique reports
// them so callers can decide whether that is fatal.
package table

import (
	"fmt"

	"gridsync/core/cell"
	"gridsync/core/syncerr"
)

// DefaultIndexName is the header written for an unnamed index.
const DefaultIndexName = "index"

// Row is a single keyed row.
type Row struct {
	Key    cell.Value            `json:"key"`
	Values map[string]cell.Value `json:"values"`
}

// Table is an ordered, keyed set of rows with named columns.
type Table struct {
	indexName string
	columns   []string
	colPos    map[string]int
	keys      []cell.Value
	rows      [][]cell.Value
	first     map[cell.Value]int
}

// New returns an empty table. Column names must be unique and must not repeat the index name.
func New(indexName string, columns ...string) (*Table, error) {
	t := &Table{
		indexName: indexName,
		columns:   append([]string(nil), columns...),
		colPos:    make(map[string]int, len(columns)),
		first:     make(map[cell.Value]int),
	}
	for i, c := range columns {
		if _, dup := t.colPos[c]; dup {
			return nil, syncerr.Schema("duplicate column %q", c)
		}
		if c == indexName && indexName != "" {
			return nil, syncerr.Schema("column %q repeats the index name", c)
		}
		t.colPos[c] = i
	}
	return t, nil
}

// MustNew is like New but panics on error. Intended for tests and literals.
func MustNew(indexName string, columns ...string) *Table {
	t, err := New(indexName, columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Append adds a row. values must be given in column order.
func (t *Table) Append(key cell.Value, values ...cell.Value) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row %v has %d values, table has %d columns", key, len(values), len(t.columns))
	}
	key = key.Normalize()
	if _, ok := t.first[key]; !ok {
		t.first[key] = len(t.keys)
	}
	t.keys = append(t.keys, key)
	t.rows = append(t.rows, append([]cell.Value(nil), values...))
	return nil
}

// MustAppend is like Append but panics on error.
func (t *Table) MustAppend(key cell.Value, values ...cell.Value) *Table {
	if err := t.Append(key, values...); err != nil {
		panic(err)
	}
	return t
}

// AppendRow adds a row given as a column map. Columns missing from the map are null; unknown
// columns are an error.
func (t *Table) AppendRow(r Row) error {
	values := make([]cell.Value, len(t.columns))
	for name, v := range r.Values {
		i, ok := t.colPos[name]
		if !ok {
			return syncerr.Schema("row %v has unknown column %q", r.Key, name)
		}
		values[i] = v
	}
	return t.Append(r.Key, values...)
}

// IndexName returns the index column name. It may be empty.
func (t *Table) IndexName() string { return t.indexName }

// HeaderIndexName returns the name written to the header for the index column.
func (t *Table) HeaderIndexName() string {
	if t.indexName == "" {
		return DefaultIndexName
	}
	return t.indexName
}

// Columns returns a copy of the data column names in order.
func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }

// HasColumn reports whether name is a data column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.colPos[name]
	return ok
}

// Keys returns a copy of the row keys in order, duplicates included.
func (t *Table) Keys() []cell.Value { return append([]cell.Value(nil), t.keys...) }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.keys) }

// Has reports whether a row with the key exists.
func (t *Table) Has(key cell.Value) bool {
	_, ok := t.first[key.Normalize()]
	return ok
}

// Get returns the value at (key, column). The first row wins when keys repeat.
func (t *Table) Get(key cell.Value, column string) (cell.Value, bool) {
	i, ok := t.first[key.Normalize()]
	if !ok {
		return cell.Null(), false
	}
	j, ok := t.colPos[column]
	if !ok {
		return cell.Null(), false
	}
	return t.rows[i][j], true
}

// Row returns the row with the given key as a column map.
func (t *Table) Row(key cell.Value) (Row, bool) {
	i, ok := t.first[key.Normalize()]
	if !ok {
		return Row{}, false
	}
	return t.rowAt(i), true
}

// Rows returns all rows in order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.keys))
	for i := range t.keys {
		out[i] = t.rowAt(i)
	}
	return out
}

// Values returns the row with the given key in column order.
func (t *Table) Values(key cell.Value) ([]cell.Value, bool) {
	i, ok := t.first[key.Normalize()]
	if !ok {
		return nil, false
	}
	return append([]cell.Value(nil), t.rows[i]...), true
}

// CheckUnique returns a KindIndex error naming the first duplicated key.
func (t *Table) CheckUnique() error {
	if len(t.first) == len(t.keys) {
		return nil
	}
	seen := make(map[cell.Value]struct{}, len(t.keys))
	for _, k := range t.keys {
		if _, dup := seen[k]; dup {
			return syncerr.Index("row key %q is not unique", k.String())
		}
		seen[k] = struct{}{}
	}
	return nil
}

// Select returns a new table restricted to the given columns, in the given order.
func (t *Table) Select(columns ...string) (*Table, error) {
	out, err := New(t.indexName, columns...)
	if err != nil {
		return nil, err
	}
	idx := make([]int, len(columns))
	for i, c := range columns {
		j, ok := t.colPos[c]
		if !ok {
			return nil, syncerr.Schema("column %q not found", c)
		}
		idx[i] = j
	}
	for r, key := range t.keys {
		values := make([]cell.Value, len(columns))
		for i, j := range idx {
			values[i] = t.rows[r][j]
		}
		if err := out.Append(key, values...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Equal reports whether both tables have the same column set and the same key -> value mapping.
// Column and row order are ignored; values compare with cell.Equal.
func (t *Table) Equal(o *Table) bool {
	if len(t.columns) != len(o.columns) || len(t.first) != len(o.first) || len(t.keys) != len(o.keys) {
		return false
	}
	for _, c := range t.columns {
		if !o.HasColumn(c) {
			return false
		}
	}
	for key, i := range t.first {
		j, ok := o.first[key]
		if !ok {
			return false
		}
		for c, ci := range t.colPos {
			if !cell.Equal(t.rows[i][ci], o.rows[j][o.colPos[c]]) {
				return false
			}
		}
	}
	return true
}

func (t *Table) rowAt(i int) Row {
	values := make(map[string]cell.Value, len(t.columns))
	for j, c := range t.columns {
		values[c] = t.rows[i][j]
	}
	return Row{Key: t.keys[i], Values: values}
}
