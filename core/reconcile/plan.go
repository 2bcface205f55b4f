package reconcile

import (
	"fmt"
	"sort"

	"gridsync/core/cell"
	"gridsync/core/syncerr"
	"gridsync/core/table"
)

// Plan computes the mutations that make the grid described by observed match desired.
// It performs no I/O and never modifies either table.
//
// Desired values are compared in the form they would take after a write and a read-back, so a
// plan computed right after applying the previous one is empty.
func Plan(desired, observed *table.Table, opts PlanOptions) (*MutationPlan, error) {
	want, err := readBackTable(desired, opts.Types, opts.Missing)
	if err != nil {
		return nil, err
	}
	if err := want.CheckUnique(); err != nil {
		return nil, fmt.Errorf("desired table: %w", err)
	}
	if err := checkKeys(want, opts.Types.Of(want.HeaderIndexName())); err != nil {
		return nil, fmt.Errorf("desired table: %w", err)
	}
	if err := observed.CheckUnique(); err != nil {
		return nil, fmt.Errorf("observed table: %w", err)
	}

	scope, err := planColumns(want, observed, opts)
	if err != nil {
		return nil, err
	}

	plan := &MutationPlan{Overwrite: opts.Overwrite}
	plan.Summary.ObservedRows = observed.Len()
	plan.Summary.DesiredRows = want.Len()

	// Rows present on both sides are compared cell by cell.
	var toAdd, toRemove []cell.Value
	for _, key := range want.Keys() {
		if !observed.Has(key) {
			toAdd = append(toAdd, key)
			continue
		}
		for _, column := range scope {
			have, _ := observed.Get(key, column)
			value, _ := want.Get(key, column)
			if !cellNeedsWrite(have, value, opts.Overwrite) {
				continue
			}
			plan.Actions = append(plan.Actions, Action{
				Type:   ActionSetCell,
				Key:    key,
				Column: column,
				Value:  value,
			})
			plan.Summary.CellUpdates++
		}
	}

	if opts.Overwrite {
		for _, key := range observed.Keys() {
			if !want.Has(key) {
				toRemove = append(toRemove, key)
			}
		}
	}

	// Vacated slots are reused in list order.
	pairs := min(len(toAdd), len(toRemove))
	for i := 0; i < pairs; i++ {
		row, _ := want.Row(toAdd[i])
		plan.Actions = append(plan.Actions, Action{
			Type: ActionSwapRow,
			Key:  toRemove[i],
			Row:  &row,
		})
		plan.Summary.Swaps++
	}

	if rest := toRemove[pairs:]; len(rest) > 0 {
		plan.Actions = append(plan.Actions, Action{
			Type: ActionDeleteRows,
			Keys: append([]cell.Value(nil), rest...),
		})
		plan.Summary.Deletes = len(rest)
	}

	if rest := toAdd[pairs:]; len(rest) > 0 {
		rows := make([]table.Row, len(rest))
		for i, key := range rest {
			rows[i], _ = want.Row(key)
		}
		plan.Actions = append(plan.Actions, Action{
			Type: ActionAddRows,
			Rows: rows,
		})
		plan.Summary.Adds = len(rest)
	}

	return plan, nil
}

// cellNeedsWrite decides whether a cell of a row present on both sides is written.
func cellNeedsWrite(have, want cell.Value, overwrite bool) bool {
	if overwrite {
		return !cell.Equal(have, want)
	}
	return have.IsEmpty() && !want.IsEmpty()
}

// planColumns validates the column sets and returns the columns compared cell by cell.
func planColumns(desired, observed *table.Table, opts PlanOptions) ([]string, error) {
	missingInGrid := difference(desired.Columns(), observed)
	if opts.Overwrite {
		missingInTable := difference(observed.Columns(), desired)
		if len(missingInGrid) > 0 || len(missingInTable) > 0 {
			return nil, syncerr.SchemaMismatch("columns differ: not in grid %v, not in table %v", missingInGrid, missingInTable)
		}
	} else if len(missingInGrid) > 0 {
		return nil, syncerr.Schema("columns %v are not in the grid header", missingInGrid)
	}

	if len(opts.Columns) == 0 {
		return desired.Columns(), nil
	}
	for _, column := range opts.Columns {
		if !desired.HasColumn(column) || !observed.HasColumn(column) {
			return nil, syncerr.Schema("column %q is not present in both tables", column)
		}
	}
	return opts.Columns, nil
}

func difference(columns []string, other *table.Table) []string {
	var out []string
	for _, c := range columns {
		if !other.HasColumn(c) {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// checkKeys rejects rows whose key would be stored as an empty index cell. Such a row ends the
// index column extent, so the next read would lose it and everything below it.
func checkKeys(t *table.Table, keyType cell.Type) error {
	for i, k := range t.Keys() {
		if cell.ToCell(k, keyType).IsEmpty() {
			return syncerr.Index("row %d has an empty key", i+1)
		}
	}
	return nil
}

// readBack returns v as the Reader would decode it after the Writer stored it.
func readBack(v cell.Value, typ cell.Type, na cell.NASet) cell.Value {
	return cell.FromCell(cell.ToCell(v, typ), typ, na).Normalize()
}

// readBackTable maps every key and value of t through readBack. Keys are never treated as missing.
func readBackTable(t *table.Table, types cell.Types, na cell.NASet) (*table.Table, error) {
	out, err := table.New(t.IndexName(), t.Columns()...)
	if err != nil {
		return nil, err
	}
	keyType := types.Of(t.HeaderIndexName())
	columns := t.Columns()
	for _, key := range t.Keys() {
		values, _ := t.Values(key)
		for i, c := range columns {
			values[i] = readBack(values[i], types.Of(c), na)
		}
		if err := out.Append(readBack(key, keyType, nil), values...); err != nil {
			return nil, err
		}
	}
	return out, nil
}
