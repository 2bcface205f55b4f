package reconcile

import (
	"context"
	"errors"
	"fmt"

	"gridsync/core/cell"
	"gridsync/core/grid"
	"gridsync/core/syncerr"
	"gridsync/core/table"

	"go.uber.org/zap"
)

// ErrPlanConsumed is returned when a plan is applied a second time.
var ErrPlanConsumed = errors.New("mutation plan already applied")

// Writer applies mutation plans through a grid.Accessor.
type Writer struct {
	accessor grid.Accessor
	types    cell.Types
	log      *zap.Logger
}

// NewWriter creates a Writer. types are the declared column types used to encode values.
func NewWriter(accessor grid.Accessor, types cell.Types, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{accessor: accessor, types: types, log: log}
}

// Apply executes a plan against the region described by layout, one batched write per action
// class in the order set_cell, swap_row, delete_rows, add_rows. It returns the layout after the
// last applied class and the number of cells or rows changed.
//
// A failure stops the remaining classes. The grid is then only partially updated and the caller
// must read and plan again.
func (w *Writer) Apply(ctx context.Context, layout Layout, plan *MutationPlan) (Layout, int, error) {
	if layout.Rows == nil || layout.Columns == nil {
		return layout, 0, fmt.Errorf("layout has no row lookup")
	}
	if !plan.consume() {
		return layout, 0, ErrPlanConsumed
	}

	// Group actions by class
	var (
		sets    []Action
		swaps   []Action
		deletes []cell.Value
		adds    []table.Row
		last    = -1
	)
	for _, action := range plan.Actions {
		order, ok := classOrder[action.Type]
		if !ok {
			return layout, 0, fmt.Errorf("unknown action type %q", action.Type)
		}
		if order < last {
			return layout, 0, fmt.Errorf("action %s out of order", action.Type)
		}
		last = order

		switch action.Type {
		case ActionSetCell:
			sets = append(sets, action)
		case ActionSwapRow:
			swaps = append(swaps, action)
		case ActionDeleteRows:
			deletes = append(deletes, action.Keys...)
		case ActionAddRows:
			adds = append(adds, action.Rows...)
		}
	}

	var (
		executed int
		err      error
	)

	if len(sets) > 0 {
		if err = w.setCells(ctx, layout, sets); err != nil {
			return layout, executed, err
		}
		executed += len(sets)
	}

	if len(swaps) > 0 {
		if layout, err = w.swapRows(ctx, layout, swaps); err != nil {
			return layout, executed, err
		}
		executed += len(swaps)
	}

	if len(deletes) > 0 {
		if layout, err = w.deleteRows(ctx, layout, deletes); err != nil {
			return layout, executed, err
		}
		executed += len(deletes)
	}

	if len(adds) > 0 {
		if layout, err = w.addRows(ctx, layout, adds); err != nil {
			return layout, executed, err
		}
		executed += len(adds)
	}

	return layout, executed, nil
}

func (w *Writer) setCells(ctx context.Context, layout Layout, actions []Action) error {
	cells := make([]grid.Cell, 0, len(actions))
	for _, a := range actions {
		row, ok := layout.Rows.Row(a.Key)
		if !ok {
			return syncerr.Schema("row key %q not in grid", a.Key.String()).WithOp("apply.set_cell")
		}
		col, ok := layout.Columns.Col(a.Column)
		if !ok {
			return syncerr.Schema("column %q not in grid", a.Column).WithOp("apply.set_cell")
		}
		cells = append(cells, grid.Cell{
			Pos:   grid.Position{Row: row, Col: col},
			Value: cell.ToCell(a.Value, w.types.Of(a.Column)),
		})
	}
	if err := w.accessor.SetRange(ctx, cells); err != nil {
		return syncerr.Remote("apply.set_cell", err)
	}
	w.log.Debug("Updated cells", zap.Int("cells", len(cells)))
	return nil
}

func (w *Writer) swapRows(ctx context.Context, layout Layout, actions []Action) (Layout, error) {
	rows := layout.Rows
	names := layout.Columns.Names()
	cells := make([]grid.Cell, 0, len(actions)*len(names))
	for _, a := range actions {
		if a.Row == nil {
			return layout, fmt.Errorf("swap of %q has no replacement row", a.Key.String())
		}
		row, ok := rows.Row(a.Key)
		if !ok {
			return layout, syncerr.Schema("row key %q not in grid", a.Key.String()).WithOp("apply.swap_row")
		}
		cells = append(cells, w.rowCells(layout, row, *a.Row, true)...)

		next, err := rows.Rename(a.Key, a.Row.Key)
		if err != nil {
			return layout, fmt.Errorf("apply swap_row: %w", err)
		}
		rows = next
	}
	if err := w.accessor.SetRange(ctx, cells); err != nil {
		return layout, syncerr.Remote("apply.swap_row", err)
	}
	w.log.Debug("Reused row slots", zap.Int("rows", len(actions)))
	return layout.WithRows(rows), nil
}

// deleteRows removes rows and shifts every surviving block below them up, so the body stays
// contiguous. The affected region is read once and written once; only changed cells are sent.
func (w *Writer) deleteRows(ctx context.Context, layout Layout, keys []cell.Value) (Layout, error) {
	rows, c, err := layout.Rows.Compact(keys)
	if err != nil {
		return layout, fmt.Errorf("apply delete_rows: %w", err)
	}

	first, last := layout.Columns.First(), layout.Columns.Last()
	current, err := w.accessor.GetRange(ctx,
		grid.Position{Row: c.Start, Col: first},
		grid.Position{Row: c.End, Col: last})
	if err != nil {
		return layout, syncerr.Remote("apply.delete_rows", err)
	}

	// Survivors move up block by block; rows left uncovered at the bottom are blanked.
	width := last - first + 1
	compacted := make([][]cell.Value, c.End-c.Start+1)
	for _, shift := range c.Shifts {
		for i := 0; i < shift.Count; i++ {
			compacted[shift.To-c.Start+i] = rowAt(current, shift.From-c.Start+i)
		}
	}
	for i := range compacted {
		if compacted[i] == nil {
			compacted[i] = make([]cell.Value, width)
		}
	}

	var cells []grid.Cell
	for i, want := range compacted {
		have := rowAt(current, i)
		for j := 0; j < width; j++ {
			v := valueAt(want, j)
			if cell.Equal(valueAt(have, j), v) {
				continue
			}
			cells = append(cells, grid.Cell{
				Pos:   grid.Position{Row: c.Start + i, Col: first + j},
				Value: v,
			})
		}
	}
	if len(cells) > 0 {
		if err := w.accessor.SetRange(ctx, cells); err != nil {
			return layout, syncerr.Remote("apply.delete_rows", err)
		}
	}

	w.log.Debug("Deleted rows",
		zap.Int("rows", c.Cleared()),
		zap.Int("shifts", len(c.Shifts)),
		zap.Int("cells", len(cells)))
	return layout.WithRows(rows), nil
}

// addRows appends rows below the body after checking that the target rectangle is empty.
func (w *Writer) addRows(ctx context.Context, layout Layout, add []table.Row) (Layout, error) {
	start := layout.Rows.Next()
	first, last := layout.Columns.First(), layout.Columns.Last()
	origin := grid.Position{Row: start, Col: first}

	existing, err := w.accessor.GetRange(ctx, origin, grid.Position{Row: start + len(add) - 1, Col: last})
	if err != nil {
		return layout, syncerr.Remote("apply.add_rows", err)
	}
	if pos, empty := grid.AllEmpty(existing, origin); !empty {
		return layout, syncerr.WriteConflict("cell %s below the table is not empty", pos.A1()).WithOp("apply.add_rows")
	}

	keys := make([]cell.Value, len(add))
	var cells []grid.Cell
	for i, r := range add {
		keys[i] = r.Key
		cells = append(cells, w.rowCells(layout, start+i, r, false)...)
	}

	rows, err := layout.Rows.Append(keys...)
	if err != nil {
		return layout, fmt.Errorf("apply add_rows: %w", err)
	}
	if err := w.accessor.SetRange(ctx, cells); err != nil {
		return layout, syncerr.Remote("apply.add_rows", err)
	}
	w.log.Debug("Added rows", zap.Int("rows", len(add)), zap.Int("at", start))
	return layout.WithRows(rows), nil
}

// rowCells encodes r across every managed column of grid row row. Empty values are skipped
// unless blanks is set, in which case they clear whatever the slot held before.
func (w *Writer) rowCells(layout Layout, row int, r table.Row, blanks bool) []grid.Cell {
	names := layout.Columns.Names()
	cells := make([]grid.Cell, 0, len(names))
	for i, name := range names {
		var v cell.Value
		if name == layout.IndexName {
			v = cell.ToCell(r.Key, w.types.Of(name))
		} else {
			v = cell.ToCell(r.Values[name], w.types.Of(name))
		}
		if v.IsEmpty() && !blanks {
			continue
		}
		cells = append(cells, grid.Cell{
			Pos:   grid.Position{Row: row, Col: layout.Columns.First() + i},
			Value: v,
		})
	}
	return cells
}
