package reconcile

import (
	"sync/atomic"

	"gridsync/core/cell"
	"gridsync/core/lookup"
	"gridsync/core/table"
)

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionSetCell overwrites a single cell of an existing row.
	ActionSetCell ActionType = "set_cell"
	// ActionSwapRow reuses the slot of a removed row for an added row.
	ActionSwapRow ActionType = "swap_row"
	// ActionDeleteRows removes rows and closes the gap they leave.
	ActionDeleteRows ActionType = "delete_rows"
	// ActionAddRows appends rows below the last body row.
	ActionAddRows ActionType = "add_rows"
)

// classOrder is the order in which action classes are applied.
var classOrder = map[ActionType]int{
	ActionSetCell:    0,
	ActionSwapRow:    1,
	ActionDeleteRows: 2,
	ActionAddRows:    3,
}

// Action represents a planned mutation operation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the row addressed by set_cell, or the row whose slot is reused by swap_row.
	Key cell.Value `json:"key"`

	// Column is the column written by set_cell.
	Column string `json:"column,omitempty"`

	// Value is the value written by set_cell.
	Value cell.Value `json:"value"`

	// Row is the replacement row written by swap_row.
	Row *table.Row `json:"row,omitempty"`

	// Keys lists the rows removed by delete_rows.
	Keys []cell.Value `json:"keys,omitempty"`

	// Rows lists the rows appended by add_rows, in order.
	Rows []table.Row `json:"rows,omitempty"`
}

// MutationPlan is the ordered output of Plan. A plan is applied at most once.
type MutationPlan struct {
	// Actions contains planned mutation operations in application order.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`

	// Overwrite records the mode the plan was computed in.
	Overwrite bool `json:"overwrite"`

	consumed atomic.Bool
}

// PlanSummary provides aggregate statistics for a mutation plan.
type PlanSummary struct {
	// ObservedRows is the number of rows found in the grid.
	ObservedRows int `json:"observed_rows"`

	// DesiredRows is the number of rows in the desired table.
	DesiredRows int `json:"desired_rows"`

	// CellUpdates counts set_cell actions.
	CellUpdates int `json:"cell_updates"`

	// Swaps counts swap_row actions.
	Swaps int `json:"swaps"`

	// Deletes counts rows removed by delete_rows.
	Deletes int `json:"deletes"`

	// Adds counts rows appended by add_rows.
	Adds int `json:"adds"`
}

// Empty reports whether the plan has nothing to do.
func (p *MutationPlan) Empty() bool { return len(p.Actions) == 0 }

// Consumed reports whether the plan has already been handed to a Writer.
func (p *MutationPlan) Consumed() bool { return p.consumed.Load() }

// consume marks the plan as applied. It returns false when it already was.
func (p *MutationPlan) consume() bool { return p.consumed.CompareAndSwap(false, true) }

// PlanOptions controls how Plan compares the two tables.
type PlanOptions struct {
	// Overwrite makes the grid match the desired table exactly, deleting rows it lacks.
	// When false only missing observed cells are filled and nothing is deleted.
	Overwrite bool

	// Columns restricts cell comparison to the named columns. Empty means every desired column.
	Columns []string

	// Types are the declared column types used to predict how desired values read back.
	Types cell.Types

	// Missing is the set of cell texts that read back as null.
	Missing cell.NASet
}

// UpdateOptions controls Synchronizer.Update.
type UpdateOptions struct {
	// Columns restricts cell comparison to the named columns.
	Columns []string

	// Overwrite selects overwrite mode; false is augment mode.
	Overwrite bool
}

// ReadOptions controls Synchronizer.Read.
type ReadOptions struct {
	// IndexColumn overrides the configured index column for this read.
	IndexColumn string

	// Columns returns only the named data columns. Empty means all.
	Columns []string
}

// Layout locates a table inside the grid. It is rebuilt on every read and threaded explicitly
// from the Reader to the Writer.
type Layout struct {
	// Header is the grid row holding column names.
	Header int

	// IndexName is the header of the index column.
	IndexName string

	// Columns maps every header name, index included, to its grid column.
	Columns *lookup.Columns

	// Rows maps row keys to grid rows. It is nil until the observed keys are known to be unique.
	Rows *lookup.Rows
}

// WithRows returns a copy of the layout carrying the given row lookup.
func (l Layout) WithRows(rows *lookup.Rows) Layout {
	l.Rows = rows
	return l
}

// Observed is what the Reader found in the grid.
type Observed struct {
	// Table is the decoded body. Duplicate keys are preserved.
	Table *table.Table

	// Layout locates Table inside the grid, without a row lookup.
	Layout Layout
}
