package grid

import (
	"context"
	"fmt"

	"gridsync/core/cell"
)

// Position is a 1-based (row, column) address.
type Position struct {
	Row int
	Col int
}

// A1 returns the position in A1 notation (e.g. "C7").
func (p Position) A1() string {
	return ColumnLetters(p.Col) + fmt.Sprint(p.Row)
}

// Valid reports whether both coordinates are positive.
func (p Position) Valid() bool {
	return p.Row > 0 && p.Col > 0
}

// Cell is a value at a position.
type Cell struct {
	Pos   Position
	Value cell.Value
}

// Range is an inclusive rectangle between two positions.
type Range struct {
	TopLeft     Position
	BottomRight Position
}

// NewRange returns the rectangle spanning from (r1, c1) to (r2, c2).
func NewRange(r1, c1, r2, c2 int) Range {
	return Range{TopLeft: Position{Row: r1, Col: c1}, BottomRight: Position{Row: r2, Col: c2}}
}

// Rows returns the number of rows in the range.
func (r Range) Rows() int { return r.BottomRight.Row - r.TopLeft.Row + 1 }

// Cols returns the number of columns in the range.
func (r Range) Cols() int { return r.BottomRight.Col - r.TopLeft.Col + 1 }

// Empty reports whether the range holds no cells.
func (r Range) Empty() bool { return r.Rows() <= 0 || r.Cols() <= 0 }

// A1 returns the range in A1 notation, optionally qualified with a worksheet name.
func (r Range) A1(worksheet string) string {
	ref := r.TopLeft.A1() + ":" + r.BottomRight.A1()
	if worksheet == "" {
		return ref
	}
	return QuoteSheet(worksheet) + "!" + ref
}

// Accessor is the batched cell interface the engine consumes.
// Implementations must return a dense rectangle from GetRange, padding missing cells with null.
type Accessor interface {
	// GetRange reads every cell of the rectangle in one round trip.
	GetRange(ctx context.Context, topLeft, bottomRight Position) ([][]cell.Value, error)
	// SetRange writes all given cells in one round trip.
	SetRange(ctx context.Context, cells []Cell) error
	// GetColumnExtent returns the contiguous run of non-empty cells in col starting at fromRow.
	GetColumnExtent(ctx context.Context, col, fromRow int) ([]cell.Value, error)
	// CreateWorksheet adds a worksheet with the given dimensions.
	CreateWorksheet(ctx context.Context, name string, rows, cols int) error
	// ListWorksheets returns worksheet names in display order.
	ListWorksheets(ctx context.Context) ([]string, error)
}

// AllEmpty reports whether every cell of a GetRange result is empty.
// It returns the first non-empty position relative to origin when one exists.
func AllEmpty(values [][]cell.Value, origin Position) (Position, bool) {
	for i, row := range values {
		for j, v := range row {
			if !v.IsEmpty() {
				return Position{Row: origin.Row + i, Col: origin.Col + j}, false
			}
		}
	}
	return Position{}, true
}

// Workbook hands out accessors bound to individual worksheets.
type Workbook interface {
	// Worksheet returns an accessor for the named worksheet. An empty name selects the first one.
	Worksheet(name string) Accessor
	// ListWorksheets returns worksheet names in display order.
	ListWorksheets(ctx context.Context) ([]string, error)
	// CreateWorksheet adds a worksheet with the given dimensions.
	CreateWorksheet(ctx context.Context, name string, rows, cols int) error
}
