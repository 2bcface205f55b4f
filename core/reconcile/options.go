package reconcile

import "gridsync/core/cell"

const (
	// DefaultHeader is the grid row holding column names when none is configured.
	DefaultHeader = 1
	// DefaultMaxColumns bounds the width of the header read.
	DefaultMaxColumns = 200
)

// DefaultNAValues are the cell texts read as missing when none are configured.
var DefaultNAValues = []string{"nan"}

// Options locates the managed table inside a worksheet and controls cell decoding.
type Options struct {
	// Header is the grid row holding column names. Rows above it are free for a comment.
	Header int

	// ColIndent is the number of unmanaged columns left of the table.
	ColIndent int

	// IndexColumn names the index column. Empty selects the first column named "index"
	// (case-insensitive), or else the first column.
	IndexColumn string

	// NAValues are cell texts read as missing. Nil selects DefaultNAValues.
	NAValues []string

	// Types declares per-column types. Undeclared columns are parsed opportunistically.
	Types cell.Types

	// MaxColumns bounds the width of the header read.
	MaxColumns int
}

func (o Options) withDefaults() Options {
	if o.Header < 1 {
		o.Header = DefaultHeader
	}
	if o.ColIndent < 0 {
		o.ColIndent = 0
	}
	if o.NAValues == nil {
		o.NAValues = DefaultNAValues
	}
	if o.MaxColumns <= 0 {
		o.MaxColumns = DefaultMaxColumns
	}
	return o
}

func (o Options) missing() cell.NASet {
	return cell.NewNASet(o.NAValues...)
}
