package reconcile

import (
	"context"
	"fmt"
	"strings"

	"gridsync/core/cell"
	"gridsync/core/grid"
	"gridsync/core/lookup"
	"gridsync/core/syncerr"
	"gridsync/core/table"

	"go.uber.org/zap"
)

// Reader decodes the managed table region of a worksheet.
type Reader struct {
	accessor grid.Accessor
	opts     Options
	log      *zap.Logger
}

// NewReader creates a Reader over accessor.
func NewReader(accessor grid.Accessor, opts Options, log *zap.Logger) *Reader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{accessor: accessor, opts: opts.withDefaults(), log: log}
}

// Read fetches the header row, the index column extent and the body rectangle, one batched
// round trip each, and decodes them into a table. Duplicate row keys are kept.
func (r *Reader) Read(ctx context.Context, ro ReadOptions) (*Observed, error) {
	header := r.opts.Header
	indent := r.opts.ColIndent

	headerRow, err := r.accessor.GetRange(ctx,
		grid.Position{Row: header, Col: indent + 1},
		grid.Position{Row: header, Col: indent + r.opts.MaxColumns})
	if err != nil {
		return nil, syncerr.Remote("read.header", err)
	}
	names := headerNames(headerRow)

	columns, err := lookup.BuildColumns(names, indent)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	indexName, err := r.indexColumn(names, ro.IndexColumn)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		empty, _ := table.New("")
		return &Observed{Table: empty, Layout: Layout{Header: header, Columns: columns}}, nil
	}

	dataColumns, err := selectColumns(names, indexName, ro.Columns)
	if err != nil {
		return nil, err
	}

	indexCol, _ := columns.Col(indexName)
	extent, err := r.accessor.GetColumnExtent(ctx, indexCol, header+1)
	if err != nil {
		return nil, syncerr.Remote("read.index", err)
	}

	out, err := table.New(indexName, dataColumns...)
	if err != nil {
		return nil, err
	}
	layout := Layout{Header: header, IndexName: indexName, Columns: columns}

	n := len(extent)
	if n == 0 {
		r.log.Debug("Read empty table", zap.String("index", indexName), zap.Int("columns", len(dataColumns)))
		return &Observed{Table: out, Layout: layout}, nil
	}

	body, err := r.accessor.GetRange(ctx,
		grid.Position{Row: header + 1, Col: columns.First()},
		grid.Position{Row: header + n, Col: columns.Last()})
	if err != nil {
		return nil, syncerr.Remote("read.body", err)
	}

	na := r.opts.missing()
	keyOffset := indexCol - columns.First()
	offsets := make([]int, len(dataColumns))
	for i, c := range dataColumns {
		col, _ := columns.Col(c)
		offsets[i] = col - columns.First()
	}
	for i := 0; i < n; i++ {
		row := rowAt(body, i)
		key := cell.FromCell(valueAt(row, keyOffset), r.opts.Types.Of(indexName), nil).Normalize()
		values := make([]cell.Value, len(dataColumns))
		for j, c := range dataColumns {
			values[j] = cell.FromCell(valueAt(row, offsets[j]), r.opts.Types.Of(c), na)
		}
		if err := out.Append(key, values...); err != nil {
			return nil, err
		}
	}

	r.log.Debug("Read table",
		zap.String("index", indexName),
		zap.Int("rows", n),
		zap.Int("columns", len(dataColumns)))
	return &Observed{Table: out, Layout: layout}, nil
}

// indexColumn resolves the index column from the header names.
func (r *Reader) indexColumn(names []string, override string) (string, error) {
	configured := override
	if configured == "" {
		configured = r.opts.IndexColumn
	}
	if configured != "" {
		for _, n := range names {
			if n == configured {
				return n, nil
			}
		}
		return "", syncerr.Schema("index column %q not present in header row %d", configured, r.opts.Header).WithOp("read.header")
	}
	for _, n := range names {
		if strings.EqualFold(n, table.DefaultIndexName) {
			return n, nil
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	return names[0], nil
}

// headerNames returns the contiguous run of non-empty header cells.
func headerNames(rows [][]cell.Value) []string {
	var names []string
	if len(rows) == 0 {
		return names
	}
	for _, v := range rows[0] {
		if v.IsEmpty() {
			break
		}
		names = append(names, v.String())
	}
	return names
}

// selectColumns returns the data columns in header order, restricted to filter when given.
func selectColumns(names []string, indexName string, filter []string) ([]string, error) {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	wanted := make(map[string]bool, len(filter))
	for _, f := range filter {
		if !present[f] || f == indexName {
			return nil, syncerr.Schema("column %q not present in header", f).WithOp("read")
		}
		wanted[f] = true
	}
	var out []string
	for _, n := range names {
		if n == indexName {
			continue
		}
		if len(filter) == 0 || wanted[n] {
			out = append(out, n)
		}
	}
	return out, nil
}

func rowAt(values [][]cell.Value, i int) []cell.Value {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func valueAt(row []cell.Value, j int) cell.Value {
	if j < len(row) {
		return row[j]
	}
	return cell.Null()
}
