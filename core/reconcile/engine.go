package reconcile

import (
	"context"
	"fmt"

	"gridsync/core/cell"
	"gridsync/core/grid"
	"gridsync/core/lookup"
	"gridsync/core/syncerr"
	"gridsync/core/table"

	"go.uber.org/zap"
)

// Synchronizer reads, writes and reconciles one table region of a worksheet.
// It holds no lookup state between calls; every cycle starts from a fresh read.
type Synchronizer struct {
	accessor grid.Accessor
	opts     Options
	reader   *Reader
	writer   *Writer
	log      *zap.Logger
}

// NewSynchronizer creates a Synchronizer over accessor.
func NewSynchronizer(accessor grid.Accessor, opts Options, log *zap.Logger) *Synchronizer {
	if log == nil {
		log = zap.NewNop()
	}
	opts = opts.withDefaults()
	return &Synchronizer{
		accessor: accessor,
		opts:     opts,
		reader:   NewReader(accessor, opts, log),
		writer:   NewWriter(accessor, opts.Types, log),
		log:      log,
	}
}

// Options returns the effective options.
func (s *Synchronizer) Options() Options { return s.opts }

// Read returns the table currently stored in the worksheet.
func (s *Synchronizer) Read(ctx context.Context, ro ReadOptions) (*table.Table, error) {
	observed, err := s.reader.Read(ctx, ro)
	if err != nil {
		return nil, err
	}
	return observed.Table, nil
}

// Write stores t as header and body in an empty region of the worksheet. Every target cell must
// be empty; nothing is cleared first. A non-empty comment is written in row 1 and requires the
// header to start below it.
func (s *Synchronizer) Write(ctx context.Context, t *table.Table, comment string) error {
	if comment != "" && s.opts.Header <= 1 {
		return syncerr.Schema("comment would be overwritten by the header in row %d", s.opts.Header).WithOp("write")
	}
	if err := t.CheckUnique(); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := checkKeys(t, s.opts.Types.Of(t.HeaderIndexName())); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	names := append([]string{t.HeaderIndexName()}, t.Columns()...)
	columns, err := lookup.BuildColumns(names, s.opts.ColIndent)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}

	// With a comment the read starts at row 1; the rows between comment and header are not targets.
	header := s.opts.Header
	top := header
	if comment != "" {
		top = 1
	}
	existing, err := s.accessor.GetRange(ctx,
		grid.Position{Row: top, Col: columns.First()},
		grid.Position{Row: header + t.Len(), Col: columns.Last()})
	if err != nil {
		return syncerr.Remote("write", err)
	}
	if comment != "" && !valueAt(rowAt(existing, 0), 0).IsEmpty() {
		pos := grid.Position{Row: 1, Col: columns.First()}
		return syncerr.WriteConflict("comment cell %s is not empty", pos.A1()).WithOp("write")
	}
	origin := grid.Position{Row: header, Col: columns.First()}
	if pos, empty := grid.AllEmpty(existing[min(header-top, len(existing)):], origin); !empty {
		return syncerr.WriteConflict("cell %s is not empty", pos.A1()).WithOp("write")
	}

	cells := make([]grid.Cell, 0, len(names)*(t.Len()+1)+1)
	if comment != "" {
		cells = append(cells, grid.Cell{Pos: grid.Position{Row: 1, Col: columns.First()}, Value: cell.String(comment)})
	}
	for i, name := range names {
		cells = append(cells, grid.Cell{Pos: grid.Position{Row: header, Col: columns.First() + i}, Value: cell.String(name)})
	}

	layout := Layout{Header: header, IndexName: names[0], Columns: columns}
	for i, row := range t.Rows() {
		cells = append(cells, s.writer.rowCells(layout, header+1+i, row, false)...)
	}

	if err := s.accessor.SetRange(ctx, cells); err != nil {
		return syncerr.Remote("write", err)
	}
	s.log.Info("Wrote table",
		zap.String("index", names[0]),
		zap.Int("rows", t.Len()),
		zap.Int("columns", len(names)-1))
	return nil
}

// PlanUpdate reads the worksheet and plans the update without applying it.
func (s *Synchronizer) PlanUpdate(ctx context.Context, desired *table.Table, uo UpdateOptions) (*MutationPlan, *Observed, error) {
	observed, err := s.reader.Read(ctx, ReadOptions{IndexColumn: desired.IndexName()})
	if err != nil {
		return nil, nil, err
	}
	if observed.Layout.IndexName == "" {
		return nil, observed, syncerr.Schema("no header found in row %d", s.opts.Header).WithOp("update")
	}
	plan, err := Plan(desired, observed.Table, PlanOptions{
		Overwrite: uo.Overwrite,
		Columns:   uo.Columns,
		Types:     s.opts.Types,
		Missing:   s.opts.missing(),
	})
	if err != nil {
		return nil, observed, err
	}
	return plan, observed, nil
}

// Apply executes a plan produced by PlanUpdate against the region it was planned for.
func (s *Synchronizer) Apply(ctx context.Context, observed *Observed, plan *MutationPlan) (int, error) {
	rows, err := lookup.BuildRows(observed.Table.Keys(), observed.Layout.Header)
	if err != nil {
		return 0, fmt.Errorf("apply: %w", err)
	}
	_, executed, err := s.writer.Apply(ctx, observed.Layout.WithRows(rows), plan)
	return executed, err
}

// Update reconciles the worksheet with desired and returns the table found before updating.
func (s *Synchronizer) Update(ctx context.Context, desired *table.Table, uo UpdateOptions) (*table.Table, error) {
	plan, observed, err := s.PlanUpdate(ctx, desired, uo)
	if err != nil {
		return nil, err
	}

	s.log.Info("Planned update",
		zap.Bool("overwrite", plan.Overwrite),
		zap.Int("cell_updates", plan.Summary.CellUpdates),
		zap.Int("swaps", plan.Summary.Swaps),
		zap.Int("deletes", plan.Summary.Deletes),
		zap.Int("adds", plan.Summary.Adds))

	if plan.Empty() {
		plan.consume()
		return observed.Table, nil
	}

	executed, err := s.Apply(ctx, observed, plan)
	if err != nil {
		return observed.Table, err
	}
	s.log.Info("Applied update", zap.Int("executed", executed))
	return observed.Table, nil
}

// Augment fills cells that are empty in the worksheet and appends missing rows. Existing values
// are never changed and no row is deleted.
func (s *Synchronizer) Augment(ctx context.Context, desired *table.Table, columns ...string) (*table.Table, error) {
	return s.Update(ctx, desired, UpdateOptions{Columns: columns, Overwrite: false})
}
