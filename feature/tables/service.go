package tables

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gridsync/core/grid"
	"gridsync/core/logger"
	"gridsync/core/reconcile"
	"gridsync/core/sheets"
	"gridsync/core/table"
	"gridsync/feature/archive"
	"gridsync/feature/dbsource"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	ModeWrite   = "write"
	ModeUpdate  = "update"
	ModeAugment = "augment"
	ModeRestore = "restore"
)

// maxConcurrentReads bounds ReadMany fan-out.
const maxConcurrentReads = 4

var (
	// ErrArchiveDisabled is returned by snapshot operations when no archive is configured.
	ErrArchiveDisabled = errors.New("snapshot archive is not configured")
	// ErrSourceDisabled is returned by Push when no database is connected.
	ErrSourceDisabled = errors.New("database source is not configured")
	// ErrJournalDisabled is returned by Runs when no database is connected.
	ErrJournalDisabled = errors.New("sync journal is not configured")
)

// Config wires the optional collaborators of a Service.
type Config struct {
	// Worksheet is used when a request names none. Empty selects the first worksheet.
	Worksheet string
	// Layout describes where the table sits in every worksheet.
	Layout reconcile.Options
	// CacheTTL memoizes reads. Zero only coalesces concurrent reads.
	CacheTTL time.Duration
	// Archive stores a snapshot before every overwriting update. Optional.
	Archive *archive.Archive
	// Source loads desired tables from SQL. Optional.
	Source *dbsource.Source
	// Journal records every run. Optional.
	Journal *dbsource.Journal
}

// UpdateRequest controls an update.
type UpdateRequest struct {
	// Columns limits the update to these columns. Empty updates all desired columns.
	Columns []string
	// Augment only fills empty cells and appends rows.
	Augment bool
	// DryRun plans without writing.
	DryRun bool
}

// UpdateResult reports what an update did or would do.
type UpdateResult struct {
	Worksheet string                `json:"worksheet"`
	Mode      string                `json:"mode"`
	DryRun    bool                  `json:"dry_run"`
	Summary   reconcile.PlanSummary `json:"summary"`
	Actions   []reconcile.Action    `json:"actions,omitempty"`
	Executed  int                   `json:"executed"`
	Snapshot  string                `json:"snapshot,omitempty"`
	// Previous is the table found in the worksheet before the update.
	Previous *table.Table `json:"-"`
}

// Service runs table operations against the worksheets of one workbook.
// Mutations of the same worksheet are serialized; different worksheets proceed in parallel.
type Service struct {
	workbook grid.Workbook
	cfg      Config
	cache    *reconcile.ReadCache
	logger   *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a tables service.
func NewService(workbook grid.Workbook, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		workbook: workbook,
		cfg:      cfg,
		cache:    reconcile.NewReadCache(cfg.CacheTTL),
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Worksheet returns the worksheet a request for name refers to.
func (s *Service) Worksheet(name string) string {
	if name == "" {
		return s.cfg.Worksheet
	}
	return name
}

// ListWorksheets returns the worksheet names of the workbook.
func (s *Service) ListWorksheets(ctx context.Context) ([]string, error) {
	return s.workbook.ListWorksheets(ctx)
}

// CreateWorksheet adds a worksheet.
func (s *Service) CreateWorksheet(ctx context.Context, name string, rows, cols int) error {
	if name == "" {
		return fmt.Errorf("worksheet name is required")
	}
	return s.workbook.CreateWorksheet(ctx, name, rows, cols)
}

// Read returns the table stored in worksheet. Concurrent identical reads share one round trip.
func (s *Service) Read(ctx context.Context, worksheet string, ro reconcile.ReadOptions) (*table.Table, error) {
	worksheet = s.Worksheet(worksheet)
	return s.cache.GetOrRead(ctx, reconcile.CacheKey(worksheet, ro), func(ctx context.Context) (*table.Table, error) {
		return s.synchronizer(worksheet).Read(ctx, ro)
	})
}

// ReadMany reads several worksheets concurrently. It fails as a whole when any read fails.
func (s *Service) ReadMany(ctx context.Context, worksheets []string, ro reconcile.ReadOptions) (map[string]*table.Table, error) {
	results := make([]*table.Table, len(worksheets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, name := range worksheets {
		i, name := i, name // per-iteration copies (go directive is 1.21)
		g.Go(func() error {
			t, err := s.Read(ctx, name, ro)
			if err != nil {
				return fmt.Errorf("worksheet %s: %w", name, err)
			}
			results[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*table.Table, len(worksheets))
	for i, name := range worksheets {
		out[name] = results[i]
	}
	return out, nil
}

// Write stores t in an empty region of worksheet, creating the worksheet when it is missing.
func (s *Service) Write(ctx context.Context, worksheet string, t *table.Table, comment string) (err error) {
	worksheet = s.Worksheet(worksheet)
	unlock := s.lock(worksheet)
	defer unlock()

	run := s.startRun(worksheet, ModeWrite, false)
	defer func() { s.finishRun(ctx, run, err) }()
	run.Adds = t.Len()

	if _, err = sheets.EnsureWorksheet(ctx, s.workbook, worksheet); err != nil {
		return err
	}
	defer s.cache.Invalidate(worksheet)
	return s.synchronizer(worksheet).Write(ctx, t, comment)
}

// Update reconciles worksheet with desired. A worksheet without a header receives desired as a
// fresh write. Overwriting updates archive the previous table first when an archive is configured.
func (s *Service) Update(ctx context.Context, worksheet string, desired *table.Table, req UpdateRequest) (*UpdateResult, error) {
	mode := ModeUpdate
	if req.Augment {
		mode = ModeAugment
	}
	return s.update(ctx, s.Worksheet(worksheet), desired, req, mode)
}

func (s *Service) update(ctx context.Context, worksheet string, desired *table.Table, req UpdateRequest, mode string) (result *UpdateResult, err error) {
	unlock := s.lock(worksheet)
	defer unlock()

	run := s.startRun(worksheet, mode, req.DryRun)
	defer func() { s.finishRun(ctx, run, err) }()

	if !req.DryRun {
		if _, err = sheets.EnsureWorksheet(ctx, s.workbook, worksheet); err != nil {
			return nil, err
		}
	}
	syncer := s.synchronizer(worksheet)

	plan, observed, err := syncer.PlanUpdate(ctx, desired, reconcile.UpdateOptions{
		Columns:   req.Columns,
		Overwrite: !req.Augment,
	})
	if observed != nil && observed.Layout.IndexName == "" {
		return s.initialWrite(ctx, syncer, worksheet, desired, req, run)
	}
	if err != nil {
		return nil, err
	}

	result = &UpdateResult{
		Worksheet: worksheet,
		Mode:      mode,
		DryRun:    req.DryRun,
		Summary:   plan.Summary,
		Previous:  observed.Table,
	}
	run.CellUpdates = plan.Summary.CellUpdates
	run.Swaps = plan.Summary.Swaps
	run.Deletes = plan.Summary.Deletes
	run.Adds = plan.Summary.Adds

	s.logger.Info("Planned update",
		zap.String("worksheet", worksheet),
		zap.String("mode", mode),
		zap.Bool("dry_run", req.DryRun),
		zap.Int("cell_updates", plan.Summary.CellUpdates),
		zap.Int("swaps", plan.Summary.Swaps),
		zap.Int("deletes", plan.Summary.Deletes),
		zap.Int("adds", plan.Summary.Adds))

	if req.DryRun {
		result.Actions = plan.Actions
		return result, nil
	}
	if plan.Empty() {
		return result, nil
	}

	if plan.Overwrite && s.cfg.Archive != nil {
		snap, err := s.cfg.Archive.Save(ctx, worksheet, observed.Table)
		if err != nil {
			return nil, fmt.Errorf("archive before update: %w", err)
		}
		result.Snapshot = snap.Key
		run.Snapshot = snap.Key
	}

	defer s.cache.Invalidate(worksheet)
	result.Executed, err = syncer.Apply(ctx, observed, plan)
	if err != nil {
		return result, err
	}
	s.logger.Info("Applied update", zap.String("worksheet", worksheet), zap.Int("executed", result.Executed))
	return result, nil
}

func (s *Service) initialWrite(ctx context.Context, syncer *reconcile.Synchronizer, worksheet string, desired *table.Table, req UpdateRequest, run *dbsource.SyncRun) (*UpdateResult, error) {
	t := desired
	if len(req.Columns) > 0 {
		var err error
		if t, err = desired.Select(req.Columns...); err != nil {
			return nil, err
		}
	}
	result := &UpdateResult{
		Worksheet: worksheet,
		Mode:      ModeWrite,
		DryRun:    req.DryRun,
		Summary:   reconcile.PlanSummary{DesiredRows: t.Len(), Adds: t.Len()},
	}
	run.Mode = ModeWrite
	run.Adds = t.Len()
	if req.DryRun {
		return result, nil
	}

	defer s.cache.Invalidate(worksheet)
	if err := syncer.Write(ctx, t, ""); err != nil {
		return nil, err
	}
	result.Executed = 1
	return result, nil
}

// Push loads a SQL table and reconciles worksheet with it.
func (s *Service) Push(ctx context.Context, worksheet string, q dbsource.Query, req UpdateRequest) (*UpdateResult, error) {
	if s.cfg.Source == nil {
		return nil, ErrSourceDisabled
	}
	desired, err := s.cfg.Source.Load(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, worksheet, desired, req)
}

// Snapshots lists the archived snapshots of worksheet, newest first.
func (s *Service) Snapshots(ctx context.Context, worksheet string) ([]archive.Snapshot, error) {
	if s.cfg.Archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.cfg.Archive.List(ctx, s.Worksheet(worksheet))
}

// Restore reconciles worksheet with an archived snapshot. An empty key restores the newest one.
func (s *Service) Restore(ctx context.Context, worksheet, key string, dryRun bool) (*UpdateResult, error) {
	if s.cfg.Archive == nil {
		return nil, ErrArchiveDisabled
	}
	worksheet = s.Worksheet(worksheet)

	var (
		snapshot *table.Table
		err      error
	)
	if key == "" {
		snapshot, _, err = s.cfg.Archive.Latest(ctx, worksheet)
	} else {
		snapshot, err = s.cfg.Archive.Load(ctx, key)
	}
	if err != nil {
		return nil, err
	}
	return s.update(ctx, worksheet, snapshot, UpdateRequest{DryRun: dryRun}, ModeRestore)
}

// Runs returns the newest journal entries of worksheet.
func (s *Service) Runs(ctx context.Context, worksheet string, limit int) ([]dbsource.SyncRun, error) {
	if s.cfg.Journal == nil {
		return nil, ErrJournalDisabled
	}
	return s.cfg.Journal.Recent(ctx, s.Worksheet(worksheet), limit)
}

func (s *Service) synchronizer(worksheet string) *reconcile.Synchronizer {
	return reconcile.NewSynchronizer(s.workbook.Worksheet(worksheet), s.cfg.Layout, logger.WithWorksheet(s.logger, worksheet))
}

// lock serializes mutations of one worksheet.
func (s *Service) lock(worksheet string) func() {
	s.mu.Lock()
	l, ok := s.locks[worksheet]
	if !ok {
		l = &sync.Mutex{}
		s.locks[worksheet] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Service) startRun(worksheet, mode string, dryRun bool) *dbsource.SyncRun {
	return &dbsource.SyncRun{
		Worksheet: worksheet,
		Mode:      mode,
		DryRun:    dryRun,
		StartedAt: time.Now(),
	}
}

func (s *Service) finishRun(ctx context.Context, run *dbsource.SyncRun, err error) {
	run.Finish(err)
	if s.cfg.Journal == nil {
		return
	}
	run.RayID = rayIDFrom(ctx)
	if jErr := s.cfg.Journal.Record(context.WithoutCancel(ctx), run); jErr != nil {
		s.logger.Warn("Failed to record sync run", zap.String("worksheet", run.Worksheet), zap.Error(jErr))
	}
}

type rayIDKey struct{}

// WithRayID attaches a request ray id to ctx so journal entries can be correlated with logs.
func WithRayID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, rayIDKey{}, id)
}

func rayIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(rayIDKey{}).(string)
	return id
}
