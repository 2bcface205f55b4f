package sheets

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gridsync/core/cell"
	"gridsync/core/grid"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/sheets/v4"
)

const (
	// DefaultRows and DefaultCols size worksheets created on demand.
	DefaultRows = 100
	DefaultCols = 10
)

const (
	renderFormatted   = "FORMATTED_VALUE"
	renderUnformatted = "UNFORMATTED_VALUE"
	inputUserEntered  = "USER_ENTERED"
	inputRaw          = "RAW"
)

// Workbook is a spreadsheet document. It implements grid.Workbook.
type Workbook struct {
	api           API
	spreadsheetID string
	raw           bool
	timeout       time.Duration
	limiter       *rate.Limiter
	policy        retryPolicy
	log           *zap.Logger
}

// Open connects to the spreadsheet named in cfg.
func Open(ctx context.Context, cfg Config, log *zap.Logger) (*Workbook, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet id is required")
	}
	api, err := NewServiceAPI(ctx, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets: create client: %w", err)
	}
	return New(api, cfg, log), nil
}

// New creates a Workbook over an existing API client.
func New(api API, cfg Config, log *zap.Logger) *Workbook {
	if log == nil {
		log = zap.NewNop()
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60), max(1, cfg.RequestsPerMinute/10))
	}
	maxBackoff := time.Duration(cfg.MaxBackoffSeconds) * time.Second
	if maxBackoff <= 0 {
		maxBackoff = time.Minute
	}
	return &Workbook{
		api:           api,
		spreadsheetID: cfg.SpreadsheetID,
		raw:           cfg.RawValues,
		timeout:       cfg.Timeout(),
		limiter:       limiter,
		policy: retryPolicy{
			maxRetries: max(0, cfg.MaxRetries),
			base:       time.Second,
			maxBackoff: maxBackoff,
		},
		log: log,
	}
}

// Worksheet returns an accessor bound to name. An empty name selects the first worksheet.
func (w *Workbook) Worksheet(name string) grid.Accessor {
	return &Accessor{wb: w, name: name}
}

// ListWorksheets returns worksheet titles in display order.
func (w *Workbook) ListWorksheets(ctx context.Context) ([]string, error) {
	var titles []string
	err := w.do(ctx, "list_worksheets", func(ctx context.Context) error {
		var err error
		titles, err = w.api.SheetTitles(ctx, w.spreadsheetID)
		return err
	})
	return titles, err
}

// CreateWorksheet adds a worksheet with the given dimensions.
func (w *Workbook) CreateWorksheet(ctx context.Context, name string, rows, cols int) error {
	if name == "" {
		return fmt.Errorf("worksheet name is required")
	}
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	err := w.do(ctx, "create_worksheet", func(ctx context.Context) error {
		return w.api.AddSheet(ctx, w.spreadsheetID, name, int64(rows), int64(cols))
	})
	if err == nil {
		w.log.Info("Created worksheet", zap.String("worksheet", name), zap.Int("rows", rows), zap.Int("cols", cols))
	}
	return err
}

// EnsureWorksheet creates the named worksheet with default dimensions when it does not exist.
// An empty name always refers to the first worksheet and is left alone.
func EnsureWorksheet(ctx context.Context, wb grid.Workbook, name string) (created bool, err error) {
	if name == "" {
		return false, nil
	}
	names, err := wb.ListWorksheets(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return false, nil
		}
	}
	if err := wb.CreateWorksheet(ctx, name, DefaultRows, DefaultCols); err != nil {
		return false, err
	}
	return true, nil
}

func (w *Workbook) do(ctx context.Context, op string, fn func(context.Context) error) error {
	return call(ctx, w.limiter, w.policy, w.log, op, func(ctx context.Context) error {
		if w.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, w.timeout)
			defer cancel()
		}
		return fn(ctx)
	})
}

func (w *Workbook) renderOption() string {
	if w.raw {
		return renderUnformatted
	}
	return renderFormatted
}

func (w *Workbook) inputOption() string {
	if w.raw {
		return inputRaw
	}
	return inputUserEntered
}

// Accessor is a grid.Accessor bound to one worksheet.
type Accessor struct {
	wb   *Workbook
	name string
}

// GetRange implements grid.Accessor.
func (a *Accessor) GetRange(ctx context.Context, topLeft, bottomRight grid.Position) ([][]cell.Value, error) {
	r := grid.Range{TopLeft: topLeft, BottomRight: bottomRight}
	if !topLeft.Valid() || r.Empty() {
		return nil, fmt.Errorf("invalid range %s", r.A1(""))
	}
	var values [][]interface{}
	err := a.wb.do(ctx, "get_range", func(ctx context.Context) error {
		var err error
		values, err = a.wb.api.GetValues(ctx, a.wb.spreadsheetID, r.A1(a.name), a.wb.renderOption())
		return err
	})
	if err != nil {
		return nil, err
	}
	return dense(values, r.Rows(), r.Cols()), nil
}

// GetColumnExtent implements grid.Accessor.
func (a *Accessor) GetColumnExtent(ctx context.Context, col, fromRow int) ([]cell.Value, error) {
	letters := grid.ColumnLetters(col)
	rng := fmt.Sprintf("%s%d:%s", letters, fromRow, letters)
	if a.name != "" {
		rng = grid.QuoteSheet(a.name) + "!" + rng
	}
	var values [][]interface{}
	err := a.wb.do(ctx, "get_column_extent", func(ctx context.Context) error {
		var err error
		values, err = a.wb.api.GetValues(ctx, a.wb.spreadsheetID, rng, a.wb.renderOption())
		return err
	})
	if err != nil {
		return nil, err
	}

	var out []cell.Value
	for _, row := range values {
		if len(row) == 0 {
			break
		}
		v := fromAPI(row[0])
		if v.IsEmpty() {
			break
		}
		out = append(out, v)
	}
	return out, nil
}

// SetRange implements grid.Accessor. Cells are merged into horizontal runs and sent in one
// batch update.
func (a *Accessor) SetRange(ctx context.Context, cells []grid.Cell) error {
	if len(cells) == 0 {
		return nil
	}
	data, err := runs(a.name, cells)
	if err != nil {
		return err
	}
	return a.wb.do(ctx, "set_range", func(ctx context.Context) error {
		return a.wb.api.BatchUpdateValues(ctx, a.wb.spreadsheetID, a.wb.inputOption(), data)
	})
}

// CreateWorksheet implements grid.Accessor.
func (a *Accessor) CreateWorksheet(ctx context.Context, name string, rows, cols int) error {
	return a.wb.CreateWorksheet(ctx, name, rows, cols)
}

// ListWorksheets implements grid.Accessor.
func (a *Accessor) ListWorksheets(ctx context.Context) ([]string, error) {
	return a.wb.ListWorksheets(ctx)
}

// dense pads an API response to a rows x cols rectangle. The API trims trailing empty rows and cells.
func dense(values [][]interface{}, rows, cols int) [][]cell.Value {
	out := make([][]cell.Value, rows)
	for i := range out {
		out[i] = make([]cell.Value, cols)
		if i >= len(values) {
			continue
		}
		for j := 0; j < cols && j < len(values[i]); j++ {
			out[i][j] = fromAPI(values[i][j])
		}
	}
	return out
}

// runs groups cells into one value range per horizontal run of adjacent cells.
func runs(worksheet string, cells []grid.Cell) ([]*sheets.ValueRange, error) {
	sorted := make([]grid.Cell, len(cells))
	copy(sorted, cells)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Pos.Row != sorted[j].Pos.Row {
			return sorted[i].Pos.Row < sorted[j].Pos.Row
		}
		return sorted[i].Pos.Col < sorted[j].Pos.Col
	})

	var (
		out   []*sheets.ValueRange
		start grid.Position
		row   []interface{}
	)
	flush := func() {
		if len(row) == 0 {
			return
		}
		end := grid.Position{Row: start.Row, Col: start.Col + len(row) - 1}
		out = append(out, &sheets.ValueRange{
			Range:          grid.Range{TopLeft: start, BottomRight: end}.A1(worksheet),
			MajorDimension: "ROWS",
			Values:         [][]interface{}{row},
		})
		row = nil
	}

	for i, c := range sorted {
		if !c.Pos.Valid() {
			return nil, fmt.Errorf("invalid position %+v", c.Pos)
		}
		if i > 0 && c.Pos == sorted[i-1].Pos {
			// Last write to a position wins.
			row[len(row)-1] = toAPI(c.Value)
			continue
		}
		if len(row) == 0 || c.Pos.Row != start.Row || c.Pos.Col != start.Col+len(row) {
			flush()
			start = c.Pos
		}
		row = append(row, toAPI(c.Value))
	}
	flush()
	return out, nil
}

// fromAPI converts a JSON-decoded cell into a cell value.
func fromAPI(v interface{}) cell.Value {
	return cell.Of(v).Normalize()
}

// toAPI converts a cell value into its JSON form. The empty string clears a cell.
func toAPI(v cell.Value) interface{} {
	if v.IsEmpty() {
		return ""
	}
	return v.Interface()
}
