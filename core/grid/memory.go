package grid

import (
	"context"
	"fmt"
	"sync"

	"gridsync/core/cell"
)

// Memory is an in-process sparse workbook. As an Accessor it operates on the first worksheet;
// Worksheet returns accessors bound to other worksheets. It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	sheets map[string]map[Position]cell.Value
	order  []string
	calls  map[string]int
}

// NewMemory returns an empty workbook with a single worksheet named "Sheet1".
func NewMemory() *Memory {
	return &Memory{
		sheets: map[string]map[Position]cell.Value{"Sheet1": {}},
		order:  []string{"Sheet1"},
		calls:  make(map[string]int),
	}
}

// Worksheet implements Workbook.
func (m *Memory) Worksheet(name string) Accessor {
	return &memorySheet{m: m, name: name}
}

// Set writes a single cell of the first worksheet directly, bypassing call accounting.
func (m *Memory) Set(row, col int, v cell.Value) {
	m.SetRow(row, col, v)
}

// SetRow seeds consecutive cells of a row of the first worksheet starting at col.
func (m *Memory) SetRow(row, col int, values ...cell.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sheet := m.sheets[m.resolve("")]
	for i, v := range values {
		put(sheet, Position{Row: row, Col: col + i}, v)
	}
}

// Get reads a single cell of the first worksheet directly, bypassing call accounting.
func (m *Memory) Get(row, col int) cell.Value {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sheets[m.resolve("")][Position{Row: row, Col: col}]
}

// Calls returns how many times the named accessor method was invoked.
func (m *Memory) Calls(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[method]
}

// ResetCalls clears the call counters.
func (m *Memory) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make(map[string]int)
}

// GetRange implements Accessor on the first worksheet.
func (m *Memory) GetRange(ctx context.Context, topLeft, bottomRight Position) ([][]cell.Value, error) {
	return m.getRange(ctx, "", topLeft, bottomRight)
}

// SetRange implements Accessor on the first worksheet.
func (m *Memory) SetRange(ctx context.Context, cells []Cell) error {
	return m.setRange(ctx, "", cells)
}

// GetColumnExtent implements Accessor on the first worksheet.
func (m *Memory) GetColumnExtent(ctx context.Context, col, fromRow int) ([]cell.Value, error) {
	return m.columnExtent(ctx, "", col, fromRow)
}

// CreateWorksheet implements Accessor and Workbook. Dimensions are accepted but not enforced.
func (m *Memory) CreateWorksheet(_ context.Context, name string, _, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["CreateWorksheet"]++
	if name == "" {
		return fmt.Errorf("worksheet name is required")
	}
	if _, ok := m.sheets[name]; ok {
		return fmt.Errorf("worksheet %q already exists", name)
	}
	m.sheets[name] = make(map[Position]cell.Value)
	m.order = append(m.order, name)
	return nil
}

// ListWorksheets implements Accessor and Workbook.
func (m *Memory) ListWorksheets(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["ListWorksheets"]++
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out, nil
}

func (m *Memory) getRange(_ context.Context, name string, topLeft, bottomRight Position) ([][]cell.Value, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["GetRange"]++

	r := Range{TopLeft: topLeft, BottomRight: bottomRight}
	if !topLeft.Valid() || r.Empty() {
		return nil, fmt.Errorf("invalid range %s", r.A1(""))
	}
	sheet, err := m.sheet(name)
	if err != nil {
		return nil, err
	}
	out := make([][]cell.Value, r.Rows())
	for i := range out {
		out[i] = make([]cell.Value, r.Cols())
		for j := range out[i] {
			out[i][j] = sheet[Position{Row: topLeft.Row + i, Col: topLeft.Col + j}]
		}
	}
	return out, nil
}

func (m *Memory) setRange(_ context.Context, name string, cells []Cell) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["SetRange"]++
	sheet, err := m.sheet(name)
	if err != nil {
		return err
	}
	for _, c := range cells {
		if !c.Pos.Valid() {
			return fmt.Errorf("invalid position %+v", c.Pos)
		}
	}
	for _, c := range cells {
		put(sheet, c.Pos, c.Value)
	}
	return nil
}

func (m *Memory) columnExtent(_ context.Context, name string, col, fromRow int) ([]cell.Value, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["GetColumnExtent"]++
	sheet, err := m.sheet(name)
	if err != nil {
		return nil, err
	}
	var out []cell.Value
	for row := fromRow; ; row++ {
		v, ok := sheet[Position{Row: row, Col: col}]
		if !ok || v.IsEmpty() {
			return out, nil
		}
		out = append(out, v)
	}
}

// resolve maps "" to the first worksheet. Callers hold the lock.
func (m *Memory) resolve(name string) string {
	if name == "" {
		return m.order[0]
	}
	return name
}

func (m *Memory) sheet(name string) (map[Position]cell.Value, error) {
	sheet, ok := m.sheets[m.resolve(name)]
	if !ok {
		return nil, fmt.Errorf("worksheet %q not found", name)
	}
	return sheet, nil
}

func put(sheet map[Position]cell.Value, p Position, v cell.Value) {
	if v.IsEmpty() {
		delete(sheet, p)
		return
	}
	sheet[p] = v
}

// memorySheet is an Accessor bound to one worksheet of a Memory workbook.
type memorySheet struct {
	m    *Memory
	name string
}

func (s *memorySheet) GetRange(ctx context.Context, topLeft, bottomRight Position) ([][]cell.Value, error) {
	return s.m.getRange(ctx, s.name, topLeft, bottomRight)
}

func (s *memorySheet) SetRange(ctx context.Context, cells []Cell) error {
	return s.m.setRange(ctx, s.name, cells)
}

func (s *memorySheet) GetColumnExtent(ctx context.Context, col, fromRow int) ([]cell.Value, error) {
	return s.m.columnExtent(ctx, s.name, col, fromRow)
}

func (s *memorySheet) CreateWorksheet(ctx context.Context, name string, rows, cols int) error {
	return s.m.CreateWorksheet(ctx, name, rows, cols)
}

func (s *memorySheet) ListWorksheets(ctx context.Context) ([]string, error) {
	return s.m.ListWorksheets(ctx)
}
