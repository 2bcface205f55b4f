package grid

import (
	"context"
	"testing"

	"gridsync/core/cell"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnLetters(t *testing.T) {
	tests := []struct {
		col  int
		want string
	}{
		{1, "A"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
		{703, "AAA"},
		{0, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ColumnLetters(tt.col))
		if tt.col > 0 {
			n, err := ColumnNumber(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.col, n)
		}
	}
}

func TestParseA1(t *testing.T) {
	p, err := ParseA1("AB12")
	require.NoError(t, err)
	assert.Equal(t, Position{Row: 12, Col: 28}, p)

	for _, bad := range []string{"", "12", "A", "A0", "1A"} {
		_, err := ParseA1(bad)
		assert.Error(t, err, bad)
	}
}

func TestRange_A1(t *testing.T) {
	r := NewRange(2, 1, 5, 3)
	assert.Equal(t, "A2:C5", r.A1(""))
	assert.Equal(t, "'Bob''s'!A2:C5", r.A1("Bob's"))
	assert.Equal(t, 4, r.Rows())
	assert.Equal(t, 3, r.Cols())
}

func TestMemory_GetSetRange(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	err := m.SetRange(ctx, []Cell{
		{Pos: Position{Row: 1, Col: 1}, Value: cell.String("a")},
		{Pos: Position{Row: 2, Col: 2}, Value: cell.Int(5)},
	})
	require.NoError(t, err)

	got, err := m.GetRange(ctx, Position{Row: 1, Col: 1}, Position{Row: 3, Col: 2})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, cell.String("a"), got[0][0])
	assert.Equal(t, cell.Int(5), got[1][1])
	assert.True(t, got[2][0].IsNull())

	_, ok := AllEmpty(got[2:], Position{Row: 3, Col: 1})
	assert.True(t, ok)
	pos, ok := AllEmpty(got, Position{Row: 1, Col: 1})
	assert.False(t, ok)
	assert.Equal(t, Position{Row: 1, Col: 1}, pos)

	assert.Equal(t, 1, m.Calls("SetRange"))
	assert.Equal(t, 1, m.Calls("GetRange"))

	_, err = m.GetRange(ctx, Position{Row: 0, Col: 1}, Position{Row: 1, Col: 1})
	assert.Error(t, err)
}

func TestMemory_ClearingCell(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Set(1, 1, cell.String("x"))
	require.NoError(t, m.SetRange(ctx, []Cell{{Pos: Position{Row: 1, Col: 1}, Value: cell.Null()}}))
	assert.True(t, m.Get(1, 1).IsNull())
}

func TestMemory_GetColumnExtent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Set(1, 2, cell.String("index"))
	m.Set(2, 2, cell.String("a"))
	m.Set(3, 2, cell.String("b"))
	m.Set(5, 2, cell.String("stray"))

	got, err := m.GetColumnExtent(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []cell.Value{cell.String("a"), cell.String("b")}, got)
}

func TestMemory_Worksheets(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.CreateWorksheet(ctx, "Data", 100, 10))
	assert.Error(t, m.CreateWorksheet(ctx, "Data", 100, 10))

	names, err := m.ListWorksheets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1", "Data"}, names)

	data := m.Worksheet("Data")
	require.NoError(t, data.SetRange(ctx, []Cell{{Pos: Position{Row: 1, Col: 1}, Value: cell.Int(1)}}))
	assert.True(t, m.Get(1, 1).IsNull(), "first worksheet must be untouched")

	got, err := data.GetRange(ctx, Position{Row: 1, Col: 1}, Position{Row: 1, Col: 1})
	require.NoError(t, err)
	assert.Equal(t, cell.Int(1), got[0][0])

	_, err = m.Worksheet("Missing").GetRange(ctx, Position{Row: 1, Col: 1}, Position{Row: 1, Col: 1})
	assert.Error(t, err)
}
