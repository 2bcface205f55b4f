package lookup

import (
	"testing"

	"gridsync/core/cell"
	"gridsync/core/syncerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(names ...string) []cell.Value {
	out := make([]cell.Value, len(names))
	for i, n := range names {
		out[i] = cell.String(n)
	}
	return out
}

func TestBuildRows(t *testing.T) {
	r, err := BuildRows(keys("a", "b", "c"), 2)
	require.NoError(t, err)

	row, ok := r.Row(cell.String("a"))
	require.True(t, ok)
	assert.Equal(t, 3, row)
	row, _ = r.Row(cell.String("c"))
	assert.Equal(t, 5, row)

	assert.Equal(t, 3, r.First())
	assert.Equal(t, 5, r.Last())
	assert.Equal(t, 6, r.Next())

	_, err = BuildRows(keys("a", "a"), 1)
	assert.ErrorIs(t, err, syncerr.ErrSchema)
}

func TestBuildRows_NormalizesNumericKeys(t *testing.T) {
	r, err := BuildRows([]cell.Value{cell.Float(1), cell.Int(2)}, 1)
	require.NoError(t, err)
	row, ok := r.Row(cell.Int(1))
	require.True(t, ok)
	assert.Equal(t, 2, row)

	_, err = BuildRows([]cell.Value{cell.Float(1), cell.Int(1)}, 1)
	assert.Error(t, err)
}

func TestRows_Empty(t *testing.T) {
	r, err := BuildRows(nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Last())
	assert.Equal(t, 2, r.Next())
}

func TestRows_Rename(t *testing.T) {
	r, _ := BuildRows(keys("a", "b", "c"), 1)
	next, err := r.Rename(cell.String("b"), cell.String("z"))
	require.NoError(t, err)

	row, ok := next.Row(cell.String("z"))
	require.True(t, ok)
	assert.Equal(t, 3, row)
	assert.False(t, func() bool { _, ok := next.Row(cell.String("b")); return ok }())

	_, ok = r.Row(cell.String("b"))
	assert.True(t, ok, "receiver is untouched")

	_, err = r.Rename(cell.String("b"), cell.String("c"))
	assert.ErrorIs(t, err, syncerr.ErrSchema)
	_, err = r.Rename(cell.String("x"), cell.String("y"))
	assert.ErrorIs(t, err, syncerr.ErrSchema)
}

func TestRows_Append(t *testing.T) {
	r, _ := BuildRows(keys("a"), 1)
	next, err := r.Append(keys("b", "c")...)
	require.NoError(t, err)
	assert.Equal(t, 4, next.Last())

	_, err = r.Append(keys("a")...)
	assert.ErrorIs(t, err, syncerr.ErrSchema)
}

func TestRows_Compact(t *testing.T) {
	// rows: a=2 b=3 c=4 d=5 e=6 f=7 g=8
	r, _ := BuildRows(keys("a", "b", "c", "d", "e", "f", "g"), 1)

	t.Run("single block", func(t *testing.T) {
		next, c, err := r.Compact(keys("c", "d"))
		require.NoError(t, err)
		assert.Equal(t, 4, c.Start)
		assert.Equal(t, 8, c.End)
		assert.Equal(t, []Shift{{From: 6, To: 4, Count: 3}}, c.Shifts)
		assert.Equal(t, 2, c.Cleared())
		assert.Equal(t, keys("a", "b", "e", "f", "g"), next.Keys())
		row, _ := next.Row(cell.String("g"))
		assert.Equal(t, 6, row)
	})

	t.Run("one shift per gap", func(t *testing.T) {
		next, c, err := r.Compact(keys("f", "b", "c"))
		require.NoError(t, err)
		assert.Equal(t, 3, c.Start)
		assert.Equal(t, []Shift{
			{From: 5, To: 3, Count: 2},
			{From: 8, To: 5, Count: 1},
		}, c.Shifts)
		assert.Equal(t, keys("a", "d", "e", "g"), next.Keys())
	})

	t.Run("tail rows need no shift", func(t *testing.T) {
		_, c, err := r.Compact(keys("g", "f"))
		require.NoError(t, err)
		assert.Empty(t, c.Shifts)
		assert.Equal(t, 7, c.Start)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, _, err := r.Compact(keys("zz"))
		assert.ErrorIs(t, err, syncerr.ErrSchema)
	})

	t.Run("nothing to delete", func(t *testing.T) {
		next, c, err := r.Compact(nil)
		require.NoError(t, err)
		assert.Same(t, r, next)
		assert.Zero(t, c.Cleared())
	})
}

func TestBuildColumns(t *testing.T) {
	c, err := BuildColumns([]string{"index", "x", "y"}, 2)
	require.NoError(t, err)

	col, ok := c.Col("x")
	require.True(t, ok)
	assert.Equal(t, 4, col)
	assert.Equal(t, 3, c.First())
	assert.Equal(t, 5, c.Last())

	name, ok := c.Name(5)
	require.True(t, ok)
	assert.Equal(t, "y", name)
	_, ok = c.Name(2)
	assert.False(t, ok)

	_, err = BuildColumns([]string{"x", "x"}, 0)
	assert.ErrorIs(t, err, syncerr.ErrSchema)
}
