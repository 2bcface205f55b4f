package lookup

import (
	"sort"

	"gridsync/core/cell"
	"gridsync/core/syncerr"
)

// Rows is an ordered mapping from row key to grid row. Keys occupy rows header+1 .. header+Len().
type Rows struct {
	header int
	keys   []cell.Value
	pos    map[cell.Value]int
}

// BuildRows assigns grid row header+1+i to the i-th key.
func BuildRows(keys []cell.Value, header int) (*Rows, error) {
	r := &Rows{
		header: header,
		keys:   make([]cell.Value, len(keys)),
		pos:    make(map[cell.Value]int, len(keys)),
	}
	for i, k := range keys {
		k = k.Normalize()
		if _, dup := r.pos[k]; dup {
			return nil, syncerr.Schema("duplicate row key %q", k.String())
		}
		r.keys[i] = k
		r.pos[k] = header + 1 + i
	}
	return r, nil
}

// Header returns the number of rows above the first body row.
func (r *Rows) Header() int { return r.header }

// Len returns the number of keyed rows.
func (r *Rows) Len() int { return len(r.keys) }

// Keys returns the keys in grid order.
func (r *Rows) Keys() []cell.Value { return append([]cell.Value(nil), r.keys...) }

// Row returns the grid row of key.
func (r *Rows) Row(key cell.Value) (int, bool) {
	row, ok := r.pos[key.Normalize()]
	return row, ok
}

// First returns the grid row of the first body row.
func (r *Rows) First() int { return r.header + 1 }

// Last returns the grid row of the last body row, or the header row when there are no rows.
func (r *Rows) Last() int { return r.header + len(r.keys) }

// Next returns the first grid row below the body.
func (r *Rows) Next() int { return r.Last() + 1 }

// Rename returns a lookup in which newKey occupies the slot of oldKey.
func (r *Rows) Rename(oldKey, newKey cell.Value) (*Rows, error) {
	oldKey, newKey = oldKey.Normalize(), newKey.Normalize()
	row, ok := r.pos[oldKey]
	if !ok {
		return nil, syncerr.Schema("row key %q not found", oldKey.String())
	}
	if _, taken := r.pos[newKey]; taken && newKey != oldKey {
		return nil, syncerr.Schema("duplicate row key %q", newKey.String())
	}
	keys := r.Keys()
	keys[row-r.header-1] = newKey
	return BuildRows(keys, r.header)
}

// Append returns a lookup with keys added below the current last row.
func (r *Rows) Append(keys ...cell.Value) (*Rows, error) {
	return BuildRows(append(r.Keys(), keys...), r.header)
}

// Shift moves Count rows starting at grid row From up to grid row To.
type Shift struct {
	From  int `json:"from"`
	To    int `json:"to"`
	Count int `json:"count"`
}

// Compaction describes how the body closes up after a deletion.
type Compaction struct {
	// Start is the first grid row that changes (the topmost deleted row).
	Start int
	// End is the last grid row of the body before the deletion.
	End int
	// Shifts lists the surviving blocks below Start, one per gap, top to bottom.
	Shifts []Shift
	// Deleted is the set of grid rows removed.
	Deleted map[int]struct{}
}

// Cleared returns the number of rows exposed at the bottom of the body.
func (c Compaction) Cleared() int { return len(c.Deleted) }

// Compact returns the lookup that remains after removing keys, together with the shift plan that
// closes every gap. Consecutive deleted rows form one gap, so the number of shifts is bounded by the
// number of gaps rather than the number of deleted rows.
func (r *Rows) Compact(keys []cell.Value) (*Rows, Compaction, error) {
	if len(keys) == 0 {
		return r, Compaction{}, nil
	}
	deleted := make(map[int]struct{}, len(keys))
	rows := make([]int, 0, len(keys))
	for _, k := range keys {
		row, ok := r.Row(k)
		if !ok {
			return nil, Compaction{}, syncerr.Schema("row key %q not found", k.Normalize().String())
		}
		if _, dup := deleted[row]; dup {
			continue
		}
		deleted[row] = struct{}{}
		rows = append(rows, row)
	}
	sort.Ints(rows)

	c := Compaction{Start: rows[0], End: r.Last(), Deleted: deleted}
	removed := 0
	for i := 0; i < len(rows); i++ {
		removed++
		// Survivors between this gap and the next deleted row form one block.
		from := rows[i] + 1
		to := c.End
		if i+1 < len(rows) {
			to = rows[i+1] - 1
		}
		if from <= to {
			c.Shifts = append(c.Shifts, Shift{From: from, To: from - removed, Count: to - from + 1})
		}
	}

	survivors := make([]cell.Value, 0, len(r.keys)-len(deleted))
	for i, k := range r.keys {
		if _, gone := deleted[r.header+1+i]; !gone {
			survivors = append(survivors, k)
		}
	}
	next, err := BuildRows(survivors, r.header)
	if err != nil {
		return nil, Compaction{}, err
	}
	return next, c, nil
}
