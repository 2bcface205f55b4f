package lookup

import "gridsync/core/syncerr"

// Columns is an ordered mapping from column name to grid column, starting at indent+1.
type Columns struct {
	indent int
	names  []string
	pos    map[string]int
}

// BuildColumns assigns grid column indent+1+i to the i-th name.
func BuildColumns(names []string, indent int) (*Columns, error) {
	c := &Columns{
		indent: indent,
		names:  append([]string(nil), names...),
		pos:    make(map[string]int, len(names)),
	}
	for i, n := range names {
		if _, dup := c.pos[n]; dup {
			return nil, syncerr.Schema("duplicate column %q", n)
		}
		c.pos[n] = indent + 1 + i
	}
	return c, nil
}

// Indent returns the number of columns left of the first managed column.
func (c *Columns) Indent() int { return c.indent }

// Len returns the number of columns.
func (c *Columns) Len() int { return len(c.names) }

// Names returns the column names in grid order.
func (c *Columns) Names() []string { return append([]string(nil), c.names...) }

// Col returns the grid column of name.
func (c *Columns) Col(name string) (int, bool) {
	col, ok := c.pos[name]
	return col, ok
}

// Name returns the column name at grid column col.
func (c *Columns) Name(col int) (string, bool) {
	i := col - c.indent - 1
	if i < 0 || i >= len(c.names) {
		return "", false
	}
	return c.names[i], true
}

// First returns the first managed grid column.
func (c *Columns) First() int { return c.indent + 1 }

// Last returns the last managed grid column.
func (c *Columns) Last() int { return c.indent + len(c.names) }
