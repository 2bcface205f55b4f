package cell

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type is a declared column type. TypeAuto means no declaration: text is parsed opportunistically.
type Type string

const (
	TypeAuto   Type = ""
	TypeInt    Type = "int"
	TypeFloat  Type = "float"
	TypeString Type = "string"
)

// ParseType parses a declared type name. "auto" and "" both mean TypeAuto.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return TypeAuto, nil
	case "int", "integer", "int64":
		return TypeInt, nil
	case "float", "float64", "number", "double":
		return TypeFloat, nil
	case "string", "str", "text":
		return TypeString, nil
	default:
		return TypeAuto, fmt.Errorf("unknown column type %q", s)
	}
}

// Types maps column names to declared types. Missing columns are TypeAuto.
type Types map[string]Type

// Of returns the declared type of column.
func (t Types) Of(column string) Type {
	if t == nil {
		return TypeAuto
	}
	return t[column]
}

// NASet holds the textual cell contents that are read as missing.
type NASet map[string]struct{}

// NewNASet builds an NASet from the given values.
func NewNASet(values ...string) NASet {
	set := make(NASet, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Contains reports whether the text form of v is in the set.
func (n NASet) Contains(v Value) bool {
	if len(n) == 0 || v.IsNull() {
		return false
	}
	_, ok := n[v.String()]
	return ok
}

// ToCell converts a table value into the representation written to the grid.
// Null, NaN and the empty string become the empty cell.
func ToCell(v Value, typ Type) Value {
	if v.IsEmpty() {
		return Null()
	}
	switch typ {
	case TypeString:
		return String(v.String())
	case TypeInt:
		if i, ok := v.AsInt(); ok {
			return Int(i)
		}
		if v.kind == KindString {
			if i, ok := parseInt(v.s); ok {
				return Int(i)
			}
		}
	case TypeFloat:
		if f, ok := v.AsFloat(); ok {
			return Float(f)
		}
		if v.kind == KindString {
			if f, ok := parseFloat(v.s); ok {
				return Float(f)
			}
		}
	}
	return v
}

// FromCell converts a raw grid cell into a table value. Empty cells and values in na are null.
// A declared type takes precedence over opportunistic parsing; content that does not fit the
// declared type falls back to opportunistic parsing.
func FromCell(c Value, typ Type, na NASet) Value {
	if c.IsEmpty() || na.Contains(c) {
		return Null()
	}
	switch typ {
	case TypeString:
		return String(c.String())
	case TypeInt:
		if i, ok := c.AsInt(); ok {
			return Int(i)
		}
		if c.kind == KindString {
			if i, ok := parseInt(c.s); ok {
				return Int(i)
			}
		}
	case TypeFloat:
		if f, ok := c.AsFloat(); ok {
			return Float(f)
		}
		if c.kind == KindString {
			if f, ok := parseFloat(c.s); ok {
				return Float(f)
			}
		}
	}
	return Numericise(c)
}

// Numericise parses text as an int, then a float, and otherwise keeps it as a string.
// Integral floats are normalized to ints.
func Numericise(c Value) Value {
	switch c.kind {
	case KindInt, KindNull:
		return c
	case KindFloat:
		return c.Normalize()
	}
	if i, ok := parseInt(c.s); ok {
		return Int(i)
	}
	if f, ok := parseFloat(c.s); ok {
		return Float(f)
	}
	return c
}

func parseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	i, err := strconv.ParseInt(s, 10, 64)
	return i, err == nil
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
