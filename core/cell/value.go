package cell

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind is the tag of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "null"
	}
}

// Value is a single cell scalar. The zero Value is null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// Null returns the null value.
func Null() Value { return Value{} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Of converts a Go scalar into a Value. Unsupported types are formatted with %v.
func Of(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return Int(int64(x))
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case uint64:
		if x > math.MaxInt64 {
			return Float(float64(x))
		}
		return Int(int64(x))
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Int(i)
		}
		if f, err := x.Float64(); err == nil {
			return Float(f)
		}
		return String(x.String())
	case bool:
		if x {
			return String("TRUE")
		}
		return String("FALSE")
	case string:
		return String(x)
	case []byte:
		return String(string(x))
	case *string:
		if x == nil {
			return Null()
		}
		return String(*x)
	default:
		return String(fmt.Sprintf("%v", x))
	}
}

// Kind returns the tag of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports whether v represents a missing cell: null, NaN or the empty string.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindFloat:
		return math.IsNaN(v.f)
	case KindString:
		return v.s == ""
	default:
		return false
	}
}

// AsInt returns the integer held by v. Integral floats convert.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		if isIntegral(v.f) {
			return int64(v.f), true
		}
	}
	return 0, false
}

// AsFloat returns the number held by v as a float64.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// IsNumber reports whether v is an int or a float.
func (v Value) IsNumber() bool {
	return v.kind == KindInt || v.kind == KindFloat
}

// String formats v the way it is written to a text cell. Null formats as "".
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString:
		return v.s
	default:
		return ""
	}
}

// Interface returns v as nil, int64, float64 or string.
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	default:
		return nil
	}
}

// Normalize turns integral floats into ints so that 1 and 1.0 are the same map key.
func (v Value) Normalize() Value {
	if v.kind == KindFloat && isIntegral(v.f) {
		return Int(int64(v.f))
	}
	return v
}

// Equal reports whether a and b hold the same cell content. Numbers compare numerically and
// all empty representations are equal to each other.
func Equal(a, b Value) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return a.IsEmpty() && b.IsEmpty()
	}
	if a.IsNumber() && b.IsNumber() {
		if a.kind == KindInt && b.kind == KindInt {
			return a.i == b.i
		}
		af, _ := a.AsFloat()
		bf, _ := b.AsFloat()
		return af == bf
	}
	return a.kind == b.kind && a.s == b.s
}

// MarshalJSON encodes v as null, a number or a string.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes null, numbers and strings. Other JSON types are kept as their raw text.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch raw.(type) {
	case nil, json.Number, string, bool:
		*v = Of(raw)
	default:
		*v = String(string(data))
	}
	return nil
}

func isIntegral(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f) &&
		f >= math.MinInt64 && f < math.MaxInt64
}
