package cell

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"Nil", nil, Null()},
		{"Int", 42, Int(42)},
		{"Int32", int32(-3), Int(-3)},
		{"Uint8", uint8(7), Int(7)},
		{"Float", 1.5, Float(1.5)},
		{"String", "abc", String("abc")},
		{"Bytes", []byte("xyz"), String("xyz")},
		{"BoolTrue", true, String("TRUE")},
		{"NumberInt", json.Number("12"), Int(12)},
		{"NumberFloat", json.Number("1.25"), Float(1.25)},
		{"Value", Int(9), Int(9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Of(tt.in))
		})
	}
}

func TestValue_IsEmpty(t *testing.T) {
	assert.True(t, Null().IsEmpty())
	assert.True(t, String("").IsEmpty())
	assert.True(t, Float(math.NaN()).IsEmpty())
	assert.False(t, Int(0).IsEmpty())
	assert.False(t, String(" ").IsEmpty())
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "", Null().String())
	assert.Equal(t, "-5", Int(-5).String())
	assert.Equal(t, "2.5", Float(2.5).String())
	assert.Equal(t, "100", Float(100).String())
	assert.Equal(t, "hi", String("hi").String())
}

func TestValue_Normalize(t *testing.T) {
	assert.Equal(t, Int(3), Float(3).Normalize())
	assert.Equal(t, Float(3.5), Float(3.5).Normalize())
	assert.Equal(t, String("3"), String("3").Normalize())

	m := map[Value]int{Float(1).Normalize(): 1}
	_, ok := m[Int(1)]
	assert.True(t, ok)
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"SameInt", Int(1), Int(1), true},
		{"IntFloat", Int(1), Float(1.0), true},
		{"DifferentFloat", Float(1.5), Float(2.5), false},
		{"NullEmptyString", Null(), String(""), true},
		{"NullNaN", Null(), Float(math.NaN()), true},
		{"NullZero", Null(), Int(0), false},
		{"StringNumber", String("1"), Int(1), false},
		{"Strings", String("a"), String("a"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a))
		})
	}
}

func TestValue_JSON(t *testing.T) {
	in := []Value{Null(), Int(7), Float(1.5), String("x")}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `[null, 7, 1.5, "x"]`, string(data))

	var out []Value
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	var v Value
	require.NoError(t, json.Unmarshal([]byte(`true`), &v))
	assert.Equal(t, String("TRUE"), v)
}
