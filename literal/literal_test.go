package literal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromValueClassification(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want Value
	}{
		{"bool", true, Bool{Value: true}},
		{"int", 42, Int{Value: 42}},
		{"int32", int32(-7), Int{Value: -7}},
		{"int64", int64(1 << 40), Int{Value: 1 << 40}},
		{"float32", float32(1.5), Float{Value: 1.5}},
		{"float64", 2.25, Float{Value: 2.25}},
		{"string", "hello", String{Value: "hello"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromValue(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFromValueTime(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	got, err := FromValue(ts)
	require.NoError(t, err)
	assert.Equal(t, Datetime{Value: ts}, got)
}

func TestFromValuePassthrough(t *testing.T) {
	in := Date{Value: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	got, err := FromValue(in)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestFromValueNested(t *testing.T) {
	got, err := FromValue([]any{1, "two", []any{3.0}})
	require.NoError(t, err)
	want := Array{Value: []Value{
		Int{Value: 1},
		String{Value: "two"},
		Array{Value: []Value{Float{Value: 3.0}}},
	}}
	assert.Equal(t, want, got)
}

func TestFromValueUnsupported(t *testing.T) {
	for _, in := range []any{nil, struct{}{}, map[string]int{"a": 1}} {
		_, err := FromValue(in)
		require.Error(t, err)
		var typeErr *UnsupportedTypeError
		assert.True(t, errors.As(err, &typeErr))
	}
}

func TestEqual(t *testing.T) {
	utc := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	shifted := utc.In(time.FixedZone("plus2", 2*3600))

	assert.True(t, Equal(Int{Value: 1}, Int{Value: 1}))
	assert.False(t, Equal(Int{Value: 1}, Int{Value: 2}))
	assert.False(t, Equal(Int{Value: 1}, Float{Value: 1}))
	// Instants compare regardless of location.
	assert.True(t, Equal(Datetime{Value: utc}, Datetime{Value: shifted}))
	assert.True(t, Equal(
		Array{Value: []Value{Int{Value: 1}, String{Value: "a"}}},
		Array{Value: []Value{Int{Value: 1}, String{Value: "a"}}},
	))
	assert.False(t, Equal(
		Array{Value: []Value{Int{Value: 1}}},
		Array{Value: []Value{Int{Value: 1}, Int{Value: 2}}},
	))
	assert.False(t, Equal(nil, Int{Value: 1}))
	assert.True(t, Equal(nil, nil))
}
