package literal

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeEnvelope(t *testing.T) {
	data, err := Encode(Int{Value: 7})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"int","value":7}`, string(data))

	data, err = Encode(Date{Value: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"date","value":"2024-03-01"}`, string(data))
}

func TestDecodeUnknownTag(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Decode([]byte(`{"name":"complex","value":1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tag")
}

func TestDecodeMalformedEnvelope(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Decode([]byte(`not json`))
	require.Error(t, err)
}

func TestRoundTripNestedArray(t *testing.T) {
	registry := NewRegistry()
	in := Array{Value: []Value{
		Int{Value: 1},
		Array{Value: []Value{String{Value: "deep"}, Bool{Value: true}}},
		Datetime{Value: time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)},
	}}

	data, err := Encode(in)
	require.NoError(t, err)
	out, err := registry.Decode(data)
	require.NoError(t, err)
	assert.True(t, Equal(in, out), "decoded %v, want %v", out, in)
}

func genLeafValue() gopter.Gen {
	return gen.OneGenOf(
		gen.Int64().Map(func(v int64) Value { return Int{Value: v} }),
		gen.Float64Range(-1e9, 1e9).Map(func(v float64) Value { return Float{Value: v} }),
		gen.Bool().Map(func(v bool) Value { return Bool{Value: v} }),
		gen.AlphaString().Map(func(v string) Value { return String{Value: v} }),
		gen.Int64Range(0, 4e9).Map(func(s int64) Value {
			return Datetime{Value: time.Unix(s, 0).UTC()}
		}),
		gen.Int64Range(0, 40000).Map(func(d int64) Value {
			return Date{Value: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(d))}
		}),
	)
}

func genValue(depth int) gopter.Gen {
	if depth <= 0 {
		return genLeafValue()
	}
	return gen.OneGenOf(
		genLeafValue(),
		gen.SliceOf(genValue(depth-1)).Map(func(vs []Value) Value { return Array{Value: vs} }),
	)
}

func TestRoundTripProperty(t *testing.T) {
	registry := NewRegistry()
	properties := gopter.NewProperties(nil)

	properties.Property("decode inverts encode", prop.ForAll(
		func(v Value) bool {
			data, err := Encode(v)
			if err != nil {
				return false
			}
			out, err := registry.Decode(data)
			if err != nil {
				return false
			}
			return Equal(v, out)
		},
		genValue(2),
	))

	properties.TestingRun(t)
}
