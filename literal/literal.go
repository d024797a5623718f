// Package literal models constant values used inside transformations and as
// fact-table cells. A value is a tagged union: the tag names the type, the
// payload carries the data, and the two are consistent by construction.
package literal

import (
	"fmt"
	"time"
)

// Tag identifies the concrete type of a literal value.
type Tag string

const (
	TagInt      Tag = "int"
	TagFloat    Tag = "float"
	TagBool     Tag = "bool"
	TagDate     Tag = "date"
	TagDatetime Tag = "datetime"
	TagString   Tag = "string"
	TagArray    Tag = "array"
)

// Value is a constant with a stable type tag.
type Value interface {
	// Tag returns the type tag the value serializes under.
	Tag() Tag
	// Any returns the plain Go representation of the value.
	Any() any
}

// Int is an integer literal.
type Int struct {
	Value int64 `json:"value"`
}

func (Int) Tag() Tag   { return TagInt }
func (v Int) Any() any { return v.Value }

// Float is a floating-point literal.
type Float struct {
	Value float64 `json:"value"`
}

func (Float) Tag() Tag   { return TagFloat }
func (v Float) Any() any { return v.Value }

// Bool is a boolean literal.
type Bool struct {
	Value bool `json:"value"`
}

func (Bool) Tag() Tag   { return TagBool }
func (v Bool) Any() any { return v.Value }

// Date is a calendar-date literal. The time-of-day part is zero.
type Date struct {
	Value time.Time `json:"value"`
}

func (Date) Tag() Tag   { return TagDate }
func (v Date) Any() any { return v.Value }

// Datetime is a point-in-time literal.
type Datetime struct {
	Value time.Time `json:"value"`
}

func (Datetime) Tag() Tag   { return TagDatetime }
func (v Datetime) Any() any { return v.Value }

// String is a text literal.
type String struct {
	Value string `json:"value"`
}

func (String) Tag() Tag   { return TagString }
func (v String) Any() any { return v.Value }

// Array is a list literal; elements may be of mixed tags and nested.
type Array struct {
	Value []Value `json:"value"`
}

func (Array) Tag() Tag { return TagArray }

func (v Array) Any() any {
	out := make([]any, len(v.Value))
	for i, elem := range v.Value {
		out[i] = elem.Any()
	}
	return out
}

// UnsupportedTypeError reports a runtime type FromValue cannot classify.
type UnsupportedTypeError struct {
	Value any
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("literal: unsupported value type %T", e.Value)
}

// FromValue classifies an arbitrary runtime value into a literal. The check
// order is fixed: bool before the integer kinds, since weakly-typed source
// data may carry booleans as integers. Slices classify recursively.
func FromValue(value any) (Value, error) {
	switch v := value.(type) {
	case Value:
		return v, nil
	case bool:
		return Bool{Value: v}, nil
	case int:
		return Int{Value: int64(v)}, nil
	case int32:
		return Int{Value: int64(v)}, nil
	case int64:
		return Int{Value: v}, nil
	case float32:
		return Float{Value: float64(v)}, nil
	case float64:
		return Float{Value: v}, nil
	case time.Time:
		// Go has no separate calendar-date type; a time.Time always
		// classifies as datetime. Use Date{} directly for date-only values.
		return Datetime{Value: v}, nil
	case string:
		return String{Value: v}, nil
	case []any:
		elems := make([]Value, len(v))
		for i, raw := range v {
			elem, err := FromValue(raw)
			if err != nil {
				return nil, err
			}
			elems[i] = elem
		}
		return Array{Value: elems}, nil
	case nil:
		return nil, &UnsupportedTypeError{Value: value}
	}
	return nil, &UnsupportedTypeError{Value: value}
}

// Equal reports whether two literals carry the same tag and payload.
// Temporal values compare by instant, not by location.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Tag() != b.Tag() {
		return false
	}
	switch av := a.(type) {
	case Date:
		return av.Value.Equal(b.(Date).Value)
	case Datetime:
		return av.Value.Equal(b.(Datetime).Value)
	case Array:
		bv := b.(Array)
		if len(av.Value) != len(bv.Value) {
			return false
		}
		for i := range av.Value {
			if !Equal(av.Value[i], bv.Value[i]) {
				return false
			}
		}
		return true
	default:
		return a.Any() == b.Any()
	}
}
