package literal

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = time.RFC3339Nano
)

// envelope is the self-describing wire form: the tag under "name", the
// tag-specific payload under "value".
type envelope struct {
	Name  Tag             `json:"name"`
	Value json.RawMessage `json:"value"`
}

// Encode serializes a value into its self-describing JSON form.
func Encode(v Value) ([]byte, error) {
	payload, err := encodePayload(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Name: v.Tag(), Value: payload})
}

func encodePayload(v Value) (json.RawMessage, error) {
	switch val := v.(type) {
	case Int:
		return json.Marshal(val.Value)
	case Float:
		return json.Marshal(val.Value)
	case Bool:
		return json.Marshal(val.Value)
	case String:
		return json.Marshal(val.Value)
	case Date:
		return json.Marshal(val.Value.Format(dateLayout))
	case Datetime:
		return json.Marshal(val.Value.Format(datetimeLayout))
	case Array:
		elems := make([]json.RawMessage, len(val.Value))
		for i, elem := range val.Value {
			encoded, err := Encode(elem)
			if err != nil {
				return nil, err
			}
			elems[i] = encoded
		}
		return json.Marshal(elems)
	}
	return nil, fmt.Errorf("literal: no encoder for tag %q", v.Tag())
}

// Registry maps type tags to decoders. It is populated once by NewRegistry
// and read-only afterwards, so it is safe for concurrent use without locking.
type Registry struct {
	decoders map[Tag]func(r *Registry, payload json.RawMessage) (Value, error)
}

// NewRegistry builds the registry covering every supported tag.
func NewRegistry() *Registry {
	return &Registry{decoders: map[Tag]func(*Registry, json.RawMessage) (Value, error){
		TagInt: func(_ *Registry, payload json.RawMessage) (Value, error) {
			var v int64
			if err := json.Unmarshal(payload, &v); err != nil {
				return nil, err
			}
			return Int{Value: v}, nil
		},
		TagFloat: func(_ *Registry, payload json.RawMessage) (Value, error) {
			var v float64
			if err := json.Unmarshal(payload, &v); err != nil {
				return nil, err
			}
			return Float{Value: v}, nil
		},
		TagBool: func(_ *Registry, payload json.RawMessage) (Value, error) {
			var v bool
			if err := json.Unmarshal(payload, &v); err != nil {
				return nil, err
			}
			return Bool{Value: v}, nil
		},
		TagString: func(_ *Registry, payload json.RawMessage) (Value, error) {
			var v string
			if err := json.Unmarshal(payload, &v); err != nil {
				return nil, err
			}
			return String{Value: v}, nil
		},
		TagDate: func(_ *Registry, payload json.RawMessage) (Value, error) {
			var raw string
			if err := json.Unmarshal(payload, &raw); err != nil {
				return nil, err
			}
			t, err := time.Parse(dateLayout, raw)
			if err != nil {
				return nil, fmt.Errorf("literal: parse date: %w", err)
			}
			return Date{Value: t}, nil
		},
		TagDatetime: func(_ *Registry, payload json.RawMessage) (Value, error) {
			var raw string
			if err := json.Unmarshal(payload, &raw); err != nil {
				return nil, err
			}
			t, err := time.Parse(datetimeLayout, raw)
			if err != nil {
				return nil, fmt.Errorf("literal: parse datetime: %w", err)
			}
			return Datetime{Value: t}, nil
		},
		TagArray: func(r *Registry, payload json.RawMessage) (Value, error) {
			var elems []json.RawMessage
			if err := json.Unmarshal(payload, &elems); err != nil {
				return nil, err
			}
			values := make([]Value, len(elems))
			for i, elem := range elems {
				v, err := r.Decode(elem)
				if err != nil {
					return nil, err
				}
				values[i] = v
			}
			return Array{Value: values}, nil
		},
	}}
}

// Decode parses a self-describing JSON value, dispatching on its tag.
func (r *Registry) Decode(data []byte) (Value, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("literal: decode envelope: %w", err)
	}
	decode, ok := r.decoders[env.Name]
	if !ok {
		return nil, fmt.Errorf("literal: unknown tag %q", env.Name)
	}
	return decode(r, env.Value)
}
