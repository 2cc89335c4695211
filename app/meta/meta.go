// Package meta provides an open-schema metadata value attached to news
// and trend records. Values are a tagged union of string, number, bool,
// and nested map so serialization and comparison stay well-defined.
package meta

import (
	"encoding/json"
	"fmt"
)

type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindMap
)

type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	m    Map
}

type Map map[string]Value

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func Nested(m Map) Value {
	return Value{kind: KindMap, m: m}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) String() string {
	return v.str
}

func (v Value) Number() float64 {
	return v.num
}

func (v Value) Bool() bool {
	return v.b
}

func (v Value) Map() Map {
	return v.m
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindMap:
		return json.Marshal(v.m)
	default:
		return nil, fmt.Errorf("unknown metadata value kind: %d", v.kind)
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := fromInterface(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func fromInterface(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case bool:
		return Bool(t), nil
	case map[string]interface{}:
		m := make(Map, len(t))
		for k, item := range t {
			parsed, err := fromInterface(item)
			if err != nil {
				return Value{}, err
			}
			m[k] = parsed
		}
		return Nested(m), nil
	case nil:
		return String(""), nil
	default:
		return Value{}, fmt.Errorf("unsupported metadata value type: %T", raw)
	}
}

// Encode serializes the map to a JSON string for storage. An empty or
// nil map encodes as "{}".
func (m Map) Encode() (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}
	return string(data), nil
}

// Decode parses a stored JSON string back into a map. Empty input
// decodes to an empty map.
func Decode(raw string) (Map, error) {
	if raw == "" || raw == "{}" {
		return Map{}, nil
	}
	var m Map
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return m, nil
}
