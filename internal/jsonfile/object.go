package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Object is a JSON object that keeps its members in insertion order.
type Object struct {
	keys   []string
	values []json.RawMessage
}

// Set appends a member. Keys are not de-duplicated.
func (o *Object) Set(key string, value any) error {
	raw, err := MarshalCompact(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	o.keys = append(o.keys, key)
	o.values = append(o.values, raw)
	return nil
}

// Len reports the number of members.
func (o *Object) Len() int {
	return len(o.keys)
}

// MarshalJSON writes the members in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := MarshalCompact(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(o.values[i])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// OrderedMap encodes m as an object whose members follow keys. Keys missing
// from m are skipped.
func OrderedMap[V any](m map[string]V, keys []string) (*Object, error) {
	obj := &Object{}
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if err := obj.Set(k, v); err != nil {
			return nil, err
		}
	}
	return obj, nil
}
