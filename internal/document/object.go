package document

import (
	"bytes"
	"encoding/json"
	"math"

	"gopkg.in/yaml.v3"
)

// Object is a string-keyed mapping that iterates in insertion order.
// The zero value is not usable; call NewObject.
type Object struct {
	keys   []string
	values map[string]any
}

// Array is an ordered sequence of document values.
type Array []any

func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Set stores v under key. A key that is already present keeps its
// original position.
func (o *Object) Set(key string, v any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns a copy of the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

func (o *Object) Len() int { return len(o.keys) }

// Range calls fn for every entry in order until fn returns false.
func (o *Object) Range(fn func(key string, v any) bool) {
	for _, k := range o.keys {
		if !fn(k, o.values[k]) {
			return
		}
	}
}

func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (a Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeJSON writes v as compact JSON. HTML characters are left as they are,
// and NaN and the infinities, which JSON cannot represent, are written as
// the strings "NaN", "Infinity" and "-Infinity".
func writeJSON(buf *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case *Object:
		buf.WriteByte('{')
		for i, k := range x.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, x.values[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case Array:
		return writeJSONSlice(buf, x)
	case []any:
		return writeJSONSlice(buf, x)

	case float64:
		if s, ok := nonFinite(x); ok {
			return writeJSON(buf, s)
		}
	case float32:
		if s, ok := nonFinite(float64(x)); ok {
			return writeJSON(buf, s)
		}
	}

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

func writeJSONSlice(buf *bytes.Buffer, items []any) error {
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(buf, item); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func nonFinite(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return "NaN", true
	case math.IsInf(f, 1):
		return "Infinity", true
	case math.IsInf(f, -1):
		return "-Infinity", true
	}
	return "", false
}

func (o *Object) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range o.keys {
		vn, err := yamlValue(o.values[k])
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			vn,
		)
	}
	return node, nil
}

func (a Array) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, item := range a {
		vn, err := yamlValue(item)
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, vn)
	}
	return node, nil
}

// yamlValue keeps JSON numbers in their source spelling.
func yamlValue(v any) (*yaml.Node, error) {
	if n, ok := v.(json.Number); ok {
		tag := "!!int"
		if _, err := n.Int64(); err != nil {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: n.String()}, nil
	}
	var vn yaml.Node
	if err := vn.Encode(v); err != nil {
		return nil, err
	}
	return &vn, nil
}
