package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][-+]?[0-9]+)?$`)

// Decode parses JSON or YAML text into an ordered document. Input whose
// first significant byte is '{' is read as JSON, keeping numbers as
// json.Number so their spelling survives; it falls back to YAML (a flow
// mapping such as "{a: 1}") only when the JSON parse fails and the YAML one
// succeeds. An empty input decodes to an empty object.
func Decode(data []byte) (*Object, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		obj, err := decodeJSON(data)
		if err == nil {
			return obj, nil
		}
		if yobj, yerr := decodeYAML(data); yerr == nil {
			return yobj, nil
		}
		return nil, err
	}
	return decodeYAML(data)
}

func decodeJSON(data []byte) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := readJSON(dec)
	if err != nil {
		return nil, fmt.Errorf("document: parse: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("document: parse: trailing data at offset %d", dec.InputOffset())
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf("%w (got %T)", ErrNotObject, v)
	}
	return obj, nil
}

func readJSON(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	d, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch d {
	case '{':
		obj := NewObject()
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v is not a string", kt)
			}
			v, err := readJSON(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil

	case '[':
		arr := Array{}
		for dec.More() {
			v, err := readJSON(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected %q", rune(d))
}

func decodeYAML(data []byte) (*Object, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("document: parse: %w", err)
	}
	if root.Kind == 0 {
		return NewObject(), nil
	}

	n := &root
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return NewObject(), nil
		}
		n = n.Content[0]
	}

	v, err := fromNode(n, make(map[*yaml.Node]bool))
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf("%w (got %T)", ErrNotObject, v)
	}
	return obj, nil
}

// ReadFile decodes the document at path. A path of "-" reads stdin.
func ReadFile(path string) (*Object, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func fromNode(n *yaml.Node, active map[*yaml.Node]bool) (any, error) {
	switch n.Kind {
	case yaml.MappingNode:
		obj := NewObject()
		if err := mergeMapping(obj, n, active); err != nil {
			return nil, err
		}
		return obj, nil

	case yaml.SequenceNode:
		arr := make(Array, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c, active)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil

	case yaml.ScalarNode:
		// Dates stay in their source spelling; a time.Time is not a
		// document scalar.
		if n.Tag == "!!timestamp" {
			return n.Value, nil
		}
		// Numbers written the JSON way keep their spelling, as in the JSON
		// path; other YAML forms (0x1f, 1_000, .inf) are converted.
		if (n.Tag == "!!int" || n.Tag == "!!float") && jsonNumber.MatchString(n.Value) {
			return json.Number(n.Value), nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("document: line %d: %w", n.Line, err)
		}
		return normalizeScalar(v), nil

	case yaml.AliasNode:
		if active[n.Alias] {
			return nil, fmt.Errorf("%w at line %d", ErrCycle, n.Line)
		}
		active[n.Alias] = true
		defer delete(active, n.Alias)
		return fromNode(n.Alias, active)

	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromNode(n.Content[0], active)
	}
	return nil, fmt.Errorf("document: line %d: unsupported node kind %d", n.Line, n.Kind)
}

func mergeMapping(obj *Object, n *yaml.Node, active map[*yaml.Node]bool) error {
	active[n] = true
	defer delete(active, n)

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, vn := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return fmt.Errorf("document: line %d: mapping key must be a scalar", k.Line)
		}

		// "<<: *anchor" pulls in entries the mapping does not define itself.
		if k.Tag == "!!merge" {
			v, err := fromNode(vn, active)
			if err != nil {
				return err
			}
			src, ok := v.(*Object)
			if !ok {
				return fmt.Errorf("document: line %d: merge value is not a mapping", vn.Line)
			}
			src.Range(func(key string, val any) bool {
				if _, exists := obj.Get(key); !exists {
					obj.Set(key, val)
				}
				return true
			})
			continue
		}

		v, err := fromNode(vn, active)
		if err != nil {
			return err
		}
		obj.Set(k.Value, v)
	}
	return nil
}

func normalizeScalar(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return uint64(x)
	case float32:
		return float64(x)
	}
	return v
}

// EncodeJSON renders v as indented JSON followed by a newline. Characters
// such as '<' and '&' are written literally.
func EncodeJSON(v any, indent int) ([]byte, error) {
	if indent < 0 {
		indent = 0
	}
	var compact bytes.Buffer
	if err := writeJSON(&compact, v); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", strings.Repeat(" ", indent)); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// EncodeYAML renders v as a YAML document.
func EncodeYAML(v any, indent int) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if indent > 0 {
		enc.SetIndent(indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode renders v in the named format.
func Encode(v any, format string, indent int) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return EncodeJSON(v, indent)
	case FormatYAML, "yml":
		return EncodeYAML(v, indent)
	}
	return nil, fmt.Errorf("document: unknown format %q", format)
}
