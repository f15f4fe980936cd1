package tree

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"strconv"

	"github.com/san-kum/checktree/internal/document"
	"github.com/san-kum/checktree/internal/logging"
)

// Tree owns every node built from a source document.
type Tree struct {
	nodes []Node
	roots []NodeID
	log   *slog.Logger

	subs      []subscriber
	nextSub   int
	notifying bool
	pending   []pendingOp
}

type Option func(*Tree)

func WithLogger(l *slog.Logger) Option {
	return func(t *Tree) {
		if l != nil {
			t.log = l
		}
	}
}

// Build creates a tree with one top-level node per entry of root. All
// nodes start Unchecked. A nil root gives an empty tree.
func Build(root *document.Object, opts ...Option) (*Tree, error) {
	t := &Tree{log: logging.NewNop()}
	for _, opt := range opts {
		opt(t)
	}
	if root == nil {
		return t, nil
	}

	for i, key := range root.Keys() {
		v, _ := root.Get(key)
		id, err := t.add(NoNode, key, v, 0, i, []string{key})
		if err != nil {
			return nil, err
		}
		t.roots = append(t.roots, id)
	}

	t.log.Debug("tree built", "nodes", len(t.nodes), "roots", len(t.roots))
	return t, nil
}

func (t *Tree) add(parent NodeID, key string, v any, depth, index int, path []string) (NodeID, error) {
	switch val := v.(type) {
	case *document.Object:
		if val == nil {
			return t.push(parent, key, Leaf, ShapeScalar, nil, depth, index), nil
		}
		id := t.push(parent, key, Branch, ShapeObject, nil, depth, index)
		for i, k := range val.Keys() {
			c, _ := val.Get(k)
			if _, err := t.add(id, k, c, depth+1, i, append(path, k)); err != nil {
				return NoNode, err
			}
		}
		return id, nil

	case document.Array:
		return t.addArray(parent, key, val, depth, index, path)

	case []any:
		return t.addArray(parent, key, val, depth, index, path)
	}

	s, ok := scalar(v)
	if !ok {
		return NoNode, &ShapeError{Path: append([]string(nil), path...), Type: fmt.Sprintf("%T", v)}
	}
	return t.push(parent, key, Leaf, ShapeScalar, s, depth, index), nil
}

func (t *Tree) addArray(parent NodeID, key string, items []any, depth, index int, path []string) (NodeID, error) {
	id := t.push(parent, key, Branch, ShapeArray, nil, depth, index)
	for i, item := range items {
		k := fmt.Sprintf("Item %d", i+1)
		if _, err := t.add(id, k, item, depth+1, i, append(path, k)); err != nil {
			return NoNode, err
		}
	}
	return id, nil
}

func (t *Tree) push(parent NodeID, key string, kind Kind, shape Shape, value any, depth, index int) NodeID {
	id := NodeID(len(t.nodes))

	var label string
	switch shape {
	case ShapeObject, ShapeArray:
		label = key + " (" + shape.String() + ")"
	default:
		label = key + ": " + FormatValue(value)
	}

	t.nodes = append(t.nodes, Node{
		id:     id,
		parent: parent,
		key:    key,
		label:  label,
		kind:   kind,
		shape:  shape,
		value:  value,
		state:  Unchecked,
		depth:  depth,
		index:  index,
	})
	if parent != NoNode {
		t.nodes[parent].children = append(t.nodes[parent].children, id)
	}
	return id
}

// scalar normalizes the Go scalar kinds a document can carry.
func scalar(v any) (any, bool) {
	switch x := v.(type) {
	case nil, string, bool, int64, uint64, float64, json.Number:
		return x, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return rv.Bool(), true
	}
	return nil, false
}

// FormatValue renders a leaf value the way it appears in labels.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return fmt.Sprint(x)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

// Len is the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Roots returns the top-level node ids in source order. The slice must not
// be modified.
func (t *Tree) Roots() []NodeID { return t.roots }

// Node returns the node for id, or nil if id is not in the tree.
func (t *Tree) Node(id NodeID) *Node {
	if !t.valid(id) {
		return nil
	}
	return &t.nodes[id]
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}
