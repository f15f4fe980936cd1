package tree

import "github.com/san-kum/checktree/internal/document"

type ExportOptions struct {
	// ArraysAsObjects rebuilds list branches as objects keyed "Item N"
	// instead of arrays.
	ArraysAsObjects bool
}

// Export builds a document holding only the checked part of the tree.
// Unchecked nodes are dropped with their subtrees; checked leaves keep
// their source key and typed value; checked and partial branches become
// containers of their exported children. An unchecked tree exports as an
// empty object.
func (t *Tree) Export(opts ExportOptions) *document.Object {
	out := document.NewObject()
	for _, r := range t.roots {
		if v, ok := t.exportNode(r, opts); ok {
			out.Set(t.nodes[r].key, v)
		}
	}
	return out
}

func (t *Tree) exportNode(id NodeID, opts ExportOptions) (any, bool) {
	n := &t.nodes[id]
	if n.state == Unchecked {
		return nil, false
	}

	switch {
	case n.kind == Leaf:
		return n.value, true

	case n.shape == ShapeArray && !opts.ArraysAsObjects:
		arr := make(document.Array, 0, len(n.children))
		for _, c := range n.children {
			if v, ok := t.exportNode(c, opts); ok {
				arr = append(arr, v)
			}
		}
		return arr, true
	}

	obj := document.NewObject()
	for _, c := range n.children {
		if v, ok := t.exportNode(c, opts); ok {
			obj.Set(t.nodes[c].key, v)
		}
	}
	return obj, true
}
