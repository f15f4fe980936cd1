package tree

import (
	"fmt"
	"strings"
)

// PathSeparator joins keys in the textual form of a node path.
const PathSeparator = "/"

// Walk visits every node in pre-order, top-level nodes in source order.
// Returning false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(*Node) bool) {
	var visit func(NodeID)
	visit = func(id NodeID) {
		n := &t.nodes[id]
		if !fn(n) {
			return
		}
		for _, c := range n.children {
			visit(c)
		}
	}
	for _, r := range t.roots {
		visit(r)
	}
}

// Find returns the node reached by following keys from the top level.
func (t *Tree) Find(keys ...string) (NodeID, bool) {
	if len(keys) == 0 {
		return NoNode, false
	}
	level := t.roots
	id := NoNode
	for _, k := range keys {
		found := false
		for _, c := range level {
			if t.nodes[c].key == k {
				id = c
				found = true
				break
			}
		}
		if !found {
			return NoNode, false
		}
		level = t.nodes[id].children
	}
	return id, true
}

// Lookup resolves a PathSeparator-joined key path such as
// "Parent 1/children/Child 1.2".
func (t *Tree) Lookup(path string) (NodeID, error) {
	id, ok := t.Find(SplitPath(path)...)
	if !ok {
		return NoNode, fmt.Errorf("%w: %q", ErrPathNotFound, path)
	}
	return id, nil
}

func SplitPath(path string) []string {
	path = strings.Trim(path, PathSeparator)
	if path == "" {
		return nil
	}
	return strings.Split(path, PathSeparator)
}

// Path returns the keys leading from the top level to id.
func (t *Tree) Path(id NodeID) []string {
	if !t.valid(id) {
		return nil
	}
	var keys []string
	for cur := id; cur != NoNode; cur = t.nodes[cur].parent {
		keys = append(keys, t.nodes[cur].key)
	}
	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}
	return keys
}

// Stats summarizes a tree or subtree.
type Stats struct {
	Nodes           int
	Branches        int
	Leaves          int
	CheckedLeaves   int
	PartialBranches int
	MaxDepth        int
}

// Coverage is the fraction of leaves that are checked, in [0, 1].
func (s Stats) Coverage() float64 {
	if s.Leaves == 0 {
		return 0
	}
	return float64(s.CheckedLeaves) / float64(s.Leaves)
}

func (t *Tree) Stats() Stats {
	var s Stats
	for _, r := range t.roots {
		s.add(t.StatsOf(r))
	}
	return s
}

// StatsOf summarizes the subtree rooted at id. Depths are absolute.
func (t *Tree) StatsOf(id NodeID) Stats {
	var s Stats
	if !t.valid(id) {
		return s
	}
	stack := []NodeID{id}
	for len(stack) > 0 {
		n := &t.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		s.Nodes++
		if n.depth > s.MaxDepth {
			s.MaxDepth = n.depth
		}
		if n.kind == Leaf {
			s.Leaves++
			if n.state == Checked {
				s.CheckedLeaves++
			}
			continue
		}
		s.Branches++
		if n.state == PartiallyChecked {
			s.PartialBranches++
		}
		stack = append(stack, n.children...)
	}
	return s
}

func (s *Stats) add(o Stats) {
	s.Nodes += o.Nodes
	s.Branches += o.Branches
	s.Leaves += o.Leaves
	s.CheckedLeaves += o.CheckedLeaves
	s.PartialBranches += o.PartialBranches
	if o.MaxDepth > s.MaxDepth {
		s.MaxDepth = o.MaxDepth
	}
}
