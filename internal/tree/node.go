package tree

import "fmt"

// NodeID indexes a node inside its Tree.
type NodeID int

// NoNode is the parent of top-level nodes.
const NoNode NodeID = -1

type Kind uint8

const (
	Leaf Kind = iota
	Branch
)

func (k Kind) String() string {
	if k == Branch {
		return "branch"
	}
	return "leaf"
}

// Shape is the kind of source value a node was built from.
type Shape uint8

const (
	ShapeScalar Shape = iota
	ShapeObject
	ShapeArray
)

func (s Shape) String() string {
	switch s {
	case ShapeObject:
		return "dict"
	case ShapeArray:
		return "list"
	}
	return "scalar"
}

type CheckState uint8

const (
	Unchecked CheckState = iota
	PartiallyChecked
	Checked
)

func (s CheckState) String() string {
	switch s {
	case Unchecked:
		return "unchecked"
	case PartiallyChecked:
		return "partial"
	case Checked:
		return "checked"
	}
	return fmt.Sprintf("CheckState(%d)", uint8(s))
}

// Node is one entry of the tree. Nodes are owned by their Tree and
// reference each other by NodeID.
type Node struct {
	id       NodeID
	parent   NodeID
	key      string
	label    string
	kind     Kind
	shape    Shape
	value    any
	children []NodeID
	state    CheckState
	depth    int
	index    int
}

func (n *Node) ID() NodeID { return n.id }

// Parent returns the owning node, or false for a top-level node.
func (n *Node) Parent() (NodeID, bool) {
	return n.parent, n.parent != NoNode
}

// Key is the source key; array elements get "Item N".
func (n *Node) Key() string { return n.key }

// Label is the display text: "key (dict)", "key (list)" or "key: value".
func (n *Node) Label() string { return n.label }

func (n *Node) Kind() Kind   { return n.kind }
func (n *Node) Shape() Shape { return n.shape }

// Value is the scalar a leaf was built from; nil for branches.
func (n *Node) Value() any { return n.value }

// Children returns the child ids in source order. The slice must not be
// modified.
func (n *Node) Children() []NodeID { return n.children }

func (n *Node) State() CheckState { return n.state }
func (n *Node) Depth() int        { return n.depth }

// Index is the position of the node among its siblings.
func (n *Node) Index() int { return n.index }

func (n *Node) IsLeaf() bool { return n.kind == Leaf }
