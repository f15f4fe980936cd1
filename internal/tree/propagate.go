package tree

import "fmt"

// Change describes one completed engine call. Subscribers should treat it
// as "redraw everything".
type Change struct {
	// Origin is the node the call was made on, or NoNode for SetAll.
	Origin NodeID
	State  CheckState
	// Changed counts the nodes whose state differs from before the call.
	Changed int
}

type subscriber struct {
	id int
	fn func(Change)
}

type pendingOp struct {
	id    NodeID
	state CheckState
	all   bool
}

// Subscribe registers fn to be called once after every engine call. The
// returned function removes the subscription.
func (t *Tree) Subscribe(fn func(Change)) (unsubscribe func()) {
	id := t.nextSub
	t.nextSub++
	t.subs = append(t.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range t.subs {
			if s.id == id {
				t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
				return
			}
		}
	}
}

// Apply sets id to state, forces every descendant to the same state and
// recomputes every ancestor from its children. Only Checked and Unchecked
// can be applied.
func (t *Tree) Apply(id NodeID, state CheckState) error {
	if !t.valid(id) {
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	if err := checkApplicable(state); err != nil {
		return err
	}
	t.run(pendingOp{id: id, state: state})
	return nil
}

// Toggle applies the state a click on id would produce: Checked becomes
// Unchecked, anything else becomes Checked.
func (t *Tree) Toggle(id NodeID) (CheckState, error) {
	if !t.valid(id) {
		return Unchecked, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	next := Checked
	if t.nodes[id].state == Checked {
		next = Unchecked
	}
	return next, t.Apply(id, next)
}

// SetAll applies state to every top-level node as a single engine call.
func (t *Tree) SetAll(state CheckState) error {
	if err := checkApplicable(state); err != nil {
		return err
	}
	t.run(pendingOp{id: NoNode, state: state, all: true})
	return nil
}

func checkApplicable(state CheckState) error {
	if state != Checked && state != Unchecked {
		return fmt.Errorf("%w: %s", ErrInvalidState, state)
	}
	return nil
}

// run performs op and notifies subscribers. Calls arriving while
// subscribers are being notified are queued and performed in order, each
// followed by its own notification round.
func (t *Tree) run(op pendingOp) {
	if t.notifying {
		t.pending = append(t.pending, op)
		return
	}

	t.notifying = true
	defer func() { t.notifying = false }()

	t.pending = append(t.pending, op)
	for len(t.pending) > 0 {
		next := t.pending[0]
		t.pending = t.pending[1:]

		change := t.mutate(next)
		subs := append([]subscriber(nil), t.subs...)
		for _, s := range subs {
			s.fn(change)
		}
	}
	t.pending = nil
}

func (t *Tree) mutate(op pendingOp) Change {
	change := Change{Origin: op.id, State: op.state}
	if op.all {
		for _, r := range t.roots {
			change.Changed += t.cascade(r, op.state)
		}
		t.log.Info("all nodes set", "state", op.state, "changed", change.Changed)
		return change
	}

	n := &t.nodes[op.id]
	t.log.Info("node toggled", "label", n.label, "state", op.state)
	change.Changed = t.cascade(op.id, op.state) + t.aggregate(op.id)
	return change
}

// cascade sets id and all of its descendants to state.
func (t *Tree) cascade(id NodeID, state CheckState) int {
	changed := 0
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &t.nodes[cur]
		if n.state != state {
			n.state = state
			changed++
			if cur != id {
				t.log.Debug("child set", "label", n.label, "state", state)
			}
		}
		stack = append(stack, n.children...)
	}
	return changed
}

// aggregate recomputes every ancestor of id from its immediate children.
// The walk always runs to the top: an ancestor whose own state did not
// change still needs its parent rechecked when a deeper node moved.
func (t *Tree) aggregate(id NodeID) int {
	changed := 0
	for p := t.nodes[id].parent; p != NoNode; p = t.nodes[p].parent {
		n := &t.nodes[p]
		next := t.derive(p)
		if next != n.state {
			n.state = next
			changed++
			t.log.Debug("parent updated", "label", n.label, "state", next)
		}
	}
	return changed
}

// derive computes the state a branch should have from its children. A node
// without children keeps its own state.
func (t *Tree) derive(id NodeID) CheckState {
	n := &t.nodes[id]
	if len(n.children) == 0 {
		return n.state
	}

	checked, unchecked := 0, 0
	for _, c := range n.children {
		switch t.nodes[c].state {
		case Checked:
			checked++
		case Unchecked:
			unchecked++
		}
	}
	switch {
	case checked == len(n.children):
		return Checked
	case unchecked == len(n.children):
		return Unchecked
	}
	return PartiallyChecked
}

// Verify reports the first node that breaks the tristate rule.
func (t *Tree) Verify() error {
	for i := range t.nodes {
		n := &t.nodes[i]
		if len(n.children) == 0 {
			if n.state == PartiallyChecked {
				return fmt.Errorf("%w: %q is partial without children", ErrInconsistent, n.label)
			}
			continue
		}
		if want := t.derive(n.id); want != n.state {
			return fmt.Errorf("%w: %q is %s, children imply %s", ErrInconsistent, n.label, n.state, want)
		}
	}
	return nil
}
