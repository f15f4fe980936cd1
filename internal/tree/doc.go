// Package tree implements the checkbox tree behind checktree.
//
// A [Tree] is built once from an ordered document with [Build]. Its shape
// never changes afterwards; only the per-node [CheckState] does, and only
// through the engine methods:
//
//   - [Tree.Apply]: set a node to Checked or Unchecked, cascade the state
//     down to every descendant and recompute every ancestor
//   - [Tree.Toggle]: the user-click form of Apply
//   - [Tree.SetAll]: apply one state to the whole tree
//
// After every engine call each branch with children is Checked iff all its
// children are Checked, Unchecked iff all are Unchecked, and
// PartiallyChecked otherwise. [Tree.Verify] checks this.
//
// [Tree.Export] turns the checked subset back into a document shaped like
// the input.
//
// # Notifications
//
// Subscribers registered with [Tree.Subscribe] receive exactly one [Change]
// per engine call, after all mutation for that call is done. An engine call
// made from inside a subscriber is queued and runs once the current round
// of notifications has finished.
//
// # Thread Safety
//
// Tree is NOT safe for concurrent use. It is meant to be owned by a single
// event loop.
package tree
