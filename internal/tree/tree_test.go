package tree

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/san-kum/checktree/internal/document"
)

func mustDecode(t *testing.T, src string) *document.Object {
	t.Helper()
	obj, err := document.Decode([]byte(src))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return obj
}

func mustBuild(t *testing.T, src string) *Tree {
	t.Helper()
	tr, err := Build(mustDecode(t, src))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return tr
}

func mustFind(t *testing.T, tr *Tree, keys ...string) NodeID {
	t.Helper()
	id, ok := tr.Find(keys...)
	if !ok {
		t.Fatalf("node %v not found", keys)
	}
	return id
}

func exportJSON(t *testing.T, tr *Tree, opts ExportOptions) string {
	t.Helper()
	out, err := json.Marshal(tr.Export(opts))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	return string(out)
}

func TestBuildLabels(t *testing.T) {
	tr := mustBuild(t, `{"P": {"a": 1, "b": "x: y"}, "L": [true, null, {"k": 2.5}]}`)

	tests := []struct {
		path  []string
		label string
		kind  Kind
		shape Shape
	}{
		{[]string{"P"}, "P (dict)", Branch, ShapeObject},
		{[]string{"P", "a"}, "a: 1", Leaf, ShapeScalar},
		{[]string{"P", "b"}, "b: x: y", Leaf, ShapeScalar},
		{[]string{"L"}, "L (list)", Branch, ShapeArray},
		{[]string{"L", "Item 1"}, "Item 1: true", Leaf, ShapeScalar},
		{[]string{"L", "Item 2"}, "Item 2: null", Leaf, ShapeScalar},
		{[]string{"L", "Item 3"}, "Item 3 (dict)", Branch, ShapeObject},
		{[]string{"L", "Item 3", "k"}, "k: 2.5", Leaf, ShapeScalar},
	}

	for _, tt := range tests {
		n := tr.Node(mustFind(t, tr, tt.path...))
		if n.Label() != tt.label {
			t.Errorf("%v: expected label %q, got %q", tt.path, tt.label, n.Label())
		}
		if n.Kind() != tt.kind {
			t.Errorf("%v: expected kind %s, got %s", tt.path, tt.kind, n.Kind())
		}
		if n.Shape() != tt.shape {
			t.Errorf("%v: expected shape %s, got %s", tt.path, tt.shape, n.Shape())
		}
		if n.State() != Unchecked {
			t.Errorf("%v: expected unchecked, got %s", tt.path, n.State())
		}
	}

	if tr.Len() != 8 {
		t.Errorf("expected 8 nodes, got %d", tr.Len())
	}
}

func TestBuildKeepsOrderAndLinks(t *testing.T) {
	tr := mustBuild(t, `{"z": {"c": 1, "a": 2, "b": 3}, "y": 0}`)

	roots := tr.Roots()
	if len(roots) != 2 || tr.Node(roots[0]).Key() != "z" || tr.Node(roots[1]).Key() != "y" {
		t.Fatalf("unexpected roots")
	}
	if _, ok := tr.Node(roots[0]).Parent(); ok {
		t.Error("top-level node should have no parent")
	}

	var keys []string
	for i, c := range tr.Node(roots[0]).Children() {
		n := tr.Node(c)
		keys = append(keys, n.Key())
		if p, ok := n.Parent(); !ok || p != roots[0] {
			t.Errorf("child %s has wrong parent", n.Key())
		}
		if n.Index() != i || n.Depth() != 1 {
			t.Errorf("child %s: index %d depth %d", n.Key(), n.Index(), n.Depth())
		}
	}
	if strings.Join(keys, ",") != "c,a,b" {
		t.Errorf("expected c,a,b, got %v", keys)
	}
}

func TestBuildRejectsUnsupportedValues(t *testing.T) {
	root := document.NewObject()
	inner := document.NewObject()
	inner.Set("bad", map[string]any{"x": 1})
	root.Set("P", inner)

	_, err := Build(root)
	if !errors.Is(err, ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}
	var se *ShapeError
	if !errors.As(err, &se) {
		t.Fatalf("expected *ShapeError, got %T", err)
	}
	if strings.Join(se.Path, "/") != "P/bad" {
		t.Errorf("expected path P/bad, got %v", se.Path)
	}
}

func TestBuildNilRoot(t *testing.T) {
	tr, err := Build(nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if tr.Len() != 0 || exportJSON(t, tr, ExportOptions{}) != "{}" {
		t.Error("expected empty tree")
	}
}

func TestScenarioCheckOneLeaf(t *testing.T) {
	tr := mustBuild(t, `{"P": {"a": 1, "b": 2}}`)

	if err := tr.Apply(mustFind(t, tr, "P", "a"), Checked); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if s := tr.Node(mustFind(t, tr, "P")).State(); s != PartiallyChecked {
		t.Errorf("expected P partial, got %s", s)
	}
	if got := exportJSON(t, tr, ExportOptions{}); got != `{"P":{"a":1}}` {
		t.Errorf("unexpected export %s", got)
	}
}

func TestScenarioCheckBranch(t *testing.T) {
	tr := mustBuild(t, `{"P": {"a": 1, "b": 2}}`)

	if err := tr.Apply(mustFind(t, tr, "P"), Checked); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	for _, k := range []string{"a", "b"} {
		if s := tr.Node(mustFind(t, tr, "P", k)).State(); s != Checked {
			t.Errorf("expected %s checked, got %s", k, s)
		}
	}
	if got := exportJSON(t, tr, ExportOptions{}); got != `{"P":{"a":1,"b":2}}` {
		t.Errorf("unexpected export %s", got)
	}
}

func TestScenarioCheckThenUncheck(t *testing.T) {
	tr := mustBuild(t, `{"P": {"a": 1, "b": 2}}`)
	a := mustFind(t, tr, "P", "a")

	if err := tr.Apply(a, Checked); err != nil {
		t.Fatal(err)
	}
	if err := tr.Apply(a, Unchecked); err != nil {
		t.Fatal(err)
	}

	if s := tr.Node(mustFind(t, tr, "P")).State(); s != Unchecked {
		t.Errorf("expected P unchecked, got %s", s)
	}
	if got := exportJSON(t, tr, ExportOptions{}); got != `{}` {
		t.Errorf("unexpected export %s", got)
	}
}

func TestScenarioGrandchild(t *testing.T) {
	tr := mustBuild(t, `{"A": {"x": 0, "B": {"y": 0, "C": {"leaf": "v", "other": "w"}}}}`)

	if err := tr.Apply(mustFind(t, tr, "A", "B", "C", "leaf"), Checked); err != nil {
		t.Fatal(err)
	}

	for _, path := range [][]string{{"A"}, {"A", "B"}, {"A", "B", "C"}} {
		if s := tr.Node(mustFind(t, tr, path...)).State(); s != PartiallyChecked {
			t.Errorf("%v: expected partial, got %s", path, s)
		}
	}
	if got := exportJSON(t, tr, ExportOptions{}); got != `{"A":{"B":{"C":{"leaf":"v"}}}}` {
		t.Errorf("unexpected export %s", got)
	}
	if err := tr.Verify(); err != nil {
		t.Error(err)
	}
}

func TestAggregateReachesTopWhenMiddleUnchanged(t *testing.T) {
	tr := mustBuild(t, `{"A": {"B": {"x": 1, "y": 2}, "z": 3}}`)

	steps := []struct {
		path []string
		want CheckState
	}{
		{[]string{"A", "z"}, PartiallyChecked},
		{[]string{"A", "B", "x"}, PartiallyChecked},
		{[]string{"A", "B", "y"}, Checked},
	}
	for _, s := range steps {
		if err := tr.Apply(mustFind(t, tr, s.path...), Checked); err != nil {
			t.Fatal(err)
		}
		if got := tr.Node(mustFind(t, tr, "A")).State(); got != s.want {
			t.Errorf("after %v: expected A %s, got %s", s.path, s.want, got)
		}
		if err := tr.Verify(); err != nil {
			t.Error(err)
		}
	}
}

func TestApplyRejectsPartialAndUnknown(t *testing.T) {
	tr := mustBuild(t, `{"P": {"a": 1}}`)

	if err := tr.Apply(mustFind(t, tr, "P"), PartiallyChecked); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
	if err := tr.Apply(NodeID(99), Checked); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("expected ErrUnknownNode, got %v", err)
	}
	if err := tr.SetAll(PartiallyChecked); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
	if _, err := tr.Toggle(NoNode); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("expected ErrUnknownNode, got %v", err)
	}
}

func TestToggle(t *testing.T) {
	tr := mustBuild(t, `{"P": {"a": 1, "b": 2}}`)
	p := mustFind(t, tr, "P")

	if err := tr.Apply(mustFind(t, tr, "P", "a"), Checked); err != nil {
		t.Fatal(err)
	}

	// A click on a partial branch checks the whole subtree.
	next, err := tr.Toggle(p)
	if err != nil || next != Checked {
		t.Fatalf("expected checked, got %s (%v)", next, err)
	}
	next, _ = tr.Toggle(p)
	if next != Unchecked || tr.Stats().CheckedLeaves != 0 {
		t.Errorf("expected everything unchecked, got %s", next)
	}
}

func TestEmptyContainers(t *testing.T) {
	tr := mustBuild(t, `{"E": {}, "L": [], "P": {"inner": {}}}`)

	if err := tr.Apply(mustFind(t, tr, "E"), Checked); err != nil {
		t.Fatal(err)
	}
	if err := tr.Apply(mustFind(t, tr, "P", "inner"), Checked); err != nil {
		t.Fatal(err)
	}

	if s := tr.Node(mustFind(t, tr, "P")).State(); s != Checked {
		t.Errorf("expected P checked through its only empty child, got %s", s)
	}
	if got := exportJSON(t, tr, ExportOptions{}); got != `{"E":{},"P":{"inner":{}}}` {
		t.Errorf("unexpected export %s", got)
	}
	if err := tr.Verify(); err != nil {
		t.Error(err)
	}
}

func TestExportPreservesArrays(t *testing.T) {
	tr := mustBuild(t, `{"L": ["a", "b", {"k": 1, "j": 2}, "d"]}`)

	for _, path := range [][]string{{"L", "Item 2"}, {"L", "Item 3", "j"}, {"L", "Item 4"}} {
		if err := tr.Apply(mustFind(t, tr, path...), Checked); err != nil {
			t.Fatal(err)
		}
	}

	if got := exportJSON(t, tr, ExportOptions{}); got != `{"L":["b",{"j":2},"d"]}` {
		t.Errorf("unexpected export %s", got)
	}
	want := `{"L":{"Item 2":"b","Item 3":{"j":2},"Item 4":"d"}}`
	if got := exportJSON(t, tr, ExportOptions{ArraysAsObjects: true}); got != want {
		t.Errorf("unexpected object export %s", got)
	}
}

func TestExportKeepsSeparatorInValues(t *testing.T) {
	tr := mustBuild(t, `{"P": {"url": "http://x: y", "flag": false, "n": null}}`)
	if err := tr.SetAll(Checked); err != nil {
		t.Fatal(err)
	}

	want := `{"P":{"url":"http://x: y","flag":false,"n":null}}`
	if got := exportJSON(t, tr, ExportOptions{}); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestSubscribeOneNotificationPerCall(t *testing.T) {
	tr := mustBuild(t, `{"A": {"B": {"x": 1, "y": 2}, "z": 3}}`)

	var changes []Change
	unsubscribe := tr.Subscribe(func(c Change) {
		if err := tr.Verify(); err != nil {
			t.Errorf("subscriber saw intermediate state: %v", err)
		}
		changes = append(changes, c)
	})

	a := mustFind(t, tr, "A")
	if err := tr.Apply(a, Checked); err != nil {
		t.Fatal(err)
	}
	if err := tr.Apply(a, Checked); err != nil {
		t.Fatal(err)
	}
	if err := tr.SetAll(Unchecked); err != nil {
		t.Fatal(err)
	}

	if len(changes) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(changes))
	}
	if changes[0].Origin != a || changes[0].Changed != 5 {
		t.Errorf("unexpected first change %+v", changes[0])
	}
	if changes[1].Changed != 0 {
		t.Errorf("repeated apply should change nothing, got %+v", changes[1])
	}
	if changes[2].Origin != NoNode || changes[2].Changed != 5 {
		t.Errorf("unexpected SetAll change %+v", changes[2])
	}

	unsubscribe()
	if _, err := tr.Toggle(a); err != nil {
		t.Fatal(err)
	}
	if len(changes) != 3 {
		t.Errorf("expected no notification after unsubscribe, got %d", len(changes))
	}
}

func TestSubscriberApplyIsDeferred(t *testing.T) {
	tr := mustBuild(t, `{"P": {"a": 1, "b": 2}}`)
	a := mustFind(t, tr, "P", "a")
	b := mustFind(t, tr, "P", "b")

	depth := 0
	var origins []NodeID
	tr.Subscribe(func(c Change) {
		depth++
		defer func() { depth-- }()
		if depth > 1 {
			t.Error("subscriber re-entered")
		}
		origins = append(origins, c.Origin)
		if c.Origin == a {
			if err := tr.Apply(b, Checked); err != nil {
				t.Error(err)
			}
			if tr.Node(b).State() != Unchecked {
				t.Error("nested apply ran before the notification round finished")
			}
		}
	})

	if err := tr.Apply(a, Checked); err != nil {
		t.Fatal(err)
	}

	if len(origins) != 2 || origins[0] != a || origins[1] != b {
		t.Errorf("unexpected notification order %v", origins)
	}
	if s := tr.Node(mustFind(t, tr, "P")).State(); s != Checked {
		t.Errorf("expected P checked, got %s", s)
	}
}

func TestLookupAndPath(t *testing.T) {
	tr := mustBuild(t, `{"Parent 1": {"children": {"Child 1.2": {"id": 3}}}}`)

	id, err := tr.Lookup("Parent 1/children/Child 1.2/id")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got := strings.Join(tr.Path(id), "/"); got != "Parent 1/children/Child 1.2/id" {
		t.Errorf("unexpected path %s", got)
	}

	if _, err := tr.Lookup("Parent 1/missing"); !errors.Is(err, ErrPathNotFound) {
		t.Errorf("expected ErrPathNotFound, got %v", err)
	}
	if _, err := tr.Lookup(""); !errors.Is(err, ErrPathNotFound) {
		t.Errorf("expected ErrPathNotFound for empty path, got %v", err)
	}
}

func TestStats(t *testing.T) {
	tr := mustBuild(t, `{"P": {"a": 1, "b": 2, "Q": {"c": 3}}, "r": 4}`)
	if err := tr.Apply(mustFind(t, tr, "P", "Q"), Checked); err != nil {
		t.Fatal(err)
	}

	s := tr.Stats()
	if s.Nodes != 6 || s.Branches != 2 || s.Leaves != 4 {
		t.Errorf("unexpected counts %+v", s)
	}
	if s.CheckedLeaves != 1 || s.PartialBranches != 1 || s.MaxDepth != 2 {
		t.Errorf("unexpected state counts %+v", s)
	}
	if s.Coverage() != 0.25 {
		t.Errorf("expected coverage 0.25, got %f", s.Coverage())
	}

	sub := tr.StatsOf(mustFind(t, tr, "P"))
	if sub.Leaves != 3 || sub.CheckedLeaves != 1 {
		t.Errorf("unexpected subtree stats %+v", sub)
	}
}

func TestWalkSkipsSubtree(t *testing.T) {
	tr := mustBuild(t, `{"P": {"a": 1}, "Q": {"b": 2}}`)

	var labels []string
	tr.Walk(func(n *Node) bool {
		labels = append(labels, n.Label())
		return n.Key() != "P"
	})
	if strings.Join(labels, "|") != "P (dict)|Q (dict)|b: 2" {
		t.Errorf("unexpected walk %v", labels)
	}
}

func TestBuildSourceScalars(t *testing.T) {
	tr := mustBuild(t, "released: 2024-01-01\nP:\n  d: 2024-01-01\n  n: 7\n")

	if got := tr.Node(mustFind(t, tr, "released")).Label(); got != "released: 2024-01-01" {
		t.Errorf("unexpected label %q", got)
	}
	if err := tr.Apply(mustFind(t, tr, "P", "d"), Checked); err != nil {
		t.Fatal(err)
	}
	if got := exportJSON(t, tr, ExportOptions{}); got != `{"P":{"d":"2024-01-01"}}` {
		t.Errorf("unexpected export %s", got)
	}
}

func TestExportKeepsJSONNumberSpelling(t *testing.T) {
	tr := mustBuild(t, `{"f": 1.0, "big": 18446744073709551616}`)

	if got := tr.Node(mustFind(t, tr, "f")).Label(); got != "f: 1.0" {
		t.Errorf("unexpected label %q", got)
	}
	if err := tr.SetAll(Checked); err != nil {
		t.Fatal(err)
	}
	out, err := document.EncodeJSON(tr.Export(ExportOptions{}), 0)
	if err != nil {
		t.Fatal(err)
	}
	if want := "{\n\"f\": 1.0,\n\"big\": 18446744073709551616\n}\n"; string(out) != want {
		t.Errorf("unexpected export %q", out)
	}
}
