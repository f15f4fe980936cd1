package tree_test

import (
	"fmt"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/checktree/internal/document"
	"github.com/san-kum/checktree/internal/tree"
)

// randomDocument builds a nested document with up to maxDepth levels of
// objects and arrays.
func randomDocument(r *rand.Rand, maxDepth int) *document.Object {
	obj := document.NewObject()
	for i, n := 0, 1+r.Intn(4); i < n; i++ {
		obj.Set(fmt.Sprintf("k%d", i), randomValue(r, maxDepth-1))
	}
	return obj
}

func randomValue(r *rand.Rand, depth int) any {
	if depth <= 0 {
		return randomScalar(r)
	}
	switch r.Intn(4) {
	case 0:
		return randomDocument(r, depth)
	case 1:
		arr := document.Array{}
		for i, n := 0, r.Intn(4); i < n; i++ {
			arr = append(arr, randomValue(r, depth-1))
		}
		return arr
	}
	return randomScalar(r)
}

func randomScalar(r *rand.Rand) any {
	switch r.Intn(4) {
	case 0:
		return int64(r.Intn(100))
	case 1:
		return r.Intn(2) == 0
	case 2:
		return nil
	}
	return fmt.Sprintf("v: %d", r.Intn(100))
}

func allIDs(t *tree.Tree) []tree.NodeID {
	ids := make([]tree.NodeID, 0, t.Len())
	t.Walk(func(n *tree.Node) bool {
		ids = append(ids, n.ID())
		return true
	})
	return ids
}

func states(t *tree.Tree) map[tree.NodeID]tree.CheckState {
	out := make(map[tree.NodeID]tree.CheckState, t.Len())
	t.Walk(func(n *tree.Node) bool {
		out[n.ID()] = n.State()
		return true
	})
	return out
}

func descendants(t *tree.Tree, id tree.NodeID) []tree.NodeID {
	var out []tree.NodeID
	for _, c := range t.Node(id).Children() {
		out = append(out, c)
		out = append(out, descendants(t, c)...)
	}
	return out
}

// lookup follows keys through an exported document built with
// ArraysAsObjects, where every level is an object.
func lookup(doc *document.Object, keys []string) (any, bool) {
	var cur any = doc
	for _, k := range keys {
		obj, ok := cur.(*document.Object)
		if !ok {
			return nil, false
		}
		if cur, ok = obj.Get(k); !ok {
			return nil, false
		}
	}
	return cur, true
}

var _ = Describe("check state propagation", func() {
	var (
		r  *rand.Rand
		tr *tree.Tree
	)

	randomApply := func() (tree.NodeID, tree.CheckState) {
		ids := allIDs(tr)
		id := ids[r.Intn(len(ids))]
		state := tree.Checked
		if r.Intn(2) == 0 {
			state = tree.Unchecked
		}
		Expect(tr.Apply(id, state)).To(Succeed())
		return id, state
	}

	for seed := int64(1); seed <= 25; seed++ {
		seed := seed

		Context(fmt.Sprintf("random tree %d", seed), func() {
			BeforeEach(func() {
				r = rand.New(rand.NewSource(seed))
				var err error
				tr, err = tree.Build(randomDocument(r, 4))
				Expect(err).NotTo(HaveOccurred())
			})

			It("keeps every branch consistent with its children", func() {
				for i := 0; i < 40; i++ {
					randomApply()
					Expect(tr.Verify()).To(Succeed())
				}
			})

			It("forces the whole subtree to the applied state", func() {
				for i := 0; i < 20; i++ {
					id, state := randomApply()
					for _, d := range descendants(tr, id) {
						Expect(tr.Node(d).State()).To(Equal(state))
					}
				}
			})

			It("changes nothing when a node is re-applied with its own state", func() {
				for i := 0; i < 10; i++ {
					randomApply()
				}
				for _, id := range allIDs(tr) {
					s := tr.Node(id).State()
					if s == tree.PartiallyChecked {
						continue
					}
					before := states(tr)
					Expect(tr.Apply(id, s)).To(Succeed())
					Expect(states(tr)).To(Equal(before))
				}
			})

			It("exports every checked leaf and no unchecked leaf", func() {
				for i := 0; i < 15; i++ {
					randomApply()
				}
				doc := tr.Export(tree.ExportOptions{ArraysAsObjects: true})
				tr.Walk(func(n *tree.Node) bool {
					if !n.IsLeaf() {
						return true
					}
					v, found := lookup(doc, tr.Path(n.ID()))
					if n.State() == tree.Checked {
						Expect(found).To(BeTrue(), "checked leaf %v missing", tr.Path(n.ID()))
						if n.Value() == nil {
							Expect(v).To(BeNil())
						} else {
							Expect(v).To(Equal(n.Value()))
						}
					} else {
						Expect(found).To(BeFalse(), "unchecked leaf %v exported", tr.Path(n.ID()))
					}
					return true
				})
			})

			It("exports nothing once everything is cleared", func() {
				for i := 0; i < 10; i++ {
					randomApply()
				}
				Expect(tr.SetAll(tree.Unchecked)).To(Succeed())
				Expect(tr.Export(tree.ExportOptions{}).Len()).To(BeZero())
			})
		})
	}
})
