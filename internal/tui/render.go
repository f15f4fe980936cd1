package tui

import (
	"strings"

	"github.com/san-kum/checktree/internal/tree"
)

// Checkbox returns the plain glyph for a check state.
func Checkbox(s tree.CheckState) string {
	switch s {
	case tree.Checked:
		return "[x]"
	case tree.PartiallyChecked:
		return "[-]"
	}
	return "[ ]"
}

func (st styles) checkbox(s tree.CheckState) string {
	switch s {
	case tree.Checked:
		return st.checked.Render(Checkbox(s))
	case tree.PartiallyChecked:
		return st.partial.Render(Checkbox(s))
	}
	return st.unchecked.Render(Checkbox(s))
}

// row renders one node. expanded only matters for branches with children.
func (st styles) row(n *tree.Node, expanded, selected bool) string {
	var b strings.Builder

	if selected {
		b.WriteString(st.cursor.Render("› "))
	} else {
		b.WriteString("  ")
	}
	b.WriteString(strings.Repeat("  ", n.Depth()))

	switch {
	case len(n.Children()) == 0:
		b.WriteString("  ")
	case expanded:
		b.WriteString(st.arrow.Render("▾ "))
	default:
		b.WriteString(st.arrow.Render("▸ "))
	}

	b.WriteString(st.checkbox(n.State()))
	b.WriteString(" ")
	if selected {
		b.WriteString(st.cursor.Render(n.Label()))
	} else {
		b.WriteString(st.label.Render(n.Label()))
	}
	return b.String()
}

// Render draws the whole tree fully expanded, one node per line.
func Render(t *tree.Tree, th Theme) string {
	st := newStyles(th)
	var b strings.Builder
	t.Walk(func(n *tree.Node) bool {
		b.WriteString(st.row(n, true, false))
		b.WriteString("\n")
		return true
	})
	return b.String()
}
