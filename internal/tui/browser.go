package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/checktree/internal/document"
	"github.com/san-kum/checktree/internal/logging"
	"github.com/san-kum/checktree/internal/tree"
)

// Options configures a Browser.
type Options struct {
	// Source names the loaded document in the header.
	Source string
	Theme  string
	// ExpandDepth opens branches shallower than this depth on start.
	ExpandDepth int
	Export      tree.ExportOptions
	Format      string
	Indent      int
	// Save persists an encoded export and returns its id. Saving is
	// disabled when nil.
	Save   func(payload []byte) (string, error)
	Logger *slog.Logger
}

// Browser is the interactive tree view. It forwards toggles to the tree
// and redraws once per tree notification.
type Browser struct {
	tree   *tree.Tree
	opts   Options
	styles styles
	log    *slog.Logger

	expanded map[tree.NodeID]bool
	visible  []tree.NodeID
	cursor   int
	offset   int

	pane      viewport.Model
	showPane  bool
	focusPane bool
	exported  []byte

	status  string
	failed  bool
	redraws int

	width  int
	height int

	unsubscribe func()
}

func NewBrowser(t *tree.Tree, opts Options) *Browser {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Format == "" {
		opts.Format = document.FormatJSON
	}

	b := &Browser{
		tree:     t,
		opts:     opts,
		styles:   newStyles(GetTheme(opts.Theme)),
		log:      opts.Logger,
		expanded: make(map[tree.NodeID]bool),
		pane:     viewport.New(80, 10),
		width:    80,
		height:   24,
	}
	t.Walk(func(n *tree.Node) bool {
		if n.Kind() == tree.Branch && n.Depth() < opts.ExpandDepth {
			b.expanded[n.ID()] = true
		}
		return true
	})
	b.unsubscribe = t.Subscribe(b.treeChanged)
	b.rebuildVisible()
	return b
}

func (b *Browser) treeChanged(c tree.Change) {
	b.redraws++
	b.log.Debug("redraw", "origin", c.Origin, "changed", c.Changed)
	if b.showPane {
		b.refreshExport()
	}
}

// Exported returns the most recent export, or nil if none was made.
func (b *Browser) Exported() []byte { return b.exported }

// Redraws counts tree notifications received.
func (b *Browser) Redraws() int { return b.redraws }

// Close detaches the browser from its tree.
func (b *Browser) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
}

func (b *Browser) Init() tea.Cmd { return nil }

func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.layout()
		return b, nil
	case tea.KeyMsg:
		if b.focusPane {
			switch msg.String() {
			case "tab", "esc", "q", "ctrl+c":
			default:
				var cmd tea.Cmd
				b.pane, cmd = b.pane.Update(msg)
				return b, cmd
			}
		}
		return b.handleKey(msg)
	}
	return b, nil
}

func (b *Browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		b.Close()
		return b, tea.Quit
	case "up", "k":
		b.move(-1)
	case "down", "j":
		b.move(1)
	case "pgup":
		b.move(-b.treeHeight())
	case "pgdown":
		b.move(b.treeHeight())
	case "home", "g":
		b.move(-len(b.visible))
	case "end", "G":
		b.move(len(b.visible))
	case " ", "x":
		b.toggleCurrent()
	case "right", "l":
		b.expandCurrent()
	case "left", "h":
		b.collapseCurrent()
	case "enter":
		if n := b.current(); n != nil {
			if len(n.Children()) == 0 {
				b.toggleCurrent()
			} else {
				b.setExpanded(n.ID(), !b.expanded[n.ID()])
			}
		}
	case "E":
		b.expandAll(true)
	case "C":
		b.expandAll(false)
	case "a":
		b.setAll(tree.Checked)
	case "n":
		b.setAll(tree.Unchecked)
	case "e":
		b.showPane = !b.showPane
		b.focusPane = false
		if b.showPane {
			b.refreshExport()
		}
		b.layout()
	case "tab":
		if b.showPane {
			b.focusPane = !b.focusPane
		}
	case "esc":
		b.focusPane = false
	case "s":
		b.save()
	}
	return b, nil
}

func (b *Browser) current() *tree.Node {
	if b.cursor < 0 || b.cursor >= len(b.visible) {
		return nil
	}
	return b.tree.Node(b.visible[b.cursor])
}

func (b *Browser) move(delta int) {
	b.cursor += delta
	if b.cursor >= len(b.visible) {
		b.cursor = len(b.visible) - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}
	b.scrollToCursor()
}

func (b *Browser) toggleCurrent() {
	n := b.current()
	if n == nil {
		return
	}
	state, err := b.tree.Toggle(n.ID())
	if err != nil {
		b.setStatus(err.Error(), true)
		return
	}
	b.setStatus(fmt.Sprintf("%s → %s", n.Key(), state), false)
}

func (b *Browser) setAll(state tree.CheckState) {
	if err := b.tree.SetAll(state); err != nil {
		b.setStatus(err.Error(), true)
		return
	}
	b.setStatus("all "+state.String(), false)
}

func (b *Browser) expandCurrent() {
	n := b.current()
	if n == nil || len(n.Children()) == 0 {
		return
	}
	if b.expanded[n.ID()] {
		b.move(1)
		return
	}
	b.setExpanded(n.ID(), true)
}

func (b *Browser) collapseCurrent() {
	n := b.current()
	if n == nil {
		return
	}
	if len(n.Children()) > 0 && b.expanded[n.ID()] {
		b.setExpanded(n.ID(), false)
		return
	}
	if p, ok := n.Parent(); ok {
		b.focus(p)
	}
}

func (b *Browser) setExpanded(id tree.NodeID, open bool) {
	if open {
		b.expanded[id] = true
	} else {
		delete(b.expanded, id)
	}
	b.rebuildVisible()
	b.focus(id)
}

func (b *Browser) expandAll(open bool) {
	var keep tree.NodeID = tree.NoNode
	if n := b.current(); n != nil {
		keep = n.ID()
		if !open {
			// Collapsing everything hides the cursor; land on its top-level node.
			path := b.tree.Path(keep)
			keep, _ = b.tree.Find(path[0])
		}
	}
	b.expanded = make(map[tree.NodeID]bool)
	if open {
		b.tree.Walk(func(n *tree.Node) bool {
			if len(n.Children()) > 0 {
				b.expanded[n.ID()] = true
			}
			return true
		})
	}
	b.rebuildVisible()
	b.focus(keep)
}

// focus moves the cursor to id if it is visible.
func (b *Browser) focus(id tree.NodeID) {
	for i, v := range b.visible {
		if v == id {
			b.cursor = i
			b.scrollToCursor()
			return
		}
	}
	b.move(0)
}

func (b *Browser) rebuildVisible() {
	b.visible = b.visible[:0]
	b.tree.Walk(func(n *tree.Node) bool {
		b.visible = append(b.visible, n.ID())
		return b.expanded[n.ID()]
	})
}

func (b *Browser) refreshExport() {
	doc := b.tree.Export(b.opts.Export)
	data, err := document.Encode(doc, b.opts.Format, b.opts.Indent)
	if err != nil {
		b.setStatus("export failed: "+err.Error(), true)
		return
	}
	b.exported = data
	b.pane.SetContent(string(data))
}

func (b *Browser) save() {
	if b.opts.Save == nil {
		b.setStatus("saving is disabled", true)
		return
	}
	b.refreshExport()
	id, err := b.opts.Save(b.exported)
	if err != nil {
		b.log.Error("save failed", "error", err)
		b.setStatus("save failed: "+err.Error(), true)
		return
	}
	b.log.Info("export saved", "id", id)
	b.setStatus("saved "+id, false)
}

func (b *Browser) setStatus(s string, failed bool) {
	b.status = s
	b.failed = failed
}

func (b *Browser) layout() {
	w := b.width - 4
	if w < 20 {
		w = 20
	}
	b.pane.Width = w
	b.pane.Height = b.paneHeight()
	b.scrollToCursor()
}

func (b *Browser) paneHeight() int {
	if !b.showPane {
		return 0
	}
	h := (b.height - 6) / 2
	if h < 3 {
		h = 3
	}
	return h
}

// treeHeight is the number of tree rows that fit between header, pane and
// footer.
func (b *Browser) treeHeight() int {
	h := b.height - 5
	if b.showPane {
		h -= b.paneHeight() + 4
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (b *Browser) scrollToCursor() {
	h := b.treeHeight()
	if b.cursor < b.offset {
		b.offset = b.cursor
	}
	if b.cursor >= b.offset+h {
		b.offset = b.cursor - h + 1
	}
	if b.offset < 0 {
		b.offset = 0
	}
}

func (b *Browser) View() string {
	var out strings.Builder
	st := b.styles

	stats := b.tree.Stats()
	source := b.opts.Source
	if source == "" {
		source = "sample"
	}
	out.WriteString("\n  " + st.title.Render("checktree") + "  " + st.muted.Render(source) + "  " +
		st.muted.Render(fmt.Sprintf("%d/%d leaves checked", stats.CheckedLeaves, stats.Leaves)) + "\n\n")

	end := b.offset + b.treeHeight()
	if end > len(b.visible) {
		end = len(b.visible)
	}
	for i := b.offset; i < end; i++ {
		id := b.visible[i]
		out.WriteString(st.row(b.tree.Node(id), b.expanded[id], i == b.cursor))
		out.WriteString("\n")
	}
	if len(b.visible) == 0 {
		out.WriteString(st.muted.Render("  (empty document)") + "\n")
	}

	if b.showPane {
		title := "export (" + b.opts.Format + ")"
		if b.focusPane {
			title += "  ↑↓ scroll  tab back"
		}
		out.WriteString("\n  " + st.title.Render(title) + "\n")
		out.WriteString(st.pane.Render(b.pane.View()) + "\n")
	}

	out.WriteString("\n")
	if b.status != "" {
		if b.failed {
			out.WriteString("  " + st.errText.Render(b.status) + "\n")
		} else {
			out.WriteString("  " + st.muted.Render(b.status) + "\n")
		}
	}
	out.WriteString(st.hint.Render("  ↑↓ move  space toggle  ←→ fold  a all  n none  e export  s save  q quit") + "\n")
	return out.String()
}

// Run starts the browser on the terminal and blocks until the user quits.
// It returns the last export made during the session, if any.
func Run(t *tree.Tree, opts Options) ([]byte, error) {
	b := NewBrowser(t, opts)
	defer b.Close()

	p := tea.NewProgram(b, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return nil, err
	}
	return b.Exported(), nil
}
