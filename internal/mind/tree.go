package mind

import (
	"fmt"
	"os"

	"github.com/Gaurav-Gosain/boardkit/internal/board"
	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "mind",
})

func init() {
	logger.SetLevel(log.WarnLevel)
}

// SetLogLevel sets the log level for the mind package.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}

// layoutKeys are the fields Layout may change.
var layoutKeys = []string{
	"x", "y", "level", "direction",
	"actualHeight", "childrenHeight", "leftChildrenHeight", "rightChildrenHeight",
}

// GetRoot walks up from the mind-node at path while the parent is a
// mind-node and returns the root's path.
func GetRoot(b *board.Board, path element.Path) (element.Path, bool) {
	if !b.Node(path).IsMindNode() {
		return nil, false
	}
	p := path.Clone()
	for len(p) > 1 && b.Node(p.Parent()).IsMindNode() {
		p = p.Parent()
	}
	return p, true
}

// RootOf resolves the root of the tree holding the mind-node id.
func RootOf(b *board.Board, id string) (*element.Element, element.Path, bool) {
	path, ok := b.PathOf(id)
	if !ok {
		return nil, nil, false
	}
	root, ok := GetRoot(b, path)
	if !ok {
		return nil, nil, false
	}
	return b.Node(root), root, true
}

// IsDescendant reports whether id sits strictly below ancestor.
func IsDescendant(ancestor *element.Element, id string) bool {
	for _, c := range ancestor.Children {
		if c.ID == id || IsDescendant(c, id) {
			return true
		}
	}
	return false
}

// diffOps emits a set_node for every node whose layout fields differ
// between before and after. Both trees must have the same shape.
func diffOps(before, after *element.Element, path element.Path) []board.Operation {
	var ops []board.Operation
	prev := before.Get(layoutKeys...)
	next := after.Get(layoutKeys...)
	changed := element.Properties{}
	old := element.Properties{}
	for _, k := range layoutKeys {
		if prev[k] != next[k] {
			changed[k] = next[k]
			old[k] = prev[k]
		}
	}
	if len(changed) > 0 {
		ops = append(ops, board.SetNode(path, old, changed))
	}
	for i := range before.Children {
		ops = append(ops, diffOps(before.Children[i], after.Children[i], path.Child(i))...)
	}
	return ops
}

// relayoutOps lays out the trees holding the given node ids. Each id is
// resolved to its current root, so passing any member of a tree works.
// Every tree is laid out once.
func relayoutOps(b *board.Board, ids ...string) []board.Operation {
	var ops []board.Operation
	seen := map[string]bool{}
	for _, id := range ids {
		root, path, ok := RootOf(b, id)
		if !ok || seen[root.ID] {
			continue
		}
		seen[root.ID] = true

		r := root.Clone()
		r.Level = 1
		if r.Direction == "" {
			r.Direction = element.DirectionRight
		}
		ops = append(ops, diffOps(root, Layout(r), path)...)
	}
	return ops
}

// RelayoutRoots lays out the mind trees containing the given ids and
// commits the position changes as one batch.
func RelayoutRoots(b *board.Board, ids ...string) error {
	ops := relayoutOps(b, ids...)
	if len(ops) == 0 {
		return nil
	}
	logger.Debug("relayout", "roots", ids, "ops", len(ops))
	return b.Apply(true, ops...)
}

// RelayoutAll lays out every mind tree on the board. Mind roots only live
// in the top-level list.
func RelayoutAll(b *board.Board) error {
	var ids []string
	for _, el := range b.Snapshot() {
		if el.IsMindNode() {
			ids = append(ids, el.ID)
		}
	}
	return RelayoutRoots(b, ids...)
}

// batch stages structural edits on a scratch copy of the board so the
// layout that follows them can be computed before anything is committed.
// The edits and the layout land on the real board in one Apply.
type batch struct {
	b       *board.Board
	scratch *board.Board
	ops     []board.Operation
	roots   []string
}

func newBatch(b *board.Board) *batch {
	return &batch{
		b:       b,
		scratch: board.New(board.Options{Children: b.Snapshot()}),
	}
}

func (t *batch) apply(ops ...board.Operation) error {
	if err := t.scratch.Apply(false, ops...); err != nil {
		return err
	}
	t.ops = append(t.ops, ops...)
	return nil
}

func (t *batch) relayout(ids ...string) {
	t.roots = append(t.roots, ids...)
}

func (t *batch) commit() error {
	ops := append(t.ops, relayoutOps(t.scratch, t.roots...)...)
	if len(ops) == 0 {
		return nil
	}
	return t.b.Apply(true, ops...)
}

// MoveNode moves the mind-node at from to the pre-removal path to and lays
// out every tree the move touched. The source root is captured before the
// move and the destination root is resolved after it.
func MoveNode(b *board.Board, from, to element.Path) error {
	node := b.Node(from)
	if node == nil {
		return fmt.Errorf("mind move %v: %w", from, board.ErrPathNotFound)
	}

	t := newBatch(b)
	if src, _, ok := RootOf(b, node.ID); ok && src.ID != node.ID {
		t.relayout(src.ID)
	}
	if err := t.apply(board.MoveNode(from, to)); err != nil {
		return err
	}
	t.relayout(node.ID)
	return t.commit()
}
