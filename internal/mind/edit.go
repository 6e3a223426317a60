package mind

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Gaurav-Gosain/boardkit/internal/board"
	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/Gaurav-Gosain/boardkit/internal/geom"
	"github.com/charmbracelet/x/ansi"
)

// ErrNotMindNode is returned when an id does not name a mind-node.
var ErrNotMindNode = errors.New("not a mind-node")

// Node sizing for new nodes.
const (
	NodeHeight   = 48
	MinNodeWidth = 24
	CellWidth    = 8
	NodePaddingX = 12
)

// NearestThreshold is the largest edge distance at which a dragged node
// attaches to another node.
const NearestThreshold = 20

// NodeSize returns the size a node needs to show text on one line.
func NodeSize(text string) (w, h float64) {
	cells := ansi.StringWidth(text)
	if cells == 0 {
		return MinNodeWidth, NodeHeight
	}
	return math.Max(MinNodeWidth, float64(cells*CellWidth+2*NodePaddingX)), NodeHeight
}

func newNode(text string, level int, dir element.Direction) *element.Element {
	w, h := NodeSize(text)
	n := element.NewMindNode(text, 0, 0, w, h)
	n.Level = level
	n.Direction = dir
	return n
}

func mindAt(b *board.Board, id string) (*element.Element, element.Path, error) {
	path, ok := b.PathOf(id)
	if !ok {
		return nil, nil, fmt.Errorf("mind node %s: %w", id, board.ErrPathNotFound)
	}
	n := b.Node(path)
	if !n.IsMindNode() {
		return nil, nil, fmt.Errorf("element %s: %w", id, ErrNotMindNode)
	}
	return n, path, nil
}

func indexOf(list []*element.Element, id string) int {
	for i, c := range list {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// childDirection is the side a new child of parent grows towards.
func childDirection(parent *element.Element) element.Direction {
	if parent.Level <= 1 || parent.Direction == "" {
		return element.DirectionRight
	}
	return parent.Direction
}

func (t *batch) insertChild(parent *element.Element, path element.Path, idx int, child *element.Element) (string, error) {
	if err := t.apply(board.InsertNode(path.Child(idx), child)); err != nil {
		return "", err
	}
	t.relayout(parent.ID)
	if err := t.commit(); err != nil {
		return "", err
	}
	return child.ID, nil
}

// AddChild appends a new child with text under parentID and returns its id.
func AddChild(b *board.Board, parentID, text string) (string, error) {
	parent, path, err := mindAt(b, parentID)
	if err != nil {
		return "", err
	}
	child := newNode(text, parent.Level+1, childDirection(parent))
	return newBatch(b).insertChild(parent, path, len(parent.Children), child)
}

// AddChildBefore inserts a new child in front of beforeID, or first when
// beforeID is not one of parentID's children. The child takes the side of
// the node it is placed before.
func AddChildBefore(b *board.Board, parentID, beforeID, text string) (string, error) {
	parent, path, err := mindAt(b, parentID)
	if err != nil {
		return "", err
	}
	dir := childDirection(parent)
	idx := indexOf(parent.Children, beforeID)
	if idx < 0 {
		idx = 0
	} else {
		dir = parent.Children[idx].Direction
	}
	return newBatch(b).insertChild(parent, path, idx, newNode(text, parent.Level+1, dir))
}

// AddSibling inserts a new node right after nodeID on the same side. A root
// has no siblings, so nothing is added and the returned id is empty.
func AddSibling(b *board.Board, nodeID, text string) (string, error) {
	node, path, err := mindAt(b, nodeID)
	if err != nil {
		return "", err
	}
	if len(path) < 2 {
		return "", nil
	}
	parent := b.Node(path.Parent())
	if !parent.IsMindNode() {
		return "", nil
	}
	sib := newNode(text, node.Level, node.Direction)
	return newBatch(b).insertChild(parent, path.Parent(), path.Last()+1, sib)
}

// DeleteNodes removes the given mind-nodes with their subtrees and lays out
// the trees they belonged to. Deleting a root removes the whole tree.
func DeleteNodes(b *board.Board, ids ...string) error {
	t := newBatch(b)
	var paths []element.Path
	for _, id := range ids {
		_, path, err := mindAt(b, id)
		if err != nil {
			return err
		}
		paths = append(paths, path)
		if root, _, ok := RootOf(b, id); ok && root.ID != id {
			t.relayout(root.ID)
		}
	}

	// Deepest and last first, so earlier removals never shift later paths.
	sort.Slice(paths, func(i, j int) bool { return pathLess(paths[j], paths[i]) })
	var ops []board.Operation
	for i, p := range paths {
		covered := false
		for _, q := range paths[i+1:] {
			if q.IsAncestorOf(p) || q.Equal(p) {
				covered = true
				break
			}
		}
		if !covered {
			ops = append(ops, board.RemoveNode(p, b.Node(p)))
		}
	}
	if err := t.apply(ops...); err != nil {
		return err
	}
	return t.commit()
}

func pathLess(a, b element.Path) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// MoveUp swaps nodeID with its previous sibling. It reports false when the
// node is first or is a root.
func MoveUp(b *board.Board, nodeID string) (bool, error) {
	_, path, err := mindAt(b, nodeID)
	if err != nil {
		return false, err
	}
	if len(path) < 2 || path.Last() == 0 {
		return false, nil
	}
	return true, MoveNode(b, path, path.Previous())
}

// MoveDown swaps nodeID with its next sibling.
func MoveDown(b *board.Board, nodeID string) (bool, error) {
	_, path, err := mindAt(b, nodeID)
	if err != nil {
		return false, err
	}
	if len(path) < 2 {
		return false, nil
	}
	siblings := b.Node(path.Parent()).Children
	if path.Last() >= len(siblings)-1 {
		return false, nil
	}
	// the target is in pre-removal coordinates: two past the current slot
	return true, MoveNode(b, path, path.Parent().Child(path.Last()+2))
}

// ToggleFold flips the fold flag of nodeID on the given side.
func ToggleFold(b *board.Board, nodeID string, side element.Direction) error {
	node, path, err := mindAt(b, nodeID)
	if err != nil {
		return err
	}
	key, cur := "isRightFold", node.RightFold
	if side == element.DirectionLeft {
		key, cur = "isLeftFold", node.LeftFold
	}

	t := newBatch(b)
	if err := t.apply(board.SetNode(path, element.Properties{key: cur}, element.Properties{key: !cur})); err != nil {
		return err
	}
	t.relayout(nodeID)
	return t.commit()
}

// SetText changes a node's text, resizes it and re-lays out its tree.
func SetText(b *board.Board, nodeID, text string) error {
	node, path, err := mindAt(b, nodeID)
	if err != nil {
		return err
	}
	w, h := NodeSize(text)
	t := newBatch(b)
	op := board.SetNode(path, node.Get("text", "width", "height"), element.Properties{"text": text, "width": w, "height": h})
	if err := t.apply(op); err != nil {
		return err
	}
	t.relayout(nodeID)
	return t.commit()
}

// NewRoot adds a new single-node mind tree at (x, y) and returns its id.
func NewRoot(b *board.Board, x, y float64, text string) (string, error) {
	n := newNode(text, 1, element.DirectionRight)
	n.X, n.Y = x, y
	n = Layout(n)
	if err := b.Apply(true, board.InsertNode(element.Path{len(b.Snapshot())}, n)); err != nil {
		return "", err
	}
	return n.ID, nil
}

// Target is an attachment point found by NearestNode.
type Target struct {
	ParentID  string
	Index     int
	Direction element.Direction
}

// edgeDistance is the horizontal gap between dragged and the side of
// candidate it would attach to. Outside candidate's vertical range (with a
// 10px allowance) the distance is infinite.
func edgeDistance(dragged, candidate *element.Element) (float64, element.Direction) {
	midY := dragged.Y + dragged.Height/2
	cMid := candidate.Y + candidate.Height/2
	span := math.Max(candidate.ActualHeight, candidate.Height)
	if midY < cMid-span/2-10 || midY > cMid+span/2+10 {
		return math.Inf(1), element.DirectionRight
	}

	right := math.Abs(dragged.X - (candidate.X + candidate.Width))
	left := math.Abs(dragged.X + dragged.Width - candidate.X)
	if candidate.Level <= 1 {
		if right <= left {
			return right, element.DirectionRight
		}
		return left, element.DirectionLeft
	}
	if candidate.Direction == element.DirectionLeft {
		return left, element.DirectionLeft
	}
	return right, element.DirectionRight
}

// NearestNode finds the mind-node that dragged (at its current rect) would
// attach to, and the child slot under it picked by the pointer's height.
// The dragged node and its descendants are never candidates.
func NearestNode(b *board.Board, dragged *element.Element, pointer geom.Point) (Target, bool) {
	var best *element.Element
	bestDist := math.Inf(1)
	bestDir := element.DirectionRight

	b.Walk(func(_ element.Path, el *element.Element) bool {
		if !el.IsMindNode() || el.ID == dragged.ID || IsDescendant(dragged, el.ID) {
			return true
		}
		if d, dir := edgeDistance(dragged, el); d < bestDist {
			best, bestDist, bestDir = el, d, dir
		}
		return true
	})
	if best == nil || bestDist > NearestThreshold {
		return Target{}, false
	}
	return insertPosition(best, pointer, bestDir), true
}

func insertPosition(parent *element.Element, pointer geom.Point, dir element.Direction) Target {
	t := Target{ParentID: parent.ID, Direction: dir, Index: len(parent.Children)}
	if len(parent.Children) == 0 {
		t.Index = 0
		return t
	}

	last := -1
	for i, c := range parent.Children {
		if c.Direction != dir {
			continue
		}
		if pointer.Y < c.Y+c.Height/2 {
			t.Index = i
			return t
		}
		last = i
	}
	if last >= 0 {
		t.Index = last + 1
	}
	return t
}

// Attach moves nodeID under target.ParentID at target.Index, switching it
// to target.Direction, and lays out both trees.
func Attach(b *board.Board, nodeID string, target Target) error {
	node, from, err := mindAt(b, nodeID)
	if err != nil {
		return err
	}
	_, parentPath, err := mindAt(b, target.ParentID)
	if err != nil {
		return err
	}
	if node.ID == target.ParentID || IsDescendant(node, target.ParentID) {
		return nil
	}

	t := newBatch(b)
	if src, _, ok := RootOf(b, nodeID); ok && src.ID != nodeID {
		t.relayout(src.ID)
	}
	if err := t.apply(board.MoveNode(from, parentPath.Child(target.Index))); err != nil {
		return err
	}
	if moved, ok := t.scratch.PathOf(nodeID); ok && node.Direction != target.Direction {
		prev := element.Properties{"direction": string(node.Direction)}
		if err := t.apply(board.SetNode(moved, prev, element.Properties{"direction": string(target.Direction)})); err != nil {
			return err
		}
	}
	t.relayout(nodeID)
	return t.commit()
}

// Detach turns nodeID into the root of a new tree placed at (x, y).
func Detach(b *board.Board, nodeID string, x, y float64) error {
	node, from, err := mindAt(b, nodeID)
	if err != nil {
		return err
	}
	if len(from) == 1 {
		return nil
	}

	t := newBatch(b)
	if src, _, ok := RootOf(b, nodeID); ok {
		t.relayout(src.ID)
	}
	end := element.Path{len(b.Snapshot())}
	if err := t.apply(board.MoveNode(from, end)); err != nil {
		return err
	}
	if moved, ok := t.scratch.PathOf(nodeID); ok {
		prev := node.Get("x", "y", "direction")
		next := element.Properties{"x": x, "y": y, "direction": string(element.DirectionRight)}
		if err := t.apply(board.SetNode(moved, prev, next)); err != nil {
			return err
		}
	}
	t.relayout(nodeID)
	return t.commit()
}
