// Package dnd resolves drag-and-drop gestures in the element tree outline
// into move_node operations.
package dnd

import (
	"fmt"
	"os"

	"github.com/Gaurav-Gosain/boardkit/internal/board"
	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/Gaurav-Gosain/boardkit/internal/geom"
	"github.com/Gaurav-Gosain/boardkit/internal/mind"
	"github.com/Gaurav-Gosain/boardkit/internal/nest"
	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "dnd",
})

func init() {
	logger.SetLevel(log.WarnLevel)
}

// SetLogLevel sets the log level for the dnd package.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}

// DefaultEdgeBand is the height of the before/after bands at the top and
// bottom of a drop target.
const DefaultEdgeBand = 10

// Position is where a drop lands relative to its target.
type Position int

const (
	Inside Position = iota
	Before
	After
)

func (p Position) String() string {
	switch p {
	case Before:
		return "before"
	case After:
		return "after"
	default:
		return "inside"
	}
}

// Drag describes a drag gesture: the dragged item's path, the path of the
// item under the pointer, the pointer and the target's screen rectangle.
type Drag struct {
	From    element.Path
	To      element.Path
	Pointer geom.Point
	Target  geom.Rect
}

// Drop is a resolved gesture. Path is the move_node destination in
// pre-removal coordinates and is only meaningful when OK is set.
type Drop struct {
	From     element.Path
	Path     element.Path
	Position Position
	OK       bool
}

// Resolver classifies drags with a configurable band height.
type Resolver struct {
	EdgeBand float64
}

// Classify maps the pointer to a position against target.
func (r Resolver) Classify(pointer geom.Point, target geom.Rect) Position {
	switch {
	case pointer.Y-target.Y < r.EdgeBand:
		return Before
	case target.Bottom()-pointer.Y < r.EdgeBand:
		return After
	default:
		return Inside
	}
}

// Resolve decides whether d is a legal drop and where it lands.
func Resolve(b *board.Board, d Drag) Drop {
	return Resolver{EdgeBand: DefaultEdgeBand}.Resolve(b, d)
}

// Resolve decides whether d is a legal drop and where it lands. Dropping an
// item onto itself or into its own subtree is refused by path prefix.
func (r Resolver) Resolve(b *board.Board, d Drag) Drop {
	drop := Drop{From: d.From.Clone(), Position: r.Classify(d.Pointer, d.Target)}
	if len(d.From) == 0 || len(d.To) == 0 || d.To.Equal(d.From) || d.From.IsAncestorOf(d.To) {
		logger.Debug("drop rejected, cycle", "from", d.From, "to", d.To)
		return drop
	}

	dragged, target := b.Node(d.From), b.Node(d.To)
	if dragged == nil || target == nil {
		return drop
	}

	if drop.Position == Inside {
		if !nest.CanNest(target, dragged) {
			logger.Debug("drop rejected by nesting rules", "from", d.From, "to", d.To)
			return drop
		}
		drop.Path = d.To.Child(len(target.Children))
		drop.OK = true
		return drop
	}

	parent, _ := b.Parent(d.To)
	if !nest.CanNest(parent, dragged) {
		logger.Debug("drop rejected by nesting rules", "from", d.From, "parent", d.To.Parent())
		return drop
	}

	// The root list and generic containers draw later children on top, so
	// "before" (above) is the next array slot. Mind children read top down.
	idx := d.To.Last()
	reversed := !parent.IsMindNode()
	if (drop.Position == Before) == reversed {
		idx++
	}
	drop.Path = d.To.Parent().Child(idx)

	if d.From.Parent().Equal(d.To.Parent()) && (idx == d.From.Last() || idx == d.From.Last()+1) {
		// lands where it already is
		return drop
	}
	drop.OK = true
	return drop
}

// Commit applies a resolved drop. When a mind-node is involved the trees on
// both ends are laid out again in the same batch.
func Commit(b *board.Board, drop Drop) error {
	if !drop.OK {
		return nil
	}
	dragged := b.Node(drop.From)
	if dragged == nil {
		return fmt.Errorf("drop %v: %w", drop.From, board.ErrPathNotFound)
	}

	involvesMind := dragged.IsMindNode()
	if p := drop.Path.Parent(); len(p) > 0 && b.Node(p).IsMindNode() {
		involvesMind = true
	}
	if involvesMind {
		return mind.MoveNode(b, drop.From, drop.Path)
	}
	return b.Apply(true, board.MoveNode(drop.From, drop.Path))
}

// BringToFront moves the element at path to the end of its list, which
// renders on top. It reports false when it is already there.
func BringToFront(b *board.Board, path element.Path) (bool, error) {
	total, err := siblingCount(b, path)
	if err != nil || path.Last() == total-1 {
		return false, err
	}
	return true, b.Apply(true, board.MoveNode(path, path.Parent().Child(total)))
}

// SendToBack moves the element at path to the front of its list.
func SendToBack(b *board.Board, path element.Path) (bool, error) {
	if _, err := siblingCount(b, path); err != nil || path.Last() == 0 {
		return false, err
	}
	return true, b.Apply(true, board.MoveNode(path, path.Parent().Child(0)))
}

func siblingCount(b *board.Board, path element.Path) (int, error) {
	if b.Node(path) == nil {
		return 0, fmt.Errorf("reorder %v: %w", path, board.ErrPathNotFound)
	}
	if len(path) == 1 {
		return len(b.Snapshot()), nil
	}
	return len(b.Node(path.Parent()).Children), nil
}
