// Package frame keeps frame containers enclosing their children: auto-grow
// and fit-to-contents bounds, cascading moves, unwrapping, wrapping and
// drag-driven reparenting.
package frame

import (
	"errors"
	"fmt"
	"math"

	"github.com/Gaurav-Gosain/boardkit/internal/board"
	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/Gaurav-Gosain/boardkit/internal/geom"
	"github.com/Gaurav-Gosain/boardkit/internal/nest"
)

// ErrNotFrame is returned when a path does not address a frame.
var ErrNotFrame = errors.New("not a frame")

// Defaults are applied to frames created by WrapSelection.
type Defaults struct {
	Padding           float64
	MinWidth          float64
	MinHeight         float64
	ContainmentPolicy element.Policy
	RemovalPolicy     element.Policy
	AutoResize        bool
}

// DefaultDefaults mirrors element.NewFrame.
func DefaultDefaults() Defaults {
	return Defaults{
		Padding:           element.DefaultFramePadding,
		MinWidth:          element.DefaultFrameMinWidth,
		MinHeight:         element.DefaultFrameMinHeight,
		ContainmentPolicy: element.PolicyPartial,
		RemovalPolicy:     element.PolicyPartial,
		AutoResize:        true,
	}
}

// New creates a frame using d.
func (d Defaults) New(name string, r geom.Rect) *element.Element {
	f := element.NewFrame(name, r)
	f.Padding = d.Padding
	f.MinWidth = d.MinWidth
	f.MinHeight = d.MinHeight
	f.ContainmentPolicy = d.ContainmentPolicy
	f.RemovalPolicy = d.RemovalPolicy
	f.AutoResize = d.AutoResize
	return f
}

func childrenBox(children []*element.Element) (geom.Rect, bool) {
	rects := make([]geom.Rect, 0, len(children))
	for _, c := range children {
		rects = append(rects, c.Bounds())
	}
	return geom.UnionAll(rects)
}

func floorSize(r geom.Rect, f *element.Element) geom.Rect {
	r.Width = math.Max(f.MinWidth, r.Width)
	r.Height = math.Max(f.MinHeight, r.Height)
	return r
}

// CalculateFrameBounds grows the frame to admit every child plus padding.
// The result always covers the frame's current rectangle and is floored at
// the minimum size.
func CalculateFrameBounds(f *element.Element, children []*element.Element) geom.Rect {
	box, ok := childrenBox(children)
	if !ok {
		return floorSize(f.Rect(), f)
	}
	return floorSize(f.Rect().Union(box.Pad(f.Padding)), f)
}

// CalculateFrameFitBounds is the children's bounding box plus padding,
// ignoring the frame's previous extent. A frame without children keeps its
// rectangle.
func CalculateFrameFitBounds(f *element.Element, children []*element.Element) geom.Rect {
	box, ok := childrenBox(children)
	if !ok {
		return f.Rect()
	}
	return box.Pad(f.Padding)
}

func ownChildren(f *element.Element) []*element.Element {
	out := make([]*element.Element, 0, len(f.Children))
	for _, c := range f.Children {
		if !c.IsFrame() {
			out = append(out, c)
		}
	}
	return out
}

func frameAt(b *board.Board, path element.Path) (*element.Element, error) {
	f := b.Node(path)
	if f == nil {
		return nil, fmt.Errorf("frame %v: %w", path, board.ErrPathNotFound)
	}
	if !f.IsFrame() {
		return nil, fmt.Errorf("element %v: %w", path, ErrNotFrame)
	}
	return f, nil
}

func commitBounds(b *board.Board, path element.Path, f *element.Element, r geom.Rect) (bool, error) {
	if r == f.Rect() {
		return false, nil
	}
	op := board.SetNode(path, f.Get("x", "y", "width", "height"), element.RectProperties(r))
	if err := b.Apply(true, op); err != nil {
		return false, err
	}
	return true, nil
}

// ResizeToFitChildren grows the frame at path over its non-frame children
// and commits a set_node when the bounds change.
func ResizeToFitChildren(b *board.Board, path element.Path) (bool, error) {
	f, err := frameAt(b, path)
	if err != nil {
		return false, err
	}
	return commitBounds(b, path, f, CalculateFrameBounds(f, ownChildren(f)))
}

// FitToChildren shrinks or grows the frame at path to exactly its children
// plus padding.
func FitToChildren(b *board.Board, path element.Path) (bool, error) {
	f, err := frameAt(b, path)
	if err != nil {
		return false, err
	}
	if len(ownChildren(f)) == 0 {
		return false, nil
	}
	return commitBounds(b, path, f, CalculateFrameFitBounds(f, ownChildren(f)))
}

// MoveAllOps builds the set_node batch translating el (at path) and its
// whole subtree by (dx, dy).
func MoveAllOps(el *element.Element, path element.Path, dx, dy float64) []board.Operation {
	var ops []board.Operation
	var walk func(e *element.Element, p element.Path)
	walk = func(e *element.Element, p element.Path) {
		moved := e.Clone()
		moved.Translate(dx, dy)
		if e.IsArrow() && len(e.Points) > 0 {
			ops = append(ops, board.SetNode(p, e.Get("points"), element.Properties{"points": moved.Points}))
		} else {
			ops = append(ops, board.SetNode(p, e.Get("x", "y"), element.Properties{"x": moved.X, "y": moved.Y}))
		}
		for i, c := range e.Children {
			walk(c, p.Child(i))
		}
	}
	walk(el, path)
	return ops
}

// MoveAll translates the element at path and every descendant in one batch.
// Coordinates are absolute, so moving a container has to cascade.
func MoveAll(b *board.Board, path element.Path, dx, dy float64) error {
	el := b.Node(path)
	if el == nil {
		return fmt.Errorf("move %v: %w", path, board.ErrPathNotFound)
	}
	if dx == 0 && dy == 0 {
		return nil
	}
	return b.Apply(true, MoveAllOps(el, path, dx, dy)...)
}

// UnwrapFrame removes the frame at path and hands its children to the
// frame's parent list, appended in order, as one batch.
func UnwrapFrame(b *board.Board, path element.Path) error {
	f, err := frameAt(b, path)
	if err != nil {
		return err
	}
	siblings := len(b.Snapshot())
	if len(path) > 1 {
		siblings = len(b.Node(path.Parent()).Children)
	}

	ops := make([]board.Operation, 0, len(f.Children)+1)
	for i := range f.Children {
		// the next child is always first in the frame
		ops = append(ops, board.MoveNode(path.Child(0), path.Parent().Child(siblings+i)))
	}
	empty := f.CloneShallow()
	ops = append(ops, board.RemoveNode(path, empty))
	return b.Apply(true, ops...)
}

// WrapSelection creates a frame around the given top-level elements and moves them
// into it. Frames, arrows and mind-nodes are left where they are. It returns
// nil when nothing can be wrapped.
func WrapSelection(b *board.Board, ids []string, name string, d Defaults) (*element.Element, error) {
	roots := b.Snapshot()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	f := d.New(name, geom.Rect{})
	var picked []int
	var members []*element.Element
	for i, el := range roots {
		if want[el.ID] && nest.CanNest(f, el) {
			picked = append(picked, i)
			members = append(members, el)
		}
	}
	if len(members) == 0 {
		return nil, nil
	}
	f.SetRect(floorSize(CalculateFrameFitBounds(f, members), f))

	end := len(roots)
	ops := []board.Operation{board.InsertNode(element.Path{end}, f)}
	for r, idx := range picked {
		ops = append(ops, board.MoveNode(element.Path{idx - r}, element.Path{end - r, r}))
	}
	if err := b.Apply(true, ops...); err != nil {
		return nil, err
	}
	return b.FindByID(f.ID), nil
}
