package frame

import (
	"github.com/Gaurav-Gosain/boardkit/internal/board"
	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/Gaurav-Gosain/boardkit/internal/nest"
)

// DetectDrag decides, after the given elements were moved, which of them
// entered or left a frame. It returns the reparenting batch: for every
// element that changed frames a move_node (into the end of the target
// frame, or out to the end of the root list), preceded by a set_node
// growing the target frame when it auto-resizes.
//
// Operations are generated against a scratch copy in sequence, so the
// batch is valid when applied in order to b.
func DetectDrag(b *board.Board, movedIDs []string) []board.Operation {
	scratch := board.New(board.Options{Children: b.Snapshot()})

	var ops []board.Operation
	commit := func(op board.Operation) {
		if err := scratch.Apply(false, op); err == nil {
			ops = append(ops, op)
		}
	}

	for _, id := range movedIDs {
		path, ok := scratch.PathOf(id)
		if !ok {
			continue
		}
		el := scratch.Node(path)
		if el.IsFrame() || el.IsArrow() || el.IsMindNode() {
			continue
		}

		parent, _ := scratch.Parent(path)
		var current *element.Element
		if parent.IsFrame() {
			current = parent
		}
		if current != nil && nest.InFrameForRemoval(el, current) {
			continue
		}

		target, targetPath := topmostFrame(scratch, el)
		switch {
		case target == nil && current == nil:
			continue
		case target != nil && current != nil && target.ID == current.ID:
			continue
		case target == nil:
			commit(board.MoveNode(path, element.Path{len(scratch.Snapshot())}))
		default:
			if target.AutoResize {
				kids := append(ownChildren(target), el)
				if r := CalculateFrameBounds(target, kids); r != target.Rect() {
					commit(board.SetNode(targetPath, target.Get("x", "y", "width", "height"), element.RectProperties(r)))
				}
			}
			commit(board.MoveNode(path, targetPath.Child(len(target.Children))))
		}
	}
	return ops
}

// topmostFrame returns the last top-level frame (drawn on top) whose
// containment policy admits el.
func topmostFrame(b *board.Board, el *element.Element) (*element.Element, element.Path) {
	roots := b.Snapshot()
	for i := len(roots) - 1; i >= 0; i-- {
		f := roots[i]
		if f.IsFrame() && nest.CanNest(f, el) && nest.InFrameForAdd(el, f) {
			return f, element.Path{i}
		}
	}
	return nil, nil
}

// ApplyDrag runs DetectDrag and commits the result as one batch.
func ApplyDrag(b *board.Board, movedIDs []string) (bool, error) {
	ops := DetectDrag(b, movedIDs)
	if len(ops) == 0 {
		return false, nil
	}
	return true, b.Apply(true, ops...)
}
