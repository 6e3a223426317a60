package board

import (
	"github.com/Gaurav-Gosain/boardkit/internal/element"
)

// RebasePath maps a path captured before op to the same element's path after
// op. The bool is false when op removed the element. Operations that do not
// restructure the tree leave the path untouched.
func RebasePath(path element.Path, op Operation) (element.Path, bool) {
	switch op.Type {
	case OpInsertNode:
		return insertShift(op.Path, path), true

	case OpRemoveNode:
		if op.Path.Equal(path) || op.Path.IsAncestorOf(path) {
			return nil, false
		}
		return removeShift(op.Path, path), true

	case OpMoveNode:
		from := op.Path
		if len(op.NewPath) == 0 || from.Equal(op.NewPath) || from.IsAncestorOf(op.NewPath) {
			return path.Clone(), true
		}
		dest := op.Destination()
		if from.Equal(path) || from.IsAncestorOf(path) {
			out := dest.Clone()
			return append(out, path[len(from):]...), true
		}
		return insertShift(dest, removeShift(from, path)), true
	}
	return path.Clone(), true
}

// RebasePaths maps every path through a sequence of applied operations and
// drops the ones that were removed.
func RebasePaths(paths []element.Path, ops []Operation) []element.Path {
	out := make([]element.Path, 0, len(paths))
	for _, p := range paths {
		cur, ok := p.Clone(), true
		for _, op := range ops {
			if cur, ok = RebasePath(cur, op); !ok {
				break
			}
		}
		if ok {
			out = append(out, cur)
		}
	}
	return out
}
