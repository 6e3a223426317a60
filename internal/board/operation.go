package board

import (
	"fmt"

	"github.com/Gaurav-Gosain/boardkit/internal/element"
)

// OpType names an operation kind.
type OpType string

const (
	OpMoveNode     OpType = "move_node"
	OpSetNode      OpType = "set_node"
	OpRemoveNode   OpType = "remove_node"
	OpInsertNode   OpType = "insert_node"
	OpSetViewport  OpType = "set_viewport"
	OpSetSelection OpType = "set_selection"
)

// Operation is a single typed mutation. Which fields are used depends on
// Type.
type Operation struct {
	Type          OpType             `json:"type"`
	Path          element.Path       `json:"path,omitempty"`
	NewPath       element.Path       `json:"newPath,omitempty"`
	Node          *element.Element   `json:"node,omitempty"`
	Properties    element.Properties `json:"properties,omitempty"`
	NewProperties element.Properties `json:"newProperties,omitempty"`
}

// MoveNode detaches the element at path and reinserts it at newPath. newPath
// is read against the tree before the removal.
func MoveNode(path, newPath element.Path) Operation {
	return Operation{Type: OpMoveNode, Path: path.Clone(), NewPath: newPath.Clone()}
}

// SetNode merges next onto the element at path. prev may be nil, in which
// case the engine captures it.
func SetNode(path element.Path, prev, next element.Properties) Operation {
	return Operation{Type: OpSetNode, Path: path.Clone(), Properties: prev.Clone(), NewProperties: next.Clone()}
}

// RemoveNode deletes the subtree at path.
func RemoveNode(path element.Path, node *element.Element) Operation {
	return Operation{Type: OpRemoveNode, Path: path.Clone(), Node: node.Clone()}
}

// InsertNode inserts a copy of node at path.
func InsertNode(path element.Path, node *element.Element) Operation {
	return Operation{Type: OpInsertNode, Path: path.Clone(), Node: node.Clone()}
}

// SetViewport merges camera fields.
func SetViewport(prev, next element.Properties) Operation {
	return Operation{Type: OpSetViewport, Properties: prev.Clone(), NewProperties: next.Clone()}
}

// SetSelection merges selection fields.
func SetSelection(prev, next element.Properties) Operation {
	return Operation{Type: OpSetSelection, Properties: prev.Clone(), NewProperties: next.Clone()}
}

// IsStructural reports whether the operation touches the element tree.
func (op Operation) IsStructural() bool {
	switch op.Type {
	case OpMoveNode, OpSetNode, OpRemoveNode, OpInsertNode:
		return true
	}
	return false
}

// String returns a short description for logs.
func (op Operation) String() string {
	switch op.Type {
	case OpMoveNode:
		return fmt.Sprintf("%s %v -> %v", op.Type, op.Path, op.NewPath)
	case OpSetNode:
		return fmt.Sprintf("%s %v %v", op.Type, op.Path, op.NewProperties.Keys())
	case OpRemoveNode, OpInsertNode:
		return fmt.Sprintf("%s %v", op.Type, op.Path)
	default:
		return fmt.Sprintf("%s %v", op.Type, op.NewProperties.Keys())
	}
}

// Inverse returns the operation that undoes op once op has been applied.
func (op Operation) Inverse() Operation {
	switch op.Type {
	case OpInsertNode:
		return RemoveNode(op.Path, op.Node)
	case OpRemoveNode:
		return InsertNode(op.Path, op.Node)
	case OpSetNode:
		return SetNode(op.Path, op.NewProperties, op.Properties)
	case OpSetViewport:
		return SetViewport(op.NewProperties, op.Properties)
	case OpSetSelection:
		return SetSelection(op.NewProperties, op.Properties)
	case OpMoveNode:
		dest := op.Destination()
		return MoveNode(dest, insertShift(dest, op.Path))
	}
	return op
}

// Destination returns where a move_node operation leaves the node, in
// coordinates after the move.
func (op Operation) Destination() element.Path {
	return removeShift(op.Path, op.NewPath)
}

// removeShift maps target, given in coordinates before the node at from is
// removed, to coordinates after the removal.
func removeShift(from, target element.Path) element.Path {
	out := target.Clone()
	d := len(from) - 1
	if d < 0 || len(out) <= d {
		return out
	}
	if !element.Path(out[:d]).Equal(from[:d]) {
		return out
	}
	if from[d] < out[d] {
		out[d]--
	}
	return out
}

// insertShift is the inverse of removeShift: target, given in coordinates
// without a node at at, is mapped to coordinates where at is occupied.
func insertShift(at, target element.Path) element.Path {
	out := target.Clone()
	d := len(at) - 1
	if d < 0 || len(out) <= d {
		return out
	}
	if !element.Path(out[:d]).Equal(at[:d]) {
		return out
	}
	if out[d] >= at[d] {
		out[d]++
	}
	return out
}
