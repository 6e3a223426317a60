package board

import (
	"fmt"

	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/Gaurav-Gosain/boardkit/internal/geom"
	"github.com/Gaurav-Gosain/boardkit/internal/nest"
)

// Apply commits a batch of operations in order against the current tree.
//
// Rejected operations (cycles, nesting violations, out-of-range moves, edits
// on a read-only board) are skipped. A missing path for set_node or
// remove_node is a caller fault: the batch stops and the error is returned,
// but operations before it stay applied. There is no rollback.
//
// Subscribers get exactly one Change per call that applied anything. When
// record is true the structural part of the batch is pushed to history.
func (b *Board) Apply(record bool, ops ...Operation) error {
	if len(ops) == 0 {
		return nil
	}

	b.mu.Lock()
	st := &state{
		live:      b.children,
		viewport:  b.viewport,
		selection: b.selection,
	}

	var applied []Operation
	var applyErr error
	for _, op := range ops {
		if b.readOnly && (op.IsStructural() || op.Type == OpSetSelection) {
			logger.Debug("read-only board, skipping", "op", op.String())
			continue
		}
		done, ok, err := st.apply(op)
		if err != nil {
			applyErr = fmt.Errorf("%s %v: %w", op.Type, op.Path, err)
			break
		}
		if ok {
			applied = append(applied, done)
		}
	}

	if len(applied) > 0 {
		if st.work != nil {
			b.children = st.work
		}
		b.viewport = st.viewport
		b.selection = st.selection
	}
	b.mu.Unlock()

	if len(applied) == 0 {
		return applyErr
	}
	if record {
		b.history.record(structuralOnly(applied), b.now())
	}
	b.notify(Change{Operations: applied})
	return applyErr
}

func structuralOnly(ops []Operation) []Operation {
	out := make([]Operation, 0, len(ops))
	for _, op := range ops {
		if op.IsStructural() {
			out = append(out, op)
		}
	}
	return out
}

// state is the working copy of one batch. The forest is cloned on the first
// structural operation so the live tree is never touched mid-batch.
type state struct {
	live      []*element.Element
	work      []*element.Element
	viewport  element.ViewPort
	selection element.Selection
}

func (s *state) tree() []*element.Element {
	if s.work == nil {
		s.work = element.CloneAll(s.live)
	}
	return s.work
}

func (s *state) apply(op Operation) (Operation, bool, error) {
	switch op.Type {
	case OpMoveNode:
		return s.moveNode(op)
	case OpSetNode:
		return s.setNode(op)
	case OpRemoveNode:
		return s.removeNode(op)
	case OpInsertNode:
		return s.insertNode(op)
	case OpSetViewport:
		return s.setViewport(op)
	case OpSetSelection:
		return s.setSelection(op)
	default:
		return op, false, fmt.Errorf("%w: unknown type %q", ErrInvalidOperation, op.Type)
	}
}

// setList replaces the child list addressed by parent.
func (s *state) setList(parent element.Path, list []*element.Element) {
	if len(parent) == 0 {
		s.work = list
		return
	}
	NodeAt(s.work, parent).Children = list
}

func (s *state) moveNode(op Operation) (Operation, bool, error) {
	from, to := op.Path, op.NewPath
	tree := s.tree()
	node := NodeAt(tree, from)
	if node == nil {
		return op, false, ErrPathNotFound
	}
	if len(to) == 0 || from.Equal(to) || from.IsAncestorOf(to) {
		logger.Debug("move rejected", "from", from, "to", to)
		return op, false, nil
	}

	dest := removeShift(from, to)
	if dest.Equal(from) {
		return op, false, nil
	}

	// Validate the destination against the tree as it will look after the
	// removal, without mutating anything yet.
	src, _ := ChildrenAt(tree, from.Parent())
	srcIdx := from.Last()

	var parent *element.Element
	if len(dest) > 1 {
		parent = nodeAfterRemoval(tree, from, dest.Parent())
		if parent == nil {
			logger.Debug("move rejected, missing parent", "to", to)
			return op, false, nil
		}
		if !parent.IsContainer() {
			logger.Debug("move rejected, parent is not a container", "to", to)
			return op, false, nil
		}
	}
	if !nest.CanNest(parent, node) {
		logger.Debug("move rejected by nesting rules", "from", from, "to", to)
		return op, false, nil
	}

	targetLen := 0
	if parent != nil {
		targetLen = len(parent.Children)
	} else {
		targetLen = len(tree)
	}
	if from.Parent().Equal(dest.Parent()) {
		targetLen--
	}
	if dest.Last() < 0 || dest.Last() > targetLen {
		logger.Debug("move rejected, index out of range", "to", to)
		return op, false, nil
	}

	rest, moved := removeAt(src, srcIdx)
	s.setList(from.Parent(), rest)

	dst, _ := ChildrenAt(s.work, dest.Parent())
	s.setList(dest.Parent(), insertAt(dst, dest.Last(), moved))

	return MoveNode(from, to), true, nil
}

// nodeAfterRemoval resolves path (in post-removal coordinates) in a tree
// where the node at removed still sits in place.
func nodeAfterRemoval(tree []*element.Element, removed, path element.Path) *element.Element {
	return NodeAt(tree, insertShift(removed, path))
}

func (s *state) setNode(op Operation) (Operation, bool, error) {
	tree := s.tree()
	node := NodeAt(tree, op.Path)
	if node == nil {
		return op, false, ErrPathNotFound
	}

	prev := op.Properties
	if prev == nil {
		prev = node.Get(op.NewProperties.Keys()...)
	}

	tmp := *node
	if node.Data != nil {
		tmp.Data = make(map[string]any, len(node.Data))
		for k, v := range node.Data {
			tmp.Data[k] = v
		}
	}
	tmp.Points = append([]geom.Point(nil), node.Points...)
	if err := tmp.Set(op.NewProperties); err != nil {
		return op, false, fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}
	*node = tmp

	return SetNode(op.Path, prev, op.NewProperties), true, nil
}

func (s *state) removeNode(op Operation) (Operation, bool, error) {
	tree := s.tree()
	if NodeAt(tree, op.Path) == nil {
		return op, false, ErrPathNotFound
	}
	list, _ := ChildrenAt(tree, op.Path.Parent())
	rest, removed := removeAt(list, op.Path.Last())
	s.setList(op.Path.Parent(), rest)
	return RemoveNode(op.Path, removed), true, nil
}

func (s *state) insertNode(op Operation) (Operation, bool, error) {
	if op.Node == nil || len(op.Path) == 0 {
		return op, false, fmt.Errorf("%w: insert needs a node and a path", ErrInvalidOperation)
	}
	tree := s.tree()

	var parent *element.Element
	if len(op.Path) > 1 {
		parent = NodeAt(tree, op.Path.Parent())
		if parent == nil {
			return op, false, ErrPathNotFound
		}
	}
	list, _ := ChildrenAt(tree, op.Path.Parent())
	idx := op.Path.Last()
	if idx < 0 || idx > len(list) {
		return op, false, ErrPathNotFound
	}

	if !nest.CanNest(parent, op.Node) {
		logger.Debug("insert rejected by nesting rules", "path", op.Path)
		return op, false, nil
	}

	node := op.Node.Clone()
	var dup string
	node.Walk(func(el *element.Element) bool {
		if _, exists := PathOf(tree, el.ID); exists {
			dup = el.ID
			return false
		}
		return dup == ""
	})
	if dup != "" {
		return op, false, fmt.Errorf("%w: element %s already exists", ErrInvalidOperation, dup)
	}

	s.setList(op.Path.Parent(), insertAt(list, idx, node))
	return InsertNode(op.Path, node), true, nil
}

func (s *state) setViewport(op Operation) (Operation, bool, error) {
	prev := op.Properties
	if prev == nil {
		prev = s.viewport.Get(op.NewProperties.Keys()...)
	}
	vp := s.viewport
	if err := vp.Set(op.NewProperties); err != nil {
		return op, false, fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}
	s.viewport = vp
	return SetViewport(prev, op.NewProperties), true, nil
}

func (s *state) setSelection(op Operation) (Operation, bool, error) {
	prev := op.Properties
	if prev == nil {
		prev = s.selection.Get(op.NewProperties.Keys()...)
	}
	sel := s.selection.Clone()
	if err := sel.Set(op.NewProperties); err != nil {
		return op, false, fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}
	s.selection = sel
	return SetSelection(prev, op.NewProperties), true, nil
}
