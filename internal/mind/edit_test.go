package mind_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Gaurav-Gosain/boardkit/internal/board"
	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/Gaurav-Gosain/boardkit/internal/geom"
	"github.com/Gaurav-Gosain/boardkit/internal/mind"
)

// tickingClock advances two seconds per reading so history never merges.
func tickingClock() func() time.Time {
	now := time.Unix(1000, 0)
	return func() time.Time {
		now = now.Add(2 * time.Second)
		return now
	}
}

func newBoard(t *testing.T) (*board.Board, string, string, string) {
	t.Helper()
	b := board.New(board.Options{ContainerWidth: 800, ContainerHeight: 600, Clock: tickingClock()})
	r, err := mind.NewRoot(b, 0, 0, "R")
	if err != nil {
		t.Fatalf("NewRoot failed: %v", err)
	}
	a, err := mind.AddChild(b, r, "A")
	if err != nil {
		t.Fatalf("AddChild failed: %v", err)
	}
	c, err := mind.AddChild(b, r, "B")
	if err != nil {
		t.Fatalf("AddChild failed: %v", err)
	}
	return b, r, a, c
}

func childIDs(b *board.Board, id string) []string {
	var out []string
	for _, c := range b.FindByID(id).Children {
		out = append(out, c.ID)
	}
	return out
}

// =============================================================================
// Editing Tests
// =============================================================================

func TestNodeSize(t *testing.T) {
	if w, h := mind.NodeSize(""); w != 24 || h != 48 {
		t.Errorf("Expected empty node 24x48, got %vx%v", w, h)
	}
	if w, _ := mind.NodeSize("abcd"); w != 4*8+24 {
		t.Errorf("Expected width %v, got %v", 4*8+24, w)
	}
}

func TestAddChildLaysOutTree(t *testing.T) {
	b, r, a, c := newBoard(t)

	root := b.FindByID(r)
	if root.Level != 1 || len(root.Children) != 2 {
		t.Fatalf("Expected root with 2 children, got level %d with %d", root.Level, len(root.Children))
	}
	na, nc := b.FindByID(a), b.FindByID(c)
	if na.Level != 2 || na.Direction != element.DirectionRight {
		t.Errorf("Expected level 2 right child, got %d %q", na.Level, na.Direction)
	}
	if na.X != 32+36 {
		t.Errorf("Expected child at x=68, got %v", na.X)
	}
	if na.Y != -32 || nc.Y != 32 {
		t.Errorf("Expected children at y=-32 and 32, got %v and %v", na.Y, nc.Y)
	}
}

func TestAddChildBeforeAndSibling(t *testing.T) {
	b, r, a, c := newBoard(t)

	first, err := mind.AddChildBefore(b, r, a, "first")
	if err != nil {
		t.Fatalf("AddChildBefore failed: %v", err)
	}
	mid, err := mind.AddSibling(b, a, "mid")
	if err != nil {
		t.Fatalf("AddSibling failed: %v", err)
	}

	got := childIDs(b, r)
	want := []string{first, a, mid, c}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}

	if id, err := mind.AddSibling(b, r, "nope"); err != nil || id != "" {
		t.Errorf("Expected root sibling to be a no-op, got %q %v", id, err)
	}
}

func TestAddChildRejectsNonMind(t *testing.T) {
	b := board.New(board.Options{Children: []*element.Element{element.NewFrame("f", geom.R(0, 0, 100, 100))}})
	id := b.Snapshot()[0].ID
	if _, err := mind.AddChild(b, id, "x"); !errors.Is(err, mind.ErrNotMindNode) {
		t.Errorf("Expected ErrNotMindNode, got %v", err)
	}
	if _, err := mind.AddChild(b, "missing", "x"); !errors.Is(err, board.ErrPathNotFound) {
		t.Errorf("Expected ErrPathNotFound, got %v", err)
	}
}

func TestDeleteNodesRelayouts(t *testing.T) {
	b, r, a, c := newBoard(t)

	notified := 0
	b.Subscribe(func(board.Change) { notified++ })

	if err := mind.DeleteNodes(b, a); err != nil {
		t.Fatalf("DeleteNodes failed: %v", err)
	}
	if notified != 1 {
		t.Errorf("Expected one notification, got %d", notified)
	}
	if b.FindByID(a) != nil {
		t.Error("Expected A to be gone")
	}
	if y := b.FindByID(c).Y; y != 0 {
		t.Errorf("Expected B re-centered at y=0, got %v", y)
	}

	if _, err := b.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if b.FindByID(a) == nil || b.FindByID(c).Y != 32 {
		t.Error("Expected undo to restore A and B's position")
	}

	if err := mind.DeleteNodes(b, r, a); err != nil {
		t.Fatalf("DeleteNodes failed: %v", err)
	}
	if len(b.Snapshot()) != 0 {
		t.Errorf("Expected the whole tree gone, got %d roots", len(b.Snapshot()))
	}
}

func TestMoveUpDown(t *testing.T) {
	b, r, a, c := newBoard(t)

	if ok, err := mind.MoveUp(b, a); err != nil || ok {
		t.Errorf("Expected first child not to move up, got %v %v", ok, err)
	}
	if ok, err := mind.MoveDown(b, a); err != nil || !ok {
		t.Fatalf("Expected MoveDown to succeed, got %v %v", ok, err)
	}
	if got := childIDs(b, r); got[0] != c || got[1] != a {
		t.Errorf("Expected [B A], got %v", got)
	}
	if b.FindByID(c).Y != -32 {
		t.Errorf("Expected B laid out on top, got y=%v", b.FindByID(c).Y)
	}
	if ok, _ := mind.MoveDown(b, a); ok {
		t.Error("Expected last child not to move down")
	}
	if ok, err := mind.MoveUp(b, a); err != nil || !ok {
		t.Fatalf("Expected MoveUp to succeed, got %v %v", ok, err)
	}
	if got := childIDs(b, r); got[0] != a {
		t.Errorf("Expected [A B], got %v", got)
	}
}

func TestToggleFold(t *testing.T) {
	b, r, _, _ := newBoard(t)
	if err := mind.ToggleFold(b, r, element.DirectionRight); err != nil {
		t.Fatalf("ToggleFold failed: %v", err)
	}
	root := b.FindByID(r)
	if !root.RightFold || root.ActualHeight != 48 {
		t.Errorf("Expected folded root with height 48, got %v %v", root.RightFold, root.ActualHeight)
	}
	if err := mind.ToggleFold(b, r, element.DirectionRight); err != nil {
		t.Fatalf("ToggleFold failed: %v", err)
	}
	if b.FindByID(r).RightFold {
		t.Error("Expected second toggle to unfold")
	}
}

func TestSetTextResizes(t *testing.T) {
	b, r, a, _ := newBoard(t)
	if err := mind.SetText(b, r, "a longer root"); err != nil {
		t.Fatalf("SetText failed: %v", err)
	}
	root := b.FindByID(r)
	if root.Text != "a longer root" || root.Width != 13*8+24 {
		t.Errorf("Expected resized root, got %q width %v", root.Text, root.Width)
	}
	if x := b.FindByID(a).X; x != root.Width+36 {
		t.Errorf("Expected child pushed to x=%v, got %v", root.Width+36, x)
	}
}

// =============================================================================
// Cross-Tree Tests
// =============================================================================

func TestMoveNodeAcrossTrees(t *testing.T) {
	b, r, a, c := newBoard(t)
	s, err := mind.NewRoot(b, 500, 0, "S")
	if err != nil {
		t.Fatalf("NewRoot failed: %v", err)
	}

	notified := 0
	b.Subscribe(func(board.Change) { notified++ })

	from, _ := b.PathOf(a)
	sp, _ := b.PathOf(s)
	if err := mind.MoveNode(b, from, sp.Child(0)); err != nil {
		t.Fatalf("MoveNode failed: %v", err)
	}
	if notified != 1 {
		t.Errorf("Expected one notification, got %d", notified)
	}

	if got := childIDs(b, r); len(got) != 1 || got[0] != c {
		t.Errorf("Expected R[B], got %v", got)
	}
	if b.FindByID(c).Y != 0 {
		t.Errorf("Expected source tree re-laid out, B at y=%v", b.FindByID(c).Y)
	}
	moved := b.FindByID(a)
	if moved.X != 500+32+36 || moved.Y != 0 {
		t.Errorf("Expected destination tree re-laid out, A at (%v,%v)", moved.X, moved.Y)
	}
}

func TestGetRoot(t *testing.T) {
	b, r, a, _ := newBoard(t)
	grand, err := mind.AddChild(b, a, "deep")
	if err != nil {
		t.Fatalf("AddChild failed: %v", err)
	}
	p, _ := b.PathOf(grand)
	root, ok := mind.GetRoot(b, p)
	if !ok || b.Node(root).ID != r {
		t.Errorf("Expected root %s, got %v", r, root)
	}
	if !mind.IsDescendant(b.FindByID(r), grand) {
		t.Error("Expected grandchild to be a descendant of the root")
	}
	if mind.IsDescendant(b.FindByID(grand), r) {
		t.Error("Expected root not to be a descendant of its grandchild")
	}
}

func TestNearestNodeAndAttach(t *testing.T) {
	b, r, a, c := newBoard(t)
	s, _ := mind.NewRoot(b, 500, 300, "S")

	dragged := b.FindByID(c).Clone()
	dragged.X, dragged.Y = 500+32+10, 300

	target, ok := mind.NearestNode(b, dragged, geom.Point{X: 550, Y: 310})
	if !ok {
		t.Fatal("Expected a target near S")
	}
	if target.ParentID != s || target.Index != 0 || target.Direction != element.DirectionRight {
		t.Errorf("Unexpected target %+v", target)
	}

	if err := mind.Attach(b, c, target); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if got := childIDs(b, s); len(got) != 1 || got[0] != c {
		t.Errorf("Expected S[B], got %v", got)
	}
	if got := childIDs(b, r); len(got) != 1 || got[0] != a {
		t.Errorf("Expected R[A], got %v", got)
	}

	far := b.FindByID(a).Clone()
	far.X, far.Y = 5000, 5000
	if _, ok := mind.NearestNode(b, far, geom.Point{X: 5000, Y: 5000}); ok {
		t.Error("Expected no target far away")
	}
}

func TestDetachMakesRoot(t *testing.T) {
	b, r, a, _ := newBoard(t)
	if err := mind.Detach(b, a, 300, 300); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}
	p, _ := b.PathOf(a)
	if len(p) != 1 {
		t.Fatalf("Expected A at the top level, got %v", p)
	}
	n := b.Node(p)
	if n.Level != 1 || n.X != 300 || n.Y != 300 {
		t.Errorf("Expected a root at (300,300), got level %d at (%v,%v)", n.Level, n.X, n.Y)
	}
	if len(childIDs(b, r)) != 1 {
		t.Error("Expected R to keep one child")
	}
}
