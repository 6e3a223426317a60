package board_test

import (
	"testing"

	"github.com/Gaurav-Gosain/boardkit/internal/board"
	"github.com/Gaurav-Gosain/boardkit/internal/element"
)

func TestRebasePath(t *testing.T) {
	tests := []struct {
		name     string
		path     element.Path
		op       board.Operation
		expected element.Path
		ok       bool
	}{
		{"insert before shifts", element.Path{2}, board.InsertNode(element.Path{1}, nil), element.Path{3}, true},
		{"insert at same slot shifts", element.Path{1, 0}, board.InsertNode(element.Path{1}, nil), element.Path{2, 0}, true},
		{"insert after is ignored", element.Path{0}, board.InsertNode(element.Path{1}, nil), element.Path{0}, true},
		{"insert in other parent", element.Path{0, 3}, board.InsertNode(element.Path{1, 0}, nil), element.Path{0, 3}, true},
		{"remove before shifts", element.Path{3}, board.RemoveNode(element.Path{1}, nil), element.Path{2}, true},
		{"remove self", element.Path{1}, board.RemoveNode(element.Path{1}, nil), nil, false},
		{"remove ancestor", element.Path{1, 2}, board.RemoveNode(element.Path{1}, nil), nil, false},
		{"move self backward", element.Path{2}, board.MoveNode(element.Path{2}, element.Path{0}), element.Path{0}, true},
		{"move shifts earlier sibling", element.Path{0}, board.MoveNode(element.Path{2}, element.Path{0}), element.Path{1}, true},
		{"move leaves later sibling", element.Path{3}, board.MoveNode(element.Path{2}, element.Path{0}), element.Path{3}, true},
		{"move forward closes gap", element.Path{2}, board.MoveNode(element.Path{1}, element.Path{3}), element.Path{1}, true},
		{"move forward keeps slot after target", element.Path{3}, board.MoveNode(element.Path{1}, element.Path{3}), element.Path{3}, true},
		{"move carries descendants", element.Path{1, 2, 0}, board.MoveNode(element.Path{1, 2}, element.Path{3, 0}), element.Path{3, 0, 0}, true},
		{"move cross level sibling", element.Path{1, 3}, board.MoveNode(element.Path{1, 2}, element.Path{3, 0}), element.Path{1, 2}, true},
		{"move into self is ignored", element.Path{1}, board.MoveNode(element.Path{1}, element.Path{1, 0}), element.Path{1}, true},
		{"set leaves paths alone", element.Path{4}, board.SetNode(element.Path{4}, nil, nil), element.Path{4}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := board.RebasePath(tt.path, tt.op)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && !got.Equal(tt.expected) {
				t.Errorf("RebasePath(%v, %s) = %v, want %v", tt.path, tt.op, got, tt.expected)
			}
		})
	}
}

func TestRebasePathsDropsRemoved(t *testing.T) {
	ops := []board.Operation{
		board.RemoveNode(element.Path{0}, nil),
		board.InsertNode(element.Path{0}, nil),
	}
	got := board.RebasePaths([]element.Path{{0}, {1}, {2, 1}}, ops)
	if len(got) != 2 {
		t.Fatalf("Expected 2 surviving paths, got %v", got)
	}
	if !got[0].Equal(element.Path{1}) || !got[1].Equal(element.Path{2, 1}) {
		t.Errorf("Unexpected rebased paths: %v", got)
	}
}
