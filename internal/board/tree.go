package board

import (
	"github.com/Gaurav-Gosain/boardkit/internal/element"
)

// NodeAt resolves path against a forest. It returns nil for empty or
// out-of-range paths.
func NodeAt(children []*element.Element, path element.Path) *element.Element {
	if len(path) == 0 {
		return nil
	}
	list := children
	var node *element.Element
	for _, i := range path {
		if i < 0 || i >= len(list) {
			return nil
		}
		node = list[i]
		list = node.Children
	}
	return node
}

// PathOf finds the path of the element with id.
func PathOf(children []*element.Element, id string) (element.Path, bool) {
	var found element.Path
	WalkTree(children, func(p element.Path, el *element.Element) bool {
		if found != nil {
			return false
		}
		if el.ID == id {
			found = p.Clone()
			return false
		}
		return true
	})
	return found, found != nil
}

// WalkTree visits every element pre-order. Returning false skips the
// element's subtree.
func WalkTree(children []*element.Element, fn func(path element.Path, el *element.Element) bool) {
	var walk func(list []*element.Element, prefix element.Path)
	walk = func(list []*element.Element, prefix element.Path) {
		for i, el := range list {
			p := prefix.Child(i)
			if fn(p, el) {
				walk(el.Children, p)
			}
		}
	}
	walk(children, nil)
}

// ChildrenAt returns the child list addressed by a parent path. An empty
// parent path is the root list. The bool is false when the parent is missing.
func ChildrenAt(children []*element.Element, parent element.Path) ([]*element.Element, bool) {
	if len(parent) == 0 {
		return children, true
	}
	node := NodeAt(children, parent)
	if node == nil {
		return nil, false
	}
	return node.Children, true
}

// Count returns the number of elements in the forest.
func Count(children []*element.Element) int {
	n := 0
	WalkTree(children, func(element.Path, *element.Element) bool {
		n++
		return true
	})
	return n
}

// Depth returns how many ancestors the element at path has.
func Depth(path element.Path) int {
	if len(path) == 0 {
		return 0
	}
	return len(path) - 1
}

func insertAt(list []*element.Element, i int, el *element.Element) []*element.Element {
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = el
	return list
}

func removeAt(list []*element.Element, i int) ([]*element.Element, *element.Element) {
	el := list[i]
	out := make([]*element.Element, 0, len(list)-1)
	out = append(out, list[:i]...)
	out = append(out, list[i+1:]...)
	return out, el
}
