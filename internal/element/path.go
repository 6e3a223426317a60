package element

import (
	"strconv"
	"strings"
)

// Path addresses an element by child indices from the root list. Paths are
// recomputed after every structural change.
type Path []int

// Clone copies the path.
func (p Path) Clone() Path {
	return append(Path(nil), p...)
}

// Equal reports whether two paths address the same slot.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// IsAncestorOf reports whether p is a strict prefix of other.
func (p Path) IsAncestorOf(other Path) bool {
	if len(p) >= len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// IsSibling reports whether both paths share the same parent.
func (p Path) IsSibling(other Path) bool {
	return len(p) > 0 && len(p) == len(other) && p.Parent().Equal(other.Parent())
}

// Parent returns the parent path. The parent of a top-level path is empty.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1].Clone()
}

// Last returns the index within the parent.
func (p Path) Last() int {
	if len(p) == 0 {
		return -1
	}
	return p[len(p)-1]
}

// Child appends an index.
func (p Path) Child(i int) Path {
	return append(p.Clone(), i)
}

// Next returns the following sibling slot.
func (p Path) Next() Path {
	out := p.Clone()
	if len(out) > 0 {
		out[len(out)-1]++
	}
	return out
}

// Previous returns the preceding sibling slot, or nil at index 0.
func (p Path) Previous() Path {
	if len(p) == 0 || p.Last() == 0 {
		return nil
	}
	out := p.Clone()
	out[len(out)-1]--
	return out
}

// Ancestors returns every proper prefix from shortest to longest.
func (p Path) Ancestors() []Path {
	out := make([]Path, 0, len(p))
	for i := 1; i < len(p); i++ {
		out = append(out, p[:i].Clone())
	}
	return out
}

// String renders the path as "[0 2 1]".
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
