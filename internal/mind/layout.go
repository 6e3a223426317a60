// Package mind lays out mind-map trees and implements the mind editing
// operations. Layout is a pure function over an element subtree; the board
// level helpers commit structural edits and the resulting position changes
// as a single batch.
package mind

import (
	"math"

	"github.com/Gaurav-Gosain/boardkit/internal/element"
)

// Margins are the layout spacings. MarginY is keyed by the level of the
// nodes being stacked.
type Margins struct {
	MarginX        float64
	MarginY        map[int]float64
	DefaultMarginY float64
}

// DefaultMargins returns the stock spacing: 36 between a parent and its
// children, and 24/16/8 between siblings at levels 1/2/3.
func DefaultMargins() Margins {
	return Margins{
		MarginX:        36,
		MarginY:        map[int]float64{1: 24, 2: 16, 3: 8},
		DefaultMarginY: 8,
	}
}

var margins = DefaultMargins()

// SetMargins replaces the spacing used by Layout and the board helpers.
func SetMargins(m Margins) {
	if m.MarginY == nil {
		m.MarginY = DefaultMargins().MarginY
	}
	margins = m
}

func (m Margins) gapY(level int) float64 {
	if g, ok := m.MarginY[level]; ok {
		return g
	}
	return m.DefaultMarginY
}

// Layout returns a deep copy of root with every visible node positioned.
// The root keeps its position. Children keep their order.
func Layout(root *element.Element) *element.Element {
	return margins.Layout(root)
}

// Layout is the Margins-parameterised form of the package Layout.
func (m Margins) Layout(root *element.Element) *element.Element {
	if root == nil {
		return nil
	}
	out := root.Clone()
	if out.Level == 0 {
		out.Level = 1
	}
	if out.Direction == "" {
		out.Direction = element.DirectionRight
	}
	normalize(out)
	m.measure(out)
	m.place(out)
	return out
}

// normalize fixes levels and directions top-down. Level-2 nodes keep their
// own side, deeper nodes follow their parent.
func normalize(n *element.Element) {
	for _, c := range n.Children {
		c.Level = n.Level + 1
		switch {
		case c.Level > 2:
			c.Direction = n.Direction
		case c.Direction == "":
			c.Direction = element.DirectionRight
		}
		normalize(c)
	}
}

// Folded reports whether child is hidden by a fold on its side of parent.
func Folded(parent, child *element.Element) bool {
	if child.Direction == element.DirectionLeft {
		return parent.LeftFold
	}
	return parent.RightFold
}

func visibleSide(n *element.Element, dir element.Direction) []*element.Element {
	var out []*element.Element
	for _, c := range n.Children {
		if c.Direction == dir && !Folded(n, c) {
			out = append(out, c)
		}
	}
	return out
}

func (m Margins) stackHeight(nodes []*element.Element, level int) float64 {
	if len(nodes) == 0 {
		return 0
	}
	h := float64(len(nodes)-1) * m.gapY(level)
	for _, c := range nodes {
		h += c.ActualHeight
	}
	return h
}

// measure is the post-order pass: horizontal position and subtree heights.
func (m Margins) measure(n *element.Element) {
	for _, c := range n.Children {
		if Folded(n, c) {
			continue
		}
		if c.Direction == element.DirectionLeft {
			c.X = n.X - c.Width - m.MarginX
		} else {
			c.X = n.X + n.Width + m.MarginX
		}
		m.measure(c)
	}

	left := visibleSide(n, element.DirectionLeft)
	right := visibleSide(n, element.DirectionRight)
	n.LeftChildrenHeight = m.stackHeight(left, n.Level+1)
	n.RightChildrenHeight = m.stackHeight(right, n.Level+1)
	n.ChildrenHeight = math.Max(n.LeftChildrenHeight, n.RightChildrenHeight)
	n.ActualHeight = math.Max(n.ChildrenHeight, n.Height)
}

// place is the pre-order pass: each side is stacked around the parent's
// vertical center, and every node is centered inside its own slot.
func (m Margins) place(n *element.Element) {
	mid := n.Y + n.Height/2
	for _, side := range []struct {
		dir    element.Direction
		height float64
	}{
		{element.DirectionLeft, n.LeftChildrenHeight},
		{element.DirectionRight, n.RightChildrenHeight},
	} {
		top := mid - side.height/2
		for _, c := range visibleSide(n, side.dir) {
			c.Y = top + (c.ActualHeight-c.Height)/2
			top += c.ActualHeight + m.gapY(c.Level)
			m.place(c)
		}
	}
}

// DeleteNode returns a laid-out copy of root without the node targetID and
// its subtree. Deleting the root itself returns nil.
func DeleteNode(root *element.Element, targetID string) *element.Element {
	return PruneNodes(root, targetID)
}

// PruneNodes is DeleteNode for several targets at once.
func PruneNodes(root *element.Element, targetIDs ...string) *element.Element {
	if root == nil {
		return nil
	}
	drop := make(map[string]bool, len(targetIDs))
	for _, id := range targetIDs {
		drop[id] = true
	}
	if drop[root.ID] {
		return nil
	}
	out := root.Clone()
	prune(out, drop)
	return Layout(out)
}

func prune(n *element.Element, drop map[string]bool) {
	kept := n.Children[:0]
	for _, c := range n.Children {
		if drop[c.ID] {
			continue
		}
		prune(c, drop)
		kept = append(kept, c)
	}
	n.Children = kept
}

// SubtreeBounds returns the vertical extent [top, bottom] occupied by the
// visible subtree of n after layout.
func SubtreeBounds(n *element.Element) (top, bottom float64) {
	mid := n.Y + n.Height/2
	return mid - n.ActualHeight/2, mid + n.ActualHeight/2
}
