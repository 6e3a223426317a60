// Package nest holds the containment rules: which element variants may be
// parented by which, and whether an element geometrically sits inside a
// frame under a given policy.
package nest

import (
	"github.com/Gaurav-Gosain/boardkit/internal/element"
)

// PartialThreshold is the share of an element's area that must overlap a
// frame's padded bounds under the partial policy. The comparison is strict.
const PartialThreshold = 0.5

// CanNest reports whether child may be placed directly under parent. A nil
// parent stands for the root list. It never panics.
func CanNest(parent, child *element.Element) bool {
	if child == nil {
		return false
	}
	if parent == nil {
		return true
	}
	if parent == child || parent.ID == child.ID {
		return false
	}

	switch parent.Type {
	case element.TypeFrame:
		switch child.Type {
		case element.TypeFrame, element.TypeArrow, element.TypeMindNode:
			return false
		}
		return true
	case element.TypeMindNode:
		return child.Type == element.TypeMindNode
	default:
		return false
	}
}

// IsElementInFrame evaluates policy against the frame's padded bounds.
// An empty policy is treated as partial.
func IsElementInFrame(el, frame *element.Element, policy element.Policy) bool {
	if el == nil || frame == nil {
		return false
	}
	padded := frame.Rect().Pad(frame.Padding)
	bounds := el.Bounds()

	if policy == element.PolicyFull {
		return padded.Contains(bounds)
	}

	area := bounds.Area()
	if area == 0 {
		return false
	}
	overlap, ok := bounds.Intersection(padded)
	if !ok {
		return false
	}
	return overlap.Area()/area > PartialThreshold
}

// InFrameForAdd applies the frame's containment policy.
func InFrameForAdd(el, frame *element.Element) bool {
	return IsElementInFrame(el, frame, frame.ContainmentPolicy)
}

// InFrameForRemoval applies the frame's removal policy. An element stays in
// the frame while this holds.
func InFrameForRemoval(el, frame *element.Element) bool {
	return IsElementInFrame(el, frame, frame.RemovalPolicy)
}
