// Package element defines the board data model: the element tree node,
// its variants, and the viewport and selection records.
package element

import (
	"github.com/Gaurav-Gosain/boardkit/internal/geom"
	"github.com/google/uuid"
)

// Type tags an element variant.
type Type string

const (
	TypeFrame    Type = "frame"
	TypeMindNode Type = "mind-node"
	TypeRichText Type = "richtext"
	TypeCard     Type = "card"
	TypeImage    Type = "image"
	TypeVideo    Type = "video"
	TypeWebview  Type = "webview"
	TypeGeometry Type = "geometry"
	TypeArrow    Type = "arrow"
)

// Policy decides whether an element counts as inside a frame.
type Policy string

const (
	// PolicyFull requires the element to lie entirely inside the padded frame.
	PolicyFull Policy = "full"
	// PolicyPartial requires more than half of the element's area inside.
	PolicyPartial Policy = "partial"
)

// Direction is the side of its root a mind-node grows towards.
type Direction string

const (
	DirectionRight Direction = "right"
	DirectionLeft  Direction = "left"
)

// Frame defaults applied by NewFrame.
const (
	DefaultFramePadding   = 20
	DefaultFrameMinWidth  = 100
	DefaultFrameMinHeight = 60
)

// Element is a node in the board tree. Variant-specific fields are only
// meaningful for the matching Type.
type Element struct {
	ID       string         `json:"id"`
	Type     Type           `json:"type"`
	Name     string         `json:"name,omitempty"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	Points   []geom.Point   `json:"points,omitempty"`
	Children []*Element     `json:"children"`
	Data     map[string]any `json:"data,omitempty"`

	// Frame
	Padding           float64 `json:"padding,omitempty"`
	Background        string  `json:"background,omitempty"`
	Border            string  `json:"border,omitempty"`
	ContainmentPolicy Policy  `json:"containmentPolicy,omitempty"`
	RemovalPolicy     Policy  `json:"removalPolicy,omitempty"`
	AutoResize        bool    `json:"autoResize,omitempty"`
	MinWidth          float64 `json:"minWidth,omitempty"`
	MinHeight         float64 `json:"minHeight,omitempty"`

	// Mind-node
	Text                string    `json:"text,omitempty"`
	Level               int       `json:"level,omitempty"`
	Direction           Direction `json:"direction,omitempty"`
	LeftFold            bool      `json:"isLeftFold,omitempty"`
	RightFold           bool      `json:"isRightFold,omitempty"`
	ActualHeight        float64   `json:"actualHeight,omitempty"`
	ChildrenHeight      float64   `json:"childrenHeight,omitempty"`
	LeftChildrenHeight  float64   `json:"leftChildrenHeight,omitempty"`
	RightChildrenHeight float64   `json:"rightChildrenHeight,omitempty"`
}

// NewID returns a fresh element identifier.
func NewID() string {
	return uuid.New().String()
}

// New creates an element of the given type with a fresh id.
func New(typ Type, x, y, w, h float64) *Element {
	return &Element{
		ID:       NewID(),
		Type:     typ,
		X:        x,
		Y:        y,
		Width:    w,
		Height:   h,
		Children: []*Element{},
	}
}

// NewFrame creates a frame with the default padding, policies and minimum size.
func NewFrame(name string, r geom.Rect) *Element {
	f := New(TypeFrame, r.X, r.Y, r.Width, r.Height)
	f.Name = name
	f.Padding = DefaultFramePadding
	f.ContainmentPolicy = PolicyPartial
	f.RemovalPolicy = PolicyPartial
	f.AutoResize = true
	f.MinWidth = DefaultFrameMinWidth
	f.MinHeight = DefaultFrameMinHeight
	return f
}

// NewArrow creates an arrow through the given points. Its rect fields hold
// the point bounds.
func NewArrow(points ...geom.Point) *Element {
	a := New(TypeArrow, 0, 0, 0, 0)
	a.Points = append([]geom.Point(nil), points...)
	a.syncArrowRect()
	return a
}

// NewMindNode creates a mind-node root at level 1.
func NewMindNode(text string, x, y, w, h float64) *Element {
	n := New(TypeMindNode, x, y, w, h)
	n.Text = text
	n.Level = 1
	n.ActualHeight = h
	return n
}

// IsFrame reports whether e is a frame.
func (e *Element) IsFrame() bool { return e != nil && e.Type == TypeFrame }

// IsMindNode reports whether e is a mind-node.
func (e *Element) IsMindNode() bool { return e != nil && e.Type == TypeMindNode }

// IsArrow reports whether e is an arrow.
func (e *Element) IsArrow() bool { return e != nil && e.Type == TypeArrow }

// IsContainer reports whether the variant may hold children.
func (e *Element) IsContainer() bool {
	return e != nil && (e.Type == TypeFrame || e.Type == TypeMindNode)
}

// Label returns the most human readable name for the element.
func (e *Element) Label() string {
	switch {
	case e.Name != "":
		return e.Name
	case e.Text != "":
		return e.Text
	default:
		return e.ID
	}
}

// Rect returns the element's stored rectangle.
func (e *Element) Rect() geom.Rect {
	return geom.R(e.X, e.Y, e.Width, e.Height)
}

// Bounds returns the element's bounding box. Arrows use their points.
func (e *Element) Bounds() geom.Rect {
	if e.Type == TypeArrow && len(e.Points) > 0 {
		r, _ := geom.BoundsOfPoints(e.Points)
		return r
	}
	return e.Rect()
}

// SetRect overwrites position and size.
func (e *Element) SetRect(r geom.Rect) {
	e.X, e.Y, e.Width, e.Height = r.X, r.Y, r.Width, r.Height
}

// Translate shifts the element by (dx, dy). Children are not touched.
func (e *Element) Translate(dx, dy float64) {
	e.X += dx
	e.Y += dy
	for i := range e.Points {
		e.Points[i].X += dx
		e.Points[i].Y += dy
	}
}

func (e *Element) syncArrowRect() {
	if r, ok := geom.BoundsOfPoints(e.Points); ok {
		e.SetRect(r)
	}
}

// Clone returns a deep copy of the element and its subtree.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	c := *e
	if e.Points != nil {
		c.Points = append([]geom.Point(nil), e.Points...)
	}
	if e.Data != nil {
		c.Data = make(map[string]any, len(e.Data))
		for k, v := range e.Data {
			c.Data[k] = v
		}
	}
	c.Children = make([]*Element, len(e.Children))
	for i, child := range e.Children {
		c.Children[i] = child.Clone()
	}
	return &c
}

// CloneShallow copies the element with an empty child list.
func (e *Element) CloneShallow() *Element {
	c := e.Clone()
	c.Children = []*Element{}
	return c
}

// Walk visits e and its descendants depth-first, pre-order. Returning false
// from fn skips the subtree.
func (e *Element) Walk(fn func(el *Element) bool) {
	if !fn(e) {
		return
	}
	for _, child := range e.Children {
		child.Walk(fn)
	}
}

// Find returns the descendant (or e itself) with the given id.
func (e *Element) Find(id string) *Element {
	var found *Element
	e.Walk(func(el *Element) bool {
		if found != nil {
			return false
		}
		if el.ID == id {
			found = el
			return false
		}
		return true
	})
	return found
}

// CloneAll deep-copies a list of elements.
func CloneAll(list []*Element) []*Element {
	out := make([]*Element, len(list))
	for i, el := range list {
		out[i] = el.Clone()
	}
	return out
}
