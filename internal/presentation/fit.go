package presentation

import (
	"math"

	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/Gaurav-Gosain/boardkit/internal/geom"
)

// DefaultPadding is the margin left around fitted elements.
const DefaultPadding = 50

// FitElementsInViewport computes a camera showing every element plus
// padding inside a container of cw x ch pixels. The box is scaled to fit
// the tighter axis and centered on the other, so nothing is cropped.
// It returns nil when the elements have no bounds or the container is empty.
func FitElementsInViewport(elements []*element.Element, padding, cw, ch float64) *element.ViewPort {
	if cw <= 0 || ch <= 0 {
		return nil
	}
	rects := make([]geom.Rect, 0, len(elements))
	for _, el := range elements {
		if el == nil {
			continue
		}
		rects = append(rects, el.Bounds())
	}
	box, ok := geom.UnionAll(rects)
	if !ok {
		return nil
	}
	box = box.Pad(padding)
	if box.Width <= 0 || box.Height <= 0 {
		return nil
	}

	zoom := math.Min(cw/box.Width, ch/box.Height)
	width, height := cw/zoom, ch/zoom
	return &element.ViewPort{
		Zoom:   zoom,
		MinX:   box.X - (width-box.Width)/2,
		MinY:   box.Y - (height-box.Height)/2,
		Width:  width,
		Height: height,
	}
}

func pointInViewport(p geom.Point, vp element.ViewPort) bool {
	return p.X >= vp.MinX && p.X <= vp.MinX+vp.Width &&
		p.Y >= vp.MinY && p.Y <= vp.MinY+vp.Height
}

// IsElementInViewport reports whether el is at least partly visible. An
// arrow counts when any of its points is visible; other elements when
// their rectangle touches the visible region.
func IsElementInViewport(el *element.Element, vp element.ViewPort) bool {
	if el.IsArrow() && len(el.Points) > 0 {
		for _, p := range el.Points {
			if pointInViewport(p, vp) {
				return true
			}
		}
		return false
	}
	r := el.Rect()
	return r.Right() >= vp.MinX && r.X <= vp.MinX+vp.Width &&
		r.Bottom() >= vp.MinY && r.Y <= vp.MinY+vp.Height
}

// ElementsInViewport filters elements down to the visible ones.
func ElementsInViewport(elements []*element.Element, vp element.ViewPort) []*element.Element {
	var out []*element.Element
	for _, el := range elements {
		if IsElementInViewport(el, vp) {
			out = append(out, el)
		}
	}
	return out
}
