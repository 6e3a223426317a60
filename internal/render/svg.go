// Package render draws boards as SVG wireframes.
package render

import (
	"fmt"
	"io"
	"math"

	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/Gaurav-Gosain/boardkit/internal/geom"
	"github.com/Gaurav-Gosain/boardkit/internal/mind"
	"github.com/Gaurav-Gosain/boardkit/internal/presentation"
	svg "github.com/ajstarks/svgo"
)

// Style holds the SVG style strings per element kind.
type Style struct {
	Background string
	Frame      string
	FrameLabel string
	Shape      string
	Label      string
	Arrow      string
	ArrowHead  string
	MindNode   string
	MindRoot   string
	MindText   string
	MindLink   string
	Camera     string
	CameraText string
}

// DefaultStyle is a light wireframe look.
func DefaultStyle() Style {
	return Style{
		Background: "fill:#ffffff",
		Frame:      "fill:#f8f9fb;stroke:#8a94a6;stroke-width:1;stroke-dasharray:6,3",
		FrameLabel: "font-family:sans-serif;font-size:12px;fill:#5b6475",
		Shape:      "fill:#e8eefc;stroke:#3d5a99;stroke-width:1",
		Label:      "font-family:sans-serif;font-size:11px;fill:#1f2a44;text-anchor:middle",
		Arrow:      "fill:none;stroke:#333;stroke-width:1.5",
		ArrowHead:  "fill:#333",
		MindNode:   "fill:#fff7e0;stroke:#c9a227;stroke-width:1",
		MindRoot:   "fill:#ffe8a3;stroke:#a07d10;stroke-width:2",
		MindText:   "font-family:monospace;font-size:12px;fill:#3a2f05;text-anchor:middle",
		MindLink:   "fill:none;stroke:#c9a227;stroke-width:1.5",
		Camera:     "fill:none;stroke:#d6336c;stroke-width:1.5;stroke-dasharray:4,2",
		CameraText: "font-family:sans-serif;font-size:14px;font-weight:bold;fill:#d6336c",
	}
}

// Options controls an export.
type Options struct {
	// Padding around the drawn content, in board units.
	Padding float64
	// ViewPort crops the output to a camera instead of the content bounds.
	ViewPort *element.ViewPort
	// Sequence overlays the cameras of its frames, numbered from 1.
	Sequence *presentation.Sequence
	Labels   bool
	Style    Style
}

// DefaultOptions exports the whole board with labels.
func DefaultOptions() Options {
	return Options{Padding: 20, Labels: true, Style: DefaultStyle()}
}

// Bounds returns the area an export of children covers.
func Bounds(children []*element.Element, opts Options) (geom.Rect, bool) {
	if opts.ViewPort != nil {
		return opts.ViewPort.Rect(), opts.ViewPort.Width > 0 && opts.ViewPort.Height > 0
	}
	var rects []geom.Rect
	for _, el := range children {
		if el == nil {
			continue
		}
		el.Walk(func(e *element.Element) bool {
			if e != nil {
				rects = append(rects, e.Bounds())
			}
			return e != nil
		})
	}
	if opts.Sequence != nil {
		for _, f := range opts.Sequence.Frames {
			rects = append(rects, f.ViewPort.Rect())
		}
	}
	r, ok := geom.UnionAll(rects)
	if !ok {
		return geom.Rect{}, false
	}
	return r.Pad(opts.Padding), true
}

// SVG writes children as an SVG document. Later siblings are drawn on top.
func SVG(w io.Writer, children []*element.Element, opts Options) error {
	if opts.Style == (Style{}) {
		opts.Style = DefaultStyle()
	}
	bounds, ok := Bounds(children, opts)
	if !ok {
		bounds = geom.R(0, 0, 100, 100)
	}

	width, height := px(bounds.Width), px(bounds.Height)
	if opts.ViewPort != nil && opts.ViewPort.Zoom > 0 {
		width = px(bounds.Width * opts.ViewPort.Zoom)
		height = px(bounds.Height * opts.ViewPort.Zoom)
	}

	ew := &errWriter{w: w}
	r := &renderer{canvas: svg.New(ew), opts: opts}
	r.canvas.Startview(width, height, px(bounds.X), px(bounds.Y), px(bounds.Width), px(bounds.Height))
	r.canvas.Rect(px(bounds.X), px(bounds.Y), px(bounds.Width), px(bounds.Height), opts.Style.Background)

	for _, el := range children {
		r.draw(el)
	}
	if opts.Sequence != nil {
		r.cameras(*opts.Sequence)
	}
	r.canvas.End()
	return ew.err
}

// errWriter keeps the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

type renderer struct {
	canvas *svg.SVG
	opts   Options
}

func px(v float64) int {
	return int(math.Round(v))
}

func (r *renderer) draw(el *element.Element) {
	if el == nil {
		return
	}
	s := r.opts.Style
	switch {
	case el.IsFrame():
		r.canvas.Gid(el.ID)
		r.canvas.Rect(px(el.X), px(el.Y), px(el.Width), px(el.Height), s.Frame)
		if r.opts.Labels && el.Name != "" {
			r.canvas.Text(px(el.X), px(el.Y-6), el.Name, s.FrameLabel)
		}
		for _, c := range el.Children {
			r.draw(c)
		}
		r.canvas.Gend()

	case el.IsArrow():
		r.arrow(el)

	case el.IsMindNode():
		r.mindTree(el)

	default:
		r.canvas.Rect(px(el.X), px(el.Y), px(el.Width), px(el.Height), s.Shape)
		if r.opts.Labels && el.Name != "" {
			c := el.Rect().Center()
			r.canvas.Text(px(c.X), px(c.Y+4), el.Name, s.Label)
		}
	}
}

func (r *renderer) arrow(el *element.Element) {
	if len(el.Points) < 2 {
		return
	}
	xs := make([]int, len(el.Points))
	ys := make([]int, len(el.Points))
	for i, p := range el.Points {
		xs[i], ys[i] = px(p.X), px(p.Y)
	}
	r.canvas.Polyline(xs, ys, r.opts.Style.Arrow)

	tip, from := el.Points[len(el.Points)-1], el.Points[len(el.Points)-2]
	angle := math.Atan2(tip.Y-from.Y, tip.X-from.X)
	const size, spread = 9.0, 0.45
	r.canvas.Polygon(
		[]int{px(tip.X), px(tip.X - size*math.Cos(angle-spread)), px(tip.X - size*math.Cos(angle+spread))},
		[]int{px(tip.Y), px(tip.Y - size*math.Sin(angle-spread)), px(tip.Y - size*math.Sin(angle+spread))},
		r.opts.Style.ArrowHead,
	)
}

// mindTree draws links first so nodes cover their ends.
func (r *renderer) mindTree(root *element.Element) {
	r.mindLinks(root)
	r.mindNodes(root)
}

func (r *renderer) mindLinks(n *element.Element) {
	for _, c := range n.Children {
		if mind.Folded(n, c) {
			continue
		}
		x1, x2 := n.X+n.Width, c.X
		if c.Direction == element.DirectionLeft {
			x1, x2 = n.X, c.X+c.Width
		}
		y1, y2 := n.Y+n.Height/2, c.Y+c.Height/2
		mid := (x1 + x2) / 2
		r.canvas.Bezier(px(x1), px(y1), px(mid), px(y1), px(mid), px(y2), px(x2), px(y2), r.opts.Style.MindLink)
		r.mindLinks(c)
	}
}

func (r *renderer) mindNodes(n *element.Element) {
	style := r.opts.Style.MindNode
	if n.Level <= 1 {
		style = r.opts.Style.MindRoot
	}
	r.canvas.Roundrect(px(n.X), px(n.Y), px(n.Width), px(n.Height), 6, 6, style)
	c := n.Rect().Center()
	r.canvas.Text(px(c.X), px(c.Y+4), n.Text, r.opts.Style.MindText)

	for _, child := range n.Children {
		if !mind.Folded(n, child) {
			r.mindNodes(child)
		}
	}
}

func (r *renderer) cameras(seq presentation.Sequence) {
	for i, f := range seq.Frames {
		vr := f.ViewPort.Rect()
		r.canvas.Rect(px(vr.X), px(vr.Y), px(vr.Width), px(vr.Height), r.opts.Style.Camera)
		r.canvas.Text(px(vr.X+6), px(vr.Y+18), fmt.Sprint(i+1), r.opts.Style.CameraText)
	}
}
