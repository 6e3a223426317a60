package tui

import (
	"math"
	"strings"

	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/Gaurav-Gosain/boardkit/internal/geom"
	"github.com/Gaurav-Gosain/boardkit/internal/mind"
	"github.com/charmbracelet/x/ansi"
)

// Size of one terminal cell in board units. The board's container is the
// terminal size scaled by these.
const (
	CellWidth  = 8
	CellHeight = 16
)

// Border is the set of runes used to outline a box.
type Border struct {
	Top, Bottom, Left, Right                   rune
	TopLeft, TopRight, BottomLeft, BottomRight rune
}

var (
	frameBorder = Border{'╌', '╌', '╎', '╎', '┌', '┐', '└', '┘'}
	shapeBorder = Border{'─', '─', '│', '│', '┌', '┐', '└', '┘'}
	mindBorder  = Border{'─', '─', '│', '│', '╭', '╮', '╰', '╯'}
)

// Canvas is a grid of runes the board is rasterized into.
type Canvas struct {
	width, height int
	cells         [][]rune
}

// NewCanvas returns a blank canvas.
func NewCanvas(width, height int) *Canvas {
	width, height = max(width, 0), max(height, 0)
	cells := make([][]rune, height)
	for y := range cells {
		cells[y] = []rune(strings.Repeat(" ", width))
	}
	return &Canvas{width: width, height: height, cells: cells}
}

// Set writes r at (x, y); positions off the canvas are ignored.
func (c *Canvas) Set(x, y int, r rune) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	c.cells[y][x] = r
}

// At returns the rune at (x, y), or 0 off the canvas.
func (c *Canvas) At(x, y int) rune {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return 0
	}
	return c.cells[y][x]
}

// Box outlines the cells from (x0, y0) to (x1, y1) inclusive and clears the
// inside. A box too small for a border becomes a single marker.
func (c *Canvas) Box(x0, y0, x1, y1 int, b Border) {
	if x1 <= x0 || y1 <= y0 {
		c.Set(x0, y0, '▪')
		return
	}
	for y := y0 + 1; y < y1; y++ {
		for x := x0 + 1; x < x1; x++ {
			c.Set(x, y, ' ')
		}
		c.Set(x0, y, b.Left)
		c.Set(x1, y, b.Right)
	}
	for x := x0 + 1; x < x1; x++ {
		c.Set(x, y0, b.Top)
		c.Set(x, y1, b.Bottom)
	}
	c.Set(x0, y0, b.TopLeft)
	c.Set(x1, y0, b.TopRight)
	c.Set(x0, y1, b.BottomLeft)
	c.Set(x1, y1, b.BottomRight)
}

// Text writes s from (x, y), cut to at most maxWidth cells.
func (c *Canvas) Text(x, y int, s string, maxWidth int) {
	if maxWidth <= 0 {
		return
	}
	if ansi.StringWidth(s) > maxWidth {
		s = ansi.Truncate(s, maxWidth, "…")
	}
	for i, r := range []rune(s) {
		c.Set(x+i, y, r)
	}
}

// Line draws a straight run of r between two cells.
func (c *Canvas) Line(x0, y0, x1, y1 int, r rune) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.Set(x0, y0, r)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// String joins the rows with newlines.
func (c *Canvas) String() string {
	lines := make([]string, c.height)
	for y, row := range c.cells {
		lines[y] = string(row)
	}
	return strings.Join(lines, "\n")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// projection maps board coordinates into canvas cells through a camera.
type projection struct {
	vp         element.ViewPort
	cols, rows int
}

func (p projection) point(pt geom.Point) (int, int) {
	x := (pt.X - p.vp.MinX) / p.vp.Width * float64(p.cols)
	y := (pt.Y - p.vp.MinY) / p.vp.Height * float64(p.rows)
	return int(math.Floor(x)), int(math.Floor(y))
}

func (p projection) rect(r geom.Rect) (x0, y0, x1, y1 int) {
	x0, y0 = p.point(geom.Point{X: r.X, Y: r.Y})
	x1, y1 = p.point(geom.Point{X: r.Right(), Y: r.Bottom()})
	return x0, y0, max(x1-1, x0), max(y1-1, y0)
}

// Draw rasterizes children as seen through vp onto a cols x rows canvas.
// Later siblings are drawn over earlier ones.
func Draw(children []*element.Element, vp element.ViewPort, cols, rows int) *Canvas {
	c := NewCanvas(cols, rows)
	if vp.Width <= 0 || vp.Height <= 0 {
		return c
	}
	p := projection{vp: vp, cols: cols, rows: rows}
	for _, el := range children {
		drawElement(c, p, el)
	}
	return c
}

func drawElement(c *Canvas, p projection, el *element.Element) {
	if el == nil {
		return
	}
	switch {
	case el.IsArrow():
		drawArrow(c, p, el)
	case el.IsMindNode():
		drawMindLinks(c, p, el)
		drawMindNodes(c, p, el)
	case el.IsFrame():
		x0, y0, x1, y1 := p.rect(el.Rect())
		c.Box(x0, y0, x1, y1, frameBorder)
		if el.Name != "" {
			c.Text(x0+1, y0, " "+el.Name+" ", x1-x0-1)
		}
		for _, child := range el.Children {
			drawElement(c, p, child)
		}
	default:
		x0, y0, x1, y1 := p.rect(el.Rect())
		c.Box(x0, y0, x1, y1, shapeBorder)
		label := el.Name
		if label == "" {
			label = el.Text
		}
		if label != "" && y1-y0 >= 2 {
			c.Text(x0+1, (y0+y1)/2, label, x1-x0-1)
		}
	}
}

func drawArrow(c *Canvas, p projection, el *element.Element) {
	if len(el.Points) < 2 {
		return
	}
	for i := 1; i < len(el.Points); i++ {
		x0, y0 := p.point(el.Points[i-1])
		x1, y1 := p.point(el.Points[i])
		c.Line(x0, y0, x1, y1, '·')
	}
	from, tip := el.Points[len(el.Points)-2], el.Points[len(el.Points)-1]
	x, y := p.point(tip)
	c.Set(x, y, arrowHead(tip.X-from.X, tip.Y-from.Y))
}

func arrowHead(dx, dy float64) rune {
	if math.Abs(dx) >= math.Abs(dy) {
		if dx < 0 {
			return '◀'
		}
		return '▶'
	}
	if dy < 0 {
		return '▲'
	}
	return '▼'
}

// drawMindLinks draws elbow connectors from each visible child to its parent.
func drawMindLinks(c *Canvas, p projection, n *element.Element) {
	for _, child := range n.Children {
		if mind.Folded(n, child) {
			continue
		}
		px, py := p.point(geom.Point{X: n.X + n.Width, Y: n.Y + n.Height/2})
		cx, cy := p.point(geom.Point{X: child.X, Y: child.Y + child.Height/2})
		if child.Direction == element.DirectionLeft {
			px, py = p.point(geom.Point{X: n.X, Y: n.Y + n.Height/2})
			cx, cy = p.point(geom.Point{X: child.X + child.Width, Y: child.Y + child.Height/2})
		}
		mid := (px + cx) / 2
		c.Line(px, py, mid, py, '─')
		c.Line(mid, py, mid, cy, '│')
		c.Line(mid, cy, cx, cy, '─')
		drawMindLinks(c, p, child)
	}
}

func drawMindNodes(c *Canvas, p projection, n *element.Element) {
	x0, y0, x1, y1 := p.rect(n.Rect())
	c.Box(x0, y0, x1, y1, mindBorder)
	if y1 > y0 {
		c.Text(x0+1, (y0+y1)/2, n.Text, x1-x0-1)
	}
	for _, child := range n.Children {
		if !mind.Folded(n, child) {
			drawMindNodes(c, p, child)
		}
	}
}
