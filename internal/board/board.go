// Package board implements the element tree and its operation engine. All
// mutation goes through Apply, which serializes writers and notifies
// subscribers once per committed batch.
package board

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/Gaurav-Gosain/boardkit/internal/geom"
	"github.com/charmbracelet/log"
)

var (
	// ErrPathNotFound is returned when an operation addresses a slot that
	// does not exist in the current tree.
	ErrPathNotFound = errors.New("path not found")
	// ErrInvalidOperation is returned for malformed operations.
	ErrInvalidOperation = errors.New("invalid operation")
)

var logger *log.Logger

func init() {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "board",
	})
	logger.SetLevel(log.WarnLevel)
}

// SetLogLevel sets the logging level for the board package.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}

// Change is delivered to subscribers after a batch commits. Operations holds
// the operations as applied, with move destinations resolved. A change
// from SetReadOnly carries no operations and sets ReadOnly.
type Change struct {
	Operations []Operation
	ReadOnly   *bool
}

// Structural reports whether any applied operation touched the tree.
func (c Change) Structural() bool {
	for _, op := range c.Operations {
		if op.IsStructural() {
			return true
		}
	}
	return false
}

// Subscriber receives committed changes.
type Subscriber func(Change)

// Options configures a new Board.
type Options struct {
	Children        []*element.Element
	ViewPort        element.ViewPort
	ContainerWidth  float64
	ContainerHeight float64
	ReadOnly        bool
	// Clock overrides time.Now for history merging.
	Clock func() time.Time
}

// Board owns the element forest, the camera and the selection.
type Board struct {
	mu sync.RWMutex

	children  []*element.Element
	viewport  element.ViewPort
	selection element.Selection
	readOnly  bool

	containerW float64
	containerH float64

	subs    map[int]Subscriber
	nextSub int

	history *History
	now     func() time.Time
}

// New creates a board. The children are deep-copied.
func New(opts Options) *Board {
	b := &Board{
		children:   element.CloneAll(opts.Children),
		viewport:   opts.ViewPort,
		readOnly:   opts.ReadOnly,
		containerW: opts.ContainerWidth,
		containerH: opts.ContainerHeight,
		subs:       make(map[int]Subscriber),
		history:    NewHistory(),
		now:        opts.Clock,
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.viewport.Zoom == 0 {
		b.viewport.Zoom = 1
	}
	if b.containerW > 0 && b.viewport.Width == 0 {
		b.viewport.Width = b.containerW / b.viewport.Zoom
		b.viewport.Height = b.containerH / b.viewport.Zoom
	}
	return b
}

// Subscribe registers fn and returns a function that removes it.
func (b *Board) Subscribe(fn Subscriber) func() {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *Board) notify(c Change) {
	b.mu.RLock()
	subs := make([]Subscriber, 0, len(b.subs))
	for i := 0; i < b.nextSub; i++ {
		if fn, ok := b.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(c)
	}
}

// Snapshot returns a deep copy of the element forest.
func (b *Board) Snapshot() []*element.Element {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return element.CloneAll(b.children)
}

// View runs fn with read access to the live forest. fn must not retain or
// mutate the elements.
func (b *Board) View(fn func(children []*element.Element)) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	fn(b.children)
}

// Node returns a copy of the element at path, or nil.
func (b *Board) Node(path element.Path) *element.Element {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return NodeAt(b.children, path).Clone()
}

// Parent returns a copy of the parent of path. It is nil for top-level
// paths and missing nodes; use ok to tell them apart.
func (b *Board) Parent(path element.Path) (parent *element.Element, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(path) == 0 || NodeAt(b.children, path) == nil {
		return nil, false
	}
	if len(path) == 1 {
		return nil, true
	}
	return NodeAt(b.children, path.Parent()).Clone(), true
}

// PathOf returns the current path of the element with id.
func (b *Board) PathOf(id string) (element.Path, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return PathOf(b.children, id)
}

// FindByID returns a copy of the element with id, or nil.
func (b *Board) FindByID(id string) *element.Element {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := PathOf(b.children, id)
	if !ok {
		return nil
	}
	return NodeAt(b.children, p).Clone()
}

// Walk visits every element pre-order with its path. The elements are the
// live ones; fn must not mutate them.
func (b *Board) Walk(fn func(path element.Path, el *element.Element) bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	WalkTree(b.children, fn)
}

// ViewPort returns the current camera.
func (b *Board) ViewPort() element.ViewPort {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.viewport
}

// Selection returns a copy of the selection.
func (b *Board) Selection() element.Selection {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.selection.Clone()
}

// SelectedElements resolves the selection to element copies, skipping ids
// that no longer exist.
func (b *Board) SelectedElements() []*element.Element {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*element.Element, 0, len(b.selection.SelectedElements))
	for _, id := range b.selection.SelectedElements {
		if p, ok := PathOf(b.children, id); ok {
			out = append(out, NodeAt(b.children, p).Clone())
		}
	}
	return out
}

// ReadOnly reports whether structural edits are blocked.
func (b *Board) ReadOnly() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.readOnly
}

// SetReadOnly toggles the read-only flag. Subscribers hear about it when
// the flag actually flips.
func (b *Board) SetReadOnly(readOnly bool) {
	b.mu.Lock()
	changed := b.readOnly != readOnly
	b.readOnly = readOnly
	b.mu.Unlock()

	if changed {
		logger.Debug("read-only changed", "readOnly", readOnly)
		b.notify(Change{ReadOnly: &readOnly})
	}
}

// ContainerSize returns the host container size in pixels.
func (b *Board) ContainerSize() (w, h float64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.containerW, b.containerH
}

// SetContainerSize records a new container size and recomputes the visible
// extent at constant zoom.
func (b *Board) SetContainerSize(w, h float64) error {
	b.mu.Lock()
	b.containerW, b.containerH = w, h
	vp := b.viewport
	b.mu.Unlock()

	if vp.Zoom <= 0 {
		vp.Zoom = 1
	}
	next := element.Properties{"width": w / vp.Zoom, "height": h / vp.Zoom}
	return b.Apply(false, SetViewport(vp.Get("width", "height"), next))
}

// ZoomAt multiplies the zoom by factor, keeping the canvas point pivot at
// the same screen position. The zoom is clamped to [MinZoom, MaxZoom].
func (b *Board) ZoomAt(factor float64, pivot geom.Point) error {
	b.mu.RLock()
	vp := b.viewport
	cw, ch := b.containerW, b.containerH
	b.mu.RUnlock()

	if vp.Zoom <= 0 {
		vp.Zoom = 1
	}
	if cw == 0 {
		cw, ch = vp.Width*vp.Zoom, vp.Height*vp.Zoom
	}
	zoom := geom.Clamp(vp.Zoom*factor, element.MinZoom, element.MaxZoom)
	ratio := vp.Zoom / zoom
	next := element.Properties{
		"zoom":   zoom,
		"minX":   pivot.X - (pivot.X-vp.MinX)*ratio,
		"minY":   pivot.Y - (pivot.Y-vp.MinY)*ratio,
		"width":  cw / zoom,
		"height": ch / zoom,
	}
	return b.Apply(false, SetViewport(vp.Properties(), next))
}

// History exposes the undo stack.
func (b *Board) History() *History {
	return b.history
}

// CanUndo reports whether an undo entry exists.
func (b *Board) CanUndo() bool { return b.history.CanUndo() }

// CanRedo reports whether a redo entry exists.
func (b *Board) CanRedo() bool { return b.history.CanRedo() }

// Undo reverts the most recent history entry.
func (b *Board) Undo() (bool, error) {
	entry, ok := b.history.popUndo()
	if !ok {
		return false, nil
	}
	if err := b.Apply(false, entry.inverse()...); err != nil {
		return false, err
	}
	b.history.pushRedo(entry)
	return true, nil
}

// Redo re-applies the most recently undone entry.
func (b *Board) Redo() (bool, error) {
	entry, ok := b.history.popRedo()
	if !ok {
		return false, nil
	}
	if err := b.Apply(false, entry.forward...); err != nil {
		return false, err
	}
	b.history.pushUndoKeepRedo(entry)
	return true, nil
}
