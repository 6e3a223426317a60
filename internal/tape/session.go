package tape

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/Gaurav-Gosain/boardkit/internal/board"
	"github.com/Gaurav-Gosain/boardkit/internal/dnd"
	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/Gaurav-Gosain/boardkit/internal/frame"
	"github.com/Gaurav-Gosain/boardkit/internal/geom"
	"github.com/Gaurav-Gosain/boardkit/internal/mind"
	"github.com/Gaurav-Gosain/boardkit/internal/presentation"
	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "tape",
})

func init() {
	logger.SetLevel(log.WarnLevel)
}

// SetLogLevel sets the log level for the tape package.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}

// ErrUnknownName is returned when a script names an element that does not
// exist.
var ErrUnknownName = errors.New("unknown element")

// SessionOptions configures a Session.
type SessionOptions struct {
	Frames       frame.Defaults
	Resolver     dnd.Resolver
	Presentation presentation.Options
	Sequences    []presentation.Sequence
}

// DefaultSessionOptions returns stock frame, drop and presentation settings
// with instant camera moves.
func DefaultSessionOptions() SessionOptions {
	opts := presentation.DefaultOptions()
	opts.Animate = false
	return SessionOptions{
		Frames:       frame.DefaultDefaults(),
		Resolver:     dnd.Resolver{EdgeBand: dnd.DefaultEdgeBand},
		Presentation: opts,
	}
}

// Session executes board scripts. It owns the board, its presentation
// manager and the table mapping script names to element ids.
type Session struct {
	board *board.Board
	pm    *presentation.Manager
	opts  SessionOptions
	names map[string]string
}

// NewSession wraps b. Elements already on the board are addressable by
// their id or label.
func NewSession(b *board.Board, opts SessionOptions) *Session {
	if opts.Resolver.EdgeBand <= 0 {
		opts.Resolver.EdgeBand = dnd.DefaultEdgeBand
	}
	if opts.Frames.MinWidth == 0 && opts.Frames.MinHeight == 0 {
		opts.Frames = frame.DefaultDefaults()
	}
	return &Session{
		board: b,
		pm:    presentation.New(b, opts.Presentation, opts.Sequences...),
		opts:  opts,
		names: make(map[string]string),
	}
}

// Board returns the session's board.
func (s *Session) Board() *board.Board { return s.board }

// Presentation returns the session's presentation manager.
func (s *Session) Presentation() *presentation.Manager { return s.pm }

// Lookup resolves a script name to an element id. Names bound by the
// script win, then element ids, then element labels.
func (s *Session) Lookup(name string) (string, bool) {
	if id, ok := s.names[name]; ok && s.board.FindByID(id) != nil {
		return id, true
	}
	if s.board.FindByID(name) != nil {
		return name, true
	}
	var found string
	s.board.Walk(func(_ element.Path, el *element.Element) bool {
		if el.Label() == name {
			found = el.ID
			return false
		}
		return true
	})
	return found, found != ""
}

func (s *Session) resolve(name string) (string, element.Path, *element.Element, error) {
	id, ok := s.Lookup(name)
	if !ok {
		return "", nil, nil, fmt.Errorf("%q: %w", name, ErrUnknownName)
	}
	path, ok := s.board.PathOf(id)
	if !ok {
		return "", nil, nil, fmt.Errorf("%q: %w", name, ErrUnknownName)
	}
	return id, path, s.board.Node(path), nil
}

func (s *Session) bind(name, id string) {
	if name != "" {
		s.names[name] = id
	}
}

// Execute runs one command Repeat times.
func (s *Session) Execute(ctx context.Context, cmd Command) error {
	for range max(1, cmd.Repeat) {
		if err := s.execute(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) execute(ctx context.Context, cmd Command) error {
	logger.Debug("execute", "cmd", cmd.String())
	switch cmd.Type {
	case CommandType_Frame:
		return s.addFrame(cmd)
	case CommandType_Shape:
		return s.addShape(cmd)
	case CommandType_Arrow:
		return s.addArrow(cmd)
	case CommandType_Delete:
		return s.delete(cmd.Args[0])
	case CommandType_Rename:
		return s.rename(cmd.Args[0], cmd.Args[1])
	case CommandType_Move:
		return s.move(cmd.Args[0], cmd.Args[1], cmd.Args[2])
	case CommandType_Drag:
		return s.drag(cmd)
	case CommandType_Front, CommandType_Back:
		_, path, _, err := s.resolve(cmd.Args[0])
		if err != nil {
			return err
		}
		if cmd.Type == CommandType_Front {
			_, err = dnd.BringToFront(s.board, path)
		} else {
			_, err = dnd.SendToBack(s.board, path)
		}
		return err

	case CommandType_Wrap:
		return s.wrap(cmd.Args[0], cmd.Args[1:])
	case CommandType_Unwrap:
		_, path, _, err := s.resolve(cmd.Args[0])
		if err != nil {
			return err
		}
		return frame.UnwrapFrame(s.board, path)
	case CommandType_FitFrame, CommandType_Grow:
		_, path, _, err := s.resolve(cmd.Args[0])
		if err != nil {
			return err
		}
		if cmd.Type == CommandType_FitFrame {
			_, err = frame.FitToChildren(s.board, path)
		} else {
			_, err = frame.ResizeToFitChildren(s.board, path)
		}
		return err

	case CommandType_Mind:
		x, y, err := s.point(cmd, 1)
		if err != nil {
			return err
		}
		id, err := mind.NewRoot(s.board, x, y, cmd.Args[0])
		if err != nil {
			return err
		}
		s.bind(cmd.Args[0], id)
		return nil
	case CommandType_Child, CommandType_Sibling:
		id, _, _, err := s.resolve(cmd.Args[0])
		if err != nil {
			return err
		}
		var child string
		if cmd.Type == CommandType_Child {
			child, err = mind.AddChild(s.board, id, cmd.Args[1])
		} else {
			child, err = mind.AddSibling(s.board, id, cmd.Args[1])
		}
		if err != nil {
			return err
		}
		s.bind(cmd.Args[1], child)
		return nil
	case CommandType_Fold:
		id, _, _, err := s.resolve(cmd.Args[0])
		if err != nil {
			return err
		}
		return mind.ToggleFold(s.board, id, element.Direction(cmd.Args[1]))
	case CommandType_Layout:
		return mind.RelayoutAll(s.board)

	case CommandType_Select:
		return s.selectNames(cmd.Args)
	case CommandType_Viewport:
		return s.viewport(cmd)
	case CommandType_Container:
		w, h, err := s.point(cmd, 0)
		if err != nil {
			return err
		}
		return s.board.SetContainerSize(w, h)
	case CommandType_Zoom:
		return s.zoom(cmd)

	case CommandType_Sequence:
		return s.pm.StartCreating(cmd.Args[0])
	case CommandType_Capture:
		if len(cmd.Args) > 0 {
			if err := s.selectNames(cmd.Args); err != nil {
				return err
			}
		}
		f, err := s.pm.Capture()
		if err == nil && f == nil {
			logger.Warn("capture skipped, nothing selected", "line", cmd.Line)
		}
		return err
	case CommandType_Save:
		_, err := s.pm.SaveDraft()
		return err
	case CommandType_Present:
		seq, ok := s.pm.Sequence(cmd.Args[0])
		if !ok {
			return fmt.Errorf("%q: %w", cmd.Args[0], presentation.ErrSequenceNotFound)
		}
		return s.pm.Start(ctx, seq.ID)
	case CommandType_Next:
		_, err := s.pm.Next(ctx)
		return err
	case CommandType_Prev:
		_, err := s.pm.Prev(ctx)
		return err
	case CommandType_Goto:
		i, err := strconv.Atoi(cmd.Args[0])
		if err != nil {
			return fmt.Errorf("frame index: %w", err)
		}
		_, err = s.pm.GoTo(ctx, i)
		return err
	case CommandType_Stop:
		s.pm.Stop()
		return nil
	case CommandType_FitAll:
		return s.pm.FitAll(ctx)

	case CommandType_Undo:
		_, err := s.board.Undo()
		return err
	case CommandType_Redo:
		_, err := s.board.Redo()
		return err
	case CommandType_Sleep:
		return nil
	}
	return fmt.Errorf("unsupported command %s", cmd.Type)
}

func (s *Session) point(cmd Command, from int) (x, y float64, err error) {
	if x, err = cmd.Float(from); err != nil {
		return 0, 0, err
	}
	if y, err = cmd.Float(from + 1); err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func (s *Session) rect(cmd Command) (geom.Rect, error) {
	v, err := cmd.Floats(1)
	if err != nil {
		return geom.Rect{}, err
	}
	if len(v) < 4 {
		return geom.Rect{}, fmt.Errorf("%s: expected x y width height", cmd.Type)
	}
	return geom.R(v[0], v[1], v[2], v[3]), nil
}

// insert appends el to the root list and binds its name.
func (s *Session) insert(name string, el *element.Element) error {
	at := element.Path{len(s.board.Snapshot())}
	if err := s.board.Apply(true, board.InsertNode(at, el)); err != nil {
		return err
	}
	s.bind(name, el.ID)
	return nil
}

func (s *Session) addFrame(cmd Command) error {
	r, err := s.rect(cmd)
	if err != nil {
		return err
	}
	return s.insert(cmd.Args[0], s.opts.Frames.New(cmd.Args[0], r))
}

// addShape inserts a shape and lets any frame under it adopt it.
func (s *Session) addShape(cmd Command) error {
	r, err := s.rect(cmd)
	if err != nil {
		return err
	}
	el := element.New(element.TypeGeometry, r.X, r.Y, r.Width, r.Height)
	el.Name = cmd.Args[0]
	if err := s.insert(cmd.Args[0], el); err != nil {
		return err
	}
	_, err = frame.ApplyDrag(s.board, []string{el.ID})
	return err
}

func (s *Session) addArrow(cmd Command) error {
	v, err := cmd.Floats(1)
	if err != nil {
		return err
	}
	points := make([]geom.Point, 0, len(v)/2)
	for i := 0; i+1 < len(v); i += 2 {
		points = append(points, geom.Point{X: v[i], Y: v[i+1]})
	}
	el := element.NewArrow(points...)
	el.Name = cmd.Args[0]
	if err := s.insert(cmd.Args[0], el); err != nil {
		return err
	}
	_, err = frame.ApplyDrag(s.board, []string{el.ID})
	return err
}

func (s *Session) delete(name string) error {
	id, path, el, err := s.resolve(name)
	if err != nil {
		return err
	}
	if el.IsMindNode() {
		return mind.DeleteNodes(s.board, id)
	}
	return s.board.Apply(true, board.RemoveNode(path, nil))
}

func (s *Session) rename(name, to string) error {
	id, path, el, err := s.resolve(name)
	if err != nil {
		return err
	}
	if el.IsMindNode() {
		err = mind.SetText(s.board, id, to)
	} else {
		err = s.board.Apply(true, board.SetNode(path, el.Get("name"), element.Properties{"name": to}))
	}
	if err != nil {
		return err
	}
	delete(s.names, name)
	s.bind(to, id)
	return nil
}

// move reorders or reparents through the drop resolver, so the same
// nesting rules apply as for a pointer drag. Positions follow drop
// semantics: before is above the target as drawn.
func (s *Session) move(name, where, target string) error {
	_, from, _, err := s.resolve(name)
	if err != nil {
		return err
	}
	_, to, _, err := s.resolve(target)
	if err != nil {
		return err
	}

	band := s.opts.Resolver.EdgeBand
	row := geom.R(0, 0, 100, 4*band)
	pointer := geom.Point{X: 50, Y: 2 * band}
	switch where {
	case "before":
		pointer.Y = 0
	case "after":
		pointer.Y = row.Bottom()
	}

	drop := s.opts.Resolver.Resolve(s.board, dnd.Drag{From: from, To: to, Pointer: pointer, Target: row})
	if !drop.OK {
		logger.Warn("move refused", "element", name, "position", where, "target", target)
		return nil
	}
	return dnd.Commit(s.board, drop)
}

// drag translates an element. Frames carry their children. Other elements
// are adopted or released by frames afterwards, and mind children attach
// to the nearest node or become a new root.
func (s *Session) drag(cmd Command) error {
	dx, dy, err := s.point(cmd, 1)
	if err != nil {
		return err
	}
	id, path, el, err := s.resolve(cmd.Args[0])
	if err != nil {
		return err
	}

	if el.IsMindNode() && len(path) > 1 {
		moved := el.Clone()
		moved.Translate(dx, dy)
		center := geom.Point{X: moved.X + moved.Width/2, Y: moved.Y + moved.Height/2}
		if target, ok := mind.NearestNode(s.board, moved, center); ok {
			return mind.Attach(s.board, id, target)
		}
		return mind.Detach(s.board, id, moved.X, moved.Y)
	}

	if err := frame.MoveAll(s.board, path, dx, dy); err != nil {
		return err
	}
	if el.IsFrame() || el.IsMindNode() {
		return nil
	}
	_, err = frame.ApplyDrag(s.board, []string{id})
	return err
}

func (s *Session) wrap(name string, members []string) error {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		id, _, _, err := s.resolve(m)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	f, err := frame.WrapSelection(s.board, ids, name, s.opts.Frames)
	if err != nil {
		return err
	}
	if f != nil {
		s.bind(name, f.ID)
	}
	return nil
}

func (s *Session) selectNames(names []string) error {
	ids := make([]string, 0, len(names))
	for _, n := range names {
		id, _, _, err := s.resolve(n)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	prev := s.board.Selection().Get("selectedElements")
	return s.board.Apply(false, board.SetSelection(prev, element.Properties{"selectedElements": ids}))
}

func (s *Session) viewport(cmd Command) error {
	zoom, err := cmd.Float(0)
	if err != nil {
		return err
	}
	if zoom <= 0 {
		return fmt.Errorf("viewport zoom must be positive, got %v", zoom)
	}
	x, y, err := s.point(cmd, 1)
	if err != nil {
		return err
	}
	vp := s.board.ViewPort()
	cw, ch := s.board.ContainerSize()
	if cw == 0 {
		cw, ch = vp.Width*vp.Zoom, vp.Height*vp.Zoom
	}
	next := element.ViewPort{Zoom: zoom, MinX: x, MinY: y, Width: cw / zoom, Height: ch / zoom}
	return s.board.Apply(false, board.SetViewport(vp.Properties(), next.Properties()))
}

func (s *Session) zoom(cmd Command) error {
	factor, err := cmd.Float(0)
	if err != nil {
		return err
	}
	vp := s.board.ViewPort()
	pivot := geom.Point{X: vp.MinX + vp.Width/2, Y: vp.MinY + vp.Height/2}
	if len(cmd.Args) == 3 {
		if pivot.X, pivot.Y, err = s.point(cmd, 1); err != nil {
			return err
		}
	}
	return s.board.ZoomAt(factor, pivot)
}
