package presentation_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Gaurav-Gosain/boardkit/internal/board"
	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/Gaurav-Gosain/boardkit/internal/geom"
	"github.com/Gaurav-Gosain/boardkit/internal/presentation"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func shape(id string, x, y, w, h float64) *element.Element {
	el := element.New(element.TypeGeometry, x, y, w, h)
	el.ID = id
	return el
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func sameViewPort(a, b element.ViewPort) bool {
	return approx(a.Zoom, b.Zoom) && approx(a.MinX, b.MinX) && approx(a.MinY, b.MinY) &&
		approx(a.Width, b.Width) && approx(a.Height, b.Height)
}

func newBoard() *board.Board {
	return board.New(board.Options{
		Children: []*element.Element{
			shape("a", 0, 0, 100, 100),
			shape("b", 500, 0, 100, 100),
			shape("c", 0, 500, 100, 100),
		},
		ContainerWidth:  400,
		ContainerHeight: 200,
	})
}

func frameAt(zoom, x, y float64) presentation.Frame {
	return presentation.NewFrame(element.ViewPort{Zoom: zoom, MinX: x, MinY: y, Width: 400 / zoom, Height: 200 / zoom}, nil)
}

func newManager(b *board.Board, opts presentation.Options) (*presentation.Manager, presentation.Sequence) {
	m := presentation.New(b, opts)
	s := m.AddSequence("talk", []presentation.Frame{frameAt(1, 0, 0), frameAt(2, 100, 0), frameAt(1, 0, 300)})
	return m, s
}

// =============================================================================
// Fit Tests
// =============================================================================

func TestFitElementsInViewport(t *testing.T) {
	a := shape("a", 0, 0, 100, 100)
	tests := []struct {
		name     string
		cw, ch   float64
		expected element.ViewPort
	}{
		{"wide container", 400, 200, element.ViewPort{Zoom: 1, MinX: -150, MinY: -50, Width: 400, Height: 200}},
		{"square container", 800, 800, element.ViewPort{Zoom: 4, MinX: -50, MinY: -50, Width: 200, Height: 200}},
		{"tall container", 100, 400, element.ViewPort{Zoom: 0.5, MinX: -50, MinY: -350, Width: 200, Height: 800}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp := presentation.FitElementsInViewport([]*element.Element{a}, 50, tt.cw, tt.ch)
			if vp == nil {
				t.Fatal("Expected a viewport")
			}
			if !sameViewPort(*vp, tt.expected) {
				t.Errorf("Expected %+v, got %+v", tt.expected, *vp)
			}
		})
	}
}

func TestFitElementsInViewportEmpty(t *testing.T) {
	if vp := presentation.FitElementsInViewport(nil, 50, 400, 200); vp != nil {
		t.Errorf("Expected nil for no elements, got %+v", vp)
	}
	if vp := presentation.FitElementsInViewport([]*element.Element{shape("a", 0, 0, 1, 1)}, 50, 0, 200); vp != nil {
		t.Errorf("Expected nil for empty container, got %+v", vp)
	}
}

func TestFitUnionsElements(t *testing.T) {
	els := []*element.Element{shape("a", 0, 0, 100, 100), shape("b", 300, 100, 100, 100)}
	vp := presentation.FitElementsInViewport(els, 0, 400, 200)
	expected := element.ViewPort{Zoom: 1, MinX: 0, MinY: 0, Width: 400, Height: 200}
	if vp == nil || !sameViewPort(*vp, expected) {
		t.Errorf("Expected %+v, got %+v", expected, vp)
	}
}

func TestIsElementInViewport(t *testing.T) {
	vp := element.ViewPort{Zoom: 1, MinX: 0, MinY: 0, Width: 100, Height: 100}
	arrowIn := element.NewArrow(geom.Point{X: -50, Y: -50}, geom.Point{X: 50, Y: 50})
	arrowOut := element.NewArrow(geom.Point{X: -50, Y: -50}, geom.Point{X: -10, Y: 200})

	tests := []struct {
		name     string
		el       *element.Element
		expected bool
	}{
		{"inside", shape("a", 10, 10, 10, 10), true},
		{"overlapping", shape("b", 90, 90, 50, 50), true},
		{"touching edge", shape("c", 100, 0, 10, 10), true},
		{"outside", shape("d", 101, 0, 10, 10), false},
		{"arrow with a visible point", arrowIn, true},
		{"arrow without visible points", arrowOut, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := presentation.IsElementInViewport(tt.el, vp); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}

	visible := presentation.ElementsInViewport([]*element.Element{tests[0].el, tests[3].el}, vp)
	if len(visible) != 1 || visible[0].ID != "a" {
		t.Errorf("Expected only a visible, got %v", visible)
	}
}

// =============================================================================
// Animation Tests
// =============================================================================

func TestAnimationUpdate(t *testing.T) {
	start := time.Unix(0, 0)
	from := element.ViewPort{Zoom: 1, Width: 100, Height: 100}
	to := element.ViewPort{Zoom: 2, MinX: 100, Width: 50, Height: 50}
	a := presentation.NewAnimation(from, to, start, 500*time.Millisecond)

	if vp := a.Update(start); !sameViewPort(vp, from) {
		t.Errorf("Expected start camera, got %+v", vp)
	}

	vp := a.Update(start.Add(250 * time.Millisecond))
	// ease-out cubic at t=0.5 is 0.875
	if !approx(a.Progress, 0.875) || !approx(vp.MinX, 87.5) {
		t.Errorf("Expected progress 0.875 and minX 87.5, got %v and %v", a.Progress, vp.MinX)
	}
	if a.Complete {
		t.Error("Expected animation to be running")
	}

	if vp := a.Update(start.Add(time.Second)); vp != to || !a.Complete {
		t.Errorf("Expected exact target once complete, got %+v", vp)
	}
}

func TestAnimationRunCancelSnaps(t *testing.T) {
	start := time.Unix(0, 0)
	to := element.ViewPort{Zoom: 2, MinX: 10}
	a := presentation.NewAnimation(element.ViewPort{Zoom: 1}, to, start, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var last element.ViewPort
	err := a.Run(ctx, 60, func() time.Time { return start }, func(vp element.ViewPort) { last = vp })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if last != to || !a.Complete {
		t.Errorf("Expected camera snapped to %+v, got %+v", to, last)
	}
}

func TestAnimationRunCompletes(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	to := element.ViewPort{Zoom: 2}
	a := presentation.NewAnimation(element.ViewPort{Zoom: 1}, to, clock.now, 10*time.Millisecond)

	var frames int
	err := a.Run(context.Background(), 1000, func() time.Time {
		clock.now = clock.now.Add(4 * time.Millisecond)
		return clock.now
	}, func(element.ViewPort) { frames++ })
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !a.Complete || frames < 2 {
		t.Errorf("Expected completed animation over several frames, got %d frames", frames)
	}
}

// =============================================================================
// Sequence Tests
// =============================================================================

func TestSequenceCRUD(t *testing.T) {
	m := presentation.New(newBoard(), presentation.Options{Animate: false})

	var changes int
	m.On(func(ev presentation.Event) {
		if ev.Type == presentation.EventSequencesChanged {
			changes++
		}
	})

	s := m.SaveSequence("intro", []presentation.Frame{frameAt(1, 0, 0)}, "")
	if s.ID == "" || s.Name != "intro" {
		t.Fatalf("Expected new sequence, got %+v", s)
	}

	updated := m.SaveSequence("renamed", []presentation.Frame{frameAt(1, 0, 0), frameAt(2, 0, 0)}, s.ID)
	if updated.ID != s.ID || updated.Name != "renamed" || len(updated.Frames) != 2 {
		t.Errorf("Expected upsert of %s, got %+v", s.ID, updated)
	}
	if len(m.Sequences()) != 1 {
		t.Errorf("Expected one sequence, got %d", len(m.Sequences()))
	}

	if _, err := m.UpdateSequence(presentation.Sequence{ID: "missing"}); !errors.Is(err, presentation.ErrSequenceNotFound) {
		t.Errorf("Expected ErrSequenceNotFound, got %v", err)
	}

	if got, ok := m.Sequence("renamed"); !ok || got.ID != s.ID {
		t.Errorf("Expected lookup by name, got %+v", got)
	}

	if err := m.SetCurrentSequence(s.ID); err != nil {
		t.Fatalf("SetCurrentSequence failed: %v", err)
	}
	if !m.DeleteSequence(s.ID) {
		t.Fatal("Expected sequence deleted")
	}
	if _, ok := m.CurrentSequence(); ok {
		t.Error("Expected current sequence reset after delete")
	}
	if m.DeleteSequence(s.ID) {
		t.Error("Expected second delete to fail")
	}
	if changes != 3 {
		t.Errorf("Expected 3 sequence change events, got %d", changes)
	}
}

func TestSetCurrentSequenceRequiresFrames(t *testing.T) {
	m := presentation.New(newBoard(), presentation.Options{})
	empty := m.AddSequence("empty", nil)
	if err := m.SetCurrentSequence(empty.ID); !errors.Is(err, presentation.ErrNoFrames) {
		t.Errorf("Expected ErrNoFrames, got %v", err)
	}
	if err := m.SetCurrentSequence("nope"); !errors.Is(err, presentation.ErrSequenceNotFound) {
		t.Errorf("Expected ErrSequenceNotFound, got %v", err)
	}
}

func TestSequenceClone(t *testing.T) {
	m := presentation.New(newBoard(), presentation.Options{})
	s := m.AddSequence("x", []presentation.Frame{presentation.NewFrame(element.ViewPort{Zoom: 1}, []string{"a"})})
	s.Frames[0].Elements[0] = "mutated"

	got, _ := m.Sequence(s.ID)
	if got.Frames[0].Elements[0] != "a" {
		t.Error("Expected stored sequence isolated from caller copy")
	}
}

// =============================================================================
// Creating Tests
// =============================================================================

func TestCreateFrameFromSelectedElements(t *testing.T) {
	b := newBoard()
	m := presentation.New(b, presentation.Options{Padding: 50})

	if f := m.CreateFrameFromSelectedElements(); f != nil {
		t.Errorf("Expected nil frame without a selection, got %+v", f)
	}

	if err := b.Apply(false, board.SetSelection(nil, element.Properties{"selectedElements": []string{"a"}})); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	f := m.CreateFrameFromSelectedElements()
	if f == nil {
		t.Fatal("Expected a frame")
	}
	expected := element.ViewPort{Zoom: 1, MinX: -150, MinY: -50, Width: 400, Height: 200}
	if !sameViewPort(f.ViewPort, expected) {
		t.Errorf("Expected %+v, got %+v", expected, f.ViewPort)
	}
	if len(f.Elements) != 1 || f.Elements[0] != "a" {
		t.Errorf("Expected frame elements [a], got %v", f.Elements)
	}
}

func TestCaptureAndSaveDraft(t *testing.T) {
	b := newBoard()
	m := presentation.New(b, presentation.Options{})

	if _, err := m.Capture(); err == nil {
		t.Error("Expected capture outside creating mode to fail")
	}
	if err := m.StartCreating("deck"); err != nil {
		t.Fatalf("StartCreating failed: %v", err)
	}
	for _, id := range []string{"a", "b"} {
		_ = b.Apply(false, board.SetSelection(nil, element.Properties{"selectedElements": []string{id}}))
		if _, err := m.Capture(); err != nil {
			t.Fatalf("Capture failed: %v", err)
		}
	}
	if len(m.DraftFrames()) != 2 {
		t.Fatalf("Expected 2 draft frames, got %d", len(m.DraftFrames()))
	}

	s, err := m.SaveDraft()
	if err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}
	if s.Name != "deck" || len(s.Frames) != 2 {
		t.Errorf("Expected deck with 2 frames, got %+v", s)
	}
	if m.State() != presentation.StateIdle {
		t.Errorf("Expected idle after save, got %s", m.State())
	}

	// creating again under the same name edits the stored sequence
	_ = m.StartCreating("deck")
	if len(m.DraftFrames()) != 2 {
		t.Errorf("Expected existing frames loaded, got %d", len(m.DraftFrames()))
	}
	again, _ := m.SaveDraft()
	if again.ID != s.ID || len(m.Sequences()) != 1 {
		t.Errorf("Expected save to update %s, got %s with %d sequences", s.ID, again.ID, len(m.Sequences()))
	}
}

// =============================================================================
// Presenting Tests
// =============================================================================

func TestStartAndStopRestoresReadOnly(t *testing.T) {
	for _, readOnly := range []bool{false, true} {
		b := newBoard()
		b.SetReadOnly(readOnly)
		m, s := newManager(b, presentation.Options{})

		if err := m.Start(context.Background(), s.ID); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		if !b.ReadOnly() || !m.IsPresenting() {
			t.Error("Expected read-only board while presenting")
		}
		if !sameViewPort(b.ViewPort(), s.Frames[0].ViewPort) {
			t.Errorf("Expected first frame camera, got %+v", b.ViewPort())
		}
		m.Stop()
		if b.ReadOnly() != readOnly {
			t.Errorf("Expected read-only restored to %v, got %v", readOnly, b.ReadOnly())
		}
	}
}

func TestPresentingNotifiesBoardSubscribers(t *testing.T) {
	b := newBoard()
	m, s := newManager(b, presentation.Options{})
	var flags []bool
	b.Subscribe(func(c board.Change) {
		if c.ReadOnly != nil {
			flags = append(flags, *c.ReadOnly)
		}
	})

	if err := m.Start(context.Background(), s.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	m.Stop()
	if len(flags) != 2 || !flags[0] || flags[1] {
		t.Errorf("Expected read-only on then off, got %v", flags)
	}
}

func TestRestartKeepsBoardReadOnly(t *testing.T) {
	b := newBoard()
	m, s := newManager(b, presentation.Options{})
	other := m.AddSequence("other", []presentation.Frame{frameAt(1, 500, 0)})
	ctx := context.Background()

	if err := m.Start(ctx, s.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := m.Start(ctx, "nope"); !errors.Is(err, presentation.ErrSequenceNotFound) {
		t.Errorf("Expected ErrSequenceNotFound, got %v", err)
	}
	if !m.IsPresenting() || !b.ReadOnly() {
		t.Errorf("Expected read-only presentation after failed restart, presenting=%v readOnly=%v", m.IsPresenting(), b.ReadOnly())
	}

	if err := m.Start(ctx, other.ID); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if !b.ReadOnly() {
		t.Error("Expected read-only board after restart")
	}
	m.Stop()
	if b.ReadOnly() {
		t.Error("Expected the writable flag from before the first Start")
	}
}

func TestCreatingAndPresentingExclusive(t *testing.T) {
	m, s := newManager(newBoard(), presentation.Options{})
	ctx := context.Background()

	if err := m.StartCreating("draft"); err != nil {
		t.Fatalf("StartCreating failed: %v", err)
	}
	if err := m.Start(ctx, s.ID); !errors.Is(err, presentation.ErrBusy) {
		t.Errorf("Expected ErrBusy while creating, got %v", err)
	}
	m.StopCreating()

	if err := m.Start(ctx, s.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := m.StartCreating("draft"); !errors.Is(err, presentation.ErrBusy) {
		t.Errorf("Expected ErrBusy while presenting, got %v", err)
	}
}

func TestNavigation(t *testing.T) {
	b := newBoard()
	m, s := newManager(b, presentation.Options{})
	ctx := context.Background()

	if moved, _ := m.Next(ctx); moved {
		t.Error("Expected Next to be a no-op outside presentation mode")
	}

	_ = m.Start(ctx, s.ID)
	steps := []struct {
		name     string
		do       func() (bool, error)
		moved    bool
		expected int
	}{
		{"prev at start", func() (bool, error) { return m.Prev(ctx) }, false, 0},
		{"next", func() (bool, error) { return m.Next(ctx) }, true, 1},
		{"next", func() (bool, error) { return m.Next(ctx) }, true, 2},
		{"next at end", func() (bool, error) { return m.Next(ctx) }, false, 2},
		{"goto out of range", func() (bool, error) { return m.GoTo(ctx, 7) }, false, 2},
		{"goto first", func() (bool, error) { return m.GoTo(ctx, 0) }, true, 0},
	}
	for _, st := range steps {
		moved, err := st.do()
		if err != nil {
			t.Fatalf("%s failed: %v", st.name, err)
		}
		if moved != st.moved || m.CurrentFrameIndex() != st.expected {
			t.Errorf("%s: expected moved=%v index=%d, got moved=%v index=%d",
				st.name, st.moved, st.expected, moved, m.CurrentFrameIndex())
		}
		if !sameViewPort(b.ViewPort(), s.Frames[st.expected].ViewPort) {
			t.Errorf("%s: expected camera of frame %d, got %+v", st.name, st.expected, b.ViewPort())
		}
	}
}

func TestEvents(t *testing.T) {
	m, s := newManager(newBoard(), presentation.Options{})
	ctx := context.Background()

	var got []presentation.EventType
	off := m.On(func(ev presentation.Event) { got = append(got, ev.Type) })

	_ = m.Start(ctx, s.ID)
	_, _ = m.Next(ctx)
	m.Stop()
	off()
	_ = m.Start(ctx, s.ID)

	expected := []presentation.EventType{
		presentation.EventCurrentSequenceChanged,
		presentation.EventStateChanged,
		presentation.EventFrameChanged,
		presentation.EventFrameChanged,
		presentation.EventStateChanged,
	}
	if len(got) != len(expected) {
		t.Fatalf("Expected %d events, got %v", len(expected), got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Event %d: expected %v, got %v", i, expected[i], got[i])
		}
	}
}

func TestHostDrivenAnimation(t *testing.T) {
	clock := &fakeClock{now: time.Unix(100, 0)}
	b := newBoard()
	m, s := newManager(b, presentation.Options{Animate: true, HostDriven: true, Clock: clock.Now})
	start := b.ViewPort()

	if err := m.Start(context.Background(), s.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !m.Animating() {
		t.Fatal("Expected a running transition")
	}
	if !sameViewPort(b.ViewPort(), start) {
		t.Error("Expected camera untouched until the host steps")
	}

	if _, err := m.Next(context.Background()); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if !m.Step(clock.now.Add(250 * time.Millisecond)) {
		t.Error("Expected transition still running halfway")
	}
	if m.Step(clock.now.Add(time.Second)) {
		t.Error("Expected transition finished")
	}
	if !sameViewPort(b.ViewPort(), s.Frames[1].ViewPort) {
		t.Errorf("Expected camera of frame 1, got %+v", b.ViewPort())
	}
	if m.Step(clock.now.Add(2 * time.Second)) {
		t.Error("Expected Step without a transition to report false")
	}
}

func TestFitAll(t *testing.T) {
	b := newBoard()
	m := presentation.New(b, presentation.Options{Padding: 50})
	if err := m.FitAll(context.Background()); err != nil {
		t.Fatalf("FitAll failed: %v", err)
	}
	expected := element.ViewPort{Zoom: 200.0 / 700, MinX: -50 - (1400-700)/2.0, MinY: -50, Width: 1400, Height: 700}
	if !sameViewPort(b.ViewPort(), expected) {
		t.Errorf("Expected %+v, got %+v", expected, b.ViewPort())
	}
}

// =============================================================================
// Input Tests
// =============================================================================

func TestHandleKey(t *testing.T) {
	m, s := newManager(newBoard(), presentation.Options{})
	ctx := context.Background()

	if handled, _ := m.HandleKey(ctx, "right"); handled {
		t.Error("Expected keys ignored outside presentation mode")
	}
	_ = m.Start(ctx, s.ID)

	tests := []struct {
		key      string
		handled  bool
		expected int
	}{
		{"right", true, 1},
		{"down", true, 2},
		{"left", true, 1},
		{"up", true, 0},
		{"end", true, 2},
		{"x", false, 2},
	}
	for _, tt := range tests {
		handled, err := m.HandleKey(ctx, tt.key)
		if err != nil {
			t.Fatalf("HandleKey(%q) failed: %v", tt.key, err)
		}
		if handled != tt.handled || m.CurrentFrameIndex() != tt.expected {
			t.Errorf("HandleKey(%q): expected handled=%v index=%d, got %v %d",
				tt.key, tt.handled, tt.expected, handled, m.CurrentFrameIndex())
		}
	}

	if handled, _ := m.HandleKey(ctx, "esc"); !handled || m.IsPresenting() {
		t.Error("Expected esc to stop the presentation")
	}
}

func TestCustomKeyMap(t *testing.T) {
	m, s := newManager(newBoard(), presentation.Options{Keys: presentation.KeyMap{"n": presentation.ActionNext}})
	ctx := context.Background()
	_ = m.Start(ctx, s.ID)

	if handled, _ := m.HandleKey(ctx, "right"); handled {
		t.Error("Expected default binding replaced")
	}
	if handled, _ := m.HandleKey(ctx, "n"); !handled || m.CurrentFrameIndex() != 1 {
		t.Error("Expected n to advance")
	}
}

func TestWheel(t *testing.T) {
	m, s := newManager(newBoard(), presentation.Options{})
	ctx := context.Background()
	_ = m.Start(ctx, s.ID)

	if moved, _ := m.Wheel(ctx, 3); !moved || m.CurrentFrameIndex() != 1 {
		t.Error("Expected scrolling down to advance")
	}
	if moved, _ := m.Wheel(ctx, -3); !moved || m.CurrentFrameIndex() != 0 {
		t.Error("Expected scrolling up to go back")
	}
	if moved, _ := m.Wheel(ctx, 0); moved {
		t.Error("Expected no movement for a zero delta")
	}
}
