// Package presentation plays sequences of camera frames over a board. It
// captures frames from the selection, fits cameras around elements and
// animates the board's viewport between frames.
package presentation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/Gaurav-Gosain/boardkit/internal/board"
	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "presentation",
})

func init() {
	logger.SetLevel(log.WarnLevel)
}

// SetLogLevel sets the log level for the presentation package.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}

var (
	// ErrSequenceNotFound is returned for an unknown sequence id or name.
	ErrSequenceNotFound = errors.New("sequence not found")
	// ErrBusy is returned when creating and presenting would overlap.
	ErrBusy = errors.New("presentation busy")
	// ErrNoFrames is returned when a sequence cannot be played.
	ErrNoFrames = errors.New("sequence has no playable frames")
)

// State is the manager's mode.
type State int

const (
	StateIdle State = iota
	StateCreating
	StatePresenting
)

func (s State) String() string {
	switch s {
	case StateCreating:
		return "creating"
	case StatePresenting:
		return "presenting"
	default:
		return "idle"
	}
}

// EventType tags an Event.
type EventType int

const (
	EventStateChanged EventType = iota
	EventFrameChanged
	EventSequencesChanged
	EventCurrentSequenceChanged
)

// Event is delivered to listeners after the manager's state changed.
type Event struct {
	Type       EventType
	State      State
	FrameIndex int
	SequenceID string
}

// Listener receives manager events.
type Listener func(Event)

// Options configures a Manager.
type Options struct {
	Padding        float64
	FrameDuration  time.Duration
	FitAllDuration time.Duration
	FPS            int
	// Animate selects animated transitions for navigation and FitAll.
	Animate bool
	// HostDriven leaves animated transitions running after the call that
	// started them returns; the host advances them with Step.
	HostDriven bool
	Keys       KeyMap
	Clock      func() time.Time
}

// DefaultOptions returns blocking, animated transitions with stock timings.
func DefaultOptions() Options {
	return Options{
		Padding:        DefaultPadding,
		FrameDuration:  DefaultFrameDuration,
		FitAllDuration: DefaultFitAllDuration,
		FPS:            DefaultFPS,
		Animate:        true,
		Keys:           DefaultKeyMap(),
		Clock:          time.Now,
	}
}

// Manager owns the sequences of one board and the presentation state.
type Manager struct {
	mu sync.Mutex

	board *board.Board
	opts  Options

	sequences  []Sequence
	currentID  string
	frameIndex int
	state      State

	originalReadOnly bool

	draftID     string
	draftName   string
	draftFrames []Frame

	anim *Animation

	listeners    map[int]Listener
	nextListener int
}

// New creates a manager over b with the persisted sequences.
func New(b *board.Board, opts Options, sequences ...Sequence) *Manager {
	def := DefaultOptions()
	if opts.Padding == 0 {
		opts.Padding = def.Padding
	}
	if opts.FrameDuration == 0 {
		opts.FrameDuration = def.FrameDuration
	}
	if opts.FitAllDuration == 0 {
		opts.FitAllDuration = def.FitAllDuration
	}
	if opts.FPS == 0 {
		opts.FPS = def.FPS
	}
	if opts.Keys == nil {
		opts.Keys = def.Keys
	}
	if opts.Clock == nil {
		opts.Clock = def.Clock
	}
	return &Manager{
		board:     b,
		opts:      opts,
		sequences: CloneSequences(sequences),
		listeners: make(map[int]Listener),
	}
}

// On registers a listener and returns a function that removes it.
func (m *Manager) On(fn Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextListener
	m.nextListener++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// emit delivers events in listener registration order. It must be called
// without holding mu.
func (m *Manager) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	m.mu.Lock()
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]Listener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.listeners[id])
	}
	m.mu.Unlock()

	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}

func (m *Manager) stateEvent() Event {
	return Event{Type: EventStateChanged, State: m.state, FrameIndex: m.frameIndex, SequenceID: m.currentID}
}

func (m *Manager) frameEvent() Event {
	return Event{Type: EventFrameChanged, State: m.state, FrameIndex: m.frameIndex, SequenceID: m.currentID}
}

// Board returns the board the manager presents.
func (m *Manager) Board() *board.Board { return m.board }

// State returns the current mode.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsPresenting reports whether a sequence is being played.
func (m *Manager) IsPresenting() bool { return m.State() == StatePresenting }

// IsCreating reports whether a sequence is being captured.
func (m *Manager) IsCreating() bool { return m.State() == StateCreating }

// =============================================================================
// Sequences
// =============================================================================

// Sequences returns a copy of every sequence.
func (m *Manager) Sequences() []Sequence {
	m.mu.Lock()
	defer m.mu.Unlock()
	return CloneSequences(m.sequences)
}

func (m *Manager) indexOf(id string) int {
	for i, s := range m.sequences {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Sequence looks a sequence up by id, falling back to its name.
func (m *Manager) Sequence(idOrName string) (Sequence, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(idOrName); i >= 0 {
		return m.sequences[i].Clone(), true
	}
	for _, s := range m.sequences {
		if s.Name == idOrName {
			return s.Clone(), true
		}
	}
	return Sequence{}, false
}

// SaveSequence updates the sequence with id when it exists and otherwise
// adds a new one.
func (m *Manager) SaveSequence(name string, frames []Frame, id string) Sequence {
	if id != "" {
		if existing, ok := m.Sequence(id); ok && existing.ID == id {
			existing.Name = name
			existing.Frames = cloneFrames(frames)
			if s, err := m.UpdateSequence(existing); err == nil {
				return s
			}
		}
	}
	return m.AddSequence(name, frames)
}

// AddSequence appends a new sequence.
func (m *Manager) AddSequence(name string, frames []Frame) Sequence {
	m.mu.Lock()
	s := NewSequence(name, frames, m.opts.Clock())
	m.sequences = append(m.sequences, s)
	m.mu.Unlock()

	logger.Debug("sequence added", "name", name, "frames", len(frames))
	m.emit(Event{Type: EventSequencesChanged})
	return s.Clone()
}

// UpdateSequence replaces the stored sequence with the same id.
func (m *Manager) UpdateSequence(s Sequence) (Sequence, error) {
	m.mu.Lock()
	i := m.indexOf(s.ID)
	if i < 0 {
		m.mu.Unlock()
		return Sequence{}, fmt.Errorf("update %s: %w", s.ID, ErrSequenceNotFound)
	}
	s = s.Clone()
	s.UpdateTime = m.opts.Clock().UnixMilli()
	m.sequences[i] = s
	events := []Event{{Type: EventSequencesChanged}}
	if m.currentID == s.ID {
		events = append(events, Event{Type: EventCurrentSequenceChanged, SequenceID: s.ID})
		if m.frameIndex >= len(s.Frames) {
			m.frameIndex = max(0, len(s.Frames)-1)
		}
	}
	m.mu.Unlock()

	m.emit(events...)
	return s.Clone(), nil
}

// DeleteSequence removes a sequence. Deleting the current sequence resets
// the current selection.
func (m *Manager) DeleteSequence(id string) bool {
	m.mu.Lock()
	i := m.indexOf(id)
	if i < 0 {
		m.mu.Unlock()
		return false
	}
	m.sequences = append(m.sequences[:i], m.sequences[i+1:]...)
	events := []Event{{Type: EventSequencesChanged}}
	if m.currentID == id {
		m.currentID = ""
		m.frameIndex = 0
		events = append(events, Event{Type: EventCurrentSequenceChanged})
	}
	m.mu.Unlock()

	m.emit(events...)
	return true
}

// SetCurrentSequence selects the sequence to present. It must have frames
// and a camera on the first one.
func (m *Manager) SetCurrentSequence(id string) error {
	m.mu.Lock()
	err := m.setCurrentLocked(id)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.emit(Event{Type: EventCurrentSequenceChanged, SequenceID: id})
	return nil
}

func (m *Manager) setCurrentLocked(id string) error {
	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("select %s: %w", id, ErrSequenceNotFound)
	}
	if !m.sequences[i].Playable() {
		return fmt.Errorf("select %s: %w", id, ErrNoFrames)
	}
	m.currentID = id
	m.frameIndex = 0
	return nil
}

// CurrentSequence returns the selected sequence.
func (m *Manager) CurrentSequence() (Sequence, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(m.currentID); i >= 0 {
		return m.sequences[i].Clone(), true
	}
	return Sequence{}, false
}

// CurrentFrameIndex returns the frame being shown, or -1 without a
// current sequence.
func (m *Manager) CurrentFrameIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(m.currentID) < 0 {
		return -1
	}
	return m.frameIndex
}

// =============================================================================
// Creating
// =============================================================================

// StartCreating enters capture mode for a new sequence, or for the
// existing sequence when name matches one.
func (m *Manager) StartCreating(name string) error {
	m.mu.Lock()
	if m.state == StatePresenting {
		m.mu.Unlock()
		return fmt.Errorf("start creating: %w", ErrBusy)
	}
	m.state = StateCreating
	m.draftID, m.draftName, m.draftFrames = "", name, nil
	for _, s := range m.sequences {
		if s.Name == name {
			m.draftID = s.ID
			m.draftFrames = cloneFrames(s.Frames)
			break
		}
	}
	ev := m.stateEvent()
	m.mu.Unlock()

	m.emit(ev)
	return nil
}

// StopCreating leaves capture mode and drops the unsaved frames.
func (m *Manager) StopCreating() {
	m.mu.Lock()
	if m.state != StateCreating {
		m.mu.Unlock()
		return
	}
	m.state = StateIdle
	m.draftID, m.draftName, m.draftFrames = "", "", nil
	ev := m.stateEvent()
	m.mu.Unlock()
	m.emit(ev)
}

// CreateFrameFromSelectedElements fits a camera around the selection and
// records the selected ids. It returns nil when nothing is selected.
func (m *Manager) CreateFrameFromSelectedElements() *Frame {
	selected := m.board.SelectedElements()
	if len(selected) == 0 {
		return nil
	}
	cw, ch := m.board.ContainerSize()
	vp := FitElementsInViewport(selected, m.opts.Padding, cw, ch)
	if vp == nil {
		return nil
	}
	ids := make([]string, 0, len(selected))
	for _, el := range selected {
		ids = append(ids, el.ID)
	}
	f := NewFrame(*vp, ids)
	return &f
}

// Capture adds a frame built from the selection to the sequence being
// created.
func (m *Manager) Capture() (*Frame, error) {
	if !m.IsCreating() {
		return nil, fmt.Errorf("capture: not creating a sequence")
	}
	f := m.CreateFrameFromSelectedElements()
	if f == nil {
		return nil, nil
	}
	m.mu.Lock()
	m.draftFrames = append(m.draftFrames, *f)
	m.mu.Unlock()
	return f, nil
}

// DraftFrames returns the frames captured so far.
func (m *Manager) DraftFrames() []Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneFrames(m.draftFrames)
}

// SaveDraft stores the captured frames and leaves capture mode.
func (m *Manager) SaveDraft() (Sequence, error) {
	m.mu.Lock()
	if m.state != StateCreating {
		m.mu.Unlock()
		return Sequence{}, fmt.Errorf("save: not creating a sequence")
	}
	id, name, frames := m.draftID, m.draftName, m.draftFrames
	m.mu.Unlock()

	s := m.SaveSequence(name, frames, id)
	m.StopCreating()
	return s, nil
}

// =============================================================================
// Presenting
// =============================================================================

// Start enters presentation mode on a sequence: the board is forced
// read-only and the first frame is shown.
func (m *Manager) Start(ctx context.Context, id string) error {
	m.mu.Lock()
	if m.state == StateCreating {
		m.mu.Unlock()
		return fmt.Errorf("start %s: %w", id, ErrBusy)
	}
	if err := m.setCurrentLocked(id); err != nil {
		m.mu.Unlock()
		return err
	}
	// a restart keeps the flag saved by the first Start
	if m.state != StatePresenting {
		m.originalReadOnly = m.board.ReadOnly()
	}
	m.state = StatePresenting
	events := []Event{
		{Type: EventCurrentSequenceChanged, SequenceID: id},
		m.stateEvent(),
		m.frameEvent(),
	}
	m.mu.Unlock()

	m.board.SetReadOnly(true)

	logger.Debug("presenting", "sequence", id)
	m.emit(events...)
	return m.ShowCurrentFrame(ctx, m.opts.Animate)
}

// Stop leaves presentation mode and restores the board's read-only flag.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.state != StatePresenting {
		m.mu.Unlock()
		return
	}
	restore := m.originalReadOnly
	m.state = StateIdle
	m.anim = nil
	ev := m.stateEvent()
	m.mu.Unlock()

	m.board.SetReadOnly(restore)

	m.emit(ev)
}

// ShowCurrentFrame moves the camera to the current frame, either at once
// or through the animator.
func (m *Manager) ShowCurrentFrame(ctx context.Context, animate bool) error {
	m.mu.Lock()
	i := m.indexOf(m.currentID)
	if i < 0 || m.frameIndex >= len(m.sequences[i].Frames) {
		m.mu.Unlock()
		return nil
	}
	target := m.sequences[i].Frames[m.frameIndex].ViewPort
	m.mu.Unlock()

	return m.moveCamera(ctx, target, m.opts.FrameDuration, animate)
}

func (m *Manager) moveCamera(ctx context.Context, target element.ViewPort, d time.Duration, animate bool) error {
	if !animate {
		m.mu.Lock()
		m.anim = nil
		m.mu.Unlock()
		return m.applyViewport(target)
	}

	a := NewAnimation(m.board.ViewPort(), target, m.opts.Clock(), d)
	m.mu.Lock()
	m.anim = a
	m.mu.Unlock()
	if m.opts.HostDriven {
		return nil
	}
	return m.Wait(ctx)
}

func (m *Manager) applyViewport(vp element.ViewPort) error {
	prev := m.board.ViewPort()
	return m.board.Apply(false, board.SetViewport(prev.Properties(), vp.Properties()))
}

// Animating reports whether a camera transition is in flight.
func (m *Manager) Animating() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.anim != nil && !m.anim.Complete
}

// Step advances the running transition to now and applies the camera. It
// reports whether the transition is still running.
func (m *Manager) Step(now time.Time) bool {
	m.mu.Lock()
	a := m.anim
	if a == nil {
		m.mu.Unlock()
		return false
	}
	vp := a.Update(now)
	if a.Complete {
		m.anim = nil
	}
	m.mu.Unlock()

	if err := m.applyViewport(vp); err != nil {
		logger.Warn("apply camera", "err", err)
	}
	return !a.Complete
}

// Wait blocks until the running transition completes. Cancelling ctx snaps
// the camera to the target.
func (m *Manager) Wait(ctx context.Context) error {
	m.mu.Lock()
	a := m.anim
	m.mu.Unlock()
	if a == nil {
		return nil
	}
	err := a.Run(ctx, m.opts.FPS, m.opts.Clock, func(vp element.ViewPort) {
		if err := m.applyViewport(vp); err != nil {
			logger.Warn("apply camera", "err", err)
		}
	})
	m.mu.Lock()
	if m.anim == a {
		m.anim = nil
	}
	m.mu.Unlock()
	return err
}

func (m *Manager) navigate(ctx context.Context, to func(cur, n int) int) (bool, error) {
	m.mu.Lock()
	i := m.indexOf(m.currentID)
	if m.state != StatePresenting || i < 0 {
		m.mu.Unlock()
		return false, nil
	}
	n := len(m.sequences[i].Frames)
	next := to(m.frameIndex, n)
	if next < 0 || next >= n || next == m.frameIndex {
		m.mu.Unlock()
		return false, nil
	}
	m.frameIndex = next
	ev := m.frameEvent()
	m.mu.Unlock()

	m.emit(ev)
	return true, m.ShowCurrentFrame(ctx, m.opts.Animate)
}

// Next advances one frame. It is a no-op outside presentation mode and on
// the last frame.
func (m *Manager) Next(ctx context.Context) (bool, error) {
	return m.navigate(ctx, func(cur, _ int) int { return cur + 1 })
}

// Prev goes back one frame.
func (m *Manager) Prev(ctx context.Context) (bool, error) {
	return m.navigate(ctx, func(cur, _ int) int { return cur - 1 })
}

// GoTo jumps to frame index.
func (m *Manager) GoTo(ctx context.Context, index int) (bool, error) {
	return m.navigate(ctx, func(_, _ int) int { return index })
}

// FitAll moves the camera over every top-level element.
func (m *Manager) FitAll(ctx context.Context) error {
	cw, ch := m.board.ContainerSize()
	vp := FitElementsInViewport(m.board.Snapshot(), m.opts.Padding, cw, ch)
	if vp == nil {
		return nil
	}
	return m.moveCamera(ctx, *vp, m.opts.FitAllDuration, m.opts.Animate)
}

// VisibleElements returns the top-level elements inside the current camera.
func (m *Manager) VisibleElements() []*element.Element {
	return ElementsInViewport(m.board.Snapshot(), m.board.ViewPort())
}
