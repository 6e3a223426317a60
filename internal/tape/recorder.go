package tape

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Gaurav-Gosain/boardkit/internal/board"
	"github.com/Gaurav-Gosain/boardkit/internal/element"
)

// Recorder turns committed board changes into tape commands, so an editing
// session can be saved and replayed as a script
type Recorder struct {
	mu            sync.Mutex
	board         *board.Board
	commands      []Command
	names         map[string]string // element id -> script name
	startTime     time.Time
	lastEventTime time.Time
	enabled       bool
	minDelay      time.Duration // Gaps shorter than this are not written as Sleep
	now           func() time.Time
	unsubscribe   func()
}

// NewRecorder creates a new tape recorder for b
func NewRecorder(b *board.Board) *Recorder {
	now := time.Now()
	return &Recorder{
		board:         b,
		names:         make(map[string]string),
		startTime:     now,
		lastEventTime: now,
		minDelay:      100 * time.Millisecond,
		now:           time.Now,
	}
}

// SetClock overrides time.Now.
func (r *Recorder) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Start begins recording
func (r *Recorder) Start() {
	r.mu.Lock()
	r.enabled = true
	r.startTime = r.now()
	r.lastEventTime = r.startTime
	r.commands = nil
	if r.unsubscribe == nil {
		r.unsubscribe = r.board.Subscribe(r.Observe)
	}
	r.mu.Unlock()
}

// Stop ends recording
func (r *Recorder) Stop() {
	r.mu.Lock()
	r.enabled = false
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// IsRecording returns whether recording is active
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// Observe converts one committed change. Element creation, removal,
// renames and selection changes are recorded; layout and camera updates
// are not.
func (r *Recorder) Observe(c board.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}

	for _, op := range c.Operations {
		switch op.Type {
		case board.OpInsertNode:
			r.recordInsert(op.Node)
		case board.OpRemoveNode:
			if op.Node != nil {
				r.record(NewCommand(CommandType_Delete, r.nameOf(op.Node.ID)))
			}
		case board.OpSetNode:
			r.recordSet(op)
		case board.OpSetSelection:
			ids, _ := op.NewProperties["selectedElements"].([]string)
			names := make([]string, 0, len(ids))
			for _, id := range ids {
				names = append(names, r.nameOf(id))
			}
			r.record(NewCommand(CommandType_Select, names...))
		}
	}
}

func (r *Recorder) recordInsert(el *element.Element) {
	if el == nil {
		return
	}
	name := el.Label()
	r.names[el.ID] = name

	num := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	switch {
	case el.IsFrame():
		r.record(NewCommand(CommandType_Frame, name, num(el.X), num(el.Y), num(el.Width), num(el.Height)))
	case el.IsArrow():
		args := []string{name}
		for _, p := range el.Points {
			args = append(args, num(p.X), num(p.Y))
		}
		r.record(NewCommand(CommandType_Arrow, args...))
	case el.IsMindNode():
		parent := r.mindParent(el.ID)
		if parent == nil {
			r.record(NewCommand(CommandType_Mind, name, num(el.X), num(el.Y)))
		} else {
			r.record(NewCommand(CommandType_Child, r.nameOf(parent.ID), name))
		}
		for _, c := range el.Children {
			r.recordInsert(c)
		}
	default:
		r.record(NewCommand(CommandType_Shape, name, num(el.X), num(el.Y), num(el.Width), num(el.Height)))
	}
}

func (r *Recorder) mindParent(id string) *element.Element {
	path, ok := r.board.PathOf(id)
	if !ok || len(path) < 2 {
		return nil
	}
	parent, ok := r.board.Parent(path)
	if !ok || !parent.IsMindNode() {
		return nil
	}
	return parent
}

func (r *Recorder) recordSet(op board.Operation) {
	el := r.board.Node(op.Path)
	if el == nil {
		return
	}
	to, ok := op.NewProperties["name"].(string)
	if !ok {
		to, ok = op.NewProperties["text"].(string)
	}
	if !ok {
		return
	}
	r.record(NewCommand(CommandType_Rename, r.nameOf(el.ID), to))
	r.names[el.ID] = to
}

func (r *Recorder) nameOf(id string) string {
	if name, ok := r.names[id]; ok {
		return name
	}
	if el := r.board.FindByID(id); el != nil {
		return el.Label()
	}
	return id
}

// record appends cmd with the delay since the previous event. Must hold mu.
func (r *Recorder) record(cmd Command) {
	now := r.now()
	cmd.Delay = now.Sub(r.lastEventTime)
	cmd.Line = len(r.commands) + 1
	cmd.Column = 1
	r.commands = append(r.commands, cmd)
	r.lastEventTime = now
}

// RecordCommand appends a command that does not come from a board change,
// such as presentation navigation.
func (r *Recorder) RecordCommand(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enabled {
		r.record(cmd)
	}
}

// GetCommands returns all recorded commands. Delays shorter than the
// minimum Sleep are cleared, matching what String writes.
func (r *Recorder) GetCommands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmds := append([]Command(nil), r.commands...)
	for i := range cmds {
		if cmds[i].Delay < r.minDelay {
			cmds[i].Delay = 0
		}
	}
	return cmds
}

// WriteToFile saves the recorded tape to a file
func (r *Recorder) WriteToFile(filename string, header string) error {
	return os.WriteFile(filename, []byte(r.String(header)), 0o644)
}

// String returns the tape content as a formatted string
func (r *Recorder) String(header string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sb strings.Builder
	if header != "" {
		fmt.Fprintf(&sb, "# %s\n", header)
		fmt.Fprintf(&sb, "# Recorded: %s\n\n", r.startTime.Format(time.RFC3339))
	}

	for _, cmd := range r.commands {
		if cmd.Delay >= r.minDelay {
			fmt.Fprintf(&sb, "Sleep %v\n", cmd.Delay.Round(time.Millisecond))
		}
		cmd.Delay = 0
		sb.WriteString(cmd.String())
		sb.WriteByte('\n')
	}

	return sb.String()
}

// CommandCount returns the number of recorded commands
func (r *Recorder) CommandCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.commands)
}

// RecordingStats contains statistics about the recording
type RecordingStats struct {
	CommandCount int
	Duration     time.Duration
	IsRecording  bool
}

// GetStats returns recording statistics
func (r *Recorder) GetStats() RecordingStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RecordingStats{
		CommandCount: len(r.commands),
		Duration:     r.now().Sub(r.startTime),
		IsRecording:  r.enabled,
	}
}

// Clear clears all recorded commands
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = nil
	r.startTime = r.now()
	r.lastEventTime = r.startTime
}
