package board

import (
	"sync"
	"time"
)

// History limits.
const (
	MaxHistory    = 100
	MergeInterval = time.Second
)

type historyEntry struct {
	forward []Operation
	at      time.Time
}

// inverse returns the undo batch: every forward operation inverted, last
// first.
func (e historyEntry) inverse() []Operation {
	out := make([]Operation, 0, len(e.forward))
	for i := len(e.forward) - 1; i >= 0; i-- {
		out = append(out, e.forward[i].Inverse())
	}
	return out
}

// History is a bounded undo/redo stack of structural batches. Batches
// recorded within MergeInterval of the previous one join its entry.
type History struct {
	mu   sync.Mutex
	undo []historyEntry
	redo []historyEntry
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

func (h *History) record(ops []Operation, at time.Time) {
	if len(ops) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.redo = nil
	if n := len(h.undo); n > 0 && at.Sub(h.undo[n-1].at) < MergeInterval {
		h.undo[n-1].forward = append(h.undo[n-1].forward, ops...)
		h.undo[n-1].at = at
		return
	}
	h.undo = append(h.undo, historyEntry{forward: append([]Operation(nil), ops...), at: at})
	if len(h.undo) > MaxHistory {
		h.undo = h.undo[len(h.undo)-MaxHistory:]
	}
}

func (h *History) popUndo() (historyEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undo) == 0 {
		return historyEntry{}, false
	}
	e := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return e, true
}

func (h *History) popRedo() (historyEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redo) == 0 {
		return historyEntry{}, false
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return e, true
}

func (h *History) pushRedo(e historyEntry) {
	h.mu.Lock()
	h.redo = append(h.redo, e)
	h.mu.Unlock()
}

func (h *History) pushUndoKeepRedo(e historyEntry) {
	h.mu.Lock()
	// a redone entry must not merge with whatever comes next
	e.at = time.Time{}
	h.undo = append(h.undo, e)
	h.mu.Unlock()
}

// CanUndo reports whether Undo has anything to revert.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

// CanRedo reports whether Redo has anything to re-apply.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Len returns the number of undo entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo)
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.mu.Lock()
	h.undo = nil
	h.redo = nil
	h.mu.Unlock()
}
