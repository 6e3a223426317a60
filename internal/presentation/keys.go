package presentation

import (
	"context"
	"strings"
)

// Action is something a key can do while presenting.
type Action string

const (
	ActionNext   Action = "next_frame"
	ActionPrev   Action = "prev_frame"
	ActionStop   Action = "stop"
	ActionFirst  Action = "first_frame"
	ActionLast   Action = "last_frame"
	ActionFitAll Action = "fit_all"
)

// Actions lists every action in display order.
var Actions = []Action{ActionNext, ActionPrev, ActionFirst, ActionLast, ActionFitAll, ActionStop}

// KeyMap maps key names, as Bubble Tea spells them, to actions.
type KeyMap map[string]Action

// DefaultKeyMap binds the arrow keys to navigation and esc to stop.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		"right": ActionNext,
		"down":  ActionNext,
		"left":  ActionPrev,
		"up":    ActionPrev,
		"home":  ActionFirst,
		"end":   ActionLast,
		"f":     ActionFitAll,
		"esc":   ActionStop,
	}
}

// Lookup returns the action for key. Lookups ignore case except for
// single characters.
func (k KeyMap) Lookup(key string) (Action, bool) {
	if a, ok := k[key]; ok {
		return a, true
	}
	if len(key) > 1 {
		a, ok := k[strings.ToLower(key)]
		return a, ok
	}
	return "", false
}

// HandleKey runs the action bound to key. It only reacts while presenting
// and reports whether the key was consumed.
func (m *Manager) HandleKey(ctx context.Context, key string) (bool, error) {
	if !m.IsPresenting() {
		return false, nil
	}
	action, ok := m.opts.Keys.Lookup(key)
	if !ok {
		return false, nil
	}
	logger.Debug("key", "key", key, "action", action)
	return true, m.Do(ctx, action)
}

// Do runs an action against the presentation.
func (m *Manager) Do(ctx context.Context, action Action) error {
	var err error
	switch action {
	case ActionNext:
		_, err = m.Next(ctx)
	case ActionPrev:
		_, err = m.Prev(ctx)
	case ActionFirst:
		_, err = m.GoTo(ctx, 0)
	case ActionLast:
		if s, ok := m.CurrentSequence(); ok {
			_, err = m.GoTo(ctx, len(s.Frames)-1)
		}
	case ActionFitAll:
		err = m.FitAll(ctx)
	case ActionStop:
		m.Stop()
	}
	return err
}

// Wheel maps a scroll while presenting to frame navigation: scrolling down
// advances.
func (m *Manager) Wheel(ctx context.Context, deltaY float64) (bool, error) {
	switch {
	case deltaY > 0:
		return m.Next(ctx)
	case deltaY < 0:
		return m.Prev(ctx)
	}
	return false, nil
}
