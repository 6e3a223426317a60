package config

import (
	"strings"

	"github.com/Gaurav-Gosain/boardkit/internal/presentation"
)

// ActionDescriptions are the help texts for presentation actions.
var ActionDescriptions = map[string]string{
	string(presentation.ActionNext):   "Next frame",
	string(presentation.ActionPrev):   "Previous frame",
	string(presentation.ActionFirst):  "First frame",
	string(presentation.ActionLast):   "Last frame",
	string(presentation.ActionFitAll): "Show the whole board",
	string(presentation.ActionStop):   "Stop presenting",
}

// KeybindRegistry resolves keys to actions and back for the presentation
// bindings of a config.
type KeybindRegistry struct {
	actionToKeys map[string][]string
	keyToAction  map[string]string
	normalizer   *KeyNormalizer
}

// NewKeybindRegistry builds a registry from cfg. When two actions claim the
// same key the first in display order wins.
func NewKeybindRegistry(cfg *UserConfig) *KeybindRegistry {
	r := &KeybindRegistry{
		actionToKeys: make(map[string][]string),
		keyToAction:  make(map[string]string),
		normalizer:   NewKeyNormalizer(),
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	for _, a := range presentation.Actions {
		action := string(a)
		keys, ok := cfg.Keybindings.Presentation[action]
		if !ok {
			continue
		}
		for _, key := range keys {
			for _, k := range r.normalizer.NormalizeKey(key) {
				if _, taken := r.keyToAction[k]; taken {
					continue
				}
				r.keyToAction[k] = action
			}
		}
		r.actionToKeys[action] = append([]string(nil), keys...)
	}
	return r
}

// GetKeys returns the keys bound to action as configured.
func (r *KeybindRegistry) GetKeys(action string) []string {
	return r.actionToKeys[action]
}

// GetAction returns the action bound to key, or "".
func (r *KeybindRegistry) GetAction(key string) string {
	for _, k := range r.normalizer.NormalizeKey(key) {
		if a, ok := r.keyToAction[k]; ok {
			return a
		}
	}
	return ""
}

// GetKeysForDisplay returns the keys of action formatted for help text.
func (r *KeybindRegistry) GetKeysForDisplay(action string) string {
	keys := r.GetKeys(action)
	if len(keys) == 0 {
		return ""
	}
	display := make([]string, len(keys))
	for i, k := range keys {
		display[i] = displayKey(k)
	}
	return strings.Join(display, ", ")
}

// KeyMap returns the bindings as a presentation key map.
func (r *KeybindRegistry) KeyMap() presentation.KeyMap {
	km := make(presentation.KeyMap, len(r.keyToAction))
	for k, a := range r.keyToAction {
		km[k] = presentation.Action(a)
	}
	return km
}

var keySymbols = map[string]string{
	"left":   "←",
	"right":  "→",
	"up":     "↑",
	"down":   "↓",
	"esc":    "Esc",
	"enter":  "Enter",
	"space":  "Space",
	"home":   "Home",
	"end":    "End",
	"pgup":   "PgUp",
	"pgdown": "PgDn",
	"tab":    "Tab",
}

func displayKey(key string) string {
	parts := strings.Split(key, "+")
	for i, p := range parts {
		if s, ok := keySymbols[strings.ToLower(p)]; ok {
			parts[i] = s
		} else if i < len(parts)-1 || len(p) > 1 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "+")
}

// KeyNormalizer canonicalises key strings so that config spellings match
// what Bubble Tea reports.
type KeyNormalizer struct {
	aliases map[string]string
}

// NewKeyNormalizer creates a normalizer with the usual aliases.
func NewKeyNormalizer() *KeyNormalizer {
	return &KeyNormalizer{
		aliases: map[string]string{
			"escape":   "esc",
			"return":   "enter",
			"pageup":   "pgup",
			"pagedown": "pgdown",
			"pgdn":     "pgdown",
			" ":        "space",
		},
	}
}

// NormalizeKey returns the spellings key can arrive as. Modifiers are
// lower-cased. A single character keeps its case since shift is part of
// the character.
func (n *KeyNormalizer) NormalizeKey(key string) []string {
	if key == "" {
		return nil
	}
	if len(key) == 1 {
		if alias, ok := n.aliases[key]; ok {
			return []string{alias, key}
		}
		return []string{key}
	}

	parts := strings.Split(key, "+")
	last := parts[len(parts)-1]
	for i := range parts[:len(parts)-1] {
		parts[i] = strings.ToLower(parts[i])
	}
	if len(last) > 1 || len(parts) > 1 {
		last = strings.ToLower(last)
	}
	parts[len(parts)-1] = last

	out := []string{strings.Join(parts, "+")}
	if alias, ok := n.aliases[last]; ok {
		parts[len(parts)-1] = alias
		out = append(out, strings.Join(parts, "+"))
	}
	return out
}

var modifiers = map[string]bool{"ctrl": true, "alt": true, "shift": true, "meta": true, "super": true, "hyper": true}

// ValidateKey reports whether key is a usable binding and why not.
func (n *KeyNormalizer) ValidateKey(key string) (bool, string) {
	if strings.TrimSpace(key) == "" && key != " " {
		return false, "empty key"
	}
	if key == "+" {
		return true, ""
	}
	parts := strings.Split(key, "+")
	for _, p := range parts[:len(parts)-1] {
		if !modifiers[strings.ToLower(p)] {
			return false, "unknown modifier " + p
		}
	}
	if parts[len(parts)-1] == "" {
		return false, "missing key after modifier"
	}
	return true, ""
}
