package config

import "github.com/Gaurav-Gosain/boardkit/internal/presentation"

// Keybinding represents a single keybinding entry
type Keybinding struct {
	Key         string
	Description string
}

// KeybindingSection represents a section of related keybindings
type KeybindingSection struct {
	Title    string
	Bindings []Keybinding
}

// GetKeybindings returns all keybinding sections for the help overlay.
// With a registry the presentation section follows the user config,
// otherwise the built-in defaults are shown.
func GetKeybindings(registry *KeybindRegistry) []KeybindingSection {
	if registry == nil {
		registry = NewKeybindRegistry(DefaultConfig())
	}

	present := KeybindingSection{Title: "PRESENTATION"}
	for _, a := range presentation.Actions {
		addBinding(&present, registry, string(a), ActionDescriptions[string(a)])
	}

	sections := []KeybindingSection{}
	if len(present.Bindings) > 0 {
		sections = append(sections, present)
	}
	return append(sections, getStaticHelpSections()...)
}

// addBinding adds a keybinding to a section if the action has keys configured
func addBinding(section *KeybindingSection, registry *KeybindRegistry, action, description string) {
	keys := registry.GetKeysForDisplay(action)
	if keys != "" {
		section.Bindings = append(section.Bindings, Keybinding{
			Key:         keys,
			Description: description,
		})
	}
}

// getStaticHelpSections returns help sections that are not configurable
func getStaticHelpSections() []KeybindingSection {
	return []KeybindingSection{
		{
			Title: "MOUSE:",
			Bindings: []Keybinding{
				{"Wheel ↓", "Next frame"},
				{"Wheel ↑", "Previous frame"},
			},
		},
		{
			Title: "",
			Bindings: []Keybinding{
				{"?", "Toggle help"},
				{"q, Ctrl+C", "Quit"},
			},
		},
	}
}
