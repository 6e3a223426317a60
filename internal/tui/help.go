package tui

import (
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/Gaurav-Gosain/boardkit/internal/config"
)

// renderHelp builds the keybinding overlay from the registry.
func renderHelp(registry *config.KeybindRegistry) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	descStyle := lipgloss.NewStyle().Padding(0, 1)

	var blocks []string
	for _, section := range config.GetKeybindings(registry) {
		rows := make([][]string, 0, len(section.Bindings))
		for _, b := range section.Bindings {
			rows = append(rows, []string{b.Key, b.Description})
		}
		t := table.New().
			Border(lipgloss.HiddenBorder()).
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if col == 0 {
					return keyStyle
				}
				return descStyle
			})
		if section.Title != "" {
			blocks = append(blocks, titleStyle.Render(section.Title))
		}
		blocks = append(blocks, t.Render())
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("12")).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
}
