package main

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/Gaurav-Gosain/boardkit/internal/board"
	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/Gaurav-Gosain/boardkit/internal/store"
	"github.com/spf13/cobra"
)

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <doc.json>",
		Short: "Print the element tree",
		Long:  `Print every element of a document with its path, type and bounds`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := store.ReadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Println(renderTree(doc))
			return nil
		},
	}
}

func renderTree(doc *store.Document) string {
	rows := [][]string{}
	board.WalkTree(doc.Children, func(path element.Path, el *element.Element) bool {
		indent := strings.Repeat("  ", len(path)-1)
		if el == nil {
			rows = append(rows, []string{path.String(), "null", indent + "-", "", ""})
			return false
		}
		r := el.Bounds()
		rows = append(rows, []string{
			path.String(),
			string(el.Type),
			indent + el.Label(),
			fmt.Sprintf("%g,%g", r.X, r.Y),
			fmt.Sprintf("%gx%g", r.Width, r.Height),
		})
		return true
	})

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers("PATH", "TYPE", "NAME", "POSITION", "SIZE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			baseStyle := lipgloss.NewStyle().Padding(0, 1)

			if row == table.HeaderRow {
				return baseStyle.Bold(true).Foreground(lipgloss.Color("12"))
			}
			switch col {
			case 0, 3, 4:
				return baseStyle.Foreground(lipgloss.Color("8"))
			case 1:
				return baseStyle.Foreground(lipgloss.Color("3"))
			default:
				return baseStyle
			}
		})

	summary := fmt.Sprintf("%d element(s), %d sequence(s)", doc.ElementCount(), len(doc.PresentationSequences))
	return t.Render() + "\n" + summary
}
