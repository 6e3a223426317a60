package main

import (
	"fmt"
	"strconv"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/Gaurav-Gosain/boardkit/internal/store"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [name]",
		Short: "List document snapshots",
		Long: `List the snapshots saved with 'boardkit run --snapshot'

Without a name the snapshots of every board are listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			snaps, err := openSnapshots()
			if err != nil {
				return err
			}
			defer snaps.Close()

			infos, err := snaps.List(cmd.Context(), name)
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("No snapshots found."))
				return nil
			}
			printSnapshots(infos)
			return nil
		},
	}

	var output string
	restoreCmd := &cobra.Command{
		Use:   "restore <name|id>",
		Short: "Write a snapshot back to a document",
		Long: `Write a stored snapshot to a document file

A numeric argument selects a snapshot by id, anything else the newest
snapshot of that board.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snaps, err := openSnapshots()
			if err != nil {
				return err
			}
			defer snaps.Close()

			var doc *store.Document
			if id, parseErr := strconv.ParseInt(args[0], 10, 64); parseErr == nil {
				doc, err = snaps.Get(cmd.Context(), id)
			} else {
				doc, err = snaps.Latest(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0] + ".json"
			}
			if err := store.WriteFile(output, doc); err != nil {
				return err
			}
			fmt.Printf("Restored %s to %s\n", args[0], output)
			return nil
		},
	}
	restoreCmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default is <name>.json)")

	var keep int
	pruneCmd := &cobra.Command{
		Use:   "prune <name>",
		Short: "Delete old snapshots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snaps, err := openSnapshots()
			if err != nil {
				return err
			}
			defer snaps.Close()

			n, err := snaps.Prune(cmd.Context(), args[0], keep)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d snapshot(s) of %s\n", n, args[0])
			return nil
		},
	}
	pruneCmd.Flags().IntVar(&keep, "keep", 10, "Number of newest snapshots to keep")

	cmd.AddCommand(restoreCmd, pruneCmd)
	return cmd
}

func printSnapshots(infos []store.SnapshotInfo) {
	rows := make([][]string, 0, len(infos))
	for _, s := range infos {
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.ID),
			s.Name,
			fmt.Sprintf("%d", s.Elements),
			fmt.Sprintf("%d", s.Sequences),
			formatSize(s.Size),
			formatTimeAgo(s.CreatedAt),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers("ID", "NAME", "ELEMENTS", "SEQUENCES", "SIZE", "CREATED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			baseStyle := lipgloss.NewStyle().Padding(0, 1)

			if row == table.HeaderRow {
				return baseStyle.Bold(true).Foreground(lipgloss.Color("12"))
			}

			switch col {
			case 1:
				return baseStyle.Foreground(lipgloss.Color("3")).Bold(true)
			case 4, 5:
				return baseStyle.Foreground(lipgloss.Color("8"))
			default:
				return baseStyle
			}
		})

	fmt.Println(t.Render())
	fmt.Printf("\n%d snapshot(s)\n", len(infos))
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func formatTimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
