package main

import (
	"fmt"

	"github.com/Gaurav-Gosain/boardkit/internal/mind"
	"github.com/Gaurav-Gosain/boardkit/internal/store"
	"github.com/spf13/cobra"
)

func newLayoutCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "layout <doc.json>",
		Short: "Lay out every mind map of a document",
		Long: `Recompute the positions of every mind map in a document

The document is rewritten in place unless --output is given. Mind margins
come from the [mind] section of the configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loadConfig()
			doc, err := store.ReadFile(args[0])
			if err != nil {
				return err
			}

			b := doc.Board(0, 0)
			if err := mind.RelayoutAll(b); err != nil {
				return fmt.Errorf("layout failed: %w", err)
			}
			out := store.FromBoard(b, nil)
			out.PresentationSequences = doc.PresentationSequences

			if output == "" {
				output = args[0]
			}
			if err := store.WriteFile(output, out); err != nil {
				return err
			}
			fmt.Printf("Laid out %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of rewriting the input")
	return cmd
}
