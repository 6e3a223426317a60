package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Gaurav-Gosain/boardkit/internal/presentation"
	"github.com/Gaurav-Gosain/boardkit/internal/render"
	"github.com/Gaurav-Gosain/boardkit/internal/store"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var (
		output   string
		sequence string
		frame    int
		padding  float64
		noLabels bool
	)
	cmd := &cobra.Command{
		Use:   "export <doc.json>",
		Short: "Export a board as SVG",
		Long: `Export a document as an SVG wireframe

With --sequence the cameras of that sequence are drawn over the board.
Adding --frame crops the output to one camera instead.`,
		Example: `  # Whole board
  boardkit export demo.json -o demo.svg

  # Show where the cameras of a sequence are
  boardkit export demo.json --sequence intro -o cameras.svg

  # Only what the second frame shows
  boardkit export demo.json --sequence intro --frame 2 -o slide2.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := store.ReadFile(args[0])
			if err != nil {
				return err
			}

			opts := render.DefaultOptions()
			opts.Padding = padding
			opts.Labels = !noLabels

			if sequence != "" {
				seq, err := findSequence(doc, sequence)
				if err != nil {
					return err
				}
				if frame > 0 {
					if frame > len(seq.Frames) {
						return fmt.Errorf("sequence %q has %d frames", seq.Name, len(seq.Frames))
					}
					vp := seq.Frames[frame-1].ViewPort
					opts.ViewPort = &vp
				} else {
					opts.Sequence = &seq
				}
			}

			var w io.Writer = os.Stdout
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := render.SVG(w, doc.Children, opts); err != nil {
				return fmt.Errorf("failed to write SVG: %w", err)
			}
			logger.Debug("exported", "doc", args[0], "output", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default is stdout)")
	cmd.Flags().StringVarP(&sequence, "sequence", "s", "", "Sequence id or name to overlay")
	cmd.Flags().IntVar(&frame, "frame", 0, "Crop to this frame of the sequence, counting from 1")
	cmd.Flags().Float64Var(&padding, "padding", 20, "Padding around the content")
	cmd.Flags().BoolVar(&noLabels, "no-labels", false, "Omit frame and shape names")
	return cmd
}

// findSequence looks a sequence up by id, then by name.
func findSequence(doc *store.Document, idOrName string) (presentation.Sequence, error) {
	for _, s := range doc.PresentationSequences {
		if s.ID == idOrName {
			return s, nil
		}
	}
	for _, s := range doc.PresentationSequences {
		if s.Name == idOrName {
			return s, nil
		}
	}
	return presentation.Sequence{}, fmt.Errorf("%q: %w", idOrName, presentation.ErrSequenceNotFound)
}
