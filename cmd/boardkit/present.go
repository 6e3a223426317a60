package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gaurav-Gosain/boardkit/internal/config"
	"github.com/Gaurav-Gosain/boardkit/internal/presentation"
	"github.com/Gaurav-Gosain/boardkit/internal/store"
	"github.com/Gaurav-Gosain/boardkit/internal/tui"
	"github.com/spf13/cobra"
)

func newPresentCmd() *cobra.Command {
	var (
		sequence string
		noAnim   bool
	)
	cmd := &cobra.Command{
		Use:   "present <doc.json>",
		Short: "Present a sequence in the terminal",
		Long: `Present a presentation sequence of a document in the terminal

The board is read-only while presenting. Press ? for the keybindings.`,
		Example: `  # Present the first sequence
  boardkit present demo.json

  # Present a sequence by name, without camera animation
  boardkit present demo.json --sequence intro --no-animation`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			doc, err := store.ReadFile(args[0])
			if err != nil {
				return err
			}
			if len(doc.PresentationSequences) == 0 {
				return fmt.Errorf("%s has no presentation sequences", args[0])
			}

			opts := cfg.PresentationOptions()
			opts.HostDriven = true
			if noAnim {
				opts.Animate = false
			}
			b := doc.Board(0, 0)
			pm := presentation.New(b, opts, doc.PresentationSequences...)

			id := doc.PresentationSequences[0].ID
			if sequence != "" {
				s, ok := pm.Sequence(sequence)
				if !ok {
					return fmt.Errorf("%q: %w", sequence, presentation.ErrSequenceNotFound)
				}
				id = s.ID
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := pm.Start(ctx, id); err != nil {
				return err
			}
			return tui.Run(ctx, pm, tui.Options{
				Registry:   config.NewKeybindRegistry(cfg),
				FPS:        opts.FPS,
				QuitOnStop: true,
			})
		},
	}

	cmd.Flags().StringVarP(&sequence, "sequence", "s", "", "Sequence id or name (default is the first)")
	cmd.Flags().BoolVar(&noAnim, "no-animation", false, "Jump between frames without animating the camera")
	return cmd
}
