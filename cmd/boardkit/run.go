package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Gaurav-Gosain/boardkit/internal/board"
	"github.com/Gaurav-Gosain/boardkit/internal/config"
	"github.com/Gaurav-Gosain/boardkit/internal/store"
	"github.com/Gaurav-Gosain/boardkit/internal/tape"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

type runOptions struct {
	output   string
	from     string
	snapshot string
	watch    bool
	verbose  bool
	realtime bool
	width    float64
	height   float64
}

func newRunCmd() *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run <script.tape>",
		Short: "Build a board from a script",
		Long: `Run a board script and write the resulting document

The document is written to stdout unless --output is given. With --snapshot
the result is also stored in the snapshot history under that name.`,
		Example: `  # Print the document
  boardkit run demo.tape

  # Start from an existing document and keep a snapshot
  boardkit run edits.tape --from base.json -o out.json --snapshot demo

  # Rebuild on every save
  boardkit run demo.tape -o demo.json --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if opts.watch {
				return watchScript(ctx, args[0], opts, cfg)
			}
			return runScript(ctx, args[0], opts, cfg)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the document to this file")
	cmd.Flags().StringVar(&opts.from, "from", "", "Start from this document instead of an empty board")
	cmd.Flags().StringVar(&opts.snapshot, "snapshot", "", "Save the result in the snapshot history under this name")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Rerun the script whenever it changes")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print every executed command")
	cmd.Flags().BoolVar(&opts.realtime, "realtime", false, "Honor Sleep commands and delays")
	cmd.Flags().Float64Var(&opts.width, "width", 1280, "Container width")
	cmd.Flags().Float64Var(&opts.height, "height", 720, "Container height")
	return cmd
}

// sessionOptions maps the user configuration onto a script session.
// Scripts never animate the camera.
func sessionOptions(cfg *config.UserConfig) tape.SessionOptions {
	popts := cfg.PresentationOptions()
	popts.Animate = false
	return tape.SessionOptions{
		Frames:       cfg.FrameDefaults(),
		Resolver:     cfg.Resolver(),
		Presentation: popts,
	}
}

func runScript(ctx context.Context, path string, opts runOptions, cfg *config.UserConfig) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	commands, parseErrs := tape.ParseFile(string(content))
	if len(parseErrs) > 0 {
		return fmt.Errorf("%s: %s", path, strings.Join(parseErrs, "; "))
	}

	b := board.New(board.Options{ContainerWidth: opts.width, ContainerHeight: opts.height})
	sopts := sessionOptions(cfg)
	if opts.from != "" {
		base, err := store.ReadFile(opts.from)
		if err != nil {
			return err
		}
		b = base.Board(opts.width, opts.height)
		sopts.Sequences = base.PresentationSequences
	}

	session := tape.NewSession(b, sopts)
	runner := tape.NewHeadlessRunner(commands, session)
	runner.SetVerbose(opts.verbose)
	runner.SetRealtime(opts.realtime)

	stats := runner.Execute(ctx)
	if opts.verbose {
		if err := runner.WriteOutput(os.Stderr); err != nil {
			return err
		}
	}
	if !stats.Success {
		return fmt.Errorf("%s: %s", path, stats.ErrorMessage)
	}
	logger.Info("script finished", "script", path, "commands", stats.ExecutedCount, "took", stats.ExecutedTime.Round(time.Microsecond))

	doc := store.FromBoard(session.Board(), session.Presentation())
	if opts.output != "" {
		if err := store.WriteFile(opts.output, doc); err != nil {
			return fmt.Errorf("failed to write document: %w", err)
		}
	} else if err := store.Encode(os.Stdout, doc); err != nil {
		return err
	}

	if opts.snapshot != "" {
		return saveSnapshot(ctx, opts.snapshot, doc)
	}
	return nil
}

func saveSnapshot(ctx context.Context, name string, doc *store.Document) error {
	snaps, err := openSnapshots()
	if err != nil {
		return err
	}
	defer snaps.Close()

	id, err := snaps.Save(ctx, name, doc)
	if err != nil {
		return err
	}
	logger.Info("saved snapshot", "name", name, "id", id)
	return nil
}

func openSnapshots() (*store.Snapshots, error) {
	path, err := config.GetDataPath("snapshots.db")
	if err != nil {
		return nil, fmt.Errorf("could not determine data path: %w", err)
	}
	return store.OpenSnapshots(path)
}

// watchScript runs the script once and again after every write to it,
// until ctx is cancelled. Failed runs are logged and do not stop watching.
func watchScript(ctx context.Context, path string, opts runOptions, cfg *config.UserConfig) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch its directory.
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	rerun := func() {
		if err := runScript(ctx, path, opts, cfg); err != nil {
			logger.Error("run failed", "err", err)
		}
	}
	rerun()
	logger.Info("watching for changes", "script", path)

	const debounce = 200 * time.Millisecond
	var timer *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			logger.Debug("script changed", "script", path)
			rerun()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)
		}
	}
}
