// Package main implements boardkit, a command line front end for the
// whiteboard engine: it runs board scripts, presents sequences in the
// terminal, exports SVG and keeps a snapshot history of documents.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Gaurav-Gosain/boardkit/internal/board"
	"github.com/Gaurav-Gosain/boardkit/internal/config"
	"github.com/Gaurav-Gosain/boardkit/internal/dnd"
	"github.com/Gaurav-Gosain/boardkit/internal/mind"
	"github.com/Gaurav-Gosain/boardkit/internal/presentation"
	"github.com/Gaurav-Gosain/boardkit/internal/store"
	"github.com/Gaurav-Gosain/boardkit/internal/tape"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// Global flags
var (
	debugMode  bool
	configFile string
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "boardkit",
})

func main() {
	rootCmd := &cobra.Command{
		Use:   "boardkit",
		Short: "Whiteboard engine toolkit",
		Long: `boardkit - whiteboard engine toolkit

Builds boards from scripts, presents their sequences in the terminal,
exports SVG wireframes and keeps a snapshot history of documents.`,
		Example: `  # Build a board from a script
  boardkit run demo.tape -o demo.json

  # Rebuild whenever the script changes
  boardkit run demo.tape -o demo.json --watch

  # Present a sequence
  boardkit present demo.json --sequence intro

  # Export an SVG
  boardkit export demo.json -o demo.svg

  # Check documents
  boardkit check *.json`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debugMode {
				setLogLevel(log.DebugLevel)
				logger.Debug("debug logging enabled")
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default is $XDG_CONFIG_HOME/boardkit/config.toml)")

	rootCmd.AddCommand(
		newRunCmd(),
		newPresentCmd(),
		newExportCmd(),
		newLayoutCmd(),
		newCheckCmd(),
		newTreeCmd(),
		newSequencesCmd(),
		newHistoryCmd(),
		newConfigCmd(),
		newKeybindsCmd(),
	)

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s\nBuilt: %s\nBy: %s", version, commit, date, builtBy)),
	); err != nil {
		os.Exit(1)
	}
}

func setLogLevel(level log.Level) {
	logger.SetLevel(level)
	board.SetLogLevel(level)
	dnd.SetLogLevel(level)
	mind.SetLogLevel(level)
	presentation.SetLogLevel(level)
	store.SetLogLevel(level)
	tape.SetLogLevel(level)
}

// loadConfig reads the user configuration, falling back to defaults when it
// cannot be read, and applies the engine-wide settings.
func loadConfig() *config.UserConfig {
	var (
		cfg *config.UserConfig
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.LoadUserConfig()
	}
	if err != nil {
		logger.Warn("failed to load config, using defaults", "err", err)
		cfg = config.DefaultConfig()
	}
	cfg.Apply()
	return cfg
}
