package tape

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Executor runs single tape commands. Sleep and delays are handled by the
// runner and never reach it.
type Executor interface {
	Execute(ctx context.Context, cmd Command) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, cmd Command) error

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, cmd Command) error { return f(ctx, cmd) }

// HeadlessRunner runs a tape script against an Executor without rendering
// a TUI and keeps a log of what it did
type HeadlessRunner struct {
	player     *Player
	executor   Executor
	output     strings.Builder
	outputLock sync.Mutex
	verbose    bool
	realtime   bool
	startTime  time.Time
	executed   int
}

// NewHeadlessRunner creates a new headless script runner
func NewHeadlessRunner(commands []Command, executor Executor) *HeadlessRunner {
	return &HeadlessRunner{
		player:    NewPlayer(commands),
		executor:  executor,
		realtime:  true,
		startTime: time.Now(),
	}
}

// SetVerbose enables verbose output logging
func (hr *HeadlessRunner) SetVerbose(verbose bool) {
	hr.verbose = verbose
}

// SetRealtime controls whether Sleep and @delay actually wait. Without it
// the script runs as fast as the executor allows.
func (hr *HeadlessRunner) SetRealtime(realtime bool) {
	hr.realtime = realtime
}

// Player exposes playback progress.
func (hr *HeadlessRunner) Player() *Player {
	return hr.player
}

// Run executes all commands in the script sequentially. It stops at the
// first failing command and reports its line.
func (hr *HeadlessRunner) Run(ctx context.Context) error {
	hr.startTime = time.Now()
	if hr.verbose {
		hr.logf("Starting headless script execution with %d commands\n", hr.player.TotalCommands())
	}

	for !hr.player.IsFinished() {
		// Check for cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := hr.wait(ctx, hr.player.Delay()); err != nil {
			return err
		}

		cmd := hr.player.NextCommand()
		if hr.verbose {
			hr.logf("[%d/%d] Executing: %s\n", hr.player.CurrentIndex()+1, hr.player.TotalCommands(), cmd.String())
		}

		if cmd.Type != CommandType_Sleep {
			if err := hr.executor.Execute(ctx, *cmd); err != nil {
				return fmt.Errorf("line %d: %s: %w", cmd.Line, cmd.Type, err)
			}
		}
		hr.executed++
		hr.player.Advance()
	}

	if hr.verbose {
		hr.logf("Script execution completed in %v\n", time.Since(hr.startTime))
	}

	return nil
}

func (hr *HeadlessRunner) wait(ctx context.Context, d time.Duration) error {
	if !hr.realtime || d <= 0 {
		return nil
	}
	if hr.verbose {
		hr.logf("  → Sleeping for %v\n", d)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Executed returns how many command runs completed, counting repeats.
func (hr *HeadlessRunner) Executed() int {
	return hr.executed
}

// GetOutput returns the captured output
func (hr *HeadlessRunner) GetOutput() string {
	hr.outputLock.Lock()
	defer hr.outputLock.Unlock()
	return hr.output.String()
}

// WriteOutput writes the output to a writer
func (hr *HeadlessRunner) WriteOutput(w io.Writer) error {
	hr.outputLock.Lock()
	defer hr.outputLock.Unlock()
	_, err := io.WriteString(w, hr.output.String())
	return err
}

// logf logs a message to the internal output buffer
func (hr *HeadlessRunner) logf(format string, args ...any) {
	hr.outputLock.Lock()
	defer hr.outputLock.Unlock()
	fmt.Fprintf(&hr.output, format, args...)
}

// ScriptExecutionStats contains statistics about a script execution
type ScriptExecutionStats struct {
	TotalCommands int
	ExecutedCount int
	ExecutedTime  time.Duration
	AvgTimePerCmd time.Duration
	StartTime     time.Time
	EndTime       time.Time
	Success       bool
	ErrorMessage  string
}

// Execute runs the script and collects statistics
func (hr *HeadlessRunner) Execute(ctx context.Context) ScriptExecutionStats {
	stats := ScriptExecutionStats{
		TotalCommands: hr.player.TotalCommands(),
		StartTime:     time.Now(),
	}

	err := hr.Run(ctx)
	stats.EndTime = time.Now()
	stats.ExecutedTime = stats.EndTime.Sub(stats.StartTime)
	stats.ExecutedCount = hr.executed

	if err != nil {
		stats.Success = false
		stats.ErrorMessage = err.Error()
	} else {
		stats.Success = true
	}

	if stats.ExecutedCount > 0 {
		stats.AvgTimePerCmd = stats.ExecutedTime / time.Duration(stats.ExecutedCount)
	}

	return stats
}

// ValidateScript checks if a tape script is valid (parses without errors)
func ValidateScript(content string) (bool, []string) {
	commands, errors := ParseFile(content)
	if len(errors) > 0 {
		return false, errors
	}
	if len(commands) == 0 {
		return false, []string{"no commands found in script"}
	}
	return true, nil
}
