package tape

import (
	"fmt"
	"time"
)

// Player manages script playback
type Player struct {
	commands []Command
	index    int  // Current command index
	repeat   int  // Runs of the current command already done
	paused   bool // Whether playback is paused
	finished bool // Whether all commands have been played
}

// NewPlayer creates a new script player from a list of commands
func NewPlayer(commands []Command) *Player {
	return &Player{
		commands: commands,
		finished: len(commands) == 0,
	}
}

// NextCommand returns the next command to execute without advancing the player state
func (p *Player) NextCommand() *Command {
	if p.index >= len(p.commands) {
		return nil
	}
	return &p.commands[p.index]
}

// Advance records one run of the current command and moves on once its
// repeat count is used up.
func (p *Player) Advance() {
	if p.index < len(p.commands) {
		p.repeat++
		if p.repeat >= max(1, p.commands[p.index].Repeat) {
			p.index++
			p.repeat = 0
		}
	}
	if p.index >= len(p.commands) {
		p.finished = true
	}
}

// Delay returns how long to wait before running the next command. Only
// the first run of a repeated command waits.
func (p *Player) Delay() time.Duration {
	cmd := p.NextCommand()
	if cmd == nil || p.repeat > 0 {
		return 0
	}
	return cmd.Delay
}

// IsFinished returns true if all commands have been executed
func (p *Player) IsFinished() bool {
	return p.finished
}

// IsPaused returns true if playback is paused
func (p *Player) IsPaused() bool {
	return p.paused
}

// SetPaused sets the paused state
func (p *Player) SetPaused(paused bool) {
	p.paused = paused
}

// Reset resets the player to the beginning
func (p *Player) Reset() {
	p.index = 0
	p.repeat = 0
	p.paused = false
	p.finished = len(p.commands) == 0
}

// CurrentIndex returns the current command index
func (p *Player) CurrentIndex() int {
	return p.index
}

// TotalCommands returns the total number of commands
func (p *Player) TotalCommands() int {
	return len(p.commands)
}

// Progress returns a value between 0 and 100 representing playback progress
func (p *Player) Progress() int {
	if len(p.commands) == 0 {
		return 100
	}
	return (p.index * 100) / len(p.commands)
}

// CommandStr returns a string representation of the current command for display
func (p *Player) CommandStr() string {
	if p.index >= len(p.commands) {
		return "Script finished"
	}
	cmd := p.commands[p.index]
	return cmd.String()
}

// PlaybackStatus contains state information about script playback
type PlaybackStatus struct {
	State    string // "playing", "paused", "finished"
	Index    int    // Current command index
	Total    int    // Total commands
	Progress int    // 0-100
	Current  string // Current command display string
}

// Status returns current playback status
func (p *Player) Status() PlaybackStatus {
	state := "playing"
	if p.paused {
		state = "paused"
	} else if p.finished {
		state = "finished"
	}

	return PlaybackStatus{
		State:    state,
		Index:    p.index,
		Total:    len(p.commands),
		Progress: p.Progress(),
		Current:  p.CommandStr(),
	}
}

// String returns a debug string representation
func (p *Player) String() string {
	return fmt.Sprintf(
		"Player{index=%d/%d, paused=%v, finished=%v}",
		p.index, len(p.commands), p.paused, p.finished,
	)
}
