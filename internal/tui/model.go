// Package tui presents a board in the terminal with Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/Gaurav-Gosain/boardkit/internal/board"
	"github.com/Gaurav-Gosain/boardkit/internal/config"
	"github.com/Gaurav-Gosain/boardkit/internal/presentation"
)

// TickMsg advances a running camera transition.
type TickMsg time.Time

// Options configures the presenter.
type Options struct {
	Registry *config.KeybindRegistry
	FPS      int
	// QuitOnStop ends the program when the presentation is stopped.
	QuitOnStop bool
}

// Model is the Bubble Tea model of the presenter. The manager must be
// created with HostDriven set so transitions advance on ticks.
type Model struct {
	ctx      context.Context
	manager  *presentation.Manager
	board    *board.Board
	opts     Options
	width    int
	height   int
	showHelp bool
	ticking  bool
	err      error
}

// New creates a presenter over manager.
func New(ctx context.Context, manager *presentation.Manager, opts Options) *Model {
	if opts.FPS <= 0 {
		opts.FPS = presentation.DefaultFPS
	}
	return &Model{ctx: ctx, manager: manager, board: manager.Board(), opts: opts}
}

// Err returns the last error raised by a key or camera update.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// animate starts ticking if a transition is running and no tick is pending.
func (m *Model) animate() tea.Cmd {
	if m.ticking || !m.manager.Animating() {
		return nil
	}
	m.ticking = true
	return m.tick()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.animate()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		rows := max(msg.Height-1, 1)
		if err := m.board.SetContainerSize(float64(msg.Width*CellWidth), float64(rows*CellHeight)); err != nil {
			m.err = err
		}
		return m, nil

	case TickMsg:
		if m.manager.Step(time.Time(msg)) {
			return m, m.tick()
		}
		m.ticking = false
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg.String())

	case tea.MouseWheelMsg:
		var delta float64
		switch msg.Button {
		case tea.MouseWheelDown:
			delta = 1
		case tea.MouseWheelUp:
			delta = -1
		}
		if _, err := m.manager.Wheel(m.ctx, delta); err != nil {
			m.err = err
		}
		return m, m.animate()
	}
	return m, nil
}

func (m *Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	}
	if m.showHelp {
		if key == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	handled, err := m.manager.HandleKey(m.ctx, key)
	if err != nil {
		m.err = err
	}
	if handled && m.opts.QuitOnStop && !m.manager.IsPresenting() {
		return m, tea.Quit
	}
	return m, m.animate()
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	var view tea.View
	view.SetContent(m.Render())
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion
	return view
}

// Render draws the board and status line at the current terminal size.
func (m *Model) Render() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, renderHelp(m.opts.Registry))
	}

	rows := max(m.height-1, 1)
	body := Draw(m.board.Snapshot(), m.board.ViewPort(), m.width, rows).String()
	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusLine())
}

func (m *Model) statusLine() string {
	barStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("#1a1a2e")).
		Foreground(lipgloss.Color("#a0a0b0"))
	accent := barStyle.Foreground(lipgloss.Color("14")).Bold(true)

	left := accent.Render(" " + m.manager.State().String() + " ")
	if s, ok := m.manager.CurrentSequence(); ok && m.manager.IsPresenting() {
		left += barStyle.Render(fmt.Sprintf(" %s  %d/%d ", s.Name, m.manager.CurrentFrameIndex()+1, len(s.Frames)))
	}
	if m.err != nil {
		left += barStyle.Foreground(lipgloss.Color("9")).Render(" " + m.err.Error() + " ")
	}
	right := barStyle.Render(fmt.Sprintf(" zoom %.2f  ? help ", m.board.ViewPort().Zoom))

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + barStyle.Width(gap).Render("") + right
}

// Run starts the presenter on the terminal and blocks until it quits.
func Run(ctx context.Context, manager *presentation.Manager, opts Options) error {
	model := New(ctx, manager, opts)
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithFPS(model.opts.FPS))
	if _, err := p.Run(); err != nil {
		return err
	}
	return model.Err()
}
