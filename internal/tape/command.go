package tape

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CommandType represents the type of a tape command
type CommandType string

const (
	// Elements
	CommandType_Frame  CommandType = "Frame"
	CommandType_Shape  CommandType = "Shape"
	CommandType_Arrow  CommandType = "Arrow"
	CommandType_Delete CommandType = "Delete"
	CommandType_Rename CommandType = "Rename"
	CommandType_Move   CommandType = "Move"
	CommandType_Drag   CommandType = "Drag"
	CommandType_Front  CommandType = "Front"
	CommandType_Back   CommandType = "Back"

	// Frames
	CommandType_Wrap     CommandType = "Wrap"
	CommandType_Unwrap   CommandType = "Unwrap"
	CommandType_FitFrame CommandType = "FitFrame"
	CommandType_Grow     CommandType = "Grow"

	// Mind maps
	CommandType_Mind    CommandType = "Mind"
	CommandType_Child   CommandType = "Child"
	CommandType_Sibling CommandType = "Sibling"
	CommandType_Fold    CommandType = "Fold"
	CommandType_Layout  CommandType = "Layout"

	// Camera and selection
	CommandType_Select    CommandType = "Select"
	CommandType_Viewport  CommandType = "Viewport"
	CommandType_Container CommandType = "Container"
	CommandType_Zoom      CommandType = "Zoom"

	// Presentation
	CommandType_Sequence CommandType = "Sequence"
	CommandType_Capture  CommandType = "Capture"
	CommandType_Save     CommandType = "Save"
	CommandType_Present  CommandType = "Present"
	CommandType_Next     CommandType = "Next"
	CommandType_Prev     CommandType = "Prev"
	CommandType_Goto     CommandType = "Goto"
	CommandType_Stop     CommandType = "Stop"
	CommandType_FitAll   CommandType = "FitAll"

	// History and timing
	CommandType_Undo  CommandType = "Undo"
	CommandType_Redo  CommandType = "Redo"
	CommandType_Sleep CommandType = "Sleep"
)

// Argument kinds used in command signatures.
const (
	argString = 's' // quoted string or bare identifier
	argNumber = 'n'
	argWord   = 'w' // bare keyword such as into, left
)

// signature describes the arguments a command takes. Required lists the
// fixed arguments in order; Rest, when set, accepts any number of further
// arguments of that kind.
type signature struct {
	Required   string
	Rest       byte
	Repeatable bool
	Words      []string
}

var signatures = map[CommandType]signature{
	CommandType_Frame:     {Required: "snnnn"},
	CommandType_Shape:     {Required: "snnnn"},
	CommandType_Arrow:     {Required: "snnnn", Rest: argNumber},
	CommandType_Delete:    {Required: "s"},
	CommandType_Rename:    {Required: "ss"},
	CommandType_Move:      {Required: "sws", Words: []string{"into", "before", "after"}},
	CommandType_Drag:      {Required: "snn"},
	CommandType_Front:     {Required: "s"},
	CommandType_Back:      {Required: "s"},
	CommandType_Wrap:      {Required: "ss", Rest: argString},
	CommandType_Unwrap:    {Required: "s"},
	CommandType_FitFrame:  {Required: "s"},
	CommandType_Grow:      {Required: "s"},
	CommandType_Mind:      {Required: "snn"},
	CommandType_Child:     {Required: "ss"},
	CommandType_Sibling:   {Required: "ss"},
	CommandType_Fold:      {Required: "sw", Words: []string{"left", "right"}},
	CommandType_Layout:    {},
	CommandType_Select:    {Rest: argString},
	CommandType_Viewport:  {Required: "nnn"},
	CommandType_Container: {Required: "nn"},
	CommandType_Zoom:      {Required: "n", Rest: argNumber},
	CommandType_Sequence:  {Required: "s"},
	CommandType_Capture:   {Rest: argString},
	CommandType_Save:      {},
	CommandType_Present:   {Required: "s"},
	CommandType_Next:      {Repeatable: true},
	CommandType_Prev:      {Repeatable: true},
	CommandType_Goto:      {Required: "n"},
	CommandType_Stop:      {},
	CommandType_FitAll:    {},
	CommandType_Undo:      {Repeatable: true},
	CommandType_Redo:      {Repeatable: true},
}

// Command represents a parsed tape command
type Command struct {
	Type   CommandType
	Args   []string      // Command arguments
	Repeat int           // Number of times to run, at least 1
	Delay  time.Duration // Delay before this command
	Line   int           // Source line number
	Column int           // Source column number
	Raw    string        // Original raw command text
}

// NewCommand builds a command as if it had been parsed.
func NewCommand(t CommandType, args ...string) Command {
	cmd := Command{Type: t, Args: args, Repeat: 1}
	cmd.Raw = cmd.String()
	return cmd
}

// String returns the command in script syntax
func (c *Command) String() string {
	var sb strings.Builder
	sb.WriteString(string(c.Type))
	if c.Type != CommandType_Sleep && c.Delay > 0 {
		fmt.Fprintf(&sb, " @%s", c.Delay)
	}

	sig := signatures[c.Type]
	for i, arg := range c.Args {
		kind := sig.Rest
		if i < len(sig.Required) {
			kind = sig.Required[i]
		}
		sb.WriteByte(' ')
		switch {
		case c.Type == CommandType_Sleep:
			sb.WriteString(arg)
		case kind == argString:
			sb.WriteString(strconv.Quote(arg))
		default:
			sb.WriteString(arg)
		}
	}
	if c.Repeat > 1 {
		fmt.Fprintf(&sb, " %d", c.Repeat)
	}
	return sb.String()
}

// Float parses argument i as a number.
func (c *Command) Float(i int) (float64, error) {
	if i >= len(c.Args) {
		return 0, fmt.Errorf("%s: missing argument %d", c.Type, i+1)
	}
	v, err := strconv.ParseFloat(c.Args[i], 64)
	if err != nil {
		return 0, fmt.Errorf("%s: argument %d: %w", c.Type, i+1, err)
	}
	return v, nil
}

// Floats parses every argument from i on as a number.
func (c *Command) Floats(from int) ([]float64, error) {
	var out []float64
	for i := from; i < len(c.Args); i++ {
		v, err := c.Float(i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// IsCommand returns true if the command type is a valid command
func (ct CommandType) IsCommand() bool {
	if ct == CommandType_Sleep {
		return true
	}
	_, ok := signatures[ct]
	return ok
}

// ParseDuration parses a duration string (e.g., "500ms", "1s")
func ParseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
