package tape

// TokenType represents the type of a token in a .tape file
type TokenType string

const (
	// Special tokens
	TOKEN_EOF     TokenType = "EOF"
	TOKEN_ILLEGAL TokenType = "ILLEGAL"
	TOKEN_NEWLINE TokenType = "NEWLINE"

	// Literals
	TOKEN_STRING     TokenType = "STRING"
	TOKEN_NUMBER     TokenType = "NUMBER"
	TOKEN_DURATION   TokenType = "DURATION"
	TOKEN_IDENTIFIER TokenType = "IDENTIFIER"

	// Symbols
	TOKEN_AT TokenType = "AT"

	// Commands - Elements
	TOKEN_FRAME  TokenType = "Frame"
	TOKEN_SHAPE  TokenType = "Shape"
	TOKEN_ARROW  TokenType = "Arrow"
	TOKEN_DELETE TokenType = "Delete"
	TOKEN_RENAME TokenType = "Rename"
	TOKEN_MOVE   TokenType = "Move"
	TOKEN_DRAG   TokenType = "Drag"
	TOKEN_FRONT  TokenType = "Front"
	TOKEN_BACK   TokenType = "Back"

	// Commands - Frames
	TOKEN_WRAP      TokenType = "Wrap"
	TOKEN_UNWRAP    TokenType = "Unwrap"
	TOKEN_FIT_FRAME TokenType = "FitFrame"
	TOKEN_GROW      TokenType = "Grow"

	// Commands - Mind maps
	TOKEN_MIND    TokenType = "Mind"
	TOKEN_CHILD   TokenType = "Child"
	TOKEN_SIBLING TokenType = "Sibling"
	TOKEN_FOLD    TokenType = "Fold"
	TOKEN_LAYOUT  TokenType = "Layout"

	// Commands - Camera and selection
	TOKEN_SELECT    TokenType = "Select"
	TOKEN_VIEWPORT  TokenType = "Viewport"
	TOKEN_CONTAINER TokenType = "Container"
	TOKEN_ZOOM      TokenType = "Zoom"

	// Commands - Presentation
	TOKEN_SEQUENCE TokenType = "Sequence"
	TOKEN_CAPTURE  TokenType = "Capture"
	TOKEN_SAVE     TokenType = "Save"
	TOKEN_PRESENT  TokenType = "Present"
	TOKEN_NEXT     TokenType = "Next"
	TOKEN_PREV     TokenType = "Prev"
	TOKEN_GOTO     TokenType = "Goto"
	TOKEN_STOP     TokenType = "Stop"
	TOKEN_FIT_ALL  TokenType = "FitAll"

	// Commands - History and timing
	TOKEN_UNDO  TokenType = "Undo"
	TOKEN_REDO  TokenType = "Redo"
	TOKEN_SLEEP TokenType = "Sleep"
)

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// IsCommand returns true if the token type is a command
func (tt TokenType) IsCommand() bool {
	_, ok := commandTokens[tt]
	return ok
}

// KeywordTokenMap maps string keywords to token types
var KeywordTokenMap = map[string]TokenType{
	// Elements
	"Frame":  TOKEN_FRAME,
	"Shape":  TOKEN_SHAPE,
	"Arrow":  TOKEN_ARROW,
	"Delete": TOKEN_DELETE,
	"Rename": TOKEN_RENAME,
	"Move":   TOKEN_MOVE,
	"Drag":   TOKEN_DRAG,
	"Front":  TOKEN_FRONT,
	"Back":   TOKEN_BACK,

	// Frames
	"Wrap":     TOKEN_WRAP,
	"Unwrap":   TOKEN_UNWRAP,
	"FitFrame": TOKEN_FIT_FRAME,
	"Grow":     TOKEN_GROW,

	// Mind maps
	"Mind":    TOKEN_MIND,
	"Child":   TOKEN_CHILD,
	"Sibling": TOKEN_SIBLING,
	"Fold":    TOKEN_FOLD,
	"Layout":  TOKEN_LAYOUT,

	// Camera and selection
	"Select":    TOKEN_SELECT,
	"Viewport":  TOKEN_VIEWPORT,
	"Container": TOKEN_CONTAINER,
	"Zoom":      TOKEN_ZOOM,

	// Presentation
	"Sequence": TOKEN_SEQUENCE,
	"Capture":  TOKEN_CAPTURE,
	"Save":     TOKEN_SAVE,
	"Present":  TOKEN_PRESENT,
	"Next":     TOKEN_NEXT,
	"Prev":     TOKEN_PREV,
	"Goto":     TOKEN_GOTO,
	"Stop":     TOKEN_STOP,
	"FitAll":   TOKEN_FIT_ALL,

	// History and timing
	"Undo":  TOKEN_UNDO,
	"Redo":  TOKEN_REDO,
	"Sleep": TOKEN_SLEEP,
}

// commandTokens maps command tokens to the command they start.
var commandTokens = map[TokenType]CommandType{
	TOKEN_FRAME:     CommandType_Frame,
	TOKEN_SHAPE:     CommandType_Shape,
	TOKEN_ARROW:     CommandType_Arrow,
	TOKEN_DELETE:    CommandType_Delete,
	TOKEN_RENAME:    CommandType_Rename,
	TOKEN_MOVE:      CommandType_Move,
	TOKEN_DRAG:      CommandType_Drag,
	TOKEN_FRONT:     CommandType_Front,
	TOKEN_BACK:      CommandType_Back,
	TOKEN_WRAP:      CommandType_Wrap,
	TOKEN_UNWRAP:    CommandType_Unwrap,
	TOKEN_FIT_FRAME: CommandType_FitFrame,
	TOKEN_GROW:      CommandType_Grow,
	TOKEN_MIND:      CommandType_Mind,
	TOKEN_CHILD:     CommandType_Child,
	TOKEN_SIBLING:   CommandType_Sibling,
	TOKEN_FOLD:      CommandType_Fold,
	TOKEN_LAYOUT:    CommandType_Layout,
	TOKEN_SELECT:    CommandType_Select,
	TOKEN_VIEWPORT:  CommandType_Viewport,
	TOKEN_CONTAINER: CommandType_Container,
	TOKEN_ZOOM:      CommandType_Zoom,
	TOKEN_SEQUENCE:  CommandType_Sequence,
	TOKEN_CAPTURE:   CommandType_Capture,
	TOKEN_SAVE:      CommandType_Save,
	TOKEN_PRESENT:   CommandType_Present,
	TOKEN_NEXT:      CommandType_Next,
	TOKEN_PREV:      CommandType_Prev,
	TOKEN_GOTO:      CommandType_Goto,
	TOKEN_STOP:      CommandType_Stop,
	TOKEN_FIT_ALL:   CommandType_FitAll,
	TOKEN_UNDO:      CommandType_Undo,
	TOKEN_REDO:      CommandType_Redo,
	TOKEN_SLEEP:     CommandType_Sleep,
}

// LookupKeyword returns the token type for a keyword, or TOKEN_IDENTIFIER if not a keyword
func LookupKeyword(ident string) TokenType {
	if tt, ok := KeywordTokenMap[ident]; ok {
		return tt
	}
	return TOKEN_IDENTIFIER
}
