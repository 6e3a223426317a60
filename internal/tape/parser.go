package tape

import (
	"fmt"
	"slices"
	"strconv"
)

// Parser parses .tape files into commands
type Parser struct {
	lexer   *Lexer
	curTok  Token
	peekTok Token
	errors  []string
}

// NewParser creates a new parser from a lexer
func NewParser(l *Lexer) *Parser {
	p := &Parser{
		lexer:  l,
		errors: []string{},
	}
	p.nextToken()
	p.nextToken()
	return p
}

// nextToken advances to the next token
func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.lexer.NextToken()
}

// Parse parses the entire tape file and returns all commands
func (p *Parser) Parse() []Command {
	var commands []Command

	for p.curTok.Type != TOKEN_EOF {
		// Skip newlines
		if p.curTok.Type == TOKEN_NEWLINE {
			p.nextToken()
			continue
		}

		cmd, ok := p.parseCommand()
		if !ok {
			p.nextToken()
			continue
		}

		commands = append(commands, cmd)
	}

	return commands
}

// parseCommand parses a single command
func (p *Parser) parseCommand() (Command, bool) {
	tt := p.curTok.Type

	if tt == TOKEN_SLEEP {
		return p.parseSleepCommand()
	}

	cmdType, ok := commandTokens[tt]
	if !ok {
		if tt == TOKEN_IDENTIFIER {
			p.addError(fmt.Sprintf("unknown command: %s", p.curTok.Literal))
		} else {
			p.addError(fmt.Sprintf("unexpected token: %v", tt))
		}
		p.skipToNextLine()
		return Command{}, false
	}
	return p.parseSignature(cmdType, signatures[cmdType])
}

// parseSignature parses a command name, an optional @delay, the arguments
// its signature names and, for repeatable commands, a repeat count.
func (p *Parser) parseSignature(cmdType CommandType, sig signature) (Command, bool) {
	cmd := Command{
		Type:   cmdType,
		Repeat: 1,
		Line:   p.curTok.Line,
		Column: p.curTok.Column,
	}

	p.nextToken() // consume command name

	// Check for optional delay modifier (@<duration>)
	if p.curTok.Type == TOKEN_AT {
		p.nextToken()
		if p.curTok.Type == TOKEN_DURATION {
			duration, err := ParseDuration(p.curTok.Literal)
			if err != nil {
				p.addError(fmt.Sprintf("invalid duration: %s", p.curTok.Literal))
			}
			cmd.Delay = duration
			p.nextToken()
		} else {
			p.addError("expected duration after @")
		}
	}

	for i := 0; i < len(sig.Required); i++ {
		arg, ok := p.parseArg(sig.Required[i], sig.Words)
		if !ok {
			p.addError(fmt.Sprintf("%s expects %s as argument %d, got %v",
				cmdType, kindName(sig.Required[i]), i+1, p.curTok.Type))
			p.skipToNextLine()
			return cmd, false
		}
		cmd.Args = append(cmd.Args, arg)
	}

	if sig.Rest != 0 {
		for p.curTok.Type != TOKEN_NEWLINE && p.curTok.Type != TOKEN_EOF {
			arg, ok := p.parseArg(sig.Rest, sig.Words)
			if !ok {
				break
			}
			cmd.Args = append(cmd.Args, arg)
		}
	}

	// Check for optional repeat count (number)
	if sig.Repeatable && p.curTok.Type == TOKEN_NUMBER {
		n, err := strconv.Atoi(p.curTok.Literal)
		if err != nil || n < 1 {
			p.addError(fmt.Sprintf("invalid repeat count: %s", p.curTok.Literal))
		} else {
			cmd.Repeat = n
		}
		p.nextToken()
	}

	if err := checkArity(cmd); err != "" {
		p.addError(err)
		p.skipToNextLine()
		return cmd, false
	}

	if p.curTok.Type != TOKEN_NEWLINE && p.curTok.Type != TOKEN_EOF {
		p.addError(fmt.Sprintf("unexpected %v after %s", p.curTok.Type, cmdType))
		p.skipToNextLine()
	}

	cmd.Raw = cmd.String()
	return cmd, true
}

// parseArg consumes one argument of the given kind.
func (p *Parser) parseArg(kind byte, words []string) (string, bool) {
	tok := p.curTok
	switch kind {
	case argString:
		if tok.Type != TOKEN_STRING && tok.Type != TOKEN_IDENTIFIER {
			return "", false
		}
	case argNumber:
		if tok.Type != TOKEN_NUMBER {
			return "", false
		}
	case argWord:
		if tok.Type != TOKEN_IDENTIFIER || !slices.Contains(words, tok.Literal) {
			return "", false
		}
	}
	p.nextToken()
	return tok.Literal, true
}

func kindName(kind byte) string {
	switch kind {
	case argNumber:
		return "a number"
	case argWord:
		return "a keyword"
	default:
		return "a name"
	}
}

// checkArity reports argument counts the signature alone cannot express.
func checkArity(cmd Command) string {
	switch cmd.Type {
	case CommandType_Arrow:
		if len(cmd.Args)%2 == 0 {
			return "Arrow expects x y pairs"
		}
	case CommandType_Zoom:
		if len(cmd.Args) != 1 && len(cmd.Args) != 3 {
			return "Zoom expects a factor and an optional x y pivot"
		}
	}
	return ""
}

// parseSleepCommand parses Sleep <duration> commands
func (p *Parser) parseSleepCommand() (Command, bool) {
	cmd := Command{
		Type:   CommandType_Sleep,
		Repeat: 1,
		Line:   p.curTok.Line,
		Column: p.curTok.Column,
	}

	p.nextToken() // consume Sleep

	if p.curTok.Type == TOKEN_DURATION {
		duration, err := ParseDuration(p.curTok.Literal)
		if err != nil {
			p.addError(fmt.Sprintf("invalid duration: %s", p.curTok.Literal))
		}
		cmd.Args = []string{p.curTok.Literal}
		cmd.Delay = duration
		cmd.Raw = fmt.Sprintf("Sleep %s", p.curTok.Literal)
		p.nextToken()
	} else {
		p.addError(fmt.Sprintf("Sleep command expects a duration, got %v", p.curTok.Type))
		p.skipToNextLine()
		return cmd, false
	}

	if p.curTok.Type != TOKEN_NEWLINE && p.curTok.Type != TOKEN_EOF {
		p.skipToNextLine()
	}

	return cmd, true
}

// skipToNextLine skips tokens until the next newline
func (p *Parser) skipToNextLine() {
	for p.curTok.Type != TOKEN_NEWLINE && p.curTok.Type != TOKEN_EOF {
		p.nextToken()
	}
}

// addError adds an error to the parser's error list
func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, fmt.Sprintf("line %d: %s", p.curTok.Line, msg))
}

// Errors returns the list of parser errors
func (p *Parser) Errors() []string {
	return p.errors
}

// ParseFile parses a tape file from a string
func ParseFile(content string) ([]Command, []string) {
	l := New(content)
	p := NewParser(l)
	commands := p.Parse()
	return commands, p.Errors()
}
