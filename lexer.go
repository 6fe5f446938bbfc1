// lexer.go: turns Cobra source text into a flat token stream.
//
// OVERVIEW
// ========
// The lexer walks the source rune by rune and emits Tokens. Whitespace never
// becomes a token of its own; instead it is folded into two flags on the
// token that precedes it:
//
//	SpaceAfter    set by any whitespace other than a newline
//	NewlineAfter  set by '\n' or ';' (the statement terminator)
//
// The very last token always has NewlineAfter forced on, so the final
// statement of a file never needs a trailing newline. Comments start with '#'
// and run to the end of the line.
//
// Numbers keep their literal text verbatim in Token.Value ("5.", ".5"); a
// second '.' inside one literal is an InvalidFloat error. Strings are quoted
// with ' or "; a '*' right after the opening quote starts the multi-line
// form, which ends with '*' followed by the same quote.
//
// PUBLIC API
// ==========
//   - Position, Token, TokenType
//   - NewLexer(src, file) *Lexer, (*Lexer).Scan() ([]Token, error)
//   - Tokenize(src, file) ([]Token, error)
//   - LexError, LexErrorKind
package cobra

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota

	// Literals & identifiers
	STRING
	INTEGER
	FLOAT
	BOOLEAN
	NULL
	ID

	// Operators
	PLUS         // "+"
	INCR         // "++"
	PLUS_ASSIGN  // "+="
	MINUS        // "-"
	DECR         // "--"
	MINUS_ASSIGN // "-="
	MULT         // "*"
	POW          // "**"
	MULT_ASSIGN  // "*="
	DIV          // "/"
	FLOORDIV     // "//"
	DIV_ASSIGN   // "/="
	MOD          // "%"
	MOD_ASSIGN   // "%="
	ASSIGN       // "="
	EQ           // "=="
	NEQ          // "!="
	LESS
	LESS_EQ
	GREATER
	GREATER_EQ

	// Delimiters
	LROUND  // "("
	RROUND  // ")"
	LCURLY  // "{"
	RCURLY  // "}"
	LSQUARE // "["
	RSQUARE // "]"
	COLON   // ":"
	COMMA   // ","

	// Keywords
	NOT // "not" or "!"
	AND // "and" or "&"
	OR  // "or" or "|"
	IN
	IMPORT
	FROM
	RETURN
	BREAK
	LET
	VAR
	FUNCTION // "fn"
	FOR
	IF
	ELIF
	ELSE
	WHILE
)

var tokenNames = map[TokenType]string{
	EOF: "EOF", STRING: "STRING", INTEGER: "INTEGER", FLOAT: "FLOAT",
	BOOLEAN: "BOOLEAN", NULL: "NULL", ID: "ID",
	PLUS: "+", INCR: "++", PLUS_ASSIGN: "+=", MINUS: "-", DECR: "--",
	MINUS_ASSIGN: "-=", MULT: "*", POW: "**", MULT_ASSIGN: "*=", DIV: "/",
	FLOORDIV: "//", DIV_ASSIGN: "/=", MOD: "%", MOD_ASSIGN: "%=",
	ASSIGN: "=", EQ: "==", NEQ: "!=", LESS: "<", LESS_EQ: "<=",
	GREATER: ">", GREATER_EQ: ">=",
	LROUND: "(", RROUND: ")", LCURLY: "{", RCURLY: "}", LSQUARE: "[",
	RSQUARE: "]", COLON: ":", COMMA: ",",
	NOT: "not", AND: "and", OR: "or", IN: "in", IMPORT: "import",
	FROM: "from", RETURN: "return", BREAK: "break", LET: "let", VAR: "var",
	FUNCTION: "fn", FOR: "for", IF: "if", ELIF: "elif", ELSE: "else",
	WHILE: "while",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

var keywords = map[string]TokenType{
	"True":   BOOLEAN,
	"False":  BOOLEAN,
	"Null":   NULL,
	"not":    NOT,
	"and":    AND,
	"or":     OR,
	"in":     IN,
	"import": IMPORT,
	"from":   FROM,
	"return": RETURN,
	"break":  BREAK,
	"let":    LET,
	"var":    VAR,
	"fn":     FUNCTION,
	"for":    FOR,
	"if":     IF,
	"elif":   ELIF,
	"else":   ELSE,
	"while":  WHILE,
}

// Position locates a character in the source. Index is a byte offset;
// Line and Column are 1-based and Column counts runes.
type Position struct {
	Index  int
	Line   int
	Column int
}

// Equal reports whether both positions point at the same character. Only
// the index takes part in the comparison.
func (p Position) Equal(o Position) bool { return p.Index == o.Index }

// Compare orders positions by index.
func (p Position) Compare(o Position) int {
	switch {
	case p.Index < o.Index:
		return -1
	case p.Index > o.Index:
		return 1
	}
	return 0
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// Token is one lexeme. End is the position just past the last character.
type Token struct {
	Type         TokenType
	Value        string
	Start        Position
	End          Position
	SpaceAfter   bool
	NewlineAfter bool
	File         string
}

func (t Token) String() string {
	switch t.Type {
	case STRING:
		return fmt.Sprintf("STRING(%q)", t.Value)
	case INTEGER, FLOAT, BOOLEAN, ID:
		return fmt.Sprintf("%s(%s)", t.Type, t.Value)
	}
	return t.Type.String()
}

// LexErrorKind classifies lexical failures.
type LexErrorKind int

const (
	IllegalCharacter LexErrorKind = iota
	InvalidFloat
	UnterminatedString
)

func (k LexErrorKind) String() string {
	switch k {
	case IllegalCharacter:
		return "IllegalCharacter"
	case InvalidFloat:
		return "InvalidFloat"
	case UnterminatedString:
		return "UnterminatedString"
	}
	return "LexError"
}

// LexError is returned by the lexer. Start and End delimit the offending
// text.
type LexError struct {
	Kind  LexErrorKind
	Start Position
	End   Position
	File  string
	Msg   string

	eof bool // input ran out before the token was complete
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEXICAL ERROR at %s: %s: %s", e.Start, e.Kind, e.Msg)
}

// Lexer holds the scanning state for one source text.
type Lexer struct {
	src    string
	file   string
	cur    int // byte offset of the next rune
	line   int
	col    int // runes consumed on the current line
	tokens []Token
	log    *slog.Logger
}

// NewLexer prepares a lexer for src. file labels the produced tokens and
// errors; it may be empty.
func NewLexer(src, file string) *Lexer {
	return &Lexer{src: src, file: file, line: 1, log: discardLogger()}
}

// WithLogger routes debug tracing to logger.
func (l *Lexer) WithLogger(logger *slog.Logger) *Lexer {
	if logger != nil {
		l.log = logger
	}
	return l
}

// Tokenize is a shorthand for NewLexer(src, file).Scan().
func Tokenize(src, file string) ([]Token, error) {
	return NewLexer(src, file).Scan()
}

// Scan consumes the whole source and returns its tokens. No EOF token is
// appended; the parser synthesizes one past the end.
func (l *Lexer) Scan() ([]Token, error) {
	for !l.atEnd() {
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
	if n := len(l.tokens); n > 0 {
		l.tokens[n-1].NewlineAfter = true
	}
	return l.tokens, nil
}

//// END_OF_PUBLIC

func (l *Lexer) atEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() rune {
	if l.atEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.cur:])
	return r
}

func (l *Lexer) peekNext() rune {
	if l.atEnd() {
		return 0
	}
	_, w := utf8.DecodeRuneInString(l.src[l.cur:])
	if l.cur+w >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.cur+w:])
	return r
}

// pos is the position of the next rune.
func (l *Lexer) pos() Position {
	return Position{Index: l.cur, Line: l.line, Column: l.col + 1}
}

func (l *Lexer) advance() rune {
	r, w := utf8.DecodeRuneInString(l.src[l.cur:])
	l.cur += w
	if r == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) match(r rune) bool {
	if l.peek() != r || l.atEnd() {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) emit(tt TokenType, value string, start Position) {
	tok := Token{Type: tt, Value: value, Start: start, End: l.pos(), File: l.file}
	l.tokens = append(l.tokens, tok)
	l.log.Debug("token", "type", tt.String(), "value", value, "at", start.String())
}

func (l *Lexer) markSpace() {
	if n := len(l.tokens); n > 0 {
		l.tokens[n-1].SpaceAfter = true
	}
}

func (l *Lexer) markNewline() {
	if n := len(l.tokens); n > 0 {
		l.tokens[n-1].NewlineAfter = true
	}
}

func (l *Lexer) errorf(kind LexErrorKind, start Position, format string, args ...any) error {
	return &LexError{Kind: kind, Start: start, End: l.pos(), File: l.file, Msg: fmt.Sprintf(format, args...)}
}

func (l *Lexer) scanToken() error {
	start := l.pos()
	r := l.peek()

	switch {
	case r == '\n' || r == ';':
		l.advance()
		l.markNewline()
		return nil
	case r == '#':
		for !l.atEnd() && l.peek() != '\n' {
			l.advance()
		}
		return nil
	case unicode.IsSpace(r):
		l.advance()
		l.markSpace()
		return nil
	case isDigit(r) || (r == '.' && isDigit(l.peekNext())):
		return l.scanNumber(start)
	case r == '"' || r == '\'':
		return l.scanString(start)
	case unicode.IsLetter(r):
		l.scanIdentifier(start)
		return nil
	}

	l.advance()
	two := func(next rune, yes, no TokenType) {
		if l.match(next) {
			l.emit(yes, l.src[start.Index:l.cur], start)
			return
		}
		l.emit(no, string(r), start)
	}
	switch r {
	case '+':
		switch {
		case l.match('+'):
			l.emit(INCR, "++", start)
		case l.match('='):
			l.emit(PLUS_ASSIGN, "+=", start)
		default:
			l.emit(PLUS, "+", start)
		}
	case '-':
		switch {
		case l.match('-'):
			l.emit(DECR, "--", start)
		case l.match('='):
			l.emit(MINUS_ASSIGN, "-=", start)
		default:
			l.emit(MINUS, "-", start)
		}
	case '*':
		switch {
		case l.match('*'):
			l.emit(POW, "**", start)
		case l.match('='):
			l.emit(MULT_ASSIGN, "*=", start)
		default:
			l.emit(MULT, "*", start)
		}
	case '/':
		switch {
		case l.match('/'):
			l.emit(FLOORDIV, "//", start)
		case l.match('='):
			l.emit(DIV_ASSIGN, "/=", start)
		default:
			l.emit(DIV, "/", start)
		}
	case '%':
		two('=', MOD_ASSIGN, MOD)
	case '=':
		two('=', EQ, ASSIGN)
	case '!':
		two('=', NEQ, NOT)
	case '<':
		two('=', LESS_EQ, LESS)
	case '>':
		two('=', GREATER_EQ, GREATER)
	case '&':
		l.emit(AND, "&", start)
	case '|':
		l.emit(OR, "|", start)
	case '(':
		l.emit(LROUND, "(", start)
	case ')':
		l.emit(RROUND, ")", start)
	case '{':
		l.emit(LCURLY, "{", start)
	case '}':
		l.emit(RCURLY, "}", start)
	case '[':
		l.emit(LSQUARE, "[", start)
	case ']':
		l.emit(RSQUARE, "]", start)
	case ':':
		l.emit(COLON, ":", start)
	case ',':
		l.emit(COMMA, ",", start)
	default:
		return l.errorf(IllegalCharacter, start, "unexpected character %q", r)
	}
	return nil
}

func (l *Lexer) scanNumber(start Position) error {
	dots := 0
	for !l.atEnd() {
		r := l.peek()
		if r == '.' {
			dots++
			if dots > 1 {
				l.advance()
				return l.errorf(InvalidFloat, start, "malformed number %q", l.src[start.Index:l.cur])
			}
		} else if !isDigit(r) {
			break
		}
		l.advance()
	}
	text := l.src[start.Index:l.cur]
	if dots == 1 {
		l.emit(FLOAT, text, start)
	} else {
		l.emit(INTEGER, text, start)
	}
	return nil
}

func (l *Lexer) scanIdentifier(start Position) {
	for !l.atEnd() {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	text := l.src[start.Index:l.cur]
	if tt, ok := keywords[text]; ok {
		l.emit(tt, text, start)
		return
	}
	l.emit(ID, text, start)
}

func (l *Lexer) scanString(start Position) error {
	quote := l.advance()
	multi := false
	if l.peek() == '*' {
		l.advance()
		multi = true
		if l.peek() == '\n' {
			l.advance()
		}
	}

	var b strings.Builder
	for {
		if l.atEnd() {
			return l.unterminated(start)
		}
		r := l.advance()
		switch {
		case multi && r == '*' && l.peek() == quote:
			l.advance()
			l.emit(STRING, b.String(), start)
			return nil
		case !multi && r == quote:
			l.emit(STRING, b.String(), start)
			return nil
		case !multi && r == '\n':
			return l.errorf(UnterminatedString, start, "newline in string literal")
		case r == '\\':
			if l.atEnd() {
				return l.unterminated(start)
			}
			e := l.advance()
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\':
				b.WriteByte('\\')
			case '\'', '"':
				b.WriteRune(e)
			default:
				b.WriteByte('\\')
				b.WriteRune(e)
			}
		default:
			b.WriteRune(r)
		}
	}
}

func (l *Lexer) unterminated(start Position) error {
	err := l.errorf(UnterminatedString, start, "string literal is not terminated")
	err.(*LexError).eof = true
	return err
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }
