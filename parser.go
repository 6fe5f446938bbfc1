// parser.go: recursive-descent parser from tokens to a *Program.
//
// GRAMMAR
// =======
//
//	program        := statement*
//	statement      := let | fn | import | from-import | return | break | block-stmt
//	block-stmt     := if | while | for | "{" block "}" | assignment
//	assignment     := expr (("=" | "+=" | "-=" | "*=" | "/=" | "%=") expr | "++" | "--")?
//	expr           := comparison (("or" | "and" | "in") comparison)*
//	comparison     := additive (("==" | "!=" | "<" | "<=" | ">" | ">=") comparison)?
//	additive       := multiplicative (("+" | "-") multiplicative)*
//	multiplicative := subscript (("*" | "**" | "/" | "//" | "%") multiplicative)?
//	subscript      := atom ("[" expr "]" | "[" expr? ":" expr? "]")*
//	atom           := literal | unary atom | "not" comparison | ID | call
//	                | "(" expr ")" | tuple | list | dict
//
// Statements are terminated by the NewlineAfter flag of their last token,
// unless the next token closes a block. `import NAME` is resolved while
// parsing: the module's tokens are spliced into the stream in place of the
// import, once per parse.
//
// PUBLIC API
// ==========
//   - Parse(tokens, file, opts...) (*Program, error)
//   - ParseSource(src, file, opts...) (*Program, error)
//   - ParseOption: WithResolver, WithParserLogger
//   - ParseError, ParseErrorKind, IsIncomplete
package cobra

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// ParseErrorKind classifies syntactic failures.
type ParseErrorKind int

const (
	UnexpectedToken ParseErrorKind = iota
	MissingNewline
	ArityOrOrderViolation
	ImportNotFound
	ImportCycle
	InvalidTarget
)

func (k ParseErrorKind) String() string {
	switch k {
	case UnexpectedToken:
		return "UnexpectedToken"
	case MissingNewline:
		return "MissingNewline"
	case ArityOrOrderViolation:
		return "ArityOrOrderViolation"
	case ImportNotFound:
		return "ImportNotFound"
	case ImportCycle:
		return "ImportCycle"
	case InvalidTarget:
		return "InvalidTarget"
	}
	return "ParseError"
}

// ParseError reports the token the parser stopped at.
type ParseError struct {
	Kind  ParseErrorKind
	Token Token
	File  string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %s: %s: %s", e.Token.Start, e.Kind, e.Msg)
}

// IsIncomplete reports whether err was caused by the input ending early, so
// that more input could still make it valid.
func IsIncomplete(err error) bool {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Token.Type == EOF
	}
	var le *LexError
	if errors.As(err, &le) {
		return le.Kind == UnterminatedString && le.eof
	}
	return false
}

// ParseOption configures Parse.
type ParseOption func(*Parser)

// WithResolver sets how import names are turned into source text.
func WithResolver(r ModuleResolver) ParseOption {
	return func(p *Parser) { p.resolver = r }
}

// WithParserLogger routes debug tracing to logger.
func WithParserLogger(logger *slog.Logger) ParseOption {
	return func(p *Parser) {
		if logger != nil {
			p.log = logger
		}
	}
}

// Parse builds a Program from tokens. file labels the program and is the
// base for relative imports.
func Parse(tokens []Token, file string, opts ...ParseOption) (*Program, error) {
	p := newParser(tokens, file, &importState{}, opts...)
	return p.parseProgram()
}

// ParseSource tokenizes and parses src.
func ParseSource(src, file string, opts ...ParseOption) (*Program, error) {
	p := newParser(nil, file, &importState{}, opts...)
	toks, err := NewLexer(src, file).WithLogger(p.log).Scan()
	if err != nil {
		return nil, err
	}
	p.toks = toks
	return p.parseProgram()
}

//// END_OF_PUBLIC

// Parser is the parsing state for one token stream.
type Parser struct {
	toks     []Token
	i        int
	file     string
	resolver ModuleResolver
	imports  *importState
	spliced  map[string]bool
	log      *slog.Logger
	opts     []ParseOption
}

// importState is shared with parsers of from-imported modules to catch
// cycles.
type importState struct {
	stack []string
}

func newParser(tokens []Token, file string, st *importState, opts ...ParseOption) *Parser {
	p := &Parser{
		toks:     tokens,
		file:     file,
		resolver: DefaultResolver(),
		imports:  st,
		spliced:  map[string]bool{},
		log:      discardLogger(),
		opts:     opts,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Parser) atEnd() bool { return p.i >= len(p.toks) }

func (p *Parser) peek() Token {
	if p.i < len(p.toks) {
		return p.toks[p.i]
	}
	return p.eof()
}

func (p *Parser) eof() Token {
	t := Token{Type: EOF, File: p.file, NewlineAfter: true}
	if n := len(p.toks); n > 0 {
		t.Start = p.toks[n-1].End
		t.End = t.Start
		t.File = p.toks[n-1].File
	}
	return t
}

func (p *Parser) prev() Token {
	if p.i > 0 && p.i <= len(p.toks) {
		return p.toks[p.i-1]
	}
	return Token{}
}

func (p *Parser) advance() Token {
	t := p.peek()
	if !p.atEnd() {
		p.i++
	}
	return t
}

func (p *Parser) at(t Token) base {
	if t.File == "" {
		return base{At: t.Start, File: p.file}
	}
	return base{At: t.Start, File: t.File}
}

func (p *Parser) check(tt TokenType) bool { return p.peek().Type == tt }

func (p *Parser) match(types ...TokenType) bool {
	if slices.Contains(types, p.peek().Type) && !p.atEnd() {
		p.i++
		return true
	}
	return false
}

func (p *Parser) need(tt TokenType, what string) (Token, error) {
	if p.check(tt) && !p.atEnd() {
		return p.advance(), nil
	}
	return Token{}, p.errAt(UnexpectedToken, p.peek(), "expected %s, got %s", what, describe(p.peek()))
}

func (p *Parser) errAt(kind ParseErrorKind, t Token, format string, args ...any) error {
	file := t.File
	if file == "" {
		file = p.file
	}
	return &ParseError{Kind: kind, Token: t, File: file, Msg: fmt.Sprintf(format, args...)}
}

// continues reports whether the next token sits on the same line as the
// previous one; calls and subscripts never span a statement boundary.
func (p *Parser) continues() bool { return p.i > 0 && !p.prev().NewlineAfter }

func describe(t Token) string {
	switch t.Type {
	case EOF:
		return "end of input"
	case STRING:
		return fmt.Sprintf("string %q", t.Value)
	case ID:
		return fmt.Sprintf("identifier %q", t.Value)
	case INTEGER, FLOAT, BOOLEAN:
		return fmt.Sprintf("%q", t.Value)
	}
	return fmt.Sprintf("%q", t.Type.String())
}

////////////////////////////////////////////////////////////////////////////////
// statements
////////////////////////////////////////////////////////////////////////////////

func (p *Parser) parseProgram() (*Program, error) {
	prog := &Program{base: base{File: p.file}}
	if len(p.toks) > 0 {
		prog.At = p.toks[0].Start
	}
	for !p.atEnd() {
		st, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if st != nil {
			prog.Stmts = append(prog.Stmts, st)
		}
		if err := p.terminate(); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

func (p *Parser) terminate() error {
	if p.atEnd() || p.prev().NewlineAfter || p.check(RCURLY) {
		return nil
	}
	return p.errAt(MissingNewline, p.peek(), "expected newline or ';' before %s", describe(p.peek()))
}

// parseStatement may return a nil node for statements that leave nothing
// behind (imports).
func (p *Parser) parseStatement() (Node, error) {
	st, err := p.statement()
	if err == nil && st != nil {
		p.log.Debug("statement", "node", fmt.Sprintf("%T", st), "at", st.Pos().String())
	}
	return st, err
}

func (p *Parser) statement() (Node, error) {
	t := p.peek()
	switch t.Type {
	case LET, VAR:
		p.advance()
		name, err := p.need(ID, "variable name")
		if err != nil {
			return nil, err
		}
		if _, err := p.need(ASSIGN, "'='"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &LetDecl{base: p.at(t), Name: name.Value, Value: val}, nil
	case FUNCTION:
		return p.parseFunctionDef()
	case IMPORT:
		return nil, p.parseImport()
	case FROM:
		return p.parseFromImport()
	case RETURN:
		p.advance()
		if p.prev().NewlineAfter || p.check(RCURLY) || p.atEnd() {
			return &Return{base: p.at(t), Value: &NullLit{p.at(t)}}, nil
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &Return{base: p.at(t), Value: val}, nil
	case BREAK:
		p.advance()
		return &Break{p.at(t)}, nil
	}
	return p.parseBlockStatement()
}

func (p *Parser) parseBlockStatement() (Node, error) {
	switch p.peek().Type {
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case FOR:
		return p.parseFor()
	case LCURLY:
		// dict first: a bare "{}" statement is an empty Dict, not an empty block
		save := p.i
		if n, err := p.parseAssignment(); err == nil {
			return n, nil
		}
		p.i = save
		return p.parseBlock()
	}
	return p.parseAssignment()
}

func (p *Parser) parseStmtList() ([]Node, Token, error) {
	open, err := p.need(LCURLY, "'{'")
	if err != nil {
		return nil, open, err
	}
	var stmts []Node
	for !p.check(RCURLY) {
		if p.atEnd() {
			return nil, open, p.errAt(UnexpectedToken, p.peek(), "expected '}', got %s", describe(p.peek()))
		}
		st, err := p.parseStatement()
		if err != nil {
			return nil, open, err
		}
		if st != nil {
			stmts = append(stmts, st)
		}
		if err := p.terminate(); err != nil {
			return nil, open, err
		}
	}
	p.advance()
	return stmts, open, nil
}

func (p *Parser) parseBlock() (*Block, error) {
	stmts, open, err := p.parseStmtList()
	if err != nil {
		return nil, err
	}
	return &Block{base: p.at(open), Stmts: stmts}, nil
}

func (p *Parser) parseIf() (Node, error) {
	t := p.advance()
	node := &If{base: p.at(t)}
	for {
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Branches = append(node.Branches, IfBranch{Cond: cond, Body: body})
		if !p.match(ELIF) {
			break
		}
	}
	if e := p.peek(); p.match(ELSE) {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Branches = append(node.Branches, IfBranch{Cond: &BooleanLit{base: p.at(e), Value: true}, Body: body})
	}
	return node, nil
}

func (p *Parser) parseWhile() (Node, error) {
	t := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &While{base: p.at(t), Cond: cond, Body: body}, nil
}

func (p *Parser) parseFor() (Node, error) {
	t := p.advance()
	node := &For{base: p.at(t)}
	for {
		name, err := p.need(ID, "loop variable")
		if err != nil {
			return nil, err
		}
		node.Vars = append(node.Vars, name.Value)
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(IN, "'in'"); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node.Iterable = iter
	node.Body = body
	return node, nil
}

// Parameter groups must appear in this order.
const (
	stagePositional = iota
	stageVarArg
	stageKeyword
	stageVarKwArg
)

func (p *Parser) parseFunctionDef() (Node, error) {
	t := p.advance()
	name, err := p.need(ID, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(LROUND, "'('"); err != nil {
		return nil, err
	}
	fd := &FunctionDef{base: p.at(t), Name: name.Value}
	seen := map[string]bool{}
	stage := stagePositional

	order := func(tok Token, want int, pname string) error {
		if stage > want || (stage == want && want != stagePositional && want != stageKeyword) {
			return p.errAt(ArityOrOrderViolation, tok, "parameter %q is out of order", pname)
		}
		if seen[pname] {
			return p.errAt(ArityOrOrderViolation, tok, "duplicate parameter %q", pname)
		}
		seen[pname] = true
		stage = want
		return nil
	}

	for !p.check(RROUND) {
		tok := p.peek()
		switch {
		case p.match(MULT):
			id, err := p.need(ID, "parameter name")
			if err != nil {
				return nil, err
			}
			if err := order(tok, stageVarArg, id.Value); err != nil {
				return nil, err
			}
			fd.VarArg = id.Value
		case p.match(POW):
			id, err := p.need(ID, "parameter name")
			if err != nil {
				return nil, err
			}
			if err := order(tok, stageVarKwArg, id.Value); err != nil {
				return nil, err
			}
			fd.VarKwArg = id.Value
		default:
			id, err := p.need(ID, "parameter name")
			if err != nil {
				return nil, err
			}
			if p.match(ASSIGN) {
				if err := order(tok, stageKeyword, id.Value); err != nil {
					return nil, err
				}
				def, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				fd.KwParams = append(fd.KwParams, KwParam{Name: id.Value, Default: def})
			} else {
				if err := order(tok, stagePositional, id.Value); err != nil {
					return nil, err
				}
				fd.Params = append(fd.Params, id.Value)
			}
		}
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(RROUND, "')'"); err != nil {
		return nil, err
	}
	stmts, open, err := p.parseStmtList()
	if err != nil {
		return nil, err
	}
	fd.Body = &FunctionBlock{base: p.at(open), Stmts: stmts}
	return fd, nil
}

func (p *Parser) moduleName() (Token, error) {
	t := p.peek()
	if t.Type == ID || t.Type == STRING {
		return p.advance(), nil
	}
	return t, p.errAt(UnexpectedToken, t, "expected module name, got %s", describe(t))
}

func (p *Parser) resolve(t Token) (Module, error) {
	importer := t.File
	if importer == "" {
		importer = p.file
	}
	m, err := p.resolver.Resolve(t.Value, importer)
	if err != nil {
		return Module{}, p.errAt(ImportNotFound, t, "cannot import %q: %v", t.Value, err)
	}
	return m, nil
}

func (p *Parser) parseImport() error {
	p.advance()
	nameTok, err := p.moduleName()
	if err != nil {
		return err
	}
	mod, err := p.resolve(nameTok)
	if err != nil {
		return err
	}
	if p.spliced[mod.Path] {
		p.log.Debug("import skipped", "module", mod.Name, "path", mod.Path)
		return nil
	}
	toks, err := NewLexer(mod.Source, mod.Path).WithLogger(p.log).Scan()
	if err != nil {
		return err
	}
	p.spliced[mod.Path] = true
	p.toks = slices.Insert(p.toks, p.i, toks...)
	p.log.Debug("import spliced", "module", mod.Name, "path", mod.Path, "tokens", len(toks))
	return nil
}

func (p *Parser) parseFromImport() (Node, error) {
	t := p.advance()
	nameTok, err := p.moduleName()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(IMPORT, "'import'"); err != nil {
		return nil, err
	}
	node := &FromImport{base: p.at(t), Module: nameTok.Value}
	for {
		id, err := p.need(ID, "imported name")
		if err != nil {
			return nil, err
		}
		node.Names = append(node.Names, id.Value)
		if !p.match(COMMA) {
			break
		}
	}

	mod, err := p.resolve(nameTok)
	if err != nil {
		return nil, err
	}
	if slices.Contains(p.imports.stack, mod.Path) {
		return nil, p.errAt(ImportCycle, nameTok, "import cycle through %q", mod.Path)
	}
	toks, err := NewLexer(mod.Source, mod.Path).WithLogger(p.log).Scan()
	if err != nil {
		return nil, err
	}
	p.imports.stack = append(p.imports.stack, mod.Path)
	defer func() { p.imports.stack = p.imports.stack[:len(p.imports.stack)-1] }()

	sub := newParser(toks, mod.Path, p.imports, p.opts...)
	body, err := sub.parseProgram()
	if err != nil {
		return nil, err
	}
	node.Path = mod.Path
	node.Body = body
	return node, nil
}

////////////////////////////////////////////////////////////////////////////////
// expressions
////////////////////////////////////////////////////////////////////////////////

var compoundOps = map[TokenType]TokenType{
	PLUS_ASSIGN:  PLUS,
	MINUS_ASSIGN: MINUS,
	MULT_ASSIGN:  MULT,
	DIV_ASSIGN:   DIV,
	MOD_ASSIGN:   MOD,
}

func (p *Parser) parseAssignment() (Node, error) {
	target, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	switch t.Type {
	case ASSIGN, PLUS_ASSIGN, MINUS_ASSIGN, MULT_ASSIGN, DIV_ASSIGN, MOD_ASSIGN, INCR, DECR:
	default:
		return target, nil
	}
	if err := p.checkTarget(target, t); err != nil {
		return nil, err
	}
	p.advance()

	var value Node
	switch t.Type {
	case INCR, DECR:
		op := PLUS
		if t.Type == DECR {
			op = MINUS
		}
		one := &IntegerLit{base: p.at(t), Text: "1"}
		value = &BinaryOp{base: p.at(t), Op: op, Left: target, Right: one}
	default:
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		value = rhs
		if op, ok := compoundOps[t.Type]; ok {
			value = &BinaryOp{base: p.at(t), Op: op, Left: target, Right: rhs}
		}
	}
	return &Assign{base: base{At: target.Pos(), File: p.at(t).File}, Target: target, Value: value, op: t.Type}, nil
}

func (p *Parser) checkTarget(n Node, at Token) error {
	switch n.(type) {
	case *VarRef, *Subscript:
		return nil
	}
	return p.errAt(InvalidTarget, at, "cannot assign to this expression")
}

func (p *Parser) parseExpr() (Node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if !p.match(OR, AND, IN) {
			return left, nil
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{base: p.at(t), Op: t.Type, Left: left, Right: right}
	}
}

func (p *Parser) parseComparison() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if !p.match(EQ, NEQ, LESS, LESS_EQ, GREATER, GREATER_EQ) {
		return left, nil
	}
	right, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	return &BinaryOp{base: p.at(t), Op: t.Type, Left: left, Right: right}, nil
}

func (p *Parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if !p.match(PLUS, MINUS) {
			return left, nil
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{base: p.at(t), Op: t.Type, Left: left, Right: right}
	}
}

func (p *Parser) parseMultiplicative() (Node, error) {
	left, err := p.parseSubscript()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if !p.match(MULT, POW, DIV, FLOORDIV, MOD) {
		return left, nil
	}
	right, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	return &BinaryOp{base: p.at(t), Op: t.Type, Left: left, Right: right}, nil
}

func (p *Parser) parseSubscript() (Node, error) {
	n, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.check(LSQUARE) && p.continues() {
		open := p.advance()
		sub := &Subscript{base: p.at(open), Target: n}
		if !p.check(COLON) {
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			sub.Index = idx
		}
		if p.match(COLON) {
			sub.Mode = SubscriptSlice
			sub.Start, sub.Index = sub.Index, nil
			if !p.check(RSQUARE) {
				stop, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				sub.Stop = stop
			}
		}
		if _, err := p.need(RSQUARE, "']'"); err != nil {
			return nil, err
		}
		n = sub
	}
	return n, nil
}

func (p *Parser) parseAtom() (Node, error) {
	t := p.peek()
	at := p.at(t)
	switch t.Type {
	case STRING:
		p.advance()
		return &StringLit{base: at, Value: t.Value}, nil
	case INTEGER:
		p.advance()
		return &IntegerLit{base: at, Text: t.Value}, nil
	case FLOAT:
		p.advance()
		return &FloatLit{base: at, Text: t.Value}, nil
	case BOOLEAN:
		p.advance()
		return &BooleanLit{base: at, Value: t.Value == "True"}, nil
	case NULL:
		p.advance()
		return &NullLit{at}, nil
	case PLUS, MINUS, INCR, DECR:
		p.advance()
		operand, err := p.parseSubscript()
		if err != nil {
			return nil, err
		}
		switch t.Type {
		case MINUS:
			return &UnaryOp{base: at, Op: MINUS, Operand: operand}, nil
		case DECR:
			inner := &UnaryOp{base: at, Op: MINUS, Operand: operand}
			return &UnaryOp{base: at, Op: MINUS, Operand: inner}, nil
		}
		return &UnaryOp{base: at, Op: PLUS, Operand: operand}, nil
	case NOT:
		p.advance()
		operand, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{base: at, Op: NOT, Operand: operand}, nil
	case ID:
		p.advance()
		if p.check(LROUND) && p.continues() {
			return p.parseCall(t)
		}
		return &VarRef{base: at, Name: t.Value}, nil
	case LROUND:
		return p.parseParen()
	case LSQUARE:
		p.advance()
		elems, err := p.parseExprList(RSQUARE, "']'")
		if err != nil {
			return nil, err
		}
		return &ListLit{base: at, Elems: elems}, nil
	case LCURLY:
		return p.parseDict()
	}
	return nil, p.errAt(UnexpectedToken, t, "unexpected %s", describe(t))
}

// parseExprList reads comma-separated expressions up to and including the
// closing token. A trailing comma is allowed.
func (p *Parser) parseExprList(closing TokenType, what string) ([]Node, error) {
	var out []Node
	for !p.check(closing) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(closing, what); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Parser) parseParen() (Node, error) {
	open := p.advance()
	if p.match(RROUND) {
		return &TupleLit{base: p.at(open)}, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.match(RROUND) {
		return first, nil
	}
	if !p.match(COMMA) {
		return nil, p.errAt(UnexpectedToken, p.peek(), "expected ',' or ')', got %s", describe(p.peek()))
	}
	rest, err := p.parseExprList(RROUND, "')'")
	if err != nil {
		return nil, err
	}
	return &TupleLit{base: p.at(open), Elems: append([]Node{first}, rest...)}, nil
}

func (p *Parser) parseDict() (Node, error) {
	open := p.advance()
	d := &DictLit{base: p.at(open)}
	for !p.check(RCURLY) {
		k, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.need(COLON, "':'"); err != nil {
			return nil, err
		}
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		d.Entries = append(d.Entries, DictEntry{Key: k, Value: v})
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(RCURLY, "'}'"); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *Parser) parseCall(name Token) (Node, error) {
	p.advance()
	call := &Call{base: p.at(name), Name: name.Value}
	seen := map[string]bool{}
	for !p.check(RROUND) {
		start := p.peek()
		arg, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		if a, ok := arg.(*Assign); ok {
			// name = value is a keyword argument; anything else assigning is not
			ref, isName := a.Target.(*VarRef)
			if !isName || a.op != ASSIGN {
				return nil, p.errAt(InvalidTarget, start, "only name=value is allowed as a keyword argument")
			}
			if seen[ref.Name] {
				return nil, p.errAt(UnexpectedToken, start, "keyword argument %q repeated", ref.Name)
			}
			seen[ref.Name] = true
			call.Kwargs = append(call.Kwargs, KwArg{Name: ref.Name, Value: a.Value})
		} else {
			call.Args = append(call.Args, arg)
		}
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(RROUND, "')'"); err != nil {
		return nil, err
	}
	return call, nil
}
