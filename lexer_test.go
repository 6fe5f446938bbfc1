// lexer_test.go
package cobra

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func toks(t *testing.T, src string) []Token {
	t.Helper()
	ts, err := NewLexer(src, "test.cb").Scan()
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	return ts
}

func tokenTypes(tokens []Token) []TokenType {
	out := make([]TokenType, 0, len(tokens))
	for _, tk := range tokens {
		out = append(out, tk.Type)
	}
	return out
}

func wantTypes(t *testing.T, src string, want []TokenType) []Token {
	t.Helper()
	got := toks(t, src)
	if gotTypes := tokenTypes(got); !reflect.DeepEqual(gotTypes, want) {
		t.Fatalf("\nsource:\n%s\nwant types:\n%v\ngot types:\n%v\n", src, want, gotTypes)
	}
	return got
}

func lexErr(t *testing.T, src string) *LexError {
	t.Helper()
	_, err := Tokenize(src, "test.cb")
	if err == nil {
		t.Fatalf("expected a lexical error for %q", src)
	}
	var le *LexError
	if !errors.As(err, &le) {
		t.Fatalf("want *LexError, got %T: %v", err, err)
	}
	return le
}

func Test_Lexer_FunctionDefinition(t *testing.T) {
	src := `
# add two numbers
fn add(a, b=2) {
    return a + b
}
`
	wantTypes(t, src, []TokenType{
		FUNCTION, ID, LROUND, ID, COMMA, ID, ASSIGN, INTEGER, RROUND, LCURLY,
		RETURN, ID, PLUS, ID,
		RCURLY,
	})
}

func Test_Lexer_TwoCharOperators(t *testing.T) {
	src := `== != <= >= ** // += -= *= /= %= ++ --`
	wantTypes(t, src, []TokenType{
		EQ, NEQ, LESS_EQ, GREATER_EQ, POW, FLOORDIV,
		PLUS_ASSIGN, MINUS_ASSIGN, MULT_ASSIGN, DIV_ASSIGN, MOD_ASSIGN, INCR, DECR,
	})
}

func Test_Lexer_SingleCharFallback(t *testing.T) {
	src := `= ! < > * / + - % & |`
	wantTypes(t, src, []TokenType{
		ASSIGN, NOT, LESS, GREATER, MULT, DIV, PLUS, MINUS, MOD, AND, OR,
	})
}

func Test_Lexer_Keywords(t *testing.T) {
	src := `not and or in import from return break let var fn for if elif else while True False Null`
	got := wantTypes(t, src, []TokenType{
		NOT, AND, OR, IN, IMPORT, FROM, RETURN, BREAK, LET, VAR, FUNCTION,
		FOR, IF, ELIF, ELSE, WHILE, BOOLEAN, BOOLEAN, NULL,
	})
	if got[16].Value != "True" || got[17].Value != "False" {
		t.Fatalf("boolean values: %q %q", got[16].Value, got[17].Value)
	}
}

func Test_Lexer_IdentifiersKeepDigitsAndUnderscores(t *testing.T) {
	got := wantTypes(t, `my_var2 iffy letter`, []TokenType{ID, ID, ID})
	for i, want := range []string{"my_var2", "iffy", "letter"} {
		if got[i].Value != want {
			t.Fatalf("token %d = %q, want %q", i, got[i].Value, want)
		}
	}
}

func Test_Lexer_FloatForms(t *testing.T) {
	for _, lit := range []string{"1.5", ".5", "5.", "0.0", "123.456"} {
		got := wantTypes(t, lit, []TokenType{FLOAT})
		if got[0].Value != lit {
			t.Fatalf("FLOAT value = %q, want %q", got[0].Value, lit)
		}
	}
	got := wantTypes(t, "42", []TokenType{INTEGER})
	if got[0].Value != "42" {
		t.Fatalf("INTEGER value = %q", got[0].Value)
	}
}

func Test_Lexer_InvalidFloat(t *testing.T) {
	for _, src := range []string{"1.2.3", "3..", "let x = 0.1.2"} {
		le := lexErr(t, src)
		if le.Kind != InvalidFloat {
			t.Fatalf("%q: kind = %v, want InvalidFloat", src, le.Kind)
		}
	}
}

func Test_Lexer_LoneDotIsIllegal(t *testing.T) {
	le := lexErr(t, "a.b")
	if le.Kind != IllegalCharacter {
		t.Fatalf("kind = %v", le.Kind)
	}
	if le.Start.Column != 2 {
		t.Fatalf("column = %d, want 2", le.Start.Column)
	}
}

func Test_Lexer_IllegalCharacter(t *testing.T) {
	le := lexErr(t, "let x = 1\nlet y = $")
	if le.Kind != IllegalCharacter {
		t.Fatalf("kind = %v", le.Kind)
	}
	if le.Start.Line != 2 || le.Start.Column != 9 {
		t.Fatalf("position = %s, want 2:9", le.Start)
	}
	if le.File != "test.cb" {
		t.Fatalf("file = %q", le.File)
	}
}

func Test_Lexer_StringEscapes(t *testing.T) {
	got := wantTypes(t, `"a\tb\nc\\d\"e" 'it\'s' '\q'`, []TokenType{STRING, STRING, STRING})
	if got[0].Value != "a\tb\nc\\d\"e" {
		t.Fatalf("escapes: %q", got[0].Value)
	}
	if got[1].Value != "it's" {
		t.Fatalf("quote escape: %q", got[1].Value)
	}
	if got[2].Value != `\q` {
		t.Fatalf("unknown escape should keep the backslash: %q", got[2].Value)
	}
}

func Test_Lexer_OtherQuoteInsideString(t *testing.T) {
	got := wantTypes(t, `"it's" 'say "hi"'`, []TokenType{STRING, STRING})
	if got[0].Value != "it's" || got[1].Value != `say "hi"` {
		t.Fatalf("values: %q %q", got[0].Value, got[1].Value)
	}
}

func Test_Lexer_MultilineString(t *testing.T) {
	src := "let s = '*\nline one\nline two*'\nprint(s)"
	got := wantTypes(t, src, []TokenType{LET, ID, ASSIGN, STRING, ID, LROUND, ID, RROUND})
	if got[3].Value != "line one\nline two" {
		t.Fatalf("multiline value: %q", got[3].Value)
	}
	if got[4].Start.Line != 4 {
		t.Fatalf("line after multiline string = %d, want 4", got[4].Start.Line)
	}
}

func Test_Lexer_NewlineInOrdinaryString(t *testing.T) {
	le := lexErr(t, "'abc\ndef'")
	if le.Kind != UnterminatedString {
		t.Fatalf("kind = %v", le.Kind)
	}
	if IsIncomplete(le) {
		t.Fatal("a newline inside a string cannot be completed by more input")
	}
}

func Test_Lexer_UnterminatedAtEOF(t *testing.T) {
	for _, src := range []string{`"abc`, `'*abc`, `'abc\`} {
		le := lexErr(t, src)
		if le.Kind != UnterminatedString {
			t.Fatalf("%q: kind = %v", src, le.Kind)
		}
		if !IsIncomplete(le) {
			t.Fatalf("%q: string running into end of input should be incomplete", src)
		}
	}
}

func Test_Lexer_MultilineEndsOnlyAtStarQuote(t *testing.T) {
	for _, src := range []string{`"*"`, `"*text"`, `'*a' + 'b'`} {
		if le := lexErr(t, src); le.Kind != UnterminatedString {
			t.Fatalf("%q: kind = %v", src, le.Kind)
		}
	}
	if got := toks(t, `"*text*"`); got[0].Type != STRING || got[0].Value != "text" {
		t.Fatalf("got %v", got[0])
	}
}

func Test_Lexer_NestedDelimitersKeepOrder(t *testing.T) {
	wantTypes(t, "( [ { x } ] )", []TokenType{
		LROUND, LSQUARE, LCURLY, ID, RCURLY, RSQUARE, RROUND,
	})
}

func Test_Lexer_CommentsAreDropped(t *testing.T) {
	got := wantTypes(t, "x # comment ( [ \ny", []TokenType{ID, ID})
	if !got[0].NewlineAfter {
		t.Fatal("newline after the comment should mark the previous token")
	}
}

func Test_Lexer_SpaceAndNewlineFlags(t *testing.T) {
	got := toks(t, "a b\nc;d(e)")
	// a
	if !got[0].SpaceAfter || got[0].NewlineAfter {
		t.Fatalf("a: %+v", got[0])
	}
	// b
	if !got[1].NewlineAfter {
		t.Fatalf("b: %+v", got[1])
	}
	// c, ';' separates statements
	if !got[2].NewlineAfter || got[2].SpaceAfter {
		t.Fatalf("c: %+v", got[2])
	}
	// d is glued to '('
	if got[3].SpaceAfter || got[3].NewlineAfter {
		t.Fatalf("d: %+v", got[3])
	}
	// final token is always terminated
	if last := got[len(got)-1]; !last.NewlineAfter {
		t.Fatalf("last token: %+v", last)
	}
}

func Test_Lexer_Positions(t *testing.T) {
	got := toks(t, "let x = 10\n  y += 2")
	cases := []struct {
		i          int
		line, col  int
		index, end int
	}{
		{0, 1, 1, 0, 3},   // let
		{3, 1, 9, 8, 10},  // 10
		{4, 2, 3, 13, 14}, // y
		{5, 2, 5, 15, 17}, // +=
	}
	for _, c := range cases {
		tk := got[c.i]
		if tk.Start.Line != c.line || tk.Start.Column != c.col || tk.Start.Index != c.index || tk.End.Index != c.end {
			t.Fatalf("token %d (%s): start=%+v end=%+v", c.i, tk, tk.Start, tk.End)
		}
		if tk.File != "test.cb" {
			t.Fatalf("token %d file = %q", c.i, tk.File)
		}
	}
}

func Test_Lexer_ColumnsCountRunes(t *testing.T) {
	got := toks(t, "'héllo' x")
	if got[1].Start.Column != 9 {
		t.Fatalf("column after non-ASCII string = %d, want 9", got[1].Start.Column)
	}
	if got[1].Start.Index != 9 {
		t.Fatalf("byte index = %d, want 9", got[1].Start.Index)
	}
}

func Test_Lexer_EmptySource(t *testing.T) {
	if got := toks(t, "  \n# only a comment\n"); len(got) != 0 {
		t.Fatalf("want no tokens, got %v", got)
	}
}

func Test_Lexer_Deterministic(t *testing.T) {
	src := "fn f(x) { return x * 2 }\nlet y = f(3)"
	a, b := toks(t, src), toks(t, src)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("two scans of the same source differ")
	}
}

func Test_Lexer_ErrorMessage(t *testing.T) {
	le := lexErr(t, "1.2.3")
	msg := le.Error()
	if !strings.Contains(msg, "LEXICAL ERROR") || !strings.Contains(msg, "InvalidFloat") {
		t.Fatalf("message %q", msg)
	}
}
