// parser_test.go
package cobra

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// mapResolver serves modules from memory.
type mapResolver map[string]string

func (m mapResolver) Resolve(name, importer string) (Module, error) {
	src, ok := m[name]
	if !ok {
		return Module{}, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	return Module{Name: name, Path: "mem/" + name + ModuleExt, Source: src}, nil
}

func mustParse(t *testing.T, src string, opts ...ParseOption) *Program {
	t.Helper()
	prog, err := ParseSource(src, "test.cb", opts...)
	if err != nil {
		t.Fatalf("parse error: %v\nsource:\n%s", err, src)
	}
	return prog
}

func parseErr(t *testing.T, src string, opts ...ParseOption) *ParseError {
	t.Helper()
	_, err := ParseSource(src, "test.cb", opts...)
	if err == nil {
		t.Fatalf("expected a parse error for:\n%s", src)
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want *ParseError, got %T: %v", err, err)
	}
	return pe
}

// sexpr prints a node compactly so tests can compare shapes without
// positions.
func sexpr(n Node) string {
	if n == nil {
		return "_"
	}
	list := func(ns []Node) string {
		parts := make([]string, len(ns))
		for i, x := range ns {
			parts[i] = sexpr(x)
		}
		return strings.Join(parts, " ")
	}
	switch x := n.(type) {
	case *StringLit:
		return fmt.Sprintf("%q", x.Value)
	case *IntegerLit:
		return x.Text
	case *FloatLit:
		return x.Text
	case *BooleanLit:
		if x.Value {
			return "True"
		}
		return "False"
	case *NullLit:
		return "Null"
	case *ListLit:
		return "[" + list(x.Elems) + "]"
	case *TupleLit:
		return "(tuple " + list(x.Elems) + ")"
	case *DictLit:
		parts := make([]string, len(x.Entries))
		for i, e := range x.Entries {
			parts[i] = sexpr(e.Key) + ":" + sexpr(e.Value)
		}
		return "{" + strings.Join(parts, " ") + "}"
	case *VarRef:
		return x.Name
	case *Subscript:
		if x.Mode == SubscriptSlice {
			return fmt.Sprintf("%s[%s:%s]", sexpr(x.Target), sexpr(x.Start), sexpr(x.Stop))
		}
		return fmt.Sprintf("%s[%s]", sexpr(x.Target), sexpr(x.Index))
	case *BinaryOp:
		return fmt.Sprintf("(%s %s %s)", x.Op, sexpr(x.Left), sexpr(x.Right))
	case *UnaryOp:
		return fmt.Sprintf("(%s %s)", x.Op, sexpr(x.Operand))
	case *Call:
		s := x.Name + "(" + list(x.Args)
		for _, kw := range x.Kwargs {
			s += " " + kw.Name + "=" + sexpr(kw.Value)
		}
		return s + ")"
	case *Assign:
		return fmt.Sprintf("(= %s %s)", sexpr(x.Target), sexpr(x.Value))
	case *LetDecl:
		return fmt.Sprintf("(let %s %s)", x.Name, sexpr(x.Value))
	case *Block:
		return "{" + list(x.Stmts) + "}"
	case *FunctionBlock:
		return "{" + list(x.Stmts) + "}"
	case *Program:
		return list(x.Stmts)
	case *If:
		parts := make([]string, len(x.Branches))
		for i, br := range x.Branches {
			parts[i] = sexpr(br.Cond) + " " + sexpr(br.Body)
		}
		return "(if " + strings.Join(parts, " | ") + ")"
	case *While:
		return fmt.Sprintf("(while %s %s)", sexpr(x.Cond), sexpr(x.Body))
	case *For:
		return fmt.Sprintf("(for %s %s %s)", strings.Join(x.Vars, ","), sexpr(x.Iterable), sexpr(x.Body))
	case *Return:
		return "(return " + sexpr(x.Value) + ")"
	case *Break:
		return "(break)"
	case *FunctionDef:
		params := append([]string(nil), x.Params...)
		if x.VarArg != "" {
			params = append(params, "*"+x.VarArg)
		}
		for _, kp := range x.KwParams {
			params = append(params, kp.Name+"="+sexpr(kp.Default))
		}
		if x.VarKwArg != "" {
			params = append(params, "**"+x.VarKwArg)
		}
		return fmt.Sprintf("(fn %s(%s) %s)", x.Name, strings.Join(params, ","), sexpr(x.Body))
	case *FromImport:
		return fmt.Sprintf("(from %s %s)", x.Module, strings.Join(x.Names, ","))
	}
	return fmt.Sprintf("<%T>", n)
}

func wantTree(t *testing.T, src, want string) {
	t.Helper()
	if got := sexpr(mustParse(t, src)); got != want {
		t.Fatalf("\nsource: %s\nwant: %s\ngot:  %s", src, want, got)
	}
}

func Test_Parser_Literals(t *testing.T) {
	wantTree(t, `'s'; 1; 2.5; True; False; Null`, `"s" 1 2.5 True False Null`)
	wantTree(t, `[1, 'a', [2]]`, `[1 "a" [2]]`)
	wantTree(t, `let d = {'a': 1, 2: [3]}`, `(let d {"a":1 2:[3]})`)
	wantTree(t, `let e = {}`, `(let e {})`)
}

func Test_Parser_TrailingCommas(t *testing.T) {
	wantTree(t, `[1, 2,]`, `[1 2]`)
	wantTree(t, `f(1, 2,)`, `f(1 2)`)
}

func Test_Parser_Tuples_And_Grouping(t *testing.T) {
	wantTree(t, `()`, `(tuple )`)
	wantTree(t, `(1,)`, `(tuple 1)`)
	wantTree(t, `(1, 2, 3)`, `(tuple 1 2 3)`)
	wantTree(t, `(1)`, `1`)
	wantTree(t, `(2 + 3) * 4`, `(* (+ 2 3) 4)`)
}

func Test_Parser_Precedence(t *testing.T) {
	wantTree(t, `let x = 2 + 3 * 4`, `(let x (+ 2 (* 3 4)))`)
	wantTree(t, `1 - 2 - 3`, `(- (- 1 2) 3)`)
	wantTree(t, `2 ** 3 ** 2`, `(** 2 (** 3 2))`)
	wantTree(t, `a + b == c * d`, `(== (+ a b) (* c d))`)
	wantTree(t, `a < b < c`, `(< a (< b c))`)
	wantTree(t, `a == 1 or b == 2 and c`, `(and (or (== a 1) (== b 2)) c)`)
	wantTree(t, `x in [1, 2]`, `(in x [1 2])`)
}

func Test_Parser_Unary(t *testing.T) {
	wantTree(t, `-x * 2`, `(* (- x) 2)`)
	wantTree(t, `+x`, `(+ x)`)
	wantTree(t, `--x`, `(- (- x))`)
	wantTree(t, `++x`, `(+ x)`)
	wantTree(t, `-l[0]`, `(- l[0])`)
	wantTree(t, `not a == b`, `(not (== a b))`)
	wantTree(t, `not a and b`, `(and (not a) b)`)
}

func Test_Parser_Subscripts(t *testing.T) {
	wantTree(t, `l[1]`, `l[1]`)
	wantTree(t, `l[0:2]`, `l[0:2]`)
	wantTree(t, `l[:2]`, `l[_:2]`)
	wantTree(t, `l[1:]`, `l[1:_]`)
	wantTree(t, `l[:]`, `l[_:_]`)
	wantTree(t, `m[0][1]`, `m[0][1]`)
	wantTree(t, `f(x)[0]`, `f(x)[0]`)

	// [x:x] is a slice even though both bounds are the same expression.
	prog := mustParse(t, `l[i:i]`)
	sub := prog.Stmts[0].(*Subscript)
	if sub.Mode != SubscriptSlice || sub.Index != nil {
		t.Fatalf("want slice mode, got %+v", sub)
	}
}

func Test_Parser_Assignment_Forms(t *testing.T) {
	wantTree(t, `x = 1`, `(= x 1)`)
	wantTree(t, `l[0] = 1`, `(= l[0] 1)`)
	wantTree(t, `l[1:2] = [9]`, `(= l[1:2] [9])`)
	wantTree(t, `x += 2`, `(= x (+ x 2))`)
	wantTree(t, `x -= 2`, `(= x (- x 2))`)
	wantTree(t, `x *= 2`, `(= x (* x 2))`)
	wantTree(t, `x /= 2`, `(= x (/ x 2))`)
	wantTree(t, `x %= 2`, `(= x (% x 2))`)
	wantTree(t, `x++`, `(= x (+ x 1))`)
	wantTree(t, `d['k']--`, `(= d["k"] (- d["k"] 1))`)
	wantTree(t, `var y = 3`, `(let y 3)`)
}

func Test_Parser_InvalidTarget(t *testing.T) {
	for _, src := range []string{`1 = 2`, `f() = 3`, `(a, b) = t`, `x + 1 += 2`} {
		if pe := parseErr(t, src); pe.Kind != InvalidTarget {
			t.Fatalf("%s: kind = %v, want InvalidTarget", src, pe.Kind)
		}
	}
}

func Test_Parser_Calls_And_Keywords(t *testing.T) {
	wantTree(t, `f()`, `f()`)
	wantTree(t, `f(1, x + 1)`, `f(1 (+ x 1))`)
	wantTree(t, `f(1, sep='-', end='')`, `f(1 sep="-" end="")`)
	wantTree(t, `f(a == b)`, `f((== a b))`)
	wantTree(t, `f(g(1), k=h(2))`, `f(g(1) k=h(2))`)
	// a keyword argument is any plain assignment to a bare name
	wantTree(t, `f(0, (x)=1)`, `f(0 x=1)`)
	wantTree(t, `f(1, (k) = a + 1)`, `f(1 k=(+ a 1))`)
}

func Test_Parser_AssignmentInsideCallIsRejected(t *testing.T) {
	for _, src := range []string{`f(l[0] = 1)`, `f(x += 1)`, `f(x++)`} {
		if pe := parseErr(t, src); pe.Kind != InvalidTarget {
			t.Fatalf("%s: kind = %v, want InvalidTarget", src, pe.Kind)
		}
	}
}

func Test_Parser_RepeatedKeyword(t *testing.T) {
	pe := parseErr(t, `f(a=1, a=2)`)
	if pe.Kind != UnexpectedToken || !strings.Contains(pe.Msg, "repeated") {
		t.Fatalf("got %v", pe)
	}
}

func Test_Parser_CallsDoNotSpanLines(t *testing.T) {
	wantTree(t, "f\n(1)", `f 1`)
	wantTree(t, "l\n[1]", `l [1]`)
}

func Test_Parser_LeadingBraceIsDictFirst(t *testing.T) {
	wantTree(t, "{}", `{}`)
	wantTree(t, "{1: 2}", `{1:2}`)
	wantTree(t, "{ x }", `{x}`)
	if _, ok := mustParse(t, "{}").Stmts[0].(*DictLit); !ok {
		t.Fatal("{} should be a Dict literal")
	}
	if _, ok := mustParse(t, "{ x }").Stmts[0].(*Block); !ok {
		t.Fatal("{ x } should be a block")
	}
}

func Test_Parser_StatementTermination(t *testing.T) {
	wantTree(t, "let a = 1; let b = 2", `(let a 1) (let b 2)`)
	wantTree(t, "{ let a = 1 }", `{(let a 1)}`)

	pe := parseErr(t, "let x = 1 let y = 2")
	if pe.Kind != MissingNewline {
		t.Fatalf("kind = %v", pe.Kind)
	}
	if pe.Token.Type != LET || pe.Token.Start.Column != 11 {
		t.Fatalf("error token %s at %s", pe.Token, pe.Token.Start)
	}
}

func Test_Parser_Blocks_And_Dicts(t *testing.T) {
	wantTree(t, "{ let x = 1 }\nx", `{(let x 1)} x`)
	wantTree(t, "{\n  print(1)\n  print(2)\n}", `{print(1) print(2)}`)
	wantTree(t, "{1: 2}", `{1:2}`)
	wantTree(t, "{}", `{}`)
}

func Test_Parser_If_Elif_Else(t *testing.T) {
	wantTree(t, `if False { 1 } else { 2 }`, `(if False {1} | True {2})`)
	wantTree(t, "if a { 1 }\nelif b { 2 }\nelif c { 3 }",
		`(if a {1} | b {2} | c {3})`)
	wantTree(t, "if a {\n  x = 1\n}", `(if a {(= x 1)})`)
}

func Test_Parser_Loops(t *testing.T) {
	wantTree(t, "while i < 3 { i += 1 }", `(while (< i 3) {(= i (+ i 1))})`)
	wantTree(t, "for x in l { print(x) }", `(for x l {print(x)})`)
	wantTree(t, "for k, v in pairs { break }", `(for k,v pairs {(break)})`)
}

func Test_Parser_Return(t *testing.T) {
	wantTree(t, "fn f() { return }", `(fn f() {(return Null)})`)
	wantTree(t, "fn f() {\n  return\n}", `(fn f() {(return Null)})`)
	wantTree(t, "fn f(x) { return x * 2 }", `(fn f(x) {(return (* x 2))})`)
}

func Test_Parser_FunctionParameters(t *testing.T) {
	wantTree(t, "fn f(a, b, *rest, k=1, j='x', **opts) { }",
		`(fn f(a,b,*rest,k=1,j="x",**opts) {})`)
	wantTree(t, "fn g(*args) { }", `(fn g(*args) {})`)
	wantTree(t, "fn h(k=1, j=2) { }", `(fn h(k=1,j=2) {})`)
	wantTree(t, "fn i(**kw) { }", `(fn i(**kw) {})`)
}

func Test_Parser_ParameterOrder(t *testing.T) {
	bad := []string{
		"fn f(k=1, a) { }",
		"fn f(*a, b) { }",
		"fn f(*a, *b) { }",
		"fn f(**kw, a) { }",
		"fn f(**kw, k=1) { }",
		"fn f(**a, **b) { }",
		"fn f(k=1, *rest) { }",
		"fn f(a, a) { }",
		"fn f(a, k=1, k=2) { }",
	}
	for _, src := range bad {
		if pe := parseErr(t, src); pe.Kind != ArityOrOrderViolation {
			t.Fatalf("%s: kind = %v, want ArityOrOrderViolation", src, pe.Kind)
		}
	}
}

func Test_Parser_UnexpectedToken(t *testing.T) {
	pe := parseErr(t, "let x = )")
	if pe.Kind != UnexpectedToken || pe.Token.Type != RROUND {
		t.Fatalf("got %v", pe)
	}
	if pe.File != "test.cb" || pe.Token.Start.Column != 9 {
		t.Fatalf("location %s:%s", pe.File, pe.Token.Start)
	}
	if !strings.Contains(pe.Error(), "PARSE ERROR at 1:9") {
		t.Fatalf("message %q", pe.Error())
	}
}

func Test_Parser_IsIncomplete(t *testing.T) {
	incomplete := []string{
		"fn f() {",
		"if x {\n  print(1)",
		"let x =",
		"print(1,",
		"[1, 2",
		"'open",
	}
	for _, src := range incomplete {
		_, err := ParseSource(src, "<repl>")
		if err == nil || !IsIncomplete(err) {
			t.Fatalf("%q: want incomplete, got %v", src, err)
		}
	}
	complete := []string{"let x = )", "1 1", "'a\nb'"}
	for _, src := range complete {
		_, err := ParseSource(src, "<repl>")
		if err == nil || IsIncomplete(err) {
			t.Fatalf("%q: want a hard error, got %v", src, err)
		}
	}
}

func Test_Parser_ImportSplicesTokens(t *testing.T) {
	r := mapResolver{"lib": "let a = 1\nfn twice(x) { return x * 2 }\n"}
	prog := mustParse(t, "import lib\nlet b = twice(a)", WithResolver(r))
	want := `(let a 1) (fn twice(x) {(return (* x 2))}) (let b twice(a))`
	if got := sexpr(prog); got != want {
		t.Fatalf("\nwant: %s\ngot:  %s", want, got)
	}
	if f := fileOf(prog.Stmts[0]); f != "mem/lib.cb" {
		t.Fatalf("spliced node file = %q", f)
	}
	if f := fileOf(prog.Stmts[2]); f != "test.cb" {
		t.Fatalf("local node file = %q", f)
	}
}

func Test_Parser_ImportIsIncludedOnce(t *testing.T) {
	r := mapResolver{
		"a": "import b\nlet fromA = 1\n",
		"b": "let fromB = 2\n",
	}
	prog := mustParse(t, "import a\nimport b\nimport a\n", WithResolver(r))
	if got := sexpr(prog); got != `(let fromB 2) (let fromA 1)` {
		t.Fatalf("got %s", got)
	}
}

func Test_Parser_ImportStringName(t *testing.T) {
	r := mapResolver{"lib": "let a = 1\n"}
	if got := sexpr(mustParse(t, `import "lib"`, WithResolver(r))); got != `(let a 1)` {
		t.Fatalf("got %s", got)
	}
}

func Test_Parser_ImportNotFound(t *testing.T) {
	pe := parseErr(t, "\nimport missing", WithResolver(mapResolver{}))
	if pe.Kind != ImportNotFound {
		t.Fatalf("kind = %v", pe.Kind)
	}
	if pe.Token.Value != "missing" || pe.Token.Start.Line != 2 {
		t.Fatalf("error token %s at %s", pe.Token, pe.Token.Start)
	}
	if !strings.Contains(pe.Msg, "module not found") {
		t.Fatalf("msg %q", pe.Msg)
	}
}

func Test_Parser_FromImport(t *testing.T) {
	r := mapResolver{"shapes": "let sides = 4\nfn area(w, h) { return w * h }\n"}
	prog := mustParse(t, "from shapes import sides, area", WithResolver(r))
	fi := prog.Stmts[0].(*FromImport)
	if fi.Module != "shapes" || fi.Path != "mem/shapes.cb" {
		t.Fatalf("from-import %+v", fi)
	}
	if !reflect.DeepEqual(fi.Names, []string{"sides", "area"}) {
		t.Fatalf("names %v", fi.Names)
	}
	if got := sexpr(fi.Body); got != `(let sides 4) (fn area(w,h) {(return (* w h))})` {
		t.Fatalf("module body %s", got)
	}
	if fi.Body.File != "mem/shapes.cb" {
		t.Fatalf("module body file %q", fi.Body.File)
	}
}

func Test_Parser_FromImportCycle(t *testing.T) {
	r := mapResolver{
		"a": "from b import y\nlet x = 1\n",
		"b": "from a import x\nlet y = 2\n",
	}
	pe := parseErr(t, "from a import x", WithResolver(r))
	if pe.Kind != ImportCycle {
		t.Fatalf("kind = %v (%v)", pe.Kind, pe)
	}
	if pe.File != "mem/b.cb" {
		t.Fatalf("cycle reported in %q", pe.File)
	}
}

func Test_Parser_FromImportNeedsNames(t *testing.T) {
	pe := parseErr(t, "from a import", WithResolver(mapResolver{"a": ""}))
	if pe.Kind != UnexpectedToken {
		t.Fatalf("kind = %v", pe.Kind)
	}
}

func Test_Parser_Deterministic(t *testing.T) {
	src := `
fn fib(n) {
    if n < 2 { return n }
    return fib(n - 1) + fib(n - 2)
}
let l = [fib(5), (1, 2), {'k': l[0:1]}]
for a, b in l { print(a, b, sep=', ') }
`
	toksA, err := Tokenize(src, "det.cb")
	if err != nil {
		t.Fatal(err)
	}
	toksB, err := Tokenize(src, "det.cb")
	if err != nil {
		t.Fatal(err)
	}
	a, err := Parse(toksA, "det.cb")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse(toksB, "det.cb")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("parsing the same tokens twice gave different trees")
	}
}

func Test_Parser_NodePositions(t *testing.T) {
	prog := mustParse(t, "let x = 1\nif x {\n  y = x + 2\n}")
	ifNode := prog.Stmts[1].(*If)
	if p := ifNode.Pos(); p.Line != 2 || p.Column != 1 {
		t.Fatalf("if at %s", p)
	}
	as := ifNode.Branches[0].Body.Stmts[0].(*Assign)
	if p := as.Pos(); p.Line != 3 || p.Column != 3 {
		t.Fatalf("assign at %s", p)
	}
	plus := as.Value.(*BinaryOp)
	if p := plus.Pos(); p.Line != 3 || p.Column != 9 {
		t.Fatalf("+ at %s", p)
	}
	if prog.File != "test.cb" {
		t.Fatalf("program file %q", prog.File)
	}
}
