package cobra

import (
	"strings"
	"testing"
)

func Test_Introspection_GetVariables(t *testing.T) {
	wantValue(t, "let b = 1\nlet a = 2\nget_variables()", "('a', 'b')")
	src := `
let g = 0
fn f(x) {
    let y = 1
    return get_variables()
}
f(5)
`
	wantValue(t, src, "('g', 'x', 'y')")
	// a shadowed name is listed once
	wantValue(t, "let x = 1\n{ let x = 2\n get_variables() }", "('x',)")
}

func Test_Introspection_GetFunctions(t *testing.T) {
	wantValue(t, "fn mine() { }\nlet fs = get_functions()\n('print' in fs, 'mine' in fs, 'get_functions' in fs)", "(True, True, True)")
}

func Test_Introspection_GetVariable(t *testing.T) {
	wantValue(t, "let x = [1]\nget_variable('x')", "[1]")
	wantValue(t, "let x = 1\nfn f() { let x = 2\n return get_variable('x') }\nf()", "2")
	wantErrKind(t, "get_variable('nope')", NameError)
	wantErrKind(t, "get_variable(1)", TypeError)
}

func Test_Introspection_SetVariable(t *testing.T) {
	wantValue(t, "let x = 1\nfn f() { set_variable('x', 5) }\nf()\nx", "5")
	wantValue(t, "fn g() {\n  set_variable('fresh', 1)\n  return fresh\n}\ng()", "1")
	wantErrKind(t, "fn g() { set_variable('fresh', 1) }\ng()\nfresh", NameError)
	// the native's own argument names are not visible to it
	wantValue(t, "set_variable('name', 'n')\nname", "'n'")
}

func Test_Introspection_SetGlobal(t *testing.T) {
	wantValue(t, "fn h() { set_global('gg', 3) }\nh()\ngg", "3")
	wantValue(t, "let gg = 1\n{ let gg = 2\n set_global('gg', 9) }\ngg", "9")
}

func Test_Introspection_Clear(t *testing.T) {
	ip, out := newInterp(t)
	steps := []string{
		"let x = 1",
		"fn f() { return 1 }",
		"clear(keep_functions=True)",
		"print(len(get_variables()), f())",
	}
	for _, s := range steps {
		if _, err := ip.EvalSource("<repl>", s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
	if out.String() != "0 1\n" {
		t.Fatalf("out=%q", out.String())
	}

	if _, err := ip.EvalSource("<repl>", "clear()"); err != nil {
		t.Fatal(err)
	}
	re := runtimeErr(t, ip, "f()")
	if re.Kind != NameError {
		t.Fatalf("f after clear: %v", re)
	}
	// built-ins survive
	if _, err := ip.EvalSource("<repl>", "print(len([1, 2]))"); err != nil {
		t.Fatal(err)
	}
}

func Test_Introspection_ClearWarnsInNestedScope(t *testing.T) {
	_, out := evalResult(t, "{ clear() }")
	if !strings.Contains(out, "warning: clear()") {
		t.Fatalf("out=%q", out)
	}
	_, out = evalResult(t, "{ clear(no_warning=True) }")
	if out != "" {
		t.Fatalf("out=%q", out)
	}
}

func Test_Introspection_Dump(t *testing.T) {
	src := "let x = 1\nfn sq(v) {\n  'doc line'\n  return v\n}\ndump(show_builtins=False)"
	_, out := evalResult(t, src)
	for _, want := range []string{"Scope 0:\n", "  x = 1\n", "  fn sq(v)\n", "      doc line\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "fn print(") {
		t.Fatalf("built-ins listed:\n%s", out)
	}
}

func Test_Introspection_DumpOnlyCurrent(t *testing.T) {
	_, out := evalResult(t, "let top = 1\nfn f(a) { dump(only_current=True, show_builtins=False) }\nf(1)")
	if out != "Scope 1:\n  a = 1\n" {
		t.Fatalf("out=%q", out)
	}
}

func Test_Introspection_Funcs(t *testing.T) {
	_, out := evalResult(t, "fn sq(v) { return v }\nfuncs()")
	if !strings.Contains(out, "fn print(*args, sep=' ', end='\\n', flush=True)\n") {
		t.Fatalf("funcs() output:\n%s", out)
	}
	if strings.Contains(out, "fn sq(") {
		t.Fatalf("funcs() lists user functions:\n%s", out)
	}

	_, out = evalResult(t, "fn sq(v) { 'square'\n return v }\nmy_funcs(show_doc=False)")
	if out != "Scope 0:\n  fn sq(v)\n" {
		t.Fatalf("my_funcs() output %q", out)
	}
}

func Test_Introspection_UserShadowIsNotBuiltin(t *testing.T) {
	_, out := evalResult(t, "fn len(x) { return 0 }\nmy_funcs(show_doc=False)")
	if out != "Scope 0:\n  fn len(x)\n" {
		t.Fatalf("out=%q", out)
	}
}
