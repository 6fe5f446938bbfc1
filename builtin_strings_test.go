package cobra

import (
	"strings"
	"testing"
)

func Test_Builtin_CaseAndWhitespace(t *testing.T) {
	cases := []struct{ src, want string }{
		{"upper('abc ä')", "'ABC Ä'"},
		{"lower('MiXeD')", "'mixed'"},
		{"strip('  x y \\n')", "'x y'"},
		{"lstrip('\\t x ')", "'x '"},
		{"rstrip(' x \\t')", "' x'"},
		{"strip('')", "''"},
	}
	for _, c := range cases {
		if got := evalRepr(t, c.src); got != c.want {
			t.Errorf("%s = %s, want %s", c.src, got, c.want)
		}
	}
	wantErrKind(t, "upper(1)", TypeError)
	wantErrKind(t, "strip()", ArityError)
}

func Test_Builtin_Split(t *testing.T) {
	wantValue(t, "split('  a  b\\tc ')", "['a', 'b', 'c']")
	wantValue(t, "split('a,b,,c', sep=',')", "['a', 'b', '', 'c']")
	wantValue(t, "split('abc', sep='')", "['a', 'b', 'c']")
	wantValue(t, "split('')", "[]")
	wantErrKind(t, "split('a b', ' ')", ArityError)
	wantErrKind(t, "split('a', sep=1)", TypeError)
}

func Test_Builtin_FindAndAffixes(t *testing.T) {
	wantValue(t, "find('hello', 'l')", "2")
	wantValue(t, "find('héllo', 'l')", "2")
	wantValue(t, "find('hello', 'z')", "-1")
	wantValue(t, "find('hello', '')", "0")
	wantValue(t, "(startswith('cobra', 'co'), endswith('cobra', 'co'))", "(True, False)")
	wantValue(t, "endswith('main.cb', '.cb')", "True")
	wantErrKind(t, "startswith('x', Null)", TypeError)
}

func Test_Builtin_Match(t *testing.T) {
	wantValue(t, "match('[0-9]+', 'a1b22c333')", "['1', '22', '333']")
	wantValue(t, "match('x', 'abc')", "[]")
	re := wantErrKind(t, "match('(', 'abc')", ValueError)
	if !strings.Contains(re.Msg, "invalid regular expression") {
		t.Fatalf("msg %q", re.Msg)
	}
}

func Test_Builtin_Replace(t *testing.T) {
	wantValue(t, "replace('a.b.c', '.', '-')", "'a-b-c'")
	wantValue(t, "replace('a.b.c', '.', '-', regex=True)", "'-----'")
	wantValue(t, "replace('a1b22', '[0-9]+', '#', regex=True)", "'a#b#'")
	// the replacement is literal even in regex mode
	wantValue(t, "replace('ab', '(a)', '$1$1', regex=True)", "'$1$1b'")
	wantValue(t, "replace('aaa', 'b', 'c')", "'aaa'")
	wantErrKind(t, "replace('a', '[', 'b', regex=True)", ValueError)
	wantErrKind(t, "replace('a', 'a')", ArityError)
}
