package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.cb")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("COBRA_LOG_LEVEL", "NONE")
	var out, errOut bytes.Buffer
	code := run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func Test_CLI_NoArgsPrintsUsage(t *testing.T) {
	code, _, errOut := runCLI(t, "")
	if code != 2 || !strings.Contains(errOut, "Usage:") {
		t.Fatalf("code=%d stderr=%q", code, errOut)
	}
}

func Test_CLI_UnknownCommand(t *testing.T) {
	code, _, errOut := runCLI(t, "", "frobnicate")
	if code != 2 || !strings.Contains(errOut, `unknown command "frobnicate"`) {
		t.Fatalf("code=%d stderr=%q", code, errOut)
	}
}

func Test_CLI_Version(t *testing.T) {
	code, out, _ := runCLI(t, "", "version")
	if code != 0 || strings.TrimSpace(out) == "" {
		t.Fatalf("code=%d out=%q", code, out)
	}
}

func Test_CLI_RunPrintsOutput(t *testing.T) {
	path := writeScript(t, "let x = 2\nprint(x * 21)\n")
	code, out, errOut := runCLI(t, "", "run", path)
	if code != 0 {
		t.Fatalf("code=%d stderr=%q", code, errOut)
	}
	if out != "42\n" {
		t.Fatalf("out=%q", out)
	}
}

func Test_CLI_RunPrintsTopLevelReturn(t *testing.T) {
	path := writeScript(t, "return 'done'\n")
	_, out, _ := runCLI(t, "", "run", path)
	if out != "done\n" {
		t.Fatalf("out=%q", out)
	}
}

func Test_CLI_RunExitCode(t *testing.T) {
	path := writeScript(t, "print('a')\nexit(code=3)\nprint('b')\n")
	code, out, _ := runCLI(t, "", "run", path)
	if code != 3 {
		t.Fatalf("code=%d", code)
	}
	if out != "a\n" {
		t.Fatalf("out=%q", out)
	}
}

func Test_CLI_RunRuntimeError(t *testing.T) {
	path := writeScript(t, "let x = 1\nprint(y)\n")
	code, _, errOut := runCLI(t, "", "run", path)
	if code != 1 {
		t.Fatalf("code=%d", code)
	}
	if !strings.Contains(errOut, "NameError") || !strings.Contains(errOut, "print(y)") {
		t.Fatalf("stderr=%q", errOut)
	}
}

func Test_CLI_RunMissingFile(t *testing.T) {
	code, _, errOut := runCLI(t, "", "run", filepath.Join(t.TempDir(), "nope.cb"))
	if code != 1 || errOut == "" {
		t.Fatalf("code=%d stderr=%q", code, errOut)
	}
}

func Test_CLI_RunNeedsOneFile(t *testing.T) {
	code, _, errOut := runCLI(t, "", "run")
	if code != 2 || !strings.Contains(errOut, "usage:") {
		t.Fatalf("code=%d stderr=%q", code, errOut)
	}
}

func Test_CLI_BadLogLevelFlag(t *testing.T) {
	path := writeScript(t, "print(1)\n")
	code, _, errOut := runCLI(t, "", "run", "--log-level", "LOUD", path)
	if code != 2 || !strings.Contains(errOut, "unknown log level") {
		t.Fatalf("code=%d stderr=%q", code, errOut)
	}
}

func Test_CLI_LogFileFlag(t *testing.T) {
	path := writeScript(t, "print(1)\n")
	logPath := filepath.Join(t.TempDir(), "cobra.log")
	code, _, errOut := runCLI(t, "", "run", "--log-level", "DEBUG", "--log-file", logPath, path)
	if code != 0 {
		t.Fatalf("code=%d stderr=%q", code, errOut)
	}
	if _, err := os.Stat(logPath); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
}

func Test_CLI_ReplReadsPipedProgram(t *testing.T) {
	code, out, errOut := runCLI(t, "let a = [1, 2]\nappend(a, 3)\nprint(a)\n", "repl")
	if code != 0 {
		t.Fatalf("code=%d stderr=%q", code, errOut)
	}
	if out != "[1, 2, 3]\n" {
		t.Fatalf("out=%q", out)
	}
}

func Test_CLI_Tokens(t *testing.T) {
	path := writeScript(t, "x += 1\n")
	code, out, errOut := runCLI(t, "", "tokens", path)
	if code != 0 {
		t.Fatalf("code=%d stderr=%q", code, errOut)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 tokens, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "+=") {
		t.Fatalf("second token: %q", lines[1])
	}
}

func Test_CLI_TokensLexError(t *testing.T) {
	path := writeScript(t, "let s = 'open\n")
	code, _, errOut := runCLI(t, "", "tokens", path)
	if code != 1 || !strings.Contains(errOut, "UnterminatedString") {
		t.Fatalf("code=%d stderr=%q", code, errOut)
	}
}

func Test_CLI_AstYAML(t *testing.T) {
	path := writeScript(t, "let x = 1 + 2\n")
	code, out, errOut := runCLI(t, "", "ast", path)
	if code != 0 {
		t.Fatalf("code=%d stderr=%q", code, errOut)
	}
	for _, want := range []string{"node: Program", "node: LetDecl", "node: BinaryOp", "name: x"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}
