// errors.go: runtime error taxonomy and caret-snippet rendering
//
// What this file does
// -------------------
// Defines `*RuntimeError` (the evaluator's error type; `*LexError` and
// `*ParseError` live next to the lexer and parser) and `Diagnostic`, which
// decorates any of the three with a numbered source snippet and a caret:
//
//	PARSE ERROR in demo.cb at 3:12: MissingNewline: expected newline or ';' before "y"
//
//	   2 | let a = 1
//	   3 | let x = 1 + y
//	     |            ^
//	   4 | print(x)
//
// The wrapped error stays reachable through `errors.As`.
//
// Scope of the public API
// -----------------------
// Public:   RuntimeError, RuntimeErrorKind, Diagnostic, WrapErrorWithSource,
//
//	WrapErrorWithName
//
// Private:  rtErrorf, snippet renderer.
package cobra

import (
	"errors"
	"fmt"
	"strings"
)

// RuntimeErrorKind classifies evaluation failures.
type RuntimeErrorKind int

const (
	NameError RuntimeErrorKind = iota
	TypeError
	ImmutableError
	IndexError
	KeyError
	ValueError
	ArityError
	DivisionByZero
	ImportError
	RecursionError
	Interrupted
	HostError // a failure from the host environment, e.g. reading stdin
)

var runtimeKindNames = [...]string{
	NameError:      "NameError",
	TypeError:      "TypeError",
	ImmutableError: "ImmutableError",
	IndexError:     "IndexError",
	KeyError:       "KeyError",
	ValueError:     "ValueError",
	ArityError:     "ArityError",
	DivisionByZero: "DivisionByZero",
	ImportError:    "ImportError",
	RecursionError: "RecursionError",
	Interrupted:    "Interrupted",
	HostError:      "HostError",
}

func (k RuntimeErrorKind) String() string {
	if int(k) >= 0 && int(k) < len(runtimeKindNames) {
		return runtimeKindNames[k]
	}
	return "RuntimeError"
}

// RuntimeError is raised while evaluating a Program. Pos is the zero value
// when the error was produced outside any node.
type RuntimeError struct {
	Kind RuntimeErrorKind
	Pos  Position
	File string
	Msg  string
}

func (e *RuntimeError) Error() string {
	if e.Pos.Line == 0 {
		return fmt.Sprintf("RUNTIME ERROR: %s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("RUNTIME ERROR at %s: %s: %s", e.Pos, e.Kind, e.Msg)
}

// Diagnostic is an error rendered against the source it came from.
type Diagnostic struct {
	Err     error
	Snippet string
}

func (d *Diagnostic) Error() string { return d.Snippet }
func (d *Diagnostic) Unwrap() error { return d.Err }

// WrapErrorWithSource is WrapErrorWithName without a source label.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

// WrapErrorWithName returns a *Diagnostic for lexer, parser and runtime
// errors; other errors are returned unchanged. When the error points into a
// different file than srcName (an imported module), the snippet is omitted
// unless the source can be read through load.
func WrapErrorWithName(err error, srcName string, src string) error {
	return wrapError(err, srcName, src, nil)
}

//// END_OF_PUBLIC

func rtErrorf(kind RuntimeErrorKind, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(err error, srcName, src string, load func(path string) (string, bool)) error {
	if err == nil {
		return nil
	}
	var d *Diagnostic
	if errors.As(err, &d) {
		return err
	}

	var (
		header, file, msg string
		line, col         int
	)
	var le *LexError
	var pe *ParseError
	var re *RuntimeError
	switch {
	case errors.As(err, &le):
		header, file = "LEXICAL ERROR", le.File
		line, col, msg = le.Start.Line, le.Start.Column, le.Kind.String()+": "+le.Msg
	case errors.As(err, &pe):
		header, file = "PARSE ERROR", pe.File
		line, col, msg = pe.Token.Start.Line, pe.Token.Start.Column, pe.Kind.String()+": "+pe.Msg
	case errors.As(err, &re):
		header, file = "RUNTIME ERROR", re.File
		line, col, msg = re.Pos.Line, re.Pos.Column, re.Kind.String()+": "+re.Msg
	default:
		return err
	}

	if file == "" {
		file = srcName
	}
	text, ok := src, true
	if file != srcName {
		text, ok = "", false
		if load != nil {
			text, ok = load(file)
		}
	}
	if line == 0 || !ok {
		return &Diagnostic{Err: err, Snippet: headerLine(header, file, line, col, msg)}
	}
	return &Diagnostic{Err: err, Snippet: prettyErrorStringLabeled(text, header, file, line, col, msg)}
}

func headerLine(header, name string, line, col int, msg string) string {
	switch {
	case line == 0 && name != "":
		return fmt.Sprintf("%s in %s: %s", header, name, msg)
	case line == 0:
		return fmt.Sprintf("%s: %s", header, msg)
	case name != "":
		return fmt.Sprintf("%s in %s at %d:%d: %s", header, name, line, col, msg)
	}
	return fmt.Sprintf("%s at %d:%d: %s", header, line, col, msg)
}

// prettyErrorStringLabeled builds the snippet: the header, at most one line
// of context on each side, and a caret under the 1-based column.
func prettyErrorStringLabeled(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	b.WriteString(headerLine(header, name, line, col, msg))
	b.WriteString("\n\n")
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
