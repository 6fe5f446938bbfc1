// interpreter.go: the embedding API.
//
// OVERVIEW
// ========
// The core pipeline is three calls:
//
//	toks, err := cobra.Tokenize(src, "demo.cb")
//	prog, err := cobra.Parse(toks, "demo.cb", cobra.WithResolver(r))
//	res,  err := prog.Run(ctx)
//
// Interpreter bundles one long-lived Context with a module resolver and a
// logger so hosts (the CLI, the REPL, tests) do not have to wire them each
// time. The Context persists across calls: top-level `let` and `fn` in one
// EvalSource are visible to the next, which is what the REPL relies on.
// Non-root scopes never survive a call; Program.Run restores the stack
// depth on every exit path.
//
// ERRORS
// ======
// EvalSource and RunFile return errors wrapped in *Diagnostic, whose message
// is a caret snippet. The underlying *LexError, *ParseError or *RuntimeError
// is still reachable with errors.As. A program that calls exit() is not an
// error: it returns a Result with Outcome == Halted.
//
// PUBLIC API
// ==========
//   - Version
//   - Interpreter, NewInterpreter(opts...)
//   - (*Interpreter).Context(), Parse, EvalSource, RunFile
package cobra

import (
	"log/slog"
	"os"
)

// Version is the language version reported by info() and the CLI.
var Version = "0.4.0"

// Interpreter is a Context plus everything needed to turn source into a
// running Program.
type Interpreter struct {
	ctx      *Context
	resolver ModuleResolver
	log      *slog.Logger
}

// NewInterpreter builds an Interpreter with the standard built-ins and the
// default resolver unless options say otherwise.
func NewInterpreter(opts ...Option) *Interpreter {
	s := defaultSettings(opts)
	reg := s.builtins
	if reg == nil {
		reg = StdBuiltins()
	}
	res := s.resolver
	if res == nil {
		res = DefaultResolver()
	}
	return &Interpreter{
		ctx:      NewContext(reg, opts...),
		resolver: res,
		log:      s.logger,
	}
}

// Context exposes the persistent Context.
func (ip *Interpreter) Context() *Context { return ip.ctx }

// Parse tokenizes and parses src. name labels diagnostics and anchors
// relative imports.
func (ip *Interpreter) Parse(name, src string) (*Program, error) {
	prog, err := ParseSource(src, name, WithResolver(ip.resolver), WithParserLogger(ip.log))
	if err != nil {
		return nil, ip.wrap(err, name, src)
	}
	return prog, nil
}

// EvalSource parses and runs src in the persistent Context.
func (ip *Interpreter) EvalSource(name, src string) (Result, error) {
	prog, err := ip.Parse(name, src)
	if err != nil {
		return Result{Value: Null, ExitCode: Null}, err
	}
	res, err := prog.Run(ip.ctx)
	if err != nil {
		return res, ip.wrap(err, name, src)
	}
	return res, nil
}

// RunFile reads path and evaluates it.
func (ip *Interpreter) RunFile(path string) (Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{Value: Null, ExitCode: Null}, err
	}
	return ip.EvalSource(path, string(b))
}

//// END_OF_PUBLIC

type sourceLoader interface {
	Source(path string) (string, bool)
}

func (ip *Interpreter) wrap(err error, name, src string) error {
	var load func(string) (string, bool)
	if sl, ok := ip.resolver.(sourceLoader); ok {
		load = sl.Source
	}
	return wrapError(err, name, src, load)
}
