package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cobralang/cobra"
	"github.com/cobralang/cobra/internal/config"
)

const appName = "cobra"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "run":
		return a.cmdRun(rest)
	case "repl":
		return a.cmdRepl(rest)
	case "tokens":
		return a.cmdTokens(rest)
	case "ast":
		return a.cmdAST(rest)
	case "version":
		fmt.Fprintln(stdout, cobra.Version)
		return 0
	case "-h", "--help", "help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "%s: unknown command %q\n", appName, cmd)
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `Cobra %s

Usage:
  %s run <file.cb>        Run a script.
  %s repl                 Start the REPL (reads a whole program when stdin is not a terminal).
  %s tokens <file.cb>     Print the token stream.
  %s ast <file.cb>        Print the syntax tree as YAML.
  %s version              Print the version.

Flags (all commands):
  --config PATH           Settings file (default ./cobra.yaml if present)
  --log-level LEVEL       NONE, CRITICAL, ERROR, WARNING, INFO or DEBUG
  --log-file PATH         Write logs to PATH instead of stderr
`, cobra.Version, appName, appName, appName, appName, appName)
}

// app carries the streams and settings shared by every command.
type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer

	cfg    config.Config
	log    *slog.Logger
	closer io.Closer
}

type globalFlags struct {
	config, logLevel, logFile string
}

func (g *globalFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&g.config, "config", "", "settings file")
	fs.StringVar(&g.logLevel, "log-level", "", "log level")
	fs.StringVar(&g.logFile, "log-file", "", "log file")
}

// setup parses the flags of one command, loads the settings and builds the
// logger. It returns the positional arguments.
func (a *app) setup(name string, args []string) ([]string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	var g globalFlags
	g.register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg, err := config.Load(g.config)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.logFile != "" {
		cfg.LogFile = g.logFile
	}
	logger, closer, err := cfg.Logger(a.stderr)
	if err != nil {
		return nil, err
	}
	a.cfg, a.log, a.closer = cfg, logger, closer
	return fs.Args(), nil
}

func (a *app) close() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

func (a *app) interpreter() *cobra.Interpreter {
	return cobra.NewInterpreter(
		cobra.WithStdout(a.stdout),
		cobra.WithStderr(a.stderr),
		cobra.WithStdin(a.stdin),
		cobra.WithLogger(a.log),
		cobra.WithMaxCallDepth(a.cfg.MaxCallDepth),
		cobra.WithModuleResolver(cobra.NewFileResolver(a.cfg.ModulePath...)),
	)
}

func (a *app) fail(err error) int {
	fmt.Fprintln(a.stderr, a.red(err.Error()))
	return 1
}

func (a *app) red(s string) string {
	f, ok := a.stderr.(*os.File)
	if !a.cfg.Color || !ok || !isTerminal(f) {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func (a *app) cmdRun(args []string) int {
	rest, err := a.setup("run", args)
	if err != nil {
		return usageError(a.stderr, err)
	}
	defer a.close()
	if len(rest) != 1 {
		fmt.Fprintf(a.stderr, "usage: %s run <file.cb>\n", appName)
		return 2
	}
	res, err := a.interpreter().RunFile(rest[0])
	if err != nil {
		return a.fail(err)
	}
	return a.finish(res)
}

// finish prints a top-level return value and turns the outcome into an
// exit status.
func (a *app) finish(res cobra.Result) int {
	switch res.Outcome {
	case cobra.Halted:
		return exitCode(res.ExitCode)
	case cobra.Returned:
		if !res.Value.IsNull() {
			fmt.Fprintln(a.stdout, cobra.FormatValue(res.Value))
		}
	}
	return 0
}

func exitCode(v cobra.Value) int {
	if v.Tag == cobra.VTInt {
		return int(v.Data.(int64))
	}
	return 0
}

func usageError(w io.Writer, err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	fmt.Fprintf(w, "%s: %v\n", appName, err)
	return 2
}

// -----------------------------------------------------------------------------
// tokens / ast
// -----------------------------------------------------------------------------

func (a *app) readSource(name string, args []string) (string, string, int, bool) {
	rest, err := a.setup(name, args)
	if err != nil {
		return "", "", usageError(a.stderr, err), false
	}
	if len(rest) != 1 {
		fmt.Fprintf(a.stderr, "usage: %s %s <file.cb>\n", appName, name)
		return "", "", 2, false
	}
	b, err := os.ReadFile(rest[0])
	if err != nil {
		return "", "", a.fail(err), false
	}
	return rest[0], string(b), 0, true
}

func (a *app) cmdTokens(args []string) int {
	file, src, code, ok := a.readSource("tokens", args)
	if !ok {
		return code
	}
	defer a.close()
	toks, err := cobra.NewLexer(src, file).WithLogger(a.log).Scan()
	if err != nil {
		return a.fail(cobra.WrapErrorWithName(err, file, src))
	}
	fmt.Fprint(a.stdout, cobra.FormatTokens(toks))
	return 0
}

func (a *app) cmdAST(args []string) int {
	file, src, code, ok := a.readSource("ast", args)
	if !ok {
		return code
	}
	defer a.close()
	prog, err := a.interpreter().Parse(file, src)
	if err != nil {
		return a.fail(err)
	}
	out, err := yaml.Marshal(cobra.DumpAST(prog))
	if err != nil {
		return a.fail(err)
	}
	_, _ = a.stdout.Write(out)
	return 0
}
