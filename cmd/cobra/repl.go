package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"

	"github.com/cobralang/cobra"
)

const (
	replName   = "<repl>"
	promptMain = ">>> "
	promptCont = "... "
)

var banner = `Cobra ` + cobra.Version + `
Type info() for help, :quit or exit() to leave.`

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func (a *app) cmdRepl(args []string) int {
	if _, err := a.setup("repl", args); err != nil {
		return usageError(a.stderr, err)
	}
	defer a.close()

	if f, ok := a.stdin.(*os.File); !ok || !isTerminal(f) {
		return a.replBatch()
	}

	fmt.Fprintln(a.stdout, banner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(a.cfg.HistoryFile); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(a.cfg.HistoryFile); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	ip := a.interpreter()
	resolver := cobra.NewFileResolver(a.cfg.ModulePath...)

	// While the prompt is up liner owns the terminal in raw mode and Ctrl-C
	// arrives as a key. During evaluation it is a signal and stops the
	// running program.
	sigc := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigc, os.Interrupt)
	defer func() {
		signal.Stop(sigc)
		close(done)
	}()
	go func() {
		for {
			select {
			case <-sigc:
				ip.Context().Interrupt()
			case <-done:
				return
			}
		}
	}()

	for {
		src, ok := readByParseProbe(ln, resolver, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(a.stdout)
			break
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit", ":q":
				return 0
			default:
				fmt.Fprintln(a.stdout, "unknown command. Type :quit to exit.")
			}
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		res, err := ip.EvalSource(replName, src)
		if err != nil {
			fmt.Fprintln(a.stderr, a.red(err.Error()))
			continue
		}
		if res.Outcome == cobra.Halted {
			return exitCode(res.ExitCode)
		}
		if !res.Value.IsNull() {
			fmt.Fprintln(a.stdout, cobra.FormatRepr(res.Value))
		}
	}
	return 0
}

// replBatch runs piped input as one program.
func (a *app) replBatch() int {
	b, err := io.ReadAll(a.stdin)
	if err != nil {
		return a.fail(err)
	}
	res, err := a.interpreter().EvalSource("<stdin>", string(b))
	if err != nil {
		return a.fail(err)
	}
	return a.finish(res)
}

// readByParseProbe keeps prompting until the buffer parses, or fails for a
// reason other than running out of input. ok is false at end of input.
func readByParseProbe(ln *liner.State, resolver cobra.ModuleResolver, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl-C drops the pending input.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, perr := cobra.ParseSource(src, replName, cobra.WithResolver(resolver))
		if perr != nil && cobra.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
