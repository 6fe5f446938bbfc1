package cobra

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// ---- process & host -------------------------------------------------------

func registerSysBuiltins(b *Builtins) {
	// exit(code=Null) -> never returns
	b.RegisterNative(
		"exit",
		Signature{KwParams: []Param{{Name: "code", Default: Null}}},
		func(c *CallCtx) (Value, error) {
			code := c.Arg("code")
			if code.Tag != VTNull && code.Tag != VTInt {
				return Null, rtErrorf(TypeError, "exit() code must be Integer or Null, not %s", code.TypeName())
			}
			c.Halt(code)
			return Null, nil
		},
	)
	b.SetDoc("exit", "Stop the program. The optional Integer code becomes the exit status.")

	// input(prompt="") -> String | Null
	b.RegisterNative(
		"input",
		Signature{KwParams: []Param{{Name: "prompt", Default: Str("")}}},
		func(c *CallCtx) (Value, error) {
			prompt, err := argStr(c, "prompt")
			if err != nil {
				return Null, err
			}
			if _, err := io.WriteString(c.Stdout(), prompt); err != nil {
				return Null, err
			}
			line, err := c.Ctx.stdin.ReadString('\n')
			if errors.Is(err, io.EOF) && line == "" {
				return Null, nil
			}
			if err != nil && !errors.Is(err, io.EOF) {
				return Null, err
			}
			return Str(strings.TrimRight(line, "\r\n")), nil
		},
	)
	b.SetDoc("input", "Print prompt and read one line from standard input. Null at end of input.")

	// time(as_int=False) -> Float | Integer
	b.RegisterNative(
		"time",
		Signature{KwParams: []Param{{Name: "as_int", Default: Bool(false)}}},
		func(c *CallCtx) (Value, error) {
			now := time.Now()
			if Truthy(c.Arg("as_int")) {
				return Int(now.Unix()), nil
			}
			return Float(float64(now.UnixNano()) / 1e9), nil
		},
	)
	b.SetDoc("time", "Seconds since the Unix epoch, as a Float or (as_int=True) an Integer.")

	// info() -> Null
	b.RegisterNative(
		"info",
		Signature{},
		func(c *CallCtx) (Value, error) {
			_, err := fmt.Fprintf(c.Stdout(), "Cobra %s\nA small dynamically typed scripting language.\nType dump() to list what is defined, funcs() for the built-ins.\n", Version)
			return Null, err
		},
	)
	b.SetDoc("info", "Print the language version and a short help text.")
}
