// builtin_file.go
//
// This file provides:
//   • File I/O: read_file, write_file, list_dir, exists
//   • Formatted strings: format
//
// I/O failures surface as HostError carrying the operating system message.

package cobra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

func registerFileBuiltins(b *Builtins) {
	// read_file(path) -> String
	b.RegisterNative(
		"read_file",
		Signature{Params: []string{"path"}},
		func(c *CallCtx) (Value, error) {
			path, err := argStr(c, "path")
			if err != nil {
				return Null, err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return Null, err
			}
			return Str(string(data)), nil
		},
	)
	b.SetDoc("read_file", `Read a whole file as a String.

Params:
  path: file to read

Fails with HostError if the file cannot be read.`)

	// write_file(path, text, append=False) -> Integer
	b.RegisterNative(
		"write_file",
		Signature{
			Params:   []string{"path", "text"},
			KwParams: []Param{{Name: "append", Default: Bool(false)}},
		},
		func(c *CallCtx) (Value, error) {
			path, err := argStr(c, "path")
			if err != nil {
				return Null, err
			}
			text, err := argStr(c, "text")
			if err != nil {
				return Null, err
			}
			flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
			if Truthy(c.Arg("append")) {
				flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
			}
			f, err := os.OpenFile(path, flags, 0o644)
			if err != nil {
				return Null, err
			}
			n, werr := f.WriteString(text)
			if cerr := f.Close(); werr == nil {
				werr = cerr
			}
			if werr != nil {
				return Null, werr
			}
			return Int(int64(n)), nil
		},
	)
	b.SetDoc("write_file", `Write text to path, creating the file if needed.

Params:
  path:   destination
  text:   String to write
  append: add to the end instead of truncating (default False)

Returns:
  the number of bytes written.`)

	// list_dir(path=".") -> List
	b.RegisterNative(
		"list_dir",
		Signature{KwParams: []Param{{Name: "path", Default: Str(".")}}},
		func(c *CallCtx) (Value, error) {
			path, err := argStr(c, "path")
			if err != nil {
				return Null, err
			}
			ents, err := os.ReadDir(path)
			if err != nil {
				return Null, err
			}
			out := make([]Value, 0, len(ents))
			for _, e := range ents {
				out = append(out, Str(e.Name()))
			}
			return List(out), nil
		},
	)
	b.SetDoc("list_dir", "Names of the entries in a directory, sorted.")

	// exists(path) -> Boolean
	b.RegisterNative(
		"exists",
		Signature{Params: []string{"path"}},
		func(c *CallCtx) (Value, error) {
			path, err := argStr(c, "path")
			if err != nil {
				return Null, err
			}
			_, err = os.Stat(path)
			if errors.Is(err, fs.ErrNotExist) {
				return Bool(false), nil
			}
			if err != nil {
				return Null, err
			}
			return Bool(true), nil
		},
	)
	b.SetDoc("exists", "Whether path names an existing file or directory.")

	// format(fmt, *args) -> String
	b.RegisterNative(
		"format",
		Signature{Params: []string{"fmt"}, VarArg: "args"},
		func(c *CallCtx) (Value, error) {
			f, err := argStr(c, "fmt")
			if err != nil {
				return Null, err
			}
			as := c.Arg("args").Items()
			goArgs := make([]any, len(as))
			for i := range as {
				goArgs[i] = fmtArgFromValue(as[i])
			}
			out := fmt.Sprintf(f, goArgs...)
			// Go reports bad verbs and argument counts inline as "%!".
			if strings.Contains(out, "%!") {
				return Null, rtErrorf(ValueError, "format() verbs do not match the arguments: %s", quoteString(out))
			}
			return Str(out), nil
		},
	)
	b.SetDoc("format", `Format a string with printf-style verbs.

Supports Go-style verbs like %s, %v, %d and %f:
  format("%s = %d", "x", 42)

Params:
  fmt:   String
  *args: values for the verbs

Fails with ValueError when verbs and arguments disagree.`)
}

func fmtArgFromValue(v Value) any {
	switch v.Tag {
	case VTStr:
		return v.Data.(string)
	case VTInt:
		return v.Data.(int64)
	case VTFloat:
		return v.Data.(float64)
	case VTBool:
		return v.Data.(bool)
	default:
		return FormatRepr(v)
	}
}
