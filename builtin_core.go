package cobra

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ---- core built-ins ----------------------------------------------------

func registerCoreBuiltins(b *Builtins) {
	// print(*args, sep=" ", end="\n", flush=True) -> Null
	b.RegisterNative(
		"print",
		Signature{VarArg: "args", KwParams: []Param{
			{Name: "sep", Default: Str(" ")},
			{Name: "end", Default: Str("\n")},
			{Name: "flush", Default: Bool(true)},
		}},
		func(c *CallCtx) (Value, error) {
			sep, err := argStr(c, "sep")
			if err != nil {
				return Null, err
			}
			end, err := argStr(c, "end")
			if err != nil {
				return Null, err
			}
			parts := make([]string, 0)
			for _, a := range c.Arg("args").Items() {
				parts = append(parts, FormatValue(a))
			}
			w := c.Stdout()
			if _, err := io.WriteString(w, strings.Join(parts, sep)+end); err != nil {
				return Null, err
			}
			if Truthy(c.Arg("flush")) {
				if f, ok := w.(interface{ Sync() error }); ok {
					_ = f.Sync()
				}
			}
			return Null, nil
		},
	)
	b.SetDoc("print", `Write the arguments to standard output.

Params:
  *args: values, printed as str() would show them
  sep:   String placed between arguments (default " ")
  end:   String written after the last argument (default "\n")
  flush: flush the output afterwards (default True)`)

	// type(value, recursive=False) -> String
	b.RegisterNative(
		"type",
		Signature{Params: []string{"value"}, KwParams: []Param{{Name: "recursive", Default: Bool(false)}}},
		func(c *CallCtx) (Value, error) {
			return Str(typeOf(c.Arg("value"), Truthy(c.Arg("recursive")))), nil
		},
	)
	b.SetDoc("type", `Return the variant name of a value, e.g. "Integer".
With recursive=True container element types are included: "List(Integer, String)".`)

	// len(value) -> Integer
	b.RegisterNative(
		"len",
		Signature{Params: []string{"value"}},
		func(c *CallCtx) (Value, error) {
			n, err := Length(c.Arg("value"))
			return Int(int64(n)), err
		},
	)
	b.SetDoc("len", "Number of characters of a String or elements of a List, Tuple or Dict.")

	b.RegisterNative("int", Signature{Params: []string{"value"}}, func(c *CallCtx) (Value, error) {
		return toInt(c.Arg("value"))
	})
	b.SetDoc("int", "Convert a Float (truncating), Boolean or numeric String to Integer.")

	b.RegisterNative("float", Signature{Params: []string{"value"}}, func(c *CallCtx) (Value, error) {
		return toFloatValue(c.Arg("value"))
	})
	b.SetDoc("float", "Convert an Integer, Boolean or numeric String to Float.")

	b.RegisterNative("str", Signature{Params: []string{"value"}}, func(c *CallCtx) (Value, error) {
		return Str(FormatValue(c.Arg("value"))), nil
	})
	b.SetDoc("str", "Render any value as a String, the way print shows it.")

	b.RegisterNative("bool", Signature{Params: []string{"value"}}, func(c *CallCtx) (Value, error) {
		return Bool(Truthy(c.Arg("value"))), nil
	})
	b.SetDoc("bool", "Truthiness of a value: Null, False, 0, 0.0 and empty values are False.")

	b.RegisterNative("list", Signature{Params: []string{"value"}}, func(c *CallCtx) (Value, error) {
		items, err := Iterate(c.Arg("value"))
		return List(items), err
	})
	b.SetDoc("list", "Build a new List from the elements of a List, Tuple, String or Dict (keys).")

	b.RegisterNative("tuple", Signature{Params: []string{"value"}}, func(c *CallCtx) (Value, error) {
		items, err := Iterate(c.Arg("value"))
		return Tuple(items), err
	})
	b.SetDoc("tuple", "Build a Tuple from the elements of a List, Tuple, String or Dict (keys).")
}

func typeOf(v Value, recursive bool) string {
	if !recursive {
		return v.TypeName()
	}
	switch v.Tag {
	case VTList, VTTuple:
		var parts []string
		for _, it := range v.Items() {
			parts = append(parts, typeOf(it, true))
		}
		return fmt.Sprintf("%s(%s)", v.TypeName(), strings.Join(parts, ", "))
	case VTDict:
		var parts []string
		v.Data.(*DictObject).Each(func(k, val Value) bool {
			parts = append(parts, typeOf(k, true)+": "+typeOf(val, true))
			return true
		})
		return fmt.Sprintf("Dict(%s)", strings.Join(parts, ", "))
	}
	return v.TypeName()
}

func toInt(v Value) (Value, error) {
	switch v.Tag {
	case VTInt:
		return v, nil
	case VTFloat:
		return Int(int64(v.Data.(float64))), nil
	case VTBool:
		if v.Data.(bool) {
			return Int(1), nil
		}
		return Int(0), nil
	case VTStr:
		s := strings.TrimSpace(v.Data.(string))
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Null, rtErrorf(ValueError, "invalid literal for int(): %s", quoteString(v.Data.(string)))
		}
		return Int(n), nil
	}
	return Null, rtErrorf(TypeError, "int() cannot convert %s", v.TypeName())
}

func toFloatValue(v Value) (Value, error) {
	switch v.Tag {
	case VTInt:
		return Float(float64(v.Data.(int64))), nil
	case VTFloat:
		return v, nil
	case VTBool:
		if v.Data.(bool) {
			return Float(1), nil
		}
		return Float(0), nil
	case VTStr:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Data.(string)), 64)
		if err != nil {
			return Null, rtErrorf(ValueError, "could not convert string to float: %s", quoteString(v.Data.(string)))
		}
		return Float(f), nil
	}
	return Null, rtErrorf(TypeError, "float() cannot convert %s", v.TypeName())
}
