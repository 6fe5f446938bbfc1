package cobra

import (
	"regexp"
	"strings"
	"unicode"
)

// ---- strings --------------------------------------------------------------
//
// Indices are rune based, like String subscripts. Patterns are RE2.

func registerStringBuiltins(b *Builtins) {
	oneString := Signature{Params: []string{"s"}}
	unary := func(name, doc string, fn func(string) string) {
		b.RegisterNative(name, oneString, func(c *CallCtx) (Value, error) {
			s, err := argStr(c, "s")
			if err != nil {
				return Null, err
			}
			return Str(fn(s)), nil
		})
		b.SetDoc(name, doc)
	}

	unary("upper", "Uppercase copy of s (Unicode aware).", strings.ToUpper)
	unary("lower", "Lowercase copy of s (Unicode aware).", strings.ToLower)
	unary("strip", "Remove leading and trailing whitespace.", strings.TrimSpace)
	unary("lstrip", "Remove leading whitespace.", func(s string) string {
		return strings.TrimLeftFunc(s, unicode.IsSpace)
	})
	unary("rstrip", "Remove trailing whitespace.", func(s string) string {
		return strings.TrimRightFunc(s, unicode.IsSpace)
	})

	// split(s, sep=Null) -> List
	b.RegisterNative(
		"split",
		Signature{Params: []string{"s"}, KwParams: []Param{{Name: "sep", Default: Null}}},
		func(c *CallCtx) (Value, error) {
			s, err := argStr(c, "s")
			if err != nil {
				return Null, err
			}
			var parts []string
			if c.Arg("sep").IsNull() {
				parts = strings.Fields(s)
			} else {
				sep, err := argStr(c, "sep")
				if err != nil {
					return Null, err
				}
				parts = strings.Split(s, sep)
			}
			out := make([]Value, len(parts))
			for i, p := range parts {
				out[i] = Str(p)
			}
			return List(out), nil
		},
	)
	b.SetDoc("split", `Split s into a List of Strings.

Params:
  s:   String to split
  sep: separator (default Null: runs of whitespace). An empty separator
       splits between characters.`)

	// find(s, sub) -> Integer
	b.RegisterNative(
		"find",
		Signature{Params: []string{"s", "sub"}},
		func(c *CallCtx) (Value, error) {
			s, err := argStr(c, "s")
			if err != nil {
				return Null, err
			}
			sub, err := argStr(c, "sub")
			if err != nil {
				return Null, err
			}
			i := strings.Index(s, sub)
			if i < 0 {
				return Int(-1), nil
			}
			return Int(int64(len([]rune(s[:i])))), nil
		},
	)
	b.SetDoc("find", "Character index of the first occurrence of sub in s, or -1.")

	affix := func(name, doc string, fn func(s, affix string) bool) {
		b.RegisterNative(name, Signature{Params: []string{"s", "affix"}}, func(c *CallCtx) (Value, error) {
			s, err := argStr(c, "s")
			if err != nil {
				return Null, err
			}
			a, err := argStr(c, "affix")
			if err != nil {
				return Null, err
			}
			return Bool(fn(s, a)), nil
		})
		b.SetDoc(name, doc)
	}
	affix("startswith", "Whether s begins with affix.", strings.HasPrefix)
	affix("endswith", "Whether s ends with affix.", strings.HasSuffix)

	// match(pattern, s) -> List
	b.RegisterNative(
		"match",
		Signature{Params: []string{"pattern", "s"}},
		func(c *CallCtx) (Value, error) {
			re, err := argRegexp(c)
			if err != nil {
				return Null, err
			}
			s, err := argStr(c, "s")
			if err != nil {
				return Null, err
			}
			ms := re.FindAllString(s, -1)
			out := make([]Value, len(ms))
			for i := range ms {
				out[i] = Str(ms[i])
			}
			return List(out), nil
		},
	)
	b.SetDoc("match", `All non-overlapping matches of pattern in s, as a List of Strings.

Params:
  pattern: RE2 regular expression
  s:       input`)

	// replace(s, old, new, regex=False) -> String
	b.RegisterNative(
		"replace",
		Signature{
			Params:   []string{"s", "old", "new"},
			KwParams: []Param{{Name: "regex", Default: Bool(false)}},
		},
		func(c *CallCtx) (Value, error) {
			s, err := argStr(c, "s")
			if err != nil {
				return Null, err
			}
			repl, err := argStr(c, "new")
			if err != nil {
				return Null, err
			}
			if Truthy(c.Arg("regex")) {
				re, err := compileArg(c, "old")
				if err != nil {
					return Null, err
				}
				return Str(re.ReplaceAllLiteralString(s, repl)), nil
			}
			old, err := argStr(c, "old")
			if err != nil {
				return Null, err
			}
			return Str(strings.ReplaceAll(s, old, repl)), nil
		},
	)
	b.SetDoc("replace", `Replace every occurrence of old in s with new.

Params:
  s:     input
  old:   text to replace, or an RE2 pattern when regex=True
  new:   replacement, inserted literally
  regex: treat old as a regular expression (default False)`)
}

func argRegexp(c *CallCtx) (*regexp.Regexp, error) { return compileArg(c, "pattern") }

func compileArg(c *CallCtx, name string) (*regexp.Regexp, error) {
	pat, err := argStr(c, name)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pat)
	if err != nil {
		return nil, rtErrorf(ValueError, "invalid regular expression %s: %v", quoteString(pat), err)
	}
	return re, nil
}
