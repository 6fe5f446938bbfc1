package cobra

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// ---- context introspection ---------------------------------------------
//
// These natives look at the caller's scopes, never at the scope holding
// their own arguments.

func registerIntrospectionBuiltins(b *Builtins) {
	// dump(only_current=False, show_vars=True, show_funcs=True, show_doc=True, show_builtins=True)
	b.RegisterNative(
		"dump",
		Signature{KwParams: []Param{
			{Name: "only_current", Default: Bool(false)},
			{Name: "show_vars", Default: Bool(true)},
			{Name: "show_funcs", Default: Bool(true)},
			{Name: "show_doc", Default: Bool(true)},
			{Name: "show_builtins", Default: Bool(true)},
		}},
		func(c *CallCtx) (Value, error) {
			opts := dumpOptions{
				vars:     Truthy(c.Arg("show_vars")),
				funcs:    Truthy(c.Arg("show_funcs")),
				doc:      Truthy(c.Arg("show_doc")),
				builtins: Truthy(c.Arg("show_builtins")),
				user:     true,
			}
			return Null, dumpScopes(c, Truthy(c.Arg("only_current")), opts)
		},
	)
	b.SetDoc("dump", "Print the variables and functions of every scope, root first.")

	// funcs(only_current=False, show_doc=True)
	b.RegisterNative(
		"funcs",
		Signature{KwParams: []Param{
			{Name: "only_current", Default: Bool(false)},
			{Name: "show_doc", Default: Bool(true)},
		}},
		func(c *CallCtx) (Value, error) {
			opts := dumpOptions{funcs: true, doc: Truthy(c.Arg("show_doc")), builtins: true}
			return Null, dumpScopes(c, Truthy(c.Arg("only_current")), opts)
		},
	)
	b.SetDoc("funcs", "Print the built-in functions with their signatures.")

	// my_funcs(only_current=False, show_doc=True)
	b.RegisterNative(
		"my_funcs",
		Signature{KwParams: []Param{
			{Name: "only_current", Default: Bool(false)},
			{Name: "show_doc", Default: Bool(true)},
		}},
		func(c *CallCtx) (Value, error) {
			opts := dumpOptions{funcs: true, doc: Truthy(c.Arg("show_doc")), user: true}
			return Null, dumpScopes(c, Truthy(c.Arg("only_current")), opts)
		},
	)
	b.SetDoc("my_funcs", "Print the user-defined functions with their signatures.")

	// get_variables() -> Tuple
	b.RegisterNative("get_variables", Signature{}, func(c *CallCtx) (Value, error) {
		return namesTuple(c.CallerScopes(), (*Scope).VariableNames), nil
	})
	b.SetDoc("get_variables", "Names of all visible variables, outermost scope first.")

	// get_functions() -> Tuple
	b.RegisterNative("get_functions", Signature{}, func(c *CallCtx) (Value, error) {
		return namesTuple(c.CallerScopes(), (*Scope).FunctionNames), nil
	})
	b.SetDoc("get_functions", "Names of all visible functions, outermost scope first.")

	// get_variable(name) -> Any
	b.RegisterNative("get_variable", Signature{Params: []string{"name"}}, func(c *CallCtx) (Value, error) {
		name, err := argStr(c, "name")
		if err != nil {
			return Null, err
		}
		scopes := c.CallerScopes()
		for i := len(scopes) - 1; i >= 0; i-- {
			if v, ok := scopes[i].Variable(name); ok {
				return v, nil
			}
		}
		return Null, rtErrorf(NameError, "variable %q is not defined", name)
	})
	b.SetDoc("get_variable", "Value of the variable called name.")

	// set_variable(name, value) -> Null
	b.RegisterNative("set_variable", Signature{Params: []string{"name", "value"}}, func(c *CallCtx) (Value, error) {
		name, err := argStr(c, "name")
		if err != nil {
			return Null, err
		}
		scopes := c.CallerScopes()
		for i := len(scopes) - 1; i >= 0; i-- {
			if _, ok := scopes[i].vars[name]; ok {
				scopes[i].vars[name] = c.Arg("value")
				return Null, nil
			}
		}
		scopes[len(scopes)-1].vars[name] = c.Arg("value")
		return Null, nil
	})
	b.SetDoc("set_variable", `Assign value to the variable called name. An existing binding is
overwritten where it lives; otherwise the variable is declared in the caller's scope.`)

	// set_global(name, value) -> Null
	b.RegisterNative("set_global", Signature{Params: []string{"name", "value"}}, func(c *CallCtx) (Value, error) {
		name, err := argStr(c, "name")
		if err != nil {
			return Null, err
		}
		c.Ctx.DeclareGlobal(name, c.Arg("value"))
		return Null, nil
	})
	b.SetDoc("set_global", "Declare or overwrite a variable in the root scope.")

	// clear(keep_functions=False, no_warning=False) -> Null
	b.RegisterNative(
		"clear",
		Signature{KwParams: []Param{
			{Name: "keep_functions", Default: Bool(false)},
			{Name: "no_warning", Default: Bool(false)},
		}},
		func(c *CallCtx) (Value, error) {
			if len(c.CallerScopes()) > 1 && !Truthy(c.Arg("no_warning")) {
				fmt.Fprintln(c.Ctx.Stderr(), "warning: clear() inside a nested scope clears every scope, not only the current one")
			}
			c.Ctx.Clear(Truthy(c.Arg("keep_functions")))
			return Null, nil
		},
	)
	b.SetDoc("clear", `Remove every variable, and unless keep_functions=True every user
function. Built-ins are always available afterwards.`)
}

type dumpOptions struct {
	vars, funcs, doc bool
	builtins, user   bool
}

func dumpScopes(c *CallCtx, onlyCurrent bool, o dumpOptions) error {
	scopes := c.CallerScopes()
	first := 0
	if onlyCurrent {
		first = len(scopes) - 1
	}
	var b strings.Builder
	for i := first; i < len(scopes); i++ {
		s := scopes[i]
		fmt.Fprintf(&b, "Scope %d:\n", i)
		if o.vars {
			for _, name := range s.VariableNames() {
				fmt.Fprintf(&b, "  %s = %s\n", name, FormatRepr(s.vars[name]))
			}
		}
		if o.funcs {
			for _, name := range s.FunctionNames() {
				fn := s.funcs[name]
				builtin := c.Ctx.IsBuiltin(fn)
				if (builtin && !o.builtins) || (!builtin && !o.user) {
					continue
				}
				fmt.Fprintf(&b, "  fn %s\n", fn.Describe())
				if o.doc && fn.Doc != "" {
					for _, line := range strings.Split(fn.Doc, "\n") {
						fmt.Fprintf(&b, "      %s\n", line)
					}
				}
			}
		}
	}
	_, err := io.WriteString(c.Stdout(), b.String())
	return err
}

func namesTuple(scopes []*Scope, list func(*Scope) []string) Value {
	var out []Value
	var seen []string
	for _, s := range scopes {
		for _, name := range list(s) {
			if slices.Contains(seen, name) {
				continue
			}
			seen = append(seen, name)
			out = append(out, Str(name))
		}
	}
	return Tuple(out)
}
