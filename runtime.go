// runtime.go
//
// Functions and the built-in registry. A Function is either user-defined
// (Body set) or native (Native set); both go through the same argument
// binding before they run, so a native reads its arguments by parameter name
// from the scope the call pushed.
//
// Builtins is an explicit registry object. Every Context gets one at
// construction and installs its functions into the root scope; two
// Contexts built from different registries never see each other's natives.

package cobra

import (
	"fmt"
	"io"
	"slices"
)

// Param is a keyword parameter with its default.
type Param struct {
	Name    string
	Default Value
}

// Signature is the parameter list of a function: positionals, then an
// optional vararg, keyword parameters, and an optional varkwarg.
type Signature struct {
	Params   []string
	VarArg   string
	KwParams []Param
	VarKwArg string
}

// NativeImpl is the body of a built-in. Arguments are read with CallCtx.Arg.
type NativeImpl func(call *CallCtx) (Value, error)

type Function struct {
	Name string
	Signature
	Body   *FunctionBlock
	Native NativeImpl
	Doc    string

	// module is the scope a from-imported function was defined in; it sits
	// below the argument scope while the function runs.
	module *Scope
}

// Describe renders the signature, e.g. "print(*args, sep=' ', end='\n')".
func (f *Function) Describe() string {
	var parts []string
	parts = append(parts, f.Params...)
	if f.VarArg != "" {
		parts = append(parts, "*"+f.VarArg)
	}
	for _, p := range f.KwParams {
		parts = append(parts, p.Name+"="+FormatRepr(p.Default))
	}
	if f.VarKwArg != "" {
		parts = append(parts, "**"+f.VarKwArg)
	}
	s := f.Name + "("
	for i, p := range parts {
		if i > 0 {
			s += ", "
		}
		s += p
	}
	return s + ")"
}

func (f *Function) kwParam(name string) (int, bool) {
	for i, p := range f.KwParams {
		if p.Name == name {
			return i, true
		}
	}
	return -1, false
}

// CallCtx is what a native sees while it runs.
type CallCtx struct {
	Ctx *Context
	Fn  *Function
	Pos Position

	halted bool
	code   Value
}

// Arg returns the bound argument called name (Null if absent).
func (c *CallCtx) Arg(name string) Value {
	v, _ := c.Ctx.Current().Variable(name)
	return v
}

// CallerScopes is the stack below the native's own argument scope.
func (c *CallCtx) CallerScopes() []*Scope {
	s := c.Ctx.scopes
	return slices.Clone(s[:len(s)-1])
}

// Halt stops the whole program once the native returns.
func (c *CallCtx) Halt(code Value) {
	c.halted = true
	c.code = code
}

func (c *CallCtx) Stdout() io.Writer { return c.Ctx.stdout }

// Builtins maps names to native functions.
type Builtins struct {
	funcs map[string]*Function
}

func NewBuiltins() *Builtins { return &Builtins{funcs: map[string]*Function{}} }

// Register adds fn, replacing any built-in of the same name.
func (b *Builtins) Register(fn *Function) {
	if fn.Native == nil && fn.Body == nil {
		panic(fmt.Sprintf("builtin %q has no body", fn.Name))
	}
	b.funcs[fn.Name] = fn
}

// RegisterNative is Register for a native implementation.
func (b *Builtins) RegisterNative(name string, sig Signature, impl NativeImpl) {
	b.Register(&Function{Name: name, Signature: sig, Native: impl})
}

// SetDoc attaches help text shown by dump() and funcs().
func (b *Builtins) SetDoc(name, doc string) {
	if fn, ok := b.funcs[name]; ok {
		fn.Doc = doc
	}
}

func (b *Builtins) Lookup(name string) (*Function, bool) {
	fn, ok := b.funcs[name]
	return fn, ok
}

// Names lists the registered names, sorted.
func (b *Builtins) Names() []string { return sortedKeys(b.funcs) }

// StdBuiltins returns a fresh registry with the standard library.
func StdBuiltins() *Builtins {
	b := NewBuiltins()
	registerCoreBuiltins(b)
	registerCollectionBuiltins(b)
	registerStringBuiltins(b)
	registerFileBuiltins(b)
	registerMiscBuiltins(b)
	registerSysBuiltins(b)
	registerIntrospectionBuiltins(b)
	return b
}

//// END_OF_PUBLIC

// argStr reads a String argument or fails with a TypeError naming it.
func argStr(c *CallCtx, name string) (string, error) {
	v := c.Arg(name)
	if v.Tag != VTStr {
		return "", rtErrorf(TypeError, "%s() argument %q must be String, not %s", c.Fn.Name, name, v.TypeName())
	}
	return v.Data.(string), nil
}

func argInt(c *CallCtx, name string) (int64, error) {
	v := c.Arg(name)
	if v.Tag != VTInt {
		return 0, rtErrorf(TypeError, "%s() argument %q must be Integer, not %s", c.Fn.Name, name, v.TypeName())
	}
	return v.Data.(int64), nil
}

func argList(c *CallCtx, name string) (*ListObject, error) {
	v := c.Arg(name)
	if v.Tag != VTList {
		return nil, rtErrorf(TypeError, "%s() argument %q must be List, not %s", c.Fn.Name, name, v.TypeName())
	}
	return v.Data.(*ListObject), nil
}
