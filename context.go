// context.go: the scope stack.
//
// A Context is an ordered stack of Scopes. Scope 0 is the root: it is
// seeded with the built-ins at construction and never popped. The top of the
// stack is the current scope for declarations. Each Scope holds two
// independent tables, one for variables and one for functions, so a name may
// denote both a value and a callable.
//
// Lookups search from the top of the stack down to the root. Assignment to
// an existing name writes through to the nearest scope that holds it;
// assignment to an unknown name is a NameError (declare with let first).
package cobra

import (
	"bufio"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"slices"
	"sync/atomic"
)

// Scope is one frame of the stack.
type Scope struct {
	vars  map[string]Value
	funcs map[string]*Function
}

func newScope() *Scope {
	return &Scope{vars: map[string]Value{}, funcs: map[string]*Function{}}
}

// Variable returns the value bound to name in this scope only.
func (s *Scope) Variable(name string) (Value, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Function returns the function bound to name in this scope only.
func (s *Scope) Function(name string) (*Function, bool) {
	f, ok := s.funcs[name]
	return f, ok
}

// VariableNames lists the variables of this scope, sorted.
func (s *Scope) VariableNames() []string { return sortedKeys(s.vars) }

// FunctionNames lists the functions of this scope, sorted.
func (s *Scope) FunctionNames() []string { return sortedKeys(s.funcs) }

// Option configures a Context or an Interpreter.
type Option func(*settings)

type settings struct {
	stdout   io.Writer
	stderr   io.Writer
	stdin    io.Reader
	logger   *slog.Logger
	maxDepth int
	seed     *[2]uint64
	resolver ModuleResolver
	builtins *Builtins
}

func WithStdout(w io.Writer) Option { return func(s *settings) { s.stdout = w } }
func WithStderr(w io.Writer) Option { return func(s *settings) { s.stderr = w } }
func WithStdin(r io.Reader) Option  { return func(s *settings) { s.stdin = r } }

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxCallDepth bounds nested function calls; n <= 0 keeps the default.
func WithMaxCallDepth(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// WithRandSeed makes random() and choice() deterministic.
func WithRandSeed(a, b uint64) Option {
	return func(s *settings) { s.seed = &[2]uint64{a, b} }
}

// WithModuleResolver sets import resolution (Interpreter only).
func WithModuleResolver(r ModuleResolver) Option {
	return func(s *settings) { s.resolver = r }
}

// WithBuiltins replaces the standard built-in registry (Interpreter only).
func WithBuiltins(b *Builtins) Option {
	return func(s *settings) { s.builtins = b }
}

const DefaultMaxCallDepth = 1000

func defaultSettings(opts []Option) settings {
	s := settings{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		stdin:    os.Stdin,
		logger:   discardLogger(),
		maxDepth: DefaultMaxCallDepth,
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// Context owns the scope stack and the host resources natives may use.
type Context struct {
	scopes   []*Scope
	builtins *Builtins

	stdout io.Writer
	stderr io.Writer
	stdin  *bufio.Reader
	rng    *rand.Rand
	log    *slog.Logger

	maxDepth    int
	callDepth   int
	interrupted atomic.Bool
}

// NewContext builds a Context whose root scope holds every function in reg.
// A nil reg gives a Context without built-ins.
func NewContext(reg *Builtins, opts ...Option) *Context {
	s := defaultSettings(opts)
	if reg == nil {
		reg = NewBuiltins()
	}
	var src rand.Source
	if s.seed != nil {
		src = rand.NewPCG(s.seed[0], s.seed[1])
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	c := &Context{
		scopes:   []*Scope{newScope()},
		builtins: reg,
		stdout:   s.stdout,
		stderr:   s.stderr,
		stdin:    bufio.NewReader(s.stdin),
		rng:      rand.New(src),
		log:      s.logger,
		maxDepth: s.maxDepth,
	}
	c.RegisterBuiltins()
	return c
}

// Depth is the number of scopes on the stack, root included.
func (c *Context) Depth() int { return len(c.scopes) }

// Root is scope 0.
func (c *Context) Root() *Scope { return c.scopes[0] }

// Current is the top of the stack.
func (c *Context) Current() *Scope { return c.scopes[len(c.scopes)-1] }

// Scopes returns the stack from root to top.
func (c *Context) Scopes() []*Scope { return slices.Clone(c.scopes) }

func (c *Context) PushScope() {
	c.scopes = append(c.scopes, newScope())
	c.log.Debug("push scope", "depth", len(c.scopes))
}

// pushFrame puts an existing scope back on the stack, e.g. the module
// scope of a from-imported function.
func (c *Context) pushFrame(s *Scope) {
	c.scopes = append(c.scopes, s)
	c.log.Debug("push module scope", "depth", len(c.scopes))
}

// PopScope removes the top scope. Popping the root is a no-op.
func (c *Context) PopScope() {
	if len(c.scopes) <= 1 {
		c.log.Debug("pop scope ignored at root")
		return
	}
	c.scopes[len(c.scopes)-1] = nil
	c.scopes = c.scopes[:len(c.scopes)-1]
	c.log.Debug("pop scope", "depth", len(c.scopes))
}

// truncate drops scopes above depth n.
func (c *Context) truncate(n int) {
	for len(c.scopes) > max(n, 1) {
		c.PopScope()
	}
}

// Lookup finds the nearest variable called name.
func (c *Context) Lookup(name string) (Value, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if v, ok := c.scopes[i].vars[name]; ok {
			return v, true
		}
	}
	return Null, false
}

// Get is Lookup with a NameError for unknown names.
func (c *Context) Get(name string) (Value, error) {
	if v, ok := c.Lookup(name); ok {
		return v, nil
	}
	return Null, rtErrorf(NameError, "variable %q is not defined", name)
}

// Set overwrites name in the nearest scope that holds it.
func (c *Context) Set(name string, v Value) error {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if _, ok := c.scopes[i].vars[name]; ok {
			c.scopes[i].vars[name] = v
			return nil
		}
	}
	return rtErrorf(NameError, "variable %q is not defined", name)
}

// Declare binds name in the current scope, shadowing outer bindings.
func (c *Context) Declare(name string, v Value) { c.Current().vars[name] = v }

// DeclareGlobal binds name in the root scope.
func (c *Context) DeclareGlobal(name string, v Value) { c.Root().vars[name] = v }

// LookupFunction finds the nearest function called name.
func (c *Context) LookupFunction(name string) (*Function, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if f, ok := c.scopes[i].funcs[name]; ok {
			return f, true
		}
	}
	return nil, false
}

// DefineFunction binds fn in the current scope.
func (c *Context) DefineFunction(fn *Function) { c.Current().funcs[fn.Name] = fn }

// RegisterBuiltins (re)installs every registered built-in into the root
// scope. Calling it again is harmless.
func (c *Context) RegisterBuiltins() {
	for _, name := range c.builtins.Names() {
		fn, _ := c.builtins.Lookup(name)
		c.Root().funcs[name] = fn
	}
}

// IsBuiltin reports whether fn is the registered built-in of that name.
func (c *Context) IsBuiltin(fn *Function) bool {
	b, ok := c.builtins.Lookup(fn.Name)
	return ok && b == fn
}

// Clear empties the variable tables of every scope. Unless keepFunctions is
// set, function tables are emptied too and the built-ins are reinstalled.
func (c *Context) Clear(keepFunctions bool) {
	for _, s := range c.scopes {
		clear(s.vars)
		if !keepFunctions {
			clear(s.funcs)
		}
	}
	if !keepFunctions {
		c.RegisterBuiltins()
	}
}

// Interrupt asks the running evaluation to stop at the next loop iteration
// or call. It is safe to call from another goroutine.
func (c *Context) Interrupt() { c.interrupted.Store(true) }

func (c *Context) Stdout() io.Writer { return c.stdout }
func (c *Context) Stderr() io.Writer { return c.stderr }

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
