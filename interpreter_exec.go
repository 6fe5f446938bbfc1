// interpreter_exec.go: the tree-walking evaluator.
//
// Statements are executed by exec, which returns the statement's value and a
// control signal (none, return or break). Signals travel back up through
// blocks and loops by ordinary returns; every scope push is paired with a
// deferred pop, so the stack is balanced on all exit paths.
//
// Two things unwind with panic instead: runtime errors (*RuntimeError) and
// exit() (haltSignal). Both are recovered only in Program.Run, and the
// deferred pops run on the way out.
//
// Expressions are evaluated by expr and cannot produce return/break.
package cobra

import (
	"errors"
	"slices"
	"strconv"
)

// Outcome says how a Program finished.
type Outcome int

const (
	Completed Outcome = iota // ran off the end
	Returned                 // top-level return or break
	Halted                   // exit() was called
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Returned:
		return "returned"
	case Halted:
		return "halted"
	}
	return "unknown"
}

// Result is what a Program evaluated to. ExitCode is only meaningful for
// Halted and may be Null.
type Result struct {
	Outcome  Outcome
	Value    Value
	ExitCode Value
}

// Run executes the program's statements in ctx's current scope. Runtime
// errors come back as *RuntimeError; exit() comes back as a Halted Result.
// Whatever happens, the scope stack is restored to the depth it had on
// entry.
func (p *Program) Run(ctx *Context) (res Result, err error) {
	depth, calls := ctx.Depth(), ctx.callDepth
	ctx.interrupted.Store(false)
	ctx.log.Debug("program start", "file", p.File, "statements", len(p.Stmts))
	defer func() {
		ctx.truncate(depth)
		ctx.callDepth = calls
		if r := recover(); r != nil {
			switch x := r.(type) {
			case haltSignal:
				res, err = Result{Outcome: Halted, Value: Null, ExitCode: x.code}, nil
			case *RuntimeError:
				if x.File == "" {
					x.File = p.File
				}
				res, err = Result{Value: Null, ExitCode: Null}, x
			default:
				panic(r)
			}
		}
		ctx.log.Debug("program end", "file", p.File, "outcome", res.Outcome.String())
	}()

	ev := &evaluator{ctx: ctx}
	v, sig := ev.stmts(p.Stmts)
	if sig.kind != ctrlNone {
		return Result{Outcome: Returned, Value: sig.val, ExitCode: Null}, nil
	}
	return Result{Outcome: Completed, Value: v, ExitCode: Null}, nil
}

//// END_OF_PUBLIC

type ctrlKind uint8

const (
	ctrlNone ctrlKind = iota
	ctrlReturn
	ctrlBreak
)

type signal struct {
	kind ctrlKind
	val  Value
}

var none = signal{}

type haltSignal struct{ code Value }

type namedArg struct {
	name string
	val  Value
}

type evaluator struct {
	ctx *Context
}

// fail raises err as a *RuntimeError located at n unless it already
// carries a position.
func (ev *evaluator) fail(n Node, err error) {
	var re *RuntimeError
	if !errors.As(err, &re) {
		re = &RuntimeError{Kind: HostError, Msg: err.Error()}
	}
	if re.Pos.Line == 0 {
		re.Pos = n.Pos()
		re.File = fileOf(n)
	}
	panic(re)
}

func (ev *evaluator) failf(n Node, kind RuntimeErrorKind, format string, args ...any) {
	ev.fail(n, rtErrorf(kind, format, args...))
}

func (ev *evaluator) check(n Node, err error) {
	if err != nil {
		ev.fail(n, err)
	}
}

func (ev *evaluator) checkInterrupt(n Node) {
	if ev.ctx.interrupted.Load() {
		ev.failf(n, Interrupted, "interrupted")
	}
}

////////////////////////////////////////////////////////////////////////////////
// statements
////////////////////////////////////////////////////////////////////////////////

// stmts runs a statement list in the current scope. The value is the last
// non-null statement value.
func (ev *evaluator) stmts(list []Node) (Value, signal) {
	last := Null
	for _, n := range list {
		v, sig := ev.exec(n)
		if sig.kind != ctrlNone {
			return last, sig
		}
		if !v.IsNull() {
			last = v
		}
	}
	return last, none
}

func (ev *evaluator) exec(n Node) (Value, signal) {
	switch x := n.(type) {
	case *LetDecl:
		ev.ctx.Declare(x.Name, ev.expr(x.Value))
		return Null, none
	case *Assign:
		ev.assign(x)
		return Null, none
	case *Block:
		return ev.block(x)
	case *If:
		for _, br := range x.Branches {
			if Truthy(ev.expr(br.Cond)) {
				return ev.block(br.Body)
			}
		}
		return Null, none
	case *While:
		return ev.while(x)
	case *For:
		return ev.forLoop(x)
	case *Return:
		return Null, signal{kind: ctrlReturn, val: ev.expr(x.Value)}
	case *Break:
		return Null, signal{kind: ctrlBreak, val: Null}
	case *FunctionDef:
		ev.define(x)
		return Null, none
	case *FromImport:
		ev.fromImport(x)
		return Null, none
	}
	return ev.expr(n), none
}

func (ev *evaluator) block(b *Block) (Value, signal) {
	ev.ctx.PushScope()
	defer ev.ctx.PopScope()
	return ev.stmts(b.Stmts)
}

func (ev *evaluator) while(w *While) (Value, signal) {
	last := Null
	for {
		ev.checkInterrupt(w)
		if !Truthy(ev.expr(w.Cond)) {
			return last, none
		}
		v, sig := ev.block(w.Body)
		switch sig.kind {
		case ctrlBreak:
			return last, none
		case ctrlReturn:
			return Null, sig
		}
		last = v
	}
}

func (ev *evaluator) forLoop(f *For) (Value, signal) {
	items, err := Iterate(ev.expr(f.Iterable))
	ev.check(f.Iterable, err)
	k := len(f.Vars)
	if len(items)%k != 0 {
		ev.failf(f, ValueError, "cannot unpack %d values into %d loop variables", len(items), k)
	}

	ev.ctx.PushScope()
	defer ev.ctx.PopScope()
	last := Null
	for i := 0; i < len(items); i += k {
		ev.checkInterrupt(f)
		for j, name := range f.Vars {
			ev.ctx.Declare(name, items[i+j])
		}
		v, sig := ev.block(f.Body)
		switch sig.kind {
		case ctrlBreak:
			return last, none
		case ctrlReturn:
			return Null, sig
		}
		last = v
	}
	return last, none
}

func (ev *evaluator) assign(a *Assign) {
	v := ev.expr(a.Value)
	switch t := a.Target.(type) {
	case *VarRef:
		ev.check(t, ev.ctx.Set(t.Name, v))
	case *Subscript:
		target := ev.expr(t.Target)
		ev.check(t, SetIndex(target, ev.subscriptKey(t), v))
	default:
		ev.failf(a, TypeError, "cannot assign to %T", a.Target)
	}
}

func (ev *evaluator) subscriptKey(s *Subscript) Value {
	if s.Mode == SubscriptSlice {
		return SliceOf(ev.optExpr(s.Start), ev.optExpr(s.Stop))
	}
	return ev.expr(s.Index)
}

// define evaluates keyword defaults once, now, and binds the function in
// the current scope. A leading string literal becomes the doc text.
func (ev *evaluator) define(d *FunctionDef) {
	fn := &Function{
		Name: d.Name,
		Signature: Signature{
			Params:   slices.Clone(d.Params),
			VarArg:   d.VarArg,
			VarKwArg: d.VarKwArg,
		},
		Body: d.Body,
	}
	for _, kp := range d.KwParams {
		fn.KwParams = append(fn.KwParams, Param{Name: kp.Name, Default: ev.expr(kp.Default)})
	}
	if len(d.Body.Stmts) > 0 {
		if s, ok := d.Body.Stmts[0].(*StringLit); ok {
			fn.Doc = s.Value
		}
	}
	ev.ctx.DefineFunction(fn)
}

// fromImport runs the module in a scope of its own and copies the requested
// names, variable and/or function, into the importing scope.
func (ev *evaluator) fromImport(x *FromImport) {
	type binding struct {
		v    Value
		hasV bool
		fn   *Function
	}
	found := make([]binding, len(x.Names))
	var module *Scope
	func() {
		ev.ctx.PushScope()
		defer ev.ctx.PopScope()
		module = ev.ctx.Current()
		ev.stmts(x.Body.Stmts)
		for i, name := range x.Names {
			found[i].v, found[i].hasV = module.Variable(name)
			found[i].fn, _ = module.Function(name)
		}
	}()
	for i, name := range x.Names {
		b := found[i]
		if !b.hasV && b.fn == nil {
			ev.failf(x, ImportError, "cannot import %q from %q", name, x.Module)
		}
		if b.hasV {
			ev.ctx.Declare(name, b.v)
		}
		if b.fn != nil {
			fn := b.fn
			if fn.module == nil {
				imported := *fn
				imported.module = module
				fn = &imported
			}
			ev.ctx.Current().funcs[name] = fn
		}
	}
	ev.ctx.log.Debug("from import", "module", x.Module, "names", x.Names)
}

////////////////////////////////////////////////////////////////////////////////
// expressions
////////////////////////////////////////////////////////////////////////////////

func (ev *evaluator) expr(n Node) Value {
	switch x := n.(type) {
	case *StringLit:
		return Str(x.Value)
	case *IntegerLit:
		i, err := strconv.ParseInt(x.Text, 10, 64)
		if err != nil {
			ev.failf(x, ValueError, "integer literal %s is out of range", x.Text)
		}
		return Int(i)
	case *FloatLit:
		f, err := strconv.ParseFloat(x.Text, 64)
		if err != nil {
			ev.failf(x, ValueError, "invalid float literal %s", x.Text)
		}
		return Float(f)
	case *BooleanLit:
		return Bool(x.Value)
	case *NullLit:
		return Null
	case *ListLit:
		return List(ev.exprs(x.Elems))
	case *TupleLit:
		return Tuple(ev.exprs(x.Elems))
	case *DictLit:
		d := NewDict()
		for _, e := range x.Entries {
			k := ev.expr(e.Key)
			ev.check(e.Key, d.Set(k, ev.expr(e.Value)))
		}
		return Dict(d)
	case *VarRef:
		v, err := ev.ctx.Get(x.Name)
		ev.check(x, err)
		return v
	case *Subscript:
		target := ev.expr(x.Target)
		var (
			v   Value
			err error
		)
		if x.Mode == SubscriptSlice {
			v, err = Slice(target, ev.optExpr(x.Start), ev.optExpr(x.Stop))
		} else {
			v, err = Index(target, ev.expr(x.Index))
		}
		ev.check(x, err)
		return v
	case *BinaryOp:
		return ev.binary(x)
	case *UnaryOp:
		v, err := UnaryOperation(x.Op, ev.expr(x.Operand))
		ev.check(x, err)
		return v
	case *Call:
		return ev.call(x)
	}
	ev.failf(n, TypeError, "%T is not an expression", n)
	return Null
}

func (ev *evaluator) optExpr(n Node) Value {
	if n == nil {
		return Null
	}
	return ev.expr(n)
}

func (ev *evaluator) exprs(ns []Node) []Value {
	out := make([]Value, 0, len(ns))
	for _, n := range ns {
		out = append(out, ev.expr(n))
	}
	return out
}

func (ev *evaluator) binary(b *BinaryOp) Value {
	left := ev.expr(b.Left)
	switch b.Op {
	case AND:
		if !Truthy(left) {
			return left
		}
		return ev.expr(b.Right)
	case OR:
		if Truthy(left) {
			return left
		}
		return ev.expr(b.Right)
	}
	v, err := BinaryOperation(b.Op, left, ev.expr(b.Right))
	ev.check(b, err)
	return v
}

////////////////////////////////////////////////////////////////////////////////
// calls
////////////////////////////////////////////////////////////////////////////////

func (ev *evaluator) call(c *Call) Value {
	fn, ok := ev.ctx.LookupFunction(c.Name)
	if !ok {
		ev.failf(c, NameError, "function %q is not defined", c.Name)
	}
	args := ev.exprs(c.Args)
	kwargs := make([]namedArg, 0, len(c.Kwargs))
	for _, kw := range c.Kwargs {
		kwargs = append(kwargs, namedArg{name: kw.Name, val: ev.expr(kw.Value)})
	}
	return ev.invoke(c, fn, args, kwargs)
}

func (ev *evaluator) invoke(at Node, fn *Function, args []Value, kwargs []namedArg) Value {
	ev.checkInterrupt(at)
	if ev.ctx.callDepth >= ev.ctx.maxDepth {
		ev.failf(at, RecursionError, "maximum call depth of %d exceeded in %s()", ev.ctx.maxDepth, fn.Name)
	}
	bound := ev.bind(at, fn, args, kwargs)
	ev.ctx.log.Debug("call", "function", fn.Name, "args", len(args), "kwargs", len(kwargs))

	if fn.module != nil {
		ev.ctx.pushFrame(fn.module)
		defer ev.ctx.PopScope()
	}
	ev.ctx.PushScope()
	ev.ctx.callDepth++
	defer func() {
		ev.ctx.callDepth--
		ev.ctx.PopScope()
	}()
	for name, v := range bound {
		ev.ctx.Declare(name, v)
	}

	if fn.Native != nil {
		cc := &CallCtx{Ctx: ev.ctx, Fn: fn, Pos: at.Pos()}
		v, err := fn.Native(cc)
		ev.check(at, err)
		if cc.halted {
			panic(haltSignal{code: cc.code})
		}
		return v
	}
	v, sig := ev.stmts(fn.Body.Stmts)
	switch sig.kind {
	case ctrlReturn:
		return sig.val
	case ctrlBreak:
		return Null
	}
	return v
}

// bind matches arguments to fn's signature. Positionals fill the declared
// positional parameters and overflow into the vararg tuple; keywords may
// name a positional or keyword parameter, anything else lands in the
// varkwarg dict.
func (ev *evaluator) bind(at Node, fn *Function, args []Value, kwargs []namedArg) map[string]Value {
	out := make(map[string]Value, len(fn.Params)+len(fn.KwParams)+2)
	np := len(fn.Params)
	for i := 0; i < len(args) && i < np; i++ {
		out[fn.Params[i]] = args[i]
	}
	var extra []Value
	if len(args) > np {
		if fn.VarArg == "" {
			ev.failf(at, ArityError, "%s() takes %d positional arguments but %d were given", fn.Name, np, len(args))
		}
		extra = slices.Clone(args[np:])
	}
	for _, p := range fn.KwParams {
		out[p.Name] = p.Default
	}

	var varkw *DictObject
	if fn.VarKwArg != "" {
		varkw = NewDict()
	}
	for _, kw := range kwargs {
		if i := slices.Index(fn.Params, kw.name); i >= 0 {
			if i < len(args) {
				ev.failf(at, ArityError, "%s() got multiple values for argument %q", fn.Name, kw.name)
			}
			out[kw.name] = kw.val
			continue
		}
		if _, ok := fn.kwParam(kw.name); ok {
			out[kw.name] = kw.val
			continue
		}
		if varkw == nil {
			ev.failf(at, ArityError, "%s() got an unexpected keyword argument %q", fn.Name, kw.name)
		}
		_ = varkw.Set(Str(kw.name), kw.val)
	}

	for _, p := range fn.Params {
		if _, ok := out[p]; !ok {
			ev.failf(at, ArityError, "%s() missing required argument %q", fn.Name, p)
		}
	}
	if fn.VarArg != "" {
		out[fn.VarArg] = Tuple(extra)
	}
	if varkw != nil {
		out[fn.VarKwArg] = Dict(varkw)
	}
	return out
}
