// ast.go: the closed set of syntax-tree nodes produced by the parser.
//
// Every node embeds `base`, which carries the source position, the file the
// tokens came from (imports splice foreign tokens into a parse), and the
// unexported marker method that closes the Node interface to this package.
// Evaluation is a single type switch in interpreter_exec.go; there are no
// per-node eval methods.
package cobra

// Node is any syntax-tree node.
type Node interface {
	Pos() Position
	node()
}

type base struct {
	At   Position
	File string
}

func (b base) Pos() Position { return b.At }
func (base) node()           {}

// fileOf is the source file a node was parsed from.
func fileOf(n Node) string {
	type filer interface{ sourceFile() string }
	if f, ok := n.(filer); ok {
		return f.sourceFile()
	}
	return ""
}

func (b base) sourceFile() string { return b.File }

// ---- literals ----

type StringLit struct {
	base
	Value string
}

// IntegerLit and FloatLit keep the literal text; conversion happens when the
// node is evaluated.
type IntegerLit struct {
	base
	Text string
}

type FloatLit struct {
	base
	Text string
}

type BooleanLit struct {
	base
	Value bool
}

type NullLit struct{ base }

type ListLit struct {
	base
	Elems []Node
}

type TupleLit struct {
	base
	Elems []Node
}

type DictEntry struct {
	Key   Node
	Value Node
}

type DictLit struct {
	base
	Entries []DictEntry
}

// ---- references & operators ----

type VarRef struct {
	base
	Name string
}

// SubscriptMode tells an index apart from a slice.
type SubscriptMode int

const (
	SubscriptIndex SubscriptMode = iota
	SubscriptSlice
)

// Subscript is target[index] or target[start:stop]. Start and Stop may be
// nil for an open bound.
type Subscript struct {
	base
	Target Node
	Mode   SubscriptMode
	Index  Node
	Start  Node
	Stop   Node
}

type BinaryOp struct {
	base
	Op    TokenType
	Left  Node
	Right Node
}

type UnaryOp struct {
	base
	Op      TokenType // PLUS, MINUS or NOT
	Operand Node
}

type KwArg struct {
	Name  string
	Value Node
}

type Call struct {
	base
	Name   string
	Args   []Node
	Kwargs []KwArg
}

// ---- statements ----

// Assign writes to a VarRef or Subscript target. Compound forms are
// desugared by the parser.
type Assign struct {
	base
	Target Node
	Value  Node

	op TokenType // the assignment operator as written
}

type LetDecl struct {
	base
	Name  string
	Value Node
}

// Block runs in its own scope.
type Block struct {
	base
	Stmts []Node
}

// FunctionBlock is a function body; the call has already pushed the scope.
type FunctionBlock struct {
	base
	Stmts []Node
}

// Program is the root of a parse; base.File is the file it was parsed as.
type Program struct {
	base
	Stmts []Node
}

type IfBranch struct {
	Cond Node
	Body *Block
}

// If holds every branch in order; an else branch has a BooleanLit(true)
// condition.
type If struct {
	base
	Branches []IfBranch
}

type While struct {
	base
	Cond Node
	Body *Block
}

type For struct {
	base
	Vars     []string
	Iterable Node
	Body     *Block
}

type Return struct {
	base
	Value Node
}

type Break struct{ base }

type KwParam struct {
	Name    string
	Default Node
}

type FunctionDef struct {
	base
	Name     string
	Params   []string
	VarArg   string
	KwParams []KwParam
	VarKwArg string
	Body     *FunctionBlock
}

// FromImport runs Module's program in an isolated scope and copies Names
// into the enclosing one.
type FromImport struct {
	base
	Module string
	Path   string
	Names  []string
	Body   *Program
}
