package compiler

// ---------------------------------------------------------------------------
// AST: Abstract Syntax Tree for PL/0
// ---------------------------------------------------------------------------

// Span represents a range in source code.
type Span struct {
	Start Position
	End   Position
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Span() Span
	node() // marker method
}

// RelOp is a relational operator.
type RelOp int

const (
	RelEq RelOp = iota
	RelNeq
	RelLss
	RelLeq
	RelGtr
	RelGeq
)

var relOpNames = [...]string{"=", "<>", "<", "<=", ">", ">="}

func (op RelOp) String() string { return relOpNames[op] }

// ArithOp is an arithmetic operator.
type ArithOp int

const (
	ArithAdd ArithOp = iota
	ArithSub
	ArithMul
	ArithDiv
)

var arithOpNames = [...]string{"+", "-", "*", "/"}

func (op ArithOp) String() string { return arithOpNames[op] }

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr() // marker method
}

// Number represents an integer literal.
type Number struct {
	SpanVal Span
	Value   int32
}

func (n *Number) Span() Span { return n.SpanVal }
func (n *Number) node()      {}
func (n *Number) expr()      {}

// Ident represents a reference to a constant or variable.
type Ident struct {
	SpanVal Span
	Name    string
}

func (n *Ident) Span() Span { return n.SpanVal }
func (n *Ident) node()      {}
func (n *Ident) expr()      {}

// BinExpr represents left op right.
type BinExpr struct {
	SpanVal Span
	Left    Expr
	Op      ArithOp
	Right   Expr
}

func (n *BinExpr) Span() Span { return n.SpanVal }
func (n *BinExpr) node()      {}
func (n *BinExpr) expr()      {}

// UnaryExpr represents a signed operand (+x, -x). Op is ArithAdd or ArithSub.
type UnaryExpr struct {
	SpanVal Span
	Op      ArithOp
	X       Expr
}

func (n *UnaryExpr) Span() Span { return n.SpanVal }
func (n *UnaryExpr) node()      {}
func (n *UnaryExpr) expr()      {}

// ---------------------------------------------------------------------------
// Condition nodes
// ---------------------------------------------------------------------------

// Cond is the interface for condition nodes.
type Cond interface {
	Node
	cond() // marker method
}

// OddCond represents "odd expr".
type OddCond struct {
	SpanVal Span
	X       Expr
}

func (n *OddCond) Span() Span { return n.SpanVal }
func (n *OddCond) node()      {}
func (n *OddCond) cond()      {}

// BinCond represents "expr relop expr".
type BinCond struct {
	SpanVal Span
	Left    Expr
	Op      RelOp
	Right   Expr
}

func (n *BinCond) Span() Span { return n.SpanVal }
func (n *BinCond) node()      {}
func (n *BinCond) cond()      {}

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt() // marker method
}

// AssignStmt represents "name := expr".
type AssignStmt struct {
	SpanVal Span
	Name    *Ident
	Value   Expr
}

func (n *AssignStmt) Span() Span { return n.SpanVal }
func (n *AssignStmt) node()      {}
func (n *AssignStmt) stmt()      {}

// CallStmt represents "call name".
type CallStmt struct {
	SpanVal Span
	Name    *Ident
}

func (n *CallStmt) Span() Span { return n.SpanVal }
func (n *CallStmt) node()      {}
func (n *CallStmt) stmt()      {}

// BeginStmt represents "begin stmt {; stmt} end".
type BeginStmt struct {
	SpanVal Span
	Stmts   []Stmt
}

func (n *BeginStmt) Span() Span { return n.SpanVal }
func (n *BeginStmt) node()      {}
func (n *BeginStmt) stmt()      {}

// IfStmt represents "if cond then stmt else stmt".
type IfStmt struct {
	SpanVal Span
	Cond    Cond
	Then    Stmt
	Else    Stmt
}

func (n *IfStmt) Span() Span { return n.SpanVal }
func (n *IfStmt) node()      {}
func (n *IfStmt) stmt()      {}

// WhileStmt represents "while cond do stmt".
type WhileStmt struct {
	SpanVal Span
	Cond    Cond
	Body    Stmt
}

func (n *WhileStmt) Span() Span { return n.SpanVal }
func (n *WhileStmt) node()      {}
func (n *WhileStmt) stmt()      {}

// ReadStmt represents "read name".
type ReadStmt struct {
	SpanVal Span
	Name    *Ident
}

func (n *ReadStmt) Span() Span { return n.SpanVal }
func (n *ReadStmt) node()      {}
func (n *ReadStmt) stmt()      {}

// WriteStmt represents "write expr".
type WriteStmt struct {
	SpanVal Span
	Value   Expr
}

func (n *WriteStmt) Span() Span { return n.SpanVal }
func (n *WriteStmt) node()      {}
func (n *WriteStmt) stmt()      {}

// SkipStmt represents "skip".
type SkipStmt struct {
	SpanVal Span
}

func (n *SkipStmt) Span() Span { return n.SpanVal }
func (n *SkipStmt) node()      {}
func (n *SkipStmt) stmt()      {}

// ---------------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------------

// Block is the body shared by the program and every procedure.
type Block struct {
	Consts []*ConstDecl
	Vars   []*VarDecl
	Procs  []*ProcDecl
	Body   Stmt
}

// ConstDecl represents one "name = number" entry of a const declaration.
type ConstDecl struct {
	SpanVal Span
	Name    *Ident
	Value   int32
}

func (n *ConstDecl) Span() Span { return n.SpanVal }
func (n *ConstDecl) node()      {}

// VarDecl represents one name of a var declaration.
type VarDecl struct {
	SpanVal Span
	Name    *Ident
}

func (n *VarDecl) Span() Span { return n.SpanVal }
func (n *VarDecl) node()      {}

// ProcDecl represents "procedure name; block;".
type ProcDecl struct {
	SpanVal Span
	Name    *Ident
	Block   Block
}

func (n *ProcDecl) Span() Span { return n.SpanVal }
func (n *ProcDecl) node()      {}

// Program is the root of a parsed source file.
type Program struct {
	SpanVal Span
	File    string
	Block   Block
}

func (n *Program) Span() Span { return n.SpanVal }
func (n *Program) node()      {}

// ---------------------------------------------------------------------------
// Traversal
// ---------------------------------------------------------------------------

func blockChildren(b *Block) []Node {
	var out []Node
	for _, c := range b.Consts {
		out = append(out, c)
	}
	for _, v := range b.Vars {
		out = append(out, v)
	}
	for _, p := range b.Procs {
		out = append(out, p)
	}
	if b.Body != nil {
		out = append(out, b.Body)
	}
	return out
}

// Children returns the direct children of n in source order.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Program:
		return blockChildren(&n.Block)
	case *ProcDecl:
		return append([]Node{n.Name}, blockChildren(&n.Block)...)
	case *ConstDecl:
		return []Node{n.Name}
	case *VarDecl:
		return []Node{n.Name}
	case *AssignStmt:
		return []Node{n.Name, n.Value}
	case *CallStmt:
		return []Node{n.Name}
	case *BeginStmt:
		out := make([]Node, len(n.Stmts))
		for i, s := range n.Stmts {
			out[i] = s
		}
		return out
	case *IfStmt:
		return []Node{n.Cond, n.Then, n.Else}
	case *WhileStmt:
		return []Node{n.Cond, n.Body}
	case *ReadStmt:
		return []Node{n.Name}
	case *WriteStmt:
		return []Node{n.Value}
	case *OddCond:
		return []Node{n.X}
	case *BinCond:
		return []Node{n.Left, n.Right}
	case *BinExpr:
		return []Node{n.Left, n.Right}
	case *UnaryExpr:
		return []Node{n.X}
	}
	return nil
}

// Inspect traverses the tree rooted at n in depth-first order, calling f for
// each node. Children are skipped when f returns false.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}
