package compiler

// DeclKind says what a declared name denotes.
type DeclKind int

const (
	DeclConst DeclKind = iota
	DeclVar
	DeclProc
)

func (k DeclKind) String() string {
	switch k {
	case DeclConst:
		return "const"
	case DeclVar:
		return "var"
	case DeclProc:
		return "procedure"
	}
	return "unknown"
}

// Declaration is a name introduced by a const, var or procedure declaration.
type Declaration struct {
	Name  string
	Kind  DeclKind
	Span  Span   // span of the name
	Value int32  // value of a constant
	Scope string // enclosing procedure, empty at program level
	Depth int    // lexical nesting level, 0 at program level
}

// Declarations lists every declared name in source order.
func (n *Program) Declarations() []Declaration {
	var out []Declaration
	collectDecls(&n.Block, "", 0, &out)
	return out
}

func collectDecls(b *Block, scope string, depth int, out *[]Declaration) {
	for _, c := range b.Consts {
		*out = append(*out, Declaration{Name: c.Name.Name, Kind: DeclConst, Span: c.Name.SpanVal, Value: c.Value, Scope: scope, Depth: depth})
	}
	for _, v := range b.Vars {
		*out = append(*out, Declaration{Name: v.Name.Name, Kind: DeclVar, Span: v.Name.SpanVal, Scope: scope, Depth: depth})
	}
	for _, p := range b.Procs {
		*out = append(*out, Declaration{Name: p.Name.Name, Kind: DeclProc, Span: p.Name.SpanVal, Scope: scope, Depth: depth})
		collectDecls(&p.Block, p.Name.Name, depth+1, out)
	}
}
