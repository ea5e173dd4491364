package compiler

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented outline of the tree rooted at n.
func Dump(w io.Writer, n Node) error {
	d := &dumper{w: w}
	d.dump(n, 0)
	return d.err
}

type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) dump(n Node, depth int) {
	if d.err != nil || n == nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, "%s%s\n", strings.Repeat("  ", depth), label(n))
	name := nameOf(n)
	for _, c := range Children(n) {
		if id, ok := c.(*Ident); ok && id == name {
			continue
		}
		d.dump(c, depth+1)
	}
}

// nameOf returns the identifier that label(n) already shows, if any.
func nameOf(n Node) *Ident {
	switch n := n.(type) {
	case *ProcDecl:
		return n.Name
	case *ConstDecl:
		return n.Name
	case *VarDecl:
		return n.Name
	case *AssignStmt:
		return n.Name
	case *CallStmt:
		return n.Name
	case *ReadStmt:
		return n.Name
	}
	return nil
}

func label(n Node) string {
	switch n := n.(type) {
	case *Program:
		return "Program " + n.File
	case *ConstDecl:
		return fmt.Sprintf("ConstDecl %s = %d", n.Name.Name, n.Value)
	case *VarDecl:
		return "VarDecl " + n.Name.Name
	case *ProcDecl:
		return "ProcDecl " + n.Name.Name
	case *AssignStmt:
		return "Assign " + n.Name.Name
	case *CallStmt:
		return "Call " + n.Name.Name
	case *BeginStmt:
		return "Begin"
	case *IfStmt:
		return "If"
	case *WhileStmt:
		return "While"
	case *ReadStmt:
		return "Read " + n.Name.Name
	case *WriteStmt:
		return "Write"
	case *SkipStmt:
		return "Skip"
	case *OddCond:
		return "OddCond"
	case *BinCond:
		return "BinCond " + n.Op.String()
	case *BinExpr:
		return "BinExpr " + n.Op.String()
	case *UnaryExpr:
		return "UnaryExpr " + n.Op.String()
	case *Ident:
		return "Ident " + n.Name
	case *Number:
		return fmt.Sprintf("Number %d", n.Value)
	}
	return fmt.Sprintf("%T", n)
}
