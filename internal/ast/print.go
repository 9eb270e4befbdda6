package ast

import (
	"fmt"
	"strings"
)

// Dump renders prog as an indented tree, one node per line, in the style
// of the teacher's Node.Print (depth-indented, recursing into children) —
// generalized from Node's single untyped Children slice to this
// package's typed-per-variant nodes, each recursing into exactly the
// children its own struct holds. Not part of any external contract
// (spec.md §7); it exists for the --print-ast flag.
func Dump(prog *Program) string {
	d := &dumper{b: &strings.Builder{}, st: prog.Symtab}
	for _, decl := range prog.Decls {
		d.decl(decl, 0)
	}
	return d.b.String()
}

type dumper struct {
	b  *strings.Builder
	st *Symtab
}

func (d *dumper) line(depth int, format string, args ...interface{}) {
	d.b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(d.b, format, args...)
	d.b.WriteString("\n")
}

func (d *dumper) decl(decl Decl, depth int) {
	switch v := decl.(type) {
	case *GlobalVar:
		sym := d.st.Get(v.Sym)
		d.line(depth, "GlobalVar %s %s", sym.Name, sym.Type)
		if v.Init != nil {
			d.expr(v.Init, depth+1)
		}
	case *GlobalArray:
		sym := d.st.Get(v.Sym)
		d.line(depth, "GlobalArray %s %s", sym.Name, sym.Type)
		d.expr(v.Size, depth+1)
	case *FuncProto:
		sym := d.st.Get(v.Sym)
		d.line(depth, "FuncProto %s -> %s", sym.Name, sym.FuncRet)
	case *FuncDef:
		sym := d.st.Get(v.Sym)
		d.line(depth, "FuncDef %s -> %s", sym.Name, sym.FuncRet)
		for i, p := range v.Params {
			psym := d.st.Get(p.Sym)
			d.line(depth+1, "Param#%d %s %s", i, psym.Name, psym.Type)
		}
		d.stmt(v.Body, depth+1)
	default:
		d.line(depth, "%T", decl)
	}
}

func (d *dumper) stmt(s Stmt, depth int) {
	if s == nil {
		return
	}
	switch v := s.(type) {
	case *Compound:
		d.line(depth, "Compound")
		for _, st := range v.Stmts {
			d.stmt(st, depth+1)
		}
	case *LocalDecl:
		sym := d.st.Get(v.Sym)
		d.line(depth, "LocalDecl %s %s", sym.Name, sym.Type)
		if v.Init != nil {
			d.expr(v.Init, depth+1)
		}
		if v.Size != nil {
			d.expr(v.Size, depth+1)
		}
	case *ExprStmt:
		d.line(depth, "ExprStmt")
		d.expr(v.X, depth+1)
	case *If:
		d.line(depth, "If")
		d.expr(v.Cond, depth+1)
		d.stmt(v.Then, depth+1)
		if v.Else != nil {
			d.stmt(v.Else, depth+1)
		}
	case *While:
		d.line(depth, "While")
		d.expr(v.Cond, depth+1)
		d.stmt(v.Body, depth+1)
	case *For:
		d.line(depth, "For")
		d.stmt(v.Init, depth+1)
		if v.Cond != nil {
			d.expr(v.Cond, depth+1)
		}
		if v.Step != nil {
			d.expr(v.Step, depth+1)
		}
		d.stmt(v.Body, depth+1)
	case *Return:
		d.line(depth, "Return")
		if v.Value != nil {
			d.expr(v.Value, depth+1)
		}
	case *Break:
		d.line(depth, "Break")
	case *Continue:
		d.line(depth, "Continue")
	default:
		d.line(depth, "%T", s)
	}
}

func (d *dumper) expr(e Expr, depth int) {
	if e == nil {
		return
	}
	switch v := e.(type) {
	case *IntLit:
		d.line(depth, "IntLit %d %s", v.Value, v.Type())
	case *CharLit:
		d.line(depth, "CharLit %q %s", v.Value, v.Type())
	case *Ident:
		d.line(depth, "Ident %s %s", v.Name, v.Type())
	case *Unary:
		d.line(depth, "Unary op=%d %s", v.Op, v.Type())
		d.expr(v.Operand, depth+1)
	case *Binary:
		d.line(depth, "Binary op=%d %s", v.Op, v.Type())
		d.expr(v.Left, depth+1)
		d.expr(v.Right, depth+1)
	case *Cast:
		d.line(depth, "Cast %s", v.Type())
		d.expr(v.Operand, depth+1)
	case *Index:
		d.line(depth, "Index %s", v.Type())
		d.expr(v.Base, depth+1)
		d.expr(v.Idx, depth+1)
	case *Call:
		d.line(depth, "Call %s %s", v.Name, v.Type())
		for _, a := range v.Args {
			d.expr(a, depth+1)
		}
	case *Assign:
		d.line(depth, "Assign %s", v.Type())
		d.expr(v.Target, depth+1)
		d.expr(v.Value, depth+1)
	default:
		d.line(depth, "%T", e)
	}
}
