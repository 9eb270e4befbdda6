package ast

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pcineverdies/dummy-cc/internal/types"
)

func TestDumpGlobalVarWithInit(t *testing.T) {
	prog := &Program{Symtab: NewSymtab()}
	id, ok := prog.Symtab.Declare(Symbol{Name: "x", Type: types.I32()})
	require.True(t, ok)
	lit := &IntLit{Value: 5}
	lit.Typ = types.U32()
	gv := &GlobalVar{Sym: id, Init: lit}
	prog.Decls = append(prog.Decls, gv)

	out := Dump(prog)
	require.Contains(t, out, "GlobalVar x i32")
	require.Contains(t, out, "IntLit 5 u32")
}

func TestDumpFuncDefIndentsBody(t *testing.T) {
	prog := &Program{Symtab: NewSymtab()}
	fid, ok := prog.Symtab.Declare(Symbol{Name: "f", IsFunc: true, FuncRet: types.VoidT()})
	require.True(t, ok)
	body := &Compound{Stmts: []Stmt{&Return{}}}
	fd := &FuncDef{Sym: fid, Body: body}
	prog.Decls = append(prog.Decls, fd)

	out := Dump(prog)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Equal(t, "FuncDef f -> void", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "  Compound"))
	require.True(t, strings.HasPrefix(lines[2], "    Return"))
}

func TestDumpBinaryExpressionRecursesIntoOperands(t *testing.T) {
	prog := &Program{Symtab: NewSymtab()}
	left := &IntLit{Value: 1}
	left.Typ = types.I32()
	right := &IntLit{Value: 2}
	right.Typ = types.I32()
	bin := &Binary{Op: BAdd, Left: left, Right: right}
	bin.Typ = types.I32()
	fid, _ := prog.Symtab.Declare(Symbol{Name: "g", IsFunc: true, FuncRet: types.I32()})
	fd := &FuncDef{Sym: fid, Body: &Compound{Stmts: []Stmt{&Return{Value: bin}}}}
	prog.Decls = append(prog.Decls, fd)

	out := Dump(prog)
	require.Contains(t, out, "Binary op=")
	require.Contains(t, out, "IntLit 1 i32")
	require.Contains(t, out, "IntLit 2 i32")
}
