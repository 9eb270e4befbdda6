package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pcineverdies/dummy-cc/internal/ast"
)

func TestParseGlobalsAndFunction(t *testing.T) {
	src := `
i32 counter = 0;
i32 add(i32 a, i32 b) {
	return a + b;
}
`
	prog, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Decls, 2)

	gv, ok := prog.Decls[0].(*ast.GlobalVar)
	require.True(t, ok)
	sym := prog.Symtab.Get(gv.Sym)
	require.Equal(t, "counter", sym.Name)

	fn, ok := prog.Decls[1].(*ast.FuncDef)
	require.True(t, ok)
	fnSym := prog.Symtab.Get(fn.Sym)
	require.Equal(t, "add", fnSym.Name)
	require.Len(t, fn.Params, 2)
}

func TestParseFunctionPrototypeThenDefinition(t *testing.T) {
	src := `
i32 square(i32 x);
i32 square(i32 x) {
	return x * x;
}
`
	_, err := Parse(src)
	require.NoError(t, err)
}

func TestParseRejectsGlobalRedeclaration(t *testing.T) {
	src := `
i32 x;
i32 x;
`
	_, err := Parse(src)
	require.Error(t, err)
}

func TestParseRejectsAssignTypeMismatch(t *testing.T) {
	src := `
void f() {
	i32 x = 0;
	x = 1 + 2;
}
`
	_, err := Parse(src)
	require.NoError(t, err)

	src2 := `
i32* p;
void f() {
	p = 5;
}
`
	_, err = Parse(src2)
	require.Error(t, err)
}

func TestParseRejectsUndeclaredIdent(t *testing.T) {
	src := `
void f() {
	y = 1;
}
`
	_, err := Parse(src)
	require.Error(t, err)
}

func TestParseRejectsBreakOutsideLoop(t *testing.T) {
	src := `
void f() {
	break;
}
`
	_, err := Parse(src)
	require.Error(t, err)
}

func TestParseAcceptsBreakInsideLoop(t *testing.T) {
	src := `
void f() {
	while (1) {
		break;
	}
}
`
	_, err := Parse(src)
	require.NoError(t, err)
}

func TestParseRejectsMissingReturn(t *testing.T) {
	src := `
i32 f() {
	i32 x = 0;
}
`
	_, err := Parse(src)
	require.Error(t, err)
}

func TestParseRejectsCallArityMismatch(t *testing.T) {
	src := `
i32 add(i32 a, i32 b) {
	return a + b;
}
void g() {
	add(1);
}
`
	_, err := Parse(src)
	require.Error(t, err)
}

func TestParseRejectsConstAssignment(t *testing.T) {
	src := `
void f() {
	const i32 x = 1;
	x = 2;
}
`
	_, err := Parse(src)
	require.Error(t, err)
}

func TestParseArraysAndIndex(t *testing.T) {
	src := `
i32 g[10];
void f() {
	i32 a[4];
	a[0] = 1;
	g[1] = a[0];
}
`
	_, err := Parse(src)
	require.NoError(t, err)
}

func TestParseRejectsNonU32GlobalArraySize(t *testing.T) {
	src := `
i32 n;
i32 g[n];
`
	_, err := Parse(src)
	require.Error(t, err)
}

func TestParseRejectsNonU32LocalArraySize(t *testing.T) {
	src := `
void f() {
	i32 n = (i32) 4;
	i32 a[n];
}
`
	_, err := Parse(src)
	require.Error(t, err)
}

func TestParseForLoopScopesInitVariable(t *testing.T) {
	src := `
void f() {
	for (i32 i = 0; i < 10; i = i + 1) {
		i32 y = i;
	}
}
`
	_, err := Parse(src)
	require.NoError(t, err)
}

func TestParseCastLegality(t *testing.T) {
	src := `
void f() {
	i32 x = 1;
	u8 y = (u8) x;
	i32* p = (i32*) x;
}
`
	_, err := Parse(src)
	require.NoError(t, err)
}

func TestParseRejectsCastPointerToNarrowInteger(t *testing.T) {
	src := `
void f() {
	i32* p;
	u8 y = (u8) p;
}
`
	_, err := Parse(src)
	require.Error(t, err)
}

func TestParseIfElseReturnCoverage(t *testing.T) {
	src := `
i32 f(i32 x) {
	if (x) {
		return 1;
	} else {
		return 0;
	}
}
`
	_, err := Parse(src)
	require.NoError(t, err)
}
