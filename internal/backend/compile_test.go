package backend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pcineverdies/dummy-cc/internal/lir"
	"github.com/pcineverdies/dummy-cc/internal/parser"
)

func genModule(t *testing.T, src string, opt int) *lir.Module {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	mod, err := lir.Generate(prog, opt)
	require.NoError(t, err)
	return mod
}

func TestCompileEmitsTextSectionAndFunctionLabels(t *testing.T) {
	mod := genModule(t, `
i32 add(i32 a, i32 b) {
	return a + b;
}
`, 0)
	asm := Compile(mod)
	require.True(t, strings.HasPrefix(asm, ".text\n"))
	require.Contains(t, asm, ".globl add\n")
	require.Contains(t, asm, "add:\n")
	require.Contains(t, asm, "\tret\n")
}

func TestCompileEmitsDataSectionForGlobals(t *testing.T) {
	mod := genModule(t, `
i32 counter;
i32 f() {
	return counter;
}
`, 0)
	asm := Compile(mod)
	require.Contains(t, asm, "\n.data\n")
	require.Contains(t, asm, ".globl G_counter\n")
	require.Contains(t, asm, "G_counter:\n")
	require.Contains(t, asm, "\t.zero 4\n")
}

func TestCompileMainCallsInitToRunGlobalInitializers(t *testing.T) {
	mod := genModule(t, `
i32 g = 5;
i32 main() {
	return g;
}
`, 0)
	asm := Compile(mod)
	require.Contains(t, asm, ".globl init\n")
	require.Contains(t, asm, "init:\n")

	mainStart := strings.Index(asm, "\nmain:\n")
	require.GreaterOrEqual(t, mainStart, 0)
	mainBody := asm[mainStart:]
	nextLabel := strings.Index(mainBody[1:], "\n.globl ")
	if nextLabel >= 0 {
		mainBody = mainBody[:nextLabel+1]
	}
	require.Contains(t, mainBody, "jal\tra, init", "main must call init so global initializers actually run")
}

func TestCompileOmitsDataSectionWithNoGlobals(t *testing.T) {
	mod := genModule(t, `
void f() {}
`, 0)
	asm := Compile(mod)
	require.NotContains(t, asm, ".data")
}

func TestCompileArrayGlobalSizedByElementCount(t *testing.T) {
	mod := genModule(t, `
i32 arr[10];
void f() {}
`, 0)
	asm := Compile(mod)
	require.Contains(t, asm, "\t.zero 40\n")
}

func TestCompileFunctionWithManyLocalsProducesValidPrologue(t *testing.T) {
	mod := genModule(t, `
i32 f() {
	i32 a = 1;
	i32 b = 2;
	i32 c = 3;
	i32 d = 4;
	i32 e = 5;
	return a + b + c + d + e;
}
`, 0)
	asm := Compile(mod)
	require.Contains(t, asm, "\taddi\tsp, sp,")
	require.Contains(t, asm, "\tsw\tra,")
	require.Contains(t, asm, "\tsw\ts0,")
	require.Contains(t, asm, "\tmv\ts0, sp\n")
}
