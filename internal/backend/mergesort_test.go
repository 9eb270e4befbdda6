package backend

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pcineverdies/dummy-cc/internal/lir"
	"github.com/pcineverdies/dummy-cc/internal/parser"
	"github.com/pcineverdies/dummy-cc/internal/types"
)

// TestMergesortFixtureCompiles exercises the repository's end-to-end
// merge-sort fixture at --opt 2: main's LIR must end in Return(i32, 0) on
// the success path, and the selected assembly must actually spill at
// least one virtual register through a tp-relative slot, since checksum
// keeps eighteen values live at once, more than the sixteen registers of
// the allocatable pool.
func TestMergesortFixtureCompiles(t *testing.T) {
	src, err := os.ReadFile("../../testdata/mergesort.src")
	require.NoError(t, err)

	prog, err := parser.Parse(string(src))
	require.NoError(t, err)

	mod, err := lir.Generate(prog, 2)
	require.NoError(t, err)

	var main *lir.Function
	for _, fn := range mod.Functions {
		if fn.Name == "main" {
			main = fn
		}
	}
	require.NotNil(t, main, "mergesort.src must define main")
	require.NotEmpty(t, main.Instrs)

	last := main.Instrs[len(main.Instrs)-1]
	require.Equal(t, lir.OpReturn, last.Op)
	require.True(t, last.Type.Equal(types.I32()))

	defReg := last.Src1
	var castIns *lir.Instr
	for i := range main.Instrs {
		if main.Instrs[i].Op == lir.OpCast && main.Instrs[i].Dst == defReg {
			castIns = &main.Instrs[i]
		}
	}
	require.NotNil(t, castIns, "main's final return must cast through an (i32) conversion")

	var movcIns *lir.Instr
	for i := range main.Instrs {
		if main.Instrs[i].Op == lir.OpMovC && main.Instrs[i].Dst == castIns.Src1 {
			movcIns = &main.Instrs[i]
		}
	}
	require.NotNil(t, movcIns, "the cast operand must trace back to a materialized constant")
	require.EqualValues(t, 0, movcIns.Const)

	asm := Compile(mod)
	require.Contains(t, asm, ".globl main\n")
	require.Contains(t, asm, ".globl merge\n")
	require.Contains(t, asm, ".globl mergesort\n")
	require.Contains(t, asm, ".globl isSorted\n")

	hasSpillAccess := strings.Contains(asm, "(tp)\n")
	require.True(t, hasSpillAccess, "checksum's register pressure is expected to force at least one tp-relative spill slot")
}
