package lir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pcineverdies/dummy-cc/internal/types"
)

func TestDeadCodePassDropsUnusedPureInstr(t *testing.T) {
	fn := &Function{
		Name: "f",
		Instrs: []Instr{
			{Op: OpMovC, Dst: 0, Const: 1, Type: types.I32()},
			{Op: OpMovC, Dst: 1, Const: 2, Type: types.I32()},
			{Op: OpReturn, Src1: 0, Type: types.I32()},
		},
	}
	Optimize(fn)
	require.Len(t, fn.Instrs, 2)
	require.Equal(t, OpMovC, fn.Instrs[0].Op)
	require.Equal(t, Reg(0), fn.Instrs[0].Dst)
	require.Equal(t, OpReturn, fn.Instrs[1].Op)
}

func TestDeadCodePassKeepsSideEffectfulInstrs(t *testing.T) {
	fn := &Function{
		Name: "f",
		Instrs: []Instr{
			{Op: OpMovC, Dst: 0, Const: 1, Type: types.I32()},
			{Op: OpStore, Src1: 0, Src2: 0, Type: types.I32()},
			{Op: OpReturn, Src1: NoReg, Type: types.VoidT()},
		},
	}
	Optimize(fn)
	require.Len(t, fn.Instrs, 3)
}

func TestDeadCodePassIsIdempotent(t *testing.T) {
	fn := &Function{
		Name: "f",
		Instrs: []Instr{
			{Op: OpMovC, Dst: 0, Const: 1, Type: types.I32()},
			{Op: OpMovC, Dst: 1, Const: 2, Type: types.I32()},
			{Op: OpReturn, Src1: 0, Type: types.I32()},
		},
	}
	Optimize(fn)
	first := append([]Instr(nil), fn.Instrs...)
	Optimize(fn)
	require.Equal(t, first, fn.Instrs)
}

func TestControlFlowPassDropsUnreachableBlock(t *testing.T) {
	fn := &Function{
		Name: "f",
		Instrs: []Instr{
			{Op: OpReturn, Src1: NoReg, Type: types.VoidT()},
			{Op: OpLabel, Target: 0},
			{Op: OpMovC, Dst: 0, Const: 9, Type: types.I32()},
			{Op: OpReturn, Src1: NoReg, Type: types.VoidT()},
		},
	}
	changed := controlFlowPass(fn)
	require.True(t, changed)
	require.Len(t, fn.Instrs, 1)
	require.Equal(t, OpReturn, fn.Instrs[0].Op)
}

func TestControlFlowPassCollapsesJumpToNextLabel(t *testing.T) {
	fn := &Function{
		Name: "f",
		Instrs: []Instr{
			{Op: OpBranch, Branch: BrJmp, Target: 0},
			{Op: OpLabel, Target: 0},
			{Op: OpReturn, Src1: NoReg, Type: types.VoidT()},
		},
	}
	changed := controlFlowPass(fn)
	require.True(t, changed)
	require.Len(t, fn.Instrs, 1)
	require.Equal(t, OpReturn, fn.Instrs[0].Op)
}

func TestControlFlowPassDropsUnusedLabel(t *testing.T) {
	fn := &Function{
		Name: "f",
		Instrs: []Instr{
			{Op: OpLabel, Target: 5},
			{Op: OpReturn, Src1: NoReg, Type: types.VoidT()},
		},
	}
	changed := controlFlowPass(fn)
	require.True(t, changed)
	require.Len(t, fn.Instrs, 1)
	require.Equal(t, OpReturn, fn.Instrs[0].Op)
}

func TestControlFlowPassKeepsReachableBranchTargets(t *testing.T) {
	fn := &Function{
		Name: "f",
		Instrs: []Instr{
			{Op: OpBranch, Branch: BrSet, Src1: 0, Target: 0},
			{Op: OpMovC, Dst: 1, Const: 1, Type: types.I32()},
			{Op: OpLabel, Target: 0},
			{Op: OpReturn, Src1: NoReg, Type: types.VoidT()},
		},
	}
	changed := controlFlowPass(fn)
	require.False(t, changed)
	require.Len(t, fn.Instrs, 4)
}

func TestOptimizeConvergesOnDeadBranchAndDeadConst(t *testing.T) {
	fn := &Function{
		Name: "f",
		Instrs: []Instr{
			{Op: OpBranch, Branch: BrJmp, Target: 0},
			{Op: OpMovC, Dst: 0, Const: 1, Type: types.I32()},
			{Op: OpLabel, Target: 0},
			{Op: OpReturn, Src1: NoReg, Type: types.VoidT()},
		},
	}
	Optimize(fn)
	require.Len(t, fn.Instrs, 1)
	require.Equal(t, OpReturn, fn.Instrs[0].Op)
}
