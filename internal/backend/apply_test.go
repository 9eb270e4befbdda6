package backend

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pcineverdies/dummy-cc/internal/lir"
)

func TestApplyAllocationRewritesVirtualToPhysical(t *testing.T) {
	instrs := []AsmInstr{addIns(2, 0, 1)}
	res := &allocResult{
		phys: map[lir.Reg]lir.Reg{0: P("t0"), 1: P("t1"), 2: P("t2")},
	}
	fl := buildFrame(nil, nil)
	out := applyAllocation(instrs, res, fl)
	require.Len(t, out, 1)
	require.Equal(t, P("t0"), out[0].Rs1)
	require.Equal(t, P("t1"), out[0].Rs2)
	require.Equal(t, P("t2"), out[0].Rd)
}

func TestApplyAllocationReloadsSpilledSourceIntoS10(t *testing.T) {
	instrs := []AsmInstr{addIns(1, 0, 0)}
	res := &allocResult{
		phys:      map[lir.Reg]lir.Reg{1: P("t0")},
		spillSlot: map[lir.Reg]int{0: 3},
	}
	fl := buildFrame(nil, nil)
	out := applyAllocation(instrs, res, fl)

	// Two reloads (both Rs1 and Rs2 are the same spilled virtual, but
	// each is resolved independently, into s10 then s11) followed by the add.
	require.Len(t, out, 3)
	require.Equal(t, KLoad, out[0].Kind)
	require.Equal(t, P("s10"), out[0].Rd)
	require.Equal(t, spillOffset(3), out[0].Imm)
	require.Equal(t, KLoad, out[1].Kind)
	require.Equal(t, P("s11"), out[1].Rd)
	require.Equal(t, P("s10"), out[2].Rs1)
	require.Equal(t, P("s11"), out[2].Rs2)
}

func TestApplyAllocationStoresSpilledDestFromS10(t *testing.T) {
	instrs := []AsmInstr{addIns(0, 1, 1)}
	res := &allocResult{
		phys:      map[lir.Reg]lir.Reg{1: P("t0")},
		spillSlot: map[lir.Reg]int{0: 1},
	}
	fl := buildFrame(nil, nil)
	out := applyAllocation(instrs, res, fl)
	require.Len(t, out, 2)
	require.Equal(t, P("s10"), out[0].Rd, "the add's destination is resolved to the s10 scratch")
	require.Equal(t, KStore, out[1].Kind)
	require.Equal(t, P("s10"), out[1].Rs2)
	require.Equal(t, spillOffset(1), out[1].Imm)
}

func TestApplyAllocationPatchesAllocOffset(t *testing.T) {
	instrs := []AsmInstr{
		{Kind: KRegImm, Mnemonic: "addi", Rd: 0, HasRd: true, Rs1: P("s0"), HasRs1: true, IsAlloc: true, AllocSlot: 1},
	}
	res := &allocResult{phys: map[lir.Reg]lir.Reg{0: P("t0")}}
	fl := buildFrame([]localSlot{{bytes: 4}, {bytes: 4}}, nil)
	out := applyAllocation(instrs, res, fl)
	require.Equal(t, int64(fl.localOffset[1]), out[0].Imm)
}

func TestApplyAllocationExpandsPrologueAndEpilogueMarkers(t *testing.T) {
	instrs := []AsmInstr{
		{Kind: KRaw, Raw: "__prologue__"},
		{Kind: KRet, Mnemonic: "ret"},
		{Kind: KRaw, Raw: "__epilogue__"},
	}
	res := &allocResult{phys: map[lir.Reg]lir.Reg{}}
	fl := buildFrame([]localSlot{{bytes: 4}}, map[string]bool{"s1": true})
	out := applyAllocation(instrs, res, fl)
	require.Equal(t, len(fl.prologue())+1+len(fl.epilogue()), len(out))
}

func TestDeadConstDropsUnusedMaterialization(t *testing.T) {
	instrs := []AsmInstr{
		{Kind: KRegImm, Mnemonic: "addi", Rd: P("t0"), HasRd: true, Rs1: P("x0"), HasRs1: true},
		{Kind: KRegImm, Mnemonic: "addi", Rd: P("t1"), HasRd: true, Rs1: P("x0"), HasRs1: true},
		{Kind: KReg2, Mnemonic: "mv", Rd: P("a0"), HasRd: true, Rs1: P("t1"), HasRs1: true},
	}
	out := deadConst(instrs)
	require.Len(t, out, 2)
	require.Equal(t, P("t1"), out[0].Rd)
}

func TestDeadConstKeepsNonConstInstructions(t *testing.T) {
	instrs := []AsmInstr{
		{Kind: KReg3, Mnemonic: "add", Rd: P("t0"), HasRd: true, Rs1: P("t1"), HasRs1: true, Rs2: P("t2"), HasRs2: true},
	}
	out := deadConst(instrs)
	require.Len(t, out, 1)
}
