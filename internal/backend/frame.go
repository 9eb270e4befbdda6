package backend

import "sort"

// frameLayout is the finished activation record for one function, per
// spec.md §3: callee-saved ra/s0, on-demand s1..s11 saves, per-local
// stack slots, and the 16-byte-aligned total.
//
// Every offset here is relative to s0, which this backend fixes at the
// *bottom* of the fixed-size region (the first address reachable after
// the prologue's single `addi sp, sp, -frameSize`), rather than at the
// conventional RISC-V frame-pointer position above the saved registers.
// That keeps every local's offset independent of however much further
// `sp` is pushed down by a dynamic-extent array's runtime stack bump
// (select.go's `sub sp, sp, size`), since only the prologue and epilogue
// ever write s0.
type frameLayout struct {
	localOffset []int
	savedOffset map[string]int
	raOffset    int
	s0Offset    int
	size        int
	savedOrder  []string
}

func buildFrame(locals []localSlot, usedSRegs map[string]bool) frameLayout {
	fl := frameLayout{savedOffset: map[string]int{}}
	off := 0
	for _, l := range locals {
		fl.localOffset = append(fl.localOffset, off)
		off += l.bytes
	}

	var names []string
	for n := range usedSRegs {
		names = append(names, n)
	}
	sort.Strings(names)
	fl.savedOrder = names

	total := off + 8 + 4*len(names)
	total = alignUp(total, 16)
	fl.size = total
	fl.raOffset = total - 4
	fl.s0Offset = total - 8
	for i, n := range names {
		fl.savedOffset[n] = total - 8 - 4*(i+1)
	}
	return fl
}

func (fl frameLayout) prologue() []AsmInstr {
	var out []AsmInstr
	out = append(out, regImm("addi", P("sp"), P("sp"), int64(-fl.size)))
	out = append(out, AsmInstr{Kind: KStore, Mnemonic: "sw", Rs1: P("sp"), HasRs1: true, Rs2: P("ra"), HasRs2: true, Imm: int64(fl.raOffset)})
	out = append(out, AsmInstr{Kind: KStore, Mnemonic: "sw", Rs1: P("sp"), HasRs1: true, Rs2: P("s0"), HasRs2: true, Imm: int64(fl.s0Offset)})
	out = append(out, reg2("mv", P("s0"), P("sp")))
	for _, n := range fl.savedOrder {
		out = append(out, AsmInstr{Kind: KStore, Mnemonic: "sw", Rs1: P("s0"), HasRs1: true, Rs2: P(n), HasRs2: true, Imm: int64(fl.savedOffset[n])})
	}
	return out
}

func (fl frameLayout) epilogue() []AsmInstr {
	var out []AsmInstr
	for _, n := range fl.savedOrder {
		out = append(out, AsmInstr{Kind: KLoad, Mnemonic: "lw", Rd: P(n), HasRd: true, Rs1: P("s0"), HasRs1: true, Imm: int64(fl.savedOffset[n])})
	}
	out = append(out, reg2("mv", P("sp"), P("s0")))
	out = append(out, AsmInstr{Kind: KLoad, Mnemonic: "lw", Rd: P("ra"), HasRd: true, Rs1: P("sp"), HasRs1: true, Imm: int64(fl.raOffset)})
	out = append(out, AsmInstr{Kind: KLoad, Mnemonic: "lw", Rd: P("s0"), HasRd: true, Rs1: P("sp"), HasRs1: true, Imm: int64(fl.s0Offset)})
	out = append(out, regImm("addi", P("sp"), P("sp"), int64(fl.size)))
	out = append(out, AsmInstr{Kind: KRet, Mnemonic: "ret"})
	return out
}
