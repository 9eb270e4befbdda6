package backend

import "github.com/pcineverdies/dummy-cc/internal/lir"

// applyAllocation rewrites sel's virtual-register operands into their
// assigned physical registers, expands the prologue/epilogue markers
// selectFunc left behind, patches every Alloc-address placeholder with
// its final s0-relative offset, and materializes spill traffic through
// s10/s11, per spec.md §4.4 step 4: "a spilled source is reloaded into
// s10 (or s11 for a second spilled source in the same instruction)
// immediately before the instruction; a spilled destination is stored
// out of s10 immediately after".
func applyAllocation(instrs []AsmInstr, res *allocResult, fl frameLayout) []AsmInstr {
	out := make([]AsmInstr, 0, len(instrs))
	scratch := []lir.Reg{P("s10"), P("s11")}

	for _, ins := range instrs {
		if ins.Kind == KRaw && ins.Raw == "__prologue__" {
			out = append(out, fl.prologue()...)
			continue
		}
		if ins.Kind == KRaw && ins.Raw == "__epilogue__" {
			out = append(out, fl.epilogue()...)
			continue
		}
		if ins.IsAlloc {
			ins.Imm = int64(fl.localOffset[ins.AllocSlot])
		}

		var pre, post []AsmInstr
		srcIdx := 0
		resolveSrc := func(r lir.Reg) lir.Reg {
			if r == lir.NoReg || isPhys(r) {
				return r
			}
			if p, ok := res.phys[r]; ok {
				return p
			}
			s := scratch[srcIdx]
			srcIdx++
			off := spillOffset(res.spillSlot[r])
			pre = append(pre, AsmInstr{Kind: KLoad, Mnemonic: "lw", Rd: s, HasRd: true, Rs1: P("tp"), HasRs1: true, Imm: off})
			return s
		}
		resolveDst := func(r lir.Reg) lir.Reg {
			if r == lir.NoReg || isPhys(r) {
				return r
			}
			if p, ok := res.phys[r]; ok {
				return p
			}
			s := scratch[0]
			off := spillOffset(res.spillSlot[r])
			post = append(post, AsmInstr{Kind: KStore, Mnemonic: "sw", Rs1: P("tp"), HasRs1: true, Rs2: s, HasRs2: true, Imm: off})
			return s
		}

		if ins.HasRs1 {
			ins.Rs1 = resolveSrc(ins.Rs1)
		}
		if ins.HasRs2 {
			ins.Rs2 = resolveSrc(ins.Rs2)
		}
		if ins.HasRd {
			ins.Rd = resolveDst(ins.Rd)
		}

		out = append(out, pre...)
		out = append(out, ins)
		out = append(out, post...)
	}
	return out
}

// spillOffset is the tp-relative address of spill slot k, on the
// secondary descending stack the runtime provisions outside this
// compiler's scope (spec.md §9).
func spillOffset(slot int) int64 { return -int64(slot+1) * 4 }

// deadConst drops any constant-materializing instruction (addi/lui from
// x0, or an addi refining a preceding lui) whose destination register is
// never read again, per spec.md §4.4 step 5. It runs after allocation,
// so "destination" is always a physical register by this point.
func deadConst(instrs []AsmInstr) []AsmInstr {
	used := make(map[lir.Reg]bool)
	for _, ins := range instrs {
		if ins.HasRs1 {
			used[ins.Rs1] = true
		}
		if ins.HasRs2 {
			used[ins.Rs2] = true
		}
	}
	out := instrs[:0:0]
	for i, ins := range instrs {
		if isConstMaterialization(ins) && !used[ins.Rd] {
			continue
		}
		out = append(out, instrs[i])
	}
	return out
}

func isConstMaterialization(ins AsmInstr) bool {
	if !ins.HasRd {
		return false
	}
	switch ins.Mnemonic {
	case "lui":
		return true
	case "addi":
		return ins.HasRs1 && ins.Rs1 == P("x0")
	default:
		return false
	}
}
