package backend

import "github.com/pcineverdies/dummy-cc/internal/lir"

// successors returns the indices execution may continue at after
// instruction i, per spec.md §4.4's "standard dataflow over the local
// CFG derived from labels/branches".
func successors(instrs []AsmInstr, labelIdx map[lir.LabelID]int, i int) []int {
	ins := instrs[i]
	switch ins.Kind {
	case KJump:
		if idx, ok := labelIdx[ins.Label]; ok {
			return []int{idx}
		}
		return nil
	case KBranch1, KBranch2:
		var out []int
		if idx, ok := labelIdx[ins.Label]; ok {
			out = append(out, idx)
		}
		if i+1 < len(instrs) {
			out = append(out, i+1)
		}
		return out
	default:
		if i+1 < len(instrs) {
			return []int{i + 1}
		}
		return nil
	}
}

func defsOf(ins AsmInstr) []lir.Reg {
	if ins.HasRd && isVirtual(ins.Rd) {
		return []lir.Reg{ins.Rd}
	}
	return nil
}

func usesOf(ins AsmInstr) []lir.Reg {
	var out []lir.Reg
	if ins.HasRs1 && isVirtual(ins.Rs1) {
		out = append(out, ins.Rs1)
	}
	if ins.HasRs2 && isVirtual(ins.Rs2) {
		out = append(out, ins.Rs2)
	}
	return out
}

// liveness computes LIVE-IN/LIVE-OUT register sets for every instruction
// in instrs, iterated to a fixed point (spec.md §9).
func liveness(instrs []AsmInstr) (liveIn, liveOut []map[lir.Reg]bool) {
	n := len(instrs)
	labelIdx := map[lir.LabelID]int{}
	for i, ins := range instrs {
		if ins.Kind == KLabelDef {
			labelIdx[ins.Label] = i
		}
	}
	liveIn = make([]map[lir.Reg]bool, n)
	liveOut = make([]map[lir.Reg]bool, n)
	for i := range instrs {
		liveIn[i] = map[lir.Reg]bool{}
		liveOut[i] = map[lir.Reg]bool{}
	}

	for {
		changed := false
		for i := n - 1; i >= 0; i-- {
			newOut := map[lir.Reg]bool{}
			for _, succ := range successors(instrs, labelIdx, i) {
				for r := range liveIn[succ] {
					newOut[r] = true
				}
			}
			newIn := map[lir.Reg]bool{}
			defs := map[lir.Reg]bool{}
			for _, r := range defsOf(instrs[i]) {
				defs[r] = true
			}
			for r := range newOut {
				if !defs[r] {
					newIn[r] = true
				}
			}
			for _, r := range usesOf(instrs[i]) {
				newIn[r] = true
			}
			if !setEqual(newIn, liveIn[i]) {
				liveIn[i] = newIn
				changed = true
			}
			if !setEqual(newOut, liveOut[i]) {
				liveOut[i] = newOut
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return liveIn, liveOut
}

func setEqual(a, b map[lir.Reg]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
