package lir

// Optimize runs the two passes of spec.md §4.3 — dead-code removal and
// control-flow removal — to a fixed point. Neither pass changes
// observable behavior; both are safe to run any number of times (the
// "dead-code idempotence" testable property of spec.md §8).
func Optimize(fn *Function) {
	for {
		changed := deadCodePass(fn)
		changed = controlFlowPass(fn) || changed
		if !changed {
			return
		}
	}
}

// sideEffectful reports whether an Instr must be kept regardless of
// whether its destination register is read, per spec.md §4.3.
func sideEffectful(op Op) bool {
	switch op {
	case OpStore, OpCall, OpReturn, OpBranch, OpLabel:
		return true
	default:
		return false
	}
}

func srcRegs(ins Instr) []Reg {
	var regs []Reg
	add := func(r Reg) {
		if r != NoReg {
			regs = append(regs, r)
		}
	}
	// Only the operand fields an Op reads count; the others hold their
	// zero value, which would otherwise read as register 0.
	if ins.Op != OpMovC && ins.Op != OpLoadA && ins.Op != OpLabel && ins.Op != OpCall && !(ins.Op == OpBranch && ins.Branch == BrJmp) {
		add(ins.Src1)
	}
	if ins.Op == OpStore || ins.Op == OpBinary || (ins.Op == OpBranch && ins.Branch != BrJmp && ins.Branch != BrSet && ins.Branch != BrNSet) {
		add(ins.Src2)
	}
	if ins.Op == OpAlloc {
		add(ins.Size)
	}
	regs = append(regs, ins.Args...)
	return regs
}

// deadCodePass computes the needed-register set via a reverse walk and
// drops every instruction whose destination is unneeded and which is
// not inherently side-effectful.
func deadCodePass(fn *Function) bool {
	n := len(fn.Instrs)
	needed := make(map[Reg]bool, n)
	keep := make([]bool, n)

	for i := n - 1; i >= 0; i-- {
		ins := fn.Instrs[i]
		destNeeded := ins.Dst != NoReg && needed[ins.Dst]
		if sideEffectful(ins.Op) || destNeeded {
			keep[i] = true
			for _, r := range srcRegs(ins) {
				needed[r] = true
			}
		}
	}

	changed := false
	out := fn.Instrs[:0:0]
	for i, ins := range fn.Instrs {
		if keep[i] {
			out = append(out, ins)
		} else {
			changed = true
		}
	}
	fn.Instrs = out
	return changed
}

// controlFlowPass drops unreachable label blocks, collapses an
// unconditional branch that targets the label immediately following it,
// and drops labels no branch references, per spec.md §4.3.
func controlFlowPass(fn *Function) bool {
	n := len(fn.Instrs)
	if n == 0 {
		return false
	}

	labelIdx := map[LabelID]int{}
	for i, ins := range fn.Instrs {
		if ins.Op == OpLabel {
			labelIdx[ins.Target] = i
		}
	}

	reachable := make([]bool, n)
	stack := []int{0}
	for len(stack) > 0 {
		pc := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if pc < 0 || pc >= n || reachable[pc] {
			continue
		}
		reachable[pc] = true
		ins := fn.Instrs[pc]
		switch {
		case ins.Op == OpBranch:
			if idx, ok := labelIdx[ins.Target]; ok {
				stack = append(stack, idx)
			}
			if ins.Branch != BrJmp {
				stack = append(stack, pc+1)
			}
		case ins.Op == OpReturn:
			// No fallthrough.
		default:
			stack = append(stack, pc+1)
		}
	}

	changed := false
	kept := fn.Instrs[:0:0]
	for i, ins := range fn.Instrs {
		if reachable[i] {
			kept = append(kept, ins)
		} else {
			changed = true
		}
	}
	fn.Instrs = kept

	used := map[LabelID]bool{}
	for _, ins := range fn.Instrs {
		if ins.Op == OpBranch {
			used[ins.Target] = true
		}
	}

	collapsed := fn.Instrs[:0:0]
	for i := 0; i < len(fn.Instrs); i++ {
		ins := fn.Instrs[i]
		if ins.Op == OpLabel && !used[ins.Target] {
			changed = true
			continue
		}
		if ins.Op == OpBranch && ins.Branch == BrJmp && i+1 < len(fn.Instrs) {
			next := fn.Instrs[i+1]
			if next.Op == OpLabel && next.Target == ins.Target {
				changed = true
				continue
			}
		}
		collapsed = append(collapsed, ins)
	}
	fn.Instrs = collapsed
	return changed
}
