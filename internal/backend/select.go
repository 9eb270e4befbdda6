package backend

import (
	"github.com/pcineverdies/dummy-cc/internal/lir"
	"github.com/pcineverdies/dummy-cc/internal/types"
)

// localSlot is one scalar Alloc's reservation in the s0-relative locals
// region of the activation record (spec.md §3's "per-local stack slot").
// Arrays are deliberately excluded: every array Alloc lowers to a
// runtime stack bump (`sub sp, sp, size`) instead of a static slot, so a
// dynamically sized array needs no compile-time size knowledge at all —
// the same path handles both literal and variable-length arrays.
type localSlot struct {
	bytes int
}

// selected is one function's instruction-selection output: the
// virtual-register-operand asm stream plus the bookkeeping frame.go and
// regalloc.go need afterward.
type selected struct {
	fn     *lir.Function
	instrs []AsmInstr
	locals []localSlot
}

func selectFunc(fn *lir.Function) *selected {
	s := &selected{fn: fn}

	// Overflow parameters (the 9th and beyond) arrive on the caller's
	// stack at the callee's own entry sp, per selectCall's matching
	// overflow-argument convention; they must be read before the
	// prologue's own `addi sp, sp, -frameSize` moves sp out from under
	// them.
	for i, p := range fn.ParamRegs {
		if i >= len(argRegs) {
			off := int64(i-len(argRegs)) * 4
			s.emit(AsmInstr{Kind: KLoad, Mnemonic: "lw", Rd: p, HasRd: true, Rs1: P("sp"), HasRs1: true, Imm: off})
		}
	}

	s.emit(AsmInstr{Kind: KRaw, Raw: "__prologue__"})

	for i, p := range fn.ParamRegs {
		if i < len(argRegs) {
			s.emit(reg2("mv", p, P(argRegs[i])))
		}
	}

	for _, ins := range fn.Instrs {
		s.selectInstr(ins)
	}
	return s
}

func (s *selected) emit(i AsmInstr) { s.instrs = append(s.instrs, i) }

func alignUp(n, align int) int {
	if n%align == 0 {
		return n
	}
	return n + (align - n%align)
}

func (s *selected) selectInstr(ins lir.Instr) {
	switch ins.Op {
	case lir.OpAlloc:
		s.selectAlloc(ins)
	case lir.OpReturn:
		if ins.Src1 != lir.NoReg {
			s.emit(reg2("mv", P("a0"), ins.Src1))
		}
		s.emit(AsmInstr{Kind: KRaw, Raw: "__epilogue__"})
	case lir.OpMovC:
		s.selectMovC(ins.Dst, ins.Const)
	case lir.OpCast:
		s.selectCast(ins)
	case lir.OpStore:
		s.emit(typedStore(ins.Type, ins.Src1, ins.Src2, 0))
	case lir.OpLoadA:
		s.emit(AsmInstr{Kind: KLoadAddr, Mnemonic: "la", Rd: ins.Dst, HasRd: true, Sym: ins.Sym})
	case lir.OpLoadR:
		s.emit(typedLoad(ins.Type, ins.Dst, ins.Src1, 0))
	case lir.OpLabel:
		s.emit(AsmInstr{Kind: KLabelDef, Label: ins.Target})
	case lir.OpCall:
		s.selectCall(ins)
	case lir.OpBranch:
		s.selectBranch(ins)
	case lir.OpBinary:
		s.selectBinary(ins)
	case lir.OpUnary:
		s.selectUnary(ins)
	}
}

func (s *selected) selectAlloc(ins lir.Instr) {
	if ins.Size != lir.NoReg {
		// Dynamic-extent array: grow the stack in place and hand back the
		// new top as the array's base address. Locals are always
		// addressed relative to s0, which is fixed for the function's
		// whole lifetime, so this never disturbs any other local's
		// offset.
		s.emit(reg3("sub", P("sp"), P("sp"), ins.Size))
		s.emit(reg2("mv", ins.Dst, P("sp")))
		return
	}
	slot := len(s.locals)
	s.locals = append(s.locals, localSlot{bytes: alignUp(max(ins.Type.Size(), 4), 4)})
	s.emit(AsmInstr{Kind: KRegImm, Mnemonic: "addi", Rd: ins.Dst, HasRd: true, Rs1: P("s0"), HasRs1: true, IsAlloc: true, AllocSlot: slot})
	if ins.Src1 != lir.NoReg {
		s.emit(typedStore(ins.Type, ins.Dst, ins.Src1, 0))
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (s *selected) selectMovC(dst lir.Reg, c uint32) {
	v := int64(int32(c))
	if fitsImm12(v) {
		s.emit(regImm("addi", dst, P("x0"), v))
		return
	}
	upper, lower := splitImm32(c)
	s.emit(AsmInstr{Kind: KRegImm, Mnemonic: "lui", Rd: dst, HasRd: true, Imm: int64(upper)})
	if lower != 0 {
		s.emit(regImm("addi", dst, dst, int64(lower)))
	}
}

// selectCast implements spec.md §4.4's shift-pair technique, uniformly
// for both truncation and sign/zero-extension: shift the value so its
// destination-width bits sit at bit 31, then shift back down either
// arithmetically (sign-extend) or logically (zero-extend).
func (s *selected) selectCast(ins lir.Instr) {
	bits := ins.Type.Kind.Size() * 8
	if ins.Type.IsPointer() {
		bits = 32
	}
	if bits <= 0 || bits >= 32 {
		s.emit(reg2("mv", ins.Dst, ins.Src1))
		return
	}
	shift := int64(32 - bits)
	s.emit(regImm("slli", ins.Dst, ins.Src1, shift))
	if ins.Type.Kind.Signed() {
		s.emit(regImm("srai", ins.Dst, ins.Dst, shift))
	} else {
		s.emit(regImm("srli", ins.Dst, ins.Dst, shift))
	}
}

func typedLoad(t types.Type, dst, addr lir.Reg, off int64) AsmInstr {
	mnemonic := "lw"
	switch {
	case t.IsPointer():
		mnemonic = "lw"
	case t.Kind.Size() == 1:
		if t.Kind.Signed() {
			mnemonic = "lb"
		} else {
			mnemonic = "lbu"
		}
	case t.Kind.Size() == 2:
		if t.Kind.Signed() {
			mnemonic = "lh"
		} else {
			mnemonic = "lhu"
		}
	}
	return AsmInstr{Kind: KLoad, Mnemonic: mnemonic, Rd: dst, HasRd: true, Rs1: addr, HasRs1: true, Imm: off}
}

func typedStore(t types.Type, addr, val lir.Reg, off int64) AsmInstr {
	mnemonic := "sw"
	if !t.IsPointer() {
		switch t.Kind.Size() {
		case 1:
			mnemonic = "sb"
		case 2:
			mnemonic = "sh"
		}
	}
	return AsmInstr{Kind: KStore, Mnemonic: mnemonic, Rs1: addr, HasRs1: true, Rs2: val, HasRs2: true, Imm: off}
}

// selectCall lowers a call with its register arguments in a0..a7 and any
// overflow arguments (the 9th and beyond) spilled to a freshly bumped
// region at the bottom of the stack, per spec.md §3's outgoing-argument
// convention. The bump is local to this call site rather than a
// reservation in the caller's own frame: a dynamic-extent array Alloc can
// leave sp below s0 for the rest of the function (selectAlloc's `sub sp,
// sp, size` is never popped until the epilogue), so any fixed s0-relative
// slot would not reliably sit just below the live sp at the moment of the
// call. Bumping sp immediately around the call keeps the overflow slots
// correct regardless of what else has already moved sp.
func (s *selected) selectCall(ins lir.Instr) {
	var overflow []lir.Reg
	if len(ins.Args) > len(argRegs) {
		overflow = ins.Args[len(argRegs):]
	}
	if len(overflow) > 0 {
		bytes := int64(len(overflow)) * 4
		s.emit(regImm("addi", P("sp"), P("sp"), -bytes))
		for k, a := range overflow {
			s.emit(AsmInstr{Kind: KStore, Mnemonic: "sw", Rs1: P("sp"), HasRs1: true, Rs2: a, HasRs2: true, Imm: int64(k) * 4})
		}
	}
	for i, a := range ins.Args {
		if i < len(argRegs) {
			s.emit(reg2("mv", P(argRegs[i]), a))
		}
	}
	s.emit(AsmInstr{Kind: KCall, Mnemonic: "jal", Sym: ins.Sym})
	if len(overflow) > 0 {
		s.emit(regImm("addi", P("sp"), P("sp"), int64(len(overflow))*4))
	}
	if ins.Dst != lir.NoReg {
		s.emit(reg2("mv", ins.Dst, P("a0")))
	}
}

func (s *selected) selectBranch(ins lir.Instr) {
	switch ins.Branch {
	case lir.BrJmp:
		s.emit(AsmInstr{Kind: KJump, Mnemonic: "j", Label: ins.Target})
	case lir.BrSet:
		s.emit(AsmInstr{Kind: KBranch1, Mnemonic: "bnez", Rs1: ins.Src1, HasRs1: true, Label: ins.Target})
	case lir.BrNSet:
		s.emit(AsmInstr{Kind: KBranch1, Mnemonic: "beqz", Rs1: ins.Src1, HasRs1: true, Label: ins.Target})
	default:
		signed := ins.Type.Kind.Signed()
		rs1, rs2 := ins.Src1, ins.Src2
		mnemonic := ""
		switch ins.Branch {
		case lir.BrLt:
			mnemonic = pick(signed, "blt", "bltu")
		case lir.BrGe:
			mnemonic = pick(signed, "bge", "bgeu")
		case lir.BrGt:
			rs1, rs2 = rs2, rs1
			mnemonic = pick(signed, "blt", "bltu")
		case lir.BrLe:
			rs1, rs2 = rs2, rs1
			mnemonic = pick(signed, "bge", "bgeu")
		case lir.BrEq:
			mnemonic = "beq"
		case lir.BrNe:
			mnemonic = "bne"
		}
		s.emit(AsmInstr{Kind: KBranch2, Mnemonic: mnemonic, Rs1: rs1, HasRs1: true, Rs2: rs2, HasRs2: true, Label: ins.Target})
	}
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

func (s *selected) selectBinary(ins lir.Instr) {
	signed := ins.Type.Kind.Signed()
	dst, a, b := ins.Dst, ins.Src1, ins.Src2
	switch ins.BinOp {
	case lir.BAdd:
		s.emit(reg3("add", dst, a, b))
	case lir.BSub:
		s.emit(reg3("sub", dst, a, b))
	case lir.BMul:
		s.emit(reg3("mul", dst, a, b))
	case lir.BDiv:
		s.emit(reg3(pick(signed, "div", "divu"), dst, a, b))
	case lir.BRem:
		s.emit(reg3(pick(signed, "rem", "remu"), dst, a, b))
	case lir.BAnd:
		s.emit(reg3("and", dst, a, b))
	case lir.BOr:
		s.emit(reg3("or", dst, a, b))
	case lir.BXor:
		s.emit(reg3("xor", dst, a, b))
	case lir.BShl:
		s.emit(reg3("sll", dst, a, b))
	case lir.BShr:
		s.emit(reg3(pick(signed, "sra", "srl"), dst, a, b))
	case lir.BSlt:
		s.emit(reg3(pick(signed, "slt", "sltu"), dst, a, b))
	case lir.BSgt:
		s.emit(reg3(pick(signed, "slt", "sltu"), dst, b, a))
	case lir.BSle:
		s.emit(reg3(pick(signed, "slt", "sltu"), dst, b, a))
		s.emit(regImm("xori", dst, dst, 1))
	case lir.BSge:
		s.emit(reg3(pick(signed, "slt", "sltu"), dst, a, b))
		s.emit(regImm("xori", dst, dst, 1))
	case lir.BSeq:
		s.emit(reg3("sub", dst, a, b))
		s.emit(regImm("sltiu", dst, dst, 1))
	case lir.BSne:
		s.emit(reg3("sub", dst, a, b))
		s.emit(reg3("sltu", dst, P("x0"), dst))
	}
}

func (s *selected) selectUnary(ins lir.Instr) {
	switch ins.UnOp {
	case lir.UNeg:
		s.emit(reg3("sub", ins.Dst, P("x0"), ins.Src1))
	case lir.UNSet:
		s.emit(regImm("sltiu", ins.Dst, ins.Src1, 1))
	case lir.USet:
		s.emit(reg3("sltu", ins.Dst, P("x0"), ins.Src1))
	}
}
