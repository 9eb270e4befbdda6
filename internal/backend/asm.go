// Package backend implements spec.md §4.4: RV32IM instruction selection,
// activation-record layout, and linear-scan register allocation with
// spilling, over the LIR produced by internal/lir.
//
// Grounded in the teacher's backend/riscv package for the target
// instruction set and calling convention, but the allocator itself is
// written from scratch: the teacher's own register allocator
// (backend/lir/regalloc.go) does graph coloring and explicitly stubs out
// the RISC-V target ("risc-v target not implemented yet"), so only its
// liveness-computation idea (backward dataflow over a flat instruction
// list) is reused, per DESIGN.md.
package backend

import "github.com/pcineverdies/dummy-cc/internal/lir"

// Kind identifies the shape of one selected RV32IM instruction: which of
// its Rd/Rs1/Rs2/Imm/Label/Sym fields are meaningful, and how it should
// be rendered to text.
type Kind int

const (
	KReg2     Kind = iota // rd, rs1            (mv, neg, sext/zext helpers)
	KReg3                 // rd, rs1, rs2       (add, sub, slt, mul, ...)
	KRegImm               // rd, rs1, imm       (addi, andi, slli, ...)
	KLoad                 // rd, imm(rs1)       (lb/lh/lw/lbu/lhu)
	KStore                // rs2, imm(rs1)      (sb/sh/sw; rs2 is the stored value)
	KLoadAddr             // rd, sym            (la)
	KBranch2              // rs1, rs2, label
	KBranch1              // rs1, label
	KJump                 // label
	KCall                 // sym                (jal ra, sym)
	KLabelDef             // label:
	KRet                  // ret
	KRaw                  // Raw is emitted verbatim, one line.
)

// AsmInstr is one selected RV32IM instruction. Rd/Rs1/Rs2 hold LIR
// virtual registers until applyAllocation (apply.go) replaces them with a physical
// register name or a spill-slot access sequence.
type AsmInstr struct {
	Kind     Kind
	Mnemonic string

	Rd, Rs1, Rs2 lir.Reg
	HasRd        bool
	HasRs1       bool
	HasRs2       bool

	Imm   int64
	Label lir.LabelID
	Sym   string
	Raw   string

	AllocSlot int  // valid when Kind == KRegImm and this is an Alloc-address computation.
	IsAlloc   bool
}

func reg2(mnemonic string, rd, rs1 lir.Reg) AsmInstr {
	return AsmInstr{Kind: KReg2, Mnemonic: mnemonic, Rd: rd, HasRd: true, Rs1: rs1, HasRs1: true}
}

func reg3(mnemonic string, rd, rs1, rs2 lir.Reg) AsmInstr {
	return AsmInstr{Kind: KReg3, Mnemonic: mnemonic, Rd: rd, HasRd: true, Rs1: rs1, HasRs1: true, Rs2: rs2, HasRs2: true}
}

func regImm(mnemonic string, rd, rs1 lir.Reg, imm int64) AsmInstr {
	return AsmInstr{Kind: KRegImm, Mnemonic: mnemonic, Rd: rd, HasRd: true, Rs1: rs1, HasRs1: true, Imm: imm}
}
