// Package lir implements spec.md §3/§4.2: the flat, SSA-without-phi
// linear intermediate representation produced by lowering a typed
// internal/ast.Program, plus the optimizer passes of §4.3.
//
// Unlike the teacher's ir/lir package — a Value interface with one
// concrete type per three-address-code shape, wired together by pointer
// — every instruction here is a single tagged Instr struct selected by
// Op, per the design note that pattern matching on a tag is clearer than
// a visitor when there is no need for per-kind method dispatch.
package lir

import "github.com/pcineverdies/dummy-cc/internal/types"

// Op identifies the kind of one Instr, per spec.md §3's LIR instruction
// variant list.
type Op int

const (
	OpAlloc Op = iota
	OpReturn
	OpMovC
	OpCast
	OpStore
	OpLoadA
	OpLoadR
	OpLabel
	OpCall
	OpBranch
	OpBinary
	OpUnary
)

func (o Op) String() string {
	switch o {
	case OpAlloc:
		return "alloc"
	case OpReturn:
		return "return"
	case OpMovC:
		return "movc"
	case OpCast:
		return "cast"
	case OpStore:
		return "store"
	case OpLoadA:
		return "loada"
	case OpLoadR:
		return "loadr"
	case OpLabel:
		return "label"
	case OpCall:
		return "call"
	case OpBranch:
		return "branch"
	case OpBinary:
		return "binary"
	case OpUnary:
		return "unary"
	default:
		return "?"
	}
}

// BinKind is a binary LIR operator, post-lowering from ast.BinaryOp (the
// logical && / || short-circuit operators never reach this stage: they
// are lowered to branches instead, per spec.md §4.2 condition fusion).
type BinKind int

const (
	BAdd BinKind = iota
	BSub
	BMul
	BDiv
	BRem
	BAnd
	BOr
	BXor
	BShl
	BShr
	BSlt
	BSgt
	BSle
	BSge
	BSeq
	BSne
)

func (b BinKind) String() string {
	names := [...]string{"add", "sub", "mul", "div", "rem", "and", "or", "xor", "sl", "sr",
		"slt", "sgt", "sle", "sge", "seq", "sne"}
	if int(b) < len(names) {
		return names[b]
	}
	return "?"
}

// commutative reports whether a BinKind's two operands may be swapped
// without changing the result, used to canonicalize binary-op cache keys
// (spec.md §4.2's "commutative ops sort operand regs").
func (b BinKind) commutative() bool {
	switch b {
	case BAdd, BMul, BAnd, BOr, BXor, BSeq, BSne:
		return true
	default:
		return false
	}
}

// UnKind is a unary LIR operator.
type UnKind int

const (
	UNeg  UnKind = iota
	USet         // produces 1 if operand != 0, else 0.
	UNSet        // produces 1 if operand == 0, else 0 (also realizes '!').
)

func (u UnKind) String() string {
	switch u {
	case UNeg:
		return "neg"
	case USet:
		return "set"
	case UNSet:
		return "nset"
	default:
		return "?"
	}
}

// BranchKind identifies a Branch instruction's flavour.
type BranchKind int

const (
	BrJmp BranchKind = iota // unconditional.
	BrLt
	BrGe
	BrGt
	BrLe
	BrEq
	BrNe
	BrSet  // conditional on a single register being non-zero.
	BrNSet // conditional on a single register being zero.
)

func (b BranchKind) String() string {
	switch b {
	case BrJmp:
		return "jmp"
	case BrLt:
		return "j_lt"
	case BrGe:
		return "j_ge"
	case BrGt:
		return "j_gt"
	case BrLe:
		return "j_le"
	case BrEq:
		return "j_eq"
	case BrNe:
		return "j_ne"
	case BrSet:
		return "j_set"
	case BrNSet:
		return "j_nset"
	default:
		return "?"
	}
}

// Reg is a virtual register: a monotonically increasing integer, unique
// per function, assigned exactly once as the destination of some Instr
// (spec.md §3's SSA-without-phi invariant).
type Reg int

// NoReg marks an absent operand/destination.
const NoReg Reg = -1

// LabelID identifies a Label instruction, unique per function.
type LabelID int

// Instr is one LIR instruction. Only the fields relevant to Op are
// meaningful; the zero value of the rest is ignored.
type Instr struct {
	Op   Op
	Type types.Type

	Dst  Reg
	Src1 Reg
	Src2 Reg

	Const uint32 // OpMovC

	BinOp BinKind
	UnOp  UnKind

	Branch  BranchKind
	Target  LabelID // branch target, or the Label's own id for OpLabel.
	SrcType types.Type // OpCast: the source type (Type holds the destination type).

	Sym  string // OpLoadA: global label name. OpCall: callee name.
	Args  []Reg   // OpCall: argument registers in order.

	Size Reg // OpAlloc: register holding a dynamic byte count, or NoReg for a scalar.

	Comment string // optional human-readable annotation, printed by dumps only.
}

// Function is one lowered function body: its declared signature plus
// its ordered LIR instruction list.
type Function struct {
	Name       string
	RetType    types.Type
	ParamRegs  []Reg
	ParamTypes []types.Type
	Instrs     []Instr
}

// Module is the lowering output for a whole program: the synthetic
// `init` function for global initializers, plus every user function, per
// spec.md §4.2.
type Module struct {
	Init      *Function
	Functions []*Function
	Globals   []Global
}

// Global describes one global variable or array's storage, for the
// backend's data-section emission.
type Global struct {
	Label    string
	Type     types.Type
	IsArray  bool
	SizeHint int // element count for arrays, when statically known; 0 otherwise.
}
