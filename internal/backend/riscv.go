package backend

import "github.com/pcineverdies/dummy-cc/internal/lir"

// Physical RV32IM registers are represented as negative lir.Reg values
// so the rest of the backend can treat "is this operand already
// physical?" as a single sign check, and keep Rd/Rs1/Rs2 typed as
// lir.Reg throughout instruction selection and allocation.
const physBase = -1000

var physOrder = []string{
	"x0", "ra", "sp", "tp", "s0",
	"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6",
	"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
}

var physNames map[lir.Reg]string
var physByName map[string]lir.Reg

func init() {
	physNames = make(map[lir.Reg]string, len(physOrder))
	physByName = make(map[string]lir.Reg, len(physOrder))
	for i, name := range physOrder {
		r := lir.Reg(physBase - i)
		physNames[r] = name
		physByName[name] = r
	}
}

// P returns the pseudo-register id for a named physical register.
func P(name string) lir.Reg { return physByName[name] }

func isPhys(r lir.Reg) bool { return r != lir.NoReg && r <= physBase+lir.Reg(len(physOrder))-1 && r >= physBase-lir.Reg(len(physOrder)) }

func isVirtual(r lir.Reg) bool { return r != lir.NoReg && r >= 0 }

func regName(r lir.Reg) string {
	if n, ok := physNames[r]; ok {
		return n
	}
	return "?"
}

// allocPool is the physical register pool available to the linear-scan
// allocator, per spec.md §4.4: t0..t6 and s1..s11 excluding s10/s11
// (reserved as spill scratch).
var allocPool = []string{
	"t0", "t1", "t2", "t3", "t4", "t5", "t6",
	"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9",
}

// argRegs is the RV32 integer calling-convention argument/return
// register sequence, a0..a7.
var argRegs = []string{"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7"}

// splitImm32 decomposes a 32-bit value into the lui upper-20-bits
// operand and the addi-style sign-extended low 12 bits, the standard
// RV32 two-instruction wide-constant materialization.
func splitImm32(v uint32) (upper uint32, lower int32) {
	lower = int32(int32(v<<20) >> 20)
	upper = (v - uint32(lower)) >> 12
	return upper, lower
}

func fitsImm12(v int64) bool { return v >= -2048 && v <= 2047 }
