package lir

import (
	"fmt"
	"strings"
)

// Dump renders mod as human-readable LIR text, for the --print-lir CLI
// flag (SPEC_FULL.md §4). The format is not part of any external
// contract (spec.md §7); it exists purely to make the lowering and
// optimizer passes observable.
func Dump(mod *Module) string {
	var b strings.Builder
	b.WriteString(dumpFunc(mod.Init))
	for _, fn := range mod.Functions {
		b.WriteString("\n")
		b.WriteString(dumpFunc(fn))
	}
	return b.String()
}

func dumpFunc(fn *Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "func %s(%s) -> %s\n", fn.Name, dumpParams(fn), fn.RetType)
	for _, ins := range fn.Instrs {
		b.WriteString("  ")
		b.WriteString(dumpInstr(ins))
		b.WriteString("\n")
	}
	return b.String()
}

func dumpParams(fn *Function) string {
	parts := make([]string, len(fn.ParamRegs))
	for i, r := range fn.ParamRegs {
		parts[i] = fmt.Sprintf("%s v%d", fn.ParamTypes[i], r)
	}
	return strings.Join(parts, ", ")
}

func regOrBlank(r Reg) string {
	if r == NoReg {
		return "-"
	}
	return fmt.Sprintf("v%d", r)
}

func dumpInstr(ins Instr) string {
	switch ins.Op {
	case OpAlloc:
		return fmt.Sprintf("%s = alloc %s init=%s size=%s", regOrBlank(ins.Dst), ins.Type, regOrBlank(ins.Src1), regOrBlank(ins.Size))
	case OpReturn:
		if ins.Src1 == NoReg {
			return "return"
		}
		return fmt.Sprintf("return %s %s", ins.Type, regOrBlank(ins.Src1))
	case OpMovC:
		return fmt.Sprintf("%s = movc %s %d", regOrBlank(ins.Dst), ins.Type, ins.Const)
	case OpCast:
		return fmt.Sprintf("%s = cast %s<-%s %s", regOrBlank(ins.Dst), ins.Type, ins.SrcType, regOrBlank(ins.Src1))
	case OpStore:
		return fmt.Sprintf("store %s [%s] <- %s", ins.Type, regOrBlank(ins.Src1), regOrBlank(ins.Src2))
	case OpLoadA:
		return fmt.Sprintf("%s = loada %s %s", regOrBlank(ins.Dst), ins.Type, ins.Sym)
	case OpLoadR:
		return fmt.Sprintf("%s = loadr %s [%s]", regOrBlank(ins.Dst), ins.Type, regOrBlank(ins.Src1))
	case OpLabel:
		return fmt.Sprintf("L%d:", ins.Target)
	case OpCall:
		args := make([]string, len(ins.Args))
		for i, a := range ins.Args {
			args[i] = regOrBlank(a)
		}
		return fmt.Sprintf("%s = call %s(%s)", regOrBlank(ins.Dst), ins.Sym, strings.Join(args, ", "))
	case OpBranch:
		if ins.Branch == BrJmp {
			return fmt.Sprintf("jmp L%d", ins.Target)
		}
		if ins.Branch == BrSet || ins.Branch == BrNSet {
			return fmt.Sprintf("%s %s -> L%d", ins.Branch, regOrBlank(ins.Src1), ins.Target)
		}
		return fmt.Sprintf("%s %s, %s -> L%d", ins.Branch, regOrBlank(ins.Src1), regOrBlank(ins.Src2), ins.Target)
	case OpBinary:
		return fmt.Sprintf("%s = %s %s %s, %s", regOrBlank(ins.Dst), ins.BinOp, ins.Type, regOrBlank(ins.Src1), regOrBlank(ins.Src2))
	case OpUnary:
		return fmt.Sprintf("%s = %s %s %s", regOrBlank(ins.Dst), ins.UnOp, ins.Type, regOrBlank(ins.Src1))
	default:
		return "?"
	}
}
