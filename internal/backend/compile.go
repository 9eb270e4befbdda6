package backend

import (
	"fmt"
	"sort"

	"github.com/pcineverdies/dummy-cc/internal/asmio"
	"github.com/pcineverdies/dummy-cc/internal/lir"
)

// Compile lowers mod into RV32IM assembly text: instruction selection,
// linear-scan allocation, and frame finalization for every function
// (spec.md §4.4), followed by the data section for its globals.
func Compile(mod *lir.Module) string {
	w := asmio.NewWriter()
	w.WriteString(".text\n")

	functions := append([]*lir.Function{mod.Init}, mod.Functions...)
	for _, fn := range functions {
		w.WriteString(compileFunc(fn))
	}

	if data := compileGlobals(mod.Globals); data != "" {
		w.WriteString(data)
	}
	return w.String()
}

func compileFunc(fn *lir.Function) string {
	sel := selectFunc(fn)
	res := allocate(sel.instrs)
	fl := buildFrame(sel.locals, res.usedSRegs)
	instrs := applyAllocation(sel.instrs, res, fl)
	instrs = deadConst(instrs)

	w := asmio.NewWriter()
	w.Write("\n.globl %s\n", fn.Name)
	w.Label(fn.Name)
	for _, ins := range instrs {
		renderInstr(&w, fn.Name, ins)
	}
	return w.String()
}

func labelName(fnName string, l lir.LabelID) string {
	return fmt.Sprintf(".L%s_%d", fnName, l)
}

func renderInstr(w *asmio.Writer, fnName string, ins AsmInstr) {
	switch ins.Kind {
	case KReg2:
		w.Ins2(ins.Mnemonic, regName(ins.Rd), regName(ins.Rs1))
	case KReg3:
		w.Ins3(ins.Mnemonic, regName(ins.Rd), regName(ins.Rs1), regName(ins.Rs2))
	case KRegImm:
		w.Ins2imm(ins.Mnemonic, regName(ins.Rd), regName(ins.Rs1), ins.Imm)
	case KLoad:
		w.LoadStore(ins.Mnemonic, regName(ins.Rd), ins.Imm, regName(ins.Rs1))
	case KStore:
		w.LoadStore(ins.Mnemonic, regName(ins.Rs2), ins.Imm, regName(ins.Rs1))
	case KLoadAddr:
		w.Ins2(ins.Mnemonic, regName(ins.Rd), ins.Sym)
	case KBranch2:
		w.Ins3(ins.Mnemonic, regName(ins.Rs1), regName(ins.Rs2), labelName(fnName, ins.Label))
	case KBranch1:
		w.Ins2(ins.Mnemonic, regName(ins.Rs1), labelName(fnName, ins.Label))
	case KJump:
		w.Ins1("j", labelName(fnName, ins.Label))
	case KCall:
		w.Ins2("jal", "ra", ins.Sym)
	case KLabelDef:
		w.Label(labelName(fnName, ins.Label))
	case KRet:
		w.WriteString("\tret\n")
	case KRaw:
		w.Write("\t%s\n", ins.Raw)
	}
}

// compileGlobals emits the .data section: one .zero-filled reservation
// per global, sized from its declared type (and element count, for a
// statically-sized array). Initializers run through init's Store
// instructions instead of .word directives, per gen.go's lowering.
func compileGlobals(globals []lir.Global) string {
	if len(globals) == 0 {
		return ""
	}
	sorted := append([]lir.Global(nil), globals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Label < sorted[j].Label })

	w := asmio.NewWriter()
	w.WriteString("\n.data\n")
	for _, g := range sorted {
		w.Write(".globl %s\n", g.Label)
		w.Label(g.Label)
		w.Write("\t.zero %d\n", globalSize(g))
	}
	return w.String()
}

func globalSize(g lir.Global) int {
	elemSize := g.Type.Size()
	if g.IsArray {
		elemSize = g.Type.Deref().Size()
	}
	if elemSize <= 0 {
		elemSize = 4
	}
	if g.IsArray && g.SizeHint > 0 {
		return elemSize * g.SizeHint
	}
	return elemSize
}
