package lir

import (
	"github.com/pkg/errors"

	"github.com/pcineverdies/dummy-cc/internal/ast"
	"github.com/pcineverdies/dummy-cc/internal/types"
)

// loopCtx is the (continue, break) label pair active for the innermost
// enclosing loop, per spec.md §4.2's "stack of (continue_label,
// break_label) pairs".
type loopCtx struct {
	cont LabelID
	brk  LabelID
}

// Generator lowers a typed internal/ast.Program into a Module. One
// Generator instance is used for the whole program; gen.fn points at
// whichever Function is currently being built.
type Generator struct {
	symtab *ast.Symtab
	opt    int

	fn        *Function
	nextReg   Reg
	nextLabel LabelID

	addrOf map[ast.SymbolID]Reg // local/parameter address register.
	loops  []loopCtx

	cache *regionCache // nil when opt == 0.
}

// Generate lowers prog at the given optimization level (0, 1 or 2), per
// spec.md §4.2. Level 2 additionally runs the optimizer of §4.3 on every
// function before returning.
func Generate(prog *ast.Program, opt int) (*Module, error) {
	g := &Generator{symtab: prog.Symtab, opt: opt, addrOf: map[ast.SymbolID]Reg{}}

	mod := &Module{}
	g.beginFunction("init", types.VoidT(), nil)
	for _, d := range prog.Decls {
		switch v := d.(type) {
		case *ast.GlobalVar:
			sym := g.symtab.Get(v.Sym)
			mod.Globals = append(mod.Globals, Global{Label: sym.Label, Type: sym.Type})
			if v.Init != nil {
				val, err := g.exprVal(v.Init)
				if err != nil {
					return nil, err
				}
				addr := g.emitReg()
				g.emit(Instr{Op: OpLoadA, Type: sym.Type.Pointer(), Dst: addr, Sym: sym.Label})
				g.emit(Instr{Op: OpStore, Type: sym.Type, Src1: addr, Src2: val})
			}
		case *ast.GlobalArray:
			sym := g.symtab.Get(v.Sym)
			hint := 0
			if lit, ok := v.Size.(*ast.IntLit); ok {
				hint = int(lit.Value)
			}
			mod.Globals = append(mod.Globals, Global{Label: sym.Label, Type: sym.Type, IsArray: true, SizeHint: hint})
		}
	}
	g.emit(Instr{Op: OpReturn, Src1: NoReg})
	mod.Init = g.fn

	for _, d := range prog.Decls {
		fd, ok := d.(*ast.FuncDef)
		if !ok {
			continue
		}
		fn, err := g.lowerFunc(fd)
		if err != nil {
			return nil, err
		}
		mod.Functions = append(mod.Functions, fn)
	}

	if opt >= 2 {
		Optimize(mod.Init)
		for _, fn := range mod.Functions {
			Optimize(fn)
		}
	}
	return mod, nil
}

func (g *Generator) beginFunction(name string, ret types.Type, params []types.Type) {
	g.fn = &Function{Name: name, RetType: ret, ParamTypes: params}
	g.nextReg = 0
	g.nextLabel = 0
	g.addrOf = map[ast.SymbolID]Reg{}
	g.loops = nil
	if g.opt >= 1 {
		g.cache = newRegionCache()
	} else {
		g.cache = nil
	}
}

func (g *Generator) emitReg() Reg {
	r := g.nextReg
	g.nextReg++
	return r
}

func (g *Generator) newLabel() LabelID {
	l := g.nextLabel
	g.nextLabel++
	return l
}

func (g *Generator) emit(i Instr) {
	g.fn.Instrs = append(g.fn.Instrs, i)
	if i.Op == OpLabel {
		// Labels are join points: every cache is dropped wholesale, per
		// spec.md §4.2 ("all three caches are wholesale-invalidated at
		// labels... because phi functions are absent").
		if g.cache != nil {
			g.cache = newRegionCache()
		}
	}
}

func (g *Generator) emitLabel(id LabelID) {
	g.emit(Instr{Op: OpLabel, Target: id})
}

func (g *Generator) lowerFunc(fd *ast.FuncDef) (*Function, error) {
	sym := g.symtab.Get(fd.Sym)
	g.beginFunction(sym.Name, sym.FuncRet, sym.FuncParams)

	if sym.Name == "main" {
		// main is the program's sole entry point (the parser rejects a
		// function named "init" and a variable named "init" or "main"), so
		// this is the one place global initializers can safely run
		// exactly once, before any other code observes a global.
		g.emit(Instr{Op: OpCall, Type: types.VoidT(), Dst: NoReg, Sym: "init"})
	}

	for _, param := range fd.Params {
		psym := g.symtab.Get(param.Sym)
		pReg := g.emitReg()
		g.fn.ParamRegs = append(g.fn.ParamRegs, pReg)

		addr := g.emitReg()
		g.emit(Instr{Op: OpAlloc, Type: psym.Type, Dst: addr, Src1: NoReg, Size: NoReg})
		g.emit(Instr{Op: OpStore, Type: psym.Type, Src1: addr, Src2: pReg})
		g.addrOf[param.Sym] = addr
		if g.cache != nil {
			g.cache.setVar(param.Sym, pReg)
		}
	}

	if err := g.lowerStmt(fd.Body); err != nil {
		return nil, err
	}
	// A falling-off-the-end void function needs an explicit Return; a
	// non-void function is guaranteed by the parser to already end in one
	// on every path, so this is only ever reachable for void bodies.
	g.emit(Instr{Op: OpReturn, Src1: NoReg})

	return g.fn, nil
}

// ---------------------------------------------------------------------
// Statements.
// ---------------------------------------------------------------------

func (g *Generator) lowerStmt(s ast.Stmt) error {
	switch v := s.(type) {
	case *ast.Compound:
		for _, st := range v.Stmts {
			if err := g.lowerStmt(st); err != nil {
				return err
			}
		}
		return nil

	case *ast.LocalDecl:
		return g.lowerLocalDecl(v)

	case *ast.ExprStmt:
		_, err := g.exprVal(v.X)
		return err

	case *ast.If:
		return g.lowerIf(v)

	case *ast.While:
		return g.lowerWhile(v)

	case *ast.For:
		return g.lowerFor(v)

	case *ast.Return:
		var val Reg = NoReg
		if v.Value != nil {
			r, err := g.exprVal(v.Value)
			if err != nil {
				return err
			}
			val = r
		}
		g.emit(Instr{Op: OpReturn, Type: g.fn.RetType, Src1: val})
		return nil

	case *ast.Break:
		g.emit(Instr{Op: OpBranch, Branch: BrJmp, Target: g.loops[len(g.loops)-1].brk})
		return nil

	case *ast.Continue:
		g.emit(Instr{Op: OpBranch, Branch: BrJmp, Target: g.loops[len(g.loops)-1].cont})
		return nil

	default:
		return errors.Errorf("internal error: unhandled statement type %T", s)
	}
}

func (g *Generator) lowerLocalDecl(v *ast.LocalDecl) error {
	sym := g.symtab.Get(v.Sym)
	if v.Size != nil {
		// Array: `reg_sz = n * sizeof(elem)`, then Alloc with a dynamic
		// size operand (spec.md §4.2).
		n, err := g.exprVal(v.Size)
		if err != nil {
			return err
		}
		elemSize := sym.Type.Deref().Size()
		szReg := g.emitReg()
		scale := g.emitReg()
		g.emit(Instr{Op: OpMovC, Type: types.U32(), Dst: scale, Const: uint32(elemSize)})
		g.emit(Instr{Op: OpBinary, Type: types.U32(), BinOp: BMul, Dst: szReg, Src1: n, Src2: scale})
		addr := g.emitReg()
		g.emit(Instr{Op: OpAlloc, Type: sym.Type, Dst: addr, Src1: NoReg, Size: szReg})
		g.addrOf[v.Sym] = addr
		return nil
	}

	var init Reg = NoReg
	if v.Init != nil {
		r, err := g.exprVal(v.Init)
		if err != nil {
			return err
		}
		init = r
	}
	addr := g.emitReg()
	g.emit(Instr{Op: OpAlloc, Type: sym.Type, Dst: addr, Src1: init, Size: NoReg})
	g.addrOf[v.Sym] = addr
	if init != NoReg && g.cache != nil {
		g.cache.setVar(v.Sym, init)
	}
	return nil
}

func (g *Generator) lowerIf(v *ast.If) error {
	thenL := g.newLabel()
	var elseL, endL LabelID
	hasElse := v.Else != nil
	if hasElse {
		elseL = g.newLabel()
	}
	endL = g.newLabel()

	falseTarget := endL
	if hasElse {
		falseTarget = elseL
	}
	if err := g.lowerCond(v.Cond, thenL, falseTarget); err != nil {
		return err
	}
	g.emitLabel(thenL)
	if err := g.lowerStmt(v.Then); err != nil {
		return err
	}
	g.emit(Instr{Op: OpBranch, Branch: BrJmp, Target: endL})
	if hasElse {
		g.emitLabel(elseL)
		if err := g.lowerStmt(v.Else); err != nil {
			return err
		}
		g.emit(Instr{Op: OpBranch, Branch: BrJmp, Target: endL})
	}
	g.emitLabel(endL)
	return nil
}

func (g *Generator) lowerWhile(v *ast.While) error {
	condL := g.newLabel()
	bodyL := g.newLabel()
	endL := g.newLabel()

	g.emitLabel(condL)
	if err := g.lowerCond(v.Cond, bodyL, endL); err != nil {
		return err
	}
	g.emitLabel(bodyL)
	g.loops = append(g.loops, loopCtx{cont: condL, brk: endL})
	err := g.lowerStmt(v.Body)
	g.loops = g.loops[:len(g.loops)-1]
	if err != nil {
		return err
	}
	g.emit(Instr{Op: OpBranch, Branch: BrJmp, Target: condL})
	g.emitLabel(endL)
	return nil
}

func (g *Generator) lowerFor(v *ast.For) error {
	if v.Init != nil {
		if err := g.lowerStmt(v.Init); err != nil {
			return err
		}
	}
	condL := g.newLabel()
	bodyL := g.newLabel()
	stepL := g.newLabel()
	endL := g.newLabel()

	g.emitLabel(condL)
	if v.Cond != nil {
		if err := g.lowerCond(v.Cond, bodyL, endL); err != nil {
			return err
		}
	} else {
		g.emit(Instr{Op: OpBranch, Branch: BrJmp, Target: bodyL})
	}
	g.emitLabel(bodyL)
	g.loops = append(g.loops, loopCtx{cont: stepL, brk: endL})
	err := g.lowerStmt(v.Body)
	g.loops = g.loops[:len(g.loops)-1]
	if err != nil {
		return err
	}
	g.emitLabel(stepL)
	if v.Step != nil {
		if _, err := g.exprVal(v.Step); err != nil {
			return err
		}
	}
	g.emit(Instr{Op: OpBranch, Branch: BrJmp, Target: condL})
	g.emitLabel(endL)
	return nil
}

// lowerCond lowers a boolean-context expression directly into branches
// to trueL/falseL, fusing a top-level relational comparison into a
// single Branch instruction and short-circuiting && / ||, per spec.md
// §4.2's condition-fusion rule. Anything else is materialized as a 0/1
// value and tested with j_set/j_nset.
func (g *Generator) lowerCond(cond ast.Expr, trueL, falseL LabelID) error {
	if b, ok := cond.(*ast.Binary); ok {
		switch b.Op {
		case ast.BLogAnd:
			midL := g.newLabel()
			if err := g.lowerCond(b.Left, midL, falseL); err != nil {
				return err
			}
			g.emitLabel(midL)
			return g.lowerCond(b.Right, trueL, falseL)
		case ast.BLogOr:
			midL := g.newLabel()
			if err := g.lowerCond(b.Left, trueL, midL); err != nil {
				return err
			}
			g.emitLabel(midL)
			return g.lowerCond(b.Right, trueL, falseL)
		case ast.BLt, ast.BGt, ast.BLe, ast.BGe, ast.BEq, ast.BNe:
			lhs, err := g.exprVal(b.Left)
			if err != nil {
				return err
			}
			rhs, err := g.exprVal(b.Right)
			if err != nil {
				return err
			}
			g.emit(Instr{Op: OpBranch, Branch: branchKindFor(b.Op), Type: b.Left.Type(), Src1: lhs, Src2: rhs, Target: trueL})
			g.emit(Instr{Op: OpBranch, Branch: BrJmp, Target: falseL})
			return nil
		}
	}
	v, err := g.exprVal(cond)
	if err != nil {
		return err
	}
	g.emit(Instr{Op: OpBranch, Branch: BrSet, Src1: v, Target: trueL})
	g.emit(Instr{Op: OpBranch, Branch: BrJmp, Target: falseL})
	return nil
}

func branchKindFor(op ast.BinaryOp) BranchKind {
	switch op {
	case ast.BLt:
		return BrLt
	case ast.BGt:
		return BrGt
	case ast.BLe:
		return BrLe
	case ast.BGe:
		return BrGe
	case ast.BEq:
		return BrEq
	case ast.BNe:
		return BrNe
	default:
		return BrJmp
	}
}

func binKindFor(op ast.BinaryOp) BinKind {
	switch op {
	case ast.BAdd:
		return BAdd
	case ast.BSub:
		return BSub
	case ast.BMul:
		return BMul
	case ast.BDiv:
		return BDiv
	case ast.BMod:
		return BRem
	case ast.BAnd:
		return BAnd
	case ast.BOr:
		return BOr
	case ast.BXor:
		return BXor
	case ast.BShl:
		return BShl
	case ast.BShr:
		return BShr
	case ast.BLt:
		return BSlt
	case ast.BGt:
		return BSgt
	case ast.BLe:
		return BSle
	case ast.BGe:
		return BSge
	case ast.BEq:
		return BSeq
	case ast.BNe:
		return BSne
	default:
		return BAdd
	}
}

// ---------------------------------------------------------------------
// Expressions.
// ---------------------------------------------------------------------

// identAddr returns the address register of a declared variable,
// emitting a LoadA for globals (spec.md §4.2: "global -> LoadA of label
// followed by LoadR").
func (g *Generator) identAddr(id ast.SymbolID) Reg {
	sym := g.symtab.Get(id)
	if sym.Storage == ast.Global {
		addr := g.emitReg()
		g.emit(Instr{Op: OpLoadA, Type: sym.Type.Pointer(), Dst: addr, Sym: sym.Label})
		return addr
	}
	return g.addrOf[id]
}

// exprAddr lowers an lvalue expression to the register holding its
// address, plus its pointee type.
func (g *Generator) exprAddr(e ast.Expr) (Reg, types.Type, error) {
	switch v := e.(type) {
	case *ast.Ident:
		return g.identAddr(v.Sym), v.Type(), nil
	case *ast.Unary:
		if v.Op != ast.UnaryDeref {
			return NoReg, types.Type{}, errors.Errorf("internal error: %T is not an lvalue", e)
		}
		addr, err := g.exprVal(v.Operand)
		return addr, v.Type(), err
	case *ast.Index:
		return g.indexAddr(v)
	default:
		return NoReg, types.Type{}, errors.Errorf("internal error: %T is not an lvalue", e)
	}
}

func (g *Generator) indexAddr(v *ast.Index) (Reg, types.Type, error) {
	base, err := g.exprVal(v.Base)
	if err != nil {
		return NoReg, types.Type{}, err
	}
	idx, err := g.exprVal(v.Idx)
	if err != nil {
		return NoReg, types.Type{}, err
	}
	elemTy := v.Type()
	elemSize := elemTy.Size()
	scaled := idx
	if elemSize != 1 {
		scaleReg := g.emitReg()
		g.emit(Instr{Op: OpMovC, Type: types.U32(), Dst: scaleReg, Const: uint32(elemSize)})
		scaled = g.emitReg()
		g.emit(Instr{Op: OpBinary, Type: types.U32(), BinOp: BMul, Dst: scaled, Src1: idx, Src2: scaleReg})
	}
	addr := g.emitReg()
	g.emit(Instr{Op: OpBinary, Type: v.Base.Type(), BinOp: BAdd, Dst: addr, Src1: base, Src2: scaled})
	return addr, elemTy, nil
}

func (g *Generator) exprVal(e ast.Expr) (Reg, error) {
	switch v := e.(type) {
	case *ast.IntLit:
		return g.movc(types.U32(), v.Value), nil
	case *ast.CharLit:
		return g.movc(types.U8(), uint32(v.Value)), nil

	case *ast.Ident:
		sym := g.symtab.Get(v.Sym)
		if sym.IsFunc {
			return NoReg, errors.Errorf("internal error: function %q used as a value", sym.Name)
		}
		if g.cache != nil {
			if r, ok := g.cache.getVar(v.Sym); ok {
				return r, nil
			}
		}
		addr := g.identAddr(v.Sym)
		dst := g.emitReg()
		g.emit(Instr{Op: OpLoadR, Type: v.Type(), Dst: dst, Src1: addr})
		if g.cache != nil {
			g.cache.setVar(v.Sym, dst)
		}
		return dst, nil

	case *ast.Unary:
		return g.lowerUnary(v)

	case *ast.Binary:
		return g.lowerBinary(v)

	case *ast.Cast:
		src, err := g.exprVal(v.Operand)
		if err != nil {
			return NoReg, err
		}
		dst := g.emitReg()
		g.emit(Instr{Op: OpCast, Type: v.Type(), SrcType: v.Operand.Type(), Dst: dst, Src1: src})
		return dst, nil

	case *ast.Index:
		addr, elemTy, err := g.indexAddr(v)
		if err != nil {
			return NoReg, err
		}
		dst := g.emitReg()
		g.emit(Instr{Op: OpLoadR, Type: elemTy, Dst: dst, Src1: addr})
		return dst, nil

	case *ast.Call:
		return g.lowerCall(v)

	case *ast.Assign:
		return g.lowerAssign(v)

	default:
		return NoReg, errors.Errorf("internal error: unhandled expression type %T", e)
	}
}

func (g *Generator) movc(t types.Type, c uint32) Reg {
	if g.cache != nil {
		if r, ok := g.cache.getConst(t, c); ok {
			return r
		}
	}
	dst := g.emitReg()
	g.emit(Instr{Op: OpMovC, Type: t, Dst: dst, Const: c})
	if g.cache != nil {
		g.cache.setConst(t, c, dst)
	}
	return dst
}

func (g *Generator) lowerUnary(v *ast.Unary) (Reg, error) {
	switch v.Op {
	case ast.UnaryPlus:
		return g.exprVal(v.Operand)
	case ast.UnaryAddr:
		addr, _, err := g.exprAddr(v.Operand)
		return addr, err
	case ast.UnaryDeref:
		addr, err := g.exprVal(v.Operand)
		if err != nil {
			return NoReg, err
		}
		dst := g.emitReg()
		g.emit(Instr{Op: OpLoadR, Type: v.Type(), Dst: dst, Src1: addr})
		return dst, nil
	case ast.UnaryMinus:
		src, err := g.exprVal(v.Operand)
		if err != nil {
			return NoReg, err
		}
		dst := g.emitReg()
		g.emit(Instr{Op: OpUnary, Type: v.Type(), UnOp: UNeg, Dst: dst, Src1: src})
		return dst, nil
	case ast.UnaryNot:
		src, err := g.exprVal(v.Operand)
		if err != nil {
			return NoReg, err
		}
		dst := g.emitReg()
		g.emit(Instr{Op: OpUnary, Type: v.Type(), UnOp: UNSet, Dst: dst, Src1: src})
		return dst, nil
	default:
		return NoReg, errors.Errorf("internal error: unhandled unary operator %v", v.Op)
	}
}

func (g *Generator) lowerBinary(v *ast.Binary) (Reg, error) {
	if v.Op == ast.BLogAnd || v.Op == ast.BLogOr {
		// Logical && / || materialized as a value (e.g. `u32 x = a && b;`)
		// still short-circuits, via the same branch fusion used for
		// conditions.
		trueL, falseL, endL := g.newLabel(), g.newLabel(), g.newLabel()
		slot := g.emitReg()
		g.emit(Instr{Op: OpAlloc, Type: types.I32(), Dst: slot, Src1: NoReg, Size: NoReg})
		if err := g.lowerCond(v, trueL, falseL); err != nil {
			return NoReg, err
		}
		g.emitLabel(trueL)
		one := g.movc(types.I32(), 1)
		g.emit(Instr{Op: OpStore, Type: types.I32(), Src1: slot, Src2: one})
		g.emit(Instr{Op: OpBranch, Branch: BrJmp, Target: endL})
		g.emitLabel(falseL)
		zero := g.movc(types.I32(), 0)
		g.emit(Instr{Op: OpStore, Type: types.I32(), Src1: slot, Src2: zero})
		g.emitLabel(endL)
		dst := g.emitReg()
		g.emit(Instr{Op: OpLoadR, Type: types.I32(), Dst: dst, Src1: slot})
		return dst, nil
	}

	lhs, err := g.exprVal(v.Left)
	if err != nil {
		return NoReg, err
	}
	rhs, err := g.exprVal(v.Right)
	if err != nil {
		return NoReg, err
	}
	// Pointer ± integer: the integer operand is scaled by the pointee size.
	if lt, rt := v.Left.Type(), v.Right.Type(); (v.Op == ast.BAdd || v.Op == ast.BSub) && lt.IsPointer() != rt.IsPointer() {
		ptr, idx := lt, &rhs
		if rt.IsPointer() {
			ptr, idx = rt, &lhs
		}
		if sz := ptr.Deref().Size(); sz > 1 {
			scale := g.movc(types.U32(), uint32(sz))
			scaled := g.emitReg()
			g.emit(Instr{Op: OpBinary, Type: types.U32(), BinOp: BMul, Dst: scaled, Src1: *idx, Src2: scale})
			*idx = scaled
		}
	}
	bk := binKindFor(v.Op)

	s1, s2 := lhs, rhs
	if bk.commutative() && s1 > s2 {
		s1, s2 = s2, s1
	}
	if g.cache != nil {
		if r, ok := g.cache.getBin(bk, v.Type(), s1, s2); ok {
			return r, nil
		}
	}
	dst := g.emitReg()
	g.emit(Instr{Op: OpBinary, Type: v.Type(), BinOp: bk, Dst: dst, Src1: lhs, Src2: rhs})
	if g.cache != nil {
		g.cache.setBin(bk, v.Type(), s1, s2, dst)
	}
	return dst, nil
}

func (g *Generator) lowerCall(v *ast.Call) (Reg, error) {
	args := make([]Reg, len(v.Args))
	for i, a := range v.Args {
		r, err := g.exprVal(a)
		if err != nil {
			return NoReg, err
		}
		args[i] = r
	}
	var dst Reg = NoReg
	retTy := v.Type()
	if !retTy.IsVoid() {
		dst = g.emitReg()
	}
	g.emit(Instr{Op: OpCall, Type: retTy, Dst: dst, Sym: v.Name, Args: args})
	return dst, nil
}

func (g *Generator) lowerAssign(v *ast.Assign) (Reg, error) {
	addr, ty, err := g.exprAddr(v.Target)
	if err != nil {
		return NoReg, err
	}
	val, err := g.exprVal(v.Value)
	if err != nil {
		return NoReg, err
	}
	g.emit(Instr{Op: OpStore, Type: ty, Src1: addr, Src2: val})

	if ident, ok := v.Target.(*ast.Ident); ok {
		// A known symbol's address: update (rather than wholesale-drop)
		// the variable cache, per spec.md §4.2.
		if g.cache != nil {
			g.cache.setVar(ident.Sym, val)
		}
	} else if g.cache != nil {
		// Store through an arbitrary address: may alias any local, so the
		// variable cache is dropped wholesale (may-alias pessimism).
		g.cache.invalidateVars()
	}
	return val, nil
}
