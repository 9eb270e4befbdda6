package parser

import (
	"github.com/pcineverdies/dummy-cc/internal/ast"
	"github.com/pcineverdies/dummy-cc/internal/lexer"
	"github.com/pcineverdies/dummy-cc/internal/types"
)

// parseExpr parses a full expression at the loosest (assignment)
// precedence, per spec.md §4.1 "operator precedence follows the grammar
// from loosest (assignment) down to cast/unary/postfix".
func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseAssign()
}

func (p *Parser) parseAssign() (ast.Expr, error) {
	lhs, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if !p.is(lexer.Op, "=") {
		return lhs, nil
	}
	pos := p.herePos()
	p.advance()
	rhs, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	if !isLValue(lhs) {
		return nil, p.semErrAt(pos, "left side of assignment is not an lvalue")
	}
	if isConstTarget(lhs) {
		return nil, p.semErrAt(pos, "cannot assign to a const-qualified value")
	}
	if !lhs.Type().Equal(rhs.Type()) {
		return nil, p.semErrAt(pos, "cannot assign value of type %s to target of type %s", rhs.Type(), lhs.Type())
	}
	a := &ast.Assign{Target: lhs, Value: rhs}
	a.Pos = pos
	a.Typ = lhs.Type()
	return a, nil
}

// binOpLevel is one precedence tier of binary operators: the tokens that
// belong to it and the ast.BinaryOp each maps to.
type binOpLevel struct {
	toks map[string]ast.BinaryOp
	next func(*Parser) (ast.Expr, error)
}

func (p *Parser) parseLogicalOr() (ast.Expr, error) {
	return p.parseBinaryLevel(map[string]ast.BinaryOp{"||": ast.BLogOr}, (*Parser).parseLogicalAnd)
}
func (p *Parser) parseLogicalAnd() (ast.Expr, error) {
	return p.parseBinaryLevel(map[string]ast.BinaryOp{"&&": ast.BLogAnd}, (*Parser).parseBitOr)
}
func (p *Parser) parseBitOr() (ast.Expr, error) {
	return p.parseBinaryLevel(map[string]ast.BinaryOp{"|": ast.BOr}, (*Parser).parseBitXor)
}
func (p *Parser) parseBitXor() (ast.Expr, error) {
	return p.parseBinaryLevel(map[string]ast.BinaryOp{"^": ast.BXor}, (*Parser).parseBitAnd)
}
func (p *Parser) parseBitAnd() (ast.Expr, error) {
	return p.parseBinaryLevel(map[string]ast.BinaryOp{"&": ast.BAnd}, (*Parser).parseEquality)
}
func (p *Parser) parseEquality() (ast.Expr, error) {
	return p.parseBinaryLevel(map[string]ast.BinaryOp{"==": ast.BEq, "!=": ast.BNe}, (*Parser).parseRelational)
}
func (p *Parser) parseRelational() (ast.Expr, error) {
	return p.parseBinaryLevel(map[string]ast.BinaryOp{"<": ast.BLt, ">": ast.BGt, "<=": ast.BLe, ">=": ast.BGe}, (*Parser).parseShift)
}
func (p *Parser) parseShift() (ast.Expr, error) {
	return p.parseBinaryLevel(map[string]ast.BinaryOp{"<<": ast.BShl, ">>": ast.BShr}, (*Parser).parseAdditive)
}
func (p *Parser) parseAdditive() (ast.Expr, error) {
	return p.parseBinaryLevel(map[string]ast.BinaryOp{"+": ast.BAdd, "-": ast.BSub}, (*Parser).parseMultiplicative)
}
func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	return p.parseBinaryLevel(map[string]ast.BinaryOp{"*": ast.BMul, "/": ast.BDiv, "%": ast.BMod}, (*Parser).parseCast)
}

// relOrLogical reports whether op produces a boolean-valued (0/1) i32,
// rather than the arithmetic-combined operand type.
func relOrLogical(op ast.BinaryOp) bool {
	switch op {
	case ast.BLt, ast.BGt, ast.BLe, ast.BGe, ast.BEq, ast.BNe, ast.BLogAnd, ast.BLogOr:
		return true
	default:
		return false
	}
}

func toArith(op ast.BinaryOp) types.BinaryOp {
	switch op {
	case ast.BAdd:
		return types.Add
	case ast.BSub:
		return types.Sub
	default:
		return types.OtherArith
	}
}

func (p *Parser) parseBinaryLevel(toks map[string]ast.BinaryOp, next func(*Parser) (ast.Expr, error)) (ast.Expr, error) {
	lhs, err := next(p)
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == lexer.Op {
		op, ok := toks[p.cur().Lexeme]
		if !ok {
			break
		}
		pos := p.herePos()
		p.advance()
		rhs, err := next(p)
		if err != nil {
			return nil, err
		}
		resTy, err := types.BinaryResult(toArith(op), lhs.Type(), rhs.Type())
		if err != nil {
			return nil, p.semErrAt(pos, "%s", err)
		}
		if relOrLogical(op) {
			resTy = types.I32()
		}
		b := &ast.Binary{Op: op, Left: lhs, Right: rhs}
		b.Pos = pos
		b.Typ = resTy
		lhs = b
	}
	return lhs, nil
}

// parseCast parses a C-style cast `(T) expr`, falling through to unary
// when the parenthesized sub-expression is not a type.
func (p *Parser) parseCast() (ast.Expr, error) {
	if p.is(lexer.LParen, "") && p.typeFollowsParen() {
		pos := p.herePos()
		p.advance()
		dst, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, ""); err != nil {
			return nil, err
		}
		operand, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		if err := types.CastAllowed(dst, operand.Type()); err != nil {
			return nil, p.semErrAt(pos, "%s", err)
		}
		c := &ast.Cast{Operand: operand}
		c.Pos = pos
		c.Typ = dst
		return c, nil
	}
	return p.parseUnary()
}

// typeFollowsParen peeks past the current '(' to see whether a type
// keyword immediately follows, distinguishing a cast from a parenthesized
// expression without consuming any tokens.
func (p *Parser) typeFollowsParen() bool {
	save := p.pos
	defer func() { p.pos = save }()
	p.advance() // '('
	return p.isTypeStart()
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.cur().Kind == lexer.Op {
		switch p.cur().Lexeme {
		case "+":
			pos := p.herePos()
			p.advance()
			operand, err := p.parseCast()
			if err != nil {
				return nil, err
			}
			u := &ast.Unary{Op: ast.UnaryPlus, Operand: operand}
			u.Pos, u.Typ = pos, operand.Type()
			return u, nil
		case "-":
			pos := p.herePos()
			p.advance()
			operand, err := p.parseCast()
			if err != nil {
				return nil, err
			}
			u := &ast.Unary{Op: ast.UnaryMinus, Operand: operand}
			u.Pos, u.Typ = pos, types.UnaryMinus(operand.Type())
			return u, nil
		case "!":
			pos := p.herePos()
			p.advance()
			operand, err := p.parseCast()
			if err != nil {
				return nil, err
			}
			u := &ast.Unary{Op: ast.UnaryNot, Operand: operand}
			u.Pos, u.Typ = pos, types.I32()
			return u, nil
		case "&":
			pos := p.herePos()
			p.advance()
			operand, err := p.parseCast()
			if err != nil {
				return nil, err
			}
			if !isLValue(operand) {
				return nil, p.semErrAt(pos, "operand of '&' must be an lvalue")
			}
			u := &ast.Unary{Op: ast.UnaryAddr, Operand: operand}
			u.Pos, u.Typ = pos, types.AddrOf(operand.Type())
			return u, nil
		case "*":
			pos := p.herePos()
			p.advance()
			operand, err := p.parseCast()
			if err != nil {
				return nil, err
			}
			resTy, err := types.Deref(operand.Type())
			if err != nil {
				return nil, p.semErrAt(pos, "%s", err)
			}
			u := &ast.Unary{Op: ast.UnaryDeref, Operand: operand}
			u.Pos, u.Typ = pos, resTy
			return u, nil
		}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.is(lexer.LBracket, ""):
			pos := p.herePos()
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if !idx.Type().IsInteger() {
				return nil, p.semErrAt(pos, "array index must be an integer, got %s", idx.Type())
			}
			if _, err := p.expect(lexer.RBracket, ""); err != nil {
				return nil, err
			}
			resTy, err := types.Index(e.Type())
			if err != nil {
				return nil, p.semErrAt(pos, "%s", err)
			}
			ix := &ast.Index{Base: e, Idx: idx}
			ix.Pos, ix.Typ = pos, resTy
			e = ix
		default:
			return e, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	pos := p.herePos()
	switch {
	case p.cur().Kind == lexer.IntLit:
		t := p.advance()
		lit := &ast.IntLit{Value: t.IntVal}
		lit.Pos, lit.Typ = pos, types.U32()
		return lit, nil
	case p.cur().Kind == lexer.CharLit:
		t := p.advance()
		lit := &ast.CharLit{Value: t.ChrVal}
		lit.Pos, lit.Typ = pos, types.U8()
		return lit, nil
	case p.is(lexer.LParen, ""):
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, ""); err != nil {
			return nil, err
		}
		return e, nil
	case p.cur().Kind == lexer.Ident:
		name := p.advance().Lexeme
		if p.is(lexer.LParen, "") {
			return p.parseCall(pos, name)
		}
		id, ok := p.symtab.Lookup(name)
		if !ok {
			return nil, p.semErrAt(pos, "undeclared identifier %q", name)
		}
		sym := p.symtab.Get(id)
		if sym.IsFunc {
			return nil, p.semErrAt(pos, "%q is a function, not a value", name)
		}
		ref := &ast.Ident{Name: name, Sym: id}
		ref.Pos, ref.Typ = pos, sym.Type
		return ref, nil
	default:
		return nil, p.errf("expected an expression, got %q", p.cur().Lexeme)
	}
}

func (p *Parser) parseCall(pos ast.Pos, name string) (ast.Expr, error) {
	id, ok := p.symtab.Lookup(name)
	if !ok {
		return nil, p.semErrAt(pos, "call to undeclared function %q", name)
	}
	sym := p.symtab.Get(id)
	if !sym.IsFunc {
		return nil, p.semErrAt(pos, "%q is not a function", name)
	}
	p.advance() // '('
	var args []ast.Expr
	if !p.is(lexer.RParen, "") {
		for {
			a, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.is(lexer.Comma, "") {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(lexer.RParen, ""); err != nil {
		return nil, err
	}
	if len(args) != len(sym.FuncParams) {
		return nil, p.semErrAt(pos, "call to %q: expected %d argument(s), got %d", name, len(sym.FuncParams), len(args))
	}
	for i, a := range args {
		if !a.Type().Equal(sym.FuncParams[i]) {
			return nil, p.semErrAt(pos, "call to %q: argument %d has type %s, expected %s", name, i+1, a.Type(), sym.FuncParams[i])
		}
	}
	c := &ast.Call{Name: name, Sym: id, Args: args}
	c.Pos, c.Typ = pos, sym.FuncRet
	return c, nil
}

// isLValue implements spec.md §4.1: "the left side must be an lvalue
// (identifier, *expr, or arr[expr])".
func isLValue(e ast.Expr) bool {
	switch v := e.(type) {
	case *ast.Ident:
		return true
	case *ast.Unary:
		return v.Op == ast.UnaryDeref
	case *ast.Index:
		return true
	default:
		return false
	}
}

// isConstTarget reports whether e's static type is const-qualified,
// which spec.md §4.1 forbids as an assignment target.
func isConstTarget(e ast.Expr) bool {
	return e.Type().Const
}
