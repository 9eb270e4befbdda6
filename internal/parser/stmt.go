package parser

import (
	"github.com/pcineverdies/dummy-cc/internal/ast"
	"github.com/pcineverdies/dummy-cc/internal/lexer"
	"github.com/pcineverdies/dummy-cc/internal/types"
)

// parseFunctionBody parses a function's `{ ... }` body. Unlike
// parseCompound it does not push its own scope: the caller (parseFunc)
// already pushed one scope to hold the parameters, and the body's
// top-level locals live in that same scope per spec.md §3.
func (p *Parser) parseFunctionBody() (*ast.Compound, error) {
	pos := p.herePos()
	if _, err := p.expect(lexer.LBrace, ""); err != nil {
		return nil, err
	}
	stmts, err := p.parseStmtsUntilRBrace()
	if err != nil {
		return nil, err
	}
	c := &ast.Compound{Stmts: stmts}
	c.Pos = pos
	return c, nil
}

// parseCompound parses a nested `{ ... }` block, pushing and popping its
// own scope (spec.md §3: every compound statement introduces a scope).
func (p *Parser) parseCompound() (*ast.Compound, error) {
	p.symtab.Push()
	defer p.symtab.Pop()
	return p.parseFunctionBody()
}

func (p *Parser) parseStmtsUntilRBrace() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.is(lexer.RBrace, "") {
		if p.atEOF() {
			return nil, p.errf("unexpected end of input, expected '}'")
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	p.advance() // '}'
	return stmts, nil
}

// parseStmt parses a single statement, per spec.md §3's statement
// variants.
func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch {
	case p.is(lexer.LBrace, ""):
		return p.parseCompound()
	case p.is(lexer.Keyword, "if"):
		return p.parseIf()
	case p.is(lexer.Keyword, "while"):
		return p.parseWhile()
	case p.is(lexer.Keyword, "for"):
		return p.parseFor()
	case p.is(lexer.Keyword, "return"):
		return p.parseReturn()
	case p.is(lexer.Keyword, "break"):
		return p.parseBreak()
	case p.is(lexer.Keyword, "continue"):
		return p.parseContinue()
	case p.isTypeStart():
		return p.parseLocalDecl()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	pos := p.herePos()
	p.advance() // 'if'
	if _, err := p.expect(lexer.LParen, ""); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !cond.Type().IsInteger() {
		return nil, p.semErrAt(pos, "if condition must be an integer, got %s", cond.Type())
	}
	if _, err := p.expect(lexer.RParen, ""); err != nil {
		return nil, err
	}
	then, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	var els ast.Stmt
	if p.is(lexer.Keyword, "else") {
		p.advance()
		els, err = p.parseStmt()
		if err != nil {
			return nil, err
		}
	}
	s := &ast.If{Cond: cond, Then: then, Else: els}
	s.Pos = pos
	return s, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	pos := p.herePos()
	p.advance() // 'while'
	if _, err := p.expect(lexer.LParen, ""); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !cond.Type().IsInteger() {
		return nil, p.semErrAt(pos, "while condition must be an integer, got %s", cond.Type())
	}
	if _, err := p.expect(lexer.RParen, ""); err != nil {
		return nil, err
	}
	p.loopDepth++
	body, err := p.parseStmt()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	s := &ast.While{Cond: cond, Body: body}
	s.Pos = pos
	return s, nil
}

func (p *Parser) parseFor() (ast.Stmt, error) {
	pos := p.herePos()
	p.advance() // 'for'
	if _, err := p.expect(lexer.LParen, ""); err != nil {
		return nil, err
	}
	// A for-loop's init clause opens its own scope so a declared loop
	// variable does not leak past the loop (spec.md §3).
	p.symtab.Push()
	defer p.symtab.Pop()

	var init ast.Stmt
	if !p.is(lexer.Semicolon, "") {
		var err error
		if p.isTypeStart() {
			init, err = p.parseLocalDecl()
		} else {
			init, err = p.parseExprStmt()
		}
		if err != nil {
			return nil, err
		}
	} else {
		p.advance()
	}

	var cond ast.Expr
	if !p.is(lexer.Semicolon, "") {
		var err error
		cond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !cond.Type().IsInteger() {
			return nil, p.semErrAt(pos, "for condition must be an integer, got %s", cond.Type())
		}
	}
	if _, err := p.expect(lexer.Semicolon, ""); err != nil {
		return nil, err
	}

	var step ast.Expr
	if !p.is(lexer.RParen, "") {
		var err error
		step, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.RParen, ""); err != nil {
		return nil, err
	}

	p.loopDepth++
	body, err := p.parseStmt()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	s := &ast.For{Init: init, Cond: cond, Step: step, Body: body}
	s.Pos = pos
	return s, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	pos := p.herePos()
	p.advance() // 'return'
	var val ast.Expr
	if !p.is(lexer.Semicolon, "") {
		var err error
		val, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.Semicolon, ""); err != nil {
		return nil, err
	}
	if p.curRet.IsVoid() {
		if val != nil {
			return nil, p.semErrAt(pos, "void function cannot return a value")
		}
	} else {
		if val == nil {
			return nil, p.semErrAt(pos, "function must return a value of type %s", p.curRet)
		}
		if !val.Type().Equal(p.curRet) {
			return nil, p.semErrAt(pos, "cannot return value of type %s from function returning %s", val.Type(), p.curRet)
		}
	}
	s := &ast.Return{Value: val}
	s.Pos = pos
	return s, nil
}

func (p *Parser) parseBreak() (ast.Stmt, error) {
	pos := p.herePos()
	p.advance()
	if p.loopDepth == 0 {
		return nil, p.semErrAt(pos, "break statement not within a loop")
	}
	if _, err := p.expect(lexer.Semicolon, ""); err != nil {
		return nil, err
	}
	s := &ast.Break{}
	s.Pos = pos
	return s, nil
}

func (p *Parser) parseContinue() (ast.Stmt, error) {
	pos := p.herePos()
	p.advance()
	if p.loopDepth == 0 {
		return nil, p.semErrAt(pos, "continue statement not within a loop")
	}
	if _, err := p.expect(lexer.Semicolon, ""); err != nil {
		return nil, err
	}
	s := &ast.Continue{}
	s.Pos = pos
	return s, nil
}

// parseLocalDecl parses a local scalar or array declaration statement.
func (p *Parser) parseLocalDecl() (ast.Stmt, error) {
	pos := p.herePos()
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.Ident, "")
	if err != nil {
		return nil, err
	}
	name := nameTok.Lexeme
	if name == "main" || name == "init" {
		return nil, p.semErrAt(pos, "%q is a reserved function name and cannot be used as a variable", name)
	}

	if p.is(lexer.LBracket, "") {
		p.advance()
		size, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !size.Type().Equal(types.U32()) {
			return nil, p.semErrAt(pos, "array size must be u32, got %s", size.Type())
		}
		if _, err := p.expect(lexer.RBracket, ""); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semicolon, ""); err != nil {
			return nil, err
		}
		id, ok := p.symtab.Declare(ast.Symbol{Name: name, Type: typ.Pointer(), Storage: ast.Local})
		if !ok {
			return nil, p.semErrAt(pos, "redeclaration of %q", name)
		}
		ld := &ast.LocalDecl{Sym: id, Size: size}
		ld.Pos = pos
		return ld, nil
	}

	var init ast.Expr
	if p.is(lexer.Op, "=") {
		p.advance()
		init, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !init.Type().Equal(typ) {
			return nil, p.semErrAt(pos, "cannot initialize %s with value of type %s", typ, init.Type())
		}
	}
	if _, err := p.expect(lexer.Semicolon, ""); err != nil {
		return nil, err
	}
	id, ok := p.symtab.Declare(ast.Symbol{Name: name, Type: typ, Storage: ast.Local})
	if !ok {
		return nil, p.semErrAt(pos, "redeclaration of %q", name)
	}
	ld := &ast.LocalDecl{Sym: id, Init: init}
	ld.Pos = pos
	return ld, nil
}

func (p *Parser) parseExprStmt() (ast.Stmt, error) {
	pos := p.herePos()
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon, ""); err != nil {
		return nil, err
	}
	s := &ast.ExprStmt{X: x}
	s.Pos = pos
	return s, nil
}
