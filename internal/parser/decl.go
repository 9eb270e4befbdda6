package parser

import (
	"github.com/pcineverdies/dummy-cc/internal/ast"
	"github.com/pcineverdies/dummy-cc/internal/lexer"
	"github.com/pcineverdies/dummy-cc/internal/types"
)

// parseGlobalArray parses the `[ size ]` tail of a global array
// declaration; typ and name were already consumed by parseTopDecl.
func (p *Parser) parseGlobalArray(pos ast.Pos, typ types.Type, name string) (ast.Decl, error) {
	if name == "main" || name == "init" {
		return nil, p.semErr("%q is a reserved function name and cannot be used as a variable", name)
	}
	p.advance() // '['
	size, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !size.Type().Equal(types.U32()) {
		return nil, p.semErr("array size must be u32, got %s", size.Type())
	}
	if _, err := p.expect(lexer.RBracket, ""); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon, ""); err != nil {
		return nil, err
	}
	id, ok := p.symtab.Declare(ast.Symbol{Name: name, Type: typ.Pointer(), Storage: ast.Global, Label: "G_" + name})
	if !ok {
		return nil, p.semErr("redeclaration of global %q", name)
	}
	ga := &ast.GlobalArray{Sym: id, Size: size}
	ga.Pos = pos
	return ga, nil
}

// parseParamList parses a comma-separated `T name` list, assuming '(' has
// already been consumed, stopping before the closing ')'. It does not
// declare the parameters into any scope; the caller does that once it
// knows whether it is building a prototype or a definition.
func (p *Parser) parseParamList() (paramTypes []types.Type, paramNames []string, err error) {
	if p.is(lexer.RParen, "") {
		return nil, nil, nil
	}
	for {
		if !p.isTypeStart() {
			return nil, nil, p.errf("expected a parameter type, got %q", p.cur().Lexeme)
		}
		t, err := p.parseType()
		if err != nil {
			return nil, nil, err
		}
		nameTok, err := p.expect(lexer.Ident, "")
		if err != nil {
			return nil, nil, err
		}
		paramTypes = append(paramTypes, t)
		paramNames = append(paramNames, nameTok.Lexeme)
		if p.is(lexer.Comma, "") {
			p.advance()
			continue
		}
		break
	}
	return paramTypes, paramNames, nil
}

func sameTypes(a, b []types.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// parseFunc parses a prototype or definition; typ and name were already
// consumed by parseTopDecl, and the current token is '('.
func (p *Parser) parseFunc(pos ast.Pos, retTyp types.Type, name string) (ast.Decl, error) {
	if name == "init" {
		return nil, p.semErr("%q is a reserved function name", name)
	}
	p.advance() // '('
	paramTypes, paramNames, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, ""); err != nil {
		return nil, err
	}
	if name == "main" && len(paramTypes) > 0 {
		return nil, p.semErr("function %q must take no parameters", name)
	}

	existingID, exists := p.symtab.Lookup(name)
	var id ast.SymbolID
	if exists {
		sym := p.symtab.Get(existingID)
		if !sym.IsFunc {
			return nil, p.semErr("redeclaration of %q as a function", name)
		}
		if !sym.FuncRet.Equal(retTyp) || !sameTypes(sym.FuncParams, paramTypes) {
			return nil, p.semErr("conflicting declaration of function %q", name)
		}
		id = existingID
	} else {
		id, _ = p.symtab.Declare(ast.Symbol{
			Name: name, IsFunc: true, FuncRet: retTyp, FuncParams: paramTypes,
			FuncProto: true, Label: "F_" + name,
		})
	}

	if p.is(lexer.Semicolon, "") {
		p.advance()
		fp := &ast.FuncProto{Sym: id}
		fp.Pos = pos
		return fp, nil
	}

	if exists && !p.symtab.Get(existingID).FuncProto {
		return nil, p.semErr("redefinition of function %q", name)
	}

	p.symtab.Push()
	var params []ast.Param
	for i, pn := range paramNames {
		pid, ok := p.symtab.Declare(ast.Symbol{Name: pn, Type: paramTypes[i], Storage: ast.Parameter})
		if !ok {
			p.symtab.Pop()
			return nil, p.semErr("duplicate parameter name %q", pn)
		}
		params = append(params, ast.Param{Sym: pid})
	}

	p.symtab.Get(id).FuncProto = false

	savedRet, savedInFunc := p.curRet, p.inFunc
	p.curRet, p.inFunc = retTyp, true
	body, err := p.parseFunctionBody()
	p.curRet, p.inFunc = savedRet, savedInFunc
	p.symtab.Pop()
	if err != nil {
		return nil, err
	}

	if !retTyp.IsVoid() && !stmtAlwaysReturns(body) {
		return nil, p.semErr("function %q does not return a value on every path", name)
	}

	fd := &ast.FuncDef{Sym: id, Params: params, Body: body}
	fd.Pos = pos
	return fd, nil
}
