// Package parser implements spec.md §4.1: a recursive-descent parser
// that builds a fully typed internal/ast.Program directly, performing
// every inline semantic check spec.md §4.1 names (declared-before-use,
// no implicit conversions, lvalue/const assignment rules, arity and
// return-type checks, break/continue scoping, return coverage) as it
// goes, rather than the teacher's goyacc-then-separate-validate-pass
// pipeline. Grounded in recursive-descent style on
// y1yang0-falcon/src/ast/parser.go (single-token lookahead,
// consume/expect helpers), since the teacher's own parser is generated
// by goyacc from a grammar file this pack does not carry.
package parser

import (
	"github.com/pkg/errors"

	"github.com/pcineverdies/dummy-cc/internal/ast"
	"github.com/pcineverdies/dummy-cc/internal/diag"
	"github.com/pcineverdies/dummy-cc/internal/lexer"
	"github.com/pcineverdies/dummy-cc/internal/types"
)

// Parser holds the lookahead token stream and the state accumulated
// while building the typed AST: the symbol table arena, the loop-nesting
// depth (for break/continue validation) and the return type of the
// function currently being parsed (for return-statement validation).
//
// Per spec.md §7 ("the implementation is permitted to stop or to
// continue parsing for more diagnostics"), this parser takes the
// simplest sound option: it stops at the first diagnostic, since every
// check past the first assumes the subtree it inspects is already
// well-typed.
type Parser struct {
	toks []lexer.Token
	pos  int

	symtab    *ast.Symtab
	loopDepth int
	curRet    types.Type
	inFunc    bool
}

// Parse tokenizes src and parses it into a fully typed Program. On the
// first semantic, syntactic or lexical error it returns a wrapped
// diagnostic and no Program; per spec.md §4.1/§7 code generation must
// never be attempted over a Program that failed to parse cleanly.
func Parse(src string) (*ast.Program, error) {
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks, symtab: ast.NewSymtab()}
	prog, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	return prog, nil
}

func (p *Parser) cur() lexer.Token { return p.toks[p.pos] }
func (p *Parser) herePos() ast.Pos { t := p.cur(); return ast.Pos{Line: t.Line, Col: t.Col} }
func (p *Parser) atEOF() bool      { return p.cur().Kind == lexer.EOF }

func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// is reports whether the current token is of Kind k with lexeme lex (lex
// is ignored when it is the empty string, e.g. for Ident/IntLit).
func (p *Parser) is(k lexer.Kind, lex string) bool {
	t := p.cur()
	if t.Kind != k {
		return false
	}
	return lex == "" || t.Lexeme == lex
}

func (p *Parser) errf(format string, args ...interface{}) error {
	t := p.cur()
	return errors.Errorf("%s at %d:%d: "+format, append([]interface{}{diag.Syntactic, t.Line, t.Col}, args...)...)
}

// expect consumes the current token if it matches k/lex, else returns a
// positioned syntax error.
func (p *Parser) expect(k lexer.Kind, lex string) (lexer.Token, error) {
	if !p.is(k, lex) {
		return lexer.Token{}, p.errf("expected %q, got %q", lex, p.cur().Lexeme)
	}
	return p.advance(), nil
}

func (p *Parser) semErr(format string, args ...interface{}) error {
	t := p.cur()
	return errors.Errorf("%s at %d:%d: "+format, append([]interface{}{diag.Semantic, t.Line, t.Col}, args...)...)
}

// semErrAt is semErr against a previously captured position, used once the
// parser has advanced past the token the diagnostic is actually about.
func (p *Parser) semErrAt(pos ast.Pos, format string, args ...interface{}) error {
	return errors.Errorf("%s at %d:%d: "+format, append([]interface{}{diag.Semantic, pos.Line, pos.Col}, args...)...)
}

// ---------------------------------------------------------------------
// Top level.
// ---------------------------------------------------------------------

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{Symtab: p.symtab}
	for !p.atEOF() {
		d, err := p.parseTopDecl()
		if err != nil {
			return nil, err
		}
		prog.Decls = append(prog.Decls, d)
	}
	return prog, nil
}

// baseTypeKeywords maps the keyword spelling of a base type to its Kind.
var baseTypeKeywords = map[string]types.Kind{
	"u8": types.U8, "u16": types.U16, "u32": types.U32,
	"i8": types.I8, "i16": types.I16, "i32": types.I32,
	"void": types.Void,
}

func (p *Parser) isTypeStart() bool {
	if p.is(lexer.Keyword, "const") {
		return true
	}
	if p.cur().Kind != lexer.Keyword {
		return false
	}
	_, ok := baseTypeKeywords[p.cur().Lexeme]
	return ok
}

// parseType parses `[const] T [* ...]`.
func (p *Parser) parseType() (types.Type, error) {
	t := types.Type{}
	if p.is(lexer.Keyword, "const") {
		p.advance()
		t.Const = true
	}
	if p.cur().Kind != lexer.Keyword {
		return t, p.errf("expected a type keyword, got %q", p.cur().Lexeme)
	}
	k, ok := baseTypeKeywords[p.cur().Lexeme]
	if !ok {
		return t, p.errf("expected a type keyword, got %q", p.cur().Lexeme)
	}
	t.Kind = k
	p.advance()
	for p.is(lexer.Op, "*") {
		p.advance()
		t.Depth++
	}
	return t, nil
}

// parseTopDecl parses one of: variable, array, function prototype,
// function definition (spec.md §3 top-level declaration variants).
func (p *Parser) parseTopDecl() (ast.Decl, error) {
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

	if p.is(lexer.LParen, "") {
		return p.parseFunc(pos, typ, name)
	}

	if p.is(lexer.LBracket, "") {
		return p.parseGlobalArray(pos, typ, name)
	}

	// Plain global variable, optionally initialized.
	if name == "main" || name == "init" {
		return nil, p.semErr("%q is a reserved function name and cannot be used as a variable", name)
	}
	var init ast.Expr
	if p.is(lexer.Op, "=") {
		p.advance()
		init, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !init.Type().Equal(typ) {
			return nil, p.semErr("cannot initialize %s with value of type %s", typ, init.Type())
		}
	}
	if _, err := p.expect(lexer.Semicolon, ""); err != nil {
		return nil, err
	}
	id, ok := p.symtab.Declare(ast.Symbol{Name: name, Type: typ, Storage: ast.Global, Label: "G_" + name})
	if !ok {
		return nil, p.semErr("redeclaration of global %q", name)
	}
	gv := &ast.GlobalVar{Sym: id, Init: init}
	gv.Pos = pos
	return gv, nil
}
