package cliapp

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pcineverdies/dummy-cc/internal/lexer"
)

// tokenTable formats a token stream the way the teacher's
// frontend.TokenStream does: a tabwriter table of value/kind/position,
// truncating long lexemes, flushed to stdout once at the end.
type tokenTable struct {
	tw *tabwriter.Writer
}

func newTokenTable() *tokenTable {
	tw := tabwriter.NewWriter(os.Stdout, 10, 20, 2, ' ', 0)
	fmt.Fprintf(tw, "Value\tKind\tPosition\n")
	return &tokenTable{tw: tw}
}

func (t *tokenTable) row(tok lexer.Token) {
	val := tok.Lexeme
	if len(val) > 20 {
		fmt.Fprintf(t.tw, "%.17q...\t%s\tline: %d:%d\n", val, kindName(tok.Kind), tok.Line, tok.Col)
		return
	}
	fmt.Fprintf(t.tw, "%q\t%s\tline: %d:%d\n", val, kindName(tok.Kind), tok.Line, tok.Col)
}

func (t *tokenTable) flush() { t.tw.Flush() }

func kindName(k lexer.Kind) string {
	switch k {
	case lexer.EOF:
		return "eof"
	case lexer.LBrace:
		return "lbrace"
	case lexer.RBrace:
		return "rbrace"
	case lexer.LBracket:
		return "lbracket"
	case lexer.RBracket:
		return "rbracket"
	case lexer.LParen:
		return "lparen"
	case lexer.RParen:
		return "rparen"
	case lexer.Semicolon:
		return "semicolon"
	case lexer.Comma:
		return "comma"
	case lexer.Op:
		return "operator"
	case lexer.Keyword:
		return "keyword"
	case lexer.Ident:
		return "ident"
	case lexer.IntLit:
		return "intlit"
	case lexer.CharLit:
		return "charlit"
	default:
		return "?"
	}
}
