// Package cliapp wires the compiler's pipeline stages to a command-line
// surface, replacing the teacher's hand-rolled `switch`-based argument
// loop (util/args.go's ParseArgs) with github.com/spf13/cobra while
// keeping the same flag surface spec.md §6 names: --file-name, --opt,
// --print-ast, --print-lir, --print-tokens, --arch.
package cliapp

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pcineverdies/dummy-cc/internal/ast"
	"github.com/pcineverdies/dummy-cc/internal/backend"
	"github.com/pcineverdies/dummy-cc/internal/diag"
	"github.com/pcineverdies/dummy-cc/internal/lexer"
	"github.com/pcineverdies/dummy-cc/internal/lir"
	"github.com/pcineverdies/dummy-cc/internal/parser"
)

var log = logrus.New()

type options struct {
	fileName    string
	opt         int
	arch        string
	printAST    bool
	printLIR    bool
	printTokens bool
	out         string
}

// NewCommand returns the root cobra.Command for the compiler, per
// spec.md §6's CLI contract.
func NewCommand() *cobra.Command {
	opt := &options{}
	cmd := &cobra.Command{
		Use:   "dummy-cc",
		Short: "compiles a C-like source file to RV32IM assembly",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opt)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opt.fileName, "file-name", "", "path to the source file (required)")
	flags.IntVar(&opt.opt, "opt", 0, "optimization level: 0, 1 or 2")
	flags.StringVar(&opt.arch, "arch", "rv32im", "target architecture (rv32im is the only supported value)")
	flags.BoolVar(&opt.printAST, "print-ast", false, "dump the typed AST and exit")
	flags.BoolVar(&opt.printLIR, "print-lir", false, "dump the generated LIR and exit")
	flags.BoolVar(&opt.printTokens, "print-tokens", false, "dump the token stream and exit")
	flags.StringVar(&opt.out, "out", "", "path to write the generated assembly (default: stdout)")
	_ = cmd.MarkFlagRequired("file-name")

	return cmd
}

// validateFlags collects every flag-level problem into a diag.Bag
// before returning, rather than aborting at the first one, since unlike
// a source-level parse these checks have no resynchronization to worry
// about and the user benefits from seeing every bad flag in one run.
func validateFlags(opt *options) error {
	var bag diag.Bag
	if opt.arch != "rv32im" {
		bag.Add(diag.Internal, diag.Pos{}, "unsupported target architecture %q: only rv32im is implemented", opt.arch)
	}
	if opt.opt < 0 || opt.opt > 2 {
		bag.Add(diag.Internal, diag.Pos{}, "optimization level must be 0, 1 or 2, got %d", opt.opt)
	}
	return bag.Err()
}

func run(opt *options) error {
	if err := validateFlags(opt); err != nil {
		return err
	}

	src, err := os.ReadFile(opt.fileName)
	if err != nil {
		return errors.Wrapf(err, "reading %s", opt.fileName)
	}

	if opt.printTokens {
		return dumpTokens(string(src))
	}

	log.WithField("file", opt.fileName).Info("parsing")
	prog, err := parser.Parse(string(src))
	if err != nil {
		return errors.Wrap(err, "parse error")
	}

	if opt.printAST {
		log.Info(ast.Dump(prog))
		return nil
	}

	log.WithField("opt", opt.opt).Info("generating LIR")
	mod, err := lir.Generate(prog, opt.opt)
	if err != nil {
		return errors.Wrap(err, "LIR generation error")
	}

	if opt.printLIR {
		log.Info(lir.Dump(mod))
		return nil
	}

	log.Info("selecting instructions and allocating registers")
	asm := backend.Compile(mod)

	if opt.out == "" {
		fmt.Print(asm)
		return nil
	}
	return errors.Wrap(os.WriteFile(opt.out, []byte(asm), 0644), "writing output")
}

// dumpTokens implements the --print-tokens scenario: mirrors the
// teacher's -ts flag / frontend.TokenStream, formatted as a tabwriter
// table exactly like the teacher's own token dump.
func dumpTokens(src string) error {
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		return errors.Wrap(err, "lex error")
	}
	w := newTokenTable()
	for _, t := range toks {
		w.row(t)
	}
	w.flush()
	return nil
}
