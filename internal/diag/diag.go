// Package diag implements positioned compiler diagnostics. The compiler
// is single-threaded and batch (spec.md §5), so unlike the teacher's
// util/perror.go this is a plain accumulator: no channels, no goroutine,
// no mutex.
package diag

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a diagnostic per spec.md §7.
type Kind int

const (
	Lexical Kind = iota
	Syntactic
	Semantic
	Internal
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical error"
	case Syntactic:
		return "syntax error"
	case Semantic:
		return "semantic error"
	default:
		return "internal error"
	}
}

// Pos is a source position: line and column, both 1-indexed.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// Diagnostic is one positioned error.
type Diagnostic struct {
	Kind Kind
	Pos  Pos
	Msg  string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s at %s: %s", d.Kind, d.Pos, d.Msg)
}

// Bag accumulates diagnostics. Per spec.md §7 the implementation is
// permitted to stop at the first error or keep collecting more. The lexer
// and parser stop at their first error and do not use a Bag; it collects
// the command-line flag checks in internal/cliapp, so every bad flag is
// reported in one run.
type Bag struct {
	errs []Diagnostic
}

// Add appends a diagnostic to the bag.
func (b *Bag) Add(k Kind, p Pos, format string, args ...interface{}) {
	b.errs = append(b.errs, Diagnostic{Kind: k, Pos: p, Msg: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any diagnostic has been recorded.
func (b *Bag) HasErrors() bool { return len(b.errs) > 0 }

// First returns the first recorded diagnostic, or nil if the bag is empty.
func (b *Bag) First() error {
	if len(b.errs) == 0 {
		return nil
	}
	return b.errs[0]
}

// All returns every recorded diagnostic in the order they were added.
func (b *Bag) All() []Diagnostic { return b.errs }

// Err collapses the bag into a single wrapped error suitable for
// returning from a pipeline stage, or nil if the bag is empty. The
// wrapping preserves the first diagnostic as the root cause per
// github.com/pkg/errors conventions, so callers further up the pipeline
// can still unwrap it with errors.Cause.
func (b *Bag) Err() error {
	if !b.HasErrors() {
		return nil
	}
	if len(b.errs) == 1 {
		return errors.WithStack(b.errs[0])
	}
	return errors.Wrapf(b.errs[0], "%d diagnostic(s) reported", len(b.errs))
}
