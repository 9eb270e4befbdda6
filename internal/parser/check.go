package parser

import "github.com/pcineverdies/dummy-cc/internal/ast"

// stmtAlwaysReturns reports whether s is guaranteed to execute a return
// statement on every control-flow path through it, per spec.md §4.1's
// "every path through a non-void function must return a value" check.
// It is intentionally conservative: loops are never treated as
// always-returning, since proving a while/for condition is always true
// is outside this analyzer's scope.
func stmtAlwaysReturns(s ast.Stmt) bool {
	switch v := s.(type) {
	case *ast.Return:
		return true
	case *ast.Compound:
		for _, st := range v.Stmts {
			if stmtAlwaysReturns(st) {
				return true
			}
		}
		return false
	case *ast.If:
		if v.Else == nil {
			return false
		}
		return stmtAlwaysReturns(v.Then) && stmtAlwaysReturns(v.Else)
	default:
		return false
	}
}
