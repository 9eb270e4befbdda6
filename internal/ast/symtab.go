package ast

import (
	"github.com/pcineverdies/dummy-cc/internal/types"
)

// Storage classifies where a Symbol's value lives, per spec.md §3.
type Storage int

const (
	Global Storage = iota
	Local
	Parameter
)

// SymbolID is an arena index into a Symtab. Using an index rather than a
// *Symbol back-pointer (the design note in DESIGN.md) keeps the AST a
// plain tree: nothing outside Symtab ever holds a pointer into it.
type SymbolID int

// Symbol describes one declared name: its type, storage class, and, for
// globals and functions, a static label that the parser assigns ("G_" or
// "F_" followed by the name). Locals and parameters have no label; their
// stack-slot address registers are kept by internal/lir in its own map.
type Symbol struct {
	Name    string
	Type    types.Type
	Storage Storage
	Label   string // Assigned to globals and functions by the parser.
	IsFunc  bool
	// FuncParams/FuncRet are only meaningful when IsFunc is true.
	FuncParams []types.Type
	FuncRet    types.Type
	FuncProto  bool // true if only a prototype has been seen so far.
}

// scope is one lexical scope: a compound statement's worth of names.
type scope struct {
	names  map[string]SymbolID
	parent *scope
}

// Symtab is the arena of all Symbols declared in a program, plus the
// stack of scopes used while building the AST. A compound statement
// pushes a scope on entry and pops it on exit (spec.md §3); shadowing a
// name already declared in the *same* scope is a hard error, but a name
// may shadow one in an enclosing scope.
type Symtab struct {
	arena []Symbol
	top   *scope
}

// NewSymtab returns an empty Symtab with its global scope already
// pushed. The global scope is never popped.
func NewSymtab() *Symtab {
	st := &Symtab{}
	st.Push()
	return st
}

// Push opens a new, empty lexical scope.
func (st *Symtab) Push() {
	st.top = &scope{names: make(map[string]SymbolID), parent: st.top}
}

// Pop closes the innermost lexical scope. Popping the global scope is a
// programmer error and panics, since it would violate the invariant that
// Symtab always has at least one scope open.
func (st *Symtab) Pop() {
	if st.top.parent == nil {
		panic("ast: cannot pop the global scope")
	}
	st.top = st.top.parent
}

// Declare adds a new Symbol to the arena and binds name to it in the
// current scope. It returns false without modifying the Symtab if name
// is already declared in the current (innermost) scope — the caller
// turns that into the "duplicate declaration" diagnostic from spec.md
// §4.1.
func (st *Symtab) Declare(sym Symbol) (SymbolID, bool) {
	if _, dup := st.top.names[sym.Name]; dup {
		return 0, false
	}
	id := SymbolID(len(st.arena))
	st.arena = append(st.arena, sym)
	st.top.names[sym.Name] = id
	return id, true
}

// Lookup searches the current scope and every enclosing scope, innermost
// first, for name. It reports ok=false if no enclosing scope declares it.
func (st *Symtab) Lookup(name string) (SymbolID, bool) {
	for s := st.top; s != nil; s = s.parent {
		if id, ok := s.names[name]; ok {
			return id, true
		}
	}
	return 0, false
}

// Get dereferences a SymbolID into its Symbol. id must have been returned
// by Declare on this Symtab.
func (st *Symtab) Get(id SymbolID) *Symbol { return &st.arena[id] }

// Len returns the number of Symbols declared so far, across all scopes.
func (st *Symtab) Len() int { return len(st.arena) }

// All returns every Symbol in declaration order, for diagnostics/dumps.
func (st *Symtab) All() []Symbol { return st.arena }
