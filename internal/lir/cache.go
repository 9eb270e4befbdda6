package lir

import (
	"github.com/pcineverdies/dummy-cc/internal/ast"
	"github.com/pcineverdies/dummy-cc/internal/types"
)

// regionCache holds the three opt-level-1 caches described in spec.md
// §4.2, scoped to a single "linear region": a maximal straight-line span
// of LIR not crossed by a label. The generator replaces the whole
// struct with a fresh one on every emitLabel call, which is both the
// simplest and the spec-mandated way to realize the region boundary
// (§9: "clear them at labels unless the implementer proves otherwise").
type regionCache struct {
	vars  map[ast.SymbolID]Reg
	consts map[constKey]Reg
	bins  map[binKey]Reg
}

type constKey struct {
	kind  types.Kind
	depth int
	value uint32
}

type binKey struct {
	op   BinKind
	kind types.Kind
	a, b Reg
}

func newRegionCache() *regionCache {
	return &regionCache{
		vars:   map[ast.SymbolID]Reg{},
		consts: map[constKey]Reg{},
		bins:   map[binKey]Reg{},
	}
}

func (c *regionCache) getVar(id ast.SymbolID) (Reg, bool) {
	r, ok := c.vars[id]
	return r, ok
}

func (c *regionCache) setVar(id ast.SymbolID, r Reg) {
	c.vars[id] = r
}

// invalidateVars drops every variable-cache entry: spec.md §4.2's
// may-alias pessimism for a store through an address that is not a
// known local.
func (c *regionCache) invalidateVars() {
	c.vars = map[ast.SymbolID]Reg{}
}

func (c *regionCache) getConst(t types.Type, v uint32) (Reg, bool) {
	r, ok := c.consts[constKey{t.Kind, t.Depth, v}]
	return r, ok
}

func (c *regionCache) setConst(t types.Type, v uint32, r Reg) {
	c.consts[constKey{t.Kind, t.Depth, v}] = r
}

func (c *regionCache) getBin(op BinKind, t types.Type, a, b Reg) (Reg, bool) {
	r, ok := c.bins[binKey{op, t.Kind, a, b}]
	return r, ok
}

func (c *regionCache) setBin(op BinKind, t types.Type, a, b Reg, r Reg) {
	c.bins[binKey{op, t.Kind, a, b}] = r
}
