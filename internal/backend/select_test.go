package backend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSelectCallSpillsOverflowArguments exercises a 9-argument call: one
// more than the eight a0..a7 registers spec.md §3 reserves for arguments.
// The ninth must reach the callee through the stack rather than being
// silently dropped.
func TestSelectCallSpillsOverflowArguments(t *testing.T) {
	// Integer literals are u32-typed (spec.md §3) and the parser forbids
	// implicit conversions (spec.md §4.1), so nine's parameters and
	// return type are kept u32 to pass literal arguments directly;
	// main's own return is cast explicitly, matching the convention
	// testdata/mergesort.src uses for the same reason.
	mod := genModule(t, `
u32 nine(u32 a, u32 b, u32 c, u32 d, u32 e, u32 f, u32 g, u32 h, u32 i) {
	return i;
}
i32 main() {
	return (i32) nine(1, 2, 3, 4, 5, 6, 7, 8, 9);
}
`, 0)
	asm := Compile(mod)

	mainStart := strings.Index(asm, "\nmain:\n")
	require.GreaterOrEqual(t, mainStart, 0)
	mainBody := asm[mainStart:]

	require.Contains(t, mainBody, "addi\tsp, sp, -4", "one overflow argument needs a 4-byte stack bump around the call")
	require.Contains(t, mainBody, "sw\t", "the overflow argument must be stored to the bumped stack slot")
	require.Contains(t, mainBody, "jal\tra, nine")
	require.Contains(t, mainBody, "addi\tsp, sp, 4", "sp must be restored after the call")

	nineStart := strings.Index(asm, "\nnine:\n")
	require.GreaterOrEqual(t, nineStart, 0)
	nineBody := asm[nineStart:mainStart]
	require.Contains(t, nineBody, ", 0(sp)", "the callee must read its ninth parameter off the stack at its own entry sp")
}
