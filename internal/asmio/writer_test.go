package asmio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterIns3Formatting(t *testing.T) {
	w := NewWriter()
	w.Ins3("add", "t0", "t1", "t2")
	require.Equal(t, "\tadd\tt0, t1, t2\n", w.String())
}

func TestWriterIns2immFormatting(t *testing.T) {
	w := NewWriter()
	w.Ins2imm("addi", "sp", "sp", -32)
	require.Equal(t, "\taddi\tsp, sp, -32\n", w.String())
}

func TestWriterLoadStoreFormatting(t *testing.T) {
	w := NewWriter()
	w.LoadStore("lw", "t0", -4, "tp")
	require.Equal(t, "\tlw\tt0, -4(tp)\n", w.String())
}

func TestWriterLabelFormatting(t *testing.T) {
	w := NewWriter()
	w.Label("main")
	require.Equal(t, "main:\n", w.String())
}

func TestWriterAccumulatesAcrossCalls(t *testing.T) {
	w := NewWriter()
	w.Ins1("j", ".Lend")
	w.Label(".Lend")
	require.Equal(t, "\tj\t.Lend\n.Lend:\n", w.String())
}
