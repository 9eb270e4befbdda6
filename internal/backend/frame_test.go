package backend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildFrameSizeIsAlignedTo16(t *testing.T) {
	locals := []localSlot{{bytes: 4}, {bytes: 4}, {bytes: 4}}
	fl := buildFrame(locals, map[string]bool{"s1": true})
	require.Zero(t, fl.size%16)
}

func TestBuildFrameLocalOffsetsAreSequential(t *testing.T) {
	locals := []localSlot{{bytes: 4}, {bytes: 8}, {bytes: 4}}
	fl := buildFrame(locals, nil)
	require.Equal(t, []int{0, 4, 12}, fl.localOffset)
}

func TestBuildFrameRaAndS0AtTopOfFrame(t *testing.T) {
	fl := buildFrame(nil, nil)
	require.Equal(t, fl.size-4, fl.raOffset)
	require.Equal(t, fl.size-8, fl.s0Offset)
}

func TestBuildFrameSavedRegsDescendFromS0Slot(t *testing.T) {
	fl := buildFrame(nil, map[string]bool{"s2": true, "s1": true})
	require.Equal(t, []string{"s1", "s2"}, fl.savedOrder)
	require.Equal(t, fl.size-8-4, fl.savedOffset["s1"])
	require.Equal(t, fl.size-8-8, fl.savedOffset["s2"])
}

func TestPrologueEpilogueAreMirrorImages(t *testing.T) {
	fl := buildFrame([]localSlot{{bytes: 4}}, map[string]bool{"s1": true})
	pro := fl.prologue()
	epi := fl.epilogue()
	// addi sp,sp,-size ; sw ra ; sw s0 ; mv s0,sp ; sw s1
	require.Equal(t, int64(-fl.size), pro[0].Imm)
	require.Equal(t, P("ra"), pro[1].Rs2)
	require.Equal(t, P("s0"), pro[2].Rs2)
	require.Equal(t, "mv", pro[3].Mnemonic)
	require.Equal(t, P("s1"), pro[4].Rs2)

	// lw s1 ; mv sp,s0 ; lw ra ; lw s0 ; addi sp,sp,size ; ret
	require.Equal(t, P("s1"), epi[0].Rd)
	require.Equal(t, "mv", epi[1].Mnemonic)
	require.Equal(t, P("ra"), epi[2].Rd)
	require.Equal(t, P("s0"), epi[3].Rd)
	require.Equal(t, int64(fl.size), epi[4].Imm)
	require.Equal(t, KRet, epi[5].Kind)
}
