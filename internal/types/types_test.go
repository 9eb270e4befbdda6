package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualIgnoresConst(t *testing.T) {
	a := Type{Kind: I32, Const: true}
	b := Type{Kind: I32}
	require.True(t, a.Equal(b))
}

func TestEqualRespectsDepth(t *testing.T) {
	a := Type{Kind: I32, Depth: 1}
	b := Type{Kind: I32}
	require.False(t, a.Equal(b))
}

func TestPointerDeref(t *testing.T) {
	p := I32().Pointer()
	require.True(t, p.IsPointer())
	require.Equal(t, I32(), p.Deref())
}

func TestBinaryResultSameType(t *testing.T) {
	got, err := BinaryResult(OtherArith, I32(), I32())
	require.NoError(t, err)
	require.Equal(t, I32(), got)
}

func TestBinaryResultPointerPlusInteger(t *testing.T) {
	ptr := I32().Pointer()
	got, err := BinaryResult(Add, ptr, U32())
	require.NoError(t, err)
	require.Equal(t, ptr, got)
}

func TestBinaryResultIntegerPlusPointerOnlyForAdd(t *testing.T) {
	ptr := I32().Pointer()
	_, err := BinaryResult(Sub, U32(), ptr)
	require.Error(t, err)
}

func TestBinaryResultMismatch(t *testing.T) {
	_, err := BinaryResult(OtherArith, I32(), U8())
	require.Error(t, err)
}

func TestBinaryResultVoidOperand(t *testing.T) {
	_, err := BinaryResult(OtherArith, VoidT(), I32())
	require.Error(t, err)
}

func TestUnaryMinusForcesI32(t *testing.T) {
	require.Equal(t, I32(), UnaryMinus(U8()))
}

func TestDerefRequiresPointer(t *testing.T) {
	_, err := Deref(I32())
	require.Error(t, err)

	got, err := Deref(I32().Pointer())
	require.NoError(t, err)
	require.Equal(t, I32(), got)
}

func TestIndexRequiresPointer(t *testing.T) {
	_, err := Index(I32())
	require.Error(t, err)

	got, err := Index(I32().Pointer())
	require.NoError(t, err)
	require.Equal(t, I32(), got)
}

func TestCastAllowedIntegerToInteger(t *testing.T) {
	require.NoError(t, CastAllowed(U8(), I32()))
	require.NoError(t, CastAllowed(I32(), U8()))
}

func TestCastAllowedPointerToPointer(t *testing.T) {
	require.NoError(t, CastAllowed(U8().Pointer(), I32().Pointer()))
}

func TestCastAllowedPointerIntegerWidthMismatch(t *testing.T) {
	require.Error(t, CastAllowed(I32().Pointer(), U8()))
	require.NoError(t, CastAllowed(I32().Pointer(), U32()))
}

func TestCastToVoidIllegalExceptVoidPointer(t *testing.T) {
	require.Error(t, CastAllowed(VoidT(), I32()))
	require.NoError(t, CastAllowed(VoidT().Pointer(), I32()))
}

func TestTypeString(t *testing.T) {
	require.Equal(t, "i32", I32().String())
	require.Equal(t, "const i32", Type{Kind: I32, Const: true}.String())
	require.Equal(t, "u8*", U8().Pointer().String())
}
