package cliapp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateFlagsAcceptsDefaults(t *testing.T) {
	require.NoError(t, validateFlags(&options{arch: "rv32im", opt: 0}))
}

func TestValidateFlagsRejectsUnsupportedArch(t *testing.T) {
	err := validateFlags(&options{arch: "arm64", opt: 0})
	require.Error(t, err)
	require.Contains(t, err.Error(), "arm64")
}

func TestValidateFlagsRejectsOutOfRangeOptLevel(t *testing.T) {
	err := validateFlags(&options{arch: "rv32im", opt: 3})
	require.Error(t, err)
	require.Contains(t, err.Error(), "optimization level")
}

func TestValidateFlagsCollectsBothProblemsAtOnce(t *testing.T) {
	err := validateFlags(&options{arch: "bogus", opt: -1})
	require.Error(t, err)
	require.Contains(t, err.Error(), "2 diagnostic(s) reported")
}
