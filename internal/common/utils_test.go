package common

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	s, err := MakeRandHexString(16)
	require.NoError(t, err)
	require.Len(t, s, 32)

	_, err = hex.DecodeString(s)
	require.NoError(t, err)
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	require.NoError(t, err)
	require.Empty(t, s)
}

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte("secret")
	WipeByteArray(buf)
	require.Equal(t, make([]byte, 6), buf)
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	require.NotPanics(t, func() { WipeByteArray(nil) })
}
