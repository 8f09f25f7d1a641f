package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte("Secret123")
	WipeByteArray(buf)
	require.Equal(t, make([]byte, len(buf)), buf)
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	require.NotPanics(t, func() { WipeByteArray(nil) })
}
