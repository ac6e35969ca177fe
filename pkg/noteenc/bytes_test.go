package noteenc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewBytesFromSlice(t *testing.T) {
	require := require.New(t)

	src := []byte{1, 2, 3, 4}
	b, ok := NewBytesFromSlice(4, src)
	require.True(ok)
	require.Equal(src, b.AsBytes())

	_, ok = NewBytesFromSlice(5, src)
	require.False(ok)
}

func TestNewBytesFromSliceCopiesInput(t *testing.T) {
	require := require.New(t)

	src := []byte{1, 2, 3, 4}
	b, ok := NewBytesFromSlice(4, src)
	require.True(ok)

	src[0] = 0xff
	require.NotEqual(src[0], b.AsBytes()[0])
}

func TestNewBytesFromSliceWithTag(t *testing.T) {
	require := require.New(t)

	body := []byte{1, 2, 3}
	tag := []byte{9, 9}
	b, ok := NewBytesFromSliceWithTag(5, body, tag)
	require.True(ok)
	require.Equal([]byte{1, 2, 3, 9, 9}, b.AsBytes())

	_, ok = NewBytesFromSliceWithTag(4, body, tag)
	require.False(ok)
}

func TestEphemeralKeyBytesConstantTimeEqual(t *testing.T) {
	require := require.New(t)

	var a, b, c EphemeralKeyBytes
	a[0] = 1
	b[0] = 1
	c[0] = 2

	require.True(a.ConstantTimeEqual(b))
	require.False(a.ConstantTimeEqual(c))
}

func TestExtractedCommitmentBytesConstantTimeEqual(t *testing.T) {
	require := require.New(t)

	var a, b ExtractedCommitmentBytes
	a[31] = 7
	b[31] = 7
	require.True(a.ConstantTimeEqual(b))

	b[31] = 8
	require.False(a.ConstantTimeEqual(b))
}

func TestAsMutBytesSharesBacking(t *testing.T) {
	require := require.New(t)

	b, ok := NewBytesFromSlice(3, []byte{1, 2, 3})
	require.True(ok)

	mut := b.AsMutBytes()
	mut[0] = 0xaa
	require.Equal(byte(0xaa), b.AsBytes()[0])
}
