package vscputil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingBufferFIFOOrder(t *testing.T) {
	rb := NewRingBuffer(3, 1)
	require.True(t, rb.Push([]byte{1}))
	require.True(t, rb.Push([]byte{2}))
	require.Equal(t, 2, rb.Len())

	dst := make([]byte, 1)
	require.True(t, rb.Pop(dst))
	require.Equal(t, []byte{1}, dst)
}

func TestRingBufferPushOverwritesOldestWhenFull(t *testing.T) {
	rb := NewRingBuffer(2, 1)
	require.True(t, rb.Push([]byte{1}))
	require.True(t, rb.Push([]byte{2}))
	require.False(t, rb.Push([]byte{3})) // overwrites element 1
	require.Equal(t, 2, rb.Len())

	dst := make([]byte, 1)
	rb.Pop(dst)
	require.Equal(t, []byte{2}, dst)
	rb.Pop(dst)
	require.Equal(t, []byte{3}, dst)
}

func TestRingBufferPopEmptyReturnsFalse(t *testing.T) {
	rb := NewRingBuffer(2, 1)
	require.False(t, rb.Pop(make([]byte, 1)))
}

func TestRingBufferWrapsAroundCapacity(t *testing.T) {
	rb := NewRingBuffer(2, 1)
	rb.Push([]byte{1})
	rb.Push([]byte{2})
	dst := make([]byte, 1)
	rb.Pop(dst)
	require.True(t, rb.Push([]byte{3}))
	rb.Pop(dst)
	require.Equal(t, []byte{2}, dst)
	rb.Pop(dst)
	require.Equal(t, []byte{3}, dst)
}
