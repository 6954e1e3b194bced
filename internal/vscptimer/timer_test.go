package vscptimer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolCreateExhaustion(t *testing.T) {
	p := NewPool()
	for i := 0; i < poolSize; i++ {
		require.NotEqual(t, Invalid, p.Create())
	}
	require.Equal(t, Invalid, p.Create())
}

func TestStartExpireProcess(t *testing.T) {
	p := NewPool()
	id := p.Create()
	require.NotEqual(t, Invalid, id)

	p.Start(id, 100)
	require.True(t, p.Running(id))
	require.False(t, p.Expired(id))

	p.Process(60)
	require.Equal(t, uint32(40), p.Remaining(id))
	require.False(t, p.Expired(id))

	p.Process(60)
	require.False(t, p.Running(id))
	require.True(t, p.Expired(id))
}

func TestProcessSaturatesAtZero(t *testing.T) {
	p := NewPool()
	id := p.Create()
	p.Start(id, 10)
	p.Process(1000)
	require.Equal(t, uint32(0), p.Remaining(id))
	require.True(t, p.Expired(id))
}

func TestStopDisarms(t *testing.T) {
	p := NewPool()
	id := p.Create()
	p.Start(id, 100)
	p.Stop(id)
	require.False(t, p.Running(id))
	require.Equal(t, uint32(0), p.Remaining(id))
}

func TestInvalidIDIsSafe(t *testing.T) {
	p := NewPool()
	require.False(t, p.Running(Invalid))
	require.False(t, p.Expired(Invalid))
	require.Equal(t, uint32(0), p.Remaining(Invalid))
	p.Start(Invalid, 10) // must not panic
	p.Stop(Invalid)
}
