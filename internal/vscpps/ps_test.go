package vscpps

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(cfg Config) *Store {
	return NewStore(NewMemDriver(), NewLayout(cfg))
}

func TestLayoutOmitsDisabledFields(t *testing.T) {
	lay := NewLayout(Config{})
	require.Equal(t, -1, lay.BootFlag)
	require.Equal(t, -1, lay.GUID)
	require.GreaterOrEqual(t, lay.Nickname, 0)
	require.GreaterOrEqual(t, lay.NodeControl, 0)
	require.NotEqual(t, lay.Nickname, lay.NodeControl)
}

func TestLayoutIncludesEnabledFieldsContiguously(t *testing.T) {
	lay := NewLayout(Config{
		GUIDInPS:   true,
		ZoneInPS:   true,
		DMRowCount: 4,
	})
	require.Equal(t, lay.GUID+16, lay.Zone)
	require.Equal(t, lay.DMRows+4*dmRowSize, lay.Size)
}

func TestNicknameRoundTrip(t *testing.T) {
	s := newTestStore(Config{})
	s.SetNickname(0x2A)
	require.Equal(t, uint8(0x2A), s.Nickname())
}

func TestGUIDRoundTrip(t *testing.T) {
	s := newTestStore(Config{GUIDInPS: true})
	want := make([]byte, 16)
	for i := range want {
		want[i] = byte(i)
	}
	s.SetGUID(want)
	require.Equal(t, want, s.GUID())
}

func TestDMRowOffsetsAreDistinctAndContiguous(t *testing.T) {
	s := newTestStore(Config{DMRowCount: 2})
	seen := map[int]bool{}
	for row := 0; row < 2; row++ {
		for col := 0; col < 8; col++ {
			off := s.DMRowOffset(row, col)
			require.False(t, seen[off], "offset %d reused", off)
			seen[off] = true
		}
	}
}

func TestRestoreFactoryDefaultsClearsNicknameAndMatrix(t *testing.T) {
	s := newTestStore(Config{DMRowCount: 1})
	s.SetNickname(5)
	s.WriteByte(s.DMRowOffset(0, 6), 0x42) // action_id

	s.RestoreFactoryDefaults(0x40)

	require.Equal(t, uint8(0xFF), s.Nickname())
	require.Equal(t, uint8(0x40), s.NodeControlFlags())
	require.Equal(t, uint8(0), s.ReadByte(s.DMRowOffset(0, 6)))
}

func TestDisabledRegionOffsetIsMinusOne(t *testing.T) {
	s := newTestStore(Config{})
	require.Equal(t, -1, s.Layout().GUID)
	// reads/writes against a disabled region must not panic and read as 0
	require.Equal(t, uint8(0), s.ReadByte(s.Layout().GUID))
}
