package vscputil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vscpnode/internal/vscpconst"
)

func TestZoneIndexTypeZeroNeverHasZone(t *testing.T) {
	_, ok := ZoneIndex(vscpconst.ClassAlarm, 0)
	require.False(t, ok)
}

func TestZoneIndexSimpleClasses(t *testing.T) {
	for _, class := range []uint16{
		vscpconst.ClassAlarm, vscpconst.ClassSecurity, vscpconst.ClassWeather,
	} {
		idx, ok := ZoneIndex(class, 1)
		require.True(t, ok)
		require.Equal(t, 1, idx)
		require.Equal(t, 2, SubZoneIndex(idx))
	}
}

func TestZoneIndexInformationStreamData(t *testing.T) {
	idx, ok := ZoneIndex(vscpconst.ClassInformation, typeInformationStreamData)
	require.False(t, ok)
	require.Equal(t, 0, idx)

	idx, ok = ZoneIndex(vscpconst.ClassInformation, typeInformationStreamDataWithZone)
	require.True(t, ok)
	require.Equal(t, 0, idx)
}

func TestZoneIndexUnrelatedClassHasNoZone(t *testing.T) {
	_, ok := ZoneIndex(vscpconst.ClassMeasurement, 6)
	require.False(t, ok)
}
