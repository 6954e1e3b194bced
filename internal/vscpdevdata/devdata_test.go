package vscpdevdata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vscpnode/internal/vscpps"
)

func TestInitMirrorsStaticIntoPSOnlyWhenEnabled(t *testing.T) {
	lay := vscpps.NewLayout(vscpps.Config{ZoneInPS: true, SubZoneInPS: true})
	store := vscpps.NewStore(vscpps.NewMemDriver(), lay)

	static := Static{Zone: 5, SubZone: 9}
	d := New(Config{ZoneInPS: true, SubZoneInPS: true}, static, FirmwareVersion{}, store)
	d.Init()

	require.Equal(t, uint8(5), store.Zone())
	require.Equal(t, uint8(9), store.SubZone())
	require.Equal(t, uint8(5), d.Zone())
	require.Equal(t, uint8(9), d.SubZone())
}

func TestZoneFallsBackToStaticWhenNotInPS(t *testing.T) {
	lay := vscpps.NewLayout(vscpps.Config{})
	store := vscpps.NewStore(vscpps.NewMemDriver(), lay)

	d := New(Config{}, Static{Zone: 7}, FirmwareVersion{}, store)
	d.Init()

	require.Equal(t, uint8(7), d.Zone())
}

func TestMDFURLPaddedTo32Bytes(t *testing.T) {
	lay := vscpps.NewLayout(vscpps.Config{})
	store := vscpps.NewStore(vscpps.NewMemDriver(), lay)

	d := New(Config{}, Static{MDFURL: "example.org/x.xml"}, FirmwareVersion{}, store)
	require.Len(t, d.MDFURL(), 32)
	require.Equal(t, "example.org/x.xml", string(d.MDFURL()[:len("example.org/x.xml")]))
}

func TestFirmwareVersion(t *testing.T) {
	lay := vscpps.NewLayout(vscpps.Config{})
	store := vscpps.NewStore(vscpps.NewMemDriver(), lay)
	d := New(Config{}, Static{}, FirmwareVersion{Major: 1, Minor: 2, SubMinor: 3}, store)
	require.Equal(t, FirmwareVersion{Major: 1, Minor: 2, SubMinor: 3}, d.FirmwareVersion())
}
