// Package vscpdevdata implements node-identity accessors: GUID, zone/
// sub-zone, manufacturer IDs, firmware version, MDF URL and family code,
// each resolved either from a compile-time constant or from PersistentStore
// depending on Config, mirroring vscp_dev_data.c's per-field choice.
package vscpdevdata

import "vscpnode/internal/vscpps"

// FirmwareVersion is a compile-time constant triple; the original source
// never persists it.
type FirmwareVersion struct {
	Major, Minor, SubMinor uint8
}

// Static holds compile-time values used whenever Config selects "constant"
// over "PersistentStore-backed" for a given field.
type Static struct {
	GUID            [16]byte
	Zone            uint8
	SubZone         uint8
	MfrDevID        [4]byte
	MfrSubDevID     [4]byte
	MDFURL          string
	FamilyCode      [4]byte
	DeviceType      [4]byte
	BootLoaderAlgo  uint8 // 0xFF = none
}

// Config selects, per field, whether the value lives in Static or is
// mirrored into PersistentStore (and therefore writable via the register
// interface / factory reset).
type Config struct {
	GUIDInPS        bool
	ZoneInPS        bool
	SubZoneInPS     bool
	MfrDevIDInPS    bool
	MfrSubDevIDInPS bool
	MDFURLInPS      bool
	FamilyInPS      bool
	TypeInPS        bool
}

// DeviceData is the node-identity facade the register router and the
// WHO_IS_THERE / GET_MATRIX_INFO handlers read from.
type DeviceData struct {
	cfg      Config
	static   Static
	ps       *vscpps.Store
	fw       FirmwareVersion
}

func New(cfg Config, static Static, fw FirmwareVersion, ps *vscpps.Store) *DeviceData {
	return &DeviceData{cfg: cfg, static: static, ps: ps, fw: fw}
}

// Init mirrors the fields selected as PS-backed into persistent storage the
// first time the node boots with uninitialised storage; it is a no-op for
// fields already present, since Store never resets bytes on its own.
func (d *DeviceData) Init() {
	if d.cfg.GUIDInPS && allZero(d.ps.GUID()) {
		d.ps.SetGUID(d.static.GUID[:])
	}
	if d.cfg.ZoneInPS && d.ps.Zone() == 0 {
		d.ps.SetZone(d.static.Zone)
	}
	if d.cfg.SubZoneInPS && d.ps.SubZone() == 0 {
		d.ps.SetSubZone(d.static.SubZone)
	}
	if d.cfg.MfrDevIDInPS && allZero(d.ps.MfrDevID()) {
		d.ps.SetMfrDevID(d.static.MfrDevID[:])
	}
	if d.cfg.MfrSubDevIDInPS && allZero(d.ps.MfrSubDevID()) {
		d.ps.SetMfrSubDevID(d.static.MfrSubDevID[:])
	}
	if d.cfg.MDFURLInPS && allZero(d.ps.MDFURL()) {
		d.ps.SetMDFURL(padURL(d.static.MDFURL))
	}
	if d.cfg.FamilyInPS && allZero(d.ps.StdFamily()) {
		d.ps.SetStdFamily(d.static.FamilyCode[:])
	}
	if d.cfg.TypeInPS && allZero(d.ps.StdType()) {
		d.ps.SetStdType(d.static.DeviceType[:])
	}
}

func (d *DeviceData) GUID() []byte {
	if d.cfg.GUIDInPS {
		return d.ps.GUID()
	}
	return d.static.GUID[:]
}

func (d *DeviceData) Zone() uint8 {
	if d.cfg.ZoneInPS {
		return d.ps.Zone()
	}
	return d.static.Zone
}

func (d *DeviceData) SubZone() uint8 {
	if d.cfg.SubZoneInPS {
		return d.ps.SubZone()
	}
	return d.static.SubZone
}

func (d *DeviceData) MfrDevID() []byte {
	if d.cfg.MfrDevIDInPS {
		return d.ps.MfrDevID()
	}
	return d.static.MfrDevID[:]
}

func (d *DeviceData) MfrSubDevID() []byte {
	if d.cfg.MfrSubDevIDInPS {
		return d.ps.MfrSubDevID()
	}
	return d.static.MfrSubDevID[:]
}

// MDFURL returns the 32-byte, zero-padded MDF URL field as stored/configured.
func (d *DeviceData) MDFURL() []byte {
	if d.cfg.MDFURLInPS {
		return d.ps.MDFURL()
	}
	return padURL(d.static.MDFURL)
}

func (d *DeviceData) FamilyCode() []byte {
	if d.cfg.FamilyInPS {
		return d.ps.StdFamily()
	}
	return d.static.FamilyCode[:]
}

func (d *DeviceData) DeviceType() []byte {
	if d.cfg.TypeInPS {
		return d.ps.StdType()
	}
	return d.static.DeviceType[:]
}

func (d *DeviceData) FirmwareVersion() FirmwareVersion { return d.fw }

func (d *DeviceData) BootLoaderAlgorithm() uint8 { return d.static.BootLoaderAlgo }

func padURL(s string) []byte {
	buf := make([]byte, 32)
	copy(buf, s)
	return buf
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
