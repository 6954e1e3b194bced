// Package vscpps implements the typed persistent-store layer: a flat
// byte-addressable non-volatile region whose layout is a sequence of
// fixed-offset fields, each present only when its compile-time feature flag
// is set (§6.2). The actual byte driver (ps_access_read8/write8) is supplied
// by the platform through the Driver interface.
package vscpps

// Driver is the platform-provided byte-level non-volatile storage access.
// Implementations perform no buffering or CRC of their own (§7: the core
// never does CRC on persistent memory).
type Driver interface {
	Init()
	Read8(addr uint16) uint8
	Write8(addr uint16, value uint8)
}

// Config controls which optional persistent fields exist and how large the
// variable-size ones (DM rows, DM-NG rule set) are. It mirrors the
// compile-time flags of vscp_config.h.
type Config struct {
	BootLoaderSupported   bool
	SegmentHeartbeat      bool
	GUIDInPS              bool
	ZoneInPS              bool
	SubZoneInPS           bool
	MfrDevIDInPS          bool
	MfrSubDevIDInPS       bool
	MDFURLInPS            bool
	StdFamilyInPS         bool
	StdTypeInPS           bool
	LoggerSupported       bool
	DMRowCount            int // 0 disables DM
	DMExtensionSupported  bool
	DMNGRuleSetSize       int // 0 disables DM-NG
}

// region is one named, optionally-present field in the persistent layout.
// NewLayout does not build a table of regions: it assigns offsets with its
// next(present, size) closure, and Store.RestoreFactoryDefaults clears each
// field explicitly.
type region struct {
	name    string
	present bool
	size    int
}

// Layout is the computed set of cumulative offsets for one Config. All
// offsets are resolved once, at construction, from the ordered list of
// regions in §6.2's table.
type Layout struct {
	cfg Config

	BootFlag        int
	Nickname        int
	SegmentCRC      int
	NodeControl     int
	UserID          int // 5 bytes
	GUID            int // 16 bytes, LSB-first
	Zone            int
	SubZone         int
	MfrDevID        int // 4 bytes
	MfrSubDevID     int // 4 bytes
	MDFURL          int // 32 bytes
	StdFamily       int // 4 bytes
	StdType         int // 4 bytes
	LogStreamID     int
	DMRows          int // DMRowCount*8 bytes
	DMExtRows       int // DMRowCount*8 bytes, only if DMExtensionSupported
	DMNGRuleSet     int // DMNGRuleSetSize bytes

	Size int
}

const (
	guidSize     = 16
	userIDSize   = 5
	mfrIDSize    = 4
	mdfURLSize   = 32
	familySize   = 4
	typeSize     = 4
	dmRowSize    = 8
)

// NewLayout computes field offsets from cfg in the fixed order §6.2 lists.
func NewLayout(cfg Config) *Layout {
	l := &Layout{cfg: cfg}
	off := 0

	next := func(present bool, size int) int {
		if !present || size == 0 {
			return -1
		}
		o := off
		off += size
		return o
	}

	l.BootFlag = next(cfg.BootLoaderSupported, 1)
	l.Nickname = next(true, 1)
	l.SegmentCRC = next(cfg.SegmentHeartbeat, 1)
	l.NodeControl = next(true, 1)
	l.UserID = next(true, userIDSize)
	l.GUID = next(cfg.GUIDInPS, guidSize)
	l.Zone = next(cfg.ZoneInPS, 1)
	l.SubZone = next(cfg.SubZoneInPS, 1)
	l.MfrDevID = next(cfg.MfrDevIDInPS, mfrIDSize)
	l.MfrSubDevID = next(cfg.MfrSubDevIDInPS, mfrIDSize)
	l.MDFURL = next(cfg.MDFURLInPS, mdfURLSize)
	l.StdFamily = next(cfg.StdFamilyInPS, familySize)
	l.StdType = next(cfg.StdTypeInPS, typeSize)
	l.LogStreamID = next(cfg.LoggerSupported, 1)
	l.DMRows = next(cfg.DMRowCount > 0, cfg.DMRowCount*dmRowSize)
	l.DMExtRows = next(cfg.DMRowCount > 0 && cfg.DMExtensionSupported, cfg.DMRowCount*dmRowSize)
	l.DMNGRuleSet = next(cfg.DMNGRuleSetSize > 0, cfg.DMNGRuleSetSize)

	l.Size = off
	return l
}

// Store is the typed accessor layer over a Driver, computed offsets from a
// Layout.
type Store struct {
	drv Driver
	lay *Layout
}

// NewStore binds a Driver to a Layout.
func NewStore(drv Driver, lay *Layout) *Store {
	return &Store{drv: drv, lay: lay}
}

func (s *Store) Layout() *Layout { return s.lay }

func (s *Store) readBytes(off, n int) []byte {
	if off < 0 {
		return nil
	}
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		buf[i] = s.drv.Read8(uint16(off + i))
	}
	return buf
}

func (s *Store) writeBytes(off int, data []byte) {
	if off < 0 {
		return
	}
	for i, b := range data {
		s.drv.Write8(uint16(off+i), b)
	}
}

// Byte reads and writes a single persisted byte at an absolute offset; used
// by callers (DM, DM-NG) that index into their own region directly.
func (s *Store) ReadByte(off int) uint8 {
	if off < 0 {
		return 0
	}
	return s.drv.Read8(uint16(off))
}

func (s *Store) WriteByte(off int, v uint8) {
	if off < 0 {
		return
	}
	s.drv.Write8(uint16(off), v)
}

// --- typed field accessors ---

func (s *Store) Nickname() uint8       { return s.ReadByte(s.lay.Nickname) }
func (s *Store) SetNickname(v uint8)   { s.WriteByte(s.lay.Nickname, v) }

func (s *Store) SegmentCRC() uint8     { return s.ReadByte(s.lay.SegmentCRC) }
func (s *Store) SetSegmentCRC(v uint8) { s.WriteByte(s.lay.SegmentCRC, v) }

func (s *Store) NodeControlFlags() uint8     { return s.ReadByte(s.lay.NodeControl) }
func (s *Store) SetNodeControlFlags(v uint8) { s.WriteByte(s.lay.NodeControl, v) }

func (s *Store) BootFlag() uint8     { return s.ReadByte(s.lay.BootFlag) }
func (s *Store) SetBootFlag(v uint8) { s.WriteByte(s.lay.BootFlag, v) }

func (s *Store) UserID() []byte           { return s.readBytes(s.lay.UserID, userIDSize) }
func (s *Store) SetUserID(data []byte)    { s.writeBytes(s.lay.UserID, data) }

// GUID returns the 16-byte GUID as stored, LSB-first (§3: stored LSB-first
// in persistent memory even though the wire order is MSB-first).
func (s *Store) GUID() []byte        { return s.readBytes(s.lay.GUID, guidSize) }
func (s *Store) SetGUID(data []byte) { s.writeBytes(s.lay.GUID, data) }

func (s *Store) Zone() uint8     { return s.ReadByte(s.lay.Zone) }
func (s *Store) SetZone(v uint8) { s.WriteByte(s.lay.Zone, v) }

func (s *Store) SubZone() uint8     { return s.ReadByte(s.lay.SubZone) }
func (s *Store) SetSubZone(v uint8) { s.WriteByte(s.lay.SubZone, v) }

func (s *Store) MfrDevID() []byte        { return s.readBytes(s.lay.MfrDevID, mfrIDSize) }
func (s *Store) SetMfrDevID(data []byte) { s.writeBytes(s.lay.MfrDevID, data) }

func (s *Store) MfrSubDevID() []byte        { return s.readBytes(s.lay.MfrSubDevID, mfrIDSize) }
func (s *Store) SetMfrSubDevID(data []byte) { s.writeBytes(s.lay.MfrSubDevID, data) }

func (s *Store) MDFURL() []byte        { return s.readBytes(s.lay.MDFURL, mdfURLSize) }
func (s *Store) SetMDFURL(data []byte) { s.writeBytes(s.lay.MDFURL, data) }

func (s *Store) StdFamily() []byte        { return s.readBytes(s.lay.StdFamily, familySize) }
func (s *Store) SetStdFamily(data []byte) { s.writeBytes(s.lay.StdFamily, data) }

func (s *Store) StdType() []byte        { return s.readBytes(s.lay.StdType, typeSize) }
func (s *Store) SetStdType(data []byte) { s.writeBytes(s.lay.StdType, data) }

func (s *Store) LogStreamID() uint8     { return s.ReadByte(s.lay.LogStreamID) }
func (s *Store) SetLogStreamID(v uint8) { s.WriteByte(s.lay.LogStreamID, v) }

// DMRowOffset returns the absolute offset of DM row i, byte j (0..7).
func (s *Store) DMRowOffset(row, byteIdx int) int {
	if s.lay.DMRows < 0 {
		return -1
	}
	return s.lay.DMRows + row*dmRowSize + byteIdx
}

// DMExtRowOffset returns the absolute offset of DM extension row i, byte j.
func (s *Store) DMExtRowOffset(row, byteIdx int) int {
	if s.lay.DMExtRows < 0 {
		return -1
	}
	return s.lay.DMExtRows + row*dmRowSize + byteIdx
}

// DMNGOffset returns the absolute offset of byte i within the DM-NG rule set.
func (s *Store) DMNGOffset(i int) int {
	if s.lay.DMNGRuleSet < 0 {
		return -1
	}
	return s.lay.DMNGRuleSet + i
}

// RestoreFactoryDefaults clears the fields §4's restore_factory_defaults
// operation names: nickname, segment CRC, user ID, node control flags (to
// default), DM rows, DM-NG rules and application registers are cleared by
// the caller (Core owns the app-register region; this only clears what PS
// itself understands).
func (s *Store) RestoreFactoryDefaults(defaultNodeControlFlags uint8) {
	s.SetNickname(0xFF)
	if s.lay.SegmentCRC >= 0 {
		s.SetSegmentCRC(0)
	}
	s.SetUserID(make([]byte, userIDSize))
	s.SetNodeControlFlags(defaultNodeControlFlags)
	if s.lay.DMRows >= 0 {
		s.writeBytes(s.lay.DMRows, make([]byte, s.cfg().DMRowCount*dmRowSize))
	}
	if s.lay.DMExtRows >= 0 {
		s.writeBytes(s.lay.DMExtRows, make([]byte, s.cfg().DMRowCount*dmRowSize))
	}
	if s.lay.DMNGRuleSet >= 0 {
		s.writeBytes(s.lay.DMNGRuleSet, make([]byte, s.cfg().DMNGRuleSetSize))
	}
}

func (s *Store) cfg() Config { return s.lay.cfg }
