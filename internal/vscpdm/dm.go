// Package vscpdm implements the standard-form Decision Matrix (§4.4): a
// fixed-row filter table, persisted either directly at a configured
// (page, offset) or behind two paged-feature pseudo-registers, with an
// optional per-row extension giving zone/sub-zone and extra payload
// matching.
package vscpdm

import (
	"vscpnode/internal/vscpconst"
	"vscpnode/internal/vscpevent"
	"vscpnode/internal/vscpps"
	"vscpnode/internal/vscputil"
)

// rowSize is the wire width of both the standard row and the extension row.
const rowSize = 8

// Row is the in-memory view of one standard DM row, decoded from its 8
// persisted bytes.
type Row struct {
	OriginAddr   uint8
	Flags        uint8
	ClassMask    uint8
	ClassFilter  uint8
	TypeMask     uint8
	TypeFilter   uint8
	ActionID     uint8
	ActionParam  uint8
}

// ExtRow is one extension row, same width, following the standard rows
// immediately in persistent memory when enabled.
type ExtRow struct {
	Zone        uint8
	SubZone     uint8
	Par0        uint8
	Par3        uint8
	Par4        uint8
	Par5        uint8
	ActionID    uint8
	ActionParam uint8
}

// Config configures one DM instance: row count, whether extension rows are
// enabled, and the addressing mode (direct region vs. two pseudo-registers).
type Config struct {
	RowCount        int
	ExtensionRows   bool
	PagedFeature    bool
	StartPage       uint16
	StartOffset     uint8 // ignored when PagedFeature is true
}

// ActionFunc is the user callback DM invokes on a matching row, (action_id,
// param, &event).
type ActionFunc func(actionID, param uint8, evt *vscpevent.RxEvent)

// DeviceZone supplies the node's own zone/sub-zone for §4.4 step 4's
// comparison.
type DeviceZone interface {
	Zone() uint8
	SubZone() uint8
}

// DM is the standard decision matrix, bound to a PersistentStore region and
// a device-zone provider.
type DM struct {
	cfg    Config
	ps     *vscpps.Store
	dev    DeviceZone
	action ActionFunc

	// pagedIndex holds the last value written to the index pseudo-register
	// in paged-feature mode.
	pagedIndex uint16
}

func New(cfg Config, ps *vscpps.Store, dev DeviceZone, action ActionFunc) *DM {
	return &DM{cfg: cfg, ps: ps, dev: dev, action: action}
}

// byteOffset converts a matrix-relative byte index to its absolute
// PersistentStore offset.
func (d *DM) byteOffset(i int) int {
	row, col := i/rowSize, i%rowSize
	return d.ps.DMRowOffset(row, col)
}

func (d *DM) extByteOffset(i int) int {
	row, col := i/rowSize, i%rowSize
	return d.ps.DMExtRowOffset(row, col)
}

// IsInMatrix reports whether (page, addr) lies inside the contiguous
// direct-mode DM region. Always false in paged-feature mode, where the DM
// is addressed only through the two pseudo-registers (handled separately
// by the register router).
func (d *DM) IsInMatrix(page uint16, addr uint8) bool {
	if d.cfg.PagedFeature || d.cfg.RowCount == 0 {
		return false
	}
	idx, ok := d.matrixByteIndex(page, addr)
	if !ok {
		return false
	}
	return idx < d.cfg.RowCount*rowSize
}

func (d *DM) matrixByteIndex(page uint16, addr uint8) (int, bool) {
	if page < d.cfg.StartPage {
		return 0, false
	}
	pageOffset := int(page-d.cfg.StartPage) * 256
	var inPage int
	if page == d.cfg.StartPage {
		if addr < d.cfg.StartOffset {
			return 0, false
		}
		inPage = int(addr - d.cfg.StartOffset)
	} else {
		inPage = int(addr)
	}
	return pageOffset + inPage, true
}

// ReadRegister reads a DM-owned register in direct mode.
func (d *DM) ReadRegister(page uint16, addr uint8) uint8 {
	idx, ok := d.matrixByteIndex(page, addr)
	if !ok {
		return 0
	}
	return d.ps.ReadByte(d.byteOffset(idx))
}

// WriteRegister writes a DM-owned register in direct mode.
func (d *DM) WriteRegister(page uint16, addr, value uint8) {
	idx, ok := d.matrixByteIndex(page, addr)
	if !ok {
		return
	}
	d.ps.WriteByte(d.byteOffset(idx), value)
}

// PagedIndexWrite handles a write to the paged-feature index
// pseudo-register (0x7E). Out-of-range values are dropped.
func (d *DM) PagedIndexWrite(value uint8) {
	idx := uint16(value)
	if int(idx) >= d.cfg.RowCount*rowSize {
		return
	}
	d.pagedIndex = idx
}

func (d *DM) PagedIndexRead() uint8 { return uint8(d.pagedIndex) }

// PagedFeatureEnabled reports whether this DM is configured to be addressed
// through the two paged pseudo-registers rather than a direct memory range.
func (d *DM) PagedFeatureEnabled() bool { return d.cfg.PagedFeature }

// RowCount, StartPage and StartOffset expose the matrix geometry GET_MATRIX_INFO
// reports (§4.2); StartOffset is meaningless in paged-feature mode.
func (d *DM) RowCount() int      { return d.cfg.RowCount }
func (d *DM) StartPage() uint16  { return d.cfg.StartPage }
func (d *DM) StartOffset() uint8 { return d.cfg.StartOffset }

// PagedValueWrite writes the byte at the last-selected paged index.
func (d *DM) PagedValueWrite(value uint8) {
	d.ps.WriteByte(d.byteOffset(int(d.pagedIndex)), value)
}

func (d *DM) PagedValueRead() uint8 {
	return d.ps.ReadByte(d.byteOffset(int(d.pagedIndex)))
}

func (d *DM) readRow(i int) Row {
	base := i * rowSize
	return Row{
		OriginAddr:  d.ps.ReadByte(d.byteOffset(base + 0)),
		Flags:       d.ps.ReadByte(d.byteOffset(base + 1)),
		ClassMask:   d.ps.ReadByte(d.byteOffset(base + 2)),
		ClassFilter: d.ps.ReadByte(d.byteOffset(base + 3)),
		TypeMask:    d.ps.ReadByte(d.byteOffset(base + 4)),
		TypeFilter:  d.ps.ReadByte(d.byteOffset(base + 5)),
		ActionID:    d.ps.ReadByte(d.byteOffset(base + 6)),
		ActionParam: d.ps.ReadByte(d.byteOffset(base + 7)),
	}
}

func (d *DM) readExtRow(i int) ExtRow {
	base := i * rowSize
	return ExtRow{
		Zone:        d.ps.ReadByte(d.extByteOffset(base + 0)),
		SubZone:     d.ps.ReadByte(d.extByteOffset(base + 1)),
		Par0:        d.ps.ReadByte(d.extByteOffset(base + 2)),
		Par3:        d.ps.ReadByte(d.extByteOffset(base + 3)),
		Par4:        d.ps.ReadByte(d.extByteOffset(base + 4)),
		Par5:        d.ps.ReadByte(d.extByteOffset(base + 5)),
		ActionID:    d.ps.ReadByte(d.extByteOffset(base + 6)),
		ActionParam: d.ps.ReadByte(d.extByteOffset(base + 7)),
	}
}

// extParIndex maps an extension flag bit to the event payload index it
// tests, per §4.4 step 6 ("par{0,3,4,5}").
var extParIndex = [4]struct {
	bit uint8
	idx int
}{
	{0x01, 0},
	{0x08, 3},
	{0x10, 4},
	{0x20, 5},
}

// Evaluate runs every enabled row in ascending index order against evt,
// invoking Action for each row (or its extension) that fully matches. All
// matching rows fire; there is no first-match-wins short-circuit (§4.4
// tie-break).
func (d *DM) Evaluate(evt *vscpevent.RxEvent) {
	for i := 0; i < d.cfg.RowCount; i++ {
		d.evaluateRow(i, evt)
	}
}

func (d *DM) evaluateRow(i int, evt *vscpevent.RxEvent) {
	row := d.readRow(i)

	if row.Flags&vscpconst.DMFlagEnable == 0 || row.ActionID == 0 {
		return
	}
	if row.Flags&vscpconst.DMFlagCheckOrigin != 0 && row.OriginAddr != evt.Origin {
		return
	}
	if row.Flags&vscpconst.DMFlagHardCoded != 0 && !evt.HardCoded {
		return
	}

	useExt := d.cfg.ExtensionRows && row.ActionID == vscpconst.DMActionIDExtension
	var ext ExtRow
	if useExt {
		ext = d.readExtRow(i)
	}

	if row.Flags&(vscpconst.DMFlagMatchZone|vscpconst.DMFlagMatchSubZone) != 0 {
		zoneIdx, ok := vscputil.ZoneIndex(evt.Class, evt.Type)
		if !ok {
			return
		}
		payload := evt.Payload()
		wantZone, wantSubZone := d.dev.Zone(), d.dev.SubZone()
		if useExt {
			wantZone, wantSubZone = ext.Zone, ext.SubZone
		}
		if row.Flags&vscpconst.DMFlagMatchZone != 0 {
			if zoneIdx >= len(payload) || payload[zoneIdx] != wantZone {
				return
			}
		}
		if row.Flags&vscpconst.DMFlagMatchSubZone != 0 {
			subIdx := vscputil.SubZoneIndex(zoneIdx)
			if subIdx >= len(payload) || payload[subIdx] != wantSubZone {
				return
			}
		}
	}

	classMask := uint16(row.ClassMask)
	if row.Flags&vscpconst.DMFlagClassMaskBit8 != 0 {
		classMask |= 0x100
	}
	classFilter := uint16(row.ClassFilter)
	if row.Flags&vscpconst.DMFlagClassFilterBit8 != 0 {
		classFilter |= 0x100
	}
	if classMask != 0 && (evt.Class&classMask) != classFilter {
		return
	}
	if row.TypeMask != 0 && (evt.Type&row.TypeMask) != row.TypeFilter {
		return
	}

	if useExt {
		payload := evt.Payload()
		for _, p := range extParIndex {
			if row.ActionParam&p.bit == 0 {
				continue
			}
			var want uint8
			switch p.idx {
			case 0:
				want = ext.Par0
			case 3:
				want = ext.Par3
			case 4:
				want = ext.Par4
			case 5:
				want = ext.Par5
			}
			if p.idx >= len(payload) || payload[p.idx] != want {
				return
			}
		}
		if d.action != nil {
			d.action(ext.ActionID, ext.ActionParam, evt)
		}
		return
	}

	if d.action != nil {
		d.action(row.ActionID, row.ActionParam, evt)
	}
}
