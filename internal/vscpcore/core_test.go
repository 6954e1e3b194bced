package vscpcore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vscpnode/internal/vscpconst"
	"vscpnode/internal/vscpdevdata"
	"vscpnode/internal/vscpdm"
	"vscpnode/internal/vscpdmng"
	"vscpnode/internal/vscpevent"
	"vscpnode/internal/vscpps"
)

// fakeBus is an unbounded, order-preserving Transport double for tests: no
// dropped frames, no concurrency, so assertions can be made deterministically
// frame by frame.
type fakeBus struct {
	in  []vscpevent.RxEvent
	out []vscpevent.TxEvent
}

func (b *fakeBus) Read(evt *vscpevent.RxEvent) bool {
	if len(b.in) == 0 {
		return false
	}
	*evt = b.in[0]
	b.in = b.in[1:]
	return true
}

func (b *fakeBus) Write(evt *vscpevent.TxEvent) bool {
	b.out = append(b.out, *evt)
	return true
}

func (b *fakeBus) inject(evt vscpevent.RxEvent) { b.in = append(b.in, evt) }

func (b *fakeBus) findType(typ uint8) (vscpevent.TxEvent, bool) {
	for _, e := range b.out {
		if e.Type == typ {
			return e, true
		}
	}
	return vscpevent.TxEvent{}, false
}

type memAppRegisters struct{ page [256]byte }

func (a *memAppRegisters) Init()             {}
func (a *memAppRegisters) RestoreDefaults()  { a.page = [256]byte{} }
func (a *memAppRegisters) PagesUsed() uint16 { return 1 }
func (a *memAppRegisters) Read(page uint16, addr uint8) uint8 {
	if page != 1 {
		return 0
	}
	return a.page[addr]
}
func (a *memAppRegisters) Write(page uint16, addr, value uint8) bool {
	if page != 1 {
		return false
	}
	a.page[addr] = value
	return true
}

func newTestCore(t *testing.T) (*Core, *fakeBus) {
	t.Helper()
	bus := &fakeBus{}
	lay := vscpps.NewLayout(vscpps.Config{DMRowCount: 1, DMNGRuleSetSize: 32, BootLoaderSupported: true, SegmentHeartbeat: true})
	store := vscpps.NewStore(vscpps.NewMemDriver(), lay)
	dev := vscpdevdata.New(vscpdevdata.Config{}, vscpdevdata.Static{BootLoaderAlgo: 0xFF}, vscpdevdata.FirmwareVersion{Major: 1}, store)
	appRegs := &memAppRegisters{}
	dm := vscpdm.New(vscpdm.Config{RowCount: 1, StartPage: 2}, store, dev, nil)
	dmng := vscpdmng.New(vscpdmng.Config{Page: 3, RuleSetSize: 32}, store, nil)

	cfg := Config{
		NodeSegmentInitTimeoutMS: 1000,
		ProbeAckTimeoutMS:        1000,
		MultiMsgTimeoutMS:        1000,
		HeartbeatPeriodMS:        1000,
		HeartbeatEnabled:         false,
		VSCPMajorVersion:         1,
		VSCPMinorVersion:         13,
		DefaultNodeControlFlags:  vscpconst.NodeControlStartupAuto | vscpconst.NodeControlRegWriteEnable,
	}
	core := New(cfg, NopPlatform{}, bus, store, dev, appRegs, dm, dmng)
	core.Init()
	return core, bus
}

func TestInitRestoresFactoryDefaultsWhenUninitialised(t *testing.T) {
	core, _ := newTestCore(t)
	require.Equal(t, uint8(0xFF), core.ReadNickname())
	require.Equal(t, uint8(vscpconst.NodeControlStartupAuto), core.ps.NodeControlFlags()&vscpconst.NodeControlStartupMask)
}

func TestAutoStartupEntersInitAndProbesSegmentMaster(t *testing.T) {
	core, bus := newTestCore(t)
	require.Equal(t, StateInit, core.State())

	core.Process()
	probe, ok := bus.findType(vscpconst.ProtoNewNodeOnline)
	require.True(t, ok)
	require.Equal(t, uint8(vscpconst.NicknameUninitialised), probe.Origin)
}

func TestProbeAckFromSegmentMasterEntersPreActive(t *testing.T) {
	core, bus := newTestCore(t)
	core.Process() // sends probe to segment master, arms timer

	bus.inject(vscpevent.RxEvent{
		Class:  vscpconst.ClassProtocol,
		Type:   vscpconst.ProtoProbeAck,
		Origin: vscpconst.NicknameSegmentMaster,
	})
	core.Process()

	require.Equal(t, StatePreActive, core.State())
}

func TestSetNicknameFromMasterActivatesNode(t *testing.T) {
	core, bus := newTestCore(t)
	core.Process()
	bus.inject(vscpevent.RxEvent{Class: vscpconst.ClassProtocol, Type: vscpconst.ProtoProbeAck, Origin: vscpconst.NicknameSegmentMaster})
	core.Process()
	require.Equal(t, StatePreActive, core.State())

	setNick := vscpevent.RxEvent{Class: vscpconst.ClassProtocol, Type: vscpconst.ProtoSetNickname, Origin: vscpconst.NicknameSegmentMaster}
	setNick.SetPayload(vscpconst.NicknameUninitialised, 0x20)
	bus.inject(setNick)
	core.Process()

	require.Equal(t, StateActive, core.State())
	require.Equal(t, uint8(0x20), core.ReadNickname())
	_, ok := bus.findType(vscpconst.ProtoNicknameAccepted)
	require.True(t, ok)
}

func activateWithNickname(t *testing.T, nickname uint8) (*Core, *fakeBus) {
	t.Helper()
	core, bus := newTestCore(t)
	core.Process()
	bus.inject(vscpevent.RxEvent{Class: vscpconst.ClassProtocol, Type: vscpconst.ProtoProbeAck, Origin: vscpconst.NicknameSegmentMaster})
	core.Process()
	setNick := vscpevent.RxEvent{Class: vscpconst.ClassProtocol, Type: vscpconst.ProtoSetNickname, Origin: vscpconst.NicknameSegmentMaster}
	setNick.SetPayload(vscpconst.NicknameUninitialised, nickname)
	bus.inject(setNick)
	core.Process()
	require.Equal(t, StateActive, core.State())
	bus.out = nil
	return core, bus
}

func TestReadWriteRegisterRoundTrip(t *testing.T) {
	core, bus := activateWithNickname(t, 0x20)

	req := vscpevent.RxEvent{Class: vscpconst.ClassProtocol, Type: vscpconst.ProtoWriteRegister}
	req.SetPayload(0x20, 0x84, 0x42) // write user-id byte 0
	bus.inject(req)
	core.Process()

	resp, ok := bus.findType(vscpconst.ProtoRWResponse)
	require.True(t, ok)
	require.Equal(t, []byte{0x84, 0x42}, resp.Payload())

	bus.out = nil
	read := vscpevent.RxEvent{Class: vscpconst.ClassProtocol, Type: vscpconst.ProtoReadRegister}
	read.SetPayload(0x20, 0x84, 1)
	bus.inject(read)
	core.Process()

	resp, ok = bus.findType(vscpconst.ProtoRWResponse)
	require.True(t, ok)
	require.Equal(t, []byte{0x84, 0x42}, resp.Payload())
}

func TestAlarmStatusLatchesAndClearsOnRead(t *testing.T) {
	core, bus := activateWithNickname(t, 0x20)
	core.SetAlarm(0x04)

	read := vscpevent.RxEvent{Class: vscpconst.ClassProtocol, Type: vscpconst.ProtoReadRegister}
	read.SetPayload(0x20, vscpconst.RegAlarmStatus, 1)
	bus.inject(read)
	core.Process()
	resp, ok := bus.findType(vscpconst.ProtoRWResponse)
	require.True(t, ok)
	require.Equal(t, uint8(0x04), resp.Payload()[1])

	bus.out = nil
	bus.inject(read)
	core.Process()
	resp, _ = bus.findType(vscpconst.ProtoRWResponse)
	require.Equal(t, uint8(0), resp.Payload()[1])
}

func TestDropNicknameResetsNode(t *testing.T) {
	core, bus := activateWithNickname(t, 0x20)

	// No flags byte: clear nickname, reset immediately (§4.2.1).
	drop := vscpevent.RxEvent{Class: vscpconst.ClassProtocol, Type: vscpconst.ProtoDropNickname, Origin: vscpconst.NicknameSegmentMaster}
	drop.SetPayload(0x20)
	bus.inject(drop)
	core.Process()

	require.Equal(t, StateReset, core.State())
	require.Equal(t, uint8(vscpconst.NicknameUninitialised), core.ReadNickname())
}

func TestDropNicknameBit6RestoresFactoryDefaults(t *testing.T) {
	core, bus := activateWithNickname(t, 0x20)

	// Bit 6 set, bit 5 also set: back up nickname, restore_factory_defaults,
	// restore the saved nickname, then reset keeping it (§4.2.1).
	drop := vscpevent.RxEvent{Class: vscpconst.ClassProtocol, Type: vscpconst.ProtoDropNickname, Origin: vscpconst.NicknameSegmentMaster}
	drop.SetPayload(0x20, 0x60)
	bus.inject(drop)
	core.Process()

	require.Equal(t, StateReset, core.State())
	require.Equal(t, uint8(0x20), core.ReadNickname())
}

func TestDropNicknameBit7EntersIdle(t *testing.T) {
	core, bus := activateWithNickname(t, 0x20)

	drop := vscpevent.RxEvent{Class: vscpconst.ClassProtocol, Type: vscpconst.ProtoDropNickname, Origin: vscpconst.NicknameSegmentMaster}
	drop.SetPayload(0x20, 0x80)
	bus.inject(drop)
	core.Process()

	require.Equal(t, StateIdle, core.State())
	require.Equal(t, uint8(vscpconst.NicknameUninitialised), core.ReadNickname())
}

func TestExtendedPageReadSplitsOnPageBoundary(t *testing.T) {
	core, bus := activateWithNickname(t, 0x20)

	// Scenario: page 0x0005 in the request, 4 registers starting at addr 0xFE —
	// only 2 registers remain before the page wraps to 0x0006.
	req := vscpevent.RxEvent{Class: vscpconst.ClassProtocol, Type: vscpconst.ProtoExtendedPageRead}
	req.SetPayload(0x20, 0x00, 0x05, 0xFE, 4)
	bus.inject(req)
	core.Process() // consumes the request, starts the stream, sends the first (page-bounded) chunk

	resp, ok := bus.findType(vscpconst.ProtoExtendedPageResponse)
	require.True(t, ok)
	require.Equal(t, []byte{0, 0x00, 0x05, 0xFE}, resp.Payload()[:4])
	require.Len(t, resp.Payload(), 6) // 4-byte header + 2 registers

	bus.out = nil
	core.Process()
	resp, ok = bus.findType(vscpconst.ProtoExtendedPageResponse)
	require.True(t, ok)
	require.Equal(t, []byte{1, 0x00, 0x06, 0x00}, resp.Payload()[:4])
	require.Len(t, resp.Payload(), 6) // 4-byte header + remaining 2 registers
}

func TestGetMatrixInfoReportsRealGeometry(t *testing.T) {
	core, bus := activateWithNickname(t, 0x20)

	req := vscpevent.RxEvent{Class: vscpconst.ClassProtocol, Type: vscpconst.ProtoGetMatrixInfo}
	req.SetPayload(0x20)
	bus.inject(req)
	core.Process()

	resp, ok := bus.findType(vscpconst.ProtoGetMatrixInfoResponse)
	require.True(t, ok)
	// newTestCore's DM: Config{RowCount: 1, StartPage: 2}.
	require.Equal(t, []byte{1, 0, 0, 2}, resp.Payload())
}

func TestWhoIsThereEmitsGUIDAndMDFURLZeroPadded(t *testing.T) {
	core, bus := activateWithNickname(t, 0x20)

	req := vscpevent.RxEvent{Class: vscpconst.ClassProtocol, Type: vscpconst.ProtoWhoIsThere}
	req.SetPayload(0x20)
	bus.inject(req)
	core.Process()

	var frames []vscpevent.TxEvent
	for _, e := range bus.out {
		if e.Type == vscpconst.ProtoWhoIsThereResponse {
			frames = append(frames, e)
		}
	}
	require.Len(t, frames, 7) // ceil((16+32)/7)
	require.Equal(t, uint8(0), frames[0].Payload()[0])
	require.Equal(t, uint8(6), frames[6].Payload()[0])
	last := frames[6].Payload()
	require.Len(t, last, 8)
	require.Equal(t, uint8(0), last[7]) // zero-padded tail
}

func TestEnterBootLoaderFullMatchEntersIdleAndSetsBootFlag(t *testing.T) {
	core, bus := activateWithNickname(t, 0x20)

	req := vscpevent.RxEvent{Class: vscpconst.ClassProtocol, Type: vscpconst.ProtoEnterBootLoader}
	req.SetPayload(0x20, 0xFF, 0, 0, 0, 0, 0, 0) // algo 0xFF, zero GUID, page-select 0
	bus.inject(req)
	core.Process()

	require.Equal(t, StateIdle, core.State())
	require.Equal(t, uint8(1), core.ps.BootFlag())
}

func TestEnterBootLoaderMismatchSendsNACK(t *testing.T) {
	core, bus := activateWithNickname(t, 0x20)

	req := vscpevent.RxEvent{Class: vscpconst.ClassProtocol, Type: vscpconst.ProtoEnterBootLoader}
	req.SetPayload(0x20, 0x01, 0, 0, 0, 0, 0, 0) // wrong algo
	bus.inject(req)
	core.Process()

	require.Equal(t, StateActive, core.State())
	_, ok := bus.findType(vscpconst.ProtoNACKBootLoader)
	require.True(t, ok)
}

func TestSegControllerHeartbeatReentersInitOnCRCChange(t *testing.T) {
	core, bus := activateWithNickname(t, 0x20)

	hb := vscpevent.RxEvent{Class: vscpconst.ClassProtocol, Type: vscpconst.ProtoSegControllerHeartbeat}
	hb.SetPayload(0x7A)
	bus.inject(hb)
	core.Process()

	require.Equal(t, StateInit, core.State())
	require.Equal(t, uint8(0x7A), core.ps.SegmentCRC())
}
