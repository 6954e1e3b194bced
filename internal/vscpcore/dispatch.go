package vscpcore

import "vscpnode/internal/vscpconst"

// dispatchProtocolEvent handles the PROTOCOL-class (class 0) event types
// received in ACTIVE, once Platform.ProvideProtocolEvent has declined them:
// segment heartbeat, nickname drop, GUID reset, register, page and
// extended-page access, increment/decrement, who-is-there, matrix info and
// boot-loader entry. NEW_NODE_ONLINE, PROBE_ACK and SET_NICKNAME have no
// case here and are ignored in ACTIVE, as are the response-only types.
func (c *Core) dispatchProtocolEvent() {
	switch c.rx.Type {
	case vscpconst.ProtoSegControllerHeartbeat:
		c.handleSegControllerHeartbeat()
	case vscpconst.ProtoDropNickname:
		c.handleDropNickname()
	case vscpconst.ProtoResetDeviceGUID:
		c.handleResetDeviceGUID()
	case vscpconst.ProtoReadRegister:
		c.handleReadRegister()
	case vscpconst.ProtoWriteRegister:
		c.handleWriteRegister()
	case vscpconst.ProtoPageRead:
		c.handlePageRead()
	case vscpconst.ProtoPageWrite:
		c.handlePageWrite()
	case vscpconst.ProtoExtendedPageRead:
		c.handleExtendedPageRead()
	case vscpconst.ProtoExtendedPageWrite:
		c.handleExtendedPageWrite()
	case vscpconst.ProtoIncrementRegister:
		c.handleIncrementRegister()
	case vscpconst.ProtoDecrementRegister:
		c.handleDecrementRegister()
	case vscpconst.ProtoWhoIsThere:
		c.handleWhoIsThere()
	case vscpconst.ProtoGetMatrixInfo:
		c.handleGetMatrixInfo()
	case vscpconst.ProtoEnterBootLoader:
		c.handleEnterBootLoader()
	}
}

// targeted reports whether the incoming frame's nickname field addresses
// this node (most register/page operations carry the target nickname in
// data[0]).
func (c *Core) targeted(nickname uint8) bool {
	return nickname == c.ps.Nickname()
}

// handleSegControllerHeartbeat implements §4.2's SEGCTRL_HEARTBEAT: data[0]
// is the segment's current CRC. A changed CRC is persisted and, unless the
// node is itself in the middle of probing the segment master, sends it back
// through INIT to rediscover the segment. data[1..5], if present, is a
// big-endian unix timestamp that always updates the wall clock regardless
// of whether the CRC changed.
func (c *Core) handleSegControllerHeartbeat() {
	payload := c.rx.Payload()
	if len(payload) < 1 {
		return
	}
	if crc := payload[0]; crc != c.ps.SegmentCRC() {
		c.ps.SetSegmentCRC(crc)
		if !c.probingMaster() {
			c.changeToStateInit(true)
		}
	}
	if len(payload) >= 5 {
		t := uint32(payload[1])<<24 | uint32(payload[2])<<16 | uint32(payload[3])<<8 | uint32(payload[4])
		c.SetTimeSinceEpoch(t)
		c.platform.UpdateTimeSinceEpoch(t)
	}
}

// probingMaster reports whether the node is currently waiting on or probing
// for the segment master in INIT, as opposed to running its own nickname
// probe sequence.
func (c *Core) probingMaster() bool {
	return c.state == StateInit && (c.initState == InitProbeMaster || c.initState == InitProbeMasterWait)
}

// dropNickname flag bits (§4.2.1), distinct from the persisted node-control
// flags register despite sharing bit positions.
const (
	dropNicknameRestoreDefaults = 0x40
	dropNicknameResetNow        = 0x20
	dropNicknameIdle            = 0x80
)

// handleDropNickname implements §4.2.1: data[0] is the target nickname.
// With no further bytes, clear the nickname and reset immediately. With
// flags (and an optional wait_sec), bit 6 first restores factory defaults
// (keeping the nickname when bit 5 is also set); then bit 5 resets with the
// nickname kept, bit 7 clears it and goes IDLE, and otherwise it is cleared
// and the node resets.
func (c *Core) handleDropNickname() {
	payload := c.rx.Payload()
	if len(payload) < 1 || !c.targeted(payload[0]) {
		return
	}
	if len(payload) < 2 {
		c.ps.SetNickname(vscpconst.NicknameUninitialised)
		c.changeToStateReset(0)
		return
	}

	flags := payload[1]
	waitSec := uint8(0)
	if len(payload) >= 3 {
		waitSec = payload[2]
	}

	if flags&dropNicknameRestoreDefaults != 0 {
		saved := c.ps.Nickname()
		c.RestoreFactoryDefaults()
		if flags&dropNicknameResetNow != 0 {
			c.ps.SetNickname(saved)
		}
	}

	switch {
	case flags&dropNicknameResetNow != 0:
		c.changeToStateReset(waitSec)
	case flags&dropNicknameIdle != 0:
		c.ps.SetNickname(vscpconst.NicknameUninitialised)
		c.changeToStateIdle()
	default:
		c.ps.SetNickname(vscpconst.NicknameUninitialised)
		c.changeToStateReset(waitSec)
	}
}

// handleResetDeviceGUID implements §4.2.2's 4-frame GUID match: four
// consecutive RESET_DEVICE/GUID frames each carrying 4 bytes of the node's
// GUID (MSB-first on the wire), all arriving within MultiMsgTimeoutMS of
// each other, triggers a reset exactly like DROP_NICKNAME.
func (c *Core) handleResetDeviceGUID() {
	payload := c.rx.Payload()
	if len(payload) < 5 {
		return
	}
	frameIdx := payload[0]
	if frameIdx > 3 {
		return
	}

	if frameIdx == 0 || !c.guid.active || c.timers.Expired(c.guid.timer) {
		c.guid.active = true
		c.guid.received = [4]bool{}
	}

	guid := c.dev.GUID()
	wireOffset := int(frameIdx) * 4
	for i := 0; i < 4; i++ {
		// Register/wire order is MSB-first; Store keeps GUID LSB-first.
		if guid[15-(wireOffset+i)] != payload[1+i] {
			c.guid.active = false
			return
		}
	}
	c.guid.received[frameIdx] = true
	c.timers.Start(c.guid.timer, c.cfg.MultiMsgTimeoutMS)

	for _, got := range c.guid.received {
		if !got {
			return
		}
	}
	c.guid.active = false
	c.ps.SetNickname(vscpconst.NicknameUninitialised)
	c.changeToStateReset(0)
}

func (c *Core) handleReadRegister() {
	payload := c.rx.Payload()
	if len(payload) < 2 || !c.targeted(payload[0]) {
		return
	}
	addr := payload[1]
	count := uint8(1)
	if len(payload) >= 3 {
		count = payload[2]
	}
	if count == 0 {
		count = 1
	}
	for i := uint8(0); i < count; i++ {
		a := addr + i
		v := c.readRegister(c.pageSelect, a)
		evt := c.prepareTxLocked(vscpconst.ClassProtocol, vscpconst.ProtoRWResponse, vscpconst.PriorityNormal)
		evt.SetPayload(a, v)
		c.transport.Write(&evt)
		if a == 0xFF {
			break
		}
	}
}

func (c *Core) handleWriteRegister() {
	payload := c.rx.Payload()
	if len(payload) < 3 || !c.targeted(payload[0]) {
		return
	}
	addr, value := payload[1], payload[2]
	c.writeRegister(c.pageSelect, addr, value)

	evt := c.prepareTxLocked(vscpconst.ClassProtocol, vscpconst.ProtoRWResponse, vscpconst.PriorityNormal)
	evt.SetPayload(addr, c.readRegister(c.pageSelect, addr))
	c.transport.Write(&evt)
}

func (c *Core) handleIncrementRegister() {
	payload := c.rx.Payload()
	if len(payload) < 2 || !c.targeted(payload[0]) {
		return
	}
	addr := payload[1]
	v := c.readRegister(c.pageSelect, addr)
	if v < 0xFF {
		v++
	}
	c.writeRegister(c.pageSelect, addr, v)
	evt := c.prepareTxLocked(vscpconst.ClassProtocol, vscpconst.ProtoRWResponse, vscpconst.PriorityNormal)
	evt.SetPayload(addr, c.readRegister(c.pageSelect, addr))
	c.transport.Write(&evt)
}

func (c *Core) handleDecrementRegister() {
	payload := c.rx.Payload()
	if len(payload) < 2 || !c.targeted(payload[0]) {
		return
	}
	addr := payload[1]
	v := c.readRegister(c.pageSelect, addr)
	if v > 0 {
		v--
	}
	c.writeRegister(c.pageSelect, addr, v)
	evt := c.prepareTxLocked(vscpconst.ClassProtocol, vscpconst.ProtoRWResponse, vscpconst.PriorityNormal)
	evt.SetPayload(addr, c.readRegister(c.pageSelect, addr))
	c.transport.Write(&evt)
}

// handlePageRead / handlePageWrite answer PAGE_READ/PAGE_WRITE with a
// RWPAGE_RESPONSE carrying up to 7 register bytes per frame (§4.2's 8-byte
// payload minus the sequence byte), unlike EXTENDED_PAGE_READ which streams
// an arbitrary count across multiple continuation frames.
func (c *Core) handlePageRead() {
	payload := c.rx.Payload()
	if len(payload) < 3 || !c.targeted(payload[0]) {
		return
	}
	page := uint16(payload[1])<<8 | uint16(payload[2])
	addr := uint8(0)
	count := uint8(1)
	if len(payload) >= 4 {
		addr = payload[3]
	}
	if len(payload) >= 5 {
		count = payload[4]
	}
	if count == 0 || count > 7 {
		count = 7
	}

	resp := make([]byte, 1, 8)
	for i := uint8(0); i < count; i++ {
		resp = append(resp, c.readRegister(page, addr+i))
	}
	evt := c.prepareTxLocked(vscpconst.ClassProtocol, vscpconst.ProtoRWPageResponse, vscpconst.PriorityNormal)
	evt.SetPayload(resp...)
	c.transport.Write(&evt)
}

func (c *Core) handlePageWrite() {
	payload := c.rx.Payload()
	if len(payload) < 4 || !c.targeted(payload[0]) {
		return
	}
	page := uint16(payload[1])<<8 | uint16(payload[2])
	addr := payload[3]
	values := payload[4:]
	for i, v := range values {
		c.writeRegister(page, addr+uint8(i), v)
	}

	resp := append([]byte{0}, values...)
	evt := c.prepareTxLocked(vscpconst.ClassProtocol, vscpconst.ProtoRWPageResponse, vscpconst.PriorityNormal)
	evt.SetPayload(resp...)
	c.transport.Write(&evt)
}

// handleWhoIsThere answers WHO_IS_THERE with 16 GUID bytes (wire order,
// MSB-first) followed by the 32-byte MDF URL, packed 7 bytes per frame and
// prefixed with a row index; the final, partial frame is zero-padded (§4.2).
func (c *Core) handleWhoIsThere() {
	payload := c.rx.Payload()
	if len(payload) < 1 || !c.targeted(payload[0]) {
		return
	}
	const chunk = 7
	wire := make([]byte, 16+32)
	guid := c.dev.GUID()
	for i := 0; i < 16; i++ {
		wire[i] = guid[15-i]
	}
	copy(wire[16:], c.dev.MDFURL())

	for row := 0; row*chunk < len(wire); row++ {
		start := row * chunk
		data := make([]byte, chunk)
		copy(data, wire[start:min(start+chunk, len(wire))])
		evt := c.prepareTxLocked(vscpconst.ClassProtocol, vscpconst.ProtoWhoIsThereResponse, vscpconst.PriorityNormal)
		frame := append([]byte{uint8(row)}, data...)
		evt.SetPayload(frame...)
		c.transport.Write(&evt)
	}
}

// handleGetMatrixInfo reports the actual decision-matrix geometry: row
// count, start offset and the (page_hi, page_lo) of its first row (§4.2).
func (c *Core) handleGetMatrixInfo() {
	payload := c.rx.Payload()
	if len(payload) < 1 || !c.targeted(payload[0]) {
		return
	}
	page := c.dm.StartPage()
	evt := c.prepareTxLocked(vscpconst.ClassProtocol, vscpconst.ProtoGetMatrixInfoResponse, vscpconst.PriorityNormal)
	evt.SetPayload(uint8(c.dm.RowCount()), c.dm.StartOffset(), uint8(page>>8), uint8(page))
	c.transport.Write(&evt)
}

// handleEnterBootLoader requires data[1] to match the boot-loader algorithm,
// data[2..6] to match GUID bytes 15,12,10,8 and data[6..8] to match the
// current page-select; any mismatch NACKs. A full match enters IDLE, latches
// the boot flag in persistent memory and hands off to the platform (§4.2).
func (c *Core) handleEnterBootLoader() {
	payload := c.rx.Payload()
	if len(payload) < 8 || !c.targeted(payload[0]) {
		return
	}
	guid := c.dev.GUID()
	match := payload[1] == c.dev.BootLoaderAlgorithm() &&
		payload[2] == guid[15] &&
		payload[3] == guid[12] &&
		payload[4] == guid[10] &&
		payload[5] == guid[8] &&
		payload[6] == uint8(c.pageSelect>>8) &&
		payload[7] == uint8(c.pageSelect)

	if !match {
		evt := c.prepareTxLocked(vscpconst.ClassProtocol, vscpconst.ProtoNACKBootLoader, vscpconst.PriorityNormal)
		c.transport.Write(&evt)
		return
	}

	c.changeToStateIdle()
	c.ps.SetBootFlag(1)
	c.platform.BootLoaderRequest()
}
