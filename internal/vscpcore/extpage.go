package vscpcore

import "vscpnode/internal/vscpconst"

// maxExtPageChunk is the largest slice of registers one
// EXTENDED_PAGE_RESPONSE frame can carry: 8 payload bytes minus the
// sequence byte and the 3-byte page/addr header.
const maxExtPageChunk = 4

// handleExtendedPageRead starts (or restarts) a streamed register read:
// data is [nickname, page_msb, page_lsb, addr, (count)], where count is a
// single optional byte: absent means 1 and an explicit 0 means 256 (§3). continueExtendedPageRead drains it one
// frame per Process call, so a slow transport never blocks the rest of the
// state machine.
func (c *Core) handleExtendedPageRead() {
	payload := c.rx.Payload()
	if len(payload) < 4 || !c.targeted(payload[0]) {
		return
	}
	count := uint16(1)
	if len(payload) >= 5 {
		count = uint16(payload[4])
		if count == 0 {
			count = 256
		}
	}
	c.extPage = extPageRead{
		active: true,
		target: payload[0],
		page:   uint16(payload[1])<<8 | uint16(payload[2]),
		addr:   payload[3],
		count:  count,
		seq:    0,
	}
}

func (c *Core) continueExtendedPageRead() {
	if !c.extPage.active {
		return
	}

	n := c.extPage.count
	if n > maxExtPageChunk {
		n = maxExtPageChunk
	}
	// Never cross a page boundary within one frame (§3 scenario S4): the
	// chunk stops short if fewer registers remain before addr wraps.
	remainingInPage := uint16(256 - int(c.extPage.addr))
	if remainingInPage < n {
		n = remainingInPage
	}

	page, addr := c.extPage.page, c.extPage.addr
	data := make([]byte, 4, 8)
	data[0] = c.extPage.seq
	data[1] = uint8(page >> 8)
	data[2] = uint8(page)
	data[3] = addr
	for i := uint16(0); i < n; i++ {
		data = append(data, c.readRegister(c.extPage.page, c.extPage.addr))
		c.extPage.addr++
	}
	if c.extPage.addr == 0 {
		c.extPage.page++
	}

	evt := c.prepareTxLocked(vscpconst.ClassProtocol, vscpconst.ProtoExtendedPageResponse, vscpconst.PriorityNormal)
	evt.SetPayload(data...)
	if !c.transport.Write(&evt) {
		c.extPage.page, c.extPage.addr = page, addr // retry the same chunk next Process call
		return
	}

	c.extPage.count -= n
	c.extPage.seq++
	if c.extPage.count == 0 {
		c.extPage.active = false
	}
}

// handleExtendedPageWrite applies one EXTENDED_PAGE_WRITE frame
// immediately; unlike the read side it is not a multi-frame stream, since
// the writer already has every byte in hand (§3).
func (c *Core) handleExtendedPageWrite() {
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

	evt := c.prepareTxLocked(vscpconst.ClassProtocol, vscpconst.ProtoExtendedPageResponse, vscpconst.PriorityNormal)
	resp := append([]byte{0}, values...)
	evt.SetPayload(resp...)
	c.transport.Write(&evt)
}
