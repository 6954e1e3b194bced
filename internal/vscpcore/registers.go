package vscpcore

import "vscpnode/internal/vscpconst"

// readRegister resolves one (page, addr) register read across every owner,
// in the order §4.3 lists them: system registers on page 0, the standard DM
// (direct or paged-pseudo-register), DM-NG, then everything else forwarded
// to the application.
func (c *Core) readRegister(page uint16, addr uint8) uint8 {
	if page == 0 && addr >= vscpconst.RegSystemRangeStart {
		return c.readSystemRegister(addr)
	}
	if c.dm.IsInMatrix(page, addr) {
		return c.dm.ReadRegister(page, addr)
	}
	if c.dmng.IsDecisionMatrix(page, addr) {
		return c.dmng.ReadRegister(page, addr)
	}
	if page == 0 && (addr == vscpconst.RegDMPagedIndex || addr == vscpconst.RegDMPagedValue) && pagedOwner(c) != nil {
		return c.readPagedDMRegister(addr)
	}
	return c.appRegs.Read(page, addr)
}

// readPagedDMRegister routes the two paged pseudo-registers to whichever of
// DM / DM-NG is configured for paged addressing; DM-NG takes precedence
// when both are (a malformed configuration the platform should avoid).
func (c *Core) readPagedDMRegister(addr uint8) uint8 {
	owner := pagedOwner(c)
	if owner == nil {
		return 0
	}
	if addr == vscpconst.RegDMPagedIndex {
		return owner.PagedIndexRead()
	}
	return owner.PagedValueRead()
}

// writeRegister resolves one (page, addr) register write. The node-control
// write-protect bit gates every write outside the page-0 system register
// block (§4.3).
func (c *Core) writeRegister(page uint16, addr, value uint8) {
	if page == 0 && addr >= vscpconst.RegSystemRangeStart {
		c.writeSystemRegister(addr, value)
		return
	}

	writable := c.ps.NodeControlFlags()&vscpconst.NodeControlRegWriteEnable != 0
	if !writable {
		return
	}

	if c.dm.IsInMatrix(page, addr) {
		c.dm.WriteRegister(page, addr, value)
		return
	}
	if c.dmng.IsDecisionMatrix(page, addr) {
		c.dmng.WriteRegister(page, addr, value)
		return
	}
	if page == 0 && (addr == vscpconst.RegDMPagedIndex || addr == vscpconst.RegDMPagedValue) && pagedOwner(c) != nil {
		owner := pagedOwner(c)
		if addr == vscpconst.RegDMPagedIndex {
			owner.PagedIndexWrite(value)
		} else {
			owner.PagedValueWrite(value)
		}
		return
	}
	c.appRegs.Write(page, addr, value)
}

// pagedDMOwner is satisfied by both *vscpdm.DM and *vscpdmng.DMNG.
type pagedDMOwner interface {
	PagedIndexRead() uint8
	PagedIndexWrite(uint8)
	PagedValueRead() uint8
	PagedValueWrite(uint8)
}

func pagedOwner(c *Core) pagedDMOwner {
	if c.dmng.PagedFeatureEnabled() {
		return c.dmng
	}
	if c.dm.PagedFeatureEnabled() {
		return c.dm
	}
	return nil
}

func (c *Core) readSystemRegister(addr uint8) uint8 {
	switch addr {
	case vscpconst.RegAlarmStatus:
		v := c.alarmStatus
		c.alarmStatus = 0 // latch-and-clear (§8 invariant 3)
		return v
	case vscpconst.RegVSCPMajorVersion:
		return c.cfg.VSCPMajorVersion
	case vscpconst.RegVSCPMinorVersion:
		return c.cfg.VSCPMinorVersion
	case vscpconst.RegNodeControlFlags:
		return c.ps.NodeControlFlags()
	case vscpconst.RegNickname:
		return c.ps.Nickname()
	case vscpconst.RegPageSelectMSB:
		return uint8(c.pageSelect >> 8)
	case vscpconst.RegPageSelectLSB:
		return uint8(c.pageSelect)
	case vscpconst.RegFirmwareMajor:
		return c.dev.FirmwareVersion().Major
	case vscpconst.RegFirmwareMinor:
		return c.dev.FirmwareVersion().Minor
	case vscpconst.RegFirmwareSubMinor:
		return c.dev.FirmwareVersion().SubMinor
	case vscpconst.RegBootLoaderAlgo:
		return c.dev.BootLoaderAlgorithm()
	case vscpconst.RegPagesUsed:
		return uint8(c.appRegs.PagesUsed())
	case vscpconst.RegRestoreStdCfg:
		return 0
	}

	switch {
	case addr >= vscpconst.RegUserIDStart && addr < vscpconst.RegUserIDStart+5:
		return c.ps.UserID()[addr-vscpconst.RegUserIDStart]
	case addr >= vscpconst.RegMfrDevIDStart && addr < vscpconst.RegMfrDevIDStart+4:
		return c.dev.MfrDevID()[addr-vscpconst.RegMfrDevIDStart]
	case addr >= vscpconst.RegMfrSubDevIDStart && addr < vscpconst.RegMfrSubDevIDStart+4:
		return c.dev.MfrSubDevID()[addr-vscpconst.RegMfrSubDevIDStart]
	case addr >= vscpconst.RegFamilyCodeStart && addr < vscpconst.RegFamilyCodeStart+4:
		return c.dev.FamilyCode()[addr-vscpconst.RegFamilyCodeStart]
	case addr >= vscpconst.RegDeviceTypeStart && addr < vscpconst.RegDeviceTypeStart+4:
		return c.dev.DeviceType()[addr-vscpconst.RegDeviceTypeStart]
	case addr >= vscpconst.RegGUIDStart && addr < vscpconst.RegGUIDStart+16:
		// Wire/register order is MSB-first; Store keeps GUID LSB-first.
		guid := c.dev.GUID()
		return guid[15-(addr-vscpconst.RegGUIDStart)]
	case addr >= vscpconst.RegMDFURLStart:
		url := c.dev.MDFURL()
		i := int(addr - vscpconst.RegMDFURLStart)
		if i >= len(url) {
			return 0
		}
		return url[i]
	}
	return 0
}

func (c *Core) writeSystemRegister(addr, value uint8) {
	switch addr {
	case vscpconst.RegNodeControlFlags:
		c.ps.SetNodeControlFlags(value)
	case vscpconst.RegPageSelectMSB:
		c.pageSelect = uint16(value)<<8 | (c.pageSelect & 0x00FF)
	case vscpconst.RegPageSelectLSB:
		c.pageSelect = (c.pageSelect & 0xFF00) | uint16(value)
	case vscpconst.RegRestoreStdCfg:
		c.handleRestoreStdCfgWrite(value)
	}

	switch {
	case addr >= vscpconst.RegUserIDStart && addr < vscpconst.RegUserIDStart+5:
		id := c.ps.UserID()
		id[addr-vscpconst.RegUserIDStart] = value
		c.ps.SetUserID(id)
	}
}

// handleRestoreStdCfgWrite implements the two-step unlock sequence §3
// documents for VSCP_REG_RESTORE_STD_CFG: writing 0x55 then 0xAA within
// MultiMsgTimeoutMS of each other triggers RestoreFactoryDefaults.
func (c *Core) handleRestoreStdCfgWrite(value uint8) {
	switch {
	case value == vscpconst.RestoreStdCfgUnlockStep1:
		c.unlock162.armed = true
		c.timers.Start(c.unlock162.timer, c.cfg.MultiMsgTimeoutMS)
	case value == vscpconst.RestoreStdCfgUnlockStep2 && c.unlock162.armed && !c.timers.Expired(c.unlock162.timer):
		c.unlock162.armed = false
		c.timers.Stop(c.unlock162.timer)
		c.RestoreFactoryDefaults()
	default:
		c.unlock162.armed = false
		c.timers.Stop(c.unlock162.timer)
	}
}
