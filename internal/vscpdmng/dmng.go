// Package vscpdmng implements the Decision Matrix Next Generation bytecode
// rule engine (§4.5): a variable-size rule set stored as
// count ‖ (size ‖ action_id ‖ action_param ‖ conditions…)*, where each
// condition is op_byte, event_param_id[, sub_index], value[, value_hi].
package vscpdmng

import (
	"vscpnode/internal/vscpconst"
	"vscpnode/internal/vscpevent"
	"vscpnode/internal/vscpps"
	"vscpnode/internal/vscputil"
)

// ActionFunc is the user callback invoked on full-rule success.
type ActionFunc func(actionID, param uint8, evt *vscpevent.RxEvent)

// Config configures the DM-NG region.
type Config struct {
	Page         uint16
	RuleSetSize  int
	PagedFeature bool
}

// DecodeError records where a rule's bytecode failed to decode; debug
// builds keep these around instead of dropping them (§7: RuleDecodeError).
type DecodeError struct {
	RuleIndex  int
	ByteOffset int
	Reason     string
}

// DMNG is the byte-coded rule engine, bound to a PersistentStore region.
type DMNG struct {
	cfg    Config
	ps     *vscpps.Store
	action ActionFunc

	// LastErrors accumulates decode errors seen during the most recent
	// Evaluate call; a debug build inspects this, production code ignores
	// it. It is reset at the start of every Evaluate.
	LastErrors []DecodeError

	pagedIndex uint16
}

func New(cfg Config, ps *vscpps.Store, action ActionFunc) *DMNG {
	return &DMNG{cfg: cfg, ps: ps, action: action}
}

// IsDecisionMatrix reports whether (page, addr) falls inside the DM-NG
// region in direct-addressing mode.
func (m *DMNG) IsDecisionMatrix(page uint16, addr uint8) bool {
	if m.cfg.PagedFeature || m.cfg.RuleSetSize == 0 {
		return false
	}
	if page < m.cfg.Page {
		return false
	}
	idx := int(page-m.cfg.Page)*256 + int(addr)
	return idx < m.cfg.RuleSetSize
}

func (m *DMNG) index(page uint16, addr uint8) int {
	return int(page-m.cfg.Page)*256 + int(addr)
}

func (m *DMNG) ReadRegister(page uint16, addr uint8) uint8 {
	idx := m.index(page, addr)
	return m.ps.ReadByte(m.ps.DMNGOffset(idx))
}

// WriteRegister is a no-op: DM-NG registers are read-only accessors per
// §4.5's storage note, configured out-of-band.
func (m *DMNG) WriteRegister(page uint16, addr, value uint8) {}

// PagedIndexWrite / PagedValueWrite mirror the standard DM's paged-feature
// pair when Config.PagedFeature selects it for DM-NG configuration.
func (m *DMNG) PagedIndexWrite(value uint8) {
	idx := uint16(value)
	if int(idx) >= m.cfg.RuleSetSize {
		return
	}
	m.pagedIndex = idx
}

func (m *DMNG) PagedIndexRead() uint8 { return uint8(m.pagedIndex) }

// PagedFeatureEnabled reports whether this DM-NG rule set is configured to
// be addressed through the two paged pseudo-registers.
func (m *DMNG) PagedFeatureEnabled() bool { return m.cfg.PagedFeature }

func (m *DMNG) PagedValueWrite(value uint8) {
	m.ps.WriteByte(m.ps.DMNGOffset(int(m.pagedIndex)), value)
}

func (m *DMNG) PagedValueRead() uint8 {
	return m.ps.ReadByte(m.ps.DMNGOffset(int(m.pagedIndex)))
}

func (m *DMNG) byte(i int) uint8 {
	if i < 0 || i >= m.cfg.RuleSetSize {
		return 0
	}
	return m.ps.ReadByte(m.ps.DMNGOffset(i))
}

// Evaluate walks every rule in the set against evt, invoking Action for
// each rule whose conditions all succeed and whose action_id is nonzero.
// A rule that fails to decode (illegal op, event-param id, or truncation)
// is skipped and recorded in LastErrors rather than aborting the set.
func (m *DMNG) Evaluate(evt *vscpevent.RxEvent) {
	m.LastErrors = m.LastErrors[:0]
	if m.cfg.RuleSetSize == 0 {
		return
	}

	count := int(m.byte(0))
	cursor := 1
	for r := 0; r < count; r++ {
		if cursor >= m.cfg.RuleSetSize {
			m.LastErrors = append(m.LastErrors, DecodeError{r, cursor, "truncated rule set"})
			break
		}
		size := int(m.byte(cursor))
		if size < vscpconst.DMNGRuleMinSize || size > vscpconst.DMNGRuleMaxSize || cursor+size > m.cfg.RuleSetSize {
			m.LastErrors = append(m.LastErrors, DecodeError{r, cursor, "illegal rule size"})
			break
		}
		m.evaluateRule(r, cursor, size, evt)
		cursor += size
	}
}

// evaluateRule decodes and runs one rule occupying [start, start+size).
func (m *DMNG) evaluateRule(ruleIdx, start, size int, evt *vscpevent.RxEvent) {
	actionID := m.byte(start + 1)
	actionParam := m.byte(start + 2)

	end := start + size
	cursor := start + 3

	var result bool
	haveResult := false
	var prevLogic uint8 = vscpconst.DMNGLogicLast

	for cursor < end {
		ok, consumed, condResult := m.evaluateCondition(ruleIdx, cursor, end, evt)
		if !ok {
			return
		}
		if !haveResult {
			result = condResult
			haveResult = true
		} else {
			switch prevLogic {
			case vscpconst.DMNGLogicAnd:
				result = result && condResult
			case vscpconst.DMNGLogicOr:
				result = result || condResult
			}
		}

		op := m.byte(cursor)
		prevLogic = op & 0xF0
		cursor += consumed

		// Short-circuit: once AND has gone false or OR has gone true, the
		// final result can no longer change; further conditions may still
		// be decoded but will not affect the outcome.
		if (prevLogic == vscpconst.DMNGLogicAnd && !result) ||
			(prevLogic == vscpconst.DMNGLogicOr && result) {
			break
		}
	}

	if !haveResult || !result || actionID == 0 {
		return
	}
	if m.action != nil {
		m.action(actionID, actionParam, evt)
	}
}

// evaluateCondition decodes and evaluates one condition starting at
// offset, returning whether decode succeeded, how many bytes it consumed,
// and the boolean result. On decode failure it records a DecodeError.
func (m *DMNG) evaluateCondition(ruleIdx, offset, end int, evt *vscpevent.RxEvent) (ok bool, consumed int, result bool) {
	if offset >= end {
		m.LastErrors = append(m.LastErrors, DecodeError{ruleIdx, offset, "condition out of bounds"})
		return false, 0, false
	}

	op := m.byte(offset)
	logic := op & 0xF0
	basic := op & 0x0F
	if logic != vscpconst.DMNGLogicLast && logic != vscpconst.DMNGLogicAnd && logic != vscpconst.DMNGLogicOr {
		m.LastErrors = append(m.LastErrors, DecodeError{ruleIdx, offset, "illegal logic op"})
		return false, 0, false
	}
	if basic < vscpconst.DMNGBasicEqual || basic > vscpconst.DMNGBasicMask {
		m.LastErrors = append(m.LastErrors, DecodeError{ruleIdx, offset, "illegal basic op"})
		return false, 0, false
	}

	cursor := offset + 1
	if cursor >= end {
		m.LastErrors = append(m.LastErrors, DecodeError{ruleIdx, offset, "truncated condition"})
		return false, 0, false
	}
	parID := m.byte(cursor)
	cursor++

	var dataIndex int
	switch {
	case parID == vscpconst.DMNGParData:
		if cursor >= end {
			m.LastErrors = append(m.LastErrors, DecodeError{ruleIdx, offset, "truncated indexed data param"})
			return false, 0, false
		}
		dataIndex = int(m.byte(cursor))
		cursor++
	case parID >= vscpconst.DMNGParData0 && parID <= vscpconst.DMNGParData6:
		dataIndex = int(parID - vscpconst.DMNGParData0)
	case parID >= vscpconst.DMNGParClass && parID <= vscpconst.DMNGParDataNum:
		// no data index needed
	default:
		m.LastErrors = append(m.LastErrors, DecodeError{ruleIdx, offset, "illegal event param id"})
		return false, 0, false
	}

	isClass := parID == vscpconst.DMNGParClass
	valueBytes := 1
	if isClass {
		valueBytes = 2
	}
	if cursor+valueBytes > end {
		m.LastErrors = append(m.LastErrors, DecodeError{ruleIdx, offset, "truncated condition value"})
		return false, 0, false
	}

	var value uint16
	if isClass {
		value = uint16(m.byte(cursor))<<8 | uint16(m.byte(cursor+1))
	} else {
		value = uint16(m.byte(cursor))
	}
	cursor += valueBytes

	eventVal := m.eventParam(parID, dataIndex, evt)
	result = applyBasicOp(basic, eventVal, value)
	return true, cursor - offset, result
}

// eventParam fetches the value of one event field; out-of-bounds data
// access yields 0 rather than erroring (§4.5 step 3).
func (m *DMNG) eventParam(parID uint8, dataIndex int, evt *vscpevent.RxEvent) uint16 {
	switch parID {
	case vscpconst.DMNGParClass:
		return evt.Class
	case vscpconst.DMNGParType:
		return uint16(evt.Type)
	case vscpconst.DMNGParOAddr:
		return uint16(evt.Origin)
	case vscpconst.DMNGParHardCoded:
		if evt.HardCoded {
			return 1
		}
		return 0
	case vscpconst.DMNGParPriority:
		return uint16(evt.Priority)
	case vscpconst.DMNGParZone, vscpconst.DMNGParSubZone:
		return m.zoneParam(parID, evt)
	case vscpconst.DMNGParDataNum:
		return uint16(evt.DataLen)
	default:
		payload := evt.Payload()
		if dataIndex < 0 || dataIndex >= len(payload) {
			return 0
		}
		return uint16(payload[dataIndex])
	}
}

func (m *DMNG) zoneParam(parID uint8, evt *vscpevent.RxEvent) uint16 {
	idx, ok := vscputil.ZoneIndex(evt.Class, evt.Type)
	if !ok {
		return 0
	}
	if parID == vscpconst.DMNGParSubZone {
		idx++
	}
	payload := evt.Payload()
	if idx < 0 || idx >= len(payload) {
		return 0
	}
	return uint16(payload[idx])
}

func applyBasicOp(op uint8, lhs, rhs uint16) bool {
	switch op {
	case vscpconst.DMNGBasicEqual:
		return lhs == rhs
	case vscpconst.DMNGBasicLower:
		return lhs < rhs
	case vscpconst.DMNGBasicGreater:
		return lhs > rhs
	case vscpconst.DMNGBasicLowerEq:
		return lhs <= rhs
	case vscpconst.DMNGBasicGreaterEq:
		return lhs >= rhs
	case vscpconst.DMNGBasicMask:
		return lhs&rhs == rhs
	default:
		return false
	}
}
