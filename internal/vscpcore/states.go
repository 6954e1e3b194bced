package vscpcore

import (
	"go.uber.org/zap"

	"vscpnode/internal/vscpconst"
	"vscpnode/internal/vscpevent"
	"vscpnode/internal/vscplog"
)

// Process drains at most one event from the transport, advances the state
// machine, emits a heartbeat if due, and continues any pending extended
// page read. It returns whether an event was consumed so the caller may
// loop (§4.1).
func (c *Core) Process() bool {
	consumed := c.transport.Read(&c.rx)

	switch c.state {
	case StateStartup:
		c.stateStartup()
	case StateInit:
		if consumed {
			c.handleInitEvent()
		}
		c.stateInit()
	case StatePreActive:
		if consumed {
			c.handlePreActiveEvent()
		}
		c.statePreActive()
	case StateActive:
		if consumed {
			c.handleActiveEvent()
		}
		c.stateActiveHeartbeat()
	case StateIdle:
		c.stateIdle()
	case StateReset:
		c.stateReset()
	case StateError:
		c.stateError()
	default:
		c.changeToStateError()
	}

	if c.state == StateActive {
		c.continueExtendedPageRead()
	}

	return consumed
}

// --- STARTUP ---

func (c *Core) stateStartup() {
	if c.ps.Nickname() != vscpconst.NicknameUninitialised {
		c.changeToStateActive()
		return
	}

	flags := c.ps.NodeControlFlags()
	switch flags & vscpconst.NodeControlStartupMask {
	case vscpconst.NodeControlStartupAuto:
		c.changeToStateInit(true)
	case vscpconst.NodeControlStartupManual:
		// Wait for StartNodeSegmentInit. Events received in STARTUP are
		// not processed.
	}
}

// StartNodeSegmentInit is the external trigger (e.g. a segment-init button)
// that moves a manually-started node out of STARTUP.
func (c *Core) StartNodeSegmentInit() {
	if c.state == StateStartup {
		c.changeToStateInit(true)
	}
}

// logTransition records a main-state change at info level; INIT's own
// sub-state changes are not logged.
func (c *Core) logTransition(to MainState) {
	c.log.Info("state transition", zap.String(vscplog.FieldState, to.String()))
}

// --- INIT ---

func (c *Core) changeToStateInit(probeSegmentMaster bool) {
	c.logTransition(StateInit)
	c.state = StateInit
	c.platform.LampSet(vscpconst.LampBlinkFast)
	if probeSegmentMaster {
		c.initState = InitProbeMaster
	} else {
		c.probeNickname = 1
		c.initState = InitProbe
	}
}

func (c *Core) stateInit() {
	switch c.initState {
	case InitProbeMaster:
		evt := c.prepareTxLocked(vscpconst.ClassProtocol, vscpconst.ProtoNewNodeOnline, vscpconst.PriorityLow)
		evt.Origin = vscpconst.NicknameUninitialised
		evt.SetPayload(vscpconst.NicknameSegmentMaster)
		if c.transport.Write(&evt) {
			c.timers.Start(c.tNodeSegmentInit, c.cfg.NodeSegmentInitTimeoutMS)
			c.initState = InitProbeMasterWait
		}

	case InitProbeMasterWait:
		if c.timers.Expired(c.tNodeSegmentInit) {
			c.probeNickname = 1
			c.initState = InitProbe
		}

	case InitProbe:
		if c.probeNickname == vscpconst.NicknameUninitialised {
			c.changeToStateIdle()
			return
		}
		evt := c.prepareTxLocked(vscpconst.ClassProtocol, vscpconst.ProtoNewNodeOnline, vscpconst.PriorityLow)
		evt.Origin = vscpconst.NicknameUninitialised
		evt.SetPayload(c.probeNickname)
		if c.transport.Write(&evt) {
			c.timers.Start(c.tProbeAck, c.cfg.ProbeAckTimeoutMS)
			c.initState = InitProbeWait
		}

	case InitProbeWait:
		if c.timers.Expired(c.tProbeAck) {
			c.writeNicknameID(c.probeNickname)
			c.changeToStateActive()
		}
	}
}

// handleInitEvent processes the subset of PROTOCOL events §4.1's INIT
// description reacts to; everything else (including non-PROTOCOL events) is
// ignored while initialising.
func (c *Core) handleInitEvent() {
	if c.rx.Class != vscpconst.ClassProtocol {
		return
	}
	switch c.rx.Type {
	case vscpconst.ProtoProbeAck:
		if c.initState == InitProbeMasterWait && c.rx.Origin == vscpconst.NicknameSegmentMaster {
			c.changeToStatePreActive()
			return
		}
		if c.initState == InitProbeWait && c.rx.Origin == c.probeNickname {
			c.probeNickname++
			c.initState = InitProbe
		}
	}
}

// --- PREACTIVE ---

func (c *Core) changeToStatePreActive() {
	c.logTransition(StatePreActive)
	c.state = StatePreActive
	// Keep the NODE_SEGMENT_INIT_TIMEOUT timer running; the master is now
	// expected to assign a nickname before it expires.
}

func (c *Core) statePreActive() {
	if c.timers.Expired(c.tNodeSegmentInit) {
		c.probeNickname = 1
		c.changeToStateInit(false)
	}
}

func (c *Core) handlePreActiveEvent() {
	if c.rx.Class != vscpconst.ClassProtocol || c.rx.Type != vscpconst.ProtoSetNickname {
		return
	}
	payload := c.rx.Payload()
	if len(payload) < 2 || c.rx.Origin != vscpconst.NicknameSegmentMaster || payload[0] != vscpconst.NicknameUninitialised {
		return
	}
	newNickname := payload[1]
	c.writeNicknameID(newNickname)

	evt := c.prepareTxLocked(vscpconst.ClassProtocol, vscpconst.ProtoNicknameAccepted, vscpconst.PriorityNormal)
	evt.Origin = newNickname
	c.transport.Write(&evt)

	c.changeToStateActive()
}

// --- ACTIVE ---

func (c *Core) changeToStateActive() {
	c.logTransition(StateActive)
	c.state = StateActive
	c.log.Info("node active", zap.Uint8(vscplog.FieldNickname, c.ps.Nickname()))
	c.platform.LampSet(vscpconst.LampOn)
	if c.cfg.HeartbeatEnabled {
		c.timers.Start(c.tHeartbeat, c.cfg.HeartbeatPeriodMS)
	}
}

func (c *Core) handleActiveEvent() {
	if c.rx.Class == vscpconst.ClassProtocol {
		handled := c.platform.ProvideProtocolEvent(&c.rx)
		if !handled {
			c.dispatchProtocolEvent()
		}
	} else {
		c.platform.ProvideEvent(&c.rx)
	}

	c.dm.Evaluate(&c.rx)
	c.dmng.Evaluate(&c.rx)
}

func (c *Core) stateActiveHeartbeat() {
	if !c.cfg.HeartbeatEnabled {
		return
	}
	if c.timers.Expired(c.tHeartbeat) {
		c.emitHeartbeat()
		c.timers.Start(c.tHeartbeat, c.cfg.HeartbeatPeriodMS)
	}
}

func (c *Core) emitHeartbeat() {
	evt := vscpevent.NodeHeartbeat(c.ps.Nickname(), vscpconst.PriorityNormal, c.dev.Zone(), c.dev.SubZone())
	c.transport.Write(&evt)
}

// --- IDLE ---

func (c *Core) changeToStateIdle() {
	c.logTransition(StateIdle)
	c.state = StateIdle
	c.idleEntered = false
}

func (c *Core) stateIdle() {
	if !c.idleEntered {
		c.idleEntered = true
		c.platform.IdleStateEntered()
	}
}

// --- RESET ---

func (c *Core) changeToStateReset(timeoutSec uint8) {
	c.logTransition(StateReset)
	c.state = StateReset
	c.resetRemainingSec = timeoutSec
	c.resetFired = false
	c.timers.Start(c.tReset, 1000)
}

func (c *Core) stateReset() {
	if c.resetFired {
		// platform.ResetRequest already fired; subsequent Process calls do
		// nothing further (§4.1).
		return
	}
	if c.resetRemainingSec == 0 {
		c.platform.ResetRequest()
		c.resetFired = true
		return
	}
	if c.timers.Expired(c.tReset) {
		c.resetRemainingSec--
		c.timers.Start(c.tReset, 1000)
	}
}

// --- ERROR ---

func (c *Core) changeToStateError() {
	c.logTransition(StateError)
	c.state = StateError
	c.errorEntered = false
}

func (c *Core) stateError() {
	c.platform.LampSet(vscpconst.LampOff)
	if !c.errorEntered {
		c.errorEntered = true
		c.platform.ErrorStateEntered()
	}
}

// prepareTxLocked builds a TxEvent with class/type/priority filled in and
// origin defaulted to the node's own nickname; callers needing a different
// origin (e.g. the uninitialised-nickname probes) override it afterward.
func (c *Core) prepareTxLocked(class uint16, typ uint8, priority uint8) vscpevent.TxEvent {
	return vscpevent.TxEvent{
		Class:    class,
		Type:     typ,
		Priority: priority,
		Origin:   c.ps.Nickname(),
	}
}

// PrepareTx and SendEvent are the public equivalents §4.1 names for
// application code building non-PROTOCOL events.
func (c *Core) PrepareTx(class uint16, typ uint8, priority uint8) vscpevent.TxEvent {
	return c.prepareTxLocked(class, typ, priority)
}

func (c *Core) SendEvent(evt *vscpevent.TxEvent) bool {
	return c.transport.Write(evt)
}
