package vscpcore

import (
	"go.uber.org/zap"

	"vscpnode/internal/vscpconst"
	"vscpnode/internal/vscpdevdata"
	"vscpnode/internal/vscpdm"
	"vscpnode/internal/vscpdmng"
	"vscpnode/internal/vscpevent"
	"vscpnode/internal/vscplog"
	"vscpnode/internal/vscpps"
	"vscpnode/internal/vscptimer"
)

// MainState is the top-level lifecycle state (§4.1).
type MainState int

const (
	StateStartup MainState = iota
	StateInit
	StatePreActive
	StateActive
	StateIdle
	StateReset
	StateError
)

func (s MainState) String() string {
	switch s {
	case StateStartup:
		return "STARTUP"
	case StateInit:
		return "INIT"
	case StatePreActive:
		return "PREACTIVE"
	case StateActive:
		return "ACTIVE"
	case StateIdle:
		return "IDLE"
	case StateReset:
		return "RESET"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// InitSubState is INIT's own sub-state machine (§4.1).
type InitSubState int

const (
	InitProbeMaster InitSubState = iota
	InitProbeMasterWait
	InitProbe
	InitProbeWait
)

// Config is the compile-time configuration §9's design notes describe:
// resolved once at construction, never mutated at runtime.
type Config struct {
	// HardCoded and SilentNode are carried in Config but not read by Core:
	// STARTUP and nickname discovery behave the same whatever their values.
	HardCoded  bool
	SilentNode bool

	NodeSegmentInitTimeoutMS uint32
	ProbeAckTimeoutMS        uint32
	MultiMsgTimeoutMS        uint32
	HeartbeatPeriodMS        uint32
	HeartbeatEnabled         bool

	VSCPMajorVersion uint8
	VSCPMinorVersion uint8

	// DefaultNodeControlFlags is written by RestoreFactoryDefaults and used
	// whenever checkPersistentMemory finds storage uninitialised. Must have
	// NodeControlStartupAuto or NodeControlStartupManual set in bits 6..7.
	DefaultNodeControlFlags uint8
}

// extPageRead is the in-RAM-only continuation for a streamed
// EXTENDED_PAGE_READ (§3). At most one is active at a time.
type extPageRead struct {
	active bool
	target uint8
	page   uint16
	addr   uint8
	count  uint16
	seq    uint8
}

// guidMatch tracks the 4-frame GUID match sequence RESET_DEVICE (§4.2.2)
// needs.
type guidMatch struct {
	active   bool
	received [4]bool
	timer    vscptimer.ID
}

// restoreUnlock tracks the two-step unlock sequence for register 162
// (§3: VSCP_REG_RESTORE_STD_CFG).
type restoreUnlock struct {
	armed bool
	timer vscptimer.ID
}

// Core owns every piece of mutable node state: the main and init
// sub-states, all timers, the probe counter, the reset countdown and the
// extended-page continuation, collected into one struct per §9's design
// notes so that entering/leaving a state stays localised.
type Core struct {
	cfg Config

	platform  Platform
	transport Transport
	ps        *vscpps.Store
	dev       *vscpdevdata.DeviceData
	appRegs   AppRegisters
	dm        *vscpdm.DM
	dmng      *vscpdmng.DMNG
	timers    *vscptimer.Pool
	log       *zap.Logger

	state     MainState
	initState InitSubState

	probeNickname uint8

	timeSinceEpoch uint32

	extPage extPageRead
	guid    guidMatch
	unlock162 restoreUnlock

	pageSelect uint16

	tNodeSegmentInit vscptimer.ID
	tProbeAck        vscptimer.ID
	tHeartbeat       vscptimer.ID
	tReset           vscptimer.ID

	resetRemainingSec uint8
	resetFired        bool

	idleEntered bool
	errorEntered bool

	alarmStatus uint8

	rx vscpevent.RxEvent
}

// New wires together all sub-components. Call Init before the first call
// to Process.
func New(cfg Config, platform Platform, transport Transport, ps *vscpps.Store, dev *vscpdevdata.DeviceData, appRegs AppRegisters, dm *vscpdm.DM, dmng *vscpdmng.DMNG) *Core {
	return &Core{
		cfg:       cfg,
		platform:  platform,
		transport: transport,
		ps:        ps,
		dev:       dev,
		appRegs:   appRegs,
		dm:        dm,
		dmng:      dmng,
		timers:    vscptimer.NewPool(),
		log:       vscplog.Nop(),
	}
}

// SetLogger replaces the no-op logger New installs by default. Call before
// Init to capture startup logging too.
func (c *Core) SetLogger(log *zap.Logger) { c.log = log }

// Init wires up all sub-components, creates all timers, repairs persistent
// store if corrupt, and sets the status lamp to slow-blink. It fails (i.e.
// leaves Core in StateError) iff timer allocation fails (§7: TimerExhausted
// escalates to ERROR).
func (c *Core) Init() {
	c.dev.Init()
	c.appRegs.Init()
	c.checkPersistentMemory()

	c.tNodeSegmentInit = c.timers.Create()
	c.tProbeAck = c.timers.Create()
	c.tHeartbeat = c.timers.Create()
	c.tReset = c.timers.Create()
	c.unlock162.timer = c.timers.Create()
	c.guid.timer = c.timers.Create()

	if c.tNodeSegmentInit == vscptimer.Invalid ||
		c.tProbeAck == vscptimer.Invalid ||
		c.tHeartbeat == vscptimer.Invalid ||
		c.tReset == vscptimer.Invalid ||
		c.unlock162.timer == vscptimer.Invalid ||
		c.guid.timer == vscptimer.Invalid {
		c.changeToStateError()
		return
	}

	c.platform.LampSet(vscpconst.LampBlinkSlow)

	if c.cfg.HeartbeatEnabled {
		c.timers.Start(c.tHeartbeat, c.cfg.HeartbeatPeriodMS)
	}

	c.stateStartup()
}

// checkPersistentMemory validates the node-control-flags invariant (§3):
// bits 6..7 must be 01b or 10b. Any other value means persistent storage is
// uninitialised (§7: PersistentCorrupt) and triggers a factory reset.
func (c *Core) checkPersistentMemory() {
	flags := c.ps.NodeControlFlags()
	startup := flags & vscpconst.NodeControlStartupMask
	if startup != vscpconst.NodeControlStartupAuto && startup != vscpconst.NodeControlStartupManual {
		c.RestoreFactoryDefaults()
	}
}

// RestoreFactoryDefaults clears nickname, segment CRC, user-ID, node
// control flags (to default), DM rows and DM-NG rules in persistent
// storage, and resets the application registers through
// AppRegisters.RestoreDefaults. No Platform hook is called.
func (c *Core) RestoreFactoryDefaults() {
	c.ps.RestoreFactoryDefaults(c.cfg.DefaultNodeControlFlags)
	c.appRegs.RestoreDefaults()
}

// IsActive reports whether the node has completed discovery and is
// processing events normally.
func (c *Core) IsActive() bool { return c.state == StateActive }

// ReadNickname returns the persisted nickname (0xFF if unassigned).
func (c *Core) ReadNickname() uint8 { return c.ps.Nickname() }

// GetTimeSinceEpoch / SetTimeSinceEpoch expose the time-since-epoch value in
// seconds, as last set by SetTimeSinceEpoch or a segment-master heartbeat;
// Core does not advance it on its own.
func (c *Core) GetTimeSinceEpoch() uint32     { return c.timeSinceEpoch }
func (c *Core) SetTimeSinceEpoch(v uint32)    { c.timeSinceEpoch = v }

// SetAlarm ORs bits into the alarm-status system register. A read of
// register 0x80 latches the current value and clears it (§8 invariant 3).
func (c *Core) SetAlarm(bits uint8) { c.alarmStatus |= bits }

func (c *Core) writeNicknameID(nickname uint8) {
	c.ps.SetNickname(nickname)
}

// State returns the current main state, mostly for tests/observability.
func (c *Core) State() MainState { return c.state }
