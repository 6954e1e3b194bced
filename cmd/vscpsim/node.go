package main

import (
	"go.uber.org/zap"

	"vscpnode/internal/vscpconst"
	"vscpnode/internal/vscpcore"
	"vscpnode/internal/vscpdevdata"
	"vscpnode/internal/vscpdm"
	"vscpnode/internal/vscpdmng"
	"vscpnode/internal/vscpevent"
	"vscpnode/internal/vscpps"
)

// memAppRegisters is a trivial application-register page: one 256-byte
// page, every byte writable, nothing backing it but RAM. Real firmware
// supplies its own (§4.3).
type memAppRegisters struct {
	page [256]byte
}

func (a *memAppRegisters) Init()            {}
func (a *memAppRegisters) RestoreDefaults() { a.page = [256]byte{} }
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

// simNode bundles a Core with the bus it talks over, for the run and
// monitor subcommands to share.
type simNode struct {
	core *vscpcore.Core
	bus  *chanBus
}

func newSimNode(log *zap.Logger) *simNode {
	bus := newChanBus()
	drv := vscpps.NewMemDriver()
	layout := vscpps.NewLayout(vscpps.Config{
		GUIDInPS:   false,
		ZoneInPS:   false,
		DMRowCount: 8,
		DMNGRuleSetSize: 256,
	})
	store := vscpps.NewStore(drv, layout)

	dev := vscpdevdata.New(
		vscpdevdata.Config{},
		vscpdevdata.Static{
			GUID:       [16]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0, 0, 0, 0, 1},
			Zone:       0,
			SubZone:    0,
			MDFURL:     "example.org/vscpsim.xml",
			BootLoaderAlgo: 0xFF,
		},
		vscpdevdata.FirmwareVersion{Major: 1, Minor: 0, SubMinor: 0},
		store,
	)

	appRegs := &memAppRegisters{}

	dm := vscpdm.New(vscpdm.Config{
		RowCount:      8,
		ExtensionRows: false,
		StartPage:     2,
		StartOffset:   0,
	}, store, dev, func(actionID, param uint8, evt *vscpevent.RxEvent) {
		log.Info("DM action fired", zap.Uint8("action_id", actionID), zap.Uint8("param", param))
	})

	dmng := vscpdmng.New(vscpdmng.Config{
		Page:        3,
		RuleSetSize: 256,
	}, store, func(actionID, param uint8, evt *vscpevent.RxEvent) {
		log.Info("DM-NG action fired", zap.Uint8("action_id", actionID), zap.Uint8("param", param))
	})

	platform := &loggingPlatform{log: log}

	cfg := vscpcore.Config{
		NodeSegmentInitTimeoutMS: vscpconst.DefaultNodeSegmentInitTimeoutMS,
		ProbeAckTimeoutMS:        vscpconst.DefaultProbeAckTimeoutMS,
		MultiMsgTimeoutMS:        vscpconst.DefaultMultiMsgTimeoutMS,
		HeartbeatPeriodMS:        vscpconst.DefaultHeartbeatNodePeriodMS,
		HeartbeatEnabled:         true,
		VSCPMajorVersion:         1,
		VSCPMinorVersion:         13,
		DefaultNodeControlFlags:  vscpconst.NodeControlStartupAuto,
	}

	core := vscpcore.New(cfg, platform, bus, store, dev, appRegs, dm, dmng)
	core.SetLogger(log)
	core.Init()

	return &simNode{core: core, bus: bus}
}

// loggingPlatform implements vscpcore.Platform by logging every hook
// instead of touching real hardware.
type loggingPlatform struct {
	vscpcore.NopPlatform
	log *zap.Logger
}

func (p *loggingPlatform) LampSet(state vscpconst.LampState) {
	p.log.Debug("lamp", zap.Int("state", int(state)))
}

func (p *loggingPlatform) ProvideEvent(evt *vscpevent.RxEvent) {
	p.log.Info("application event", zap.String("event", evt.String()))
}

func (p *loggingPlatform) IdleStateEntered() { p.log.Info("idle state entered") }
func (p *loggingPlatform) ErrorStateEntered() { p.log.Error("error state entered") }
