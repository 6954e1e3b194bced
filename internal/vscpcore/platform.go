// Package vscpcore implements the node lifecycle state machine and the
// protocol-class event dispatcher (§4.1, §4.2): startup, nickname
// discovery, register access, page read/write, extended-page streaming,
// who-is-there enumeration, and the decision matrices that ride on top of
// every received event.
package vscpcore

import (
	"vscpnode/internal/vscpconst"
	"vscpnode/internal/vscpevent"
)

// Transport is the non-blocking datagram-style collaborator the core reads
// events from and writes events to (§6.1). The core never blocks on it.
type Transport interface {
	Read(evt *vscpevent.RxEvent) bool
	Write(evt *vscpevent.TxEvent) bool
}

// AppRegisters is the application-specific register owner (§4.3's "everything
// else: forwarded to application").
type AppRegisters interface {
	Init()
	RestoreDefaults()
	PagesUsed() uint16
	Read(page uint16, addr uint8) uint8
	// Write returns false if the write was rejected (out of range); the
	// write-protect bit is checked by Core before Write is ever called.
	Write(page uint16, addr, value uint8) bool
}

// Platform groups every external collaborator §6.3 lists individually
// (timers are handled separately through vscptimer.Pool, which Core owns
// directly) into one seam, the way the teacher's HardwareDevice interface
// groups a device's send/reset/close surface.
type Platform interface {
	LampSet(state vscpconst.LampState)

	ActionExecute(actionID, param uint8, evt *vscpevent.RxEvent)
	ProvideEvent(evt *vscpevent.RxEvent)
	// ProvideProtocolEvent is the optional pre-dispatch hook (§6.3); it
	// returns true if it fully handled the event, suppressing Core's own
	// dispatch.
	ProvideProtocolEvent(evt *vscpevent.RxEvent) bool

	ResetRequest()
	BootLoaderRequest()
	GetBootLoaderAlgorithm() uint8

	UpdateTimeSinceEpoch(unixSeconds uint32)

	IdleStateEntered()
	ErrorStateEntered()
}

// NopPlatform implements Platform with no-ops, useful as an embeddable
// base for test doubles that only care about a couple of hooks.
type NopPlatform struct{}

func (NopPlatform) LampSet(vscpconst.LampState)                         {}
func (NopPlatform) ActionExecute(uint8, uint8, *vscpevent.RxEvent)      {}
func (NopPlatform) ProvideEvent(*vscpevent.RxEvent)                     {}
func (NopPlatform) ProvideProtocolEvent(*vscpevent.RxEvent) bool        { return false }
func (NopPlatform) ResetRequest()                                       {}
func (NopPlatform) BootLoaderRequest()                                  {}
func (NopPlatform) GetBootLoaderAlgorithm() uint8                       { return 0xFF }
func (NopPlatform) UpdateTimeSinceEpoch(uint32)                         {}
func (NopPlatform) IdleStateEntered()                                   {}
func (NopPlatform) ErrorStateEntered()                                  {}
