// Package vscpevent defines the atomic unit exchanged on a VSCP bus: a
// priority-tagged event carrying a class, a type and up to 8 payload bytes.
package vscpevent

import "fmt"

// MaxDataLen is the largest payload a VSCP Level 1 event can carry.
const MaxDataLen = 8

// Event is the wire-level representation of a VSCP frame. RxEvent and
// TxEvent are distinct named types over the same layout so that direction is
// enforced by the type system rather than by convention.
type Event struct {
	Class      uint16
	Type       uint8
	Priority   uint8
	Origin     uint8 // source nickname; 0xFF = uninitialised, 0x00 = segment master
	HardCoded  bool
	Data       [MaxDataLen]byte
	DataLen    uint8
}

// RxEvent is an event as received from the transport.
type RxEvent Event

// TxEvent is an event queued for transmission.
type TxEvent Event

// Payload returns the event's data slice truncated to DataLen.
func (e *Event) Payload() []byte {
	n := e.DataLen
	if n > MaxDataLen {
		n = MaxDataLen
	}
	return e.Data[:n]
}

// SetPayload copies data into the event, clamping to MaxDataLen.
func (e *Event) SetPayload(data ...byte) {
	n := len(data)
	if n > MaxDataLen {
		n = MaxDataLen
	}
	copy(e.Data[:n], data[:n])
	e.DataLen = uint8(n)
}

func (e *Event) String() string {
	return fmt.Sprintf("class=%d type=%d prio=%d origin=0x%02X data=%v",
		e.Class, e.Type, e.Priority, e.Origin, e.Payload())
}

// Payload, SetPayload and String on RxEvent/TxEvent forward to the shared
// Event implementation via a local conversion; Go does not let us share
// methods across distinct defined types directly.

func (e *RxEvent) Payload() []byte            { return (*Event)(e).Payload() }
func (e *RxEvent) SetPayload(data ...byte)    { (*Event)(e).SetPayload(data...) }
func (e *RxEvent) String() string             { return (*Event)(e).String() }

func (e *TxEvent) Payload() []byte            { return (*Event)(e).Payload() }
func (e *TxEvent) SetPayload(data ...byte)    { (*Event)(e).SetPayload(data...) }
func (e *TxEvent) String() string             { return (*Event)(e).String() }
