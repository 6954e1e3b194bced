package main

import "vscpnode/internal/vscpevent"

// busSize bounds how many in-flight frames the simulated bus holds before a
// Write starts dropping, mirroring a real transceiver's finite send queue.
const busSize = 64

// chanBus is a vscpcore.Transport backed by two buffered channels: one
// inbound (frames arriving at the node) and one outbound (frames the node
// emits), standing in for the physical VSCP transport (§6.1).
type chanBus struct {
	in  chan vscpevent.RxEvent
	out chan vscpevent.TxEvent
}

func newChanBus() *chanBus {
	return &chanBus{
		in:  make(chan vscpevent.RxEvent, busSize),
		out: make(chan vscpevent.TxEvent, busSize),
	}
}

// Read implements vscpcore.Transport: non-blocking, returns false if no
// frame is queued.
func (b *chanBus) Read(evt *vscpevent.RxEvent) bool {
	select {
	case e := <-b.in:
		*evt = e
		return true
	default:
		return false
	}
}

// Write implements vscpcore.Transport: non-blocking, drops the frame (and
// reports failure) if the outbound queue is full.
func (b *chanBus) Write(evt *vscpevent.TxEvent) bool {
	select {
	case b.out <- *evt:
		return true
	default:
		return false
	}
}

// Inject queues a frame as if it arrived from the bus, for test harnesses
// and the interactive monitor.
func (b *chanBus) Inject(evt vscpevent.RxEvent) bool {
	select {
	case b.in <- evt:
		return true
	default:
		return false
	}
}
