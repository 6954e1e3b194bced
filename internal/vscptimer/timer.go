// Package vscptimer implements the fixed pool of countdown timers every
// timeout in the core is built from. It never reads wall-clock time; the
// platform advances it by calling Process with the elapsed period.
package vscptimer

import "errors"

// ID identifies a timer slot. Invalid is returned by Create when the pool
// is exhausted.
type ID int

// Invalid is the zero-value-safe sentinel for "no timer".
const Invalid ID = -1

// poolSize is the number of logical timers the pool provides. §4.7 requires
// at least 5; the core itself uses six: segment-init, probe-ack, heartbeat,
// reset countdown, the register-162 unlock window and the RESET_DEVICE
// GUID-match window.
const poolSize = 8

var errPoolExhausted = errors.New("vscptimer: no free timer slot")

type slot struct {
	inUse     bool
	running   bool
	remaining uint32 // milliseconds
}

// Pool is a fixed array of countdown timers. The zero value is not usable;
// construct with NewPool.
type Pool struct {
	slots [poolSize]slot
}

// NewPool returns an empty timer pool.
func NewPool() *Pool {
	return &Pool{}
}

// Create allocates a timer slot and returns its ID, or Invalid if the pool
// is exhausted. A timer created this way is stopped until Start is called.
func (p *Pool) Create() ID {
	for i := range p.slots {
		if !p.slots[i].inUse {
			p.slots[i] = slot{inUse: true}
			return ID(i)
		}
	}
	return Invalid
}

// Start arms timer id to fire after ms milliseconds.
func (p *Pool) Start(id ID, ms uint32) {
	if !p.valid(id) {
		return
	}
	p.slots[id].running = true
	p.slots[id].remaining = ms
}

// Stop disarms timer id without releasing the slot.
func (p *Pool) Stop(id ID) {
	if !p.valid(id) {
		return
	}
	p.slots[id].running = false
	p.slots[id].remaining = 0
}

// Running reports whether timer id is still counting down.
func (p *Pool) Running(id ID) bool {
	if !p.valid(id) {
		return false
	}
	return p.slots[id].running
}

// Expired reports whether timer id is valid, not running and has no time
// left. That holds once a started timer has counted down to zero, and also
// for a timer that was stopped or never started. Process stops a timer when
// it reaches zero, so Expired stays true until the next Start.
func (p *Pool) Expired(id ID) bool {
	if !p.valid(id) {
		return false
	}
	s := &p.slots[id]
	return !s.running && s.remaining == 0
}

// Remaining returns the milliseconds left on timer id.
func (p *Pool) Remaining(id ID) uint32 {
	if !p.valid(id) {
		return 0
	}
	return p.slots[id].remaining
}

// Process decrements every running timer by periodMS, saturating at zero
// and stopping the timer when it reaches zero. The platform calls this at a
// known cadence from its tick source; it must not be called concurrently
// with itself, but may interleave with Core.Process on single-threaded
// cooperative platforms without additional locking.
func (p *Pool) Process(periodMS uint32) {
	for i := range p.slots {
		s := &p.slots[i]
		if !s.inUse || !s.running {
			continue
		}
		if s.remaining <= periodMS {
			s.remaining = 0
			s.running = false
		} else {
			s.remaining -= periodMS
		}
	}
}

func (p *Pool) valid(id ID) bool {
	return id >= 0 && int(id) < poolSize && p.slots[id].inUse
}

// ErrPoolExhausted names the exhausted-pool condition. Create reports
// exhaustion by returning Invalid, and no function in this module returns
// this error; Core.Init enters StateError instead.
var ErrPoolExhausted = errPoolExhausted
