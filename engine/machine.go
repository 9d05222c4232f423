// Copyright 2026 The Joybus Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"github.com/joybus-project/go-joybus/internal/syncutil"
)

// WriteStep is the observable outcome of one iteration of the write loop.
type WriteStep struct {
	// Level is the value driven onto the wire for this bit cell.
	Level Level
	// Stop is set when this step emitted the end-of-frame stop marker. The
	// machine has already jumped back to the read entry when Stop is set.
	Stop bool
}

// Machine is a bit-granular simulation of the signal engine. It holds the
// two FIFOs, the input and output shift registers and the current program
// entry, and is advanced one bit cell at a time by whatever stands in for
// the bit clock (a VirtualClock in tests, a real peripheral otherwise).
//
// The machine is shared between two independently clocked contexts, the
// host and the simulated hardware, so its methods lock internally the way
// the real FIFO registers serialize access.
type Machine struct {
	mu syncutil.Mutex

	rx FIFO
	tx FIFO

	mode Entry

	// Input shift register: bits accumulate MSB-first and are pushed to the
	// receive FIFO after the 8th sample.
	isr     byte
	isrBits int
	isrHeld bool // completed byte waiting for FIFO room

	// Output shift register: a 9-bit window of 8 data bits plus the stop
	// flag, refilled from the transmit FIFO.
	osr     uint32
	osrBits int

	lineBusy bool
}

// NewMachine returns a machine resumed at the read entry with empty FIFOs.
func NewMachine() *Machine {
	return &Machine{mode: EntryRead}
}

// Restart forcibly resumes the program at the given entry, discarding any
// partial shift-register state. It does not touch the FIFOs; callers that
// need a clean direction switch clear them first.
func (m *Machine) Restart(entry Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = entry
	m.isr = 0
	m.isrBits = 0
	m.isrHeld = false
	m.osr = 0
	m.osrBits = 0
}

// ClearFIFOs discards all queued words in both directions.
func (m *Machine) ClearFIFOs() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rx.Clear()
	m.tx.Clear()
}

// Mode returns the loop the program is currently executing.
func (m *Machine) Mode() Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// PopRx removes the oldest received byte. ok is false when none is queued.
func (m *Machine) PopRx() (b byte, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.rx.TryPop()
	if !ok {
		return 0, false
	}
	return byte(w), true
}

// PushTx queues one engine input word (see Word). It reports false when the
// transmit FIFO is full.
func (m *Machine) PushTx(w uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx.TryPush(w)
}

// TxFull reports whether the transmit FIFO is full.
func (m *Machine) TxFull() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx.Full()
}

// RxLen returns the number of received bytes waiting in the FIFO.
func (m *Machine) RxLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rx.Len()
}

// SetLineBusy marks the wire as externally driven low. The transport checks
// LineIdle before claiming the wire for a send.
func (m *Machine) SetLineBusy(busy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lineBusy = busy
}

// LineIdle reports whether the wire is observed high.
func (m *Machine) LineIdle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.lineBusy
}

// SampleBit executes one iteration of the read loop: the level sampled
// ReadSampleOffset cycles after a falling edge is shifted into the input
// register MSB-first, and the completed byte is autopushed after 8 bits.
// If the receive FIFO is full the completed byte is held and the push
// retried on the next iteration, stalling the loop the way autopush stalls
// the hardware.
func (m *Machine) SampleBit(level Level) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode != EntryRead {
		return
	}
	if m.isrHeld {
		if !m.rx.TryPush(uint32(m.isr)) {
			return // still stalled, bit lost
		}
		m.isr = 0
		m.isrBits = 0
		m.isrHeld = false
	}

	m.isr = m.isr<<1 | byte(level)
	m.isrBits++
	if m.isrBits < 8 {
		return
	}
	if m.rx.TryPush(uint32(m.isr)) {
		m.isr = 0
		m.isrBits = 0
	} else {
		m.isrHeld = true
	}
}

// StepWrite executes one iteration of the write loop and returns the bit
// cell it produced. ok is false when the machine is not in the write loop
// or is stalled on an empty transmit FIFO (the blocking pull).
//
// Transition guards, in program order:
//   - window not exhausted → write-bit: drive the data bit.
//   - 9th bit set → write-stop: drive the stop marker and jump to the read
//     entry.
//   - 9th bit clear → refill: fetch the next byte's first bit without
//     inserting idle time, keeping multi-byte frames gap-free.
func (m *Machine) StepWrite() (step WriteStep, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode != EntryWrite {
		return WriteStep{}, false
	}
	if m.osrBits == 0 && !m.refillLocked() {
		return WriteStep{}, false
	}

	bit := m.shiftOutLocked()
	if m.osrBits > 0 {
		return WriteStep{Level: bit}, true
	}

	// 9th bit of the window: stop marker or transparent refill.
	if bit == High {
		m.mode = EntryRead
		m.isr = 0
		m.isrBits = 0
		return WriteStep{Level: High, Stop: true}, true
	}
	if !m.refillLocked() {
		return WriteStep{}, false // stalled mid-frame; resumes gap-free
	}
	return WriteStep{Level: m.shiftOutLocked()}, true
}

// refillLocked pulls the next word into the output shift register. The
// caller holds the lock.
func (m *Machine) refillLocked() bool {
	w, ok := m.tx.TryPop()
	if !ok {
		return false
	}
	m.osr = w
	m.osrBits = 9
	return true
}

// shiftOutLocked shifts the next bit out of the 9-bit window, MSB-first.
// The caller holds the lock and guarantees osrBits > 0.
func (m *Machine) shiftOutLocked() Level {
	bit := Level(m.osr >> 31)
	m.osr <<= 1
	m.osrBits--
	return bit
}
