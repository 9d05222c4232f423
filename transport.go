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

package joybus

import (
	"github.com/joybus-project/go-joybus/engine"
)

// Device is the signal-engine surface the transport drives: the two FIFOs,
// the forced program restart and the raw line level. It is implemented by
// the simulated engine.Machine, by a bit-banged GPIO line and by a serial
// bridge to external engine hardware.
type Device interface {
	// PopRx removes the oldest received byte; ok is false when none is
	// queued. Emptiness is the normal idle condition, not an error.
	PopRx() (b byte, ok bool)

	// PushTx queues one encoded engine word (see engine.Word). It reports
	// false when the transmit FIFO is full.
	PushTx(w uint32) bool

	// ClearFIFOs discards all queued bytes in both directions.
	ClearFIFOs()

	// Restart forcibly resumes the engine program at the given entry.
	Restart(entry engine.Entry)

	// LineIdle reports whether the wire is observed high. Only meaningful
	// while the engine is in the read loop.
	LineIdle() bool
}

// Transport provides byte-granular send and receive over a signal-engine
// Device, including direction control. It owns the wire: exactly one
// transfer direction is active at a time, and switching directions discards
// everything queued before the switch.
//
// A Transport assumes a single calling goroutine and does no locking of its
// own; concurrent callers must serialize access themselves.
type Transport struct {
	dev Device
	clk Clock
}

// NewTransport wraps a signal-engine device.
func NewTransport(dev Device, clk Clock) *Transport {
	return &Transport{dev: dev, clk: clk}
}

// Device returns the backing signal-engine device.
func (t *Transport) Device() Device {
	return t.dev
}

// RestartForRead flushes both FIFOs and resumes the engine at the read
// entry. Any byte the engine had produced or was about to consume is gone
// after this call.
func (t *Transport) RestartForRead() {
	t.dev.ClearFIFOs()
	t.dev.Restart(engine.EntryRead)
}

// RestartForWrite flushes both FIFOs and resumes the engine at the write
// entry.
func (t *Transport) RestartForWrite() {
	t.dev.ClearFIFOs()
	t.dev.Restart(engine.EntryWrite)
}

// ResumeRead forces the engine to the read entry without touching the
// FIFOs. It realigns an engine whose loop state is unknown, such as a
// bridge MCU that was left mid-write, while keeping bytes it already
// received.
func (t *Transport) ResumeRead() {
	t.dev.Restart(engine.EntryRead)
}

// ReceiveByte polls the receive FIFO for the next byte, busy-waiting up to
// timeout ticks. ok is false when the bound expires with no data; silence
// on the wire is routine, so this is not an error.
func (t *Transport) ReceiveByte(timeout uint64) (b byte, ok bool) {
	start := t.clk.Ticks()
	for {
		if b, ok := t.dev.PopRx(); ok {
			return b, true
		}
		if t.clk.Ticks()-start > timeout {
			return 0, false
		}
	}
}

// SendBytes transmits payload as one frame. It waits for the console to
// release the wire, claims it by restarting the engine at the write entry,
// then feeds the FIFO one encoded word per byte with the final byte's stop
// flag set. The FIFO-full wait is bounded by the engine draining it; once
// the wire is claimed the frame always completes.
func (t *Transport) SendBytes(payload []byte) {
	for !t.dev.LineIdle() {
		_ = t.clk.Ticks()
	}

	t.RestartForWrite()

	last := len(payload) - 1
	for i, b := range payload {
		w := engine.Word(b, i == last)
		for !t.dev.PushTx(w) {
			_ = t.clk.Ticks()
		}
	}
}
