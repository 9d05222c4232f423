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

package testing

import (
	"github.com/joybus-project/go-joybus/engine"
	"github.com/joybus-project/go-joybus/internal/syncutil"
)

// scheduledCommand is a command byte the console will put on the wire once
// the clock reaches the given tick.
type scheduledCommand struct {
	tick uint64
	b    byte
}

// VirtualConsole plays the console side of the wire against a simulated
// engine.Machine. It clocks command bits into the machine's read loop,
// drains the write loop one bit cell per clock tick, and reassembles the
// controller's response frames for assertions.
//
// Wire the console to a VirtualClock so the engine runs whenever the host
// observes time, the same loose coupling the real hardware has.
type VirtualConsole struct {
	mu syncutil.Mutex
	m  *engine.Machine

	frames  [][]byte
	frameAt []uint64 // tick of each completed frame's stop marker
	cur     []byte
	curByte byte
	curBits int

	scheduled []scheduledCommand
	busyUntil uint64
	lastTick  uint64
}

// NewVirtualConsole attaches a console to the machine and registers it as
// the clock's advance hook.
func NewVirtualConsole(m *engine.Machine, clk *VirtualClock) *VirtualConsole {
	vc := &VirtualConsole{m: m}
	clk.SetOnAdvance(vc.step)
	return vc
}

// SendCommand clocks one command byte into the machine immediately,
// MSB-first, as eight sampled bits.
func (vc *VirtualConsole) SendCommand(b byte) {
	for i := 7; i >= 0; i-- {
		vc.m.SampleBit(engine.Level(b >> i & 1))
	}
}

// ScheduleCommand arranges for a command byte to be clocked in once the
// clock reaches tick. Later schedules survive framing restarts that happen
// before their deadline, unlike bytes sent up front.
func (vc *VirtualConsole) ScheduleCommand(tick uint64, b byte) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.scheduled = append(vc.scheduled, scheduledCommand{tick: tick, b: b})
}

// HoldLineUntil drives the wire low until the clock reaches tick,
// simulating the console still finishing its own transmission.
func (vc *VirtualConsole) HoldLineUntil(tick uint64) {
	vc.mu.Lock()
	vc.busyUntil = tick
	vc.mu.Unlock()
	vc.m.SetLineBusy(true)
}

// Frames returns the response frames collected so far.
func (vc *VirtualConsole) Frames() [][]byte {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	out := make([][]byte, len(vc.frames))
	for i, f := range vc.frames {
		out[i] = append([]byte(nil), f...)
	}
	return out
}

// FrameTick returns the tick at which frame i completed.
func (vc *VirtualConsole) FrameTick(i int) uint64 {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	return vc.frameAt[i]
}

// Reset discards collected frames and pending schedules.
func (vc *VirtualConsole) Reset() {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.frames = nil
	vc.frameAt = nil
	vc.cur = nil
	vc.curByte = 0
	vc.curBits = 0
	vc.scheduled = nil
}

// step runs one tick of the console's side of the wire: release a held
// line, deliver due scheduled commands, and drain one write-loop bit cell.
func (vc *VirtualConsole) step(tick uint64) {
	vc.mu.Lock()
	if vc.busyUntil != 0 && tick >= vc.busyUntil {
		vc.busyUntil = 0
		vc.mu.Unlock()
		vc.m.SetLineBusy(false)
		vc.mu.Lock()
	}
	vc.lastTick = tick

	var due []byte
	rest := vc.scheduled[:0]
	for _, sc := range vc.scheduled {
		if tick >= sc.tick {
			due = append(due, sc.b)
		} else {
			rest = append(rest, sc)
		}
	}
	vc.scheduled = rest
	vc.mu.Unlock()

	for _, b := range due {
		vc.SendCommand(b)
	}

	if vc.m.Mode() != engine.EntryWrite {
		return
	}
	step, ok := vc.m.StepWrite()
	if !ok {
		return
	}
	vc.collect(step, tick)
}

// collect folds one write-loop bit cell into the current response frame.
func (vc *VirtualConsole) collect(step engine.WriteStep, tick uint64) {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	if step.Stop {
		vc.frames = append(vc.frames, vc.cur)
		vc.frameAt = append(vc.frameAt, tick)
		vc.cur = nil
		vc.curByte = 0
		vc.curBits = 0
		return
	}

	vc.curByte = vc.curByte<<1 | byte(step.Level)
	vc.curBits++
	if vc.curBits == 8 {
		vc.cur = append(vc.cur, vc.curByte)
		vc.curByte = 0
		vc.curBits = 0
	}
}
