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

// Package gpio implements the signal-engine device on a host GPIO line via
// periph.io, bit-banging the wire in software instead of running an
// autonomous engine.
//
// A general-purpose OS cannot guarantee the protocol's microsecond windows,
// so this device is best-effort: useful on bench rigs and for talking to
// tolerant receivers, not a substitute for dedicated engine hardware. The
// bit cell timing mirrors the engine's T1/T2/T3 slices at one microsecond
// per slice.
package gpio

import (
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	joybus "github.com/joybus-project/go-joybus"
	"github.com/joybus-project/go-joybus/engine"
)

// Bit cell slices in microseconds: one protocol time slice per engine T
// unit. A bit is 1 µs low, 2 µs at the bit value, 1 µs high; the stop
// marker is 1 µs low, 2 µs high.
const (
	t1Micros = 1
	t2Micros = 2
	t3Micros = 1

	// sampleOffsetMicros is the delay between a falling edge and the single
	// sample of the bit value, landing mid-way through the value window.
	sampleOffsetMicros = t1Micros + t2Micros/2

	// edgeTimeout bounds how long one PopRx attempt waits for the first
	// falling edge before reporting the line quiet.
	edgeTimeout = time.Millisecond
)

// Device bit-bangs the Joybus wire on a single GPIO line. It implements
// joybus.Device: received bytes queue until popped, transmit words stage
// until the stop-flagged word arrives and the whole frame is driven onto
// the wire in one burst.
type Device struct {
	pin    gpio.PinIO
	clk    joybus.Clock
	name   string
	rx     []byte
	tx     []uint32
	mode   engine.Entry
	closed bool
}

// New opens the named GPIO line as a Joybus wire. The line idles as an
// input with pull-up, the wire's resting state.
func New(pinName string, clk joybus.Clock) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, joybus.NewDeviceError("init", pinName, err)
	}
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, joybus.NewDeviceError("open", pinName, joybus.ErrPinNotFound)
	}
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, joybus.NewDeviceError("configure", pinName, err)
	}
	return &Device{pin: pin, clk: clk, name: pinName, mode: engine.EntryRead}, nil
}

// Restart switches the wire direction and discards any partially framed
// state, mirroring the engine's forced entry jump.
func (d *Device) Restart(entry engine.Entry) {
	d.mode = entry
	switch entry {
	case engine.EntryRead:
		_ = d.pin.In(gpio.PullUp, gpio.FallingEdge)
	case engine.EntryWrite:
		_ = d.pin.Out(gpio.High)
	}
}

// ClearFIFOs discards queued received bytes and staged transmit words.
func (d *Device) ClearFIFOs() {
	d.rx = d.rx[:0]
	d.tx = d.tx[:0]
}

// PopRx returns the next received byte, framing one off the wire first if
// none is queued. ok is false when the line stays quiet for the edge
// timeout.
func (d *Device) PopRx() (b byte, ok bool) {
	if d.closed {
		return 0, false
	}
	if len(d.rx) == 0 && d.mode == engine.EntryRead {
		if rb, ok := d.readByte(); ok {
			d.rx = append(d.rx, rb)
		}
	}
	if len(d.rx) == 0 {
		return 0, false
	}
	b = d.rx[0]
	d.rx = d.rx[1:]
	return b, true
}

// readByte frames one byte off the wire: for each bit, wait for the falling
// edge, delay to the middle of the value window and sample once.
func (d *Device) readByte() (byte, bool) {
	var b byte
	for range 8 {
		if !d.pin.WaitForEdge(edgeTimeout) {
			return 0, false
		}
		d.clk.DelayMicros(sampleOffsetMicros)
		b <<= 1
		if d.pin.Read() == gpio.High {
			b |= 1
		}
	}
	return b, true
}

// PushTx stages one engine word. The stop-flagged word completes the frame,
// which is then driven onto the wire in one gap-free burst; staging is
// unbounded, so PushTx never reports full.
func (d *Device) PushTx(w uint32) bool {
	if d.closed {
		return true // swallow; the frame is already lost
	}
	d.tx = append(d.tx, w)
	if engine.WordLast(w) {
		d.writeFrame()
	}
	return true
}

// writeFrame drives the staged frame and returns the line to the read
// state, as the engine's stop path does.
func (d *Device) writeFrame() {
	for _, w := range d.tx {
		b := engine.WordByte(w)
		for i := 7; i >= 0; i-- {
			d.writeBit(b>>i&1 == 1)
		}
	}
	d.writeStop()
	d.tx = d.tx[:0]
	d.Restart(engine.EntryRead)
}

// writeBit drives one bit cell: low for T1, the bit value for T2, then
// high to end the pulse.
func (d *Device) writeBit(bit bool) {
	_ = d.pin.Out(gpio.Low)
	d.clk.DelayMicros(t1Micros)
	if bit {
		_ = d.pin.Out(gpio.High)
	} else {
		_ = d.pin.Out(gpio.Low)
	}
	d.clk.DelayMicros(t2Micros)
	_ = d.pin.Out(gpio.High)
	d.clk.DelayMicros(t3Micros)
}

// writeStop drives the end-of-frame stop marker.
func (d *Device) writeStop() {
	_ = d.pin.Out(gpio.Low)
	d.clk.DelayMicros(t1Micros)
	_ = d.pin.Out(gpio.High)
	d.clk.DelayMicros(t2Micros)
}

// LineIdle reports whether the wire reads high.
func (d *Device) LineIdle() bool {
	if d.closed {
		return false
	}
	return d.pin.Read() == gpio.High
}

// Close releases the pin.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if err := d.pin.Halt(); err != nil {
		return joybus.NewDeviceError("close", d.name, err)
	}
	return nil
}
