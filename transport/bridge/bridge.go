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

// Package bridge implements the signal-engine device over a serial link to
// a microcontroller that owns the real engine hardware. The bridge firmware
// exposes the engine's FIFOs, restart control and line level through a
// fixed-size command protocol:
//
//	host → bridge                      bridge → host
//	'R'                restart read    —
//	'W'                restart write   —
//	'C'                clear FIFOs     —
//	'P' + word (BE32)  push tx word    0x01 accepted / 0x00 FIFO full
//	'B'                pop rx byte     0x01 + byte   / 0x00 + 0x00 empty
//	'L'                line level      0x01 idle     / 0x00 busy
//
// The engine semantics (restart entries, word encoding, stop marker) are
// exactly those of package engine; the serial hop only adds latency, which
// the receive timeout bound must account for.
package bridge

import (
	"encoding/binary"
	"fmt"
	"time"

	"go.bug.st/serial"

	joybus "github.com/joybus-project/go-joybus"
	"github.com/joybus-project/go-joybus/engine"
	"github.com/joybus-project/go-joybus/internal/syncutil"
)

// Bridge protocol opcodes.
const (
	opRestartRead  = 'R'
	opRestartWrite = 'W'
	opClearFIFOs   = 'C'
	opPushWord     = 'P'
	opPopByte      = 'B'
	opLineLevel    = 'L'
)

const (
	baudRate    = 115200
	readTimeout = 50 * time.Millisecond
)

// Device implements joybus.Device over a serial bridge. Serial faults
// cannot be reported through the Device interface, so they surface as
// conservative answers (no data, line busy) and are retained for Err.
type Device struct {
	port     serial.Port
	lastErr  error
	portName string
	mu       syncutil.Mutex
	closed   bool
}

// New opens the serial port the bridge MCU is attached to.
func New(portName string) (*Device, error) {
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, joybus.NewDeviceError("open", portName, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		_ = port.Close()
		return nil, joybus.NewDeviceError("configure", portName, err)
	}
	return &Device{port: port, portName: portName}, nil
}

// Restart forces the bridge's engine to the given entry point.
func (d *Device) Restart(entry engine.Entry) {
	op := byte(opRestartRead)
	if entry == engine.EntryWrite {
		op = opRestartWrite
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.command(op)
}

// ClearFIFOs discards the bridge's queued bytes in both directions.
func (d *Device) ClearFIFOs() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.command(opClearFIFOs)
}

// PopRx asks the bridge for the next received byte.
func (d *Device) PopRx() (b byte, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	resp, ok := d.query(opPopByte, nil, 2)
	if !ok || resp[0] == 0x00 {
		return 0, false
	}
	return resp[1], true
}

// PushTx sends one engine word to the bridge's transmit FIFO. It reports
// false when the bridge's FIFO is full, the same back-pressure the engine
// FIFO gives locally.
func (d *Device) PushTx(w uint32) bool {
	var word [4]byte
	binary.BigEndian.PutUint32(word[:], w)
	d.mu.Lock()
	defer d.mu.Unlock()
	resp, ok := d.query(opPushWord, word[:], 1)
	return ok && resp[0] == 0x01
}

// LineIdle asks the bridge for the wire level. Faults read as busy so that
// a send never claims a wire it cannot observe.
func (d *Device) LineIdle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	resp, ok := d.query(opLineLevel, nil, 1)
	return ok && resp[0] == 0x01
}

// Err returns the last serial fault, if any.
func (d *Device) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// Close closes the serial port.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if err := d.port.Close(); err != nil {
		return joybus.NewDeviceError("close", d.portName, err)
	}
	return nil
}

// command writes a reply-less opcode. The caller holds the lock.
func (d *Device) command(op byte) {
	if d.closed {
		d.lastErr = joybus.NewDeviceError("write", d.portName, joybus.ErrTransportClosed)
		return
	}
	if _, err := d.port.Write([]byte{op}); err != nil {
		d.lastErr = joybus.NewDeviceError("write", d.portName, err)
	}
}

// query writes an opcode plus arguments and reads a fixed-size reply. The
// caller holds the lock.
func (d *Device) query(op byte, args []byte, respLen int) ([]byte, bool) {
	if d.closed {
		d.lastErr = joybus.NewDeviceError("write", d.portName, joybus.ErrTransportClosed)
		return nil, false
	}
	msg := append([]byte{op}, args...)
	if _, err := d.port.Write(msg); err != nil {
		d.lastErr = joybus.NewDeviceError("write", d.portName, err)
		return nil, false
	}

	resp := make([]byte, respLen)
	got := 0
	for got < respLen {
		n, err := d.port.Read(resp[got:])
		if err != nil {
			d.lastErr = joybus.NewDeviceError("read", d.portName, err)
			return nil, false
		}
		if n == 0 {
			// Read timeout. A short reply is a protocol violation worth
			// keeping, a silent bridge on a status poll is not.
			if got > 0 {
				d.lastErr = joybus.NewDeviceError("read", d.portName,
					fmt.Errorf("%w: got %d of %d bytes", joybus.ErrBridgeResponse, got, respLen))
			}
			return nil, false
		}
		got += n
	}
	return resp, true
}
