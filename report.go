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

// Button bit positions within the poll report.
//
// Byte 0 (buttons1) carries the face buttons, byte 1 (buttons2) carries the
// d-pad, Z and the digital trigger stops. Bit 7 of buttons2 is always set on
// real controllers.
const (
	buttonA     = 0b0000_0001 // buttons1
	buttonB     = 0b0000_0010
	buttonX     = 0b0000_0100
	buttonY     = 0b0000_1000
	buttonStart = 0b0001_0000

	buttonDpadLeft  = 0b0000_0001 // buttons2
	buttonDpadRight = 0b0000_0010
	buttonDpadDown  = 0b0000_0100
	buttonDpadUp    = 0b0000_1000
	buttonZ         = 0b0001_0000
	buttonRDigital  = 0b0010_0000
	buttonLDigital  = 0b0100_0000
	buttons2Fixed   = 0b1000_0000
)

// AxisCenter is the mid-scale value reported for a centered analog axis.
const AxisCenter byte = 128

// IdentityReply is the 3-byte capability/identity response sent for Reset and
// Probe commands. It identifies the device as a standard wired controller.
var IdentityReply = []byte{0x09, 0x00, 0x03}

// Origin replies sent for Recalibrate and Origin commands: a neutral
// calibration with sticks centered, triggers released and no buttons down.
// Official adapters appear to ignore these and calibrate from the first poll
// report instead.
//
// The handshake and steady-state variants differ in a single buttons2 bit
// (0x80 vs 0x01). The discrepancy is unexplained but deliberate; confirm
// against real hardware before unifying them.
var (
	// HandshakeOriginReply is sent when Recalibrate/Origin arrives during the
	// initial handshake.
	HandshakeOriginReply = []byte{
		0x00,          // buttons1
		buttons2Fixed, // buttons2
		AxisCenter, AxisCenter, // stick x, y
		AxisCenter, AxisCenter, // c-stick x, y
		0x00, 0x00, // triggers
		0x00, 0x00, // reserved
	}

	// SteadyOriginReply is sent when Recalibrate/Origin arrives during the
	// steady-state poll loop.
	SteadyOriginReply = []byte{
		0x00,        // buttons1
		0b0000_0001, // buttons2
		AxisCenter, AxisCenter, // stick x, y
		AxisCenter, AxisCenter, // c-stick x, y
		0x00, 0x00, // triggers
		0x00, 0x00, // reserved
	}
)

// Input is a caller-supplied snapshot of the logical controller state. The
// library only reads it while building a report; its lifecycle belongs to the
// caller.
type Input struct {
	Start bool
	A     bool
	B     bool
	X     bool
	Y     bool
	Z     bool

	DpadUp    bool
	DpadDown  bool
	DpadLeft  bool
	DpadRight bool

	LDigital bool
	RDigital bool

	StickX  byte
	StickY  byte
	CStickX byte
	CStickY byte
	LAnalog byte
	RAnalog byte
}

// Report encodes the snapshot into the fixed 8-byte poll report layout. The
// encoding is deterministic and recomputed on every poll cycle.
func (in *Input) Report() [8]byte {
	var buttons1 byte
	if in.A {
		buttons1 |= buttonA
	}
	if in.B {
		buttons1 |= buttonB
	}
	if in.X {
		buttons1 |= buttonX
	}
	if in.Y {
		buttons1 |= buttonY
	}
	if in.Start {
		buttons1 |= buttonStart
	}

	buttons2 := byte(buttons2Fixed)
	if in.DpadLeft {
		buttons2 |= buttonDpadLeft
	}
	if in.DpadRight {
		buttons2 |= buttonDpadRight
	}
	if in.DpadDown {
		buttons2 |= buttonDpadDown
	}
	if in.DpadUp {
		buttons2 |= buttonDpadUp
	}
	if in.Z {
		buttons2 |= buttonZ
	}
	if in.RDigital {
		buttons2 |= buttonRDigital
	}
	if in.LDigital {
		buttons2 |= buttonLDigital
	}

	return [8]byte{
		buttons1,
		buttons2,
		in.StickX,
		in.StickY,
		in.CStickX,
		in.CStickY,
		in.LAnalog,
		in.RAnalog,
	}
}

// Neutral returns a snapshot with nothing pressed and every axis centered.
func Neutral() Input {
	return Input{
		StickX:  AxisCenter,
		StickY:  AxisCenter,
		CStickX: AxisCenter,
		CStickY: AxisCenter,
	}
}
