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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityReply(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []byte{0x09, 0x00, 0x03}, IdentityReply)
}

func TestOriginReplies(t *testing.T) {
	t.Parallel()
	require.Len(t, HandshakeOriginReply, 10)
	require.Len(t, SteadyOriginReply, 10)

	assert.Equal(t, []byte{
		0x00, 0x80, 128, 128, 128, 128, 0x00, 0x00, 0x00, 0x00,
	}, HandshakeOriginReply)
	assert.Equal(t, []byte{
		0x00, 0x01, 128, 128, 128, 128, 0x00, 0x00, 0x00, 0x00,
	}, SteadyOriginReply)

	// The two variants differ only in buttons2; keep it that way.
	assert.Equal(t, HandshakeOriginReply[:1], SteadyOriginReply[:1])
	assert.Equal(t, HandshakeOriginReply[2:], SteadyOriginReply[2:])
	assert.NotEqual(t, HandshakeOriginReply[1], SteadyOriginReply[1])
}

func TestNeutralReport(t *testing.T) {
	t.Parallel()
	in := Neutral()
	report := in.Report()
	assert.Equal(t, [8]byte{0x00, 0x80, 128, 128, 128, 128, 0x00, 0x00}, report)
}

func TestReportButtonBits(t *testing.T) {
	t.Parallel()
	tests := []struct {
		set      func(*Input)
		name     string
		byteIdx  int
		expected byte
	}{
		{func(in *Input) { in.A = true }, "A", 0, 0b0000_0001},
		{func(in *Input) { in.B = true }, "B", 0, 0b0000_0010},
		{func(in *Input) { in.X = true }, "X", 0, 0b0000_0100},
		{func(in *Input) { in.Y = true }, "Y", 0, 0b0000_1000},
		{func(in *Input) { in.Start = true }, "Start", 0, 0b0001_0000},
		{func(in *Input) { in.DpadLeft = true }, "DpadLeft", 1, 0b1000_0001},
		{func(in *Input) { in.DpadRight = true }, "DpadRight", 1, 0b1000_0010},
		{func(in *Input) { in.DpadDown = true }, "DpadDown", 1, 0b1000_0100},
		{func(in *Input) { in.DpadUp = true }, "DpadUp", 1, 0b1000_1000},
		{func(in *Input) { in.Z = true }, "Z", 1, 0b1001_0000},
		{func(in *Input) { in.RDigital = true }, "RDigital", 1, 0b1010_0000},
		{func(in *Input) { in.LDigital = true }, "LDigital", 1, 0b1100_0000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := Neutral()
			tt.set(&in)
			report := in.Report()
			assert.Equal(t, tt.expected, report[tt.byteIdx],
				"byte %d for %s", tt.byteIdx, tt.name)
		})
	}
}

func TestReportFixedBitAlwaysSet(t *testing.T) {
	t.Parallel()
	var in Input
	report := in.Report()
	assert.Equal(t, byte(0x80), report[1]&0x80, "buttons2 bit 7 must always be set")
}

func TestReportAnalogPassthrough(t *testing.T) {
	t.Parallel()
	in := Input{
		StickX:  0x12,
		StickY:  0x34,
		CStickX: 0x56,
		CStickY: 0x78,
		LAnalog: 0x9A,
		RAnalog: 0xBC,
	}
	report := in.Report()
	assert.Equal(t, [8]byte{0x00, 0x80, 0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC}, report)
}

func TestReportAllPressed(t *testing.T) {
	t.Parallel()
	in := Input{
		Start: true, A: true, B: true, X: true, Y: true, Z: true,
		DpadUp: true, DpadDown: true, DpadLeft: true, DpadRight: true,
		LDigital: true, RDigital: true,
		StickX: 255, StickY: 255, CStickX: 255, CStickY: 255,
		LAnalog: 255, RAnalog: 255,
	}
	report := in.Report()
	assert.Equal(t, byte(0b0001_1111), report[0])
	assert.Equal(t, byte(0b1111_1111), report[1])
}
