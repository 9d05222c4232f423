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

package gpio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	joybus "github.com/joybus-project/go-joybus"
	"github.com/joybus-project/go-joybus/engine"
)

func newFakeDevice(level gpio.Level, edges int) (*Device, *gpiotest.Pin) {
	pin := &gpiotest.Pin{
		N:         "TEST0",
		EdgesChan: make(chan gpio.Level, 16),
		L:         level,
	}
	for range edges {
		pin.EdgesChan <- level
	}
	d := &Device{
		pin:  pin,
		clk:  joybus.NewSystemClock(),
		name: pin.N,
		mode: engine.EntryRead,
	}
	return d, pin
}

func TestPopRxFramesByteFromEdges(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		level gpio.Level
		want  byte
	}{
		{"all high", gpio.High, 0xFF},
		{"all low", gpio.Low, 0x00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, _ := newFakeDevice(tt.level, 8)
			b, ok := d.PopRx()
			require.True(t, ok)
			assert.Equal(t, tt.want, b)
		})
	}
}

func TestPopRxQuietLine(t *testing.T) {
	t.Parallel()
	d, _ := newFakeDevice(gpio.High, 0)
	_, ok := d.PopRx()
	assert.False(t, ok, "a quiet line is no data, not a fault")
}

func TestPushTxDrivesFrameOnStopWord(t *testing.T) {
	t.Parallel()
	d, _ := newFakeDevice(gpio.High, 0)
	d.Restart(engine.EntryWrite)

	assert.True(t, d.PushTx(engine.Word(0xA5, false)))
	assert.NotEmpty(t, d.tx, "frame must stage until the stop-flagged word")

	assert.True(t, d.PushTx(engine.Word(0x03, true)))
	assert.Empty(t, d.tx, "stop-flagged word must flush the frame")
	assert.Equal(t, engine.EntryRead, d.mode, "the wire must return to reading")
	assert.True(t, d.LineIdle())
}

func TestClearFIFOsDropsStagedState(t *testing.T) {
	t.Parallel()
	d, _ := newFakeDevice(gpio.High, 8)

	_, ok := d.PopRx()
	require.True(t, ok)
	d.Restart(engine.EntryWrite)
	d.PushTx(engine.Word(0x11, false))

	d.ClearFIFOs()
	assert.Empty(t, d.rx)
	assert.Empty(t, d.tx)
}

func TestCloseStopsIO(t *testing.T) {
	t.Parallel()
	d, _ := newFakeDevice(gpio.High, 8)

	require.NoError(t, d.Close())
	require.NoError(t, d.Close(), "Close must be idempotent")

	_, ok := d.PopRx()
	assert.False(t, ok)
	assert.False(t, d.LineIdle())
}
