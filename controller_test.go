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
	"context"
	"testing"

	"github.com/joybus-project/go-joybus/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandshakeProbe(t *testing.T) {
	t.Parallel()
	_, clk, console, tr := newTestRig()

	console.SendCommand(CmdProbe)
	c, err := TryNew(tr, clk, nil, Neutral())
	require.NoError(t, err)
	require.NotNil(t, c)
	clk.Advance(64)

	frames := console.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, IdentityReply, frames[0])

	delays := clk.Delays()
	require.NotEmpty(t, delays)
	assert.Equal(t, uint32(4), delays[0], "response must wait out the post-command gap")
}

func TestHandshakeReset(t *testing.T) {
	t.Parallel()
	_, clk, console, tr := newTestRig()

	console.SendCommand(CmdReset)
	_, err := TryNew(tr, clk, nil, Neutral())
	require.NoError(t, err)
	clk.Advance(64)

	frames := console.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, IdentityReply, frames[0])
}

func TestHandshakeOrigin(t *testing.T) {
	t.Parallel()
	for _, cmd := range []byte{CmdOrigin, CmdRecalibrate} {
		t.Run(Command(cmd).String(), func(t *testing.T) {
			t.Parallel()
			_, clk, console, tr := newTestRig()

			console.SendCommand(cmd)
			_, err := TryNew(tr, clk, nil, Neutral())
			require.NoError(t, err)
			clk.Advance(128)

			frames := console.Frames()
			require.Len(t, frames, 1)
			assert.Equal(t, HandshakeOriginReply, frames[0])
		})
	}
}

func TestHandshakePollAnswersWithReport(t *testing.T) {
	t.Parallel()
	_, clk, console, tr := newTestRig()

	console.SendCommand(CmdPoll)
	console.SendCommand(0x03) // mode
	console.SendCommand(0x00) // rumble

	input := Neutral()
	input.A = true
	_, err := TryNew(tr, clk, nil, input)
	require.NoError(t, err)
	clk.Advance(128)

	frames := console.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{0x01, 0x80, 128, 128, 128, 128, 0x00, 0x00}, frames[0])

	delays := clk.Delays()
	require.GreaterOrEqual(t, len(delays), 2)
	assert.Equal(t, uint32(40), delays[0], "poll response waits for the trailing bytes")
	assert.Equal(t, uint32(4), delays[1], "line must settle before the report")
}

// An undocumented command byte gets no response at all. The session stays
// usable: after an idle window and a framing restart, polls are served
// normally.
func TestHandshakeUnknownCommand(t *testing.T) {
	t.Parallel()
	m, clk, console, tr := newTestRig()

	console.SendCommand(0x77)
	c, err := TryNew(tr, clk, nil, Neutral())
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Empty(t, console.Frames(), "unknown commands must not be answered")
	assert.Contains(t, clk.Delays(), uint32(130), "recovery must hold off for the idle window")
	assert.Equal(t, engine.EntryRead, m.Mode())
	assert.Equal(t, 0, m.RxLen(), "framing restart must flush stale bytes")

	// The next poll cycle works as if nothing happened.
	base := clk.Now()
	console.ScheduleCommand(base+200, CmdPoll)
	console.ScheduleCommand(base+200, 0x03)
	console.ScheduleCommand(base+200, 0x00)

	require.NoError(t, c.WaitForPoll(context.Background()))
	c.RespondToPoll(Neutral())
	clk.Advance(128)

	frames := console.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{0x00, 0x80, 128, 128, 128, 128, 0x00, 0x00}, frames[0])
}

// A session must still form when the engine was left in the write loop,
// which is the realistic starting state for a bridge MCU whose engine the
// host has never seen. The handshake realigns it to the read entry before
// listening.
func TestHandshakeRealignsEngineLeftWriting(t *testing.T) {
	t.Parallel()
	m, clk, console, tr := newTestRig()

	m.Restart(engine.EntryWrite)
	console.ScheduleCommand(clk.Now()+10, CmdProbe)

	c, err := TryNew(tr, clk, nil, Neutral())
	require.NoError(t, err)
	require.NotNil(t, c)
	clk.Advance(64)

	frames := console.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, IdentityReply, frames[0])
}

func TestHandshakeTimeout(t *testing.T) {
	t.Parallel()
	_, clk, console, tr := newTestRig()

	cfg := &Config{ReceiveTimeoutTicks: 500}
	c, err := TryNew(tr, clk, cfg, Neutral())
	require.ErrorIs(t, err, ErrHandshakeTimeout)
	assert.Nil(t, c)

	// The transport survives the timeout; a later attempt succeeds.
	console.SendCommand(CmdProbe)
	c, err = TryNew(tr, clk, cfg, Neutral())
	require.NoError(t, err)
	require.NotNil(t, c)
	clk.Advance(64)

	frames := console.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, IdentityReply, frames[0])
}

// Origin requests answered mid-session use the steady-state reply variant,
// not the handshake one.
func TestSteadyStateOriginVariant(t *testing.T) {
	t.Parallel()
	_, clk, console, tr := newTestRig()

	console.SendCommand(CmdProbe)
	c, err := TryNew(tr, clk, nil, Neutral())
	require.NoError(t, err)
	clk.Advance(64)

	console.SendCommand(CmdOrigin)
	base := clk.Now()
	console.ScheduleCommand(base+400, CmdPoll)
	console.ScheduleCommand(base+400, 0x03)
	console.ScheduleCommand(base+400, 0x00)

	require.NoError(t, c.WaitForPoll(context.Background()))
	c.RespondToPoll(Neutral())
	clk.Advance(128)

	frames := console.Frames()
	require.Len(t, frames, 3)
	assert.Equal(t, IdentityReply, frames[0])
	assert.Equal(t, SteadyOriginReply, frames[1])
	assert.Equal(t, []byte{0x00, 0x80, 128, 128, 128, 128, 0x00, 0x00}, frames[2])
}

// Identity requests repeated mid-session are answered inline without
// leaving the poll loop.
func TestSteadyStateProbeThenPoll(t *testing.T) {
	t.Parallel()
	_, clk, console, tr := newTestRig()

	console.SendCommand(CmdProbe)
	c, err := TryNew(tr, clk, nil, Neutral())
	require.NoError(t, err)
	clk.Advance(64)

	console.SendCommand(CmdReset)
	base := clk.Now()
	console.ScheduleCommand(base+300, CmdPoll)
	console.ScheduleCommand(base+300, 0x03)
	console.ScheduleCommand(base+300, 0x00)

	require.NoError(t, c.WaitForPoll(context.Background()))
	c.RespondToPoll(Neutral())
	clk.Advance(128)

	frames := console.Frames()
	require.Len(t, frames, 3)
	assert.Equal(t, IdentityReply, frames[1])
}

// A receive timeout in the poll loop recovers framing and keeps waiting
// rather than failing the session.
func TestWaitForPollRecoversFromSilence(t *testing.T) {
	t.Parallel()
	_, clk, console, tr := newTestRig()

	console.SendCommand(CmdProbe)
	c, err := TryNew(tr, clk, &Config{ReceiveTimeoutTicks: 100}, Neutral())
	require.NoError(t, err)
	clk.Advance(64)

	// Silence for one full receive bound plus the recovery window, then a
	// poll arrives during the second receive attempt.
	base := clk.Now()
	console.ScheduleCommand(base+300, CmdPoll)
	console.ScheduleCommand(base+300, 0x03)
	console.ScheduleCommand(base+300, 0x00)

	require.NoError(t, c.WaitForPoll(context.Background()))
	assert.Contains(t, clk.Delays(), uint32(130), "silence must trigger framing recovery")
}

func TestWaitForPollHonorsContext(t *testing.T) {
	t.Parallel()
	_, clk, console, tr := newTestRig()

	console.SendCommand(CmdProbe)
	c, err := TryNew(tr, clk, nil, Neutral())
	require.NoError(t, err)
	clk.Advance(64)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.WaitForPoll(ctx), context.Canceled)
}

func TestTryNewWithRetrySucceedsAfterTimeouts(t *testing.T) {
	t.Parallel()
	_, clk, console, tr := newTestRig()

	cfg := &Config{ReceiveTimeoutTicks: 100}
	hc := &HandshakeConfig{MaxAttempts: 0, IdleMicros: 10}
	console.ScheduleCommand(clk.Now()+250, CmdProbe)

	c, err := TryNewWithRetry(context.Background(), hc, tr, clk, cfg, Neutral())
	require.NoError(t, err)
	require.NotNil(t, c)
	clk.Advance(64)

	frames := console.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, IdentityReply, frames[0])
}

func TestTryNewWithRetryGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()
	_, clk, _, tr := newTestRig()

	cfg := &Config{ReceiveTimeoutTicks: 50}
	hc := &HandshakeConfig{MaxAttempts: 3, IdleMicros: 10}

	_, err := TryNewWithRetry(context.Background(), hc, tr, clk, cfg, Neutral())
	assert.ErrorIs(t, err, ErrHandshakeTimeout)
}

func TestTryNewWithRetryHonorsContext(t *testing.T) {
	t.Parallel()
	_, clk, _, tr := newTestRig()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := TryNewWithRetry(ctx, nil, tr, clk, nil, Neutral())
	assert.ErrorIs(t, err, context.Canceled)
}
