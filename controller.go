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

// Package joybus emulates the controller side of the GameCube Joybus
// protocol: a single-wire, half-duplex serial bus the console polls for
// controller state. The package recognizes console command bytes, answers
// them with the byte sequences and microsecond gaps the console expects,
// and sustains the poll/response cycle indefinitely.
//
// The layering follows the wire: an autonomous signal engine (package
// engine) turns the line into a byte stream, a Transport moves bytes and
// controls the transfer direction, and a Controller implements the command
// semantics on top. Timing flows through the Clock capability so every
// layer can be driven deterministically in tests.
package joybus

import "context"

// Controller is a live controller session on one Transport. Create it with
// TryNew after the console opens the conversation; it stays valid for the
// lifetime of the connection.
type Controller struct {
	t   *Transport
	clk Clock
	cfg *Config
}

// TryNew performs the compatibility handshake: it waits for the console's
// first command and answers it. On success the returned Controller owns the
// transport. If nothing arrives within the receive bound the console is not
// speaking the protocol (yet); TryNew returns ErrHandshakeTimeout and
// leaves the transport reading with its FIFOs intact so the caller can
// retry with it or use it elsewhere.
//
// input supplies the report content in case the console skips straight to
// polling, which official adapters do.
func TryNew(t *Transport, clk Clock, cfg *Config, input Input) (*Controller, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := &Controller{t: t, clk: clk, cfg: cfg}

	// The engine's loop state is unknown at session start; force it to the
	// read entry (keeping any bytes it already received) or the console's
	// first command would never be sampled.
	t.ResumeRead()

	cmd, ok := t.ReceiveByte(cfg.ReceiveTimeoutTicks)
	if !ok {
		return nil, ErrHandshakeTimeout
	}

	Debugf("handshake command: %v", Command(cmd))
	switch Command(cmd).Kind() {
	case KindReset, KindProbe:
		clk.DelayMicros(responseDelayMicros)
		t.SendBytes(IdentityReply)
	case KindRecalibrate, KindOrigin:
		clk.DelayMicros(responseDelayMicros)
		t.SendBytes(HandshakeOriginReply)
	case KindPoll:
		report := input.Report()
		c.RespondToPollRaw(report[:])
	case KindUnknown:
		// Undocumented probe byte. Resynchronize framing; the session is
		// still usable.
		c.recoverFraming()
	}

	return c, nil
}

// Transport returns the transport this session runs on.
func (c *Controller) Transport() *Transport {
	return c.t
}

// WaitForPoll runs the steady-state command loop until the console issues a
// poll. Identity and origin requests are answered inline; unrecognized
// bytes and receive timeouts resynchronize framing and the loop continues.
// When WaitForPoll returns nil the caller must answer with RespondToPoll
// before the console's response window closes.
func (c *Controller) WaitForPoll(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		cmd, ok := c.t.ReceiveByte(c.cfg.ReceiveTimeoutTicks)
		if !ok {
			c.recoverFraming()
			continue
		}

		switch Command(cmd).Kind() {
		case KindReset, KindProbe:
			c.clk.DelayMicros(responseDelayMicros)
			c.t.SendBytes(IdentityReply)
		case KindRecalibrate, KindOrigin:
			c.clk.DelayMicros(responseDelayMicros)
			c.t.SendBytes(SteadyOriginReply)
		case KindPoll:
			return nil
		case KindUnknown:
			Debugf("unknown command 0x%02X, restarting read framing", cmd)
			c.recoverFraming()
		}
	}
}

// RespondToPoll answers a poll command with a report built from the given
// snapshot.
func (c *Controller) RespondToPoll(input Input) {
	report := input.Report()
	c.RespondToPollRaw(report[:])
}

// RespondToPollRaw answers a poll command with a prebuilt report. The poll
// command carries two trailing bytes (mode and rumble); they are consumed
// and dropped after a fixed gap, then the report is sent once the line has
// settled.
func (c *Controller) RespondToPollRaw(report []byte) {
	c.clk.DelayMicros(pollPreDelayMicros)

	c.t.ReceiveByte(c.cfg.ReceiveTimeoutTicks)
	c.t.ReceiveByte(c.cfg.ReceiveTimeoutTicks)
	c.clk.DelayMicros(pollSettleMicros)

	c.t.SendBytes(report)
}

// recoverFraming is the error-recovery path shared by the unknown-command
// and receive-timeout cases: leave the line alone long enough for any
// in-flight frame to end, then force the engine back to a clean read state.
func (c *Controller) recoverFraming() {
	c.clk.DelayMicros(unknownIdleMicros)
	c.t.RestartForRead()
}
