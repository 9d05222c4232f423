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

// Package testing provides the simulated console test rig: a deterministic
// clock and a wire-level console that drives the simulated signal engine,
// so full handshake and poll sessions run without hardware or wall-clock
// time.
package testing

import (
	"github.com/joybus-project/go-joybus/internal/syncutil"
)

// VirtualClock implements the joybus Clock capability deterministically.
// Every Ticks observation advances time by one tick (the polling
// granularity of a busy-wait) and DelayMicros advances it by the requested
// amount, so spin loops always make progress and timeout bounds are exact.
//
// An advance hook stands in for the independently running hardware: it is
// invoked once per elapsed tick, which is where the VirtualConsole clocks
// the simulated engine.
type VirtualClock struct {
	mu        syncutil.Mutex
	onAdvance func(tick uint64)
	delays    []uint32
	ticks     uint64
}

// NewVirtualClock returns a clock starting at tick zero.
func NewVirtualClock() *VirtualClock {
	return &VirtualClock{}
}

// SetOnAdvance installs the per-tick hook. The hook must not call back
// into the clock.
func (c *VirtualClock) SetOnAdvance(f func(tick uint64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAdvance = f
}

// Ticks advances time by one tick and returns the new count.
func (c *VirtualClock) Ticks() uint64 {
	c.advance(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// DelayMicros advances time by n ticks (one tick per microsecond) and
// records the delay for test assertions.
func (c *VirtualClock) DelayMicros(n uint32) {
	c.mu.Lock()
	c.delays = append(c.delays, n)
	c.mu.Unlock()
	c.advance(uint64(n))
}

// Advance moves time forward n ticks without a host observation, letting
// the simulated hardware run on its own.
func (c *VirtualClock) Advance(n uint64) {
	c.advance(n)
}

// Now returns the current tick count without advancing time.
func (c *VirtualClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// Delays returns every DelayMicros request in order.
func (c *VirtualClock) Delays() []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]uint32, len(c.delays))
	copy(out, c.delays)
	return out
}

// advance steps time one tick at a time, firing the hook outside the lock
// so it may drive the engine freely.
func (c *VirtualClock) advance(n uint64) {
	for range n {
		c.mu.Lock()
		c.ticks++
		tick := c.ticks
		hook := c.onAdvance
		c.mu.Unlock()
		if hook != nil {
			hook(tick)
		}
	}
}
