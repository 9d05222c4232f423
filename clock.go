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

import "time"

// Clock is the timing capability the protocol layers consume: a monotonic
// tick counter for bounding busy-waits and a blocking microsecond delay for
// the protocol's fixed response gaps. Abstracting it keeps the spin-wait
// timing deterministic under simulation; one tick is one microsecond.
type Clock interface {
	// Ticks returns the current monotonic tick count.
	Ticks() uint64

	// DelayMicros blocks for at least n microseconds.
	DelayMicros(n uint32)
}

// SystemClock implements Clock on the host's monotonic clock. The protocol
// gaps are a handful of microseconds, so DelayMicros spins rather than
// sleeping; scheduler wakeup latency would dwarf the delay itself.
type SystemClock struct {
	epoch time.Time
}

// NewSystemClock returns a Clock whose tick count starts near zero.
func NewSystemClock() *SystemClock {
	return &SystemClock{epoch: time.Now()}
}

// Ticks returns microseconds elapsed since the clock was created.
func (c *SystemClock) Ticks() uint64 {
	return uint64(time.Since(c.epoch).Microseconds())
}

// DelayMicros busy-waits for at least n microseconds.
func (*SystemClock) DelayMicros(n uint32) {
	deadline := time.Now().Add(time.Duration(n) * time.Microsecond)
	for time.Now().Before(deadline) {
	}
}
