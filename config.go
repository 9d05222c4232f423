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

// Protocol response gaps, in microseconds. These reproduce the timings the
// console expects and are not configurable.
const (
	// responseDelayMicros is the gap between receiving a command and
	// starting the canned reply.
	responseDelayMicros = 4
	// unknownIdleMicros is how long the line is left alone after an
	// unrecognized command before read framing is restarted.
	unknownIdleMicros = 130
	// pollPreDelayMicros is the gap between the poll command byte and
	// consuming the rest of the poll frame.
	pollPreDelayMicros = 40
	// pollSettleMicros is the gap between the consumed poll frame and the
	// report transmission.
	pollSettleMicros = 4
)

// Config holds the tunable parts of a controller session.
type Config struct {
	// ReceiveTimeoutTicks bounds how long a receive busy-polls before
	// reporting no data, in clock ticks. Consoles poll at millisecond
	// cadence; the default is far above any protocol gap so that idle
	// detection never fires spuriously during development.
	ReceiveTimeoutTicks uint64
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() *Config {
	return &Config{
		ReceiveTimeoutTicks: 2_000_000,
	}
}
