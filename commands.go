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

import "fmt"

// Console command bytes as they appear on the wire. These values are fixed
// by the console side of the protocol and must match exactly.
const (
	// CmdProbe asks the device to identify itself.
	CmdProbe byte = 0x00
	// CmdPoll requests a controller state report.
	CmdPoll byte = 0x40
	// CmdOrigin requests the analog origin/calibration values.
	CmdOrigin byte = 0x41
	// CmdRecalibrate asks the device to recalibrate and report origins.
	CmdRecalibrate byte = 0x42
	// CmdReset resets the device and requests its identity.
	CmdReset byte = 0xFF
)

// CommandKind classifies a received command byte into one of the handler
// paths. Consoles routinely probe devices with bytes outside the documented
// set, so KindUnknown is an ordinary steady-state value, not a fault.
type CommandKind int

const (
	// KindUnknown is the catch-all for any unrecognized command byte.
	KindUnknown CommandKind = iota
	// KindProbe covers CmdProbe.
	KindProbe
	// KindPoll covers CmdPoll.
	KindPoll
	// KindOrigin covers CmdOrigin.
	KindOrigin
	// KindRecalibrate covers CmdRecalibrate.
	KindRecalibrate
	// KindReset covers CmdReset.
	KindReset
)

// Command is a single command byte received from the console. It exists only
// for the duration of one dispatch decision.
type Command byte

// Kind classifies the command byte by exact value match.
func (c Command) Kind() CommandKind {
	switch byte(c) {
	case CmdProbe:
		return KindProbe
	case CmdPoll:
		return KindPoll
	case CmdOrigin:
		return KindOrigin
	case CmdRecalibrate:
		return KindRecalibrate
	case CmdReset:
		return KindReset
	default:
		return KindUnknown
	}
}

// String returns a human-readable name for the command.
func (c Command) String() string {
	switch c.Kind() {
	case KindProbe:
		return "Probe"
	case KindPoll:
		return "Poll"
	case KindOrigin:
		return "Origin"
	case KindRecalibrate:
		return "Recalibrate"
	case KindReset:
		return "Reset"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", byte(c))
	}
}
