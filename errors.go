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
	"errors"
	"fmt"
)

// Nothing in this package treats wire traffic as fatal: an unrecognized
// command resynchronizes framing and a receive timeout is reported as plain
// absence of data. Errors are reserved for the handshake outcome and for
// faults in a backing device (a closed bridge port, a missing GPIO pin).
var (
	// ErrHandshakeTimeout means no command byte arrived within the receive
	// bound during the initial handshake. The transport is untouched and
	// may be reused for a retry.
	ErrHandshakeTimeout = errors.New("handshake timed out waiting for command")

	// ErrTransportClosed means the backing device has been closed.
	ErrTransportClosed = errors.New("transport is closed")

	// ErrBridgeResponse means a serial bridge replied with a malformed or
	// unexpected frame.
	ErrBridgeResponse = errors.New("invalid bridge response")

	// ErrPinNotFound means the named GPIO line does not exist on this host.
	ErrPinNotFound = errors.New("gpio pin not found")
)

// DeviceError wraps a fault in a backing signal-engine device with the
// operation and device identifier for context.
type DeviceError struct {
	Err  error  // underlying error
	Op   string // operation that failed
	Name string // port or pin identifier
}

func (e *DeviceError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// NewDeviceError creates a device error with consistent formatting.
func NewDeviceError(op, name string, err error) *DeviceError {
	return &DeviceError{Op: op, Name: name, Err: err}
}
