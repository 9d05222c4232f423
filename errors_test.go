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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceErrorFormatting(t *testing.T) {
	t.Parallel()

	err := NewDeviceError("open", "/dev/ttyACM0", ErrTransportClosed)
	assert.Equal(t, "open /dev/ttyACM0: transport is closed", err.Error())

	bare := NewDeviceError("read", "", ErrBridgeResponse)
	assert.Equal(t, "read: invalid bridge response", bare.Error())
}

func TestDeviceErrorUnwrap(t *testing.T) {
	t.Parallel()

	err := NewDeviceError("open", "GPIO28", ErrPinNotFound)
	assert.ErrorIs(t, err, ErrPinNotFound)

	var devErr *DeviceError
	require.ErrorAs(t, error(err), &devErr)
	assert.Equal(t, "open", devErr.Op)
	assert.Equal(t, "GPIO28", devErr.Name)

	wrapped := NewDeviceError("write", "fake", errors.New("boom"))
	assert.NotErrorIs(t, wrapped, ErrPinNotFound)
}
