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
	"errors"
)

// HandshakeConfig configures repeated handshake attempts.
type HandshakeConfig struct {
	// MaxAttempts is the maximum number of attempts (0 = unlimited)
	MaxAttempts int
	// IdleMicros is the gap inserted between attempts
	IdleMicros uint32
}

// DefaultHandshakeConfig returns a default handshake retry configuration.
func DefaultHandshakeConfig() *HandshakeConfig {
	return &HandshakeConfig{
		MaxAttempts: 0,
		IdleMicros:  1000,
	}
}

// TryNewWithRetry calls TryNew until a session is established or the
// context is canceled. Only ErrHandshakeTimeout is retried; any other
// error aborts immediately. A console that is off or mid-boot simply
// never sends a command, so waiting through timeouts is the normal path
// to a session.
func TryNewWithRetry(
	ctx context.Context, hc *HandshakeConfig, t *Transport, clk Clock, cfg *Config, input Input,
) (*Controller, error) {
	if hc == nil {
		hc = DefaultHandshakeConfig()
	}
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := TryNew(t, clk, cfg, input)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrHandshakeTimeout) {
			return nil, err
		}
		if hc.MaxAttempts > 0 && attempt+1 >= hc.MaxAttempts {
			return nil, err
		}
		Debugf("Handshake attempt %d timed out, retrying", attempt+1)
		clk.DelayMicros(hc.IdleMicros)
	}
}
