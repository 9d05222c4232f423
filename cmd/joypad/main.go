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

// Command joypad runs a controller session: it answers a console's
// handshake and then serves poll requests with a synthetic input snapshot
// that taps the A button once a second.
//
// The wire can be a GPIO line (-pin), a serial bridge to engine hardware
// (-port), or, with no flags, a fully simulated console for a quick
// smoke run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	joybus "github.com/joybus-project/go-joybus"
	"github.com/joybus-project/go-joybus/engine"
	joytest "github.com/joybus-project/go-joybus/internal/testing"
	"github.com/joybus-project/go-joybus/transport/bridge"
	"github.com/joybus-project/go-joybus/transport/gpio"
)

var (
	flagPin   string
	flagPort  string
	flagDebug bool
)

func init() {
	flag.StringVar(&flagPin, "pin", "", "GPIO pin name to bit-bang (e.g. GPIO28)")
	flag.StringVar(&flagPort, "port", "", "Serial port of an engine bridge (e.g. /dev/ttyACM0)")
	flag.BoolVar(&flagDebug, "debug", false, "Enable debug output")
}

func main() {
	flag.Parse()
	if flagDebug {
		joybus.SetDebugEnabled(true)
	}

	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "joypad: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagPin == "" && flagPort == "" {
		return runSimulated()
	}

	dev, err := openDevice()
	if err != nil {
		return err
	}
	clk := joybus.NewSystemClock()
	return serve(ctx, joybus.NewTransport(dev, clk), clk)
}

func openDevice() (joybus.Device, error) {
	if flagPin != "" {
		return gpio.New(flagPin, joybus.NewSystemClock())
	}
	return bridge.New(flagPort)
}

// serve answers handshakes and polls until the context is cancelled. A
// failed handshake just means the console is not talking yet, so it
// retries on the same transport.
func serve(ctx context.Context, t *joybus.Transport, clk joybus.Clock) error {
	input := joybus.Neutral()

	c, err := joybus.TryNewWithRetry(ctx, nil, t, clk, nil, input)
	if err != nil {
		return err
	}
	fmt.Println("console connected")

	start := time.Now()
	polls := 0
	for {
		if err := c.WaitForPoll(ctx); err != nil {
			return err
		}
		// Tap A during the first half of every second.
		input.A = time.Since(start).Milliseconds()%1000 < 500
		c.RespondToPoll(input)
		polls++
		if polls%600 == 0 {
			fmt.Printf("served %d polls\n", polls)
		}
	}
}

// runSimulated plays one scripted session against the simulated engine and
// prints every response frame.
func runSimulated() error {
	machine := engine.NewMachine()
	clk := joytest.NewVirtualClock()
	console := joytest.NewVirtualConsole(machine, clk)
	t := joybus.NewTransport(machine, clk)

	input := joybus.Neutral()
	input.A = true

	console.SendCommand(joybus.CmdProbe)
	c, err := joybus.TryNew(t, clk, nil, input)
	if err != nil {
		return err
	}
	clk.Advance(100)

	for range 3 {
		console.SendCommand(joybus.CmdPoll)
		console.SendCommand(0x03) // poll mode
		console.SendCommand(0x00) // rumble off
		if err := c.WaitForPoll(context.Background()); err != nil {
			return err
		}
		c.RespondToPoll(input)
		clk.Advance(200)
	}

	for i, f := range console.Frames() {
		fmt.Printf("frame %d: % X\n", i, f)
	}
	return nil
}
