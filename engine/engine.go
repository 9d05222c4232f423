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

// Package engine describes the Joybus signal engine: the autonomous state
// machine that turns a single half-duplex wire into a self-clocked byte
// stream in both directions.
//
// On real hardware the engine is a fixed, precisely-timed instruction
// program running independently of the host CPU, exchanging bytes with it
// only through two short FIFOs. Here the program is modeled as an explicit
// finite-state machine (read, write-bit, write-stop) so it can be driven by
// a simulated bit clock and unit-tested without timing hardware. The timing
// constants below reproduce the original program's cycle counts; their
// ratios, not their absolute magnitudes, are the contract when retargeting
// to a different clock granularity.
package engine

// Timing slices of the bit cell, in engine clock cycles. One protocol time
// slice is 1 µs; a data bit is signaled as T1 cycles low followed by T2
// cycles at the bit value, inside a CyclesPerBit budget.
const (
	T1 = 10
	T2 = 20
	T3 = 10

	// CyclesPerBit is the engine-cycle budget for one wire bit.
	CyclesPerBit = T1 + T2 + T3

	// BitRate is the wire bit rate in bits per second.
	BitRate = 250_000

	// ReadSampleOffset is the delay, in engine cycles, between a falling
	// edge and the single sample taken of the bit value. It lands halfway
	// through the T2 value window.
	ReadSampleOffset = T1 + T2/2 - 1

	// Pre-bit padding on the two write paths. The stop-bit check burns more
	// cycles than the plain path, so the fast path pads less to keep the
	// bit cell width constant.
	writeBitDelay  = T3 - 9
	writeStopDelay = T3 - 6
)

// ClockDivisor returns the divisor that scales a system clock of sysHz down
// to the engine's CyclesPerBit * BitRate cycle rate.
func ClockDivisor(sysHz uint32) float64 {
	return float64(sysHz) / float64(CyclesPerBit*BitRate)
}

// Level is a logical level on the wire.
type Level uint8

// Wire levels. The line idles high; a transfer begins with a falling edge.
const (
	Low  Level = 0
	High Level = 1
)

// Entry is a program entry point the engine can be forcibly resumed at.
// Callers must always restart the engine at one of these after a FIFO flush;
// free-running fall-through between the two loops is never relied upon,
// because stale partial-shift state would desynchronize sampling.
type Entry int

const (
	// EntryRead resumes the engine at the read loop: pin as input, sample
	// on falling edges, autopush completed bytes to the receive FIFO.
	EntryRead Entry = iota
	// EntryWrite resumes the engine at the write loop: pin as output,
	// drive bits pulled from the transmit FIFO until a stop marker.
	EntryWrite
)

// Transmit word encoding: each 32-bit engine input word packs one payload
// byte in its high 8 bits and a stop flag immediately below it. The engine
// asserts the wire stop marker after a byte whose flag is set.
const (
	wordDataShift = 24
	wordStopFlag  = 1 << 23
)

// Word encodes one payload byte as an engine input word. Set last on the
// final byte of a frame to have the engine emit the stop marker and return
// to the read loop.
func Word(b byte, last bool) uint32 {
	w := uint32(b) << wordDataShift
	if last {
		w |= wordStopFlag
	}
	return w
}

// WordByte extracts the payload byte from an engine input word.
func WordByte(w uint32) byte {
	return byte(w >> wordDataShift)
}

// WordLast reports whether the word's stop flag is set.
func WordLast(w uint32) bool {
	return w&wordStopFlag != 0
}
