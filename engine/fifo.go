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

package engine

// FIFODepth is the capacity of each engine FIFO, matching the hardware the
// original program ran on.
const FIFODepth = 4

// FIFO is a fixed-capacity queue of engine words shared between the engine
// and the host. Producer and consumer run at uncoordinated rates, so empty
// and full are ordinary conditions the caller polls on, never errors.
type FIFO struct {
	buf  [FIFODepth]uint32
	head int
	n    int
}

// TryPush appends a word. It reports false, without modifying the queue,
// when the FIFO is full.
func (f *FIFO) TryPush(w uint32) bool {
	if f.n == FIFODepth {
		return false
	}
	f.buf[(f.head+f.n)%FIFODepth] = w
	f.n++
	return true
}

// TryPop removes and returns the oldest word. It reports false when the
// FIFO is empty.
func (f *FIFO) TryPop() (uint32, bool) {
	if f.n == 0 {
		return 0, false
	}
	w := f.buf[f.head]
	f.head = (f.head + 1) % FIFODepth
	f.n--
	return w, true
}

// Len returns the number of queued words.
func (f *FIFO) Len() int {
	return f.n
}

// Full reports whether a push would fail.
func (f *FIFO) Full() bool {
	return f.n == FIFODepth
}

// Empty reports whether a pop would fail.
func (f *FIFO) Empty() bool {
	return f.n == 0
}

// Clear discards all queued words.
func (f *FIFO) Clear() {
	f.head = 0
	f.n = 0
}
