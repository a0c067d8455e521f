/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package anim

import (
	"context"
	"sync"
	"time"
)

// FrameProvider runs a callback before the next repaint, passing the host
// clock in milliseconds. Each request fires at most once.
type FrameProvider interface {
	RequestFrame(fn func(ms float64))
}

// ManualFrames queues requests until Advance is called. Useful in tests and
// for offline rendering at a fixed frame rate.
type ManualFrames struct {
	pending []func(float64)
}

func (m *ManualFrames) RequestFrame(fn func(ms float64)) { m.pending = append(m.pending, fn) }

// Pending reports how many callbacks wait for the next Advance.
func (m *ManualFrames) Pending() int { return len(m.pending) }

// Advance fires the queued callbacks with clock ms. Requests made while
// firing wait for the following Advance.
func (m *ManualFrames) Advance(ms float64) {
	q := m.pending
	m.pending = nil
	for _, fn := range q {
		fn(ms)
	}
}

// TickerFrames serves frame requests from a time.Ticker. Callbacks run on
// the goroutine that calls Run, so a drawer driven by it stays single
// threaded.
type TickerFrames struct {
	interval time.Duration

	mu      sync.Mutex
	pending []func(float64)
	start   time.Time
}

// NewTickerFrames ticks fps times per second; fps <= 0 means 60.
func NewTickerFrames(fps int) *TickerFrames {
	if fps <= 0 {
		fps = 60
	}
	return &TickerFrames{interval: time.Second / time.Duration(fps), start: time.Now()}
}

func (f *TickerFrames) RequestFrame(fn func(ms float64)) {
	f.mu.Lock()
	f.pending = append(f.pending, fn)
	f.mu.Unlock()
}

// Run delivers frames until ctx is done.
func (f *TickerFrames) Run(ctx context.Context) error {
	tk := time.NewTicker(f.interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-tk.C:
			f.mu.Lock()
			q := f.pending
			f.pending = nil
			f.mu.Unlock()
			ms := float64(now.Sub(f.start)) / float64(time.Millisecond)
			for _, fn := range q {
				fn(ms)
			}
		}
	}
}
