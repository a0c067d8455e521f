/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package history keeps time-windowed sample buffers for plotting signal
// traces. Closely spaced samples are coalesced and old ones pruned.
package history

import (
	"sort"
	"sync"

	"prairiedraw/internal/vector"
)

// Sample is one recorded value at time T (seconds). V holds one component
// for scalars and two or three for positions.
type Sample struct {
	T float64
	V []float64
}

// Config caps memory independently of the per-call age window.
type Config struct {
	// MaxPerSeries limits samples kept per name (0 means unlimited).
	MaxPerSeries int
}

// Store holds named sample buffers. It is safe for concurrent use, but the
// slices it returns are live and must not be modified.
type Store struct {
	cfg    Config
	mu     sync.Mutex
	series map[string][]Sample
}

func NewStore(cfg Config) *Store {
	return &Store{cfg: cfg, series: make(map[string][]Sample)}
}

// Record appends (t, v) to the named buffer and returns it. If the gap from
// the second-to-last sample to t is below minDt the last sample is replaced
// instead. Samples older than maxAge relative to t are dropped from the
// front, always keeping the newest one.
func (s *Store) Record(name string, minDt, maxAge, t float64, v ...float64) []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	smp := Sample{T: t, V: append([]float64(nil), v...)}
	h, ok := s.series[name]
	if !ok {
		s.series[name] = []Sample{smp}
		return s.series[name]
	}
	if n := len(h); n < 2 {
		h = append(h, smp)
	} else if t-h[n-2].T < minDt {
		// the new jump is still short: replace the last record
		h[n-1] = smp
	} else {
		h = append(h, smp)
	}
	i := 0
	for t-h[i].T > maxAge && i < len(h)-1 {
		i++
	}
	if s.cfg.MaxPerSeries > 0 && len(h)-i > s.cfg.MaxPerSeries {
		i = len(h) - s.cfg.MaxPerSeries
	}
	if i > 0 {
		h = append([]Sample{}, h[i:]...)
	}
	s.series[name] = h
	return h
}

// Get returns the named buffer, or nil.
func (s *Store) Get(name string) []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.series[name]
}

func (s *Store) Clear(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.series, name)
}

func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = make(map[string][]Sample)
}

// Names lists the recorded series in sorted order.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.series))
	for n := range s.series {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Stats returns current sizes for diagnostics.
func (s *Store) Stats() (series int, totalSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.series {
		totalSamples += len(h)
	}
	return len(s.series), totalSamples
}

// Trace drops the times and returns the recorded positions, using the
// first two components of each sample.
func Trace(h []Sample) []vector.Vec2 {
	out := make([]vector.Vec2, 0, len(h))
	for _, smp := range h {
		var p vector.Vec2
		if len(smp.V) > 0 {
			p.X = smp.V[0]
		}
		if len(smp.V) > 1 {
			p.Y = smp.V[1]
		}
		out = append(out, p)
	}
	return out
}

// Series returns (t, v) points for one scalar component, ready for plotting.
func Series(h []Sample, component int) []vector.Vec2 {
	out := make([]vector.Vec2, 0, len(h))
	for _, smp := range h {
		if component < len(smp.V) {
			out = append(out, vector.Vec2{X: smp.T, Y: smp.V[component]})
		}
	}
	return out
}
