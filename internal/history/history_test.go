/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package history

import (
	"math"
	"testing"
)

func TestCoalesceAtMinDt(t *testing.T) {
	s := NewStore(Config{})
	var h []Sample
	for i := 0; i <= 100; i++ {
		tt := float64(i) * 0.01
		h = s.Record("x", 0.1, 100, tt, tt*2)
	}
	// one second of 10 ms samples with a 0.1 s floor keeps about 10 gaps
	if len(h) < 9 || len(h) > 15 {
		t.Fatalf("expected roughly one sample per 0.1 s, got %d", len(h))
	}
	last := h[len(h)-1]
	if math.Abs(last.T-1) > 1e-9 || math.Abs(last.V[0]-2) > 1e-9 {
		t.Fatalf("latest sample must survive: %+v", last)
	}
	for i := 1; i < len(h); i++ {
		if h[i].T < h[i-1].T {
			t.Fatalf("samples out of order at %d", i)
		}
	}
}

func TestPruneByAge(t *testing.T) {
	s := NewStore(Config{})
	var h []Sample
	for i := 0; i < 50; i++ {
		h = s.Record("y", 0, 1, float64(i)*0.1, float64(i))
	}
	now := 4.9
	for _, smp := range h {
		if now-smp.T > 1+1e-9 {
			t.Fatalf("sample at %v older than max age", smp.T)
		}
	}
	if len(h) < 10 {
		t.Fatalf("window should hold about 11 samples, got %d", len(h))
	}
}

func TestKeepsNewestWhenEverythingIsOld(t *testing.T) {
	s := NewStore(Config{})
	s.Record("z", 0, 0.5, 0, 1)
	h := s.Record("z", 0, 0.5, 10, 2)
	if len(h) != 1 || h[0].T != 10 {
		t.Fatalf("expected only the newest sample, got %+v", h)
	}
}

func TestMaxPerSeriesAndClear(t *testing.T) {
	s := NewStore(Config{MaxPerSeries: 3})
	for i := 0; i < 10; i++ {
		s.Record("a", 0, 1e9, float64(i), 0)
	}
	s.Record("b", 0, 1, 0, 0)
	if series, total := s.Stats(); series != 2 || total != 4 {
		t.Fatalf("stats = %d %d", series, total)
	}
	s.Clear("a")
	if s.Get("a") != nil {
		t.Fatalf("Clear left data")
	}
	s.ClearAll()
	if len(s.Names()) != 0 {
		t.Fatalf("ClearAll left data")
	}
}

func TestTraceAndSeries(t *testing.T) {
	h := []Sample{{T: 0, V: []float64{1, 2}}, {T: 1, V: []float64{3, 4}}}
	tr := Trace(h)
	if len(tr) != 2 || tr[1].X != 3 || tr[1].Y != 4 {
		t.Fatalf("Trace = %+v", tr)
	}
	se := Series(h, 1)
	if se[0].X != 0 || se[0].Y != 2 || se[1].X != 1 {
		t.Fatalf("Series = %+v", se)
	}
}
