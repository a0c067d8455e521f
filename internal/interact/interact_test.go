/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"math"
	"testing"

	"prairiedraw/internal/vector"
)

// fakeCanvas maps px to drawing coordinates by halving and flipping y.
type fakeCanvas struct {
	view    vector.Vec3
	redraws int
}

func (f *fakeCanvas) Pos2Dw(p vector.Vec2) vector.Vec2 { return vector.V2(p.X/2, -p.Y/2) }
func (f *fakeCanvas) IncrementView3D(dx, dy, dz float64) {
	f.view = f.view.Add(vector.V3(dx, dy, dz))
}
func (f *fakeCanvas) Redraw() { f.redraws++ }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRotator_DragIncrementsView(t *testing.T) {
	c := &fakeCanvas{}
	r := NewRotator(c)
	r.Handle(Event{Press, 0, 0})
	r.Handle(Event{Move, 10, 10})
	if c.view != (vector.Vec3{}) {
		t.Fatalf("inactive rotator moved view")
	}
	r.Activate()
	r.Handle(Event{Press, 10, 20})
	r.Handle(Event{Move, 30, 25})
	r.Handle(Event{Move, 40, 25})
	if !near(c.view.X, 0.05) || c.view.Y != 0 || !near(c.view.Z, 0.3) {
		t.Fatalf("view %v", c.view)
	}
	r.Handle(Event{Release, 40, 25})
	r.Handle(Event{Move, 100, 100})
	if !near(c.view.Z, 0.3) {
		t.Fatalf("moved after release: %v", c.view)
	}
}

func TestTracker(t *testing.T) {
	c := &fakeCanvas{}
	tr := NewTracker(c)
	tr.Handle(Event{Press, 4, 4})
	if tr.Down() {
		t.Fatalf("inactive tracker reports down")
	}
	tr.Activate()
	tr.Handle(Event{Press, 4, 4})
	tr.Handle(Event{Move, 8, 6})
	if !tr.Down() || tr.PositionDw() != vector.V2(4, -3) {
		t.Fatalf("down %v pos %v", tr.Down(), tr.PositionDw())
	}
	tr.Handle(Event{Release, 8, 6})
	tr.Handle(Event{Move, 20, 20})
	if tr.Down() || tr.PositionDw() != vector.V2(4, -3) {
		t.Fatalf("after release %v", tr.PositionDw())
	}
}

func TestLineDraw(t *testing.T) {
	c := &fakeCanvas{}
	l := NewLineDraw(c)
	calls := 0
	l.RegisterCallback(func() { calls++ })
	l.Handle(Event{Press, 0, 0})
	if l.Drawn() || calls != 0 {
		t.Fatalf("inactive line draw reacted")
	}
	l.Activate()
	l.Activate()
	if calls != 1 || c.redraws != 1 {
		t.Fatalf("activate calls %d redraws %d", calls, c.redraws)
	}
	var m Mux
	m.Add(l)
	m.Handle(Event{Press, 2, 2})
	m.Handle(Event{Move, 10, 4})
	if !l.Drawing() {
		t.Fatalf("not drawing")
	}
	m.Handle(Event{Leave, 20, 4})
	s, e := l.Line()
	if s != vector.V2(1, -1) || e != vector.V2(10, -2) || l.Drawing() || !l.Drawn() {
		t.Fatalf("line %v %v", s, e)
	}
	m.Handle(Event{Release, 0, 0})
	if calls != 4 {
		t.Fatalf("calls %d", calls)
	}
	l.Deactivate()
	if l.Drawn() || l.Active() {
		t.Fatalf("deactivate kept the line")
	}
}

func TestSampler(t *testing.T) {
	s := NewSampler(&fakeCanvas{})
	s.Handle(Event{Click, 1, 1})
	s.Activate()
	s.Handle(Event{Press, 1, 1})
	s.Handle(Event{Click, 3, 5})
	if got := s.Samples(); len(got) != 1 || got[0] != vector.V2(1.5, -2.5) {
		t.Fatalf("samples %v", got)
	}
	if FormatSample(vector.V2(1.234, -2)) != "(1.23, -2.00)" {
		t.Fatalf("format %s", FormatSample(vector.V2(1.234, -2)))
	}
}

type starter struct{ n int }

func (s *starter) Start() { s.n++ }

func TestStartOnPress(t *testing.T) {
	st := &starter{}
	p := NewStartOnPress(st)
	p.Handle(Event{Press, 0, 0})
	p.Activate()
	p.Handle(Event{Move, 0, 0})
	p.Handle(Event{Press, 0, 0})
	if st.n != 1 {
		t.Fatalf("starts %d", st.n)
	}
}

func TestParseKindRoundTrip(t *testing.T) {
	for k := Press; k <= Click; k++ {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("wheel"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
