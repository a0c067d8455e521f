/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package anim

import (
	"errors"
	"strings"
	"testing"

	"prairiedraw/internal/draw"
)

func twoState(hold float64) Seq {
	return Seq{
		States:     []StateDef{{"x": Num(0)}, {"x": Num(10)}},
		TransTimes: []float64{2, 2},
		HoldTimes:  []float64{hold, hold},
		Names:      []string{"a", "b"},
	}
}

func TestNewSequence_InitialState(t *testing.T) {
	a, _ := newAnim(nil)
	s := a.NewSequence("s", twoState(-1), 0)
	if s.InTransition || !s.IndefiniteHold || s.Index != 0 || s.Name != "a" || s.Get("x") != 0 {
		t.Fatalf("initial %+v", s)
	}
	// indefinite hold: time passing changes nothing
	s = a.NewSequence("s", twoState(-1), 50)
	if s.InTransition || s.Get("x") != 0 || !near(s.T, 50) {
		t.Fatalf("held %+v", s)
	}
}

func TestNewSequence_StepInterpolates(t *testing.T) {
	a, _ := newAnim(nil)
	a.NewSequence("s", twoState(-1), 0)
	if err := a.StepSequence("s", ""); err != nil {
		t.Fatal(err)
	}
	if !a.Running() {
		t.Fatalf("step did not start the animation")
	}
	s := a.NewSequence("s", twoState(-1), 0)
	if !s.InTransition || s.Get("x") != 0 {
		t.Fatalf("start %+v", s)
	}
	s = a.NewSequence("s", twoState(-1), 1)
	if !near(s.Alpha, 0.5) || !near(s.Get("x"), 5) || !near(s.T, 1) {
		t.Fatalf("mid %+v", s)
	}
	s = a.NewSequence("s", twoState(-1), 3)
	if s.InTransition || s.Index != 1 || s.Name != "b" || !s.IndefiniteHold || s.Get("x") != 10 {
		t.Fatalf("after %+v", s)
	}
	if !near(s.T, 1) {
		t.Fatalf("hold time %v", s.T)
	}
}

func TestNewSequence_CatchesUpOverTimedHolds(t *testing.T) {
	a, _ := newAnim(nil)
	var events []string
	def := twoState(1)
	a.NewSequence("s", def, 0)
	_ = a.RegisterSeqCallback("s", func(ev Event, i int, name string) { events = append(events, string(ev)+name) })
	// hold a [0,1], a->b [1,3], hold b [3,4], b->a [4,6], hold a [6,7]
	s := a.NewSequence("s", def, 5)
	if !s.InTransition || s.Index != 1 || !near(s.Get("x"), 5) {
		t.Fatalf("at 5: %+v", s)
	}
	want := []string{"entera", "exita", "enterb", "exitb"}
	if len(events) != len(want) {
		t.Fatalf("events %v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events %v", events)
		}
	}
	s = a.NewSequence("s", def, 6.5)
	if s.InTransition || s.Index != 0 || s.Get("x") != 0 || !near(s.T, 0.5) {
		t.Fatalf("at 6.5: %+v", s)
	}
}

func TestNewSequence_FuncFieldsAndInterps(t *testing.T) {
	a, _ := newAnim(nil)
	def := Seq{
		States: []StateDef{
			{"x": Func(func(last *State, el float64) float64 { return 2 * el })},
			{"x": Num(100)},
		},
		TransTimes: []float64{1, 1},
		HoldTimes:  []float64{3, -1},
		Interps: map[string]Interp{
			"x": func(last, next *State, el float64) float64 { return last.Get("x") + el },
		},
	}
	s := a.NewSequence("f", def, 0)
	if s.Get("x") != 0 {
		t.Fatalf("init %v", s.Get("x"))
	}
	s = a.NewSequence("f", def, 2)
	if !near(s.Get("x"), 4) {
		t.Fatalf("hold %v", s.Get("x"))
	}
	// hold ends at 3 with x = 6, custom interp adds elapsed time
	s = a.NewSequence("f", def, 3.5)
	if !s.InTransition || !near(s.Get("x"), 6.5) {
		t.Fatalf("trans %+v", s)
	}
}

func TestStepSequence_StateNameFilter(t *testing.T) {
	a, _ := newAnim(nil)
	a.NewSequence("s", twoState(-1), 0)
	_ = a.StepSequence("s", "b")
	if a.Running() {
		t.Fatalf("stepped from the wrong state")
	}
	if err := a.StepSequence("nope", ""); !errors.Is(err, ErrUnknownSequence) {
		t.Fatalf("err %v", err)
	}
	if err := a.RegisterSeqCallback("nope", nil); !errors.Is(err, ErrUnknownSequence) {
		t.Fatalf("err %v", err)
	}
}

func TestActivationSequence(t *testing.T) {
	a, _ := newAnim(nil)
	if v := a.ActivationSequence("act", 0.5, 0); v != 0 {
		t.Fatalf("start %v", v)
	}
	_ = a.StepSequence("act", "zero")
	// the transition starts at the next query
	if v := a.ActivationSequence("act", 0.5, 1); v != 0 {
		t.Fatalf("stepped %v", v)
	}
	if v := a.ActivationSequence("act", 0.5, 1.25); !near(v, 0.5) {
		t.Fatalf("mid %v", v)
	}
	if v := a.ActivationSequence("act", 0.5, 2); v != 1 {
		t.Fatalf("end %v", v)
	}
	a.Reset()
	if v := a.ActivationSequence("act", 0.5, 0); v != 0 {
		t.Fatalf("after reset %v", v)
	}
}

func TestNewSequence_MismatchedTimesPanic(t *testing.T) {
	cases := map[string]Seq{
		"short hold":  {States: []StateDef{{"x": Num(0)}, {"x": Num(1)}}, TransTimes: []float64{1, 1}, HoldTimes: []float64{1}},
		"short trans": {States: []StateDef{{"x": Num(0)}, {"x": Num(1)}}, TransTimes: []float64{1}, HoldTimes: []float64{1, 1}},
		"no times":    {States: []StateDef{{"x": Num(0)}}},
	}
	for name, def := range cases {
		func() {
			a, _ := newAnim(nil)
			defer func() {
				var ue *draw.UsageError
				err, ok := recover().(error)
				if !ok || !errors.As(err, &ue) || ue.Op != "sequence" || !strings.Contains(ue.Detail, `"walk"`) {
					t.Fatalf("%s: recovered %v, want *draw.UsageError naming the sequence", name, err)
				}
			}()
			a.NewSequence("walk", def, 0)
		}()
	}
}
