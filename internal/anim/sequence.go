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
	"fmt"
	"log/slog"
	"math"
	"sort"

	"prairiedraw/internal/draw"
	"prairiedraw/internal/vector"
)

// ErrUnknownSequence is returned for operations on a sequence name that
// NewSequence has never seen.
var ErrUnknownSequence = errors.New("unknown sequence")

// Field is one variable of a sequence state: a constant, or a function of
// the state being left and the time spent in the current phase.
type Field struct {
	Value float64
	Fn    func(last *State, elapsed float64) float64
}

// Num is a constant field.
func Num(v float64) Field { return Field{Value: v} }

// Func is a time-varying field. last is nil while the sequence initializes.
func Func(fn func(last *State, elapsed float64) float64) Field { return Field{Fn: fn} }

func (f Field) eval(last *State, elapsed float64) float64 {
	if f.Fn != nil {
		return f.Fn(last, elapsed)
	}
	return f.Value
}

// StateDef is the definition of one named state.
type StateDef map[string]Field

// Interp computes a field during a transition from last toward next;
// elapsed is the time since the transition began and next.T its duration.
type Interp func(last, next *State, elapsed float64) float64

// State is a snapshot returned by NewSequence.
type State struct {
	Values map[string]float64
	// T is the time spent in the current hold or transition.
	T float64
	// RealT is the animation time of the snapshot.
	RealT float64
	// Alpha is the transition progress in [0, 1], 0 while holding.
	Alpha          float64
	Index          int
	Name           string
	InTransition   bool
	IndefiniteHold bool
}

// Get returns the named value, 0 if absent.
func (s *State) Get(name string) float64 { return s.Values[name] }

// Event is passed to sequence callbacks.
type Event string

const (
	EventEnter Event = "enter"
	EventExit  Event = "exit"
)

// SeqCallback observes a sequence entering or leaving a state.
type SeqCallback func(ev Event, index int, name string)

// Seq describes a sequence of states. TransTimes[i] is the duration of the
// move from state i to i+1 (wrapping). A negative HoldTimes[i] holds state i
// until StepSequence is called.
type Seq struct {
	States     []StateDef
	TransTimes []float64
	HoldTimes  []float64
	Interps    map[string]Interp
	Names      []string
}

type sequence struct {
	startTransition bool
	initialized     bool
	last            State
	callbacks       []SeqCallback
}

func (q *sequence) fire(ev Event) {
	for _, cb := range q.callbacks {
		cb(ev, q.last.Index, q.last.Name)
	}
}

func (s Seq) name(i int) string {
	if i < len(s.Names) {
		return s.Names[i]
	}
	return ""
}

// NewSequence advances the named sequence to time t and returns its state.
// The sequence is created on first use, positioned on its first state. It
// catches up over any number of elapsed holds and transitions, firing
// enter and exit events on the way. A definition whose time lists do not
// match its states panics with a *draw.UsageError.
func (a *Animator) NewSequence(name string, def Seq, t float64) State {
	if len(def.States) == 0 {
		return State{Values: map[string]float64{}}
	}
	if n := len(def.States); len(def.TransTimes) != n || len(def.HoldTimes) != n {
		panic(&draw.UsageError{Op: "sequence", Detail: fmt.Sprintf("%q: %d states, %d transition times, %d hold times",
			name, n, len(def.TransTimes), len(def.HoldTimes))})
	}
	q := a.sequences[name]
	if q == nil {
		q = &sequence{}
		a.sequences[name] = q
	}
	if !q.initialized {
		q.initialized = true
		vals := make(map[string]float64, len(def.States[0]))
		for k, f := range def.States[0] {
			vals[k] = f.eval(nil, 0)
		}
		q.last = State{
			Values:         vals,
			Name:           def.name(0),
			RealT:          t,
			IndefiniteHold: def.HoldTimes[0] < 0,
		}
		q.fire(EventEnter)
	}
	if q.startTransition {
		q.startTransition = false
		q.last.InTransition = true
		q.last.IndefiniteHold = false
		q.last.T = 0
		q.last.RealT = t
		q.fire(EventExit)
	}
	n := len(def.States)
	// every pass crosses one phase boundary, and a zero-length cycle
	// would never catch up
	for guard := 0; guard < 1_000_000; guard++ {
		next := (q.last.Index + 1) % n
		if q.last.InTransition {
			end := q.last.RealT + def.TransTimes[q.last.Index]
			if t < end {
				return interpState(&q.last, def.States[next], def.Interps, t, end)
			}
			q.last = interpState(&q.last, def.States[next], def.Interps, end, end)
			q.last.InTransition = false
			q.last.Alpha = 0
			q.last.Index = next
			q.last.Name = def.name(next)
			q.last.IndefiniteHold = def.HoldTimes[next] < 0
			q.fire(EventEnter)
			continue
		}
		hold := def.HoldTimes[q.last.Index]
		end := q.last.RealT + hold
		if hold < 0 || t <= end {
			return extrapState(&q.last, def.States[q.last.Index], t)
		}
		q.last = extrapState(&q.last, def.States[q.last.Index], end)
		q.last.InTransition = true
		q.last.IndefiniteHold = false
		q.fire(EventExit)
	}
	a.log.Warn("sequence did not settle", slog.String("sequence", name), slog.Float64("t", t))
	return q.last
}

func interpState(last *State, def StateDef, interps map[string]Interp, t, tFinal float64) State {
	target := State{
		Values: make(map[string]float64, len(def)),
		RealT:  tFinal,
		T:      tFinal - last.RealT,
	}
	for k, f := range def {
		target.Values[k] = f.eval(last, 0)
	}
	alpha := 1.0
	if span := tFinal - last.RealT; span > 0 {
		alpha = (t - last.RealT) / span
	}
	s := State{
		Values:         make(map[string]float64, len(def)),
		RealT:          t,
		T:              math.Min(t-last.RealT, target.T),
		Alpha:          alpha,
		Index:          last.Index,
		Name:           last.Name,
		InTransition:   last.InTransition,
		IndefiniteHold: last.IndefiniteHold,
	}
	for k := range def {
		if in, ok := interps[k]; ok {
			s.Values[k] = in(last, &target, t-last.RealT)
		} else {
			s.Values[k] = vector.LinearInterp(last.Values[k], target.Values[k], alpha)
		}
	}
	return s
}

func extrapState(last *State, def StateDef, t float64) State {
	s := State{
		Values:         make(map[string]float64, len(def)),
		RealT:          t,
		T:              t - last.RealT,
		Index:          last.Index,
		Name:           last.Name,
		InTransition:   last.InTransition,
		IndefiniteHold: last.IndefiniteHold,
	}
	for k, f := range def {
		s.Values[k] = f.eval(last, t-last.RealT)
	}
	return s
}

// StepSequence starts the next transition of a sequence waiting in an
// indefinite hold, and starts the animation. With a non-empty stateName it
// only steps when the current state has that name.
func (a *Animator) StepSequence(name, stateName string) error {
	q, ok := a.sequences[name]
	if !ok {
		return fmt.Errorf("step %q: %w", name, ErrUnknownSequence)
	}
	if !q.last.IndefiniteHold {
		return nil
	}
	if stateName != "" && q.last.Name != stateName {
		return nil
	}
	q.startTransition = true
	a.Start()
	return nil
}

// RegisterSeqCallback adds a listener and calls it at once with the
// current state.
func (a *Animator) RegisterSeqCallback(name string, cb SeqCallback) error {
	q, ok := a.sequences[name]
	if !ok {
		return fmt.Errorf("register callback on %q: %w", name, ErrUnknownSequence)
	}
	q.callbacks = append(q.callbacks, cb)
	if q.last.InTransition {
		cb(EventExit, q.last.Index, q.last.Name)
	} else {
		cb(EventEnter, q.last.Index, q.last.Name)
	}
	return nil
}

// ActivationSequence is a two-state sequence "zero"/"one" holding each
// state until stepped. It returns the progress between them.
func (a *Animator) ActivationSequence(name string, transTime, t float64) float64 {
	st := a.NewSequence(name, Seq{
		States:     []StateDef{{"trans": Num(0)}, {"trans": Num(1)}},
		TransTimes: []float64{transTime, transTime},
		HoldTimes:  []float64{-1, -1},
		Names:      []string{"zero", "one"},
	}, t)
	return st.Values["trans"]
}

// ResetSequence returns the sequence to its first state on the next
// NewSequence call. Callbacks stay registered.
func (a *Animator) ResetSequence(name string) {
	if q, ok := a.sequences[name]; ok {
		q.initialized = false
		q.startTransition = false
	}
}

func (a *Animator) ResetAllSequences() {
	for _, name := range a.SequenceNames() {
		a.ResetSequence(name)
	}
}

// SequenceNames lists known sequences, sorted.
func (a *Animator) SequenceNames() []string {
	out := make([]string, 0, len(a.sequences))
	for k := range a.sequences {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
