/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package options stores named external values (checkboxes, sliders, mode
// switches) with reset baselines and change listeners. Listeners run
// synchronously, in id order, before the mutating call returns.
package options

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

var (
	ErrUnknownOption = errors.New("options: unknown option")
	ErrNoValue       = errors.New("options: option has no value")
	ErrNoReset       = errors.New("options: option has no reset value")
	ErrNotBool       = errors.New("options: option is not a bool")
)

// Callback receives the new value and the trigger passed to Set (nil when
// the change came from Add, Toggle, reset or registration).
type Callback func(value any, trigger any)

type option struct {
	value, reset       any
	hasValue, hasReset bool
	triggerRedraw      bool
	callbacks          map[string]Callback
}

// Store is owned by one drawing surface and is not safe for concurrent use.
type Store struct {
	opts   map[string]*option
	redraw func()
}

// New returns an empty store. redraw may be nil.
func New(redraw func()) *Store {
	return &Store{opts: map[string]*option{}, redraw: redraw}
}

// SetRedraw replaces the redraw hook.
func (s *Store) SetRedraw(fn func()) { s.redraw = fn }

func (s *Store) doRedraw() {
	if s.redraw != nil {
		s.redraw()
	}
}

func (s *Store) lookup(name string) (*option, error) {
	o, ok := s.opts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
	return o, nil
}

// Add declares an option. Declaring an option that exists without a value
// fills in the value and reset baseline and notifies listeners; declaring
// one that already has a value is a no-op.
func (s *Store) Add(name string, value any, triggerRedraw bool) {
	o, ok := s.opts[name]
	if !ok {
		s.opts[name] = &option{
			value: value, reset: value, hasValue: true, hasReset: true,
			triggerRedraw: triggerRedraw,
			callbacks:     map[string]Callback{},
		}
		return
	}
	if !o.hasValue {
		o.value, o.reset, o.hasValue, o.hasReset = value, value, true, true
		o.fire(nil)
	}
}

// Set updates the value (and the reset baseline when setReset is true),
// notifies listeners with trigger, then redraws if asked.
func (s *Store) Set(name string, value any, redraw bool, trigger any, setReset bool) error {
	o, err := s.lookup(name)
	if err != nil {
		return err
	}
	o.value, o.hasValue = value, true
	if setReset {
		o.reset, o.hasReset = value, true
	}
	o.fire(trigger)
	if redraw {
		s.doRedraw()
	}
	return nil
}

func (s *Store) Get(name string) (any, error) {
	o, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	if !o.hasValue {
		return nil, fmt.Errorf("%w: %q", ErrNoValue, name)
	}
	return o.value, nil
}

// Bool is Get for boolean options.
func (s *Store) Bool(name string) (bool, error) {
	v, err := s.Get(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrNotBool, name)
	}
	return b, nil
}

// Float is Get for numeric options.
func (s *Store) Float(name string) (float64, error) {
	v, err := s.Get(name)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case string:
		return strconv.ParseFloat(x, 64)
	}
	return 0, fmt.Errorf("options: %q is %T, not a number", name, v)
}

// Toggle flips a boolean option, notifies listeners and redraws.
func (s *Store) Toggle(name string) error {
	b, err := s.Bool(name)
	if err != nil {
		return err
	}
	o := s.opts[name]
	o.value = !b
	o.fire(nil)
	s.doRedraw()
	return nil
}

// RegisterCallback adds a listener under id; an empty id picks one past the
// largest numeric id in use. The listener is invoked immediately with the
// current value when there is one. The id used is returned.
func (s *Store) RegisterCallback(name string, cb Callback, id string) (string, error) {
	o, err := s.lookup(name)
	if err != nil {
		return "", err
	}
	if id == "" {
		next := 0
		for k := range o.callbacks {
			if n, err := strconv.Atoi(k); err == nil && n+1 > next {
				next = n + 1
			}
		}
		id = strconv.Itoa(next)
	}
	o.callbacks[id] = cb
	if o.hasValue {
		cb(o.value, nil)
	}
	return id, nil
}

// RemoveCallback drops a listener; unknown ids are ignored.
func (s *Store) RemoveCallback(name, id string) error {
	o, err := s.lookup(name)
	if err != nil {
		return err
	}
	delete(o.callbacks, id)
	return nil
}

// Clear removes the value, leaving the option declared, and redraws.
func (s *Store) Clear(name string) error {
	o, err := s.lookup(name)
	if err != nil {
		return err
	}
	o.value, o.hasValue = nil, false
	s.doRedraw()
	return nil
}

// ResetValue restores the baseline and notifies listeners without redrawing.
func (s *Store) ResetValue(name string) error {
	o, err := s.lookup(name)
	if err != nil {
		return err
	}
	if !o.hasReset {
		return fmt.Errorf("%w: %q", ErrNoReset, name)
	}
	o.value, o.hasValue = o.reset, true
	o.fire(nil)
	return nil
}

// ResetAll resets every option that has a baseline, in name order.
func (s *Store) ResetAll() {
	for _, n := range s.Names() {
		if s.opts[n].hasReset {
			_ = s.ResetValue(n)
		}
	}
}

// TriggersRedraw reports the flag the option was declared with.
func (s *Store) TriggersRedraw(name string) bool {
	o, ok := s.opts[name]
	return ok && o.triggerRedraw
}

func (s *Store) Names() []string {
	out := make([]string, 0, len(s.opts))
	for n := range s.opts {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// fire runs listeners in id order: numeric ids first by value, then the rest.
func (o *option) fire(trigger any) {
	ids := make([]string, 0, len(o.callbacks))
	for id := range o.callbacks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return ids[i] < ids[j]
	})
	for _, id := range ids {
		o.callbacks[id](o.value, trigger)
	}
}
