/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package options

import (
	"errors"
	"testing"
)

func TestAddSetGet(t *testing.T) {
	redraws := 0
	s := New(func() { redraws++ })
	s.Add("velocity", false, true)
	if v, err := s.Bool("velocity"); err != nil || v {
		t.Fatalf("Get = %v %v", v, err)
	}
	var got []any
	var triggers []any
	id, err := s.RegisterCallback("velocity", func(v, tr any) { got = append(got, v); triggers = append(triggers, tr) }, "")
	if err != nil || id != "0" {
		t.Fatalf("RegisterCallback = %q %v", id, err)
	}
	if len(got) != 1 || got[0] != false {
		t.Fatalf("callback should fire on registration: %v", got)
	}
	if err := s.Set("velocity", true, true, "button", false); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1] != true || triggers[1] != "button" {
		t.Fatalf("callback args = %v %v", got, triggers)
	}
	if redraws != 1 {
		t.Fatalf("redraws = %d", redraws)
	}
	if err := s.Set("velocity", false, false, nil, false); err != nil || redraws != 1 {
		t.Fatalf("Set without redraw: %v %d", err, redraws)
	}
}

func TestUnknownAndMissingValue(t *testing.T) {
	s := New(nil)
	if err := s.Set("nope", 1, true, nil, false); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
	if _, err := s.Get("nope"); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
	s.Add("x", 3.0, true)
	if err := s.Clear("x"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("x"); !errors.Is(err, ErrNoValue) {
		t.Fatalf("expected ErrNoValue, got %v", err)
	}
	if err := s.Toggle("x"); !errors.Is(err, ErrNoValue) {
		t.Fatalf("expected ErrNoValue, got %v", err)
	}
}

func TestAddBackfillsClearedOption(t *testing.T) {
	s := New(nil)
	s.Add("mode", "a", true)
	_ = s.Clear("mode")
	fired := 0
	_, _ = s.RegisterCallback("mode", func(any, any) { fired++ }, "view")
	if fired != 0 {
		t.Fatalf("no value yet, callback should wait")
	}
	s.Add("mode", "b", true)
	if fired != 1 {
		t.Fatalf("backfill should notify, fired=%d", fired)
	}
	s.Add("mode", "c", true)
	if v, _ := s.Get("mode"); v != "b" {
		t.Fatalf("second Add must not overwrite, got %v", v)
	}
}

func TestToggleAndReset(t *testing.T) {
	redraws := 0
	s := New(func() { redraws++ })
	s.Add("delta_label", true, true)
	if err := s.Toggle("delta_label"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Bool("delta_label"); v {
		t.Fatalf("toggle did not flip")
	}
	if redraws != 1 {
		t.Fatalf("toggle should redraw once, got %d", redraws)
	}
	if err := s.ResetValue("delta_label"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Bool("delta_label"); !v || redraws != 1 {
		t.Fatalf("reset: %v redraws=%d", v, redraws)
	}
	_ = s.Set("delta_label", false, false, nil, true)
	_ = s.Set("delta_label", true, false, nil, false)
	s.ResetAll()
	if v, _ := s.Bool("delta_label"); v {
		t.Fatalf("setReset should move the baseline")
	}
	s.Add("n", 1, true)
	if err := s.Toggle("n"); !errors.Is(err, ErrNotBool) {
		t.Fatalf("expected ErrNotBool, got %v", err)
	}
}

func TestCallbackOrderAndIDs(t *testing.T) {
	s := New(nil)
	s.Add("k", 0.0, false)
	var order []string
	mk := func(tag string) Callback { return func(any, any) { order = append(order, tag) } }
	_, _ = s.RegisterCallback("k", mk("named"), "zz")
	_, _ = s.RegisterCallback("k", mk("seven"), "7")
	id, _ := s.RegisterCallback("k", mk("auto"), "")
	if id != "8" {
		t.Fatalf("auto id = %q", id)
	}
	order = nil
	_ = s.Set("k", 1.0, false, nil, false)
	if len(order) != 3 || order[0] != "seven" || order[1] != "auto" || order[2] != "named" {
		t.Fatalf("order = %v", order)
	}
	if f, err := s.Float("k"); err != nil || f != 1 {
		t.Fatalf("Float = %v %v", f, err)
	}
}
