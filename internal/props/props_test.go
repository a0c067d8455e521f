/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package props

import (
	"errors"
	"math"
	"testing"
)

func TestDefaults(t *testing.T) {
	p := Defaults()
	if p.ArrowheadLengthRatio != 7 || p.HiddenLinePattern != "dashed" || !p.HiddenLineDraw {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if !math.IsInf(p.ViewAngleZMax, 1) || p.ViewAngleXMax != -1e-6 {
		t.Fatalf("unexpected view limits: %+v", p)
	}
	for _, n := range Names() {
		if _, err := p.Get(n); err != nil {
			t.Fatalf("Get(%q): %v", n, err)
		}
	}
}

func TestSetGetByName(t *testing.T) {
	p := Defaults()
	if err := p.Set("pointRadiusPx", "4"); err != nil {
		t.Fatalf("numeric string: %v", err)
	}
	if p.PointRadiusPx != 4 {
		t.Fatalf("PointRadiusPx = %v", p.PointRadiusPx)
	}
	if err := p.Set("arrowLineWidthPx", 3); err != nil || p.ArrowLineWidthPx != 3 {
		t.Fatalf("int value: %v %v", err, p.ArrowLineWidthPx)
	}
	if err := p.Set("shapeOutlineColor", "#a8beff"); err != nil {
		t.Fatalf("color: %v", err)
	}
	v, err := p.Get("shapeOutlineColor")
	if err != nil || v != "#a8beff" {
		t.Fatalf("Get = %v %v", v, err)
	}
}

func TestSetRejects(t *testing.T) {
	p := Defaults()
	if err := p.Set("noSuchProp", 1); !errors.Is(err, ErrUnknownProp) {
		t.Fatalf("expected ErrUnknownProp, got %v", err)
	}
	if _, err := p.Get("noSuchProp"); !errors.Is(err, ErrUnknownProp) {
		t.Fatalf("expected ErrUnknownProp, got %v", err)
	}
	if err := p.Set("shapeStrokePattern", "wavy"); !errors.Is(err, ErrBadValue) {
		t.Fatalf("expected ErrBadValue, got %v", err)
	}
	if err := p.Set("hiddenLineDraw", "yes"); !errors.Is(err, ErrBadValue) {
		t.Fatalf("expected ErrBadValue, got %v", err)
	}
	if err := p.Set("forceColor", "rgb(nope)"); !errors.Is(err, ErrBadValue) {
		t.Fatalf("expected ErrBadValue, got %v", err)
	}
}

func TestColorLookup(t *testing.T) {
	p := Defaults()
	c, err := p.Color("velocity")
	if err != nil || c.G != 200 || c.R != 0 {
		t.Fatalf("velocity = %+v %v", c, err)
	}
	c, err = p.Color("")
	if err != nil || c.R != 0 || c.A != 255 {
		t.Fatalf("default = %+v %v", c, err)
	}
	c, err = p.Color("red")
	if err != nil || c.R != 255 {
		t.Fatalf("named = %+v %v", c, err)
	}
	c, err = p.Color("rgb(1, 2, 3)")
	if err != nil || c.B != 3 {
		t.Fatalf("raw = %+v %v", c, err)
	}
}

func TestUseHiddenLineStyle(t *testing.T) {
	p := Defaults()
	p.HiddenLineColor = "rgb(9, 9, 9)"
	p.UseHiddenLineStyle()
	if p.ShapeStrokePattern != "dashed" || p.ShapeOutlineColor != "rgb(9, 9, 9)" {
		t.Fatalf("hidden style not copied: %+v", p)
	}
}
