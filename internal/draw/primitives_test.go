/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package draw

import (
	"image"
	"math"
	"testing"

	"prairiedraw/internal/vector"
)

func TestArrow_ShortHasNoHead(t *testing.T) {
	d, r := newUnits(100, 100, 10, 10)
	d.Arrow(vector.V2(0, 0), vector.V2(0.05, 0), "velocity")
	if got := r.kinds(); len(got) != 1 || got[0] != "stroke" {
		t.Fatalf("ops = %v", got)
	}
}

func TestArrow_ShaftStopsInsideHead(t *testing.T) {
	d, r := newUnits(100, 100, 10, 10)
	d.Arrow(vector.V2(0, 0), vector.V2(4, 0), "velocity")
	if got := r.kinds(); len(got) != 2 || got[0] != "stroke" || got[1] != "fill" {
		t.Fatalf("ops = %v", got)
	}
	shaft := points(r.ops[0].path)
	// head = min(7*2, 40/2) = 14px; shaft ends 0.7*14px short of the tip.
	if !shaft[1].Eq(vector.V2(90-0.7*14, 50), 1e-9) {
		t.Fatalf("shaft end %v", shaft[1])
	}
	if r.ops[0].stroke.Width != 2 || r.ops[1].fill.Color != vector.MustColor("rgb(0, 200, 0)") {
		t.Fatalf("style %+v %+v", r.ops[0].stroke, r.ops[1].fill)
	}
	tip := points(r.ops[1].path)[0]
	if !tip.Eq(vector.V2(90, 50), 1e-9) {
		t.Fatalf("tip %v", tip)
	}
}

func TestArrowFromTo(t *testing.T) {
	d, r := newUnits(100, 100, 10, 10)
	d.ArrowTo(vector.V2(1, 1), vector.V2(2, 0), "")
	shaft := points(r.ops[0].path)
	if !shaft[0].Eq(d.Pos2Px(vector.V2(-1, 1)), 1e-9) {
		t.Fatalf("start %v", shaft[0])
	}
}

func TestCircleArrow_FixedRadius(t *testing.T) {
	d, r := newUnits(100, 100, 10, 10)
	d.CircleArrow(vector.V2(0, 0), 2, 0, math.Pi, "angVel", true, 0)
	if got := r.kinds(); len(got) != 2 {
		t.Fatalf("ops = %v", got)
	}
	c := vector.V2(50, 50)
	for _, p := range points(r.ops[0].path) {
		if !near(p.Sub(c).Len(), 20) {
			t.Fatalf("shaft point %v off radius", p)
		}
	}
	tip := points(r.ops[1].path)[0]
	if !tip.Eq(d.Pos2Px(vector.V2(-2, 0)), 1e-9) {
		t.Fatalf("tip %v", tip)
	}
	// Counterclockwise in drawing space passes over the top on screen.
	mid := points(r.ops[0].path)[len(points(r.ops[0].path))/2]
	if mid.Y >= 50 {
		t.Fatalf("shaft went below center: %v", mid)
	}
}

func TestCircleArrow_WrapsOutward(t *testing.T) {
	d, r := newUnits(100, 100, 10, 10)
	d.CircleArrow(vector.V2(0, 0), 2, 0, 3*math.Pi, "", false, 0)
	pts := points(r.ops[0].path)
	c := vector.V2(50, 50)
	first := pts[0].Sub(c).Len()
	last := pts[len(pts)-1].Sub(c).Len()
	if !(first < 20 && last > 20) {
		t.Fatalf("radius runs %v -> %v", first, last)
	}
}

func TestCircleArrowRadius_Fixed(t *testing.T) {
	d, _ := newUnits(100, 100, 10, 10)
	if got := d.circleArrowRadius(10, 3, 0, 1, true); got != 10 {
		t.Fatalf("fixed radius = %v", got)
	}
	if got := d.circleArrowRadius(10, 0.5, 0, 1, false); !near(got, 10) {
		t.Fatalf("mid radius = %v", got)
	}
}

func TestPolyLine(t *testing.T) {
	d, r := newUnits(100, 100, 10, 10)
	d.PolyLine([]vector.Vec2{{X: 1, Y: 1}}, true, true, true)
	if len(r.ops) != 0 {
		t.Fatalf("single point drew %v", r.kinds())
	}
	sq := []vector.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}
	hole := []vector.Vec2{{X: 0.2, Y: 0.1}, {X: 0.8, Y: 0.1}, {X: 0.8, Y: 0.5}}
	d.PolyLine(sq, true, true, true, hole)
	if got := r.kinds(); len(got) != 2 || got[0] != "fill" {
		t.Fatalf("ops = %v", got)
	}
	if r.ops[0].fill.Rule != vector.EvenOdd {
		t.Fatalf("fill rule = %v", r.ops[0].fill.Rule)
	}
	closes := 0
	for _, c := range r.ops[1].path.Cmds {
		if c.Op == vector.Close {
			closes++
		}
	}
	if closes != 2 {
		t.Fatalf("closes = %d", closes)
	}
	r.ops = nil
	d.PolyLine(sq, false, true, true)
	if got := r.kinds(); len(got) != 1 || got[0] != "stroke" {
		t.Fatalf("open polyline ops = %v", got)
	}
}

func TestPolyLineArrow_TrimsAcrossSegments(t *testing.T) {
	d, r := newUnits(100, 100, 10, 10)
	pts := []vector.Vec2{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 0.5}}
	d.PolyLineArrow(pts, "force")
	if got := r.kinds(); len(got) != 2 {
		t.Fatalf("ops = %v", got)
	}
	// Total 35px, head 14px, trim 9.8px: the last 5px segment goes and
	// 4.8px come off the first.
	line := points(r.ops[0].path)
	if len(line) != 2 || !line[1].Eq(vector.V2(80-4.8, 50), 1e-9) {
		t.Fatalf("trimmed line %v", line)
	}
	if tip := points(r.ops[1].path)[0]; !tip.Eq(vector.V2(80, 45), 1e-9) {
		t.Fatalf("tip %v", tip)
	}
}

func TestArcUsesCanvasAngles(t *testing.T) {
	d, r := newUnits(100, 100, 10, 10)
	d.Arc(vector.V2(0, 0), 1, 0, math.Pi/2, false)
	if got := r.kinds(); len(got) != 1 || got[0] != "stroke" {
		t.Fatalf("ops = %v", got)
	}
	b := r.ops[0].path.Bounds()
	// Quarter arc over the first quadrant: right of and above center.
	if b.X < 50-1e-9 || b.Y+b.H > 50+1e-9 {
		t.Fatalf("arc bounds %+v", b)
	}
}

func TestCircleVariants(t *testing.T) {
	d, r := newUnits(100, 100, 10, 10)
	d.Circle(vector.V2(0, 0), 1, true)
	d.Circle(vector.V2(0, 0), 1, false)
	d.FilledCircle(vector.V2(0, 0), 1)
	want := []string{"fill", "stroke", "stroke", "fill"}
	got := r.kinds()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ops = %v", got)
		}
	}
	if r.ops[3].fill.Color != vector.Black {
		t.Fatalf("filled circle color %v", r.ops[3].fill.Color)
	}
}

func TestPageArrows(t *testing.T) {
	d, r := newUnits(100, 100, 10, 10)
	d.ArrowOutOfPage(vector.V2(0, 0), "")
	if got := r.kinds(); len(got) != 3 || got[0] != "fill" || got[2] != "fill" {
		t.Fatalf("out of page ops = %v", got)
	}
	r.ops = nil
	d.ArrowIntoPage(vector.V2(0, 0), "")
	if r.count("stroke") != 3 {
		t.Fatalf("into page ops = %v", r.kinds())
	}
}

func TestTeXText_DrawsCachedImage(t *testing.T) {
	key := "text/" + TeXKey("x^2")
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	r := newRecorder(100, 100)
	d := New(r, nil, WithImages(mapImages{key: img}))
	d.SetUnits(10, 10)
	d.Text(vector.V2(0, 0), vector.V2(0, 0), "TEX:x^2", false)
	if got := r.kinds(); len(got) != 1 || got[0] != "image" {
		t.Fatalf("ops = %v", got)
	}
	if o := r.ops[0]; !near(o.x, 40) || !near(o.y, 45) || o.w != 20 || o.h != 10 {
		t.Fatalf("image placed at %+v", o)
	}
	r.ops = nil
	d.Text(vector.V2(0, 0), vector.V2(0, 0), "TEX:y", false)
	if len(r.ops) != 0 {
		t.Fatalf("missing TeX image drew %v", r.kinds())
	}
}

func TestTeXKey(t *testing.T) {
	if got := TeXKey("abc"); got != "a9993e364706816aba3e25717850c26c9cd0d89d.png" {
		t.Fatalf("TeXKey = %s", got)
	}
}

func TestText_AlignmentFromAnchor(t *testing.T) {
	d, r := newUnits(100, 100, 10, 10)
	d.Text(vector.V2(0, 0), vector.V2(1, 0), "hi", false)
	o := r.ops[0]
	if o.style.Align != vector.AlignRight || o.style.Baseline != vector.BaselineMiddle {
		t.Fatalf("style %+v", o.style)
	}
	if !near(o.x, 46) || !near(o.y, 50) {
		t.Fatalf("text at (%v, %v)", o.x, o.y)
	}
	r.ops = nil
	d.Text(vector.V2(0, 0), vector.V2(-1, 0), "hi", true)
	if got := r.kinds(); len(got) != 2 || got[0] != "fill" || got[1] != "text" {
		t.Fatalf("boxed ops = %v", got)
	}
	d.Text(vector.V2(0, 0), vector.V2(0, 0), "", true)
	if len(r.ops) != 2 {
		t.Fatalf("empty text drew")
	}
}

func TestFindAnchorForIntersection(t *testing.T) {
	d, _ := newUnits(100, 100, 10, 10)
	a := d.FindAnchorForIntersection(vector.V2(0, 0), []vector.Vec2{{X: 1, Y: 0}})
	if !a.Eq(vector.V2(1, 0), 1e-9) {
		t.Fatalf("anchor %v", a)
	}
	// Lines right and up leave the widest gap down-left, so the label's
	// top-right corner sits at the point.
	a = d.FindAnchorForIntersection(vector.V2(0, 0), []vector.Vec2{{X: 1, Y: 0}, {X: 0, Y: 1}})
	if !a.Eq(vector.V2(1, 1), 1e-9) {
		t.Fatalf("anchor %v", a)
	}
	a = d.FindAnchorForIntersection(vector.V2(0, 0), nil)
	if a != vector.V2(1, 0) {
		t.Fatalf("empty anchor %v", a)
	}
}

func TestLabelLine_LeftOfSegment(t *testing.T) {
	d, r := newUnits(100, 100, 10, 10)
	d.LabelLine(vector.V2(-1, 0), vector.V2(1, 0), vector.V2(0, 1), "L")
	o := r.ops[0]
	// Above the midpoint, anchored on the bottom edge.
	if o.style.Baseline != vector.BaselineBottom || !near(o.x, 50) || o.y >= 50 {
		t.Fatalf("label %+v", o)
	}
}

func TestDrawImage_ScalesToWidth(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 5))
	r := newRecorder(100, 100)
	d := New(r, nil, WithImages(mapImages{"car.png": img}))
	d.SetUnits(10, 10)
	d.DrawImage("car.png", vector.V2(0, 0), vector.V2(0, 0), 2)
	o := r.ops[0]
	if !near(o.w, 20) || !near(o.h, 10) || !near(o.x, 40) || !near(o.y, 45) {
		t.Fatalf("image %+v", o)
	}
}

func finitePath(p vector.Path) bool {
	for _, c := range p.Cmds {
		for _, v := range c.Data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func TestDegenerateGeometry_DrawsNothing(t *testing.T) {
	cases := []struct {
		name string
		fn   func(d *Drawer)
	}{
		{"zero radius circle arrow", func(d *Drawer) { d.CircleArrow(vector.V2(1, 1), 0, 0, math.Pi, "", false, 0) }},
		{"zero radius fixed circle arrow", func(d *Drawer) { d.CircleArrow(vector.V2(1, 1), 0, 0, 1, "", true, 0) }},
		{"empty span circle arrow", func(d *Drawer) { d.CircleArrow(vector.V2(0, 0), 2, 1, 1, "", false, 0) }},
		{"nan span circle arrow", func(d *Drawer) { d.CircleArrow(vector.V2(0, 0), 2, 0, math.NaN(), "", false, 0) }},
		{"centered zero extent", func(d *Drawer) { d.CircleArrowCentered(vector.V2(0, 0), 1, 0.5, 0, "", true) }},
		{"zero length arrow", func(d *Drawer) { d.Arrow(vector.V2(2, 3), vector.V2(2, 3), "velocity") }},
		{"zero offset arrow from", func(d *Drawer) { d.ArrowFrom(vector.V2(2, 3), vector.Vec2{}, "") }},
		{"zero length arrow 3D", func(d *Drawer) { d.Arrow3D(vector.V3(1, 1, 1), vector.V3(1, 1, 1), "") }},
	}
	for _, tc := range cases {
		d, r := newUnits(100, 100, 10, 10)
		tc.fn(d)
		if len(r.ops) != 0 {
			t.Fatalf("%s: ops = %v", tc.name, r.kinds())
		}
	}
}

func TestCircleArrow_TinyRadiusStaysFinite(t *testing.T) {
	d, r := newUnits(100, 100, 10, 10)
	d.CircleArrow(vector.V2(0, 0), 1e-3, 0, math.Pi, "", false, 0)
	for _, o := range r.ops {
		if !finitePath(o.path) {
			t.Fatalf("%s path has non-finite coordinates", o.kind)
		}
	}
}
