/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package draw

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"prairiedraw/internal/props"
	"prairiedraw/internal/vector"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func newUnits(w, h, xs, ys float64) (*Drawer, *recorder) {
	r := newRecorder(w, h)
	d := New(r, nil)
	d.SetUnits(xs, ys)
	return d, r
}

func TestSetUnits_CentersOrigin(t *testing.T) {
	d, r := newUnits(100, 100, 10, 10)
	p := d.Pos2Px(vector.V2(0, 0))
	if !near(p.X, 50) || !near(p.Y, 50) {
		t.Fatalf("origin at %v, want (50, 50)", p)
	}
	q := d.Pos2Px(vector.V2(5, 5))
	if !near(q.X, 100) || !near(q.Y, 0) {
		t.Fatalf("corner at %v, want (100, 0)", q)
	}
	d.Point(vector.V2(0, 0))
	if len(r.ops) != 1 || r.ops[0].kind != "fill" {
		t.Fatalf("ops = %v", r.kinds())
	}
	b := r.ops[0].path.Bounds()
	c := vector.V2(b.X+b.W/2, b.Y+b.H/2)
	if !c.Eq(vector.V2(50, 50), 1e-9) || !near(b.W, 4) {
		t.Fatalf("point bounds %+v", b)
	}
}

func TestSetUnits_ShrinksLooseAxis(t *testing.T) {
	_, r := newUnits(100, 100, 10, 5)
	if r.w != 100 || r.h != 50 {
		t.Fatalf("size = %vx%v, want 100x50", r.w, r.h)
	}
	d, r := newUnits(100, 100, 5, 10)
	if r.w != 50 || r.h != 100 {
		t.Fatalf("size = %vx%v, want 50x100", r.w, r.h)
	}
	if p := d.Pos2Px(vector.V2(0, 0)); !near(p.X, 25) || !near(p.Y, 50) {
		t.Fatalf("origin at %v", p)
	}
}

func TestSetUnitsCanvas_Width(t *testing.T) {
	r := newRecorder(10, 10)
	d := New(r, nil)
	d.SetUnitsCanvas(4, 3, 200, false)
	if r.w != 200 || r.h != 150 {
		t.Fatalf("size = %vx%v", r.w, r.h)
	}
	if v := d.Vec2Px(vector.V2(1, 1)); !near(v.X, 50) || !near(v.Y, -50) {
		t.Fatalf("unit vector maps to %v", v)
	}
}

func TestSaveRestore_RestoresStateAndSurface(t *testing.T) {
	d, r := newUnits(100, 100, 10, 10)
	before := d.Transform()
	d.Save()
	d.Translate(vector.V2(1, 2))
	d.Props().ShapeStrokeWidthPx = 9
	d.Translate3D(vector.V3(1, 1, 1))
	if r.depth != 1 || d.Depth() != 1 {
		t.Fatalf("depth = %d/%d", r.depth, d.Depth())
	}
	d.Restore()
	if d.Transform() != before {
		t.Fatalf("transform not restored")
	}
	if d.Props().ShapeStrokeWidthPx != props.Defaults().ShapeStrokeWidthPx {
		t.Fatalf("props not restored")
	}
	if r.depth != 0 {
		t.Fatalf("surface depth = %d", r.depth)
	}
}

func TestSaveRestore_NestedLevelsUnwindExactly(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		d, r := newUnits(100, 100, 10, 10)
		type snap struct {
			props   props.Props
			trans   vector.Affine2D
			trans3D vector.Affine3D
		}
		var saved []snap
		for i := 0; i < n; i++ {
			saved = append(saved, snap{*d.Props(), d.trans, d.trans3D})
			d.Save()
			d.Translate(vector.V2(float64(i)+0.5, -1))
			d.Rotate(0.3)
			d.Rotate3D(0.1, 0.2*float64(i), -0.4)
			d.Translate3D(vector.V3(1, 2, float64(i)))
			d.Props().ShapeStrokeWidthPx = float64(10 + i)
			d.Props().HiddenLineDraw = i%2 == 0
		}
		for i := n - 1; i >= 0; i-- {
			d.Restore()
			got := snap{*d.Props(), d.trans, d.trans3D}
			if !reflect.DeepEqual(got, saved[i]) {
				t.Fatalf("n=%d level %d: state not restored", n, i)
			}
		}
		if d.Depth() != 0 || r.depth != 0 {
			t.Fatalf("n=%d depth = %d/%d", n, d.Depth(), r.depth)
		}
		func() {
			defer func() {
				var ue *UsageError
				if err, ok := recover().(error); !ok || !errors.As(err, &ue) || ue.Op != "restore" {
					t.Fatalf("n=%d: extra Restore did not panic with *UsageError", n)
				}
			}()
			d.Restore()
		}()
	}
}

func TestRestore_EmptyPanics(t *testing.T) {
	d, _ := newUnits(100, 100, 10, 10)
	defer func() {
		v := recover()
		err, ok := v.(error)
		if !ok || !IsUsageError(err) {
			t.Fatalf("recovered %v, want *UsageError", v)
		}
	}()
	d.Restore()
}

func TestRestoreAll_ReinstallsUnits(t *testing.T) {
	d, _ := newUnits(100, 100, 10, 10)
	base := d.Transform()
	d.Save()
	d.Save()
	d.Rotate(1)
	d.RestoreAll()
	if d.Depth() != 0 || d.Transform() != base {
		t.Fatalf("RestoreAll left depth %d", d.Depth())
	}
}

func TestBadColorPanics(t *testing.T) {
	d, _ := newUnits(100, 100, 10, 10)
	defer func() {
		v := recover()
		var ue *UsageError
		if err, ok := v.(error); !ok || !errors.As(err, &ue) || ue.Op != "color" {
			t.Fatalf("recovered %v", v)
		}
	}()
	d.Line(vector.V2(0, 0), vector.V2(1, 1), "not-a-color")
}

func TestNew_DrawsOnceAndOptionsRedraw(t *testing.T) {
	r := newRecorder(100, 100)
	calls := 0
	d := New(r, func(d *Drawer) {
		calls++
		d.SetUnits(10, 10)
		if d.OptionBool("showGrid") {
			d.Line(vector.V2(-5, 0), vector.V2(5, 0), "grid")
		}
	})
	if calls != 1 {
		t.Fatalf("calls = %d after New", calls)
	}
	d.AddOption("showGrid", false, true)
	if err := d.SetOption("showGrid", true, true, nil, false); err != nil {
		t.Fatal(err)
	}
	if calls != 2 || r.count("stroke") != 1 {
		t.Fatalf("calls = %d strokes = %d", calls, r.count("stroke"))
	}
	if d.Depth() != 0 {
		t.Fatalf("depth after redraw = %d", d.Depth())
	}
	d.Reset()
	if calls != 3 || r.count("stroke") != 0 {
		t.Fatalf("after reset calls = %d strokes = %d", calls, r.count("stroke"))
	}
}

func TestView3D_ClipsAndResets(t *testing.T) {
	d, _ := newUnits(100, 100, 10, 10)
	d.SetView3D(1, 2, 3, true, false)
	ax, ay, az := d.View3D()
	if !near(ax, -1e-6) || ay != 2 || az != 3 {
		t.Fatalf("view = %v %v %v", ax, ay, az)
	}
	d.ResetView3D(false)
	ax, _, az = d.View3D()
	if !near(ax, InitViewAngleX) || !near(az, InitViewAngleZ) {
		t.Fatalf("reset view = %v %v", ax, az)
	}
}

func TestPos3To2_IdentityView(t *testing.T) {
	d, _ := newUnits(100, 100, 10, 10)
	d.SetView3D(0, 0, 0, false, false)
	p := d.Pos3To2(vector.V3(1, 2, 3))
	if !p.Eq(vector.V2(1, 2), 1e-12) {
		t.Fatalf("projected %v", p)
	}
	v := d.Vec3To2(vector.V3(0, 0, 5), vector.V3(1, 1, 1))
	if !v.Eq(vector.Vec2{}, 1e-12) {
		t.Fatalf("depth vector projected to %v", v)
	}
}
