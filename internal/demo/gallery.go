/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package demo

import (
	"math"

	"prairiedraw/internal/anim"
	"prairiedraw/internal/draw"
	"prairiedraw/internal/export"
	"prairiedraw/internal/interact"
	"prairiedraw/internal/vector"
)

// gallerySeq sweeps a slicing plane through the sphere and back, holding
// at each end.
var gallerySeq = anim.Seq{
	States: []anim.StateDef{
		{"dist": anim.Num(-0.9)},
		{"dist": anim.Num(0.9)},
	},
	TransTimes: []float64{2, 2},
	HoldTimes:  []float64{0.5, 0.5},
	Names:      []string{"below", "above"},
}

// Gallery is a 3D still life of the solid primitives. Dragging rotates
// the view.
func Gallery() export.Scene {
	var a *anim.Animator
	return export.Scene{
		Name: "gallery",
		Setup: func(an *anim.Animator) {
			a = an
			a.AddOption("hidden", true, true)
			a.SetView3D(-0.4, 0.5, 0, true, false)
		},
		Draw: func(d *draw.Drawer, t float64) {
			dist := -0.9
			if a != nil {
				s := a.NewSequence("slice", gallerySeq, t)
				dist = s.Get("dist")
			}
			drawGallery(d, dist)
		},
		Interact: func(a *anim.Animator) interact.Handler {
			r := interact.NewRotator(a)
			r.Activate()
			return r
		},
	}
}

func drawGallery(d *draw.Drawer, dist float64) {
	d.SetUnits(8, 6)
	hidden := d.OptionBool("hidden")

	origin := vector.V3(-1.8, 0, 0)
	d.Save()
	d.MustSetProp("hiddenLineDraw", hidden)
	d.Sphere(origin, 1, false)
	d.SphereSlice(origin, 1, vector.V3(0, 0, 1), dist, draw.SliceOpts{})
	d.SphereSlice(origin, 1, vector.V3(0, 1, 0), 0, draw.SliceOpts{})
	d.Restore()
	d.Text3D(origin.Add(vector.V3(0, -1.4, 0)), vector.V2(0, 1), "sphere", false)

	base := vector.V3(1.8, -1, 0)
	top, ok := d.Cylinder(base, vector.V3(1.8, 1, 0), 0.8, draw.DefaultCylinderOpts())
	if ok {
		d.Arrow3D(top, top.Add(vector.V3(0, 0.8, 0)), "velocity")
	}
	d.CircleArrow3D(vector.V3(1.8, 1.4, 0), 0.6, vector.V3(0, 1, 0), vector.V3(1, 0, 0), 0, 1.5*math.Pi, "rotation", 0)
	d.Text3D(base.Add(vector.V3(0, -0.4, 0)), vector.V2(0, 1), "cylinder", false)

	d.Arc3D(vector.V3(0, 0, 0), 0.4, draw.ArcOpts{Norm: vector.V3(1, 0, 0), Span: &vector.Interval{Lo: 0, Hi: math.Pi}})
	d.Arrow3D(vector.V3(0, 0, 0), vector.V3(0.8, 0, 0), "")
	d.Arrow3D(vector.V3(0, 0, 0), vector.V3(0, 0.8, 0), "")
	d.Arrow3D(vector.V3(0, 0, 0), vector.V3(0, 0, 0.8), "")
	d.Text3D(vector.V3(0.9, 0, 0), vector.V2(-1, 0), "TEX:$x$", false)
	d.Text3D(vector.V3(0, 0.9, 0), vector.V2(0, -1), "TEX:$y$", false)
	d.Text3D(vector.V3(0, 0, 0.9), vector.V2(0, -1), "TEX:$z$", false)
}
