/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package demo holds the built-in scenes: the four-bar windshield wiper
// and a small 3D gallery.
package demo

import (
	"math"

	"prairiedraw/internal/vector"
)

// SolveFourBar returns the angle of the output link b in a four-bar linkage
// with ground g, coupler f, input link a at angle alpha, and output link b.
// flipped selects the second assembly.
func SolveFourBar(g, f, a, b, alpha float64, flipped bool) float64 {
	l := vector.CosLawLength(a, g, alpha)
	beta1 := vector.CosLawAngle(g, l, a)
	beta2 := vector.CosLawAngle(l, b, f)
	if math.Sin(alpha) > 0 {
		if flipped {
			return math.Pi - beta1 + beta2
		}
		return math.Pi - beta1 - beta2
	}
	if flipped {
		return math.Pi + beta1 + beta2
	}
	return math.Pi + beta1 - beta2
}

// Linkage is a crank-rocker: crank O2A driven at O2, coupler AB, rocker
// BO4 pivoting at O4, with the ground link O2O4 of length Base.
type Linkage struct {
	Crank, Coupler, Rocker, Base float64
}

// Diagonal is the distance A to O4 at crank angle theta.
func (l Linkage) Diagonal(theta float64) float64 {
	return math.Sqrt(l.Crank*l.Crank + l.Base*l.Base - 2*l.Crank*l.Base*math.Cos(theta))
}

// Pose holds the joint angles for one crank angle.
type Pose struct {
	Theta float64 // crank, at O2
	A     float64 // coupler, at A
	B     float64 // rocker, at B
	O4    float64 // rocker, at O4
}

// Solve closes the loop at crank angle theta. ok is false when the coupler
// and rocker cannot reach each other.
func (l Linkage) Solve(theta float64) (Pose, bool) {
	ao4 := l.Diagonal(theta)
	b := math.Acos((l.Rocker*l.Rocker + l.Coupler*l.Coupler - ao4*ao4) / (2 * l.Rocker * l.Coupler))
	o4 := math.Asin(l.Crank*math.Sin(theta)/ao4) + math.Asin(l.Coupler*math.Sin(b)/ao4)
	p := Pose{Theta: theta, B: b, O4: o4, A: 2*math.Pi - b - o4 - theta}
	ok := !math.IsNaN(p.A) && !math.IsInf(p.A, 0)
	return p, ok
}

// reachMargin keeps the crank from driving the linkage into its dead
// points.
const reachMargin = 0.02

// Limits are the diagonal lengths at which the crank has to reverse.
func (l Linkage) Limits() (lo, hi float64) {
	return math.Abs(l.Coupler - l.Rocker + reachMargin), l.Coupler + l.Rocker - reachMargin
}

// FullRotation reports whether the crank can turn all the way round.
func (l Linkage) FullRotation() bool {
	_, hi := l.Limits()
	return hi >= l.Base+l.Crank
}
