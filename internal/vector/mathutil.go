/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"
	"sort"
)

const (
	GoldenRatio = 1.618033988749894848204586834365638117720309179805762862135

	// DegToRad multiplies degrees into radians.
	DegToRad = math.Pi / 180
	// RadToDeg multiplies radians into degrees.
	RadToDeg = 180 / math.Pi

	twoPi = 2 * math.Pi
)

// FixedMod is a true modulus: the result lies in [0, m) for m > 0.
func FixedMod(v, m float64) float64 {
	return math.Mod(math.Mod(v, m)+m, m)
}

// IntervalMod maps x into [a, b).
func IntervalMod(x, a, b float64) float64 {
	return FixedMod(x-a, b-a) + a
}

// IntervalDiv returns how many whole intervals [a, b) x lies away from it.
func IntervalDiv(x, a, b float64) float64 {
	return math.Floor((x - a) / (b - a))
}

// VectorIntervalMod applies IntervalMod to each component.
func VectorIntervalMod(x, a, b Vec2) Vec2 {
	return Vec2{IntervalMod(x.X, a.X, b.X), IntervalMod(x.Y, a.Y, b.Y)}
}

func Clip(x, a, b float64) float64 {
	return math.Max(a, math.Min(b, x))
}

// Sign returns -1, 0 or 1.
func Sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// Interval is a closed range on the real line. Lo may exceed Hi on input;
// the intersection helpers sort it first.
type Interval struct{ Lo, Hi float64 }

func (iv Interval) sorted() Interval {
	if iv.Lo > iv.Hi {
		return Interval{iv.Hi, iv.Lo}
	}
	return iv
}

func (iv Interval) Len() float64 { return iv.Hi - iv.Lo }

// IntersectIntervals returns the overlap of a and b, or nil if they are disjoint.
func IntersectIntervals(a, b Interval) []Interval {
	a, b = a.sorted(), b.sorted()
	r := Interval{math.Max(a.Lo, b.Lo), math.Min(a.Hi, b.Hi)}
	if r.Hi < r.Lo {
		return nil
	}
	return []Interval{r}
}

// IntersectAngleRanges intersects two angle ranges taken modulo 2π. The
// result is expressed in the frame of r1 (shifted so its start is in
// [0, 2π)) and holds zero, one or two pieces. Touching ranges give nil.
func IntersectAngleRanges(r1, r2 Interval) []Interval {
	r1, r2 = r1.sorted(), r2.sorted()
	shift := r1.Lo - FixedMod(r1.Lo, twoPi)
	r1 = Interval{r1.Lo - shift, r1.Hi - shift}
	if r1.Len() >= twoPi {
		r1.Hi = r1.Lo + twoPi
	}
	if r2.Len() >= twoPi {
		return []Interval{r1}
	}
	shift2 := r2.Lo - FixedMod(r2.Lo, twoPi)
	r2 = Interval{r2.Lo - shift2, r2.Hi - shift2}

	var out []Interval
	for k := -1; k <= 2; k++ {
		off := float64(k) * twoPi
		lo := math.Max(r1.Lo, r2.Lo+off)
		hi := math.Min(r1.Hi, r2.Hi+off)
		if hi-lo > 1e-12 {
			out = append(out, Interval{lo, hi})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lo < out[j].Lo })
	return out
}

// PolarToRect converts (r, θ) to (x, y).
func PolarToRect(p Vec2) Vec2 {
	return Vec2{p.X * math.Cos(p.Y), p.X * math.Sin(p.Y)}
}

// RectToPolar converts (x, y) to (r, θ) with θ in (-π, π].
func RectToPolar(p Vec2) Vec2 {
	return Vec2{math.Hypot(p.X, p.Y), math.Atan2(p.Y, p.X)}
}

// PolarBasis returns (e_r, e_θ) at the polar point p.
func PolarBasis(p Vec2) (Vec2, Vec2) {
	c, s := math.Cos(p.Y), math.Sin(p.Y)
	return Vec2{c, s}, Vec2{-s, c}
}

// VecPolarToRect expresses v, given in the polar basis at p, in x/y components.
func VecPolarToRect(v, p Vec2) Vec2 {
	eR, eT := PolarBasis(p)
	return eR.Mul(v.X).Add(eT.Mul(v.Y))
}

// VecRectToPolar is the inverse of VecPolarToRect.
func VecRectToPolar(v, p Vec2) Vec2 {
	eR, eT := PolarBasis(p)
	return Vec2{v.Dot(eR), v.Dot(eT)}
}

// SphericalToRect converts (r, θ, φ) with θ the azimuth and φ measured from +z.
func SphericalToRect(p Vec3) Vec3 {
	r, th, ph := p.X, p.Y, p.Z
	return Vec3{
		r * math.Cos(th) * math.Sin(ph),
		r * math.Sin(th) * math.Sin(ph),
		r * math.Cos(ph),
	}
}

func RectToSpherical(p Vec3) Vec3 {
	r := p.Len()
	if r == 0 {
		return Vec3{}
	}
	return Vec3{r, math.Atan2(p.Y, p.X), math.Acos(p.Z / r)}
}

// SphericalBasis returns (e_r, e_θ, e_φ) at the spherical point p.
func SphericalBasis(p Vec3) (Vec3, Vec3, Vec3) {
	th, ph := p.Y, p.Z
	eR := SphericalToRect(Vec3{1, th, ph})
	eT := Vec3{-math.Sin(th), math.Cos(th), 0}
	eP := Vec3{math.Cos(th) * math.Cos(ph), math.Sin(th) * math.Cos(ph), -math.Sin(ph)}
	return eR, eT, eP
}

// CylindricalToRect converts (r, θ, z).
func CylindricalToRect(p Vec3) Vec3 {
	return Vec3{p.X * math.Cos(p.Y), p.X * math.Sin(p.Y), p.Z}
}

func RectToCylindrical(p Vec3) Vec3 {
	return Vec3{math.Hypot(p.X, p.Y), math.Atan2(p.Y, p.X), p.Z}
}

// Perp rotates v by +90°.
func Perp(v Vec2) Vec2 { return Vec2{-v.Y, v.X} }

// OrthProj projects u onto v. A vanishing v gives the zero vector.
func OrthProj(u, v Vec3) Vec3 {
	l := v.Len()
	if l < 1e-30 {
		return Vec3{}
	}
	return v.Mul(u.Dot(v) / (l * l))
}

// OrthComp is the part of u orthogonal to v.
func OrthComp(u, v Vec3) Vec3 { return u.Sub(OrthProj(u, v)) }

// ChooseNormVec returns a unit vector orthogonal to v, built from the axis
// least aligned with v.
func ChooseNormVec(v Vec3) Vec3 {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	var axis Vec3
	if ax <= math.Min(ay, az) {
		axis = I
	}
	if ay <= math.Min(az, ax) {
		axis = J
	}
	if az <= math.Min(ax, ay) {
		axis = K
	}
	return OrthComp(axis, v).Unit()
}

// Cross2D is k×v for k an out-of-plane scalar.
func Cross2D(k float64, v Vec2) Vec2 { return Vec2{-k * v.Y, k * v.X} }

// Vec2AtAngle is the unit vector at the given counterclockwise angle.
func Vec2AtAngle(rad float64) Vec2 { return Vec2{math.Cos(rad), math.Sin(rad)} }

// AngleOf returns the counterclockwise angle of v from +x in [0, 2π).
func AngleOf(v Vec2) float64 {
	a := math.Atan2(v.Y, v.X)
	if a < 0 {
		a += twoPi
	}
	return a
}

// AngleFrom is AngleOf(to) - AngleOf(from), in (-2π, 2π).
func AngleFrom(from, to Vec2) float64 { return AngleOf(to) - AngleOf(from) }

// CosLawAngle returns the angle opposite side c in a triangle with sides a, b, c.
func CosLawAngle(a, b, c float64) float64 {
	if a > 0 && b > 0 {
		return math.Acos(Clip((a*a+b*b-c*c)/(2*a*b), -1, 1))
	}
	return 0
}

// CosLawLength returns the side opposite angle C between sides a and b.
func CosLawLength(a, b, angleC float64) float64 {
	return math.Sqrt(a*a + b*b - 2*a*b*math.Cos(angleC))
}

func LinearInterp(x0, x1, alpha float64) float64 { return (1-alpha)*x0 + alpha*x1 }

// LinearDeinterp returns alpha with LinearInterp(x0, x1, alpha) == x.
func LinearDeinterp(x0, x1, x float64) float64 { return (x - x0) / (x1 - x0) }

// LinearMap maps x from [x0, x1] onto [y0, y1].
func LinearMap(x0, x1, y0, y1, x float64) float64 {
	return LinearInterp(y0, y1, LinearDeinterp(x0, x1, x))
}

func LinearInterpVec2(a, b Vec2, alpha float64) Vec2 { return a.Mul(1 - alpha).Add(b.Mul(alpha)) }
func LinearInterpVec3(a, b Vec3, alpha float64) Vec3 { return a.Mul(1 - alpha).Add(b.Mul(alpha)) }

// LinearInterpSlice interpolates element-wise up to the shorter length.
func LinearInterpSlice(a, b []float64, alpha float64) []float64 {
	n := min(len(a), len(b))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = LinearInterp(a[i], b[i], alpha)
	}
	return out
}

// Derivs holds a sampled value and its first two numerical derivatives.
type Derivs struct {
	X, DX, DDX []float64
}

// NumDiff differentiates f at t with a backward first difference and a
// centred second difference (step 1e-4).
func NumDiff(f func(t float64) []float64, t float64) Derivs {
	const eps = 1e-4
	x0, x1, x2 := f(t-eps), f(t), f(t+eps)
	n := min(len(x0), len(x1), len(x2))
	d := Derivs{X: append([]float64(nil), x1...), DX: make([]float64, n), DDX: make([]float64, n)}
	for i := 0; i < n; i++ {
		d.DX[i] = (x1[i] - x0[i]) / eps
		d.DDX[i] = (x2[i] - 2*x1[i] + x0[i]) / (eps * eps)
	}
	return d
}

// Offsets2Points accumulates offsets; the first offset is the start point.
func Offsets2Points(offsets []Vec2) []Vec2 {
	if len(offsets) == 0 {
		return nil
	}
	pts := make([]Vec2, len(offsets))
	pts[0] = offsets[0]
	for i := 1; i < len(offsets); i++ {
		pts[i] = pts[i-1].Add(offsets[i])
	}
	return pts
}

func RotatePoints(pts []Vec2, rad float64) []Vec2 {
	out := make([]Vec2, len(pts))
	for i, p := range pts {
		out[i] = p.Rotate(rad)
	}
	return out
}

func TranslatePoints(pts []Vec2, off Vec2) []Vec2 {
	out := make([]Vec2, len(pts))
	for i, p := range pts {
		out[i] = p.Add(off)
	}
	return out
}

// ScalePoints scales x and y independently.
func ScalePoints(pts []Vec2, s Vec2) []Vec2 {
	out := make([]Vec2, len(pts))
	for i, p := range pts {
		out[i] = Vec2{p.X * s.X, p.Y * s.Y}
	}
	return out
}
