/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Basic 2D/3D geometry and transforms for resolution-independent drawing.
// Values are float64 because drawing coordinates go through several
// transform round-trips per frame.

import "math"

// Vec2 is a 2D point or offset.
type Vec2 struct{ X, Y float64 }

// Vec3 is a 3D point or offset.
type Vec3 struct{ X, Y, Z float64 }

func V2(x, y float64) Vec2    { return Vec2{X: x, Y: y} }
func V3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

var (
	I = Vec3{X: 1}
	J = Vec3{Y: 1}
	K = Vec3{Z: 1}
)

func (v Vec2) Add(o Vec2) Vec2         { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2         { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Mul(k float64) Vec2      { return Vec2{v.X * k, v.Y * k} }
func (v Vec2) Neg() Vec2               { return Vec2{-v.X, -v.Y} }
func (v Vec2) Dot(o Vec2) float64      { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Len() float64            { return math.Hypot(v.X, v.Y) }
func (v Vec2) To3() Vec3               { return Vec3{v.X, v.Y, 0} }
func (v Vec2) Eq(o Vec2, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

// Unit returns v scaled to length one; the zero vector stays zero.
func (v Vec2) Unit() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Rotate turns v counterclockwise about the origin.
func (v Vec2) Rotate(rad float64) Vec2 {
	c, s := math.Cos(rad), math.Sin(rad)
	return Vec2{c*v.X - s*v.Y, s*v.X + c*v.Y}
}

// Max returns the component with the largest magnitude, keeping its sign.
func (v Vec2) Max() float64 {
	if math.Abs(v.Y) > math.Abs(v.X) {
		return v.Y
	}
	return v.X
}

// SupNorm is the largest absolute component.
func (v Vec2) SupNorm() float64 { return math.Abs(v.Max()) }

func (v Vec3) Add(o Vec3) Vec3    { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3    { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Mul(k float64) Vec3 { return Vec3{v.X * k, v.Y * k, v.Z * k} }
func (v Vec3) Neg() Vec3          { return Vec3{-v.X, -v.Y, -v.Z} }
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Len() float64       { return math.Sqrt(v.Dot(v)) }
func (v Vec3) XY() Vec2           { return Vec2{v.X, v.Y} }
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}
func (v Vec3) Eq(o Vec3, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps && math.Abs(v.Z-o.Z) <= eps
}

func (v Vec3) Unit() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Mul(1 / l)
}

func (v Vec3) Max() float64 {
	m := v.X
	if math.Abs(v.Y) > math.Abs(m) {
		m = v.Y
	}
	if math.Abs(v.Z) > math.Abs(m) {
		m = v.Z
	}
	return m
}

func (v Vec3) SupNorm() float64 { return math.Abs(v.Max()) }

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Min() Vec2 { return Vec2{r.X, r.Y} }
func (r Rect) Max() Vec2 { return Vec2{r.X + r.W, r.Y + r.H} }

func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Affine2D represents a 2D affine transform as matrix:
// | a c e |
// | b d f |
// | 0 0 1 |
// stored as [a b c d e f].
type Affine2D struct{ A, B, C, D, E, F float64 }

var Identity = Affine2D{A: 1, D: 1}

// Mul returns m·n, so n is applied first.
func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Apply maps a position (homogeneous coordinate 1).
func (m Affine2D) Apply(p Vec2) Vec2 {
	return Vec2{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// ApplyVec maps a direction (homogeneous coordinate 0), ignoring translation.
func (m Affine2D) ApplyVec(v Vec2) Vec2 {
	return Vec2{
		X: m.A*v.X + m.C*v.Y,
		Y: m.B*v.X + m.D*v.Y,
	}
}

func (m Affine2D) Det() float64 { return m.A*m.D - m.B*m.C }

// IsReflection reports whether the transform flips orientation.
func (m Affine2D) IsReflection() bool { return m.Det() < 0 }

// Inverse returns the inverse transform. A singular matrix yields Identity.
func (m Affine2D) Inverse() Affine2D {
	det := m.Det()
	if det == 0 {
		return Identity
	}
	ia := m.D / det
	ib := -m.B / det
	ic := -m.C / det
	id := m.A / det
	return Affine2D{
		A: ia, B: ib, C: ic, D: id,
		E: -(ia*m.E + ic*m.F),
		F: -(ib*m.E + id*m.F),
	}
}

func Translate(tx, ty float64) Affine2D { return Affine2D{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float64) Affine2D     { return Affine2D{A: sx, D: sy} }
func Rotate(rad float64) Affine2D {
	c := math.Cos(rad)
	s := math.Sin(rad)
	return Affine2D{A: c, B: s, C: -s, D: c}
}

// ByPoints returns the similarity (translate, rotate, uniform scale) taking
// old1 to new1 and old2 to new2.
func ByPoints(old1, old2, new1, new2 Vec2) Affine2D {
	oldMid := old1.Add(old2).Mul(0.5)
	newMid := new1.Add(new2).Mul(0.5)
	oldDelta := old2.Sub(old1)
	newDelta := new2.Sub(new1)
	factor := 1.0
	if l := oldDelta.Len(); l > 0 {
		factor = newDelta.Len() / l
	}
	angle := AngleOf(newDelta) - AngleOf(oldDelta)
	return Translate(newMid.X, newMid.Y).
		Mul(Rotate(angle)).
		Mul(Scale(factor, factor)).
		Mul(Translate(-oldMid.X, -oldMid.Y))
}

// Affine3D is a 3D affine map p -> M·p + T.
type Affine3D struct {
	M [3][3]float64
	T Vec3
}

var Identity3D = Affine3D{M: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}

func (m Affine3D) Mul(n Affine3D) Affine3D {
	var r Affine3D
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.M[i][j] = m.M[i][0]*n.M[0][j] + m.M[i][1]*n.M[1][j] + m.M[i][2]*n.M[2][j]
		}
	}
	r.T = m.ApplyVec(n.T).Add(m.T)
	return r
}

func (m Affine3D) Apply(p Vec3) Vec3 { return m.ApplyVec(p).Add(m.T) }

func (m Affine3D) ApplyVec(v Vec3) Vec3 {
	return Vec3{
		X: m.M[0][0]*v.X + m.M[0][1]*v.Y + m.M[0][2]*v.Z,
		Y: m.M[1][0]*v.X + m.M[1][1]*v.Y + m.M[1][2]*v.Z,
		Z: m.M[2][0]*v.X + m.M[2][1]*v.Y + m.M[2][2]*v.Z,
	}
}

func (m Affine3D) Det() float64 {
	a := m.M
	return a[0][0]*(a[1][1]*a[2][2]-a[1][2]*a[2][1]) -
		a[0][1]*(a[1][0]*a[2][2]-a[1][2]*a[2][0]) +
		a[0][2]*(a[1][0]*a[2][1]-a[1][1]*a[2][0])
}

// Inverse returns the inverse map. A singular matrix yields Identity3D.
func (m Affine3D) Inverse() Affine3D {
	det := m.Det()
	if det == 0 {
		return Identity3D
	}
	a := m.M
	var r Affine3D
	r.M[0][0] = (a[1][1]*a[2][2] - a[1][2]*a[2][1]) / det
	r.M[0][1] = (a[0][2]*a[2][1] - a[0][1]*a[2][2]) / det
	r.M[0][2] = (a[0][1]*a[1][2] - a[0][2]*a[1][1]) / det
	r.M[1][0] = (a[1][2]*a[2][0] - a[1][0]*a[2][2]) / det
	r.M[1][1] = (a[0][0]*a[2][2] - a[0][2]*a[2][0]) / det
	r.M[1][2] = (a[0][2]*a[1][0] - a[0][0]*a[1][2]) / det
	r.M[2][0] = (a[1][0]*a[2][1] - a[1][1]*a[2][0]) / det
	r.M[2][1] = (a[0][1]*a[2][0] - a[0][0]*a[2][1]) / det
	r.M[2][2] = (a[0][0]*a[1][1] - a[0][1]*a[1][0]) / det
	r.T = r.ApplyVec(m.T).Neg()
	return r
}

func Scale3D(k float64) Affine3D {
	return Affine3D{M: [3][3]float64{{k, 0, 0}, {0, k, 0}, {0, 0, k}}}
}

func Translate3D(t Vec3) Affine3D {
	m := Identity3D
	m.T = t
	return m
}

func RotateX(rad float64) Affine3D {
	c, s := math.Cos(rad), math.Sin(rad)
	return Affine3D{M: [3][3]float64{{1, 0, 0}, {0, c, -s}, {0, s, c}}}
}

func RotateY(rad float64) Affine3D {
	c, s := math.Cos(rad), math.Sin(rad)
	return Affine3D{M: [3][3]float64{{c, 0, s}, {0, 1, 0}, {-s, 0, c}}}
}

func RotateZ(rad float64) Affine3D {
	c, s := math.Cos(rad), math.Sin(rad)
	return Affine3D{M: [3][3]float64{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}}
}

// Rotate3D composes Rx·Ry·Rz, so the Z rotation is applied to points first.
func Rotate3D(ax, ay, az float64) Affine3D {
	return RotateX(ax).Mul(RotateY(ay)).Mul(RotateZ(az))
}

// FloatRound rounds v to n decimal places deterministically.
func FloatRound(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
