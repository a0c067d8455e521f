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
	"testing"
)

const eps = 1e-9

func TestRectContainsAndUnion(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Vec2{10, 20}) || !r.Contains(Vec2{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	u := r.Union(R(0, 0, 5, 5))
	if u.X != 0 || u.Y != 0 || u.W != 110 || u.H != 70 {
		t.Fatalf("unexpected union: %+v", u)
	}
}

func TestAffineBasic(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	p := m.Apply(Vec2{1, 1})
	if p.X != 12 || p.Y != 8 { // (1*2+10, 1*3+5)
		t.Fatalf("unexpected transform result: %+v", p)
	}
	v := m.ApplyVec(Vec2{1, 1})
	if v.X != 2 || v.Y != 3 {
		t.Fatalf("vectors must ignore translation: %+v", v)
	}
}

func TestAffineInverseRoundTrip(t *testing.T) {
	m := Translate(3, -4).Mul(Rotate(0.7)).Mul(Scale(2, -5))
	q := m.Inverse().Apply(m.Apply(Vec2{1.5, -2.25}))
	if !q.Eq(Vec2{1.5, -2.25}, eps) {
		t.Fatalf("round trip failed: %+v", q)
	}
	if !m.IsReflection() {
		t.Fatalf("negative scale should be a reflection")
	}
	if Translate(1, 1).Mul(Rotate(2)).IsReflection() {
		t.Fatalf("rotation is not a reflection")
	}
}

func TestByPointsQuarterTurn(t *testing.T) {
	m := ByPoints(Vec2{0, 0}, Vec2{1, 0}, Vec2{0, 0}, Vec2{0, 1})
	if got := m.Apply(Vec2{1, 0}); !got.Eq(Vec2{0, 1}, eps) {
		t.Fatalf("old2 should land on new2, got %+v", got)
	}
	if got := m.Apply(Vec2{0, 0}); !got.Eq(Vec2{0, 0}, eps) {
		t.Fatalf("old1 should land on new1, got %+v", got)
	}
	if math.Abs(m.Det()-1) > eps {
		t.Fatalf("expected no scale change, det=%v", m.Det())
	}
}

func TestByPointsScales(t *testing.T) {
	m := ByPoints(Vec2{1, 1}, Vec2{2, 1}, Vec2{0, 0}, Vec2{-3, 0})
	if got := m.Apply(Vec2{2, 1}); !got.Eq(Vec2{-3, 0}, 1e-9) {
		t.Fatalf("got %+v", got)
	}
	if got := m.Apply(Vec2{1, 1}); !got.Eq(Vec2{0, 0}, 1e-9) {
		t.Fatalf("got %+v", got)
	}
}

func TestAffine3DRotationsAndInverse(t *testing.T) {
	if got := RotateZ(math.Pi / 2).Apply(I); !got.Eq(J, eps) {
		t.Fatalf("Rz(90) i -> %+v", got)
	}
	if got := RotateX(math.Pi / 2).Apply(J); !got.Eq(K, eps) {
		t.Fatalf("Rx(90) j -> %+v", got)
	}
	if got := RotateY(math.Pi / 2).Apply(K); !got.Eq(I, eps) {
		t.Fatalf("Ry(90) k -> %+v", got)
	}
	m := Rotate3D(0.3, -1.1, 2.0).Mul(Scale3D(2)).Mul(Translate3D(Vec3{1, 2, 3}))
	p := Vec3{-0.5, 4, 9}
	if got := m.Inverse().Apply(m.Apply(p)); !got.Eq(p, 1e-9) {
		t.Fatalf("3D round trip: %+v", got)
	}
	if got := m.ApplyVec(Vec3{}); !got.Eq(Vec3{}, eps) {
		t.Fatalf("vectors must ignore translation: %+v", got)
	}
}

func TestVecHelpers(t *testing.T) {
	if got := (Vec2{3, -4}).Max(); got != -4 {
		t.Fatalf("Max keeps sign, got %v", got)
	}
	if got := (Vec3{1, -2, 0.5}).SupNorm(); got != 2 {
		t.Fatalf("SupNorm = %v", got)
	}
	if got := (Vec2{}).Unit(); got != (Vec2{}) {
		t.Fatalf("zero unit = %+v", got)
	}
	if got := I.Cross(J); !got.Eq(K, eps) {
		t.Fatalf("i x j = %+v", got)
	}
}
