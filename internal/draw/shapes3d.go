/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package draw

import (
	"math"

	"prairiedraw/internal/vector"
)

// ArcOpts controls Arc3D. Zero values select the defaults.
type ArcOpts struct {
	Norm vector.Vec3 // circle normal, k when zero
	Ref  vector.Vec3 // direction of angle 0, chosen from Norm when zero
	// Span limits the arc to [Lo, Hi] radians. Nil draws the full circle
	// as a closed path.
	Span        *vector.Interval
	Filled      bool
	NoStroke    bool
	SegmentSize float64 // 2π/40 when <= 0
}

// circleFrame returns the in-plane unit vectors u (angle 0) and v (angle
// π/2) for a circle with normal norm.
func circleFrame(norm, ref vector.Vec3) (u, v vector.Vec3) {
	u = vector.OrthComp(ref, norm).Unit()
	v = norm.Unit().Cross(u)
	return u, v
}

func circlePoint(pos, u, v vector.Vec3, r, theta float64) vector.Vec3 {
	return pos.Add(u.Mul(r * math.Cos(theta))).Add(v.Mul(r * math.Sin(theta)))
}

func (d *Drawer) arcPoints3D(pos, u, v vector.Vec3, r, start, end, seg float64) []vector.Vec2 {
	n := int(math.Ceil(math.Abs(end-start) / seg))
	pts := make([]vector.Vec2, 0, n+1)
	for i := 0; i <= n; i++ {
		t := 0.0
		if n > 0 {
			t = float64(i) / float64(n)
		}
		pts = append(pts, d.Pos3To2(circlePoint(pos, u, v, r, vector.LinearInterp(start, end, t))))
	}
	return pts
}

// Arc3D draws a circle or circular arc of radius rad about pos.
func (d *Drawer) Arc3D(pos vector.Vec3, rad float64, o ArcOpts) {
	norm := o.Norm
	if norm == (vector.Vec3{}) {
		norm = vector.K
	}
	ref := o.Ref
	if ref == (vector.Vec3{}) {
		ref = vector.ChooseNormVec(norm)
	}
	seg := o.SegmentSize
	if seg <= 0 {
		seg = 2 * math.Pi / 40
	}
	start, end := 0.0, 2*math.Pi
	if o.Span != nil {
		start, end = o.Span.Lo, o.Span.Hi
	}
	u, v := circleFrame(norm, ref)
	pts := d.arcPoints3D(pos, u, v, rad, start, end, seg)
	full := o.Span == nil
	if full {
		pts = pts[:len(pts)-1]
	}
	d.PolyLine(pts, full, o.Filled, !o.NoStroke)
}

// CircleArrow3D draws a fixed-radius arc arrow in the plane normal to
// norm (k when zero), measuring angles from ref (i when zero).
func (d *Drawer) CircleArrow3D(pos vector.Vec3, rad float64, norm, ref vector.Vec3, start, end float64, typ string, segSize float64) {
	if norm == (vector.Vec3{}) {
		norm = vector.K
	}
	if ref == (vector.Vec3{}) {
		ref = vector.I
	}
	if segSize <= 0 {
		segSize = 2 * math.Pi / 40
	}
	u, v := circleFrame(norm, ref)
	d.PolyLineArrow(d.arcPoints3D(pos, u, v, rad, start, end, segSize), typ)
}

// LabelCircleLine3D places text beside a 3D arc. anchor.X in [-1, 1]
// slides along the arc from start to end; anchor.Y pushes outwards
// (positive) or inwards.
func (d *Drawer) LabelCircleLine3D(text string, anchor vector.Vec2, pos vector.Vec3, rad float64, norm, ref vector.Vec3, start, end float64) {
	if text == "" {
		return
	}
	if norm == (vector.Vec3{}) {
		norm = vector.K
	}
	if ref == (vector.Vec3{}) {
		ref = vector.I
	}
	u, v := circleFrame(norm, ref)
	theta := vector.LinearInterp(start, end, (anchor.X+1)/2)
	p := circlePoint(pos, u, v, rad, theta)
	t3 := u.Mul(-math.Sin(theta)).Add(v.Mul(math.Cos(theta)))
	n3 := u.Mul(math.Cos(theta)).Add(v.Mul(math.Sin(theta)))
	t2 := d.Vec2Px(d.Vec3To2(t3, p))
	n2 := d.Vec2Px(d.Vec3To2(n3, p))
	n2 = vector.OrthComp(n2.To3(), t2.To3()).XY().Unit()
	t2 = t2.Unit()
	off := t2.Mul(anchor.X).Add(n2.Mul(anchor.Y))
	a := d.Vec2Dw(off).Neg().Unit()
	d.Text(d.Pos3To2(p), scaleAnchor(a, anchor), text, false)
}

// scaleAnchor stretches unit direction a so its largest component matches
// the largest component of ref in magnitude.
func scaleAnchor(a, ref vector.Vec2) vector.Vec2 {
	m := a.SupNorm()
	if m == 0 {
		return a
	}
	return a.Mul(ref.SupNorm() / m)
}

// Sphere draws the outline of a sphere as seen from the current view.
func (d *Drawer) Sphere(pos vector.Vec3, rad float64, filled bool) {
	pv := d.PosDwToVw(pos)
	rv := d.PosDwToVw(pos.Add(vector.V3(rad, 0, 0))).Sub(pv).Len()
	d.Circle(pv.XY(), rv, filled)
}

// SliceOpts controls SphereSlice.
type SliceOpts struct {
	NoBack  bool
	NoFront bool
	Ref     vector.Vec3 // angle 0 direction; derived from the view when zero
	// Span limits the drawn part of the slice. Nil draws all of it.
	Span *vector.Interval
}

// SphereSlice draws the circle cut from the sphere (pos, rad) by the plane
// normal to norm at signed distance dist from the center. The half facing
// away from the viewer uses the hidden line style, and only when
// hiddenLineDraw is set.
func (d *Drawer) SphereSlice(pos vector.Vec3, rad float64, norm vector.Vec3, dist float64, o SliceOpts) {
	cr2 := rad*rad - dist*dist
	if cr2 <= 0 {
		return
	}
	cr := math.Sqrt(cr2)
	cpos := pos.Add(norm.Unit().Mul(dist))
	normVw := d.VecDwToVw(norm)
	arc := func(span *vector.Interval, ref vector.Vec3) {
		d.Arc3D(cpos, cr, ArcOpts{Norm: norm, Ref: ref, Span: span})
	}
	hidden := func(span *vector.Interval, ref vector.Vec3) {
		d.Save()
		d.SetShapeDrawHidden()
		arc(span, ref)
		d.Restore()
	}
	back := !o.NoBack && d.props.HiddenLineDraw

	if vector.OrthComp(vector.K, normVw).Len() < 1e-10 {
		// Viewed along the normal. A great circle (dist 0) is the sphere
		// outline itself and is skipped.
		if dist > 0 && !o.NoFront {
			arc(o.Span, o.Ref)
		} else if dist < 0 && back {
			hidden(o.Span, o.Ref)
		}
		return
	}
	ref := o.Ref
	if ref == (vector.Vec3{}) {
		ref = d.VecVwToDw(vector.OrthComp(vector.K, normVw))
	}
	uVw := d.VecDwToVw(ref).Unit()
	vVw := normVw.Unit().Cross(uVw)
	dVw := d.VecDwToVw(norm.Unit().Mul(dist))
	crVw := d.VecDwToVw(ref.Unit().Mul(cr)).Len()
	a := -dVw.Z
	b := uVw.Z * crVw
	c := vVw.Z * crVw
	an := a / math.Hypot(b, c)
	phi := math.Atan2(c, b)
	switch {
	case an <= -1:
		if !o.NoFront {
			arc(o.Span, ref)
		}
	case an >= 1:
		if back {
			hidden(o.Span, ref)
		}
	default:
		acos := math.Acos(an)
		t1 := phi + acos
		t2 := phi + 2*math.Pi - acos
		pieces := func(r vector.Interval) []vector.Interval {
			if o.Span == nil {
				return []vector.Interval{r}
			}
			return vector.IntersectAngleRanges(r, *o.Span)
		}
		if back && t2 > t1 {
			d.Save()
			d.SetShapeDrawHidden()
			for _, r := range pieces(vector.Interval{Lo: t1, Hi: t2}) {
				arc(&r, ref)
			}
			d.Restore()
		}
		if !o.NoFront {
			for _, r := range pieces(vector.Interval{Lo: t2, Hi: t1 + 2*math.Pi}) {
				arc(&r, ref)
			}
		}
	}
}

// CylinderOpts selects which parts of a cylinder are drawn.
type CylinderOpts struct {
	StrokeBottomBack  bool
	StrokeBottomFront bool
	StrokeSides       bool
	StrokeTop         bool
	FillFront         bool
	FillTop           bool
	NumSegments       int     // segments per half turn
	TopInnerRadius    float64 // draws the top as a ring when > 0
}

// DefaultCylinderOpts draws every part with 20 segments per half turn.
func DefaultCylinderOpts() CylinderOpts {
	return CylinderOpts{
		StrokeBottomBack:  true,
		StrokeBottomFront: true,
		StrokeSides:       true,
		StrokeTop:         true,
		FillFront:         true,
		FillTop:           true,
		NumSegments:       20,
	}
}

// Cylinder draws a cylinder from base along center with radius rad. It
// returns the drawing-space offset from the axis to the silhouette edge,
// and false when the cylinder is seen end-on and nothing was drawn. Seen
// exactly side-on, the offset is returned but nothing is drawn.
func (d *Drawer) Cylinder(base, center vector.Vec3, rad float64, o CylinderOpts) (vector.Vec3, bool) {
	if o.NumSegments <= 0 {
		o.NumSegments = 20
	}
	centerVw := d.VecDwToVw(center)
	if centerVw.Dot(vector.K) < 0 {
		base = base.Add(center)
		center = center.Neg()
		centerVw = centerVw.Neg()
	}
	baseVw := d.PosDwToVw(base)
	top := base.Add(center)
	radVw := d.PosDwToVw(base.Add(vector.ChooseNormVec(center).Mul(rad))).Sub(baseVw).Len()
	offVw := centerVw.Cross(vector.K)
	if offVw.Len() < 1e-10 {
		return vector.Vec3{}, false
	}
	offVw = offVw.Unit().Mul(radVw)
	offDw := d.VecVwToDw(offVw)
	if math.Abs(centerVw.Dot(vector.K)) < 1e-10 {
		return offDw, true
	}

	u, v := circleFrame(center, offDw)
	arcPts := func(at vector.Vec3, r, a0, a1 float64) []vector.Vec2 {
		n := int(math.Ceil(float64(o.NumSegments) * math.Abs(a1-a0) / math.Pi))
		pts := make([]vector.Vec2, 0, n+1)
		for i := 0; i <= n; i++ {
			th := vector.LinearInterp(a0, a1, float64(i)/float64(n))
			pts = append(pts, d.Pos3To2(circlePoint(at, u, v, r, th)))
		}
		return pts
	}
	bottomBack := arcPts(base, rad, 0, math.Pi)
	bottomFront := arcPts(base, rad, math.Pi, 2*math.Pi)
	topBack := arcPts(top, rad, 0, math.Pi)
	topFront := arcPts(top, rad, math.Pi, 2*math.Pi)
	topFrontRev := arcPts(top, rad, 2*math.Pi, math.Pi)
	topPts := arcPts(top, rad, 0, 2*math.Pi)
	topPts = topPts[:len(topPts)-1]
	outline := append(append([]vector.Vec2{}, topBack...), bottomFront...)
	frontOutline := append(append([]vector.Vec2{}, topFrontRev...), bottomFront...)
	var topSub [][]vector.Vec2
	if o.TopInnerRadius > 0 {
		topSub = append(topSub, arcPts(top, o.TopInnerRadius, 0, 2*math.Pi))
	}

	if o.StrokeBottomBack {
		d.PolyLine(bottomBack, false, true, true)
	}
	switch {
	case o.FillFront && o.FillTop:
		d.PolyLine(outline, true, true, false, topSub...)
	case o.FillFront:
		d.PolyLine(frontOutline, true, true, false)
	case o.FillTop:
		d.PolyLine(topPts, true, true, false, topSub...)
	}
	if o.StrokeBottomFront {
		d.PolyLine(bottomFront, false, false, true)
	}
	if o.StrokeTop {
		d.PolyLine(topPts, true, false, true)
	}
	if o.StrokeSides {
		d.Line(topBack[0], bottomBack[0], "")
		d.Line(topFront[0], bottomFront[0], "")
	}
	return offDw, true
}
