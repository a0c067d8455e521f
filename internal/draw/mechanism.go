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

// Mechanical elements. Each is built as a path in a local pixel frame
// whose x axis runs along the element, then moved into place.

// localFrame returns the start point in pixels, the element length and
// half-width in pixels, and the local-to-pixel transform.
func (d *Drawer) localFrame(start, end vector.Vec2, width float64) (length, r float64, m vector.Affine2D) {
	offLen := end.Sub(start)
	offWidth := offLen.Rotate(math.Pi / 2).Unit().Mul(width)
	s := d.Pos2Px(start)
	lenPx := d.Vec2Px(offLen)
	length = lenPx.Len()
	r = d.Vec2Px(offWidth).Len() / 2
	m = vector.Translate(s.X, s.Y).Mul(vector.Rotate(vector.AngleOf(lenPx)))
	return length, r, m
}

func (d *Drawer) fillAndStroke(p vector.Path) {
	d.s.FillPath(p, fill(d.inside()))
	d.s.StrokePath(p, d.shapeStroke(d.outline()))
}

// Rod draws a bar with rounded ends centered on start and end.
func (d *Drawer) Rod(start, end vector.Vec2, width float64) {
	l, r, m := d.localFrame(start, end, width)
	var p vector.Path
	p.MoveTo(0, r)
	p.ArcTo(l+r, r, l+r, -r, r)
	p.ArcTo(l+r, -r, 0, -r, r)
	p.ArcTo(-r, -r, -r, r, r)
	p.ArcTo(-r, r, 0, r, r)
	p = p.Transform(m)
	if d.props.ShapeInsideColor != "none" {
		d.s.FillPath(p, fill(d.inside()))
	}
	d.s.StrokePath(p, d.shapeStroke(d.outline()))
}

// CustomRod is a rod rounded only at end; the start is cut square and
// left open.
func (d *Drawer) CustomRod(start, end vector.Vec2, width float64) {
	l, r, m := d.localFrame(start, end, width)
	var p vector.Path
	p.MoveTo(0, r)
	p.ArcTo(l+r, r, l+r, -r, r)
	p.ArcTo(l+r, -r, 0, -r, r)
	p.LineTo(0, -r)
	d.fillAndStroke(p.Transform(m))
}

// wiperBladePx is the thickness of the wiper blade.
const wiperBladePx = 5

// Wiper draws a rod hinged at start ending in a blade of wiperLen across.
func (d *Drawer) Wiper(start, end vector.Vec2, width, wiperLen float64) {
	l, r, m := d.localFrame(start, end, width)
	wl := d.Vec2Px(end.Sub(start).Rotate(math.Pi / 2).Unit().Mul(wiperLen)).Len()
	half := (wl - 4*r) / 2
	var p vector.Path
	p.MoveTo(0, r)
	p.LineTo(l, r)
	p.ArcTo(l, 2*r, l+r, 2*r, r)
	p.LineTo(l+r, 2*r+half)
	p.LineTo(l+r+wiperBladePx, 2*r+half)
	p.LineTo(l+r+wiperBladePx, -2*r-half)
	p.LineTo(l+r, -2*r-half)
	p.LineTo(l+r, -2*r)
	p.ArcTo(l, -2*r, l, -r, r)
	p.ArcTo(-r, -r, -r, r, r)
	p.ArcTo(-r, r, 0, r, r)
	d.fillAndStroke(p.Transform(m))
}

// Pivot draws a closed support running from base to a rounded hinge.
func (d *Drawer) Pivot(base, hinge vector.Vec2, width float64) {
	l, r, m := d.localFrame(base, hinge, width)
	var p vector.Path
	p.MoveTo(0, r)
	p.ArcTo(l+r, r, l+r, -r, r)
	p.ArcTo(l+r, -r, 0, -r, r)
	p.LineTo(0, -r)
	p.Close()
	d.fillAndStroke(p.Transform(m))
}

// Square draws a square with one edge midpoint at base and its center at
// center.
func (d *Drawer) Square(base, center vector.Vec2) {
	b := d.Pos2Px(base)
	off := d.Pos2Px(center).Sub(b)
	r := off.Len()
	var p vector.Path
	p.Rect(0, -r, 2*r, 2*r)
	m := vector.Translate(b.X, b.Y).Mul(vector.Rotate(vector.AngleOf(off)))
	d.fillAndStroke(p.Transform(m))
}

// Rectangle draws a w by h rectangle centered at center, rotated by angle.
func (d *Drawer) Rectangle(w, h float64, center vector.Vec2, angle float64, filled bool) {
	pts := []vector.Vec2{
		{X: -w / 2, Y: -h / 2},
		{X: w / 2, Y: -h / 2},
		{X: w / 2, Y: h / 2},
		{X: -w / 2, Y: h / 2},
	}
	d.Save()
	d.Translate(center)
	d.Rotate(angle)
	d.PolyLine(pts, true, filled, true)
	d.Restore()
}

// RectangleGeneric draws the rectangle with edge p1-p2 extended h to the
// left of that edge.
func (d *Drawer) RectangleGeneric(p1, p2 vector.Vec2, h float64) {
	off := vector.Perp(p2.Sub(p1)).Unit().Mul(h)
	d.PolyLine([]vector.Vec2{p1, p2, p2.Add(off), p1.Add(off)}, true, true, true)
}

// Ground draws a shaded ground strip of the given length whose surface
// faces along norm.
func (d *Drawer) Ground(pos, norm vector.Vec2, length float64) {
	tangent := norm.Rotate(math.Pi / 2).Unit().Mul(length)
	p := d.Pos2Px(pos)
	l := d.Vec2Px(tangent).Len()
	depth := math.Min(l, d.props.GroundDepthPx)
	m := vector.Translate(p.X, p.Y).Mul(vector.Rotate(vector.AngleOf(d.Vec2Px(norm)) - math.Pi/2))

	var body vector.Path
	body.Rect(-l/2, -depth, l, depth)
	d.s.FillPath(body.Transform(m), fill(d.parseColor(d.props.GroundInsideColor)))

	surface := segment(vector.V2(-l/2, 0), vector.V2(l/2, 0))
	d.s.StrokePath(surface.Transform(m), d.shapeStroke(d.parseColor(d.props.GroundOutlineColor)))
}

// GroundHashed draws a ground line with diagonal hatching. offset shifts
// the hatch phase along the surface, in drawing units.
func (d *Drawer) GroundHashed(pos, norm vector.Vec2, length, offset float64) {
	tangent := norm.Rotate(math.Pi / 2).Unit().Mul(length)
	p := d.Pos2Px(pos)
	l := d.Vec2Px(tangent).Len()
	offPx := d.Vec2Px(tangent.Unit().Mul(offset)).Len() * vector.Sign(offset)
	m := vector.Translate(p.X, p.Y).Mul(vector.Rotate(vector.AngleOf(d.Vec2Px(norm)) + math.Pi/2))
	st := d.shapeStroke(d.parseColor(d.props.GroundOutlineColor))

	var path vector.Path
	path.MoveTo(-l/2, 0)
	path.LineTo(l/2, 0)
	spacing := d.props.GroundSpacingPx
	hatch := func(x float64) {
		path.MoveTo(x, 0)
		path.LineTo(x-d.props.GroundWidthPx, d.props.GroundDepthPx)
	}
	startX := math.Mod(offPx, spacing)
	for x := startX; x < l/2; x += spacing {
		hatch(x)
	}
	for x := startX - spacing; x > -l/2; x -= spacing {
		hatch(x)
	}
	d.s.StrokePath(path.Transform(m), st)
}

// ArcGround draws ground along a circular arc, shaded outside the circle
// when outside is set and inside otherwise.
func (d *Drawer) ArcGround(center vector.Vec2, r, start, end float64, outside bool) {
	c := d.Pos2Px(center)
	rPx := d.Vec2Px(vector.V2(r, 0)).Len()
	depth := math.Min(rPx, d.props.GroundDepthPx)
	if !outside {
		depth = -depth
	}
	var body vector.Path
	body.Arc(c.X, c.Y, rPx, -end, -start, false)
	body.Arc(c.X, c.Y, rPx+depth, -start, -end, true)
	d.s.FillPath(body, fill(d.parseColor(d.props.GroundInsideColor)))

	var surface vector.Path
	surface.Arc(c.X, c.Y, rPx, -end, -start, false)
	d.s.StrokePath(surface, d.shapeStroke(d.parseColor(d.props.GroundOutlineColor)))
}

// CenterOfMass draws a crossed circle marker.
func (d *Drawer) CenterOfMass(pos vector.Vec2) {
	p := d.Pos2Px(pos)
	r := d.props.CenterOfMassRadiusPx
	st := stroke(d.parseColor(d.props.CenterOfMassColor), d.props.CenterOfMassStrokeWidthPx, nil)
	d.s.StrokePath(segment(p.Add(vector.V2(-r, 0)), p.Add(vector.V2(r, 0))), st)
	d.s.StrokePath(segment(p.Add(vector.V2(0, -r)), p.Add(vector.V2(0, r))), st)
	d.s.StrokePath(circlePath(p, r), st)
}

// Measurement draws a dimension line offset from start-end with end ticks
// and a centered label. A zero norm offsets to the left of the segment in
// pixel space.
func (d *Drawer) Measurement(start, end vector.Vec2, text string, norm vector.Vec2) {
	s := d.Pos2Px(start)
	e := d.Pos2Px(end)
	var n vector.Vec2
	if norm == (vector.Vec2{}) {
		n = e.Sub(s).Rotate(math.Pi / 2)
	} else {
		n = d.Vec2Px(norm)
	}
	n = n.Unit()
	h := d.props.MeasurementEndLengthPx
	o := d.props.MeasurementOffsetPx
	ls := s.Add(n.Mul(o + h/2))
	le := e.Add(n.Mul(o + h/2))
	st := stroke(d.parseColor(d.props.MeasurementColor), d.props.MeasurementStrokeWidthPx,
		d.dash(d.props.MeasurementStrokePattern))
	d.s.StrokePath(segment(ls, le), st)
	tick := n.Mul(h / 2)
	d.s.StrokePath(segment(ls.Sub(tick), ls.Add(tick)), st)
	d.s.StrokePath(segment(le.Sub(tick), le.Add(tick)), st)
	d.LabelLine(d.Pos2Dw(ls), d.Pos2Dw(le), vector.V2(0, -1), text)
}

func (d *Drawer) Measurement3D(start, end vector.Vec3, text string, norm vector.Vec3) {
	var n vector.Vec2
	if norm != (vector.Vec3{}) {
		n = d.Vec3To2(norm, start)
	}
	d.Measurement(d.Pos3To2(start), d.Pos3To2(end), text, n)
}

func (d *Drawer) rightAngleStroke() vector.Stroke {
	return stroke(d.parseColor(d.props.RightAngleColor), d.props.RightAngleStrokeWidthPx, nil)
}

func (d *Drawer) strokeCorner(p, a, b vector.Vec2) {
	var path vector.Path
	path.MoveTo(p.X+a.X, p.Y+a.Y)
	path.LineTo(p.X+a.X+b.X, p.Y+a.Y+b.Y)
	path.LineTo(p.X+b.X, p.Y+b.Y)
	d.s.StrokePath(path, d.rightAngleStroke())
}

// RightAngle marks a right angle at pos between dir and norm. A zero norm
// means dir turned clockwise on screen.
func (d *Drawer) RightAngle(pos, dir, norm vector.Vec2) {
	if dir.Len() < 1e-20 {
		return
	}
	size := d.props.RightAngleSizePx
	dirPx := d.Vec2Px(dir).Unit().Mul(size)
	var normPx vector.Vec2
	if norm == (vector.Vec2{}) {
		normPx = dirPx.Rotate(-math.Pi / 2)
	} else {
		normPx = d.Vec2Px(norm).Unit().Mul(size)
	}
	d.strokeCorner(d.Pos2Px(pos), dirPx, normPx)
}

func (d *Drawer) RightAngle3D(pos, dir, norm vector.Vec3) {
	if dir.Len() < 1e-20 {
		return
	}
	l := Vec2To3(d.Vec2Dw(vector.V2(d.props.RightAngleSizePx, 0))).Len()
	dirPx := d.Vec2Px(d.Vec3To2(dir.Unit().Mul(l), pos))
	normPx := d.Vec2Px(d.Vec3To2(norm.Unit().Mul(l), pos))
	d.strokeCorner(d.Pos2Px(d.Pos3To2(pos)), dirPx, normPx)
}

// RightAngleImproved marks the corner at p0 of the angle p1-p0-p2, sized
// to fit the shorter leg.
func (d *Drawer) RightAngleImproved(p0, p1, p2 vector.Vec2) {
	q0 := d.Pos2Px(p0)
	d1 := d.Pos2Px(p1).Sub(q0)
	d2 := d.Pos2Px(p2).Sub(q0)
	minLen := math.Min(d1.Len(), d2.Len())
	if minLen < 1e-10 {
		return
	}
	size := math.Min(minLen/2, d.props.RightAngleSizePx)
	d.strokeCorner(q0, d1.Unit().Mul(size), d2.Unit().Mul(size))
}

func (d *Drawer) RightAngleImproved3D(p0, p1, p2 vector.Vec3) {
	d.RightAngleImproved(d.Pos3To2(p0), d.Pos3To2(p1), d.Pos3To2(p2))
}
