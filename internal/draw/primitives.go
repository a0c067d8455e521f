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

// Point draws a dot of pointRadiusPx in the outline color.
func (d *Drawer) Point(pos vector.Vec2) {
	p := d.Pos2Px(pos)
	d.s.FillPath(circlePath(p, d.props.PointRadiusPx), fill(d.outline()))
}

func (d *Drawer) Point3D(pos vector.Vec3) { d.Point(d.Pos3To2(pos)) }

// Line strokes a segment with the shape stroke in the color for typ.
func (d *Drawer) Line(start, end vector.Vec2, typ string) {
	d.s.StrokePath(segment(d.Pos2Px(start), d.Pos2Px(end)), d.shapeStroke(d.color(typ)))
}

func (d *Drawer) Line3D(start, end vector.Vec3, typ string) {
	d.Line(d.Pos3To2(start), d.Pos3To2(end), typ)
}

// minPx is the smallest pixel length a direction is derived from.
const minPx = 1e-9

func (d *Drawer) arrowheadMaxPx() float64 {
	return d.props.ArrowheadLengthRatio * d.props.ArrowLineWidthPx
}

// arrowheadPx fills an arrowhead with its tip at pos pointing along dir.
func (d *Drawer) arrowheadPx(pos, dir vector.Vec2, length float64, c vector.Color) {
	dx := -(1 - d.props.ArrowheadOffsetRatio) * length
	dy := d.props.ArrowheadWidthRatio * length
	var p vector.Path
	p.MoveTo(0, 0)
	p.LineTo(-length, dy)
	p.LineTo(dx, 0)
	p.LineTo(-length, -dy)
	p.Close()
	m := vector.Translate(pos.X, pos.Y).Mul(vector.Rotate(vector.AngleOf(dir)))
	d.s.FillPath(p.Transform(m), fill(c))
}

// Arrow draws a shaft from start to end with a head at end. Arrows shorter
// than a pixel get no head and zero-length arrows draw nothing.
func (d *Drawer) Arrow(start, end vector.Vec2, typ string) {
	c := d.color(typ)
	offset := end.Sub(start)
	lengthPx := d.Vec2Px(offset).Len()
	if !(lengthPx > minPx) {
		return
	}
	lineEnd := end
	head := 0.0
	if lengthPx >= 1 {
		head = math.Min(d.arrowheadMaxPx(), lengthPx/2)
		center := (1 - d.props.ArrowheadOffsetRatio) * head
		lineEnd = start.Add(offset.Mul((lengthPx - center) / lengthPx))
	}
	d.s.StrokePath(segment(d.Pos2Px(start), d.Pos2Px(lineEnd)), d.arrowStroke(c))
	if lengthPx >= 1 {
		d.arrowheadPx(d.Pos2Px(end), d.Vec2Px(offset), head, c)
	}
}

func (d *Drawer) Arrow3D(start, end vector.Vec3, typ string) {
	d.Arrow(d.Pos3To2(start), d.Pos3To2(end), typ)
}

func (d *Drawer) ArrowFrom(start, offset vector.Vec2, typ string) {
	d.Arrow(start, start.Add(offset), typ)
}

func (d *Drawer) ArrowTo(end, offset vector.Vec2, typ string) {
	d.Arrow(end.Sub(offset), end, typ)
}

// ArrowOutOfPage draws a circled dot.
func (d *Drawer) ArrowOutOfPage(pos vector.Vec2, typ string) {
	c := d.color(typ)
	p := d.Pos2Px(pos)
	ring := circlePath(p, d.props.ArrowOutOfPageRadiusPx)
	d.s.FillPath(ring, fill(vector.White))
	d.s.StrokePath(ring, stroke(c, d.props.ArrowLineWidthPx, nil))
	d.s.FillPath(circlePath(p, 0.7*d.props.ArrowLineWidthPx), fill(c))
}

// ArrowIntoPage draws a circled cross.
func (d *Drawer) ArrowIntoPage(pos vector.Vec2, typ string) {
	c := d.color(typ)
	p := d.Pos2Px(pos)
	r := d.props.ArrowOutOfPageRadiusPx
	rs := r / math.Sqrt2
	st := stroke(c, d.props.ArrowLineWidthPx, nil)
	ring := circlePath(p, r)
	d.s.FillPath(ring, fill(vector.White))
	d.s.StrokePath(ring, st)
	d.s.StrokePath(segment(p.Add(vector.V2(-rs, -rs)), p.Add(vector.V2(rs, rs))), st)
	d.s.StrokePath(segment(p.Add(vector.V2(rs, -rs)), p.Add(vector.V2(-rs, rs))), st)
}

// CircleArrowCentered draws a circle arrow spanning extent around center.
func (d *Drawer) CircleArrowCentered(pos vector.Vec2, rad, center, extent float64, typ string, fixedRad bool) {
	d.CircleArrow(pos, rad, center-extent/2, center+extent/2, typ, fixedRad, 0)
}

// CircleArrow draws an arc arrow about pos from start to end (radians,
// counterclockwise). Unless fixedRad is set the radius grows along the
// arc so that arrows wrapping more than a full turn do not overlap.
// segSize is the target angular step, 0.2 when <= 0.
func (d *Drawer) CircleArrow(pos vector.Vec2, rad, start, end float64, typ string, fixedRad bool, segSize float64) {
	if segSize <= 0 {
		segSize = 0.2
	}
	c := d.color(typ)
	posPx := d.Pos2Px(pos)
	startOff := d.Vec2Px(vector.Vec2AtAngle(start).Mul(rad))
	radiusPx := startOff.Len()
	delta := end - start
	if !(radiusPx > minPx) || !(math.Abs(delta) > 0) || math.IsInf(delta, 0) {
		return
	}
	startPx := vector.AngleOf(startOff)
	if d.isReflection() {
		delta = -delta
	}
	endPx := startPx + delta
	r := func(a float64) float64 { return d.circleArrowRadius(radiusPx, a, startPx, endPx, fixedRad) }

	startR := r(startPx)
	endR := r(endPx)
	arrowLen := radiusPx * math.Abs(endPx-startPx)
	head := math.Min(d.arrowheadMaxPx(), arrowLen/2)
	centerLen := (1 - d.props.ArrowheadOffsetRatio) * head
	extraLen := (1 - d.props.ArrowheadOffsetRatio/3) * head
	sgn := vector.Sign(endPx - startPx)
	preEnd := endPx - sgn*centerLen/endR
	base := endPx - sgn*extraLen/endR

	n := int(math.Ceil(math.Abs(preEnd-startPx) / segSize))
	var p vector.Path
	q := posPx.Add(vector.Vec2AtAngle(startPx).Mul(startR))
	p.MoveTo(q.X, q.Y)
	for i := 1; i <= n; i++ {
		a := vector.LinearInterp(startPx, preEnd, float64(i)/float64(n))
		q = posPx.Add(vector.Vec2AtAngle(a).Mul(r(a)))
		p.LineTo(q.X, q.Y)
	}
	d.s.StrokePath(p, d.arrowStroke(c))

	tip := posPx.Add(vector.Vec2AtAngle(endPx).Mul(endR))
	basePos := posPx.Add(vector.Vec2AtAngle(base).Mul(r(base)))
	d.arrowheadPx(tip, tip.Sub(basePos), head, c)
}

// circleArrowRadius is the pixel radius at angle within a circle arrow
// whose middle sits at midR.
func (d *Drawer) circleArrowRadius(midR, angle, start, end float64, fixed bool) float64 {
	if fixed || math.Abs(end-start) < 1e-4 {
		return midR
	}
	spacing := d.arrowheadMaxPx() * d.props.ArrowheadWidthRatio * d.props.CircleArrowWrapOffsetRatio
	density := midR * 2 * math.Pi / spacing
	off := (angle - (start+end)/2) * vector.Sign(end-start)
	if off > 0 {
		return midR * (1 + off/density)
	}
	return midR * math.Exp(off/density)
}

// Arc strokes a circular arc from start to end (radians, counterclockwise
// in drawing coordinates), filling it first when filled.
func (d *Drawer) Arc(center vector.Vec2, r, start, end float64, filled bool) {
	c := d.Pos2Px(center)
	rPx := d.Vec2Px(vector.V2(r, 0)).Len()
	var p vector.Path
	p.Arc(c.X, c.Y, rPx, -end, -start, false)
	if filled {
		d.s.FillPath(p, fill(d.inside()))
	}
	d.s.StrokePath(p, d.shapeStroke(d.outline()))
}

// PolyLine draws points, and any sub-paths, as a single path. Closed
// filled paths use the even-odd rule so sub-paths punch holes.
func (d *Drawer) PolyLine(points []vector.Vec2, closed, filled, stroked bool, subPaths ...[]vector.Vec2) {
	if len(points) < 2 {
		return
	}
	var p vector.Path
	for _, sp := range append([][]vector.Vec2{points}, subPaths...) {
		for i, pt := range sp {
			q := d.Pos2Px(pt)
			if i == 0 {
				p.MoveTo(q.X, q.Y)
			} else {
				p.LineTo(q.X, q.Y)
			}
		}
		if closed {
			p.Close()
		}
	}
	if closed && filled {
		d.s.FillPath(p, vector.Fill{Color: d.inside(), Rule: vector.EvenOdd, Enabled: true})
	}
	if stroked {
		d.s.StrokePath(p, d.shapeStroke(d.outline()))
	}
}

func (d *Drawer) PolyLine3D(points []vector.Vec3, closed, filled, stroked bool, subPaths ...[]vector.Vec3) {
	sub := make([][]vector.Vec2, len(subPaths))
	for i, sp := range subPaths {
		sub[i] = d.project(sp)
	}
	d.PolyLine(d.project(points), closed, filled, stroked, sub...)
}

func (d *Drawer) project(pts []vector.Vec3) []vector.Vec2 {
	out := make([]vector.Vec2, len(pts))
	for i, p := range pts {
		out[i] = d.Pos3To2(p)
	}
	return out
}

// PolyLineArrow draws an open polyline with an arrowhead on its last
// point. The line is shortened so it ends inside the head.
func (d *Drawer) PolyLineArrow(points []vector.Vec2, typ string) {
	if len(points) < 2 {
		return
	}
	c := d.color(typ)
	px := make([]vector.Vec2, len(points))
	total := 0.0
	for i, p := range points {
		px[i] = d.Pos2Px(p)
		if i > 0 {
			total += px[i].Sub(px[i-1]).Len()
		}
	}
	var (
		head    float64
		tip     vector.Vec2
		headDir vector.Vec2
	)
	drawHead := total >= 1
	if drawHead {
		head = math.Min(d.arrowheadMaxPx(), total/2)
		remove := (1 - d.props.ArrowheadOffsetRatio) * head
		i := len(px) - 1
		tip = px[i]
		for i > 0 {
			seg := px[i].Sub(px[i-1]).Len()
			if remove > seg {
				remove -= seg
				px = px[:i]
				i--
				continue
			}
			px[i] = vector.LinearInterpVec2(px[i], px[i-1], remove/seg)
			break
		}
		headDir = tip.Sub(px[i])
	}
	var p vector.Path
	p.MoveTo(px[0].X, px[0].Y)
	for _, q := range px[1:] {
		p.LineTo(q.X, q.Y)
	}
	d.s.StrokePath(p, d.arrowStroke(c))
	if drawHead {
		d.arrowheadPx(tip, headDir, head, c)
	}
}

func (d *Drawer) PolyLineArrow3D(points []vector.Vec3, typ string) {
	d.PolyLineArrow(d.project(points), typ)
}

// Circle draws a circle, filled with the inside color when filled.
func (d *Drawer) Circle(center vector.Vec2, r float64, filled bool) {
	p := circlePath(d.Pos2Px(center), d.Vec2Px(vector.V2(r, 0)).Len())
	if filled {
		d.s.FillPath(p, fill(d.inside()))
	}
	d.s.StrokePath(p, d.shapeStroke(d.outline()))
}

// FilledCircle fills a circle with the outline color.
func (d *Drawer) FilledCircle(center vector.Vec2, r float64) {
	p := circlePath(d.Pos2Px(center), d.Vec2Px(vector.V2(r, 0)).Len())
	d.s.FillPath(p, fill(d.outline()))
}
