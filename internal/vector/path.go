/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// Path commands and shapes, in pixel space.

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	QuadTo  // quadratic bezier (cx, cy, x, y)
	CubicTo // cubic bezier (cx1, cy1, cx2, cy2, x, y)
	Close
)

type PathCmd struct {
	Op   PathOp
	Data [6]float64 // enough for cubic; unused slots are zero
}

// Path is a list of sub-paths. Arcs are stored as cubic segments so every
// backend only has to understand lines and beziers.
type Path struct {
	Cmds []PathCmd

	cur, start Vec2
	hasCur     bool
}

func (p *Path) MoveTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, Data: [6]float64{x, y}})
	p.cur, p.start, p.hasCur = Vec2{x, y}, Vec2{x, y}, true
}

// LineTo starts a sub-path when there is no current point, like a canvas does.
func (p *Path) LineTo(x, y float64) {
	if !p.hasCur {
		p.MoveTo(x, y)
		return
	}
	p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, Data: [6]float64{x, y}})
	p.cur = Vec2{x, y}
}
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: QuadTo, Data: [6]float64{cx, cy, x, y}})
	p.cur, p.hasCur = Vec2{x, y}, true
}
func (p *Path) CubicTo(cx1, cy1, cx2, cy2, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: CubicTo, Data: [6]float64{cx1, cy1, cx2, cy2, x, y}})
	p.cur, p.hasCur = Vec2{x, y}, true
}
func (p *Path) Close() {
	if !p.hasCur {
		return
	}
	p.Cmds = append(p.Cmds, PathCmd{Op: Close})
	p.cur = p.start
}

// Current returns the current point, if any.
func (p *Path) Current() (Vec2, bool) { return p.cur, p.hasCur }

func (p *Path) Empty() bool { return len(p.Cmds) == 0 }

// Rect adds a closed rectangle sub-path.
func (p *Path) Rect(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

// Arc follows canvas arc semantics: angles are measured in pixel space and
// the sweep runs clockwise on screen unless anticlockwise is set. A sweep of
// at least 2π draws the full circle.
func (p *Path) Arc(cx, cy, r, start, end float64, anticlockwise bool) {
	var sweep float64
	if !anticlockwise {
		if end-start >= twoPi {
			sweep = twoPi
		} else {
			sweep = FixedMod(end-start, twoPi)
		}
	} else {
		if start-end >= twoPi {
			sweep = -twoPi
		} else {
			sweep = -FixedMod(start-end, twoPi)
		}
	}
	c := Vec2{cx, cy}
	p0 := c.Add(Vec2AtAngle(start).Mul(r))
	if p.hasCur {
		p.LineTo(p0.X, p0.Y)
	} else {
		p.MoveTo(p0.X, p0.Y)
	}
	p.arcSegments(c, r, start, sweep)
}

// ArcTo follows canvas arcTo: a straight line to the first tangent point of
// a circle of radius r touching both p0→p1 and p1→p2, then the short arc.
func (p *Path) ArcTo(x1, y1, x2, y2, r float64) {
	p1, p2 := Vec2{x1, y1}, Vec2{x2, y2}
	if !p.hasCur {
		p.MoveTo(x1, y1)
		return
	}
	p0 := p.cur
	v1 := p0.Sub(p1)
	v2 := p2.Sub(p1)
	if r <= 0 || v1.Len() == 0 || v2.Len() == 0 || math.Abs(v1.X*v2.Y-v1.Y*v2.X) < 1e-12 {
		p.LineTo(x1, y1)
		return
	}
	u1, u2 := v1.Unit(), v2.Unit()
	theta := math.Acos(Clip(u1.Dot(u2), -1, 1))
	d := r / math.Tan(theta/2)
	t1 := p1.Add(u1.Mul(d))
	t2 := p1.Add(u2.Mul(d))
	c := p1.Add(u1.Add(u2).Unit().Mul(r / math.Sin(theta/2)))
	p.LineTo(t1.X, t1.Y)
	a0 := math.Atan2(t1.Y-c.Y, t1.X-c.X)
	a1 := math.Atan2(t2.Y-c.Y, t2.X-c.X)
	sweep := IntervalMod(a1-a0, -math.Pi, math.Pi)
	p.arcSegments(c, r, a0, sweep)
}

// arcSegments emits cubic approximations of at most a quarter turn each.
func (p *Path) arcSegments(c Vec2, r, start, sweep float64) {
	if sweep == 0 {
		return
	}
	n := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2)))
	step := sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)
	a0 := start
	for i := 0; i < n; i++ {
		a1 := a0 + step
		s0, c0 := math.Sincos(a0)
		s1, c1 := math.Sincos(a1)
		q0 := Vec2{c.X + r*c0, c.Y + r*s0}
		q3 := Vec2{c.X + r*c1, c.Y + r*s1}
		q1 := q0.Add(Vec2{-s0, c0}.Mul(k * r))
		q2 := q3.Sub(Vec2{-s1, c1}.Mul(k * r))
		p.CubicTo(q1.X, q1.Y, q2.X, q2.Y, q3.X, q3.Y)
		a0 = a1
	}
}

// Append adds all of o's sub-paths.
func (p *Path) Append(o Path) {
	p.Cmds = append(p.Cmds, o.Cmds...)
	p.cur, p.start, p.hasCur = o.cur, o.start, o.hasCur
}

// Transform returns a copy of p with every point mapped through m.
func (p Path) Transform(m Affine2D) Path {
	out := Path{Cmds: make([]PathCmd, len(p.Cmds)), hasCur: p.hasCur}
	for i, c := range p.Cmds {
		n := 0
		switch c.Op {
		case MoveTo, LineTo:
			n = 1
		case QuadTo:
			n = 2
		case CubicTo:
			n = 3
		}
		for j := 0; j < n; j++ {
			q := m.Apply(Vec2{c.Data[2*j], c.Data[2*j+1]})
			c.Data[2*j], c.Data[2*j+1] = q.X, q.Y
		}
		out.Cmds[i] = c
	}
	out.cur, out.start = m.Apply(p.cur), m.Apply(p.start)
	return out
}

// Flatten returns a copy of p with every curve replaced by n line
// segments. n < 1 means 16.
func (p Path) Flatten(n int) Path {
	if n < 1 {
		n = 16
	}
	var out Path
	var cur Vec2
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case MoveTo:
			out.MoveTo(d[0], d[1])
			cur = Vec2{d[0], d[1]}
		case LineTo:
			out.LineTo(d[0], d[1])
			cur = Vec2{d[0], d[1]}
		case QuadTo:
			c1, end := Vec2{d[0], d[1]}, Vec2{d[2], d[3]}
			for i := 1; i <= n; i++ {
				t := float64(i) / float64(n)
				u := 1 - t
				q := cur.Mul(u * u).Add(c1.Mul(2 * u * t)).Add(end.Mul(t * t))
				out.LineTo(q.X, q.Y)
			}
			cur = end
		case CubicTo:
			c1, c2, end := Vec2{d[0], d[1]}, Vec2{d[2], d[3]}, Vec2{d[4], d[5]}
			for i := 1; i <= n; i++ {
				t := float64(i) / float64(n)
				u := 1 - t
				q := cur.Mul(u * u * u).Add(c1.Mul(3 * u * u * t)).Add(c2.Mul(3 * u * t * t)).Add(end.Mul(t * t * t))
				out.LineTo(q.X, q.Y)
			}
			cur = end
		case Close:
			out.Close()
			cur, _ = out.Current()
		}
	}
	return out
}

// Bounds returns an axis-aligned bounding box of the path using a simple
// approximation by considering control points.
func (p *Path) Bounds() Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	add := func(x, y float64) {
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
	}
	for _, c := range p.Cmds {
		switch c.Op {
		case MoveTo, LineTo:
			add(c.Data[0], c.Data[1])
		case QuadTo:
			add(c.Data[0], c.Data[1])
			add(c.Data[2], c.Data[3])
		case CubicTo:
			add(c.Data[0], c.Data[1])
			add(c.Data[2], c.Data[3])
			add(c.Data[4], c.Data[5])
		}
	}
	if minX > maxX || minY > maxY {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
